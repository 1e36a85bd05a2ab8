package cartographer

import (
	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/opd-ai/go-trainsim/pkg/physics"
)

// Cluster is a group of points where every point lies within the cluster
// distance of at least one other member.
type Cluster struct {
	ID     uuid.UUID
	points []physics.Vector2D
	center physics.Vector2D
	radius float64
	dirty  bool
}

func newCluster(p physics.Vector2D) *Cluster {
	return &Cluster{
		ID:     uuid.New(),
		points: []physics.Vector2D{p},
		center: p,
		dirty:  true,
	}
}

// rebuild creates a cluster from points, computing the exact centroid and
// bounding radius.
func rebuild(id uuid.UUID, points []physics.Vector2D) *Cluster {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	c := &Cluster{ID: id, points: points, dirty: true}
	c.center = physics.Vector2D{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)}
	dists := make([]float64, len(points))
	for i, p := range points {
		dists[i] = c.center.Distance(p)
	}
	c.radius = floats.Max(dists)
	return c
}

// Points returns a copy of the member points in insertion order.
func (c *Cluster) Points() []physics.Vector2D {
	return append([]physics.Vector2D(nil), c.points...)
}

// Len returns the number of points.
func (c *Cluster) Len() int { return len(c.points) }

// Center returns the centroid.
func (c *Cluster) Center() physics.Vector2D { return c.center }

// Radius returns the bounding radius around the centroid.
func (c *Cluster) Radius() float64 { return c.radius }

// Bounds returns the bounding circle.
func (c *Cluster) Bounds() physics.Circle {
	return physics.Circle{Center: c.center, Radius: c.radius}
}

// Contains reports whether p is already a member within eps.
func (c *Cluster) Contains(p physics.Vector2D, eps float64) bool {
	for _, q := range c.points {
		if q.Equal(p, eps) {
			return true
		}
	}
	return false
}

// Belong reports whether some member lies strictly within d of p.
func (c *Cluster) Belong(p physics.Vector2D, d float64) bool {
	for _, q := range c.points {
		if q.Distance(p) < d {
			return true
		}
	}
	return false
}

// IsSame reports whether any pair of points from c and other lies within d.
func (c *Cluster) IsSame(other *Cluster, d float64) bool {
	if c.center.Distance(other.center) >= c.radius+other.radius+d {
		return false
	}
	for _, p := range other.points {
		if c.Belong(p, d) {
			return true
		}
	}
	return false
}

// candidate is the cheap bounding-circle test followed by the exact check.
func (c *Cluster) candidate(p physics.Vector2D, d float64) bool {
	return c.center.Distance(p) < c.radius+d && c.Belong(p, d)
}

// add appends p and moves the centroid incrementally. The radius grows to
// cover every member around the new centroid and never shrinks. This rescans
// the members instead of only taking max(radius, distance(center, p)), which
// can miss an older point once the centroid moves away from it.
func (c *Cluster) add(p physics.Vector2D) {
	n := float64(len(c.points))
	c.center = c.center.Scale(n).Add(p).Scale(1 / (n + 1))
	c.points = append(c.points, p)
	for _, q := range c.points {
		if d := c.center.Distance(q); d > c.radius {
			c.radius = d
		}
	}
	c.dirty = true
}
