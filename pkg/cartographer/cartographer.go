// Package cartographer groups measured obstacle points into clusters as they
// arrive, merging clusters that a new point connects.
package cartographer

import (
	"errors"
	"fmt"

	"github.com/opd-ai/go-trainsim/pkg/physics"
)

const (
	// DefaultClusterDistance is the linking distance used when none is set.
	DefaultClusterDistance = 20.0
	// DefaultDuplicateEpsilon is the tolerance for treating points as equal.
	DefaultDuplicateEpsilon = 1e-6
)

// ErrInvalidConfig is returned for a non-positive cluster distance.
var ErrInvalidConfig = errors.New("invalid cartographer config")

// Config controls clustering.
type Config struct {
	ClusterDistance  float64
	DuplicateEpsilon float64
}

// DefaultConfig returns the default clustering settings.
func DefaultConfig() Config {
	return Config{ClusterDistance: DefaultClusterDistance, DuplicateEpsilon: DefaultDuplicateEpsilon}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.ClusterDistance <= 0 {
		return fmt.Errorf("%w: cluster_distance must be > 0, got %v", ErrInvalidConfig, c.ClusterDistance)
	}
	if c.DuplicateEpsilon < 0 {
		return fmt.Errorf("%w: duplicate_epsilon must be >= 0", ErrInvalidConfig)
	}
	return nil
}

// AppendStats counts what happened during one Append call.
type AppendStats struct {
	Created    int
	Grown      int
	Merged     int
	Duplicates int
}

// Cartographer owns the active clusters of one vehicle.
type Cartographer struct {
	cfg      Config
	clusters []*Cluster
}

// New creates an empty Cartographer. A zero ClusterDistance uses the default.
func New(cfg Config) (*Cartographer, error) {
	if cfg.ClusterDistance == 0 {
		cfg.ClusterDistance = DefaultClusterDistance
	}
	if cfg.DuplicateEpsilon == 0 {
		cfg.DuplicateEpsilon = DefaultDuplicateEpsilon
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Cartographer{cfg: cfg}, nil
}

// Config returns the settings in effect.
func (c *Cartographer) Config() Config {
	return c.cfg
}

// Clusters returns the active clusters.
func (c *Cartographer) Clusters() []*Cluster {
	return append([]*Cluster(nil), c.clusters...)
}

// PointCount returns the total number of clustered points.
func (c *Cartographer) PointCount() int {
	n := 0
	for _, cl := range c.clusters {
		n += cl.Len()
	}
	return n
}

// Append rounds each point to integer coordinates and files it: a point near
// no cluster starts a new one, a point near one cluster joins it, and a point
// near several merges them all. Points already present are ignored.
func (c *Cartographer) Append(points []physics.Vector2D) AppendStats {
	var stats AppendStats
	for _, raw := range points {
		c.appendPoint(raw.Round(), &stats)
		for _, cl := range c.clusters {
			cl.dirty = false
		}
	}
	return stats
}

func (c *Cartographer) appendPoint(p physics.Vector2D, stats *AppendStats) {
	d := c.cfg.ClusterDistance
	var matches []int
	for i, cl := range c.clusters {
		if cl.candidate(p, d) {
			matches = append(matches, i)
		}
	}

	switch len(matches) {
	case 0:
		c.clusters = append(c.clusters, newCluster(p))
		stats.Created++
	case 1:
		cl := c.clusters[matches[0]]
		if cl.Contains(p, c.cfg.DuplicateEpsilon) {
			stats.Duplicates++
			return
		}
		cl.add(p)
		stats.Grown++
	default:
		c.merge(matches, p, stats)
	}
}

// merge rebuilds the matched clusters as one in the slot of the first match.
func (c *Cartographer) merge(matches []int, p physics.Vector2D, stats *AppendStats) {
	first := c.clusters[matches[0]]
	var points []physics.Vector2D
	duplicate := false
	matched := make(map[int]bool, len(matches))
	for _, i := range matches {
		matched[i] = true
		cl := c.clusters[i]
		if cl.Contains(p, c.cfg.DuplicateEpsilon) {
			duplicate = true
		}
		points = append(points, cl.points...)
	}
	if !duplicate {
		points = append(points, p)
	} else {
		stats.Duplicates++
	}

	merged := rebuild(first.ID, points)
	kept := make([]*Cluster, 0, len(c.clusters)-len(matches)+1)
	for i, cl := range c.clusters {
		switch {
		case i == matches[0]:
			kept = append(kept, merged)
		case !matched[i]:
			kept = append(kept, cl)
		}
	}
	c.clusters = kept
	stats.Merged += len(matches) - 1
}

// Consolidate merges every pair of clusters that have members within the
// cluster distance of each other and returns the number of merges.
func (c *Cartographer) Consolidate() int {
	d := c.cfg.ClusterDistance
	merges := 0
	for changed := true; changed; {
		changed = false
		for i := 0; i < len(c.clusters) && !changed; i++ {
			for j := i + 1; j < len(c.clusters); j++ {
				if !c.clusters[i].IsSame(c.clusters[j], d) {
					continue
				}
				points := append(c.clusters[i].Points(), c.clusters[j].points...)
				c.clusters[i] = rebuild(c.clusters[i].ID, points)
				c.clusters = append(c.clusters[:j], c.clusters[j+1:]...)
				merges++
				changed = true
				break
			}
		}
	}
	for _, cl := range c.clusters {
		cl.dirty = false
	}
	return merges
}

// Reset drops every cluster.
func (c *Cartographer) Reset() {
	c.clusters = nil
}
