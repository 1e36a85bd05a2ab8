// pkg/physics/collision.go
package physics

import "math"

// Oracle answers "what does a straight segment from origin to end hit first".
// Implementations must be deterministic, side-effect free and safe for
// concurrent use. A reported hit lies on the queried segment.
type Oracle interface {
	Query(origin, end Vector2D) (hit Vector2D, ok bool)
}

// OracleFunc adapts a plain function to the Oracle interface.
type OracleFunc func(origin, end Vector2D) (Vector2D, bool)

// Query calls f(origin, end).
func (f OracleFunc) Query(origin, end Vector2D) (Vector2D, bool) {
	return f(origin, end)
}

// EmptySpace is an Oracle that never reports an obstruction.
var EmptySpace Oracle = OracleFunc(func(Vector2D, Vector2D) (Vector2D, bool) {
	return Vector2D{}, false
})

// Circle represents a circular shape
type Circle struct {
	Center Vector2D `yaml:"center"`
	Radius float64  `yaml:"radius"`
}

// Collides checks if two circles are overlapping
func (c Circle) Collides(other Circle) bool {
	return c.Center.Distance(other.Center) < c.Radius+other.Radius
}

// Contains reports whether point lies inside or on the circle.
func (c Circle) Contains(point Vector2D) bool {
	return c.Center.Distance(point) <= c.Radius
}

// Rect represents an axis-aligned rectangular area
type Rect struct {
	Center Vector2D `yaml:"center"`
	Width  float64  `yaml:"width"`
	Height float64  `yaml:"height"`
}

// Contains reports whether point lies inside the rectangle.
func (r Rect) Contains(point Vector2D) bool {
	return point.X >= r.Center.X-r.Width/2 &&
		point.X < r.Center.X+r.Width/2 &&
		point.Y >= r.Center.Y-r.Height/2 &&
		point.Y < r.Center.Y+r.Height/2
}

// Edges returns the four sides of the rectangle, counter-clockwise.
func (r Rect) Edges() [4]Segment {
	hw, hh := r.Width/2, r.Height/2
	bl := Vector2D{X: r.Center.X - hw, Y: r.Center.Y - hh}
	br := Vector2D{X: r.Center.X + hw, Y: r.Center.Y - hh}
	tr := Vector2D{X: r.Center.X + hw, Y: r.Center.Y + hh}
	tl := Vector2D{X: r.Center.X - hw, Y: r.Center.Y + hh}
	return [4]Segment{{bl, br}, {br, tr}, {tr, tl}, {tl, bl}}
}

// Segment is a straight line piece between A and B.
type Segment struct {
	A Vector2D `yaml:"a"`
	B Vector2D `yaml:"b"`
}

// Length returns |B - A|.
func (s Segment) Length() float64 {
	return s.A.Distance(s.B)
}

// At returns the point A + t*(B-A).
func (s Segment) At(t float64) Vector2D {
	return s.A.Add(s.B.Sub(s.A).Scale(t))
}

// IntersectSegment returns the parameter t along ray (origin→end) where it
// crosses wall. Parallel or disjoint segments report false.
func IntersectSegment(ray, wall Segment) (float64, bool) {
	r := ray.B.Sub(ray.A)
	s := wall.B.Sub(wall.A)
	denom := r.Cross(s)
	if math.Abs(denom) < Epsilon {
		return 0, false
	}
	qp := wall.A.Sub(ray.A)
	t := qp.Cross(s) / denom
	u := qp.Cross(r) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return 0, false
	}
	return t, true
}

// IntersectCircle returns the smallest parameter t in [0, 1] where ray
// enters circle. An origin inside the circle reports t = 0.
func IntersectCircle(ray Segment, c Circle) (float64, bool) {
	if c.Contains(ray.A) {
		return 0, true
	}
	d := ray.B.Sub(ray.A)
	f := ray.A.Sub(c.Center)
	a := d.Dot(d)
	if a == 0 {
		return 0, false
	}
	b := 2 * f.Dot(d)
	cc := f.Dot(f) - c.Radius*c.Radius
	disc := b*b - 4*a*cc
	if disc < 0 {
		return 0, false
	}
	t := (-b - math.Sqrt(disc)) / (2 * a)
	if t < 0 || t > 1 {
		return 0, false
	}
	return t, true
}
