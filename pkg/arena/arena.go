// Package arena is a flat world of static obstacles that answers segment
// queries for the vehicles, sensors and projectiles moving through it.
package arena

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/opd-ai/go-trainsim/pkg/physics"
)

// Kind names an obstacle shape.
type Kind string

const (
	KindSegment Kind = "segment"
	KindCircle  Kind = "circle"
	KindBox     Kind = "box"
)

// ErrUnknownKind is returned when a scene names an unsupported obstacle.
var ErrUnknownKind = errors.New("unknown obstacle kind")

// Obstacle is one static shape. Only the fields of its Kind are used.
type Obstacle struct {
	Kind   Kind             `yaml:"kind"`
	A      physics.Vector2D `yaml:"a,omitempty"`
	B      physics.Vector2D `yaml:"b,omitempty"`
	Center physics.Vector2D `yaml:"center,omitempty"`
	Radius float64          `yaml:"radius,omitempty"`
	Width  float64          `yaml:"width,omitempty"`
	Height float64          `yaml:"height,omitempty"`
}

// Segment creates a wall obstacle.
func Segment(a, b physics.Vector2D) Obstacle {
	return Obstacle{Kind: KindSegment, A: a, B: b}
}

// Circle creates a round obstacle.
func Circle(center physics.Vector2D, radius float64) Obstacle {
	return Obstacle{Kind: KindCircle, Center: center, Radius: radius}
}

// Box creates an axis-aligned rectangular obstacle.
func Box(center physics.Vector2D, width, height float64) Obstacle {
	return Obstacle{Kind: KindBox, Center: center, Width: width, Height: height}
}

// intersect returns the first parameter t at which ray touches o.
func (o Obstacle) intersect(ray physics.Segment) (float64, bool) {
	switch o.Kind {
	case KindSegment:
		return physics.IntersectSegment(ray, physics.Segment{A: o.A, B: o.B})
	case KindCircle:
		return physics.IntersectCircle(ray, physics.Circle{Center: o.Center, Radius: o.Radius})
	case KindBox:
		rect := physics.Rect{Center: o.Center, Width: o.Width, Height: o.Height}
		if rect.Contains(ray.A) {
			return 0, true
		}
		best, found := math.Inf(1), false
		for _, edge := range rect.Edges() {
			if t, ok := physics.IntersectSegment(ray, edge); ok && t < best {
				best, found = t, true
			}
		}
		return best, found
	}
	return 0, false
}

// Arena is immutable after construction and safe for concurrent queries.
type Arena struct {
	Name      string     `yaml:"name"`
	Width     float64    `yaml:"width"`
	Height    float64    `yaml:"height"`
	Obstacles []Obstacle `yaml:"obstacles"`
}

// New creates an arena, checking every obstacle kind.
func New(name string, width, height float64, obstacles ...Obstacle) (*Arena, error) {
	a := &Arena{Name: name, Width: width, Height: height, Obstacles: obstacles}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Arena) validate() error {
	for i, o := range a.Obstacles {
		switch o.Kind {
		case KindSegment, KindCircle, KindBox:
		default:
			return fmt.Errorf("obstacle %d: %w %q", i, ErrUnknownKind, o.Kind)
		}
	}
	return nil
}

// Query returns the closest obstacle point on the segment origin→end.
func (a *Arena) Query(origin, end physics.Vector2D) (physics.Vector2D, bool) {
	ray := physics.Segment{A: origin, B: end}
	best, found := math.Inf(1), false
	for _, o := range a.Obstacles {
		if t, ok := o.intersect(ray); ok && t < best {
			best, found = t, true
		}
	}
	if !found {
		return physics.Vector2D{}, false
	}
	return ray.At(best), true
}

// Free reports whether p is outside every circle and box and inside the
// bounds.
func (a *Arena) Free(p physics.Vector2D, clearance float64) bool {
	if p.X < clearance || p.Y < clearance || p.X > a.Width-clearance || p.Y > a.Height-clearance {
		return false
	}
	for _, o := range a.Obstacles {
		switch o.Kind {
		case KindCircle:
			if o.Center.Distance(p) <= o.Radius+clearance {
				return false
			}
		case KindBox:
			grown := physics.Rect{Center: o.Center, Width: o.Width + 2*clearance, Height: o.Height + 2*clearance}
			if grown.Contains(p) {
				return false
			}
		}
	}
	return true
}

// Border returns the four walls enclosing a width×height field inset by margin.
func Border(width, height, margin float64) []Obstacle {
	bl := physics.Vector2D{X: margin, Y: margin}
	br := physics.Vector2D{X: width - margin, Y: margin}
	tr := physics.Vector2D{X: width - margin, Y: height - margin}
	tl := physics.Vector2D{X: margin, Y: height - margin}
	return []Obstacle{Segment(bl, br), Segment(br, tr), Segment(tr, tl), Segment(tl, bl)}
}

// DefaultScene is the reference 1280×720 field with two round and two
// rectangular obstacles.
func DefaultScene() *Arena {
	const width, height = 1280, 720
	obstacles := Border(width, height, 5)
	obstacles = append(obstacles,
		Circle(physics.Vector2D{X: 300, Y: 300}, 50),
		Circle(physics.Vector2D{X: 500, Y: 500}, 70),
		Box(physics.Vector2D{X: 1000, Y: 400}, 70, 200),
		Box(physics.Vector2D{X: 800, Y: 100}, 300, 50),
	)
	return &Arena{Name: "default", Width: width, Height: height, Obstacles: obstacles}
}

// LoadScene reads an arena from a YAML file.
func LoadScene(path string) (*Arena, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	var a Arena
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse scene file: %w", err)
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// SaveScene writes an arena as YAML.
func SaveScene(a *Arena, path string) error {
	data, err := yaml.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal scene: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write scene file: %w", err)
	}
	return nil
}
