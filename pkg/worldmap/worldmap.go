// Package worldmap stores what a vehicle has discovered as a YAML map of
// clustered obstacles.
package worldmap

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/opd-ai/go-trainsim/pkg/cartographer"
	"github.com/opd-ai/go-trainsim/pkg/physics"
)

// CompleteThreshold is the completeness score at which a map counts as done.
const CompleteThreshold = 100

// Description is the map header.
type Description struct {
	MapName  string `yaml:"map_name"`
	Text     string `yaml:"text"`
	Date     string `yaml:"date"`
	Complete int    `yaml:"complete"`
}

// Object is one discovered obstacle.
type Object struct {
	ID     string             `yaml:"id"`
	Center physics.Vector2D   `yaml:"center"`
	Radius float64            `yaml:"radius"`
	Points []physics.Vector2D `yaml:"points,flow"`
}

// Map is a saved survey of an arena.
type Map struct {
	Description Description        `yaml:"description"`
	Border      []physics.Vector2D `yaml:"border,flow"`
	Objects     []Object           `yaml:"objects"`
}

// New creates an empty map.
func New(name, text string) *Map {
	return &Map{Description: Description{MapName: name, Text: text}}
}

// IsComplete reports whether the survey reached CompleteThreshold.
func (m *Map) IsComplete() bool {
	return m.Description.Complete >= CompleteThreshold
}

// SetBorder records the arena outline.
func (m *Map) SetBorder(points ...physics.Vector2D) {
	m.Border = append([]physics.Vector2D(nil), points...)
}

// AddClusters appends one object per cluster.
func (m *Map) AddClusters(clusters []*cartographer.Cluster) {
	for _, c := range clusters {
		m.Objects = append(m.Objects, Object{
			ID:     c.ID.String(),
			Center: c.Center(),
			Radius: c.Radius(),
			Points: c.Points(),
		})
	}
}

// Coverage sets the completeness score to the share of expected obstacle
// points that were found, capped at 100.
func (m *Map) Coverage(expected int) {
	if expected <= 0 {
		m.Description.Complete = CompleteThreshold
		return
	}
	found := 0
	for _, o := range m.Objects {
		found += len(o.Points)
	}
	score := found * 100 / expected
	if score > CompleteThreshold {
		score = CompleteThreshold
	}
	m.Description.Complete = score
}

// Save writes the map as YAML, stamping today's date.
func (m *Map) Save(path string) error {
	m.Description.Date = time.Now().Format(time.DateOnly)
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal map: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write map file: %w", err)
	}
	return nil
}

// Load reads a map written by Save.
func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}
	var m Map
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse map file: %w", err)
	}
	return &m, nil
}
