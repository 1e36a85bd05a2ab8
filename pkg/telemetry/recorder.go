// Package telemetry records per-tick vehicle state and final cluster maps as
// CSV files for offline analysis.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gocarina/gocsv"

	"github.com/opd-ai/go-trainsim/pkg/engine"
)

// TickRecord is one row of ticks.csv.
type TickRecord struct {
	Tick          uint64  `csv:"tick"`
	VehicleID     uint64  `csv:"vehicle_id"`
	X             float64 `csv:"x"`
	Y             float64 `csv:"y"`
	Heading       float64 `csv:"heading"`
	Collided      bool    `csv:"collided"`
	LaserHit      bool    `csv:"laser_hit"`
	LaserDistance float64 `csv:"laser_distance"`
	Hits          int     `csv:"hits"`
	Clusters      int     `csv:"clusters"`
	Merged        int     `csv:"merged"`
}

// ClusterRecord is one row of clusters.csv.
type ClusterRecord struct {
	VehicleID uint64  `csv:"vehicle_id"`
	ClusterID string  `csv:"cluster_id"`
	CenterX   float64 `csv:"center_x"`
	CenterY   float64 `csv:"center_y"`
	Radius    float64 `csv:"radius"`
	Points    int     `csv:"points"`
}

// Recorder writes telemetry into a directory. A nil Recorder is a no-op.
type Recorder struct {
	dir               string
	tickFile          *os.File
	tickHeaderWritten bool
}

// NewRecorder creates dir and opens ticks.csv. Returns nil if dir is empty.
func NewRecorder(dir string) (*Recorder, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating telemetry directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "ticks.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating ticks.csv: %w", err)
	}
	return &Recorder{dir: dir, tickFile: f}, nil
}

// Dir returns the output directory.
func (r *Recorder) Dir() string {
	if r == nil {
		return ""
	}
	return r.dir
}

// RecordTick appends one row per vehicle in report.
func (r *Recorder) RecordTick(report engine.TickReport) error {
	if r == nil || len(report.Vehicles) == 0 {
		return nil
	}
	records := make([]TickRecord, len(report.Vehicles))
	for i, v := range report.Vehicles {
		records[i] = TickRecord{
			Tick:          report.Tick,
			VehicleID:     v.ID,
			X:             v.Pose.X,
			Y:             v.Pose.Y,
			Heading:       v.Pose.Heading,
			Collided:      v.Collided,
			LaserHit:      v.LaserHit,
			LaserDistance: v.LaserDistance,
			Hits:          v.Hits,
			Clusters:      v.Clusters,
			Merged:        v.Stats.Merged,
		}
	}

	if !r.tickHeaderWritten {
		if err := gocsv.Marshal(records, r.tickFile); err != nil {
			return fmt.Errorf("writing ticks: %w", err)
		}
		r.tickHeaderWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, r.tickFile); err != nil {
		return fmt.Errorf("writing ticks: %w", err)
	}
	return nil
}

// WriteClusters writes clusters.csv from a final snapshot.
func (r *Recorder) WriteClusters(state *engine.State) error {
	if r == nil {
		return nil
	}
	var records []ClusterRecord
	for id, v := range state.Vehicles {
		for _, c := range v.Clusters {
			records = append(records, ClusterRecord{
				VehicleID: id,
				ClusterID: c.ID.String(),
				CenterX:   c.Center.X,
				CenterY:   c.Center.Y,
				Radius:    c.Radius,
				Points:    len(c.Points),
			})
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].VehicleID != records[j].VehicleID {
			return records[i].VehicleID < records[j].VehicleID
		}
		return records[i].ClusterID < records[j].ClusterID
	})

	f, err := os.Create(filepath.Join(r.dir, "clusters.csv"))
	if err != nil {
		return fmt.Errorf("creating clusters.csv: %w", err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&records, f); err != nil {
		return fmt.Errorf("writing clusters: %w", err)
	}
	return nil
}

// Close flushes and closes the open files.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	return r.tickFile.Close()
}
