package validation

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/opd-ai/go-trainsim/pkg/navigation"
	"github.com/opd-ai/go-trainsim/pkg/physics"
)

func TestValidateVehicleName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "simple", input: "train-1", want: "train-1"},
		{name: "spaces and dots", input: "Survey unit 2.b", want: "Survey unit 2.b"},
		{name: "parentheses", input: "scout (east)", want: "scout (east)"},
		{name: "trimmed", input: "  t1  ", want: "t1"},
		{name: "empty", input: "", wantErr: true},
		{name: "only whitespace", input: "   ", wantErr: true},
		{name: "too long", input: strings.Repeat("a", MaxVehicleNameLen+1), wantErr: true},
		{name: "exactly max", input: strings.Repeat("a", MaxVehicleNameLen), want: strings.Repeat("a", MaxVehicleNameLen)},
		{name: "control character", input: "t\x001", wantErr: true},
		{name: "comma", input: "a,b", wantErr: true},
		{name: "invalid utf8", input: "t\xff", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateVehicleName(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidName) {
					t.Fatalf("ValidateVehicleName(%q) error = %v, want ErrInvalidName", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateVehicleName(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ValidateVehicleName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateCommand(t *testing.T) {
	tests := []struct {
		name    string
		cmd     navigation.Command
		wantErr bool
	}{
		{name: "zero", cmd: navigation.Command{}},
		{name: "out of range is clamped later", cmd: navigation.Command{Speed: -50, Heading: 20}},
		{name: "nan speed", cmd: navigation.Command{Speed: math.NaN()}, wantErr: true},
		{name: "inf heading", cmd: navigation.Command{Heading: math.Inf(-1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCommand(tt.cmd)
			if tt.wantErr != (err != nil) {
				t.Fatalf("ValidateCommand(%+v) error = %v, wantErr %v", tt.cmd, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrNotFinite) {
				t.Errorf("error %v does not wrap ErrNotFinite", err)
			}
		})
	}
}

func TestValidatePoseAndPoint(t *testing.T) {
	if err := ValidatePose(navigation.Pose{X: 1, Y: 2, Heading: 3}); err != nil {
		t.Errorf("ValidatePose() unexpected error: %v", err)
	}
	if err := ValidatePose(navigation.Pose{Y: math.NaN()}); !errors.Is(err, ErrNotFinite) {
		t.Errorf("ValidatePose(NaN y) error = %v, want ErrNotFinite", err)
	}
	if err := ValidatePoint(physics.Vector2D{X: 5}); err != nil {
		t.Errorf("ValidatePoint() unexpected error: %v", err)
	}
	if err := ValidatePoint(physics.Vector2D{X: math.Inf(1)}); !errors.Is(err, ErrNotFinite) {
		t.Errorf("ValidatePoint(+Inf x) error = %v, want ErrNotFinite", err)
	}
}
