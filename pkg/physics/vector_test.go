// pkg/physics/vector_test.go
package physics

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func TestVector2D_Arithmetic(t *testing.T) {
	tests := []struct {
		name     string
		got      Vector2D
		expected Vector2D
	}{
		{"add_mixed_signs", Vector2D{X: 5, Y: -3}.Add(Vector2D{X: -2, Y: 7}), Vector2D{X: 3, Y: 4}},
		{"sub_negative_result", Vector2D{X: 2, Y: 3}.Sub(Vector2D{X: 5, Y: 7}), Vector2D{X: -3, Y: -4}},
		{"scale_by_half", Vector2D{X: 4, Y: -6}.Scale(0.5), Vector2D{X: 2, Y: -3}},
		{"scale_by_zero", Vector2D{X: 4, Y: -6}.Scale(0), Vector2D{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.got.Equal(tt.expected, tolerance) {
				t.Errorf("got %v, expected %v", tt.got, tt.expected)
			}
		})
	}
}

func TestVector2D_Length(t *testing.T) {
	tests := []struct {
		name     string
		v        Vector2D
		expected float64
	}{
		{"pythagorean_triple", Vector2D{X: 3, Y: 4}, 5},
		{"zero_vector", Vector2D{}, 0},
		{"negative_components", Vector2D{X: -6, Y: -8}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Length(); math.Abs(got-tt.expected) > tolerance {
				t.Errorf("Length() = %v, expected %v", got, tt.expected)
			}
			if got := tt.v.LengthSquared(); math.Abs(got-tt.expected*tt.expected) > tolerance {
				t.Errorf("LengthSquared() = %v, expected %v", got, tt.expected*tt.expected)
			}
		})
	}
}

func TestVector2D_NormalizeZeroVector_ReturnsZero(t *testing.T) {
	if got := (Vector2D{}).Normalize(); got != (Vector2D{}) {
		t.Errorf("Normalize() of zero vector = %v, expected zero", got)
	}
	if got := (Vector2D{X: 0, Y: -7}).Normalize(); !got.Equal(Vector2D{X: 0, Y: -1}, tolerance) {
		t.Errorf("Normalize() = %v, expected (0,-1)", got)
	}
}

func TestVector2D_AngleOr(t *testing.T) {
	if got := (Vector2D{}).AngleOr(1.25); got != 1.25 {
		t.Errorf("AngleOr() of zero vector = %v, expected fallback", got)
	}
	if got := (Vector2D{X: 0, Y: 2}).AngleOr(1.25); math.Abs(got-math.Pi/2) > tolerance {
		t.Errorf("AngleOr() = %v, expected π/2", got)
	}
}

func TestVector2D_Rotate(t *testing.T) {
	tests := []struct {
		name     string
		v        Vector2D
		angle    float64
		expected Vector2D
	}{
		{"quarter_turn", Vector2D{X: 1, Y: 0}, math.Pi / 2, Vector2D{X: 0, Y: 1}},
		{"half_turn", Vector2D{X: 5, Y: 15}, math.Pi, Vector2D{X: -5, Y: -15}},
		{"negative_quarter", Vector2D{X: 0, Y: 2}, -math.Pi / 2, Vector2D{X: 2, Y: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Rotate(tt.angle); !got.Equal(tt.expected, 1e-9) {
				t.Errorf("Rotate() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestVector2D_Round(t *testing.T) {
	tests := []struct {
		name     string
		v        Vector2D
		expected Vector2D
	}{
		{"nearest", Vector2D{X: 1.4, Y: -1.6}, Vector2D{X: 1, Y: -2}},
		{"half_to_even", Vector2D{X: 2.5, Y: 3.5}, Vector2D{X: 2, Y: 4}},
		{"negative_half", Vector2D{X: -0.5, Y: -1.5}, Vector2D{X: 0, Y: -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Round(); got != tt.expected {
				t.Errorf("Round() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestFromAngle(t *testing.T) {
	got := FromAngle(-math.Pi/2, 15)
	if !got.Equal(Vector2D{X: 0, Y: -15}, tolerance) {
		t.Errorf("FromAngle() = %v, expected (0,-15)", got)
	}
	if d := Distance(Vector2D{X: 1, Y: 1}, Vector2D{X: 4, Y: 5}); math.Abs(d-5) > tolerance {
		t.Errorf("Distance() = %v, expected 5", d)
	}
}
