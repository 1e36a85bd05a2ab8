// Package validation checks values that enter the simulation from outside
// a component: vehicle names, operator commands, poses and weapon targets.
package validation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/opd-ai/go-trainsim/pkg/navigation"
	"github.com/opd-ai/go-trainsim/pkg/physics"
)

// MaxVehicleNameLen limits vehicle names in logs and telemetry.
const MaxVehicleNameLen = 32

var (
	// ErrInvalidName is returned for unusable vehicle names.
	ErrInvalidName = errors.New("invalid vehicle name")
	// ErrNotFinite is returned when a numeric input is NaN or infinite.
	ErrNotFinite = errors.New("value is not finite")
)

// Alphanumerics plus a little punctuation, so names are safe as CSV cells.
var validVehicleNameChars = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.()]+$`)

// ValidateVehicleName trims name and checks it is usable.
func ValidateVehicleName(name string) (string, error) {
	if !utf8.ValidString(name) {
		return "", fmt.Errorf("%w: contains invalid UTF-8 characters", ErrInvalidName)
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("%w: cannot be empty", ErrInvalidName)
	}
	if len(trimmed) > MaxVehicleNameLen {
		return "", fmt.Errorf("%w: too long: %d characters (max %d)", ErrInvalidName, len(trimmed), MaxVehicleNameLen)
	}

	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("%w: contains control characters", ErrInvalidName)
		}
	}
	if !validVehicleNameChars.MatchString(trimmed) {
		return "", fmt.Errorf("%w: only alphanumeric, spaces, hyphens, underscores, dots and parentheses allowed", ErrInvalidName)
	}
	return trimmed, nil
}

// ValidateCommand rejects commands carrying NaN or infinite values. Range
// limits are left to Navigation, which clamps them.
func ValidateCommand(cmd navigation.Command) error {
	if err := finite("speed", cmd.Speed); err != nil {
		return err
	}
	return finite("heading", cmd.Heading)
}

// ValidatePose rejects poses carrying NaN or infinite values.
func ValidatePose(pose navigation.Pose) error {
	if err := finite("x", pose.X); err != nil {
		return err
	}
	if err := finite("y", pose.Y); err != nil {
		return err
	}
	return finite("heading", pose.Heading)
}

// ValidatePoint rejects points carrying NaN or infinite values.
func ValidatePoint(p physics.Vector2D) error {
	if err := finite("x", p.X); err != nil {
		return err
	}
	return finite("y", p.Y)
}

func finite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s = %v", ErrNotFinite, field, v)
	}
	return nil
}
