package physics

import "math"

// Epsilon is the tolerance used for float comparisons across the simulation.
const Epsilon = 1e-9

// WrapAngle maps an angle into (-π, π]. Non-finite input yields 0.
func WrapAngle(angle float64) float64 {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return 0
	}
	r := math.Remainder(angle, 2*math.Pi)
	if r <= -math.Pi {
		r += 2 * math.Pi
	}
	return r
}

// Sign returns 1 for x >= 0 and -1 otherwise.
func Sign(x float64) float64 {
	if x >= 0 {
		return 1
	}
	return -1
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// TurnDelta returns the signed rotation that takes current to target along
// the shorter arc. Both angles must already be wrapped. When both arcs are
// equal the rotation goes away from the target's sign.
func TurnDelta(current, target float64) float64 {
	if Sign(current) == Sign(target) {
		return target - current
	}
	direct := math.Abs(target) + math.Abs(current)
	around := 2*math.Pi - direct
	if direct < around {
		return Sign(target) * direct
	}
	return -Sign(target) * around
}

// LimitTurn moves current toward target by at most maxStep radians and
// returns the wrapped result.
func LimitTurn(current, target, maxStep float64) float64 {
	delta := TurnDelta(WrapAngle(current), WrapAngle(target))
	delta = Clamp(delta, -maxStep, maxStep)
	return WrapAngle(current + delta)
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
