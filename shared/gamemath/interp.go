package gamemath

import "math"

// smallNumber is the squared distance below which InterpTo snaps to target.
const smallNumber = 1e-8

// InterpTo moves current toward target by a frame-rate independent fraction
// dt*speed of the remaining distance. A non-positive speed snaps to target.
func InterpTo(current, target, dt, speed float64) float64 {
	if speed <= 0 {
		return target
	}
	dist := target - current
	if dist*dist < smallNumber {
		return target
	}
	return current + dist*Clamp(dt*speed, 0, 1)
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

// MapRangeClamped maps v from [inMin, inMax] onto [outMin, outMax], clamping
// the result to the output range.
func MapRangeClamped(inMin, inMax, outMin, outMax, v float64) float64 {
	if inMax == inMin {
		if v >= inMax {
			return outMax
		}
		return outMin
	}
	t := Clamp((v-inMin)/(inMax-inMin), 0, 1)
	return outMin + (outMax-outMin)*t
}

// CeilInt rounds up to the nearest integer.
func CeilInt(v float64) int {
	return int(math.Ceil(v))
}
