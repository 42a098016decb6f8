package gamemath

import "math"

const radToDeg = 180 / math.Pi

// NormalizeAxis wraps an angle in degrees into (-180, 180].
func NormalizeAxis(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg > 180 {
		deg -= 360
	}
	return deg
}

// ClampAxis wraps an angle in degrees into [0, 360). This is the range pitch
// and yaw arrive in after wire compression.
func ClampAxis(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// DeltaAngle is the shortest signed rotation from b to a, in (-180, 180].
func DeltaAngle(a, b float64) float64 {
	return NormalizeAxis(a - b)
}

// LerpAngle interpolates between two angles along the shortest arc.
func LerpAngle(from, to, t float64) float64 {
	return from + DeltaAngle(to, from)*t
}

// Rotation returns the yaw and pitch that point along dir.
func Rotation(dir Vec3) (yaw, pitch float64) {
	yaw = math.Atan2(dir.Y, dir.X) * radToDeg
	pitch = math.Atan2(dir.Z, dir.Len2D()) * radToDeg
	return yaw, pitch
}

// Forward returns the unit vector for a yaw/pitch pair.
func Forward(yaw, pitch float64) Vec3 {
	sy, cy := math.Sincos(yaw / radToDeg)
	sp, cp := math.Sincos(pitch / radToDeg)
	return Vec3{X: cp * cy, Y: cp * sy, Z: sp}
}

// UncompressPitch maps a pitch received in [0, 360) back to [-90, 90]. Values
// in [270, 360) are downward pitches and become [-90, 0).
func UncompressPitch(pitch float64) float64 {
	if pitch > 90 {
		return MapRangeClamped(270, 360, -90, 0, pitch)
	}
	return pitch
}
