package gamemath

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestInterpTo(t *testing.T) {
	tests := []struct {
		name                       string
		current, target, dt, speed float64
		want                       float64
	}{
		{"zero speed snaps", 0, 10, 0.016, 0, 10},
		{"tiny distance snaps", 1, 1 + 1e-5, 0.016, 30, 1 + 1e-5},
		{"partial step", 0, 10, 0.1, 2, 2},
		{"large step clamps", 0, 10, 1, 30, 10},
		{"moving down", 2.25, 0, 0.01, 30, 2.25 - 2.25*0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InterpTo(tt.current, tt.target, tt.dt, tt.speed)
			if !approx(got, tt.want) {
				t.Errorf("InterpTo(%v, %v, %v, %v) = %v, want %v",
					tt.current, tt.target, tt.dt, tt.speed, got, tt.want)
			}
		})
	}
}

func TestInterpToStaysBetween(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		current := rapid.Float64Range(-1000, 1000).Draw(t, "current")
		target := rapid.Float64Range(-1000, 1000).Draw(t, "target")
		dt := rapid.Float64Range(0, 1).Draw(t, "dt")
		speed := rapid.Float64Range(0, 60).Draw(t, "speed")

		got := InterpTo(current, target, dt, speed)
		lo, hi := math.Min(current, target), math.Max(current, target)
		if got < lo-1e-9 || got > hi+1e-9 {
			t.Fatalf("InterpTo left [%v, %v]: %v", lo, hi, got)
		}
	})
}

func TestMapRangeClamped(t *testing.T) {
	tests := []struct {
		v, want float64
	}{
		{-10, 0},
		{0, 0},
		{300, 0.5},
		{600, 1},
		{900, 1},
	}
	for _, tt := range tests {
		if got := MapRangeClamped(0, 600, 0, 1, tt.v); !approx(got, tt.want) {
			t.Errorf("MapRangeClamped(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestNormalizeAxis(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{180, 180},
		{-180, 180},
		{190, -170},
		{-190, 170},
		{720, 0},
		{359, -1},
	}
	for _, tt := range tests {
		if got := NormalizeAxis(tt.in); !approx(got, tt.want) {
			t.Errorf("NormalizeAxis(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDeltaAngleWraps(t *testing.T) {
	if got := DeltaAngle(10, 350); !approx(got, 20) {
		t.Errorf("DeltaAngle(10, 350) = %v, want 20", got)
	}
	if got := DeltaAngle(350, 10); !approx(got, -20) {
		t.Errorf("DeltaAngle(350, 10) = %v, want -20", got)
	}
}

func TestUncompressPitch(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{45, 45},
		{270, -90},
		{315, -45},
	}
	for _, tt := range tests {
		if got := UncompressPitch(tt.in); !approx(got, tt.want) {
			t.Errorf("UncompressPitch(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRotationRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		yaw := rapid.Float64Range(-179, 179).Draw(t, "yaw")
		pitch := rapid.Float64Range(-89, 89).Draw(t, "pitch")

		gotYaw, gotPitch := Rotation(Forward(yaw, pitch))
		if math.Abs(gotYaw-yaw) > 1e-6 || math.Abs(gotPitch-pitch) > 1e-6 {
			t.Fatalf("round trip (%v, %v) -> (%v, %v)", yaw, pitch, gotYaw, gotPitch)
		}
	})
}

func TestRotateYaw(t *testing.T) {
	got := V(1, 0, 5).RotateYaw(90)
	if !approx(got.X, 0) || !approx(got.Y, 1) || got.Z != 5 {
		t.Errorf("RotateYaw(90) = %+v", got)
	}
}
