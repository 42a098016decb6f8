package config

import "testing"

func TestSoundVolume(t *testing.T) {
	tests := []struct {
		id   SoundID
		want float64
	}{
		{SoundCasingHit, 0.5},
		{SoundRifleFire, 1},
		{SoundNone, 1},
	}
	for _, tt := range tests {
		if got := SoundVolume(tt.id); got != tt.want {
			t.Errorf("SoundVolume(%d) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
