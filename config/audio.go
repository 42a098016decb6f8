package config

// SoundID represents a logical sound effect
type SoundID int

const (
	SoundNone SoundID = iota
	// Weapon sounds
	SoundRifleFire
	SoundPistolFire
	SoundProjectileImpact
	SoundCasingHit
	SoundPickup
	// Combatant sounds
	SoundHitReact
	SoundElim
)

// SoundConfig maps sound IDs to cue names the effects service resolves
type SoundConfig struct {
	Cues              map[SoundID]string
	VolumeMultipliers map[SoundID]float64
	FireSounds        map[string]SoundID // Weapon kind to fire sound
}

var Sound SoundConfig

// FireSound returns the fire sound of a weapon kind.
func FireSound(kind string) SoundID {
	if id, ok := Sound.FireSounds[kind]; ok {
		return id
	}
	return SoundRifleFire
}

// SoundVolume returns the volume multiplier of a sound, 1 when unset.
func SoundVolume(id SoundID) float64 {
	if v, ok := Sound.VolumeMultipliers[id]; ok {
		return v
	}
	return 1
}

func init() {
	Sound = SoundConfig{
		Cues: map[SoundID]string{
			SoundRifleFire:        "sfx/rifle_fire",
			SoundPistolFire:       "sfx/pistol_fire",
			SoundProjectileImpact: "sfx/bullet_impact",
			SoundCasingHit:        "sfx/shell_casing",
			SoundPickup:           "sfx/weapon_pickup",
			SoundHitReact:         "sfx/hit_react",
			SoundElim:             "sfx/elim",
		},
		VolumeMultipliers: map[SoundID]float64{
			SoundCasingHit: 0.5,
		},
		FireSounds: map[string]SoundID{
			"assault_rifle": SoundRifleFire,
			"scout_rifle":   SoundRifleFire,
			"pistol":        SoundPistolFire,
		},
	}
}
