package components

import (
	"image/color"

	"github.com/tanema/gween"
	"github.com/yohamta/donburi"
)

// CrosshairData is the locally controlled combatant's HUD feedback state.
// It is never replicated.
type CrosshairData struct {
	VelocityFactor float64
	InAirFactor    float64
	AimFactor      float64
	ShootingFactor float64
	OnTargetFactor float64
	Spread         float64

	// Shooting decays the shooting factor after a fire pulse
	Shooting *gween.Tween

	FOV   float64
	Color color.RGBA
}

var Crosshair = donburi.NewComponentType[CrosshairData]()
