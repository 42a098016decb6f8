package netcomponents

import (
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/automoto/blaster-mp/shared/messages"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/yohamta/donburi"
)

// NetTransformData is the snapshot-synced movement state of a combatant or
// projectile.
type NetTransformData struct {
	X, Y, Z    float64
	VX, VY, VZ float64
	Yaw        float64
	AimYaw     float64
	AimPitch   float64
	InAir      bool
	Crouched   bool
}

var NetTransform = donburi.NewComponentType[NetTransformData]()

// LerpNetTransform interpolates position linearly and angles along the
// shortest arc. Discrete flags snap to the newer snapshot.
func LerpNetTransform(from, to NetTransformData, t float64) *NetTransformData {
	pos := gamemath.V(from.X, from.Y, from.Z).Lerp(gamemath.V(to.X, to.Y, to.Z), t)
	return &NetTransformData{
		X:        pos.X,
		Y:        pos.Y,
		Z:        pos.Z,
		VX:       to.VX,
		VY:       to.VY,
		VZ:       to.VZ,
		Yaw:      gamemath.LerpAngle(from.Yaw, to.Yaw, t),
		AimYaw:   gamemath.LerpAngle(from.AimYaw, to.AimYaw, t),
		AimPitch: gamemath.ClampAxis(gamemath.LerpAngle(from.AimPitch, to.AimPitch, t)),
		InAir:    to.InAir,
		Crouched: to.Crouched,
	}
}

// FromEntityTransform packs a session transform for esync.
func FromEntityTransform(t messages.EntityTransform) NetTransformData {
	return NetTransformData{
		X:        t.Position.X,
		Y:        t.Position.Y,
		Z:        t.Position.Z,
		VX:       t.Velocity.X,
		VY:       t.Velocity.Y,
		VZ:       t.Velocity.Z,
		Yaw:      t.Yaw,
		AimYaw:   t.AimYaw,
		AimPitch: t.AimPitch,
		InAir:    t.InAir,
		Crouched: t.Crouched,
	}
}

// EntityTransform unpacks a synced transform for entity id.
func (d NetTransformData) EntityTransform(id netconfig.EntityID) messages.EntityTransform {
	return messages.EntityTransform{
		ID:       id,
		Position: gamemath.V(d.X, d.Y, d.Z),
		Velocity: gamemath.V(d.VX, d.VY, d.VZ),
		Yaw:      d.Yaw,
		AimYaw:   d.AimYaw,
		AimPitch: d.AimPitch,
		InAir:    d.InAir,
		Crouched: d.Crouched,
	}
}
