package systems

import (
	"math"

	"github.com/automoto/blaster-mp/components"
	cfg "github.com/automoto/blaster-mp/config"
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// updateOrientation computes aim offsets. The controlling peer derives them
// from its own view; everyone else reacts to replicated movement, or to its
// absence for longer than the replication timeout.
func (s *Sim) updateOrientation(_ *ecs.ECS) {
	dt := s.dt.Seconds()
	for e := range components.Orientation.Iter(s.World) {
		if s.IsLocallyControlled(e) {
			s.AimOffset(e, dt)
			continue
		}
		o := components.Orientation.Get(e)
		o.SinceMovementRep += s.dt
		if o.SinceMovementRep > cfg.Orientation.MovementRepTimeout {
			s.OnRepReplicatedMovement(e)
		}
		s.CalculateAOPitch(e)
	}
}

// AimOffset splits the view rotation into a body facing and an upper body
// offset. Standing still, the body holds its facing until the offset passes
// the turn threshold; moving or airborne, it follows the view.
func (s *Sim) AimOffset(c *donburi.Entry, dt float64) {
	if components.Combat.Get(c).EquippedWeapon == netconfig.NoEntity {
		return
	}
	o := components.Orientation.Get(c)
	mv := components.Movement.Get(c)
	aimYaw := components.Transform.Get(c).AimYaw

	if mv.Velocity.Len2D() == 0 && !mv.InAir {
		o.RotateRootBone = true
		o.AOYaw = gamemath.DeltaAngle(aimYaw, o.StartingAimYaw)
		if o.Turning == netconfig.NotTurning {
			o.InterpAOYaw = o.AOYaw
		}
		mv.UseControllerYaw = true
		TurnInPlace(o, aimYaw, dt)
	} else {
		o.RotateRootBone = false
		o.StartingAimYaw = aimYaw
		o.AOYaw = 0
		mv.UseControllerYaw = true
		o.Turning = netconfig.NotTurning
	}

	s.CalculateAOPitch(c)
}

// TurnInPlace starts a turn once the aim offset passes the threshold and
// eases the offset back to zero until the turn completes.
func TurnInPlace(o *components.OrientationData, aimYaw, dt float64) {
	c := cfg.Orientation
	switch {
	case o.AOYaw > c.TurnThreshold:
		o.Turning = netconfig.TurnRight
	case o.AOYaw < -c.TurnThreshold:
		o.Turning = netconfig.TurnLeft
	}
	if o.Turning == netconfig.NotTurning {
		return
	}

	o.InterpAOYaw = gamemath.InterpTo(o.InterpAOYaw, 0, dt, c.TurnInterpSpeed)
	o.AOYaw = o.InterpAOYaw
	if math.Abs(o.AOYaw) < c.TurnStopAngle {
		o.Turning = netconfig.NotTurning
		o.StartingAimYaw = aimYaw
	}
}

// CalculateAOPitch takes the pitch offset from the view. Pitch from other
// peers arrives compressed to [0, 360) and is mapped back to [-90, 90].
func (s *Sim) CalculateAOPitch(c *donburi.Entry) {
	o := components.Orientation.Get(c)
	o.AOPitch = components.Transform.Get(c).AimPitch
	if o.AOPitch > 90 && !s.IsLocallyControlled(c) {
		o.AOPitch = gamemath.UncompressPitch(o.AOPitch)
	}
}

// SimProxiesTurn picks a turn animation for a combatant this peer does not
// control, from how far its facing moved since the last update.
func (s *Sim) SimProxiesTurn(c *donburi.Entry) {
	if components.Combat.Get(c).EquippedWeapon == netconfig.NoEntity {
		return
	}
	o := components.Orientation.Get(c)
	o.RotateRootBone = false
	if components.Movement.Get(c).Velocity.Len2D() > 0 {
		o.Turning = netconfig.NotTurning
		return
	}

	o.ProxyRotationLastFrame = o.ProxyRotation
	o.ProxyRotation = components.Transform.Get(c).Yaw
	o.ProxyYaw = gamemath.DeltaAngle(o.ProxyRotation, o.ProxyRotationLastFrame)

	switch {
	case math.Abs(o.ProxyYaw) <= cfg.Orientation.ProxyTurnThreshold:
		o.Turning = netconfig.NotTurning
	case o.ProxyYaw > 0:
		o.Turning = netconfig.TurnRight
	default:
		o.Turning = netconfig.TurnLeft
	}
}

// OnRepReplicatedMovement runs whenever a movement update for c arrives.
func (s *Sim) OnRepReplicatedMovement(c *donburi.Entry) {
	s.SimProxiesTurn(c)
	components.Orientation.Get(c).SinceMovementRep = 0
}
