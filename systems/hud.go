package systems

import (
	"github.com/automoto/blaster-mp/components"
	cfg "github.com/automoto/blaster-mp/config"
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi/ecs"
)

// crosshairInput is everything one crosshair step depends on.
type crosshairInput struct {
	Speed    float64 // Horizontal speed
	MaxSpeed float64
	InAir    bool
	Aiming   bool
	OnTarget bool
	Dt       float64
}

// stepCrosshair advances the spread factors by one frame. The result only
// depends on ch and in.
func stepCrosshair(ch *components.CrosshairData, in crosshairInput) {
	c := cfg.Crosshair

	ch.VelocityFactor = gamemath.MapRangeClamped(0, in.MaxSpeed, 0, 1, in.Speed)

	if in.InAir {
		ch.InAirFactor = gamemath.InterpTo(ch.InAirFactor, c.InAirTarget, in.Dt, c.InAirInterpRate)
	} else {
		ch.InAirFactor = gamemath.InterpTo(ch.InAirFactor, 0, in.Dt, c.GroundInterpRate)
	}

	if in.Aiming {
		ch.AimFactor = gamemath.InterpTo(ch.AimFactor, c.AimTarget, in.Dt, c.AimInterpRate)
	} else {
		ch.AimFactor = gamemath.InterpTo(ch.AimFactor, 0, in.Dt, c.AimInterpRate)
	}

	if in.OnTarget {
		ch.OnTargetFactor = gamemath.InterpTo(ch.OnTargetFactor, c.OnTargetTarget, in.Dt, c.OnTargetInterpRate)
		ch.Color = c.OnTargetColor
	} else {
		ch.OnTargetFactor = gamemath.InterpTo(ch.OnTargetFactor, 0, in.Dt, c.OnTargetInterpRate)
		ch.Color = c.DefaultColor
	}

	if ch.Shooting != nil {
		v, done := ch.Shooting.Update(float32(in.Dt))
		ch.ShootingFactor = float64(v)
		if done {
			ch.ShootingFactor = 0
			ch.Shooting = nil
		}
	}

	ch.Spread = c.BaseSpread +
		ch.VelocityFactor +
		ch.InAirFactor -
		ch.AimFactor -
		ch.OnTargetFactor +
		ch.ShootingFactor
}

// pulseShooting kicks the spread open on a shot; it decays back on its own.
func pulseShooting(ch *components.CrosshairData) {
	c := cfg.Crosshair
	ch.ShootingFactor = c.ShootingPulse
	ch.Shooting = gween.New(float32(c.ShootingPulse), 0, float32(c.ShootingDecay.Seconds()), ease.OutQuad)
}

// stepFOV zooms toward the weapon's zoomed FOV while aiming and back to the
// default otherwise.
func stepFOV(fov float64, aiming bool, spec cfg.WeaponSpec, dt float64) float64 {
	if aiming {
		return gamemath.InterpTo(fov, spec.ZoomedFOV, dt, spec.ZoomInterpSpeed)
	}
	return gamemath.InterpTo(fov, cfg.Crosshair.DefaultFOV, dt, cfg.Crosshair.ZoomInterpSpeed)
}

// updateHUD drives the local combatant's crosshair and camera zoom.
func (s *Sim) updateHUD(_ *ecs.ECS) {
	c, ok := s.LocalCombatant()
	if !ok || !c.HasComponent(components.Crosshair) {
		return
	}
	ch := components.Crosshair.Get(c)
	spec, _, armed := s.EquippedWeaponSpec(c)
	if !armed || components.Elim.Get(c).Elimmed {
		s.services.HUD.SetHUDPackage(HUDPackage{})
		return
	}

	s.TraceUnderCrosshairs(c)
	combat := components.Combat.Get(c)
	mv := components.Movement.Get(c)
	maxSpeed := mv.MaxWalkSpeed
	if mv.Crouched {
		maxSpeed = cfg.Combatant.CrouchWalkSpeed
	}

	dt := s.dt.Seconds()
	stepCrosshair(ch, crosshairInput{
		Speed:    mv.Velocity.Len2D(),
		MaxSpeed: maxSpeed,
		InAir:    mv.InAir,
		Aiming:   combat.Aiming,
		OnTarget: combat.OnTarget,
		Dt:       dt,
	})
	ch.FOV = stepFOV(ch.FOV, combat.Aiming, spec, dt)
	s.services.Camera.SetFOV(ch.FOV)

	s.services.HUD.SetHUDPackage(HUDPackage{
		Crosshairs: spec.Crosshairs,
		Spread:     ch.Spread,
		Color:      ch.Color,
	})
}
