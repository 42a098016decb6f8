package systems

import (
	"github.com/automoto/blaster-mp/components"
	cfg "github.com/automoto/blaster-mp/config"
	"github.com/automoto/blaster-mp/physics"
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/automoto/blaster-mp/shared/messages"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// updateMovement simulates the combatants this peer controls. Clients then
// report the result to the authority, which accepts it as is.
func (s *Sim) updateMovement(_ *ecs.ECS) {
	dt := s.dt.Seconds()
	for e := range components.Movement.Iter(s.World) {
		if !s.IsLocallyControlled(e) {
			continue
		}
		s.move(e, dt)
		if !s.authority {
			s.moveSeq++
			s.out.Send(s.moveRequest(e))
		}
	}
}

func (s *Sim) move(e *donburi.Entry, dt float64) {
	mv := components.Movement.Get(e)
	tr := components.Transform.Get(e)
	if mv.Disabled {
		mv.Velocity = gamemath.Vec3{}
		return
	}

	speed := mv.MaxWalkSpeed
	if mv.Crouched {
		speed = cfg.Combatant.CrouchWalkSpeed
	}
	wish := gamemath.Vec3{X: mv.WishDir.X, Y: mv.WishDir.Y}
	if wish.Len() > 1 {
		wish = wish.Normalize()
	}
	mv.Velocity.X = wish.X * speed
	mv.Velocity.Y = wish.Y * speed

	if mv.Jump && !mv.InAir {
		mv.Velocity.Z = cfg.Combatant.JumpVelocity
		mv.InAir = true
	}
	mv.Jump = false
	if mv.InAir {
		mv.Velocity.Z -= cfg.Combatant.Gravity * dt
	}

	next := tr.Position.Add(mv.Velocity.Scale(dt))
	body := components.Body.Get(e).Body
	flat := gamemath.Vec3{X: next.X, Y: next.Y, Z: tr.Position.Z}
	if _, blocked := s.Physics.LineTrace(tr.Position, flat, []*physics.Body{body}, physics.TagSolid); blocked {
		next.X, next.Y = tr.Position.X, tr.Position.Y
		mv.Velocity.X, mv.Velocity.Y = 0, 0
	}

	ground := cfg.Combatant.CollisionHalfHeight
	if next.Z <= ground {
		next.Z = ground
		mv.Velocity.Z = 0
		mv.InAir = false
	}

	w, h := s.Physics.Size()
	r := cfg.Combatant.CollisionRadius
	next.X = gamemath.Clamp(next.X, r, w-r)
	next.Y = gamemath.Clamp(next.Y, r, h-r)

	tr.Position = next
	s.faceMovement(tr, mv)
	s.Physics.Move(body, next)
}

func (s *Sim) faceMovement(tr *components.TransformData, mv *components.MovementData) {
	switch {
	case mv.UseControllerYaw:
		tr.Yaw = tr.AimYaw
	case mv.OrientToMovement && mv.Velocity.Len2D() > 0:
		tr.Yaw, _ = gamemath.Rotation(gamemath.Vec3{X: mv.Velocity.X, Y: mv.Velocity.Y})
	}
}

func (s *Sim) moveRequest(e *donburi.Entry) messages.MoveRequest {
	mv := components.Movement.Get(e)
	tr := components.Transform.Get(e)
	return messages.MoveRequest{
		Sequence: s.moveSeq,
		Position: tr.Position,
		Velocity: mv.Velocity,
		AimYaw:   tr.AimYaw,
		AimPitch: gamemath.ClampAxis(tr.AimPitch),
		InAir:    mv.InAir,
		Crouched: mv.Crouched,
	}
}

// ApplyMove accepts a client's movement report for its combatant.
func (s *Sim) ApplyMove(c *donburi.Entry, req messages.MoveRequest) {
	if !s.authority {
		return
	}
	mv := components.Movement.Get(c)
	if mv.Disabled {
		return
	}
	tr := components.Transform.Get(c)
	tr.Position = req.Position
	tr.AimYaw = req.AimYaw
	tr.AimPitch = gamemath.ClampAxis(req.AimPitch)
	mv.Velocity = req.Velocity
	mv.InAir = req.InAir
	mv.Crouched = req.Crouched
	s.faceMovement(tr, mv)
	s.Physics.Move(components.Body.Get(c).Body, tr.Position)
}

// TransformOf captures the movement state of e for replication. Pitch goes
// out compressed to [0, 360).
func (s *Sim) TransformOf(e *donburi.Entry) messages.EntityTransform {
	tr := components.Transform.Get(e)
	t := messages.EntityTransform{
		ID:       idOf(e),
		Position: tr.Position,
		Yaw:      tr.Yaw,
		AimYaw:   tr.AimYaw,
		AimPitch: gamemath.ClampAxis(tr.AimPitch),
	}
	switch {
	case e.HasComponent(components.Movement):
		mv := components.Movement.Get(e)
		t.Velocity = mv.Velocity
		t.InAir = mv.InAir
		t.Crouched = mv.Crouched
	case e.HasComponent(components.Projectile):
		t.Velocity = components.Projectile.Get(e).Velocity
	}
	return t
}

// ApplyTransform applies replicated movement on a proxy. The combatant this
// peer controls keeps its own simulation.
func (s *Sim) ApplyTransform(t messages.EntityTransform) {
	e, ok := s.Entry(t.ID)
	if !ok || s.IsLocallyControlled(e) {
		return
	}
	tr := components.Transform.Get(e)
	tr.Position = t.Position
	tr.Yaw = t.Yaw
	tr.AimYaw = t.AimYaw
	tr.AimPitch = t.AimPitch

	if e.HasComponent(components.Body) {
		s.Physics.Move(components.Body.Get(e).Body, t.Position)
	}
	if e.HasComponent(components.Projectile) {
		components.Projectile.Get(e).Velocity = t.Velocity
	}
	if !e.HasComponent(components.Movement) {
		return
	}
	mv := components.Movement.Get(e)
	mv.Velocity = t.Velocity
	mv.InAir = t.InAir
	mv.Crouched = t.Crouched
	s.OnRepReplicatedMovement(e)
}
