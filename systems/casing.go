package systems

import (
	"github.com/automoto/blaster-mp/archetypes"
	"github.com/automoto/blaster-mp/components"
	cfg "github.com/automoto/blaster-mp/config"
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// Random spread of the eject direction
const casingJitter = 0.2

// SpawnCasing ejects a spent shell from c's weapon. Casings are cosmetic and
// never leave the peer that spawned them.
func (s *Sim) SpawnCasing(c *donburi.Entry, spec cfg.WeaponSpec) *donburi.Entry {
	tr := components.Transform.Get(c)
	at := tr.Position.Add(spec.EjectOffset.RotateYaw(tr.Yaw))

	dir := gamemath.Forward(tr.Yaw+90, 0)
	dir.X += s.jitter()
	dir.Y += s.jitter()
	dir.Z = 0.5 + s.jitter()

	e := archetypes.Casing.Spawn(s.World)
	components.Transform.SetValue(e, components.TransformData{Position: at, Yaw: tr.Yaw})
	ent := e.Entity()
	components.Casing.SetValue(e, components.CasingData{
		Velocity: dir.Normalize().Scale(cfg.Combat.CasingEjectSpeed),
		Expire: s.Timers.After(cfg.Combat.CasingLifetime, func() {
			if s.World.Valid(ent) {
				s.World.Remove(ent)
			}
		}),
	})
	return e
}

func (s *Sim) jitter() float64 {
	return (s.rand.Float64()*2 - 1) * casingJitter
}

// updateCasings drops shells to the floor. The first touch plays the shell
// sound; after that they lie still until they expire.
func (s *Sim) updateCasings(_ *ecs.ECS) {
	dt := s.dt.Seconds()
	for e := range components.Casing.Iter(s.World) {
		cs := components.Casing.Get(e)
		if cs.DidHit {
			continue
		}
		tr := components.Transform.Get(e)
		cs.Velocity.Z -= cfg.Combat.CasingGravity * dt
		tr.Position = tr.Position.Add(cs.Velocity.Scale(dt))
		if tr.Position.Z > 0 {
			continue
		}
		tr.Position.Z = 0
		cs.Velocity = gamemath.Vec3{}
		cs.DidHit = true
		s.services.Effects.PlaySound(cfg.SoundCasingHit, tr.Position)
	}
}
