package systems

import (
	"github.com/automoto/blaster-mp/components"
	cfg "github.com/automoto/blaster-mp/config"
	"github.com/automoto/blaster-mp/physics"
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/automoto/blaster-mp/shared/messages"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// spawnProjectile launches a projectile from the muzzle toward target. The
// direction is taken from the muzzle, not from the trace origin, so a target
// closer than the muzzle offset can send the projectile sideways.
func (s *Sim) spawnProjectile(c, w *donburi.Entry, spec cfg.WeaponSpec, muzzle, target gamemath.Vec3) *donburi.Entry {
	dir := target.Sub(muzzle).Normalize()
	if dir.IsZero() {
		dir = gamemath.Forward(components.Transform.Get(c).Yaw, 0)
	}
	yaw, _ := gamemath.Rotation(dir)

	msg := messages.EntitySpawned{
		ID:       s.allocateID(),
		Kind:     netconfig.KindProjectile,
		Owner:    components.NetID.Get(c).Owner,
		Position: muzzle,
		Yaw:      yaw,
	}
	e := s.createProjectile(msg, components.ProjectileData{
		Instigator: idOf(c),
		Weapon:     idOf(w),
		Damage:     spec.Damage,
		Velocity:   dir.Scale(spec.ProjectileSpeed),
	})

	id := msg.ID
	components.Projectile.Get(e).Lifetime = s.Timers.After(spec.ProjectileLifetime, func() {
		s.DestroyEntity(id)
	})
	s.spawned(e, msg)
	return e
}

// updateProjectiles sweeps every projectile along its velocity. The first
// wall or combatant in the way stops it; a combatant other than the
// instigator takes its damage. Authority only.
func (s *Sim) updateProjectiles(_ *ecs.ECS) {
	if !s.authority {
		return
	}
	dt := s.dt.Seconds()
	var spent []projectileHit

	for e := range components.Projectile.Iter(s.World) {
		p := components.Projectile.Get(e)
		tr := components.Transform.Get(e)
		start := tr.Position
		end := start.Add(p.Velocity.Scale(dt))

		var ignore []*physics.Body
		if inst, ok := s.Entry(p.Instigator); ok {
			ignore = append(ignore, components.Body.Get(inst).Body)
		}

		hit, ok := s.Physics.LineTrace(start, end, ignore, physics.TagSolid, physics.TagCombatant)
		if !ok {
			tr.Position = end
			continue
		}
		tr.Position = hit.Point
		spent = append(spent, projectileHit{
			projectile: idOf(e),
			victim:     hit.Body.Entity,
			instigator: p.Instigator,
			damage:     p.Damage,
		})
	}

	// Damage is queued after the sweep so no entity changes archetype while
	// the projectile query is being iterated.
	for _, h := range spent {
		if h.victim != netconfig.NoEntity && h.victim != h.instigator {
			if victim, ok := s.Entry(h.victim); ok && victim.HasComponent(components.Health) {
				applyDamage(victim, h.damage, h.instigator)
			}
		}
		s.DestroyEntity(h.projectile)
	}
}

type projectileHit struct {
	projectile netconfig.EntityID
	victim     netconfig.EntityID
	instigator netconfig.EntityID
	damage     float64
}

// applyDamage queues damage on victim for processDamage. Several hits in one
// tick add up; the last instigator gets the credit.
func applyDamage(victim *donburi.Entry, amount float64, instigator netconfig.EntityID) {
	if victim.HasComponent(components.DamageEvent) {
		ev := components.DamageEvent.Get(victim)
		ev.Amount += amount
		ev.Instigator = instigator
		return
	}
	donburi.Add(victim, components.DamageEvent, &components.DamageEventData{
		Amount:     amount,
		Instigator: instigator,
	})
}
