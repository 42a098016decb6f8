package systems

import (
	"log"

	"github.com/automoto/blaster-mp/components"
	cfg "github.com/automoto/blaster-mp/config"
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/automoto/blaster-mp/shared/messages"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi/ecs"
)

// GameMode arbitrates eliminations and respawns. It only runs on the
// authority.
type GameMode interface {
	PlayerEliminated(s *Sim, victim, attacker netconfig.EntityID)
	RequestRespawn(s *Sim, victim netconfig.EntityID)
}

// FreeForAll scores one point per elimination and respawns everyone.
type FreeForAll struct {
	Scores map[netconfig.PeerID]int
	Deaths map[netconfig.PeerID]int
}

func NewFreeForAll() *FreeForAll {
	return &FreeForAll{
		Scores: make(map[netconfig.PeerID]int),
		Deaths: make(map[netconfig.PeerID]int),
	}
}

func (m *FreeForAll) PlayerEliminated(s *Sim, victim, attacker netconfig.EntityID) {
	v, ok := s.Entry(victim)
	if !ok {
		return
	}
	m.Deaths[components.NetID.Get(v).Owner]++
	if a, ok := s.Entry(attacker); ok && attacker != victim {
		m.Scores[components.NetID.Get(a).Owner]++
	}
	s.Elim(victim, attacker)
}

func (m *FreeForAll) RequestRespawn(s *Sim, victim netconfig.EntityID) {
	s.Respawn(victim)
}

// Elim starts the elimination of a combatant: its weapon drops, every peer
// plays the elimination and a respawn is scheduled. Authority only; a
// combatant is eliminated at most once per life.
func (s *Sim) Elim(id, attacker netconfig.EntityID) {
	if !s.authority {
		return
	}
	c, ok := s.Entry(id)
	if !ok {
		return
	}
	el := components.Elim.Get(c)
	if el.Elimmed || s.Timers.Active(el.RespawnTimer) {
		return
	}

	s.DropWeapon(c)
	s.Multicast(messages.ElimEvent{Entity: id})
	el.RespawnTimer = s.Timers.After(cfg.Combat.ElimDelay, func() {
		s.gameMode.RequestRespawn(s, id)
	})
	if s.hooks.Eliminated != nil {
		s.hooks.Eliminated(id, attacker)
	}
}

// HandleElimEvent plays an elimination on this peer.
func (s *Sim) HandleElimEvent(msg messages.ElimEvent) {
	c, ok := s.Entry(msg.Entity)
	if !ok {
		log.Printf("[elim] elim event for unknown entity %d", msg.Entity)
		return
	}
	el := components.Elim.Get(c)
	if el.Elimmed {
		return
	}
	el.Elimmed = true
	el.Dissolve = gween.New(0, 1, float32(cfg.Combat.DissolveDuration.Seconds()), ease.Linear)

	s.services.Animator.PlayMontage(msg.Entity, cfg.MontageElim, cfg.SectionDefault)
	s.services.Effects.PlaySound(cfg.SoundElim, components.Transform.Get(c).Position)

	mv := components.Movement.Get(c)
	mv.Disabled = true
	mv.Velocity = gamemath.Vec3{}
	mv.WishDir = gamemath.Vec3{}
	components.Body.Get(c).Body.SetEnabled(false)

	combat := components.Combat.Get(c)
	combat.FireButtonPressed = false
	combat.Aiming = false
}

// Respawn replaces an eliminated combatant with a fresh one for the same
// owner at a random spawn point.
func (s *Sim) Respawn(id netconfig.EntityID) {
	if !s.authority {
		return
	}
	c, ok := s.Entry(id)
	if !ok {
		return
	}
	if len(s.spawnPoints) == 0 {
		log.Printf("[elim] no spawn points, combatant %d stays down", id)
		return
	}
	owner := components.NetID.Get(c).Owner
	name := components.Combatant.Get(c).Name

	s.DestroyEntity(id)
	e := s.SpawnCombatant(owner, name, s.rand.Intn(len(s.spawnPoints)))
	log.Printf("[elim] %s respawned as entity %d", name, idOf(e))
}

// updateDissolve advances elimination dissolves.
func (s *Sim) updateDissolve(_ *ecs.ECS) {
	dt := float32(s.dt.Seconds())
	for e := range components.Elim.Iter(s.World) {
		el := components.Elim.Get(e)
		if el.Dissolve == nil {
			continue
		}
		v, done := el.Dissolve.Update(dt)
		el.DissolveValue = float64(v)
		s.services.Effects.SetDissolve(idOf(e), el.DissolveValue)
		if done {
			el.Dissolve = nil
		}
	}
}
