package systems

import (
	"fmt"

	"github.com/automoto/blaster-mp/components"
	cfg "github.com/automoto/blaster-mp/config"
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// processDamage consumes queued damage events. Authority only; proxies learn
// about damage through the replicated health field.
func (s *Sim) processDamage(_ *ecs.ECS) {
	if !s.authority {
		return
	}
	type pending struct {
		entry *donburi.Entry
		event components.DamageEventData
	}
	var queue []pending
	for e := range components.DamageEvent.Iter(s.World) {
		queue = append(queue, pending{entry: e, event: *components.DamageEvent.Get(e)})
	}
	for _, p := range queue {
		if !p.entry.Valid() {
			continue
		}
		donburi.Remove[components.DamageEventData](p.entry, components.DamageEvent)
		s.ReceiveDamage(p.entry, p.event.Amount, p.event.Instigator)
	}
}

// ReceiveDamage applies damage to combatant c. Health is clamped to
// [0, Max]; reaching zero hands the combatant to the game mode, once.
func (s *Sim) ReceiveDamage(c *donburi.Entry, amount float64, instigator netconfig.EntityID) {
	if !s.authority {
		return
	}
	h := components.Health.Get(c)
	if components.Elim.Get(c).Elimmed || h.Current <= 0 {
		return
	}

	h.Current = gamemath.Clamp(h.Current-amount, 0, h.Max)
	if s.IsLocallyControlled(c) {
		s.updateHUDHealth(c)
	}
	s.playHitReact(c)

	if h.Current == 0 {
		s.gameMode.PlayerEliminated(s, idOf(c), instigator)
	}
}

func (s *Sim) onRepHealth(c *donburi.Entry, _, _ float64) {
	if s.IsLocallyControlled(c) {
		s.updateHUDHealth(c)
	}
	s.playHitReact(c)
}

// playHitReact needs a weapon in hand, like every upper-body montage.
func (s *Sim) playHitReact(c *donburi.Entry) {
	if components.Combat.Get(c).EquippedWeapon == netconfig.NoEntity {
		return
	}
	s.services.Animator.PlayMontage(idOf(c), cfg.MontageHitReact, cfg.SectionFromFront)
	s.services.Effects.PlaySound(cfg.SoundHitReact, components.Transform.Get(c).Position)
}

// HealthText formats health the way the HUD shows it.
func HealthText(current, max float64) string {
	return fmt.Sprintf("%d/%d", gamemath.CeilInt(current), gamemath.CeilInt(max))
}

func (s *Sim) updateHUDHealth(c *donburi.Entry) {
	h := components.Health.Get(c)
	percent := 0.0
	if h.Max > 0 {
		percent = h.Current / h.Max
	}
	s.services.HUD.SetHealth(HealthText(h.Current, h.Max), percent)
}
