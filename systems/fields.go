package systems

import (
	"log"

	"github.com/automoto/blaster-mp/components"
	"github.com/automoto/blaster-mp/replication"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/yohamta/donburi"
)

// Replicated field IDs. Never renumber; peers of the same protocol version
// must agree on them.
const (
	FieldEquippedWeapon netconfig.FieldID = iota + 1
	FieldAiming
	FieldHealth
	FieldOverlappingWeapon
	FieldWeaponState
	FieldWeaponOwner
)

func (s *Sim) newFieldRegistry() *replication.Registry {
	r := replication.NewRegistry()
	err := r.Register(
		replication.NewField(FieldEquippedWeapon, "EquippedWeapon", replication.ToAll, replication.Binding[netconfig.EntityID]{
			Get: func(e *donburi.Entry) (netconfig.EntityID, bool) {
				if !e.HasComponent(components.Combat) {
					return netconfig.NoEntity, false
				}
				return components.Combat.Get(e).EquippedWeapon, true
			},
			Set: func(e *donburi.Entry, v netconfig.EntityID) {
				components.Combat.Get(e).EquippedWeapon = v
			},
			OnChanged: s.onRepEquippedWeapon,
		}),
		replication.NewField(FieldAiming, "Aiming", replication.ToAll, replication.Binding[bool]{
			Get: func(e *donburi.Entry) (bool, bool) {
				if !e.HasComponent(components.Combat) {
					return false, false
				}
				return components.Combat.Get(e).Aiming, true
			},
			Set: func(e *donburi.Entry, v bool) {
				components.Combat.Get(e).Aiming = v
			},
			OnChanged: s.onRepAiming,
		}),
		replication.NewField(FieldHealth, "Health", replication.ToAll, replication.Binding[float64]{
			Get: func(e *donburi.Entry) (float64, bool) {
				if !e.HasComponent(components.Health) {
					return 0, false
				}
				return components.Health.Get(e).Current, true
			},
			Set: func(e *donburi.Entry, v float64) {
				components.Health.Get(e).Current = v
			},
			OnChanged: s.onRepHealth,
		}),
		replication.NewField(FieldOverlappingWeapon, "OverlappingWeapon", replication.OwnerOnly, replication.Binding[netconfig.EntityID]{
			Get: func(e *donburi.Entry) (netconfig.EntityID, bool) {
				if !e.HasComponent(components.Overlap) {
					return netconfig.NoEntity, false
				}
				return components.Overlap.Get(e).Weapon, true
			},
			Set: func(e *donburi.Entry, v netconfig.EntityID) {
				components.Overlap.Get(e).Weapon = v
			},
			OnChanged: s.onRepOverlappingWeapon,
		}),
		replication.NewField(FieldWeaponState, "WeaponState", replication.ToAll, replication.Binding[netconfig.WeaponState]{
			Get: func(e *donburi.Entry) (netconfig.WeaponState, bool) {
				if !e.HasComponent(components.Weapon) {
					return netconfig.WeaponInitial, false
				}
				return components.Weapon.Get(e).State, true
			},
			Set: func(e *donburi.Entry, v netconfig.WeaponState) {
				components.Weapon.Get(e).State = v
			},
			OnChanged: func(e *donburi.Entry, _, _ netconfig.WeaponState) {
				s.applyWeaponState(e)
			},
		}),
		replication.NewField(FieldWeaponOwner, "WeaponOwner", replication.ToAll, replication.Binding[netconfig.EntityID]{
			Get: func(e *donburi.Entry) (netconfig.EntityID, bool) {
				if !e.HasComponent(components.Weapon) {
					return netconfig.NoEntity, false
				}
				return components.Weapon.Get(e).Owner, true
			},
			Set: func(e *donburi.Entry, v netconfig.EntityID) {
				components.Weapon.Get(e).Owner = v
			},
		}),
	)
	if err != nil {
		// Only reachable by a duplicate ID in the list above.
		log.Printf("[replication] %v", err)
	}
	return r
}
