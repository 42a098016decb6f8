package systems

import (
	"log"

	"github.com/automoto/blaster-mp/components"
	cfg "github.com/automoto/blaster-mp/config"
	"github.com/automoto/blaster-mp/physics"
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/automoto/blaster-mp/shared/messages"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// Height of a weapon lying on the ground
const weaponRestHeight = 30

// SetWeaponState moves weapon w to state on behalf of owner. Only the
// authority changes weapon state, and only along legal transitions.
func (s *Sim) SetWeaponState(w *donburi.Entry, state netconfig.WeaponState, owner netconfig.EntityID) bool {
	if !s.authority {
		log.Printf("[weapon] SetWeaponState(%s) without authority", state)
		return false
	}
	wd := components.Weapon.Get(w)
	if !wd.State.CanTransition(state) {
		log.Printf("[weapon] rejected transition %s -> %s for weapon %d", wd.State, state, idOf(w))
		return false
	}

	wd.State = state
	switch state {
	case netconfig.WeaponEquipped:
		wd.Owner = owner
		s.Timers.Cancel(wd.DropTimer)
		wd.DropTimer = 0
	case netconfig.WeaponDropped:
		wd.Owner = netconfig.NoEntity
		id := idOf(w)
		wd.DropTimer = s.Timers.After(cfg.Combat.DroppedWeaponLifetime, func() {
			s.dropTimerFinished(id)
		})
	}
	s.applyWeaponState(w)
	return true
}

// applyWeaponState derives the weapon's physics and presentation from its
// state. It is idempotent and runs on every peer whenever the state or owner
// changes.
func (s *Sim) applyWeaponState(w *donburi.Entry) {
	wd := components.Weapon.Get(w)
	body := components.Body.Get(w).Body

	switch wd.State {
	case netconfig.WeaponEquipped:
		wd.PhysicsEnabled = false
		wd.QueryCollision = false
		wd.Attached = true
		s.setPickupWidget(w, false)
	case netconfig.WeaponDropped:
		wd.PhysicsEnabled = true
		wd.QueryCollision = true
		wd.Attached = false
	default:
		wd.PhysicsEnabled = false
		wd.QueryCollision = false
		wd.Attached = false
	}

	if body != nil {
		body.SetEnabled(wd.QueryCollision)
	}
	if wd.Sphere != nil {
		wd.Sphere.SetEnabled(wd.State != netconfig.WeaponEquipped)
	}
}

func (s *Sim) setPickupWidget(w *donburi.Entry, visible bool) {
	wd := components.Weapon.Get(w)
	if wd.PickupWidgetVisible == visible {
		return
	}
	wd.PickupWidgetVisible = visible
	s.services.HUD.ShowPickupWidget(idOf(w), visible)
}

func (s *Sim) dropTimerFinished(id netconfig.EntityID) {
	w, ok := s.Entry(id)
	if !ok {
		return
	}
	if components.Weapon.Get(w).State != netconfig.WeaponDropped {
		return
	}
	log.Printf("[weapon] dropped weapon %d expired", id)
	s.DestroyEntity(id)
}

// EquipPressed is the equip input of combatant c.
func (s *Sim) EquipPressed(c *donburi.Entry) {
	if s.authority {
		s.ServerEquip(c)
		return
	}
	s.out.Send(messages.EquipRequest{})
}

// ServerEquip equips the weapon c overlaps, checking that the overlap still
// holds now that the request has arrived.
func (s *Sim) ServerEquip(c *donburi.Entry) {
	if !s.authority {
		return
	}
	wid := components.Overlap.Get(c).Weapon
	w, ok := s.Entry(wid)
	if !ok {
		log.Printf("[weapon] combatant %d has no weapon in range", idOf(c))
		return
	}
	sphere := components.Weapon.Get(w).Sphere
	if !s.Physics.Touching(sphere, components.Body.Get(c).Body) {
		log.Printf("[weapon] combatant %d is no longer overlapping weapon %d", idOf(c), wid)
		return
	}
	s.EquipWeapon(c, w)
}

// EquipWeapon puts w in c's hand, dropping whatever c held before.
func (s *Sim) EquipWeapon(c, w *donburi.Entry) {
	if !s.authority {
		return
	}
	if components.Elim.Get(c).Elimmed {
		return
	}
	combat := components.Combat.Get(c)
	wid := idOf(w)
	if combat.EquippedWeapon == wid {
		return
	}
	if combat.EquippedWeapon != netconfig.NoEntity {
		s.DropWeapon(c)
	}
	if !s.SetWeaponState(w, netconfig.WeaponEquipped, idOf(c)) {
		return
	}
	combat.EquippedWeapon = wid
	s.onEquippedWeaponChanged(c)
	s.attach(w, c)
	s.services.Effects.PlaySound(cfg.SoundPickup, components.Transform.Get(c).Position)
}

// DropWeapon releases c's weapon in front of it.
func (s *Sim) DropWeapon(c *donburi.Entry) {
	if !s.authority {
		return
	}
	combat := components.Combat.Get(c)
	w, ok := s.Entry(combat.EquippedWeapon)
	combat.EquippedWeapon = netconfig.NoEntity
	combat.Aiming = false
	s.onEquippedWeaponChanged(c)
	if !ok {
		return
	}

	tr := components.Transform.Get(c)
	at := tr.Position.Add(gamemath.Forward(tr.Yaw, 0).Scale(cfg.Combat.DropDistance))
	at.Z = weaponRestHeight
	s.placeWeapon(w, at)
	s.SetWeaponState(w, netconfig.WeaponDropped, netconfig.NoEntity)
}

// onEquippedWeaponChanged switches the combatant between strafing with the
// camera and turning toward its movement.
func (s *Sim) onEquippedWeaponChanged(c *donburi.Entry) {
	combat := components.Combat.Get(c)
	mv := components.Movement.Get(c)
	armed := combat.EquippedWeapon != netconfig.NoEntity
	mv.OrientToMovement = !armed
	mv.UseControllerYaw = armed
	s.applyWalkSpeed(c)
}

func (s *Sim) placeWeapon(w *donburi.Entry, at gamemath.Vec3) {
	components.Transform.Get(w).Position = at
	s.Physics.Move(components.Body.Get(w).Body, at)
	if sphere := components.Weapon.Get(w).Sphere; sphere != nil {
		s.Physics.Move(sphere, at)
	}
}

// attach snaps w to c's hand socket.
func (s *Sim) attach(w, c *donburi.Entry) {
	tr := components.Transform.Get(c)
	at := tr.Position.Add(cfg.Combatant.HandOffset.RotateYaw(tr.Yaw))
	wt := components.Transform.Get(w)
	wt.Position = at
	wt.Yaw = tr.Yaw
	s.Physics.Move(components.Body.Get(w).Body, at)
	if sphere := components.Weapon.Get(w).Sphere; sphere != nil {
		s.Physics.Move(sphere, at)
	}
}

// updateAttachments keeps held weapons in their owners' hands.
func (s *Sim) updateAttachments(_ *ecs.ECS) {
	for w := range components.Weapon.Iter(s.World) {
		wd := components.Weapon.Get(w)
		if !wd.Attached {
			continue
		}
		c, ok := s.Entry(wd.Owner)
		if !ok {
			continue
		}
		s.attach(w, c)
	}
}

// updateOverlaps turns pickup sphere overlap changes into overlap updates.
// Authority only.
func (s *Sim) updateOverlaps(_ *ecs.ECS) {
	if !s.authority {
		return
	}
	var sensors []*physics.Body
	for w := range components.Weapon.Iter(s.World) {
		if sphere := components.Weapon.Get(w).Sphere; sphere != nil {
			sensors = append(sensors, sphere)
		}
	}

	begin, end := s.Physics.UpdateOverlaps(sensors, physics.TagCombatant)
	for _, o := range end {
		c, ok := s.Entry(o.Other.Entity)
		if !ok {
			continue
		}
		if components.Overlap.Get(c).Weapon == o.Sensor.Entity {
			s.SetOverlappingWeapon(c, netconfig.NoEntity)
		}
	}
	for _, o := range begin {
		c, ok := s.Entry(o.Other.Entity)
		if !ok {
			continue
		}
		s.SetOverlappingWeapon(c, o.Sensor.Entity)
	}
}

// SetOverlappingWeapon records the weapon c can pick up. Authority only; the
// owning client learns about it through replication.
func (s *Sim) SetOverlappingWeapon(c *donburi.Entry, wid netconfig.EntityID) {
	ov := components.Overlap.Get(c)
	if old, ok := s.Entry(ov.Weapon); ok {
		s.setPickupWidget(old, false)
	}
	ov.Weapon = wid
	if !s.IsLocallyControlled(c) {
		return
	}
	if w, ok := s.Entry(wid); ok {
		s.setPickupWidget(w, true)
	}
}

// onRepOverlappingWeapon runs on the owning client when the overlap changes.
func (s *Sim) onRepOverlappingWeapon(_ *donburi.Entry, old, cur netconfig.EntityID) {
	if w, ok := s.Entry(cur); ok {
		s.setPickupWidget(w, true)
	}
	if w, ok := s.Entry(old); ok {
		s.setPickupWidget(w, false)
	}
}

// onRepEquippedWeapon runs on proxies when a combatant's weapon changes.
func (s *Sim) onRepEquippedWeapon(c *donburi.Entry, _, cur netconfig.EntityID) {
	s.onEquippedWeaponChanged(c)
	if w, ok := s.Entry(cur); ok {
		s.applyWeaponState(w)
		s.attach(w, c)
	}
}
