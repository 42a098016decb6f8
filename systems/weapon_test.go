package systems

import (
	"testing"

	"github.com/automoto/blaster-mp/components"
	cfg "github.com/automoto/blaster-mp/config"
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/automoto/blaster-mp/shared/messages"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/yohamta/donburi"
	"pgregory.net/rapid"
)

func checkWeaponInvariants(t fataler, s *Sim, w *donburi.Entry) {
	wd := components.Weapon.Get(w)
	body := components.Body.Get(w).Body
	switch wd.State {
	case netconfig.WeaponEquipped:
		if wd.PhysicsEnabled || wd.QueryCollision || body.Enabled() {
			t.Fatalf("equipped weapon has collision: physics=%v query=%v body=%v",
				wd.PhysicsEnabled, wd.QueryCollision, body.Enabled())
		}
		if wd.PickupWidgetVisible {
			t.Fatalf("equipped weapon shows its pickup widget")
		}
		owner, ok := s.Entry(wd.Owner)
		if !ok {
			t.Fatalf("equipped weapon has no owner")
		}
		if got := components.Combat.Get(owner).EquippedWeapon; got != idOf(w) {
			t.Fatalf("owner holds %d, want %d", got, idOf(w))
		}
	case netconfig.WeaponDropped:
		if !wd.PhysicsEnabled || !wd.QueryCollision || !body.Enabled() {
			t.Fatalf("dropped weapon without collision: physics=%v query=%v body=%v",
				wd.PhysicsEnabled, wd.QueryCollision, body.Enabled())
		}
		if wd.Owner != netconfig.NoEntity {
			t.Fatalf("dropped weapon still owned by %d", wd.Owner)
		}
	}
}

func TestEquipFromPickupOverlap(t *testing.T) {
	h := newHarness(t, true, 1)
	c := h.sim.SpawnCombatant(1, "alice", 0)
	w := h.sim.SpawnWeapon("scout_rifle", components.Transform.Get(c).Position)
	h.step(1)

	if got := components.Overlap.Get(c).Weapon; got != idOf(w) {
		t.Fatalf("overlapping weapon = %d, want %d", got, idOf(w))
	}
	if !h.rec.widgets[idOf(w)] {
		t.Fatal("pickup widget should show for the local combatant")
	}

	h.sim.EquipPressed(c)
	wd := components.Weapon.Get(w)
	if wd.State != netconfig.WeaponEquipped || wd.Owner != idOf(c) {
		t.Fatalf("weapon state=%s owner=%d after equip", wd.State, wd.Owner)
	}
	if !wd.Attached {
		t.Error("equipped weapon should be attached to the hand")
	}
	if h.rec.widgets[idOf(w)] {
		t.Error("pickup widget should hide once equipped")
	}
	mv := components.Movement.Get(c)
	if mv.OrientToMovement || !mv.UseControllerYaw {
		t.Errorf("armed combatant orient=%v controllerYaw=%v", mv.OrientToMovement, mv.UseControllerYaw)
	}
	checkWeaponInvariants(t, h.sim, w)

	// The disabled sphere ends the overlap.
	h.step(1)
	if got := components.Overlap.Get(c).Weapon; got != netconfig.NoEntity {
		t.Errorf("overlap after equip = %d, want none", got)
	}
}

func TestEquipRevalidatesOverlap(t *testing.T) {
	h := newHarness(t, true, 0)
	c := h.sim.SpawnCombatant(2, "bob", 0)
	w := h.sim.SpawnWeapon("pistol", components.Transform.Get(c).Position)
	h.step(1)

	// The combatant walks away before the request lands.
	h.sim.ApplyMove(c, messages.MoveRequest{Position: components.Transform.Get(c).Position.Add(gamemath.V(1000, 0, 0))})
	h.sim.ServerEquip(c)

	if got := components.Weapon.Get(w).State; got != netconfig.WeaponInitial {
		t.Fatalf("weapon state = %s, want Initial", got)
	}
}

func TestEquipReplacesHeldWeapon(t *testing.T) {
	h := newHarness(t, true, 0)
	c := h.sim.SpawnCombatant(2, "bob", 0)
	first := h.arm(t, c, "pistol")
	second := h.arm(t, c, "scout_rifle")

	if got := components.Weapon.Get(first).State; got != netconfig.WeaponDropped {
		t.Errorf("replaced weapon state = %s, want Dropped", got)
	}
	checkWeaponInvariants(t, h.sim, first)
	checkWeaponInvariants(t, h.sim, second)
}

func TestWeaponNeverReturnsToInitial(t *testing.T) {
	h := newHarness(t, true, 0)
	c := h.sim.SpawnCombatant(2, "bob", 0)
	w := h.arm(t, c, "pistol")

	if h.sim.SetWeaponState(w, netconfig.WeaponInitial, netconfig.NoEntity) {
		t.Fatal("Equipped -> Initial accepted")
	}
	h.sim.DropWeapon(c)
	if h.sim.SetWeaponState(w, netconfig.WeaponInitial, netconfig.NoEntity) {
		t.Fatal("Dropped -> Initial accepted")
	}
	if h.sim.SetWeaponState(w, netconfig.WeaponDropped, netconfig.NoEntity) {
		t.Fatal("Dropped -> Dropped accepted")
	}
}

func TestProxyCannotChangeWeaponState(t *testing.T) {
	h := newHarness(t, false, 1)
	w := h.sim.Materialize(messages.EntitySpawned{ID: 5, Kind: netconfig.KindWeapon, Name: "pistol"})
	c := h.sim.Materialize(messages.EntitySpawned{ID: 6, Kind: netconfig.KindCombatant, Owner: 1})

	if h.sim.SetWeaponState(w, netconfig.WeaponEquipped, idOf(c)) {
		t.Fatal("proxy changed weapon state")
	}
	h.sim.EquipWeapon(c, w)
	if components.Weapon.Get(w).State != netconfig.WeaponInitial {
		t.Fatal("proxy equip mutated the weapon")
	}

	h.sim.EquipPressed(c)
	n := h.out.sentOf(func(m any) bool { _, ok := m.(messages.EquipRequest); return ok })
	if n != 1 {
		t.Fatalf("sent %d equip requests, want 1", n)
	}
}

func TestDroppedWeaponExpires(t *testing.T) {
	h := newHarness(t, true, 0)
	c := h.sim.SpawnCombatant(2, "bob", 0)
	w := h.arm(t, c, "pistol")
	wid := idOf(w)
	h.sim.DropWeapon(c)

	h.sim.Step(cfg.Combat.DroppedWeaponLifetime - tick)
	if _, ok := h.sim.Entry(wid); !ok {
		t.Fatal("dropped weapon destroyed early")
	}
	h.step(2)
	if _, ok := h.sim.Entry(wid); ok {
		t.Fatal("dropped weapon should expire")
	}
}

func TestWeaponStateProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		h := newHarness(rt, true, 0)
		a := h.sim.SpawnCombatant(1, "a", 0)
		b := h.sim.SpawnCombatant(2, "b", 1)
		w := h.sim.SpawnWeapon("pistol", components.Transform.Get(a).Position)
		wid := idOf(w)
		left := false

		steps := rapid.IntRange(1, 30).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			who := a
			if rapid.Bool().Draw(rt, "b") {
				who = b
			}
			w, ok := h.sim.Entry(wid)
			if !ok {
				return
			}
			switch rapid.IntRange(0, 2).Draw(rt, "op") {
			case 0:
				h.sim.EquipWeapon(who, w)
			case 1:
				h.sim.DropWeapon(who)
			case 2:
				if h.sim.SetWeaponState(w, netconfig.WeaponInitial, netconfig.NoEntity) {
					rt.Fatalf("transition to Initial accepted")
				}
			}

			state := components.Weapon.Get(w).State
			if left && state == netconfig.WeaponInitial {
				rt.Fatalf("weapon returned to Initial")
			}
			if state != netconfig.WeaponInitial {
				left = true
			}
			if state == netconfig.WeaponEquipped {
				owner := components.Weapon.Get(w).Owner
				if components.Combat.Get(entry(rt, h.sim, owner)).EquippedWeapon != wid {
					rt.Fatalf("owner does not hold the equipped weapon")
				}
			}
			if state == netconfig.WeaponDropped {
				checkWeaponInvariants(rt, h.sim, w)
			}
		}
	})
}
