package systems

import (
	"testing"

	"github.com/automoto/blaster-mp/components"
	cfg "github.com/automoto/blaster-mp/config"
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/automoto/blaster-mp/shared/messages"
	"github.com/automoto/blaster-mp/shared/netconfig"
)

func TestClientMovementReportsToAuthority(t *testing.T) {
	h := newHarness(t, false, 1)
	c := h.sim.Materialize(messages.EntitySpawned{
		ID:       4,
		Kind:     netconfig.KindCombatant,
		Owner:    1,
		Position: gamemath.V(500, 500, cfg.Combatant.CollisionHalfHeight),
	})
	components.Movement.Get(c).WishDir = gamemath.V(1, 0, 0)

	h.step(10)

	pos := components.Transform.Get(c).Position
	want := 500 + cfg.Combatant.BaseWalkSpeed*0.1
	if !approx(pos.X, want) {
		t.Errorf("x = %v after 100ms, want %v", pos.X, want)
	}
	if yaw := components.Transform.Get(c).Yaw; !approx(yaw, 0) {
		t.Errorf("unarmed combatant should face its movement, yaw = %v", yaw)
	}
	n := h.out.sentOf(func(m any) bool { _, ok := m.(messages.MoveRequest); return ok })
	if n != 10 {
		t.Errorf("sent %d move requests, want 10", n)
	}
}

func TestMovementStopsAtWalls(t *testing.T) {
	h := newHarness(t, true, 1)
	h.sim.Physics.AddSolid(600, 0, 50, 2048, 300)
	c := h.sim.SpawnCombatant(1, "alice", 0)
	components.Movement.Get(c).WishDir = gamemath.V(1, 0, 0)

	h.step(200)

	if x := components.Transform.Get(c).Position.X; x >= 600 {
		t.Fatalf("walked through the wall to x = %v", x)
	}
}

func TestJumpLands(t *testing.T) {
	h := newHarness(t, true, 1)
	c := h.sim.SpawnCombatant(1, "alice", 0)
	mv := components.Movement.Get(c)
	mv.Jump = true

	h.step(1)
	if !mv.InAir {
		t.Fatal("jump should leave the ground")
	}
	h.step(200)
	if mv.InAir {
		t.Fatal("combatant never landed")
	}
	if z := components.Transform.Get(c).Position.Z; z != cfg.Combatant.CollisionHalfHeight {
		t.Errorf("landed at z = %v", z)
	}
}

func TestAuthorityAcceptsMoveRequest(t *testing.T) {
	h := newHarness(t, true, 0)
	c := h.sim.SpawnCombatant(2, "bob", 0)
	h.arm(t, c, "pistol")

	h.sim.ApplyMove(c, messages.MoveRequest{
		Position: gamemath.V(900, 900, 88),
		AimYaw:   45,
		AimPitch: -30,
	})

	tr := components.Transform.Get(c)
	if tr.Position != gamemath.V(900, 900, 88) {
		t.Errorf("position = %+v", tr.Position)
	}
	if !approx(tr.AimPitch, 330) {
		t.Errorf("stored pitch = %v, want compressed 330", tr.AimPitch)
	}
	if !approx(tr.Yaw, 45) {
		t.Errorf("armed combatant yaw = %v, want the aim yaw", tr.Yaw)
	}
}
