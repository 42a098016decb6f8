package bot

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/automoto/blaster-mp/components"
	cfg "github.com/automoto/blaster-mp/config"
	"github.com/automoto/blaster-mp/session"
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/automoto/blaster-mp/shared/leveldata"
	"github.com/automoto/blaster-mp/shared/netconfig"
)

const tick = 10 * time.Millisecond

func duelLevel() *leveldata.LevelData {
	return &leveldata.LevelData{
		MapWidth:  2048,
		MapHeight: 2048,
		SpawnPoints: []leveldata.SpawnPoint{
			{X: 200, Y: 1000, Index: 0},
			{X: 900, Y: 1000, Yaw: 180, Index: 1},
		},
	}
}

func TestBotEquipsThenEngages(t *testing.T) {
	net := session.NewLoopback(session.ServerOptions{
		Name:  "bots",
		Level: duelLevel(),
		Rand:  rand.New(rand.NewSource(1)),
	})
	alice := net.Connect(session.ClientOptions{Name: "alice", Level: duelLevel()})
	net.Connect(session.ClientOptions{Name: "bob", Level: duelLevel()})
	net.Step(tick)

	server := net.Server.Sim
	c, ok := server.CombatantOf(alice.PeerID())
	if !ok {
		t.Fatal("alice has no combatant")
	}
	server.SpawnWeapon("scout_rifle", components.Transform.Get(c).Position)
	net.Step(tick)

	b := New(cfg.BotDifficultyHard, rand.New(rand.NewSource(1)))
	for i := 0; i < 20 && components.Combat.Get(c).EquippedWeapon == netconfig.NoEntity; i++ {
		alice.Control(b.Think(alice.Sim))
		net.Step(tick)
	}
	if components.Combat.Get(c).EquippedWeapon == netconfig.NoEntity {
		t.Fatal("bot never equipped the weapon")
	}

	in := b.Think(alice.Sim)
	if !in.Held(netconfig.ActionFire) {
		t.Error("bot should open fire on first decision")
	}
	if d := math.Abs(gamemath.DeltaAngle(in.AimYaw, 0)); d > 5 {
		t.Errorf("aim yaw %.1f, want toward bob (0)", in.AimYaw)
	}
	if in.Move.Len() == 0 {
		t.Error("bot should strafe")
	}
}

func TestBotIdleWithoutCombatant(t *testing.T) {
	net := session.NewLoopback(session.ServerOptions{Name: "bots", Level: duelLevel()})
	alice := net.Connect(session.ClientOptions{Name: "alice", Level: duelLevel()})

	b := New(cfg.BotDifficultyEasy, rand.New(rand.NewSource(1)))
	if in := b.Think(alice.Sim); in != (session.Input{}) {
		t.Errorf("input before join = %+v, want zero", in)
	}
}

func TestUnknownDifficultyFallsBackToNormal(t *testing.T) {
	b := New(cfg.BotDifficulty(99), rand.New(rand.NewSource(1)))
	if b.tuning != cfg.Bot.Difficulties[cfg.BotDifficultyNormal] {
		t.Errorf("tuning = %+v", b.tuning)
	}
}
