package session

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/automoto/blaster-mp/components"
	cfg "github.com/automoto/blaster-mp/config"
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/automoto/blaster-mp/shared/leveldata"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/automoto/blaster-mp/systems"
	"github.com/google/uuid"
	"github.com/yohamta/donburi"
)

const tick = 10 * time.Millisecond

// recorder is the presentation side of one client.
type recorder struct {
	health   []string
	montages map[cfg.MontageID]int
	widgets  map[netconfig.EntityID]bool
	roles    map[netconfig.EntityID]netconfig.Role
}

func newRecorder() *recorder {
	return &recorder{
		montages: make(map[cfg.MontageID]int),
		widgets:  make(map[netconfig.EntityID]bool),
		roles:    make(map[netconfig.EntityID]netconfig.Role),
	}
}

func (r *recorder) services() systems.Services {
	s := systems.NopServices()
	s.HUD = r
	s.Animator = r
	return s
}

func (r *recorder) PlayMontage(_ netconfig.EntityID, m cfg.MontageID, _ string) { r.montages[m]++ }
func (r *recorder) PlayWeaponFire(netconfig.EntityID)                           {}
func (r *recorder) SetHUDPackage(systems.HUDPackage)                            {}
func (r *recorder) SetHealth(text string, _ float64)                            { r.health = append(r.health, text) }
func (r *recorder) ShowPickupWidget(w netconfig.EntityID, visible bool)         { r.widgets[w] = visible }
func (r *recorder) SetOverheadRole(id netconfig.EntityID, role netconfig.Role)  { r.roles[id] = role }

func testLevel() *leveldata.LevelData {
	return &leveldata.LevelData{
		MapWidth:  2048,
		MapHeight: 2048,
		SpawnPoints: []leveldata.SpawnPoint{
			{X: 200, Y: 1000, Yaw: 0, Index: 0},
			{X: 700, Y: 1000, Yaw: 180, Index: 1},
			{X: 1500, Y: 300, Yaw: 90, Index: 2},
		},
	}
}

type player struct {
	*Client
	rec *recorder
}

type match struct {
	net    *Loopback
	fired  int
	elims  []netconfig.EntityID
	joined []string
}

func newMatch(opts ServerOptions) *match {
	m := &match{}
	opts.Name = "test"
	opts.Level = testLevel()
	opts.Rand = rand.New(rand.NewSource(7))
	opts.Events = Events{
		PeerJoined: func(_ netconfig.PeerID, name string) { m.joined = append(m.joined, name) },
		Fired:      func(netconfig.EntityID) { m.fired++ },
		Eliminated: func(victim, _ netconfig.EntityID) { m.elims = append(m.elims, victim) },
	}
	m.net = NewLoopback(opts)
	return m
}

func (m *match) connect(name string) *player {
	rec := newRecorder()
	c := m.net.Connect(ClientOptions{Name: name, Level: testLevel(), Services: rec.services()})
	return &player{Client: c, rec: rec}
}

func (m *match) step(n int) {
	for i := 0; i < n; i++ {
		m.net.Step(tick)
	}
}

func (m *match) server() *systems.Sim {
	return m.net.Server.Sim
}

func combatantOf(t *testing.T, s *systems.Sim, peer netconfig.PeerID) *donburi.Entry {
	t.Helper()
	e, ok := s.CombatantOf(peer)
	if !ok {
		t.Fatalf("no combatant for peer %d", peer)
	}
	return e
}

func idOf(e *donburi.Entry) netconfig.EntityID {
	return components.NetID.Get(e).ID
}

func TestJoinReplicatesCombatants(t *testing.T) {
	m := newMatch(ServerOptions{})
	alice := m.connect("alice")
	bob := m.connect("bob")
	m.step(2)

	if alice.State() != ClientJoined || bob.State() != ClientJoined {
		t.Fatalf("states = %v, %v", alice.State(), bob.State())
	}
	if alice.PeerID() != 1 || bob.PeerID() != 2 {
		t.Fatalf("peer ids = %d, %d", alice.PeerID(), bob.PeerID())
	}
	if _, err := uuid.Parse(alice.ReconnectToken()); err != nil {
		t.Errorf("reconnect token %q: %v", alice.ReconnectToken(), err)
	}
	if alice.ServerName() != "test" || alice.TickRate() != cfg.Net.TickRate {
		t.Errorf("server %q at %d Hz", alice.ServerName(), alice.TickRate())
	}
	if got := m.net.Server.PeerCount(); got != 2 {
		t.Fatalf("server has %d peers", got)
	}

	for _, p := range []*player{alice, bob} {
		for _, peer := range []netconfig.PeerID{1, 2} {
			want := idOf(combatantOf(t, m.server(), peer))
			if got := idOf(combatantOf(t, p.Sim, peer)); got != want {
				t.Errorf("peer %d sees combatant %d for peer %d, want %d", p.PeerID(), got, peer, want)
			}
		}
	}

	own, _ := alice.Combatant()
	if alice.Sim.Role(own) != netconfig.RoleAutonomousProxy {
		t.Errorf("alice's own role = %s", alice.Sim.Role(own))
	}
	other := combatantOf(t, alice.Sim, 2)
	if alice.Sim.Role(other) != netconfig.RoleSimulatedProxy {
		t.Errorf("bob's role on alice = %s", alice.Sim.Role(other))
	}
	if got := alice.rec.roles[idOf(own)]; got != netconfig.RoleAutonomousProxy {
		t.Errorf("alice's overhead shows %s for alice", got)
	}
	if got := alice.rec.roles[idOf(other)]; got != netconfig.RoleSimulatedProxy {
		t.Errorf("alice's overhead shows %s for bob", got)
	}
	if len(m.joined) != 2 || m.joined[0] != "alice" || m.joined[1] != "bob" {
		t.Errorf("joined = %v", m.joined)
	}
}

func TestLateJoinerSeesEquippedWeapon(t *testing.T) {
	m := newMatch(ServerOptions{})
	alice := m.connect("alice")
	m.step(1)

	c := combatantOf(t, m.server(), alice.PeerID())
	w := m.server().SpawnWeapon("pistol", components.Transform.Get(c).Position)
	m.server().EquipWeapon(c, w)
	m.step(1)

	bob := m.connect("bob")
	m.step(2)

	proxy := combatantOf(t, bob.Sim, alice.PeerID())
	if got := components.Combat.Get(proxy).EquippedWeapon; got != idOf(w) {
		t.Fatalf("late joiner sees equipped weapon %d, want %d", got, idOf(w))
	}
	pw, ok := bob.Sim.Entry(idOf(w))
	if !ok {
		t.Fatal("late joiner never materialized the weapon")
	}
	if got := components.Weapon.Get(pw).State; got != netconfig.WeaponEquipped {
		t.Errorf("weapon state on late joiner = %s", got)
	}
}

func TestJoinRejected(t *testing.T) {
	t.Run("version mismatch", func(t *testing.T) {
		m := newMatch(ServerOptions{})
		rec := newRecorder()
		c := m.net.Connect(ClientOptions{Name: "old", Version: "0", Services: rec.services()})
		m.step(2)
		if c.State() != ClientRejected || !errors.Is(c.Err(), ErrRejected) {
			t.Fatalf("state = %v err = %v", c.State(), c.Err())
		}
		if _, ok := m.server().CombatantOf(1); ok {
			t.Error("rejected peer got a combatant")
		}
	})
	t.Run("server full", func(t *testing.T) {
		m := newMatch(ServerOptions{MaxPlayers: 1})
		m.connect("alice")
		bob := m.connect("bob")
		m.step(2)
		if bob.State() != ClientRejected {
			t.Fatalf("second player state = %v, want rejected", bob.State())
		}
		if got := m.net.Server.PeerCount(); got != 1 {
			t.Errorf("peer count = %d", got)
		}
	})
}

func TestEliminationOverTheWire(t *testing.T) {
	m := newMatch(ServerOptions{})
	alice := m.connect("alice")
	bob := m.connect("bob")
	m.step(1)

	shooter := combatantOf(t, m.server(), alice.PeerID())
	rifle := m.server().SpawnWeapon("scout_rifle", components.Transform.Get(shooter).Position)
	m.server().EquipWeapon(shooter, rifle)
	victimID := idOf(combatantOf(t, m.server(), bob.PeerID()))
	m.step(2)

	alice.Control(Pressed(netconfig.ActionFire))
	m.step(120)
	alice.Control(Input{})
	m.step(5)

	if m.fired != 3 {
		t.Fatalf("authority accepted %d shots, want 3", m.fired)
	}
	if len(m.elims) != 1 || m.elims[0] != victimID {
		t.Fatalf("eliminated = %v, want [%d]", m.elims, victimID)
	}

	want := []string{"100/100", "60/100", "20/100", "0/100"}
	if len(bob.rec.health) < len(want) {
		t.Fatalf("bob's HUD health = %v, want %v", bob.rec.health, want)
	}
	for i := range want {
		if bob.rec.health[i] != want[i] {
			t.Fatalf("bob's HUD health = %v, want %v", bob.rec.health, want)
		}
	}
	if n := bob.rec.montages[cfg.MontageElim]; n != 1 {
		t.Errorf("bob played the elim montage %d times", n)
	}
	if n := alice.rec.montages[cfg.MontageElim]; n != 1 {
		t.Errorf("alice saw the elim montage %d times", n)
	}
	if proxy, ok := alice.Sim.Entry(victimID); !ok || !components.Elim.Get(proxy).Elimmed {
		t.Error("alice should see bob eliminated")
	}
	if n := alice.rec.montages[cfg.MontageFireWeapon]; n != 3 {
		t.Errorf("alice played %d fire montages, want 3", n)
	}

	m.step(int(cfg.Combat.ElimDelay/tick) + 5)

	for _, p := range []*player{alice, bob} {
		if _, ok := p.Sim.Entry(victimID); ok {
			t.Errorf("peer %d still has the eliminated combatant", p.PeerID())
		}
		fresh := combatantOf(t, p.Sim, bob.PeerID())
		if idOf(fresh) == victimID {
			t.Errorf("peer %d: respawn reused entity %d", p.PeerID(), victimID)
		}
		if got := components.Health.Get(fresh).Current; got != cfg.Combatant.MaxHealth {
			t.Errorf("peer %d: respawned health = %v", p.PeerID(), got)
		}
	}
	if last := bob.rec.health[len(bob.rec.health)-1]; last != "100/100" {
		t.Errorf("bob's HUD after respawn = %q", last)
	}
}

func TestOverlapReachesOwnerOnly(t *testing.T) {
	m := newMatch(ServerOptions{})
	alice := m.connect("alice")
	bob := m.connect("bob")
	m.step(1)

	c := combatantOf(t, m.server(), bob.PeerID())
	w := m.server().SpawnWeapon("pistol", components.Transform.Get(c).Position)
	wid := idOf(w)
	m.step(2)

	own, _ := bob.Combatant()
	if got := components.Overlap.Get(own).Weapon; got != wid {
		t.Fatalf("bob's overlap = %d, want %d", got, wid)
	}
	if !bob.rec.widgets[wid] {
		t.Error("bob should see the pickup widget")
	}
	if got := components.Overlap.Get(combatantOf(t, alice.Sim, bob.PeerID())).Weapon; got != netconfig.NoEntity {
		t.Errorf("alice sees bob's overlap %d", got)
	}
	if alice.rec.widgets[wid] {
		t.Error("alice should not see the pickup widget")
	}

	bob.Control(Pressed(netconfig.ActionEquip))
	m.step(3)

	if got := components.Combat.Get(c).EquippedWeapon; got != wid {
		t.Fatalf("authority equipped %d, want %d", got, wid)
	}
	for _, p := range []*player{alice, bob} {
		pw, _ := p.Sim.Entry(wid)
		if got := components.Weapon.Get(pw).State; got != netconfig.WeaponEquipped {
			t.Errorf("peer %d sees weapon state %s", p.PeerID(), got)
		}
	}
	if bob.rec.widgets[wid] {
		t.Error("pickup widget still shown after equipping")
	}
}

func TestAimingReplicatesToProxies(t *testing.T) {
	m := newMatch(ServerOptions{})
	alice := m.connect("alice")
	bob := m.connect("bob")
	m.step(1)

	alice.Control(Pressed(netconfig.ActionAim))
	own, _ := alice.Combatant()
	if got := components.Movement.Get(own).MaxWalkSpeed; got != cfg.Combatant.AimWalkSpeed {
		t.Errorf("predicted walk speed = %v", got)
	}
	m.step(2)

	if !components.Combat.Get(combatantOf(t, m.server(), alice.PeerID())).Aiming {
		t.Fatal("authority did not apply aiming")
	}
	proxy := combatantOf(t, bob.Sim, alice.PeerID())
	if !components.Combat.Get(proxy).Aiming {
		t.Fatal("bob does not see alice aiming")
	}
	if got := components.Movement.Get(proxy).MaxWalkSpeed; got != cfg.Combatant.AimWalkSpeed {
		t.Errorf("proxy walk speed = %v", got)
	}
}

func TestMovementReachesProxies(t *testing.T) {
	m := newMatch(ServerOptions{})
	alice := m.connect("alice")
	bob := m.connect("bob")
	m.step(1)

	alice.Control(Input{Move: gamemath.V(0, 1, 0), AimYaw: 90})
	m.step(10)
	alice.Control(Input{AimYaw: 90})
	m.step(3)

	own, _ := alice.Combatant()
	want := components.Transform.Get(own).Position
	if want.Y <= 1000 {
		t.Fatalf("alice did not move: %+v", want)
	}
	if got := components.Transform.Get(combatantOf(t, m.server(), alice.PeerID())).Position; got != want {
		t.Errorf("authority has alice at %+v, want %+v", got, want)
	}
	if got := components.Transform.Get(combatantOf(t, bob.Sim, alice.PeerID())).Position; got != want {
		t.Errorf("bob sees alice at %+v, want %+v", got, want)
	}
}

func TestDisconnectAndReconnect(t *testing.T) {
	m := newMatch(ServerOptions{})
	alice := m.connect("alice")
	bob := m.connect("bob")
	m.step(1)
	oldID := idOf(combatantOf(t, alice.Sim, bob.PeerID()))
	token := bob.ReconnectToken()

	m.net.Disconnect(bob.Client)
	m.step(1)

	if _, ok := alice.Sim.Entry(oldID); ok {
		t.Fatal("alice still sees the departed combatant")
	}
	if got := m.net.Server.PeerCount(); got != 1 {
		t.Fatalf("peer count = %d", got)
	}

	rec := newRecorder()
	again := m.net.Connect(ClientOptions{ReconnectToken: token, Level: testLevel(), Services: rec.services()})
	m.step(2)

	if again.ReconnectToken() != token {
		t.Errorf("token = %q, want %q", again.ReconnectToken(), token)
	}
	c := combatantOf(t, m.server(), again.PeerID())
	if got := components.Combatant.Get(c).Name; got != "bob" {
		t.Errorf("reconnected as %q, want bob", got)
	}
}
