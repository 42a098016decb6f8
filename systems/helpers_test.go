package systems

import (
	"math/rand"
	"time"

	"github.com/automoto/blaster-mp/components"
	cfg "github.com/automoto/blaster-mp/config"
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/automoto/blaster-mp/shared/leveldata"
	"github.com/automoto/blaster-mp/shared/messages"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/yohamta/donburi"
)

const tick = 10 * time.Millisecond

type montageCall struct {
	id      netconfig.EntityID
	montage cfg.MontageID
	section string
}

// recorder implements every presentation service and remembers the calls.
type recorder struct {
	montages []montageCall
	fires    []netconfig.EntityID
	sounds   []cfg.SoundID
	impacts  int
	health   []string
	percent  []float64
	widgets  map[netconfig.EntityID]bool
	packages []HUDPackage
	roles    map[netconfig.EntityID]netconfig.Role
}

func newRecorder() *recorder {
	return &recorder{
		widgets: make(map[netconfig.EntityID]bool),
		roles:   make(map[netconfig.EntityID]netconfig.Role),
	}
}

func (r *recorder) services() Services {
	return Services{Animator: r, Effects: r, HUD: r, Camera: &BoomCamera{}}
}

func (r *recorder) PlayMontage(id netconfig.EntityID, m cfg.MontageID, section string) {
	r.montages = append(r.montages, montageCall{id: id, montage: m, section: section})
}

func (r *recorder) PlayWeaponFire(w netconfig.EntityID) { r.fires = append(r.fires, w) }

func (r *recorder) PlaySound(s cfg.SoundID, _ gamemath.Vec3) { r.sounds = append(r.sounds, s) }

func (r *recorder) SpawnImpact(gamemath.Vec3) { r.impacts++ }

func (r *recorder) SetDissolve(netconfig.EntityID, float64) {}

func (r *recorder) SetHUDPackage(p HUDPackage) { r.packages = append(r.packages, p) }

func (r *recorder) SetHealth(text string, percent float64) {
	r.health = append(r.health, text)
	r.percent = append(r.percent, percent)
}

func (r *recorder) ShowPickupWidget(w netconfig.EntityID, visible bool) { r.widgets[w] = visible }

func (r *recorder) SetOverheadRole(id netconfig.EntityID, role netconfig.Role) { r.roles[id] = role }

func (r *recorder) count(m cfg.MontageID) int {
	n := 0
	for _, c := range r.montages {
		if c.montage == m {
			n++
		}
	}
	return n
}

func (r *recorder) soundCount(id cfg.SoundID) int {
	n := 0
	for _, s := range r.sounds {
		if s == id {
			n++
		}
	}
	return n
}

// outbox records what a peer sends.
type outbox struct {
	sent       []any
	broadcasts []any
}

func (o *outbox) Send(msg any)      { o.sent = append(o.sent, msg) }
func (o *outbox) Broadcast(msg any) { o.broadcasts = append(o.broadcasts, msg) }

func (o *outbox) sentOf(match func(any) bool) int {
	n := 0
	for _, m := range o.sent {
		if match(m) {
			n++
		}
	}
	return n
}

// testLevel is an open 2048x2048 arena. Spawn 0 and 1 face each other
// across 500 units.
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

// fataler is satisfied by *testing.T and *rapid.T.
type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

type harness struct {
	sim *Sim
	rec *recorder
	out *outbox

	fired      []messages.FireEvent
	eliminated []netconfig.EntityID
}

func newHarness(t fataler, authority bool, local netconfig.PeerID) *harness {
	t.Helper()
	h := &harness{rec: newRecorder(), out: &outbox{}}
	h.sim = NewSim(Options{
		Authority: authority,
		LocalPeer: local,
		Level:     testLevel(),
		Services:  h.rec.services(),
		Outbox:    h.out,
		Rand:      rand.New(rand.NewSource(7)),
		Hooks: Hooks{
			Fired: func(msg messages.FireEvent) { h.fired = append(h.fired, msg) },
			Eliminated: func(victim, _ netconfig.EntityID) {
				h.eliminated = append(h.eliminated, victim)
			},
		},
	})
	return h
}

func (h *harness) step(n int) {
	for i := 0; i < n; i++ {
		h.sim.Step(tick)
	}
}

// arm gives c a fresh weapon of kind straight from the authority.
func (h *harness) arm(t fataler, c *donburi.Entry, kind string) *donburi.Entry {
	t.Helper()
	w := h.sim.SpawnWeapon(kind, components.Transform.Get(c).Position)
	h.sim.EquipWeapon(c, w)
	if components.Combat.Get(c).EquippedWeapon != idOf(w) {
		t.Fatalf("arm: combatant %d did not equip weapon %d", idOf(c), idOf(w))
	}
	return w
}

func entry(t fataler, s *Sim, id netconfig.EntityID) *donburi.Entry {
	t.Helper()
	e, ok := s.Entry(id)
	if !ok {
		t.Fatalf("entity %d not found", id)
	}
	return e
}

func vecX(x float64) gamemath.Vec3 {
	return gamemath.V(x, 0, 0)
}

func countEntities[T any](s *Sim, c *donburi.ComponentType[T]) int {
	n := 0
	c.Each(s.World, func(*donburi.Entry) { n++ })
	return n
}
