package core

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/automoto/blaster-mp/shared/messages"
	"github.com/automoto/blaster-mp/shared/netcomponents"
	"github.com/automoto/blaster-mp/shared/protocol"
	"github.com/leap-fish/necs/esync/srvsync"
	"github.com/yohamta/donburi"
)

func TestMain(m *testing.M) {
	if err := protocol.RegisterComponents(); err != nil {
		log.Fatalf("register components: %v", err)
	}
	os.Exit(m.Run())
}

func TestMirrorTracksTransforms(t *testing.T) {
	world := donburi.NewWorld()
	srvsync.UseEsync(world)
	m := NewMirror(world)

	m.Update([]messages.EntityTransform{
		{ID: 1, Position: gamemath.V(10, 20, 30), Yaw: 90},
		{ID: 2, Position: gamemath.V(5, 5, 5)},
	})
	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}
	got := netcomponents.NetTransform.Get(world.Entry(m.entities[1]))
	if got.X != 10 || got.Y != 20 || got.Z != 30 || got.Yaw != 90 {
		t.Errorf("entity 1 transform = %+v", *got)
	}

	m.Update([]messages.EntityTransform{
		{ID: 1, Position: gamemath.V(11, 20, 30)},
	})
	if m.Len() != 1 {
		t.Fatalf("Len = %d after removal, want 1", m.Len())
	}
	if got := netcomponents.NetTransform.Get(world.Entry(m.entities[1])); got.X != 11 {
		t.Errorf("entity 1 X = %v, want 11", got.X)
	}
	identity := netcomponents.NetIdentity.Get(world.Entry(m.entities[1]))
	if identity.Entity != 1 {
		t.Errorf("identity = %d, want 1", identity.Entity)
	}
}

func TestDebugRouter(t *testing.T) {
	s := NewServer(Options{Name: "test", Level: OpenArena()})
	srv := httptest.NewServer(NewDebugRouter(s))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/health status = %d", resp.StatusCode)
	}
	var health struct {
		Status string `json:"status"`
		Name   string `json:"name"`
		Peers  int    `json:"peers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "ok" || health.Name != "test" || health.Peers != 0 {
		t.Errorf("health = %+v", health)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "blaster_tick_duration_seconds") {
		t.Errorf("/metrics missing tick histogram")
	}
}

func TestServerStepMirrorsEntities(t *testing.T) {
	s := NewServer(Options{Name: "test", Level: OpenArena()})
	s.step(16 * time.Millisecond)

	// Only the level weapon exists before anyone joins.
	if s.mirror.Len() != 1 {
		t.Errorf("mirrored = %d, want 1", s.mirror.Len())
	}
	if s.PlayerCount() != 0 {
		t.Errorf("PlayerCount = %d, want 0", s.PlayerCount())
	}
}

type fixedPlayers int

func (n fixedPlayers) PlayerCount() int { return int(n) }

// fakeDirectory records hosts and heartbeats. Heartbeats get 404 until the
// first re-registration when forget is set.
type fakeDirectory struct {
	mu         sync.Mutex
	hosts      []hostRequest
	heartbeats atomic.Int32
	deleted    atomic.Int32
	forget     bool
}

func (d *fakeDirectory) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/sessions":
		var req hostRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		d.mu.Lock()
		d.hosts = append(d.hosts, req)
		d.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(hostResponse{ID: "abc"})
	case r.Method == http.MethodPost && r.URL.Path == "/sessions/abc/heartbeat":
		d.heartbeats.Add(1)
		d.mu.Lock()
		forget := d.forget
		d.forget = false
		d.mu.Unlock()
		if forget {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodDelete && r.URL.Path == "/sessions/abc":
		d.deleted.Add(1)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (d *fakeDirectory) hostCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.hosts)
}

func TestRegistrationLifecycle(t *testing.T) {
	dir := &fakeDirectory{forget: true}
	srv := httptest.NewServer(dir)
	defer srv.Close()

	reg := NewRegistration(srv.URL, "test", "localhost:7373", "1", 4, fixedPlayers(2))
	reg.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = reg.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for dir.heartbeats.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if dir.heartbeats.Load() < 3 {
		t.Fatalf("heartbeats = %d, want at least 3", dir.heartbeats.Load())
	}
	// Initial host plus one re-registration after the 404.
	if got := dir.hostCount(); got != 2 {
		t.Errorf("hosts = %d, want 2", got)
	}
	dir.mu.Lock()
	first := dir.hosts[0]
	dir.mu.Unlock()
	if first.Name != "test" || first.Players != 2 || first.MaxPlayers != 4 || first.MatchType == "" {
		t.Errorf("host request = %+v", first)
	}
	if dir.deleted.Load() != 1 {
		t.Errorf("deleted = %d, want 1", dir.deleted.Load())
	}
	if reg.SessionID() != "abc" {
		t.Errorf("SessionID = %q, want abc", reg.SessionID())
	}
}

func TestLoadServerLevel(t *testing.T) {
	level, err := LoadServerLevel("../../shared/leveldata/testdata", "arena.tmx")
	if err != nil {
		t.Fatalf("LoadServerLevel: %v", err)
	}
	if len(level.SpawnPoints) == 0 {
		t.Error("no spawn points")
	}

	if _, err := LoadServerLevel("../../shared/leveldata/testdata", "missing"); err == nil {
		t.Error("expected error for missing level")
	}
}

func TestOpenArena(t *testing.T) {
	level := OpenArena()
	if len(level.SpawnPoints) != 4 {
		t.Errorf("spawn points = %d, want 4", len(level.SpawnPoints))
	}
	if len(level.WeaponSpawns) != 1 {
		t.Errorf("weapon spawns = %d, want 1", len(level.WeaponSpawns))
	}
}
