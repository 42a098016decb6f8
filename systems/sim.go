// Package systems is the combat simulation one peer runs. The same code runs
// on the authority and on every client; which branches execute depends on
// whether the peer has authority and on who controls each combatant.
package systems

import (
	"math/rand"
	"sort"
	"time"

	"github.com/automoto/blaster-mp/components"
	"github.com/automoto/blaster-mp/physics"
	"github.com/automoto/blaster-mp/replication"
	"github.com/automoto/blaster-mp/shared/leveldata"
	"github.com/automoto/blaster-mp/shared/messages"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/automoto/blaster-mp/timers"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// Outbox carries messages off this peer.
type Outbox interface {
	// Send delivers an RPC to the authority.
	Send(msg any)
	// Broadcast delivers a multicast to every remote peer.
	Broadcast(msg any)
}

// Hooks let the owning session observe lifecycle changes. All are optional.
type Hooks struct {
	Spawned    func(e *donburi.Entry, msg messages.EntitySpawned)
	Destroyed  func(id netconfig.EntityID)
	Fired      func(msg messages.FireEvent)
	Eliminated func(victim, attacker netconfig.EntityID)
}

// Options configures a Sim.
type Options struct {
	Authority bool
	LocalPeer netconfig.PeerID
	Level     *leveldata.LevelData
	Physics   *physics.World
	Services  Services
	Outbox    Outbox
	Rand      *rand.Rand
	GameMode  GameMode
	Hooks     Hooks
}

// Sim owns one peer's world, timers and collision space. It is not safe for
// concurrent use; the session steps it from a single goroutine.
type Sim struct {
	ECS     *ecs.ECS
	World   donburi.World
	Timers  *timers.Scheduler
	Physics *physics.World

	authority bool
	localPeer netconfig.PeerID
	services  Services
	out       Outbox
	rand      *rand.Rand
	gameMode  GameMode
	hooks     Hooks

	spawnPoints  []leveldata.SpawnPoint
	weaponSpawns []leveldata.WeaponSpawn

	entities map[netconfig.EntityID]donburi.Entity
	nextID   netconfig.EntityID
	fields   *replication.Registry

	dt      time.Duration
	moveSeq uint32
}

func NewSim(opts Options) *Sim {
	world := donburi.NewWorld()
	s := &Sim{
		ECS:       ecs.NewECS(world),
		World:     world,
		Timers:    timers.New(),
		Physics:   opts.Physics,
		authority: opts.Authority,
		localPeer: opts.LocalPeer,
		services:  opts.Services.withDefaults(),
		out:       opts.Outbox,
		rand:      opts.Rand,
		gameMode:  opts.GameMode,
		hooks:     opts.Hooks,
		entities:  make(map[netconfig.EntityID]donburi.Entity),
	}
	if s.out == nil {
		s.out = nopOutbox{}
	}
	if s.rand == nil {
		s.rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.gameMode == nil {
		s.gameMode = NewFreeForAll()
	}
	if opts.Level != nil {
		s.spawnPoints = opts.Level.SpawnPoints
		s.weaponSpawns = opts.Level.WeaponSpawns
		if s.Physics == nil {
			s.Physics = NewPhysicsWorld(opts.Level)
		}
	}
	if s.Physics == nil {
		s.Physics = physics.NewWorld(4096, 4096, 64)
	}
	s.fields = s.newFieldRegistry()

	s.ECS.AddSystem(s.updateMovement)
	s.ECS.AddSystem(s.updateAttachments)
	s.ECS.AddSystem(s.updateOverlaps)
	s.ECS.AddSystem(s.updateProjectiles)
	s.ECS.AddSystem(s.processDamage)
	s.ECS.AddSystem(s.advanceTimers)
	s.ECS.AddSystem(s.updateOrientation)
	s.ECS.AddSystem(s.updateHUD)
	s.ECS.AddSystem(s.updateCasings)
	s.ECS.AddSystem(s.updateDissolve)
	return s
}

// Step advances the simulation by dt.
func (s *Sim) Step(dt time.Duration) {
	s.dt = dt
	s.ECS.Update()
}

// Now is the simulation clock.
func (s *Sim) Now() time.Duration {
	return s.Timers.Now()
}

func (s *Sim) advanceTimers(_ *ecs.ECS) {
	s.Timers.Advance(s.dt)
}

// LocalPeer is the peer this simulation renders for. NoPeer on a dedicated
// server.
func (s *Sim) LocalPeer() netconfig.PeerID {
	return s.localPeer
}

// SetLocalPeer is called once the authority has assigned this peer an ID.
func (s *Sim) SetLocalPeer(p netconfig.PeerID) {
	s.localPeer = p
}

// Fields is the replicated field registry shared by Source and Replica.
func (s *Sim) Fields() *replication.Registry {
	return s.fields
}

// SpawnPoints returns the level's player spawns.
func (s *Sim) SpawnPoints() []leveldata.SpawnPoint {
	return s.spawnPoints
}

// GameMode returns the elimination arbiter.
func (s *Sim) GameMode() GameMode {
	return s.gameMode
}

// Entry resolves an entity ID through the entity table.
func (s *Sim) Entry(id netconfig.EntityID) (*donburi.Entry, bool) {
	if id == netconfig.NoEntity {
		return nil, false
	}
	ent, ok := s.entities[id]
	if !ok || !s.World.Valid(ent) {
		return nil, false
	}
	return s.World.Entry(ent), true
}

// IDs returns every networked entity ID in ascending order.
func (s *Sim) IDs() []netconfig.EntityID {
	ids := make([]netconfig.EntityID, 0, len(s.entities))
	for id := range s.entities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// CombatantOf finds the live combatant controlled by peer.
func (s *Sim) CombatantOf(peer netconfig.PeerID) (*donburi.Entry, bool) {
	if peer == netconfig.NoPeer {
		return nil, false
	}
	for _, id := range s.IDs() {
		e, ok := s.Entry(id)
		if !ok || !e.HasComponent(components.Combatant) {
			continue
		}
		if components.NetID.Get(e).Owner == peer {
			return e, true
		}
	}
	return nil, false
}

// LocalCombatant is the combatant this peer controls, if any.
func (s *Sim) LocalCombatant() (*donburi.Entry, bool) {
	return s.CombatantOf(s.localPeer)
}

func idOf(e *donburi.Entry) netconfig.EntityID {
	if e == nil || !e.HasComponent(components.NetID) {
		return netconfig.NoEntity
	}
	return components.NetID.Get(e).ID
}

func (s *Sim) allocateID() netconfig.EntityID {
	s.nextID++
	return s.nextID
}

func (s *Sim) register(id netconfig.EntityID, e *donburi.Entry) {
	s.entities[id] = e.Entity()
	if id > s.nextID && !s.authority {
		s.nextID = id
	}
}

type nopOutbox struct{}

func (nopOutbox) Send(any)      {}
func (nopOutbox) Broadcast(any) {}
