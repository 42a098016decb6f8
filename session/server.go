package session

import (
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/automoto/blaster-mp/components"
	cfg "github.com/automoto/blaster-mp/config"
	"github.com/automoto/blaster-mp/replication"
	"github.com/automoto/blaster-mp/shared/leveldata"
	"github.com/automoto/blaster-mp/shared/messages"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/automoto/blaster-mp/systems"
	"github.com/google/uuid"
	"github.com/yohamta/donburi"
)

// ServerOptions configures the authority.
type ServerOptions struct {
	Name       string
	Version    string
	TickRate   int
	MaxPlayers int
	Level      *leveldata.LevelData
	Services   systems.Services
	Rand       *rand.Rand
	GameMode   systems.GameMode
	Events     Events

	// Transforms sends a TransformSnapshot to every peer each tick. Hosts
	// that mirror transforms through esync leave it off.
	Transforms bool
}

type peerState struct {
	name   string
	token  string
	joined bool
}

// Server is the authoritative peer.
type Server struct {
	Sim *systems.Sim

	opts      ServerOptions
	transport Transport
	source    *replication.Source
	inbox     chan envelope
	tick      uint64
	joins     int

	mu       sync.Mutex
	peers    map[netconfig.PeerID]*peerState
	departed map[string]string // reconnect token -> player name
}

// NewServer builds the authority and places the level's weapons.
func NewServer(opts ServerOptions, transport Transport) *Server {
	if opts.Version == "" {
		opts.Version = cfg.Net.ProtocolVersion
	}
	if opts.TickRate <= 0 {
		opts.TickRate = cfg.Net.TickRate
	}
	if opts.MaxPlayers <= 0 {
		opts.MaxPlayers = cfg.Net.MaxPlayers
	}

	s := &Server{
		opts:      opts,
		transport: transport,
		inbox:     make(chan envelope, inboxSize),
		peers:     make(map[netconfig.PeerID]*peerState),
		departed:  make(map[string]string),
	}
	s.Sim = systems.NewSim(systems.Options{
		Authority: true,
		Level:     opts.Level,
		Services:  opts.Services,
		Outbox:    serverOutbox{s},
		Rand:      opts.Rand,
		GameMode:  opts.GameMode,
		Hooks: systems.Hooks{
			Spawned:    s.onSpawned,
			Destroyed:  s.onDestroyed,
			Fired:      s.onFired,
			Eliminated: opts.Events.Eliminated,
		},
	})
	s.source = replication.NewSource(s.Sim.Fields())
	s.Sim.SpawnLevelWeapons()
	return s
}

// Enqueue hands a message received from peer to the simulation goroutine.
// Safe to call from any goroutine.
func (s *Server) Enqueue(peer netconfig.PeerID, msg any) bool {
	return push(s.inbox, envelope{peer: peer, msg: msg}, "server")
}

// Disconnect queues the removal of peer.
func (s *Server) Disconnect(peer netconfig.PeerID) {
	s.Enqueue(peer, leave{})
}

// PeerCount is the number of joined peers. Safe from any goroutine.
func (s *Server) PeerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.peers {
		if p.joined {
			n++
		}
	}
	return n
}

// Tick is the number of steps taken.
func (s *Server) Tick() uint64 {
	return s.tick
}

// Step drains the inbox, advances the simulation and replicates the result.
func (s *Server) Step(dt time.Duration) {
	for _, env := range drainChan(s.inbox) {
		s.handle(env)
	}
	s.Sim.Step(dt)
	s.tick++
	s.flush()
	if s.opts.Events.Tick != nil {
		s.opts.Events.Tick(s.tick, s.PeerCount())
	}
}

func (s *Server) handle(env envelope) {
	if req, ok := env.msg.(messages.JoinRequest); ok {
		s.join(env.peer, req)
		return
	}
	if _, ok := env.msg.(leave); ok {
		s.leave(env.peer)
		return
	}

	if !s.joined(env.peer) {
		log.Printf("[session] %T from peer %d before join, ignoring", env.msg, env.peer)
		return
	}
	c, ok := s.Sim.CombatantOf(env.peer)
	if !ok {
		// Eliminated combatants are briefly absent during respawn.
		return
	}

	switch m := env.msg.(type) {
	case messages.SetAimingRequest:
		s.Sim.ServerSetAiming(c, m.Aiming)
	case messages.FireRequest:
		s.Sim.ServerFire(c, m.Target)
	case messages.EquipRequest:
		s.Sim.ServerEquip(c)
	case messages.MoveRequest:
		s.Sim.ApplyMove(c, m)
	default:
		log.Printf("[session] unknown message %T from peer %d", env.msg, env.peer)
	}
}

func (s *Server) joined(peer netconfig.PeerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.peers[peer]
	return ok && p.joined
}

func (s *Server) reject(peer netconfig.PeerID, reason string) {
	log.Printf("[session] rejecting peer %d: %s", peer, reason)
	s.transport.SendTo(peer, messages.JoinRejected{Reason: reason})
	if s.opts.Events.JoinRejected != nil {
		s.opts.Events.JoinRejected(reason)
	}
}

func (s *Server) join(peer netconfig.PeerID, req messages.JoinRequest) {
	if req.Version != "" && req.Version != s.opts.Version {
		s.reject(peer, fmt.Sprintf("version mismatch: server %s, client %s", s.opts.Version, req.Version))
		return
	}

	s.mu.Lock()
	if p, ok := s.peers[peer]; ok && p.joined {
		s.mu.Unlock()
		log.Printf("[session] peer %d already joined", peer)
		return
	}
	count := 0
	for _, p := range s.peers {
		if p.joined {
			count++
		}
		if req.ReconnectToken != "" && p.token == req.ReconnectToken {
			s.mu.Unlock()
			s.reject(peer, "already connected")
			return
		}
	}
	if count >= s.opts.MaxPlayers {
		s.mu.Unlock()
		s.reject(peer, "server full")
		return
	}

	name := req.PlayerName
	token := uuid.NewString()
	if prev, ok := s.departed[req.ReconnectToken]; ok {
		delete(s.departed, req.ReconnectToken)
		token = req.ReconnectToken
		if name == "" {
			name = prev
		}
		log.Printf("[session] peer %d reconnected as %q", peer, prev)
	}
	if name == "" {
		name = fmt.Sprintf("Player %d", peer)
	}
	s.peers[peer] = &peerState{name: name, token: token, joined: true}
	s.mu.Unlock()

	s.transport.SendTo(peer, messages.JoinAccepted{
		PeerID:         peer,
		ReconnectToken: token,
		ServerName:     s.opts.Name,
		TickRate:       s.opts.TickRate,
	})

	// Spawns go out before the first delta that mentions them.
	for _, id := range s.Sim.IDs() {
		if e, ok := s.Sim.Entry(id); ok {
			s.transport.SendTo(peer, s.Sim.Describe(e))
		}
	}
	s.source.AddPeer(peer)

	index := -1
	if n := len(s.Sim.SpawnPoints()); n > 0 {
		index = s.joins % n
	}
	s.joins++
	s.Sim.SpawnCombatant(peer, name, index)

	log.Printf("[session] peer %d joined as %q", peer, name)
	if s.opts.Events.PeerJoined != nil {
		s.opts.Events.PeerJoined(peer, name)
	}
}

func (s *Server) leave(peer netconfig.PeerID) {
	s.mu.Lock()
	p, ok := s.peers[peer]
	if ok {
		delete(s.peers, peer)
		if p.joined {
			s.departed[p.token] = p.name
		}
	}
	s.mu.Unlock()
	if !ok || !p.joined {
		return
	}

	s.source.RemovePeer(peer)
	s.Sim.RemovePeer(peer)

	log.Printf("[session] peer %d (%s) left", peer, p.name)
	if s.opts.Events.PeerLeft != nil {
		s.opts.Events.PeerLeft(peer)
	}
}

// joinedPeers returns the joined peers in ascending order.
func (s *Server) joinedPeers() []netconfig.PeerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]netconfig.PeerID, 0, len(s.peers))
	for id, p := range s.peers {
		if p.joined {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *Server) broadcast(msg any) {
	for _, peer := range s.joinedPeers() {
		s.transport.SendTo(peer, msg)
	}
}

func (s *Server) flush() {
	ids := s.Sim.IDs()
	for _, id := range ids {
		if e, ok := s.Sim.Entry(id); ok {
			s.source.Capture(id, e)
		}
	}

	peers := s.joinedPeers()
	for _, peer := range peers {
		if updates := s.source.Delta(peer); len(updates) > 0 {
			s.transport.SendTo(peer, messages.ReplicationDelta{Tick: s.tick, Updates: updates})
		}
	}

	if !s.opts.Transforms || len(peers) == 0 {
		return
	}
	snap := messages.TransformSnapshot{Tick: s.tick, Transforms: s.Transforms()}
	for _, peer := range peers {
		s.transport.SendTo(peer, snap)
	}
}

// Transforms captures the movement state of every replicated entity.
func (s *Server) Transforms() []messages.EntityTransform {
	ids := s.Sim.IDs()
	out := make([]messages.EntityTransform, 0, len(ids))
	for _, id := range ids {
		e, ok := s.Sim.Entry(id)
		if !ok || !e.HasComponent(components.Transform) {
			continue
		}
		out = append(out, s.Sim.TransformOf(e))
	}
	return out
}

func (s *Server) onSpawned(_ *donburi.Entry, msg messages.EntitySpawned) {
	s.source.Track(msg.ID, msg.Owner)
	s.broadcast(msg)
}

func (s *Server) onDestroyed(id netconfig.EntityID) {
	s.source.Untrack(id)
	s.broadcast(messages.EntityDestroyed{ID: id})
}

func (s *Server) onFired(msg messages.FireEvent) {
	if s.opts.Events.Fired != nil {
		s.opts.Events.Fired(msg.Shooter)
	}
}

type serverOutbox struct {
	s *Server
}

func (o serverOutbox) Send(msg any) {
	log.Printf("[session] authority has nowhere to send %T", msg)
}

func (o serverOutbox) Broadcast(msg any) {
	o.s.broadcast(msg)
}
