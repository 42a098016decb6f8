package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	cfg "github.com/automoto/blaster-mp/config"
	"github.com/automoto/blaster-mp/session"
	"github.com/automoto/blaster-mp/shared/leveldata"
	"github.com/automoto/blaster-mp/shared/messages"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/automoto/blaster-mp/systems"
	"github.com/leap-fish/necs/esync/srvsync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	"github.com/yohamta/donburi"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Options configures a dedicated server.
type Options struct {
	Name       string
	Version    string
	TickRate   int
	MaxPlayers int
	Level      *leveldata.LevelData
	DebugAddr  string // Empty disables the debug server
}

type peerConn struct {
	id      netconfig.PeerID
	client  *router.NetworkClient
	limiter *rate.Limiter
}

// Server binds the authoritative session to the websocket transport.
type Server struct {
	name    string
	session *session.Server
	mirror  *Mirror
	loop    *GameLoop
	debug   *http.Server

	transport *transports.WsServerTransport

	// Router callbacks run on necs goroutines
	mu       sync.RWMutex
	byClient map[*router.NetworkClient]*peerConn
	byPeer   map[netconfig.PeerID]*peerConn
	nextPeer netconfig.PeerID
}

// NewServer creates a new game server
func NewServer(opts Options) *Server {
	if opts.TickRate <= 0 {
		opts.TickRate = cfg.Net.TickRate
	}

	world := donburi.NewWorld()
	srvsync.UseEsync(world)

	s := &Server{
		name:     opts.Name,
		mirror:   NewMirror(world),
		byClient: make(map[*router.NetworkClient]*peerConn),
		byPeer:   make(map[netconfig.PeerID]*peerConn),
	}
	s.session = session.NewServer(session.ServerOptions{
		Name:       opts.Name,
		Version:    opts.Version,
		TickRate:   opts.TickRate,
		MaxPlayers: opts.MaxPlayers,
		Level:      opts.Level,
		Services:   systems.NopServices(),
		Events: session.Events{
			PeerJoined:   func(netconfig.PeerID, string) { peersConnected.Inc() },
			PeerLeft:     func(netconfig.PeerID) { peersConnected.Dec() },
			JoinRejected: func(string) { joinsRejected.Inc() },
			Fired:        func(netconfig.EntityID) { shotsFired.Inc() },
			Eliminated:   func(_, _ netconfig.EntityID) { eliminations.Inc() },
		},
	}, s)
	s.loop = NewGameLoop(s, opts.TickRate)
	if opts.DebugAddr != "" {
		s.debug = &http.Server{
			Addr:              opts.DebugAddr,
			Handler:           NewDebugRouter(s),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	s.setupRouterCallbacks()
	return s
}

// Start runs the game loop, the websocket transport and the debug server
// until ctx is cancelled or one of them fails.
func (s *Server) Start(ctx context.Context, port uint) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.loop.Run(ctx)
		return nil
	})

	s.transport = transports.NewWsServerTransport(port, "", nil)
	g.Go(func() error {
		if err := s.transport.Start(); err != nil {
			return fmt.Errorf("websocket transport: %w", err)
		}
		return nil
	})

	if s.debug != nil {
		g.Go(func() error {
			log.Printf("[server] debug endpoints on %s", s.debug.Addr)
			if err := s.debug.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("debug server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return s.debug.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

func (s *Server) setupRouterCallbacks() {
	router.OnConnect(func(client *router.NetworkClient) {
		s.onConnect(client)
	})

	router.OnDisconnect(func(client *router.NetworkClient, err error) {
		s.onDisconnect(client, err)
	})

	router.On(func(client *router.NetworkClient, msg messages.JoinRequest) {
		s.enqueue(client, msg, false)
	})
	router.On(func(client *router.NetworkClient, msg messages.MoveRequest) {
		s.enqueue(client, msg, false)
	})
	router.On(func(client *router.NetworkClient, msg messages.SetAimingRequest) {
		s.enqueue(client, msg, true)
	})
	router.On(func(client *router.NetworkClient, msg messages.FireRequest) {
		s.enqueue(client, msg, true)
	})
	router.On(func(client *router.NetworkClient, msg messages.EquipRequest) {
		s.enqueue(client, msg, true)
	})

	router.OnError(func(client *router.NetworkClient, err error) {
		log.Printf("[server] client error: %v", err)
	})
}

func (s *Server) onConnect(client *router.NetworkClient) {
	s.mu.Lock()
	s.nextPeer++
	pc := &peerConn{
		id:      s.nextPeer,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(cfg.Net.RPCRate), cfg.Net.RPCBurst),
	}
	s.byClient[client] = pc
	s.byPeer[pc.id] = pc
	s.mu.Unlock()

	log.Printf("[server] client %s connected as peer %d", client.Id(), pc.id)
}

func (s *Server) onDisconnect(client *router.NetworkClient, err error) {
	s.mu.Lock()
	pc, ok := s.byClient[client]
	if ok {
		delete(s.byClient, client)
		delete(s.byPeer, pc.id)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	if err != nil {
		log.Printf("[server] peer %d disconnected with error: %v", pc.id, err)
	} else {
		log.Printf("[server] peer %d disconnected", pc.id)
	}
	s.session.Disconnect(pc.id)
}

// enqueue forwards a client message to the simulation. Limited messages
// share the connection's token bucket.
func (s *Server) enqueue(client *router.NetworkClient, msg any, limited bool) {
	s.mu.RLock()
	pc, ok := s.byClient[client]
	s.mu.RUnlock()
	if !ok {
		rpcRejected.WithLabelValues("unknown_peer").Inc()
		return
	}
	if limited && !pc.limiter.Allow() {
		rpcRejected.WithLabelValues("rate_limit").Inc()
		log.Printf("[server] peer %d over the RPC rate, dropping %T", pc.id, msg)
		return
	}
	if !s.session.Enqueue(pc.id, msg) {
		rpcRejected.WithLabelValues("inbox_full").Inc()
	}
}

// SendTo delivers a message to one peer. It runs on the game loop.
func (s *Server) SendTo(peer netconfig.PeerID, msg any) {
	s.mu.RLock()
	pc, ok := s.byPeer[peer]
	s.mu.RUnlock()
	if !ok {
		return
	}
	if err := pc.client.SendMessage(msg); err != nil {
		log.Printf("[server] send %T to peer %d: %v", msg, peer, err)
	}
}

// step advances the session one tick and mirrors its transforms for esync.
func (s *Server) step(dt time.Duration) {
	s.session.Step(dt)
	s.mirror.Update(s.session.Transforms())
}

// PlayerCount is the number of joined players.
func (s *Server) PlayerCount() int {
	return s.session.PeerCount()
}
