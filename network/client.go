package network

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/automoto/blaster-mp/session"
	"github.com/automoto/blaster-mp/shared/messages"
	"github.com/automoto/blaster-mp/shared/netcomponents"
	"github.com/coder/websocket"
	"github.com/leap-fish/necs/esync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
)

// ErrNotConnected is returned when sending without an open connection.
var ErrNotConnected = errors.New("not connected")

type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateError
)

// Client connects a session.Client to a dedicated server over websocket.
// Router callbacks run on necs goroutines and only hand messages to the
// session inbox; everything else happens in Step on the caller's goroutine.
type Client struct {
	session *session.Client

	mu        sync.RWMutex
	state     ConnState
	lastError error
	conn      *websocket.Conn

	snapshotCh chan esync.WorldSnapshot // size-1 buffered; latest wins
	snapshots  uint64
}

func NewClient(opts session.ClientOptions) *Client {
	c := &Client{
		state:      StateDisconnected,
		snapshotCh: make(chan esync.WorldSnapshot, 1),
	}
	c.session = session.NewClient(opts, c)
	return c
}

// Session is the simulation this connection feeds.
func (c *Client) Session() *session.Client {
	return c.session
}

// Connect dials the server in a background goroutine and joins once the
// socket is up.
func (c *Client) Connect(address string) {
	c.mu.Lock()
	c.state = StateConnecting
	c.lastError = nil
	c.mu.Unlock()

	router.OnConnect(func(_ *router.NetworkClient) {
		log.Println("[client] connected to server")
		c.mu.Lock()
		c.state = StateConnected
		c.mu.Unlock()
		c.session.Join()
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinAccepted) {
		c.session.Deliver(msg)
	})
	router.On(func(_ *router.NetworkClient, msg messages.JoinRejected) {
		c.session.Deliver(msg)
	})
	router.On(func(_ *router.NetworkClient, msg messages.EntitySpawned) {
		c.session.Deliver(msg)
	})
	router.On(func(_ *router.NetworkClient, msg messages.EntityDestroyed) {
		c.session.Deliver(msg)
	})
	router.On(func(_ *router.NetworkClient, msg messages.ReplicationDelta) {
		c.session.Deliver(msg)
	})
	router.On(func(_ *router.NetworkClient, msg messages.FireEvent) {
		c.session.Deliver(msg)
	})
	router.On(func(_ *router.NetworkClient, msg messages.ElimEvent) {
		c.session.Deliver(msg)
	})

	router.On(func(_ *router.NetworkClient, snapshot esync.WorldSnapshot) {
		select { // drain stale, push latest
		case <-c.snapshotCh:
		default:
		}
		c.snapshotCh <- snapshot
	})

	router.OnDisconnect(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] disconnected: %v", err)
		c.mu.Lock()
		if c.state != StateError {
			c.state = StateDisconnected
		}
		c.conn = nil
		c.mu.Unlock()
	})

	router.OnError(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] error: %v", err)
	})

	go func() {
		transport := transports.NewWsClientTransport("ws://" + address)
		err := transport.Start(func(conn *websocket.Conn) {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
		})
		if err != nil {
			c.setError(fmt.Errorf("connection failed: %w", err))
		}
	}()
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.state = StateDisconnected
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.CloseNow()
	}

	router.ResetRouter()
}

func (c *Client) State() ConnState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// Step applies the newest transform snapshot and everything else the server
// sent, then advances the local simulation.
func (c *Client) Step(dt time.Duration) {
	select {
	case snap := <-c.snapshotCh:
		c.snapshots++
		c.session.Deliver(TransformsFromSnapshot(c.snapshots, snap))
	default:
	}
	c.session.Step(dt)
}

// Send implements session.Upstream.
func (c *Client) Send(msg any) {
	if err := c.SendMessage(msg); err != nil {
		log.Printf("[client] send %T: %v", msg, err)
	}
}

func (c *Client) SendMessage(msg any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}

	payload, err := router.Serialize(msg)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	return conn.Write(context.Background(), websocket.MessageBinary, payload)
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
}

// TransformsFromSnapshot converts an esync world snapshot into session
// transforms. Entities without both an identity and a transform are skipped.
func TransformsFromSnapshot(tick uint64, snapshot esync.WorldSnapshot) messages.TransformSnapshot {
	out := messages.TransformSnapshot{Tick: tick}
	for _, ent := range snapshot {
		var identity *netcomponents.NetIdentityData
		var transform *netcomponents.NetTransformData
		for _, componentBytes := range ent.State {
			instance, err := esync.Mapper.Deserialize(componentBytes)
			if err != nil {
				continue
			}
			switch v := instance.(type) {
			case netcomponents.NetIdentityData:
				identity = &v
			case netcomponents.NetTransformData:
				transform = &v
			}
		}
		if identity == nil || transform == nil {
			continue
		}
		out.Transforms = append(out.Transforms, transform.EntityTransform(identity.Entity))
	}
	return out
}
