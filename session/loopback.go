package session

import (
	"time"

	"github.com/automoto/blaster-mp/shared/netconfig"
)

// Loopback connects one authority with any number of clients in the same
// process. Messages are passed by value with no serialization; ordering per
// peer is preserved.
type Loopback struct {
	Server *Server

	clients  map[netconfig.PeerID]*Client
	order    []netconfig.PeerID
	nextPeer netconfig.PeerID
}

// NewLoopback creates the authority. Transform snapshots are always on.
func NewLoopback(opts ServerOptions) *Loopback {
	l := &Loopback{clients: make(map[netconfig.PeerID]*Client)}
	opts.Transforms = true
	l.Server = NewServer(opts, loopbackTransport{l})
	return l
}

// Connect adds a client and starts its join handshake. The join completes
// on the next Step.
func (l *Loopback) Connect(opts ClientOptions) *Client {
	l.nextPeer++
	peer := l.nextPeer
	c := NewClient(opts, loopbackUpstream{server: l.Server, peer: peer})
	l.clients[peer] = c
	l.order = append(l.order, peer)
	c.Join()
	return c
}

// Disconnect drops a client's connection.
func (l *Loopback) Disconnect(c *Client) {
	for i, peer := range l.order {
		if l.clients[peer] != c {
			continue
		}
		delete(l.clients, peer)
		l.order = append(l.order[:i], l.order[i+1:]...)
		l.Server.Disconnect(peer)
		return
	}
}

// Step advances the authority, then every client in connection order.
func (l *Loopback) Step(dt time.Duration) {
	l.Server.Step(dt)
	for _, peer := range l.order {
		l.clients[peer].Step(dt)
	}
}

type loopbackTransport struct {
	l *Loopback
}

func (t loopbackTransport) SendTo(peer netconfig.PeerID, msg any) {
	if c, ok := t.l.clients[peer]; ok {
		c.Deliver(msg)
	}
}

type loopbackUpstream struct {
	server *Server
	peer   netconfig.PeerID
}

func (u loopbackUpstream) Send(msg any) {
	u.server.Enqueue(u.peer, msg)
}
