package session

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/automoto/blaster-mp/components"
	cfg "github.com/automoto/blaster-mp/config"
	"github.com/automoto/blaster-mp/replication"
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/automoto/blaster-mp/shared/leveldata"
	"github.com/automoto/blaster-mp/shared/messages"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/automoto/blaster-mp/systems"
	"github.com/yohamta/donburi"
)

// ErrRejected is returned by Client.Err after the authority refused the join.
var ErrRejected = errors.New("join rejected")

// ClientState tracks the join handshake.
type ClientState int

const (
	ClientJoining ClientState = iota
	ClientJoined
	ClientRejected
)

// ClientOptions configures a client peer.
type ClientOptions struct {
	Name           string
	Version        string
	ReconnectToken string
	Level          *leveldata.LevelData
	Services       systems.Services
	Rand           *rand.Rand
}

// Input is one frame of player intent for the controlled combatant.
type Input struct {
	Move     gamemath.Vec3 // Wish direction on the ground plane
	AimYaw   float64
	AimPitch float64
	Actions  [netconfig.ActionCount]bool // Held state per action
}

// Pressed returns an input with the given actions held.
func Pressed(actions ...netconfig.ActionID) Input {
	var in Input
	for _, a := range actions {
		in.Actions[a] = true
	}
	return in
}

// Held reports whether action a is held this frame.
func (in Input) Held(a netconfig.ActionID) bool {
	return in.Actions[a]
}

func (in Input) changed(prev Input, a netconfig.ActionID) bool {
	return in.Actions[a] != prev.Actions[a]
}

// Client is a proxy peer.
type Client struct {
	Sim *systems.Sim

	opts    ClientOptions
	up      Upstream
	replica *replication.Replica
	inbox   chan any

	state      ClientState
	err        error
	token      string
	serverName string
	tickRate   int
	prev       Input
}

func NewClient(opts ClientOptions, up Upstream) *Client {
	if opts.Version == "" {
		opts.Version = cfg.Net.ProtocolVersion
	}
	c := &Client{
		opts:  opts,
		up:    up,
		inbox: make(chan any, inboxSize),
	}
	c.Sim = systems.NewSim(systems.Options{
		Level:    opts.Level,
		Services: opts.Services,
		Outbox:   clientOutbox{up},
		Rand:     opts.Rand,
	})
	c.replica = replication.NewReplica(c.Sim.Fields())
	return c
}

// Join starts the handshake.
func (c *Client) Join() {
	c.up.Send(messages.JoinRequest{
		Version:        c.opts.Version,
		PlayerName:     c.opts.Name,
		ReconnectToken: c.opts.ReconnectToken,
	})
}

// Deliver queues a message from the authority. Safe from any goroutine.
func (c *Client) Deliver(msg any) bool {
	return push(c.inbox, msg, "client")
}

func (c *Client) State() ClientState {
	return c.state
}

// Err reports why the join failed.
func (c *Client) Err() error {
	return c.err
}

// PeerID is the ID the authority assigned, NoPeer before the join completes.
func (c *Client) PeerID() netconfig.PeerID {
	return c.Sim.LocalPeer()
}

// ReconnectToken identifies this player across connections.
func (c *Client) ReconnectToken() string {
	return c.token
}

func (c *Client) ServerName() string {
	return c.serverName
}

func (c *Client) TickRate() int {
	return c.tickRate
}

// Combatant is the combatant this client controls.
func (c *Client) Combatant() (*donburi.Entry, bool) {
	return c.Sim.LocalCombatant()
}

// Step applies everything the authority sent since the last step, then
// advances the local simulation.
func (c *Client) Step(dt time.Duration) {
	for _, msg := range drainChan(c.inbox) {
		c.handle(msg)
	}
	c.Sim.Step(dt)
}

func (c *Client) handle(msg any) {
	switch m := msg.(type) {
	case messages.JoinAccepted:
		c.state = ClientJoined
		c.token = m.ReconnectToken
		c.serverName = m.ServerName
		c.tickRate = m.TickRate
		c.Sim.SetLocalPeer(m.PeerID)
		log.Printf("[client] joined %q as peer %d", m.ServerName, m.PeerID)
	case messages.JoinRejected:
		c.state = ClientRejected
		c.err = fmt.Errorf("%w: %s", ErrRejected, m.Reason)
		log.Printf("[client] %v", c.err)
	case messages.EntitySpawned:
		c.Sim.Materialize(m)
	case messages.EntityDestroyed:
		c.Sim.DestroyEntity(m.ID)
		c.replica.Forget(m.ID)
	case messages.ReplicationDelta:
		c.applyDelta(m)
	case messages.TransformSnapshot:
		for _, t := range m.Transforms {
			c.Sim.ApplyTransform(t)
		}
	case messages.FireEvent, messages.ElimEvent:
		c.Sim.HandleMulticast(m)
	default:
		log.Printf("[client] unknown message %T", msg)
	}
}

func (c *Client) applyDelta(d messages.ReplicationDelta) {
	for _, u := range d.Updates {
		e, ok := c.Sim.Entry(u.Entity)
		if !ok {
			continue
		}
		if _, err := c.replica.Apply(e, u); err != nil {
			log.Printf("[client] tick %d: %v", d.Tick, err)
		}
	}
}

// Control feeds one frame of input to the controlled combatant. Button
// changes are forwarded as edges.
func (c *Client) Control(in Input) {
	e, ok := c.Combatant()
	if !ok {
		c.prev = Input{}
		return
	}

	mv := components.Movement.Get(e)
	mv.WishDir = in.Move
	mv.Jump = in.Held(netconfig.ActionJump)
	mv.Crouched = in.Held(netconfig.ActionCrouch)
	tr := components.Transform.Get(e)
	tr.AimYaw = gamemath.NormalizeAxis(in.AimYaw)
	tr.AimPitch = in.AimPitch

	if in.changed(c.prev, netconfig.ActionAim) {
		c.Sim.SetAiming(e, in.Held(netconfig.ActionAim))
	}
	if in.changed(c.prev, netconfig.ActionFire) {
		c.Sim.FireButtonPressed(e, in.Held(netconfig.ActionFire))
	}
	if in.Held(netconfig.ActionEquip) && !c.prev.Held(netconfig.ActionEquip) {
		c.Sim.EquipPressed(e)
	}
	c.prev = in
}

type clientOutbox struct {
	up Upstream
}

func (o clientOutbox) Send(msg any) {
	o.up.Send(msg)
}

func (o clientOutbox) Broadcast(msg any) {
	log.Printf("[client] cannot multicast %T", msg)
}
