// Package session runs one peer of a match. A Server owns the authoritative
// simulation and replicates it; a Client mirrors it and forwards its player's
// intent. Both are stepped from a single goroutine. Network goroutines only
// enqueue into their inboxes, which are drained at the start of every Step.
package session

import (
	"log"

	"github.com/automoto/blaster-mp/shared/netconfig"
)

// inboxSize bounds how many messages may queue between two steps.
const inboxSize = 4096

// Transport delivers authority output to one connected peer.
type Transport interface {
	SendTo(peer netconfig.PeerID, msg any)
}

// Upstream delivers a client's messages to the authority.
type Upstream interface {
	Send(msg any)
}

// Events lets the process hosting a session observe it. All are optional.
type Events struct {
	PeerJoined   func(peer netconfig.PeerID, name string)
	PeerLeft     func(peer netconfig.PeerID)
	JoinRejected func(reason string)
	Fired        func(shooter netconfig.EntityID)
	Eliminated   func(victim, attacker netconfig.EntityID)
	Tick         func(tick uint64, peers int)
}

type envelope struct {
	peer netconfig.PeerID
	msg  any
}

// leave is queued when a peer's connection goes away.
type leave struct{}

func push[T any](ch chan T, v T, what string) bool {
	select {
	case ch <- v:
		return true
	default:
		log.Printf("[session] %s inbox full, message dropped", what)
		return false
	}
}

func drainChan[T any](ch chan T) []T {
	var out []T
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}
