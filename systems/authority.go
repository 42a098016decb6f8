package systems

import (
	"log"

	"github.com/automoto/blaster-mp/components"
	"github.com/automoto/blaster-mp/shared/messages"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/yohamta/donburi"
)

// HasAuthority reports whether this peer is the source of truth.
func (s *Sim) HasAuthority() bool {
	return s.authority
}

// Role is this peer's role for entity e.
func (s *Sim) Role(e *donburi.Entry) netconfig.Role {
	if e == nil || !e.Valid() {
		return netconfig.RoleNone
	}
	if s.authority {
		return netconfig.RoleAuthority
	}
	if s.IsLocallyControlled(e) {
		return netconfig.RoleAutonomousProxy
	}
	return netconfig.RoleSimulatedProxy
}

// IsLocallyControlled reports whether this peer drives combatant e.
func (s *Sim) IsLocallyControlled(e *donburi.Entry) bool {
	if !e.HasComponent(components.NetID) {
		return false
	}
	owner := components.NetID.Get(e).Owner
	return owner != netconfig.NoPeer && owner == s.localPeer
}

// Multicast sends msg to every remote peer and handles it locally, the way
// every peer will.
func (s *Sim) Multicast(msg any) {
	if !s.authority {
		log.Printf("[sim] multicast %T from non-authority dropped", msg)
		return
	}
	s.out.Broadcast(msg)
	s.HandleMulticast(msg)
}

// HandleMulticast runs the receiving side of a multicast on this peer.
func (s *Sim) HandleMulticast(msg any) {
	switch m := msg.(type) {
	case messages.FireEvent:
		s.HandleFireEvent(m)
	case messages.ElimEvent:
		s.HandleElimEvent(m)
	default:
		log.Printf("[sim] unknown multicast %T", msg)
	}
}
