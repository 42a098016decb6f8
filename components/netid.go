package components

import (
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/yohamta/donburi"
)

// NetIDData is the network identity of a replicated entity. Components refer
// to other entities by ID and resolve them through the entity table.
type NetIDData struct {
	ID    netconfig.EntityID
	Kind  netconfig.EntityKind
	Owner netconfig.PeerID // Controlling peer, NoPeer for server-owned
}

var NetID = donburi.NewComponentType[NetIDData]()
