package netcomponents

import (
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/yohamta/donburi"
)

// NetIdentityData ties an esync network entity to the session's stable
// entity ID so clients can match snapshots to replicated entities.
type NetIdentityData struct {
	Entity netconfig.EntityID
}

var NetIdentity = donburi.NewComponentType[NetIdentityData]()
