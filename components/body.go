package components

import (
	"github.com/automoto/blaster-mp/physics"
	"github.com/yohamta/donburi"
)

// BodyData links an entity to its collision volume.
type BodyData struct {
	Body *physics.Body
}

var Body = donburi.NewComponentType[BodyData]()
