package components

import (
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/automoto/blaster-mp/timers"
	"github.com/yohamta/donburi"
)

// CasingData is a spent shell. Casings exist only on the peer that spawned
// them.
type CasingData struct {
	Velocity gamemath.Vec3
	DidHit   bool
	Expire   timers.Handle
}

var Casing = donburi.NewComponentType[CasingData]()
