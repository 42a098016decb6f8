package components

import (
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/yohamta/donburi"
)

// OverlapData is the weapon whose pickup sphere the combatant stands in.
// Only the owning peer receives it.
type OverlapData struct {
	Weapon netconfig.EntityID
}

var Overlap = donburi.NewComponentType[OverlapData]()
