package components

import (
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/yohamta/donburi"
)

type DamageEventData struct {
	Amount     float64
	Instigator netconfig.EntityID // Combatant credited with the damage
}

var DamageEvent = donburi.NewComponentType[DamageEventData]()
