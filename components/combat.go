package components

import (
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/automoto/blaster-mp/timers"
	"github.com/yohamta/donburi"
)

// CombatData holds a combatant's weapon handling state. EquippedWeapon and
// Aiming are replicated; the rest is local to the peer that fires.
type CombatData struct {
	EquippedWeapon    netconfig.EntityID
	Aiming            bool
	FireButtonPressed bool
	CanFire           bool
	HitTarget         gamemath.Vec3
	OnTarget          bool
	FireTimer         timers.Handle
}

var Combat = donburi.NewComponentType[CombatData]()
