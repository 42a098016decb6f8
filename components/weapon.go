package components

import (
	"github.com/automoto/blaster-mp/physics"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/automoto/blaster-mp/timers"
	"github.com/yohamta/donburi"
)

// WeaponData holds a weapon's replicated state and its local presentation
// flags. State and Owner are replicated; everything else is derived from
// them by the weapon state hook on every peer.
type WeaponData struct {
	Kind  string
	State netconfig.WeaponState
	Owner netconfig.EntityID // Combatant holding the weapon

	PhysicsEnabled      bool
	QueryCollision      bool
	PickupWidgetVisible bool
	Attached            bool

	// Pickup sphere, authority only
	Sphere *physics.Body

	DropTimer timers.Handle
}

var Weapon = donburi.NewComponentType[WeaponData]()
