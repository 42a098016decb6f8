package components

import (
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/automoto/blaster-mp/timers"
	"github.com/yohamta/donburi"
)

type ProjectileData struct {
	Instigator netconfig.EntityID // Combatant that fired it
	Weapon     netconfig.EntityID
	Damage     float64
	Velocity   gamemath.Vec3
	Lifetime   timers.Handle
}

var Projectile = donburi.NewComponentType[ProjectileData]()
