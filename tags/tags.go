package tags

import "github.com/yohamta/donburi"

var (
	Combatant  = donburi.NewTag().SetName("Combatant")
	Weapon     = donburi.NewTag().SetName("Weapon")
	Projectile = donburi.NewTag().SetName("Projectile")
	Casing     = donburi.NewTag().SetName("Casing")

	// CrosshairTarget marks entities that turn the crosshair red
	CrosshairTarget = donburi.NewTag().SetName("CrosshairTarget")
)
