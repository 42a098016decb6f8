package components

import "github.com/yohamta/donburi"

type CombatantData struct {
	Name       string
	SpawnIndex int // Spawn point used for the current life
}

var Combatant = donburi.NewComponentType[CombatantData]()
