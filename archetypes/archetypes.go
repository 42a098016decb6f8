package archetypes

import (
	"github.com/automoto/blaster-mp/components"
	"github.com/automoto/blaster-mp/tags"
	"github.com/yohamta/donburi"
)

var (
	Combatant = newArchetype(
		tags.Combatant,
		tags.CrosshairTarget,
		components.NetID,
		components.Combatant,
		components.Transform,
		components.Movement,
		components.Health,
		components.Combat,
		components.Orientation,
		components.Overlap,
		components.Elim,
		components.Body,
	)
	Weapon = newArchetype(
		tags.Weapon,
		components.NetID,
		components.Weapon,
		components.Transform,
		components.Body,
	)
	Projectile = newArchetype(
		tags.Projectile,
		components.NetID,
		components.Projectile,
		components.Transform,
	)
	Casing = newArchetype(
		tags.Casing,
		components.Casing,
		components.Transform,
	)
)

type archetype struct {
	components []donburi.IComponentType
}

func newArchetype(cs ...donburi.IComponentType) *archetype {
	return &archetype{
		components: cs,
	}
}

func (a *archetype) Spawn(world donburi.World, cs ...donburi.IComponentType) *donburi.Entry {
	e := world.Entry(world.Create(
		append(a.components, cs...)...,
	))
	return e
}
