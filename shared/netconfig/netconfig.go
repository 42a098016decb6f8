// Package netconfig defines lightweight types shared between client and server
// for network serialization. It must have zero dependencies on the simulation
// packages so the wire types and the dedicated server binary stay headless.
package netconfig

// EntityID is the stable network identity of a replicated entity. It is
// assigned by the authority and never reused within a session.
type EntityID uint32

// NoEntity is the zero EntityID, used for "no reference".
const NoEntity EntityID = 0

// PeerID identifies a connected peer. Zero means "no peer" (a dedicated server
// owns nothing).
type PeerID uint32

const NoPeer PeerID = 0

// Role describes how a peer relates to a given entity.
type Role int

const (
	RoleNone Role = iota
	RoleSimulatedProxy
	RoleAutonomousProxy
	RoleAuthority
)

func (r Role) String() string {
	switch r {
	case RoleSimulatedProxy:
		return "SimulatedProxy"
	case RoleAutonomousProxy:
		return "AutonomousProxy"
	case RoleAuthority:
		return "Authority"
	}
	return "None"
}

// EntityKind selects the archetype a peer materializes for a spawned entity.
type EntityKind uint8

const (
	KindCombatant EntityKind = iota + 1
	KindWeapon
	KindProjectile
)

func (k EntityKind) String() string {
	switch k {
	case KindCombatant:
		return "combatant"
	case KindWeapon:
		return "weapon"
	case KindProjectile:
		return "projectile"
	}
	return "unknown"
}

// WeaponState is the replicated lifecycle state of a weapon.
type WeaponState uint8

const (
	WeaponInitial WeaponState = iota
	WeaponEquipped
	WeaponDropped
)

func (s WeaponState) String() string {
	switch s {
	case WeaponInitial:
		return "Initial"
	case WeaponEquipped:
		return "Equipped"
	case WeaponDropped:
		return "Dropped"
	}
	return "unknown"
}

// CanTransition reports whether next is a legal successor of s. Nothing ever
// returns to Initial, and re-entering the current state is not a transition.
func (s WeaponState) CanTransition(next WeaponState) bool {
	switch next {
	case WeaponEquipped:
		return s == WeaponInitial || s == WeaponDropped
	case WeaponDropped:
		return s == WeaponEquipped
	}
	return false
}

// TurningInPlace is the turn-in-place animation state of a combatant.
type TurningInPlace uint8

const (
	NotTurning TurningInPlace = iota
	TurnLeft
	TurnRight
)

func (t TurningInPlace) String() string {
	switch t {
	case TurnLeft:
		return "left"
	case TurnRight:
		return "right"
	}
	return "none"
}

// FieldID identifies a replicated field.
type FieldID uint16

// ActionID represents a logical input action.
type ActionID int

const (
	ActionNone ActionID = iota
	ActionAim
	ActionFire
	ActionEquip
	ActionCrouch
	ActionJump
	ActionCount // Must be last - used for array sizing
)
