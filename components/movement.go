package components

import (
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/yohamta/donburi"
)

type MovementData struct {
	Velocity     gamemath.Vec3
	InAir        bool
	Crouched     bool
	MaxWalkSpeed float64

	OrientToMovement bool
	UseControllerYaw bool
	Disabled         bool

	// Input for the next movement step, set by the controlling peer
	WishDir gamemath.Vec3
	Jump    bool
}

var Movement = donburi.NewComponentType[MovementData]()
