package components

import (
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/yohamta/donburi"
)

// TransformData places an entity. Yaw is the body facing; AimYaw and
// AimPitch are the controller's view rotation in degrees.
type TransformData struct {
	Position gamemath.Vec3
	Yaw      float64
	AimYaw   float64
	AimPitch float64
}

var Transform = donburi.NewComponentType[TransformData]()
