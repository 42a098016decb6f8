package components

import (
	"time"

	"github.com/automoto/blaster-mp/shared/netconfig"
	"github.com/yohamta/donburi"
)

// OrientationData drives aim offsets and turn-in-place.
type OrientationData struct {
	AOYaw          float64
	AOPitch        float64
	InterpAOYaw    float64
	StartingAimYaw float64
	Turning        netconfig.TurningInPlace
	RotateRootBone bool

	// Simulated proxies only
	ProxyRotation          float64
	ProxyRotationLastFrame float64
	ProxyYaw               float64
	SinceMovementRep       time.Duration
}

var Orientation = donburi.NewComponentType[OrientationData]()
