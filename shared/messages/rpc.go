package messages

import "github.com/automoto/blaster-mp/shared/gamemath"

// Client to server requests. The sender's combatant is implied by the
// connection the request arrives on.

// SetAimingRequest asks the authority to apply the aiming flag canonically.
type SetAimingRequest struct {
	Aiming bool
}

// FireRequest carries the crosshair hit point resolved on the firing client.
type FireRequest struct {
	Target gamemath.Vec3
}

// EquipRequest asks the authority to equip the weapon currently in pickup
// range. The authority re-validates the overlap when it arrives.
type EquipRequest struct{}

// MoveRequest is sent every client tick with the locally simulated movement
// state of the sender's combatant.
type MoveRequest struct {
	Sequence uint32
	Position gamemath.Vec3
	Velocity gamemath.Vec3
	AimYaw   float64
	AimPitch float64
	InAir    bool
	Crouched bool
}
