package messages

import (
	"github.com/automoto/blaster-mp/shared/gamemath"
	"github.com/automoto/blaster-mp/shared/netconfig"
)

// FireEvent is multicast to every peer when the authority accepts a fire
// request. It triggers the fire montage, weapon effects and casing ejection.
type FireEvent struct {
	Shooter   netconfig.EntityID
	Target    gamemath.Vec3
	Timestamp int64 // Authority simulation time (ms)
}

// ElimEvent is multicast once when a combatant is eliminated.
type ElimEvent struct {
	Entity netconfig.EntityID
}

// EntitySpawned tells a peer to materialize a replicated entity.
type EntitySpawned struct {
	ID       netconfig.EntityID
	Kind     netconfig.EntityKind
	Owner    netconfig.PeerID
	Name     string // Display name for combatants, weapon kind for weapons
	Position gamemath.Vec3
	Yaw      float64
}

// EntityDestroyed tells a peer to discard a replicated entity.
type EntityDestroyed struct {
	ID netconfig.EntityID
}

// FieldUpdate is one replicated field value. Version increases monotonically
// per session; receivers ignore anything older than what they hold.
type FieldUpdate struct {
	Entity  netconfig.EntityID
	Field   netconfig.FieldID
	Version uint64
	Value   []byte
}

// ReplicationDelta carries every field that changed since the receiver's
// last delta, coalesced to the latest value.
type ReplicationDelta struct {
	Tick    uint64
	Updates []FieldUpdate
}

// EntityTransform is the movement state of one entity.
type EntityTransform struct {
	ID       netconfig.EntityID
	Position gamemath.Vec3
	Velocity gamemath.Vec3
	Yaw      float64
	AimYaw   float64
	AimPitch float64 // Compressed to [0, 360)
	InAir    bool
	Crouched bool
}

// TransformSnapshot is the movement replication used when no esync
// transport is carrying transforms.
type TransformSnapshot struct {
	Tick       uint64
	Transforms []EntityTransform
}
