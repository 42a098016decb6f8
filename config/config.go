package config

import (
	"image/color"
	"time"

	"github.com/automoto/blaster-mp/shared/gamemath"
)

// CombatantConfig contains all combatant-related configuration values
type CombatantConfig struct {
	// Health
	MaxHealth float64

	// Movement
	BaseWalkSpeed   float64
	AimWalkSpeed    float64
	CrouchWalkSpeed float64
	JumpVelocity    float64
	Gravity         float64

	// Collision capsule, approximated by a box
	CollisionRadius     float64
	CollisionHalfHeight float64

	// Camera boom
	CameraBoomLength float64
	CameraHeight     float64

	// Right hand socket, in the combatant's facing frame
	HandOffset gamemath.Vec3
}

// WeaponSpec is the static tuning of one weapon kind.
type WeaponSpec struct {
	Kind            string
	FireDelay       time.Duration
	Automatic       bool
	ZoomedFOV       float64
	ZoomInterpSpeed float64

	// Projectile
	ProjectileSpeed    float64
	ProjectileLifetime time.Duration
	ProjectileRadius   float64
	Damage             float64

	// Offset of the muzzle socket from the owner's center, in the owner's
	// facing frame (X forward, Y right, Z up).
	MuzzleOffset gamemath.Vec3

	// Offset of the ammo eject socket, same frame as MuzzleOffset.
	EjectOffset gamemath.Vec3

	PickupRadius float64
	Crosshairs   string
}

// CombatConfig contains combat rules shared by every weapon
type CombatConfig struct {
	TraceLength   float64 // Crosshair trace length
	TraceStartPad float64 // Extra distance past the shooter before the trace starts

	ElimDelay        time.Duration
	DissolveDuration time.Duration

	DroppedWeaponLifetime time.Duration
	DropDistance          float64 // How far in front of the owner a dropped weapon lands

	CasingLifetime   time.Duration
	CasingEjectSpeed float64
	CasingGravity    float64

	DefaultWeapon string
}

// CrosshairConfig contains crosshair spread and FOV tuning
type CrosshairConfig struct {
	BaseSpread float64

	InAirTarget      float64
	InAirInterpRate  float64
	GroundInterpRate float64

	AimTarget     float64
	AimInterpRate float64

	OnTargetTarget     float64
	OnTargetInterpRate float64

	ShootingPulse float64
	ShootingDecay time.Duration

	SpreadMax float64 // Pixels at spread 1.0

	DefaultFOV      float64
	ZoomInterpSpeed float64 // Unzoom rate

	DefaultColor  color.RGBA
	OnTargetColor color.RGBA
}

// OrientationConfig contains aim offset and turn-in-place tuning
type OrientationConfig struct {
	TurnThreshold   float64 // Degrees of aim yaw offset that start a turn
	TurnInterpSpeed float64
	TurnStopAngle   float64 // Turn completes below this offset

	ProxyTurnThreshold float64 // Degrees of yaw change per replication
	MovementRepTimeout time.Duration
}

// NetConfig contains transport and tick settings
type NetConfig struct {
	ProtocolVersion string
	TickRate        int
	Port            int
	DebugPort       int

	// Per-connection RPC token bucket
	RPCRate  float64
	RPCBurst int

	MaxPlayers int
}

// SessionConfig contains session directory settings
type SessionConfig struct {
	NumPublicConnections int
	MatchType            string
	DirectoryURL         string
	HeartbeatInterval    time.Duration
	TTL                  time.Duration
}

// LevelConfig contains level loading settings
type LevelConfig struct {
	Dir      string
	Default  string
	CellSize int
}

// Global configuration instances
var Combatant CombatantConfig
var Weapons map[string]WeaponSpec
var Combat CombatConfig
var Crosshair CrosshairConfig
var Orientation OrientationConfig
var Net NetConfig
var Session SessionConfig
var Level LevelConfig

// Shared RGBA color constants
var (
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Red   = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

// Weapon returns the tuning for kind, falling back to the default weapon.
func Weapon(kind string) WeaponSpec {
	if spec, ok := Weapons[kind]; ok {
		return spec
	}
	return Weapons[Combat.DefaultWeapon]
}

func init() {
	Combatant = CombatantConfig{
		MaxHealth: 100,

		BaseWalkSpeed:   600,
		AimWalkSpeed:    450,
		CrouchWalkSpeed: 300,
		JumpVelocity:    600,
		Gravity:         980,

		CollisionRadius:     42,
		CollisionHalfHeight: 88,

		CameraBoomLength: 600,
		CameraHeight:     70,

		HandOffset: gamemath.Vec3{X: 30, Y: 20, Z: 40},
	}

	Weapons = map[string]WeaponSpec{
		"assault_rifle": {
			Kind:               "assault_rifle",
			FireDelay:          150 * time.Millisecond,
			Automatic:          true,
			ZoomedFOV:          30,
			ZoomInterpSpeed:    20,
			ProjectileSpeed:    15000,
			ProjectileLifetime: 2 * time.Second,
			ProjectileRadius:   5,
			Damage:             20,
			MuzzleOffset:       gamemath.Vec3{X: 60, Y: 20, Z: 40},
			EjectOffset:        gamemath.Vec3{X: 20, Y: 20, Z: 45},
			PickupRadius:       150,
			Crosshairs:         "rifle",
		},
		"scout_rifle": {
			Kind:               "scout_rifle",
			FireDelay:          500 * time.Millisecond,
			Automatic:          true,
			ZoomedFOV:          30,
			ZoomInterpSpeed:    20,
			ProjectileSpeed:    20000,
			ProjectileLifetime: 2 * time.Second,
			ProjectileRadius:   5,
			Damage:             40,
			MuzzleOffset:       gamemath.Vec3{X: 70, Y: 20, Z: 40},
			EjectOffset:        gamemath.Vec3{X: 20, Y: 20, Z: 45},
			PickupRadius:       150,
			Crosshairs:         "scout",
		},
		"pistol": {
			Kind:               "pistol",
			FireDelay:          300 * time.Millisecond,
			Automatic:          false,
			ZoomedFOV:          60,
			ZoomInterpSpeed:    30,
			ProjectileSpeed:    12000,
			ProjectileLifetime: 1500 * time.Millisecond,
			ProjectileRadius:   4,
			Damage:             15,
			MuzzleOffset:       gamemath.Vec3{X: 40, Y: 20, Z: 40},
			EjectOffset:        gamemath.Vec3{X: 15, Y: 20, Z: 42},
			PickupRadius:       120,
			Crosshairs:         "pistol",
		},
	}

	Combat = CombatConfig{
		TraceLength:   80000,
		TraceStartPad: 100,

		ElimDelay:        3 * time.Second,
		DissolveDuration: 2 * time.Second,

		DroppedWeaponLifetime: 30 * time.Second,
		DropDistance:          80,

		CasingLifetime:   2 * time.Second,
		CasingEjectSpeed: 250,
		CasingGravity:    980,

		DefaultWeapon: "assault_rifle",
	}

	Crosshair = CrosshairConfig{
		BaseSpread: 0.5,

		InAirTarget:      2.25,
		InAirInterpRate:  2.25,
		GroundInterpRate: 30,

		AimTarget:     0.58,
		AimInterpRate: 30,

		OnTargetTarget:     0.5,
		OnTargetInterpRate: 30,

		ShootingPulse: 0.75,
		ShootingDecay: 200 * time.Millisecond,

		SpreadMax: 16,

		DefaultFOV:      90,
		ZoomInterpSpeed: 20,

		DefaultColor:  White,
		OnTargetColor: Red,
	}

	Orientation = OrientationConfig{
		TurnThreshold:   90,
		TurnInterpSpeed: 4,
		TurnStopAngle:   15,

		ProxyTurnThreshold: 0.5,
		MovementRepTimeout: 250 * time.Millisecond,
	}

	Net = NetConfig{
		ProtocolVersion: "1",
		TickRate:        60,
		Port:            7373,
		DebugPort:       7374,

		RPCRate:  60,
		RPCBurst: 30,

		MaxPlayers: 4,
	}

	Session = SessionConfig{
		NumPublicConnections: 4,
		MatchType:            "FreeForAll",
		DirectoryURL:         "http://localhost:8080",
		HeartbeatInterval:    10 * time.Second,
		TTL:                  30 * time.Second,
	}

	Level = LevelConfig{
		Dir:      "assets/levels",
		Default:  "arena.tmx",
		CellSize: 64,
	}
}
