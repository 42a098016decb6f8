// Package leveldata provides TMX level parsing shared between client and server.
// It has no dependencies on donburi or resolv, pure data only.
package leveldata

// LevelData holds everything the simulation needs from a TMX arena: solid
// walls for traces, player spawn points and weapon placements.
type LevelData struct {
	Walls        []Wall
	SpawnPoints  []SpawnPoint
	WeaponSpawns []WeaponSpawn
	MapWidth     int
	MapHeight    int
}

// Wall is an axis-aligned solid block. X/Y/W/H are the footprint on the
// ground plane; Height extends upward from Z=0.
type Wall struct {
	X, Y, W, H float64
	Height     float64
}

// SpawnPoint is a location a combatant may be (re)spawned at.
type SpawnPoint struct {
	X, Y, Z float64
	Yaw     float64
	Index   int
}

// WeaponSpawn places a weapon of the given kind at level load.
type WeaponSpawn struct {
	X, Y, Z float64
	Kind    string
}
