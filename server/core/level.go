package core

import (
	"fmt"
	"log"
	"os"
	"strings"

	cfg "github.com/automoto/blaster-mp/config"
	"github.com/automoto/blaster-mp/shared/leveldata"
)

// LoadServerLevel loads a level from assetsDir/levels. An empty name picks
// the first level in name order.
func LoadServerLevel(assetsDir, name string) (*leveldata.LevelData, error) {
	levels, names, err := leveldata.LoadAllLevels(os.DirFS(assetsDir), "levels")
	if err != nil {
		return nil, fmt.Errorf("load all levels: %w", err)
	}

	name = strings.TrimSuffix(name, ".tmx")
	if name == "" {
		name = names[0]
	}
	level, ok := levels[name]
	if !ok {
		return nil, fmt.Errorf("level %q not found (have %s)", name, strings.Join(names, ", "))
	}

	log.Printf("[level] loaded %q: %d walls, %d spawn points, %d weapon spawns, %dx%d",
		name, len(level.Walls), len(level.SpawnPoints), len(level.WeaponSpawns), level.MapWidth, level.MapHeight)
	return level, nil
}

// OpenArena is an empty square map with a spawn point in each corner and the
// default weapon in the middle. Used when no level files are available.
func OpenArena() *leveldata.LevelData {
	const size = 4096
	const inset = 400
	return &leveldata.LevelData{
		MapWidth:  size,
		MapHeight: size,
		SpawnPoints: []leveldata.SpawnPoint{
			{X: inset, Y: inset, Yaw: 45, Index: 0},
			{X: size - inset, Y: size - inset, Yaw: 225, Index: 1},
			{X: size - inset, Y: inset, Yaw: 135, Index: 2},
			{X: inset, Y: size - inset, Yaw: 315, Index: 3},
		},
		WeaponSpawns: []leveldata.WeaponSpawn{
			{X: size / 2, Y: size / 2, Kind: cfg.Combat.DefaultWeapon},
		},
	}
}
