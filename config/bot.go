package config

import "time"

// BotDifficulty affects reaction time and trigger discipline of headless
// bot clients
type BotDifficulty int

const (
	BotDifficultyEasy BotDifficulty = iota
	BotDifficultyNormal
	BotDifficultyHard
)

// ParseBotDifficulty maps a flag value to a difficulty, defaulting to normal.
func ParseBotDifficulty(s string) BotDifficulty {
	switch s {
	case "easy":
		return BotDifficultyEasy
	case "hard":
		return BotDifficultyHard
	}
	return BotDifficultyNormal
}

// BotDifficultyConfig holds tuning values for bot behavior at a specific difficulty
type BotDifficultyConfig struct {
	ReactionDelay time.Duration // Delay between decisions
	BurstLength   time.Duration // How long the trigger is held
	AimChance     float64       // Probability of aiming down sights per decision
	EquipRange    float64       // Distance at which a bot walks to a weapon
	StrafeSpeed   float64
}

// BotConfigData holds all bot-related configuration
type BotConfigData struct {
	Difficulties map[BotDifficulty]BotDifficultyConfig
}

// Bot holds bot client configuration
var Bot BotConfigData

func init() {
	Bot = BotConfigData{
		Difficulties: map[BotDifficulty]BotDifficultyConfig{
			BotDifficultyEasy: {
				ReactionDelay: 800 * time.Millisecond,
				BurstLength:   300 * time.Millisecond,
				AimChance:     0.2,
				EquipRange:    400,
				StrafeSpeed:   300,
			},
			BotDifficultyNormal: {
				ReactionDelay: 400 * time.Millisecond,
				BurstLength:   600 * time.Millisecond,
				AimChance:     0.5,
				EquipRange:    800,
				StrafeSpeed:   450,
			},
			BotDifficultyHard: {
				ReactionDelay: 150 * time.Millisecond,
				BurstLength:   1200 * time.Millisecond,
				AimChance:     0.8,
				EquipRange:    1600,
				StrafeSpeed:   600,
			},
		},
	}
}
