package config

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/quasilyte/gdata"
)

// ClientSettings are the per-player presentation settings stored on disk.
type ClientSettings struct {
	PlayerName       string  `json:"playerName"`
	DefaultFOV       float64 `json:"defaultFov"`
	CrosshairSpread  float64 `json:"crosshairSpreadMax"`
	MouseSensitivity float64 `json:"mouseSensitivity"`
	ServerAddress    string  `json:"serverAddress"`
}

// DefaultClientSettings returns the settings used before anything is saved.
func DefaultClientSettings() ClientSettings {
	return ClientSettings{
		PlayerName:       "Player",
		DefaultFOV:       Crosshair.DefaultFOV,
		CrosshairSpread:  Crosshair.SpreadMax,
		MouseSensitivity: 1.0,
		ServerAddress:    fmt.Sprintf("localhost:%d", Net.Port),
	}
}

// ItemStore is the subset of gdata.Manager the settings need.
type ItemStore interface {
	LoadItem(key string) ([]byte, error)
	SaveItem(key string, data []byte) error
}

const settingsKey = "settings"

// OpenSettingsStore opens the gdata store for the client.
func OpenSettingsStore() (ItemStore, error) {
	m, err := gdata.Open(gdata.Config{
		AppName: "blaster-mp",
	})
	if err != nil {
		return nil, fmt.Errorf("open settings store: %w", err)
	}
	return m, nil
}

// LoadClientSettings reads saved settings, filling anything missing or
// invalid with defaults. A nil store yields the defaults.
func LoadClientSettings(store ItemStore) ClientSettings {
	s := DefaultClientSettings()
	if store == nil {
		return s
	}

	data, err := store.LoadItem(settingsKey)
	if err != nil {
		log.Printf("[settings] Warning: could not load settings: %v", err)
		return s
	}
	if len(data) == 0 {
		return s
	}

	var saved ClientSettings
	if err := json.Unmarshal(data, &saved); err != nil {
		log.Printf("[settings] Warning: could not parse saved settings: %v", err)
		return s
	}

	if saved.PlayerName != "" {
		s.PlayerName = saved.PlayerName
	}
	if saved.DefaultFOV > 0 && saved.DefaultFOV < 180 {
		s.DefaultFOV = saved.DefaultFOV
	}
	if saved.CrosshairSpread > 0 {
		s.CrosshairSpread = saved.CrosshairSpread
	}
	if saved.MouseSensitivity > 0 {
		s.MouseSensitivity = saved.MouseSensitivity
	}
	if saved.ServerAddress != "" {
		s.ServerAddress = saved.ServerAddress
	}
	return s
}

// SaveClientSettings writes s to the store.
func SaveClientSettings(store ItemStore, s ClientSettings) error {
	if store == nil {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("serialize settings: %w", err)
	}
	if err := store.SaveItem(settingsKey, data); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// ApplyClientSettings copies presentation settings into the live config.
func ApplyClientSettings(s ClientSettings) {
	Crosshair.DefaultFOV = s.DefaultFOV
	Crosshair.SpreadMax = s.CrosshairSpread
}
