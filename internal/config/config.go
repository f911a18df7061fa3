package config

import (
	"fmt"
	"os"
)

// Config holds the player agent's environment-based settings
type Config struct {
	BrokerURL string
	DeviceID  string
	SoundsDir string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	deviceID := os.Getenv("DEVICE_ID")
	if deviceID == "" {
		return nil, fmt.Errorf("DEVICE_ID is required")
	}
	broker := os.Getenv("BROKER_URL")
	if broker == "" {
		broker = "tcp://localhost:1883"
	}
	soundsDir := os.Getenv("SOUNDS_DIR")
	if soundsDir == "" {
		soundsDir = "./sounds"
	}
	return &Config{
		BrokerURL: broker,
		DeviceID:  deviceID,
		SoundsDir: soundsDir,
	}, nil
}
