package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/powers.yaml
var defaultYAML []byte

// Default returns the built-in configuration. It matches defaults/powers.yaml.
func Default() Config {
	return Config{
		Game: GameConfig{
			Size:            4,
			FourProbability: 0.1,
			Spawn:           "always",
			TickRate:        60,
		},
		Storage: StorageConfig{
			DBPath:     "~/.powers/powers.db",
			ArchiveDir: "~/.powers/archive",
		},
		Server: ServerConfig{
			SSHAddress:  ":23234",
			APIAddress:  ":8080",
			IdleTimeout: 30 * time.Minute,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
