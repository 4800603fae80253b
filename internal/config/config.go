// Package config loads the YAML configuration shared by the CLI, the SSH
// server and the network front ends.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/powers/internal/powers"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid")

// Config is the root of the configuration file.
type Config struct {
	Game    GameConfig    `yaml:"game"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
}

// GameConfig controls new grids.
type GameConfig struct {
	Size            int     `yaml:"size"`
	FourProbability float64 `yaml:"four_probability"`
	Spawn           string  `yaml:"spawn"` // "always" or "on_change"
	TickRate        int     `yaml:"tick_rate"`
}

// StorageConfig locates the database and the Parquet archive.
type StorageConfig struct {
	DBPath     string `yaml:"db_path"`
	ArchiveDir string `yaml:"archive_dir"`
}

// ServerConfig holds listen addresses for the SSH and HTTP servers.
type ServerConfig struct {
	SSHAddress  string        `yaml:"ssh_address"`
	HostKeyPath string        `yaml:"host_key_path"` // Empty means ~/.powers/host_key
	APIAddress  string        `yaml:"api_address"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// SpawnPolicy returns the parsed spawn policy.
func (g GameConfig) SpawnPolicy() (powers.SpawnPolicy, error) {
	return powers.ParseSpawnPolicy(g.Spawn)
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Game.Size < 2 || c.Game.Size > 16 {
		return fmt.Errorf("%w: game.size %d not in [2, 16]", ErrInvalid, c.Game.Size)
	}
	if c.Game.FourProbability <= 0 || c.Game.FourProbability > 1 {
		return fmt.Errorf("%w: game.four_probability %v not in (0, 1]", ErrInvalid, c.Game.FourProbability)
	}
	if _, err := c.Game.SpawnPolicy(); err != nil {
		return fmt.Errorf("%w: game.spawn: %v", ErrInvalid, err)
	}
	if c.Game.TickRate <= 0 {
		return fmt.Errorf("%w: game.tick_rate must be positive", ErrInvalid)
	}
	if c.Storage.DBPath == "" {
		return fmt.Errorf("%w: storage.db_path is empty", ErrInvalid)
	}
	if c.Server.IdleTimeout < 0 {
		return fmt.Errorf("%w: server.idle_timeout is negative", ErrInvalid)
	}
	return nil
}
