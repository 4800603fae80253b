package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/vovakirdan/powers/internal/powers"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestDefaultMatchesEmbedded(t *testing.T) {
	cfg, err := Parse(DefaultYAML())
	if err != nil {
		t.Fatalf("Parse(default): %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("embedded defaults differ from Default():\n%+v\n%+v", cfg, Default())
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, path, `
game:
  size: 5
  spawn: on_change
server:
  idle_timeout: 90s
`)

	cfg, source, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if source != path {
		t.Errorf("source = %q, want %q", source, path)
	}
	if cfg.Game.Size != 5 || cfg.Server.IdleTimeout != 90*time.Second {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Game.FourProbability != 0.1 || cfg.Server.APIAddress != ":8080" {
		t.Errorf("missing keys should keep defaults: %+v", cfg)
	}
	policy, err := cfg.Game.SpawnPolicy()
	if err != nil || policy != powers.SpawnOnChange {
		t.Errorf("SpawnPolicy = %v, %v", policy, err)
	}
}

func TestLoadCustomPathErrors(t *testing.T) {
	dir := t.TempDir()

	if _, _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("a missing custom file should be an error")
	}

	broken := filepath.Join(dir, "broken.yaml")
	writeFile(t, broken, "game: [not, a, map")
	if _, _, err := Load(broken); err == nil {
		t.Error("malformed YAML should be an error")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	writeFile(t, invalid, "game:\n  four_probability: 2\n")
	if _, _, err := Load(invalid); !errors.Is(err, ErrInvalid) {
		t.Errorf("out of range probability error = %v, want ErrInvalid", err)
	}
}

func TestLoadSearchOrder(t *testing.T) {
	home := t.TempDir()
	work := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(work)

	_, source, err := Load("")
	if err != nil || source != "embedded" {
		t.Fatalf("no files: source = %q, err = %v", source, err)
	}

	writeFile(t, filepath.Join(work, "configs", "powers.yaml"), "game:\n  size: 6\n")
	cfg, source, err := Load("")
	if err != nil || source != localPath || cfg.Game.Size != 6 {
		t.Fatalf("local file: source = %q size = %d err = %v", source, cfg.Game.Size, err)
	}

	userPath := filepath.Join(home, ".powers", "config.yaml")
	writeFile(t, userPath, "game:\n  size: 3\n")
	cfg, source, err = Load("")
	if err != nil || source != userPath || cfg.Game.Size != 3 {
		t.Fatalf("user file: source = %q size = %d err = %v", source, cfg.Game.Size, err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"size too small", func(c *Config) { c.Game.Size = 1 }},
		{"size too large", func(c *Config) { c.Game.Size = 17 }},
		{"zero probability", func(c *Config) { c.Game.FourProbability = 0 }},
		{"unknown spawn", func(c *Config) { c.Game.Spawn = "never" }},
		{"zero tick rate", func(c *Config) { c.Game.TickRate = 0 }},
		{"empty db path", func(c *Config) { c.Storage.DBPath = "" }},
		{"negative timeout", func(c *Config) { c.Server.IdleTimeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandHome("~/.powers/powers.db")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".powers", "powers.db"); got != want {
		t.Errorf("ExpandHome = %q, want %q", got, want)
	}

	if got, _ := ExpandHome("/tmp/x.db"); got != "/tmp/x.db" {
		t.Errorf("absolute path changed: %q", got)
	}
}
