package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const defaultTransitionDelayMs = 200

type Config struct {
	// LibraryFolder is scanned for local audio when no backend is
	// configured.
	LibraryFolder string `koanf:"library_folder"`

	// API configures the hosted backend (library + play counts).
	API APIConfig `koanf:"api"`

	// Transition configures the between-track static effect.
	Transition TransitionConfig `koanf:"transition"`
}

// APIConfig holds hosted-backend settings.
type APIConfig struct {
	URL   string `koanf:"url"`   // e.g. "https://api.example.com"
	Token string `koanf:"token"` // session credential
}

// TransitionConfig holds transition-effect settings.
type TransitionConfig struct {
	Enabled *bool `koanf:"enabled"`  // default: true
	DelayMs int   `koanf:"delay_ms"` // pause before loading the next track (default: 200)
}

// EffectEnabled reports whether the transition effect should play.
func (t TransitionConfig) EffectEnabled() bool {
	return t.Enabled == nil || *t.Enabled
}

// Delay returns the navigation pacing delay.
func (t TransitionConfig) Delay() time.Duration {
	return time.Duration(t.DelayMs) * time.Millisecond
}

func Load() (*Config, error) {
	return loadFrom(getConfigPaths())
}

func loadFrom(paths []string) (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		Transition: TransitionConfig{DelayMs: defaultTransitionDelayMs},
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.LibraryFolder != "" {
		cfg.LibraryFolder = expandPath(cfg.LibraryFolder)
	}
	cfg.API.URL = strings.TrimSuffix(cfg.API.URL, "/")
	if cfg.Transition.DelayMs < 0 {
		cfg.Transition.DelayMs = 0
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/groove/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "groove", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
