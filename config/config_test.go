// ABOUTME: Tests for configuration load/save functionality
// ABOUTME: Validates TOML parsing and default config fallback behavior

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.PopulationSize != 100 {
		t.Errorf("Expected PopulationSize 100, got %d", cfg.PopulationSize)
	}

	if cfg.Mode != "balanced" {
		t.Errorf("Expected Mode balanced, got %s", cfg.Mode)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seatopt.toml")

	cfg := DefaultConfig()
	cfg.Weights.Friend = 0.5

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.Weights.Friend != 0.5 {
		t.Errorf("Weights.Friend mismatch: got %.2f, want 0.5", loaded.Weights.Friend)
	}

	if loaded.PopulationSize != cfg.PopulationSize {
		t.Errorf("PopulationSize mismatch: got %d, want %d", loaded.PopulationSize, cfg.PopulationSize)
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	if err != nil {
		t.Errorf("Expected no error for non-existent file, got: %v", err)
	}

	defaults := DefaultConfig()
	if cfg.PopulationSize != defaults.PopulationSize {
		t.Errorf("Expected default PopulationSize %d, got %d", defaults.PopulationSize, cfg.PopulationSize)
	}
}

func TestSharedConfigGetUpdate(t *testing.T) {
	sc := NewShared(DefaultConfig())

	got := sc.Get()
	if got.Mode != "balanced" {
		t.Fatalf("expected initial mode balanced, got %s", got.Mode)
	}

	updated := DefaultConfig()
	updated.Mode = "thorough"
	sc.Update(updated)

	if sc.Get().Mode != "thorough" {
		t.Errorf("expected updated mode thorough, got %s", sc.Get().Mode)
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seatopt.toml")

	cfg := DefaultConfig()
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	sc := NewShared(cfg)
	stop := make(chan struct{})
	defer close(stop)

	if err := Watch(path, sc, stop, nil); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	updated := cfg
	updated.Weights.Friend = 0.9

	if err := SaveConfig(path, updated); err != nil {
		t.Fatalf("SaveConfig (update) failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sc.Get().Weights.Friend == 0.9 {
			return
		}

		time.Sleep(20 * time.Millisecond)
	}

	t.Fatalf("expected SharedConfig to reload Weights.Friend=0.9, got %.2f", sc.Get().Weights.Friend)
}

func TestGetConfigPathFallsBackToHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	old, _ := os.Getwd()
	_ = os.Chdir(t.TempDir())

	defer func() { _ = os.Chdir(old) }()

	path := GetConfigPath()
	if filepath.Base(path) != "config.toml" {
		t.Errorf("expected fallback path to end in config.toml, got %s", path)
	}
}
