// ABOUTME: Configuration management for the seating optimizer's tunable parameters
// ABOUTME: Handles loading/saving TOML config files with fallback to defaults

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// Weights holds the four soft-constraint weights used by the fitness
// evaluator. They need not sum to 1 on disk; the fitness evaluator divides
// the weighted sum by their total.
type Weights struct {
	Friend   float64 `toml:"friend"`
	VIP      float64 `toml:"vip"`
	Group    float64 `toml:"group"`
	Distance float64 `toml:"distance"`
}

// OptimizerConfig holds all tunable parameters for the GA/SA seating optimizer.
type OptimizerConfig struct {
	PopulationSize int     `toml:"population_size"`
	Generations    int     `toml:"generations"`
	MutationRate   float64 `toml:"mutation_rate"`
	CrossoverRate  float64 `toml:"crossover_rate"`
	ElitismCount   int     `toml:"elitism_count"`
	TournamentSize int     `toml:"tournament_size"`

	InitialTemp float64 `toml:"initial_temp"`
	CoolingRate float64 `toml:"cooling_rate"`
	MinTemp     float64 `toml:"min_temp"`

	Mode string `toml:"mode"`

	Weights Weights `toml:"weights"`
}

// DefaultConfig returns the default optimizer configuration.
func DefaultConfig() OptimizerConfig {
	return OptimizerConfig{
		PopulationSize: 100,
		Generations:    200,
		MutationRate:   0.15,
		CrossoverRate:  0.85,
		ElitismCount:   5,
		TournamentSize: 5,
		InitialTemp:    1000,
		CoolingRate:    0.995,
		MinTemp:        1,
		Mode:           "balanced",
		Weights: Weights{
			Friend:   0.25,
			VIP:      0.25,
			Group:    0.25,
			Distance: 0.25,
		},
	}
}

// LoadConfig loads configuration from a TOML file. If the file doesn't
// exist, it returns defaults without error.
func LoadConfig(path string) (OptimizerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}

		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to a TOML file.
func SaveConfig(path string, cfg OptimizerConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Printf("Warning: failed to close config file: %v\n", err)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the default config file path.
// First tries the current directory, then falls back to
// ~/.config/seatopt/config.toml.
func GetConfigPath() string {
	if _, err := os.Stat("./seatopt.toml"); err == nil {
		return "./seatopt.toml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./seatopt.toml"
	}

	return filepath.Join(home, ".config", "seatopt", "config.toml")
}

// SharedConfig wraps OptimizerConfig with a mutex for thread-safe access
// between the optimization driver goroutine and a config file watcher or
// CLI override.
type SharedConfig struct {
	mu  sync.RWMutex
	cfg OptimizerConfig
}

// NewShared returns a SharedConfig initialized to cfg.
func NewShared(cfg OptimizerConfig) *SharedConfig {
	return &SharedConfig{cfg: cfg}
}

// Get returns a copy of the current config (thread-safe read).
func (sc *SharedConfig) Get() OptimizerConfig {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	return sc.cfg
}

// Update replaces the config (thread-safe write).
func (sc *SharedConfig) Update(cfg OptimizerConfig) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.cfg = cfg
}
