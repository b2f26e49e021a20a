package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Physics and timing defaults
const (
	DefaultTileSize        = 32
	DefaultFPS             = 100
	DefaultGravity         = 200.0 // pixels/s²
	DefaultThrust          = 300.0 // pixels/s²
	DefaultProjectileSpeed = 500.0 // pixels/s
	DefaultProjectileLife  = 3.0   // seconds, 0 keeps shots until they leave the map
	DefaultReload          = 0.2   // seconds between shots
	DefaultHardLanding     = 200.0 // max downward speed on touchdown, pixels/s
	DefaultRotationStep    = 2     // degrees per tick
	DefaultFuelMax         = 2000
	DefaultFuelRegen       = 2 // units per landed tick
)

// Tuning holds the simulation constants
type Tuning struct {
	TileSize        int         `yaml:"tile_size"`
	FPS             int         `yaml:"fps"`
	Gravity         float64     `yaml:"gravity"`
	Thrust          float64     `yaml:"thrust"`
	ProjectileSpeed float64     `yaml:"projectile_speed"`
	ProjectileLife  float64     `yaml:"projectile_life"`
	Reload          float64     `yaml:"reload"`
	HardLanding     float64     `yaml:"hard_landing"`
	RotationStep    int         `yaml:"rotation_step"`
	FuelMax         int         `yaml:"fuel_max"`
	FuelRegen       int         `yaml:"fuel_regen"`
	ScorePolicy     ScorePolicy `yaml:"score_policy"`
}

// Config is the full process configuration
type Config struct {
	Tuning `yaml:",inline"`

	Mode     string `yaml:"mode"`     // local, serve or join
	Addr     string `yaml:"addr"`     // relay listen/dial address
	Spectate string `yaml:"spectate"` // spectator HTTP address, empty disables
	DB       string `yaml:"db"`       // sqlite stats file, empty disables
	Replay   string `yaml:"replay"`   // replay directory, empty disables
	Map      string `yaml:"map"`      // terrain file, empty uses the built-in map
	Keys     string `yaml:"keys"`     // key scheme for join mode
	LogFile  string `yaml:"log_file"`
	Audio    bool   `yaml:"audio"`
}

func DefaultTuning() Tuning {
	return Tuning{
		TileSize:        DefaultTileSize,
		FPS:             DefaultFPS,
		Gravity:         DefaultGravity,
		Thrust:          DefaultThrust,
		ProjectileSpeed: DefaultProjectileSpeed,
		ProjectileLife:  DefaultProjectileLife,
		Reload:          DefaultReload,
		HardLanding:     DefaultHardLanding,
		RotationStep:    DefaultRotationStep,
		FuelMax:         DefaultFuelMax,
		FuelRegen:       DefaultFuelRegen,
		ScorePolicy:     PolicyClamp,
	}
}

func DefaultConfig() Config {
	return Config{
		Tuning: DefaultTuning(),
		Mode:   "local",
		Addr:   ":5555",
		Keys:   "wasd",
		Audio:  true,
	}
}

// LoadConfig layers an optional YAML file and optional .env files over the
// defaults. Missing .env files are not an error; a missing YAML file is.
func LoadConfig(path string, envFiles ...string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("env file %s: %w", f, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"LANDER_ADDR":     &c.Addr,
		"LANDER_DB":       &c.DB,
		"LANDER_MAP":      &c.Map,
		"LANDER_SPECTATE": &c.Spectate,
		"LANDER_REPLAY":   &c.Replay,
	}
	for k, dst := range strs {
		if v, ok := os.LookupEnv(k); ok {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv("LANDER_FPS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LANDER_FPS: %w", err)
		}
		c.FPS = n
	}
	return nil
}

// Validate rejects settings the simulation cannot run with
func (c *Config) Validate() error {
	switch {
	case c.TileSize <= 0:
		return fmt.Errorf("tile_size must be positive, got %d", c.TileSize)
	case c.FPS <= 0:
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	case c.FuelMax <= 0:
		return fmt.Errorf("fuel_max must be positive, got %d", c.FuelMax)
	case c.FuelRegen < 0:
		return fmt.Errorf("fuel_regen must not be negative, got %d", c.FuelRegen)
	case c.ProjectileLife < 0:
		return fmt.Errorf("projectile_life must not be negative, got %v", c.ProjectileLife)
	case !c.ScorePolicy.Valid():
		return fmt.Errorf("unknown score_policy %q", c.ScorePolicy)
	}
	switch c.Mode {
	case "local", "serve", "join":
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if _, ok := Bindings(c.Keys); !ok {
		return fmt.Errorf("unknown key scheme %q", c.Keys)
	}
	return nil
}

// FrameBudget is the nominal tick length in seconds
func (t Tuning) FrameBudget() float64 { return 1 / float64(t.FPS) }
