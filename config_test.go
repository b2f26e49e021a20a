package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults rejected: %v", err)
	}
	if cfg.TileSize != 32 || cfg.FPS != 100 || cfg.FuelMax != 2000 {
		t.Errorf("unexpected defaults %+v", cfg.Tuning)
	}
	if cfg.FrameBudget() != 0.01 {
		t.Errorf("expected 10ms frame budget, got %v", cfg.FrameBudget())
	}
}

func TestLoadConfigYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lander.yaml")
	src := "fps: 60\ngravity: 150\nscore_policy: negative\nmode: serve\naddr: \":7000\"\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.FPS != 60 || cfg.Gravity != 150 {
		t.Errorf("yaml not applied: %+v", cfg.Tuning)
	}
	if cfg.ScorePolicy != PolicyNegative || cfg.Mode != "serve" || cfg.Addr != ":7000" {
		t.Errorf("unexpected config %+v", cfg)
	}
	// Unset keys keep their defaults
	if cfg.Thrust != DefaultThrust || cfg.TileSize != DefaultTileSize {
		t.Errorf("defaults lost: %+v", cfg.Tuning)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing yaml")
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	if err := os.WriteFile(env, []byte("LANDER_DB=/tmp/stats.db\nLANDER_FPS=50\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LANDER_ADDR", "127.0.0.1:6000")
	// godotenv never overrides variables that are already set
	t.Setenv("LANDER_DB", "")
	os.Unsetenv("LANDER_DB")
	t.Setenv("LANDER_FPS", "")
	os.Unsetenv("LANDER_FPS")

	cfg, err := LoadConfig("", env, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != "127.0.0.1:6000" {
		t.Errorf("expected env addr, got %q", cfg.Addr)
	}
	if cfg.DB != "/tmp/stats.db" || cfg.FPS != 50 {
		t.Errorf("env file not applied: db=%q fps=%d", cfg.DB, cfg.FPS)
	}
}

func TestValidateRejects(t *testing.T) {
	bad := []func(*Config){
		func(c *Config) { c.TileSize = 0 },
		func(c *Config) { c.FPS = -1 },
		func(c *Config) { c.FuelMax = 0 },
		func(c *Config) { c.ScorePolicy = "sometimes" },
		func(c *Config) { c.Mode = "watch" },
		func(c *Config) { c.Keys = "joystick" },
	}
	for i, mut := range bad {
		cfg := DefaultConfig()
		mut(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}
