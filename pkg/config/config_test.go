package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.World.ExploreDuration != 30*time.Second {
		t.Errorf("Expected 30s exploration, got %v", cfg.World.ExploreDuration)
	}
	if cfg.World.RefineryProductionRate != 50 {
		t.Errorf("Expected refinery rate 50, got %v", cfg.World.RefineryProductionRate)
	}
	bot := cfg.RobotType("Basic Explorer Bot")
	if bot == nil || bot.Stats.RangedAttack != 10 || bot.TravelSpeed != 5 {
		t.Errorf("Starter robot template wrong: %+v", bot)
	}
	if b := cfg.BuildingType(cfg.Economy.LandingBuilding); b == nil || b.CraftingTime != 180 {
		t.Errorf("Landing building missing from catalog: %+v", b)
	}
}

func TestFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planetfall.yaml")
	if err := os.WriteFile(path, []byte("combat:\n  max_rounds: 77\nworld:\n  seed: file-seed\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PLANETFALL_WORLD_SEED", "env-seed")
	t.Setenv("PLANETFALL_SWEEPER", "false")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Combat.MaxRounds != 77 {
		t.Errorf("Expected file override 77, got %d", cfg.Combat.MaxRounds)
	}
	if cfg.World.Seed != "env-seed" {
		t.Errorf("Expected env to win, got %q", cfg.World.Seed)
	}
	if cfg.Sweeper.Enabled {
		t.Errorf("Expected sweeper disabled")
	}
	// Untouched values keep their defaults.
	if cfg.World.ExploreDuration != 30*time.Second {
		t.Errorf("Default lost: %v", cfg.World.ExploreDuration)
	}
}

func TestValidateRejectsUnknownAlien(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Discovery.AlienType = "Nobody"
	if err := cfg.Validate(); err == nil {
		t.Errorf("Expected validation error")
	}
}
