package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	dirt "github.com/flywave/go-dirt"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Dirt.BlurStrength != 1.0 {
		t.Errorf("expected blur strength 1.0, got %f", cfg.Dirt.BlurStrength)
	}
	if cfg.Dirt.BlurIterations != 1 {
		t.Errorf("expected 1 blur iteration, got %d", cfg.Dirt.BlurIterations)
	}
	if cfg.Dirt.CleanAngle != 180 {
		t.Errorf("expected clean angle 180, got %f", cfg.Dirt.CleanAngle)
	}
	if cfg.Dirt.DirtAngle != 0 {
		t.Errorf("expected dirt angle 0, got %f", cfg.Dirt.DirtAngle)
	}
	if cfg.Dirt.DirtOnly {
		t.Error("expected dirt_only to be false by default")
	}
	if !cfg.Import.Weld {
		t.Error("expected weld to be true by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
dirt:
  blur_strength: 0.5
  blur_iterations: 3
  clean_angle: 120
  dirt_angle: 30
  dirt_only: true

import:
  weld: false
  weld_precision: 4
  base_color: "#808080"

logging:
  level: "debug"
  log_file: "dirt.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath, nil)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Dirt.BlurStrength != 0.5 {
		t.Errorf("expected blur strength 0.5, got %f", cfg.Dirt.BlurStrength)
	}
	if cfg.Dirt.BlurIterations != 3 {
		t.Errorf("expected 3 blur iterations, got %d", cfg.Dirt.BlurIterations)
	}
	if cfg.Dirt.CleanAngle != 120 || cfg.Dirt.DirtAngle != 30 {
		t.Errorf("expected angles 120/30, got %f/%f", cfg.Dirt.CleanAngle, cfg.Dirt.DirtAngle)
	}
	if !cfg.Dirt.DirtOnly {
		t.Error("expected dirt_only to be true")
	}
	if cfg.Import.Weld {
		t.Error("expected weld to be false")
	}
	if cfg.Import.WeldPrecision != 4 {
		t.Errorf("expected weld precision 4, got %d", cfg.Import.WeldPrecision)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "dirt.log" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}

	cl, err := cfg.Import.BaseColorValue()
	if err != nil {
		t.Fatalf("base color: %v", err)
	}
	if cl[3] != 1 || cl[0] < 0.5 || cl[0] > 0.51 {
		t.Errorf("unexpected base color %v", cl)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")
	invalidYAML := `
dirt:
  blur_iterations: many
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if _, err := Load(configPath, nil); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadRejectsOutOfRange(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("dirt:\n  blur_iterations: 41\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	_, err := Load(configPath, nil)
	if !errors.Is(err, dirt.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml", nil); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestFlagsOverrideFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("dirt:\n  blur_iterations: 5\n  dirt_angle: 10\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	if err := fs.Parse([]string{"-blur-iterations", "7", "-dirt-only", "-debug", "-weld=false"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(configPath, flags)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Dirt.BlurIterations != 7 {
		t.Errorf("expected flag to win with 7 iterations, got %d", cfg.Dirt.BlurIterations)
	}
	if cfg.Dirt.DirtAngle != 10 {
		t.Errorf("expected file dirt angle 10 to survive, got %f", cfg.Dirt.DirtAngle)
	}
	if !cfg.Dirt.DirtOnly {
		t.Error("expected dirt_only from flag")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level, got %s", cfg.Logging.Level)
	}
	if cfg.Import.Weld {
		t.Error("expected weld disabled by flag")
	}
}

func TestUnsetFlagsKeepDefaults(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg := Default()
	flags.Apply(cfg)
	if cfg.Dirt.BlurStrength != 1.0 {
		t.Errorf("unset flag changed blur strength to %f", cfg.Dirt.BlurStrength)
	}
	if cfg.Dirt.CleanAngle != 180 {
		t.Errorf("unset flag changed clean angle to %f", cfg.Dirt.CleanAngle)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Dirt.BlurIterations = 12
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Dirt.BlurIterations != 12 {
		t.Errorf("expected 12 blur iterations after reload, got %d", loaded.Dirt.BlurIterations)
	}
}

func TestBadBaseColor(t *testing.T) {
	cfg := Default()
	cfg.Import.BaseColor = "white"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for non-hex base color")
	}
}
