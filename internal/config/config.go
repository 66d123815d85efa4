// Package config loads vertexdirt settings.
package config

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	dirt "github.com/flywave/go-dirt"
)

// Config holds all vertexdirt settings.
type Config struct {
	Dirt    dirt.Options  `yaml:"dirt"`
	Import  ImportConfig  `yaml:"import"`
	Logging LoggingConfig `yaml:"logging"`
}

// ImportConfig controls how glTF meshes are prepared before shading.
type ImportConfig struct {
	Weld             bool   `yaml:"weld"`
	WeldPrecision    int    `yaml:"weld_precision"` // decimal places
	RecomputeNormals bool   `yaml:"recompute_normals"`
	BaseColor        string `yaml:"base_color"` // fill of newly created colour layers
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config matching the operator defaults.
func Default() *Config {
	return &Config{
		Dirt: dirt.DefaultOptions(),
		Import: ImportConfig{
			Weld:          true,
			WeldPrecision: 6,
			BaseColor:     "#ffffff",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// BaseColorValue parses BaseColor as a hex colour with alpha 1.
func (c ImportConfig) BaseColorValue() (dirt.Color, error) {
	cl, err := colorful.Hex(c.BaseColor)
	if err != nil {
		return dirt.Color{}, fmt.Errorf("base_color %q: %w", c.BaseColor, err)
	}
	return dirt.Color{float32(cl.R), float32(cl.G), float32(cl.B), 1}, nil
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if err := c.Dirt.Validate(); err != nil {
		return err
	}
	if c.Import.WeldPrecision < 0 || c.Import.WeldPrecision > 12 {
		return fmt.Errorf("weld_precision %d outside [0, 12]", c.Import.WeldPrecision)
	}
	if _, err := c.Import.BaseColorValue(); err != nil {
		return err
	}
	return nil
}
