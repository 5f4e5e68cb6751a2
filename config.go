package tortuga

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the window and engine settings a host may keep in a file.
type Config struct {
	Width      int    `yaml:"width" json:"width"`
	Height     int    `yaml:"height" json:"height"`
	Title      string `yaml:"title" json:"title"`
	Background string `yaml:"background" json:"background"`
	// FPS is the engine tick rate.
	FPS int `yaml:"fps" json:"fps"`
	// UndoLimit caps each turtle's history. 0 keeps everything.
	UndoLimit int `yaml:"undo_limit" json:"undo_limit"`
}

// DefaultConfig returns an 800x800 window titled "Turtle", ticking at 60 FPS.
func DefaultConfig() Config {
	return Config{
		Width:  800,
		Height: 800,
		Title:  "Turtle",
		FPS:    60,
	}
}

// FrameRate returns the tick interval for the configured FPS.
func (c Config) FrameRate() time.Duration {
	if c.FPS <= 0 {
		return DefaultConfig().FrameRate()
	}
	return time.Second / time.Duration(c.FPS)
}

// Validate reports settings the engine cannot use.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid canvas size %dx%d", c.Width, c.Height)
	}
	if c.FPS < 0 {
		return fmt.Errorf("invalid fps %d", c.FPS)
	}
	if c.UndoLimit < 0 {
		return fmt.Errorf("invalid undo limit %d", c.UndoLimit)
	}
	return nil
}

// LoadConfig reads a YAML or JSON config file. Fields missing from the file
// keep their DefaultConfig values; a missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}
