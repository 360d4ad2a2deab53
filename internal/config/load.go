package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load(f *Flags) (*Config, error) {
	cfg := Default()

	configPath := ""
	if f != nil {
		configPath = f.ConfigPath
	}
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg, f)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports settings that cannot be honored.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	w := c.Window
	if w.MinWidth < 0 || w.MinHeight < 0 || w.MaxWidth < 0 || w.MaxHeight < 0 {
		return fmt.Errorf("window size limits must not be negative")
	}
	if (w.MaxWidth > 0 && w.MaxWidth < w.MinWidth) || (w.MaxHeight > 0 && w.MaxHeight < w.MinHeight) {
		return fmt.Errorf("window maximum %dx%d is below minimum %dx%d", w.MaxWidth, w.MaxHeight, w.MinWidth, w.MinHeight)
	}
	switch c.Render.MSAA {
	case 1, 4, 8, 16:
	default:
		return fmt.Errorf("invalid msaa sample count %d", c.Render.MSAA)
	}
	if c.Camera.Sensitivity <= 0 {
		return fmt.Errorf("camera sensitivity must be positive, got %v", c.Camera.Sensitivity)
	}
	if c.Loader.Workers <= 0 {
		return fmt.Errorf("loader workers must be positive, got %d", c.Loader.Workers)
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "OxyViewer")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "OxyViewer")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "oxy-viewer")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "oxy-viewer")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
