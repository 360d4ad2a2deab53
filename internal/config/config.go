// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Render  RenderConfig  `yaml:"render"`
	Camera  CameraConfig  `yaml:"camera"`
	Loader  LoaderConfig  `yaml:"loader"`
	Logging LoggingConfig `yaml:"logging"`
	Debug   DebugConfig   `yaml:"debug"`

	// ModelPath is the asset to load at startup. It is only ever set from the command line.
	ModelPath string `yaml:"-"`
}

// WindowConfig holds window settings.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`

	// Resize limits. Zero leaves a bound unset.
	MinWidth  int `yaml:"min_width"`
	MinHeight int `yaml:"min_height"`
	MaxWidth  int `yaml:"max_width"`
	MaxHeight int `yaml:"max_height"`
}

// RenderConfig holds rendering settings.
type RenderConfig struct {
	Wireframe  bool `yaml:"wireframe"`
	VSync      bool `yaml:"vsync"`
	MSAA       int  `yaml:"msaa"`
	FrameLimit int  `yaml:"frame_limit"`
}

// CameraConfig holds input sensitivity for the arc-ball camera.
type CameraConfig struct {
	Sensitivity     float32 `yaml:"sensitivity"`
	ZoomSensitivity float32 `yaml:"zoom_sensitivity"`
}

// LoaderConfig holds asset loading settings.
type LoaderConfig struct {
	Workers int `yaml:"workers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// DebugConfig holds diagnostics settings.
type DebugConfig struct {
	Profile bool `yaml:"profile"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:     "oxy-viewer",
			Width:     1280,
			Height:    720,
			MinWidth:  320,
			MinHeight: 240,
		},
		Render: RenderConfig{
			Wireframe:  false,
			VSync:      true,
			MSAA:       4,
			FrameLimit: 0,
		},
		Camera: CameraConfig{
			Sensitivity:     0.01,
			ZoomSensitivity: 0.1,
		},
		Loader: LoaderConfig{
			Workers: 1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Debug: DebugConfig{
			Profile: false,
		},
	}
}
