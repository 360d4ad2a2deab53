package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
)

// ErrMissingPath is returned when no asset path is given on the command line.
var ErrMissingPath = errors.New("missing model path argument")

// Flags holds the parsed command-line values.
type Flags struct {
	ConfigPath string
	Wireframe  bool
	Debug      bool
	Profile    bool
	Width      int
	Height     int
	Path       string
}

// ParseFlags parses command-line arguments (without the program name).
// The first positional argument is the asset path.
func ParseFlags(args []string, output io.Writer) (*Flags, error) {
	fs := flag.NewFlagSet("oxy-viewer", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: oxy-viewer [flags] <path to .gltf or .glb>")
		fs.PrintDefaults()
	}

	f := &Flags{}
	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file")
	fs.BoolVar(&f.Wireframe, "wireframe", false, "Render in wireframe mode")
	fs.BoolVar(&f.Wireframe, "line", false, "Alias for --wireframe")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&f.Profile, "profile", false, "Log frame statistics")
	fs.IntVar(&f.Width, "width", 0, "Window width")
	fs.IntVar(&f.Height, "height", 0, "Window height")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return nil, ErrMissingPath
	}
	f.Path = fs.Arg(0)

	return f, nil
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Wireframe {
		cfg.Render.Wireframe = true
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Profile {
		cfg.Debug.Profile = true
	}
	if f.Width > 0 {
		cfg.Window.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Window.Height = f.Height
	}
	cfg.ModelPath = f.Path
}
