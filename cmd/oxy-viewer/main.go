// Package main is the entry point for the oxy-viewer glTF viewer.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-viewer/engine"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
	"github.com/Carmen-Shannon/oxy-viewer/internal/config"
	"github.com/Carmen-Shannon/oxy-viewer/internal/logger"
)

func init() {
	// GLFW must run on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags, err := config.ParseFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	logger.Info("starting oxy-viewer",
		zap.String("path", cfg.ModelPath),
		zap.Bool("wireframe", cfg.Render.Wireframe),
		zap.Int("msaa", cfg.Render.MSAA),
	)

	win, err := window.NewWindow(windowOptions(cfg)...)
	if err != nil {
		logger.Error("failed to create window", zap.Error(err))
		return 1
	}

	eng, err := engine.NewEngine(engineOptions(cfg, win)...)
	if err != nil {
		logger.Error("failed to initialize renderer", zap.Error(err))
		_ = win.Close()
		return 1
	}

	eng.Load(cfg.ModelPath)
	if err := eng.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		return 1
	}

	logger.Info("viewer closed normally")
	return 0
}

func windowOptions(cfg *config.Config) []window.WindowBuilderOption {
	w := cfg.Window
	return []window.WindowBuilderOption{
		window.WithTitle(w.Title),
		window.WithSize(w.Width, w.Height),
		window.WithMinSize(w.MinWidth, w.MinHeight),
		window.WithMaxSize(w.MaxWidth, w.MaxHeight),
	}
}

func engineOptions(cfg *config.Config, win window.Window) []engine.EngineBuilderOption {
	presentMode := renderer.PresentModeUncapped
	if cfg.Render.VSync {
		presentMode = renderer.PresentModeVSync
	}

	return []engine.EngineBuilderOption{
		engine.WithWindow(win),
		engine.WithTitle(cfg.Window.Title),
		engine.WithWireframe(cfg.Render.Wireframe),
		engine.WithProfiling(cfg.Debug.Profile),
		engine.WithRenderFrameLimit(float64(cfg.Render.FrameLimit)),
		engine.WithRendererOptions(
			renderer.WithPresentMode(presentMode),
			renderer.WithMSAA(renderer.MSAASampleCount(cfg.Render.MSAA)),
		),
		engine.WithLoaderOptions(loader.WithWorkers(cfg.Loader.Workers)),
		// Sensitivity is configured in radians per scroll unit; the camera applies RotateScale itself.
		engine.WithControllerOptions(
			camera.WithSensitivity(cfg.Camera.Sensitivity/camera.RotateScale),
			camera.WithZoomSensitivity(cfg.Camera.ZoomSensitivity),
		),
	}
}
