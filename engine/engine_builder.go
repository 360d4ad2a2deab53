package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/profiler"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables frame statistics logging.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfilerInterval sets how often frame statistics are reported.
//
// Parameters:
//   - interval: the reporting interval
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfilerInterval(interval time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = profiler.NewProfiler(interval)
	}
}

// WithWindow sets the window the engine presents into and receives input from.
// The renderer's surface is created from it unless WithRenderer is also given.
//
// Parameters:
//   - w: a spawned Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer supplies an existing renderer instead of creating one from the window.
// The engine takes ownership and releases it.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithRendererOptions sets options passed to the renderer the engine creates.
//
// Parameters:
//   - options: renderer options such as MSAA and present mode
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRendererOptions(options ...renderer.RendererBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.rendererOptions = append(e.rendererOptions, options...)
	}
}

// WithLoaderOptions sets options passed to the asset loader.
//
// Parameters:
//   - options: loader options such as the worker count
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLoaderOptions(options ...loader.LoaderBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.loaderOptions = append(e.loaderOptions, options...)
	}
}

// WithCameraOptions sets options passed to the scene camera.
//
// Parameters:
//   - options: camera options
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCameraOptions(options ...camera.CameraBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.cameraOptions = append(e.cameraOptions, options...)
	}
}

// WithControllerOptions sets options passed to the camera input controller.
//
// Parameters:
//   - options: controller options such as sensitivity
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithControllerOptions(options ...camera.CameraControllerOption) EngineBuilderOption {
	return func(e *engine) {
		e.controllerOptions = append(e.controllerOptions, options...)
	}
}

// WithWireframe selects the line-list pipeline and wireframe mesh builds.
//
// Parameters:
//   - wireframe: true to draw edges only
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWireframe(wireframe bool) EngineBuilderOption {
	return func(e *engine) {
		e.wireframe = wireframe
	}
}

// WithTitle sets the base title the engine decorates with load status.
//
// Parameters:
//   - title: the base window title
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTitle(title string) EngineBuilderOption {
	return func(e *engine) {
		e.title = title
	}
}

// WithSize sets the initial viewport size of a headless engine. A window's size takes precedence.
//
// Parameters:
//   - width, height: the viewport size in pixels
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSize(width, height int) EngineBuilderOption {
	return func(e *engine) {
		if width > 0 && height > 0 {
			e.width, e.height = width, height
		}
	}
}

// WithEventBuffer sets the capacity of the input event queue.
//
// Parameters:
//   - n: the queue capacity
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithEventBuffer(n int) EngineBuilderOption {
	return func(e *engine) {
		e.eventBuffer = max(n, 1)
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.renderFrameLimit = frameDuration(fps)
	}
}
