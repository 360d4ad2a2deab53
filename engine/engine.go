package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/profiler"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
	"github.com/Carmen-Shannon/oxy-viewer/internal/logger"

	"go.uber.org/zap"
)

// ErrStopped is returned by Run when the engine was quit before it started.
var ErrStopped = errors.New("engine stopped")

// EventKind identifies what an Event carries.
type EventKind int

const (
	// EventResize carries a new framebuffer size in Width and Height.
	EventResize EventKind = iota
	// EventRotate carries a two-axis scroll delta in DX and DY.
	EventRotate
	// EventZoom carries a magnify delta in DY.
	EventZoom
	// EventKey carries a GLFW key code in Key.
	EventKey
	// EventLoad carries an asset path in Path.
	EventLoad
	// EventClose asks the engine to quit.
	EventClose
)

// Event is one unit of input delivered from the window thread to the render goroutine.
type Event struct {
	Kind   EventKind
	Width  int
	Height int
	DX, DY float64
	Key    int
	Path   string
}

// engine implements the Engine interface.
// The window owns the locked main thread; the render goroutine owns every GPU object.
type engine struct {
	mu sync.Mutex
	wg sync.WaitGroup

	log *zap.Logger

	events      chan Event
	quitChannel chan struct{}
	quitOnce    sync.Once
	releaseOnce sync.Once

	window     window.Window
	renderer   renderer.Renderer
	defaults   *material.Defaults
	scene      scene.Scene
	loader     loader.Loader
	controller camera.CameraController

	profiler         *profiler.Profiler
	profilingEnabled bool
	renderFrameLimit time.Duration

	// construction settings, consumed by NewEngine
	title             string
	width, height     int
	wireframe         bool
	eventBuffer       int
	rendererOptions   []renderer.RendererBuilderOption
	loaderOptions     []loader.LoaderBuilderOption
	controllerOptions []camera.CameraControllerOption
	cameraOptions     []camera.CameraBuilderOption
}

// Engine is the viewer's orchestrator. It owns one Scene and routes window input and loader
// responses to it from a single render goroutine.
type Engine interface {
	// Window returns the window, or nil for a headless engine.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer frames are drawn with.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Scene returns the scene being viewed.
	//
	// Returns:
	//   - scene.Scene: the scene
	Scene() scene.Scene

	// Loader returns the asynchronous asset loader.
	//
	// Returns:
	//   - loader.Loader: the loader
	Loader() loader.Loader

	// Controller returns the input controller driving the scene camera.
	//
	// Returns:
	//   - camera.CameraController: the controller
	Controller() camera.CameraController

	// Post queues an event for the render goroutine. It blocks while the queue is full.
	//
	// Parameters:
	//   - ev: the event
	//
	// Returns:
	//   - bool: false if the engine has quit and the event was dropped
	Post(ev Event) bool

	// Load queues a load request for path.
	//
	// Parameters:
	//   - path: a .gltf or .glb file
	//
	// Returns:
	//   - bool: false if the engine has quit
	Load(path string) bool

	// Frame applies every queued event and loader response, then renders one frame.
	// Must only be called from the render goroutine; Run calls it in a loop.
	//
	// Returns:
	//   - error: an error if the frame could not be begun or the scene failed to render
	Frame() error

	// EnableProfiler enables frame statistics in the log.
	EnableProfiler()

	// DisableProfiler disables frame statistics.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the render goroutine and runs the window message loop on the calling thread.
	// Blocks until the window closes, then releases every resource.
	//
	// Returns:
	//   - error: an error if the engine has no window or was already quit
	Run() error

	// Quit signals the render goroutine to stop. Safe to call multiple times.
	Quit()

	// Release frees the scene, loader, fallback resources and renderer. Safe to call multiple times.
	Release()
}

// NewEngine creates the renderer (unless one is supplied with WithRenderer), registers the viewer
// pipeline, and assembles the scene, camera, controller and loader.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: wraps common.ErrResourceAcquisition if the GPU cannot be initialized
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		log:         logger.Named("engine"),
		quitChannel: make(chan struct{}),
		title:       "oxy-viewer",
		width:       800,
		height:      600,
		eventBuffer: 64,
	}
	for _, opt := range options {
		opt(e)
	}
	e.events = make(chan Event, e.eventBuffer)
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(time.Second)
	}

	if e.window != nil {
		e.width, e.height = e.window.Width(), e.window.Height()
	}
	if e.renderer == nil {
		if e.window == nil {
			return nil, fmt.Errorf("engine needs a window or a renderer")
		}
		r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, e.window, e.rendererOptions...)
		if err != nil {
			return nil, err
		}
		e.renderer = r
	}

	src, err := shader.ViewerSource()
	if err != nil {
		e.renderer.Release()
		return nil, err
	}
	if err := e.renderer.RegisterPipeline(renderer.NewViewerPipeline(src, e.wireframe)); err != nil {
		e.renderer.Release()
		return nil, fmt.Errorf("registering viewer pipeline: %w", err)
	}
	defaults, err := material.NewDefaults(e.renderer)
	if err != nil {
		e.renderer.Release()
		return nil, err
	}
	e.defaults = defaults

	cam := camera.NewCamera(append([]camera.CameraBuilderOption{camera.WithSize(e.width, e.height)}, e.cameraOptions...)...)
	e.controller = camera.NewCameraController(cam, e.controllerOptions...)
	e.scene = scene.NewScene("viewer", cam, e.renderer, defaults, scene.WithWireframe(e.wireframe))
	e.loader = loader.NewLoader(loader.BackendTypeGLTF, e.loaderOptions...)

	if e.window != nil {
		e.attachWindow()
	}

	e.log.Info("engine ready",
		zap.Int("width", e.width),
		zap.Int("height", e.height),
		zap.Bool("wireframe", e.wireframe),
	)
	return e, nil
}

// attachWindow forwards window callbacks onto the event queue.
func (e *engine) attachWindow() {
	e.window.SetResizeCallback(func(width, height int) {
		e.Post(Event{Kind: EventResize, Width: width, Height: height})
	})
	e.window.SetScrollCallback(func(dx, dy float64) {
		e.Post(Event{Kind: EventRotate, DX: dx, DY: dy})
	})
	e.window.SetMagnifyCallback(func(delta float64) {
		e.Post(Event{Kind: EventZoom, DY: delta})
	})
	e.window.SetKeyDownCallback(func(key int) {
		e.Post(Event{Kind: EventKey, Key: key})
	})
	e.window.SetDropCallback(func(paths []string) {
		e.Load(paths[0])
	})
	e.window.SetCloseCallback(func() {
		e.Post(Event{Kind: EventClose})
	})
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Loader() loader.Loader {
	return e.loader
}

func (e *engine) Controller() camera.CameraController {
	return e.controller
}

func (e *engine) Post(ev Event) bool {
	select {
	case <-e.quitChannel:
		return false
	default:
	}
	select {
	case e.events <- ev:
		return true
	case <-e.quitChannel:
		return false
	}
}

func (e *engine) Load(path string) bool {
	return e.Post(Event{Kind: EventLoad, Path: path})
}

func (e *engine) Frame() error {
	e.drain()

	select {
	case <-e.quitChannel:
		return nil
	default:
	}

	if err := e.renderer.BeginFrame(); err != nil {
		return err
	}
	err := e.scene.Render()
	e.renderer.EndFrame()
	e.renderer.Present()
	return err
}

// drain applies every pending event and loader response without blocking.
func (e *engine) drain() {
	for {
		select {
		case ev := <-e.events:
			e.apply(ev)
		case resp := <-e.loader.Responses():
			e.complete(resp)
		default:
			return
		}
	}
}

func (e *engine) apply(ev Event) {
	switch ev.Kind {
	case EventResize:
		if ev.Width <= 0 || ev.Height <= 0 {
			return
		}
		e.renderer.Resize(ev.Width, ev.Height)
		e.scene.Resize(ev.Width, ev.Height)
		e.log.Debug("resized", zap.Int("width", ev.Width), zap.Int("height", ev.Height))
	case EventRotate:
		if e.controller.Scroll(ev.DX, ev.DY) {
			e.scene.SyncCamera()
		}
	case EventZoom:
		if e.controller.Magnify(ev.DY) {
			e.scene.SyncCamera()
		}
	case EventKey:
		if e.controller.Key(ev.Key) {
			e.scene.SyncCamera()
		}
	case EventLoad:
		gen := e.loader.Request(ev.Path)
		e.scene.BeginLoad(gen)
		e.setTitle(fmt.Sprintf("%s - loading %s", e.title, filepath.Base(ev.Path)))
		e.log.Info("load requested", zap.String("path", ev.Path), zap.Uint64("generation", gen))
	case EventClose:
		e.Quit()
	}
}

func (e *engine) complete(resp loader.Response) {
	err := e.scene.CompleteLoad(resp)
	switch {
	case errors.Is(err, scene.ErrStaleResponse):
		return
	case err != nil:
		e.setTitle(fmt.Sprintf("%s - failed to load %s", e.title, filepath.Base(resp.Path)))
	default:
		e.setTitle(fmt.Sprintf("%s - %s", e.title, e.scene.Model().Name()))
	}
}

func (e *engine) setTitle(title string) {
	if e.window != nil {
		e.window.SetTitle(title)
	}
}

func (e *engine) Run() error {
	if e.window == nil {
		return fmt.Errorf("engine has no window to run")
	}
	select {
	case <-e.quitChannel:
		return ErrStopped
	default:
	}

	e.wg.Add(1)
	go e.handleRender()

	e.window.ProcessMessages()
	e.Quit()
	e.wg.Wait()

	e.Release()
	if err := e.window.Close(); err != nil {
		e.log.Debug("window close", zap.Error(err))
	}
	return nil
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) Release() {
	e.releaseOnce.Do(func() {
		e.Quit()
		e.loader.Close()
		e.scene.Release()
		e.defaults.Release()
		e.renderer.Release()
		logger.Sync()
	})
}

// handleRender runs the render loop until quit, optionally frame-limited.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("render goroutine recovered from panic", zap.Any("panic", r))
			e.Quit()
		}
	}()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		start := time.Now()
		if err := e.Frame(); err != nil {
			e.log.Debug("frame skipped", zap.Error(err))
		}

		e.mu.Lock()
		profiling, limit := e.profilingEnabled, e.renderFrameLimit
		e.mu.Unlock()

		if profiling {
			e.profiler.Tick(e.scene.DrawCount())
		}
		if limit > 0 {
			if remaining := limit - time.Since(start); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderFrameLimit = frameDuration(fps)
}

func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
