package window

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and translates raw input into viewer callbacks.
// Every method except SetTitle must be called from the goroutine that created the window.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for two-axis scroll input without the zoom modifier held.
	//
	// Parameters:
	//   - callback: function receiving the horizontal and vertical scroll deltas
	SetScrollCallback(callback func(dx, dy float64))

	// SetMagnifyCallback sets the callback for zoom input. GLFW has no pinch gesture, so vertical
	// scroll with Ctrl or Super held is reported here instead of to the scroll callback.
	//
	// Parameters:
	//   - callback: function receiving the zoom delta (positive = zoom in)
	SetMagnifyCallback(callback func(delta float64))

	// SetKeyDownCallback sets the callback for key press and repeat events.
	//
	// Parameters:
	//   - callback: function receiving the GLFW key code
	SetKeyDownCallback(callback func(key int))

	// SetDropCallback sets the callback for files dropped onto the window.
	//
	// Parameters:
	//   - callback: function receiving the dropped paths
	SetDropCallback(callback func(paths []string))

	// SetCloseCallback sets the callback fired once when the window starts closing.
	//
	// Parameters:
	//   - callback: function to call
	SetCloseCallback(callback func())

	// SetTitle queues a new title. It is safe to call from any goroutine; the title is applied on
	// the next message loop iteration.
	//
	// Parameters:
	//   - title: the window title text
	SetTitle(title string)

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls the update callback each iteration.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title string

	// size limits applied to the platform window; zero leaves a bound unset.
	maxWidth  int
	maxHeight int
	minWidth  int
	minHeight int

	width  int
	height int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	titleMu      sync.Mutex
	pendingTitle *string

	closeOnce sync.Once

	onUpdate  func()
	onResize  func(width, height int)
	onScroll  func(dx, dy float64)
	onMagnify func(delta float64)
	onKeyDown func(key int)
	onDrop    func(paths []string)
	onClose   func()
}

var _ Window = &engineWindow{}

// NewWindow creates and spawns a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
//   - error: an error if GLFW cannot create the window
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:  "oxy-viewer",
		width:  1280,
		height: 720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := w.fitSize(); err != nil {
		return nil, err
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	return w, nil
}

// fitSize rejects contradictory size limits and clamps the requested size into them.
func (w *engineWindow) fitSize() error {
	if w.width <= 0 || w.height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", w.width, w.height)
	}
	if w.minWidth < 0 || w.minHeight < 0 || w.maxWidth < 0 || w.maxHeight < 0 {
		return errors.New("negative window size limit")
	}
	if (w.maxWidth > 0 && w.maxWidth < w.minWidth) || (w.maxHeight > 0 && w.maxHeight < w.minHeight) {
		return fmt.Errorf("window maximum %dx%d is below minimum %dx%d", w.maxWidth, w.maxHeight, w.minWidth, w.minHeight)
	}
	w.width = clampDim(w.width, w.minWidth, w.maxWidth)
	w.height = clampDim(w.height, w.minHeight, w.maxHeight)
	return nil
}

func clampDim(v, lo, hi int) int {
	if v < lo {
		v = lo
	}
	if hi > 0 && v > hi {
		v = hi
	}
	return v
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(dx, dy float64)) {
	w.onScroll = callback
}

func (w *engineWindow) SetMagnifyCallback(callback func(delta float64)) {
	w.onMagnify = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(key int)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetDropCallback(callback func(paths []string)) {
	w.onDrop = callback
}

func (w *engineWindow) SetCloseCallback(callback func()) {
	w.onClose = callback
}

func (w *engineWindow) SetTitle(title string) {
	w.titleMu.Lock()
	defer w.titleMu.Unlock()
	w.pendingTitle = &title
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	w.notifyClose()
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}
		if title, ok := w.takeTitle(); ok {
			platformSetTitle(w, title)
		}
		if w.onUpdate != nil {
			w.onUpdate()
		}
		runtime.Gosched()
	}
	w.notifyClose()
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

func (w *engineWindow) takeTitle() (string, bool) {
	w.titleMu.Lock()
	defer w.titleMu.Unlock()
	if w.pendingTitle == nil {
		return "", false
	}
	t := *w.pendingTitle
	w.pendingTitle = nil
	w.title = t
	return t, true
}

func (w *engineWindow) notifyClose() {
	w.closeOnce.Do(func() {
		if w.onClose != nil {
			w.onClose()
		}
	})
}

// dispatchScroll routes one scroll event. With the zoom modifier held the vertical delta becomes
// a magnify event; otherwise both axes go to the scroll callback.
func (w *engineWindow) dispatchScroll(xoff, yoff float64, zoomModifier bool) {
	if zoomModifier {
		if yoff != 0 && w.onMagnify != nil {
			w.onMagnify(yoff)
		}
		return
	}
	if (xoff != 0 || yoff != 0) && w.onScroll != nil {
		w.onScroll(xoff, yoff)
	}
}

// dispatchResize records the framebuffer size and forwards it. Minimized windows report a zero
// size, which is dropped so the surface is never configured empty.
func (w *engineWindow) dispatchResize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	w.width = width
	w.height = height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}

func (w *engineWindow) dispatchDrop(paths []string) {
	if len(paths) == 0 || w.onDrop == nil {
		return
	}
	w.onDrop(append([]string(nil), paths...))
}
