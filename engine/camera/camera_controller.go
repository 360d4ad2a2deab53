package camera

// CameraController translates raw window input into Camera operations.
// Scroll deltas orbit the camera, magnify gestures zoom it, and the keyboard offers the same
// controls for devices without a trackpad.
type CameraController interface {
	// Camera returns the camera the controller drives.
	//
	// Returns:
	//   - Camera: the controlled camera
	Camera() Camera

	// Scroll orbits the camera by a scroll or trackpad delta scaled by Sensitivity.
	//
	// Parameters:
	//   - dx, dy: the scroll offsets reported by the window
	//
	// Returns:
	//   - bool: true if the camera changed
	Scroll(dx, dy float64) bool

	// Magnify zooms the camera by a pinch gesture delta scaled by ZoomSensitivity.
	//
	// Parameters:
	//   - delta: the magnification delta, positive to zoom in
	//
	// Returns:
	//   - bool: true if the camera changed
	Magnify(delta float64) bool

	// Key applies a key press. Arrows orbit, +/= and keypad + zoom in, - and keypad - zoom out,
	// R resets the camera.
	//
	// Parameters:
	//   - key: a common.Key* code
	//
	// Returns:
	//   - bool: true if the key was handled
	Key(key int) bool

	// Sensitivity returns the multiplier applied to scroll deltas.
	//
	// Returns:
	//   - float32: rotate input per scroll unit
	Sensitivity() float32

	// ZoomSensitivity returns the multiplier applied to magnify deltas.
	//
	// Returns:
	//   - float32: zoom input per magnify unit
	ZoomSensitivity() float32

	// KeyStep returns the rotate input applied per arrow key press.
	//
	// Returns:
	//   - float32: rotate input per key press
	KeyStep() float32

	// KeyZoomStep returns the zoom input applied per zoom key press.
	//
	// Returns:
	//   - float32: zoom input per key press
	KeyZoomStep() float32
}
