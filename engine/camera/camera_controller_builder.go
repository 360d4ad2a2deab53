package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithSensitivity sets the multiplier applied to scroll deltas before rotating.
//
// Parameters:
//   - sensitivity: rotate input per scroll unit
//
// Returns:
//   - CameraControllerOption: functional option to set the scroll sensitivity
func WithSensitivity(sensitivity float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.sensitivity = sensitivity
	}
}

// WithZoomSensitivity sets the multiplier applied to magnify deltas before zooming.
//
// Parameters:
//   - sensitivity: zoom input per magnify unit
//
// Returns:
//   - CameraControllerOption: functional option to set the zoom sensitivity
func WithZoomSensitivity(sensitivity float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSensitivity = sensitivity
	}
}

// WithKeySteps sets the rotate and zoom input applied per key press.
//
// Parameters:
//   - rotate: rotate input per arrow key press
//   - zoom: zoom input per zoom key press
//
// Returns:
//   - CameraControllerOption: functional option to set the key steps
func WithKeySteps(rotate, zoom float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.keyStep = rotate
		cc.keyZoomStep = zoom
	}
}
