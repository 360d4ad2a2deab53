package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// cameraControllerImpl is the single implementation of CameraController.
type cameraControllerImpl struct {
	mu *sync.Mutex

	camera Camera

	sensitivity     float32
	zoomSensitivity float32
	keyStep         float32
	keyZoomStep     float32
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a controller for cam. The defaults pass scroll deltas through
// unscaled, apply magnify deltas directly and move ten rotate units per arrow key press.
//
// Parameters:
//   - cam: the camera to drive
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(cam Camera, options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:              &sync.Mutex{},
		camera:          cam,
		sensitivity:     1.0,
		zoomSensitivity: 1.0,
		keyStep:         10.0,
		keyZoomStep:     0.1,
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) Camera() Camera {
	return cc.camera
}

func (cc *cameraControllerImpl) Scroll(dx, dy float64) bool {
	cc.mu.Lock()
	s := cc.sensitivity
	cc.mu.Unlock()

	x, y := float32(dx)*s, float32(dy)*s
	if x == 0 && y == 0 {
		return false
	}
	cc.camera.Rotate(x, y)
	return true
}

func (cc *cameraControllerImpl) Magnify(delta float64) bool {
	cc.mu.Lock()
	s := cc.zoomSensitivity
	cc.mu.Unlock()

	d := float32(delta) * s
	if d == 0 {
		return false
	}
	cc.camera.Zoom(d)
	return true
}

func (cc *cameraControllerImpl) Key(key int) bool {
	cc.mu.Lock()
	step, zoom := cc.keyStep, cc.keyZoomStep
	cc.mu.Unlock()

	switch key {
	case common.KeyLeft:
		cc.camera.Rotate(-step, 0)
	case common.KeyRight:
		cc.camera.Rotate(step, 0)
	case common.KeyUp:
		cc.camera.Rotate(0, -step)
	case common.KeyDown:
		cc.camera.Rotate(0, step)
	case common.KeyEqual, common.KeyKPAdd:
		cc.camera.Zoom(zoom)
	case common.KeyMinus, common.KeyKPSubtract:
		cc.camera.Zoom(-zoom)
	case common.KeyR:
		cc.camera.Reset()
	default:
		return false
	}
	return true
}

func (cc *cameraControllerImpl) Sensitivity() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.sensitivity
}

func (cc *cameraControllerImpl) ZoomSensitivity() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.zoomSensitivity
}

func (cc *cameraControllerImpl) KeyStep() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.keyStep
}

func (cc *cameraControllerImpl) KeyZoomStep() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.keyZoomStep
}
