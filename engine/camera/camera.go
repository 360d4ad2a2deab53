package camera

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// RotateScale converts one unit of rotate input into radians.
const RotateScale float32 = 0.01

// cameraCount is an atomic counter used to generate unique bind group provider names for each camera instance.
var cameraCount atomic.Uint64

type cameraImpl struct {
	mu *sync.Mutex

	eye    mgl32.Vec3
	target mgl32.Vec3
	up     mgl32.Vec3

	// initial pose restored by Reset
	homeEye mgl32.Vec3
	homeUp  mgl32.Vec3

	width  int
	height int
	fov    float32
	near   float32
	far    float32

	viewMatrix       mgl32.Mat4
	projectionMatrix mgl32.Mat4

	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Camera is an arc-ball camera orbiting a target point. It produces a left-handed view matrix
// and a perspective projection with WebGPU [0, 1] depth, uploaded as bind group 0.
type Camera interface {
	// Eye returns the camera position.
	//
	// Returns:
	//   - mgl32.Vec3: world-space eye position
	Eye() mgl32.Vec3

	// Target returns the orbit pivot the camera looks at.
	//
	// Returns:
	//   - mgl32.Vec3: world-space target
	Target() mgl32.Vec3

	// Up returns the camera's up vector.
	//
	// Returns:
	//   - mgl32.Vec3: the unit up vector
	Up() mgl32.Vec3

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// Size returns the viewport size the projection was built for.
	//
	// Returns:
	//   - width, height: the viewport size in pixels
	Size() (width, height int)

	// ViewMatrix returns the current view matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the current projection matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// Uniform returns the GPU record of the current matrices.
	//
	// Returns:
	//   - GPUCameraUniform: view then projection
	Uniform() GPUCameraUniform

	// Rotate orbits the eye around the target. dx yaws about the up vector and dy pitches about
	// the camera's right axis; both are scaled by RotateScale. Rotate(0, 0) changes nothing.
	//
	// Parameters:
	//   - dx: horizontal input
	//   - dy: vertical input
	Rotate(dx, dy float32)

	// Zoom scales the eye distance by exp(-delta), clamped to [2·near, far/2].
	// Positive delta moves closer.
	//
	// Parameters:
	//   - delta: zoom input
	Zoom(delta float32)

	// Resize rebuilds the projection for a new viewport. The view is untouched.
	// A zero width or height is ignored.
	//
	// Parameters:
	//   - width, height: the viewport size in pixels
	Resize(width, height int)

	// Reset restores the initial eye and up vector.
	Reset()

	// BindGroupProvider returns the provider holding the camera uniform buffer and bind group.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// Upload creates the camera uniform buffer and bind group on first use, then writes the
	// current matrices.
	//
	// Parameters:
	//   - r: the renderer that owns the GPU device
	//
	// Returns:
	//   - error: the GPU error, if creation fails
	Upload(r renderer.Renderer) error

	// Sync writes the current matrices into an uploaded camera uniform. It does nothing before Upload.
	//
	// Parameters:
	//   - r: the renderer that owns the GPU device
	Sync(r renderer.Renderer)

	// Release frees the uniform buffer and bind group.
	Release()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera. The defaults are eye (2, 0, 0), target at the origin, up +Y,
// a 45° field of view, near 0.1, far 100 and an 800x600 viewport.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		eye:    mgl32.Vec3{2, 0, 0},
		target: mgl32.Vec3{0, 0, 0},
		up:     mgl32.Vec3{0, 1, 0},
		width:  800,
		height: 600,
		fov:    mgl32.DegToRad(45),
		near:   0.1,
		far:    100,
		bindGroupProvider: bind_group_provider.NewBindGroupProvider(
			"camera_" + strconv.FormatUint(cameraCount.Load(), 10),
		),
	}
	for _, option := range options {
		option(c)
	}
	c.up = c.up.Normalize()
	c.homeEye, c.homeUp = c.eye, c.up
	c.updateView()
	c.updateProjection()
	cameraCount.Add(1)
	return c
}

func (c *cameraImpl) Eye() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUCameraUniform{View: c.viewMatrix, Projection: c.projectionMatrix}
}

func (c *cameraImpl) Rotate(dx, dy float32) {
	if dx == 0 && dy == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	offset := c.eye.Sub(c.target)
	q := mgl32.QuatRotate(dx*RotateScale, c.up)
	// The pitch axis is undefined while the eye looks along the up vector.
	if axis := offset.Cross(c.up); axis.Len() > 1e-6 && dy != 0 {
		q = mgl32.QuatRotate(dy*RotateScale, axis.Normalize()).Mul(q)
	}

	c.eye = c.target.Add(q.Rotate(offset))
	c.up = q.Rotate(c.up).Normalize()
	c.updateView()
}

func (c *cameraImpl) Zoom(delta float32) {
	if delta == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	offset := c.eye.Sub(c.target)
	dist := offset.Len()
	if dist < 1e-6 {
		return
	}
	next := mgl32.Clamp(dist*math32.Exp(-delta), c.near*2, c.far/2)
	c.eye = c.target.Add(offset.Mul(next / dist))
	c.updateView()
}

func (c *cameraImpl) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = width, height
	c.updateProjection()
}

func (c *cameraImpl) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eye, c.up = c.homeEye, c.homeUp
	c.updateView()
}

func (c *cameraImpl) BindGroupProvider() bind_group_provider.BindGroupProvider {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bindGroupProvider
}

func (c *cameraImpl) Upload(r renderer.Renderer) error {
	c.mu.Lock()
	provider := c.bindGroupProvider
	c.mu.Unlock()

	if provider.BindGroup() == nil {
		sizes := map[int]uint64{renderer.BindingUniform: renderer.CameraUniformSize}
		if err := r.InitBindGroup(provider, renderer.GroupCamera, sizes); err != nil {
			provider.Release()
			return fmt.Errorf("camera: %w", err)
		}
	}
	c.Sync(r)
	return nil
}

func (c *cameraImpl) Sync(r renderer.Renderer) {
	c.mu.Lock()
	provider := c.bindGroupProvider
	data := GPUCameraUniform{View: c.viewMatrix, Projection: c.projectionMatrix}.Marshal()
	c.mu.Unlock()

	if provider.BindGroup() == nil {
		return
	}
	r.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: provider,
		Binding:  renderer.BindingUniform,
		Offset:   0,
		Data:     data,
	}})
}

func (c *cameraImpl) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindGroupProvider.Release()
}

// updateView recomputes the view matrix. Caller must hold the mutex.
func (c *cameraImpl) updateView() {
	c.viewMatrix = common.LookAtLH(c.eye, c.target, c.up)
}

// updateProjection recomputes the projection matrix. Caller must hold the mutex.
func (c *cameraImpl) updateProjection() {
	aspect := float32(c.width) / float32(c.height)
	c.projectionMatrix = common.PerspectiveLH(c.fov, aspect, c.near, c.far)
}
