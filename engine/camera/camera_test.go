package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/renderertest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vecNear(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, 1e-4), "want %v got %v", want, got)
}

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, c.Eye())
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, c.Target())
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, c.Up())
	assert.InDelta(t, mgl32.DegToRad(45), c.Fov(), 1e-6)
	assert.Equal(t, float32(0.1), c.Near())
	assert.Equal(t, float32(100), c.Far())

	assert.Equal(t, common.LookAtLH(c.Eye(), c.Target(), c.Up()), c.ViewMatrix())
	assert.Equal(t, common.PerspectiveLH(c.Fov(), 800.0/600.0, 0.1, 100), c.ProjectionMatrix())
}

func TestRotateZeroIsIdentity(t *testing.T) {
	c := NewCamera(WithEye(mgl32.Vec3{1, 2, 3}))
	eye, up, view := c.Eye(), c.Up(), c.ViewMatrix()

	c.Rotate(0, 0)
	assert.Equal(t, eye, c.Eye())
	assert.Equal(t, up, c.Up())
	assert.Equal(t, view, c.ViewMatrix())
}

func TestRotateYawRoundTrips(t *testing.T) {
	c := NewCamera()
	for _, dx := range []float32{1, 25, -60, 157} {
		before := c.Eye()
		c.Rotate(dx, 0)
		c.Rotate(-dx, 0)
		vecNear(t, before, c.Eye())
	}
}

func TestRotateYawOrbitsAboutUp(t *testing.T) {
	c := NewCamera()
	// A quarter turn about +Y takes +X to -Z.
	c.Rotate(mgl32.DegToRad(90)/RotateScale, 0)
	vecNear(t, mgl32.Vec3{0, 0, -2}, c.Eye())
	vecNear(t, mgl32.Vec3{0, 1, 0}, c.Up())
	assert.InDelta(t, 2, c.Eye().Sub(c.Target()).Len(), 1e-4)
}

func TestRotatePitchKeepsDistanceAndOrthogonalUp(t *testing.T) {
	c := NewCamera()
	c.Rotate(13, 40)

	offset := c.Eye().Sub(c.Target())
	assert.InDelta(t, 2, offset.Len(), 1e-4)
	assert.InDelta(t, 1, c.Up().Len(), 1e-5)
	assert.InDelta(t, 0, offset.Normalize().Dot(c.Up()), 1e-4)
	assert.NotEqual(t, float32(0), c.Eye().Y())
}

func TestRotateDegenerateAxisSkipsPitch(t *testing.T) {
	c := NewCamera(WithEye(mgl32.Vec3{0, 2, 0}), WithUp(mgl32.Vec3{0, 1, 0}))
	c.Rotate(0, 50)
	vecNear(t, mgl32.Vec3{0, 2, 0}, c.Eye())
}

func TestZoomClamps(t *testing.T) {
	c := NewCamera()
	c.Zoom(0)
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, c.Eye())

	c.Zoom(0.5)
	assert.InDelta(t, 2*0.6065306, c.Eye().Len(), 1e-4)

	c.Zoom(100)
	assert.InDelta(t, 2*c.Near(), c.Eye().Len(), 1e-5)

	c.Zoom(-100)
	assert.InDelta(t, c.Far()/2, c.Eye().Len(), 1e-3)
	vecNear(t, mgl32.Vec3{1, 0, 0}, c.Eye().Normalize())
}

func TestResizeLeavesViewUnchanged(t *testing.T) {
	c := NewCamera()
	view := c.Uniform().Marshal()[:common.Mat4Size]
	proj := c.ProjectionMatrix()

	c.Resize(1920, 1080)
	assert.Equal(t, view, c.Uniform().Marshal()[:common.Mat4Size])
	assert.NotEqual(t, proj, c.ProjectionMatrix())
	w, h := c.Size()
	assert.Equal(t, 1920, w)
	assert.Equal(t, 1080, h)

	proj = c.ProjectionMatrix()
	c.Resize(1920, 0)
	assert.Equal(t, proj, c.ProjectionMatrix())
}

func TestReset(t *testing.T) {
	c := NewCamera()
	c.Rotate(30, 20)
	c.Zoom(1)
	c.Reset()
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, c.Eye())
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, c.Up())
}

func TestUniformLayout(t *testing.T) {
	u := GPUCameraUniform{View: mgl32.Translate3D(1, 2, 3), Projection: mgl32.Scale3D(4, 5, 6)}
	assert.Equal(t, uint64(renderer.CameraUniformSize), u.Size())

	buf := u.Marshal()
	require.Len(t, buf, 128)
	assert.Equal(t, common.Mat4Bytes(u.View), buf[:64])
	assert.Equal(t, common.Mat4Bytes(u.Projection), buf[64:])
	assert.Contains(t, GPUCameraUniformSource, "struct CameraUniform")
}

func TestUploadAndSync(t *testing.T) {
	r := renderertest.New()
	c := NewCamera()

	c.Sync(r)
	assert.Nil(t, c.BindGroupProvider().BindGroup())

	require.NoError(t, c.Upload(r))
	p := c.BindGroupProvider()
	require.NotNil(t, p.BindGroup())
	assert.Equal(t, c.Uniform().Marshal(), renderertest.BufferData(p, renderer.BindingUniform))

	c.Rotate(10, 0)
	c.Sync(r)
	assert.Equal(t, c.Uniform().Marshal(), renderertest.BufferData(p, renderer.BindingUniform))

	require.NoError(t, c.Upload(r))
	assert.Equal(t, 2, r.Live())
	c.Release()
	assert.Zero(t, r.Live())
	assert.Empty(t, r.WriteErrors)
}

func TestControllerInput(t *testing.T) {
	c := NewCamera()
	cc := NewCameraController(c, WithSensitivity(2), WithZoomSensitivity(0.5), WithKeySteps(5, 0.2))
	assert.Same(t, c, cc.Camera())
	assert.Equal(t, float32(2), cc.Sensitivity())
	assert.Equal(t, float32(0.5), cc.ZoomSensitivity())
	assert.Equal(t, float32(5), cc.KeyStep())
	assert.Equal(t, float32(0.2), cc.KeyZoomStep())

	assert.False(t, cc.Scroll(0, 0))
	assert.False(t, cc.Magnify(0))

	ref := NewCamera()
	assert.True(t, cc.Scroll(3, 0))
	ref.Rotate(6, 0)
	vecNear(t, ref.Eye(), c.Eye())

	assert.True(t, cc.Magnify(1))
	ref.Zoom(0.5)
	vecNear(t, ref.Eye(), c.Eye())

	assert.True(t, cc.Key(common.KeyLeft))
	ref.Rotate(-5, 0)
	vecNear(t, ref.Eye(), c.Eye())

	assert.True(t, cc.Key(common.KeyMinus))
	ref.Zoom(-0.2)
	vecNear(t, ref.Eye(), c.Eye())

	assert.False(t, cc.Key(common.KeyEsc))
	assert.True(t, cc.Key(common.KeyR))
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, c.Eye())
}
