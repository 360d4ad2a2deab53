package common

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignUp(t *testing.T) {
	cases := []struct {
		size, alignment, want uint64
	}{
		{64, 256, 256},
		{256, 256, 256},
		{257, 256, 512},
		{64, 64, 64},
		{0, 256, 0},
		{64, 0, 64},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, AlignUp(c.size, c.alignment), "AlignUp(%d, %d)", c.size, c.alignment)
	}
}

func TestMat4BytesColumnMajor(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3)
	buf := Mat4Bytes(m)
	require.Len(t, buf, Mat4Size)

	// translation lives in the fourth column, elements 12..14
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f}, buf[12*4:12*4+4])
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x40}, buf[13*4:13*4+4])
	assert.Equal(t, []byte{0x00, 0x00, 0x40, 0x40}, buf[14*4:14*4+4])
}

func TestLookAtLHMapsTargetToPositiveZ(t *testing.T) {
	view := LookAtLH(mgl32.Vec3{2, 0, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})

	target := view.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, target[0], 1e-6)
	assert.InDelta(t, 0, target[1], 1e-6)
	assert.InDelta(t, 2, target[2], 1e-6)

	eye := view.Mul4x1(mgl32.Vec4{2, 0, 0, 1})
	assert.InDelta(t, 0, eye.Vec3().Len(), 1e-6)
}

func TestPerspectiveLHDepthRange(t *testing.T) {
	proj := PerspectiveLH(mgl32.DegToRad(45), 16.0/9.0, 0.1, 100)

	near := proj.Mul4x1(mgl32.Vec4{0, 0, 0.1, 1})
	far := proj.Mul4x1(mgl32.Vec4{0, 0, 100, 1})

	assert.InDelta(t, 0, near[2]/near[3], 1e-5)
	assert.InDelta(t, 1, far[2]/far[3], 1e-5)
}

func TestComposeTRSIdentity(t *testing.T) {
	m := ComposeTRS([3]float32{}, [4]float32{0, 0, 0, 1}, [3]float32{1, 1, 1})
	assert.True(t, m.ApproxEqual(mgl32.Ident4()))
}

func TestComposeTRSOrder(t *testing.T) {
	m := ComposeTRS([3]float32{5, 0, 0}, [4]float32{0, 0, 0, 1}, [3]float32{2, 2, 2})
	p := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 7, p[0], 1e-6)
}

func TestSamplerWithDefaults(t *testing.T) {
	assert.Equal(t, DefaultSampler, DefaultSampler.WithDefaults())

	s := SamplerStagingData{MagFilter: wgpu.FilterModeNearest}.WithDefaults()
	assert.Equal(t, wgpu.FilterModeNearest, s.MagFilter)
	assert.Equal(t, float32(32), s.LodMaxClamp)
	assert.Equal(t, uint16(1), s.MaxAnisotropy)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 3, 4))
	assert.Equal(t, "", Coalesce("", ""))
}
