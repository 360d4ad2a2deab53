package material

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-viewer/engine/resources"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaults(t *testing.T, r *renderertest.Renderer) *Defaults {
	t.Helper()
	d, err := NewDefaults(r)
	require.NoError(t, err)
	return d
}

func checkerImage() resources.Image {
	return resources.Image{
		Name:   "checker",
		Width:  2,
		Height: 1,
		Pixels: []byte{0, 0, 0, 255, 255, 255, 255, 255},
	}
}

func TestGPUMaterialFactorsLayout(t *testing.T) {
	f := GPUMaterialFactors{BaseColor: [4]float32{0.1, 0.2, 0.3, 0.4}, Metallic: 0.5, Roughness: 0.6}
	assert.Equal(t, renderer.MaterialFactorsUniformSize, f.Size())

	buf := f.Marshal()
	require.Len(t, buf, 32)
	assert.Equal(t, float32(0.4), math.Float32frombits(binary.LittleEndian.Uint32(buf[12:])))
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[16:])))
	assert.Equal(t, float32(0.6), math.Float32frombits(binary.LittleEndian.Uint32(buf[20:])))
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0}, buf[24:])
	assert.Contains(t, GPUMaterialFactorsSource, "struct MaterialFactors")
}

func TestNewDefaults(t *testing.T) {
	r := renderertest.New()
	d := newDefaults(t, r)

	normal := renderertest.HandleOf(d.Normal.View())
	require.NotNil(t, normal)
	assert.Equal(t, []byte{128, 128, 255, 255}, normal.Data)
	assert.Equal(t, []byte{255, 255, 255, 255}, renderertest.HandleOf(d.BaseColor.View()).Data)
	assert.Equal(t, []byte{255, 255, 255, 255}, renderertest.HandleOf(d.MetallicRoughness.View()).Data)
	assert.Equal(t, common.DefaultSampler, renderertest.HandleOf(d.BaseColor.Sampler()).Sampler)

	require.NotNil(t, d.Material)
	assert.Equal(t, "default", d.Material.Name())
	assert.Equal(t, [4]float32{1, 1, 1, 1}, d.Material.BaseColor())
	assert.Equal(t, float32(0), d.Material.Metallic())
	assert.Equal(t, float32(1), d.Material.Roughness())

	d.Release()
	assert.Zero(t, r.Live())
	assert.Empty(t, r.WriteErrors)
}

func TestNewDefaultsRollsBackOnFailure(t *testing.T) {
	for budget := 0; budget < 8; budget++ {
		r := renderertest.New()
		r.FailAfter(budget)
		_, err := NewDefaults(r)
		require.Error(t, err, "budget %d", budget)
		assert.True(t, errors.Is(err, renderertest.ErrInjected))
		assert.Zero(t, r.Live(), "budget %d", budget)
	}
}

func TestBuildWithoutTexturesBorrowsFallbacks(t *testing.T) {
	r := renderertest.New(renderertest.WithAlignment(256))
	d := newDefaults(t, r)
	live := r.Live()

	m, err := Build(r, resources.Material{
		Name:            "red",
		BaseColorFactor: [4]float32{1, 0, 0, 1},
		MetallicFactor:  0.25,
		RoughnessFactor: 0.75,
	}, nil, d)
	require.NoError(t, err)

	p := m.BindGroupProvider()
	require.NotNil(t, p)
	assert.Same(t, d.BaseColor.View(), p.TextureView(renderer.BindingBaseColorTexture))
	assert.Same(t, d.Normal.View(), p.TextureView(renderer.BindingNormalTexture))
	assert.Same(t, d.MetallicRoughness.Sampler(), p.Sampler(renderer.BindingMetallicRoughnessSampler))
	assert.True(t, p.IsShared(renderer.BindingBaseColorTexture))
	assert.True(t, p.IsShared(renderer.BindingNormalSampler))

	assert.Equal(t, uint64(256), p.BufferSize(renderer.BindingMaterialFactors))
	data := renderertest.BufferData(p, renderer.BindingMaterialFactors)
	require.Len(t, data, 256)
	assert.Equal(t, m.FactorBytes(), data[:32])

	// Factors buffer and bind group.
	assert.Equal(t, live+2, r.Live())
	m.Release()
	m.Release()
	assert.Equal(t, live, r.Live())
	assert.False(t, renderertest.HandleOf(d.BaseColor.View()).Released)

	d.Release()
	assert.Zero(t, r.Live())
}

func TestBuildUsesModelTextures(t *testing.T) {
	r := renderertest.New()
	d := newDefaults(t, r)

	tex, err := BuildTexture(r, resources.Texture{Name: "albedo", Sampler: resources.Sampler{MagFilter: resources.FilterNearest}}, checkerImage())
	require.NoError(t, err)

	m, err := Build(r, resources.Material{
		Name:             "textured",
		BaseColorFactor:  [4]float32{1, 1, 1, 1},
		BaseColorTexture: resources.Index(0),
	}, []*Texture{tex}, d)
	require.NoError(t, err)

	p := m.BindGroupProvider()
	assert.Same(t, tex.View(), p.TextureView(renderer.BindingBaseColorTexture))
	assert.Same(t, d.Normal.View(), p.TextureView(renderer.BindingNormalTexture))
	assert.Equal(t, 0, *m.BaseColorTexture())
	assert.Nil(t, m.NormalTexture())

	m.Release()
	assert.False(t, renderertest.HandleOf(tex.View()).Released)
	tex.Release()
	assert.Nil(t, tex.View())
}

func TestBuildRejectsOutOfRangeTexture(t *testing.T) {
	r := renderertest.New()
	d := newDefaults(t, r)
	live := r.Live()

	_, err := Build(r, resources.Material{Name: "bad", NormalTexture: resources.Index(3)}, nil, d)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrReference))
	assert.Equal(t, live, r.Live())
}

func TestBuildReleasesOnGPUFailure(t *testing.T) {
	r := renderertest.New()
	d := newDefaults(t, r)
	live := r.Live()

	// The factors buffer succeeds, the bind group fails.
	r.FailAfter(1)
	_, err := Build(r, DefaultFactors, nil, d)
	require.Error(t, err)
	assert.Equal(t, live, r.Live())
}

func TestBuildIsIdempotent(t *testing.T) {
	r := renderertest.New()
	d := newDefaults(t, r)
	src := resources.Material{Name: "m", BaseColorFactor: [4]float32{0.2, 0.4, 0.6, 1}, MetallicFactor: 1, RoughnessFactor: 0.5}

	a, err := Build(r, src, nil, d)
	require.NoError(t, err)
	b, err := Build(r, src, nil, d)
	require.NoError(t, err)

	assert.Equal(t,
		renderertest.BufferData(a.BindGroupProvider(), renderer.BindingMaterialFactors),
		renderertest.BufferData(b.BindGroupProvider(), renderer.BindingMaterialFactors),
	)
	assert.NotSame(t, a.BindGroupProvider().BindGroup(), b.BindGroupProvider().BindGroup())
}

func TestBuildTexture(t *testing.T) {
	r := renderertest.New()

	tex, err := BuildTexture(r, resources.Texture{Sampler: resources.Sampler{WrapS: resources.WrapClampToEdge}}, checkerImage())
	require.NoError(t, err)
	w, h := tex.Size()
	assert.Equal(t, uint32(2), w)
	assert.Equal(t, uint32(1), h)
	assert.Equal(t, "texture checker", tex.Name())
	assert.Equal(t, checkerImage().Pixels, renderertest.HandleOf(tex.View()).Data)
	assert.Equal(t, wgpu.AddressModeClampToEdge, tex.SamplerData().AddressModeU)
	assert.Equal(t, wgpu.AddressModeRepeat, tex.SamplerData().AddressModeV)

	tex.Release()
	assert.Zero(t, r.Live())

	_, err = BuildTexture(r, resources.Texture{Name: "empty"}, resources.Image{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDecode))
}

func TestSamplerStagingData(t *testing.T) {
	cases := []struct {
		name  string
		in    resources.Sampler
		check func(t *testing.T, s common.SamplerStagingData)
	}{
		{
			name: "undefined uses defaults",
			in:   resources.Sampler{},
			check: func(t *testing.T, s common.SamplerStagingData) {
				assert.Equal(t, common.DefaultSampler, s)
			},
		},
		{
			name: "nearest with linear mipmaps",
			in:   resources.Sampler{MagFilter: resources.FilterNearest, MinFilter: resources.FilterNearest, MipmapFilter: resources.MipmapLinear},
			check: func(t *testing.T, s common.SamplerStagingData) {
				assert.Equal(t, wgpu.FilterModeNearest, s.MagFilter)
				assert.Equal(t, wgpu.FilterModeNearest, s.MinFilter)
				assert.Equal(t, wgpu.MipmapFilterModeLinear, s.MipmapFilter)
			},
		},
		{
			name: "wrap modes",
			in:   resources.Sampler{WrapS: resources.WrapMirroredRepeat, WrapT: resources.WrapClampToEdge},
			check: func(t *testing.T, s common.SamplerStagingData) {
				assert.Equal(t, wgpu.AddressModeMirrorRepeat, s.AddressModeU)
				assert.Equal(t, wgpu.AddressModeClampToEdge, s.AddressModeV)
				assert.Equal(t, wgpu.AddressModeRepeat, s.AddressModeW)
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, SamplerStagingData(tc.in))
		})
	}
}
