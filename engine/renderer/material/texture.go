package material

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/resources"

	"github.com/cogentcore/webgpu/wgpu"
)

const (
	textureViewSlot = 0
	samplerSlot     = 1
)

// Texture is one immutable GPU texture with its sampler. Materials borrow both handles.
type Texture struct {
	name     string
	width    uint32
	height   uint32
	sampler  common.SamplerStagingData
	provider bind_group_provider.BindGroupProvider
}

// Name returns the texture label.
func (t *Texture) Name() string {
	return t.name
}

// Size returns the texture dimensions in pixels.
func (t *Texture) Size() (uint32, uint32) {
	return t.width, t.height
}

// SamplerData returns the completed sampler description the texture was built with.
func (t *Texture) SamplerData() common.SamplerStagingData {
	return t.sampler
}

// View returns the backend texture view handle.
func (t *Texture) View() bind_group_provider.Handle {
	return t.provider.TextureView(textureViewSlot)
}

// Sampler returns the backend sampler handle.
func (t *Texture) Sampler() bind_group_provider.Handle {
	return t.provider.Sampler(samplerSlot)
}

// Release frees the texture and its sampler. It is safe to call more than once.
func (t *Texture) Release() {
	t.provider.Release()
}

// BuildTexture uploads a decoded image as a GPU texture and creates its sampler.
//
// Parameters:
//   - r: the renderer that owns the GPU device
//   - tex: the decoded texture description
//   - img: the decoded RGBA8 image referenced by tex
//
// Returns:
//   - *Texture: the GPU texture
//   - error: an error if the image is empty or GPU creation fails
func BuildTexture(r renderer.Renderer, tex resources.Texture, img resources.Image) (*Texture, error) {
	if img.Width <= 0 || img.Height <= 0 {
		return nil, fmt.Errorf("texture %q: empty image %q: %w", tex.Name, img.Name, common.ErrDecode)
	}
	name := tex.Name
	if name == "" {
		name = img.Name
	}
	return newTexture(r, "texture "+name, common.TextureStagingData{
		Pixels: img.Pixels,
		Width:  uint32(img.Width),
		Height: uint32(img.Height),
	}, SamplerStagingData(tex.Sampler))
}

func newTexture(r renderer.Renderer, label string, data common.TextureStagingData, sampler common.SamplerStagingData) (*Texture, error) {
	t := &Texture{
		name:     label,
		width:    data.Width,
		height:   data.Height,
		sampler:  sampler.WithDefaults(),
		provider: bind_group_provider.NewBindGroupProvider(label),
	}
	if err := r.InitTextureView(t.provider, textureViewSlot, data); err != nil {
		t.Release()
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	if err := r.InitSampler(t.provider, samplerSlot, t.sampler); err != nil {
		t.Release()
		return nil, fmt.Errorf("%s sampler: %w", label, err)
	}
	return t, nil
}

// SamplerStagingData maps a decoded sampler onto the nearest backend sampler modes.
// Undefined fields keep the default sampler values.
//
// Parameters:
//   - s: the decoded sampler
//
// Returns:
//   - common.SamplerStagingData: the sampler description
func SamplerStagingData(s resources.Sampler) common.SamplerStagingData {
	out := common.DefaultSampler

	if mode, ok := filterMode(s.MagFilter); ok {
		out.MagFilter = mode
	}
	if mode, ok := filterMode(s.MinFilter); ok {
		out.MinFilter = mode
	}

	switch s.MipmapFilter {
	case resources.MipmapNearest:
		out.MipmapFilter = wgpu.MipmapFilterModeNearest
	case resources.MipmapLinear:
		out.MipmapFilter = wgpu.MipmapFilterModeLinear
	}

	if mode, ok := addressMode(s.WrapS); ok {
		out.AddressModeU = mode
	}
	if mode, ok := addressMode(s.WrapT); ok {
		out.AddressModeV = mode
	}
	return out
}

func filterMode(f resources.Filter) (wgpu.FilterMode, bool) {
	switch f {
	case resources.FilterNearest:
		return wgpu.FilterModeNearest, true
	case resources.FilterLinear:
		return wgpu.FilterModeLinear, true
	default:
		return 0, false
	}
}

func addressMode(w resources.Wrap) (wgpu.AddressMode, bool) {
	switch w {
	case resources.WrapRepeat:
		return wgpu.AddressModeRepeat, true
	case resources.WrapClampToEdge:
		return wgpu.AddressModeClampToEdge, true
	case resources.WrapMirroredRepeat:
		return wgpu.AddressModeMirrorRepeat, true
	default:
		return 0, false
	}
}
