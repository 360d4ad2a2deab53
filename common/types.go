// package common contains common types that are used throughout this viewer. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "github.com/cogentcore/webgpu/wgpu"

// TextureStagingData holds RGBA pixel data for a texture binding pending GPU upload.
// This is primarily used in the BindGroupProvider to stage texture data before creating the GPU texture and bind group.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels. This is required to correctly create the GPU texture and interpret the pixel data.
	Width uint32
	// Height is the height of the texture in pixels. This is required to correctly create the GPU texture and interpret the pixel data.
	Height uint32
}

// SolidTexture returns 1x1 staging data filled with a single RGBA8 color.
//
// Parameters:
//   - r, g, b, a: the color channels
//
// Returns:
//   - TextureStagingData: a single-pixel texture
func SolidTexture(r, g, b, a uint8) TextureStagingData {
	return TextureStagingData{
		Pixels: []byte{r, g, b, a},
		Width:  1,
		Height: 1,
	}
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// Address and filter modes are always explicit; their zero values select Repeat and Nearest.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// DefaultSampler is the sampler used when an asset omits sampler parameters.
var DefaultSampler = SamplerStagingData{
	AddressModeU:  wgpu.AddressModeRepeat,
	AddressModeV:  wgpu.AddressModeRepeat,
	AddressModeW:  wgpu.AddressModeRepeat,
	MagFilter:     wgpu.FilterModeLinear,
	MinFilter:     wgpu.FilterModeLinear,
	MipmapFilter:  wgpu.MipmapFilterModeLinear,
	LodMinClamp:   0,
	LodMaxClamp:   32,
	MaxAnisotropy: 1,
}

// WithDefaults returns a copy of s where the LOD ceiling and anisotropy, which have no valid
// zero value, take the DefaultSampler value.
//
// Returns:
//   - SamplerStagingData: the completed sampler description
func (s SamplerStagingData) WithDefaults() SamplerStagingData {
	s.LodMaxClamp = Coalesce(s.LodMaxClamp, DefaultSampler.LodMaxClamp)
	s.MaxAnisotropy = Coalesce(s.MaxAnisotropy, DefaultSampler.MaxAnisotropy)
	return s
}
