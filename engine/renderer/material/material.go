package material

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
)

// material is the implementation of the Material interface.
type material struct {
	name                     string
	baseColor                [4]float32
	metallic                 float32
	roughness                float32
	baseColorTexture         *int
	normalTexture            *int
	metallicRoughnessTexture *int
	bindGroupProvider        bind_group_provider.BindGroupProvider
}

// Material defines the interface for a render material, encapsulating surface
// properties, texture references, and the GPU bind group needed for draw calls.
//
// Surface properties are set at build time and are read-only through this interface.
// Texture handles referenced by the bind group are borrowed from the owning Model or from
// the Defaults, so releasing a Material frees only its factors buffer and bind group.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the albedo RGBA multiplier of the material.
	//
	// Returns:
	//   - [4]float32: the base color as RGBA values
	BaseColor() [4]float32

	// Metallic retrieves the metallic factor of the material.
	// A value of 0.0 represents a dielectric surface, 1.0 represents a fully metallic surface.
	//
	// Returns:
	//   - float32: the metallic factor
	Metallic() float32

	// Roughness retrieves the roughness factor of the material.
	// A value of 0.0 represents a perfectly smooth surface, 1.0 represents a fully rough surface.
	//
	// Returns:
	//   - float32: the roughness factor
	Roughness() float32

	// BaseColorTexture retrieves the texture index used for the base color, or nil when the fallback is bound.
	//
	// Returns:
	//   - *int: the texture index, or nil
	BaseColorTexture() *int

	// NormalTexture retrieves the texture index used for the normal map, or nil when the fallback is bound.
	//
	// Returns:
	//   - *int: the texture index, or nil
	NormalTexture() *int

	// MetallicRoughnessTexture retrieves the texture index used for the metallic-roughness map,
	// or nil when the fallback is bound.
	//
	// Returns:
	//   - *int: the texture index, or nil
	MetallicRoughnessTexture() *int

	// BindGroupProvider retrieves the bind group provider holding GPU-side resources for this material.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider, or nil if not yet built
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// FactorBytes returns the packed factors uniform exactly as uploaded.
	//
	// Returns:
	//   - []byte: the 32-byte GPUMaterialFactors record
	FactorBytes() []byte

	// SetBindGroupProvider sets the bind group provider for this material.
	//
	// Parameters:
	//   - provider: the bind group provider containing GPU resources for this material
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)

	// Release frees the factors buffer and bind group. Borrowed textures are left untouched.
	Release()
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		baseColor: [4]float32{1, 1, 1, 1},
		metallic:  0.0,
		roughness: 1.0,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) Metallic() float32 {
	return m.metallic
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) BaseColorTexture() *int {
	return m.baseColorTexture
}

func (m *material) NormalTexture() *int {
	return m.normalTexture
}

func (m *material) MetallicRoughnessTexture() *int {
	return m.metallicRoughnessTexture
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) FactorBytes() []byte {
	factors := GPUMaterialFactors{
		BaseColor: m.baseColor,
		Metallic:  m.metallic,
		Roughness: m.roughness,
	}
	return factors.Marshal()
}

func (m *material) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	m.bindGroupProvider = provider
}

func (m *material) Release() {
	if m.bindGroupProvider != nil {
		m.bindGroupProvider.Release()
	}
}
