package material

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/resources"
)

type textureSlot struct {
	index          *int
	textureBinding int
	samplerBinding int
	fallback       *Texture
}

// Build creates the factors uniform and the material bind group for a decoded material.
// Each texture slot binds the referenced texture, or the matching fallback from defaults when
// the reference is nil or the texture was not built. All texture handles are borrowed.
//
// Parameters:
//   - r: the renderer that owns the GPU device
//   - m: the decoded material
//   - textures: the Model's built textures, indexed like the decoded textures
//   - defaults: the shared fallback resources
//
// Returns:
//   - Material: the built material
//   - error: wraps common.ErrReference for an out-of-range texture index, or the GPU error
func Build(r renderer.Renderer, m resources.Material, textures []*Texture, defaults *Defaults) (Material, error) {
	if defaults == nil {
		return nil, errors.New("material fallbacks are required")
	}

	slots := []textureSlot{
		{m.BaseColorTexture, renderer.BindingBaseColorTexture, renderer.BindingBaseColorSampler, defaults.BaseColor},
		{m.NormalTexture, renderer.BindingNormalTexture, renderer.BindingNormalSampler, defaults.Normal},
		{m.MetallicRoughnessTexture, renderer.BindingMetallicRoughnessTexture, renderer.BindingMetallicRoughnessSampler, defaults.MetallicRoughness},
	}

	mat := NewMaterial(
		WithName(m.Name),
		WithBaseColor(m.BaseColorFactor),
		WithMetallic(m.MetallicFactor),
		WithRoughness(m.RoughnessFactor),
		WithBaseColorTexture(m.BaseColorTexture),
		WithNormalTexture(m.NormalTexture),
		WithMetallicRoughnessTexture(m.MetallicRoughnessTexture),
	)

	shared := make([]bind_group_provider.BindGroupProviderOption, 0, 2*len(slots))
	for _, slot := range slots {
		tex, err := resolveTexture(textures, slot.index)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", m.Name, err)
		}
		if tex == nil {
			tex = slot.fallback
		}
		if tex == nil {
			return nil, fmt.Errorf("material %q: fallback for binding %d is not initialised", m.Name, slot.textureBinding)
		}
		shared = append(shared,
			bind_group_provider.WithSharedTextureView(slot.textureBinding, tex.View()),
			bind_group_provider.WithSharedSampler(slot.samplerBinding, tex.Sampler()),
		)
	}

	provider := bind_group_provider.NewBindGroupProvider("material "+m.Name, shared...)

	size := common.AlignUp(renderer.MaterialFactorsUniformSize, r.MinUniformBufferOffsetAlignment())
	if err := r.InitBindGroup(provider, renderer.GroupMaterial, map[int]uint64{renderer.BindingMaterialFactors: size}); err != nil {
		provider.Release()
		return nil, fmt.Errorf("material %q: %w", m.Name, err)
	}
	r.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: provider,
		Binding:  renderer.BindingMaterialFactors,
		Offset:   0,
		Data:     mat.FactorBytes(),
	}})

	mat.SetBindGroupProvider(provider)
	return mat, nil
}

func resolveTexture(textures []*Texture, idx *int) (*Texture, error) {
	if idx == nil {
		return nil, nil
	}
	if *idx < 0 || *idx >= len(textures) {
		return nil, fmt.Errorf("texture index %d out of range [0,%d): %w", *idx, len(textures), common.ErrReference)
	}
	return textures[*idx], nil
}
