package material

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/resources"
	"github.com/Carmen-Shannon/oxy-viewer/internal/logger"

	"go.uber.org/zap"
)

// Defaults holds the fallback textures and the default material. It is created once per
// renderer and shared read-only by every Model; Models never release it.
type Defaults struct {
	// BaseColor is an opaque white 1x1 texture.
	BaseColor *Texture
	// Normal is a flat tangent-space normal, (0.5, 0.5, 1.0) in byte range.
	Normal *Texture
	// MetallicRoughness is white so the material factors pass through unchanged.
	MetallicRoughness *Texture
	// Material is bound for primitives that reference no material.
	Material Material
}

// DefaultFactors are the factors of the default material.
var DefaultFactors = resources.Material{
	Name:            "default",
	BaseColorFactor: [4]float32{1, 1, 1, 1},
	MetallicFactor:  0,
	RoughnessFactor: 1,
}

// NewDefaults creates the fallback textures and the default material.
//
// Parameters:
//   - r: the renderer that owns the GPU device
//
// Returns:
//   - *Defaults: the shared fallback resources
//   - error: an error if GPU creation fails; nothing is left allocated in that case
func NewDefaults(r renderer.Renderer) (*Defaults, error) {
	d := &Defaults{}
	var err error

	d.BaseColor, err = newTexture(r, "default base color", common.SolidTexture(255, 255, 255, 255), common.DefaultSampler)
	if err != nil {
		d.Release()
		return nil, err
	}
	d.Normal, err = newTexture(r, "default normal", common.SolidTexture(128, 128, 255, 255), common.DefaultSampler)
	if err != nil {
		d.Release()
		return nil, err
	}
	d.MetallicRoughness, err = newTexture(r, "default metallic roughness", common.SolidTexture(255, 255, 255, 255), common.DefaultSampler)
	if err != nil {
		d.Release()
		return nil, err
	}
	d.Material, err = Build(r, DefaultFactors, nil, d)
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("default material: %w", err)
	}

	logger.Named("material").Debug("fallback resources created", zap.Uint64("alignment", r.MinUniformBufferOffsetAlignment()))
	return d, nil
}

// Release frees the fallback resources. Call it once, after every Model using them is released.
func (d *Defaults) Release() {
	if d.Material != nil {
		d.Material.Release()
		d.Material = nil
	}
	for _, t := range []**Texture{&d.BaseColor, &d.Normal, &d.MetallicRoughness} {
		if *t != nil {
			(*t).Release()
			*t = nil
		}
	}
}
