package resources

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// Validate checks that every weak reference is in range and that each primitive's
// attribute arrays agree with its vertex count. Violations wrap common.ErrReference.
func (r *Resources) Validate() error {
	if r.DefaultSceneIndex != nil {
		if err := checkIndex("default scene", *r.DefaultSceneIndex, len(r.Scenes)); err != nil {
			return err
		}
	}

	for si, s := range r.Scenes {
		for _, n := range s.Nodes {
			if err := checkIndex(fmt.Sprintf("scene %d node", si), n, len(r.Nodes)); err != nil {
				return err
			}
		}
	}

	for ni, n := range r.Nodes {
		if n.MeshIndex != nil {
			if err := checkIndex(fmt.Sprintf("node %d mesh", ni), *n.MeshIndex, len(r.Meshes)); err != nil {
				return err
			}
		}
		for _, c := range n.Children {
			if err := checkIndex(fmt.Sprintf("node %d child", ni), c, len(r.Nodes)); err != nil {
				return err
			}
		}
	}

	for mi, m := range r.Meshes {
		for pi := range m.Primitives {
			if err := r.validatePrimitive(&m.Primitives[pi]); err != nil {
				return fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
			}
		}
	}

	for mi, m := range r.Materials {
		for _, ref := range []*int{m.BaseColorTexture, m.NormalTexture, m.MetallicRoughnessTexture} {
			if ref == nil {
				continue
			}
			if err := checkIndex(fmt.Sprintf("material %d texture", mi), *ref, len(r.Textures)); err != nil {
				return err
			}
		}
	}

	for ti, t := range r.Textures {
		if t.SourceIndex != nil {
			if err := checkIndex(fmt.Sprintf("texture %d source", ti), *t.SourceIndex, len(r.Images)); err != nil {
				return err
			}
		}
	}

	for ii, img := range r.Images {
		if len(img.Pixels) != img.Width*img.Height*4 {
			return fmt.Errorf("%w: image %d has %d bytes for %dx%d", common.ErrReference, ii, len(img.Pixels), img.Width, img.Height)
		}
	}

	return nil
}

func (r *Resources) validatePrimitive(p *Primitive) error {
	n := len(p.Positions)
	if len(p.Normals) != n {
		return fmt.Errorf("%w: %d normals for %d positions", common.ErrReference, len(p.Normals), n)
	}
	if len(p.TexCoords) != 0 && len(p.TexCoords) != n {
		return fmt.Errorf("%w: %d texcoords for %d positions", common.ErrReference, len(p.TexCoords), n)
	}
	if len(p.Tangents) != 0 && len(p.Tangents) != n {
		return fmt.Errorf("%w: %d tangents for %d positions", common.ErrReference, len(p.Tangents), n)
	}
	for _, idx := range p.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%w: index %d exceeds vertex count %d", common.ErrReference, idx, n)
		}
	}
	if p.MaterialIndex != nil {
		if err := checkIndex("material", *p.MaterialIndex, len(r.Materials)); err != nil {
			return err
		}
	}
	return nil
}

func checkIndex(what string, idx, length int) error {
	if idx < 0 || idx >= length {
		return fmt.Errorf("%w: %s %d out of range [0,%d)", common.ErrReference, what, idx, length)
	}
	return nil
}
