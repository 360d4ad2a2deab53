package model

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/entity"
	"github.com/Carmen-Shannon/oxy-viewer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-viewer/engine/resources"
	"github.com/Carmen-Shannon/oxy-viewer/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// BuildOptions controls how a Model is built.
type BuildOptions struct {
	// Name overrides the decoded asset name.
	Name string
	// Wireframe builds line-list index buffers for the wireframe pipeline.
	Wireframe bool
}

// Build turns decoded resources into a GPU-ready Model. Textures are built first, then the
// materials that borrow them, then the meshes, then the entity graph with its world transforms.
// On failure every GPU resource created so far is released and no Model is returned.
//
// Parameters:
//   - r: the renderer that owns the GPU device
//   - res: the decoded resources
//   - defaults: the shared fallback resources
//   - opts: build options
//
// Returns:
//   - Model: the built model
//   - error: the validation, graph or GPU error
func Build(r renderer.Renderer, res *resources.Resources, defaults *material.Defaults, opts BuildOptions) (Model, error) {
	if res == nil {
		return nil, errors.New("model: no resources")
	}
	if defaults == nil {
		return nil, errors.New("model: material fallbacks are required")
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}

	name := opts.Name
	if name == "" {
		name = res.Name
	}

	var (
		textures  = make([]*material.Texture, len(res.Textures))
		materials = make([]material.Material, 0, len(res.Materials))
		meshes    = make([]*mesh.Mesh, 0, len(res.Meshes))
		uniforms  *entity.UniformArray
	)
	// A failed build releases whatever was created so far through a partial Model.
	fail := func(err error) (Model, error) {
		NewModel(
			WithTextures(textures),
			WithMaterials(materials),
			WithMeshes(meshes),
			WithUniformArray(uniforms),
		).Release()
		logger.Named("model").Warn("model build failed", zap.String("model", name), zap.Error(err))
		return nil, err
	}

	for i, tex := range res.Textures {
		if tex.SourceIndex == nil {
			continue
		}
		t, err := material.BuildTexture(r, tex, res.Images[*tex.SourceIndex])
		if err != nil {
			return fail(fmt.Errorf("texture %d: %w", i, err))
		}
		textures[i] = t
	}

	for i, src := range res.Materials {
		mat, err := material.Build(r, src, textures, defaults)
		if err != nil {
			return fail(fmt.Errorf("material %d: %w", i, err))
		}
		materials = append(materials, mat)
	}

	for i, src := range res.Meshes {
		ms, err := mesh.Build(r, src, mesh.Options{Wireframe: opts.Wireframe})
		if err != nil {
			return fail(fmt.Errorf("mesh %d: %w", i, err))
		}
		meshes = append(meshes, ms)
	}

	entities := make([]entity.Entity, len(res.Nodes))
	for i, node := range res.Nodes {
		entities[i] = entity.FromNode(node)
	}
	var roots []int
	if scene := res.DefaultScene(); scene != nil {
		roots = scene.Nodes
	}
	root := entity.NewRoot(roots)

	worlds := make([]mgl32.Mat4, len(entities))
	for i := range worlds {
		worlds[i] = mgl32.Ident4()
	}
	drawables := 0
	uniforms = entity.NewUniformArray(len(entities), r.MinUniformBufferOffsetAlignment())
	err := entity.Walk(entities, root, func(i int, e entity.Entity, world mgl32.Mat4) error {
		if idx := e.MeshIndex(); idx != nil {
			if *idx < 0 || *idx >= len(meshes) {
				return fmt.Errorf("entity %d mesh %d out of range [0,%d): %w", i, *idx, len(meshes), common.ErrReference)
			}
			drawables++
		}
		worlds[i] = world
		return uniforms.Set(i, world)
	})
	if err != nil {
		return fail(err)
	}
	if err := uniforms.Upload(r); err != nil {
		return fail(err)
	}

	m := NewModel(
		WithName(name),
		WithWireframe(opts.Wireframe),
		WithDefaults(defaults),
		WithTextures(textures),
		WithMaterials(materials),
		WithMeshes(meshes),
		WithGraph(entities, root, worlds, drawables),
		WithUniformArray(uniforms),
	)

	logger.Named("model").Info("model built",
		zap.String("model", name),
		zap.Int("entities", len(entities)),
		zap.Int("drawables", drawables),
		zap.Int("meshes", len(meshes)),
		zap.Int("materials", len(materials)),
		zap.Int("textures", len(textures)),
		zap.Bool("wireframe", opts.Wireframe),
	)
	return m, nil
}
