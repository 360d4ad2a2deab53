package model

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/entity"
	"github.com/Carmen-Shannon/oxy-viewer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/material"

	"github.com/go-gl/mathgl/mgl32"
)

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithWireframe is an option builder that marks the Model's index buffers as line lists.
//
// Parameters:
//   - wireframe: true for a wireframe model
//
// Returns:
//   - ModelBuilderOption: a function that applies the wireframe option to a model
func WithWireframe(wireframe bool) ModelBuilderOption {
	return func(m *model) {
		m.wireframe = wireframe
	}
}

// WithGraph is an option builder that sets the entity graph and the world transforms computed
// for it.
//
// Parameters:
//   - entities: the entities
//   - root: the root entity
//   - worlds: one world transform per entity
//   - drawables: the number of reachable entities with a mesh
//
// Returns:
//   - ModelBuilderOption: a function that applies the graph option to a model
func WithGraph(entities []entity.Entity, root entity.Entity, worlds []mgl32.Mat4, drawables int) ModelBuilderOption {
	return func(m *model) {
		m.entities = entities
		m.root = root
		m.worlds = worlds
		m.drawables = drawables
	}
}

// WithMeshes is an option builder that sets the GPU meshes of the Model.
//
// Parameters:
//   - meshes: the meshes, indexed like the decoded meshes
//
// Returns:
//   - ModelBuilderOption: a function that applies the meshes option to a model
func WithMeshes(meshes []*mesh.Mesh) ModelBuilderOption {
	return func(m *model) {
		m.meshes = meshes
	}
}

// WithTextures is an option builder that sets the GPU textures of the Model.
//
// Parameters:
//   - textures: the textures, indexed like the decoded textures
//
// Returns:
//   - ModelBuilderOption: a function that applies the textures option to a model
func WithTextures(textures []*material.Texture) ModelBuilderOption {
	return func(m *model) {
		m.textures = textures
	}
}

// WithMaterials is an option builder that sets the render-ready materials of the Model.
//
// Parameters:
//   - materials: the materials, indexed like the decoded materials
//
// Returns:
//   - ModelBuilderOption: a function that applies the materials option to a model
func WithMaterials(materials []material.Material) ModelBuilderOption {
	return func(m *model) {
		m.materials = materials
	}
}

// WithUniformArray is an option builder that sets the per-entity uniform array.
//
// Parameters:
//   - u: the uploaded uniform array
//
// Returns:
//   - ModelBuilderOption: a function that applies the uniform array option to a model
func WithUniformArray(u *entity.UniformArray) ModelBuilderOption {
	return func(m *model) {
		m.uniforms = u
	}
}

// WithDefaults is an option builder that sets the shared fallback resources. They are borrowed
// and never released by the Model.
//
// Parameters:
//   - defaults: the fallback resources
//
// Returns:
//   - ModelBuilderOption: a function that applies the defaults option to a model
func WithDefaults(defaults *material.Defaults) ModelBuilderOption {
	return func(m *model) {
		m.defaults = defaults
	}
}
