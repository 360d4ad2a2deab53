package model

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/entity"
	"github.com/Carmen-Shannon/oxy-viewer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/material"

	"github.com/go-gl/mathgl/mgl32"
)

// model is the implementation of the Model interface.
type model struct {
	name      string
	wireframe bool
	entities  []entity.Entity
	root      entity.Entity
	worlds    []mgl32.Mat4
	drawables int
	meshes    []*mesh.Mesh
	textures  []*material.Texture
	materials []material.Material
	uniforms  *entity.UniformArray
	defaults  *material.Defaults
}

// Model is the GPU-ready form of one decoded asset: the entity graph with its world transform
// uniforms, plus the meshes, materials and textures it draws with.
// A Model is produced by Build and owns every GPU resource in it except the shared Defaults.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Wireframe reports whether the index buffers were built as line lists.
	//
	// Returns:
	//   - bool: true for a wireframe model
	Wireframe() bool

	// Entities retrieves the entity graph, indexed like the decoded nodes.
	//
	// Returns:
	//   - []entity.Entity: the entities
	Entities() []entity.Entity

	// Root retrieves the synthesised root entity.
	//
	// Returns:
	//   - entity.Entity: the root
	Root() entity.Entity

	// Meshes retrieves the GPU meshes, indexed like the decoded meshes.
	//
	// Returns:
	//   - []*mesh.Mesh: the meshes
	Meshes() []*mesh.Mesh

	// Textures retrieves the GPU textures, indexed like the decoded textures.
	// Entries are nil for textures without an image source.
	//
	// Returns:
	//   - []*material.Texture: the textures
	Textures() []*material.Texture

	// Materials retrieves the GPU materials, indexed like the decoded materials.
	//
	// Returns:
	//   - []material.Material: the materials
	Materials() []material.Material

	// UniformArray retrieves the per-entity world transform uniforms.
	//
	// Returns:
	//   - *entity.UniformArray: the uniform array
	UniformArray() *entity.UniformArray

	// WorldTransform returns the world transform computed for entity i at build time.
	// Entities outside the displayed scene keep the identity.
	//
	// Parameters:
	//   - i: the entity index
	//
	// Returns:
	//   - mgl32.Mat4: the world transform
	//   - error: wraps common.ErrReference when i is out of range
	WorldTransform(i int) (mgl32.Mat4, error)

	// DrawableCount returns the number of reachable entities that carry a mesh.
	//
	// Returns:
	//   - int: the drawable entity count
	DrawableCount() int

	// MaterialFor resolves the material a primitive is drawn with. A nil or unknown material
	// reference resolves to the default material.
	//
	// Parameters:
	//   - p: the primitive
	//
	// Returns:
	//   - material.Material: the material to bind
	MaterialFor(p *mesh.Primitive) material.Material

	// Walk visits the reachable entities depth-first, in draw order.
	//
	// Parameters:
	//   - visit: called once per reachable entity with its index and world transform
	//
	// Returns:
	//   - error: the first error returned by visit, or a graph error
	Walk(visit entity.VisitFunc) error

	// Release frees every GPU resource the Model owns. The shared Defaults are not released.
	// It is safe to call more than once.
	Release()
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied. Build is the
// usual way to obtain a Model; NewModel only assembles already built parts.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{
		root: entity.NewRoot(nil),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Wireframe() bool {
	return m.wireframe
}

func (m *model) Entities() []entity.Entity {
	return m.entities
}

func (m *model) Root() entity.Entity {
	return m.root
}

func (m *model) Meshes() []*mesh.Mesh {
	return m.meshes
}

func (m *model) Textures() []*material.Texture {
	return m.textures
}

func (m *model) Materials() []material.Material {
	return m.materials
}

func (m *model) UniformArray() *entity.UniformArray {
	return m.uniforms
}

func (m *model) WorldTransform(i int) (mgl32.Mat4, error) {
	if i < 0 || i >= len(m.worlds) {
		return mgl32.Mat4{}, fmt.Errorf("entity %d out of range [0,%d): %w", i, len(m.worlds), common.ErrReference)
	}
	return m.worlds[i], nil
}

func (m *model) DrawableCount() int {
	return m.drawables
}

func (m *model) MaterialFor(p *mesh.Primitive) material.Material {
	if idx := p.MaterialIndex(); idx != nil && *idx >= 0 && *idx < len(m.materials) && m.materials[*idx] != nil {
		return m.materials[*idx]
	}
	if m.defaults == nil {
		return nil
	}
	return m.defaults.Material
}

func (m *model) Walk(visit entity.VisitFunc) error {
	return entity.Walk(m.entities, m.root, visit)
}

func (m *model) Release() {
	if m.uniforms != nil {
		m.uniforms.Release()
		m.uniforms = nil
	}
	for _, ms := range m.meshes {
		ms.Release()
	}
	m.meshes = nil
	// Materials borrow texture handles, so they go before the textures.
	for _, mat := range m.materials {
		if mat != nil {
			mat.Release()
		}
	}
	m.materials = nil
	for _, t := range m.textures {
		if t != nil {
			t.Release()
		}
	}
	m.textures = nil
}
