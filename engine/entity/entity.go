// Package entity holds the node graph of a Model and the per-entity world transform uniforms.
package entity

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/resources"

	"github.com/go-gl/mathgl/mgl32"
)

type entity struct {
	name      string
	meshIndex *int
	children  []int
	transform mgl32.Mat4
}

// Entity is one node of a Model's graph. Its transform is relative to its parent, and its
// children are indices into the Model's entity slice.
type Entity interface {
	// Name returns the entity name, which may be empty.
	//
	// Returns:
	//   - string: the name
	Name() string

	// MeshIndex returns the index of the mesh drawn at this entity, or nil for a pure transform node.
	//
	// Returns:
	//   - *int: the mesh weak reference or nil
	MeshIndex() *int

	// Children returns the child entity indices in draw order.
	//
	// Returns:
	//   - []int: the child indices
	Children() []int

	// Transform returns the local transform.
	//
	// Returns:
	//   - mgl32.Mat4: the transform relative to the parent
	Transform() mgl32.Mat4
}

var _ Entity = &entity{}

// NewEntity creates a new Entity configured with the given options.
// The default transform is the identity.
//
// Parameters:
//   - options: functional options to configure the entity
//
// Returns:
//   - Entity: the newly created entity
func NewEntity(options ...EntityBuilderOption) Entity {
	e := &entity{
		transform: mgl32.Ident4(),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// FromNode converts a decoded node into an Entity.
//
// Parameters:
//   - n: the decoded node
//
// Returns:
//   - Entity: the entity carrying the node's name, mesh, children and local transform
func FromNode(n resources.Node) Entity {
	return NewEntity(
		WithName(n.Name),
		WithMeshIndex(n.MeshIndex),
		WithChildren(n.Children),
		WithTransform(n.Transform),
	)
}

// NewRoot synthesises the root entity above the scene's root nodes. Its transform is
// common.CoordinateCorrection.
//
// Parameters:
//   - children: the scene's root node indices
//
// Returns:
//   - Entity: the root entity
func NewRoot(children []int) Entity {
	return NewEntity(
		WithName("root"),
		WithChildren(children),
		WithTransform(common.CoordinateCorrection),
	)
}

func (e *entity) Name() string {
	return e.name
}

func (e *entity) MeshIndex() *int {
	return e.meshIndex
}

func (e *entity) Children() []int {
	return e.children
}

func (e *entity) Transform() mgl32.Mat4 {
	return e.transform
}
