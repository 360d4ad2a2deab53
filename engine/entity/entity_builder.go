package entity

import "github.com/go-gl/mathgl/mgl32"

// EntityBuilderOption is a functional option for configuring an Entity.
type EntityBuilderOption func(*entity)

// WithName sets the entity name.
//
// Parameters:
//   - name: the name
//
// Returns:
//   - EntityBuilderOption: the option function
func WithName(name string) EntityBuilderOption {
	return func(e *entity) {
		e.name = name
	}
}

// WithMeshIndex sets the mesh drawn at the entity. nil leaves it a pure transform node.
//
// Parameters:
//   - idx: the mesh weak reference
//
// Returns:
//   - EntityBuilderOption: the option function
func WithMeshIndex(idx *int) EntityBuilderOption {
	return func(e *entity) {
		if idx == nil {
			e.meshIndex = nil
			return
		}
		v := *idx
		e.meshIndex = &v
	}
}

// WithChildren sets the child entity indices. The slice is copied.
//
// Parameters:
//   - children: the child indices in draw order
//
// Returns:
//   - EntityBuilderOption: the option function
func WithChildren(children []int) EntityBuilderOption {
	return func(e *entity) {
		e.children = append([]int(nil), children...)
	}
}

// WithTransform sets the local transform.
//
// Parameters:
//   - m: the transform relative to the parent
//
// Returns:
//   - EntityBuilderOption: the option function
func WithTransform(m mgl32.Mat4) EntityBuilderOption {
	return func(e *entity) {
		e.transform = m
	}
}
