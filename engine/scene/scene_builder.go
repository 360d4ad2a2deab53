package scene

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithWireframe sets whether models are built with line-list index buffers. It must match the
// topology of the pipeline registered on the renderer.
//
// Parameters:
//   - wireframe: true for wireframe rendering
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithWireframe(wireframe bool) SceneBuilderOption {
	return func(s *scene) {
		s.wireframe = wireframe
	}
}
