package loader

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/resources"
)

// loaderBackend defines the generic interface for decoding an asset file into Resources.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
// Implementations must be safe for concurrent use; decodes run on pool workers.
type loaderBackend interface {
	// Load decodes and validates the asset at path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *resources.Resources: the decoded resources
	//   - error: error if loading fails
	Load(path string) (*resources.Resources, error)
}

// BackendFunc adapts a plain decode function into a loader backend.
type BackendFunc func(path string) (*resources.Resources, error)

func (f BackendFunc) Load(path string) (*resources.Resources, error) {
	return f(path)
}
