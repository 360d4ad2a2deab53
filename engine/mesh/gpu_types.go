package mesh

import (
	_ "embed"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct. Each attribute
// lives in its own vertex buffer at the matching location.
//
//go:embed assets/vertex_input.wgsl
var GPUVertexSource string
