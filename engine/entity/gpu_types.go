package entity

import (
	_ "embed"
)

// GPUModelUniformSource is the canonical WGSL definition of the ModelUniform struct, one record
// of the UniformArray. Size: 64 bytes before stride padding.
//
//go:embed assets/model_uniform.wgsl
var GPUModelUniformSource string
