package camera

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-viewer/common"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUCameraUniformSource is the canonical WGSL definition of the CameraUniform struct.
// Matches GPUCameraUniform layout exactly (128 bytes).
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the GPU-aligned representation of the camera uniform buffer.
// Matches the WGSL CameraUniform struct layout exactly (see GPUCameraUniformSource).
// Size: 128 bytes.
type GPUCameraUniform struct {
	View       mgl32.Mat4 // offset  0: view matrix (mat4x4<f32>)
	Projection mgl32.Mat4 // offset 64: projection matrix (mat4x4<f32>)
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - uint64: the struct size in bytes (128)
func (g GPUCameraUniform) Size() uint64 {
	return 2 * common.Mat4Size
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutMat4(buf[0:], g.View)
	common.PutMat4(buf[common.Mat4Size:], g.Projection)
	return buf
}
