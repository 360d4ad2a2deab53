package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUMaterialFactorsSource is the canonical WGSL definition of the MaterialFactors struct.
// Matches GPUMaterialFactors layout exactly (32 bytes, std140 aligned).
//
//go:embed assets/material_factors.wgsl
var GPUMaterialFactorsSource string

// GPUMaterialFactors is the GPU-aligned uniform bound at binding 0 of the material group.
// Matches the WGSL MaterialFactors struct layout exactly (see GPUMaterialFactorsSource).
// Size: 32 bytes (vec4 + two f32 + vec2 padding).
type GPUMaterialFactors struct {
	BaseColor [4]float32 // offset  0: base color RGBA multiplier (16 bytes)
	Metallic  float32    // offset 16: metallic factor (4 bytes)
	Roughness float32    // offset 20: roughness factor (4 bytes)
	_pad      [2]float32 // offset 24: padding to 32 bytes
}

// Size returns the size of the GPUMaterialFactors struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes (32)
func (g *GPUMaterialFactors) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterialFactors struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload
func (g *GPUMaterialFactors) Marshal() []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.BaseColor[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.BaseColor[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.BaseColor[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.BaseColor[3]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.Metallic))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(g.Roughness))
	return buf
}
