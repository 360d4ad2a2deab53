package renderer

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"

	"github.com/cogentcore/webgpu/wgpu"
)

// Bind group indices. The camera is bound once per frame at the lowest index; model and
// material groups never alias it.
const (
	GroupCamera   = 0
	GroupModel    = 1
	GroupMaterial = 2
	groupCount    = 3
)

// Bindings inside GroupMaterial.
const (
	BindingMaterialFactors          = 0
	BindingBaseColorTexture         = 1
	BindingBaseColorSampler         = 2
	BindingNormalTexture            = 3
	BindingNormalSampler            = 4
	BindingMetallicRoughnessTexture = 5
	BindingMetallicRoughnessSampler = 6
)

// BindingUniform is binding 0 of the camera and model groups.
const BindingUniform = 0

// Vertex buffer slots. Each slot carries exactly one attribute at the matching shader location.
const (
	LocationPosition = 0
	LocationTexCoord = 1
	LocationNormal   = 2
	LocationTangent  = 3
	VertexSlotCount  = 4
)

// Sizes of the fixed uniform records.
const (
	CameraUniformSize          = 2 * common.Mat4Size
	ModelUniformSize           = common.Mat4Size
	MaterialFactorsUniformSize = 32
)

// BindGroupLayoutEntries returns the fixed layout of a bind group. The layout is a contract
// shared by every material and entity drawn through the viewer pipeline.
//
// Parameters:
//   - group: one of GroupCamera, GroupModel or GroupMaterial
//
// Returns:
//   - []wgpu.BindGroupLayoutEntry: the entries, or nil for an unknown group
func BindGroupLayoutEntries(group int) []wgpu.BindGroupLayoutEntry {
	switch group {
	case GroupCamera:
		return []wgpu.BindGroupLayoutEntry{
			uniformEntry(BindingUniform, wgpu.ShaderStageVertex, CameraUniformSize, false),
		}
	case GroupModel:
		return []wgpu.BindGroupLayoutEntry{
			uniformEntry(BindingUniform, wgpu.ShaderStageVertex, ModelUniformSize, true),
		}
	case GroupMaterial:
		return []wgpu.BindGroupLayoutEntry{
			uniformEntry(BindingMaterialFactors, wgpu.ShaderStageFragment, MaterialFactorsUniformSize, false),
			textureEntry(BindingBaseColorTexture),
			samplerEntry(BindingBaseColorSampler),
			textureEntry(BindingNormalTexture),
			samplerEntry(BindingNormalSampler),
			textureEntry(BindingMetallicRoughnessTexture),
			samplerEntry(BindingMetallicRoughnessSampler),
		}
	default:
		return nil
	}
}

// VertexBufferLayouts returns the four vertex buffer slots of the viewer pipeline.
//
// Returns:
//   - []pipeline.VertexBufferLayout: position, texcoord, normal and tangent slots
func VertexBufferLayouts() []pipeline.VertexBufferLayout {
	return []pipeline.VertexBufferLayout{
		{Location: LocationPosition, Format: wgpu.VertexFormatFloat32x3, Stride: 12},
		{Location: LocationTexCoord, Format: wgpu.VertexFormatFloat32x2, Stride: 8},
		{Location: LocationNormal, Format: wgpu.VertexFormatFloat32x3, Stride: 12},
		{Location: LocationTangent, Format: wgpu.VertexFormatFloat32x4, Stride: 16},
	}
}

// NewViewerPipeline describes the single render pipeline the viewer draws with.
// Wireframe mode switches the topology to a line list; meshes must then be built with
// line-list indices.
//
// Parameters:
//   - shaderSource: the WGSL module with vs_main and fs_main
//   - wireframe: true to draw edges instead of filled triangles
//
// Returns:
//   - pipeline.Pipeline: the pipeline description
func NewViewerPipeline(shaderSource string, wireframe bool) pipeline.Pipeline {
	topology := wgpu.PrimitiveTopologyTriangleList
	key := "viewer"
	if wireframe {
		topology = wgpu.PrimitiveTopologyLineList
		key = "viewer-wireframe"
	}
	return pipeline.NewPipeline(key,
		pipeline.WithShaderSource(shaderSource, "vs_main", "fs_main"),
		pipeline.WithVertexBufferLayouts(VertexBufferLayouts()...),
		pipeline.WithTopology(topology),
		pipeline.WithCullMode(wgpu.CullModeNone),
		pipeline.WithDepthCompare(wgpu.CompareFunctionLess),
	)
}

func uniformEntry(binding uint32, visibility wgpu.ShaderStage, size uint64, dynamic bool) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: visibility,
		Buffer: wgpu.BufferBindingLayout{
			Type:             wgpu.BufferBindingTypeUniform,
			HasDynamicOffset: dynamic,
			MinBindingSize:   size,
		},
	}
}

func textureEntry(binding uint32) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageFragment,
		Texture: wgpu.TextureBindingLayout{
			SampleType:    wgpu.TextureSampleTypeFloat,
			ViewDimension: wgpu.TextureViewDimension2D,
		},
	}
}

func samplerEntry(binding uint32) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageFragment,
		Sampler: wgpu.SamplerBindingLayout{
			Type: wgpu.SamplerBindingTypeFiltering,
		},
	}
}
