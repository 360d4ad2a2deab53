package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
// It holds the shader source and fixed-function state of one render pipeline, plus the GPU
// object created from it by the Renderer.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string

	// shaderSource is the WGSL module holding both entry points.
	shaderSource  string
	vertexEntry   string
	fragmentEntry string
	vertexLayouts []VertexBufferLayout
	gpuPipeline   interface{ Release() }
	depthTest     bool
	depthWrite    bool
	depthCompare  wgpu.CompareFunction
	blendEnabled  bool
	cullMode      wgpu.CullMode
	topology      wgpu.PrimitiveTopology
	frontFace     wgpu.FrontFace
	writeMask     wgpu.ColorWriteMask
	blendState    *wgpu.BlendState
}

// VertexBufferLayout describes one vertex buffer slot: a single tightly packed attribute.
type VertexBufferLayout struct {
	Location uint32
	Format   wgpu.VertexFormat
	Stride   uint64
}

// Pipeline defines the interface for a GPU render pipeline description. It holds the WGSL source,
// the vertex buffer slots and the depth, blend, cull and topology state required for creation.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// ShaderSource returns the WGSL module containing the vertex and fragment entry points.
	//
	// Returns:
	//   - string: the WGSL source
	ShaderSource() string

	// VertexEntryPoint returns the name of the vertex stage entry point.
	//
	// Returns:
	//   - string: the entry point name
	VertexEntryPoint() string

	// FragmentEntryPoint returns the name of the fragment stage entry point.
	//
	// Returns:
	//   - string: the entry point name
	FragmentEntryPoint() string

	// VertexBufferLayouts returns the vertex buffer slots, indexed by slot.
	//
	// Returns:
	//   - []VertexBufferLayout: one layout per vertex buffer slot
	VertexBufferLayouts() []VertexBufferLayout

	// GPUPipeline returns the backend object created for this pipeline, or nil before registration.
	// The caller is responsible for type asserting the returned value.
	//
	// Returns:
	//   - interface{ Release() }: the backend pipeline object
	GPUPipeline() interface{ Release() }

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth testing is enabled, false otherwise
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth writing is enabled, false otherwise
	DepthWriteEnabled() bool

	// DepthCompare returns the depth comparison function.
	//
	// Returns:
	//   - wgpu.CompareFunction: the comparison used by the depth test
	DepthCompare() wgpu.CompareFunction

	// BlendEnabled returns whether blending is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if blending is enabled, false otherwise
	BlendEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pipeline
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology for this pipeline
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order for this pipeline
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the color write mask for this pipeline
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state configured for this pipeline.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state for this pipeline, or nil if blending is not enabled
	BlendState() *wgpu.BlendState

	// SetGPUPipeline stores the backend object created for this pipeline.
	//
	// Parameters:
	//   - gp: the backend pipeline object
	SetGPUPipeline(gp interface{ Release() })

	// Release frees the backend pipeline object if one was created.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline is the entry point to create a new render Pipeline description.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:   pipelineKey,
		vertexEntry:   "vs_main",
		fragmentEntry: "fs_main",
		depthTest:     true,
		depthWrite:    true,
		depthCompare:  wgpu.CompareFunctionLess,
		blendEnabled:  false,
		cullMode:      wgpu.CullModeNone,
		topology:      wgpu.PrimitiveTopologyTriangleList,
		frontFace:     wgpu.FrontFaceCCW,
		writeMask:     wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) ShaderSource() string {
	return p.shaderSource
}

func (p *pipeline) VertexEntryPoint() string {
	return p.vertexEntry
}

func (p *pipeline) FragmentEntryPoint() string {
	return p.fragmentEntry
}

func (p *pipeline) VertexBufferLayouts() []VertexBufferLayout {
	return p.vertexLayouts
}

func (p *pipeline) GPUPipeline() interface{ Release() } {
	return p.gpuPipeline
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTest
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWrite
}

func (p *pipeline) DepthCompare() wgpu.CompareFunction {
	return p.depthCompare
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	if !p.blendEnabled {
		return nil
	}
	return p.blendState
}

func (p *pipeline) SetGPUPipeline(gp interface{ Release() }) {
	p.gpuPipeline = gp
}

func (p *pipeline) Release() {
	if p.gpuPipeline != nil {
		p.gpuPipeline.Release()
		p.gpuPipeline = nil
	}
}
