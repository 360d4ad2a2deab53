package renderer

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// Only specific power-of-two values are valid for GPU hardware. WebGPU guarantees support for
// 1 (off) and 4; higher values (8, 16) are adapter-dependent and may not be available.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4

	// MSAA8x enables 8× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA8x MSAASampleCount = 8

	// MSAA16x enables 16× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA16x MSAASampleCount = 16
)

// RendererBackend is the GPU API seam beneath the Renderer. Every method runs on the
// render goroutine; handles stored on providers are the backend's own concrete types.
type RendererBackend interface {
	MinUniformBufferOffsetAlignment() uint64
	ConfigureSurface(width, height int) error
	SetPresentMode(mode PresentMode)
	RegisterRenderPipeline(p pipeline.Pipeline) error
	InitVertexBuffer(provider bind_group_provider.BindGroupProvider, location int, data []byte) error
	InitIndexBuffer(provider bind_group_provider.BindGroupProvider, data []byte, count int) error
	InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.TextureStagingData) error
	InitSampler(provider bind_group_provider.BindGroupProvider, binding int, samplerStagingData common.SamplerStagingData) error
	InitBindGroup(provider bind_group_provider.BindGroupProvider, group int, bufferSizes map[int]uint64) error
	WriteBuffers(writes []bind_group_provider.BufferWrite)
	BeginFrame(p pipeline.Pipeline) error
	SetBindGroup(group int, provider bind_group_provider.BindGroupProvider, dynamicOffsets []uint32)
	DrawIndexed(meshProvider bind_group_provider.BindGroupProvider)
	EndFrame()
	Present()
	Release()
}
