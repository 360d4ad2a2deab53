package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-viewer/internal/logger"

	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// SurfaceSource is the window-side collaborator the Renderer presents into.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	active  pipeline.Pipeline
	inFrame bool

	backendType RendererBackendType
	backend     RendererBackend

	width, height int
	wireframe     bool

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount

	log *zap.Logger
}

// Renderer defines the frame driver and GPU resource boundary of the viewer.
//
// Resource creation methods populate a BindGroupProvider with backend handles; frame methods
// encode one render pass. All methods must be called from the goroutine that owns the GPU.
type Renderer interface {
	// MinUniformBufferOffsetAlignment returns the device's required alignment for dynamic
	// uniform offsets and uniform buffer strides.
	//
	// Returns:
	//   - uint64: the alignment in bytes
	MinUniformBufferOffsetAlignment() uint64

	// InitVertexBuffer creates an immutable vertex buffer and stores it on the provider at a shader location.
	//
	// Parameters:
	//   - provider: the mesh provider that will own the buffer
	//   - location: the vertex buffer slot
	//   - data: the packed attribute bytes
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitVertexBuffer(provider bind_group_provider.BindGroupProvider, location int, data []byte) error

	// InitIndexBuffer creates an immutable u32 index buffer and stores it on the provider.
	//
	// Parameters:
	//   - provider: the mesh provider that will own the buffer
	//   - data: the packed u32 indices
	//   - count: the number of indices
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitIndexBuffer(provider bind_group_provider.BindGroupProvider, data []byte, count int) error

	// InitTextureView creates a GPU texture from staging data and stores the resulting texture view
	// on the given BindGroupProvider at the specified binding index. Must be called before InitBindGroup
	// for any texture bindings.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created texture view on
	//   - binding: the binding index for this texture
	//   - stagingData: the pixel data and dimensions for the texture
	//
	// Returns:
	//   - error: an error if texture creation fails
	InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.TextureStagingData) error

	// InitSampler creates a GPU sampler from staging data and stores it on the given BindGroupProvider
	// at the specified binding index. Must be called before InitBindGroup for any sampler bindings.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created sampler on
	//   - binding: the binding index for this sampler
	//   - samplerStagingData: the sampler configuration
	//
	// Returns:
	//   - error: an error if sampler creation fails
	InitSampler(provider bind_group_provider.BindGroupProvider, binding int, samplerStagingData common.SamplerStagingData) error

	// InitBindGroup creates any missing uniform buffers and the bind group for one of the fixed
	// layouts. Texture and sampler bindings must already be populated on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the buffers and bind group on
	//   - group: GroupCamera, GroupModel or GroupMaterial
	//   - bufferSizes: buffer sizes keyed by binding; missing bindings use the layout's minimum size
	//
	// Returns:
	//   - error: an error if creation fails or a texture/sampler binding is missing
	InitBindGroup(provider bind_group_provider.BindGroupProvider, group int, bufferSizes map[int]uint64) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	// Each BufferWrite targets a specific buffer on a BindGroupProvider at a given binding and offset.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// RegisterPipeline creates the GPU pipeline and makes it the one used by subsequent frames.
	// A previously registered pipeline is released.
	//
	// Parameters:
	//   - p: the pipeline description
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipeline(p pipeline.Pipeline) error

	// Pipeline returns the active pipeline, or nil before RegisterPipeline.
	//
	// Returns:
	//   - pipeline.Pipeline: the active pipeline
	Pipeline() pipeline.Pipeline

	// BeginFrame acquires the swapchain texture, begins the main render pass and binds the active pipeline.
	// Must be paired with EndFrame.
	//
	// Returns:
	//   - error: an error if no pipeline is registered or the swapchain texture could not be acquired
	BeginFrame() error

	// SetBindGroup binds a provider's bind group at a group index within the current render pass.
	//
	// Parameters:
	//   - group: the bind group index
	//   - provider: the provider holding the bind group
	//   - dynamicOffsets: one offset per dynamic binding, or nil
	SetBindGroup(group int, provider bind_group_provider.BindGroupProvider, dynamicOffsets []uint32)

	// DrawIndexed binds the provider's vertex buffers at their locations and its index buffer,
	// then draws the full index range.
	//
	// Parameters:
	//   - meshProvider: the provider holding vertex and index buffers
	DrawIndexed(meshProvider bind_group_provider.BindGroupProvider)

	// EndFrame ends the current render pass and submits the command buffer to the GPU.
	// Does not present the surface; call Present() after EndFrame to display the frame.
	EndFrame()

	// Present presents the surface to the display and releases the swapchain texture.
	// Must be called once per frame after EndFrame.
	Present()

	// Resize reconfigures the surface and the depth texture for a new size.
	// A zero width or height is ignored.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// Wireframe reports whether meshes must be built as line lists.
	//
	// Returns:
	//   - bool: true when the viewer draws edges only
	Wireframe() bool

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	// A call to Resize is required after changing this for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// Release frees the pipeline and every renderer-owned GPU object.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer for the surface of a window.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - surface: the window providing the platform surface descriptor and size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured Renderer
//   - error: wraps common.ErrResourceAcquisition if no adapter, device or surface is available
func NewRenderer(backendType RendererBackendType, surface SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	r := newRenderer(backendType, options...)

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		backend, err := newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
		if err != nil {
			return nil, err
		}
		r.backend = backend
	}

	if err := r.attach(surface.Width(), surface.Height()); err != nil {
		r.backend.Release()
		return nil, err
	}
	return r, nil
}

// NewRendererWithBackend wraps an already constructed backend.
//
// Parameters:
//   - backend: the GPU backend
//   - width, height: the initial surface size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured Renderer
//   - error: an error if the surface cannot be configured
func NewRendererWithBackend(backend RendererBackend, width, height int, options ...RendererBuilderOption) (Renderer, error) {
	r := newRenderer(BackendTypeWGPU, options...)
	r.backend = backend
	if err := r.attach(width, height); err != nil {
		return nil, err
	}
	return r, nil
}

func newRenderer(backendType RendererBackendType, options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		log:         logger.Named("renderer"),
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *renderer) attach(width, height int) error {
	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		return err
	}
	r.width, r.height = width, height
	r.log.Info("surface configured",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Bool("wireframe", r.wireframe),
		zap.Uint64("uniform_alignment", r.backend.MinUniformBufferOffsetAlignment()),
	)
	return nil
}

func (r *renderer) MinUniformBufferOffsetAlignment() uint64 {
	return r.backend.MinUniformBufferOffsetAlignment()
}

func (r *renderer) InitVertexBuffer(provider bind_group_provider.BindGroupProvider, location int, data []byte) error {
	if location < 0 || location >= VertexSlotCount {
		return fmt.Errorf("vertex location %d outside [0,%d)", location, VertexSlotCount)
	}
	return r.backend.InitVertexBuffer(provider, location, data)
}

func (r *renderer) InitIndexBuffer(provider bind_group_provider.BindGroupProvider, data []byte, count int) error {
	return r.backend.InitIndexBuffer(provider, data, count)
}

func (r *renderer) InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.TextureStagingData) error {
	if want := int(stagingData.Width) * int(stagingData.Height) * 4; len(stagingData.Pixels) != want {
		return fmt.Errorf("texture %q has %d bytes, want %d", provider.Label(), len(stagingData.Pixels), want)
	}
	return r.backend.InitTextureView(provider, binding, stagingData)
}

func (r *renderer) InitSampler(provider bind_group_provider.BindGroupProvider, binding int, samplerStagingData common.SamplerStagingData) error {
	return r.backend.InitSampler(provider, binding, samplerStagingData.WithDefaults())
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, group int, bufferSizes map[int]uint64) error {
	if group < 0 || group >= groupCount {
		return fmt.Errorf("bind group %d has no layout", group)
	}
	return r.backend.InitBindGroup(provider, group, bufferSizes)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.WriteBuffers(writes)
}

func (r *renderer) RegisterPipeline(p pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil && r.active.PipelineKey() == p.PipelineKey() {
		return nil
	}
	if err := r.backend.RegisterRenderPipeline(p); err != nil {
		return fmt.Errorf("registering pipeline %q: %w", p.PipelineKey(), err)
	}
	if r.active != nil {
		r.active.Release()
	}
	r.active = p
	r.wireframe = p.Topology() == wgpu.PrimitiveTopologyLineList
	return nil
}

func (r *renderer) Pipeline() pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

func (r *renderer) BeginFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil {
		return fmt.Errorf("no render pipeline registered")
	}
	if err := r.backend.BeginFrame(r.active); err != nil {
		return err
	}
	r.inFrame = true
	return nil
}

func (r *renderer) SetBindGroup(group int, provider bind_group_provider.BindGroupProvider, dynamicOffsets []uint32) {
	if !r.inFrame || provider == nil || provider.BindGroup() == nil {
		return
	}
	r.backend.SetBindGroup(group, provider, dynamicOffsets)
}

func (r *renderer) DrawIndexed(meshProvider bind_group_provider.BindGroupProvider) {
	if !r.inFrame || meshProvider == nil || meshProvider.IndexCount() == 0 {
		return
	}
	r.backend.DrawIndexed(meshProvider)
}

func (r *renderer) EndFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.inFrame {
		return
	}
	r.inFrame = false
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		r.log.Error("surface reconfiguration failed", zap.Int("width", width), zap.Int("height", height), zap.Error(err))
		return
	}
	r.width, r.height = width, height
	r.log.Debug("surface resized", zap.Int("width", width), zap.Int("height", height))
}

func (r *renderer) Wireframe() bool {
	return r.wireframe
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		r.active.Release()
		r.active = nil
	}
	r.backend.Release()
}
