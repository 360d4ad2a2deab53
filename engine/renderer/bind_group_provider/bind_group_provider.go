package bind_group_provider

// Handle is a GPU resource owned or borrowed by a provider. Backends store their own
// concrete types (buffers, bind groups, texture views, samplers) behind it.
type Handle interface {
	Release()
}

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// The following fields are GPU allocated resources. They are populated by the Renderer during initialization, not by user-creation.

	// bindGroup is the GPU bind group created for this provider, or nil if not initialized with the Renderer.
	bindGroup Handle
	// buffers holds the GPU buffers created for this provider, keyed by binding index.
	buffers map[int]Handle
	// bufferSizes holds the byte size of each buffer, keyed by binding index.
	bufferSizes map[int]uint64
	// textureViews holds the GPU texture views bound by this provider, keyed by binding index.
	textureViews map[int]Handle
	// samplers holds the GPU samplers bound by this provider, keyed by binding index.
	samplers map[int]Handle
	// sharedViews marks texture views borrowed from another owner. Release skips them.
	sharedViews map[int]bool
	// sharedSamplers marks samplers borrowed from another owner. Release skips them.
	sharedSamplers map[int]bool

	// The following fields are specific to mesh providers.

	// vertexBuffers holds one GPU vertex buffer per shader location.
	vertexBuffers map[int]Handle
	// indexBuffer is the GPU index buffer, or nil if not initialized with the Renderer.
	indexBuffer Handle
	// indexCount is the number of indices for draw calls.
	indexCount int
}

// BindGroupProvider owns the GPU handles that back one bind group or one mesh primitive.
// Components (Camera, Material, UniformArray, Primitive) hold a BindGroupProvider to describe
// their GPU resources. The Renderer populates it and reads it back when drawing.
//
// Usage pattern:
//  1. Component creates a BindGroupProvider with a label
//  2. Component asks the Renderer to create buffers, views and samplers into it
//  3. Component calls Renderer.InitBindGroup(provider, group, sizes) to create the bind group
//  4. Scene calls Renderer.SetBindGroup / DrawIndexed with the provider each frame
//  5. Component calls Release when the owning object is discarded
type BindGroupProvider interface {
	// Release releases every owned GPU resource held by this provider.
	// Borrowed texture views and samplers are forgotten but not released.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BindGroup returns the created bind group, or nil if not initialized.
	//
	// Returns:
	//   - Handle: the bind group or nil
	BindGroup() Handle

	// Buffer returns the buffer at a binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - Handle: the buffer or nil
	Buffer(binding int) Handle

	// Buffers returns all buffers keyed by binding index.
	//
	// Returns:
	//   - map[int]Handle: the buffers
	Buffers() map[int]Handle

	// BufferSize returns the byte size recorded for a buffer binding, or 0 if unknown.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - uint64: the buffer size in bytes
	BufferSize(binding int) uint64

	// TextureView returns the texture view at a binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - Handle: the texture view or nil
	TextureView(binding int) Handle

	// TextureViews returns all texture views keyed by binding index.
	//
	// Returns:
	//   - map[int]Handle: the texture views
	TextureViews() map[int]Handle

	// Sampler returns the sampler at a binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - Handle: the sampler or nil
	Sampler(binding int) Handle

	// Samplers returns all samplers keyed by binding index.
	//
	// Returns:
	//   - map[int]Handle: the samplers
	Samplers() map[int]Handle

	// IsShared reports whether the texture view or sampler at a binding is borrowed.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - bool: true if the resource at binding is not owned by this provider
	IsShared(binding int) bool

	// VertexBuffer returns the vertex buffer bound at a shader location, or nil.
	//
	// Parameters:
	//   - location: the vertex buffer slot
	//
	// Returns:
	//   - Handle: the vertex buffer or nil
	VertexBuffer(location int) Handle

	// VertexBufferCount returns the number of vertex buffer slots populated.
	//
	// Returns:
	//   - int: the vertex buffer count
	VertexBufferCount() int

	// IndexBuffer returns the index buffer, or nil if not initialized.
	//
	// Returns:
	//   - Handle: the index buffer or nil
	IndexBuffer() Handle

	// IndexCount returns the number of indices for draw calls.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// SetBindGroup sets the bind group after GPU initialization.
	//
	// Parameters:
	//   - bg: the created bind group
	SetBindGroup(bg Handle)

	// SetBuffer stores an owned buffer and its size for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the created buffer
	//   - size: the buffer size in bytes
	SetBuffer(binding int, buf Handle, size uint64)

	// SetTextureView stores an owned texture view for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tv: the texture view to store
	SetTextureView(binding int, tv Handle)

	// ShareTextureView stores a borrowed texture view for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tv: the texture view owned elsewhere
	ShareTextureView(binding int, tv Handle)

	// SetSampler stores an owned sampler for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler to store
	SetSampler(binding int, s Handle)

	// ShareSampler stores a borrowed sampler for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler owned elsewhere
	ShareSampler(binding int, s Handle)

	// SetVertexBuffer stores the vertex buffer for a shader location.
	//
	// Parameters:
	//   - location: the vertex buffer slot
	//   - buf: the created vertex buffer
	SetVertexBuffer(location int, buf Handle)

	// SetIndexBuffer stores the index buffer and the number of indices it holds.
	//
	// Parameters:
	//   - buf: the created index buffer
	//   - count: the index count
	SetIndexBuffer(buf Handle, count int)
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: a debug label
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:          label,
		buffers:        make(map[int]Handle),
		bufferSizes:    make(map[int]uint64),
		textureViews:   make(map[int]Handle),
		samplers:       make(map[int]Handle),
		sharedViews:    make(map[int]bool),
		sharedSamplers: make(map[int]bool),
		vertexBuffers:  make(map[int]Handle),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() Handle {
	return p.bindGroup
}

func (p *bindGroupProvider) Buffer(binding int) Handle {
	return p.buffers[binding]
}

func (p *bindGroupProvider) Buffers() map[int]Handle {
	return p.buffers
}

func (p *bindGroupProvider) BufferSize(binding int) uint64 {
	return p.bufferSizes[binding]
}

func (p *bindGroupProvider) TextureView(binding int) Handle {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) TextureViews() map[int]Handle {
	return p.textureViews
}

func (p *bindGroupProvider) Sampler(binding int) Handle {
	return p.samplers[binding]
}

func (p *bindGroupProvider) Samplers() map[int]Handle {
	return p.samplers
}

func (p *bindGroupProvider) IsShared(binding int) bool {
	return p.sharedViews[binding] || p.sharedSamplers[binding]
}

func (p *bindGroupProvider) VertexBuffer(location int) Handle {
	return p.vertexBuffers[location]
}

func (p *bindGroupProvider) VertexBufferCount() int {
	return len(p.vertexBuffers)
}

func (p *bindGroupProvider) IndexBuffer() Handle {
	return p.indexBuffer
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) SetBindGroup(bg Handle) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBuffer(binding int, buf Handle, size uint64) {
	p.buffers[binding] = buf
	p.bufferSizes[binding] = size
}

func (p *bindGroupProvider) SetTextureView(binding int, tv Handle) {
	p.textureViews[binding] = tv
	delete(p.sharedViews, binding)
}

func (p *bindGroupProvider) ShareTextureView(binding int, tv Handle) {
	p.textureViews[binding] = tv
	p.sharedViews[binding] = true
}

func (p *bindGroupProvider) SetSampler(binding int, s Handle) {
	p.samplers[binding] = s
	delete(p.sharedSamplers, binding)
}

func (p *bindGroupProvider) ShareSampler(binding int, s Handle) {
	p.samplers[binding] = s
	p.sharedSamplers[binding] = true
}

func (p *bindGroupProvider) SetVertexBuffer(location int, buf Handle) {
	p.vertexBuffers[location] = buf
}

func (p *bindGroupProvider) SetIndexBuffer(buf Handle, count int) {
	p.indexBuffer = buf
	p.indexCount = count
}

func (p *bindGroupProvider) Release() {
	// The bind group references the views and buffers, so it goes first.
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	for i, tv := range p.textureViews {
		if tv != nil && !p.sharedViews[i] {
			tv.Release()
		}
		delete(p.textureViews, i)
		delete(p.sharedViews, i)
	}
	for i, s := range p.samplers {
		if s != nil && !p.sharedSamplers[i] {
			s.Release()
		}
		delete(p.samplers, i)
		delete(p.sharedSamplers, i)
	}
	for i, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, i)
		delete(p.bufferSizes, i)
	}
	for i, buf := range p.vertexBuffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.vertexBuffers, i)
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
	p.indexCount = 0
}
