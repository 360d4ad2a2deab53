// Package renderertest provides an in-memory Renderer for tests. It creates no GPU objects; every
// handle it hands out is a *Handle that records its contents and whether it was released.
package renderertest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrInjected is returned by resource creation once the failure budget set by FailAfter is spent.
var ErrInjected = errors.New("injected resource failure")

// HandleKind names the kind of object a Handle stands in for.
type HandleKind string

const (
	KindVertexBuffer  HandleKind = "vertex"
	KindIndexBuffer   HandleKind = "index"
	KindUniformBuffer HandleKind = "uniform"
	KindTexture       HandleKind = "texture"
	KindSampler       HandleKind = "sampler"
	KindBindGroup     HandleKind = "bind_group"
	KindPipeline      HandleKind = "pipeline"
)

// Handle is the fake GPU object stored on providers.
type Handle struct {
	ID       int
	Kind     HandleKind
	Label    string
	Data     []byte
	Width    uint32
	Height   uint32
	Sampler  common.SamplerStagingData
	Released bool

	owner *Renderer
}

func (h *Handle) Release() {
	h.owner.mu.Lock()
	defer h.owner.mu.Unlock()
	if h.Released {
		return
	}
	h.Released = true
	h.owner.live--
}

// Draw is one recorded DrawIndexed call together with the bind state in effect when it was issued.
type Draw struct {
	Mesh        bind_group_provider.BindGroupProvider
	Camera      bind_group_provider.BindGroupProvider
	Model       bind_group_provider.BindGroupProvider
	Material    bind_group_provider.BindGroupProvider
	ModelOffset uint32
	IndexCount  int
}

// BindCall is one recorded SetBindGroup call.
type BindCall struct {
	Group    int
	Provider bind_group_provider.BindGroupProvider
	Offsets  []uint32
}

// Renderer implements renderer.Renderer in memory.
type Renderer struct {
	mu *sync.Mutex

	alignment uint64
	wireframe bool
	width     int
	height    int

	nextID    int
	live      int
	failAfter int
	handles   []*Handle

	active  pipeline.Pipeline
	inFrame bool
	bound   map[int]BindCall

	// Frames counts completed BeginFrame/EndFrame pairs.
	Frames int
	// Presents counts Present calls.
	Presents int
	// Binds and Draws hold the calls of the most recent frame.
	Binds []BindCall
	Draws []Draw
	// WriteErrors collects buffer writes that fell outside their target buffer.
	WriteErrors []error
}

var _ renderer.Renderer = &Renderer{}

// Option configures a test Renderer.
type Option func(*Renderer)

// WithAlignment sets the reported minimum uniform offset alignment. The default is 256.
func WithAlignment(alignment uint64) Option {
	return func(r *Renderer) {
		r.alignment = alignment
	}
}

// WithSize sets the initial surface size. The default is 800x600.
func WithSize(width, height int) Option {
	return func(r *Renderer) {
		r.width, r.height = width, height
	}
}

// New creates an in-memory Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		mu:        &sync.Mutex{},
		alignment: 256,
		width:     800,
		height:    600,
		failAfter: -1,
		bound:     map[int]BindCall{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FailAfter lets the next n resource creations succeed and fails every one after them.
// A negative n disables failure injection.
func (r *Renderer) FailAfter(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failAfter = n
}

// Live returns the number of handles created and not yet released.
func (r *Renderer) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live
}

// Created returns the number of handles ever created.
func (r *Renderer) Created() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Size returns the current surface size.
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

// HandleOf returns the fake handle behind a provider handle, or nil.
func HandleOf(h bind_group_provider.Handle) *Handle {
	fh, _ := h.(*Handle)
	return fh
}

// BufferData returns the current bytes of a provider's uniform buffer.
func BufferData(provider bind_group_provider.BindGroupProvider, binding int) []byte {
	if h := HandleOf(provider.Buffer(binding)); h != nil {
		return h.Data
	}
	return nil
}

func (r *Renderer) newHandle(kind HandleKind, label string) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAfter == 0 {
		return nil, fmt.Errorf("%s %q: %w", kind, label, ErrInjected)
	}
	if r.failAfter > 0 {
		r.failAfter--
	}
	r.nextID++
	h := &Handle{ID: r.nextID, Kind: kind, Label: label, owner: r}
	r.handles = append(r.handles, h)
	r.live++
	return h, nil
}

func (r *Renderer) MinUniformBufferOffsetAlignment() uint64 {
	return r.alignment
}

func (r *Renderer) InitVertexBuffer(provider bind_group_provider.BindGroupProvider, location int, data []byte) error {
	if location < 0 || location >= renderer.VertexSlotCount {
		return fmt.Errorf("vertex location %d outside [0,%d)", location, renderer.VertexSlotCount)
	}
	h, err := r.newHandle(KindVertexBuffer, provider.Label())
	if err != nil {
		return err
	}
	h.Data = append([]byte(nil), data...)
	provider.SetVertexBuffer(location, h)
	return nil
}

func (r *Renderer) InitIndexBuffer(provider bind_group_provider.BindGroupProvider, data []byte, count int) error {
	h, err := r.newHandle(KindIndexBuffer, provider.Label())
	if err != nil {
		return err
	}
	h.Data = append([]byte(nil), data...)
	provider.SetIndexBuffer(h, count)
	return nil
}

func (r *Renderer) InitTextureView(provider bind_group_provider.BindGroupProvider, binding int, stagingData common.TextureStagingData) error {
	if want := int(stagingData.Width) * int(stagingData.Height) * 4; len(stagingData.Pixels) != want {
		return fmt.Errorf("texture %q has %d bytes, want %d", provider.Label(), len(stagingData.Pixels), want)
	}
	h, err := r.newHandle(KindTexture, provider.Label())
	if err != nil {
		return err
	}
	h.Data = append([]byte(nil), stagingData.Pixels...)
	h.Width, h.Height = stagingData.Width, stagingData.Height
	provider.SetTextureView(binding, h)
	return nil
}

func (r *Renderer) InitSampler(provider bind_group_provider.BindGroupProvider, binding int, samplerStagingData common.SamplerStagingData) error {
	h, err := r.newHandle(KindSampler, provider.Label())
	if err != nil {
		return err
	}
	h.Sampler = samplerStagingData.WithDefaults()
	provider.SetSampler(binding, h)
	return nil
}

func (r *Renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, group int, bufferSizes map[int]uint64) error {
	entries := renderer.BindGroupLayoutEntries(group)
	if entries == nil {
		return fmt.Errorf("bind group %d has no layout", group)
	}
	for _, entry := range entries {
		binding := int(entry.Binding)
		switch {
		case entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
			if provider.TextureView(binding) == nil {
				return fmt.Errorf("texture binding %d has no texture view, call InitTextureView first", binding)
			}
		case entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			if provider.Sampler(binding) == nil {
				return fmt.Errorf("sampler binding %d has no sampler, call InitSampler first", binding)
			}
		default:
			if provider.Buffer(binding) != nil {
				continue
			}
			size := entry.Buffer.MinBindingSize
			if s, ok := bufferSizes[binding]; ok && s > size {
				size = s
			}
			h, err := r.newHandle(KindUniformBuffer, provider.Label())
			if err != nil {
				return err
			}
			h.Data = make([]byte, size)
			provider.SetBuffer(binding, h, size)
		}
	}
	bg, err := r.newHandle(KindBindGroup, provider.Label())
	if err != nil {
		return err
	}
	if old := provider.BindGroup(); old != nil {
		old.Release()
	}
	provider.SetBindGroup(bg)
	return nil
}

func (r *Renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	for _, w := range writes {
		h := HandleOf(w.Provider.Buffer(w.Binding))
		if h == nil {
			r.WriteErrors = append(r.WriteErrors, fmt.Errorf("%s binding %d: no buffer", w.Provider.Label(), w.Binding))
			continue
		}
		end := w.Offset + uint64(len(w.Data))
		if end > uint64(len(h.Data)) {
			r.WriteErrors = append(r.WriteErrors, fmt.Errorf("%s binding %d: write [%d,%d) past size %d", w.Provider.Label(), w.Binding, w.Offset, end, len(h.Data)))
			continue
		}
		copy(h.Data[w.Offset:end], w.Data)
	}
}

func (r *Renderer) RegisterPipeline(p pipeline.Pipeline) error {
	if r.active != nil && r.active.PipelineKey() == p.PipelineKey() {
		return nil
	}
	h, err := r.newHandle(KindPipeline, p.PipelineKey())
	if err != nil {
		return err
	}
	p.SetGPUPipeline(h)
	if r.active != nil {
		r.active.Release()
	}
	r.active = p
	r.wireframe = p.Topology() == wgpu.PrimitiveTopologyLineList
	return nil
}

func (r *Renderer) Pipeline() pipeline.Pipeline {
	return r.active
}

func (r *Renderer) BeginFrame() error {
	if r.active == nil {
		return errors.New("no render pipeline registered")
	}
	if r.inFrame {
		return errors.New("frame already in progress")
	}
	r.inFrame = true
	r.Binds = nil
	r.Draws = nil
	r.bound = map[int]BindCall{}
	return nil
}

func (r *Renderer) SetBindGroup(group int, provider bind_group_provider.BindGroupProvider, dynamicOffsets []uint32) {
	if !r.inFrame || provider == nil || provider.BindGroup() == nil {
		return
	}
	call := BindCall{Group: group, Provider: provider, Offsets: append([]uint32(nil), dynamicOffsets...)}
	r.Binds = append(r.Binds, call)
	r.bound[group] = call
}

func (r *Renderer) DrawIndexed(meshProvider bind_group_provider.BindGroupProvider) {
	if !r.inFrame || meshProvider == nil || meshProvider.IndexCount() == 0 {
		return
	}
	d := Draw{
		Mesh:       meshProvider,
		Camera:     r.bound[renderer.GroupCamera].Provider,
		Model:      r.bound[renderer.GroupModel].Provider,
		Material:   r.bound[renderer.GroupMaterial].Provider,
		IndexCount: meshProvider.IndexCount(),
	}
	if offsets := r.bound[renderer.GroupModel].Offsets; len(offsets) > 0 {
		d.ModelOffset = offsets[0]
	}
	r.Draws = append(r.Draws, d)
}

func (r *Renderer) EndFrame() {
	if !r.inFrame {
		return
	}
	r.inFrame = false
	r.Frames++
}

func (r *Renderer) Present() {
	r.Presents++
}

func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.width, r.height = width, height
}

func (r *Renderer) Wireframe() bool {
	return r.wireframe
}

func (r *Renderer) SetPresentMode(mode renderer.PresentMode) {}

func (r *Renderer) Release() {
	if r.active != nil {
		r.active.Release()
		r.active = nil
	}
}
