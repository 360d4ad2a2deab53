package bind_group_provider

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBuffer sets an owned buffer for a specific binding index.
//
// Parameters:
//   - binding: the binding index for this buffer
//   - buf: the buffer to associate with this binding
//   - size: the buffer size in bytes
//
// Returns:
//   - BindGroupProviderOption: a function that sets the buffer for the specified binding
func WithBuffer(binding int, buf Handle, size uint64) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.SetBuffer(binding, buf, size)
	}
}

// WithSharedTextureView binds a texture view owned by something else.
//
// Parameters:
//   - binding: the binding index
//   - tv: the borrowed texture view
//
// Returns:
//   - BindGroupProviderOption: a function that stores the borrowed view
func WithSharedTextureView(binding int, tv Handle) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.ShareTextureView(binding, tv)
	}
}

// WithSharedSampler binds a sampler owned by something else.
//
// Parameters:
//   - binding: the binding index
//   - s: the borrowed sampler
//
// Returns:
//   - BindGroupProviderOption: a function that stores the borrowed sampler
func WithSharedSampler(binding int, s Handle) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.ShareSampler(binding, s)
	}
}
