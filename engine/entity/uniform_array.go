package entity

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"

	"github.com/go-gl/mathgl/mgl32"
)

// UniformArray packs one world transform per entity into a single uniform buffer. Records are
// Stride bytes apart so each can be bound through a dynamic offset.
type UniformArray struct {
	count    int
	stride   uint64
	mirror   []byte
	provider bind_group_provider.BindGroupProvider
}

// NewUniformArray creates the CPU mirror for count records, every record initialised to identity.
//
// Parameters:
//   - count: the number of records, one per entity
//   - alignment: the device's minimum uniform buffer offset alignment
//
// Returns:
//   - *UniformArray: the array, not yet uploaded
func NewUniformArray(count int, alignment uint64) *UniformArray {
	u := &UniformArray{
		count:    count,
		stride:   common.AlignUp(renderer.ModelUniformSize, alignment),
		provider: bind_group_provider.NewBindGroupProvider("entity transforms"),
	}
	u.mirror = make([]byte, uint64(max(count, 1))*u.stride)
	ident := mgl32.Ident4()
	for i := 0; i < count; i++ {
		common.PutMat4(u.mirror[uint64(i)*u.stride:], ident)
	}
	return u
}

// Len returns the number of records.
func (u *UniformArray) Len() int {
	return u.count
}

// Stride returns the byte distance between consecutive records.
func (u *UniformArray) Stride() uint64 {
	return u.stride
}

// Size returns the byte size of the uniform buffer.
func (u *UniformArray) Size() uint64 {
	return uint64(len(u.mirror))
}

// BindGroupProvider returns the provider holding the buffer and the model bind group.
func (u *UniformArray) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return u.provider
}

// Offset returns the dynamic offset of record i.
//
// Parameters:
//   - i: the entity index
//
// Returns:
//   - uint32: i × Stride
//   - error: wraps common.ErrReference when i is out of range
func (u *UniformArray) Offset(i int) (uint32, error) {
	if err := u.check(i); err != nil {
		return 0, err
	}
	return uint32(uint64(i) * u.stride), nil
}

// Set updates record i in the CPU mirror only.
//
// Parameters:
//   - i: the entity index
//   - m: the world transform
//
// Returns:
//   - error: wraps common.ErrReference when i is out of range
func (u *UniformArray) Set(i int, m mgl32.Mat4) error {
	if err := u.check(i); err != nil {
		return err
	}
	common.PutMat4(u.mirror[uint64(i)*u.stride:], m)
	return nil
}

// Record returns a copy of the bytes of record i, without stride padding.
//
// Parameters:
//   - i: the entity index
//
// Returns:
//   - []byte: the ModelUniformSize record bytes
//   - error: wraps common.ErrReference when i is out of range
func (u *UniformArray) Record(i int) ([]byte, error) {
	if err := u.check(i); err != nil {
		return nil, err
	}
	start := uint64(i) * u.stride
	return append([]byte(nil), u.mirror[start:start+renderer.ModelUniformSize]...), nil
}

// Upload creates the buffer and model bind group on first use, then writes the whole mirror.
//
// Parameters:
//   - r: the renderer that owns the GPU device
//
// Returns:
//   - error: the GPU error, if creation fails
func (u *UniformArray) Upload(r renderer.Renderer) error {
	if u.provider.BindGroup() == nil {
		sizes := map[int]uint64{renderer.BindingUniform: u.Size()}
		if err := r.InitBindGroup(u.provider, renderer.GroupModel, sizes); err != nil {
			u.provider.Release()
			return fmt.Errorf("entity transforms: %w", err)
		}
	}
	r.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: u.provider,
		Binding:  renderer.BindingUniform,
		Offset:   0,
		Data:     u.mirror,
	}})
	return nil
}

// Write updates record i and writes just that record to the GPU.
//
// Parameters:
//   - r: the renderer that owns the GPU device
//   - i: the entity index
//   - m: the world transform
//
// Returns:
//   - error: wraps common.ErrReference when i is out of range
func (u *UniformArray) Write(r renderer.Renderer, i int, m mgl32.Mat4) error {
	if err := u.Set(i, m); err != nil {
		return err
	}
	start := uint64(i) * u.stride
	r.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: u.provider,
		Binding:  renderer.BindingUniform,
		Offset:   start,
		Data:     u.mirror[start : start+renderer.ModelUniformSize],
	}})
	return nil
}

// Release frees the buffer and bind group.
func (u *UniformArray) Release() {
	u.provider.Release()
}

func (u *UniformArray) check(i int) error {
	if i < 0 || i >= u.count {
		return fmt.Errorf("uniform record %d out of range [0,%d): %w", i, u.count, common.ErrReference)
	}
	return nil
}
