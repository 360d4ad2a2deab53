// Package mesh uploads decoded primitives into immutable GPU vertex and index buffers.
package mesh

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/resources"
	"github.com/Carmen-Shannon/oxy-viewer/internal/logger"

	"go.uber.org/zap"
)

// DefaultTangent is bound for every vertex of a primitive that carries no tangents.
var DefaultTangent = [4]float32{0, 0, 0, 1}

// Options controls how primitives are uploaded.
type Options struct {
	// Wireframe converts triangle indices into a line list of triangle edges.
	Wireframe bool
}

// Primitive is one drawable sub-mesh. Its provider holds a vertex buffer per attribute at the
// matching shader location and a u32 index buffer.
type Primitive struct {
	provider      bind_group_provider.BindGroupProvider
	materialIndex *int
	vertexCount   int
}

// BindGroupProvider returns the provider holding the vertex and index buffers.
func (p *Primitive) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return p.provider
}

// MaterialIndex returns the material weak reference, or nil for the default material.
func (p *Primitive) MaterialIndex() *int {
	return p.materialIndex
}

// VertexCount returns the number of vertices in each attribute buffer.
func (p *Primitive) VertexCount() int {
	return p.vertexCount
}

// IndexCount returns the number of indices drawn.
func (p *Primitive) IndexCount() int {
	return p.provider.IndexCount()
}

// Release frees the vertex and index buffers.
func (p *Primitive) Release() {
	p.provider.Release()
}

// Mesh is the GPU form of a decoded mesh.
type Mesh struct {
	Name       string
	Primitives []*Primitive
}

// Release frees every primitive of the mesh.
func (m *Mesh) Release() {
	for _, p := range m.Primitives {
		p.Release()
	}
}

// Build uploads every primitive of a decoded mesh. On failure nothing stays allocated.
//
// Parameters:
//   - r: the renderer that owns the GPU device
//   - src: the decoded mesh
//   - opts: upload options
//
// Returns:
//   - *Mesh: the GPU mesh
//   - error: wraps common.ErrMissingAttribute or common.ErrReference for invalid primitives
func Build(r renderer.Renderer, src resources.Mesh, opts Options) (*Mesh, error) {
	m := &Mesh{Name: src.Name, Primitives: make([]*Primitive, 0, len(src.Primitives))}
	for i, prim := range src.Primitives {
		p, err := BuildPrimitive(r, fmt.Sprintf("mesh %s/%d", src.Name, i), prim, opts)
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("mesh %q primitive %d: %w", src.Name, i, err)
		}
		m.Primitives = append(m.Primitives, p)
	}
	logger.Named("mesh").Debug("mesh uploaded",
		zap.String("mesh", src.Name),
		zap.Int("primitives", len(m.Primitives)),
		zap.Bool("wireframe", opts.Wireframe),
	)
	return m, nil
}

// BuildPrimitive uploads one decoded primitive.
//
// Parameters:
//   - r: the renderer that owns the GPU device
//   - label: the debug label of the buffers
//   - src: the decoded primitive
//   - opts: upload options
//
// Returns:
//   - *Primitive: the GPU primitive
//   - error: wraps common.ErrMissingAttribute or common.ErrReference for invalid input
func BuildPrimitive(r renderer.Renderer, label string, src resources.Primitive, opts Options) (*Primitive, error) {
	n := len(src.Positions)
	if n == 0 {
		return nil, fmt.Errorf("positions: %w", common.ErrMissingAttribute)
	}
	if len(src.Normals) == 0 {
		return nil, fmt.Errorf("normals: %w", common.ErrMissingAttribute)
	}
	if len(src.Indices) == 0 {
		return nil, fmt.Errorf("indices: %w", common.ErrMissingAttribute)
	}
	if len(src.Normals) != n {
		return nil, fmt.Errorf("%d normals for %d positions: %w", len(src.Normals), n, common.ErrReference)
	}

	texCoords := src.TexCoords
	if len(texCoords) == 0 {
		texCoords = make([][2]float32, n)
	}
	if len(texCoords) != n {
		return nil, fmt.Errorf("%d texcoords for %d positions: %w", len(texCoords), n, common.ErrReference)
	}

	tangents := src.Tangents
	if len(tangents) == 0 {
		tangents = make([][4]float32, n)
		for i := range tangents {
			tangents[i] = DefaultTangent
		}
	}
	if len(tangents) != n {
		return nil, fmt.Errorf("%d tangents for %d positions: %w", len(tangents), n, common.ErrReference)
	}

	for i, idx := range src.Indices {
		if int(idx) >= n {
			return nil, fmt.Errorf("index %d at %d exceeds vertex count %d: %w", idx, i, n, common.ErrReference)
		}
	}

	indices := src.Indices
	if opts.Wireframe {
		indices = LineListIndices(indices)
	}

	p := &Primitive{
		provider:      bind_group_provider.NewBindGroupProvider(label),
		materialIndex: src.MaterialIndex,
		vertexCount:   n,
	}
	attributes := []struct {
		location int
		data     []byte
	}{
		{renderer.LocationPosition, common.SliceToBytes(src.Positions)},
		{renderer.LocationTexCoord, common.SliceToBytes(texCoords)},
		{renderer.LocationNormal, common.SliceToBytes(src.Normals)},
		{renderer.LocationTangent, common.SliceToBytes(tangents)},
	}
	for _, a := range attributes {
		if err := r.InitVertexBuffer(p.provider, a.location, a.data); err != nil {
			p.Release()
			return nil, err
		}
	}
	if err := r.InitIndexBuffer(p.provider, common.SliceToBytes(indices), len(indices)); err != nil {
		p.Release()
		return nil, err
	}
	return p, nil
}

// LineListIndices converts triangle-list indices into a line list holding the three edges of
// every triangle. A trailing partial triangle is dropped.
//
// Parameters:
//   - triangles: the triangle-list indices
//
// Returns:
//   - []uint32: the line-list indices, twice as many as the complete triangles' indices
func LineListIndices(triangles []uint32) []uint32 {
	count := len(triangles) / 3
	lines := make([]uint32, 0, count*6)
	for t := 0; t < count; t++ {
		a, b, c := triangles[t*3], triangles[t*3+1], triangles[t*3+2]
		lines = append(lines, a, b, b, c, c, a)
	}
	return lines
}
