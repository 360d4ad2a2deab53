package mesh

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-viewer/engine/resources"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quad() resources.Primitive {
	return resources.Primitive{
		Positions: [][3]float32{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}},
		Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
}

func floats(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}

func uints(data []byte) []uint32 {
	out := make([]uint32, len(data)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return out
}

func vertexData(t *testing.T, p *Primitive, location int) []byte {
	t.Helper()
	h := renderertest.HandleOf(p.BindGroupProvider().VertexBuffer(location))
	require.NotNil(t, h, "location %d", location)
	return h.Data
}

func TestBuildPrimitiveBuffers(t *testing.T) {
	r := renderertest.New()
	src := quad()
	src.MaterialIndex = resources.Index(2)

	p, err := BuildPrimitive(r, "quad", src, Options{})
	require.NoError(t, err)

	assert.Equal(t, 4, p.VertexCount())
	assert.Equal(t, 6, p.IndexCount())
	assert.Equal(t, 2, *p.MaterialIndex())
	assert.Equal(t, 4, p.BindGroupProvider().VertexBufferCount())

	assert.Len(t, vertexData(t, p, renderer.LocationPosition), 4*12)
	assert.Equal(t, []float32{1, -1, 0}, floats(vertexData(t, p, renderer.LocationPosition))[3:6])
	assert.Len(t, vertexData(t, p, renderer.LocationNormal), 4*12)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, uints(renderertest.HandleOf(p.BindGroupProvider().IndexBuffer()).Data))

	p.Release()
	assert.Zero(t, r.Live())
}

func TestBuildPrimitiveZeroTexCoords(t *testing.T) {
	r := renderertest.New()
	p, err := BuildPrimitive(r, "quad", quad(), Options{})
	require.NoError(t, err)

	uv := floats(vertexData(t, p, renderer.LocationTexCoord))
	require.Len(t, uv, 4*2)
	for _, v := range uv {
		assert.Zero(t, v)
	}
}

func TestBuildPrimitiveDefaultTangents(t *testing.T) {
	r := renderertest.New()
	p, err := BuildPrimitive(r, "quad", quad(), Options{})
	require.NoError(t, err)

	tangents := floats(vertexData(t, p, renderer.LocationTangent))
	require.Len(t, tangents, 4*4)
	for i := 0; i < 4; i++ {
		assert.Equal(t, DefaultTangent[:], tangents[i*4:i*4+4])
	}

	src := quad()
	src.Tangents = [][4]float32{{1, 0, 0, -1}, {1, 0, 0, -1}, {1, 0, 0, -1}, {1, 0, 0, -1}}
	p, err = BuildPrimitive(r, "quad", src, Options{})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0, -1}, floats(vertexData(t, p, renderer.LocationTangent))[:4])
}

func TestBuildPrimitiveWireframe(t *testing.T) {
	r := renderertest.New()
	p, err := BuildPrimitive(r, "quad", quad(), Options{Wireframe: true})
	require.NoError(t, err)

	assert.Equal(t, 12, p.IndexCount())
	assert.Equal(t,
		[]uint32{0, 1, 1, 2, 2, 0, 0, 2, 2, 3, 3, 0},
		uints(renderertest.HandleOf(p.BindGroupProvider().IndexBuffer()).Data),
	)
}

func TestLineListIndices(t *testing.T) {
	assert.Empty(t, LineListIndices(nil))
	assert.Equal(t, []uint32{4, 5, 5, 6, 6, 4}, LineListIndices([]uint32{4, 5, 6, 7}))
}

func TestBuildPrimitiveValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *resources.Primitive)
		want   error
	}{
		{"no positions", func(p *resources.Primitive) { p.Positions = nil }, common.ErrMissingAttribute},
		{"no normals", func(p *resources.Primitive) { p.Normals = nil }, common.ErrMissingAttribute},
		{"no indices", func(p *resources.Primitive) { p.Indices = nil }, common.ErrMissingAttribute},
		{"short normals", func(p *resources.Primitive) { p.Normals = p.Normals[:2] }, common.ErrReference},
		{"short texcoords", func(p *resources.Primitive) { p.TexCoords = [][2]float32{{0, 0}} }, common.ErrReference},
		{"short tangents", func(p *resources.Primitive) { p.Tangents = [][4]float32{{1, 0, 0, 1}} }, common.ErrReference},
		{"index out of range", func(p *resources.Primitive) { p.Indices[5] = 4 }, common.ErrReference},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := renderertest.New()
			src := quad()
			tc.mutate(&src)
			_, err := BuildPrimitive(r, "bad", src, Options{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), err.Error())
			assert.Zero(t, r.Created())
		})
	}
}

func TestBuildReleasesOnFailure(t *testing.T) {
	src := resources.Mesh{Name: "pair", Primitives: []resources.Primitive{quad(), quad()}}

	// Each primitive creates four vertex buffers and one index buffer.
	for budget := 0; budget < 10; budget++ {
		r := renderertest.New()
		r.FailAfter(budget)
		_, err := Build(r, src, Options{})
		require.Error(t, err, "budget %d", budget)
		assert.True(t, errors.Is(err, renderertest.ErrInjected))
		assert.Zero(t, r.Live(), "budget %d", budget)
	}

	r := renderertest.New()
	m, err := Build(r, src, Options{})
	require.NoError(t, err)
	assert.Equal(t, "pair", m.Name)
	require.Len(t, m.Primitives, 2)
	assert.Equal(t, 10, r.Live())
	m.Release()
	assert.Zero(t, r.Live())
}
