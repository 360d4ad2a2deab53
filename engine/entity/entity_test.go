package entity

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-viewer/engine/resources"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromNode(t *testing.T) {
	node := resources.Node{
		Name:      "arm",
		MeshIndex: resources.Index(1),
		Children:  []int{2, 3},
		Transform: mgl32.Translate3D(1, 2, 3),
	}
	e := FromNode(node)
	assert.Equal(t, "arm", e.Name())
	assert.Equal(t, 1, *e.MeshIndex())
	assert.Equal(t, []int{2, 3}, e.Children())
	assert.Equal(t, node.Transform, e.Transform())

	node.Children[0] = 9
	*node.MeshIndex = 7
	assert.Equal(t, []int{2, 3}, e.Children())
	assert.Equal(t, 1, *e.MeshIndex())
}

func TestNewRoot(t *testing.T) {
	root := NewRoot([]int{0, 4})
	assert.Nil(t, root.MeshIndex())
	assert.Equal(t, []int{0, 4}, root.Children())
	assert.Equal(t, common.CoordinateCorrection, root.Transform())
	assert.Equal(t, mgl32.Ident4(), NewEntity().Transform())
}

// randomForest returns entities where every entity i > 0 hangs below an earlier entity or the
// root, together with each entity's parent (-1 for the root).
func randomForest(rng *rand.Rand, n int) ([]Entity, Entity, []int) {
	parents := make([]int, n)
	children := make([][]int, n)
	var roots []int
	for i := 0; i < n; i++ {
		p := -1
		if i > 0 && rng.IntN(3) > 0 {
			p = rng.IntN(i)
		}
		parents[i] = p
		if p < 0 {
			roots = append(roots, i)
		} else {
			children[p] = append(children[p], i)
		}
	}
	entities := make([]Entity, n)
	for i := range entities {
		entities[i] = NewEntity(
			WithChildren(children[i]),
			WithTransform(common.ComposeTRS(
				[3]float32{rng.Float32() * 4, rng.Float32() * 4, rng.Float32() * 4},
				[4]float32{rng.Float32(), rng.Float32(), rng.Float32(), 1},
				[3]float32{1 + rng.Float32(), 1, 1},
			)),
		)
	}
	return entities, NewRoot(roots), parents
}

func TestWalkVisitsEachEntityOnceWithAncestorProduct(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for trial := 0; trial < 20; trial++ {
		n := 1 + rng.IntN(40)
		entities, root, parents := randomForest(rng, n)

		visits := make([]int, n)
		worlds := make([]mgl32.Mat4, n)
		err := Walk(entities, root, func(i int, e Entity, world mgl32.Mat4) error {
			visits[i]++
			worlds[i] = world
			return nil
		})
		require.NoError(t, err)

		for i := 0; i < n; i++ {
			assert.Equal(t, 1, visits[i], "entity %d", i)

			var chain []int
			for c := i; c >= 0; c = parents[c] {
				chain = append([]int{c}, chain...)
			}
			want := root.Transform()
			for _, c := range chain {
				want = want.Mul4(entities[c].Transform())
			}
			assert.True(t, want.ApproxEqualThreshold(worlds[i], 1e-4), "entity %d", i)
		}
	}
}

func TestWalkDepthFirstOrder(t *testing.T) {
	entities := []Entity{
		NewEntity(WithChildren([]int{2})),
		NewEntity(),
		NewEntity(WithChildren([]int{3})),
		NewEntity(),
	}
	var order []int
	err := Walk(entities, NewRoot([]int{0, 1}), func(i int, _ Entity, _ mgl32.Mat4) error {
		order = append(order, i)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3, 1}, order)
}

func TestWalkRejectsBadGraphs(t *testing.T) {
	noop := func(int, Entity, mgl32.Mat4) error { return nil }
	cases := []struct {
		name     string
		entities []Entity
		roots    []int
	}{
		{"cycle", []Entity{NewEntity(WithChildren([]int{1})), NewEntity(WithChildren([]int{0}))}, []int{0}},
		{"self", []Entity{NewEntity(WithChildren([]int{0}))}, []int{0}},
		{"two parents", []Entity{NewEntity(WithChildren([]int{2})), NewEntity(WithChildren([]int{2})), NewEntity()}, []int{0, 1}},
		{"child out of range", []Entity{NewEntity(WithChildren([]int{5}))}, []int{0}},
		{"root out of range", []Entity{NewEntity()}, []int{-1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Walk(tc.entities, NewRoot(tc.roots), noop)
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrReference))
		})
	}
}

func TestWalkStopsOnVisitError(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	err := Walk([]Entity{NewEntity(), NewEntity()}, NewRoot([]int{0, 1}), func(int, Entity, mgl32.Mat4) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestUniformArrayOffsets(t *testing.T) {
	for _, alignment := range []uint64{1, 64, 100, 256} {
		u := NewUniformArray(17, alignment)
		assert.GreaterOrEqual(t, u.Stride(), uint64(renderer.ModelUniformSize))

		seen := map[uint32]bool{}
		for i := 0; i < u.Len(); i++ {
			off, err := u.Offset(i)
			require.NoError(t, err)
			assert.False(t, seen[off], "offset %d repeated", off)
			seen[off] = true
			assert.Zero(t, uint64(off)%alignment, "offset %d alignment %d", off, alignment)
		}
	}

	u := NewUniformArray(2, 256)
	_, err := u.Offset(2)
	assert.True(t, errors.Is(err, common.ErrReference))
	assert.True(t, errors.Is(u.Set(-1, mgl32.Ident4()), common.ErrReference))
}

func TestUniformArrayUploadAndWrite(t *testing.T) {
	r := renderertest.New(renderertest.WithAlignment(256))
	u := NewUniformArray(3, r.MinUniformBufferOffsetAlignment())
	require.NoError(t, u.Set(1, mgl32.Translate3D(1, 2, 3)))
	require.NoError(t, u.Upload(r))

	p := u.BindGroupProvider()
	require.NotNil(t, p.BindGroup())
	assert.Equal(t, uint64(3*256), p.BufferSize(renderer.BindingUniform))

	data := renderertest.BufferData(p, renderer.BindingUniform)
	assert.Equal(t, common.Mat4Bytes(mgl32.Ident4()), data[:64])
	assert.Equal(t, common.Mat4Bytes(mgl32.Translate3D(1, 2, 3)), data[256:320])

	require.NoError(t, u.Write(r, 2, mgl32.Scale3D(2, 2, 2)))
	data = renderertest.BufferData(p, renderer.BindingUniform)
	assert.Equal(t, common.Mat4Bytes(mgl32.Scale3D(2, 2, 2)), data[512:576])
	record, err := u.Record(2)
	require.NoError(t, err)
	assert.Equal(t, data[512:576], record)

	assert.True(t, errors.Is(u.Write(r, 3, mgl32.Ident4()), common.ErrReference))
	assert.Empty(t, r.WriteErrors)

	u.Release()
	assert.Zero(t, r.Live())
}

func TestUniformArrayEmpty(t *testing.T) {
	r := renderertest.New()
	u := NewUniformArray(0, r.MinUniformBufferOffsetAlignment())
	require.NoError(t, u.Upload(r))
	assert.Equal(t, u.Stride(), u.Size())
	assert.Empty(t, r.WriteErrors)
}

func TestUniformArrayUploadFailure(t *testing.T) {
	r := renderertest.New()
	r.FailAfter(1)
	u := NewUniformArray(2, r.MinUniformBufferOffsetAlignment())
	require.Error(t, u.Upload(r))
	assert.Zero(t, r.Live())
}
