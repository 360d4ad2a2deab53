package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchScrollRoutesByModifier(t *testing.T) {
	w := &engineWindow{}
	var scrolls [][2]float64
	var zooms []float64
	w.SetScrollCallback(func(dx, dy float64) { scrolls = append(scrolls, [2]float64{dx, dy}) })
	w.SetMagnifyCallback(func(delta float64) { zooms = append(zooms, delta) })

	w.dispatchScroll(1.5, -2, false)
	w.dispatchScroll(0, 0, false)
	w.dispatchScroll(3, 1, true)
	w.dispatchScroll(3, 0, true)

	assert.Equal(t, [][2]float64{{1.5, -2}}, scrolls)
	assert.Equal(t, []float64{1}, zooms)
}

func TestDispatchWithoutCallbacks(t *testing.T) {
	w := &engineWindow{}
	assert.NotPanics(t, func() {
		w.dispatchScroll(1, 1, false)
		w.dispatchScroll(1, 1, true)
		w.dispatchResize(10, 10)
		w.dispatchDrop([]string{"a.glb"})
	})
}

func TestDispatchResizeDropsEmptySize(t *testing.T) {
	w := &engineWindow{width: 800, height: 600}
	calls := 0
	w.SetResizeCallback(func(width, height int) { calls++ })

	w.dispatchResize(0, 0)
	assert.Equal(t, 0, calls)
	assert.Equal(t, 800, w.Width())

	w.dispatchResize(1024, 768)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1024, w.Width())
	assert.Equal(t, 768, w.Height())
}

func TestDispatchDropCopiesPaths(t *testing.T) {
	w := &engineWindow{}
	var got []string
	w.SetDropCallback(func(paths []string) { got = paths })

	in := []string{"/tmp/a.glb", "/tmp/b.gltf"}
	w.dispatchDrop(in)
	in[0] = "changed"
	assert.Equal(t, []string{"/tmp/a.glb", "/tmp/b.gltf"}, got)

	got = nil
	w.dispatchDrop(nil)
	assert.Nil(t, got)
}

func TestSetTitleIsTakenOnce(t *testing.T) {
	w := &engineWindow{title: "oxy-viewer"}
	_, ok := w.takeTitle()
	assert.False(t, ok)

	w.SetTitle("first")
	w.SetTitle("second")
	title, ok := w.takeTitle()
	assert.True(t, ok)
	assert.Equal(t, "second", title)
	assert.Equal(t, "second", w.title)

	_, ok = w.takeTitle()
	assert.False(t, ok)
}

func TestCloseCallbackFiresOnce(t *testing.T) {
	w := &engineWindow{}
	calls := 0
	w.SetCloseCallback(func() { calls++ })
	w.notifyClose()
	w.notifyClose()
	assert.Equal(t, 1, calls)
	assert.False(t, w.IsRunning())
}

func TestFitSizeClampsIntoLimits(t *testing.T) {
	w := &engineWindow{width: 100, height: 5000}
	for _, opt := range []WindowBuilderOption{WithMinSize(320, 240), WithMaxSize(0, 1080)} {
		opt(w)
	}
	require.NoError(t, w.fitSize())
	assert.Equal(t, 320, w.width)
	assert.Equal(t, 1080, w.height)

	w = &engineWindow{}
	WithSize(800, 600)(w)
	require.NoError(t, w.fitSize())
	assert.Equal(t, 800, w.width)
	assert.Equal(t, 600, w.height)
}

func TestFitSizeRejectsBadLimits(t *testing.T) {
	cases := map[string][]WindowBuilderOption{
		"empty size":       {WithSize(0, 600)},
		"negative limit":   {WithSize(800, 600), WithMinSize(-1, 0)},
		"max below min":    {WithSize(800, 600), WithMinSize(640, 480), WithMaxSize(320, 0)},
		"height below min": {WithSize(800, 600), WithMinSize(0, 480), WithMaxSize(0, 240)},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			w := &engineWindow{}
			for _, opt := range opts {
				opt(w)
			}
			assert.Error(t, w.fitSize())
		})
	}
}
