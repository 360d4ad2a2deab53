package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewerSource(t *testing.T) {
	src, err := ViewerSource()
	require.NoError(t, err)

	assert.NotContains(t, src, annotationPrefix)
	assert.Contains(t, src, "fn vs_main")
	assert.Contains(t, src, "fn fs_main")
	assert.Contains(t, src, "struct CameraUniform")
	assert.Contains(t, src, "struct ModelUniform")
	assert.Contains(t, src, "struct MaterialFactors")
	assert.Contains(t, src, "struct VertexInput")
	assert.Contains(t, src, "@group(0) @binding(0) var<uniform> camera: CameraUniform;")
	assert.Contains(t, src, "@group(1) @binding(0) var<uniform> model: ModelUniform;")
	assert.Contains(t, src, "@group(2) @binding(0) var<uniform> factors: MaterialFactors;")
	assert.Contains(t, src, "@group(2) @binding(6)")
}

func TestProcessCollectsDeclarations(t *testing.T) {
	pp := NewPreProcessor()
	_, err := pp.Process(ViewerTemplate)
	require.NoError(t, err)

	decls := pp.Declarations()
	require.Len(t, decls, 9)
	assert.Equal(t, AnnotationTypeBindingGroup, decls[0].Type)
	assert.Equal(t, 0, *decls[0].Group)
	assert.Equal(t, AnnotationArgCamera, decls[0].Args[2])

	last := decls[len(decls)-1]
	assert.Equal(t, AnnotationTypeProvider, last.Type)
	assert.Equal(t, []AnnotationArg{AnnotationArgMaterial, AnnotationArgMetallicRoughnessSampler}, last.Args)
	assert.Equal(t, 6, *last.Binding)
}

func TestProcessIncludesOnce(t *testing.T) {
	pp := NewPreProcessor()
	src, err := pp.Process("//@oxy:include camera\n//@oxy:include camera\nfn f() {}")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(src, "struct CameraUniform"))
	assert.Empty(t, pp.Declarations())
}

func TestProcessArrayType(t *testing.T) {
	pp := NewPreProcessor()
	src, err := pp.Process("//@oxy:group 1 0 storage_read models array<model>")
	require.NoError(t, err)
	assert.Equal(t, "@group(1) @binding(0) var<storage, read> models: array<ModelUniform>;", src)
}

func TestProcessErrors(t *testing.T) {
	cases := map[string]string{
		"empty":             "//@oxy:",
		"unknown type":      "//@oxy:frobnicate camera",
		"unknown include":   "//@oxy:include light",
		"include arity":     "//@oxy:include camera model",
		"group arity":       "//@oxy:group 0 0 storage_uniform camera",
		"bad group":         "//@oxy:group x 0 storage_uniform camera camera",
		"negative binding":  "//@oxy:group 0 -1 storage_uniform camera camera",
		"bad address space": "//@oxy:group 0 0 storage_write camera camera",
		"bad struct":        "//@oxy:group 0 0 storage_uniform camera array<light>",
		"bad provider":      "//@oxy:provider 2 1 shadow",
		"bad role":          "//@oxy:provider 2 1 material diffuse_texture",
		"duplicate slot":    "//@oxy:group 0 0 storage_uniform camera camera\n//@oxy:provider 0 0 camera",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewPreProcessor().Process(src)
			assert.Error(t, err)
		})
	}
}

func TestCheckLayout(t *testing.T) {
	pp := NewPreProcessor()
	_, err := pp.Process(ViewerTemplate)
	require.NoError(t, err)
	decls := pp.Declarations()
	require.NoError(t, CheckLayout(decls))

	err = CheckLayout(decls[:len(decls)-1])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "@group(2) @binding(6) is not declared")

	extra := 7
	group := 2
	err = CheckLayout(append(decls, Annotation{Type: AnnotationTypeProvider, Group: &group, Binding: &extra}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no layout entry")
}
