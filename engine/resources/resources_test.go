package resources

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quadDocument builds a one-node, one-mesh document whose primitive has 4 positions,
// 4 normals and 6 indices, with no texcoords and no material.
func quadDocument() *gltf.Document {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}})
	norm := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	idx := modeler.WriteIndices(doc, []uint32{0, 1, 2, 0, 2, 3})

	doc.Meshes = []*gltf.Mesh{{
		Name: "quad",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: gltf.Attribute{gltf.POSITION: pos, gltf.NORMAL: norm},
		}},
	}}
	doc.Nodes = []*gltf.Node{{Name: "quad", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = []uint32{0}
	return doc
}

func encodePNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFromDocumentQuad(t *testing.T) {
	res, err := FromDocument(quadDocument(), "")
	require.NoError(t, err)
	require.NoError(t, res.Validate())

	require.Len(t, res.Meshes, 1)
	require.Len(t, res.Meshes[0].Primitives, 1)
	prim := res.Meshes[0].Primitives[0]

	assert.Len(t, prim.Positions, 4)
	assert.Len(t, prim.Normals, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, prim.Indices)
	assert.Nil(t, prim.MaterialIndex)
	assert.Empty(t, prim.Tangents)

	require.NotNil(t, res.DefaultScene())
	assert.Equal(t, []int{0}, res.DefaultScene().Nodes)
	require.NotNil(t, res.Nodes[0].MeshIndex)
	assert.Equal(t, 0, *res.Nodes[0].MeshIndex)
}

func TestMissingTexCoordsDefaultToZero(t *testing.T) {
	res, err := FromDocument(quadDocument(), "")
	require.NoError(t, err)

	prim := res.Meshes[0].Primitives[0]
	require.Len(t, prim.TexCoords, len(prim.Positions))
	for _, uv := range prim.TexCoords {
		assert.Equal(t, [2]float32{0, 0}, uv)
	}
}

func TestValidateAcceptsAbsentTexCoords(t *testing.T) {
	res, err := FromDocument(quadDocument(), "")
	require.NoError(t, err)
	res.Meshes[0].Primitives[0].TexCoords = nil
	res.Meshes[0].Primitives[0].Tangents = nil

	assert.NoError(t, res.Validate())
}

func TestDecodeImageKeepsStraightAlpha(t *testing.T) {
	img, err := DecodeImage(encodePNG(t, 1, 1, color.NRGBA{R: 200, G: 100, B: 50, A: 128}))
	require.NoError(t, err)
	assert.Equal(t, []byte{200, 100, 50, 128}, img.Pixels)
}

func TestMissingMandatoryAttribute(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *gltf.Primitive)
	}{
		{"position", func(p *gltf.Primitive) { delete(p.Attributes, gltf.POSITION) }},
		{"normal", func(p *gltf.Primitive) { delete(p.Attributes, gltf.NORMAL) }},
		{"indices", func(p *gltf.Primitive) { p.Indices = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := quadDocument()
			tt.mutate(doc.Meshes[0].Primitives[0])

			_, err := FromDocument(doc, "")
			assert.ErrorIs(t, err, common.ErrMissingAttribute)
		})
	}
}

func TestNodeTransforms(t *testing.T) {
	doc := quadDocument()
	doc.Nodes = append(doc.Nodes,
		&gltf.Node{Name: "trs", Translation: [3]float32{1, 2, 3}},
		&gltf.Node{Name: "matrix", Matrix: [16]float32{2, 0, 0, 0, 0, 2, 0, 0, 0, 0, 2, 0, 4, 5, 6, 1}},
	)
	doc.Nodes[0].Children = []uint32{1, 2}

	res, err := FromDocument(doc, "")
	require.NoError(t, err)

	trs := res.Nodes[1].Transform
	assert.Equal(t, float32(1), trs.At(0, 3))
	assert.Equal(t, float32(2), trs.At(1, 3))
	assert.Equal(t, float32(3), trs.At(2, 3))
	assert.Equal(t, float32(1), trs.At(0, 0))

	m := res.Nodes[2].Transform
	assert.Equal(t, float32(2), m.At(0, 0))
	assert.Equal(t, float32(4), m.At(0, 3))
	assert.Equal(t, float32(6), m.At(2, 3))
	assert.Equal(t, []int{1, 2}, res.Nodes[0].Children)
}

func TestDefaultSceneSynthesized(t *testing.T) {
	doc := quadDocument()
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "child"}, &gltf.Node{Name: "other root"})
	doc.Nodes[0].Children = []uint32{1}
	doc.Scene = nil
	doc.Scenes = nil

	res, err := FromDocument(doc, "")
	require.NoError(t, err)
	require.NoError(t, res.Validate())

	scene := res.DefaultScene()
	require.NotNil(t, scene)
	assert.Equal(t, []int{0, 2}, scene.Nodes)
}

func TestDefaultSceneFallsBackToFirst(t *testing.T) {
	doc := quadDocument()
	doc.Scene = nil

	res, err := FromDocument(doc, "")
	require.NoError(t, err)
	require.NotNil(t, res.DefaultSceneIndex)
	assert.Equal(t, 0, *res.DefaultSceneIndex)
}

func TestMaterialsAndSamplers(t *testing.T) {
	doc := quadDocument()
	doc.Images = []*gltf.Image{{
		Name: "red",
		URI:  "data:image/png;base64," + base64.StdEncoding.EncodeToString(encodePNG(t, 2, 1, color.NRGBA{R: 255, A: 255})),
	}}
	doc.Samplers = []*gltf.Sampler{{
		MagFilter: gltf.MagNearest,
		MinFilter: gltf.MinLinearMipMapNearest,
		WrapS:     gltf.WrapClampToEdge,
		WrapT:     gltf.WrapMirroredRepeat,
	}}
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(0), Sampler: gltf.Index(0)}}
	metallic := float32(0.2)
	doc.Materials = []*gltf.Material{{
		Name: "painted",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor:  &[4]float32{0.5, 0.25, 1, 1},
			MetallicFactor:   &metallic,
			BaseColorTexture: &gltf.TextureInfo{Index: 0},
		},
		NormalTexture: &gltf.NormalTexture{Index: gltf.Index(0)},
	}}
	doc.Meshes[0].Primitives[0].Material = gltf.Index(0)

	res, err := FromDocument(doc, "")
	require.NoError(t, err)
	require.NoError(t, res.Validate())

	require.Len(t, res.Materials, 1)
	mat := res.Materials[0]
	assert.Equal(t, "painted", mat.Name)
	assert.Equal(t, [4]float32{0.5, 0.25, 1, 1}, mat.BaseColorFactor)
	assert.InDelta(t, 0.2, mat.MetallicFactor, 1e-6)
	assert.InDelta(t, 1.0, mat.RoughnessFactor, 1e-6)
	require.NotNil(t, mat.BaseColorTexture)
	require.NotNil(t, mat.NormalTexture)
	assert.Nil(t, mat.MetallicRoughnessTexture)

	require.Len(t, res.Textures, 1)
	s := res.Textures[0].Sampler
	assert.Equal(t, FilterNearest, s.MagFilter)
	assert.Equal(t, FilterLinear, s.MinFilter)
	assert.Equal(t, MipmapNearest, s.MipmapFilter)
	assert.Equal(t, WrapClampToEdge, s.WrapS)
	assert.Equal(t, WrapMirroredRepeat, s.WrapT)

	require.Len(t, res.Images, 1)
	img := res.Images[0]
	assert.Equal(t, 2, img.Width)
	assert.Equal(t, 1, img.Height)
	assert.Equal(t, []byte{255, 0, 0, 255, 255, 0, 0, 255}, img.Pixels)
}

func TestBufferViewImageAndIndices(t *testing.T) {
	doc := quadDocument()
	img, err := modeler.WriteImage(doc, "blue", "image/png", bytes.NewReader(encodePNG(t, 1, 1, color.NRGBA{B: 255, A: 255})))
	require.NoError(t, err)
	doc.Samplers = []*gltf.Sampler{{}, {MagFilter: gltf.MagLinear}}
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(img), Sampler: gltf.Index(1)}}
	doc.Materials = []*gltf.Material{{
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			MetallicRoughnessTexture: &gltf.TextureInfo{Index: 0},
		},
	}}
	doc.Meshes[0].Primitives[0].Material = gltf.Index(0)

	res, err := FromDocument(doc, "")
	require.NoError(t, err)
	require.NoError(t, res.Validate())

	require.Len(t, res.Images, 1)
	assert.Equal(t, []byte{0, 0, 255, 255}, res.Images[0].Pixels)
	require.NotNil(t, res.Textures[0].SourceIndex)
	assert.Equal(t, int(img), *res.Textures[0].SourceIndex)
	assert.Equal(t, FilterLinear, res.Textures[0].Sampler.MagFilter)
	require.NotNil(t, res.Materials[0].MetallicRoughnessTexture)
	assert.Equal(t, 0, *res.Materials[0].MetallicRoughnessTexture)
	require.NotNil(t, res.Meshes[0].Primitives[0].MaterialIndex)
	assert.Equal(t, 0, *res.Meshes[0].Primitives[0].MaterialIndex)

	doc.Textures[0].Sampler = gltf.Index(9)
	_, err = FromDocument(doc, "")
	assert.ErrorIs(t, err, common.ErrReference)
}

func TestExternalImageResolvedRelativeToBaseDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tex 1.png"), encodePNG(t, 1, 1, color.NRGBA{G: 255, A: 255}), 0o644))

	doc := quadDocument()
	doc.Images = []*gltf.Image{{URI: "tex%201.png"}}

	res, err := FromDocument(doc, dir)
	require.NoError(t, err)
	require.Len(t, res.Images, 1)
	assert.Equal(t, []byte{0, 255, 0, 255}, res.Images[0].Pixels)
}

func TestMissingExternalImageIsImportError(t *testing.T) {
	doc := quadDocument()
	doc.Images = []*gltf.Image{{URI: "absent.png"}}

	_, err := FromDocument(doc, t.TempDir())
	assert.ErrorIs(t, err, common.ErrImport)
}

func TestUnsupportedImageEncodingIsDecodeError(t *testing.T) {
	_, err := DecodeImage([]byte("definitely not an image"))
	assert.ErrorIs(t, err, common.ErrDecode)

	doc := quadDocument()
	doc.Images = []*gltf.Image{{URI: "data:image/x-unknown;base64," + base64.StdEncoding.EncodeToString([]byte("garbage"))}}
	_, err = FromDocument(doc, "")
	assert.ErrorIs(t, err, common.ErrDecode)
}

func TestValidateReferences(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Resources)
	}{
		{"material", func(r *Resources) { r.Meshes[0].Primitives[0].MaterialIndex = Index(3) }},
		{"mesh", func(r *Resources) { r.Nodes[0].MeshIndex = Index(1) }},
		{"child", func(r *Resources) { r.Nodes[0].Children = []int{7} }},
		{"scene node", func(r *Resources) { r.Scenes[0].Nodes = []int{-1} }},
		{"default scene", func(r *Resources) { r.DefaultSceneIndex = Index(2) }},
		{"index", func(r *Resources) { r.Meshes[0].Primitives[0].Indices[5] = 4 }},
		{"texcoord count", func(r *Resources) {
			r.Meshes[0].Primitives[0].TexCoords = r.Meshes[0].Primitives[0].TexCoords[:2]
		}},
		{"texture", func(r *Resources) {
			r.Materials = []Material{DefaultMaterial()}
			r.Materials[0].BaseColorTexture = Index(0)
		}},
		{"texture source", func(r *Resources) { r.Textures = []Texture{{SourceIndex: Index(0)}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := FromDocument(quadDocument(), "")
			require.NoError(t, err)
			tt.mutate(res)

			assert.ErrorIs(t, res.Validate(), common.ErrReference)
		})
	}
}

func TestLoadFileBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.glb")
	require.NoError(t, gltf.SaveBinary(quadDocument(), path))

	res, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "quad", res.Name)
	require.Len(t, res.Meshes, 1)
	assert.Len(t, res.Meshes[0].Primitives[0].Indices, 6)
}

func TestLoadReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.glb")
	require.NoError(t, gltf.SaveBinary(quadDocument(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	res, err := LoadReader(f, filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, res.Nodes, 1)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.gltf"))
	assert.ErrorIs(t, err, common.ErrImport)

	bad := filepath.Join(t.TempDir(), "bad.gltf")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = LoadFile(bad)
	assert.ErrorIs(t, err, common.ErrDecode)
}
