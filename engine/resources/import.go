package resources

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
)

// LoadFile decodes a .gltf or .glb file and converts it into validated Resources.
// External buffers and images are resolved relative to the file's directory.
//
// Parameters:
//   - path: the asset path
//
// Returns:
//   - *Resources: the decoded asset
//   - error: wraps common.ErrImport, common.ErrDecode, common.ErrMissingAttribute or common.ErrReference
func LoadFile(path string) (*Resources, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrImport, path, err)
	}

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, classifyDecodeError(path, err)
	}

	res, err := FromDocument(doc, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	res.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if err := res.Validate(); err != nil {
		return nil, err
	}

	logger.Named("resources").Debug("asset decoded",
		zap.String("path", path),
		zap.Int("nodes", len(res.Nodes)),
		zap.Int("meshes", len(res.Meshes)),
		zap.Int("materials", len(res.Materials)),
		zap.Int("images", len(res.Images)),
	)

	return res, nil
}

// LoadReader decodes a glTF JSON or GLB stream and converts it into validated Resources.
// Relative image URIs are resolved against baseDir.
//
// Parameters:
//   - r: the glTF or GLB byte stream
//   - baseDir: directory used to resolve external images
//
// Returns:
//   - *Resources: the decoded asset
//   - error: wraps common.ErrImport, common.ErrDecode, common.ErrMissingAttribute or common.ErrReference
func LoadReader(r io.Reader, baseDir string) (*Resources, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, classifyDecodeError("stream", err)
	}

	res, err := FromDocument(doc, baseDir)
	if err != nil {
		return nil, err
	}

	if err := res.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}

// FromDocument converts a decoded glTF document into Resources.
// The result is not validated; LoadFile and LoadReader validate before returning.
//
// Parameters:
//   - doc: the decoded document
//   - baseDir: directory used to resolve external images
//
// Returns:
//   - *Resources: the converted asset
//   - error: wraps common.ErrImport, common.ErrDecode, common.ErrMissingAttribute or common.ErrReference
func FromDocument(doc *gltf.Document, baseDir string) (*Resources, error) {
	res := &Resources{}

	for i, b := range doc.Buffers {
		if b == nil {
			return nil, fmt.Errorf("%w: buffer %d is null", common.ErrDecode, i)
		}
		res.Buffers = append(res.Buffers, b.Data)
	}

	images, err := convertImages(doc, baseDir)
	if err != nil {
		return nil, err
	}
	res.Images = images

	textures, err := convertTextures(doc)
	if err != nil {
		return nil, err
	}
	res.Textures = textures

	for _, m := range doc.Materials {
		res.Materials = append(res.Materials, convertMaterial(m))
	}

	for mi, m := range doc.Meshes {
		mesh, err := convertMesh(doc, m)
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", mi, err)
		}
		res.Meshes = append(res.Meshes, mesh)
	}

	for _, n := range doc.Nodes {
		res.Nodes = append(res.Nodes, convertNode(n))
	}

	for _, s := range doc.Scenes {
		res.Scenes = append(res.Scenes, Scene{Name: s.Name, Nodes: toInts(s.Nodes)})
	}

	switch {
	case doc.Scene != nil:
		res.DefaultSceneIndex = toIndex(doc.Scene)
	case len(res.Scenes) > 0:
		res.DefaultSceneIndex = Index(0)
	case len(res.Nodes) > 0:
		res.Scenes = append(res.Scenes, Scene{Name: "default", Nodes: parentlessNodes(res.Nodes)})
		res.DefaultSceneIndex = Index(0)
	}

	return res, nil
}

// classifyDecodeError separates I/O failures from malformed documents.
func classifyDecodeError(source string, err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) || errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s: %v", common.ErrImport, source, err)
	}
	return fmt.Errorf("%w: %s: %v", common.ErrDecode, source, err)
}

func convertTextures(doc *gltf.Document) ([]Texture, error) {
	textures := make([]Texture, 0, len(doc.Textures))
	for i, t := range doc.Textures {
		if t == nil {
			return nil, fmt.Errorf("%w: texture %d is null", common.ErrDecode, i)
		}
		tex := Texture{Name: t.Name}
		tex.SourceIndex = toIndex(t.Source)
		if t.Sampler != nil {
			idx := int(*t.Sampler)
			if idx >= len(doc.Samplers) {
				return nil, fmt.Errorf("%w: texture %d sampler %d out of range", common.ErrReference, i, idx)
			}
			tex.Sampler = convertSampler(doc.Samplers[idx])
		}
		textures = append(textures, tex)
	}
	return textures, nil
}

// convertSampler maps glTF sampler enums onto the neutral ones. A missing
// min filter leaves both the min and mipmap filters undefined.
func convertSampler(s *gltf.Sampler) Sampler {
	var out Sampler
	if s == nil {
		return out
	}

	switch s.MagFilter {
	case gltf.MagNearest:
		out.MagFilter = FilterNearest
	case gltf.MagLinear:
		out.MagFilter = FilterLinear
	}

	switch s.MinFilter {
	case gltf.MinNearest:
		out.MinFilter, out.MipmapFilter = FilterNearest, MipmapNearest
	case gltf.MinLinear:
		out.MinFilter, out.MipmapFilter = FilterLinear, MipmapNearest
	case gltf.MinNearestMipMapNearest:
		out.MinFilter, out.MipmapFilter = FilterNearest, MipmapNearest
	case gltf.MinLinearMipMapNearest:
		out.MinFilter, out.MipmapFilter = FilterLinear, MipmapNearest
	case gltf.MinNearestMipMapLinear:
		out.MinFilter, out.MipmapFilter = FilterNearest, MipmapLinear
	case gltf.MinLinearMipMapLinear:
		out.MinFilter, out.MipmapFilter = FilterLinear, MipmapLinear
	}

	out.WrapS = convertWrap(s.WrapS)
	out.WrapT = convertWrap(s.WrapT)
	return out
}

func convertWrap(w gltf.WrappingMode) Wrap {
	switch w {
	case gltf.WrapClampToEdge:
		return WrapClampToEdge
	case gltf.WrapMirroredRepeat:
		return WrapMirroredRepeat
	default:
		return WrapRepeat
	}
}

func convertMaterial(m *gltf.Material) Material {
	out := DefaultMaterial()
	if m == nil {
		return out
	}
	out.Name = m.Name

	if pbr := m.PBRMetallicRoughness; pbr != nil {
		out.BaseColorFactor = pbr.BaseColorFactorOrDefault()
		out.MetallicFactor = pbr.MetallicFactorOrDefault()
		out.RoughnessFactor = pbr.RoughnessFactorOrDefault()
		if pbr.BaseColorTexture != nil {
			out.BaseColorTexture = Index(int(pbr.BaseColorTexture.Index))
		}
		if pbr.MetallicRoughnessTexture != nil {
			out.MetallicRoughnessTexture = Index(int(pbr.MetallicRoughnessTexture.Index))
		}
	}

	if m.NormalTexture != nil {
		out.NormalTexture = toIndex(m.NormalTexture.Index)
	}

	return out
}

func convertMesh(doc *gltf.Document, m *gltf.Mesh) (Mesh, error) {
	if m == nil {
		return Mesh{}, fmt.Errorf("%w: null mesh", common.ErrDecode)
	}
	out := Mesh{Name: m.Name}
	for pi, p := range m.Primitives {
		prim, err := convertPrimitive(doc, p)
		if err != nil {
			return Mesh{}, fmt.Errorf("primitive %d: %w", pi, err)
		}
		out.Primitives = append(out.Primitives, prim)
	}
	return out, nil
}

// convertPrimitive reads the attribute accessors of one primitive. POSITION, NORMAL
// and indices are mandatory; TEXCOORD_0 defaults to zeros and TANGENT stays empty.
func convertPrimitive(doc *gltf.Document, p *gltf.Primitive) (Primitive, error) {
	var out Primitive
	if p == nil {
		return out, fmt.Errorf("%w: null primitive", common.ErrDecode)
	}
	if p.Mode != gltf.PrimitiveTriangles {
		return out, fmt.Errorf("%w: primitive mode %d is not a triangle list", common.ErrDecode, p.Mode)
	}

	posIdx, ok := p.Attributes[gltf.POSITION]
	if !ok {
		return out, fmt.Errorf("%w: POSITION", common.ErrMissingAttribute)
	}
	normIdx, ok := p.Attributes[gltf.NORMAL]
	if !ok {
		return out, fmt.Errorf("%w: NORMAL", common.ErrMissingAttribute)
	}
	if p.Indices == nil {
		return out, fmt.Errorf("%w: indices", common.ErrMissingAttribute)
	}

	acr, err := accessor(doc, int(posIdx))
	if err != nil {
		return out, err
	}
	if out.Positions, err = modeler.ReadPosition(doc, acr, nil); err != nil {
		return out, fmt.Errorf("%w: reading positions: %v", common.ErrDecode, err)
	}

	if acr, err = accessor(doc, int(normIdx)); err != nil {
		return out, err
	}
	if out.Normals, err = modeler.ReadNormal(doc, acr, nil); err != nil {
		return out, fmt.Errorf("%w: reading normals: %v", common.ErrDecode, err)
	}

	if acr, err = accessor(doc, int(*p.Indices)); err != nil {
		return out, err
	}
	if out.Indices, err = modeler.ReadIndices(doc, acr, nil); err != nil {
		return out, fmt.Errorf("%w: reading indices: %v", common.ErrDecode, err)
	}

	if uvIdx, ok := p.Attributes[gltf.TEXCOORD_0]; ok {
		if acr, err = accessor(doc, int(uvIdx)); err != nil {
			return out, err
		}
		if out.TexCoords, err = modeler.ReadTextureCoord(doc, acr, nil); err != nil {
			return out, fmt.Errorf("%w: reading texcoords: %v", common.ErrDecode, err)
		}
	} else {
		out.TexCoords = make([][2]float32, len(out.Positions))
	}

	if tanIdx, ok := p.Attributes[gltf.TANGENT]; ok {
		if acr, err = accessor(doc, int(tanIdx)); err != nil {
			return out, err
		}
		if out.Tangents, err = modeler.ReadTangent(doc, acr, nil); err != nil {
			return out, fmt.Errorf("%w: reading tangents: %v", common.ErrDecode, err)
		}
	}

	out.MaterialIndex = toIndex(p.Material)

	return out, nil
}

func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) || doc.Accessors[idx] == nil {
		return nil, fmt.Errorf("%w: accessor %d out of range", common.ErrReference, idx)
	}
	return doc.Accessors[idx], nil
}

// convertNode collapses the node's matrix or TRS properties into one local transform.
func convertNode(n *gltf.Node) Node {
	if n == nil {
		return Node{Transform: mgl32.Ident4()}
	}
	out := Node{
		Name:     n.Name,
		Children: toInts(n.Children),
	}
	out.MeshIndex = toIndex(n.Mesh)

	if m := n.MatrixOrDefault(); m != gltf.DefaultMatrix {
		out.Transform = mgl32.Mat4(m)
		return out
	}

	out.Transform = common.ComposeTRS(n.TranslationOrDefault(), n.RotationOrDefault(), n.ScaleOrDefault())
	return out
}

// parentlessNodes returns every node that is no other node's child, in index order.
func parentlessNodes(nodes []Node) []int {
	hasParent := make([]bool, len(nodes))
	for _, n := range nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// toIndex converts an optional glTF index into the int form used by Resources.
func toIndex(i *uint32) *int {
	if i == nil {
		return nil
	}
	return Index(int(*i))
}

func toInts(u []uint32) []int {
	if len(u) == 0 {
		return nil
	}
	out := make([]int, len(u))
	for i, v := range u {
		out[i] = int(v)
	}
	return out
}
