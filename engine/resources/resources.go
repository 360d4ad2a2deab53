// Package resources holds the decoded, backend-agnostic description of a glTF asset.
// Nothing in this package touches the GPU; the renderer-facing builders consume these
// values on the render goroutine.
package resources

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Filter is a texture filtering mode.
type Filter int

const (
	// FilterUndefined selects the default sampler value.
	FilterUndefined Filter = iota
	FilterNearest
	FilterLinear
)

// MipmapFilter is the filter used between mip levels.
type MipmapFilter int

const (
	// MipmapUndefined selects the default sampler value.
	MipmapUndefined MipmapFilter = iota
	MipmapNearest
	MipmapLinear
)

// Wrap is a texture coordinate addressing mode.
type Wrap int

const (
	// WrapUndefined selects the default sampler value.
	WrapUndefined Wrap = iota
	WrapRepeat
	WrapClampToEdge
	WrapMirroredRepeat
)

// Resources is the decoded content of a single glTF asset.
// Every *int field across the graph is a weak reference into one of these slices.
type Resources struct {
	Name              string
	Scenes            []Scene
	Nodes             []Node
	Meshes            []Mesh
	Materials         []Material
	Textures          []Texture
	Buffers           [][]byte
	Images            []Image
	DefaultSceneIndex *int
}

// Scene lists the root nodes of one scene.
type Scene struct {
	Name  string
	Nodes []int
}

// Node is one element of the node forest. Transform is relative to the parent.
type Node struct {
	Name      string
	MeshIndex *int
	Children  []int
	Transform mgl32.Mat4
}

// Mesh is a named group of primitives.
type Mesh struct {
	Name       string
	Primitives []Primitive
}

// Primitive is one drawable set of parallel vertex attributes plus triangle-list indices.
type Primitive struct {
	Positions     [][3]float32
	TexCoords     [][2]float32
	Normals       [][3]float32
	Tangents      [][4]float32
	Indices       []uint32
	MaterialIndex *int
}

// VertexCount returns the number of vertices in the primitive.
func (p *Primitive) VertexCount() int {
	return len(p.Positions)
}

// Material carries the scalar factors and texture references of a metallic-roughness material.
type Material struct {
	Name                     string
	BaseColorFactor          [4]float32
	MetallicFactor           float32
	RoughnessFactor          float32
	BaseColorTexture         *int
	NormalTexture            *int
	MetallicRoughnessTexture *int
}

// DefaultMaterial returns the factors glTF assigns to a material that specifies none.
func DefaultMaterial() Material {
	return Material{
		Name:            "default",
		BaseColorFactor: [4]float32{1, 1, 1, 1},
		MetallicFactor:  1,
		RoughnessFactor: 1,
	}
}

// Texture pairs an image with the sampler used to read it.
type Texture struct {
	Name        string
	SourceIndex *int
	Sampler     Sampler
}

// Sampler describes filtering and wrapping. Zero values mean "use the default".
type Sampler struct {
	MagFilter    Filter
	MinFilter    Filter
	MipmapFilter MipmapFilter
	WrapS        Wrap
	WrapT        Wrap
}

// Image is decoded pixel data, always interleaved RGBA8 of length Width*Height*4.
type Image struct {
	Name   string
	Width  int
	Height int
	Pixels []byte
}

// DefaultScene returns the scene chosen for display, or nil when there is none.
func (r *Resources) DefaultScene() *Scene {
	if r.DefaultSceneIndex == nil {
		return nil
	}
	idx := *r.DefaultSceneIndex
	if idx < 0 || idx >= len(r.Scenes) {
		return nil
	}
	return &r.Scenes[idx]
}

// Index returns a pointer to a copy of i, for building weak references.
func Index(i int) *int {
	return &i
}
