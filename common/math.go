package common

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Mat4Size is the size in bytes of a column-major 4x4 float32 matrix (mat4x4<f32>).
const Mat4Size = 64

// CoordinateCorrection is the fixed local transform of the synthesized root entity.
// It mirrors the X axis so right-handed glTF content renders correctly under the
// left-handed view and projection produced by LookAtLH and PerspectiveLH.
var CoordinateCorrection = mgl32.Diag4(mgl32.Vec4{-1, 1, 1, 1})

// AlignUp rounds size up to the next multiple of alignment.
// An alignment of zero leaves size unchanged.
//
// Parameters:
//   - size: the value to round up
//   - alignment: the required alignment in bytes
//
// Returns:
//   - uint64: the smallest multiple of alignment that is >= size
func AlignUp(size, alignment uint64) uint64 {
	if alignment == 0 {
		return size
	}
	return (size + alignment - 1) / alignment * alignment
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// PutMat4 writes m into buf in little-endian column-major order.
// buf must hold at least Mat4Size bytes.
//
// Parameters:
//   - buf: destination byte slice
//   - m: the matrix to serialize
func PutMat4(buf []byte, m mgl32.Mat4) {
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(m[i]))
	}
}

// Mat4Bytes serializes m into a new Mat4Size byte slice.
//
// Parameters:
//   - m: the matrix to serialize
//
// Returns:
//   - []byte: the little-endian column-major bytes of m
func Mat4Bytes(m mgl32.Mat4) []byte {
	buf := make([]byte, Mat4Size)
	PutMat4(buf, m)
	return buf
}

// LookAtLH creates a left-handed view matrix looking from eye towards target.
//
// Parameters:
//   - eye: camera position in world space
//   - target: the point the camera looks at
//   - up: the up direction
//
// Returns:
//   - mgl32.Mat4: the view matrix
func LookAtLH(eye, target, up mgl32.Vec3) mgl32.Mat4 {
	f := target.Sub(eye).Normalize()
	s := up.Cross(f).Normalize()
	u := f.Cross(s)

	return mgl32.Mat4{
		s[0], u[0], f[0], 0,
		s[1], u[1], f[1], 0,
		s[2], u[2], f[2], 0,
		-s.Dot(eye), -u.Dot(eye), -f.Dot(eye), 1,
	}
}

// PerspectiveLH creates a left-handed perspective projection mapping depth to the
// WebGPU clip range [0, 1].
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func PerspectiveLH(fovY, aspect, near, far float32) mgl32.Mat4 {
	h := 1.0 / math32.Tan(fovY*0.5)
	w := h / aspect
	r := far / (far - near)

	return mgl32.Mat4{
		w, 0, 0, 0,
		0, h, 0, 0,
		0, 0, r, 1,
		0, 0, -r * near, 0,
	}
}

// ComposeTRS builds a local transform from glTF translation, rotation (x, y, z, w) and scale.
// The result is T * R * S.
//
// Parameters:
//   - t: translation
//   - r: rotation quaternion in (x, y, z, w) order
//   - s: scale
//
// Returns:
//   - mgl32.Mat4: the composed matrix
func ComposeTRS(t [3]float32, r [4]float32, s [3]float32) mgl32.Mat4 {
	q := mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}.Normalize()
	return mgl32.Translate3D(t[0], t[1], t[2]).
		Mul4(q.Mat4()).
		Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}
