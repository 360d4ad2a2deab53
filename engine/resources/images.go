package resources

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	// Registered decoders for the encodings glTF assets carry in practice.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Carmen-Shannon/oxy-viewer/common"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func convertImages(doc *gltf.Document, baseDir string) ([]Image, error) {
	images := make([]Image, 0, len(doc.Images))
	for i, img := range doc.Images {
		if img == nil {
			return nil, fmt.Errorf("%w: image %d is null", common.ErrDecode, i)
		}
		raw, err := imageBytes(doc, img, baseDir)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		decoded, err := DecodeImage(raw)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		decoded.Name = img.Name
		images = append(images, decoded)
	}
	return images, nil
}

// imageBytes resolves the encoded bytes of an image from a buffer view, a data URI
// or an external file relative to baseDir.
func imageBytes(doc *gltf.Document, img *gltf.Image, baseDir string) ([]byte, error) {
	if img.BufferView != nil {
		idx := int(*img.BufferView)
		if idx >= len(doc.BufferViews) || doc.BufferViews[idx] == nil {
			return nil, fmt.Errorf("%w: bufferView %d out of range", common.ErrReference, idx)
		}
		raw, err := modeler.ReadBufferView(doc, doc.BufferViews[idx])
		if err != nil {
			return nil, fmt.Errorf("%w: reading bufferView %d: %v", common.ErrDecode, idx, err)
		}
		return raw, nil
	}

	if img.IsEmbeddedResource() {
		raw, err := img.MarshalData()
		if err != nil {
			return nil, fmt.Errorf("%w: data uri: %v", common.ErrDecode, err)
		}
		return raw, nil
	}

	// MarshalData only understands PNG and JPEG data URIs.
	if rest, ok := strings.CutPrefix(img.URI, "data:"); ok {
		header, payload, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(header, ";base64") {
			return nil, fmt.Errorf("%w: data uri is not base64", common.ErrDecode)
		}
		raw, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: data uri: %v", common.ErrDecode, err)
		}
		return raw, nil
	}

	if img.URI == "" {
		return nil, fmt.Errorf("%w: image has neither uri nor bufferView", common.ErrDecode)
	}

	uri, err := url.PathUnescape(img.URI)
	if err != nil {
		uri = img.URI
	}
	path := filepath.Join(baseDir, filepath.FromSlash(uri))
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrImport, err)
	}
	return raw, nil
}

// DecodeImage decodes an encoded image and normalises it to interleaved, non-premultiplied RGBA8.
//
// Parameters:
//   - data: the encoded image bytes (PNG, JPEG, BMP, TIFF or WebP)
//
// Returns:
//   - Image: the decoded pixels without a name
//   - error: wraps common.ErrDecode when the encoding is not recognised
func DecodeImage(data []byte) (Image, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", common.ErrDecode, err)
	}

	bounds := src.Bounds()
	nrgba, ok := src.(*image.NRGBA)
	if !ok || nrgba.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, draw.Src)
	}

	if len(nrgba.Pix) != bounds.Dx()*bounds.Dy()*4 {
		return Image{}, fmt.Errorf("%w: %s image produced %d bytes for %dx%d", common.ErrDecode, format, len(nrgba.Pix), bounds.Dx(), bounds.Dy())
	}

	return Image{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Pixels: nrgba.Pix,
	}, nil
}
