package common

import "errors"

// Error taxonomy shared by the import, build and render stages.
// Call sites wrap these with fmt.Errorf("...: %w", err); test with errors.Is.
var (
	// ErrImport reports an unreadable asset or a missing external buffer/image.
	ErrImport = errors.New("import failed")

	// ErrDecode reports a malformed or unsupported asset, such as an unrecognized image encoding.
	ErrDecode = errors.New("decode failed")

	// ErrMissingAttribute reports a primitive lacking positions, normals or indices.
	ErrMissingAttribute = errors.New("missing mandatory attribute")

	// ErrReference reports an out-of-bounds weak reference, or an entity reached twice during traversal.
	ErrReference = errors.New("invalid reference")

	// ErrResourceAcquisition reports that no compatible GPU adapter, device or surface could be acquired.
	ErrResourceAcquisition = errors.New("gpu resource acquisition failed")
)
