package atlas

import (
	"github.com/pkg/errors"
)

// Kinds of errors produced while handling an atlas. Errors returned by this
// module wrap one of these; use errors.Is to tell them apart.
var (
	ErrFileNotFound        = errors.New("file not found")
	ErrDirectoryNotFound   = errors.New("directory not found")
	ErrMalformedManifest   = errors.New("malformed manifest")
	ErrImageLoad           = errors.New("image load failure")
	ErrImageSave           = errors.New("image save failure")
	ErrGeometryOutOfBounds = errors.New("geometry out of bounds")
)

// IsFatal reports whether err should abort a whole pack or unpack run.
//
// Missing inputs and unparsable manifests leave nothing to work from. All
// other kinds only affect a single sheet or sprite.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrDirectoryNotFound) ||
		errors.Is(err, ErrMalformedManifest)
}
