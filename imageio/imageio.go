// Package imageio loads and stores sheet and sprite images.
//
// Decoding goes through image.Decode, so any registered format is accepted.
// Besides the standard library's PNG, JPEG and GIF decoders, importing this
// package registers BMP, TIFF and WebP. Encoding is picked by file
// extension; PNG is used when there is none.
package imageio

import (
	"bufio"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"badc0de.net/pkg/go-gdxatlas/atlas"
)

// Open decodes the image stored at path. Failures wrap atlas.ErrImageLoad.
func Open(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(atlas.ErrImageLoad, "opening %q: %v", path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrapf(atlas.ErrImageLoad, "decoding %q: %v", path, err)
	}
	glog.V(1).Infof("loaded %s image %q (%v)", format, path, img.Bounds().Size())
	return img, nil
}

// Save encodes img into a new file at path, replacing any existing file. The
// encoder is picked by the extension of path. Failures wrap
// atlas.ErrImageSave, and no partial file is left behind.
func Save(img image.Image, path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !Supported(ext) {
		return errors.Wrapf(atlas.ErrImageSave, "saving %q: unsupported extension %q", path, ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(atlas.ErrImageSave, "creating %q: %v", path, err)
	}
	w := bufio.NewWriter(f)
	if err := Encode(w, img, ext); err != nil {
		f.Close()
		os.Remove(path)
		return errors.Wrapf(atlas.ErrImageSave, "encoding %q: %v", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(path)
		return errors.Wrapf(atlas.ErrImageSave, "writing %q: %v", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return errors.Wrapf(atlas.ErrImageSave, "closing %q: %v", path, err)
	}
	return nil
}

// Supported reports whether Encode knows the passed extension (with the
// leading dot, any case).
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case "", ".png", ".bmp", ".tif", ".tiff", ".jpg", ".jpeg", ".gif":
		return true
	}
	return false
}

// Encode writes img to w in the format belonging to ext.
//
// JPEG drops the alpha channel, and GIF reduces the image to a 256 colour
// palette; neither survives a pack and unpack round trip unchanged.
func Encode(w io.Writer, img image.Image, ext string) error {
	if img.Bounds().Empty() {
		return errors.Errorf("image is empty (%v)", img.Bounds())
	}
	switch strings.ToLower(ext) {
	case "", ".png":
		return png.Encode(w, img)
	case ".bmp":
		return bmp.Encode(w, img)
	case ".tif", ".tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	case ".gif":
		return gif.Encode(w, img, nil)
	}
	return errors.Errorf("unsupported image extension %q", ext)
}

// ContentType returns the MIME type matching ext.
func ContentType(ext string) string {
	switch strings.ToLower(ext) {
	case ".bmp":
		return "image/bmp"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	}
	return "image/png"
}
