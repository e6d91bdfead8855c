// Package paths resolves where manifests, sheets and sprite images live, and
// checks the directories a pack or unpack run works with.
//
// Sheet images are looked up next to the manifest that names them. Sprite
// images are flat files in a single directory, named after the sprite.
package paths

import (
	"io"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-gdxatlas/atlas"
)

// DefaultExt is the sprite image extension used when none is requested.
const DefaultExt = ".png"

// Stdin is the manifest path which reads from standard input.
const Stdin = "-"

// ReadManifest returns the text of the manifest at path. Failures wrap
// atlas.ErrFileNotFound.
func ReadManifest(path string) (string, error) {
	if path == Stdin {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", errors.Wrapf(atlas.ErrFileNotFound, "reading manifest from stdin: %v", err)
		}
		return string(b), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(atlas.ErrFileNotFound, "reading manifest %q: %v", path, err)
	}
	glog.Infof("manifest %s loaded", path)
	return string(b), nil
}

// SheetPath returns where the sheet image filename belongs to for the
// manifest stored at manifestPath.
func SheetPath(manifestPath, filename string) string {
	if manifestPath == Stdin {
		return filepath.Clean(filename)
	}
	return filepath.Join(filepath.Dir(manifestPath), filename)
}

// SpritePath returns the image path of the named sprite inside dir. An empty
// ext means DefaultExt.
func SpritePath(dir, name, ext string) string {
	if ext == "" {
		ext = DefaultExt
	}
	return filepath.Join(dir, name+ext)
}

// RequireDir checks that dir exists and is a directory. Failures wrap
// atlas.ErrDirectoryNotFound.
func RequireDir(dir string) error {
	fi, err := os.Stat(dir)
	if err != nil {
		return errors.Wrapf(atlas.ErrDirectoryNotFound, "%q: %v", dir, err)
	}
	if !fi.IsDir() {
		return errors.Wrapf(atlas.ErrDirectoryNotFound, "%q is not a directory", dir)
	}
	return nil
}

// EnsureDir creates dir and any missing parents unless it already exists.
// The returned bool tells whether anything was created. Failures wrap
// atlas.ErrDirectoryNotFound.
func EnsureDir(dir string) (bool, error) {
	if err := RequireDir(dir); err == nil {
		glog.Infof("directory %s already exists", dir)
		return false, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, errors.Wrapf(atlas.ErrDirectoryNotFound, "creating %q: %v", dir, err)
	}
	glog.Infof("created directory %s", dir)
	return true, nil
}
