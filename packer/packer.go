// Package packer drives whole pack and unpack runs: it reads the manifest,
// checks the directories involved, and hands every sheet to the compositor,
// loading and saving images along the way.
//
// Missing inputs and malformed manifests abort a run and are returned as
// errors. Everything else only costs the affected sheet or sprite; such
// failures are logged and collected in the Report.
package packer

import (
	"context"
	"image"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"badc0de.net/pkg/go-gdxatlas/atlas"
	"badc0de.net/pkg/go-gdxatlas/compositor"
	"badc0de.net/pkg/go-gdxatlas/imageio"
	"badc0de.net/pkg/go-gdxatlas/paths"
)

// Options configures a pack or unpack run.
type Options struct {
	// ManifestPath is the .atlas file to work from.
	ManifestPath string

	// Dir holds the individual sprite images. Pack reads from it; Unpack
	// writes into it, creating it if needed.
	Dir string

	// Parallelism limits how many sheets are worked on at once. Zero or
	// less means GOMAXPROCS.
	Parallelism int

	// Ext is the sprite image extension, ".png" if empty.
	Ext string

	// OutDir is where Pack stores sheet images. Empty means next to the
	// manifest.
	OutDir string

	// Preview, if set, is called by Unpack with every extracted sprite.
	// Calls are never concurrent.
	Preview func(name string, img image.Image)
}

func (o *Options) parallelism() int {
	if o.Parallelism <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return o.Parallelism
}

func (o *Options) ext() (string, error) {
	ext := o.Ext
	if ext == "" {
		ext = paths.DefaultExt
	}
	if !imageio.Supported(ext) {
		return "", errors.Errorf("unsupported sprite image extension %q", ext)
	}
	return ext, nil
}

// load reads and parses the manifest.
func load(manifestPath string) ([]*atlas.Sheet, error) {
	text, err := paths.ReadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	sheets, err := atlas.Parse(text)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %q", manifestPath)
	}
	glog.Infof("%s: %d sheets", manifestPath, len(sheets))
	return sheets, nil
}

// forEachSheet runs fn for every sheet, at most limit at a time. It stops
// launching new work once ctx is done, and returns ctx.Err() in that case.
func forEachSheet(ctx context.Context, sheets []*atlas.Sheet, limit int, fn func(*atlas.Sheet)) error {
	var g errgroup.Group
	g.SetLimit(limit)
	for _, sheet := range sheets {
		if ctx.Err() != nil {
			break
		}
		sheet := sheet
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			fn(sheet)
			return nil
		})
	}
	g.Wait()
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "run interrupted")
	}
	return nil
}

// Pack composes every sheet of the manifest from the sprite images in
// opts.Dir.
func Pack(ctx context.Context, opts Options) (*Report, error) {
	ext, err := opts.ext()
	if err != nil {
		return nil, err
	}
	sheets, err := load(opts.ManifestPath)
	if err != nil {
		return nil, err
	}
	if err := paths.RequireDir(opts.Dir); err != nil {
		return nil, errors.Wrap(err, "sprite directory")
	}
	if opts.OutDir != "" {
		if _, err := paths.EnsureDir(opts.OutDir); err != nil {
			return nil, errors.Wrap(err, "output directory")
		}
	}

	src := compositor.SpriteSourceFunc(func(name string) (image.Image, error) {
		return imageio.Open(paths.SpritePath(opts.Dir, name, ext))
	})

	report := &Report{}
	err = forEachSheet(ctx, sheets, opts.parallelism(), func(sheet *atlas.Sheet) {
		img, errs := compositor.Compose(sheet, src)
		report.skip(errs...)
		if img == nil {
			return
		}

		out := paths.SheetPath(opts.ManifestPath, sheet.Filename)
		if opts.OutDir != "" {
			out = filepath.Join(opts.OutDir, sheet.Filename)
		}
		if err := imageio.Save(img, out); err != nil {
			glog.Errorf("sheet %s: %v", sheet.Filename, err)
			report.skip(errors.Wrapf(err, "sheet %q", sheet.Filename))
			return
		}
		glog.Infof("saved sheet %s", out)
		report.wrote(out)
	})
	return report, err
}

// Unpack extracts every sprite of the manifest into opts.Dir.
func Unpack(ctx context.Context, opts Options) (*Report, error) {
	ext, err := opts.ext()
	if err != nil {
		return nil, err
	}
	sheets, err := load(opts.ManifestPath)
	if err != nil {
		return nil, err
	}
	if _, err := paths.EnsureDir(opts.Dir); err != nil {
		return nil, errors.Wrap(err, "destination directory")
	}

	var previewMu sync.Mutex
	report := &Report{}
	err = forEachSheet(ctx, sheets, opts.parallelism(), func(sheet *atlas.Sheet) {
		for _, err := range sheet.Validate() {
			glog.Warningf("sheet %s: %v", sheet.Filename, err)
		}

		in := paths.SheetPath(opts.ManifestPath, sheet.Filename)
		img, err := imageio.Open(in)
		if err != nil {
			glog.Errorf("skipping sheet %s: %v", sheet.Filename, err)
			report.skip(errors.Wrapf(err, "sheet %q", sheet.Filename))
			return
		}
		glog.Infof("loaded sheet %s", in)

		extracted, errs := compositor.Decompose(sheet, img)
		report.skip(errs...)
		for _, e := range extracted {
			if opts.Preview != nil {
				previewMu.Lock()
				opts.Preview(e.Sprite.Name, e.Image)
				previewMu.Unlock()
			}

			out := paths.SpritePath(opts.Dir, e.Sprite.Name, ext)
			if err := imageio.Save(e.Image, out); err != nil {
				glog.Errorf("sprite %s: %v", e.Sprite.Name, err)
				report.skip(errors.Wrapf(err, "sprite %q", e.Sprite.Name))
				continue
			}
			glog.V(1).Infof("saved sprite %s", out)
			report.wrote(out)
		}
	})
	return report, err
}
