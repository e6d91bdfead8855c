// Package compositor moves sprites between a sheet image and individual
// sprite images, following the placement recorded in an atlas manifest.
//
// Compose builds a sheet out of individual sprite images (packing), and
// Decompose cuts a sheet back into sprite images (unpacking). Both undo each
// other: trimmed borders are cropped away when packing and restored as
// transparent pixels when unpacking, and sprites stored rotated are turned 90
// degrees clockwise when packing and 90 degrees counter-clockwise when
// unpacking.
//
// All buffers produced here are *image.NRGBA with a zero origin. Copies
// between such buffers are exact, which makes pack and unpack round trips
// pixel-identical, including partially transparent pixels.
//
// Problems with a single sprite (missing source image, region outside of a
// buffer) never abort the whole sheet. They are logged, collected and
// returned next to the best-effort result.
package compositor

import (
	"image"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/go-gdxatlas/atlas"
)

// SpriteSource supplies full, untrimmed and unrotated sprite images by name.
type SpriteSource interface {
	Sprite(name string) (image.Image, error)
}

// SpriteSourceFunc adapts a function into a SpriteSource.
type SpriteSourceFunc func(name string) (image.Image, error)

func (f SpriteSourceFunc) Sprite(name string) (image.Image, error) {
	return f(name)
}

// Compose paints every sprite of sheet into a new, fully transparent canvas
// of the sheet's size.
//
// Sprites are handled in declaration order. A sprite that cannot be loaded or
// placed is skipped, leaving its region transparent; the reason is returned
// in the error slice. The image is nil only if the sheet size itself is
// unusable.
func Compose(sheet *atlas.Sheet, src SpriteSource) (*image.NRGBA, []error) {
	r, err := canvasRect(sheet.Size)
	if err != nil {
		err = errors.Wrapf(err, "%s: sheet", sheet.Filename)
		glog.Errorf("skipping sheet: %v", err)
		return nil, []error{err}
	}
	img := image.NewNRGBA(r)

	var errs []error
	for _, spr := range sheet.Sprites {
		if err := composeSprite(img, spr, src); err != nil {
			glog.Errorf("%s: skipping sprite %q: %v", sheet.Filename, spr.Name, err)
			errs = append(errs, err)
			continue
		}
		glog.V(2).Infof("%s: placed sprite %q at %v", sheet.Filename, spr.Name, spr.PackedRect())
	}
	return img, errs
}

func composeSprite(dst *image.NRGBA, spr *atlas.Sprite, src SpriteSource) error {
	loaded, err := src.Sprite(spr.Name)
	if err != nil {
		if errors.Is(err, atlas.ErrImageLoad) {
			return err
		}
		return errors.Wrapf(atlas.ErrImageLoad, "sprite %q: %v", spr.Name, err)
	}
	if loaded == nil {
		return errors.Wrapf(atlas.ErrImageLoad, "sprite %q: no image", spr.Name)
	}

	full := ToNRGBA(loaded)
	if spr.Rotated {
		full = rotateCW(full)
	}

	trimmed, err := crop(full, spr.TrimRect())
	if err != nil {
		return errors.Wrapf(err, "sprite %q: cropping source", spr.Name)
	}
	if err := paste(dst, trimmed, spr.Position); err != nil {
		return errors.Wrapf(err, "sprite %q: placing on sheet", spr.Name)
	}
	return nil
}

// Extracted is a single sprite cut out of a sheet.
type Extracted struct {
	Sprite *atlas.Sprite
	Image  *image.NRGBA
}

// Decompose cuts every sprite of sheet out of img and restores its original
// canvas and orientation.
//
// Results are in declaration order. Sprites which cannot be extracted are
// skipped and the reasons returned in the error slice.
func Decompose(sheet *atlas.Sheet, img image.Image) ([]Extracted, []error) {
	src := ToNRGBA(img)
	if !src.Bounds().Size().Eq(sheet.Size) {
		glog.Warningf("%s: image is %v, manifest says %v", sheet.Filename, src.Bounds().Size(), sheet.Size)
	}

	var (
		out  = make([]Extracted, 0, len(sheet.Sprites))
		errs []error
	)
	for _, spr := range sheet.Sprites {
		sprImg, err := decomposeSprite(src, spr)
		if err != nil {
			glog.Errorf("%s: skipping sprite %q: %v", sheet.Filename, spr.Name, err)
			errs = append(errs, err)
			continue
		}
		out = append(out, Extracted{Sprite: spr, Image: sprImg})
	}
	return out, errs
}

// DecomposeOne extracts a single sprite from a sheet image. Callers
// extracting many sprites from the same sheet should pass the result of
// ToNRGBA, which is used without copying.
func DecomposeOne(sheetImg image.Image, spr *atlas.Sprite) (*image.NRGBA, error) {
	return decomposeSprite(ToNRGBA(sheetImg), spr)
}

func decomposeSprite(src *image.NRGBA, spr *atlas.Sprite) (*image.NRGBA, error) {
	r, err := canvasRect(spr.Orig)
	if err != nil {
		return nil, errors.Wrapf(err, "sprite %q: original size", spr.Name)
	}
	canvas := image.NewNRGBA(r)

	stored, err := crop(src, spr.PackedRect())
	if err != nil {
		return nil, errors.Wrapf(err, "sprite %q: cropping sheet", spr.Name)
	}
	if err := paste(canvas, stored, spr.Offset); err != nil {
		return nil, errors.Wrapf(err, "sprite %q: restoring trim", spr.Name)
	}

	if spr.Rotated {
		canvas = rotateCCW(canvas)
	}
	return canvas, nil
}

// ByName indexes extracted sprites by name. Later sprites win if names
// repeat.
func ByName(ex []Extracted) map[string]*image.NRGBA {
	m := make(map[string]*image.NRGBA, len(ex))
	for _, e := range ex {
		m[e.Sprite.Name] = e.Image
	}
	return m
}
