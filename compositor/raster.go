package compositor

// This file contains the pixel operations compose and decompose are built
// from. They only deal with zero-origin NRGBA buffers; anything else is
// converted once, on the way in.

import (
	"image"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	"badc0de.net/pkg/go-gdxatlas/atlas"
)

// maxCanvasBytes bounds the pixel buffer of canvases sized by manifest values.
const maxCanvasBytes = 1 << 30

// canvasRect returns the zero-origin rectangle of a new canvas of the passed
// size, or an atlas.ErrGeometryOutOfBounds error if no such canvas can be
// allocated.
func canvasRect(size image.Point) (image.Rectangle, error) {
	if size.X <= 0 || size.Y <= 0 {
		return image.Rectangle{}, errors.Wrapf(atlas.ErrGeometryOutOfBounds, "empty canvas size %v", size)
	}
	if size.X > maxCanvasBytes/4/size.Y {
		return image.Rectangle{}, errors.Wrapf(atlas.ErrGeometryOutOfBounds, "canvas size %v too large", size)
	}
	return image.Rectangle{Max: size}, nil
}

// ToNRGBA returns img as a zero-origin *image.NRGBA. Images which already are
// one are returned as they are, anything else is copied.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok {
		if b.Min == (image.Point{}) {
			return n
		}
		dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		copyRows(dst, image.Point{}, n, b)
		return dst
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// copyRows copies sr of src into dst at dp. Both rectangles must be within
// bounds.
func copyRows(dst *image.NRGBA, dp image.Point, src *image.NRGBA, sr image.Rectangle) {
	n := 4 * sr.Dx()
	for y := 0; y < sr.Dy(); y++ {
		di := dst.PixOffset(dp.X, dp.Y+y)
		si := src.PixOffset(sr.Min.X, sr.Min.Y+y)
		copy(dst.Pix[di:di+n], src.Pix[si:si+n])
	}
}

// crop returns a copy of region r of src.
func crop(src *image.NRGBA, r image.Rectangle) (*image.NRGBA, error) {
	if r.Empty() {
		return nil, errors.Wrapf(atlas.ErrGeometryOutOfBounds, "empty region %v", r)
	}
	if !r.In(src.Bounds()) {
		return nil, errors.Wrapf(atlas.ErrGeometryOutOfBounds, "region %v outside of image %v", r, src.Bounds())
	}
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	copyRows(dst, image.Point{}, src, r)
	return dst, nil
}

// paste overwrites the pixels of dst at `at` with src, alpha included.
func paste(dst, src *image.NRGBA, at image.Point) error {
	sb := src.Bounds()
	r := image.Rectangle{Min: at, Max: at.Add(sb.Size())}
	if r.Empty() {
		return errors.Wrapf(atlas.ErrGeometryOutOfBounds, "empty region %v", r)
	}
	if !r.In(dst.Bounds()) {
		return errors.Wrapf(atlas.ErrGeometryOutOfBounds, "region %v outside of image %v", r, dst.Bounds())
	}
	copyRows(dst, at, src, sb)
	return nil
}

// rotateCW turns src by 90 degrees clockwise.
func rotateCW(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			si := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			di := dst.PixOffset(h-1-y, x)
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return dst
}

// rotateCCW turns src by 90 degrees counter-clockwise.
func rotateCCW(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			si := src.PixOffset(b.Min.X+x, b.Min.Y+y)
			di := dst.PixOffset(y, w-1-x)
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return dst
}
