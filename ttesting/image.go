package ttesting

import (
	"image"
	"image/color"
	"testing"
)

// AssertSameImage checks that both images have the same size and the same
// non-premultiplied pixel values. Origins may differ.
func AssertSameImage(t *testing.T, name string, got, want image.Image) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got == nil {
			t.Fatalf("got nil image; want %v", want.Bounds())
		}
		gb, wb := got.Bounds(), want.Bounds()
		if !gb.Size().Eq(wb.Size()) {
			t.Fatalf("got size %v; want %v", gb.Size(), wb.Size())
		}
		bad := 0
		for y := 0; y < wb.Dy(); y++ {
			for x := 0; x < wb.Dx(); x++ {
				g := color.NRGBAModel.Convert(got.At(gb.Min.X+x, gb.Min.Y+y)).(color.NRGBA)
				w := color.NRGBAModel.Convert(want.At(wb.Min.X+x, wb.Min.Y+y)).(color.NRGBA)
				if g != w {
					if bad < 5 {
						t.Errorf("pixel (%d,%d): got %v; want %v", x, y, g, w)
					}
					bad++
				}
			}
		}
		if bad >= 5 {
			t.Errorf("%d pixels differ in total", bad)
		}
	})
}

// AssertTransparent checks that every pixel of img within r has zero alpha.
func AssertTransparent(t *testing.T, name string, img image.Image, r image.Rectangle) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		r = r.Intersect(img.Bounds())
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				if _, _, _, a := img.At(x, y).RGBA(); a != 0 {
					t.Fatalf("pixel (%d,%d): got alpha %d; want 0", x, y, a)
				}
			}
		}
	})
}

// Checkerboard returns a w*h image filled with distinct, partially
// transparent colours so that any misplaced pixel is detected.
func Checkerboard(w, h int, seed uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x*37) + seed,
				G: uint8(y*53) + seed,
				B: uint8((x+y)*11) ^ seed,
				A: uint8(128 + (x+y)%128),
			})
		}
	}
	return img
}
