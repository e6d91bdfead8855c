package compositor

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-gdxatlas/atlas"
	"badc0de.net/pkg/go-gdxatlas/ttesting"
)

// fixture is a sheet along with the original sprite images it was built
// from.
type fixture struct {
	sheet     *atlas.Sheet
	originals map[string]*image.NRGBA
}

// trimmedCanvas returns a w*h transparent canvas with opaque-ish content in
// r only.
func trimmedCanvas(w, h int, r image.Rectangle, seed uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	content := ttesting.Checkerboard(r.Dx(), r.Dy(), seed)
	copyRows(img, r.Min, content, content.Bounds())
	return img
}

func newFixture() *fixture {
	f := &fixture{
		sheet: &atlas.Sheet{
			Filename: "sheet.png",
			Size:     image.Pt(16, 16),
		},
		originals: map[string]*image.NRGBA{},
	}

	// Neither trimmed nor rotated.
	f.originals["plain"] = ttesting.Checkerboard(6, 4, 1)
	f.sheet.Sprites = append(f.sheet.Sprites, &atlas.Sprite{
		Name: "plain", Position: image.Pt(0, 0), Size: image.Pt(6, 4), Orig: image.Pt(6, 4), Index: -1,
	})

	// Transparent border trimmed away.
	f.originals["trimmed"] = trimmedCanvas(8, 8, image.Rect(2, 1, 6, 6), 2)
	f.sheet.Sprites = append(f.sheet.Sprites, &atlas.Sprite{
		Name: "trimmed", Position: image.Pt(6, 0), Size: image.Pt(4, 5), Orig: image.Pt(8, 8), Offset: image.Pt(2, 1), Index: -1,
	})

	// Stored rotated; 3x5 originally, 5x3 in the sheet.
	f.originals["turned"] = ttesting.Checkerboard(3, 5, 3)
	f.sheet.Sprites = append(f.sheet.Sprites, &atlas.Sprite{
		Name: "turned", Rotated: true, Position: image.Pt(0, 8), Size: image.Pt(5, 3), Orig: image.Pt(5, 3), Index: -1,
	})

	// Rotated and trimmed. The stored orientation is 4x6 with content at
	// (1,1)-(3,4).
	stored := trimmedCanvas(4, 6, image.Rect(1, 1, 3, 4), 4)
	f.originals["turned_trimmed"] = rotateCCW(stored)
	f.sheet.Sprites = append(f.sheet.Sprites, &atlas.Sprite{
		Name: "turned_trimmed", Rotated: true, Position: image.Pt(10, 8), Size: image.Pt(2, 3), Orig: image.Pt(4, 6), Offset: image.Pt(1, 1), Index: 0,
	})

	return f
}

func (f *fixture) source(skip ...string) SpriteSource {
	return SpriteSourceFunc(func(name string) (image.Image, error) {
		for _, s := range skip {
			if s == name {
				return nil, errors.Errorf("no such sprite %q", name)
			}
		}
		img, ok := f.originals[name]
		if !ok {
			return nil, errors.Errorf("no such sprite %q", name)
		}
		return img, nil
	})
}

func TestRoundTrip(t *testing.T) {
	f := newFixture()
	if errs := f.sheet.Validate(); len(errs) != 0 {
		t.Fatalf("fixture does not validate: %v", errs)
	}

	sheetImg, errs := Compose(f.sheet, f.source())
	if len(errs) != 0 {
		t.Fatalf("unexpected compose errors: %v", errs)
	}
	ttesting.AssertEqualPoint(t, "sheet size", sheetImg.Bounds().Size(), image.Pt(16, 16))
	ttesting.AssertTransparent(t, "unused corner stays transparent", sheetImg, image.Rect(12, 12, 16, 16))

	extracted, errs := Decompose(f.sheet, sheetImg)
	if len(errs) != 0 {
		t.Fatalf("unexpected decompose errors: %v", errs)
	}
	if len(extracted) != len(f.sheet.Sprites) {
		t.Fatalf("got %d sprites; want %d", len(extracted), len(f.sheet.Sprites))
	}
	for i, e := range extracted {
		if e.Sprite != f.sheet.Sprites[i] {
			t.Errorf("sprite %d: got %q; want declaration order", i, e.Sprite.Name)
		}
		ttesting.AssertSameImage(t, e.Sprite.Name, e.Image, f.originals[e.Sprite.Name])
	}

	byName := ByName(extracted)
	ttesting.AssertEqualInt(t, "by name", len(byName), 4)
}

func TestComposeSkipsMissingSprite(t *testing.T) {
	f := newFixture()

	sheetImg, errs := Compose(f.sheet, f.source("trimmed"))
	if sheetImg == nil {
		t.Fatalf("sheet was not produced")
	}
	if len(errs) != 1 {
		t.Fatalf("got %d errors (%v); want 1", len(errs), errs)
	}
	if !errors.Is(errs[0], atlas.ErrImageLoad) {
		t.Errorf("got %v; want error wrapping ErrImageLoad", errs[0])
	}

	ttesting.AssertTransparent(t, "missing sprite region", sheetImg, image.Rect(6, 0, 10, 5))

	plain, err := crop(sheetImg, image.Rect(0, 0, 6, 4))
	if err != nil {
		t.Fatalf("crop: %v", err)
	}
	ttesting.AssertSameImage(t, "other sprites placed", plain, f.originals["plain"])

	extracted, errs := Decompose(f.sheet, sheetImg)
	if len(errs) != 0 {
		t.Fatalf("unexpected decompose errors: %v", errs)
	}
	ttesting.AssertSameImage(t, "turned sprite survives", ByName(extracted)["turned"], f.originals["turned"])
}

func TestComposeSourceTooSmall(t *testing.T) {
	sheet := &atlas.Sheet{
		Filename: "a.png",
		Size:     image.Pt(8, 8),
		Sprites: []*atlas.Sprite{
			{Name: "big", Size: image.Pt(4, 4), Orig: image.Pt(4, 4), Offset: image.Pt(2, 2), Index: -1},
		},
	}
	src := SpriteSourceFunc(func(string) (image.Image, error) {
		return ttesting.Checkerboard(4, 4, 0), nil
	})
	_, errs := Compose(sheet, src)
	if len(errs) != 1 || !errors.Is(errs[0], atlas.ErrGeometryOutOfBounds) {
		t.Fatalf("got %v; want one ErrGeometryOutOfBounds", errs)
	}
}

func TestComposeOverwrites(t *testing.T) {
	sheet := &atlas.Sheet{
		Filename: "a.png",
		Size:     image.Pt(2, 1),
		Sprites: []*atlas.Sprite{
			{Name: "under", Size: image.Pt(2, 1), Orig: image.Pt(2, 1), Index: -1},
			{Name: "over", Size: image.Pt(1, 1), Orig: image.Pt(1, 1), Index: -1},
		},
	}
	under := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	under.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	under.SetNRGBA(1, 0, color.NRGBA{255, 0, 0, 255})
	over := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	over.SetNRGBA(0, 0, color.NRGBA{0, 0, 255, 10})

	img, errs := Compose(sheet, SpriteSourceFunc(func(name string) (image.Image, error) {
		if name == "under" {
			return under, nil
		}
		return over, nil
	}))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if got, want := img.NRGBAAt(0, 0), (color.NRGBA{0, 0, 255, 10}); got != want {
		t.Errorf("got %v; want %v (no blending)", got, want)
	}
	if got, want := img.NRGBAAt(1, 0), (color.NRGBA{255, 0, 0, 255}); got != want {
		t.Errorf("got %v; want %v", got, want)
	}
}

func TestComposeBadSheetSize(t *testing.T) {
	tests := map[string]image.Point{
		"negative": image.Pt(-1, 4),
		"empty":    image.Pt(0, 0),
		"huge":     image.Pt(math.MaxInt32, math.MaxInt32),
	}
	for name, size := range tests {
		t.Run(name, func(t *testing.T) {
			img, errs := Compose(&atlas.Sheet{Filename: "a.png", Size: size}, SpriteSourceFunc(nil))
			if img != nil || len(errs) != 1 {
				t.Fatalf("got %v, %v; want nil image and one error", img, errs)
			}
			if !errors.Is(errs[0], atlas.ErrGeometryOutOfBounds) {
				t.Errorf("got %v; want error wrapping ErrGeometryOutOfBounds", errs[0])
			}
		})
	}
}

func TestDecomposeHugeOrig(t *testing.T) {
	const manifest = "a.png\nsize: 8,8\n" +
		"huge\n  rotate: false\n  xy: 0, 0\n  size: 4, 4\n  orig: 2147483647, 2147483647\n  offset: 0, 0\n  index: -1\n" +
		"fine\n  rotate: false\n  xy: 4, 4\n  size: 4, 4\n  orig: 4, 4\n  offset: 0, 0\n  index: -1\n"
	sheets, err := atlas.Parse(manifest)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sheetImg := ttesting.Checkerboard(8, 8, 6)

	extracted, errs := Decompose(sheets[0], sheetImg)
	if len(errs) != 1 || !errors.Is(errs[0], atlas.ErrGeometryOutOfBounds) {
		t.Fatalf("got %v; want one ErrGeometryOutOfBounds", errs)
	}
	if atlas.IsFatal(errs[0]) {
		t.Errorf("oversized sprite should not be fatal")
	}
	if len(extracted) != 1 || extracted[0].Sprite.Name != "fine" {
		t.Fatalf("got %v; want only the fitting sprite", extracted)
	}
}

func TestDecomposeSkipsOutOfBounds(t *testing.T) {
	sheet := &atlas.Sheet{
		Filename: "a.png",
		Size:     image.Pt(8, 8),
		Sprites: []*atlas.Sprite{
			{Name: "outside", Position: image.Pt(6, 6), Size: image.Pt(4, 4), Orig: image.Pt(4, 4), Index: -1},
			{Name: "empty", Index: -1},
			{Name: "overtrimmed", Size: image.Pt(4, 4), Orig: image.Pt(4, 4), Offset: image.Pt(1, 0), Index: -1},
			{Name: "fine", Position: image.Pt(4, 4), Size: image.Pt(4, 4), Orig: image.Pt(4, 4), Index: -1},
		},
	}
	sheetImg := ttesting.Checkerboard(8, 8, 9)

	extracted, errs := Decompose(sheet, sheetImg)
	if len(errs) != 3 {
		t.Fatalf("got %d errors (%v); want 3", len(errs), errs)
	}
	for _, err := range errs {
		if !errors.Is(err, atlas.ErrGeometryOutOfBounds) {
			t.Errorf("got %v; want error wrapping ErrGeometryOutOfBounds", err)
		}
	}
	if len(extracted) != 1 || extracted[0].Sprite.Name != "fine" {
		t.Fatalf("got %v; want only the fitting sprite", extracted)
	}
	want, _ := crop(sheetImg, image.Rect(4, 4, 8, 8))
	ttesting.AssertSameImage(t, "fine", extracted[0].Image, want)
}

func TestDecomposeOne(t *testing.T) {
	f := newFixture()
	sheetImg, _ := Compose(f.sheet, f.source())
	spr, _ := f.sheet.Sprite("turned_trimmed")

	img, err := DecomposeOne(sheetImg, spr)
	if err != nil {
		t.Fatalf("DecomposeOne: %v", err)
	}
	ttesting.AssertSameImage(t, "turned_trimmed", img, f.originals["turned_trimmed"])
}
