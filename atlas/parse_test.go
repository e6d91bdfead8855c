package atlas

import (
	"image"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"badc0de.net/pkg/go-gdxatlas/ttesting"
)

const heroManifest = "foo.png\nsize: 64,64\nhero\n  rotate: false\n  xy: 0, 0\n  size: 32, 32\n  orig: 32, 32\n  offset: 0, 0\n  index: -1\n"

func TestClassify(t *testing.T) {
	tests := []struct {
		text       string
		kind       lineKind
		key, value string
	}{
		{"size: 64,64", globalAttribute, "size", "64,64"},
		{"filter: Nearest,Nearest", globalAttribute, "filter", "Nearest,Nearest"},
		{"hero", spriteStart, "", ""},
		{"hero_walk-2", spriteStart, "", ""},
		{"  xy: 1, 2", spriteAttribute, "xy", "1, 2"},
		{"    index: -1", spriteAttribute, "index", "-1"},
		{"foo.png", unrecognized, "", ""},
		{"Size: 1,2", unrecognized, "", ""},
		{"\tsize: 1, 2", unrecognized, "", ""},
		{"  ", unrecognized, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			l := classify(1, tt.text)
			if l.kind != tt.kind {
				t.Fatalf("got %v; want %v", l.kind, tt.kind)
			}
			if l.key != tt.key || l.value != tt.value {
				t.Errorf("got %q=%q; want %q=%q", l.key, l.value, tt.key, tt.value)
			}
		})
	}
}

func TestParseSingleSprite(t *testing.T) {
	sheets, err := Parse(heroManifest)
	if err != nil {
		t.Fatalf("failed to parse manifest: %v", err)
	}
	if len(sheets) != 1 {
		t.Fatalf("got %d sheets; want 1", len(sheets))
	}
	sh := sheets[0]
	ttesting.AssertEqualString(t, "filename", sh.Filename, "foo.png")
	ttesting.AssertEqualPoint(t, "sheet size", sh.Size, image.Pt(64, 64))
	if len(sh.Sprites) != 1 {
		t.Fatalf("got %d sprites; want 1", len(sh.Sprites))
	}
	want := &Sprite{
		Name:     "hero",
		Position: image.Pt(0, 0),
		Size:     image.Pt(32, 32),
		Orig:     image.Pt(32, 32),
		Offset:   image.Pt(0, 0),
		Index:    -1,
	}
	if !reflect.DeepEqual(sh.Sprites[0], want) {
		t.Errorf("got %+v; want %+v", sh.Sprites[0], want)
	}
}

func TestParseTwoPages(t *testing.T) {
	f, err := os.Open("testdata/two_pages.atlas")
	if err != nil {
		t.Fatalf("failed to open file: %s", err)
	}
	defer f.Close()

	sheets, err := ParseReader(f)
	if err != nil {
		t.Fatalf("failed to parse manifest: %v", err)
	}
	if len(sheets) != 2 {
		t.Fatalf("got %d sheets; want 2", len(sheets))
	}

	ttesting.AssertEqualString(t, "first filename", sheets[0].Filename, "page1.png")
	ttesting.AssertEqualString(t, "second filename", sheets[1].Filename, "page2.png")
	ttesting.AssertEqualPoint(t, "first size", sheets[0].Size, image.Pt(128, 64))
	ttesting.AssertEqualPoint(t, "second size", sheets[1].Size, image.Pt(32, 32))
	ttesting.AssertEqualString(t, "format", sheets[0].Format, "RGBA8888")
	ttesting.AssertEqualString(t, "filter", sheets[1].Filter, "Linear,Linear")
	ttesting.AssertEqualString(t, "repeat", sheets[0].Repeat, "none")

	var names []string
	for _, s := range sheets[0].Sprites {
		names = append(names, s.Name)
	}
	if want := []string{"hero", "run.1", "run.0", "button"}; !reflect.DeepEqual(names, want) {
		t.Errorf("got sprites %q; want %q", names, want)
	}

	run1, ok := sheets[0].Sprite("run.1")
	if !ok {
		t.Fatalf("run.1 not found")
	}
	ttesting.AssertEqualBool(t, "run.1 rotated", run1.Rotated, true)
	ttesting.AssertEqualPoint(t, "run.1 xy", run1.Position, image.Pt(32, 0))
	ttesting.AssertEqualPoint(t, "run.1 size", run1.Size, image.Pt(16, 24))
	ttesting.AssertEqualPoint(t, "run.1 orig", run1.Orig, image.Pt(20, 24))
	ttesting.AssertEqualPoint(t, "run.1 offset", run1.Offset, image.Pt(2, 0))
	ttesting.AssertEqualInt(t, "run.1 index", run1.Index, 1)
	ttesting.AssertEqualString(t, "run.1 base name", run1.BaseName(), "run")

	button, _ := sheets[0].Sprite("button")
	ttesting.AssertEqualPoint(t, "9-patch attributes do not disturb orig", button.Orig, image.Pt(10, 10))

	coin, _ := sheets[1].Sprite("coin")
	ttesting.AssertEqualPoint(t, "coin xy", coin.Position, image.Pt(1, 1))

	for i, sh := range sheets {
		if errs := sh.Validate(); len(errs) != 0 {
			t.Errorf("sheet %d: unexpected validation errors: %v", i, errs)
		}
	}
}

func TestParseIsDeterministic(t *testing.T) {
	b, err := os.ReadFile("testdata/two_pages.atlas")
	if err != nil {
		t.Fatalf("failed to read file: %s", err)
	}
	first, err := Parse(string(b))
	if err != nil {
		t.Fatalf("failed to parse manifest: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Parse(string(b))
		if err != nil {
			t.Fatalf("failed to parse manifest: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("parse %d differs from first parse", i)
		}
	}
}

func TestParseCRLF(t *testing.T) {
	sheets, err := Parse(strings.ReplaceAll(heroManifest, "\n", "\r\n"))
	if err != nil {
		t.Fatalf("failed to parse manifest: %v", err)
	}
	if len(sheets) != 1 || len(sheets[0].Sprites) != 1 {
		t.Fatalf("got %d sheets; want 1 sheet with 1 sprite", len(sheets))
	}
	ttesting.AssertEqualString(t, "filename", sheets[0].Filename, "foo.png")
	ttesting.AssertEqualPoint(t, "size", sheets[0].Sprites[0].Size, image.Pt(32, 32))
}

func TestParseIndexSuffix(t *testing.T) {
	text := "anim.png\nsize: 8,8\nrun\n  index: 0\nrun\n  index: 1\nidle\n  index: -1\n"
	sheets, err := Parse(text)
	if err != nil {
		t.Fatalf("failed to parse manifest: %v", err)
	}
	got := []string{}
	for _, s := range sheets[0].Sprites {
		got = append(got, s.Name)
	}
	if want := []string{"run.0", "run.1", "idle"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %q; want %q", got, want)
	}

	anims := Animations(sheets[0])
	if len(anims) != 1 || len(anims["run"]) != 2 {
		t.Fatalf("got animations %v; want run with 2 frames", anims)
	}
	ttesting.AssertEqualString(t, "first frame", anims["run"][0].Name, "run.0")
}

func TestParseEdgeCases(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantSheets  int
		wantSprites []int
	}{
		{"empty", "", 0, nil},
		{"only blank lines", "\n\n\n\n", 0, nil},
		{"consecutive blank lines between sheets", "a.png\nsize: 1,1\n\n\n\nb.png\nsize: 1,1\n", 2, []int{0, 0}},
		{"sprite without attributes", "a.png\nbare\n", 1, []int{1}},
		{"attribute before any sprite", "a.png\n  xy: 1, 1\nhero\n", 1, []int{1}},
		{"unknown global attribute", "a.png\npma: true\nhero\n", 1, []int{1}},
		{"unrecognized lines", "a.png\nhello world\nhero\n  some text\n", 1, []int{1}},
		{"no trailing newline", "a.png\nsize: 4,4\nhero\n  xy: 0, 0", 1, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheets, err := Parse(tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(sheets) != tt.wantSheets {
				t.Fatalf("got %d sheets; want %d", len(sheets), tt.wantSheets)
			}
			for i, n := range tt.wantSprites {
				if len(sheets[i].Sprites) != n {
					t.Errorf("sheet %d: got %d sprites; want %d", i, len(sheets[i].Sprites), n)
				}
			}
		})
	}

	sheets, _ := Parse("a.png\nbare\n")
	want := &Sprite{Name: "bare", Index: -1}
	if !reflect.DeepEqual(sheets[0].Sprites[0], want) {
		t.Errorf("bare sprite: got %+v; want %+v", sheets[0].Sprites[0], want)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"sheet size not a number", "a.png\nsize: abc,200\n"},
		{"sheet size single value", "a.png\nsize: 200\n"},
		{"sprite xy not a number", "a.png\nhero\n  xy: 1, x\n"},
		{"sprite size three values", "a.png\nhero\n  size: 1, 2, 3\n"},
		{"sprite orig empty value", "a.png\nhero\n  orig: ,\n"},
		{"sprite offset float", "a.png\nhero\n  offset: 1.5, 2\n"},
		{"index not a number", "a.png\nhero\n  index: first\n"},
		{"missing filename", "size: 1,1\nhero\n"},
		{"filename only", "a.png\n"},
		{"filename only without newline", "a.png"},
		{"filename only before another sheet", "a.png\n\n" + heroManifest},
		{"filename only after another sheet", heroManifest + "\nb.png\n\n"},
		{"malformed in second sheet", heroManifest + "\nb.png\nsize: 1,?\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheets, err := Parse(tt.text)
			if err == nil {
				t.Fatalf("got %d sheets and no error; want error", len(sheets))
			}
			if !errors.Is(err, ErrMalformedManifest) {
				t.Errorf("got %v; want error wrapping ErrMalformedManifest", err)
			}
			if !IsFatal(err) {
				t.Errorf("malformed manifest should be fatal")
			}
			if sheets != nil {
				t.Errorf("got partial result %v; want nil", sheets)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	sh := &Sheet{
		Filename: "a.png",
		Size:     image.Pt(16, 16),
		Sprites: []*Sprite{
			{Name: "fits", Position: image.Pt(0, 0), Size: image.Pt(8, 8), Orig: image.Pt(8, 8), Index: -1},
			{Name: "outside", Position: image.Pt(12, 0), Size: image.Pt(8, 8), Orig: image.Pt(8, 8), Index: -1},
			{Name: "overtrimmed", Position: image.Pt(0, 8), Size: image.Pt(8, 8), Orig: image.Pt(8, 8), Offset: image.Pt(1, 0), Index: -1},
		},
	}
	errs := sh.Validate()
	if len(errs) != 2 {
		t.Fatalf("got %d errors (%v); want 2", len(errs), errs)
	}
	for _, err := range errs {
		if !errors.Is(err, ErrGeometryOutOfBounds) {
			t.Errorf("got %v; want error wrapping ErrGeometryOutOfBounds", err)
		}
		if IsFatal(err) {
			t.Errorf("geometry errors should not be fatal: %v", err)
		}
	}
}
