package atlas

import (
	"image"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Sprite describes where a single sprite lives within a sheet, and how to
// restore its original canvas.
type Sprite struct {
	// Name identifies the sprite within its sheet. Sprites with an index
	// other than -1 carry it as a ".N" suffix.
	Name string

	// Rotated is set if the pixel data is stored in the sheet turned by 90
	// degrees.
	Rotated bool

	// Position is the top left corner of the stored region within the sheet.
	Position image.Point
	// Size is the size of the stored region, as stored (that is, after
	// rotation).
	Size image.Point
	// Orig is the size of the sprite before transparent borders were
	// trimmed.
	Orig image.Point
	// Offset is the position of the stored region within the untrimmed
	// canvas.
	Offset image.Point

	// Index is the frame index as written in the manifest, or -1.
	Index int
}

// PackedRect returns the region of the sheet holding the sprite.
func (s *Sprite) PackedRect() image.Rectangle {
	return image.Rectangle{Min: s.Position, Max: s.Position.Add(s.Size)}
}

// TrimRect returns the region of the untrimmed canvas covered by the stored
// pixels.
func (s *Sprite) TrimRect() image.Rectangle {
	return image.Rectangle{Min: s.Offset, Max: s.Offset.Add(s.Size)}
}

// BaseName returns the name without the frame index suffix.
func (s *Sprite) BaseName() string {
	if s.Index == -1 {
		return s.Name
	}
	return strings.TrimSuffix(s.Name, "."+strconv.Itoa(s.Index))
}

// Sheet is a single page of the atlas: one image file and the sprites packed
// into it.
type Sheet struct {
	Filename string
	Size     image.Point

	// Format, Filter and Repeat are kept verbatim. They have no influence on
	// geometry.
	Format string
	Filter string
	Repeat string

	Sprites []*Sprite
}

// Bounds returns the rectangle covered by the sheet canvas.
func (s *Sheet) Bounds() image.Rectangle {
	return image.Rectangle{Max: s.Size}
}

// Sprite returns the first sprite with the passed name.
func (s *Sheet) Sprite(name string) (*Sprite, bool) {
	for _, spr := range s.Sprites {
		if spr.Name == name {
			return spr, true
		}
	}
	return nil, false
}

// Validate checks the placement of every sprite against the sheet and
// against its own original size. It returns one error per offending sprite,
// each wrapping ErrGeometryOutOfBounds.
func (s *Sheet) Validate() []error {
	var errs []error
	bounds := s.Bounds()
	for _, spr := range s.Sprites {
		if !spr.PackedRect().In(bounds) {
			errs = append(errs, errors.Wrapf(ErrGeometryOutOfBounds, "%s: sprite %q at %v does not fit sheet %v", s.Filename, spr.Name, spr.PackedRect(), bounds))
			continue
		}
		// Orig is expressed in the same (stored) orientation as Size; the
		// canvas is only turned after the stored pixels were placed on it.
		trim := spr.TrimRect()
		if !trim.In(image.Rectangle{Max: spr.Orig}) {
			errs = append(errs, errors.Wrapf(ErrGeometryOutOfBounds, "%s: sprite %q trimmed region %v exceeds original size %v", s.Filename, spr.Name, trim, spr.Orig))
		}
	}
	return errs
}

// Animations groups sprites carrying a frame index by their base name. Frames
// are ordered by index.
func Animations(s *Sheet) map[string][]*Sprite {
	anims := make(map[string][]*Sprite)
	for _, spr := range s.Sprites {
		if spr.Index == -1 {
			continue
		}
		anims[spr.BaseName()] = append(anims[spr.BaseName()], spr)
	}
	for _, frames := range anims {
		sort.SliceStable(frames, func(i, j int) bool {
			return frames[i].Index < frames[j].Index
		})
	}
	return anims
}
