package atlas

import (
	"encoding/json"
	"image"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SheetDescriptor is the flat interchange form of a Sheet. Field names are
// stable and shared with other tools consuming the dump.
type SheetDescriptor struct {
	Filename string             `json:"filename" yaml:"filename"`
	Width    int                `json:"width" yaml:"width"`
	Height   int                `json:"height" yaml:"height"`
	Sprites  []SpriteDescriptor `json:"sprites" yaml:"sprites"`

	Format string `json:"format,omitempty" yaml:"format,omitempty"`
	Filter string `json:"filter,omitempty" yaml:"filter,omitempty"`
	Repeat string `json:"repeat,omitempty" yaml:"repeat,omitempty"`
}

// SpriteDescriptor is the flat interchange form of a Sprite.
type SpriteDescriptor struct {
	Name    string `json:"name" yaml:"name"`
	Rotate  bool   `json:"rotate" yaml:"rotate"`
	X       int    `json:"x" yaml:"x"`
	Y       int    `json:"y" yaml:"y"`
	Width   int    `json:"width" yaml:"width"`
	Height  int    `json:"height" yaml:"height"`
	OrigW   int    `json:"orig_w" yaml:"orig_w"`
	OrigH   int    `json:"orig_h" yaml:"orig_h"`
	OffsetX int    `json:"offset_x" yaml:"offset_x"`
	OffsetY int    `json:"offset_y" yaml:"offset_y"`
}

// Descriptors flattens sheets into their interchange form.
func Descriptors(sheets []*Sheet) []SheetDescriptor {
	out := make([]SheetDescriptor, 0, len(sheets))
	for _, sh := range sheets {
		d := SheetDescriptor{
			Filename: sh.Filename,
			Width:    sh.Size.X,
			Height:   sh.Size.Y,
			Sprites:  make([]SpriteDescriptor, 0, len(sh.Sprites)),
			Format:   sh.Format,
			Filter:   sh.Filter,
			Repeat:   sh.Repeat,
		}
		for _, s := range sh.Sprites {
			d.Sprites = append(d.Sprites, SpriteDescriptor{
				Name:    s.Name,
				Rotate:  s.Rotated,
				X:       s.Position.X,
				Y:       s.Position.Y,
				Width:   s.Size.X,
				Height:  s.Size.Y,
				OrigW:   s.Orig.X,
				OrigH:   s.Orig.Y,
				OffsetX: s.Offset.X,
				OffsetY: s.Offset.Y,
			})
		}
		out = append(out, d)
	}
	return out
}

// FromDescriptors is the inverse of Descriptors.
//
// The interchange form does not carry frame indices; sprites come back with
// Index -1 and their suffixed name.
func FromDescriptors(ds []SheetDescriptor) []*Sheet {
	sheets := make([]*Sheet, 0, len(ds))
	for _, d := range ds {
		sh := &Sheet{
			Filename: d.Filename,
			Size:     image.Pt(d.Width, d.Height),
			Format:   d.Format,
			Filter:   d.Filter,
			Repeat:   d.Repeat,
		}
		for _, s := range d.Sprites {
			sh.Sprites = append(sh.Sprites, &Sprite{
				Name:     s.Name,
				Rotated:  s.Rotate,
				Position: image.Pt(s.X, s.Y),
				Size:     image.Pt(s.Width, s.Height),
				Orig:     image.Pt(s.OrigW, s.OrigH),
				Offset:   image.Pt(s.OffsetX, s.OffsetY),
				Index:    -1,
			})
		}
		sheets = append(sheets, sh)
	}
	return sheets
}

// WriteJSON writes the descriptors of sheets as indented JSON.
func WriteJSON(w io.Writer, sheets []*Sheet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(Descriptors(sheets)); err != nil {
		return errors.Wrap(err, "encoding descriptors as json")
	}
	return nil
}

// WriteYAML writes the descriptors of sheets as a YAML document.
func WriteYAML(w io.Writer, sheets []*Sheet) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Descriptors(sheets)); err != nil {
		return errors.Wrap(err, "encoding descriptors as yaml")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, "encoding descriptors as yaml")
	}
	return nil
}

// ReadDescriptors reads a JSON or YAML descriptor dump. YAML being a superset
// of JSON, a single decoder handles both.
func ReadDescriptors(r io.Reader) ([]*Sheet, error) {
	var ds []SheetDescriptor
	if err := yaml.NewDecoder(r).Decode(&ds); err != nil {
		return nil, errors.Wrap(err, "decoding descriptors")
	}
	return FromDescriptors(ds), nil
}
