package atlas

// This file contains the manifest reader. Lines are first classified on
// their own, and then consumed by a small scanner which knows whether it is
// waiting for a sheet's header line or is inside a sheet's body.

import (
	"image"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type lineKind int

const (
	unrecognized lineKind = iota
	globalAttribute
	spriteStart
	spriteAttribute
)

func (k lineKind) String() string {
	switch k {
	case unrecognized:
		return "unrecognized"
	case globalAttribute:
		return "global attribute"
	case spriteStart:
		return "sprite start"
	case spriteAttribute:
		return "sprite attribute"
	}
	return "bad value"
}

// Tested in this order; the first match wins.
var (
	globalAttributeRE = regexp.MustCompile(`^([a-z]+): (.+)$`)
	spriteNameRE      = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	spriteAttributeRE = regexp.MustCompile(`^ +([a-z]+): (.+)$`)
)

// line is a single classified manifest line.
type line struct {
	kind       lineKind
	key, value string

	num  int // 1-based
	text string
}

func classify(num int, text string) line {
	l := line{kind: unrecognized, num: num, text: text}
	if m := globalAttributeRE.FindStringSubmatch(text); m != nil {
		l.kind, l.key, l.value = globalAttribute, m[1], m[2]
	} else if spriteNameRE.MatchString(text) {
		l.kind = spriteStart
	} else if m := spriteAttributeRE.FindStringSubmatch(text); m != nil {
		l.kind, l.key, l.value = spriteAttribute, m[1], m[2]
	}
	return l
}

func (l line) malformed(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformedManifest, "line %d (%q): "+format, append([]interface{}{l.num, l.text}, args...)...)
}

type scanState int

const (
	awaitingHeader scanState = iota
	inBody
)

// spriteBuilder accumulates attributes of the sprite currently being read.
type spriteBuilder struct {
	name   string
	sprite Sprite
}

func (b *spriteBuilder) build() *Sprite {
	s := b.sprite
	s.Name = b.name
	if s.Index != -1 {
		s.Name += "." + strconv.Itoa(s.Index)
	}
	return &s
}

type parser struct {
	state  scanState
	sheets []*Sheet

	sheet     *Sheet
	header    line // filename line of the open block
	bodyLines int
	sprite    *spriteBuilder // nil while no sprite is open
}

// Parse reads the whole manifest and returns the sheets it describes, in
// declaration order.
//
// Lines that match none of the known forms are ignored, as are attributes
// that carry no geometry (split, pad, and so on). A numeric attribute that
// cannot be read fails the whole parse with an error wrapping
// ErrMalformedManifest; no partial result is returned in that case.
func Parse(text string) ([]*Sheet, error) {
	p := &parser{}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for i, t := range strings.Split(text, "\n") {
		if err := p.feed(i+1, t); err != nil {
			return nil, err
		}
	}
	if err := p.endBlock(); err != nil {
		return nil, err
	}
	return p.sheets, nil
}

// ParseReader reads all of r and parses it as a manifest.
func ParseReader(r io.Reader) ([]*Sheet, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading manifest")
	}
	return Parse(string(b))
}

func (p *parser) feed(num int, text string) error {
	if text == "" {
		return p.endBlock()
	}

	l := classify(num, text)
	switch p.state {
	case awaitingHeader:
		if strings.TrimSpace(text) == "" {
			return nil
		}
		if l.kind == globalAttribute || l.kind == spriteAttribute {
			return l.malformed("expected sheet filename before attributes")
		}
		p.sheet = &Sheet{Filename: text}
		p.header, p.bodyLines = l, 0
		p.state = inBody
		return nil
	}
	p.bodyLines++

	switch l.kind {
	case globalAttribute:
		return p.globalAttribute(l)
	case spriteStart:
		p.finishSprite()
		p.sprite = &spriteBuilder{name: l.text, sprite: Sprite{Index: -1}}
	case spriteAttribute:
		if p.sprite == nil {
			return nil
		}
		return p.spriteAttribute(l)
	}
	return nil
}

func (p *parser) globalAttribute(l line) error {
	switch l.key {
	case "size":
		pt, err := parsePair(l.value)
		if err != nil {
			return l.malformed("%v", err)
		}
		p.sheet.Size = pt
	case "format":
		p.sheet.Format = l.value
	case "filter":
		p.sheet.Filter = l.value
	case "repeat":
		p.sheet.Repeat = l.value
	}
	return nil
}

func (p *parser) spriteAttribute(l line) error {
	s := &p.sprite.sprite

	var dst *image.Point
	switch l.key {
	case "rotate":
		s.Rotated = l.value == "true"
		return nil
	case "index":
		idx, err := strconv.Atoi(strings.TrimSpace(l.value))
		if err != nil {
			return l.malformed("bad index: %v", err)
		}
		s.Index = idx
		return nil
	case "xy":
		dst = &s.Position
	case "size":
		dst = &s.Size
	case "offset":
		dst = &s.Offset
	case "orig":
		dst = &s.Orig
	default:
		return nil
	}

	pt, err := parsePair(l.value)
	if err != nil {
		return l.malformed("%v", err)
	}
	*dst = pt
	return nil
}

func (p *parser) finishSprite() {
	if p.sprite == nil {
		return
	}
	p.sheet.Sprites = append(p.sheet.Sprites, p.sprite.build())
	p.sprite = nil
}

// endBlock closes the open block. A block needs at least one line after its
// filename.
func (p *parser) endBlock() error {
	if p.state != inBody {
		return nil
	}
	if p.bodyLines == 0 {
		return p.header.malformed("sheet has no attributes or sprites")
	}
	p.finishSprite()
	p.sheets = append(p.sheets, p.sheet)
	p.sheet = nil
	p.state = awaitingHeader
	return nil
}

// parsePair reads "A,B" or "A, B" into a point.
func parsePair(v string) (image.Point, error) {
	parts := strings.Split(v, ",")
	if len(parts) != 2 {
		return image.Point{}, errors.Errorf("want two comma separated values, got %d", len(parts))
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return image.Point{}, err
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return image.Point{}, err
	}
	return image.Pt(x, y), nil
}
