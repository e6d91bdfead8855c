// Package imageprint prints images on a terminal, for a quick look at
// sprites as they are extracted.
package imageprint

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	ic "image/color"
	"image/png"
	"io"
	"os"

	"github.com/gookit/color"
	"github.com/pkg/errors"
)

// Mode selects how pixels reach the terminal.
type Mode string

const (
	Mode24Bit   Mode = "24bit"   // background colour escapes, one cell pair per pixel
	Mode256     Mode = "256"     // gookit/color, degrades with the terminal
	ModeNone    Mode = "none"    // ascii shades only
	ModeITerm   Mode = "iterm"   // iTerm2 inline image
	ModeRasTerm Mode = "rasterm" // kitty, iTerm2 or sixel, whichever the terminal speaks
)

// String implements flag.Value.
func (m *Mode) String() string {
	if m == nil {
		return ""
	}
	return string(*m)
}

// Set implements flag.Value.
func (m *Mode) Set(s string) error {
	switch Mode(s) {
	case Mode24Bit, Mode256, ModeNone, ModeITerm, ModeRasTerm:
		*m = Mode(s)
		return nil
	}
	return errors.Errorf("unknown print mode %q (want 24bit, 256, none, iterm or rasterm)", s)
}

// Printer writes images to a terminal.
type Printer struct {
	Out  io.Writer // defaults to os.Stdout
	Mode Mode

	// Blanks paints cells with spaces instead of brightness shades.
	Blanks bool

	// Downsize shrinks images which are larger than the terminal.
	Downsize bool
}

func (p *Printer) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

// Print writes img to the terminal, preceded by its name.
func (p *Printer) Print(name string, img image.Image) error {
	w := p.out()
	fmt.Fprintf(w, "%s (%dx%d)\n", name, img.Bounds().Dx(), img.Bounds().Dy())
	if p.Downsize {
		img = fit(img, p.Mode == ModeITerm || p.Mode == ModeRasTerm)
	}

	switch p.Mode {
	case ModeITerm:
		return printITerm(w, img, name)
	case ModeRasTerm:
		return printRasTerm(w, img)
	case ModeNone:
		return printCells(w, img, p.Blanks, shadeNoColor)
	case Mode256:
		return printCells(w, img, p.Blanks, shade256)
	}
	return printCells(w, img, p.Blanks, shade24Bit)
}

type shader func(w io.Writer, c ic.NRGBA, cell string)

func shadeNoColor(w io.Writer, _ ic.NRGBA, cell string) {
	io.WriteString(w, cell)
}

func shade24Bit(w io.Writer, c ic.NRGBA, cell string) {
	fmt.Fprintf(w, "\x1b[48;2;%d;%d;%dm%s\x1b[0m", c.R, c.G, c.B, cell)
}

func shade256(w io.Writer, c ic.NRGBA, cell string) {
	io.WriteString(w, color.RGB(c.R, c.G, c.B, true).Sprint(cell))
}

// cell picks the two characters drawn for c.
func cell(c ic.NRGBA, blanks bool) string {
	if blanks {
		return "  "
	}
	switch a := (int(c.R) + int(c.G) + int(c.B)) / 3; {
	case a < 32:
		return ".."
	case a < 64:
		return "--"
	case a < 128:
		return "=="
	}
	return "##"
}

func printCells(w io.Writer, img image.Image, blanks bool, shade shader) error {
	b := img.Bounds()
	buf := &bytes.Buffer{}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := ic.NRGBAModel.Convert(img.At(x, y)).(ic.NRGBA)
			if c.A == 0 {
				buf.WriteString("  ")
				continue
			}
			shade(buf, c, cell(c, blanks))
		}
		buf.WriteString("\n")
	}
	_, err := buf.WriteTo(w)
	return err
}

// printITerm draws an image using iTerm2's escape sequences.
//
// https://www.iterm2.com/documentation-images.html
func printITerm(w io.Writer, img image.Image, fn string) error {
	if !isTermItermWez() {
		return errors.New("terminal does not look like iTerm2 or WezTerm")
	}
	b := &bytes.Buffer{}
	enc := base64.NewEncoder(base64.StdEncoding, b)
	if err := png.Encode(enc, img); err != nil {
		return errors.Wrap(err, "encoding preview")
	}
	enc.Close()
	name := base64.StdEncoding.EncodeToString([]byte(fn))
	_, err := fmt.Fprintf(w, "\033]1337;File=name=%s;inline=1;size=%d;width=%dpx;height=%dpx:%s\a\n", name, b.Len(), img.Bounds().Dx(), img.Bounds().Dy(), b.String())
	return err
}
