package web

import (
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"net/http"
	"strconv"

	"github.com/ericpauley/go-quantize/quantize"
	"github.com/gorilla/mux"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	"badc0de.net/pkg/go-gdxatlas/atlas"
	"badc0de.net/pkg/go-gdxatlas/compositor"
)

// maxThumb bounds the ?thumb= parameter.
const maxThumb = 1024

func (h *Handler) sheetHandler(w http.ResponseWriter, r *http.Request) {
	st := h.current()
	idx, err := strconv.Atoi(mux.Vars(r)["idx"])
	if err != nil || idx >= len(st.sheets) {
		http.Error(w, "no such sheet", http.StatusNotFound)
		return
	}

	mime := "image/png"
	if notModified(w, r, etag(st, "sheet", strconv.Itoa(idx), mime)) {
		return
	}
	img, err := h.sheetImage(st, idx)
	if err != nil {
		httpError(w, r, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	png.Encode(w, img)
}

// sprite cuts spr out of sheet idx.
func (h *Handler) sprite(st *state, idx int, spr *atlas.Sprite) (image.Image, error) {
	sheetImg, err := h.sheetImage(st, idx)
	if err != nil {
		return nil, err
	}
	return compositor.DecomposeOne(sheetImg, spr)
}

// spriteHandler serves a sprite by name, taken from the first sheet that
// has one.
func (h *Handler) spriteHandler(w http.ResponseWriter, r *http.Request) {
	st := h.current()
	idx, spr, ok := st.findSprite(mux.Vars(r)["name"])
	if !ok {
		http.Error(w, "no such sprite", http.StatusNotFound)
		return
	}
	h.serveSprite(w, r, st, idx, spr)
}

func (h *Handler) sheetSpriteHandler(w http.ResponseWriter, r *http.Request) {
	st := h.current()
	vars := mux.Vars(r)
	idx, err := strconv.Atoi(vars["idx"])
	if err != nil || idx >= len(st.sheets) {
		http.Error(w, "no such sheet", http.StatusNotFound)
		return
	}
	spr, ok := st.sheets[idx].Sprite(vars["name"])
	if !ok {
		http.Error(w, "no such sprite", http.StatusNotFound)
		return
	}
	h.serveSprite(w, r, st, idx, spr)
}

func (h *Handler) serveSprite(w http.ResponseWriter, r *http.Request, st *state, idx int, spr *atlas.Sprite) {
	thumb := 0
	if t := r.URL.Query().Get("thumb"); t != "" {
		thumb, _ = strconv.Atoi(t)
		// ignore invalid thumb
		if thumb < 0 || thumb > maxThumb {
			thumb = 0
		}
	}

	mime := "image/png"
	key := strconv.Itoa(idx) + ":" + spr.Name + ":" + strconv.Itoa(thumb)
	if notModified(w, r, etag(st, "sprite", key, mime)) {
		return
	}
	img, err := h.sprite(st, idx, spr)
	if err != nil {
		httpError(w, r, err, http.StatusInternalServerError)
		return
	}
	if thumb > 0 {
		img = resize.Thumbnail(uint(thumb), uint(thumb), img, resize.Lanczos3)
	}
	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	png.Encode(w, img)
}

// findAnimation returns the frames sharing the base name, from the first
// sheet that has any.
func (st *state) findAnimation(name string) (int, []*atlas.Sprite) {
	for i, sheet := range st.sheets {
		if frames := atlas.Animations(sheet)[name]; len(frames) > 0 {
			return i, frames
		}
	}
	return 0, nil
}

// paletted converts img for GIF output. Index 0 of the palette is reserved
// for transparency, so the quantizer gets to pick the other 255 colours.
func paletted(img image.Image) *image.Paletted {
	q := quantize.MedianCutQuantizer{}
	pal := q.Quantize(make(color.Palette, 0, 255), img)

	b := img.Bounds()
	dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), append(color.Palette{color.Transparent}, pal...))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

func (h *Handler) animHandler(w http.ResponseWriter, r *http.Request) {
	st := h.current()
	name := mux.Vars(r)["name"]
	idx, frames := st.findAnimation(name)
	if len(frames) == 0 {
		http.Error(w, "no such animation", http.StatusNotFound)
		return
	}

	delay := 10 // hundredths of a second
	if d := r.URL.Query().Get("delay"); d != "" {
		if d2, err := strconv.Atoi(d); err == nil && d2 > 0 {
			delay = d2
		}
	}

	mime := "image/gif"
	if notModified(w, r, etag(st, "anim", name+":"+strconv.Itoa(delay), mime)) {
		return
	}

	g := gif.GIF{BackgroundIndex: 0}
	for _, spr := range frames {
		img, err := h.sprite(st, idx, spr)
		if err != nil {
			httpError(w, r, errors.Wrapf(err, "frame %q", spr.Name), http.StatusInternalServerError)
			return
		}
		p := paletted(img)
		if s := p.Bounds().Size(); s.X > g.Config.Width || s.Y > g.Config.Height {
			g.Config.Width, g.Config.Height = max(s.X, g.Config.Width), max(s.Y, g.Config.Height)
		}
		g.Image = append(g.Image, p)
		g.Delay = append(g.Delay, delay)
		g.Disposal = append(g.Disposal, gif.DisposalBackground)
	}

	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	gif.EncodeAll(w, &g)
}
