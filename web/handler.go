// Package web serves a texture atlas over HTTP: its descriptors, its sheet
// images, and every sprite cut out of them.
package web

import (
	"fmt"
	"image"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"golang.org/x/net/trace"

	"badc0de.net/pkg/go-gdxatlas/atlas"
	"badc0de.net/pkg/go-gdxatlas/compositor"
	"badc0de.net/pkg/go-gdxatlas/imageio"
	"badc0de.net/pkg/go-gdxatlas/paths"
)

// state is one loaded version of the manifest. It is replaced as a whole on
// reload, so requests keep working on the version they started with.
type state struct {
	generation uint64
	sheets     []*atlas.Sheet

	mu     sync.Mutex
	images map[int]*image.NRGBA // sheet images, loaded on first use
}

// Handler serves one manifest.
type Handler struct {
	manifestPath string
	spritesDir   string
	ext          string

	mu    sync.RWMutex
	state *state
}

// NewHandler loads the manifest at manifestPath. Sheet images are read from
// next to the manifest, unless spritesDir is set; in that case they are
// composed from the sprite images in it, named with ext.
func NewHandler(manifestPath, spritesDir, ext string) (*Handler, error) {
	h := &Handler{
		manifestPath: manifestPath,
		spritesDir:   spritesDir,
		ext:          ext,
	}
	if err := h.Reload(); err != nil {
		return nil, err
	}
	return h, nil
}

// Reload parses the manifest again and forgets all cached images. When the
// manifest can't be read or parsed, the previous version stays in place.
func (h *Handler) Reload() error {
	text, err := paths.ReadManifest(h.manifestPath)
	if err != nil {
		return err
	}
	sheets, err := atlas.Parse(text)
	if err != nil {
		return errors.Wrapf(err, "parsing %q", h.manifestPath)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	var gen uint64 = 1
	if h.state != nil {
		gen = h.state.generation + 1
	}
	h.state = &state{
		generation: gen,
		sheets:     sheets,
		images:     map[int]*image.NRGBA{},
	}
	glog.Infof("%s: generation %d, %d sheets", h.manifestPath, gen, len(sheets))
	return nil
}

// Generation counts successful loads of the manifest.
func (h *Handler) Generation() uint64 {
	return h.current().generation
}

func (h *Handler) current() *state {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// sheetImage returns the image of sheet idx, loading it on first use. The
// cached image is converted to NRGBA once, so cutting sprites out of it
// doesn't copy the whole sheet again.
func (h *Handler) sheetImage(st *state, idx int) (*image.NRGBA, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if img, ok := st.images[idx]; ok {
		return img, nil
	}

	sheet := st.sheets[idx]
	var img *image.NRGBA
	if h.spritesDir != "" {
		src := compositor.SpriteSourceFunc(func(name string) (image.Image, error) {
			return imageio.Open(paths.SpritePath(h.spritesDir, name, h.ext))
		})
		composed, errs := compositor.Compose(sheet, src)
		if composed == nil {
			return nil, errs[0]
		}
		for _, err := range errs {
			glog.Warningf("sheet %s: %v", sheet.Filename, err)
		}
		img = composed
	} else {
		loaded, err := imageio.Open(paths.SheetPath(h.manifestPath, sheet.Filename))
		if err != nil {
			return nil, err
		}
		img = compositor.ToNRGBA(loaded)
	}
	st.images[idx] = img
	return img, nil
}

// findSprite looks name up in all sheets, returning the first match. Sprites
// sharing a name with one on an earlier sheet are only reachable by sheet
// index.
func (st *state) findSprite(name string) (int, *atlas.Sprite, bool) {
	for i, sheet := range st.sheets {
		if spr, ok := sheet.Sprite(name); ok {
			return i, spr, true
		}
	}
	return 0, nil, false
}

func etag(st *state, kind, key, mime string) string {
	return fmt.Sprintf(`W/"%s:%d:%s:%s"`, kind, st.generation, key, mime)
}

// notModified answers with 304 if the client already has the current
// version of the resource.
func notModified(w http.ResponseWriter, r *http.Request, etag string) bool {
	w.Header().Set("Cache-Control", "public; max-age=60")
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") != etag {
		return false
	}
	w.WriteHeader(http.StatusNotModified)
	return true
}

func httpError(w http.ResponseWriter, r *http.Request, err error, code int) {
	if tr, ok := trace.FromContext(r.Context()); ok {
		tr.LazyPrintf("%v", err)
		tr.SetError()
	}
	if code >= http.StatusInternalServerError {
		glog.Errorf("%s: %v", r.URL.Path, err)
	}
	http.Error(w, err.Error(), code)
}

// traced records every request in the golang.org/x/net/trace event log,
// visible under /debug/requests.
func traced(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tr := trace.New("gdxatlasweb", r.URL.Path)
		defer tr.Finish()
		next.ServeHTTP(w, r.WithContext(trace.NewContext(r.Context(), tr)))
	})
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.Use(traced)
	r.HandleFunc("/", h.indexHandler)
	r.HandleFunc("/atlas.json", h.jsonHandler)
	r.HandleFunc("/atlas.yaml", h.yamlHandler)
	r.HandleFunc("/sheet/{idx:[0-9]+}", h.sheetHandler)
	r.HandleFunc("/sheet/{idx:[0-9]+}/sprite/{name}", h.sheetSpriteHandler)
	r.HandleFunc("/sprite/{name}", h.spriteHandler)
	r.HandleFunc("/anim/{name}.gif", h.animHandler)
}
