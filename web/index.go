package web

import (
	"bytes"
	"html/template"
	"image/png"
	"net/http"
	"sort"
	"strconv"

	"github.com/golang/glog"
	"github.com/nfnt/resize"
	"github.com/vincent-petithory/dataurl"

	"badc0de.net/pkg/go-gdxatlas/atlas"
)

// indexThumb is the edge length of the index page thumbnails.
const indexThumb = 48

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Manifest}}</title></head>
<body>
<h1>{{.Manifest}}</h1>
<p>Generation {{.Generation}}. <a href="/atlas.json">json</a> <a href="/atlas.yaml">yaml</a></p>
{{range .Sheets}}
<h2><a href="/sheet/{{.Index}}">{{.Filename}}</a> ({{.Width}}x{{.Height}})</h2>
<table>
{{range .Sprites}}<tr>
<td>{{if .Thumb}}<img src="{{.Thumb}}" alt="{{.Name}}">{{end}}</td>
<td><a href="/sheet/{{.Sheet}}/sprite/{{.Name}}">{{.Name}}</a></td>
<td>{{.Width}}x{{.Height}}{{if .Rotated}}, rotated{{end}}</td>
</tr>
{{end}}</table>
{{range .Animations}}<p><a href="/anim/{{.}}.gif">{{.}}</a> (animation)</p>
{{end}}
{{end}}
</body>
</html>
`))

type indexSprite struct {
	Sheet         int
	Name          string
	Width, Height int
	Rotated       bool
	Thumb         template.URL
}

type indexSheet struct {
	Index         int
	Filename      string
	Width, Height int
	Sprites       []indexSprite
	Animations    []string
}

type indexPage struct {
	Manifest   string
	Generation uint64
	Sheets     []indexSheet
}

// thumbnail returns a data URL of a small rendition of the sprite, or an
// empty string if the sprite can't be cut out.
func (h *Handler) thumbnail(st *state, idx int, spr *atlas.Sprite) template.URL {
	img, err := h.sprite(st, idx, spr)
	if err != nil {
		glog.V(1).Infof("no thumbnail for %s: %v", spr.Name, err)
		return ""
	}
	img = resize.Thumbnail(indexThumb, indexThumb, img, resize.Lanczos3)

	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		return ""
	}
	text, err := dataurl.New(buf.Bytes(), "image/png").MarshalText()
	if err != nil {
		return ""
	}
	return template.URL(text)
}

func animationNames(sheet *atlas.Sheet) []string {
	var names []string
	for name := range atlas.Animations(sheet) {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *Handler) indexHandler(w http.ResponseWriter, r *http.Request) {
	st := h.current()
	if notModified(w, r, etag(st, "index", "", "text/html")) {
		return
	}

	page := indexPage{Manifest: h.manifestPath, Generation: st.generation}
	for i, sheet := range st.sheets {
		is := indexSheet{
			Index:    i,
			Filename: sheet.Filename,
			Width:    sheet.Size.X,
			Height:   sheet.Size.Y,
		}
		for _, spr := range sheet.Sprites {
			is.Sprites = append(is.Sprites, indexSprite{
				Sheet:   i,
				Name:    spr.Name,
				Width:   spr.Orig.X,
				Height:  spr.Orig.Y,
				Rotated: spr.Rotated,
				Thumb:   h.thumbnail(st, i, spr),
			})
		}
		is.Animations = animationNames(sheet)
		page.Sheets = append(page.Sheets, is)
	}

	buf := &bytes.Buffer{}
	if err := indexTemplate.Execute(buf, page); err != nil {
		httpError(w, r, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
