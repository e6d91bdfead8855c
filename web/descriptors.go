package web

import (
	"net/http"

	"badc0de.net/pkg/go-gdxatlas/atlas"
)

func (h *Handler) jsonHandler(w http.ResponseWriter, r *http.Request) {
	st := h.current()
	if notModified(w, r, etag(st, "atlas", "", "application/json")) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	atlas.WriteJSON(w, st.sheets)
}

func (h *Handler) yamlHandler(w http.ResponseWriter, r *http.Request) {
	st := h.current()
	if notModified(w, r, etag(st, "atlas", "", "application/yaml")) {
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	atlas.WriteYAML(w, st.sheets)
}
