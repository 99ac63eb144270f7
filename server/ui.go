package server

import (
	_ "embed"
	"net/http"
)

//go:embed ui/index.html
var indexPage []byte

// Index serves the single-page planner UI.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexPage)
}
