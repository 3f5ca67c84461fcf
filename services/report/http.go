//go:build !tinygo

package report

import (
	"encoding/json"
	"net/http"
)

// Handler serves the index document as JSON.
func Handler(src Source) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Pragma", "no-cache")
		_ = json.NewEncoder(w).Encode(Index(src))
	})
}

// NewMux mounts Handler on /index.
func NewMux(src Source) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/index", Handler(src))
	return mux
}
