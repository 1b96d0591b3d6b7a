package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/mux"
)

// pathParam reads a URL parameter regardless of which router served the
// request. The current API runs on chi; the legacy v1 surface still runs on
// gorilla/mux.
func pathParam(r *http.Request, key string) string {
	if value := chi.URLParam(r, key); value != "" {
		return value
	}
	return mux.Vars(r)[key]
}
