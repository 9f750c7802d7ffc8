package server

import (
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
)

// UploadsHandler handles GET /uploads/{filename}: read-only retrieval of
// stored CV files, no authentication.
func (cfg Config) UploadsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondMessage(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/"+uploadsPrefix)
	if name == "" || !validStoredName(name) {
		respondMessage(w, http.StatusNotFound, "not found")
		return
	}

	rc, contentType, err := cfg.Store.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			respondMessage(w, http.StatusNotFound, "not found")
			return
		}
		Error("uploads open failed", map[string]any{"name": name}, err)
		respondMessage(w, http.StatusInternalServerError, "server error")
		return
	}
	defer func() { _ = rc.Close() }()

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if _, err := io.Copy(w, rc); err != nil {
		// Headers are already out; nothing left to do but log.
		rid := RequestIDFromContext(r.Context())
		Error("uploads stream failed", map[string]any{"rid": rid}, err)
	}
}
