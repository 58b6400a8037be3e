package http

import (
	"errors"
	"net/http"
	"strconv"

	"budget/internal/imageres"
	applog "budget/internal/log"
)

// handleImage proxies an item image. Anything that cannot be shown (the
// placeholder sentinel, a non-http URL, a failed download, bytes that are
// not an image) gets the neutral placeholder. Nothing is cached.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	src := r.URL.Query().Get("src")
	w.Header().Set("Cache-Control", "no-store")

	img, err := s.images.Fetch(r.Context(), src)
	if err != nil {
		if !errors.Is(err, imageres.ErrNoImage) {
			logFor(r, applog.ComponentImages).WarnContext(r.Context(), "Image fetch failed",
				applog.FieldImageURL, src, applog.FieldError, err, applog.FieldOperation, applog.OpFetch)
		}
		writePlaceholder(w)
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

func writePlaceholder(w http.ResponseWriter) {
	w.Header().Set("Content-Type", imageres.PlaceholderContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(imageres.Placeholder)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(imageres.Placeholder)
}
