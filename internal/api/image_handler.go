package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/blogware/simple-blog/pkg/simpleblog"
)

// ImageHandler streams stored image blobs.
type ImageHandler struct {
	service simpleblog.Service
}

// NewImageHandler creates a new image handler
func NewImageHandler(service simpleblog.Service) *ImageHandler {
	return &ImageHandler{service: service}
}

// Routes returns the routes for images
func (h *ImageHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{id}", h.GetImage)

	return r
}

// GetImage streams an image blob by id
func (h *ImageHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, simpleblog.ErrBlobNotFound)
		return
	}

	body, info, err := h.service.GetImage(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}
	defer body.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	if info.Filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", info.Filename))
	}

	if _, err := io.Copy(w, body); err != nil {
		// Headers already went out; nothing to do but log.
		slog.Warn("image stream interrupted", "blob_id", id, "error", err)
	}
}
