package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/blogware/simple-blog/pkg/simpleblog"
)

// ErrorResponse is the JSON body for all error outcomes.
type ErrorResponse struct {
	Error string `json:"error"`
}

// renderError maps service errors onto HTTP status codes. Unrecognized
// errors become opaque 500s so internal details never leak.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	var forbidden *simpleblog.ForbiddenError
	var partial *simpleblog.PartialDeleteError

	switch {
	case errors.As(err, &forbidden):
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, ErrorResponse{Error: forbidden.Reason})

	case errors.Is(err, simpleblog.ErrForbidden):
		render.Status(r, http.StatusForbidden)
		render.JSON(w, r, ErrorResponse{Error: "forbidden"})

	case errors.Is(err, simpleblog.ErrPostNotFound),
		errors.Is(err, simpleblog.ErrAccountNotFound),
		errors.Is(err, simpleblog.ErrCommentNotFound),
		errors.Is(err, simpleblog.ErrBlobNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, ErrorResponse{Error: "not found"})

	case errors.Is(err, simpleblog.ErrAccountExists):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, ErrorResponse{Error: "account already exists"})

	case errors.Is(err, simpleblog.ErrInvalidCredentials):
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, ErrorResponse{Error: "invalid credentials"})

	case errors.Is(err, simpleblog.ErrValidation):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: err.Error()})

	case errors.As(err, &partial):
		slog.Error("cascade delete left post behind", "post_id", partial.PostID, "error", partial.Err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "delete incomplete"})

	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "internal error"})
	}
}
