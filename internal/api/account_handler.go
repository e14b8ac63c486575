package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/blogware/simple-blog/pkg/simpleblog"
)

// AccountHandler handles HTTP requests for accounts and profiles.
type AccountHandler struct {
	service simpleblog.Service
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(service simpleblog.Service) *AccountHandler {
	return &AccountHandler{service: service}
}

// Routes returns the routes for accounts
func (h *AccountHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListAccounts)
	r.Get("/me", h.GetProfile)
	r.Put("/me", h.UpdateProfile)
	r.Get("/{id}", h.GetAccount)

	return r
}

// ListAccounts lists all accounts, admin only
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context(), principalFrom(r.Context()))
	if err != nil {
		renderError(w, r, err)
		return
	}
	if accounts == nil {
		accounts = []*simpleblog.Account{}
	}

	render.JSON(w, r, accounts)
}

// GetProfile returns the calling principal's own account
func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r.Context())
	if principal.Anonymous() {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, ErrorResponse{Error: "authentication required"})
		return
	}

	account, err := h.service.GetAccount(r.Context(), principal.ID)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, account)
}

// GetAccount returns a single account by id
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.GetAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, account)
}

// UpdateProfile replaces the calling principal's profile fields from a
// multipart form. An uploaded "image" file replaces the profile image and
// releases the previous one.
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		renderError(w, r, fmt.Errorf("%w: malformed multipart form", simpleblog.ErrValidation))
		return
	}

	req := simpleblog.UpdateProfileRequest{
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
		Bio:       r.FormValue("bio"),
		Theme:     r.FormValue("theme"),
	}

	file, header, err := r.FormFile("image")
	if err == nil {
		req.Image = &simpleblog.ImageUpload{
			Data:        file,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
		}
	} else if err != http.ErrMissingFile {
		renderError(w, r, fmt.Errorf("%w: malformed image upload", simpleblog.ErrValidation))
		return
	}

	account, err := h.service.UpdateProfile(r.Context(), principalFrom(r.Context()), req)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, account)
}
