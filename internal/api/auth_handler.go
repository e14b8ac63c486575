package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/blogware/simple-blog/internal/auth"
	"github.com/blogware/simple-blog/pkg/simpleblog"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	service simpleblog.Service
	tokens  *auth.Manager
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service simpleblog.Service, tokens *auth.Manager) *AuthHandler {
	return &AuthHandler{service: service, tokens: tokens}
}

// Routes returns the routes for authentication
func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)

	return r
}

// RegisterRequest is the request body for creating an account
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a signed bearer token
type TokenResponse struct {
	Token string `json:"token"`
}

// Register creates a new account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "invalid request body"})
		return
	}

	account, err := h.service.Register(r.Context(), simpleblog.RegisterRequest{
		ID:     req.Email,
		Secret: req.Password,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, account)
}

// Login verifies credentials and returns a bearer token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "invalid request body"})
		return
	}

	principal, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		renderError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(principal)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, TokenResponse{Token: token})
}
