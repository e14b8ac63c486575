package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/blogware/simple-blog/pkg/simpleblog"
)

// maxUploadSize bounds multipart request bodies, images included.
const maxUploadSize = 16 << 20 // 16 MiB

// PostHandler handles HTTP requests for posts and their comments.
type PostHandler struct {
	service simpleblog.Service
}

// NewPostHandler creates a new post handler
func NewPostHandler(service simpleblog.Service) *PostHandler {
	return &PostHandler{service: service}
}

// Routes returns the routes for posts
func (h *PostHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListPosts)
	r.Post("/", h.CreatePost)
	r.Get("/{id}", h.GetPost)
	r.Put("/{id}", h.UpdatePost)
	r.Delete("/{id}", h.DeletePost)

	r.Get("/{id}/comments", h.ListComments)
	r.Post("/{id}/comments", h.AddComment)

	return r
}

// CommentRequest is the request body for adding a comment
type CommentRequest struct {
	Content string `json:"content"`
}

// postID resolves the {id} URL parameter. A malformed id is reported the
// same way as an absent post.
func postID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, simpleblog.ErrPostNotFound
	}
	return id, nil
}

// postFormRequest parses the multipart form shared by create and update.
func postFormRequest(r *http.Request) (title, content string, status simpleblog.PostStatus, publishDate time.Time, tags []string, image *simpleblog.ImageUpload, err error) {
	if err = r.ParseMultipartForm(maxUploadSize); err != nil {
		return "", "", "", time.Time{}, nil, nil, fmt.Errorf("%w: malformed multipart form", simpleblog.ErrValidation)
	}

	title = r.FormValue("title")
	content = r.FormValue("content")
	status = simpleblog.PostStatus(r.FormValue("status"))

	publishDate = time.Now().UTC()
	if v := r.FormValue("publish_date"); v != "" {
		publishDate, err = time.Parse("2006-01-02", v)
		if err != nil {
			return "", "", "", time.Time{}, nil, nil, fmt.Errorf("%w: publish_date must be YYYY-MM-DD", simpleblog.ErrValidation)
		}
	}

	if v := r.FormValue("tags"); v != "" {
		for _, tag := range strings.Split(v, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	file, header, ferr := r.FormFile("image")
	if ferr == nil {
		image = &simpleblog.ImageUpload{
			Data:        file,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
		}
	} else if ferr != http.ErrMissingFile {
		return "", "", "", time.Time{}, nil, nil, fmt.Errorf("%w: malformed image upload", simpleblog.ErrValidation)
	}

	return title, content, status, publishDate, tags, image, nil
}

// ListPosts lists posts. Anonymous callers and callers browsing other
// authors see published posts only; authors see all of their own posts and
// admins see everything they ask for.
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r.Context())

	var filter simpleblog.PostFilter
	if author := r.URL.Query().Get("author"); author != "" {
		if author == "me" {
			author = principal.ID
		}
		filter.AuthorID = &author
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := simpleblog.PostStatus(v)
		if !status.IsValid() {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, ErrorResponse{Error: "invalid status filter"})
			return
		}
		filter.Status = &status
	}

	// Drafts are visible only to their author and to admins.
	ownListing := filter.AuthorID != nil && *filter.AuthorID == principal.ID && !principal.Anonymous()
	if !principal.Admin && !ownListing {
		published := simpleblog.PostStatusPublished
		filter.Status = &published
	}

	posts, err := h.service.ListPosts(r.Context(), filter)
	if err != nil {
		renderError(w, r, err)
		return
	}
	if posts == nil {
		posts = []*simpleblog.Post{}
	}

	render.JSON(w, r, posts)
}

// CreatePost creates a new post from a multipart form
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	title, content, status, publishDate, tags, image, err := postFormRequest(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	post, err := h.service.CreatePost(r.Context(), principalFrom(r.Context()), simpleblog.CreatePostRequest{
		Title:       title,
		Content:     content,
		Status:      status,
		PublishDate: publishDate,
		Tags:        tags,
		Image:       image,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	post, err := h.service.GetPost(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, post)
}

// UpdatePost replaces a post's fields from a multipart form
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	title, content, status, publishDate, tags, image, err := postFormRequest(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	post, err := h.service.EditPost(r.Context(), principalFrom(r.Context()), id, simpleblog.UpdatePostRequest{
		Title:       title,
		Content:     content,
		Status:      status,
		PublishDate: publishDate,
		Tags:        tags,
		Image:       image,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, post)
}

// DeletePost deletes a post and its comments
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	if err := h.service.DeletePost(r.Context(), principalFrom(r.Context()), id); err != nil {
		renderError(w, r, err)
		return
	}

	render.NoContent(w, r)
}

// ListComments lists a post's comments oldest first
func (h *PostHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	comments, err := h.service.ListComments(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, comments)
}

// AddComment adds a comment to a post
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "invalid request body"})
		return
	}

	comment, err := h.service.AddComment(r.Context(), principalFrom(r.Context()), id, simpleblog.AddCommentRequest{
		Content: req.Content,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, comment)
}
