package simpleblog

import (
	"io"
	"time"
)

// Request DTOs

// RegisterRequest contains parameters for creating a new account.
type RegisterRequest struct {
	ID     string
	Secret string
}

// ImageUpload carries raw uploaded image bytes and their metadata. A nil
// *ImageUpload on a request means "keep the existing image"; a non-nil one is
// an explicit replace signal.
type ImageUpload struct {
	Data        io.Reader
	Filename    string
	ContentType string
}

// CreatePostRequest contains the validated field values for a new post.
type CreatePostRequest struct {
	Title       string
	Content     string
	Status      PostStatus
	PublishDate time.Time
	Tags        []string
	Image       *ImageUpload
}

// UpdatePostRequest contains the full replacement field values for a post
// edit. Image follows the keep/replace convention of ImageUpload.
type UpdatePostRequest struct {
	Title       string
	Content     string
	Status      PostStatus
	PublishDate time.Time
	Tags        []string
	Image       *ImageUpload
}

// UpdateProfileRequest contains the replacement profile fields for the
// calling principal's own account.
type UpdateProfileRequest struct {
	FirstName string
	LastName  string
	Bio       string
	Theme     string
	Image     *ImageUpload
}

// AddCommentRequest contains the content of a new comment on a post.
type AddCommentRequest struct {
	Content string
}
