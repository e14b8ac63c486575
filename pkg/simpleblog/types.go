package simpleblog

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus is the domain type for post visibility states.
type PostStatus string

// Post status constants (typed).
const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// IsValid reports whether the status is one of the known lifecycle states.
func (s PostStatus) IsValid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished:
		return true
	}
	return false
}

// Account represents a registered author. The ID is the account's email
// address and is immutable once registered.
type Account struct {
	ID             string     `json:"id"`
	CredentialHash string     `json:"-"`
	IsAdmin        bool       `json:"is_admin"`
	Profile        Profile    `json:"profile"`
	ImageID        *uuid.UUID `json:"image_id,omitempty"`
}

// Profile holds the optional descriptive fields of an account.
type Profile struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Theme     string `json:"theme,omitempty"`
}

// Post represents a blog article. AuthorID references an Account and is
// immutable after creation. Status is the single source of truth for public
// visibility: published posts appear in public listings, drafts only in
// author/admin views.
type Post struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	AuthorID    string     `json:"author_id"`
	Status      PostStatus `json:"status"`
	PublishDate time.Time  `json:"publish_date"`
	Tags        []string   `json:"tags"`
	ImageID     *uuid.UUID `json:"image_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// Comment represents a reader comment on a post. Comments are never edited
// and are removed only as a cascade side effect of deleting their post.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Principal is the identity performing a request. The zero value is the
// anonymous principal.
type Principal struct {
	ID    string `json:"id"`
	Admin bool   `json:"admin"`
	Theme string `json:"theme,omitempty"`
}

// Anonymous reports whether the principal carries no authenticated identity.
func (p Principal) Anonymous() bool {
	return p.ID == ""
}

// BlobInfo describes a stored binary blob. Size is filled in by the blob
// store on write and on read; callers supplying an upload may leave it zero.
type BlobInfo struct {
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size,omitempty"`
}

// PostFilter restricts a post listing. Nil fields match everything. Results
// are always ordered by publish date descending, ties in storage order.
type PostFilter struct {
	Status   *PostStatus
	AuthorID *string
}
