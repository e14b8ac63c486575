package simpleblog

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// BlobStore is content-addressed-by-id binary storage for images. Put always
// allocates a fresh id; there is no overwrite-by-id. Get and Delete fail with
// ErrBlobNotFound when the id does not resolve to stored bytes.
type BlobStore interface {
	Put(ctx context.Context, r io.Reader, info BlobInfo) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (io.ReadCloser, *BlobInfo, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ContentRepository persists posts and comments.
//
// ListPosts orders by publish date descending, ListComments by creation time
// ascending; ties break in storage order. The repository does not cascade:
// the comment-never-outlives-post invariant is the Service's to enforce.
type ContentRepository interface {
	CreatePost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*Post, error)
	UpdatePost(ctx context.Context, post *Post) error
	DeletePost(ctx context.Context, id uuid.UUID) error
	ListPosts(ctx context.Context, filter PostFilter) ([]*Post, error)

	CreateComment(ctx context.Context, comment *Comment) error
	ListComments(ctx context.Context, postID uuid.UUID) ([]*Comment, error)
	DeleteCommentsByPost(ctx context.Context, postID uuid.UUID) error
}

// AccountRepository persists accounts.
//
// CreateAccount must enforce id uniqueness atomically (check-and-insert as
// one indivisible storage operation) and fail with ErrAccountExists on a
// duplicate; two concurrent registrations with the same id must not both
// succeed. ListAccounts orders by id ascending.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *Account) error
	GetAccount(ctx context.Context, id string) (*Account, error)
	UpdateAccount(ctx context.Context, account *Account) error
	ListAccounts(ctx context.Context) ([]*Account, error)
}

// CredentialHasher hashes and verifies login secrets. Compare returns a
// non-nil error on mismatch.
type CredentialHasher interface {
	Hash(secret string) (string, error)
	Compare(hash, secret string) error
}

// Sanitizer strips unwanted markup from user-supplied text before storage.
type Sanitizer interface {
	Sanitize(s string) string
}
