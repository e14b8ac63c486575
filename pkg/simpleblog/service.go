package simpleblog

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Service is the orchestrator the rest of the application calls. It composes
// the content repository, the account repository, the blob store, and the
// authorization decision table, and is the one place cross-entity invariants
// (cascade delete, blob association) are enforced.
type Service interface {
	// Account operations
	Register(ctx context.Context, req RegisterRequest) (*Account, error)
	Login(ctx context.Context, id, secret string) (Principal, error)
	GetAccount(ctx context.Context, id string) (*Account, error)
	ListAccounts(ctx context.Context, principal Principal) ([]*Account, error)
	UpdateProfile(ctx context.Context, principal Principal, req UpdateProfileRequest) (*Account, error)

	// Post operations
	CreatePost(ctx context.Context, principal Principal, req CreatePostRequest) (*Post, error)
	GetPost(ctx context.Context, id uuid.UUID) (*Post, error)
	EditPost(ctx context.Context, principal Principal, id uuid.UUID, req UpdatePostRequest) (*Post, error)
	DeletePost(ctx context.Context, principal Principal, id uuid.UUID) error
	ListPosts(ctx context.Context, filter PostFilter) ([]*Post, error)

	// Comment operations
	AddComment(ctx context.Context, principal Principal, postID uuid.UUID, req AddCommentRequest) (*Comment, error)
	ListComments(ctx context.Context, postID uuid.UUID) ([]*Comment, error)

	// Image retrieval for streaming binary responses
	GetImage(ctx context.Context, id uuid.UUID) (io.ReadCloser, *BlobInfo, error)
}
