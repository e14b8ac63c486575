package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/blogware/simple-blog/pkg/simpleblog"
)

// Repository implements simpleblog.ContentRepository and
// simpleblog.AccountRepository using in-memory storage. All operations copy
// values in and out so callers can never mutate stored state, and every write
// happens under one mutex, which makes account check-and-insert atomic.
type Repository struct {
	mu       sync.RWMutex
	accounts map[string]*simpleblog.Account
	posts    map[uuid.UUID]*simpleblog.Post
	comments map[uuid.UUID]*simpleblog.Comment

	// seq preserves insertion order for stable tie-breaking in listings.
	seq     map[uuid.UUID]uint64
	nextSeq uint64
}

var (
	_ simpleblog.ContentRepository = (*Repository)(nil)
	_ simpleblog.AccountRepository = (*Repository)(nil)
)

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		accounts: make(map[string]*simpleblog.Account),
		posts:    make(map[uuid.UUID]*simpleblog.Post),
		comments: make(map[uuid.UUID]*simpleblog.Comment),
		seq:      make(map[uuid.UUID]uint64),
	}
}

// Account operations

func (r *Repository) CreateAccount(ctx context.Context, account *simpleblog.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.ID]; exists {
		return simpleblog.ErrAccountExists
	}

	accountCopy := *account
	r.accounts[account.ID] = &accountCopy

	return nil
}

func (r *Repository) GetAccount(ctx context.Context, id string) (*simpleblog.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, exists := r.accounts[id]
	if !exists {
		return nil, simpleblog.ErrAccountNotFound
	}

	accountCopy := *account
	return &accountCopy, nil
}

func (r *Repository) UpdateAccount(ctx context.Context, account *simpleblog.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.ID]; !exists {
		return simpleblog.ErrAccountNotFound
	}

	accountCopy := *account
	r.accounts[account.ID] = &accountCopy

	return nil
}

func (r *Repository) ListAccounts(ctx context.Context) ([]*simpleblog.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*simpleblog.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		accountCopy := *account
		result = append(result, &accountCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Post operations

func (r *Repository) CreatePost(ctx context.Context, post *simpleblog.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// The author must exist when the post is created.
	if _, exists := r.accounts[post.AuthorID]; !exists {
		return simpleblog.ErrAccountNotFound
	}

	postCopy := *post
	postCopy.Tags = append([]string(nil), post.Tags...)
	r.posts[post.ID] = &postCopy
	r.seq[post.ID] = r.nextSeq
	r.nextSeq++

	return nil
}

func (r *Repository) GetPost(ctx context.Context, id uuid.UUID) (*simpleblog.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, exists := r.posts[id]
	if !exists {
		return nil, simpleblog.ErrPostNotFound
	}

	postCopy := *post
	postCopy.Tags = append([]string(nil), post.Tags...)
	return &postCopy, nil
}

func (r *Repository) UpdatePost(ctx context.Context, post *simpleblog.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[post.ID]; !exists {
		return simpleblog.ErrPostNotFound
	}

	postCopy := *post
	postCopy.Tags = append([]string(nil), post.Tags...)
	r.posts[post.ID] = &postCopy

	return nil
}

func (r *Repository) DeletePost(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.posts[id]; !exists {
		return simpleblog.ErrPostNotFound
	}

	delete(r.posts, id)
	delete(r.seq, id)
	return nil
}

func (r *Repository) ListPosts(ctx context.Context, filter simpleblog.PostFilter) ([]*simpleblog.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*simpleblog.Post
	for _, post := range r.posts {
		if filter.Status != nil && post.Status != *filter.Status {
			continue
		}
		if filter.AuthorID != nil && post.AuthorID != *filter.AuthorID {
			continue
		}
		postCopy := *post
		postCopy.Tags = append([]string(nil), post.Tags...)
		result = append(result, &postCopy)
	}

	// Publish date descending, insertion order on ties.
	sort.Slice(result, func(i, j int) bool {
		if !result[i].PublishDate.Equal(result[j].PublishDate) {
			return result[i].PublishDate.After(result[j].PublishDate)
		}
		return r.seq[result[i].ID] < r.seq[result[j].ID]
	})

	return result, nil
}

// Comment operations

func (r *Repository) CreateComment(ctx context.Context, comment *simpleblog.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// The owning post must exist when the comment is created.
	if _, exists := r.posts[comment.PostID]; !exists {
		return simpleblog.ErrPostNotFound
	}

	commentCopy := *comment
	r.comments[comment.ID] = &commentCopy
	r.seq[comment.ID] = r.nextSeq
	r.nextSeq++

	return nil
}

func (r *Repository) ListComments(ctx context.Context, postID uuid.UUID) ([]*simpleblog.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*simpleblog.Comment{}
	for _, comment := range r.comments {
		if comment.PostID != postID {
			continue
		}
		commentCopy := *comment
		result = append(result, &commentCopy)
	}

	// Creation time ascending, insertion order on ties.
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return r.seq[result[i].ID] < r.seq[result[j].ID]
	})

	return result, nil
}

func (r *Repository) DeleteCommentsByPost(ctx context.Context, postID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, comment := range r.comments {
		if comment.PostID == postID {
			delete(r.comments, id)
			delete(r.seq, id)
		}
	}

	return nil
}
