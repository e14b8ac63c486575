package simpleblog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	content   ContentRepository
	accounts  AccountRepository
	blobs     BlobStore
	hasher    CredentialHasher
	sanitizer Sanitizer
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithContentRepository sets the post/comment repository for the service
func WithContentRepository(repo ContentRepository) Option {
	return func(s *service) {
		s.content = repo
	}
}

// WithAccountRepository sets the account repository for the service
func WithAccountRepository(repo AccountRepository) Option {
	return func(s *service) {
		s.accounts = repo
	}
}

// WithBlobStore sets the binary image store for the service
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobs = store
	}
}

// WithCredentialHasher overrides the default bcrypt hasher
func WithCredentialHasher(h CredentialHasher) Option {
	return func(s *service) {
		s.hasher = h
	}
}

// WithSanitizer overrides the default strict HTML sanitizer
func WithSanitizer(sz Sanitizer) Option {
	return func(s *service) {
		s.sanitizer = sz
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		hasher:    NewBcryptHasher(0),
		sanitizer: NewStrictSanitizer(),
	}

	for _, option := range options {
		option(s)
	}

	if s.content == nil {
		return nil, fmt.Errorf("content repository is required")
	}
	if s.accounts == nil {
		return nil, fmt.Errorf("account repository is required")
	}
	if s.blobs == nil {
		return nil, fmt.Errorf("blob store is required")
	}

	return s, nil
}

// Account operations

func (s *service) Register(ctx context.Context, req RegisterRequest) (*Account, error) {
	if strings.TrimSpace(req.ID) == "" {
		return nil, validationError("id")
	}
	if req.Secret == "" {
		return nil, validationError("secret")
	}

	hash, err := s.hasher.Hash(req.Secret)
	if err != nil {
		return nil, fmt.Errorf("hash credentials: %w", err)
	}

	account := &Account{
		ID:             req.ID,
		CredentialHash: hash,
	}

	// Uniqueness is the repository's to enforce atomically; a duplicate id
	// surfaces as ErrAccountExists without touching the existing account.
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

func (s *service) Login(ctx context.Context, id, secret string) (Principal, error) {
	account, err := s.accounts.GetAccount(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			// Unknown id and wrong secret must be indistinguishable,
			// in outcome and in timing.
			_ = s.hasher.Compare(dummyCredentialHash, secret)
			return Principal{}, ErrInvalidCredentials
		}
		return Principal{}, err
	}

	if err := s.hasher.Compare(account.CredentialHash, secret); err != nil {
		return Principal{}, ErrInvalidCredentials
	}

	return Principal{ID: account.ID, Admin: account.IsAdmin, Theme: account.Profile.Theme}, nil
}

func (s *service) GetAccount(ctx context.Context, id string) (*Account, error) {
	return s.accounts.GetAccount(ctx, id)
}

func (s *service) ListAccounts(ctx context.Context, principal Principal) ([]*Account, error) {
	if err := Authorize(principal, ActionListAccounts, Target{}); err != nil {
		return nil, err
	}
	return s.accounts.ListAccounts(ctx)
}

func (s *service) UpdateProfile(ctx context.Context, principal Principal, req UpdateProfileRequest) (*Account, error) {
	// Authorize against the caller's own id before touching the repository
	// so anonymous callers are denied rather than told "not found".
	if err := Authorize(principal, ActionUpdateProfile, Target{OwnerID: principal.ID}); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetAccount(ctx, principal.ID)
	if err != nil {
		return nil, err
	}

	account.Profile = Profile{
		FirstName: s.sanitizer.Sanitize(req.FirstName),
		LastName:  s.sanitizer.Sanitize(req.LastName),
		Bio:       s.sanitizer.Sanitize(req.Bio),
		Theme:     req.Theme,
	}

	if req.Image != nil {
		// Release the previous profile image before storing its
		// replacement: a blob has exactly one owning document.
		if account.ImageID != nil {
			if err := s.blobs.Delete(ctx, *account.ImageID); err != nil && !errors.Is(err, ErrBlobNotFound) {
				return nil, fmt.Errorf("release profile image %s: %w", account.ImageID, err)
			}
		}
		blobID, err := s.putImage(ctx, req.Image)
		if err != nil {
			return nil, err
		}
		account.ImageID = &blobID
	}

	if err := s.accounts.UpdateAccount(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// Post operations

func (s *service) CreatePost(ctx context.Context, principal Principal, req CreatePostRequest) (*Post, error) {
	if err := Authorize(principal, ActionCreatePost, Target{}); err != nil {
		return nil, err
	}
	if err := validatePostFields(req.Title, req.Content, req.Status); err != nil {
		return nil, err
	}

	post := &Post{
		ID:          uuid.New(),
		Title:       req.Title,
		Content:     req.Content,
		AuthorID:    principal.ID,
		Status:      req.Status,
		PublishDate: dateOnly(req.PublishDate),
		Tags:        req.Tags,
		CreatedAt:   time.Now().UTC(),
	}

	if req.Image != nil {
		blobID, err := s.putImage(ctx, req.Image)
		if err != nil {
			return nil, err
		}
		post.ImageID = &blobID
	}

	if err := s.content.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

func (s *service) GetPost(ctx context.Context, id uuid.UUID) (*Post, error) {
	// Single-post view is always permitted; draft visibility is filtered at
	// the listing query, not here.
	return s.content.GetPost(ctx, id)
}

func (s *service) EditPost(ctx context.Context, principal Principal, id uuid.UUID, req UpdatePostRequest) (*Post, error) {
	post, err := s.content.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := Authorize(principal, ActionEditPost, PostTarget(post)); err != nil {
		return nil, err
	}
	if err := validatePostFields(req.Title, req.Content, req.Status); err != nil {
		return nil, err
	}

	post.Title = req.Title
	post.Content = req.Content
	post.Status = req.Status
	post.PublishDate = dateOnly(req.PublishDate)
	post.Tags = req.Tags
	now := time.Now().UTC()
	post.UpdatedAt = &now

	if req.Image != nil {
		// A replaced post image does not release the previous blob; only
		// profile images are released on replace.
		blobID, err := s.putImage(ctx, req.Image)
		if err != nil {
			return nil, err
		}
		post.ImageID = &blobID
	}

	if err := s.content.UpdatePost(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

func (s *service) DeletePost(ctx context.Context, principal Principal, id uuid.UUID) error {
	post, err := s.content.GetPost(ctx, id)
	if err != nil {
		return err
	}

	if err := Authorize(principal, ActionDeletePost, PostTarget(post)); err != nil {
		return err
	}

	// Comments go first so no comment ever references a deleted post.
	if err := s.content.DeleteCommentsByPost(ctx, id); err != nil {
		return fmt.Errorf("delete comments of post %s: %w", id, err)
	}

	if err := s.content.DeletePost(ctx, id); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			// Lost a race with a concurrently permitted delete.
			return err
		}
		return &PartialDeleteError{PostID: id, Err: err}
	}

	if post.ImageID != nil {
		if err := s.blobs.Delete(ctx, *post.ImageID); err != nil && !errors.Is(err, ErrBlobNotFound) {
			return fmt.Errorf("release image of deleted post %s: %w", id, err)
		}
	}

	return nil
}

func (s *service) ListPosts(ctx context.Context, filter PostFilter) ([]*Post, error) {
	return s.content.ListPosts(ctx, filter)
}

// Comment operations

func (s *service) AddComment(ctx context.Context, principal Principal, postID uuid.UUID, req AddCommentRequest) (*Comment, error) {
	if err := Authorize(principal, ActionCreateComment, Target{}); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, validationError("content")
	}

	if _, err := s.content.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	comment := &Comment{
		ID:        uuid.New(),
		PostID:    postID,
		AuthorID:  principal.ID,
		Content:   s.sanitizer.Sanitize(req.Content),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.content.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

func (s *service) ListComments(ctx context.Context, postID uuid.UUID) ([]*Comment, error) {
	return s.content.ListComments(ctx, postID)
}

// Image retrieval

func (s *service) GetImage(ctx context.Context, id uuid.UUID) (io.ReadCloser, *BlobInfo, error) {
	return s.blobs.Get(ctx, id)
}

// helpers

func (s *service) putImage(ctx context.Context, img *ImageUpload) (uuid.UUID, error) {
	info := BlobInfo{
		Filename:    img.Filename,
		ContentType: img.ContentType,
	}
	id, err := s.blobs.Put(ctx, img.Data, info)
	if err != nil {
		return uuid.Nil, fmt.Errorf("store image: %w", err)
	}
	return id, nil
}

func validatePostFields(title, content string, status PostStatus) error {
	if strings.TrimSpace(title) == "" {
		return validationError("title")
	}
	if strings.TrimSpace(content) == "" {
		return validationError("content")
	}
	if !status.IsValid() {
		return fmt.Errorf("%w: invalid status %q", ErrValidation, status)
	}
	return nil
}

// dateOnly drops the time-of-day component; publish dates are days.
func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
