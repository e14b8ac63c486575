package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/blogware/simple-blog/pkg/simpleblog"
)

// DBTX is an interface that allows us to use either a connection pool or a
// transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements simpleblog.ContentRepository and
// simpleblog.AccountRepository using PostgreSQL
type Repository struct {
	db DBTX
}

var (
	_ simpleblog.ContentRepository = (*Repository)(nil)
	_ simpleblog.AccountRepository = (*Repository)(nil)
)

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Account operations

func (r *Repository) CreateAccount(ctx context.Context, account *simpleblog.Account) error {
	// ON CONFLICT DO NOTHING makes check-and-insert a single indivisible
	// statement: concurrent registrations of one id yield exactly one row.
	query := `
		INSERT INTO accounts (
			id, credential_hash, is_admin, first_name, last_name, bio, theme, image_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`

	tag, err := r.db.Exec(ctx, query,
		account.ID, account.CredentialHash, account.IsAdmin,
		account.Profile.FirstName, account.Profile.LastName,
		account.Profile.Bio, account.Profile.Theme, account.ImageID)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return simpleblog.ErrAccountExists
	}

	return nil
}

func (r *Repository) GetAccount(ctx context.Context, id string) (*simpleblog.Account, error) {
	query := `
		SELECT id, credential_hash, is_admin, first_name, last_name, bio, theme, image_id
		FROM accounts WHERE id = $1`

	var account simpleblog.Account
	err := r.db.QueryRow(ctx, query, id).Scan(
		&account.ID, &account.CredentialHash, &account.IsAdmin,
		&account.Profile.FirstName, &account.Profile.LastName,
		&account.Profile.Bio, &account.Profile.Theme, &account.ImageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simpleblog.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	return &account, nil
}

func (r *Repository) UpdateAccount(ctx context.Context, account *simpleblog.Account) error {
	query := `
		UPDATE accounts SET
			credential_hash = $2, is_admin = $3, first_name = $4,
			last_name = $5, bio = $6, theme = $7, image_id = $8
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		account.ID, account.CredentialHash, account.IsAdmin,
		account.Profile.FirstName, account.Profile.LastName,
		account.Profile.Bio, account.Profile.Theme, account.ImageID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return simpleblog.ErrAccountNotFound
	}

	return nil
}

func (r *Repository) ListAccounts(ctx context.Context) ([]*simpleblog.Account, error) {
	query := `
		SELECT id, credential_hash, is_admin, first_name, last_name, bio, theme, image_id
		FROM accounts ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var result []*simpleblog.Account
	for rows.Next() {
		var account simpleblog.Account
		if err := rows.Scan(
			&account.ID, &account.CredentialHash, &account.IsAdmin,
			&account.Profile.FirstName, &account.Profile.LastName,
			&account.Profile.Bio, &account.Profile.Theme, &account.ImageID); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		result = append(result, &account)
	}

	return result, rows.Err()
}

// Post operations

func (r *Repository) CreatePost(ctx context.Context, post *simpleblog.Post) error {
	query := `
		INSERT INTO posts (
			id, title, content, author_id, status, publish_date,
			tags, image_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		post.ID, post.Title, post.Content, post.AuthorID, post.Status,
		post.PublishDate, post.Tags, post.ImageID, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			// posts reference accounts: the author must exist at creation.
			return simpleblog.ErrAccountNotFound
		}
		return fmt.Errorf("create post: %w", err)
	}

	return nil
}

func (r *Repository) GetPost(ctx context.Context, id uuid.UUID) (*simpleblog.Post, error) {
	query := `
		SELECT id, title, content, author_id, status, publish_date,
		       tags, image_id, created_at, updated_at
		FROM posts WHERE id = $1`

	var post simpleblog.Post
	err := r.db.QueryRow(ctx, query, id).Scan(
		&post.ID, &post.Title, &post.Content, &post.AuthorID, &post.Status,
		&post.PublishDate, &post.Tags, &post.ImageID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simpleblog.ErrPostNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}

	return &post, nil
}

func (r *Repository) UpdatePost(ctx context.Context, post *simpleblog.Post) error {
	query := `
		UPDATE posts SET
			title = $2, content = $3, status = $4, publish_date = $5,
			tags = $6, image_id = $7, updated_at = $8
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		post.ID, post.Title, post.Content, post.Status, post.PublishDate,
		post.Tags, post.ImageID, post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return simpleblog.ErrPostNotFound
	}

	return nil
}

func (r *Repository) DeletePost(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return simpleblog.ErrPostNotFound
	}

	return nil
}

func (r *Repository) ListPosts(ctx context.Context, filter simpleblog.PostFilter) ([]*simpleblog.Post, error) {
	query := `
		SELECT id, title, content, author_id, status, publish_date,
		       tags, image_id, created_at, updated_at
		FROM posts`

	var (
		conds []string
		args  []interface{}
	)
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.AuthorID != nil {
		args = append(args, *filter.AuthorID)
		conds = append(conds, fmt.Sprintf("author_id = $%d", len(args)))
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY publish_date DESC, created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var result []*simpleblog.Post
	for rows.Next() {
		var post simpleblog.Post
		if err := rows.Scan(
			&post.ID, &post.Title, &post.Content, &post.AuthorID, &post.Status,
			&post.PublishDate, &post.Tags, &post.ImageID, &post.CreatedAt, &post.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		result = append(result, &post)
	}

	return result, rows.Err()
}

// Comment operations

func (r *Repository) CreateComment(ctx context.Context, comment *simpleblog.Comment) error {
	query := `
		INSERT INTO comments (id, post_id, author_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		comment.ID, comment.PostID, comment.AuthorID, comment.Content, comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}

	return nil
}

func (r *Repository) ListComments(ctx context.Context, postID uuid.UUID) ([]*simpleblog.Comment, error) {
	query := `
		SELECT id, post_id, author_id, content, created_at
		FROM comments WHERE post_id = $1 ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	result := []*simpleblog.Comment{}
	for rows.Next() {
		var comment simpleblog.Comment
		if err := rows.Scan(
			&comment.ID, &comment.PostID, &comment.AuthorID,
			&comment.Content, &comment.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		result = append(result, &comment)
	}

	return result, rows.Err()
}

func (r *Repository) DeleteCommentsByPost(ctx context.Context, postID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM comments WHERE post_id = $1`, postID)
	if err != nil {
		return fmt.Errorf("delete comments by post: %w", err)
	}

	return nil
}
