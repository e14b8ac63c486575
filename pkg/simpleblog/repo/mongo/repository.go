// Package mongo provides a MongoDB implementation of the content and
// account repositories.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/blogware/simple-blog/pkg/simpleblog"
)

// Repository implements simpleblog.ContentRepository and
// simpleblog.AccountRepository on top of a MongoDB database.
type Repository struct {
	accounts *mongo.Collection
	posts    *mongo.Collection
	comments *mongo.Collection
}

var (
	_ simpleblog.ContentRepository = (*Repository)(nil)
	_ simpleblog.AccountRepository = (*Repository)(nil)
)

// Connect opens a client connection and pings the server. The caller should
// call client.Disconnect(ctx) on shutdown.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// New creates a repository over the named database and ensures its indexes.
func New(ctx context.Context, db *mongo.Database) (*Repository, error) {
	r := &Repository{
		accounts: db.Collection("accounts"),
		posts:    db.Collection("posts"),
		comments: db.Collection("comments"),
	}

	// Accounts are keyed by _id, which MongoDB already indexes uniquely,
	// so CreateAccount is an atomic check-and-insert with no extra index.
	_, err := r.comments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("ensure comment index: %w", err)
	}

	return r, nil
}

type accountDoc struct {
	ID             string  `bson:"_id"`
	CredentialHash string  `bson:"credential_hash"`
	IsAdmin        bool    `bson:"is_admin"`
	FirstName      string  `bson:"first_name"`
	LastName       string  `bson:"last_name"`
	Bio            string  `bson:"bio"`
	Theme          string  `bson:"theme"`
	ImageID        *string `bson:"image_id,omitempty"`
}

type postDoc struct {
	ID          string     `bson:"_id"`
	Title       string     `bson:"title"`
	Content     string     `bson:"content"`
	AuthorID    string     `bson:"author_id"`
	Status      string     `bson:"status"`
	PublishDate time.Time  `bson:"publish_date"`
	Tags        []string   `bson:"tags"`
	ImageID     *string    `bson:"image_id,omitempty"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   *time.Time `bson:"updated_at,omitempty"`
}

type commentDoc struct {
	ID        string    `bson:"_id"`
	PostID    string    `bson:"post_id"`
	AuthorID  string    `bson:"author_id"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
}

func toAccountDoc(a *simpleblog.Account) accountDoc {
	doc := accountDoc{
		ID:             a.ID,
		CredentialHash: a.CredentialHash,
		IsAdmin:        a.IsAdmin,
		FirstName:      a.Profile.FirstName,
		LastName:       a.Profile.LastName,
		Bio:            a.Profile.Bio,
		Theme:          a.Profile.Theme,
	}
	if a.ImageID != nil {
		s := a.ImageID.String()
		doc.ImageID = &s
	}
	return doc
}

func (d accountDoc) toAccount() (*simpleblog.Account, error) {
	a := &simpleblog.Account{
		ID:             d.ID,
		CredentialHash: d.CredentialHash,
		IsAdmin:        d.IsAdmin,
		Profile: simpleblog.Profile{
			FirstName: d.FirstName,
			LastName:  d.LastName,
			Bio:       d.Bio,
			Theme:     d.Theme,
		},
	}
	if d.ImageID != nil {
		id, err := uuid.Parse(*d.ImageID)
		if err != nil {
			return nil, fmt.Errorf("parse account image id: %w", err)
		}
		a.ImageID = &id
	}
	return a, nil
}

func toPostDoc(p *simpleblog.Post) postDoc {
	doc := postDoc{
		ID:          p.ID.String(),
		Title:       p.Title,
		Content:     p.Content,
		AuthorID:    p.AuthorID,
		Status:      string(p.Status),
		PublishDate: p.PublishDate,
		Tags:        p.Tags,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	if p.ImageID != nil {
		s := p.ImageID.String()
		doc.ImageID = &s
	}
	return doc
}

func (d postDoc) toPost() (*simpleblog.Post, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("parse post id: %w", err)
	}
	p := &simpleblog.Post{
		ID:          id,
		Title:       d.Title,
		Content:     d.Content,
		AuthorID:    d.AuthorID,
		Status:      simpleblog.PostStatus(d.Status),
		PublishDate: d.PublishDate,
		Tags:        d.Tags,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.ImageID != nil {
		imgID, err := uuid.Parse(*d.ImageID)
		if err != nil {
			return nil, fmt.Errorf("parse post image id: %w", err)
		}
		p.ImageID = &imgID
	}
	return p, nil
}

// Account operations

func (r *Repository) CreateAccount(ctx context.Context, account *simpleblog.Account) error {
	_, err := r.accounts.InsertOne(ctx, toAccountDoc(account))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return simpleblog.ErrAccountExists
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *Repository) GetAccount(ctx context.Context, id string) (*simpleblog.Account, error) {
	var doc accountDoc
	if err := r.accounts.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, simpleblog.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return doc.toAccount()
}

func (r *Repository) UpdateAccount(ctx context.Context, account *simpleblog.Account) error {
	res, err := r.accounts.ReplaceOne(ctx, bson.M{"_id": account.ID}, toAccountDoc(account))
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return simpleblog.ErrAccountNotFound
	}
	return nil
}

func (r *Repository) ListAccounts(ctx context.Context) ([]*simpleblog.Account, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := r.accounts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer cur.Close(ctx)

	var result []*simpleblog.Account
	for cur.Next(ctx) {
		var doc accountDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		account, err := doc.toAccount()
		if err != nil {
			return nil, err
		}
		result = append(result, account)
	}
	return result, cur.Err()
}

// Post operations

func (r *Repository) CreatePost(ctx context.Context, post *simpleblog.Post) error {
	// Mongo has no foreign keys; the author must exist when the post is
	// created, as the SQL backend's constraint enforces.
	n, err := r.accounts.CountDocuments(ctx, bson.M{"_id": post.AuthorID})
	if err != nil {
		return fmt.Errorf("check post author: %w", err)
	}
	if n == 0 {
		return simpleblog.ErrAccountNotFound
	}

	if _, err := r.posts.InsertOne(ctx, toPostDoc(post)); err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (r *Repository) GetPost(ctx context.Context, id uuid.UUID) (*simpleblog.Post, error) {
	var doc postDoc
	if err := r.posts.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, simpleblog.ErrPostNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return doc.toPost()
}

func (r *Repository) UpdatePost(ctx context.Context, post *simpleblog.Post) error {
	res, err := r.posts.ReplaceOne(ctx, bson.M{"_id": post.ID.String()}, toPostDoc(post))
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return simpleblog.ErrPostNotFound
	}
	return nil
}

func (r *Repository) DeletePost(ctx context.Context, id uuid.UUID) error {
	res, err := r.posts.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return simpleblog.ErrPostNotFound
	}
	return nil
}

func (r *Repository) ListPosts(ctx context.Context, filter simpleblog.PostFilter) ([]*simpleblog.Post, error) {
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = string(*filter.Status)
	}
	if filter.AuthorID != nil {
		query["author_id"] = *filter.AuthorID
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "publish_date", Value: -1},
		{Key: "created_at", Value: -1},
	})
	cur, err := r.posts.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer cur.Close(ctx)

	var result []*simpleblog.Post
	for cur.Next(ctx) {
		var doc postDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode post: %w", err)
		}
		post, err := doc.toPost()
		if err != nil {
			return nil, err
		}
		result = append(result, post)
	}
	return result, cur.Err()
}

// Comment operations

func (r *Repository) CreateComment(ctx context.Context, comment *simpleblog.Comment) error {
	doc := commentDoc{
		ID:        comment.ID.String(),
		PostID:    comment.PostID.String(),
		AuthorID:  comment.AuthorID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
	if _, err := r.comments.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

func (r *Repository) ListComments(ctx context.Context, postID uuid.UUID) ([]*simpleblog.Comment, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	cur, err := r.comments.Find(ctx, bson.M{"post_id": postID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer cur.Close(ctx)

	result := []*simpleblog.Comment{}
	for cur.Next(ctx) {
		var doc commentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode comment: %w", err)
		}
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			return nil, fmt.Errorf("parse comment id: %w", err)
		}
		pid, err := uuid.Parse(doc.PostID)
		if err != nil {
			return nil, fmt.Errorf("parse comment post id: %w", err)
		}
		result = append(result, &simpleblog.Comment{
			ID:        id,
			PostID:    pid,
			AuthorID:  doc.AuthorID,
			Content:   doc.Content,
			CreatedAt: doc.CreatedAt,
		})
	}
	return result, cur.Err()
}

func (r *Repository) DeleteCommentsByPost(ctx context.Context, postID uuid.UUID) error {
	if _, err := r.comments.DeleteMany(ctx, bson.M{"post_id": postID.String()}); err != nil {
		return fmt.Errorf("delete comments by post: %w", err)
	}
	return nil
}
