package simpleblog_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogware/simple-blog/pkg/simpleblog"
	repomemory "github.com/blogware/simple-blog/pkg/simpleblog/repo/memory"
	memorystorage "github.com/blogware/simple-blog/pkg/simpleblog/storage/memory"
)

type testEnv struct {
	svc   simpleblog.Service
	repo  *repomemory.Repository
	blobs *memorystorage.Backend
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := repomemory.New()
	blobs := memorystorage.New()

	svc, err := simpleblog.New(
		simpleblog.WithContentRepository(repo),
		simpleblog.WithAccountRepository(repo),
		simpleblog.WithBlobStore(blobs),
		simpleblog.WithCredentialHasher(simpleblog.NewBcryptHasher(4)),
	)
	require.NoError(t, err)

	return &testEnv{svc: svc, repo: repo, blobs: blobs}
}

// register creates an account through the service and returns its principal.
func (e *testEnv) register(t *testing.T, email, password string) simpleblog.Principal {
	t.Helper()
	ctx := context.Background()

	_, err := e.svc.Register(ctx, simpleblog.RegisterRequest{ID: email, Secret: password})
	require.NoError(t, err)

	principal, err := e.svc.Login(ctx, email, password)
	require.NoError(t, err)
	return principal
}

// registerAdmin creates an account and flips its admin flag directly in the
// repository, the way an operator would out of band.
func (e *testEnv) registerAdmin(t *testing.T, email, password string) simpleblog.Principal {
	t.Helper()
	ctx := context.Background()

	e.register(t, email, password)
	account, err := e.repo.GetAccount(ctx, email)
	require.NoError(t, err)
	account.IsAdmin = true
	require.NoError(t, e.repo.UpdateAccount(ctx, account))

	principal, err := e.svc.Login(ctx, email, password)
	require.NoError(t, err)
	require.True(t, principal.Admin)
	return principal
}

func (e *testEnv) createPost(t *testing.T, p simpleblog.Principal, title string, status simpleblog.PostStatus) *simpleblog.Post {
	t.Helper()
	post, err := e.svc.CreatePost(context.Background(), p, simpleblog.CreatePostRequest{
		Title:       title,
		Content:     "some content",
		Status:      status,
		PublishDate: time.Now(),
	})
	require.NoError(t, err)
	return post
}

func testImage(content string) *simpleblog.ImageUpload {
	return &simpleblog.ImageUpload{
		Data:        strings.NewReader(content),
		Filename:    "photo.png",
		ContentType: "image/png",
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		env := newTestEnv(t)

		account, err := env.svc.Register(ctx, simpleblog.RegisterRequest{
			ID:     "alice@example.com",
			Secret: "s3cret",
		})
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", account.ID)
		assert.False(t, account.IsAdmin)
		assert.NotEmpty(t, account.CredentialHash)
		assert.NotEqual(t, "s3cret", account.CredentialHash)
	})

	t.Run("duplicate id conflicts and keeps original", func(t *testing.T) {
		env := newTestEnv(t)

		first, err := env.svc.Register(ctx, simpleblog.RegisterRequest{
			ID:     "alice@example.com",
			Secret: "original",
		})
		require.NoError(t, err)

		_, err = env.svc.Register(ctx, simpleblog.RegisterRequest{
			ID:     "alice@example.com",
			Secret: "other",
		})
		assert.ErrorIs(t, err, simpleblog.ErrAccountExists)

		stored, err := env.repo.GetAccount(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, first.CredentialHash, stored.CredentialHash)
	})

	t.Run("missing fields", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.svc.Register(ctx, simpleblog.RegisterRequest{Secret: "s3cret"})
		assert.ErrorIs(t, err, simpleblog.ErrValidation)

		_, err = env.svc.Register(ctx, simpleblog.RegisterRequest{ID: "alice@example.com"})
		assert.ErrorIs(t, err, simpleblog.ErrValidation)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "alice@example.com", "s3cret")

	t.Run("success", func(t *testing.T) {
		principal, err := env.svc.Login(ctx, "alice@example.com", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", principal.ID)
		assert.False(t, principal.Admin)
		assert.False(t, principal.Anonymous())
	})

	t.Run("wrong secret and unknown id are indistinguishable", func(t *testing.T) {
		_, errWrong := env.svc.Login(ctx, "alice@example.com", "nope")
		_, errUnknown := env.svc.Login(ctx, "nobody@example.com", "nope")

		assert.ErrorIs(t, errWrong, simpleblog.ErrInvalidCredentials)
		assert.ErrorIs(t, errUnknown, simpleblog.ErrInvalidCredentials)
		assert.Equal(t, errWrong.Error(), errUnknown.Error())
	})
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("success with image", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.register(t, "alice@example.com", "pw")

		post, err := env.svc.CreatePost(ctx, alice, simpleblog.CreatePostRequest{
			Title:       "Hello",
			Content:     "First post.",
			Status:      simpleblog.PostStatusPublished,
			PublishDate: time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC),
			Tags:        []string{"intro"},
			Image:       testImage("png-bytes"),
		})
		require.NoError(t, err)

		assert.Equal(t, alice.ID, post.AuthorID)
		assert.NotEqual(t, uuid.Nil, post.ID)
		assert.False(t, post.CreatedAt.IsZero())
		assert.Nil(t, post.UpdatedAt)
		// Publish dates are day-granular.
		assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), post.PublishDate)

		require.NotNil(t, post.ImageID)
		body, info, err := env.svc.GetImage(ctx, *post.ImageID)
		require.NoError(t, err)
		defer body.Close()
		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(data))
		assert.Equal(t, "image/png", info.ContentType)
	})

	t.Run("anonymous is forbidden", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.svc.CreatePost(ctx, simpleblog.Principal{}, simpleblog.CreatePostRequest{
			Title:   "Hello",
			Content: "body",
			Status:  simpleblog.PostStatusDraft,
		})
		assert.ErrorIs(t, err, simpleblog.ErrForbidden)
	})

	t.Run("validation", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.register(t, "alice@example.com", "pw")

		_, err := env.svc.CreatePost(ctx, alice, simpleblog.CreatePostRequest{
			Content: "body", Status: simpleblog.PostStatusDraft,
		})
		assert.ErrorIs(t, err, simpleblog.ErrValidation)

		_, err = env.svc.CreatePost(ctx, alice, simpleblog.CreatePostRequest{
			Title: "t", Content: "body", Status: "archived",
		})
		assert.ErrorIs(t, err, simpleblog.ErrValidation)
	})
}

func TestEditPost(t *testing.T) {
	ctx := context.Background()

	t.Run("author edits own post", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.register(t, "alice@example.com", "pw")
		post := env.createPost(t, alice, "Draft", simpleblog.PostStatusDraft)

		updated, err := env.svc.EditPost(ctx, alice, post.ID, simpleblog.UpdatePostRequest{
			Title:       "Published now",
			Content:     "rewritten",
			Status:      simpleblog.PostStatusPublished,
			PublishDate: time.Now(),
			Tags:        []string{"news"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Published now", updated.Title)
		assert.Equal(t, simpleblog.PostStatusPublished, updated.Status)
		assert.NotNil(t, updated.UpdatedAt)
		// Author and creation time never change on edit.
		assert.Equal(t, post.AuthorID, updated.AuthorID)
		assert.Equal(t, post.CreatedAt, updated.CreatedAt)
	})

	t.Run("non-author is forbidden, admin is not", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.register(t, "alice@example.com", "pw")
		bob := env.register(t, "bob@example.com", "pw")
		admin := env.registerAdmin(t, "root@example.com", "pw")
		post := env.createPost(t, alice, "Mine", simpleblog.PostStatusPublished)

		req := simpleblog.UpdatePostRequest{
			Title: "Taken over", Content: "x",
			Status: simpleblog.PostStatusPublished, PublishDate: time.Now(),
		}

		_, err := env.svc.EditPost(ctx, bob, post.ID, req)
		assert.ErrorIs(t, err, simpleblog.ErrForbidden)

		_, err = env.svc.EditPost(ctx, admin, post.ID, req)
		assert.NoError(t, err)
	})

	t.Run("new image replaces reference without releasing old blob", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.register(t, "alice@example.com", "pw")

		post, err := env.svc.CreatePost(ctx, alice, simpleblog.CreatePostRequest{
			Title: "Pic", Content: "x",
			Status: simpleblog.PostStatusPublished, PublishDate: time.Now(),
			Image: testImage("old"),
		})
		require.NoError(t, err)
		oldImageID := *post.ImageID

		updated, err := env.svc.EditPost(ctx, alice, post.ID, simpleblog.UpdatePostRequest{
			Title: "Pic", Content: "x",
			Status: simpleblog.PostStatusPublished, PublishDate: time.Now(),
			Image: testImage("new"),
		})
		require.NoError(t, err)
		assert.NotEqual(t, oldImageID, *updated.ImageID)

		// Post image replacement keeps the previous blob around.
		_, _, err = env.svc.GetImage(ctx, oldImageID)
		assert.NoError(t, err)
		assert.Equal(t, 2, env.blobs.Len())
	})

	t.Run("no image keeps existing reference", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.register(t, "alice@example.com", "pw")

		post, err := env.svc.CreatePost(ctx, alice, simpleblog.CreatePostRequest{
			Title: "Pic", Content: "x",
			Status: simpleblog.PostStatusPublished, PublishDate: time.Now(),
			Image: testImage("only"),
		})
		require.NoError(t, err)

		updated, err := env.svc.EditPost(ctx, alice, post.ID, simpleblog.UpdatePostRequest{
			Title: "Pic v2", Content: "x",
			Status: simpleblog.PostStatusPublished, PublishDate: time.Now(),
		})
		require.NoError(t, err)
		assert.Equal(t, post.ImageID, updated.ImageID)
	})

	t.Run("missing post", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.register(t, "alice@example.com", "pw")

		_, err := env.svc.EditPost(ctx, alice, uuid.New(), simpleblog.UpdatePostRequest{
			Title: "t", Content: "c", Status: simpleblog.PostStatusDraft, PublishDate: time.Now(),
		})
		assert.ErrorIs(t, err, simpleblog.ErrPostNotFound)
	})
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()

	t.Run("cascade removes comments and releases image", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.register(t, "alice@example.com", "pw")
		bob := env.register(t, "bob@example.com", "pw")

		post, err := env.svc.CreatePost(ctx, alice, simpleblog.CreatePostRequest{
			Title: "Doomed", Content: "x",
			Status: simpleblog.PostStatusPublished, PublishDate: time.Now(),
			Image: testImage("img"),
		})
		require.NoError(t, err)

		for _, text := range []string{"first", "second"} {
			_, err := env.svc.AddComment(ctx, bob, post.ID, simpleblog.AddCommentRequest{Content: text})
			require.NoError(t, err)
		}

		require.NoError(t, env.svc.DeletePost(ctx, alice, post.ID))

		_, err = env.svc.GetPost(ctx, post.ID)
		assert.ErrorIs(t, err, simpleblog.ErrPostNotFound)

		comments, err := env.svc.ListComments(ctx, post.ID)
		require.NoError(t, err)
		assert.Empty(t, comments)

		_, _, err = env.svc.GetImage(ctx, *post.ImageID)
		assert.ErrorIs(t, err, simpleblog.ErrBlobNotFound)
		assert.Equal(t, 0, env.blobs.Len())
	})

	t.Run("non-author is forbidden and nothing is deleted", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.register(t, "alice@example.com", "pw")
		bob := env.register(t, "bob@example.com", "pw")
		post := env.createPost(t, alice, "Mine", simpleblog.PostStatusPublished)

		err := env.svc.DeletePost(ctx, bob, post.ID)
		assert.ErrorIs(t, err, simpleblog.ErrForbidden)

		_, err = env.svc.GetPost(ctx, post.ID)
		assert.NoError(t, err)
	})

	t.Run("admin deletes any post", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.register(t, "alice@example.com", "pw")
		admin := env.registerAdmin(t, "root@example.com", "pw")
		post := env.createPost(t, alice, "Mine", simpleblog.PostStatusPublished)

		require.NoError(t, env.svc.DeletePost(ctx, admin, post.ID))
	})

	t.Run("missing post", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.register(t, "alice@example.com", "pw")

		err := env.svc.DeletePost(ctx, alice, uuid.New())
		assert.ErrorIs(t, err, simpleblog.ErrPostNotFound)
	})

	t.Run("post delete failing after cascade reports partial delete", func(t *testing.T) {
		env := newTestEnv(t)
		content := &failingContentRepository{Repository: env.repo}
		svc, err := simpleblog.New(
			simpleblog.WithContentRepository(content),
			simpleblog.WithAccountRepository(env.repo),
			simpleblog.WithBlobStore(env.blobs),
			simpleblog.WithCredentialHasher(simpleblog.NewBcryptHasher(4)),
		)
		require.NoError(t, err)

		alice := env.register(t, "alice@example.com", "pw")
		post := env.createPost(t, alice, "Stuck", simpleblog.PostStatusPublished)
		_, err = svc.AddComment(ctx, alice, post.ID, simpleblog.AddCommentRequest{Content: "gone first"})
		require.NoError(t, err)

		content.deletePostErr = errors.New("storage down")
		err = svc.DeletePost(ctx, alice, post.ID)

		var partial *simpleblog.PartialDeleteError
		require.ErrorAs(t, err, &partial)
		assert.Equal(t, post.ID, partial.PostID)

		// Comments were removed before the post delete failed.
		comments, err := env.repo.ListComments(ctx, post.ID)
		require.NoError(t, err)
		assert.Empty(t, comments)
		_, err = env.repo.GetPost(ctx, post.ID)
		assert.NoError(t, err)
	})

	t.Run("losing the delete race is not a partial delete", func(t *testing.T) {
		env := newTestEnv(t)
		content := &failingContentRepository{Repository: env.repo}
		svc, err := simpleblog.New(
			simpleblog.WithContentRepository(content),
			simpleblog.WithAccountRepository(env.repo),
			simpleblog.WithBlobStore(env.blobs),
			simpleblog.WithCredentialHasher(simpleblog.NewBcryptHasher(4)),
		)
		require.NoError(t, err)

		alice := env.register(t, "alice@example.com", "pw")
		post := env.createPost(t, alice, "Raced", simpleblog.PostStatusPublished)

		content.deletePostErr = simpleblog.ErrPostNotFound
		err = svc.DeletePost(ctx, alice, post.ID)
		assert.ErrorIs(t, err, simpleblog.ErrPostNotFound)

		var partial *simpleblog.PartialDeleteError
		assert.False(t, errors.As(err, &partial))
	})
}

// failingContentRepository injects a DeletePost failure after the rest of the
// repository behaved normally.
type failingContentRepository struct {
	*repomemory.Repository
	deletePostErr error
}

func (r *failingContentRepository) DeletePost(ctx context.Context, id uuid.UUID) error {
	if r.deletePostErr != nil {
		return r.deletePostErr
	}
	return r.Repository.DeletePost(ctx, id)
}

func TestListPosts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.register(t, "alice@example.com", "pw")
	bob := env.register(t, "bob@example.com", "pw")

	mkPost := func(p simpleblog.Principal, title string, status simpleblog.PostStatus, day int) {
		_, err := env.svc.CreatePost(ctx, p, simpleblog.CreatePostRequest{
			Title: title, Content: "x", Status: status,
			PublishDate: time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}
	mkPost(alice, "oldest", simpleblog.PostStatusPublished, 1)
	mkPost(bob, "newest", simpleblog.PostStatusPublished, 20)
	mkPost(alice, "middle", simpleblog.PostStatusPublished, 10)
	mkPost(alice, "hidden draft", simpleblog.PostStatusDraft, 15)

	t.Run("published newest first", func(t *testing.T) {
		published := simpleblog.PostStatusPublished
		posts, err := env.svc.ListPosts(ctx, simpleblog.PostFilter{Status: &published})
		require.NoError(t, err)

		titles := make([]string, len(posts))
		for i, p := range posts {
			titles[i] = p.Title
		}
		assert.Equal(t, []string{"newest", "middle", "oldest"}, titles)
	})

	t.Run("filter by author", func(t *testing.T) {
		posts, err := env.svc.ListPosts(ctx, simpleblog.PostFilter{AuthorID: &alice.ID})
		require.NoError(t, err)
		assert.Len(t, posts, 3)
		for _, p := range posts {
			assert.Equal(t, alice.ID, p.AuthorID)
		}
	})

	t.Run("no filter returns everything", func(t *testing.T) {
		posts, err := env.svc.ListPosts(ctx, simpleblog.PostFilter{})
		require.NoError(t, err)
		assert.Len(t, posts, 4)
	})
}

func TestAddComment(t *testing.T) {
	ctx := context.Background()

	t.Run("comments listed oldest first", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.register(t, "alice@example.com", "pw")
		bob := env.register(t, "bob@example.com", "pw")
		post := env.createPost(t, alice, "Discuss", simpleblog.PostStatusPublished)

		for _, text := range []string{"first", "second", "third"} {
			_, err := env.svc.AddComment(ctx, bob, post.ID, simpleblog.AddCommentRequest{Content: text})
			require.NoError(t, err)
		}

		comments, err := env.svc.ListComments(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, comments, 3)
		assert.Equal(t, "first", comments[0].Content)
		assert.Equal(t, "third", comments[2].Content)
		for _, c := range comments {
			assert.Equal(t, bob.ID, c.AuthorID)
			assert.Equal(t, post.ID, c.PostID)
		}
	})

	t.Run("anonymous is forbidden even when post is missing", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.svc.AddComment(ctx, simpleblog.Principal{}, uuid.New(), simpleblog.AddCommentRequest{Content: "hi"})
		assert.ErrorIs(t, err, simpleblog.ErrForbidden)
	})

	t.Run("missing post", func(t *testing.T) {
		env := newTestEnv(t)
		bob := env.register(t, "bob@example.com", "pw")

		_, err := env.svc.AddComment(ctx, bob, uuid.New(), simpleblog.AddCommentRequest{Content: "hi"})
		assert.ErrorIs(t, err, simpleblog.ErrPostNotFound)
	})

	t.Run("markup is stripped", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.register(t, "alice@example.com", "pw")
		bob := env.register(t, "bob@example.com", "pw")
		post := env.createPost(t, alice, "Discuss", simpleblog.PostStatusPublished)

		comment, err := env.svc.AddComment(ctx, bob, post.ID, simpleblog.AddCommentRequest{
			Content: `nice <script>alert("x")</script>post`,
		})
		require.NoError(t, err)
		assert.NotContains(t, comment.Content, "<script>")
		assert.Contains(t, comment.Content, "nice")
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces fields and releases old image", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.register(t, "alice@example.com", "pw")

		first, err := env.svc.UpdateProfile(ctx, alice, simpleblog.UpdateProfileRequest{
			FirstName: "Alice",
			Bio:       "writer",
			Theme:     "dark",
			Image:     testImage("v1"),
		})
		require.NoError(t, err)
		require.NotNil(t, first.ImageID)
		oldImageID := *first.ImageID

		second, err := env.svc.UpdateProfile(ctx, alice, simpleblog.UpdateProfileRequest{
			FirstName: "Alice",
			Bio:       "writer and editor",
			Theme:     "dark",
			Image:     testImage("v2"),
		})
		require.NoError(t, err)
		assert.NotEqual(t, oldImageID, *second.ImageID)

		// Exactly one profile blob may exist per account.
		_, _, err = env.svc.GetImage(ctx, oldImageID)
		assert.ErrorIs(t, err, simpleblog.ErrBlobNotFound)
		assert.Equal(t, 1, env.blobs.Len())
	})

	t.Run("anonymous is forbidden", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.svc.UpdateProfile(ctx, simpleblog.Principal{}, simpleblog.UpdateProfileRequest{Bio: "x"})
		assert.ErrorIs(t, err, simpleblog.ErrForbidden)
	})

	t.Run("profile text is sanitized", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.register(t, "alice@example.com", "pw")

		account, err := env.svc.UpdateProfile(ctx, alice, simpleblog.UpdateProfileRequest{
			Bio: `hello <img src=x onerror=alert(1)>`,
		})
		require.NoError(t, err)
		assert.NotContains(t, account.Profile.Bio, "<img")
	})
}

func TestListAccounts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "carol@example.com", "pw")
	alice := env.register(t, "alice@example.com", "pw")
	admin := env.registerAdmin(t, "root@example.com", "pw")

	t.Run("admin sees everyone sorted by id", func(t *testing.T) {
		accounts, err := env.svc.ListAccounts(ctx, admin)
		require.NoError(t, err)
		require.Len(t, accounts, 3)
		assert.Equal(t, "alice@example.com", accounts[0].ID)
		assert.Equal(t, "carol@example.com", accounts[1].ID)
		assert.Equal(t, "root@example.com", accounts[2].ID)
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		_, err := env.svc.ListAccounts(ctx, alice)
		assert.ErrorIs(t, err, simpleblog.ErrForbidden)

		_, err = env.svc.ListAccounts(ctx, simpleblog.Principal{})
		assert.ErrorIs(t, err, simpleblog.ErrForbidden)
	})
}

func TestNewRequiresStores(t *testing.T) {
	repo := repomemory.New()

	_, err := simpleblog.New(
		simpleblog.WithContentRepository(repo),
		simpleblog.WithAccountRepository(repo),
	)
	assert.Error(t, err)

	_, err = simpleblog.New(simpleblog.WithBlobStore(memorystorage.New()))
	assert.Error(t, err)
}
