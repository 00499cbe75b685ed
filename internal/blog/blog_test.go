package blog

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sujalbistaa/mysite/internal/accounts"
	"github.com/sujalbistaa/mysite/internal/cache"
	"github.com/sujalbistaa/mysite/internal/db"
	"github.com/sujalbistaa/mysite/internal/models"
)

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db     *gorm.DB
	svc    *Service
	author *models.User
}

func setup(t *testing.T, store cache.Store) *fixture {
	t.Helper()
	database, err := db.Init("sqlite://" + filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database))

	author, err := accounts.NewService(database).CreateUser(context.Background(), "test", "testb@test.com", "top_secret", true)
	require.NoError(t, err)

	return &fixture{db: database, svc: NewService(database, store), author: author}
}

func (f *fixture) createPost(t *testing.T, title string) *models.Post {
	t.Helper()
	post, err := f.svc.CreatePost(context.Background(), PostInput{Title: title, Text: title + " body"}, f.author, now)
	require.NoError(t, err)
	return post
}

func titles(posts []models.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.String())
	}
	return out
}

func TestPublishPost(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	post := f.createPost(t, "Publishing post.")
	assert.Equal(t, models.PostDraft, post.State())

	published, err := f.svc.PublishPost(ctx, post.ID, now)
	require.NoError(t, err)
	assert.True(t, published.IsPublished())

	stored, err := f.svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PublishedDate)
	assert.True(t, stored.PublishedDate.Equal(now))
	assert.Equal(t, "test", stored.Author.Username)
}

func TestPublishUnknownPost(t *testing.T) {
	f := setup(t, nil)
	_, err := f.svc.PublishPost(context.Background(), 999, now)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestListPublished(t *testing.T) {
	ctx := context.Background()

	t.Run("no posts", func(t *testing.T) {
		f := setup(t, nil)
		posts, err := f.svc.ListPublished(ctx)
		require.NoError(t, err)
		assert.Empty(t, posts)
		assert.NotNil(t, posts)
	})

	t.Run("one published post", func(t *testing.T) {
		f := setup(t, nil)
		post := f.createPost(t, "Publishing post")
		_, err := f.svc.PublishPost(ctx, post.ID, now)
		require.NoError(t, err)

		posts, err := f.svc.ListPublished(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Publishing post"}, titles(posts))
	})

	t.Run("draft is excluded", func(t *testing.T) {
		f := setup(t, nil)
		f.createPost(t, "Draft post")

		posts, err := f.svc.ListPublished(ctx)
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("newest publication first", func(t *testing.T) {
		f := setup(t, nil)
		older := f.createPost(t, "Older")
		newer := f.createPost(t, "Newer")
		_, err := f.svc.PublishPost(ctx, newer.ID, now.Add(time.Hour))
		require.NoError(t, err)
		_, err = f.svc.PublishPost(ctx, older.ID, now)
		require.NoError(t, err)

		posts, err := f.svc.ListPublished(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Newer", "Older"}, titles(posts))
	})
}

func TestListPublishedCacheIsInvalidated(t *testing.T) {
	ctx := context.Background()
	f := setup(t, cache.NewMemory())

	posts, err := f.svc.ListPublished(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)

	post := f.createPost(t, "Cached post")
	_, err = f.svc.PublishPost(ctx, post.ID, now)
	require.NoError(t, err)

	posts, err = f.svc.ListPublished(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cached post"}, titles(posts))

	_, err = f.svc.UpdatePost(ctx, post.ID, PostInput{Title: "Renamed", Text: "body"})
	require.NoError(t, err)
	posts, err = f.svc.ListPublished(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Renamed"}, titles(posts))

	require.NoError(t, f.svc.RemovePost(ctx, post.ID))
	posts, err = f.svc.ListPublished(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

// racingStore runs beforeSet once, just before the first listing is stored,
// the way a publish from another request can land between the database read
// and the cache write.
type racingStore struct {
	*cache.Memory
	beforeSet func()
}

func (r *racingStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if hook := r.beforeSet; hook != nil {
		r.beforeSet = nil
		hook()
	}
	return r.Memory.SetJSON(ctx, key, value, ttl)
}

func TestListPublishedIgnoresListReadBeforeChange(t *testing.T) {
	ctx := context.Background()
	store := &racingStore{Memory: cache.NewMemory()}
	f := setup(t, store)
	post := f.createPost(t, "Published mid-read")

	store.beforeSet = func() {
		_, err := f.svc.PublishPost(ctx, post.ID, now)
		require.NoError(t, err)
	}

	posts, err := f.svc.ListPublished(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts, "read before the publish committed")

	posts, err = f.svc.ListPublished(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Published mid-read"}, titles(posts))
}

func TestListDrafts(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil)
	first := f.createPost(t, "First draft")
	f.createPost(t, "Second draft")
	published := f.createPost(t, "Live")
	_, err := f.svc.PublishPost(ctx, published.ID, now)
	require.NoError(t, err)

	drafts, err := f.svc.ListDrafts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"First draft", "Second draft"}, titles(drafts))
	assert.Equal(t, first.ID, drafts[0].ID)
}

func TestGetPostReturnsDrafts(t *testing.T) {
	f := setup(t, nil)
	post := f.createPost(t, "Draft post")

	got, err := f.svc.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PostDraft, got.State())

	_, err = f.svc.GetPost(context.Background(), post.ID+1)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestCreatePostValidation(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()

	_, err := f.svc.CreatePost(ctx, PostInput{Title: "t", Text: "x"}, nil, now)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.CreatePost(ctx, PostInput{Title: "  ", Text: "x"}, f.author, now)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.CreatePost(ctx, PostInput{Title: strings.Repeat("a", 201), Text: "x"}, f.author, now)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRemovePostCascadesToComments(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil)
	post := f.createPost(t, "Doomed")
	other := f.createPost(t, "Survivor")
	_, err := f.svc.AddComment(ctx, post.ID, CommentInput{Author: "a", Text: "bye"}, now)
	require.NoError(t, err)
	kept, err := f.svc.AddComment(ctx, other.ID, CommentInput{Author: "b", Text: "still here"}, now)
	require.NoError(t, err)

	require.NoError(t, f.svc.RemovePost(ctx, post.ID))

	var count int64
	require.NoError(t, f.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&count).Error)
	assert.Zero(t, count)

	comments, err := f.svc.Comments(ctx, other.ID, true)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, kept.ID, comments[0].ID)

	assert.ErrorIs(t, f.svc.RemovePost(ctx, post.ID), ErrPostNotFound)
}

func TestCommentModeration(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil)
	post := f.createPost(t, "Discussed")

	first, err := f.svc.AddComment(ctx, post.ID, CommentInput{Author: "ann", Text: "Nice!"}, now)
	require.NoError(t, err)
	assert.False(t, first.Approved)
	second, err := f.svc.AddComment(ctx, post.ID, CommentInput{Author: "bob", Text: "Spam"}, now.Add(time.Minute))
	require.NoError(t, err)

	public, err := f.svc.Comments(ctx, post.ID, false)
	require.NoError(t, err)
	assert.Empty(t, public)

	approved, err := f.svc.ApproveComment(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, approved.Approved)
	assert.Equal(t, post.ID, approved.PostID)

	public, err = f.svc.Comments(ctx, post.ID, false)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Nice!", public[0].Text)

	all, err := f.svc.Comments(ctx, post.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	removed, err := f.svc.RemoveComment(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, removed.PostID)

	all, err = f.svc.Comments(ctx, post.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = f.svc.GetPost(ctx, post.ID)
	assert.NoError(t, err, "removing a comment leaves the post")
}

func TestCommentErrors(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil)

	_, err := f.svc.AddComment(ctx, 42, CommentInput{Author: "a", Text: "b"}, now)
	assert.ErrorIs(t, err, ErrPostNotFound)

	post := f.createPost(t, "Post")
	_, err = f.svc.AddComment(ctx, post.ID, CommentInput{Author: "", Text: "b"}, now)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.ApproveComment(ctx, 42)
	assert.ErrorIs(t, err, ErrCommentNotFound)
	_, err = f.svc.RemoveComment(ctx, 42)
	assert.ErrorIs(t, err, ErrCommentNotFound)
}
