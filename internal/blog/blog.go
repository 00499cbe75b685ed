package blog

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sujalbistaa/mysite/internal/cache"
	"github.com/sujalbistaa/mysite/internal/models"
)

const (
	maxTitleLength  = 200
	maxAuthorLength = 200

	// Listings are cached under blog:published:<generation>. Every change bumps
	// the generation, so a list read before the change is stored under a key
	// nobody reads any more.
	publishedGenKey   = "blog:published:gen"
	publishedCacheTTL = 5 * time.Minute
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrInvalidInput    = errors.New("invalid input")
)

// PostInput is the editable part of a post.
type PostInput struct {
	Title string `form:"title" json:"title" binding:"required,max=200"`
	Text  string `form:"text" json:"text" binding:"required"`
}

// CommentInput is what a visitor submits.
type CommentInput struct {
	Author string `form:"author" json:"author" binding:"required,max=200"`
	Text   string `form:"text" json:"text" binding:"required"`
}

// Service implements the post lifecycle and comment moderation.
type Service struct {
	db    *gorm.DB
	cache cache.Store
}

// NewService builds a Service. A nil store disables caching.
func NewService(db *gorm.DB, store cache.Store) *Service {
	if store == nil {
		store = cache.Noop{}
	}
	return &Service{db: db, cache: store}
}

func published(db *gorm.DB) *gorm.DB {
	return db.Where("published_date IS NOT NULL")
}

func drafts(db *gorm.DB) *gorm.DB {
	return db.Where("published_date IS NULL")
}

// CreatePost stores a new draft authored by author.
func (s *Service) CreatePost(ctx context.Context, in PostInput, author *models.User, now time.Time) (*models.Post, error) {
	if author == nil || author.ID == 0 {
		return nil, errors.Wrap(ErrInvalidInput, "post needs an author")
	}
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID:    author.ID,
		Title:       in.Title,
		Text:        in.Text,
		CreatedDate: now.UTC(),
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return nil, errors.Wrap(err, "create post")
	}
	post.Author = *author
	return post, nil
}

// UpdatePost replaces title and text. The publication state is unchanged.
func (s *Service) UpdatePost(ctx context.Context, id uint, in PostInput) (*models.Post, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Title = in.Title
	post.Text = in.Text

	if err := s.db.WithContext(ctx).Model(post).Updates(map[string]any{
		"title": post.Title,
		"text":  post.Text,
	}).Error; err != nil {
		return nil, errors.Wrap(err, "update post")
	}
	s.invalidate(ctx)
	return post, nil
}

// PublishPost stamps the post's publication date with now.
func (s *Service) PublishPost(ctx context.Context, id uint, now time.Time) (*models.Post, error) {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Publish(now)

	if err := s.db.WithContext(ctx).Model(post).Update("published_date", post.PublishedDate).Error; err != nil {
		return nil, errors.Wrap(err, "publish post")
	}
	s.invalidate(ctx)
	return post, nil
}

// ListPublished returns published posts, newest publication first.
func (s *Service) ListPublished(ctx context.Context) ([]models.Post, error) {
	// The generation must be read before the database.
	var gen int64
	cacheable := true
	if _, err := s.cache.GetJSON(ctx, publishedGenKey, &gen); err != nil {
		log.Printf("Error reading published posts generation: %v", err)
		cacheable = false
	}
	key := fmt.Sprintf("blog:published:%d", gen)

	var posts []models.Post
	if cacheable {
		found, err := s.cache.GetJSON(ctx, key, &posts)
		if err != nil {
			log.Printf("Error reading published posts from cache: %v", err)
		}
		if found {
			return posts, nil
		}
	}

	posts = []models.Post{}
	if err := s.db.WithContext(ctx).
		Scopes(published).
		Preload("Author").
		Order("published_date desc, id desc").
		Find(&posts).Error; err != nil {
		return nil, errors.Wrap(err, "list published posts")
	}

	if cacheable {
		if err := s.cache.SetJSON(ctx, key, posts, publishedCacheTTL); err != nil {
			log.Printf("Error caching published posts: %v", err)
		}
	}
	return posts, nil
}

// ListDrafts returns unpublished posts, oldest first.
func (s *Service) ListDrafts(ctx context.Context) ([]models.Post, error) {
	posts := []models.Post{}
	if err := s.db.WithContext(ctx).
		Scopes(drafts).
		Preload("Author").
		Order("created_date asc, id asc").
		Find(&posts).Error; err != nil {
		return nil, errors.Wrap(err, "list drafts")
	}
	return posts, nil
}

// GetPost returns the post whether it is published or not.
func (s *Service) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Preload("Author").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, errors.Wrap(err, "get post")
	}
	return &post, nil
}

// RemovePost deletes the post together with its comments.
func (s *Service) RemovePost(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return err
		}
		return errors.Wrap(err, "remove post")
	}
	s.invalidate(ctx)
	return nil
}

// AddComment stores an unapproved comment on an existing post.
func (s *Service) AddComment(ctx context.Context, postID uint, in CommentInput, now time.Time) (*models.Comment, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:      postID,
		Author:      in.Author,
		Text:        in.Text,
		CreatedDate: now.UTC(),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrPostNotFound
		}
		return tx.Create(comment).Error
	})
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "add comment")
	}
	return comment, nil
}

// ApproveComment marks the comment approved and returns it.
func (s *Service) ApproveComment(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.getComment(ctx, id)
	if err != nil {
		return nil, err
	}
	comment.Approve()

	if err := s.db.WithContext(ctx).Model(comment).Update("approved", true).Error; err != nil {
		return nil, errors.Wrap(err, "approve comment")
	}
	return comment, nil
}

// RemoveComment deletes the comment and returns what was deleted.
func (s *Service) RemoveComment(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.getComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(comment).Error; err != nil {
		return nil, errors.Wrap(err, "remove comment")
	}
	return comment, nil
}

// Comments lists a post's comments in the order they were written.
// Unapproved ones are included only when includeUnapproved is set.
func (s *Service) Comments(ctx context.Context, postID uint, includeUnapproved bool) ([]models.Comment, error) {
	comments := []models.Comment{}
	if err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_date asc, id asc").
		Find(&comments).Error; err != nil {
		return nil, errors.Wrap(err, "list comments")
	}
	if !includeUnapproved {
		return models.FilterApproved(comments), nil
	}
	return comments, nil
}

func (s *Service) getComment(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, errors.Wrap(err, "get comment")
	}
	return &comment, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if _, err := s.cache.Incr(ctx, publishedGenKey); err != nil {
		log.Printf("Error invalidating published posts cache: %v", err)
	}
}

func (in PostInput) normalize() (PostInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Text = strings.TrimSpace(in.Text)
	if in.Title == "" || in.Text == "" {
		return in, errors.Wrap(ErrInvalidInput, "title and text are required")
	}
	if utf8.RuneCountInString(in.Title) > maxTitleLength {
		return in, errors.Wrapf(ErrInvalidInput, "title is longer than %d characters", maxTitleLength)
	}
	return in, nil
}

func (in CommentInput) normalize() (CommentInput, error) {
	in.Author = strings.TrimSpace(in.Author)
	in.Text = strings.TrimSpace(in.Text)
	if in.Author == "" || in.Text == "" {
		return in, errors.Wrap(ErrInvalidInput, "author and text are required")
	}
	if utf8.RuneCountInString(in.Author) > maxAuthorLength {
		return in, errors.Wrapf(ErrInvalidInput, "author is longer than %d characters", maxAuthorLength)
	}
	return in, nil
}
