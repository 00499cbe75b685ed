package polls

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/sujalbistaa/mysite/internal/models"
)

// IndexLimit is how many questions the index page shows.
const IndexLimit = 5

const maxTextLength = 200

var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrChoiceNotFound   = errors.New("choice not found")
	ErrInvalidInput     = errors.New("invalid input")
)

// Broadcaster is notified after every recorded vote.
type Broadcaster interface {
	BroadcastVote(choice *models.Choice)
}

// Service implements question visibility and choice tallies.
// Every time-dependent call takes now explicitly.
type Service struct {
	db          *gorm.DB
	broadcaster Broadcaster
}

// NewService builds a Service. broadcaster may be nil.
func NewService(db *gorm.DB, broadcaster Broadcaster) *Service {
	return &Service{db: db, broadcaster: broadcaster}
}

// publishedBy restricts a query to questions whose pub_date is not after now.
func publishedBy(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("questions.pub_date <= ?", now.UTC())
	}
}

func hasChoices(db *gorm.DB) *gorm.DB {
	return db.Where("EXISTS (SELECT 1 FROM choices WHERE choices.question_id = questions.id)")
}

// CreateQuestion stores a question. pubDate may be in the past or the future.
func (s *Service) CreateQuestion(ctx context.Context, text string, pubDate time.Time) (*models.Question, error) {
	text, err := normalizeText(text)
	if err != nil {
		return nil, err
	}
	question := &models.Question{QuestionText: text, PubDate: pubDate.UTC()}
	if err := s.db.WithContext(ctx).Create(question).Error; err != nil {
		return nil, errors.Wrap(err, "create question")
	}
	return question, nil
}

// AddChoice attaches a choice with zero votes to an existing question.
func (s *Service) AddChoice(ctx context.Context, questionID uint, text string) (*models.Choice, error) {
	text, err := normalizeText(text)
	if err != nil {
		return nil, err
	}

	choice := &models.Choice{QuestionID: questionID, ChoiceText: text}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Question{}).Where("id = ?", questionID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrQuestionNotFound
		}
		return tx.Create(choice).Error
	})
	if err != nil {
		if errors.Is(err, ErrQuestionNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "add choice")
	}
	return choice, nil
}

// WasPublishedRecently reports whether q was published within the day before now.
func (s *Service) WasPublishedRecently(q *models.Question, now time.Time) bool {
	return q.WasPublishedRecently(now)
}

// ListVisible returns the questions a visitor may see in the index:
// published by now and with at least one choice, newest first.
// limit <= 0 returns all of them.
func (s *Service) ListVisible(ctx context.Context, now time.Time, limit int) ([]models.Question, error) {
	questions := []models.Question{}
	q := s.db.WithContext(ctx).
		Scopes(publishedBy(now), hasChoices).
		Order("pub_date desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&questions).Error; err != nil {
		return nil, errors.Wrap(err, "list visible questions")
	}
	return questions, nil
}

// ListAll returns every question with its choices, newest first, for administration.
func (s *Service) ListAll(ctx context.Context) ([]models.Question, error) {
	questions := []models.Question{}
	if err := s.db.WithContext(ctx).
		Preload("Choices", orderChoices).
		Order("pub_date desc, id desc").
		Find(&questions).Error; err != nil {
		return nil, errors.Wrap(err, "list questions")
	}
	return questions, nil
}

// GetVisible returns a published question with its choices.
// Unlike ListVisible it does not require the question to have choices.
func (s *Service) GetVisible(ctx context.Context, id uint, now time.Time) (*models.Question, error) {
	question, err := s.get(ctx, s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if !question.PublishedBy(now) {
		return nil, ErrQuestionNotFound
	}
	return question, nil
}

// Get returns any question regardless of its publication date.
func (s *Service) Get(ctx context.Context, id uint) (*models.Question, error) {
	return s.get(ctx, s.db.WithContext(ctx), id)
}

// Vote adds one vote to a choice of a visible question.
func (s *Service) Vote(ctx context.Context, questionID, choiceID uint, now time.Time) (*models.Choice, error) {
	var choice models.Choice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		question, err := s.get(ctx, tx, questionID)
		if err != nil {
			return err
		}
		if !question.PublishedBy(now) {
			return ErrQuestionNotFound
		}

		res := tx.Model(&models.Choice{}).
			Where("id = ? AND question_id = ?", choiceID, questionID).
			UpdateColumn("votes", gorm.Expr("votes + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrChoiceNotFound
		}
		return tx.First(&choice, choiceID).Error
	})
	if err != nil {
		if errors.Is(err, ErrQuestionNotFound) || errors.Is(err, ErrChoiceNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "record vote")
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastVote(&choice)
	}
	return &choice, nil
}

// ResetVotes sets every tally of the question back to zero.
func (s *Service) ResetVotes(ctx context.Context, questionID uint) (*models.Question, error) {
	var question *models.Question
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.get(ctx, tx, questionID); err != nil {
			return err
		}
		if err := tx.Model(&models.Choice{}).
			Where("question_id = ?", questionID).
			UpdateColumn("votes", 0).Error; err != nil {
			return err
		}
		var err error
		question, err = s.get(ctx, tx, questionID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrQuestionNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "reset votes")
	}
	return question, nil
}

// RemoveQuestion deletes a question and its choices.
func (s *Service) RemoveQuestion(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.get(ctx, tx, id); err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.Choice{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Question{}, id).Error
	})
	if err != nil {
		if errors.Is(err, ErrQuestionNotFound) {
			return err
		}
		return errors.Wrap(err, "remove question")
	}
	return nil
}

func (s *Service) get(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	var question models.Question
	if err := tx.WithContext(ctx).Preload("Choices", orderChoices).First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, errors.Wrap(err, "get question")
	}
	return &question, nil
}

func orderChoices(db *gorm.DB) *gorm.DB {
	return db.Order("choices.id asc")
}

func normalizeText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.Wrap(ErrInvalidInput, "text is required")
	}
	if utf8.RuneCountInString(text) > maxTextLength {
		return "", errors.Wrapf(ErrInvalidInput, "text is longer than %d characters", maxTextLength)
	}
	return text, nil
}
