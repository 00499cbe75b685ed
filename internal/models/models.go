package models

import (
	"time"
)

// RecentWindow is how far back a question still counts as recently published.
const RecentWindow = 24 * time.Hour

// User is an account that can author posts and moderate comments.
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email        string    `gorm:"size:254" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsModerator  bool      `gorm:"not null;default:false" json:"isModerator"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PostState is the publication state of a post.
type PostState int

const (
	PostDraft PostState = iota
	PostPublished
)

func (s PostState) String() string {
	if s == PostPublished {
		return "published"
	}
	return "draft"
}

// Post is a blog entry. It is a draft until PublishedDate is set.
type Post struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	AuthorID      uint       `gorm:"not null;index" json:"authorId"`
	Author        User       `gorm:"foreignKey:AuthorID" json:"author"`
	Title         string     `gorm:"size:200;not null" json:"title"`
	Text          string     `gorm:"type:text;not null" json:"text"`
	CreatedDate   time.Time  `gorm:"not null" json:"createdDate"`
	PublishedDate *time.Time `gorm:"index" json:"publishedDate,omitempty"`
	Comments      []Comment  `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

// State reports whether the post is a draft or published.
func (p *Post) State() PostState {
	if p.PublishedDate != nil {
		return PostPublished
	}
	return PostDraft
}

// IsPublished is shorthand for State() == PostPublished.
func (p *Post) IsPublished() bool {
	return p.State() == PostPublished
}

// Publish stamps the publication date. Publishing twice moves the date forward.
// There is no reverse transition.
func (p *Post) Publish(now time.Time) {
	published := now.UTC()
	p.PublishedDate = &published
}

func (p *Post) String() string {
	return p.Title
}

// Comment is a visitor comment on a post. New comments wait for approval.
type Comment struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	PostID      uint      `gorm:"not null;index" json:"postId"`
	Author      string    `gorm:"size:200;not null" json:"author"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	CreatedDate time.Time `gorm:"not null" json:"createdDate"`
	Approved    bool      `gorm:"not null;default:false" json:"approved"`
}

// Approve makes the comment publicly visible.
func (c *Comment) Approve() {
	c.Approved = true
}

func (c *Comment) String() string {
	return c.Text
}

// FilterApproved returns the approved comments, keeping their order.
func FilterApproved(comments []Comment) []Comment {
	approved := make([]Comment, 0, len(comments))
	for _, c := range comments {
		if c.Approved {
			approved = append(approved, c)
		}
	}
	return approved
}

// Question is a poll question. PubDate may lie in the future.
type Question struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	QuestionText string    `gorm:"size:200;not null" json:"questionText"`
	PubDate      time.Time `gorm:"not null;index" json:"pubDate"`
	Choices      []Choice  `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"choices,omitempty"`
}

// PublishedBy reports whether the question is public at now.
func (q *Question) PublishedBy(now time.Time) bool {
	return !q.PubDate.After(now)
}

// WasPublishedRecently reports whether PubDate lies in [now-24h, now].
// Both ends are inclusive; future dates are never recent.
func (q *Question) WasPublishedRecently(now time.Time) bool {
	return !q.PubDate.Before(now.Add(-RecentWindow)) && q.PublishedBy(now)
}

// TotalVotes sums the votes of the loaded choices.
func (q *Question) TotalVotes() int64 {
	var total int64
	for _, c := range q.Choices {
		total += c.Votes
	}
	return total
}

func (q *Question) String() string {
	return q.QuestionText
}

// Choice is one answer to a question together with its tally.
type Choice struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	QuestionID uint   `gorm:"not null;index" json:"questionId"`
	ChoiceText string `gorm:"size:200;not null" json:"choiceText"`
	Votes      int64  `gorm:"not null;default:0" json:"votes"`
}

func (c *Choice) String() string {
	return c.ChoiceText
}
