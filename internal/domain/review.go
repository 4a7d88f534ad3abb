package domain

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusFlagged  Status = "flagged"
)

// Review is the persisted record. Phone is stored but never served.
type Review struct {
	ID             int64     `json:"id"`
	BusinessID     string    `json:"business_id"`
	ReviewerName   string    `json:"reviewer_name"`
	Phone          string    `json:"-"`
	Content        string    `json:"content"`
	Status         Status    `json:"status"`
	SentimentScore float64   `json:"sentiment_score"`
	IsPositive     bool      `json:"is_positive"`
	Pinned         bool      `json:"pinned"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewReview builds the record to insert; ID, Pinned and CreatedAt are left to the store.
func NewReview(s Submission, c Classification, st Status) Review {
	return Review{
		BusinessID:     s.BusinessID,
		ReviewerName:   s.ReviewerName,
		Phone:          s.Phone,
		Content:        s.Content,
		Status:         st,
		SentimentScore: c.SentimentScore,
		IsPositive:     c.SentimentScore > 0,
	}
}

// Submission is the caller-provided part of a review.
type Submission struct {
	BusinessID   string `json:"business_id"`
	ReviewerName string `json:"reviewer_name"`
	Phone        string `json:"phone"`
	Content      string `json:"content"`
}

// Validate reports every missing required field at once.
func (s Submission) Validate() error {
	var missing []string
	for _, f := range []struct{ name, val string }{
		{"business_id", s.BusinessID},
		{"reviewer_name", s.ReviewerName},
		{"phone", s.Phone},
		{"content", s.Content},
	} {
		if strings.TrimSpace(f.val) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}
