package mysql

import (
	"context"
	"database/sql"

	"business_reviews/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// InsertReview writes r once and returns the id the store assigned.
func (r *Repo) InsertReview(ctx context.Context, rv domain.Review) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertReviewSQL,
		rv.BusinessID,
		rv.ReviewerName,
		rv.Phone,
		rv.Content,
		string(rv.Status),
		rv.SentimentScore,
		rv.SentimentScore > 0, // is_positive is always the sign of sentiment_score
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) ListApproved(ctx context.Context, businessID string) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, listApprovedSQL, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var rv domain.Review
		var status string
		if err := rows.Scan(
			&rv.ID,
			&rv.BusinessID,
			&rv.ReviewerName,
			&rv.Content,
			&status,
			&rv.SentimentScore,
			&rv.IsPositive,
			&rv.Pinned,
			&rv.CreatedAt,
		); err != nil {
			return nil, err
		}
		rv.Status = domain.Status(status)
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Ping backs the health endpoint.
func (r *Repo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }
