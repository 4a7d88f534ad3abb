package domain

import "context"

type ReviewRepository interface {
	// Write path; returns the store-assigned id.
	InsertReview(ctx context.Context, r Review) (int64, error)

	// Read path; approved reviews ordered pinned DESC, created_at DESC.
	ListApproved(ctx context.Context, businessID string) ([]Review, error)
}

type Classifier interface {
	Classify(ctx context.Context, content string) (Classification, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error

	// Counters never expire; a missing counter reads as 0.
	Incr(ctx context.Context, key string) (int64, error)
	Counter(ctx context.Context, key string) (int64, error)
}
