package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"business_reviews/internal/domain"
)

type QueryService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

// Approved lists are cached per generation. Intake of an approved review bumps
// the generation, so a list read before the insert can only land on a key that
// is no longer read.
func generationKey(businessID string) string {
	return fmt.Sprintf("reviews:gen:%s", businessID)
}

func approvedKey(businessID string, gen int64) string {
	return fmt.Sprintf("reviews:approved:%s:%d", businessID, gen)
}

// ListApproved returns the display order of a business's approved reviews.
// When newReviewID is set and present, that review is moved to the front.
func (s *QueryService) ListApproved(ctx context.Context, businessID string, newReviewID *int64) ([]domain.Review, error) {
	if strings.TrimSpace(businessID) == "" {
		return nil, fmt.Errorf("%w: business_id is required", domain.ErrValidation)
	}

	base, err := s.base(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if newReviewID == nil {
		return base, nil
	}
	return OrderForSession(base, *newReviewID), nil
}

func (s *QueryService) base(ctx context.Context, businessID string) ([]domain.Review, error) {
	useCache := s.cache != nil && s.cacheTTL > 0
	var key string
	if useCache {
		// Must be read before the repo so a concurrent approval moves it on.
		gen, err := s.cache.Counter(ctx, generationKey(businessID))
		if err != nil {
			log.Warn().Err(err).Str("business_id", businessID).Msg("cache generation read failed")
			useCache = false
		}
		key = approvedKey(businessID, gen)
	}
	if useCache {
		var cached []domain.Review
		ok, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		if ok && err == nil {
			return cached, nil
		}
	}

	rs, err := s.repo.ListApproved(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	// copy so callers never alias the repo's backing array
	out := make([]domain.Review, len(rs))
	copy(out, rs)

	if useCache {
		if err := s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds())); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return out, nil
}
