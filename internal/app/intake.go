package app

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"business_reviews/internal/adapters/observability"
	"business_reviews/internal/domain"
)

type IntakeService struct {
	classifier domain.Classifier
	repo       domain.ReviewRepository
	cache      domain.Cache
	secret     string
}

// IntakeResult is what a caller learns about an accepted submission.
type IntakeResult struct {
	ID     int64
	Status domain.Status
}

func NewIntakeService(c domain.Classifier, r domain.ReviewRepository, cache domain.Cache, secret string) *IntakeService {
	return &IntakeService{classifier: c, repo: r, cache: cache, secret: secret}
}

// Authorize checks the presented shared secret. With no secret configured
// every caller is accepted.
func (s *IntakeService) Authorize(presented string) error {
	if s.secret == "" {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(presented), []byte(s.secret)) != 1 {
		return fmt.Errorf("%w: invalid webhook secret", domain.ErrUnauthorized)
	}
	return nil
}

// Submit runs validate -> classify -> derive -> persist for one submission.
// Each stage starts only once the previous one produced its result, and the
// insert is attempted exactly once.
func (s *IntakeService) Submit(ctx context.Context, sub domain.Submission) (IntakeResult, error) {
	if err := sub.Validate(); err != nil {
		return IntakeResult{}, err
	}

	cls, err := s.classify(ctx, sub.Content)
	if err != nil {
		return IntakeResult{}, err
	}

	status := DeriveStatus(cls)
	observability.ObserveModeration(string(status))

	id, err := s.repo.InsertReview(ctx, domain.NewReview(sub, cls, status))
	if err != nil {
		return IntakeResult{}, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	log.Info().
		Str("business_id", sub.BusinessID).
		Int64("review_id", id).
		Str("status", string(status)).
		Msg("review stored")

	if status == domain.StatusApproved && s.cache != nil {
		// The row is committed; a caller timing out now must not skip this.
		s.invalidate(context.WithoutCancel(ctx), sub.BusinessID)
	}

	return IntakeResult{ID: id, Status: status}, nil
}

// invalidate moves the business to a new list generation and drops the old one.
func (s *IntakeService) invalidate(ctx context.Context, businessID string) {
	gen, err := s.cache.Incr(ctx, generationKey(businessID))
	if err != nil {
		log.Error().Err(err).Str("business_id", businessID).Msg("approved reviews cache generation bump failed")
		return
	}
	if err := s.cache.Del(ctx, approvedKey(businessID, gen-1)); err != nil {
		log.Warn().Err(err).Str("business_id", businessID).Msg("stale approved reviews cache eviction failed")
	}
}

func (s *IntakeService) classify(ctx context.Context, content string) (domain.Classification, error) {
	cls, err := s.classifier.Classify(ctx, content)
	if err != nil {
		if errors.Is(err, domain.ErrUpstream) {
			return domain.Classification{}, err
		}
		return domain.Classification{}, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	log.Debug().
		Float64("safety_score", cls.SafetyScore).
		Float64("sentiment_score", cls.SentimentScore).
		Str("action", string(cls.Action)).
		Msg("review classified")
	return cls, nil
}
