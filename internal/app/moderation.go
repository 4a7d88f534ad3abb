package app

import "business_reviews/internal/domain"

// Fixed policy bands on the classifier's safety score.
const (
	approveBelow  = 0.3
	flagAtOrAbove = 0.7
)

// DeriveStatus maps a classification to exactly one moderation status.
// First match wins; the low band is strict and the high band inclusive.
func DeriveStatus(c domain.Classification) domain.Status {
	switch {
	case c.Action == domain.ActionAllow && c.SafetyScore < approveBelow:
		return domain.StatusApproved
	case c.Action == domain.ActionBlock || c.SafetyScore >= flagAtOrAbove:
		return domain.StatusFlagged
	default:
		return domain.StatusPending
	}
}
