package app

import "business_reviews/internal/domain"

// OrderForSession surfaces the just-submitted review first, followed by the
// remaining pinned reviews and then the remaining unpinned ones, each keeping
// the base relative order. If newReviewID is not in base the base order is
// returned unchanged.
func OrderForSession(base []domain.Review, newReviewID int64) []domain.Review {
	idx := -1
	for i := range base {
		if base[i].ID == newReviewID {
			idx = i
			break
		}
	}
	out := make([]domain.Review, 0, len(base))
	if idx < 0 {
		return append(out, base...)
	}

	out = append(out, base[idx])
	for i, rv := range base {
		if i != idx && rv.Pinned {
			out = append(out, rv)
		}
	}
	for i, rv := range base {
		if i != idx && !rv.Pinned {
			out = append(out, rv)
		}
	}
	return out
}
