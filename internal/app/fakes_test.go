package app_test

import (
	"context"
	"errors"

	"business_reviews/internal/domain"
)

// ---- fakes ----

type fakeClassifier struct {
	out   domain.Classification
	err   error
	calls int
	seen  []string
}

func (f *fakeClassifier) Classify(ctx context.Context, content string) (domain.Classification, error) {
	f.calls++
	f.seen = append(f.seen, content)
	return f.out, f.err
}

type fakeRepo struct {
	nextID    int64
	inserted  []domain.Review
	insertErr error
	approved  []domain.Review
	listErr   error
	lists     int

	// afterSnapshot runs once, between taking the rows and returning them.
	afterSnapshot func()
}

func (f *fakeRepo) InsertReview(ctx context.Context, r domain.Review) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.nextID++
	r.ID = f.nextID
	f.inserted = append(f.inserted, r)
	if r.Status == domain.StatusApproved {
		f.approved = append(f.approved, r)
	}
	return r.ID, nil
}

func (f *fakeRepo) ListApproved(ctx context.Context, businessID string) ([]domain.Review, error) {
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Review
	for _, r := range f.approved {
		if r.BusinessID == businessID {
			out = append(out, r)
		}
	}
	if hook := f.afterSnapshot; hook != nil {
		f.afterSnapshot = nil
		hook()
	}
	return out, nil
}

type fakeCache struct {
	store    map[string][]domain.Review
	counters map[string]int64
	dels     []string
	err      error
	incrErr  error
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	d, ok := dst.(*[]domain.Review)
	if !ok {
		return false, errors.New("unexpected destination type")
	}
	*d = append([]domain.Review(nil), v...)
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]domain.Review{}
	}
	rs, _ := v.([]domain.Review)
	c.store[key] = append([]domain.Review(nil), rs...)
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

func (c *fakeCache) Incr(ctx context.Context, key string) (int64, error) {
	if c.incrErr != nil {
		return 0, c.incrErr
	}
	if c.counters == nil {
		c.counters = map[string]int64{}
	}
	c.counters[key]++
	return c.counters[key], nil
}

func (c *fakeCache) Counter(ctx context.Context, key string) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	return c.counters[key], nil
}

func validSubmission() domain.Submission {
	return domain.Submission{
		BusinessID:   "biz-1",
		ReviewerName: "Ana",
		Phone:        "+15550100",
		Content:      "Great coffee and friendly staff.",
	}
}
