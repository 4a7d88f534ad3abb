package app_test

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"business_reviews/internal/app"
	"business_reviews/internal/domain"
)

func TestReadSubmissions(t *testing.T) {
	arr := `[{"business_id":"b1","reviewer_name":"A","phone":"1","content":"x"},
	         {"business_id":"b2","reviewer_name":"B","phone":"2","content":"y"}]`
	out, err := app.ReadSubmissions(strings.NewReader(arr))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "b2", out[1].BusinessID)

	lines := "{\"business_id\":\"b1\",\"reviewer_name\":\"A\",\"phone\":\"1\",\"content\":\"x\"}\n\n" +
		"{\"business_id\":\"b3\",\"reviewer_name\":\"C\",\"phone\":\"3\",\"content\":\"z\"}\n"
	out, err = app.ReadSubmissions(strings.NewReader(lines))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "b3", out[1].BusinessID)

	_, err = app.ReadSubmissions(strings.NewReader("{\"business_id\":\"b1\"}\nnot json\n"))
	assert.ErrorContains(t, err, "line 2")

	out, err = app.ReadSubmissions(strings.NewReader("  "))
	require.NoError(t, err)
	assert.Empty(t, out)
}

// safeClassifier is a concurrency-safe stand-in for batch tests.
type safeClassifier struct {
	inFlight, peak int32
}

func (c *safeClassifier) Classify(ctx context.Context, content string) (domain.Classification, error) {
	n := atomic.AddInt32(&c.inFlight, 1)
	defer atomic.AddInt32(&c.inFlight, -1)
	for {
		p := atomic.LoadInt32(&c.peak)
		if n <= p || atomic.CompareAndSwapInt32(&c.peak, p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	if strings.Contains(content, "awful") {
		return domain.Classification{Action: domain.ActionBlock, SafetyScore: 0.9}, nil
	}
	return domain.Classification{Action: domain.ActionAllow, SafetyScore: 0.1, SentimentScore: 0.4}, nil
}

type safeRepo struct {
	mu sync.Mutex
	n  int64
}

func (r *safeRepo) InsertReview(ctx context.Context, rv domain.Review) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.n++
	return r.n, nil
}

func (r *safeRepo) ListApproved(ctx context.Context, businessID string) ([]domain.Review, error) {
	return nil, nil
}

func TestImportBatch(t *testing.T) {
	cls := &safeClassifier{}
	svc := app.NewIntakeService(cls, &safeRepo{}, nil, "")

	var subs []domain.Submission
	for i := 0; i < 10; i++ {
		s := validSubmission()
		if i%5 == 0 {
			s.Content = "awful"
		}
		subs = append(subs, s)
	}
	subs = append(subs, domain.Submission{BusinessID: "biz-1"}) // invalid

	rep, err := app.ImportBatch(context.Background(), svc, subs, 3)

	require.NoError(t, err)
	assert.Equal(t, 11, rep.Total)
	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, 8, rep.ByStatus[domain.StatusApproved])
	assert.Equal(t, 2, rep.ByStatus[domain.StatusFlagged])
	assert.LessOrEqual(t, atomic.LoadInt32(&cls.peak), int32(3))
}

func TestImportBatch_CanceledContext(t *testing.T) {
	svc := app.NewIntakeService(&safeClassifier{}, &safeRepo{}, nil, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := app.ImportBatch(ctx, svc, []domain.Submission{validSubmission()}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
