package app

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"business_reviews/internal/domain"
)

// Submitter is the part of IntakeService the batch importer needs.
type Submitter interface {
	Submit(ctx context.Context, sub domain.Submission) (IntakeResult, error)
}

type BatchReport struct {
	Total    int
	Failed   int
	ByStatus map[domain.Status]int
}

// ReadSubmissions accepts either a JSON array or one JSON object per line.
func ReadSubmissions(r io.Reader) ([]domain.Submission, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	if raw[0] == '[' {
		var out []domain.Submission
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decode submissions array: %w", err)
		}
		return out, nil
	}

	var out []domain.Submission
	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for line := 1; sc.Scan(); line++ {
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var s domain.Submission
		if err := json.Unmarshal(b, &s); err != nil {
			return nil, fmt.Errorf("decode submission on line %d: %w", line, err)
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// ImportBatch runs every submission through the intake pipeline with at most
// workers in flight. Each submission is attempted once; failures are counted
// and logged, never retried.
func ImportBatch(ctx context.Context, s Submitter, subs []domain.Submission, workers int) (BatchReport, error) {
	if workers <= 0 {
		workers = 1
	}
	rep := BatchReport{Total: len(subs), ByStatus: map[domain.Status]int{}}
	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for i, sub := range subs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return rep, err
		}

		wg.Add(1)
		go func(i int, sub domain.Submission) {
			defer wg.Done()
			defer sem.Release(1)

			res, err := s.Submit(ctx, sub)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rep.Failed++
				log.Warn().Int("index", i).Str("business_id", sub.BusinessID).Err(err).Msg("import failed")
				return
			}
			rep.ByStatus[res.Status]++
			log.Debug().Int("index", i).Int64("review_id", res.ID).Str("status", string(res.Status)).Msg("import ok")
		}(i, sub)
	}

	wg.Wait()
	return rep, nil
}
