package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"business_reviews/internal/adapters/observability"
	"business_reviews/internal/domain"
)

const instruction = `You are a content moderation system for customer reviews of a local business.
Assess the review below and respond with strict JSON only, no prose and no markdown, in exactly this shape:
{"safety_score": <number 0..1, 0 = safe, 1 = unsafe>, "sentiment_score": <number -1..1>, "action": "allow" | "flag" | "block"}

Review:
`

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	RPS     int
}

type Client struct {
	base  string
	hc    *http.Client
	key   string
	model string
	rl    *rate.Limiter
}

func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("classifier API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("classifier model is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 10
	}
	return &Client{
		base:  strings.TrimRight(cfg.BaseURL, "/"),
		hc:    &http.Client{Timeout: cfg.Timeout},
		key:   cfg.APIKey,
		model: cfg.Model,
		rl:    rate.NewLimiter(rate.Limit(cfg.RPS), cfg.RPS),
	}, nil
}

// ---- wire types (OpenAI-compatible chat completions) ----

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

// Classify makes exactly one call. Transport failures, non-2xx replies and
// error payloads are returned as domain.ErrUpstream; an unreadable verdict
// is not an error and yields the default classification.
func (c *Client) Classify(ctx context.Context, content string) (domain.Classification, error) {
	text, err := c.complete(ctx, instruction+content)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	cls, complete := ParseClassification(text)
	if !complete {
		log.Warn().
			Str("action", string(cls.Action)).
			Int("reply_len", len(text)).
			Msg("classifier reply incomplete; defaults applied")
	}
	return cls, nil
}

// complete returns the text of the first choice ("" when there is none).
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	// client-side pacing of outbound calls
	if err := c.rl.Wait(ctx); err != nil {
		return "", err
	}

	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "business-reviews/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("classifier", "chat_completions", 0, time.Since(start))
		return "", err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("classifier", "chat_completions", resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var out chatResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && out.Error != nil && out.Error.Message != "" {
			return "", fmt.Errorf("remote %d: %s", resp.StatusCode, out.Error.Message)
		}
		return "", fmt.Errorf("remote %d: %s", resp.StatusCode, strings.TrimSpace(string(truncate(raw, 512))))
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}
	if out.Error != nil {
		return "", errors.New("error payload: " + out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
