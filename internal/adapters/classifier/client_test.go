package classifier_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"business_reviews/internal/adapters/classifier"
	"business_reviews/internal/domain"
)

const completionsURL = "https://classifier.test/v1/chat/completions"

func setupHTTPMock(t *testing.T) {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
}

func newClient(t *testing.T, base string) *classifier.Client {
	t.Helper()
	cl, err := classifier.New(classifier.Config{
		BaseURL: base,
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: 2 * time.Second,
		RPS:     100,
	})
	require.NoError(t, err)
	return cl
}

func completion(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
}

func TestNew_RequiresKeyAndModel(t *testing.T) {
	_, err := classifier.New(classifier.Config{Model: "m"})
	assert.Error(t, err)
	_, err = classifier.New(classifier.Config{APIKey: "k"})
	assert.Error(t, err)
}

func TestClassify_Success(t *testing.T) {
	setupHTTPMock(t)

	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	httpmock.RegisterResponder(http.MethodPost, completionsURL,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer test-key", req.Header.Get("Authorization"))
			if err := json.NewDecoder(req.Body).Decode(&got); err != nil {
				return nil, err
			}
			return httpmock.NewJsonResponse(http.StatusOK,
				completion(`{"safety_score":0.1,"sentiment_score":0.5,"action":"allow"}`))
		})

	cl := newClient(t, "https://classifier.test/v1/")
	out, err := cl.Classify(context.Background(), "Lovely place")

	require.NoError(t, err)
	assert.Equal(t, domain.Classification{SafetyScore: 0.1, SentimentScore: 0.5, Action: domain.ActionAllow}, out)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())

	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "strict JSON")
	assert.Contains(t, got.Messages[0].Content, "Lovely place")
}

func TestClassify_MalformedReplyDefaultsToFlag(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodPost, completionsURL,
		httpmock.NewJsonResponderOrPanic(http.StatusOK, completion("Sure! This looks safe to me.")))

	out, err := newClient(t, "https://classifier.test/v1").Classify(context.Background(), "text")

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultClassification(), out)
}

func TestClassify_NoChoicesDefaults(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodPost, completionsURL,
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]any{"choices": []any{}}))

	out, err := newClient(t, "https://classifier.test/v1").Classify(context.Background(), "text")

	require.NoError(t, err)
	assert.Equal(t, domain.ActionFlag, out.Action)
}

func TestClassify_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
		contains  string
	}{
		{
			name:      "transport_error",
			responder: httpmock.NewErrorResponder(errors.New("connection refused")),
			contains:  "connection refused",
		},
		{
			name: "error_status_with_payload",
			responder: httpmock.NewJsonResponderOrPanic(http.StatusUnauthorized,
				map[string]any{"error": map[string]any{"message": "Incorrect API key provided", "type": "invalid_request_error"}}),
			contains: "Incorrect API key provided",
		},
		{
			name:      "server_error_plain_body",
			responder: httpmock.NewStringResponder(http.StatusServiceUnavailable, "upstream overloaded"),
			contains:  "remote 503",
		},
		{
			name: "error_payload_on_200",
			responder: httpmock.NewJsonResponderOrPanic(http.StatusOK,
				map[string]any{"error": map[string]any{"message": "model overloaded"}}),
			contains: "model overloaded",
		},
		{
			name:      "envelope_not_json",
			responder: httpmock.NewStringResponder(http.StatusOK, "<html>gateway</html>"),
			contains:  "decode response",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupHTTPMock(t)
			httpmock.RegisterResponder(http.MethodPost, completionsURL, tt.responder)

			_, err := newClient(t, "https://classifier.test/v1").Classify(context.Background(), "text")

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrUpstream)
			assert.Contains(t, err.Error(), tt.contains)
			assert.Equal(t, 1, httpmock.GetTotalCallCount(), "no retries")
		})
	}
}

func TestClassify_TimeoutIsUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	cl := newClient(t, ts.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := cl.Classify(ctx, "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
