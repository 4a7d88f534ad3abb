package shared_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"business_reviews/internal/shared"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CLASSIFIER_API_KEY", "k")
	c := shared.Load()

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, "gpt-4o-mini", c.ClassifierModel)
	assert.Equal(t, 20*time.Second, c.ClassifierTimeout)
	assert.Equal(t, 60*time.Second, c.CacheTTL)
	assert.Empty(t, c.RedisAddr)
	assert.Nil(t, c.AllowedOrigins)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("WEBHOOK_SECRET", "s3cret")
	t.Setenv("CACHE_TTL_SECONDS", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("CLASSIFIER_RPS", "3")

	c := shared.Load()

	assert.Equal(t, ":9999", c.HTTPAddr)
	assert.Equal(t, "s3cret", c.WebhookSecret)
	assert.Equal(t, 5*time.Second, c.CacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
	assert.Equal(t, 3, c.ClassifierRPS)
}
