package shared

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MetricsAddr    string
	MySQLDSN       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	CacheTTL       time.Duration
	RequestTimeout time.Duration
	WebhookSecret  string
	AllowedOrigins []string
	SentryDSN      string
	ImportWorkers  int

	ClassifierBase    string
	ClassifierKey     string
	ClassifierModel   string
	ClassifierTimeout time.Duration
	ClassifierRPS     int
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "prod")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("METRICS_ADDR", "")
	v.SetDefault("MYSQL_DSN", "root:root@tcp(localhost:3306)/reviews?parseTime=true&charset=utf8mb4&loc=UTC")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL_SECONDS", 60)
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 30)
	v.SetDefault("WEBHOOK_SECRET", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("SENTRY_DSN", "")
	v.SetDefault("IMPORT_WORKERS", 4)
	v.SetDefault("CLASSIFIER_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("CLASSIFIER_API_KEY", "")
	v.SetDefault("CLASSIFIER_MODEL", "gpt-4o-mini")
	v.SetDefault("CLASSIFIER_TIMEOUT_SECONDS", 20)
	v.SetDefault("CLASSIFIER_RPS", 10)
}

// Load reads configuration from the environment; every key has a default.
func Load() Config {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	c := Config{
		AppEnv:         v.GetString("APP_ENV"),
		HTTPAddr:       v.GetString("HTTP_ADDR"),
		MetricsAddr:    v.GetString("METRICS_ADDR"),
		MySQLDSN:       v.GetString("MYSQL_DSN"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPass:      v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		CacheTTL:       time.Duration(v.GetInt("CACHE_TTL_SECONDS")) * time.Second,
		RequestTimeout: time.Duration(v.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
		WebhookSecret:  v.GetString("WEBHOOK_SECRET"),
		AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		SentryDSN:      v.GetString("SENTRY_DSN"),
		ImportWorkers:  v.GetInt("IMPORT_WORKERS"),

		ClassifierBase:    v.GetString("CLASSIFIER_BASE_URL"),
		ClassifierKey:     v.GetString("CLASSIFIER_API_KEY"),
		ClassifierModel:   v.GetString("CLASSIFIER_MODEL"),
		ClassifierTimeout: time.Duration(v.GetInt("CLASSIFIER_TIMEOUT_SECONDS")) * time.Second,
		ClassifierRPS:     v.GetInt("CLASSIFIER_RPS"),
	}
	if c.ClassifierKey == "" {
		log.Warn().Msg("CLASSIFIER_API_KEY is empty")
	}
	if c.WebhookSecret == "" {
		log.Info().Msg("WEBHOOK_SECRET not set; intake accepts unauthenticated submissions")
	}
	return c
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
