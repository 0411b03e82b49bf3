package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MetricsAddr    string
	APIEndpoint    string // raw value; ResolveEndpoint normalizes it
	APIPathPrefix  bool   // deployment serves under /api
	APITimeout     time.Duration
	CopilotTimeout time.Duration
	APIRPS         int
	InsecureTLS    bool // opt-in only; skips upstream certificate checks
	ChatLegacyForm bool // deprecated deployments take /Chat as form data
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	SessionTTL     time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	truthy := func(k string) bool {
		v := os.Getenv(k)
		return v == "1" || strings.EqualFold(v, "true")
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ":9100"),
		APIEndpoint:    env("API_ENDPOINT", ""),
		APIPathPrefix:  truthy("API_PATH_PREFIX"),
		APITimeout:     time.Duration(atoi("API_TIMEOUT_SECONDS", 30)) * time.Second,
		CopilotTimeout: time.Duration(atoi("COPILOT_TIMEOUT_SECONDS", 60)) * time.Second,
		APIRPS:         atoi("API_RPS", 5),
		InsecureTLS:    truthy("API_INSECURE_SKIP_VERIFY"),
		ChatLegacyForm: truthy("CHAT_LEGACY_FORM"),
		RedisAddr:      env("REDIS_ADDR", ""),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		SessionTTL:     time.Duration(atoi("SESSION_TTL_SECONDS", 3600)) * time.Second,
	}
	if c.APIEndpoint == "" {
		log.Warn().Msg("API_ENDPOINT is empty; pages will render a configuration error")
	}
	if c.InsecureTLS {
		log.Warn().Msg("API_INSECURE_SKIP_VERIFY is enabled; upstream certificates will not be verified")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
