package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	AmqpURL     string

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	TranslateRPS  int

	SourceLang  string
	TargetLangs []string

	ViewTTL         time.Duration
	ListTTL         time.Duration
	RefreshTTLOnHit bool

	RepairWorkers int
	WarmWorkers   int
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
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/homestay?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisPass:   env("REDIS_PASSWORD", ""),
		AmqpURL:     env("AMQP_URL", ""),

		OpenAIKey:     env("OPENAI_API_KEY", ""),
		OpenAIModel:   env("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: env("OPENAI_BASE_URL", ""),
		TranslateRPS:  atoi("TRANSLATE_RPS", 5),

		SourceLang:  env("SOURCE_LANG", "en"),
		TargetLangs: splitLangs(env("TARGET_LANGS", "ar")),

		// Localized views are expensive to rebuild (one provider round-trip
		// per field group), so they live long; filtered lists churn and stay
		// short-lived.
		ViewTTL:         time.Duration(atoi("VIEW_TTL_SECONDS", 90*24*3600)) * time.Second,
		ListTTL:         time.Duration(atoi("LIST_TTL_SECONDS", 600)) * time.Second,
		RefreshTTLOnHit: env("REFRESH_TTL_ON_HIT", "") == "true",

		RepairWorkers: atoi("REPAIR_WORKERS", 4),
		WarmWorkers:   atoi("WARM_WORKERS", 8),
	}
	if c.OpenAIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is empty, serving canonical content untranslated")
	}
	return c
}

func splitLangs(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
