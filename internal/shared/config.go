package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv         string
	LogLevel       string
	HTTPAddr       string
	MetricsAddr    string
	MySQLDSN       string
	MigrateOnStart bool

	RedisAddr        string
	RedisPass        string
	RedisDB          int
	ReviewRateLimit  int
	ReviewRateWindow time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	NaverBaseURL      string
	NaverClientID     string
	NaverClientSecret string
	NaverTimeout      time.Duration
	NaverRPS          int

	BcryptCost     int
	AllowedOrigins []string
	TrustProxy     bool
	PublicBaseURL  string
	ImportWorkers  int
	ImportQueries  []string
}

// Load reads the environment. A .env file in the working directory, when
// present, fills variables that are not already set.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not read .env")
	}

	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		LogLevel:       env("LOG_LEVEL", "info"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ""),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/placereview?parseTime=true&charset=utf8mb4&loc=UTC"),
		MigrateOnStart: boolean("MIGRATE_ON_START", true),

		RedisAddr:        env("REDIS_ADDR", ""),
		RedisPass:        env("REDIS_PASSWORD", ""),
		RedisDB:          atoi("REDIS_DB", 0),
		ReviewRateLimit:  atoi("REVIEW_RATE_LIMIT", 10),
		ReviewRateWindow: time.Duration(atoi("REVIEW_RATE_WINDOW_SECONDS", 60)) * time.Second,

		KafkaBrokers: list("KAFKA_BROKERS", nil),
		KafkaTopic:   env("KAFKA_TOPIC", "review-events"),

		NaverBaseURL:      env("NAVER_SEARCH_BASE_URL", "https://openapi.naver.com/v1/search/local.json"),
		NaverClientID:     env("NAVER_SEARCH_CLIENT_ID", ""),
		NaverClientSecret: env("NAVER_SEARCH_CLIENT_SECRET", ""),
		NaverTimeout:      time.Duration(atoi("NAVER_TIMEOUT_SECONDS", 5)) * time.Second,
		NaverRPS:          atoi("NAVER_RPS", 10),

		BcryptCost:     atoi("BCRYPT_COST", 10),
		AllowedOrigins: list("CORS_ALLOWED_ORIGINS", []string{"*"}),
		TrustProxy:     boolean("TRUST_PROXY_HEADERS", false),
		PublicBaseURL:  env("PUBLIC_BASE_URL", "http://localhost:3000"),
		ImportWorkers:  atoi("IMPORT_WORKERS", 4),
		ImportQueries:  list("IMPORT_QUERIES", nil),
	}
	if c.NaverClientID == "" || c.NaverClientSecret == "" {
		log.Warn().Msg("NAVER_SEARCH_CLIENT_ID/SECRET not set; place search is disabled")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-integer config value")
	}
	return def
}

func boolean(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// list splits a comma separated value, dropping empty entries.
func list(k string, def []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
