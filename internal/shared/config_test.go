package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "REDIS_ADDR", "KAFKA_BROKERS", "REVIEW_RATE_LIMIT", "NAVER_TIMEOUT_SECONDS", "BCRYPT_COST", "CORS_ALLOWED_ORIGINS", "MIGRATE_ON_START", "TRUST_PROXY_HEADERS"} {
		t.Setenv(k, "")
	}
	c := Load()
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Empty(t, c.RedisAddr)
	assert.Nil(t, c.KafkaBrokers)
	assert.Equal(t, 10, c.ReviewRateLimit)
	assert.Equal(t, time.Minute, c.ReviewRateWindow)
	assert.Equal(t, 5*time.Second, c.NaverTimeout)
	assert.Equal(t, 10, c.BcryptCost)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.True(t, c.MigrateOnStart)
	assert.False(t, c.TrustProxy)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("REVIEW_RATE_LIMIT", "3")
	t.Setenv("BCRYPT_COST", "not-a-number")
	t.Setenv("MIGRATE_ON_START", "false")
	t.Setenv("NAVER_RPS", "3")

	c := Load()
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.KafkaBrokers)
	assert.Equal(t, 3, c.ReviewRateLimit)
	assert.Equal(t, 10, c.BcryptCost)
	assert.False(t, c.MigrateOnStart)
	assert.Equal(t, 3, c.NaverRPS)
}
