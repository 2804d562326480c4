package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "MONGO_DATABASE", "AUTH_MODE", "MEDIA_STORE", "RATE_LIMIT_RPS", "STORY_SWEEP_INTERVAL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, "pingup", cfg.MongoDatabase)
	assert.Equal(t, AuthModeHeader, cfg.AuthMode)
	assert.Equal(t, "inline", cfg.Media.Kind)
	assert.Equal(t, float64(20), cfg.RateLimitRPS)
	assert.Equal(t, 10*time.Minute, cfg.StorySweepInterval)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ENV", "production")
	t.Setenv("MEDIA_STORE", "s3")
	t.Setenv("S3_BUCKET", "media")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("STORY_SWEEP_INTERVAL", "30s")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "s3", cfg.Media.Kind)
	assert.Equal(t, "media", cfg.Media.Bucket)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 30*time.Second, cfg.StorySweepInterval)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "fast")
	t.Setenv("STORY_SWEEP_INTERVAL", "-1m")

	cfg := Load()
	assert.Equal(t, float64(20), cfg.RateLimitRPS)
	assert.Equal(t, 10*time.Minute, cfg.StorySweepInterval)
}
