package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestLoadRateLimitConfigDefaults(t *testing.T) {
    cfg := LoadRateLimitConfig()
    assert.True(t, cfg.Enabled)
    assert.Equal(t, 60, cfg.Capacity)
    assert.Equal(t, 1, cfg.RefillTokens)
    assert.Equal(t, time.Second, cfg.RefillInterval)
    assert.Equal(t, "ip_user_route", cfg.KeyStrategy)
    assert.Equal(t, "rl", cfg.Prefix)
}

func TestLoadRateLimitConfigOverrides(t *testing.T) {
    t.Setenv("RATE_LIMIT_ENABLED", "false")
    t.Setenv("RATE_LIMIT_CAPACITY", "10")
    t.Setenv("RATE_LIMIT_REFILL_EVERY", "250ms")
    t.Setenv("RATE_LIMIT_TTL", "1s") // below minimum, should be clamped

    cfg := LoadRateLimitConfig()
    assert.False(t, cfg.Enabled)
    assert.Equal(t, 10, cfg.Capacity)
    assert.Equal(t, 1, cfg.RefillTokens)
    assert.Equal(t, 250*time.Millisecond, cfg.RefillInterval)
    assert.Equal(t, 5*cfg.RefillInterval, cfg.TTL)
}

func TestLoadRateLimitConfigClampsNonsense(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "-3")
    t.Setenv("RATE_LIMIT_REFILL_TOKENS", "0")

    cfg := LoadRateLimitConfig()
    assert.Equal(t, 1, cfg.Capacity)
    assert.Equal(t, 1, cfg.RefillTokens)
}

func TestLoadCacheConfig(t *testing.T) {
    t.Run("defaults", func(t *testing.T) {
        cfg := LoadCacheConfig()
        assert.True(t, cfg.Enabled)
        assert.Equal(t, map[string]bool{"GET": true}, cfg.Methods)
        assert.Equal(t, 30*time.Second, cfg.TTL)
        assert.Equal(t, "trips", cfg.Prefix)
    })

    t.Run("methods are upper-cased and trimmed", func(t *testing.T) {
        t.Setenv("CACHE_METHODS", " get , head ")
        cfg := LoadCacheConfig()
        assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
    })
}
