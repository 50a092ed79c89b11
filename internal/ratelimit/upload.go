package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"github.com/greenmandi/storefront/internal/config"
)

const keyImageUpload = "media:upload:%s"

// UploadLimiter throttles admin image uploads per caller. It is disabled
// entirely when no Redis address is configured, in which case every upload
// is allowed.
type UploadLimiter struct {
	enabled bool

	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewUploadLimiter(cfg config.Config) (*UploadLimiter, error) {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, nil
	}
	if cfg.UploadRatePerSec <= 0 || cfg.UploadBurst <= 0 {
		return nil, errors.New("upload rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})

	return &UploadLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    cfg.UploadRatePerSec,
		burst:   cfg.UploadBurst,
	}, nil
}

func (l *UploadLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *UploadLimiter) AllowUpload(ctx context.Context, caller string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyImageUpload, strings.TrimSpace(caller)), l.rate, l.burst)
}
