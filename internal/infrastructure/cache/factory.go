package cache

import (
	"go.uber.org/zap"

	"github.com/invoicehub/backend/internal/domain/shared"
	"github.com/invoicehub/backend/internal/infrastructure/config"
)

// NewIdempotencyStore selects the idempotency store implementation from
// configuration. A Redis store is used when Redis is enabled so that
// duplicate detection holds across instances; otherwise, or when Redis
// cannot be reached, a process-local store is used. Better to risk
// duplicate processing on a degraded deployment than to drop events.
func NewIdempotencyStore(cfg *config.RedisConfig, log *zap.Logger) shared.IdempotencyStore {
	if !cfg.Enabled {
		return NewInMemoryIdempotencyStore()
	}

	store, err := NewRedisIdempotencyStore(cfg.Addr(), cfg.Password, cfg.DB)
	if err != nil {
		log.Warn("Redis unavailable, falling back to in-memory idempotency store",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		return NewInMemoryIdempotencyStore()
	}

	log.Info("using Redis idempotency store", zap.String("addr", cfg.Addr()))
	return store
}
