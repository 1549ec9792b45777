package cache

import (
	"go.uber.org/zap"

	"github.com/signal-x-studio/bc-migration-sub002/internal/domain/shared"
	"github.com/signal-x-studio/bc-migration-sub002/internal/infrastructure/config"
)

// NewProcessedStore selects the processed-item store from configuration.
// Redis is used when enabled and reachable; otherwise the run falls back to
// the in-memory store, which is correct for a single process but shares
// nothing across workers.
func NewProcessedStore(cfg config.RedisConfig, logger *zap.Logger) shared.ProcessedStore {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Enabled {
		store, err := NewRedisProcessedStore(cfg)
		if err == nil {
			logger.Info("using Redis processed-item store",
				zap.String("host", cfg.Host), zap.Int("port", cfg.Port))
			return store
		}
		logger.Warn("Redis unavailable, falling back to in-memory processed-item store",
			zap.Error(err))
	}

	return NewMemoryProcessedStore()
}
