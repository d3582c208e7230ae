package workers

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/Conte777/linkbot/config"
	"github.com/Conte777/linkbot/internal/domain/bot/deps"
	"github.com/Conte777/linkbot/internal/domain/bot/repository/gormdb"
	"github.com/Conte777/linkbot/internal/infrastructure/metrics"
)

// Module provides workers for fx dependency injection
var Module = fx.Module("bot-workers",
	fx.Provide(provideDeletionScheduler),
	fx.Provide(func(s *DeletionScheduler) deps.DeletionScheduler { return s }),
	fx.Invoke(registerDeletionSchedulerLifecycle),
)

func provideDeletionScheduler(cfg *config.DeliveryConfig, db *gorm.DB, m *metrics.Metrics, logger zerolog.Logger) *DeletionScheduler {
	var store deps.DeletionStore
	if cfg.Persist {
		store = gormdb.NewDeletionStore(db)
	}
	return NewDeletionScheduler(store, m, logger.With().Str("component", "deletion-scheduler").Logger())
}

// registerDeletionSchedulerLifecycle registers deletion scheduler lifecycle hooks
func registerDeletionSchedulerLifecycle(lc fx.Lifecycle, scheduler *DeletionScheduler) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			scheduler.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			return scheduler.Stop()
		},
	})
}
