// Package bot contains the bot domain module
package bot

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/Conte777/linkbot/config"
	telegramDelivery "github.com/Conte777/linkbot/internal/domain/bot/delivery/telegram"
	"github.com/Conte777/linkbot/internal/domain/bot/deps"
	"github.com/Conte777/linkbot/internal/domain/bot/repository/gormdb"
	"github.com/Conte777/linkbot/internal/domain/bot/repository/http_clients/resolver"
	kafkaRepo "github.com/Conte777/linkbot/internal/domain/bot/repository/kafka"
	"github.com/Conte777/linkbot/internal/domain/bot/usecase/buissines"
	"github.com/Conte777/linkbot/internal/domain/bot/workers"
	"github.com/Conte777/linkbot/internal/infrastructure/metrics"
	"github.com/Conte777/linkbot/internal/infrastructure/telegram"
)

// Module provides bot domain components for fx dependency injection
var Module = fx.Module("bot",
	// Repository
	fx.Provide(provideUserRegistry),
	fx.Provide(resolver.NewClient),
	fx.Provide(provideAuditSinks),

	// UseCase
	fx.Provide(buissines.NewGate),
	fx.Provide(buissines.NewBroadcaster),
	fx.Provide(provideAuditMirror),
	fx.Provide(buissines.NewUseCase),

	// Delivery - Telegram (needs raw bot from infrastructure)
	fx.Provide(provideTelegramHandlers),
	fx.Provide(provideDispatcher),
	fx.Provide(telegramDelivery.NewRouter),

	// Workers
	workers.Module,

	// Wire cyclic dependency and register routes
	fx.Invoke(wireAndRegister),
)

func provideUserRegistry(db *gorm.DB, logger zerolog.Logger) deps.UserRegistry {
	return gormdb.NewUserRegistry(db, logger.With().Str("component", "user-registry").Logger())
}

// provideAuditSinks builds the enabled audit sinks: the audit channel and
// the Kafka event stream
func provideAuditSinks(
	lc fx.Lifecycle,
	auditCfg *config.AuditConfig,
	kafkaCfg *config.KafkaConfig,
	logger zerolog.Logger,
) ([]deps.AuditSink, error) {
	var sinks []deps.AuditSink

	if auditCfg.Channel != "" {
		sinks = append(sinks, buissines.NewChannelAuditSink(auditCfg))
	}

	if kafkaCfg.Enabled {
		producer, err := kafkaRepo.NewAuditProducer(kafkaCfg, logger.With().Str("component", "audit-producer").Logger())
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				return producer.Close()
			},
		})
		sinks = append(sinks, producer)
	}

	if len(sinks) == 0 {
		logger.Info().Msg("Audit mirroring disabled")
	}

	return sinks, nil
}

func provideAuditMirror(sinks []deps.AuditSink, m *metrics.Metrics, logger zerolog.Logger) *buissines.AuditMirror {
	return buissines.NewAuditMirror(sinks, m, logger.With().Str("component", "audit").Logger())
}

// provideTelegramHandlers creates Telegram handlers with raw bot
func provideTelegramHandlers(uc *buissines.UseCase, bot *telegram.Bot, logger zerolog.Logger) *telegramDelivery.Handlers {
	return telegramDelivery.NewHandlers(uc, bot.Raw(), logger)
}

func provideDispatcher(cfg *config.TelegramConfig, logger zerolog.Logger) *telegramDelivery.Dispatcher {
	return telegramDelivery.NewDispatcher(cfg.Workers, logger.With().Str("component", "dispatcher").Logger())
}

// wireAndRegister resolves cyclic dependency and registers routes
func wireAndRegister(
	lc fx.Lifecycle,
	uc *buissines.UseCase,
	broadcaster *buissines.Broadcaster,
	handlers *telegramDelivery.Handlers,
	router *telegramDelivery.Router,
	dispatcher *telegramDelivery.Dispatcher,
	scheduler *workers.DeletionScheduler,
	bot *telegram.Bot,
) {
	// Handlers implements deps.Messenger interface
	// This resolves the cyclic dependency: UseCase -> Messenger <- Handlers -> UseCase
	uc.SetSender(handlers)
	scheduler.SetDeleter(handlers)

	// Register Telegram routes
	router.RegisterRoutes(bot.Raw())

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			broadcaster.Stop()
			err := dispatcher.Stop(ctx)
			uc.Wait()
			return err
		},
	})
}
