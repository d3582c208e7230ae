package database

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/Conte777/linkbot/config"
)

// Module provides the gorm connection for fx dependency injection
var Module = fx.Module("database",
	fx.Provide(NewDBWithLifecycle),
)

// NewDBWithLifecycle opens the database and closes it on shutdown
func NewDBWithLifecycle(
	lc fx.Lifecycle,
	cfg *config.DatabaseConfig,
	logger zerolog.Logger,
) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				logger.Error().Err(err).Msg("Failed to get underlying sql.DB")
				return err
			}
			logger.Info().Msg("Closing database connection")
			return sqlDB.Close()
		},
	})

	event := logger.Info().Str("driver", cfg.Driver)
	if cfg.Driver == "postgres" {
		event = event.Str("host", cfg.Host).Str("port", cfg.Port).Str("database", cfg.Name)
	} else {
		event = event.Str("path", cfg.Path)
	}
	event.Msg("Database connected")

	return db, nil
}
