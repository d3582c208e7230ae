// Package app contains application bootstrap
package app

import (
	"go.uber.org/fx"

	"github.com/Conte777/linkbot/config"
	"github.com/Conte777/linkbot/internal/domain"
	"github.com/Conte777/linkbot/internal/infrastructure"
)

// CreateApp creates fx application with all modules
func CreateApp() fx.Option {
	return fx.Options(
		// Configuration
		fx.Provide(config.Out),

		// Infrastructure (logger, metrics, database, telegram bot, http server)
		infrastructure.Module,

		// Domain (bot business logic)
		domain.Module,
	)
}
