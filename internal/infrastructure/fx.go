// Package infrastructure contains infrastructure layer components
package infrastructure

import (
	"go.uber.org/fx"

	"github.com/Conte777/linkbot/internal/infrastructure/database"
	"github.com/Conte777/linkbot/internal/infrastructure/httpserver"
	"github.com/Conte777/linkbot/internal/infrastructure/logger"
	"github.com/Conte777/linkbot/internal/infrastructure/metrics"
	"github.com/Conte777/linkbot/internal/infrastructure/telegram"
)

// Module provides all infrastructure components for fx dependency injection
var Module = fx.Module("infrastructure",
	logger.Module,
	metrics.Module,
	database.Module,
	telegram.Module,
	httpserver.Module,
)
