package httpserver

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/Conte777/linkbot/config"
)

// Module provides the ops HTTP server and starts it with the app
var Module = fx.Module("httpserver",
	fx.Provide(provideServer),
	fx.Invoke(registerLifecycle),
)

func provideServer(cfg *config.ServiceConfig, db *gorm.DB, reg *prometheus.Registry, logger zerolog.Logger) *Server {
	log := logger.With().Str("component", "httpserver").Logger()
	health := NewHealthHandler(log, NewDatabaseChecker(db))
	return NewServer(cfg.Port, NewRouter(health, reg), log)
}

func registerLifecycle(lc fx.Lifecycle, srv *Server) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return srv.Start()
		},
		OnStop: func(ctx context.Context) error {
			return srv.Stop(ctx)
		},
	})
}
