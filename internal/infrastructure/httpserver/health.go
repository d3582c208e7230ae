// Package httpserver exposes the operational HTTP surface: health and metrics
package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// HealthChecker is a component able to report its health
type HealthChecker interface {
	Name() string
	HealthCheck(ctx context.Context) error
}

// ComponentHealth represents health status of a single component
type ComponentHealth struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the JSON response for health check
type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components []ComponentHealth `json:"components"`
}

// HealthHandler handles HTTP health check requests
type HealthHandler struct {
	checkers []HealthChecker
	logger   zerolog.Logger
}

// NewHealthHandler creates a new health check handler
func NewHealthHandler(logger zerolog.Logger, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{checkers: checkers, logger: logger}
}

// ServeHTTP implements http.Handler interface
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "healthy", Timestamp: time.Now().UTC()}
	statusCode := http.StatusOK

	for _, c := range h.checkers {
		component := ComponentHealth{Name: c.Name(), Healthy: true}
		if err := c.HealthCheck(ctx); err != nil {
			component.Healthy = false
			component.Message = err.Error()
			resp.Status = "unhealthy"
			statusCode = http.StatusServiceUnavailable
		}
		resp.Components = append(resp.Components, component)
	}

	if statusCode != http.StatusOK {
		h.logger.Warn().Interface("components", resp.Components).Msg("Health check failed")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode health response")
	}
}

// DatabaseChecker pings the registry database
type DatabaseChecker struct {
	db *gorm.DB
}

// NewDatabaseChecker creates a checker for db
func NewDatabaseChecker(db *gorm.DB) *DatabaseChecker {
	return &DatabaseChecker{db: db}
}

// Name implements HealthChecker
func (c *DatabaseChecker) Name() string { return "database" }

// HealthCheck implements HealthChecker
func (c *DatabaseChecker) HealthCheck(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
