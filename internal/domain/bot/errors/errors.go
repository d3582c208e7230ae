// Package errors contains domain-specific errors for the bot domain
package errors

import (
	pkgerrors "github.com/Conte777/linkbot/pkg/errors"
)

// Domain errors for bot operations
var (
	ErrNotAdministrator      = pkgerrors.NewPermissionError("command is restricted to the administrator")
	ErrInvalidLink           = pkgerrors.NewValidationError("link must start with http:// or https://")
	ErrEmptyBroadcast        = pkgerrors.NewValidationError("broadcast message cannot be empty")
	ErrNotAwaiting           = pkgerrors.NewValidationError("no broadcast is awaiting a message")
	ErrResolveFailed         = pkgerrors.NewUpstreamError("link resolution failed")
	ErrRegistryUnavailable   = pkgerrors.NewPersistenceError("user registry unavailable")
	ErrMessageDeliveryFailed = pkgerrors.NewDeliveryError("message delivery failed")
	ErrEmptyMessage          = pkgerrors.NewValidationError("message text cannot be empty")
	ErrSenderNotSet          = pkgerrors.NewInternalError("messenger is not set")
)
