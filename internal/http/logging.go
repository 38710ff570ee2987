package http

import (
	"context"
	"log/slog"

	"github.com/example/meeting-rooms/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	return logging.FromContextOr(context.Background(), logger)
}

// handlerLogger returns the request logger tagged with the handler and operation.
func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContextOr(ctx, fallback).With("handler", handlerName)
	if operation != "" {
		logger = logger.With("operation", operation)
	}
	if len(attrs) > 0 {
		logger = logger.With(attrs...)
	}
	return logger
}
