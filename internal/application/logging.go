package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/meeting-rooms/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	return logging.FromContextOr(context.Background(), logger)
}

// serviceLogger prefers the request logger carried by ctx over base.
func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	pairs := make([]any, 0, 4+len(attrs))
	pairs = append(pairs, "service", serviceName)
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	pairs = append(pairs, attrs...)
	return logging.FromContextOr(ctx, base).With(pairs...)
}

var errorKinds = []struct {
	target error
	kind   string
}{
	{ErrInvalidTimeRange, "invalid_time_range"},
	{ErrRoomNotFound, "room_not_found"},
	{ErrUserNotFound, "user_not_found"},
	{ErrBookingConflict, "booking_conflict"},
	{ErrReservationNotFound, "reservation_not_found"},
	{ErrOwnershipMismatch, "ownership_mismatch"},
	{context.DeadlineExceeded, "timeout"},
	{context.Canceled, "canceled"},
}

// ErrorKind maps an error to a stable label for the error_kind log attribute.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.kind
		}
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}
	return "unexpected"
}
