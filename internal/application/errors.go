package application

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrInvalidTimeRange is returned when start is not before end or either bound
	// is off the half-hour grid.
	ErrInvalidTimeRange = errors.New("application: invalid time range")
	// ErrRoomNotFound is returned when a room code does not resolve.
	ErrRoomNotFound = errors.New("application: room not found")
	// ErrUserNotFound is returned when a user identifier does not resolve.
	ErrUserNotFound = errors.New("application: user not found")
	// ErrBookingConflict is returned when the requested range overlaps another reservation of the room.
	ErrBookingConflict = errors.New("application: booking conflict")
	// ErrReservationNotFound is returned when a reservation id does not resolve.
	ErrReservationNotFound = errors.New("application: reservation not found")
	// ErrOwnershipMismatch is returned when someone other than the owner changes a reservation.
	ErrOwnershipMismatch = errors.New("application: ownership mismatch")
)

// ValidationError reports malformed request fields, keyed by field name.
type ValidationError struct {
	FieldErrors map[string]string
}

func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("validation failed: ")
	for i, field := range fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(field)
		b.WriteString(" ")
		b.WriteString(v.FieldErrors[field])
	}
	return b.String()
}

func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
