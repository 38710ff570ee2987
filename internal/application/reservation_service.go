package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/meeting-rooms/internal/persistence"
	"github.com/example/meeting-rooms/internal/scheduler"
)

// ReservationStore captures the persistence operations needed by the service.
type ReservationStore interface {
	FindByID(ctx context.Context, id int64) (Reservation, error)
	FindByRoomAndStartBetween(ctx context.Context, roomCode string, from, to time.Time) ([]Reservation, error)
	FindOverlapping(ctx context.Context, roomCode string, start, end time.Time) ([]Reservation, error)
	ExistsOverlapping(ctx context.Context, roomCode string, start, end time.Time) (bool, error)
	Insert(ctx context.Context, reservation Reservation) (Reservation, error)
	UpdateTimeAndRoom(ctx context.Context, id int64, roomCode string, start, end time.Time) (int64, error)
	DeleteByID(ctx context.Context, id int64) error
	ExistsByID(ctx context.Context, id int64) (bool, error)
}

// RoomCatalog resolves room codes.
type RoomCatalog interface {
	GetRoom(ctx context.Context, code string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
}

// UserDirectory resolves user identifiers.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (User, error)
}

// Transactor runs fn inside one store transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReservationService validates booking requests, enforces the no-overlap and
// ownership rules, and orchestrates reads and writes against the store.
type ReservationService struct {
	reservations ReservationStore
	rooms        RoomCatalog
	users        UserDirectory
	tx           Transactor
	location     *time.Location
	logger       *slog.Logger
}

// NewReservationService constructs a reservation service with the provided dependencies.
func NewReservationService(reservations ReservationStore, rooms RoomCatalog, users UserDirectory, tx Transactor, location *time.Location) *ReservationService {
	return NewReservationServiceWithLogger(reservations, rooms, users, tx, location, nil)
}

// NewReservationServiceWithLogger constructs a reservation service with a specified logger.
// A nil Transactor runs each operation directly against the store.
func NewReservationServiceWithLogger(reservations ReservationStore, rooms RoomCatalog, users UserDirectory, tx Transactor, location *time.Location, logger *slog.Logger) *ReservationService {
	if location == nil {
		location = time.Local
	}
	return &ReservationService{
		reservations: reservations,
		rooms:        rooms,
		users:        users,
		tx:           tx,
		location:     location,
		logger:       defaultLogger(logger),
	}
}

// Location returns the zone wall-clock times are interpreted in.
func (s *ReservationService) Location() *time.Location {
	return s.location
}

func (s *ReservationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReservationService", operation, attrs...)
}

func (s *ReservationService) ready() error {
	if s == nil {
		return fmt.Errorf("ReservationService is nil")
	}
	if s.reservations == nil || s.rooms == nil || s.users == nil {
		return fmt.Errorf("reservation service dependencies not configured")
	}
	return nil
}

func (s *ReservationService) within(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.WithinTransaction(ctx, fn)
}

// ListRooms returns every room ordered by code.
func (s *ReservationService) ListRooms(ctx context.Context) (rooms []Room, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "ListRooms")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list rooms", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(rooms)).InfoContext(ctx, "rooms listed")
	}()

	var raw []Room
	raw, err = s.rooms.ListRooms(ctx)
	if err != nil {
		return
	}

	rooms = make([]Room, len(raw))
	copy(rooms, raw)
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Code < rooms[j].Code })
	return
}

// ListDailyReservations returns the reservations of a room starting on the given date.
func (s *ReservationService) ListDailyReservations(ctx context.Context, params DailyReservationsParams) (reservations []Reservation, err error) {
	if err = s.ready(); err != nil {
		return
	}

	year, month, day := params.Date.Date()
	logger := s.loggerWith(ctx, "ListDailyReservations",
		"room_code", params.RoomCode,
		"date", fmt.Sprintf("%04d-%02d-%02d", year, month, day),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list daily reservations", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(reservations)).InfoContext(ctx, "daily reservations listed")
	}()

	if strings.TrimSpace(params.RoomCode) == "" {
		vErr := &ValidationError{}
		vErr.add("room_code", "is required")
		err = vErr
		return
	}

	from, to := scheduler.DayWindow(year, month, day, s.location)
	reservations, err = s.listWindow(ctx, params.RoomCode, from, to)
	return
}

// ListMonthlyReservations returns the reservations of a room starting in the given month.
func (s *ReservationService) ListMonthlyReservations(ctx context.Context, params MonthlyReservationsParams) (reservations []Reservation, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "ListMonthlyReservations",
		"room_code", params.RoomCode,
		"month", fmt.Sprintf("%04d-%02d", params.Year, int(params.Month)),
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list monthly reservations", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(reservations)).InfoContext(ctx, "monthly reservations listed")
	}()

	vErr := &ValidationError{}
	if strings.TrimSpace(params.RoomCode) == "" {
		vErr.add("room_code", "is required")
	}
	if params.Month < time.January || params.Month > time.December {
		vErr.add("month", "must be between 1 and 12")
	}
	if params.Year < 1 || params.Year > 9999 {
		vErr.add("year", "must be between 1 and 9999")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	from, to := scheduler.MonthWindow(params.Year, params.Month, s.location)
	reservations, err = s.listWindow(ctx, params.RoomCode, from, to)
	return
}

func (s *ReservationService) listWindow(ctx context.Context, roomCode string, from, to time.Time) ([]Reservation, error) {
	found, err := s.reservations.FindByRoomAndStartBetween(ctx, roomCode, from, to)
	if err != nil {
		return nil, err
	}

	out := make([]Reservation, len(found))
	copy(out, found)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

// CreateReservation books a room for the requester when the range is free.
func (s *ReservationService) CreateReservation(ctx context.Context, params CreateReservationParams) (reservation Reservation, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "CreateReservation",
		"user_id", params.UserID,
		"room_code", params.RoomCode,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("reservation_id", reservation.ID).InfoContext(ctx, "reservation created")
	}()

	start, end := params.Start.In(s.location), params.End.In(s.location)
	if !scheduler.ValidRange(start, end) {
		err = ErrInvalidTimeRange
		return
	}

	err = s.within(ctx, func(ctx context.Context) error {
		if _, err := s.rooms.GetRoom(ctx, params.RoomCode); err != nil {
			return mapRoomLookupError(err)
		}

		taken, err := s.reservations.ExistsOverlapping(ctx, params.RoomCode, start, end)
		if err != nil {
			return err
		}
		if taken {
			return ErrBookingConflict
		}

		owner, err := s.users.GetUser(ctx, params.UserID)
		if err != nil {
			return mapUserLookupError(err)
		}

		stored, err := s.reservations.Insert(ctx, Reservation{
			UserID:   owner.ID,
			UserName: owner.DisplayName,
			RoomCode: params.RoomCode,
			Start:    start,
			End:      end,
		})
		if err != nil {
			return mapReservationRepoError(err)
		}
		reservation = stored
		return nil
	})
	if err != nil {
		reservation = Reservation{}
	}
	return
}

// ModifyReservation moves an existing reservation to a new room and range on behalf
// of its owner. Ownership is checked before the range, and the reservation itself
// never counts as a conflict.
func (s *ReservationService) ModifyReservation(ctx context.Context, params ModifyReservationParams) (reservation Reservation, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "ModifyReservation",
		"reservation_id", params.ReservationID,
		"user_id", params.UserID,
		"room_code", params.RoomCode,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to modify reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation modified")
	}()

	start, end := params.Start.In(s.location), params.End.In(s.location)

	err = s.within(ctx, func(ctx context.Context) error {
		existing, err := s.reservations.FindByID(ctx, params.ReservationID)
		if err != nil {
			return mapReservationRepoError(err)
		}
		if existing.UserID != params.UserID {
			return ErrOwnershipMismatch
		}
		if !scheduler.ValidRange(start, end) {
			return ErrInvalidTimeRange
		}

		if _, err := s.rooms.GetRoom(ctx, params.RoomCode); err != nil {
			return mapRoomLookupError(err)
		}

		overlapping, err := s.reservations.FindOverlapping(ctx, params.RoomCode, start, end)
		if err != nil {
			return err
		}
		candidate := scheduler.Booking{ID: existing.ID, RoomCode: params.RoomCode, Start: start, End: end}
		if conflicts := scheduler.DetectConflicts(toBookings(overlapping), candidate); len(conflicts) > 0 {
			return fmt.Errorf("%w: overlaps reservation %d", ErrBookingConflict, conflicts[0].WithBookingID)
		}

		affected, err := s.reservations.UpdateTimeAndRoom(ctx, existing.ID, params.RoomCode, start, end)
		if err != nil {
			return mapReservationRepoError(err)
		}
		if affected == 0 {
			return ErrReservationNotFound
		}

		updated, err := s.reservations.FindByID(ctx, existing.ID)
		if err != nil {
			return mapReservationRepoError(err)
		}
		reservation = updated
		return nil
	})
	if err != nil {
		reservation = Reservation{}
	}
	return
}

// DeleteReservation cancels a reservation. When params.RequesterID is set only the
// owner may cancel.
func (s *ReservationService) DeleteReservation(ctx context.Context, params DeleteReservationParams) (err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "DeleteReservation",
		"reservation_id", params.ReservationID,
		"requester_id", params.RequesterID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation deleted")
	}()

	err = s.within(ctx, func(ctx context.Context) error {
		if params.RequesterID != "" {
			existing, err := s.reservations.FindByID(ctx, params.ReservationID)
			if err != nil {
				return mapReservationRepoError(err)
			}
			if existing.UserID != params.RequesterID {
				return ErrOwnershipMismatch
			}
		} else {
			exists, err := s.reservations.ExistsByID(ctx, params.ReservationID)
			if err != nil {
				return err
			}
			if !exists {
				return ErrReservationNotFound
			}
		}

		return mapReservationRepoError(s.reservations.DeleteByID(ctx, params.ReservationID))
	})
	return
}

func toBookings(reservations []Reservation) []scheduler.Booking {
	bookings := make([]scheduler.Booking, 0, len(reservations))
	for _, r := range reservations {
		bookings = append(bookings, scheduler.Booking{ID: r.ID, RoomCode: r.RoomCode, Start: r.Start, End: r.End})
	}
	return bookings
}

func mapRoomLookupError(err error) error {
	if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrRoomNotFound) {
		return ErrRoomNotFound
	}
	return err
}

func mapUserLookupError(err error) error {
	if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrUserNotFound) {
		return ErrUserNotFound
	}
	return err
}

func mapReservationRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrReservationNotFound) {
		return ErrReservationNotFound
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("reservation", "violates a store constraint")
		return vErr
	}
	return err
}
