package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/meeting-rooms/internal/persistence"
)

const reservationColumns = `id, user_id, user_name, room_code, start_time, end_time`

type reservationRow struct {
	ID        int64  `db:"id"`
	UserID    string `db:"user_id"`
	UserName  string `db:"user_name"`
	RoomCode  string `db:"room_code"`
	StartTime string `db:"start_time"`
	EndTime   string `db:"end_time"`
}

// ReservationRepository implements persistence.ReservationRepository using SQLite.
//
// Times are stored as wall-clock TEXT in the pool's location, so range predicates
// compare strings.
type ReservationRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewReservationRepository creates a new SQLite reservation repository.
func NewReservationRepository(pool *ConnectionPool) *ReservationRepository {
	return &ReservationRepository{pool: pool, mapper: NewErrorMapper()}
}

// FindByID retrieves a reservation by identifier.
func (r *ReservationRepository) FindByID(ctx context.Context, id int64) (persistence.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`

	var row reservationRow
	if err := sqlx.GetContext(ctx, r.pool.querier(ctx), &row, query, id); err != nil {
		return persistence.Reservation{}, r.mapper.MapError(err)
	}
	return r.toReservation(row)
}

// FindByRoomAndStartBetween returns reservations of a room whose start lies in
// [from, to), ordered by start then id.
func (r *ReservationRepository) FindByRoomAndStartBetween(ctx context.Context, roomCode string, from, to time.Time) ([]persistence.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE room_code = ? AND start_time >= ? AND start_time < ?
		ORDER BY start_time ASC, id ASC`

	return r.list(ctx, query, roomCode, r.pool.formatTime(from), r.pool.formatTime(to))
}

// FindOverlapping returns reservations of a room that overlap [start, end).
// Reservations that merely touch the range are not returned.
func (r *ReservationRepository) FindOverlapping(ctx context.Context, roomCode string, start, end time.Time) ([]persistence.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE room_code = ? AND start_time < ? AND end_time > ?
		ORDER BY start_time ASC, id ASC`

	return r.list(ctx, query, roomCode, r.pool.formatTime(end), r.pool.formatTime(start))
}

// ExistsOverlapping reports whether any reservation of a room overlaps [start, end).
func (r *ReservationRepository) ExistsOverlapping(ctx context.Context, roomCode string, start, end time.Time) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE room_code = ? AND start_time < ? AND end_time > ?
		)`

	var exists bool
	if err := sqlx.GetContext(ctx, r.pool.querier(ctx), &exists, query,
		roomCode, r.pool.formatTime(end), r.pool.formatTime(start)); err != nil {
		return false, r.mapper.MapError(err)
	}
	return exists, nil
}

// Insert stores a new reservation and returns it with the assigned identifier.
func (r *ReservationRepository) Insert(ctx context.Context, reservation persistence.Reservation) (persistence.Reservation, error) {
	if !reservation.Start.Before(reservation.End) {
		return persistence.Reservation{}, persistence.ErrConstraintViolation
	}

	const query = `
		INSERT INTO reservations (user_id, user_name, room_code, start_time, end_time)
		VALUES (:user_id, :user_name, :room_code, :start_time, :end_time)`

	row := reservationRow{
		UserID:    reservation.UserID,
		UserName:  reservation.UserName,
		RoomCode:  reservation.RoomCode,
		StartTime: r.pool.formatTime(reservation.Start),
		EndTime:   r.pool.formatTime(reservation.End),
	}

	result, err := sqlx.NamedExecContext(ctx, r.pool.querier(ctx), query, row)
	if err != nil {
		return persistence.Reservation{}, r.mapper.MapError(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Reservation{}, fmt.Errorf("failed to get inserted id: %w", err)
	}

	row.ID = id
	return r.toReservation(row)
}

// UpdateTimeAndRoom moves a reservation and reports the rows affected.
func (r *ReservationRepository) UpdateTimeAndRoom(ctx context.Context, id int64, roomCode string, start, end time.Time) (int64, error) {
	if !start.Before(end) {
		return 0, persistence.ErrConstraintViolation
	}

	const query = `UPDATE reservations SET room_code = ?, start_time = ?, end_time = ? WHERE id = ?`

	result, err := r.pool.querier(ctx).ExecContext(ctx, query,
		roomCode, r.pool.formatTime(start), r.pool.formatTime(end), id)
	if err != nil {
		return 0, r.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected, nil
}

// DeleteByID removes a reservation. A missing row yields persistence.ErrNotFound.
func (r *ReservationRepository) DeleteByID(ctx context.Context, id int64) error {
	result, err := r.pool.querier(ctx).ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// ExistsByID reports whether a reservation with the identifier exists.
func (r *ReservationRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, r.pool.querier(ctx), &exists,
		`SELECT EXISTS (SELECT 1 FROM reservations WHERE id = ?)`, id); err != nil {
		return false, r.mapper.MapError(err)
	}
	return exists, nil
}

func (r *ReservationRepository) list(ctx context.Context, query string, args ...any) ([]persistence.Reservation, error) {
	var rows []reservationRow
	if err := sqlx.SelectContext(ctx, r.pool.querier(ctx), &rows, query, args...); err != nil {
		return nil, r.mapper.MapError(err)
	}

	reservations := make([]persistence.Reservation, 0, len(rows))
	for _, row := range rows {
		reservation, err := r.toReservation(row)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	return reservations, nil
}

func (r *ReservationRepository) toReservation(row reservationRow) (persistence.Reservation, error) {
	start, err := r.pool.parseTime("start_time", row.StartTime)
	if err != nil {
		return persistence.Reservation{}, err
	}
	end, err := r.pool.parseTime("end_time", row.EndTime)
	if err != nil {
		return persistence.Reservation{}, err
	}
	return persistence.Reservation{
		ID:       row.ID,
		UserID:   row.UserID,
		UserName: row.UserName,
		RoomCode: row.RoomCode,
		Start:    start,
		End:      end,
	}, nil
}
