package sqlite

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/example/meeting-rooms/internal/persistence"
)

type roomRow struct {
	Code     string `db:"room_code"`
	Name     string `db:"room_name"`
	Capacity int    `db:"capacity"`
}

func (r roomRow) toRoom() persistence.Room {
	return persistence.Room{Code: r.Code, Name: r.Name, Capacity: r.Capacity}
}

// RoomRepository implements persistence.RoomRepository using SQLite.
type RoomRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewRoomRepository creates a new SQLite room repository.
func NewRoomRepository(pool *ConnectionPool) *RoomRepository {
	return &RoomRepository{pool: pool, mapper: NewErrorMapper()}
}

// GetRoom retrieves a room by code.
func (r *RoomRepository) GetRoom(ctx context.Context, code string) (persistence.Room, error) {
	if strings.TrimSpace(code) == "" {
		return persistence.Room{}, persistence.ErrNotFound
	}

	const query = `SELECT room_code, room_name, capacity FROM meeting_rooms WHERE room_code = ?`

	var row roomRow
	if err := sqlx.GetContext(ctx, r.pool.querier(ctx), &row, query, code); err != nil {
		return persistence.Room{}, r.mapper.MapError(err)
	}
	return row.toRoom(), nil
}

// ListRooms returns all rooms ordered by code.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	const query = `SELECT room_code, room_name, capacity FROM meeting_rooms ORDER BY room_code ASC`

	var rows []roomRow
	if err := sqlx.SelectContext(ctx, r.pool.querier(ctx), &rows, query); err != nil {
		return nil, r.mapper.MapError(err)
	}

	rooms := make([]persistence.Room, 0, len(rows))
	for _, row := range rows {
		rooms = append(rooms, row.toRoom())
	}
	return rooms, nil
}

// UpsertRoom inserts a room or refreshes its name and capacity.
func (r *RoomRepository) UpsertRoom(ctx context.Context, room persistence.Room) error {
	if strings.TrimSpace(room.Code) == "" || room.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	const query = `
		INSERT INTO meeting_rooms (room_code, room_name, capacity)
		VALUES (:room_code, :room_name, :capacity)
		ON CONFLICT (room_code) DO UPDATE SET
			room_name = excluded.room_name,
			capacity = excluded.capacity`

	row := roomRow{Code: room.Code, Name: room.Name, Capacity: room.Capacity}
	if _, err := sqlx.NamedExecContext(ctx, r.pool.querier(ctx), query, row); err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}
