package persistence

import (
	"context"
	"time"
)

// UserRepository exposes lookups and seeding for users.
type UserRepository interface {
	GetUser(ctx context.Context, id string) (User, error)
	UpsertUser(ctx context.Context, user User) error
}

// RoomRepository exposes lookups and seeding for rooms.
type RoomRepository interface {
	GetRoom(ctx context.Context, code string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	UpsertRoom(ctx context.Context, room Room) error
}

// ReservationRepository stores reservations and answers range queries over them.
//
// Range queries treat intervals as half-open: a reservation overlaps [start, end)
// when its start is before end and its end is after start.
type ReservationRepository interface {
	FindByID(ctx context.Context, id int64) (Reservation, error)
	FindByRoomAndStartBetween(ctx context.Context, roomCode string, from, to time.Time) ([]Reservation, error)
	FindOverlapping(ctx context.Context, roomCode string, start, end time.Time) ([]Reservation, error)
	ExistsOverlapping(ctx context.Context, roomCode string, start, end time.Time) (bool, error)
	Insert(ctx context.Context, reservation Reservation) (Reservation, error)
	UpdateTimeAndRoom(ctx context.Context, id int64, roomCode string, start, end time.Time) (int64, error)
	DeleteByID(ctx context.Context, id int64) error
	ExistsByID(ctx context.Context, id int64) (bool, error)
}

// Transactor runs fn inside a single store transaction. Repository calls made with
// the context handed to fn join that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
