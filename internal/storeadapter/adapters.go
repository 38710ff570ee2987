// Package storeadapter converts between persistence records and application models
// so the reservation service can run on any persistence implementation.
package storeadapter

import (
	"context"
	"time"

	"github.com/example/meeting-rooms/internal/application"
	"github.com/example/meeting-rooms/internal/persistence"
)

var (
	_ application.ReservationStore = (*ReservationStore)(nil)
	_ application.RoomCatalog      = (*RoomCatalog)(nil)
	_ application.UserDirectory    = (*UserDirectory)(nil)
)

type ReservationStore struct {
	repo persistence.ReservationRepository
}

func NewReservationStore(repo persistence.ReservationRepository) *ReservationStore {
	return &ReservationStore{repo: repo}
}

func (a *ReservationStore) FindByID(ctx context.Context, id int64) (application.Reservation, error) {
	stored, err := a.repo.FindByID(ctx, id)
	if err != nil {
		return application.Reservation{}, err
	}
	return toApplicationReservation(stored), nil
}

func (a *ReservationStore) FindByRoomAndStartBetween(ctx context.Context, roomCode string, from, to time.Time) ([]application.Reservation, error) {
	stored, err := a.repo.FindByRoomAndStartBetween(ctx, roomCode, from, to)
	if err != nil {
		return nil, err
	}
	return toApplicationReservations(stored), nil
}

func (a *ReservationStore) FindOverlapping(ctx context.Context, roomCode string, start, end time.Time) ([]application.Reservation, error) {
	stored, err := a.repo.FindOverlapping(ctx, roomCode, start, end)
	if err != nil {
		return nil, err
	}
	return toApplicationReservations(stored), nil
}

func (a *ReservationStore) ExistsOverlapping(ctx context.Context, roomCode string, start, end time.Time) (bool, error) {
	return a.repo.ExistsOverlapping(ctx, roomCode, start, end)
}

func (a *ReservationStore) Insert(ctx context.Context, reservation application.Reservation) (application.Reservation, error) {
	stored, err := a.repo.Insert(ctx, toPersistenceReservation(reservation))
	if err != nil {
		return application.Reservation{}, err
	}
	return toApplicationReservation(stored), nil
}

func (a *ReservationStore) UpdateTimeAndRoom(ctx context.Context, id int64, roomCode string, start, end time.Time) (int64, error) {
	return a.repo.UpdateTimeAndRoom(ctx, id, roomCode, start, end)
}

func (a *ReservationStore) DeleteByID(ctx context.Context, id int64) error {
	return a.repo.DeleteByID(ctx, id)
}

func (a *ReservationStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return a.repo.ExistsByID(ctx, id)
}

type RoomCatalog struct {
	repo persistence.RoomRepository
}

func NewRoomCatalog(repo persistence.RoomRepository) *RoomCatalog {
	return &RoomCatalog{repo: repo}
}

func (a *RoomCatalog) GetRoom(ctx context.Context, code string) (application.Room, error) {
	stored, err := a.repo.GetRoom(ctx, code)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *RoomCatalog) ListRooms(ctx context.Context) ([]application.Room, error) {
	stored, err := a.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	rooms := make([]application.Room, 0, len(stored))
	for _, room := range stored {
		rooms = append(rooms, toApplicationRoom(room))
	}
	return rooms, nil
}

// UserDirectory exposes users without their credential hash.
type UserDirectory struct {
	repo persistence.UserRepository
}

func NewUserDirectory(repo persistence.UserRepository) *UserDirectory {
	return &UserDirectory{repo: repo}
}

func (a *UserDirectory) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return application.User{ID: stored.ID, DisplayName: stored.DisplayName, Email: stored.Email}, nil
}

func toApplicationRoom(room persistence.Room) application.Room {
	return application.Room{Code: room.Code, Name: room.Name, Capacity: room.Capacity}
}

func toApplicationReservation(r persistence.Reservation) application.Reservation {
	return application.Reservation{
		ID:       r.ID,
		UserID:   r.UserID,
		UserName: r.UserName,
		RoomCode: r.RoomCode,
		Start:    r.Start,
		End:      r.End,
	}
}

func toApplicationReservations(stored []persistence.Reservation) []application.Reservation {
	out := make([]application.Reservation, 0, len(stored))
	for _, r := range stored {
		out = append(out, toApplicationReservation(r))
	}
	return out
}

func toPersistenceReservation(r application.Reservation) persistence.Reservation {
	return persistence.Reservation{
		ID:       r.ID,
		UserID:   r.UserID,
		UserName: r.UserName,
		RoomCode: r.RoomCode,
		Start:    r.Start,
		End:      r.End,
	}
}
