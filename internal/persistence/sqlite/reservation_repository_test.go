package sqlite

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/meeting-rooms/internal/persistence"
)

func insertReservation(t *testing.T, repo *ReservationRepository, userID, room string, start, end time.Time) persistence.Reservation {
	t.Helper()
	stored, err := repo.Insert(context.Background(), persistence.Reservation{
		UserID:   userID,
		UserName: "Kim",
		RoomCode: room,
		Start:    start,
		End:      end,
	})
	require.NoError(t, err)
	return stored
}

func TestReservationRepository_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	seedReferenceData(t, storage)
	repo := storage.Reservations

	first := insertReservation(t, repo, "u1", "A101", at(6, 10, 0), at(6, 11, 0))
	second := insertReservation(t, repo, "u1", "A101", at(6, 11, 0), at(6, 12, 0))
	assert.NotZero(t, first.ID)
	assert.Greater(t, second.ID, first.ID)

	found, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", found.UserID)
	assert.Equal(t, "Kim", found.UserName)
	assert.True(t, found.Start.Equal(at(6, 10, 0)))
	assert.True(t, found.End.Equal(at(6, 11, 0)))
	assert.Equal(t, testLocation, found.Start.Location())

	_, err = repo.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestReservationRepository_IdsAreNotReused(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	seedReferenceData(t, storage)
	repo := storage.Reservations

	first := insertReservation(t, repo, "u1", "A101", at(6, 10, 0), at(6, 11, 0))
	require.NoError(t, repo.DeleteByID(ctx, first.ID))

	second := insertReservation(t, repo, "u1", "A101", at(6, 10, 0), at(6, 11, 0))
	assert.Greater(t, second.ID, first.ID)
}

func TestReservationRepository_FindByRoomAndStartBetween(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	seedReferenceData(t, storage)
	repo := storage.Reservations

	late := insertReservation(t, repo, "u1", "A101", at(6, 15, 0), at(6, 16, 0))
	early := insertReservation(t, repo, "u1", "A101", at(6, 9, 0), at(6, 9, 30))
	insertReservation(t, repo, "u1", "A101", at(7, 0, 0), at(7, 1, 0))
	insertReservation(t, repo, "u1", "B201", at(6, 10, 0), at(6, 11, 0))
	crossing := insertReservation(t, repo, "u2", "A101", at(5, 23, 0), at(6, 1, 0))

	daily, err := repo.FindByRoomAndStartBetween(ctx, "A101", at(6, 0, 0), at(7, 0, 0))
	require.NoError(t, err)
	require.Len(t, daily, 2)
	assert.Equal(t, early.ID, daily[0].ID)
	assert.Equal(t, late.ID, daily[1].ID)

	previous, err := repo.FindByRoomAndStartBetween(ctx, "A101", at(5, 0, 0), at(6, 0, 0))
	require.NoError(t, err)
	require.Len(t, previous, 1)
	assert.Equal(t, crossing.ID, previous[0].ID)

	empty, err := repo.FindByRoomAndStartBetween(ctx, "Z999", at(1, 0, 0), at(31, 0, 0))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestReservationRepository_Overlap(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	seedReferenceData(t, storage)
	repo := storage.Reservations

	existing := insertReservation(t, repo, "u1", "A101", at(6, 10, 0), at(6, 11, 0))

	tests := []struct {
		name       string
		room       string
		start, end time.Time
		want       bool
	}{
		{"inside", "A101", at(6, 10, 0), at(6, 10, 30), true},
		{"straddles start", "A101", at(6, 9, 30), at(6, 10, 30), true},
		{"covers", "A101", at(6, 9, 0), at(6, 12, 0), true},
		{"touches end", "A101", at(6, 11, 0), at(6, 11, 30), false},
		{"touches start", "A101", at(6, 9, 0), at(6, 10, 0), false},
		{"other room", "B201", at(6, 10, 0), at(6, 11, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exists, err := repo.ExistsOverlapping(ctx, tt.room, tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, exists)

			found, err := repo.FindOverlapping(ctx, tt.room, tt.start, tt.end)
			require.NoError(t, err)
			if tt.want {
				require.Len(t, found, 1)
				assert.Equal(t, existing.ID, found[0].ID)
			} else {
				assert.Empty(t, found)
			}
		})
	}
}

func TestReservationRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)
	seedReferenceData(t, storage)
	repo := storage.Reservations

	stored := insertReservation(t, repo, "u1", "A101", at(6, 10, 0), at(6, 11, 0))

	affected, err := repo.UpdateTimeAndRoom(ctx, stored.ID, "B201", at(6, 14, 0), at(6, 15, 30))
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	updated, err := repo.FindByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "B201", updated.RoomCode)
	assert.True(t, updated.Start.Equal(at(6, 14, 0)))
	assert.True(t, updated.End.Equal(at(6, 15, 30)))
	assert.Equal(t, "u1", updated.UserID)

	affected, err = repo.UpdateTimeAndRoom(ctx, 9999, "B201", at(6, 14, 0), at(6, 15, 0))
	require.NoError(t, err)
	assert.Zero(t, affected)

	_, err = repo.UpdateTimeAndRoom(ctx, stored.ID, "Z999", at(6, 14, 0), at(6, 15, 0))
	assert.ErrorIs(t, err, persistence.ErrConstraintViolation)

	exists, err := repo.ExistsByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.DeleteByID(ctx, stored.ID))
	assert.ErrorIs(t, repo.DeleteByID(ctx, stored.ID), persistence.ErrNotFound)

	exists, err = repo.ExistsByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestReservationRepository_InsertRejectsUnknownReferences(t *testing.T) {
	storage := newTestStorage(t)
	seedReferenceData(t, storage)

	_, err := storage.Reservations.Insert(context.Background(), persistence.Reservation{
		UserID:   "ghost",
		UserName: "Ghost",
		RoomCode: "A101",
		Start:    at(6, 10, 0),
		End:      at(6, 11, 0),
	})
	assert.ErrorIs(t, err, persistence.ErrConstraintViolation)
}

func TestWithinTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("rolls back on error", func(t *testing.T) {
		storage := newTestStorage(t)
		seedReferenceData(t, storage)
		boom := errors.New("boom")

		err := storage.WithinTransaction(ctx, func(ctx context.Context) error {
			if _, err := storage.Reservations.Insert(ctx, persistence.Reservation{
				UserID: "u1", UserName: "Kim", RoomCode: "A101", Start: at(6, 10, 0), End: at(6, 11, 0),
			}); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		found, err := storage.Reservations.FindByRoomAndStartBetween(ctx, "A101", at(6, 0, 0), at(7, 0, 0))
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("nested calls join the outer transaction", func(t *testing.T) {
		storage := newTestStorage(t)
		seedReferenceData(t, storage)

		err := storage.WithinTransaction(ctx, func(outer context.Context) error {
			return storage.WithinTransaction(outer, func(inner context.Context) error {
				_, err := storage.Reservations.Insert(inner, persistence.Reservation{
					UserID: "u1", UserName: "Kim", RoomCode: "A101", Start: at(6, 10, 0), End: at(6, 11, 0),
				})
				return err
			})
		})
		require.NoError(t, err)

		exists, err := storage.Reservations.ExistsOverlapping(ctx, "A101", at(6, 10, 0), at(6, 11, 0))
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("serialises check then insert", func(t *testing.T) {
		storage := newTestStorage(t)
		seedReferenceData(t, storage)
		errConflict := errors.New("conflict")

		book := func() error {
			return storage.WithinTransaction(ctx, func(ctx context.Context) error {
				exists, err := storage.Reservations.ExistsOverlapping(ctx, "A101", at(6, 10, 0), at(6, 11, 0))
				if err != nil {
					return err
				}
				if exists {
					return errConflict
				}
				_, err = storage.Reservations.Insert(ctx, persistence.Reservation{
					UserID: "u1", UserName: "Kim", RoomCode: "A101", Start: at(6, 10, 0), End: at(6, 11, 0),
				})
				return err
			})
		}

		const attempts = 4
		results := make([]error, attempts)
		var wg sync.WaitGroup
		for i := range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = book()
			}()
		}
		wg.Wait()

		var succeeded int
		for _, err := range results {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, errConflict)
		}
		assert.Equal(t, 1, succeeded)
	})
}

func newMockPool(t *testing.T) (*ConnectionPool, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewConnectionPoolFromDB(sqlx.NewDb(db, "sqlmock"), testLocation), mock
}

func TestReservationRepository_Mocked(t *testing.T) {
	ctx := context.Background()

	t.Run("update reports zero rows", func(t *testing.T) {
		pool, mock := newMockPool(t)
		repo := NewReservationRepository(pool)

		mock.ExpectExec("UPDATE reservations SET").
			WithArgs("A101", "2025-05-06 10:00:00", "2025-05-06 11:00:00", int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		affected, err := repo.UpdateTimeAndRoom(ctx, 7, "A101", at(6, 10, 0), at(6, 11, 0))
		require.NoError(t, err)
		assert.Zero(t, affected)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("times are written in the pool location", func(t *testing.T) {
		pool, mock := newMockPool(t)
		repo := NewReservationRepository(pool)

		mock.ExpectExec("UPDATE reservations SET").
			WithArgs("A101", "2025-05-06 10:00:00", "2025-05-06 11:00:00", int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		affected, err := repo.UpdateTimeAndRoom(ctx, 7, "A101", at(6, 10, 0).UTC(), at(6, 11, 0).UTC())
		require.NoError(t, err)
		assert.EqualValues(t, 1, affected)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("transaction rolls back when a statement fails", func(t *testing.T) {
		pool, mock := newMockPool(t)
		repo := NewReservationRepository(pool)
		driverErr := errors.New("disk I/O error")

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM reservations").WithArgs(int64(3)).WillReturnError(driverErr)
		mock.ExpectRollback()

		err := pool.WithinTransaction(ctx, func(ctx context.Context) error {
			return repo.DeleteByID(ctx, 3)
		})
		assert.ErrorIs(t, err, driverErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("commit failure is reported", func(t *testing.T) {
		pool, mock := newMockPool(t)
		repo := NewReservationRepository(pool)

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM reservations").WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit().WillReturnError(errors.New("database is locked"))

		err := pool.WithinTransaction(ctx, func(ctx context.Context) error {
			return repo.DeleteByID(ctx, 3)
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to commit transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
