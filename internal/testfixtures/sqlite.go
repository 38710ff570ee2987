package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/meeting-rooms/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite storage
// instance for integration-style tests.
type SQLiteHarness struct {
	Storage  *sqlite.Storage
	Location *time.Location

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// will also register a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "reservations.db")
	storage, err := sqlite.Open(sqlite.Options{
		Path:        path,
		Location:    Location,
		BusyTimeout: 5 * time.Second,
	})
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := storage.Migrate(context.Background(), DiscardLogger()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Storage:  storage,
		Location: Location,
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// SeedReferenceData upserts the given rooms and users, defaulting to DefaultRooms
// and DefaultUsers when both are empty.
func (h *SQLiteHarness) SeedReferenceData(tb testing.TB, rooms []RoomFixture, users []UserFixture) {
	tb.Helper()

	if len(rooms) == 0 && len(users) == 0 {
		rooms, users = DefaultRooms(), DefaultUsers()
	}

	ctx := context.Background()
	for _, room := range rooms {
		if err := h.Storage.Rooms.UpsertRoom(ctx, room.Persistence()); err != nil {
			tb.Fatalf("failed to seed room %s: %v", room.Code, err)
		}
	}
	for _, user := range users {
		if err := h.Storage.Users.UpsertUser(ctx, user.Persistence()); err != nil {
			tb.Fatalf("failed to seed user %s: %v", user.ID, err)
		}
	}
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
