package sqlite

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/example/meeting-rooms/internal/persistence"
	"github.com/example/meeting-rooms/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Storage bundles the SQLite repositories behind one connection pool.
type Storage struct {
	pool *ConnectionPool

	Users        *UserRepository
	Rooms        *RoomRepository
	Reservations *ReservationRepository
}

var (
	_ persistence.UserRepository        = (*UserRepository)(nil)
	_ persistence.RoomRepository        = (*RoomRepository)(nil)
	_ persistence.ReservationRepository = (*ReservationRepository)(nil)
	_ persistence.Transactor            = (*Storage)(nil)
)

// Open connects to the database described by opts. Call Migrate before use.
func Open(opts Options) (*Storage, error) {
	pool, err := NewConnectionPool(opts)
	if err != nil {
		return nil, err
	}
	return NewStorage(pool), nil
}

// NewStorage builds the repositories on an existing pool.
func NewStorage(pool *ConnectionPool) *Storage {
	return &Storage{
		pool:         pool,
		Users:        NewUserRepository(pool),
		Rooms:        NewRoomRepository(pool),
		Reservations: NewReservationRepository(pool),
	}
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context, logger *slog.Logger) error {
	files, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("sqlite: open embedded migrations: %w", err)
	}
	manager := migration.NewManager(migration.NewScanner(files), migration.NewExecutor(s.pool.DB().DB), logger)
	if err := manager.RunMigrations(ctx); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// WithinTransaction implements persistence.Transactor.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.pool.WithinTransaction(ctx, fn)
}

// Ping verifies the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Pool exposes the connection pool.
func (s *Storage) Pool() *ConnectionPool {
	return s.pool
}

// Close releases the underlying database handle.
func (s *Storage) Close() error {
	return s.pool.Close()
}
