package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/example/meeting-rooms/internal/persistence"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// timeLayout is the wall-clock representation stored in TEXT columns. Values are
// written in the pool's location so lexical order equals chronological order.
const timeLayout = "2006-01-02 15:04:05"

// Options configures a ConnectionPool.
type Options struct {
	Path         string
	Location     *time.Location
	BusyTimeout  time.Duration
	MaxOpenConns int
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.BusyTimeout <= 0 {
		o.BusyTimeout = 5 * time.Second
	}
	if o.MaxOpenConns <= 0 {
		o.MaxOpenConns = 4
	}
	return o
}

// DSN builds the modernc.org/sqlite connection string. Write transactions begin
// with BEGIN IMMEDIATE so the overlap check and the write hold the same lock.
func (o Options) DSN() string {
	o = o.withDefaults()
	params := url.Values{}
	params.Set("_txlock", "immediate")
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", o.BusyTimeout.Milliseconds()))
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "journal_mode(WAL)")
	return "file:" + o.Path + "?" + params.Encode()
}

// ConnectionPool manages SQLite database connections with transaction support.
type ConnectionPool struct {
	db       *sqlx.DB
	location *time.Location
	mapper   *ErrorMapper
}

// NewConnectionPool opens a SQLite database described by opts.
func NewConnectionPool(opts Options) (*ConnectionPool, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return nil, errors.New("sqlite: database path is required")
	}
	opts = opts.withDefaults()

	db, err := sqlx.Open(DriverName, opts.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)

	return NewConnectionPoolFromDB(db, opts.Location), nil
}

// NewConnectionPoolFromDB wraps an existing handle. Tests use it with sqlmock.
func NewConnectionPoolFromDB(db *sqlx.DB, location *time.Location) *ConnectionPool {
	if location == nil {
		location = time.Local
	}
	return &ConnectionPool{db: db, location: location, mapper: NewErrorMapper()}
}

// DB returns the underlying database connection.
func (cp *ConnectionPool) DB() *sqlx.DB {
	return cp.db
}

// Location returns the zone reservation times are stored in.
func (cp *ConnectionPool) Location() *time.Location {
	return cp.location
}

// Close closes the connection pool.
func (cp *ConnectionPool) Close() error {
	if cp.db != nil {
		return cp.db.Close()
	}
	return nil
}

// Ping tests the database connection.
func (cp *ConnectionPool) Ping(ctx context.Context) error {
	return cp.db.PingContext(ctx)
}

type txKey struct{}

// WithinTransaction executes fn within a database transaction. Repository calls
// made with the context passed to fn run on that transaction. A nested call joins
// the outer transaction instead of opening a new one.
//
// If fn returns an error or panics, the transaction is rolled back. Otherwise it
// is committed.
func (cp *ConnectionPool) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := cp.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", cp.mapper.MapError(err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", cp.mapper.MapError(err))
	}
	return nil
}

// querier returns the transaction carried by ctx, or the pool itself.
func (cp *ConnectionPool) querier(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return cp.db
}

func (cp *ConnectionPool) formatTime(t time.Time) string {
	return t.In(cp.location).Format(timeLayout)
}

func (cp *ConnectionPool) parseTime(column, value string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, value, cp.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", column, err)
	}
	return t, nil
}

// ErrorMapper maps SQLite errors to persistence layer errors.
type ErrorMapper struct{}

// NewErrorMapper creates a new error mapper.
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{}
}

// MapError maps SQLite-specific errors to persistence layer errors.
func (em *ErrorMapper) MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %v", persistence.ErrDuplicate, err)
		case sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return fmt.Errorf("%w: %v", persistence.ErrConstraintViolation, err)
		}
	}

	// Primary result codes only carry the message.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrDuplicate, err)
	case strings.Contains(msg, "CHECK constraint failed"),
		strings.Contains(msg, "FOREIGN KEY constraint failed"),
		strings.Contains(msg, "NOT NULL constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrConstraintViolation, err)
	}
	return err
}
