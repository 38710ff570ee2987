package sqlite

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/example/meeting-rooms/internal/persistence"
)

type userRow struct {
	ID           string `db:"user_id"`
	DisplayName  string `db:"user_name"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
}

// UserRepository implements persistence.UserRepository using SQLite.
type UserRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewUserRepository creates a new SQLite user repository.
func NewUserRepository(pool *ConnectionPool) *UserRepository {
	return &UserRepository{pool: pool, mapper: NewErrorMapper()}
}

// GetUser retrieves a user by identifier.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if strings.TrimSpace(id) == "" {
		return persistence.User{}, persistence.ErrNotFound
	}

	const query = `SELECT user_id, user_name, email, password_hash FROM users WHERE user_id = ?`

	var row userRow
	if err := sqlx.GetContext(ctx, r.pool.querier(ctx), &row, query, id); err != nil {
		return persistence.User{}, r.mapper.MapError(err)
	}
	return persistence.User{
		ID:           row.ID,
		DisplayName:  row.DisplayName,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
	}, nil
}

// UpsertUser inserts a user or refreshes its profile and credential hash.
func (r *UserRepository) UpsertUser(ctx context.Context, user persistence.User) error {
	if strings.TrimSpace(user.ID) == "" || strings.TrimSpace(user.DisplayName) == "" {
		return persistence.ErrConstraintViolation
	}

	const query = `
		INSERT INTO users (user_id, user_name, email, password_hash)
		VALUES (:user_id, :user_name, :email, :password_hash)
		ON CONFLICT (user_id) DO UPDATE SET
			user_name = excluded.user_name,
			email = excluded.email,
			password_hash = excluded.password_hash`

	row := userRow{
		ID:           user.ID,
		DisplayName:  user.DisplayName,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
	}
	if _, err := sqlx.NamedExecContext(ctx, r.pool.querier(ctx), query, row); err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}
