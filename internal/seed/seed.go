// Package seed loads the static room catalog and user directory from a TOML file
// and upserts them into the store at startup.
//
//	[[rooms]]
//	code = "A101"
//	name = "Focus Room"
//	capacity = 4
//
//	[[users]]
//	id = "e101010"
//	name = "Kim Minsu"
//	email = "minsu.kim@example.com"
//	password = "change-me"
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/meeting-rooms/internal/persistence"
)

// File is the decoded seed document.
type File struct {
	Rooms []Room `toml:"rooms"`
	Users []User `toml:"users"`
}

// Room is one [[rooms]] entry.
type Room struct {
	Code     string `toml:"code"`
	Name     string `toml:"name"`
	Capacity int    `toml:"capacity"`
}

// User is one [[users]] entry. Password is hashed with bcrypt before it is stored;
// PasswordHash is stored as is when Password is empty.
type User struct {
	ID           string `toml:"id"`
	Name         string `toml:"name"`
	Email        string `toml:"email"`
	Password     string `toml:"password"`
	PasswordHash string `toml:"password_hash"`
}

// LoadFile decodes and validates a seed file. Unknown keys are rejected.
func LoadFile(path string) (File, error) {
	var file File
	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		return File{}, fmt.Errorf("failed to load seed file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		return File{}, fmt.Errorf("seed file %s has unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := file.Validate(); err != nil {
		return File{}, fmt.Errorf("seed file %s: %w", path, err)
	}
	return file, nil
}

// Validate reports every malformed entry at once.
func (f File) Validate() error {
	var errs []error

	rooms := make(map[string]bool, len(f.Rooms))
	for i, room := range f.Rooms {
		code := strings.TrimSpace(room.Code)
		switch {
		case code == "":
			errs = append(errs, fmt.Errorf("rooms[%d]: code is required", i))
		case rooms[code]:
			errs = append(errs, fmt.Errorf("rooms[%d]: duplicate code %q", i, code))
		}
		rooms[code] = true
		if strings.TrimSpace(room.Name) == "" {
			errs = append(errs, fmt.Errorf("rooms[%d]: name is required", i))
		}
		if room.Capacity <= 0 {
			errs = append(errs, fmt.Errorf("rooms[%d]: capacity must be positive", i))
		}
	}

	users := make(map[string]bool, len(f.Users))
	for i, user := range f.Users {
		id := strings.TrimSpace(user.ID)
		switch {
		case id == "":
			errs = append(errs, fmt.Errorf("users[%d]: id is required", i))
		case users[id]:
			errs = append(errs, fmt.Errorf("users[%d]: duplicate id %q", i, id))
		}
		users[id] = true
		if strings.TrimSpace(user.Name) == "" {
			errs = append(errs, fmt.Errorf("users[%d]: name is required", i))
		}
	}

	return errors.Join(errs...)
}

// Loader writes seed entries to the store.
type Loader struct {
	rooms      persistence.RoomRepository
	users      persistence.UserRepository
	tx         persistence.Transactor
	bcryptCost int
	logger     *slog.Logger
}

// NewLoader creates a Loader. A zero bcryptCost selects bcrypt.DefaultCost.
func NewLoader(rooms persistence.RoomRepository, users persistence.UserRepository, tx persistence.Transactor, bcryptCost int, logger *slog.Logger) *Loader {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{rooms: rooms, users: users, tx: tx, bcryptCost: bcryptCost, logger: logger}
}

// Apply upserts every room and user of file in one transaction.
func (l *Loader) Apply(ctx context.Context, file File) error {
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, room := range file.Rooms {
			if err := l.rooms.UpsertRoom(ctx, persistence.Room{
				Code:     strings.TrimSpace(room.Code),
				Name:     strings.TrimSpace(room.Name),
				Capacity: room.Capacity,
			}); err != nil {
				return fmt.Errorf("seed room %s: %w", room.Code, err)
			}
		}

		for _, user := range file.Users {
			hash := user.PasswordHash
			if user.Password != "" {
				raw, err := bcrypt.GenerateFromPassword([]byte(user.Password), l.bcryptCost)
				if err != nil {
					return fmt.Errorf("hash password for %s: %w", user.ID, err)
				}
				hash = string(raw)
			}
			if err := l.users.UpsertUser(ctx, persistence.User{
				ID:           strings.TrimSpace(user.ID),
				DisplayName:  strings.TrimSpace(user.Name),
				Email:        strings.TrimSpace(user.Email),
				PasswordHash: hash,
			}); err != nil {
				return fmt.Errorf("seed user %s: %w", user.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to apply seed data", "error", err)
		return err
	}

	l.logger.InfoContext(ctx, "seed data applied", "rooms", len(file.Rooms), "users", len(file.Users))
	return nil
}

// ApplyFile loads path and applies it.
func (l *Loader) ApplyFile(ctx context.Context, path string) error {
	file, err := LoadFile(path)
	if err != nil {
		return err
	}
	return l.Apply(ctx, file)
}
