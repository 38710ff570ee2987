package testfixtures

import (
	"time"

	"github.com/example/meeting-rooms/internal/application"
	"github.com/example/meeting-rooms/internal/persistence"
)

// Location is the fixed zone used by every fixture.
var Location = time.FixedZone("KST", 9*60*60)

// ReferenceDate is the calendar day most fixtures book against.
func ReferenceDate() time.Time {
	return time.Date(2025, time.May, 6, 0, 0, 0, 0, Location)
}

// At returns hour:minute on the given day of May 2025 in Location.
func At(day, hour, minute int) time.Time {
	return time.Date(2025, time.May, day, hour, minute, 0, 0, Location)
}

// UserFixture describes a user record for tests.
type UserFixture struct {
	ID           string
	DisplayName  string
	Email        string
	PasswordHash string
}

// UserOption mutates a UserFixture.
type UserOption func(*UserFixture)

// NewUserFixture constructs a user fixture with sensible defaults.
func NewUserFixture(opts ...UserOption) UserFixture {
	fixture := UserFixture{
		ID:          "u1",
		DisplayName: "Kim Minji",
		Email:       "minji.kim@example.com",
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

func WithUserDisplayName(name string) UserOption {
	return func(f *UserFixture) {
		f.DisplayName = name
	}
}

func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// Application converts the fixture into an application.User.
func (f UserFixture) Application() application.User {
	return application.User{ID: f.ID, DisplayName: f.DisplayName, Email: f.Email}
}

// Persistence converts the fixture into a persistence.User.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		DisplayName:  f.DisplayName,
		Email:        f.Email,
		PasswordHash: f.PasswordHash,
	}
}

// RoomFixture describes a meeting room for tests.
type RoomFixture struct {
	Code     string
	Name     string
	Capacity int
}

// RoomOption mutates a RoomFixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture constructs a room fixture with sensible defaults.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	fixture := RoomFixture{Code: "B201", Name: "Board Room", Capacity: 12}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

func WithRoomCode(code string) RoomOption {
	return func(f *RoomFixture) {
		f.Code = code
	}
}

func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) {
		f.Name = name
	}
}

func WithRoomCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) {
		f.Capacity = capacity
	}
}

func (f RoomFixture) Application() application.Room {
	return application.Room{Code: f.Code, Name: f.Name, Capacity: f.Capacity}
}

func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{Code: f.Code, Name: f.Name, Capacity: f.Capacity}
}

// DefaultRooms returns the rooms used by the example scenarios.
func DefaultRooms() []RoomFixture {
	return []RoomFixture{
		NewRoomFixture(WithRoomCode("A101"), WithRoomName("Focus Room"), WithRoomCapacity(4)),
		NewRoomFixture(),
	}
}

// DefaultUsers returns two users so ownership rules can be exercised.
func DefaultUsers() []UserFixture {
	return []UserFixture{
		NewUserFixture(),
		NewUserFixture(WithUserID("u2"), WithUserDisplayName("Lee Jun"), WithUserEmail("jun.lee@example.com")),
	}
}

// ReservationFixture describes a reservation for tests.
type ReservationFixture struct {
	ID       int64
	UserID   string
	UserName string
	RoomCode string
	Start    time.Time
	End      time.Time
}

// ReservationOption mutates a ReservationFixture.
type ReservationOption func(*ReservationFixture)

// NewReservationFixture books B201 for u1 from 10:00 to 11:00 on ReferenceDate.
func NewReservationFixture(opts ...ReservationOption) ReservationFixture {
	fixture := ReservationFixture{
		UserID:   "u1",
		UserName: "Kim Minji",
		RoomCode: "B201",
		Start:    At(6, 10, 0),
		End:      At(6, 11, 0),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

func WithReservationID(id int64) ReservationOption {
	return func(f *ReservationFixture) {
		f.ID = id
	}
}

func WithReservationOwner(id, name string) ReservationOption {
	return func(f *ReservationFixture) {
		f.UserID = id
		f.UserName = name
	}
}

func WithReservationRoom(code string) ReservationOption {
	return func(f *ReservationFixture) {
		f.RoomCode = code
	}
}

func WithReservationRange(start, end time.Time) ReservationOption {
	return func(f *ReservationFixture) {
		f.Start = start
		f.End = end
	}
}

func (f ReservationFixture) Application() application.Reservation {
	return application.Reservation{
		ID:       f.ID,
		UserID:   f.UserID,
		UserName: f.UserName,
		RoomCode: f.RoomCode,
		Start:    f.Start,
		End:      f.End,
	}
}

func (f ReservationFixture) Persistence() persistence.Reservation {
	return persistence.Reservation{
		ID:       f.ID,
		UserID:   f.UserID,
		UserName: f.UserName,
		RoomCode: f.RoomCode,
		Start:    f.Start,
		End:      f.End,
	}
}
