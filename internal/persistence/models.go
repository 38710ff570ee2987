package persistence

import "time"

// User represents an employee account that may book rooms.
type User struct {
	ID           string
	DisplayName  string
	Email        string
	PasswordHash string
}

// Room represents a meeting room catalog entry keyed by its code.
type Room struct {
	Code     string
	Name     string
	Capacity int
}

// Reservation represents a booked time range for a single room.
//
// UserName is copied from the owning user when the reservation is created and is
// never re-synchronised afterwards.
type Reservation struct {
	ID       int64
	UserID   string
	UserName string
	RoomCode string
	Start    time.Time
	End      time.Time
}
