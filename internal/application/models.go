package application

import "time"

// Room is a bookable meeting room.
type Room struct {
	Code     string
	Name     string
	Capacity int
}

// User is an employee who may own reservations.
type User struct {
	ID          string
	DisplayName string
	Email       string
}

// Reservation is a booked time range for one room.
//
// UserName is a snapshot of the owner's display name taken when the reservation
// was created.
type Reservation struct {
	ID       int64
	UserID   string
	UserName string
	RoomCode string
	Start    time.Time
	End      time.Time
}

// CreateReservationParams wraps the data required to book a room.
type CreateReservationParams struct {
	UserID   string
	RoomCode string
	Start    time.Time
	End      time.Time
}

// ModifyReservationParams wraps the data required to move an existing reservation.
// UserID is the requester and must match the reservation owner.
type ModifyReservationParams struct {
	ReservationID int64
	UserID        string
	RoomCode      string
	Start         time.Time
	End           time.Time
}

// DeleteReservationParams identifies the reservation to cancel. When RequesterID is
// set it must match the owner.
type DeleteReservationParams struct {
	ReservationID int64
	RequesterID   string
}

// DailyReservationsParams selects one room and one calendar date. Only the year,
// month and day of Date are used; they are read in the service's location.
type DailyReservationsParams struct {
	RoomCode string
	Date     time.Time
}

// MonthlyReservationsParams selects one room and one calendar month.
type MonthlyReservationsParams struct {
	RoomCode string
	Year     int
	Month    time.Month
}
