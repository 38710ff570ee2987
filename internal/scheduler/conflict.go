// Package scheduler holds the time-range rules for room bookings: slot alignment,
// half-open overlap and the query windows used by calendar views.
package scheduler

import "time"

// SlotMinutes is the booking granularity. Starts and ends fall on multiples of it.
const SlotMinutes = 30

// Booking is a room occupancy interval. ID is zero for a booking not yet stored.
type Booking struct {
	ID       int64
	RoomCode string
	Start    time.Time
	End      time.Time
}

// Conflict names an existing booking the candidate collides with.
type Conflict struct {
	WithBookingID int64
	RoomCode      string
	Start         time.Time
	End           time.Time
}

// Aligned reports whether t sits on a slot boundary with no seconds or sub-seconds.
func Aligned(t time.Time) bool {
	return t.Minute()%SlotMinutes == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

// ValidRange reports whether [start, end) is a non-empty slot-aligned range.
func ValidRange(start, end time.Time) bool {
	return start.Before(end) && Aligned(start) && Aligned(end)
}

// Overlaps reports whether two half-open ranges share any instant.
// Ranges that only touch do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// DetectConflicts returns the bookings in existing that overlap the candidate in
// the same room. A booking with the candidate's own ID is skipped, so moving a
// reservation over its previous slot is not a conflict.
func DetectConflicts(existing []Booking, candidate Booking) []Conflict {
	var conflicts []Conflict
	for _, b := range existing {
		if candidate.ID != 0 && b.ID == candidate.ID {
			continue
		}
		if b.RoomCode != candidate.RoomCode {
			continue
		}
		if !Overlaps(b.Start, b.End, candidate.Start, candidate.End) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			WithBookingID: b.ID,
			RoomCode:      b.RoomCode,
			Start:         b.Start,
			End:           b.End,
		})
	}
	return conflicts
}

// DayWindow returns [date 00:00, next day 00:00) in loc.
func DayWindow(year int, month time.Month, day int, loc *time.Location) (time.Time, time.Time) {
	from := time.Date(year, month, day, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 0, 1)
}

// MonthWindow returns [first of month 00:00, first of next month 00:00) in loc.
func MonthWindow(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 1, 0)
}
