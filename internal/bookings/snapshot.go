package bookings

import (
	"time"

	"busline/internal/seatmap"
)

// SnapshotEntry is one existing booking of a vehicle as far as seat
// availability is concerned.
type SnapshotEntry struct {
	ID          string      `json:"id,omitempty"`
	BookingDate BookingDate `json:"bookingDate"`
	SeatNumbers []SeatRef   `json:"seatNumbers"`
	Status      Status      `json:"status,omitempty"`
}

// Snapshot is the set of bookings already placed on one vehicle. It is
// fetched per vehicle and date and never changed locally.
type Snapshot []SnapshotEntry

// IsBooked reports whether key is taken on the calendar day of date, with
// days compared in loc. Entries without a usable date never match, and
// cancelled bookings free their seats.
func (s Snapshot) IsBooked(key seatmap.SeatKey, date time.Time, loc *time.Location) bool {
	if date.IsZero() {
		return false
	}
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := date.In(loc).Date()

	for _, entry := range s {
		if entry.BookingDate.IsZero() || !entry.Status.HoldsSeats() {
			continue
		}
		ey, em, ed := entry.BookingDate.Day(loc)
		if ey != y || em != m || ed != d {
			continue
		}
		for _, seat := range entry.SeatNumbers {
			if seat.Key == key {
				return true
			}
		}
	}
	return false
}

// BookedKeys returns every key taken on the calendar day of date
func (s Snapshot) BookedKeys(date time.Time, loc *time.Location) map[seatmap.SeatKey]bool {
	booked := make(map[seatmap.SeatKey]bool)
	for _, entry := range s {
		for _, seat := range entry.SeatNumbers {
			if !booked[seat.Key] && s.IsBooked(seat.Key, date, loc) {
				booked[seat.Key] = true
			}
		}
	}
	return booked
}
