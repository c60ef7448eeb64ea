package booking

import "time"

// Booking is a single reservation of one room. A booking never crosses
// midnight; an EndTime of exactly 00:00 means end-of-day.
type Booking struct {
	Id        int
	RoomId    int
	StartTime time.Time
	EndTime   time.Time
	// BookedBy is the display name of the owner. Empty means the slot is
	// blocked without an owner (e.g. maintenance) and cannot be edited.
	BookedBy string
}

// RoomBookings groups one room's bookings inside a fetch range.
type RoomBookings struct {
	RoomId   int
	RoomName string
	Bookings []Booking
}
