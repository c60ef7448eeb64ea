package event_bus

import "time"

const (
	BookingCreatedEvent EventType = "booking.created"
	BookingDeletedEvent EventType = "booking.deleted"
)

// BookingCreated is published after a booking insert or update commits.
type BookingCreated struct {
	Id        int
	RoomId    int
	StartTime time.Time
	EndTime   time.Time
	BookedBy  string
}

// BookingDeleted is published after a booking cancellation commits.
type BookingDeleted struct {
	Id        int
	RoomId    int
	StartTime time.Time
}
