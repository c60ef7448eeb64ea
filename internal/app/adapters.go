package app

import (
	"context"
	"errors"
	"time"

	"github.com/roombook/roombook/pkg/booking"
	"github.com/roombook/roombook/pkg/schedule"
)

// slotSourceAdapter feeds the grid builder from the booking store without the
// schedule package importing booking.
type slotSourceAdapter struct {
	bookings booking.Service
}

func (a *slotSourceAdapter) FetchRooms(ctx context.Context, from, to time.Time) ([]schedule.RawRoom, error) {
	rooms, err := a.bookings.RoomsForRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	raw := make([]schedule.RawRoom, 0, len(rooms))
	for _, r := range rooms {
		slots := make([]schedule.RawSlot, 0, len(r.Bookings))
		for _, b := range r.Bookings {
			var bookedBy *string
			if b.BookedBy != "" {
				name := b.BookedBy
				bookedBy = &name
			}
			slots = append(slots, schedule.RawSlot{
				Id:       b.Id,
				Start:    b.StartTime,
				End:      b.EndTime,
				BookedBy: bookedBy,
			})
		}
		raw = append(raw, schedule.RawRoom{RoomId: r.RoomId, RoomName: r.RoomName, Slots: slots})
	}
	return raw, nil
}

// bookingWriterAdapter dispatches form submissions to the booking service,
// translating store rejections into messages the form can show inline.
type bookingWriterAdapter struct {
	bookings booking.Service
}

func (a *bookingWriterAdapter) Create(ctx context.Context, roomId int, start, end time.Time) error {
	_, err := a.bookings.Create(ctx, roomId, start, end)
	return translateBookingError(err)
}

func (a *bookingWriterAdapter) Update(ctx context.Context, id int, roomId int, start, end time.Time) error {
	_, err := a.bookings.Update(ctx, id, roomId, start, end)
	return translateBookingError(err)
}

func (a *bookingWriterAdapter) Delete(ctx context.Context, id int) error {
	return translateBookingError(a.bookings.Delete(ctx, id))
}

func translateBookingError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, booking.ErrBookingConflict):
		return &schedule.BackendError{Message: "The selected time was just booked by someone else"}
	case errors.Is(err, booking.ErrNotOwner):
		return &schedule.BackendError{Message: "The booking belongs to another user"}
	case errors.Is(err, booking.ErrBookingStarted):
		return &schedule.BackendError{Message: "The booking has already started"}
	default:
		return err
	}
}
