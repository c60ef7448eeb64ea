package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/roombook/roombook/internal/event_bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceWeekFor(t *testing.T) {
	rooms := []RawRoom{{
		RoomId:   1,
		RoomName: "Room A",
		Slots: []RawSlot{{
			Id:    1,
			Start: monday.Add(9 * time.Hour),
			End:   monday.Add(10 * time.Hour),
		}},
	}}

	t.Run("builds the week of the given date", func(t *testing.T) {
		source := &sourceStub{rooms: rooms}
		svc := NewService(source, NewMemoryWeekCache(), testConfig(), event_bus.NewEventBus())

		week, err := svc.WeekFor(context.Background(), monday.AddDate(0, 0, 3))

		require.NoError(t, err)
		assert.True(t, week.Monday.Equal(monday))
		assert.Contains(t, week.Days[0], 1)
	})

	t.Run("serves repeated reads of the same week from cache", func(t *testing.T) {
		source := &sourceStub{rooms: rooms}
		svc := NewService(source, NewMemoryWeekCache(), testConfig(), event_bus.NewEventBus())

		_, err := svc.WeekFor(context.Background(), monday)
		require.NoError(t, err)
		_, err = svc.WeekFor(context.Background(), monday.AddDate(0, 0, 5))
		require.NoError(t, err)

		assert.Equal(t, 1, source.fetches)
	})

	t.Run("caches different weeks under different keys", func(t *testing.T) {
		source := &sourceStub{rooms: nil}
		svc := NewService(source, NewMemoryWeekCache(), testConfig(), event_bus.NewEventBus())

		_, err := svc.WeekFor(context.Background(), monday)
		require.NoError(t, err)
		_, err = svc.WeekFor(context.Background(), monday.AddDate(0, 0, 7))
		require.NoError(t, err)

		assert.Equal(t, 2, source.fetches)
	})

	t.Run("does not cache a week that failed to build", func(t *testing.T) {
		bad := []RawRoom{{
			RoomId:   1,
			RoomName: "Room A",
			Slots: []RawSlot{
				{Id: 13, Start: monday.Add(10 * time.Hour), End: monday.Add(10*time.Hour + 30*time.Minute)},
				{Id: 14, Start: monday.Add(10*time.Hour + 15*time.Minute), End: monday.Add(10*time.Hour + 45*time.Minute)},
			},
		}}
		source := &sourceStub{rooms: bad}
		svc := NewService(source, NewMemoryWeekCache(), testConfig(), event_bus.NewEventBus())

		_, err := svc.WeekFor(context.Background(), monday)
		require.ErrorIs(t, err, ErrSlotOverlap)

		_, err = svc.WeekFor(context.Background(), monday)
		require.Error(t, err)
		assert.Equal(t, 2, source.fetches)
	})

	t.Run("propagates schema violations as grid errors", func(t *testing.T) {
		bad := []RawRoom{{RoomId: 1, RoomName: ""}}
		source := &sourceStub{rooms: bad}
		svc := NewService(source, NewMemoryWeekCache(), testConfig(), event_bus.NewEventBus())

		_, err := svc.WeekFor(context.Background(), monday)

		assert.True(t, IsGridError(err))
	})

	t.Run("evicts the cached week when a booking event arrives", func(t *testing.T) {
		source := &sourceStub{rooms: rooms}
		bus := event_bus.NewEventBus()
		svc := NewService(source, NewMemoryWeekCache(), testConfig(), bus)

		_, err := svc.WeekFor(context.Background(), monday)
		require.NoError(t, err)

		err = bus.Publish(event_bus.NewEvent(context.Background(), event_bus.BookingCreatedEvent, event_bus.BookingCreated{
			Id:        99,
			RoomId:    1,
			StartTime: monday.Add(15 * time.Hour),
			EndTime:   monday.Add(16 * time.Hour),
			BookedBy:  "Alice Example",
		}))
		require.NoError(t, err)

		_, err = svc.WeekFor(context.Background(), monday)
		require.NoError(t, err)
		assert.Equal(t, 2, source.fetches)
	})

	t.Run("a booking event in another week leaves the cache alone", func(t *testing.T) {
		source := &sourceStub{rooms: rooms}
		bus := event_bus.NewEventBus()
		svc := NewService(source, NewMemoryWeekCache(), testConfig(), bus)

		_, err := svc.WeekFor(context.Background(), monday)
		require.NoError(t, err)

		err = bus.Publish(event_bus.NewEvent(context.Background(), event_bus.BookingDeletedEvent, event_bus.BookingDeleted{
			Id:        99,
			RoomId:    1,
			StartTime: monday.AddDate(0, 0, 9),
		}))
		require.NoError(t, err)

		_, err = svc.WeekFor(context.Background(), monday)
		require.NoError(t, err)
		assert.Equal(t, 1, source.fetches)
	})
}

func TestServiceAvailability(t *testing.T) {
	rooms := []RawRoom{{
		RoomId:   1,
		RoomName: "Room A",
		Slots: []RawSlot{{
			Id:    1,
			Start: monday.Add(10 * time.Hour),
			End:   monday.Add(11 * time.Hour),
		}},
	}}

	t.Run("reflects bookings of the requested day", func(t *testing.T) {
		source := &sourceStub{rooms: rooms}
		svc := NewService(source, NewMemoryWeekCache(), testConfig(), event_bus.NewEventBus())

		slots, err := svc.Availability(context.Background(), monday, 1, FieldStart, 0)

		require.NoError(t, err)
		byTime := availByStart(slots)
		assert.False(t, byTime[monday.Add(10*time.Hour)])
		assert.True(t, byTime[monday.Add(12*time.Hour)])
	})

	t.Run("other days of the week are unaffected", func(t *testing.T) {
		source := &sourceStub{rooms: rooms}
		svc := NewService(source, NewMemoryWeekCache(), testConfig(), event_bus.NewEventBus())

		tuesday := monday.AddDate(0, 0, 1)
		slots, err := svc.Availability(context.Background(), tuesday, 1, FieldStart, 0)

		require.NoError(t, err)
		for _, s := range slots {
			assert.True(t, s.Avail)
		}
	})
}
