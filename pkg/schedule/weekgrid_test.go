package schedule

import (
	"testing"
	"time"

	"github.com/roombook/roombook/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monday is 2025-03-03, a Monday.
var monday = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

func testConfig() GridConfig {
	return GridConfig{
		OpenStartMinutes: 6 * 60,
		OpenEndMinutes:   21 * 60,
		IntervalMinutes:  15,
		MinMeetingMin:    15,
		MaxRooms:         10,
		VisibleRoomIds:   []int{1, 2, 3, 4},
		MaxMeetingMin: map[user.Role]int{
			user.RoleStudent: 120,
			user.RoleStaff:   480,
		},
		Policy: DefaultFilterPolicy,
	}
}

func slotAt(id int, day time.Time, startHour, startMin, endHour, endMin int) Slot {
	return Slot{
		Id:        id,
		StartTime: time.Date(day.Year(), day.Month(), day.Day(), startHour, startMin, 0, 0, day.Location()),
		EndTime:   time.Date(day.Year(), day.Month(), day.Day(), endHour, endMin, 0, 0, day.Location()),
	}
}

func TestBuildWeek(t *testing.T) {
	t.Run("places a Wednesday slot at day index 2", func(t *testing.T) {
		wednesday := monday.AddDate(0, 0, 2)
		rooms := []RoomSlots{
			{RoomId: 1, RoomName: "Room A", Slots: []Slot{slotAt(7, wednesday, 10, 0, 11, 0)}},
		}

		week, err := BuildWeek(rooms, monday, testConfig())

		require.NoError(t, err)
		require.Contains(t, week.Days[2], 1)
		require.Len(t, week.Days[2][1].Slots, 1)
		assert.Equal(t, 7, week.Days[2][1].Slots[0].Id)
		for _, day := range []int{0, 1, 3, 4, 5, 6} {
			assert.Empty(t, week.Days[day])
		}
	})

	t.Run("sorts slots within a day by start time", func(t *testing.T) {
		rooms := []RoomSlots{
			{RoomId: 1, RoomName: "Room A", Slots: []Slot{
				slotAt(2, monday, 14, 0, 15, 0),
				slotAt(1, monday, 9, 0, 10, 0),
				slotAt(3, monday, 11, 0, 12, 0),
			}},
		}

		week, err := BuildWeek(rooms, monday, testConfig())

		require.NoError(t, err)
		slots := week.Days[0][1].Slots
		require.Len(t, slots, 3)
		assert.Equal(t, []int{1, 3, 2}, []int{slots[0].Id, slots[1].Id, slots[2].Id})
	})

	t.Run("rebuilding from the same input yields the same grid", func(t *testing.T) {
		rooms := []RoomSlots{
			{RoomId: 1, RoomName: "Room A", Slots: []Slot{
				slotAt(1, monday, 9, 0, 10, 0),
				slotAt(2, monday.AddDate(0, 0, 4), 13, 0, 14, 30),
			}},
			{RoomId: 2, RoomName: "Room B", Slots: []Slot{
				slotAt(3, monday, 9, 0, 10, 0),
			}},
		}

		first, err := BuildWeek(rooms, monday, testConfig())
		require.NoError(t, err)
		second, err := BuildWeek(rooms, monday, testConfig())
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("allows back-to-back slots sharing a boundary", func(t *testing.T) {
		rooms := []RoomSlots{
			{RoomId: 1, RoomName: "Room A", Slots: []Slot{
				slotAt(1, monday, 10, 0, 10, 30),
				slotAt(2, monday, 10, 30, 11, 0),
			}},
		}

		_, err := BuildWeek(rooms, monday, testConfig())

		assert.NoError(t, err)
	})

	t.Run("rejects overlapping slots in the same room and day", func(t *testing.T) {
		rooms := []RoomSlots{
			{RoomId: 1, RoomName: "Room A", Slots: []Slot{
				slotAt(13, monday, 10, 0, 10, 30),
				slotAt(14, monday, 10, 15, 10, 45),
			}},
		}

		_, err := BuildWeek(rooms, monday, testConfig())

		assert.ErrorIs(t, err, ErrSlotOverlap)
	})

	t.Run("allows the same time range in different rooms", func(t *testing.T) {
		rooms := []RoomSlots{
			{RoomId: 1, RoomName: "Room A", Slots: []Slot{slotAt(1, monday, 10, 0, 11, 0)}},
			{RoomId: 2, RoomName: "Room B", Slots: []Slot{slotAt(2, monday, 10, 0, 11, 0)}},
		}

		_, err := BuildWeek(rooms, monday, testConfig())

		assert.NoError(t, err)
	})

	t.Run("rejects a duplicate room id", func(t *testing.T) {
		rooms := []RoomSlots{
			{RoomId: 1, RoomName: "Room A"},
			{RoomId: 1, RoomName: "Room A again"},
		}

		_, err := BuildWeek(rooms, monday, testConfig())

		assert.ErrorIs(t, err, ErrDuplicateRoom)
	})

	t.Run("rejects a duplicate slot id across rooms", func(t *testing.T) {
		rooms := []RoomSlots{
			{RoomId: 1, RoomName: "Room A", Slots: []Slot{slotAt(5, monday, 9, 0, 10, 0)}},
			{RoomId: 2, RoomName: "Room B", Slots: []Slot{slotAt(5, monday, 12, 0, 13, 0)}},
		}

		_, err := BuildWeek(rooms, monday, testConfig())

		assert.ErrorIs(t, err, ErrDuplicateSlot)
	})

	t.Run("rejects more rooms than the limit", func(t *testing.T) {
		cfg := testConfig()
		cfg.MaxRooms = 2
		rooms := []RoomSlots{
			{RoomId: 1, RoomName: "A"},
			{RoomId: 2, RoomName: "B"},
			{RoomId: 3, RoomName: "C"},
		}

		_, err := BuildWeek(rooms, monday, cfg)

		assert.ErrorIs(t, err, ErrTooManyRooms)
	})

	t.Run("skips rooms outside the visible set by default", func(t *testing.T) {
		rooms := []RoomSlots{
			{RoomId: 1, RoomName: "Room A", Slots: []Slot{slotAt(1, monday, 9, 0, 10, 0)}},
			{RoomId: 99, RoomName: "Hidden", Slots: []Slot{slotAt(2, monday, 9, 0, 10, 0)}},
		}

		week, err := BuildWeek(rooms, monday, testConfig())

		require.NoError(t, err)
		assert.Contains(t, week.Days[0], 1)
		assert.NotContains(t, week.Days[0], 99)
	})

	t.Run("rejects an unknown room under a strict policy", func(t *testing.T) {
		cfg := testConfig()
		cfg.Policy.SkipUnknownRoom = false
		rooms := []RoomSlots{
			{RoomId: 99, RoomName: "Hidden"},
		}

		_, err := BuildWeek(rooms, monday, cfg)

		assert.ErrorIs(t, err, ErrUnknownRoom)
	})

	t.Run("skips slots outside the displayed week by default", func(t *testing.T) {
		nextMonday := monday.AddDate(0, 0, 7)
		rooms := []RoomSlots{
			{RoomId: 1, RoomName: "Room A", Slots: []Slot{
				slotAt(1, monday, 9, 0, 10, 0),
				slotAt(2, nextMonday, 9, 0, 10, 0),
			}},
		}

		week, err := BuildWeek(rooms, monday, testConfig())

		require.NoError(t, err)
		require.Len(t, week.Days[0][1].Slots, 1)
		assert.Equal(t, 1, week.Days[0][1].Slots[0].Id)
	})

	t.Run("rejects an out-of-week slot under a strict policy", func(t *testing.T) {
		cfg := testConfig()
		cfg.Policy.SkipOutsideWeek = false
		rooms := []RoomSlots{
			{RoomId: 1, RoomName: "Room A", Slots: []Slot{
				slotAt(1, monday.AddDate(0, 0, 7), 9, 0, 10, 0),
			}},
		}

		_, err := BuildWeek(rooms, monday, cfg)

		assert.ErrorIs(t, err, ErrSlotOutsideWeek)
	})

	t.Run("places a Sunday slot at day index 6", func(t *testing.T) {
		sunday := monday.AddDate(0, 0, 6)
		rooms := []RoomSlots{
			{RoomId: 2, RoomName: "Room B", Slots: []Slot{slotAt(1, sunday, 20, 0, 21, 0)}},
		}

		week, err := BuildWeek(rooms, monday, testConfig())

		require.NoError(t, err)
		assert.Contains(t, week.Days[6], 2)
	})

	t.Run("treats a midnight end as end of its start day for overlap checks", func(t *testing.T) {
		endOfDay := slotAt(1, monday, 23, 0, 0, 0)
		endOfDay.EndTime = monday.AddDate(0, 0, 1) // 00:00 next day
		rooms := []RoomSlots{
			{RoomId: 1, RoomName: "Room A", Slots: []Slot{
				endOfDay,
				slotAt(2, monday, 23, 30, 23, 45),
			}},
		}

		_, err := BuildWeek(rooms, monday, testConfig())

		assert.ErrorIs(t, err, ErrSlotOverlap)
	})
}

func TestMondayOf(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want time.Time
	}{
		{"monday maps to itself", monday, monday},
		{"wednesday maps back to monday", monday.AddDate(0, 0, 2), monday},
		{"sunday maps back to monday", monday.AddDate(0, 0, 6), monday},
		{"next monday starts a new week", monday.AddDate(0, 0, 7), monday.AddDate(0, 0, 7)},
		{"time of day is dropped", monday.Add(15 * time.Hour), monday},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := MondayOf(tt.date); !got.Equal(tt.want) {
				t.Fatalf("MondayOf(%v) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}
