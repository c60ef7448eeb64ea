package schedule

import (
	"fmt"
	"math"
	"time"

	"github.com/roombook/roombook/internal/config"
	"github.com/roombook/roombook/pkg/user"
)

// RawRoom is one room as returned by the booking store, before validation.
type RawRoom struct {
	RoomId   int       `json:"roomId" validate:"required,gt=0"`
	RoomName string    `json:"roomName" validate:"required"`
	Slots    []RawSlot `json:"slots" validate:"dive"`
}

// RawSlot is one unvalidated booking record. Times are local wall-clock
// datetimes; an end of exactly 00:00 means end-of-day (24:00).
type RawSlot struct {
	Id       int       `json:"id" validate:"required,gt=0"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	BookedBy *string   `json:"bookedBy" validate:"omitempty,max=100"`
}

// Slot is a validated booking slot. BookedBy is empty when the slot is
// blocked without an owner.
type Slot struct {
	Id        int
	StartTime time.Time
	EndTime   time.Time
	BookedBy  string
}

// RoomSlots is a validated room with its slots, order not yet significant.
type RoomSlots struct {
	RoomId   int
	RoomName string
	Slots    []Slot
}

// RoomDay holds one room's slots for a single day, sorted by start time.
type RoomDay struct {
	RoomId   int
	RoomName string
	Slots    []Slot
}

// DayBookings maps roomId to that room's bookings for one day.
type DayBookings map[int]*RoomDay

// WeekBookings is the validated grid for one displayed week.
// Days[0] is the Monday given at build time, Days[6] the following Sunday.
// A grid is built fresh from every successful fetch and replaced wholesale,
// never patched in place.
type WeekBookings struct {
	Monday time.Time
	Days   [7]DayBookings
}

// FindSlot locates a slot by id anywhere in the week.
// Returns the slot, its day index and roomId.
func (w *WeekBookings) FindSlot(id int) (Slot, int, int, bool) {
	for day, rooms := range w.Days {
		for roomId, rd := range rooms {
			for _, s := range rd.Slots {
				if s.Id == id {
					return s, day, roomId, true
				}
			}
		}
	}
	return Slot{}, 0, 0, false
}

// AvailabilitySlot marks one interval within the open hours as free or taken.
type AvailabilitySlot struct {
	Slot  time.Time
	Avail bool
}

// FieldType selects which time picker an availability list feeds.
type FieldType string

const (
	// FieldStart lists interval start instants.
	FieldStart FieldType = "start"
	// FieldEnd lists interval end instants (each shifted forward by one interval).
	FieldEnd FieldType = "end"
)

// FilterPolicy names the silent-filtering decisions of the grid builder, so the
// behavior is an explicit choice rather than implicit fallthrough.
type FilterPolicy struct {
	// SkipUnknownRoom drops rooms outside the visible room set instead of failing.
	SkipUnknownRoom bool
	// SkipOutsideWeek drops slots outside the displayed Monday..Sunday window
	// instead of failing. The fetch range may include adjacent-week spillover.
	SkipOutsideWeek bool
}

// DefaultFilterPolicy is the lenient variant: spillover data is filtered, not fatal.
var DefaultFilterPolicy = FilterPolicy{SkipUnknownRoom: true, SkipOutsideWeek: true}

// GridConfig carries the calendar rules the core algorithms operate under.
type GridConfig struct {
	// OpenStartMinutes/OpenEndMinutes bound the bookable window, as minutes
	// from midnight.
	OpenStartMinutes int
	OpenEndMinutes   int
	IntervalMinutes  int
	MinMeetingMin    int
	MaxRooms         int
	VisibleRoomIds   []int
	// MaxMeetingMin caps a single meeting's length per role.
	MaxMeetingMin map[user.Role]int
	Policy        FilterPolicy
}

// GridConfigFromBooking translates the application configuration into a GridConfig.
func GridConfigFromBooking(cfg config.Booking) (GridConfig, error) {
	openStart, err := parseClock(cfg.OpenHourStart)
	if err != nil {
		return GridConfig{}, fmt.Errorf("invalid open hour start: %w", err)
	}
	openEnd, err := parseClock(cfg.OpenHourEnd)
	if err != nil {
		return GridConfig{}, fmt.Errorf("invalid open hour end: %w", err)
	}
	if cfg.IntervalMinutes <= 0 {
		return GridConfig{}, fmt.Errorf("interval must be positive")
	}
	if openEnd <= openStart {
		return GridConfig{}, fmt.Errorf("open hour end must be after open hour start")
	}
	return GridConfig{
		OpenStartMinutes: openStart,
		OpenEndMinutes:   openEnd,
		IntervalMinutes:  cfg.IntervalMinutes,
		MinMeetingMin:    cfg.MinMeetingMinutes,
		MaxRooms:         cfg.MaxRooms,
		VisibleRoomIds:   cfg.VisibleRoomIds,
		MaxMeetingMin: map[user.Role]int{
			user.RoleStudent: cfg.MaxMeetingMinutesStudent,
			user.RoleStaff:   cfg.MaxMeetingMinutesStaff,
		},
		Policy: DefaultFilterPolicy,
	}, nil
}

func (c GridConfig) isVisibleRoom(roomId int) bool {
	for _, id := range c.VisibleRoomIds {
		if id == roomId {
			return true
		}
	}
	return false
}

// intervalCount is the number of bookable intervals in the open window.
func (c GridConfig) intervalCount() int {
	return (c.OpenEndMinutes - c.OpenStartMinutes) / c.IntervalMinutes
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// MondayOf returns the Monday (at midnight, local to date) of the week
// containing date.
func MondayOf(date time.Time) time.Time {
	delta := (int(date.Weekday()) - int(time.Monday) + 7) % 7
	d := date.AddDate(0, 0, -delta)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

// daysBetween returns the whole-day offset of date from base, DST-safe.
func daysBetween(base, date time.Time) int {
	b := time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, base.Location())
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return int(math.Round(d.Sub(b).Hours() / 24))
}

// minutesFromMidnight returns t's wall-clock offset within its day.
func minutesFromMidnight(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// endMinutes returns the positional end offset of a slot ending at t:
// a midnight end counts as 24:00 of the previous day.
func endMinutes(t time.Time) int {
	m := minutesFromMidnight(t)
	if m == 0 {
		return 24 * 60
	}
	return m
}

// effectiveEnd returns the instant used for positional math: a slot ending at
// exactly 00:00 ends at 24:00 of its start day.
func effectiveEnd(start, end time.Time) time.Time {
	if minutesFromMidnight(end) == 0 {
		d := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
		return d.AddDate(0, 0, 1)
	}
	return end
}
