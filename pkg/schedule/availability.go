package schedule

import "time"

// ComputeAvailability derives the free/occupied interval list for one room on
// one day, for a start or end time picker. It reads the already-built grid and
// never touches the booking store.
//
// roomId 0 means no room is selected yet and yields an empty list. A room with
// no bookings that day yields an all-free list. excludeId removes one booking
// from consideration so an edited booking does not block its own time range.
func ComputeAvailability(day DayBookings, roomId int, date time.Time, field FieldType, excludeId int, cfg GridConfig) []AvailabilitySlot {
	if roomId == 0 {
		return []AvailabilitySlot{}
	}

	count := cfg.intervalCount()
	occupied := make([]bool, count)

	if rd, ok := day[roomId]; ok {
		for _, slot := range rd.Slots {
			if slot.Id == excludeId {
				continue
			}
			markOccupied(occupied, slot, cfg)
		}
	}

	// An end picker lists interval end instants, shifted one interval forward
	// relative to the start picker.
	offset := 0
	if field == FieldEnd {
		offset = cfg.IntervalMinutes
	}

	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	result := make([]AvailabilitySlot, count)
	for i := 0; i < count; i++ {
		minute := cfg.OpenStartMinutes + i*cfg.IntervalMinutes + offset
		result[i] = AvailabilitySlot{
			Slot:  midnight.Add(time.Duration(minute) * time.Minute),
			Avail: !occupied[i],
		}
	}
	return result
}

// markOccupied flags every interval a slot touches, rounding outward: a slot
// covering any part of an interval occupies it whole. Slots reaching past the
// open hours are clamped to the visible window.
func markOccupied(occupied []bool, slot Slot, cfg GridConfig) {
	startMin := minutesFromMidnight(slot.StartTime) - cfg.OpenStartMinutes
	endMin := endMinutes(slot.EndTime) - cfg.OpenStartMinutes

	from := floorDiv(startMin, cfg.IntervalMinutes)
	to := ceilDiv(endMin, cfg.IntervalMinutes)

	if from < 0 {
		from = 0
	}
	if to > len(occupied) {
		to = len(occupied)
	}
	for i := from; i < to; i++ {
		occupied[i] = true
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	return -floorDiv(-a, b)
}
