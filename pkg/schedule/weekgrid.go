package schedule

import (
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
)

// BuildWeek distributes validated room slots into a Monday-indexed 7-day grid
// and enforces the cross-slot consistency rules. monday must be the midnight
// local instant the week starts at. Any returned error means the whole week is
// rejected: the grid is all-or-nothing.
func BuildWeek(rooms []RoomSlots, monday time.Time, cfg GridConfig) (*WeekBookings, error) {
	if cfg.MaxRooms > 0 && len(rooms) > cfg.MaxRooms {
		return nil, fmt.Errorf("%w: got %d, limit %d", ErrTooManyRooms, len(rooms), cfg.MaxRooms)
	}

	week := &WeekBookings{Monday: monday}
	for i := range week.Days {
		week.Days[i] = make(DayBookings)
	}

	seenRooms := make(map[int]bool, len(rooms))
	seenSlots := make(map[int]bool)

	for _, room := range rooms {
		if seenRooms[room.RoomId] {
			return nil, fmt.Errorf("%w: roomId %d", ErrDuplicateRoom, room.RoomId)
		}
		seenRooms[room.RoomId] = true

		if !cfg.isVisibleRoom(room.RoomId) {
			if cfg.Policy.SkipUnknownRoom {
				log.Debugf("skipping room %d outside the visible room set", room.RoomId)
				continue
			}
			return nil, fmt.Errorf("%w: roomId %d", ErrUnknownRoom, room.RoomId)
		}

		for _, slot := range room.Slots {
			day := daysBetween(monday, slot.StartTime)
			if day < 0 || day > 6 {
				if cfg.Policy.SkipOutsideWeek {
					log.Debugf("skipping slot %d outside the displayed week", slot.Id)
					continue
				}
				return nil, fmt.Errorf("%w: slot %d", ErrSlotOutsideWeek, slot.Id)
			}

			// Slot ids are unique across the whole response, not per room.
			if seenSlots[slot.Id] {
				return nil, fmt.Errorf("%w: slot %d", ErrDuplicateSlot, slot.Id)
			}
			seenSlots[slot.Id] = true

			rd, ok := week.Days[day][room.RoomId]
			if !ok {
				rd = &RoomDay{RoomId: room.RoomId, RoomName: room.RoomName}
				week.Days[day][room.RoomId] = rd
			}
			rd.Slots = append(rd.Slots, slot)
		}
	}

	for _, rooms := range week.Days {
		for _, rd := range rooms {
			sort.SliceStable(rd.Slots, func(i, j int) bool {
				return rd.Slots[i].StartTime.Before(rd.Slots[j].StartTime)
			})
			if err := checkOverlaps(rd); err != nil {
				return nil, err
			}
		}
	}

	return week, nil
}

// checkOverlaps rejects any pair of slots in one room-day whose time ranges
// intersect. Slots are already sorted by start, so only neighbors can overlap.
// A slot starting exactly when the previous ends is legal.
func checkOverlaps(rd *RoomDay) error {
	for i := 1; i < len(rd.Slots); i++ {
		prev := rd.Slots[i-1]
		cur := rd.Slots[i]
		prevEnd := effectiveEnd(prev.StartTime, prev.EndTime)
		if cur.StartTime.Before(prevEnd) {
			return fmt.Errorf("%w: slots %d and %d in room %d", ErrSlotOverlap, prev.Id, cur.Id, rd.RoomId)
		}
	}
	return nil
}
