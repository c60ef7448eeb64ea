package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validator checks raw room payloads against the slot schema before any grid
// is built. It is pure: no partial acceptance, the first violated rule wins.
type Validator struct {
	validate *validator.Validate
	cfg      GridConfig
}

func NewValidator(cfg GridConfig) *Validator {
	return &Validator{
		validate: validator.New(),
		cfg:      cfg,
	}
}

// ValidateRooms validates every room and slot and returns the typed room
// list, or the first *ValidationError encountered. Cross-room and cross-slot
// rules (duplicates, overlaps) are the grid builder's concern, not handled here.
func (v *Validator) ValidateRooms(rooms []RawRoom) ([]RoomSlots, error) {
	result := make([]RoomSlots, 0, len(rooms))
	for _, room := range rooms {
		validated, err := v.validateRoom(room)
		if err != nil {
			return nil, err
		}
		result = append(result, validated)
	}
	return result, nil
}

func (v *Validator) validateRoom(room RawRoom) (RoomSlots, error) {
	if err := v.validate.Struct(room); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return RoomSlots{}, &ValidationError{
				Field: errs[0].Namespace(),
				Rule:  errs[0].Tag(),
			}
		}
		return RoomSlots{}, err
	}
	if strings.TrimSpace(room.RoomName) == "" {
		return RoomSlots{}, &ValidationError{Field: "roomName", Rule: "must not be blank"}
	}

	validated := RoomSlots{
		RoomId:   room.RoomId,
		RoomName: room.RoomName,
		Slots:    make([]Slot, 0, len(room.Slots)),
	}
	for _, slot := range room.Slots {
		s, err := v.validateSlot(slot)
		if err != nil {
			return RoomSlots{}, err
		}
		validated.Slots = append(validated.Slots, s)
	}
	return validated, nil
}

func (v *Validator) validateSlot(slot RawSlot) (Slot, error) {
	field := func(name string) string { return fmt.Sprintf("slot %d: %s", slot.Id, name) }

	if slot.Start.IsZero() || slot.End.IsZero() {
		return Slot{}, &ValidationError{Field: field("start/end"), Rule: "must be a well-formed datetime"}
	}
	if !v.aligned(slot.Start) {
		return Slot{}, &ValidationError{
			Field: field("start"),
			Rule:  fmt.Sprintf("must align to the %d-minute interval", v.cfg.IntervalMinutes),
		}
	}
	if !v.aligned(slot.End) {
		return Slot{}, &ValidationError{
			Field: field("end"),
			Rule:  fmt.Sprintf("must align to the %d-minute interval", v.cfg.IntervalMinutes),
		}
	}
	if !sameCalendarDay(slot.Start, slot.End) {
		return Slot{}, &ValidationError{Field: field("end"), Rule: "must be on the same calendar day as start"}
	}
	end := effectiveEnd(slot.Start, slot.End)
	if end.Sub(slot.Start) < time.Duration(v.cfg.MinMeetingMin)*time.Minute {
		return Slot{}, &ValidationError{
			Field: field("end"),
			Rule:  fmt.Sprintf("must be at least %d minutes after start", v.cfg.MinMeetingMin),
		}
	}

	bookedBy := ""
	if slot.BookedBy != nil {
		bookedBy = strings.TrimSpace(*slot.BookedBy)
		if bookedBy == "" {
			return Slot{}, &ValidationError{Field: field("bookedBy"), Rule: "must not be blank when present"}
		}
		if len(bookedBy) > 100 {
			return Slot{}, &ValidationError{Field: field("bookedBy"), Rule: "must be at most 100 characters"}
		}
	}

	return Slot{
		Id:        slot.Id,
		StartTime: slot.Start,
		EndTime:   slot.End,
		BookedBy:  bookedBy,
	}, nil
}

// aligned reports whether t sits exactly on an interval boundary.
func (v *Validator) aligned(t time.Time) bool {
	if t.Second() != 0 || t.Nanosecond() != 0 {
		return false
	}
	return minutesFromMidnight(t)%v.cfg.IntervalMinutes == 0
}

// sameCalendarDay allows an end of exactly 00:00 on the following day,
// treated as end-of-day 24:00 for positional math.
func sameCalendarDay(start, end time.Time) bool {
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	if sy == ey && sm == em && sd == ed {
		return true
	}
	if minutesFromMidnight(end) == 0 {
		next := time.Date(sy, sm, sd, 0, 0, 0, 0, start.Location()).AddDate(0, 0, 1)
		ny, nm, nd := next.Date()
		return ey == ny && em == nm && ed == nd
	}
	return false
}
