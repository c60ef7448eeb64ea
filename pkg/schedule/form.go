package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/roombook/roombook/internal/utils"
	"github.com/roombook/roombook/pkg/user"
	log "github.com/sirupsen/logrus"
)

// FormMode is the editing mode the booking form opens in.
type FormMode string

const (
	// ModeInsert creates a new booking at the clicked time.
	ModeInsert FormMode = "insert"
	// ModeView shows an existing booking read-only.
	ModeView FormMode = "view"
	// ModeUpdate lets the owner change a booking that has not started yet.
	ModeUpdate FormMode = "update"
)

// FormProp describes how the form was opened: either an empty grid cell
// (SlotId 0, RoomId and Start prefilled) or an existing slot.
type FormProp struct {
	RoomId int
	Start  time.Time
	SlotId int
}

// FormState is the resolved form: its mode and the values it opens with.
type FormState struct {
	Mode   FormMode
	RoomId int
	Start  time.Time
	End    time.Time
	Slot   Slot
}

// ResolveMode derives the form mode from the grid. A referenced slot that is
// absent from the grid is a consistency failure, never silently treated as a
// new booking.
func ResolveMode(week *WeekBookings, prop FormProp, now time.Time, currentUser user.User) (FormState, error) {
	if prop.SlotId == 0 {
		return FormState{Mode: ModeInsert, RoomId: prop.RoomId, Start: prop.Start}, nil
	}

	slot, _, roomId, found := week.FindSlot(prop.SlotId)
	if !found {
		return FormState{}, fmt.Errorf("%w: slot %d", ErrStaleBookingRef, prop.SlotId)
	}

	mode := ModeView
	if slot.BookedBy != "" && slot.BookedBy == currentUser.DisplayName && slot.StartTime.After(now) {
		mode = ModeUpdate
	}
	return FormState{
		Mode:   mode,
		RoomId: roomId,
		Start:  slot.StartTime,
		End:    slot.EndTime,
		Slot:   slot,
	}, nil
}

// Submission is a filled-in booking form. SlotId 0 means a new booking;
// otherwise the identified booking is being rescheduled. Origin is the
// booking's current start time as shown in the form; it locates the booking
// when the new Start lies in a different week. Zero Origin means the booking
// stays within the week of Start.
type Submission struct {
	SlotId int
	RoomId int
	Start  time.Time
	End    time.Time
	Origin time.Time
}

// ValidateSubmission runs the pre-submit checks against the current grid.
// Failures are *UserValidationError: the form stays open and the user can
// correct the input. The booking store re-checks overlap transactionally, so
// this is a fast first line, not the authority.
func ValidateSubmission(week *WeekBookings, sub Submission, role user.Role, cfg GridConfig) error {
	if sub.RoomId == 0 {
		return &UserValidationError{Message: "Select a room first"}
	}
	if !cfg.isVisibleRoom(sub.RoomId) {
		return &UserValidationError{Message: "The selected room is not bookable"}
	}
	if !sameCalendarDay(sub.Start, sub.End) {
		return &UserValidationError{Message: "A booking must start and end on the same day"}
	}

	startMin := minutesFromMidnight(sub.Start)
	endMin := endMinutes(sub.End)
	if startMin%cfg.IntervalMinutes != 0 || endMin%cfg.IntervalMinutes != 0 {
		return &UserValidationError{Message: fmt.Sprintf("Times must align to %d-minute intervals", cfg.IntervalMinutes)}
	}
	if startMin < cfg.OpenStartMinutes || endMin > cfg.OpenEndMinutes {
		return &UserValidationError{Message: "The booking must stay within opening hours"}
	}

	duration := endMin - startMin
	if duration < cfg.MinMeetingMin {
		return &UserValidationError{Message: fmt.Sprintf("A meeting must last at least %d minutes", cfg.MinMeetingMin)}
	}
	if max, ok := cfg.MaxMeetingMin[role]; ok && duration > max {
		return &UserValidationError{Message: fmt.Sprintf("A meeting may last at most %d minutes", max)}
	}

	day := daysBetween(week.Monday, sub.Start)
	if day < 0 || day > 6 {
		return &UserValidationError{Message: "The booking falls outside the displayed week"}
	}
	if rd, ok := week.Days[day][sub.RoomId]; ok {
		end := effectiveEnd(sub.Start, sub.End)
		for _, slot := range rd.Slots {
			if slot.Id == sub.SlotId {
				continue
			}
			slotEnd := effectiveEnd(slot.StartTime, slot.EndTime)
			if sub.Start.Before(slotEnd) && slot.StartTime.Before(end) {
				return &UserValidationError{Message: "The selected time is already booked"}
			}
		}
	}
	return nil
}

// BookingWriter dispatches accepted submissions to the booking store.
// The booking package satisfies it through an adapter wired at startup.
type BookingWriter interface {
	Create(ctx context.Context, roomId int, start, end time.Time) error
	Update(ctx context.Context, id int, roomId int, start, end time.Time) error
	Delete(ctx context.Context, id int) error
}

// FormService drives the booking form: mode resolution, pre-submit validation
// and dispatch to the booking store.
type FormService struct {
	schedule *Service
	bookings BookingWriter
	clock    utils.Clock
}

func NewFormService(schedule *Service, bookings BookingWriter, clock utils.Clock) *FormService {
	return &FormService{schedule: schedule, bookings: bookings, clock: clock}
}

// Resolve opens the form for the given prop and current user.
func (s *FormService) Resolve(ctx context.Context, prop FormProp) (FormState, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return FormState{}, fmt.Errorf("failed to get current user: %w", err)
	}

	date := prop.Start
	if prop.SlotId != 0 && date.IsZero() {
		date = s.clock.Now()
	}
	week, err := s.schedule.WeekFor(ctx, date)
	if err != nil {
		return FormState{}, err
	}
	return ResolveMode(week, prop, s.clock.Now(), currentUser)
}

// Submit validates and dispatches a submission. The cached week is invalidated
// whether the store accepted or rejected the change: after any dispatch the
// cache can no longer be trusted.
func (s *FormService) Submit(ctx context.Context, sub Submission) error {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	week, err := s.schedule.WeekFor(ctx, sub.Start)
	if err != nil {
		return err
	}

	crossWeek := sub.SlotId != 0 && !sub.Origin.IsZero() && !MondayOf(sub.Origin).Equal(week.Monday)
	if sub.SlotId != 0 {
		// The booking being moved lives in the week it was opened from,
		// which is not the week of the new time on a cross-week reschedule.
		originWeek := week
		if crossWeek {
			originWeek, err = s.schedule.WeekFor(ctx, sub.Origin)
			if err != nil {
				return err
			}
		}
		state, err := ResolveMode(originWeek, FormProp{SlotId: sub.SlotId}, s.clock.Now(), currentUser)
		if err != nil {
			return err
		}
		if state.Mode != ModeUpdate {
			return &UserValidationError{Message: "This booking can no longer be changed"}
		}
	}

	if err := ValidateSubmission(week, sub, currentUser.Role, s.cfg()); err != nil {
		return err
	}

	if sub.SlotId == 0 {
		err = s.bookings.Create(ctx, sub.RoomId, sub.Start, sub.End)
	} else {
		err = s.bookings.Update(ctx, sub.SlotId, sub.RoomId, sub.Start, sub.End)
	}
	s.invalidate(ctx, sub.Start)
	if crossWeek {
		s.invalidate(ctx, sub.Origin)
	}
	return err
}

// Cancel removes an existing booking shown in the week containing date.
// Like Submit, the cached week is dropped regardless of the outcome.
func (s *FormService) Cancel(ctx context.Context, slotId int, date time.Time) error {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	week, err := s.schedule.WeekFor(ctx, date)
	if err != nil {
		return err
	}
	state, err := ResolveMode(week, FormProp{SlotId: slotId}, s.clock.Now(), currentUser)
	if err != nil {
		return err
	}
	if state.Mode != ModeUpdate {
		return &UserValidationError{Message: "This booking can no longer be cancelled"}
	}

	err = s.bookings.Delete(ctx, slotId)
	s.invalidate(ctx, state.Start)
	return err
}

func (s *FormService) cfg() GridConfig {
	return s.schedule.Config()
}

func (s *FormService) invalidate(ctx context.Context, date time.Time) {
	if err := s.schedule.InvalidateWeek(ctx, date); err != nil {
		log.Errorf("failed to invalidate week cache: %v", err)
	}
}
