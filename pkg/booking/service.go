package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/roombook/roombook/internal/event_bus"
	"github.com/roombook/roombook/internal/utils"
	"github.com/roombook/roombook/pkg/user"
	log "github.com/sirupsen/logrus"
)

var ErrBookingConflict = fmt.Errorf("booking conflicts with an existing booking")
var ErrNotOwner = fmt.Errorf("booking belongs to another user")
var ErrBookingStarted = fmt.Errorf("booking has already started")

type Service interface {
	Create(ctx context.Context, roomId int, start, end time.Time) (Booking, error)
	// Update replaces a booking with new times. It is implemented as
	// delete+insert, so the returned booking carries a new id.
	Update(ctx context.Context, id int, roomId int, start, end time.Time) (Booking, error)
	Delete(ctx context.Context, id int) error
	RoomsForRange(ctx context.Context, from, to time.Time) ([]RoomBookings, error)
}

type ServiceImpl struct {
	repo     Repository
	clock    utils.Clock
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, clock utils.Clock, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, clock: clock, eventBus: eventBus}
}

func (s *ServiceImpl) Create(ctx context.Context, roomId int, start, end time.Time) (Booking, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return Booking{}, fmt.Errorf("failed to get current user: %w", err)
	}

	newBooking := Booking{
		RoomId:    roomId,
		StartTime: start,
		EndTime:   end,
		BookedBy:  currentUser.DisplayName,
	}

	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		// The overlap check and the insert share one transaction so two
		// concurrent submissions cannot both pass the check.
		occupied, err := repo.HasOverlap(ctx, roomId, start, end, 0)
		if err != nil {
			return err
		}
		if occupied {
			return ErrBookingConflict
		}
		id, err := repo.InsertBooking(ctx, newBooking)
		if err != nil {
			return err
		}
		newBooking.Id = id
		return nil
	})
	if err != nil {
		return Booking{}, err
	}

	s.publishCreated(ctx, newBooking)
	return newBooking, nil
}

func (s *ServiceImpl) Update(ctx context.Context, id int, roomId int, start, end time.Time) (Booking, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return Booking{}, fmt.Errorf("failed to get current user: %w", err)
	}

	var existing Booking
	updated := Booking{
		RoomId:    roomId,
		StartTime: start,
		EndTime:   end,
		BookedBy:  currentUser.DisplayName,
	}

	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		existing, err = repo.GetBooking(ctx, id)
		if err != nil {
			return err
		}
		if err := s.canMutate(existing, currentUser); err != nil {
			return err
		}

		occupied, err := repo.HasOverlap(ctx, roomId, start, end, id)
		if err != nil {
			return err
		}
		if occupied {
			return ErrBookingConflict
		}

		// Updates are modelled as delete+insert; the booking gets a fresh id.
		if err := repo.DeleteBooking(ctx, id); err != nil {
			return err
		}
		newId, err := repo.InsertBooking(ctx, updated)
		if err != nil {
			return err
		}
		updated.Id = newId
		return nil
	})
	if err != nil {
		return Booking{}, err
	}

	s.publishDeleted(ctx, existing)
	s.publishCreated(ctx, updated)
	return updated, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) error {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	var existing Booking
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		existing, err = repo.GetBooking(ctx, id)
		if err != nil {
			return err
		}
		if err := s.canMutate(existing, currentUser); err != nil {
			return err
		}
		return repo.DeleteBooking(ctx, id)
	})
	if err != nil {
		return err
	}

	s.publishDeleted(ctx, existing)
	return nil
}

func (s *ServiceImpl) RoomsForRange(ctx context.Context, from, to time.Time) ([]RoomBookings, error) {
	return s.repo.ListRoomBookings(ctx, from, to)
}

// canMutate enforces the mutation rules the form derives its mode from:
// only the owner may change a booking, and only before it starts.
func (s *ServiceImpl) canMutate(b Booking, currentUser user.User) error {
	if b.BookedBy == "" || b.BookedBy != currentUser.DisplayName {
		return ErrNotOwner
	}
	if !b.StartTime.After(s.clock.Now()) {
		return ErrBookingStarted
	}
	return nil
}

func (s *ServiceImpl) publishCreated(ctx context.Context, b Booking) {
	err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.BookingCreatedEvent, event_bus.BookingCreated{
		Id:        b.Id,
		RoomId:    b.RoomId,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		BookedBy:  b.BookedBy,
	}))
	if err != nil {
		log.Errorf("failed to publish booking created event: %v", err)
	}
}

func (s *ServiceImpl) publishDeleted(ctx context.Context, b Booking) {
	err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.BookingDeletedEvent, event_bus.BookingDeleted{
		Id:        b.Id,
		RoomId:    b.RoomId,
		StartTime: b.StartTime,
	}))
	if err != nil {
		log.Errorf("failed to publish booking deleted event: %v", err)
	}
}
