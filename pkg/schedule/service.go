package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/roombook/roombook/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

// SlotSource provides raw room bookings for a half-open time range.
// The booking package satisfies it through an adapter wired at startup.
type SlotSource interface {
	FetchRooms(ctx context.Context, from, to time.Time) ([]RawRoom, error)
}

// Service builds and caches week grids. A grid is rebuilt from scratch on
// every cache miss; there is no in-place patching.
type Service struct {
	source    SlotSource
	cache     WeekCache
	validator *Validator
	cfg       GridConfig
}

func NewService(source SlotSource, cache WeekCache, cfg GridConfig, eventBus *event_bus.EventBus) *Service {
	s := &Service{
		source:    source,
		cache:     cache,
		validator: NewValidator(cfg),
		cfg:       cfg,
	}

	// Any booking mutation invalidates the cached week it belongs to, so the
	// next read rebuilds the grid from the store.
	event_bus.SubscribeTyped(eventBus, event_bus.BookingCreatedEvent, func(event event_bus.EventT[event_bus.BookingCreated]) error {
		return s.InvalidateWeek(event.Context(), event.Data.StartTime)
	})
	event_bus.SubscribeTyped(eventBus, event_bus.BookingDeletedEvent, func(event event_bus.EventT[event_bus.BookingDeleted]) error {
		return s.InvalidateWeek(event.Context(), event.Data.StartTime)
	})

	return s
}

// Config exposes the calendar rules the grid was built under.
func (s *Service) Config() GridConfig {
	return s.cfg
}

// WeekFor returns the grid of the week containing date, from cache when
// possible. On a miss it fetches, validates and builds the whole week; any
// failure leaves the cache untouched and returns no grid at all.
func (s *Service) WeekFor(ctx context.Context, date time.Time) (*WeekBookings, error) {
	monday := MondayOf(date)

	cached, ok, err := s.cache.GetWeek(ctx, monday)
	if err != nil {
		log.Errorf("week cache read failed, rebuilding: %v", err)
	} else if ok {
		return cached, nil
	}

	rawRooms, err := s.source.FetchRooms(ctx, monday, monday.AddDate(0, 0, 7))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch room bookings: %w", err)
	}

	rooms, err := s.validator.ValidateRooms(rawRooms)
	if err != nil {
		return nil, err
	}

	week, err := BuildWeek(rooms, monday, s.cfg)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetWeek(ctx, monday, week); err != nil {
		log.Errorf("failed to cache week %s: %v", monday.Format("2006-01-02"), err)
	}
	return week, nil
}

// InvalidateWeek evicts the cached grid of the week containing date.
func (s *Service) InvalidateWeek(ctx context.Context, date time.Time) error {
	return s.cache.InvalidateWeek(ctx, MondayOf(date))
}

// Availability computes the picker list for one room and day within the week
// containing date.
func (s *Service) Availability(ctx context.Context, date time.Time, roomId int, field FieldType, excludeId int) ([]AvailabilitySlot, error) {
	week, err := s.WeekFor(ctx, date)
	if err != nil {
		return nil, err
	}
	day := daysBetween(week.Monday, date)
	if day < 0 || day > 6 {
		return nil, fmt.Errorf("date %s outside its own week", date.Format("2006-01-02"))
	}
	return ComputeAvailability(week.Days[day], roomId, date, field, excludeId, s.cfg), nil
}
