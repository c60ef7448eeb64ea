package app

import (
	"database/sql"

	"github.com/redis/go-redis/v9"
	"github.com/roombook/roombook/internal/config"
	"github.com/roombook/roombook/internal/event_bus"
	"github.com/roombook/roombook/internal/utils"
	"github.com/roombook/roombook/pkg/booking"
	"github.com/roombook/roombook/pkg/room"
	"github.com/roombook/roombook/pkg/schedule"
	"github.com/roombook/roombook/pkg/user"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Clock    utils.Clock

	Sessions    *user.SessionStore
	UserHandler *user.Handler

	RoomRepo    room.Repository
	RoomHandler *room.Handler

	BookingRepo    booking.Repository
	BookingService booking.Service
	BookingHandler *booking.Handler

	WeekCache       schedule.WeekCache
	ScheduleService *schedule.Service
	FormService     *schedule.FormService
	ScheduleHandler *schedule.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, redisClient *redis.Client, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.Sessions = user.NewSessionStore()
	deps.UserHandler = user.NewHandler(deps.Sessions)

	deps.RoomRepo = room.NewRepository(db)
	deps.RoomHandler = room.NewHandler(deps.RoomRepo)

	deps.BookingRepo = booking.NewRepository(db)
	deps.BookingService = booking.NewService(deps.BookingRepo, deps.Clock, deps.EventBus)
	deps.BookingHandler = booking.NewHandler(deps.BookingService)

	gridCfg, err := schedule.GridConfigFromBooking(cfg.Booking)
	if err != nil {
		return nil, err
	}

	if redisClient != nil {
		deps.WeekCache = schedule.NewRedisWeekCache(redisClient, cfg.Redis.TTL)
	} else {
		deps.WeekCache = schedule.NewMemoryWeekCache()
	}

	source := &slotSourceAdapter{bookings: deps.BookingService}
	deps.ScheduleService = schedule.NewService(source, deps.WeekCache, gridCfg, deps.EventBus)

	writer := &bookingWriterAdapter{bookings: deps.BookingService}
	deps.FormService = schedule.NewFormService(deps.ScheduleService, writer, deps.Clock)
	deps.ScheduleHandler = schedule.NewHandler(deps.ScheduleService, deps.FormService)

	return deps, nil
}
