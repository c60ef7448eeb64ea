package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Session handoff
	r.HandleFunc("/api/session", deps.UserHandler.Handoff).Methods("POST")
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")

	// Rooms
	r.HandleFunc("/api/room", deps.RoomHandler.ListRooms).Methods("GET")

	// Week grid and availability
	r.HandleFunc("/api/schedule/week", deps.ScheduleHandler.GetWeek).Methods("GET")
	r.HandleFunc("/api/schedule/availability", deps.ScheduleHandler.GetAvailability).Methods("GET")

	// Booking form
	r.HandleFunc("/api/schedule/form", deps.ScheduleHandler.ResolveForm).Methods("GET")
	r.HandleFunc("/api/schedule/form", deps.ScheduleHandler.SubmitForm).Methods("POST")
	r.HandleFunc("/api/schedule/form", deps.ScheduleHandler.CancelForm).Methods("DELETE")

	// Direct booking access
	r.HandleFunc("/api/booking", deps.BookingHandler.ListBookings).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/booking", deps.BookingHandler.CreateBooking).Methods("POST")
	r.HandleFunc("/api/booking/{id}", deps.BookingHandler.UpdateBooking).Methods("PUT")
	r.HandleFunc("/api/booking/{id}", deps.BookingHandler.DeleteBooking).Methods("DELETE")
}
