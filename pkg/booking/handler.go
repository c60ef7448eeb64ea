package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/roombook/roombook/internal/rest"
	log "github.com/sirupsen/logrus"
)

const dateTimeLayout = "2006-01-02T15:04"

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type bookingDTO struct {
	Id       int    `json:"id"`
	RoomId   int    `json:"roomId"`
	Start    string `json:"start"`
	End      string `json:"end"`
	BookedBy string `json:"bookedBy,omitempty"`
}

type roomBookingsDTO struct {
	RoomId   int          `json:"roomId"`
	RoomName string       `json:"roomName"`
	Bookings []bookingDTO `json:"bookings"`
}

type mutateBookingDTO struct {
	RoomId int    `json:"roomId"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

// ListBookings returns per-room bookings for the half-open range ?from..?to.
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	from, err := time.ParseInLocation(dateTimeLayout, r.URL.Query().Get("from"), time.Local)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid from", "expected format "+dateTimeLayout)
		return
	}
	to, err := time.ParseInLocation(dateTimeLayout, r.URL.Query().Get("to"), time.Local)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid to", "expected format "+dateTimeLayout)
		return
	}

	rooms, err := h.service.RoomsForRange(r.Context(), from, to)
	if err != nil {
		log.Errorf("failed to list bookings: %v", err)
		h.writeError(w, http.StatusInternalServerError, "internal error", "")
		return
	}

	dto := make([]roomBookingsDTO, 0, len(rooms))
	for _, room := range rooms {
		dto = append(dto, roomBookingsToDTO(room))
	}
	h.writeJSON(w, http.StatusOK, dto)
}

// CreateBooking books a room for the current user.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	dto, ok := h.decodeMutation(w, r)
	if !ok {
		return
	}
	start, end, ok := h.parseTimes(w, dto)
	if !ok {
		return
	}

	created, err := h.service.Create(r.Context(), dto.RoomId, start, end)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, bookingToDTO(created))
}

// UpdateBooking reschedules an existing booking. The booking is replaced, so
// the response carries a new id.
func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid booking id", "")
		return
	}
	dto, ok := h.decodeMutation(w, r)
	if !ok {
		return
	}
	start, end, ok := h.parseTimes(w, dto)
	if !ok {
		return
	}

	updated, err := h.service.Update(r.Context(), id, dto.RoomId, start, end)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, bookingToDTO(updated))
}

// DeleteBooking cancels a booking owned by the current user.
func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid booking id", "")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeMutation(w http.ResponseWriter, r *http.Request) (mutateBookingDTO, bool) {
	var dto mutateBookingDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return mutateBookingDTO{}, false
	}
	return dto, true
}

func (h *Handler) parseTimes(w http.ResponseWriter, dto mutateBookingDTO) (time.Time, time.Time, bool) {
	start, err := time.ParseInLocation(dateTimeLayout, dto.Start, time.Local)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid start", "expected format "+dateTimeLayout)
		return time.Time{}, time.Time{}, false
	}
	end, err := time.ParseInLocation(dateTimeLayout, dto.End, time.Local)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid end", "expected format "+dateTimeLayout)
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBookingNotFound):
		h.writeError(w, http.StatusNotFound, "booking not found", "")
	case errors.Is(err, ErrBookingConflict):
		h.writeError(w, http.StatusConflict, "the selected time is already booked", "")
	case errors.Is(err, ErrNotOwner):
		h.writeError(w, http.StatusForbidden, "the booking belongs to another user", "")
	case errors.Is(err, ErrBookingStarted):
		h.writeError(w, http.StatusConflict, "the booking has already started", "")
	default:
		log.Errorf("booking request failed: %v", err)
		h.writeError(w, http.StatusInternalServerError, "internal error", "")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, details string) {
	h.writeJSON(w, status, rest.ErrorResponse{Error: message, Details: details})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func bookingToDTO(b Booking) bookingDTO {
	return bookingDTO{
		Id:       b.Id,
		RoomId:   b.RoomId,
		Start:    b.StartTime.Format(dateTimeLayout),
		End:      b.EndTime.Format(dateTimeLayout),
		BookedBy: b.BookedBy,
	}
}

func roomBookingsToDTO(room RoomBookings) roomBookingsDTO {
	bookings := make([]bookingDTO, 0, len(room.Bookings))
	for _, b := range room.Bookings {
		bookings = append(bookings, bookingToDTO(b))
	}
	return roomBookingsDTO{RoomId: room.RoomId, RoomName: room.RoomName, Bookings: bookings}
}
