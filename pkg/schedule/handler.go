package schedule

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/roombook/roombook/internal/rest"
	log "github.com/sirupsen/logrus"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04"
)

type Handler struct {
	service *Service
	forms   *FormService
}

func NewHandler(service *Service, forms *FormService) *Handler {
	return &Handler{service: service, forms: forms}
}

type slotDTO struct {
	Id       int    `json:"id"`
	Start    string `json:"start"`
	End      string `json:"end"`
	BookedBy string `json:"bookedBy,omitempty"`
}

type roomDayDTO struct {
	RoomId   int       `json:"roomId"`
	RoomName string    `json:"roomName"`
	Slots    []slotDTO `json:"slots"`
}

type weekDTO struct {
	Monday string         `json:"monday"`
	Days   [][]roomDayDTO `json:"days"`
}

type availabilityDTO struct {
	Slot      string `json:"slot"`
	Available bool   `json:"available"`
}

type formStateDTO struct {
	Mode   string `json:"mode"`
	RoomId int    `json:"roomId,omitempty"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
	SlotId int    `json:"slotId,omitempty"`
}

type submissionDTO struct {
	SlotId int    `json:"slotId"`
	RoomId int    `json:"roomId"`
	Start  string `json:"start"`
	End    string `json:"end"`
	// OriginalStart is the booking's current start, required when a
	// reschedule moves it into a different week.
	OriginalStart string `json:"originalStart,omitempty"`
}

// GetWeek returns the grid of the week containing ?date (default: today).
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	date, ok := h.parseDate(w, r)
	if !ok {
		return
	}

	week, err := h.service.WeekFor(r.Context(), date)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, weekToDTO(week))
}

// GetAvailability returns the picker interval list for one room and day.
// Query: date, roomId, field (start|end), excludeId (optional).
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	date, ok := h.parseDate(w, r)
	if !ok {
		return
	}
	roomId, _ := strconv.Atoi(r.URL.Query().Get("roomId"))
	excludeId, _ := strconv.Atoi(r.URL.Query().Get("excludeId"))

	field := FieldType(r.URL.Query().Get("field"))
	if field != FieldStart && field != FieldEnd {
		h.writeError(w, http.StatusBadRequest, "field must be 'start' or 'end'", "")
		return
	}

	slots, err := h.service.Availability(r.Context(), date, roomId, field, excludeId)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	dto := make([]availabilityDTO, 0, len(slots))
	for _, s := range slots {
		dto = append(dto, availabilityDTO{Slot: s.Slot.Format(dateTimeLayout), Available: s.Avail})
	}
	h.writeJSON(w, http.StatusOK, dto)
}

// ResolveForm derives the booking form mode. Query: slotId for an existing
// booking, or roomId and start for an empty cell.
func (h *Handler) ResolveForm(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	prop := FormProp{}
	prop.SlotId, _ = strconv.Atoi(query.Get("slotId"))
	prop.RoomId, _ = strconv.Atoi(query.Get("roomId"))
	if raw := query.Get("start"); raw != "" {
		start, err := time.ParseInLocation(dateTimeLayout, raw, time.Local)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid start", "expected format "+dateTimeLayout)
			return
		}
		prop.Start = start
	}

	state, err := h.forms.Resolve(r.Context(), prop)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, formStateToDTO(state))
}

// SubmitForm validates and applies a booking submission.
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	var dto submissionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	sub, err := submissionFromDTO(dto)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid submission", err.Error())
		return
	}

	if err := h.forms.Submit(r.Context(), sub); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CancelForm removes an existing booking. Query: slotId and date.
func (h *Handler) CancelForm(w http.ResponseWriter, r *http.Request) {
	slotId, err := strconv.Atoi(r.URL.Query().Get("slotId"))
	if err != nil || slotId <= 0 {
		h.writeError(w, http.StatusBadRequest, "invalid slotId", "")
		return
	}
	date, ok := h.parseDate(w, r)
	if !ok {
		return
	}

	if err := h.forms.Cancel(r.Context(), slotId, date); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return time.Now(), true
	}
	date, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid date", "expected format "+dateLayout)
		return time.Time{}, false
	}
	return date, true
}

// writeServiceError maps domain errors to HTTP statuses. Grid consistency
// failures surface as a generic upstream error: raw payload details belong in
// the logs, never in the response.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var userErr *UserValidationError
	var backendErr *BackendError
	switch {
	case errors.As(err, &userErr):
		h.writeError(w, http.StatusUnprocessableEntity, userErr.Message, "")
	case errors.As(err, &backendErr):
		h.writeError(w, http.StatusConflict, backendErr.Message, "")
	case IsGridError(err):
		log.Errorf("rejecting week grid: %v", err)
		h.writeError(w, http.StatusBadGateway, "upstream booking data is invalid", "")
	case errors.Is(err, ErrStaleBookingRef):
		log.Errorf("stale booking reference: %v", err)
		h.writeError(w, http.StatusInternalServerError, "internal error", "")
	default:
		log.Errorf("schedule request failed: %v", err)
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

func weekToDTO(week *WeekBookings) weekDTO {
	dto := weekDTO{
		Monday: week.Monday.Format(dateLayout),
		Days:   make([][]roomDayDTO, 7),
	}
	for day, rooms := range week.Days {
		dayDTO := make([]roomDayDTO, 0, len(rooms))
		for _, rd := range sortedRoomDays(rooms) {
			slots := make([]slotDTO, 0, len(rd.Slots))
			for _, s := range rd.Slots {
				slots = append(slots, slotDTO{
					Id:       s.Id,
					Start:    s.StartTime.Format(dateTimeLayout),
					End:      s.EndTime.Format(dateTimeLayout),
					BookedBy: s.BookedBy,
				})
			}
			dayDTO = append(dayDTO, roomDayDTO{RoomId: rd.RoomId, RoomName: rd.RoomName, Slots: slots})
		}
		dto.Days[day] = dayDTO
	}
	return dto
}

func sortedRoomDays(rooms DayBookings) []*RoomDay {
	ids := make([]int, 0, len(rooms))
	for id := range rooms {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	result := make([]*RoomDay, 0, len(ids))
	for _, id := range ids {
		result = append(result, rooms[id])
	}
	return result
}

func formStateToDTO(state FormState) formStateDTO {
	dto := formStateDTO{
		Mode:   string(state.Mode),
		RoomId: state.RoomId,
		SlotId: state.Slot.Id,
	}
	if !state.Start.IsZero() {
		dto.Start = state.Start.Format(dateTimeLayout)
	}
	if !state.End.IsZero() {
		dto.End = state.End.Format(dateTimeLayout)
	}
	return dto
}

func submissionFromDTO(dto submissionDTO) (Submission, error) {
	start, err := time.ParseInLocation(dateTimeLayout, dto.Start, time.Local)
	if err != nil {
		return Submission{}, err
	}
	end, err := time.ParseInLocation(dateTimeLayout, dto.End, time.Local)
	if err != nil {
		return Submission{}, err
	}
	sub := Submission{SlotId: dto.SlotId, RoomId: dto.RoomId, Start: start, End: end}
	if dto.OriginalStart != "" {
		origin, err := time.ParseInLocation(dateTimeLayout, dto.OriginalStart, time.Local)
		if err != nil {
			return Submission{}, err
		}
		sub.Origin = origin
	}
	return sub, nil
}
