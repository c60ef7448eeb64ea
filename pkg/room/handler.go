package room

import (
	"encoding/json"
	"net/http"
)

type Handler struct {
	repo Repository
}

type RoomDTO struct {
	RoomId   int    `json:"roomId"`
	RoomName string `json:"roomName"`
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo}
}

// ListRooms returns the room catalog the calendar can display.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.repo.ListRooms(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]RoomDTO, 0, len(rooms))
	for _, room := range rooms {
		dtos = append(dtos, RoomDTO{RoomId: room.Id, RoomName: room.Name})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
