package user

import (
	"encoding/json"
	"net/http"

	"github.com/roombook/roombook/internal/rest"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	sessions *SessionStore
}

func NewHandler(sessions *SessionStore) *Handler {
	return &Handler{sessions}
}

type HandoffRequestDTO struct {
	Uid         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

type HandoffResponseDTO struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type UserDTO struct {
	Uid         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

// Handoff accepts the identity established by the upstream authentication flow
// and opens an in-memory session for it.
func (h *Handler) Handoff(w http.ResponseWriter, r *http.Request) {
	var dto HandoffRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	role := Role(dto.Role)
	if role != RoleStudent && role != RoleStaff {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		if err := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid role",
			Details: "role must be 'student' or 'staff'",
		}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	if dto.DisplayName == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		if err := json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error: "displayName must not be empty",
		}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	u := User{
		Uid:         dto.Uid,
		DisplayName: dto.DisplayName,
		Role:        role,
	}
	token := h.sessions.Handoff(u)
	log.Debugf("opened session for user %s", u.Uid)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(HandoffResponseDTO{
		Token: token,
		User:  userToDTO(u),
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// CurrentUser returns the identity bound to the request's session.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	u, err := CurrentUser(r.Context())
	if err != nil {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(userToDTO(u)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func userToDTO(u User) UserDTO {
	return UserDTO{
		Uid:         u.Uid,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
	}
}
