package handlers

import (
	"encoding/json"
	"net/http"

	"whiteboard/internal/services"
	"whiteboard/pkg/logger"
)

type RoomHandlers struct {
	roomService *services.RoomService
	verifier    TokenVerifier
}

func NewRoomHandlers(roomService *services.RoomService, verifier TokenVerifier) *RoomHandlers {
	return &RoomHandlers{
		roomService: roomService,
		verifier:    verifier,
	}
}

// GetScene serves GET /rooms/{id}/scene.
func (h *RoomHandlers) GetScene(w http.ResponseWriter, r *http.Request) {
	if _, err := h.verifier.Verify(bearerToken(r)); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	roomID := r.PathValue("id")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"roomId":   roomID,
		"elements": h.roomService.Snapshot(roomID),
	})
}

// GetActiveUsers serves GET /rooms/{id}/active.
func (h *RoomHandlers) GetActiveUsers(w http.ResponseWriter, r *http.Request) {
	if _, err := h.verifier.Verify(bearerToken(r)); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	roomID := r.PathValue("id")
	users := h.roomService.ActiveUsers(roomID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"roomId":       roomID,
		"active_users": users,
		"count":        len(users),
	})
}

func (h *RoomHandlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.roomService.Stats())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding response: %v", err)
	}
}
