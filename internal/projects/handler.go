package projects

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

type Handler struct {
	svc Service
	log *slog.Logger
}

func NewHandler(svc Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, log: log}
}

type joinRequest struct {
	UserID    string `json:"userId"`
	ProjectID string `json:"projectId"`
}

type joinResponse struct {
	Success     bool   `json:"success"`
	Created     bool   `json:"created"`
	TotalPoints int    `json:"totalPoints"`
	Level       int    `json:"level"`
	Message     string `json:"message"`
}

// Join handles POST /api/v1/projects/join.
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		http.Error(w, `{"error":"userId must be a UUID"}`, http.StatusBadRequest)
		return
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		http.Error(w, `{"error":"projectId must be a UUID"}`, http.StatusBadRequest)
		return
	}

	result, err := h.svc.Join(r.Context(), userID, projectID)
	if err != nil {
		h.log.Error("join project", "user_id", userID, "project_id", projectID, "error", err)
		http.Error(w, `{"error":"could not join project"}`, http.StatusInternalServerError)
		return
	}

	msg := "Already a member of this project."
	if result.Created {
		msg = "Welcome! Your welcome bonus has been credited."
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(joinResponse{
		Success:     true,
		Created:     result.Created,
		TotalPoints: result.TotalPoints,
		Level:       result.Level,
		Message:     msg,
	})
}
