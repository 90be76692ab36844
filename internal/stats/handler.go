package stats

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

type statsRequest struct {
	UserID    string `json:"userId"`
	ProjectID string `json:"projectId"`
}

// GetStats handles GET /api/v1/stats?userId=&projectId= and POST with the
// same fields as a JSON body.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	var req statsRequest
	if r.Method == http.MethodGet {
		req.UserID = r.URL.Query().Get("userId")
		req.ProjectID = r.URL.Query().Get("projectId")
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid JSON body"}`, http.StatusBadRequest)
			return
		}
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

	st, err := h.svc.GetStats(r.Context(), userID, projectID)
	if err != nil {
		h.log.Error("get stats", "user_id", userID, "project_id", projectID, "error", err)
		http.Error(w, `{"error":"stats unavailable"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(st)
}
