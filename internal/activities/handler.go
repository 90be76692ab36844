package activities

import (
	"encoding/json"
	"errors"
	"fmt"
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

type completeRequest struct {
	UserID     string `json:"userId"`
	ActivityID string `json:"activityId"`
	ProjectID  string `json:"projectId"`
}

type completeResponse struct {
	Success        bool   `json:"success"`
	PointsEarned   int    `json:"pointsEarned"`
	ActivityName   string `json:"activityName"`
	NewTotalPoints int    `json:"newTotalPoints"`
	Message        string `json:"message"`
}

type failureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Complete handles POST /api/v1/activities/complete.
// Business rejections (already completed, already checked in today) are 200s
// with success=false; only malformed input and store failures are 4xx/5xx.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, failureResponse{Error: "InvalidInput", Message: "invalid JSON body"})
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, failureResponse{Error: "InvalidInput", Message: "userId must be a UUID"})
		return
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, failureResponse{Error: "InvalidInput", Message: "projectId must be a UUID"})
		return
	}
	if req.ActivityID == "" {
		writeJSON(w, http.StatusBadRequest, failureResponse{Error: "InvalidInput", Message: "activityId is required"})
		return
	}

	result, err := h.svc.Complete(r.Context(), userID, projectID, req.ActivityID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidActivity):
			writeJSON(w, http.StatusOK, failureResponse{Error: "InvalidActivity", Message: "unknown or inactive activity"})
		case errors.Is(err, ErrAlreadyCompleted):
			writeJSON(w, http.StatusOK, failureResponse{Error: "AlreadyCompleted", Message: "you have already completed this activity"})
		case errors.Is(err, ErrAlreadyCheckedInToday):
			writeJSON(w, http.StatusOK, failureResponse{Error: "AlreadyCheckedInToday", Message: "you have already checked in today"})
		default:
			h.log.Error("complete activity", "user_id", userID, "activity_id", req.ActivityID, "error", err)
			writeJSON(w, http.StatusInternalServerError, failureResponse{Error: "PersistenceError", Message: "could not record the activity, try again later"})
		}
		return
	}

	writeJSON(w, http.StatusOK, completeResponse{
		Success:        true,
		PointsEarned:   result.PointsEarned,
		ActivityName:   result.ActivityName,
		NewTotalPoints: result.NewProjectBalance,
		Message:        fmt.Sprintf("Congratulations! You completed %q and earned %d points!", result.ActivityName, result.PointsEarned),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
