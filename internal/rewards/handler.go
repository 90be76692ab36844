package rewards

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

type redeemRequest struct {
	UserID    string `json:"userId"`
	RewardID  string `json:"rewardId"`
	ProjectID string `json:"projectId"`
	RequestID string `json:"requestId,omitempty"`
}

type redeemResponse struct {
	Success     bool   `json:"success"`
	PointsSpent int    `json:"pointsSpent"`
	NewBalance  int    `json:"newBalance"`
	Message     string `json:"message"`
}

type failureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Redeem handles POST /api/v1/rewards/redeem.
func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
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
	if req.RewardID == "" {
		writeJSON(w, http.StatusBadRequest, failureResponse{Error: "InvalidInput", Message: "rewardId is required"})
		return
	}
	var requestID *string
	if req.RequestID != "" {
		requestID = &req.RequestID
	}

	result, err := h.svc.Redeem(r.Context(), userID, projectID, req.RewardID, requestID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidReward):
			writeJSON(w, http.StatusBadRequest, failureResponse{Error: "InvalidReward", Message: "unknown or inactive reward"})
		case errors.Is(err, ErrInsufficientPoints):
			writeJSON(w, http.StatusBadRequest, failureResponse{Error: "InsufficientPoints", Message: "not enough points for this reward"})
		case errors.Is(err, ErrOutOfStock):
			writeJSON(w, http.StatusBadRequest, failureResponse{Error: "OutOfStock", Message: "this reward is out of stock"})
		case errors.Is(err, ErrDuplicateRequest):
			writeJSON(w, http.StatusConflict, failureResponse{Error: "DuplicateRequest", Message: "this redemption request was already processed"})
		default:
			h.log.Error("redeem reward", "user_id", userID, "reward_id", req.RewardID, "error", err)
			writeJSON(w, http.StatusInternalServerError, failureResponse{Error: "PersistenceError", Message: "could not redeem the reward, try again later"})
		}
		return
	}

	writeJSON(w, http.StatusOK, redeemResponse{
		Success:     true,
		PointsSpent: result.PointsSpent,
		NewBalance:  result.NewBalance,
		Message:     fmt.Sprintf("Successfully redeemed %s! %d points were deducted.", result.RewardName, result.PointsSpent),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
