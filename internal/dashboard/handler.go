package dashboard

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/loyaltyhub/backend/internal/ledger"
	"github.com/loyaltyhub/backend/internal/middleware"
	"github.com/loyaltyhub/backend/internal/models"
)

// UserStore is the user-profile read the handler needs.
type UserStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Handler serves the authenticated member dashboard reads. All routes sit
// behind middleware.RequireUser.
type Handler struct {
	users  UserStore
	ledger ledger.Service
	log    *slog.Logger
}

func NewHandler(users UserStore, ledgerSvc ledger.Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{users: users, ledger: ledgerSvc, log: log}
}

// GetMe handles GET /api/v1/me.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())
	if userID == uuid.Nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	u, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		h.log.Error("get user", "user_id", userID, "error", err)
		http.Error(w, `{"error":"user not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// ListTransactions handles GET /api/v1/me/transactions?projectId=.
// Without projectId it returns the ledger across all projects.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())
	if userID == uuid.Nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var projectID *uuid.UUID
	if raw := r.URL.Query().Get("projectId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, `{"error":"projectId must be a UUID"}`, http.StatusBadRequest)
			return
		}
		projectID = &id
	}
	list, err := h.ledger.History(r.Context(), userID, projectID)
	if err != nil {
		h.log.Error("list transactions", "user_id", userID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*models.PointTransaction{}
	}
	writeJSON(w, http.StatusOK, list)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
