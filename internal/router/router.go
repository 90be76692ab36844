package router

import (
	"net/http"

	"github.com/loyaltyhub/backend/internal/activities"
	"github.com/loyaltyhub/backend/internal/auth"
	"github.com/loyaltyhub/backend/internal/dashboard"
	"github.com/loyaltyhub/backend/internal/middleware"
	"github.com/loyaltyhub/backend/internal/projects"
	"github.com/loyaltyhub/backend/internal/rewards"
	"github.com/loyaltyhub/backend/internal/stats"
)

// New returns an http.Handler that serves the API under /api/v1.
// The three core loyalty operations are called by the external UI
// collaborators with ids in the body, like the edge functions they replace;
// the /me dashboard reads require a Bearer JWT.
func New(
	authSvc auth.Service,
	authHandler *auth.Handler,
	activityHandler *activities.Handler,
	rewardHandler *rewards.Handler,
	statsHandler *stats.Handler,
	projectHandler *projects.Handler,
	dashHandler *dashboard.Handler,
) http.Handler {
	mux := http.NewServeMux()
	base := "/api/v1"

	mux.HandleFunc(base+"/auth/register", authHandler.Register)
	mux.HandleFunc(base+"/auth/login", authHandler.Login)

	mux.HandleFunc(base+"/activities/complete", methodPOST(activityHandler.Complete))
	mux.HandleFunc(base+"/rewards/redeem", methodPOST(rewardHandler.Redeem))
	mux.HandleFunc(base+"/projects/join", methodPOST(projectHandler.Join))

	// Stats is a pure read but also accepts POST bodies for parity with the
	// legacy callers.
	mux.HandleFunc(base+"/stats", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		statsHandler.GetStats(w, r)
	})

	authed := middleware.RequireUser(authSvc)
	mux.Handle(base+"/me", authed(methodGET(dashHandler.GetMe)))
	mux.Handle(base+"/me/transactions", authed(methodGET(dashHandler.ListTransactions)))

	return mux
}

func methodGET(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func methodPOST(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}
