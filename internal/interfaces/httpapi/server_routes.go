package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/markets", handler.ListMarkets)
	mux.HandleFunc("GET /v1/markets/{marketID}", handler.GetMarket)
	mux.HandleFunc("GET /v1/markets/{marketID}/performance", handler.GetMarketPerformance)
	mux.HandleFunc("GET /v1/leaderboard", handler.GetLeaderboard)
	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/leaderboard", handler.GetLeagueLeaderboard)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/members", handler.ListLeagueMembers)
	mux.HandleFunc("GET /v1/users/{userID}/stats", handler.GetUserStats)
	mux.HandleFunc("GET /v1/users/{userID}/predictions", handler.ListUserPredictions)
	mux.HandleFunc("GET /v1/users/{userID}/achievements", handler.ListUserAchievements)
	mux.HandleFunc("GET /v1/users/{userID}/leagues", handler.ListUserLeagues)
}

// The messaging front-end is a trusted collaborator carrying user
// identity in payloads, so mutations are gated on a shared service
// token instead of per-user auth.
func registerServiceRoutes(mux *http.ServeMux, handler *Handler, serviceToken string) {
	mux.Handle("POST /v1/users", RequireServiceToken(serviceToken, http.HandlerFunc(handler.RegisterUser)))
	mux.Handle("POST /v1/predictions", RequireServiceToken(serviceToken, http.HandlerFunc(handler.SubmitPrediction)))
	mux.Handle("POST /v1/leagues", RequireServiceToken(serviceToken, http.HandlerFunc(handler.CreateLeague)))
	mux.Handle("POST /v1/leagues/join", RequireServiceToken(serviceToken, http.HandlerFunc(handler.JoinLeague)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/sync-markets", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncMarketsJob)))
	mux.Handle("POST /v1/internal/jobs/sweep-resolutions", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSweepResolutionsJob)))
	mux.Handle("POST /v1/internal/jobs/reset-weekly", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunResetWeeklyJob)))
	mux.Handle("POST /v1/internal/markets/{marketID}/resolve", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ResolveMarket)))
}
