package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerAuthRoutes(mux *http.ServeMux, handler *Handler, resolver SessionResolver) {
	mux.HandleFunc("POST /v1/auth/signup", handler.SignUp)
	mux.HandleFunc("POST /v1/auth/signin", handler.SignIn)
	mux.Handle("POST /v1/auth/signout", RequireSession(resolver, http.HandlerFunc(handler.SignOut)))
	mux.Handle("GET /v1/auth/session", RequireSession(resolver, http.HandlerFunc(handler.GetSession)))
}

func registerTeamRoutes(mux *http.ServeMux, handler *Handler, resolver SessionResolver) {
	mux.Handle("GET /v1/dashboard", RequireSession(resolver, http.HandlerFunc(handler.GetDashboard)))
	mux.Handle("GET /v1/teams", RequireSession(resolver, http.HandlerFunc(handler.ListTeams)))
	mux.Handle("POST /v1/teams", RequireSession(resolver, http.HandlerFunc(handler.CreateTeam)))
	mux.Handle("GET /v1/teams/{teamID}", RequireSession(resolver, http.HandlerFunc(handler.GetTeamRoster)))
	mux.Handle("GET /v1/teams/{teamID}/players", RequireSession(resolver, http.HandlerFunc(handler.ListPlayers)))
	mux.Handle("POST /v1/teams/{teamID}/players", RequireSession(resolver, http.HandlerFunc(handler.AddPlayer)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/refresh-snapshots", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRefreshSnapshotsJob)))
}
