package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerAuthRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.HandleFunc("POST /v1/auth/register", handler.Register)
	mux.HandleFunc("POST /v1/auth/login", handler.Login)
	mux.Handle("GET /v1/auth/me", RequireAuth(verifier, http.HandlerFunc(handler.Me)))
}

func registerMemberRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/members", RequireAuth(verifier, http.HandlerFunc(handler.ListMembers)))
	mux.Handle("GET /v1/members/top", RequireAuth(verifier, http.HandlerFunc(handler.ListTopPlayers)))
	mux.Handle("GET /v1/members/active", RequireAuth(verifier, http.HandlerFunc(handler.ListMostActive)))
	mux.Handle("GET /v1/members/analytics/stats", RequireAdmin(verifier, http.HandlerFunc(handler.GetMemberAnalytics)))
	mux.Handle("GET /v1/members/{memberID}", RequireAuth(verifier, http.HandlerFunc(handler.GetMember)))
	mux.Handle("GET /v1/members/{memberID}/stats", RequireAuth(verifier, http.HandlerFunc(handler.GetMemberStats)))
	mux.Handle("GET /v1/members/{memberID}/challengers", RequireAuth(verifier, http.HandlerFunc(handler.RecommendChallengers)))
	// Self-or-admin checks happen in the member service.
	mux.Handle("PUT /v1/members/{memberID}", RequireAuth(verifier, http.HandlerFunc(handler.UpdateMember)))
	mux.Handle("PUT /v1/members/{memberID}/avatar", RequireAuth(verifier, http.HandlerFunc(handler.UploadAvatar)))
	mux.Handle("DELETE /v1/members/{memberID}", RequireAdmin(verifier, http.HandlerFunc(handler.DeleteMember)))
}

func registerChallengeRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/challenges", RequireAdmin(verifier, http.HandlerFunc(handler.ListChallenges)))
	mux.Handle("GET /v1/challenges/accepted", RequireAdmin(verifier, http.HandlerFunc(handler.ListAcceptedChallenges)))
	mux.Handle("GET /v1/challenges/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyChallenges)))
	mux.Handle("POST /v1/challenges", RequireAuth(verifier, http.HandlerFunc(handler.CreateChallenge)))
	mux.Handle("PUT /v1/challenges/{challengeID}/accept", RequireAuth(verifier, http.HandlerFunc(handler.AcceptChallenge)))
	mux.Handle("PUT /v1/challenges/{challengeID}/reject", RequireAuth(verifier, http.HandlerFunc(handler.RejectChallenge)))
}

func registerMatchRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/matches", RequireAuth(verifier, http.HandlerFunc(handler.ListMatches)))
	mux.Handle("GET /v1/matches/stats", RequireAdmin(verifier, http.HandlerFunc(handler.GetMatchStats)))
	mux.Handle("GET /v1/matches/finished", RequireAdmin(verifier, http.HandlerFunc(handler.ListFinishedMatches)))
	mux.Handle("GET /v1/matches/member/{memberID}", RequireAuth(verifier, http.HandlerFunc(handler.ListMemberMatches)))
	mux.Handle("GET /v1/matches/{matchID}", RequireAuth(verifier, http.HandlerFunc(handler.GetMatch)))
	mux.Handle("POST /v1/matches", RequireAdmin(verifier, http.HandlerFunc(handler.RecordMatch)))
	mux.Handle("PUT /v1/matches/update-status", RequireAdmin(verifier, http.HandlerFunc(handler.UpdateMatchStatuses)))
	mux.Handle("PUT /v1/matches/{matchID}/grade", RequireAdmin(verifier, http.HandlerFunc(handler.GradeMatch)))
	mux.Handle("PUT /v1/matches/{matchID}", RequireAdmin(verifier, http.HandlerFunc(handler.UpdateMatchScores)))
	mux.Handle("DELETE /v1/matches/{matchID}", RequireAdmin(verifier, http.HandlerFunc(handler.DeleteMatch)))
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/admin/overview", RequireAdmin(verifier, http.HandlerFunc(handler.GetOverview)))
}
