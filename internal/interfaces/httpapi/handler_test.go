package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"golang.org/x/crypto/bcrypt"

	"github.com/riskibarqy/tennis-club/internal/domain/challenge"
	"github.com/riskibarqy/tennis-club/internal/domain/match"
	"github.com/riskibarqy/tennis-club/internal/infrastructure/auth/jwt"
	"github.com/riskibarqy/tennis-club/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/tennis-club/internal/platform/logging"
	"github.com/riskibarqy/tennis-club/internal/platform/password"
	"github.com/riskibarqy/tennis-club/internal/usecase"
)

const (
	testAdminEmail    = "admin@club.test"
	testAdminPassword = "admin-secret"
)

type testServer struct {
	router     http.Handler
	challenges *memory.ChallengeRepository
	matches    *memory.MatchRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewStore()
	members := memory.NewMemberRepository(store)
	challenges := memory.NewChallengeRepository(store)
	matches := memory.NewMatchRepository(store)

	tokens, err := jwt.NewManager("test-secret", "tennis-club-test", time.Hour)
	if err != nil {
		t.Fatalf("new jwt manager: %v", err)
	}
	logger := logging.NewNop()
	rollups := usecase.NewRollups(time.Minute)

	authSvc := usecase.NewAuthService(members, password.NewHasher(bcrypt.MinCost), tokens, rollups, logger)
	if _, err := authSvc.EnsureAdmin(context.Background(), testAdminEmail, testAdminPassword); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}

	handler := NewHandler(
		authSvc,
		usecase.NewMemberService(members, matches, nil, 1<<20, rollups, logger),
		usecase.NewChallengeService(challenges, members, time.UTC, logger),
		usecase.NewMatchService(matches, challenges, members, logger),
		usecase.NewAnalyticsService(members, matches, rollups, time.UTC, logger),
		1<<20,
		logger,
	)

	return &testServer{
		router:     NewRouter(handler, authSvc, logger, RouterOptions{CORSAllowedOrigins: []string{"*"}}),
		challenges: challenges,
		matches:    matches,
	}
}

type envelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
	Error   *struct {
		Code   int    `json:"code"`
		Status string `json:"status"`
	} `json:"error"`
}

type listEnvelope struct {
	Success bool             `json:"success"`
	Data    []map[string]any `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = sonic.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var out envelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal response %q: %v", rec.Body.String(), err)
	}
	return out
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()

	var out listEnvelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal response %q: %v", rec.Body.String(), err)
	}
	return out.Data
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func (s *testServer) register(t *testing.T, userName string, utr float64) (int64, string) {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/v1/auth/register", "", map[string]any{
		"first_name": "Player",
		"last_name":  userName,
		"user_name":  userName,
		"email":      userName + "@club.test",
		"password":   "secret1",
		"age":        30,
		"gender":     "male",
		"utr":        utr,
	})
	expectStatus(t, rec, http.StatusCreated)

	body := decodeEnvelope(t, rec)
	member := body.Data["member"].(map[string]any)
	return int64(member["id"].(float64)), body.Data["token"].(string)
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/v1/auth/login", "", map[string]any{
		"email":    testAdminEmail,
		"password": testAdminPassword,
	})
	expectStatus(t, rec, http.StatusOK)
	return decodeEnvelope(t, rec).Data["token"].(string)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	expectStatus(t, rec, http.StatusOK)
}

func TestAuth_RegisterLoginMe(t *testing.T) {
	s := newTestServer(t)
	id, token := s.register(t, "alice", 5.0)

	rec := s.do(t, http.MethodGet, "/v1/auth/me", token, nil)
	expectStatus(t, rec, http.StatusOK)
	me := decodeEnvelope(t, rec)
	if int64(me.Data["id"].(float64)) != id || me.Data["user_name"] != "alice" {
		t.Fatalf("unexpected me payload: %v", me.Data)
	}
	if _, leaked := me.Data["password_hash"]; leaked {
		t.Fatalf("password hash must not be serialized")
	}

	rec = s.do(t, http.MethodPost, "/v1/auth/login", "", map[string]any{"email": "alice@club.test", "password": "wrong-pass"})
	expectStatus(t, rec, http.StatusUnauthorized)
	if body := decodeEnvelope(t, rec); body.Success || body.Error.Status != "UNAUTHENTICATED" {
		t.Fatalf("unexpected login failure body: %+v", body)
	}
}

func TestAuth_DuplicateRegistrationConflicts(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice", 5.0)

	rec := s.do(t, http.MethodPost, "/v1/auth/register", "", map[string]any{
		"first_name": "Other",
		"last_name":  "Alice",
		"user_name":  "alice",
		"email":      "other@club.test",
		"password":   "secret1",
		"age":        30,
		"gender":     "female",
		"utr":        4.0,
	})
	expectStatus(t, rec, http.StatusConflict)
	if got := decodeEnvelope(t, rec).Error.Status; got != "ABORTED" {
		t.Fatalf("expected ABORTED, got %q", got)
	}
}

func TestAuth_RejectsUnknownFields(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/v1/auth/login", "", map[string]any{
		"email":    "alice@club.test",
		"password": "secret1",
		"remember": true,
	})
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestRoutes_RequireToken(t *testing.T) {
	s := newTestServer(t)
	paths := []string{"/v1/members", "/v1/challenges/me", "/v1/matches", "/v1/auth/me"}
	for _, path := range paths {
		rec := s.do(t, http.MethodGet, path, "", nil)
		expectStatus(t, rec, http.StatusUnauthorized)
	}

	rec := s.do(t, http.MethodGet, "/v1/members", "not-a-jwt", nil)
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestRoutes_AdminOnly(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register(t, "alice", 5.0)

	adminPaths := []struct{ method, path string }{
		{http.MethodGet, "/v1/members/analytics/stats"},
		{http.MethodGet, "/v1/matches/stats"},
		{http.MethodGet, "/v1/matches/finished"},
		{http.MethodGet, "/v1/challenges"},
		{http.MethodGet, "/v1/challenges/accepted"},
		{http.MethodPut, "/v1/matches/update-status"},
		{http.MethodGet, "/v1/admin/overview"},
	}
	for _, p := range adminPaths {
		rec := s.do(t, p.method, p.path, token, nil)
		expectStatus(t, rec, http.StatusForbidden)
		if got := decodeEnvelope(t, rec).Error.Status; got != "PERMISSION_DENIED" {
			t.Fatalf("%s %s: expected PERMISSION_DENIED, got %q", p.method, p.path, got)
		}
	}

	admin := s.adminToken(t)
	for _, p := range adminPaths {
		rec := s.do(t, p.method, p.path, admin, nil)
		expectStatus(t, rec, http.StatusOK)
	}
}

func TestChallengeFlow(t *testing.T) {
	s := newTestServer(t)
	aliceID, alice := s.register(t, "alice", 5.0)
	bobID, bob := s.register(t, "bob", 6.0)
	matchAt := time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339)

	rec := s.do(t, http.MethodPost, "/v1/challenges", alice, map[string]any{
		"challenged_id": bobID,
		"match_at":      matchAt,
		"notes":         "friendly",
	})
	expectStatus(t, rec, http.StatusCreated)
	created := decodeEnvelope(t, rec).Data
	if created["state"] != string(challenge.StateWaiting) {
		t.Fatalf("expected Waiting challenge, got %v", created["state"])
	}
	challengeID := int64(created["id"].(float64))

	// same pair, same day, reversed direction
	rec = s.do(t, http.MethodPost, "/v1/challenges", bob, map[string]any{
		"challenged_id": aliceID,
		"match_at":      matchAt,
	})
	expectStatus(t, rec, http.StatusConflict)

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/v1/challenges/%d/accept", challengeID), alice, nil)
	expectStatus(t, rec, http.StatusForbidden)

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/v1/challenges/%d/accept", challengeID), bob, nil)
	expectStatus(t, rec, http.StatusOK)
	accepted := decodeEnvelope(t, rec).Data
	matchID := int64(accepted["match_id"].(float64))

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/v1/challenges/%d/reject", challengeID), bob, nil)
	expectStatus(t, rec, http.StatusConflict)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/v1/matches/%d", matchID), alice, nil)
	expectStatus(t, rec, http.StatusOK)
	m := decodeEnvelope(t, rec).Data
	if m["status"] != string(match.StatusPending) {
		t.Fatalf("expected pending match, got %v", m["status"])
	}
	if int64(m["player1"].(map[string]any)["id"].(float64)) != aliceID {
		t.Fatalf("expected challenger as player1, got %v", m["player1"])
	}

	rec = s.do(t, http.MethodGet, "/v1/challenges/me", bob, nil)
	expectStatus(t, rec, http.StatusOK)
	mine := decodeEnvelope(t, rec).Data
	if received := mine["received"].([]any); len(received) != 0 {
		t.Fatalf("expected no waiting challenges for bob, got %d", len(received))
	}

	admin := s.adminToken(t)
	rec = s.do(t, http.MethodPut, fmt.Sprintf("/v1/matches/%d/grade", matchID), admin, map[string]any{
		"set1": map[string]int{"player1": 6, "player2": 2},
	})
	expectStatus(t, rec, http.StatusConflict)
}

func TestMatchGradingFlow(t *testing.T) {
	s := newTestServer(t)
	aliceID, alice := s.register(t, "alice", 5.0)
	bobID, _ := s.register(t, "bob", 6.0)
	admin := s.adminToken(t)
	ctx := context.Background()

	past := time.Now().UTC().Add(-2 * time.Hour)
	source, err := s.challenges.Create(ctx, challenge.Challenge{
		ChallengerID: aliceID,
		ChallengedID: bobID,
		MatchAt:      past,
		MatchDay:     challenge.CalendarDay(past, time.UTC),
		State:        challenge.StateWaiting,
	})
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	pending, ok, err := s.challenges.TransitionWithMatch(ctx, source.ID, challenge.StateWaiting, challenge.StateAccepted,
		match.Scheduled(source.ID, aliceID, bobID, past, past))
	if err != nil || !ok {
		t.Fatalf("accept challenge: ok=%v err=%v", ok, err)
	}

	for i, want := range []float64{1, 0} {
		rec := s.do(t, http.MethodPut, "/v1/matches/update-status", admin, nil)
		expectStatus(t, rec, http.StatusOK)
		if got := decodeEnvelope(t, rec).Data["updated"]; got != want {
			t.Fatalf("sweep %d: expected %v updated, got %v", i, want, got)
		}
	}

	rec := s.do(t, http.MethodGet, "/v1/matches/finished", admin, nil)
	expectStatus(t, rec, http.StatusOK)
	if items := decodeList(t, rec); len(items) != 1 {
		t.Fatalf("expected 1 finished match, got %d", len(items))
	}

	gradePath := fmt.Sprintf("/v1/matches/%d/grade", pending.ID)
	rec = s.do(t, http.MethodPut, gradePath, admin, map[string]any{
		"set1": map[string]int{"player1": 6, "player2": 6},
	})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = s.do(t, http.MethodPut, gradePath, alice, map[string]any{
		"set1": map[string]int{"player1": 6, "player2": 2},
	})
	expectStatus(t, rec, http.StatusForbidden)

	rec = s.do(t, http.MethodPut, gradePath, admin, map[string]any{
		"set1": map[string]int{"player1": 6, "player2": 2},
	})
	expectStatus(t, rec, http.StatusOK)
	graded := decodeEnvelope(t, rec).Data
	if graded["status"] != string(match.StatusGraded) || int64(graded["winner_id"].(float64)) != aliceID {
		t.Fatalf("unexpected graded match: %v", graded)
	}

	rec = s.do(t, http.MethodPut, gradePath, admin, map[string]any{
		"set1": map[string]int{"player1": 6, "player2": 2},
	})
	expectStatus(t, rec, http.StatusConflict)

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/v1/matches/%d", pending.ID), admin, map[string]any{
		"set1": map[string]int{"player1": 4, "player2": 6},
		"set2": map[string]int{"player1": 6, "player2": 3},
		"set3": map[string]int{"player1": 2, "player2": 6},
	})
	expectStatus(t, rec, http.StatusOK)
	if winner := int64(decodeEnvelope(t, rec).Data["winner_id"].(float64)); winner != bobID {
		t.Fatalf("expected bob to win after correction, got %d", winner)
	}

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/v1/members/%d/stats", bobID), alice, nil)
	expectStatus(t, rec, http.StatusOK)
	stats := decodeEnvelope(t, rec).Data
	if stats["wins"] != float64(1) || stats["losses"] != float64(0) {
		t.Fatalf("unexpected stats: %v", stats)
	}

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/v1/matches/member/%d?status=history&result=loss", aliceID), alice, nil)
	expectStatus(t, rec, http.StatusOK)
	if items := decodeList(t, rec); len(items) != 1 {
		t.Fatalf("expected 1 lost match for alice, got %d", len(items))
	}
}

func TestMatchScores_RejectHalfFilledSets(t *testing.T) {
	s := newTestServer(t)
	aliceID, _ := s.register(t, "alice", 5.0)
	bobID, _ := s.register(t, "bob", 6.0)
	admin := s.adminToken(t)
	ctx := context.Background()

	past := time.Now().UTC().Add(-2 * time.Hour)
	source, err := s.challenges.Create(ctx, challenge.Challenge{
		ChallengerID: aliceID,
		ChallengedID: bobID,
		MatchAt:      past,
		MatchDay:     challenge.CalendarDay(past, time.UTC),
		State:        challenge.StateWaiting,
	})
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	pending, ok, err := s.challenges.TransitionWithMatch(ctx, source.ID, challenge.StateWaiting, challenge.StateAccepted,
		match.Scheduled(source.ID, aliceID, bobID, past, past))
	if err != nil || !ok {
		t.Fatalf("accept challenge: ok=%v err=%v", ok, err)
	}
	expectStatus(t, s.do(t, http.MethodPut, "/v1/matches/update-status", admin, nil), http.StatusOK)

	bodies := map[string]map[string]any{
		"set1 missing player2": {
			"set1": map[string]int{"player1": 6},
		},
		"set1 missing player1": {
			"set1": map[string]int{"player2": 3},
		},
		"set2 missing player2": {
			"set1": map[string]int{"player1": 6, "player2": 2},
			"set2": map[string]int{"player1": 6},
		},
		"set2 empty": {
			"set1": map[string]int{"player1": 6, "player2": 2},
			"set2": map[string]int{},
		},
	}
	paths := map[string]string{
		"grade":  fmt.Sprintf("/v1/matches/%d/grade", pending.ID),
		"scores": fmt.Sprintf("/v1/matches/%d", pending.ID),
	}

	for route, path := range paths {
		for name, body := range bodies {
			rec := s.do(t, http.MethodPut, path, admin, body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("%s %s: expected 400, got %d: %s", route, name, rec.Code, rec.Body.String())
			}
		}
	}

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/v1/matches/%d", pending.ID), admin, nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decodeEnvelope(t, rec).Data["status"]; got != string(match.StatusFinished) {
		t.Fatalf("expected match to stay finished, got %v", got)
	}

	rec = s.do(t, http.MethodPut, paths["grade"], admin, map[string]any{
		"set1": map[string]int{"player1": 0, "player2": 6},
	})
	expectStatus(t, rec, http.StatusOK)
	if winner := int64(decodeEnvelope(t, rec).Data["winner_id"].(float64)); winner != bobID {
		t.Fatalf("expected an explicit zero to grade bob the winner, got %d", winner)
	}
}

func TestMembers_ListRecommendAndTop(t *testing.T) {
	s := newTestServer(t)
	_, alice := s.register(t, "alice", 7.0)
	s.register(t, "bob", 6.0)
	s.register(t, "carol", 8.5)
	s.register(t, "dave", 9.0)

	rec := s.do(t, http.MethodGet, "/v1/members?exclude_admins=true&limit=2&page=2", alice, nil)
	expectStatus(t, rec, http.StatusOK)
	page := decodeEnvelope(t, rec).Data
	if page["total"] != float64(4) || page["total_pages"] != float64(2) || len(page["items"].([]any)) != 2 {
		t.Fatalf("unexpected page: %v", page)
	}

	rec = s.do(t, http.MethodGet, "/v1/members?min_utr=abc", alice, nil)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = s.do(t, http.MethodGet, "/v1/members/2/challengers", alice, nil)
	expectStatus(t, rec, http.StatusOK)
	candidates := decodeList(t, rec)
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates within 1.5, got %d", len(candidates))
	}
	first := candidates[0]["member"].(map[string]any)
	if first["user_name"] != "bob" {
		t.Fatalf("expected closest candidate bob, got %v", first["user_name"])
	}

	rec = s.do(t, http.MethodGet, "/v1/members/top?limit=1", alice, nil)
	expectStatus(t, rec, http.StatusOK)
	top := decodeList(t, rec)
	if len(top) != 1 || top[0]["user_name"] != "dave" {
		t.Fatalf("unexpected top players: %v", top)
	}

	rec = s.do(t, http.MethodGet, "/v1/members/999", alice, nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestMembers_UpdateAndDelete(t *testing.T) {
	s := newTestServer(t)
	aliceID, alice := s.register(t, "alice", 5.0)
	bobID, _ := s.register(t, "bob", 6.0)
	admin := s.adminToken(t)

	rec := s.do(t, http.MethodPut, fmt.Sprintf("/v1/members/%d", aliceID), alice, map[string]any{"phone": "555-0100"})
	expectStatus(t, rec, http.StatusOK)
	if got := decodeEnvelope(t, rec).Data["phone"]; got != "555-0100" {
		t.Fatalf("expected phone update, got %v", got)
	}

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/v1/members/%d", aliceID), alice, map[string]any{"utr": 9.5})
	expectStatus(t, rec, http.StatusForbidden)

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/v1/members/%d", bobID), alice, map[string]any{"phone": "1"})
	expectStatus(t, rec, http.StatusForbidden)

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/v1/members/%d", aliceID), admin, map[string]any{"utr": 9.5})
	expectStatus(t, rec, http.StatusOK)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/v1/members/%d", bobID), alice, nil)
	expectStatus(t, rec, http.StatusForbidden)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/v1/members/%d", bobID), admin, nil)
	expectStatus(t, rec, http.StatusOK)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/v1/members/%d", bobID), alice, nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestMembers_AvatarUploadWithoutStoreIsUnavailable(t *testing.T) {
	s := newTestServer(t)
	aliceID, alice := s.register(t, "alice", 5.0)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="avatar"; filename="me.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write([]byte("\x89PNG fake"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/v1/members/%d/avatar", aliceID), &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+alice)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	expectStatus(t, rec, http.StatusServiceUnavailable)
	if got := decodeEnvelope(t, rec).Error.Status; got != "UNAVAILABLE" {
		t.Fatalf("expected UNAVAILABLE, got %q", got)
	}
}

func TestAnalytics_MatchStatsPeriod(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminToken(t)

	rec := s.do(t, http.MethodGet, "/v1/matches/stats?period=7", admin, nil)
	expectStatus(t, rec, http.StatusOK)
	stats := decodeEnvelope(t, rec).Data
	if stats["period"] != "week" || len(stats["daily"].([]any)) != 7 {
		t.Fatalf("unexpected weekly stats: %v", stats)
	}

	rec = s.do(t, http.MethodGet, "/v1/matches/stats?period=fortnight", admin, nil)
	expectStatus(t, rec, http.StatusBadRequest)
}
