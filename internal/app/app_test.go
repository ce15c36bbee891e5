package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/tennis-club/internal/config"
	"github.com/riskibarqy/tennis-club/internal/platform/logging"
)

func memoryConfig() config.Config {
	return config.Config{
		AppEnv:             config.EnvDev,
		ServiceName:        "tennis-club",
		HTTPAddr:           ":0",
		StorageDriver:      config.StorageMemory,
		ClubLocation:       time.UTC,
		JWTSecret:          "test-secret",
		JWTTTL:             time.Hour,
		JWTIssuer:          "tennis-club",
		BcryptCost:         4,
		AdminEmail:         "admin@club.test",
		AdminPassword:      "admin-secret",
		SeedSampleData:     true,
		MatchSweepEnabled:  true,
		MatchSweepInterval: time.Minute,
	}
}

func TestNew_MemoryStorage(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	if err := a.StartBackground(context.Background()); err != nil {
		t.Fatalf("start background: %v", err)
	}

	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", rec.Code)
	}

	body := strings.NewReader(`{"email":"budi@sample.club","password":"tennis123"}`)
	rec = httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/auth/login", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected seeded member to log in, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNew_RejectsUnknownStorageDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.StorageDriver = "mongo"

	if _, err := New(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for unsupported storage driver")
	}
}

func TestNew_RequiresHTTPAddr(t *testing.T) {
	cfg := memoryConfig()
	cfg.HTTPAddr = ""

	if _, err := New(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for empty http addr")
	}
}

func TestSeed_MemoryStorage(t *testing.T) {
	summary, err := Seed(context.Background(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if summary.Members == 0 || summary.Skipped {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
