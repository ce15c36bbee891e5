package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("JWT_TTL", "")
	t.Setenv("CLUB_TIMEZONE", "")
	t.Setenv("MATCH_SWEEP_INTERVAL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StorageDriver != StoragePostgres {
		t.Fatalf("unexpected storage driver: %q", cfg.StorageDriver)
	}
	if cfg.JWTTTL != 168*time.Hour {
		t.Fatalf("unexpected jwt ttl: %s", cfg.JWTTTL)
	}
	if cfg.ClubLocation != time.UTC {
		t.Fatalf("unexpected club location: %s", cfg.ClubLocation)
	}
	if cfg.MatchSweepInterval != 5*time.Minute {
		t.Fatalf("unexpected sweep interval: %s", cfg.MatchSweepInterval)
	}
	if cfg.JWTSecret == "" {
		t.Fatalf("expected dev jwt secret fallback")
	}
	if cfg.IsProd() {
		t.Fatalf("expected dev config")
	}
}

func TestLoad_ProdRequiresJWTSecret(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when JWT_SECRET is missing in prod")
	}
}

func TestLoad_StorageDriverValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("memory accepted", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", " Memory ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.StorageDriver != StorageMemory {
			t.Fatalf("unexpected storage driver: %q", cfg.StorageDriver)
		}
	})

	t.Run("unknown rejected", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "mongo")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown STORAGE_DRIVER")
		}
	})
}

func TestLoad_ClubTimezone(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("named zone", func(t *testing.T) {
		t.Setenv("CLUB_TIMEZONE", "Asia/Jakarta")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.ClubLocation.String() != "Asia/Jakarta" {
			t.Fatalf("unexpected location: %s", cfg.ClubLocation)
		}
	})

	t.Run("invalid zone", func(t *testing.T) {
		t.Setenv("CLUB_TIMEZONE", "Mars/Olympus")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CLUB_TIMEZONE")
		}
	})
}

func TestLoad_AdminCredentialsMustBePaired(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("ADMIN_EMAIL", "admin@club.test")
	t.Setenv("ADMIN_PASSWORD", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when ADMIN_PASSWORD is missing")
	}
}

func TestLoad_BcryptCostRange(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("BCRYPT_COST", "2")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for BCRYPT_COST below range")
	}
}

func TestLoad_AvatarS3RequiresBucketWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("AVATAR_S3_ENABLED", "true")
	t.Setenv("AVATAR_S3_BUCKET", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when AVATAR_S3_ENABLED=true without AVATAR_S3_BUCKET")
	}
}

func TestLoad_AvatarCircuitParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("AVATAR_CIRCUIT_FAILURE_COUNT", "3")
	t.Setenv("AVATAR_CIRCUIT_OPEN_TIMEOUT", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.AvatarCircuit.Name != "avatar-store" {
		t.Fatalf("unexpected avatar circuit name: %q", cfg.AvatarCircuit.Name)
	}
	if !cfg.AvatarCircuit.Enabled || cfg.AvatarCircuit.FailureThreshold != 3 {
		t.Fatalf("unexpected avatar circuit: %+v", cfg.AvatarCircuit)
	}
	if cfg.AvatarCircuit.OpenTimeout != 30*time.Second {
		t.Fatalf("unexpected open timeout: %s", cfg.AvatarCircuit.OpenTimeout)
	}

	t.Run("zero failure count", func(t *testing.T) {
		t.Setenv("AVATAR_CIRCUIT_FAILURE_COUNT", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for AVATAR_CIRCUIT_FAILURE_COUNT=0")
		}
	})
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}

	t.Run("dsn from otlp headers", func(t *testing.T) {
		t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `uptrace-dsn="https://token@api.uptrace.dev/1"`)
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.UptraceDSN != "https://token@api.uptrace.dev/1" {
			t.Fatalf("unexpected dsn: %q", cfg.UptraceDSN)
		}
	})
}

func TestLoad_CacheConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CACHE_ENABLED", "")
		t.Setenv("CACHE_TTL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.CacheEnabled {
			t.Fatalf("expected cache enabled by default")
		}
		if cfg.CacheTTL != 60*time.Second {
			t.Fatalf("unexpected default cache ttl: %s", cfg.CacheTTL)
		}
	})

	t.Run("invalid ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "bad")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid CACHE_TTL")
		}
	})
}

func TestLoad_CORSOriginsParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://club.example.com, http://localhost:5173 ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
		t.Fatalf("unexpected CORS origins: %+v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("CLUB_DOTENV_PROBE=from-file\nAPP_SERVICE_NAME=should-not-win\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("APP_SERVICE_NAME", "from-env")
	t.Setenv("CLUB_DOTENV_PROBE", "")
	os.Unsetenv("CLUB_DOTENV_PROBE")
	t.Cleanup(func() { os.Unsetenv("CLUB_DOTENV_PROBE") })

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("CLUB_DOTENV_PROBE"); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if got := os.Getenv("APP_SERVICE_NAME"); got != "from-env" {
		t.Fatalf("expected existing env to win, got %q", got)
	}
}
