package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/riskibarqy/tennis-club/internal/config"
	"github.com/riskibarqy/tennis-club/internal/devseed"
	"github.com/riskibarqy/tennis-club/internal/domain/challenge"
	"github.com/riskibarqy/tennis-club/internal/domain/match"
	"github.com/riskibarqy/tennis-club/internal/domain/member"
	"github.com/riskibarqy/tennis-club/internal/infrastructure/auth/jwt"
	"github.com/riskibarqy/tennis-club/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/tennis-club/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/tennis-club/internal/infrastructure/scheduler"
	"github.com/riskibarqy/tennis-club/internal/infrastructure/storage/s3"
	"github.com/riskibarqy/tennis-club/internal/interfaces/httpapi"
	"github.com/riskibarqy/tennis-club/internal/platform/logging"
	"github.com/riskibarqy/tennis-club/internal/platform/password"
	"github.com/riskibarqy/tennis-club/internal/usecase"
)

// App owns the HTTP server and every resource it depends on.
type App struct {
	Server  *http.Server
	sweeper *scheduler.Sweeper
	closers []func() error
	logger  *logging.Logger
}

type repositories struct {
	members    member.Repository
	challenges challenge.Repository
	matches    match.Repository
}

func (r repositories) seed() devseed.Repositories {
	return devseed.Repositories{Members: r.members, Challenges: r.challenges, Matches: r.matches}
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	repos, closeStorage, err := openRepositories(cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &App{logger: logger, closers: []func() error{closeStorage}}

	var rollups *usecase.Rollups
	if cfg.CacheEnabled {
		rollups = usecase.NewRollups(cfg.CacheTTL)
	}
	hasher := password.NewHasher(cfg.BcryptCost)
	tokens, err := jwt.NewManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("build token manager: %w", err)
	}
	avatars, err := newAvatarStore(ctx, cfg, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	authSvc := usecase.NewAuthService(repos.members, hasher, tokens, rollups, logger)
	memberSvc := usecase.NewMemberService(repos.members, repos.matches, avatars, cfg.AvatarMaxBytes, rollups, logger)
	challengeSvc := usecase.NewChallengeService(repos.challenges, repos.members, cfg.ClubLocation, logger)
	matchSvc := usecase.NewMatchService(repos.matches, repos.challenges, repos.members, logger)
	analyticsSvc := usecase.NewAnalyticsService(repos.members, repos.matches, rollups, cfg.ClubLocation, logger)

	if _, err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}
	if cfg.SeedSampleData && cfg.StorageDriver == config.StorageMemory {
		if _, err := devseed.NewSeeder(repos.seed(), hasher, cfg.ClubLocation, logger).Run(ctx); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("seed sample data: %w", err)
		}
	}

	if cfg.MatchSweepEnabled {
		a.sweeper, err = scheduler.NewSweeper(matchSvc, cfg.MatchSweepInterval, logger)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("build match sweeper: %w", err)
		}
		a.closers = append(a.closers, a.sweeper.Shutdown)
	}

	handler := httpapi.NewHandler(authSvc, memberSvc, challengeSvc, matchSvc, analyticsSvc, cfg.AvatarMaxBytes, logger)
	router := httpapi.NewRouter(handler, authSvc, logger, httpapi.RouterOptions{
		ServiceName:        cfg.ServiceName,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ExposeErrorDetail:  !cfg.IsProd(),
	})

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return a, nil
}

// StartBackground starts the periodic match sweep when it is enabled.
func (a *App) StartBackground(ctx context.Context) error {
	if a.sweeper == nil {
		return nil
	}
	if err := a.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("start match sweeper: %w", err)
	}
	return nil
}

// Close releases resources in reverse acquisition order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Seed loads the sample data set into the configured storage.
func Seed(ctx context.Context, cfg config.Config, logger *logging.Logger) (devseed.Summary, error) {
	repos, closeStorage, err := openRepositories(cfg, logger)
	if err != nil {
		return devseed.Summary{}, err
	}
	defer func() { _ = closeStorage() }()

	return devseed.NewSeeder(repos.seed(), password.NewHasher(cfg.BcryptCost), cfg.ClubLocation, logger).Run(ctx)
}

func openRepositories(cfg config.Config, logger *logging.Logger) (repositories, func() error, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return repositories{
			members:    memory.NewMemberRepository(store),
			challenges: memory.NewChallengeRepository(store),
			matches:    memory.NewMatchRepository(store),
		}, func() error { return nil }, nil
	case config.StoragePostgres:
		db, err := openDatabase(cfg)
		if err != nil {
			return repositories{}, nil, err
		}
		logger.Info("postgres storage ready", "db_name", dbNameFromURL(cfg.DBURL))
		return repositories{
			members:    postgres.NewMemberRepository(db),
			challenges: postgres.NewChallengeRepository(db, cfg.ClubLocation),
			matches:    postgres.NewMatchRepository(db),
		}, db.Close, nil
	default:
		return repositories{}, nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

func newAvatarStore(ctx context.Context, cfg config.Config, logger *logging.Logger) (usecase.AvatarStore, error) {
	if !cfg.AvatarS3Enabled {
		return nil, nil
	}
	store, err := s3.NewAvatarStore(ctx, s3.Config{
		Bucket:          cfg.AvatarS3Bucket,
		Region:          cfg.AvatarS3Region,
		Endpoint:        cfg.AvatarS3Endpoint,
		AccessKeyID:     cfg.AvatarS3AccessKeyID,
		SecretAccessKey: cfg.AvatarS3SecretAccessKey,
		PublicBaseURL:   cfg.AvatarPublicBaseURL,
		Circuit:         cfg.AvatarCircuit,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("build avatar store: %w", err)
	}
	return store, nil
}
