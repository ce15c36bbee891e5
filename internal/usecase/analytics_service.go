package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/tennis-club/internal/domain/analytics"
	"github.com/riskibarqy/tennis-club/internal/domain/match"
	"github.com/riskibarqy/tennis-club/internal/domain/member"
	"github.com/riskibarqy/tennis-club/internal/platform/logging"
)

const (
	defaultActiveLimit = 5
	maxActiveLimit     = 50
	defaultActiveDays  = 30
	maxActiveDays      = 365
)

type ActiveMember struct {
	Member  member.Summary
	Matches int
}

// Overview bundles the admin dashboard rollups.
type Overview struct {
	Members    analytics.MemberAnalytics
	Matches    analytics.MatchStats
	MostActive []ActiveMember
}

type AnalyticsService struct {
	memberRepo member.Repository
	matchRepo  match.Repository
	rollups    *Rollups
	location   *time.Location
	logger     *logging.Logger
	now        func() time.Time
}

func NewAnalyticsService(
	memberRepo member.Repository,
	matchRepo match.Repository,
	rollups *Rollups,
	location *time.Location,
	logger *logging.Logger,
) *AnalyticsService {
	if logger == nil {
		logger = logging.Default()
	}
	if location == nil {
		location = time.UTC
	}

	return &AnalyticsService{
		memberRepo: memberRepo,
		matchRepo:  matchRepo,
		rollups:    rollups,
		location:   location,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *AnalyticsService) MemberAnalytics(ctx context.Context) (analytics.MemberAnalytics, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalyticsService.MemberAnalytics")
	defer span.End()

	return s.rollups.memberAnalytics(ctx, func(ctx context.Context) (analytics.MemberAnalytics, error) {
		members, _, err := s.memberRepo.List(ctx, member.Filter{})
		if err != nil {
			return analytics.MemberAnalytics{}, fmt.Errorf("list members: %w", err)
		}
		return analytics.SummarizeMembers(members), nil
	})
}

// MatchStats counts matches scheduled within the period ending now.
func (s *AnalyticsService) MatchStats(ctx context.Context, rawPeriod string) (analytics.MatchStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalyticsService.MatchStats")
	defer span.End()

	period, err := analytics.ParsePeriod(rawPeriod)
	if err != nil {
		return analytics.MatchStats{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := s.now().UTC()
	from := now.AddDate(0, 0, -period.Days())
	matches, err := s.matchRepo.List(ctx, match.Filter{From: &from, To: &now})
	if err != nil {
		return analytics.MatchStats{}, fmt.Errorf("list matches: %w", err)
	}
	return analytics.SummarizeMatches(matches, period, now, s.location), nil
}

// MostActive ranks non-admin members by graded matches played in the last
// days days. Ties go to the lower member id.
func (s *AnalyticsService) MostActive(ctx context.Context, limit, days int) ([]ActiveMember, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalyticsService.MostActive")
	defer span.End()

	if limit == 0 {
		limit = defaultActiveLimit
	}
	if days == 0 {
		days = defaultActiveDays
	}
	if limit < 1 || limit > maxActiveLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, maxActiveLimit)
	}
	if days < 1 || days > maxActiveDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidInput, maxActiveDays)
	}

	now := s.now().UTC()
	from := now.AddDate(0, 0, -days)
	graded, err := s.matchRepo.List(ctx, match.Filter{
		Statuses: []match.Status{match.StatusGraded},
		From:     &from,
		To:       &now,
	})
	if err != nil {
		return nil, fmt.Errorf("list graded matches: %w", err)
	}

	ranked := analytics.RankActivity(graded)
	ids := make([]int64, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.MemberID)
	}
	members, err := s.memberRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list members by ids: %w", err)
	}
	byID := make(map[int64]member.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	out := make([]ActiveMember, 0, limit)
	for _, r := range ranked {
		m, ok := byID[r.MemberID]
		if !ok || m.IsAdmin {
			continue
		}
		out = append(out, ActiveMember{Member: m.Summary(), Matches: r.Matches})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Overview computes the dashboard rollups concurrently and fails if any of them fails.
func (s *AnalyticsService) Overview(ctx context.Context) (Overview, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalyticsService.Overview")
	defer span.End()

	var out Overview
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		members, err := s.MemberAnalytics(ctx)
		if err != nil {
			return fmt.Errorf("member analytics: %w", err)
		}
		out.Members = members
		return nil
	})
	p.Go(func(ctx context.Context) error {
		stats, err := s.MatchStats(ctx, string(analytics.PeriodMonth))
		if err != nil {
			return fmt.Errorf("match stats: %w", err)
		}
		out.Matches = stats
		return nil
	})
	p.Go(func(ctx context.Context) error {
		active, err := s.MostActive(ctx, defaultActiveLimit, defaultActiveDays)
		if err != nil {
			return fmt.Errorf("most active: %w", err)
		}
		out.MostActive = active
		return nil
	})
	if err := p.Wait(); err != nil {
		return Overview{}, err
	}
	return out, nil
}
