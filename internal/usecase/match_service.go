package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/tennis-club/internal/domain/analytics"
	"github.com/riskibarqy/tennis-club/internal/domain/challenge"
	"github.com/riskibarqy/tennis-club/internal/domain/match"
	"github.com/riskibarqy/tennis-club/internal/domain/member"
	"github.com/riskibarqy/tennis-club/internal/platform/logging"
)

// MatchView is a match with player summaries and its set tally.
type MatchView struct {
	Match   match.Match
	Player1 member.Summary
	Player2 member.Summary
	Tally   match.Tally
}

// MemberMatchQuery filters a member's matches. Status is "history" or
// "upcoming", Period a week/month/quarter window and Result "win" or "loss".
// Empty fields do not filter.
type MemberMatchQuery struct {
	Status string
	Period string
	Result string
}

type RecordMatchInput struct {
	ChallengeID int64
	Scores      match.Scores
}

type MatchService struct {
	matchRepo     match.Repository
	challengeRepo challenge.Repository
	memberRepo    member.Repository
	logger        *logging.Logger
	now           func() time.Time
}

func NewMatchService(
	matchRepo match.Repository,
	challengeRepo challenge.Repository,
	memberRepo member.Repository,
	logger *logging.Logger,
) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}

	return &MatchService{
		matchRepo:     matchRepo,
		challengeRepo: challengeRepo,
		memberRepo:    memberRepo,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *MatchService) List(ctx context.Context) ([]MatchView, error) {
	return s.list(ctx, match.Filter{})
}

// ListFinished returns matches whose time has passed and that still await grading.
func (s *MatchService) ListFinished(ctx context.Context) ([]MatchView, error) {
	return s.list(ctx, match.Filter{Statuses: []match.Status{match.StatusFinished}})
}

func (s *MatchService) Get(ctx context.Context, id int64) (MatchView, error) {
	found, err := s.get(ctx, id)
	if err != nil {
		return MatchView{}, err
	}
	return s.view(ctx, found)
}

func (s *MatchService) ListForMember(ctx context.Context, memberID int64, query MemberMatchQuery) ([]MatchView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListForMember", attribute.Int64("member_id", memberID))
	defer span.End()

	filter := match.Filter{MemberID: memberID}

	switch strings.ToLower(strings.TrimSpace(query.Status)) {
	case "":
	case "history":
		filter.Statuses = []match.Status{match.StatusGraded}
	case "upcoming":
		filter.Statuses = []match.Status{match.StatusPending}
	default:
		return nil, fmt.Errorf("%w: status must be history or upcoming", ErrInvalidInput)
	}

	if strings.TrimSpace(query.Period) != "" {
		period, err := analytics.ParsePeriod(query.Period)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		from := s.now().UTC().AddDate(0, 0, -period.Days())
		filter.From = &from
	}

	switch strings.ToLower(strings.TrimSpace(query.Result)) {
	case "":
	case "win":
		filter.WinnerID = memberID
	case "loss":
		filter.LoserID = memberID
	default:
		return nil, fmt.Errorf("%w: result must be win or loss", ErrInvalidInput)
	}

	if _, exists, err := s.memberRepo.GetByID(ctx, memberID); err != nil {
		return nil, fmt.Errorf("get member by id: %w", err)
	} else if !exists {
		return nil, fmt.Errorf("%w: member=%d", ErrNotFound, memberID)
	}

	return s.list(ctx, filter)
}

// Grade scores a finished match and records its winner and loser.
func (s *MatchService) Grade(ctx context.Context, id int64, scores match.Scores) (MatchView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Grade", attribute.Int64("match_id", id))
	defer span.End()

	return s.applyScores(ctx, id, scores, []match.Status{match.StatusFinished}, "only finished matches can be graded")
}

// UpdateScores re-derives the result of a finished or graded match from corrected scores.
func (s *MatchService) UpdateScores(ctx context.Context, id int64, scores match.Scores) (MatchView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.UpdateScores", attribute.Int64("match_id", id))
	defer span.End()

	return s.applyScores(ctx, id, scores, []match.Status{match.StatusFinished, match.StatusGraded}, "pending matches cannot be scored")
}

func (s *MatchService) applyScores(ctx context.Context, id int64, scores match.Scores, from []match.Status, conflictMsg string) (MatchView, error) {
	current, err := s.get(ctx, id)
	if err != nil {
		return MatchView{}, err
	}
	if !statusIn(current.Status, from) {
		return MatchView{}, fmt.Errorf("%w: %s (status=%s)", ErrConflict, conflictMsg, current.Status)
	}

	result, err := match.Decide(scores, current.Player1ID, current.Player2ID)
	if err != nil {
		return MatchView{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	ok, err := s.matchRepo.ApplyResult(ctx, id, from, result)
	if err != nil {
		return MatchView{}, fmt.Errorf("apply match result: %w", err)
	}
	if !ok {
		return MatchView{}, fmt.Errorf("%w: %s", ErrConflict, conflictMsg)
	}

	current.Sets = result.Sets
	current.WinnerID = &result.WinnerID
	current.LoserID = &result.LoserID
	current.Status = match.StatusGraded
	current.UpdatedAt = s.now().UTC()

	s.logger.InfoContext(ctx, "match graded", "match_id", id, "winner_id", result.WinnerID)
	return s.view(ctx, current)
}

// Record enters a graded result for an accepted challenge that has no match
// and consumes the challenge.
func (s *MatchService) Record(ctx context.Context, input RecordMatchInput) (MatchView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Record", attribute.Int64("challenge_id", input.ChallengeID))
	defer span.End()

	source, exists, err := s.challengeRepo.GetByID(ctx, input.ChallengeID)
	if err != nil {
		return MatchView{}, fmt.Errorf("get challenge by id: %w", err)
	}
	if !exists {
		return MatchView{}, fmt.Errorf("%w: challenge=%d", ErrNotFound, input.ChallengeID)
	}
	if source.State != challenge.StateAccepted {
		return MatchView{}, fmt.Errorf("%w: only accepted challenges can be recorded (state=%s)", ErrConflict, source.State)
	}

	existing, err := s.matchRepo.List(ctx, match.Filter{ChallengeID: source.ID})
	if err != nil {
		return MatchView{}, fmt.Errorf("list matches by challenge: %w", err)
	}
	if len(existing) > 0 {
		return MatchView{}, fmt.Errorf("%w: %w", ErrConflict, match.ErrChallengeHasMatch)
	}

	result, err := match.Decide(input.Scores, source.ChallengerID, source.ChallengedID)
	if err != nil {
		return MatchView{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	now := s.now().UTC()
	derived := match.Scheduled(source.ID, source.ChallengerID, source.ChallengedID, source.MatchAt, now)
	derived.Status = match.StatusGraded
	derived.Sets = result.Sets
	derived.WinnerID = &result.WinnerID
	derived.LoserID = &result.LoserID

	created, ok, err := s.challengeRepo.TransitionWithMatch(ctx, source.ID, challenge.StateAccepted, challenge.StateConsumed, derived)
	if err != nil {
		if errors.Is(err, match.ErrChallengeHasMatch) {
			return MatchView{}, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return MatchView{}, fmt.Errorf("record match: %w", err)
	}
	if !ok {
		return MatchView{}, fmt.Errorf("%w: challenge is no longer accepted", ErrConflict)
	}

	s.logger.InfoContext(ctx, "match recorded", "match_id", created.ID, "challenge_id", source.ID)
	return s.view(ctx, created)
}

// SweepFinished marks every pending match whose time has passed as finished.
// Running it again without new elapsed matches changes nothing.
func (s *MatchService) SweepFinished(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.SweepFinished")
	defer span.End()

	changed, err := s.matchRepo.FinishElapsed(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("finish elapsed matches: %w", err)
	}
	if changed > 0 {
		s.logger.InfoContext(ctx, "pending matches finished", "count", changed)
	}
	return changed, nil
}

func (s *MatchService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.matchRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: match=%d", ErrNotFound, id)
	}
	s.logger.InfoContext(ctx, "match deleted", "match_id", id)
	return nil
}

func (s *MatchService) get(ctx context.Context, id int64) (match.Match, error) {
	found, exists, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match by id: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%d", ErrNotFound, id)
	}
	return found, nil
}

func (s *MatchService) list(ctx context.Context, filter match.Filter) ([]MatchView, error) {
	items, err := s.matchRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return s.attach(ctx, items)
}

func (s *MatchService) view(ctx context.Context, m match.Match) (MatchView, error) {
	views, err := s.attach(ctx, []match.Match{m})
	if err != nil {
		return MatchView{}, err
	}
	return views[0], nil
}

func (s *MatchService) attach(ctx context.Context, items []match.Match) ([]MatchView, error) {
	ids := make([]int64, 0, len(items)*2)
	for _, m := range items {
		ids = append(ids, m.Player1ID, m.Player2ID)
	}
	byID, err := summaries(ctx, s.memberRepo, ids)
	if err != nil {
		return nil, err
	}

	out := make([]MatchView, 0, len(items))
	for _, m := range items {
		out = append(out, MatchView{
			Match:   m,
			Player1: byID[m.Player1ID],
			Player2: byID[m.Player2ID],
			Tally:   match.CountSets(m.Sets),
		})
	}
	return out, nil
}

func statusIn(status match.Status, allowed []match.Status) bool {
	for _, s := range allowed {
		if s == status {
			return true
		}
	}
	return false
}
