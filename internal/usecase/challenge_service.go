package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/tennis-club/internal/domain/challenge"
	"github.com/riskibarqy/tennis-club/internal/domain/match"
	"github.com/riskibarqy/tennis-club/internal/domain/member"
	"github.com/riskibarqy/tennis-club/internal/domain/user"
	"github.com/riskibarqy/tennis-club/internal/platform/logging"
)

type CreateChallengeInput struct {
	ChallengedID int64
	MatchAt      time.Time
	Notes        string
}

// ChallengeView is a challenge with both member summaries attached.
type ChallengeView struct {
	Challenge  challenge.Challenge
	Challenger member.Summary
	Challenged member.Summary
}

type MemberChallenges struct {
	// Received holds challenges waiting on the member's answer.
	Received []ChallengeView
	// Sent holds every challenge the member issued.
	Sent []ChallengeView
}

type ChallengeService struct {
	challengeRepo challenge.Repository
	memberRepo    member.Repository
	location      *time.Location
	logger        *logging.Logger
	now           func() time.Time
}

func NewChallengeService(
	challengeRepo challenge.Repository,
	memberRepo member.Repository,
	location *time.Location,
	logger *logging.Logger,
) *ChallengeService {
	if logger == nil {
		logger = logging.Default()
	}
	if location == nil {
		location = time.UTC
	}

	return &ChallengeService{
		challengeRepo: challengeRepo,
		memberRepo:    memberRepo,
		location:      location,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *ChallengeService) Create(ctx context.Context, actor user.Principal, input CreateChallengeInput) (ChallengeView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.Create",
		attribute.Int64("challenger_id", actor.MemberID),
		attribute.Int64("challenged_id", input.ChallengedID),
	)
	defer span.End()

	if input.ChallengedID <= 0 {
		return ChallengeView{}, fmt.Errorf("%w: challenged member is required", ErrInvalidInput)
	}
	if input.ChallengedID == actor.MemberID {
		return ChallengeView{}, fmt.Errorf("%w: a member cannot challenge themselves", ErrInvalidInput)
	}
	now := s.now().UTC()
	if !input.MatchAt.After(now) {
		return ChallengeView{}, fmt.Errorf("%w: match time must be in the future", ErrInvalidInput)
	}

	candidate := challenge.Challenge{
		ChallengerID: actor.MemberID,
		ChallengedID: input.ChallengedID,
		MatchAt:      input.MatchAt.UTC(),
		MatchDay:     challenge.CalendarDay(input.MatchAt, s.location),
		Notes:        challenge.NormalizeNotes(input.Notes),
		State:        challenge.StateWaiting,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := candidate.Validate(); err != nil {
		return ChallengeView{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if _, exists, err := s.memberRepo.GetByID(ctx, input.ChallengedID); err != nil {
		return ChallengeView{}, fmt.Errorf("get challenged member: %w", err)
	} else if !exists {
		return ChallengeView{}, fmt.Errorf("%w: challenged member=%d", ErrNotFound, input.ChallengedID)
	}

	created, err := s.challengeRepo.Create(ctx, candidate)
	if err != nil {
		if errors.Is(err, challenge.ErrDuplicateSchedule) {
			return ChallengeView{}, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return ChallengeView{}, fmt.Errorf("create challenge: %w", err)
	}

	views, err := s.attach(ctx, []challenge.Challenge{created})
	if err != nil {
		return ChallengeView{}, err
	}
	return views[0], nil
}

// Accept moves a waiting challenge to Accepted and schedules its pending match
// in one step. Only the challenged member may accept.
func (s *ChallengeService) Accept(ctx context.Context, actor user.Principal, id int64) (ChallengeView, match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.Accept", attribute.Int64("challenge_id", id))
	defer span.End()

	current, err := s.resolvable(ctx, actor, id)
	if err != nil {
		return ChallengeView{}, match.Match{}, err
	}

	now := s.now().UTC()
	derived := match.Scheduled(current.ID, current.ChallengerID, current.ChallengedID, current.MatchAt, now)
	created, ok, err := s.challengeRepo.TransitionWithMatch(ctx, id, challenge.StateWaiting, challenge.StateAccepted, derived)
	if err != nil {
		if errors.Is(err, match.ErrChallengeHasMatch) {
			return ChallengeView{}, match.Match{}, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return ChallengeView{}, match.Match{}, fmt.Errorf("accept challenge: %w", err)
	}
	if !ok {
		return ChallengeView{}, match.Match{}, fmt.Errorf("%w: challenge already resolved", ErrConflict)
	}

	current.State = challenge.StateAccepted
	current.UpdatedAt = now
	views, err := s.attach(ctx, []challenge.Challenge{current})
	if err != nil {
		return ChallengeView{}, match.Match{}, err
	}

	s.logger.InfoContext(ctx, "challenge accepted", "challenge_id", id, "match_id", created.ID)
	return views[0], created, nil
}

func (s *ChallengeService) Reject(ctx context.Context, actor user.Principal, id int64) (ChallengeView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.Reject", attribute.Int64("challenge_id", id))
	defer span.End()

	current, err := s.resolvable(ctx, actor, id)
	if err != nil {
		return ChallengeView{}, err
	}

	ok, err := s.challengeRepo.Transition(ctx, id, challenge.StateWaiting, challenge.StateRejected)
	if err != nil {
		return ChallengeView{}, fmt.Errorf("reject challenge: %w", err)
	}
	if !ok {
		return ChallengeView{}, fmt.Errorf("%w: challenge already resolved", ErrConflict)
	}

	current.State = challenge.StateRejected
	current.UpdatedAt = s.now().UTC()
	views, err := s.attach(ctx, []challenge.Challenge{current})
	if err != nil {
		return ChallengeView{}, err
	}
	return views[0], nil
}

func (s *ChallengeService) ListForMember(ctx context.Context, memberID int64) (MemberChallenges, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ChallengeService.ListForMember", attribute.Int64("member_id", memberID))
	defer span.End()

	received, err := s.challengeRepo.List(ctx, challenge.Filter{
		ChallengedID: memberID,
		States:       []challenge.State{challenge.StateWaiting},
	})
	if err != nil {
		return MemberChallenges{}, fmt.Errorf("list received challenges: %w", err)
	}
	sent, err := s.challengeRepo.List(ctx, challenge.Filter{ChallengerID: memberID})
	if err != nil {
		return MemberChallenges{}, fmt.Errorf("list sent challenges: %w", err)
	}

	all := make([]challenge.Challenge, 0, len(received)+len(sent))
	all = append(all, received...)
	all = append(all, sent...)
	views, err := s.attach(ctx, all)
	if err != nil {
		return MemberChallenges{}, err
	}

	return MemberChallenges{
		Received: views[:len(received)],
		Sent:     views[len(received):],
	}, nil
}

func (s *ChallengeService) ListAll(ctx context.Context) ([]ChallengeView, error) {
	return s.list(ctx, challenge.Filter{})
}

func (s *ChallengeService) ListAccepted(ctx context.Context) ([]ChallengeView, error) {
	return s.list(ctx, challenge.Filter{States: []challenge.State{challenge.StateAccepted}})
}

func (s *ChallengeService) list(ctx context.Context, filter challenge.Filter) ([]ChallengeView, error) {
	items, err := s.challengeRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	return s.attach(ctx, items)
}

// resolvable loads a challenge the actor may accept or reject.
func (s *ChallengeService) resolvable(ctx context.Context, actor user.Principal, id int64) (challenge.Challenge, error) {
	current, exists, err := s.challengeRepo.GetByID(ctx, id)
	if err != nil {
		return challenge.Challenge{}, fmt.Errorf("get challenge by id: %w", err)
	}
	if !exists {
		return challenge.Challenge{}, fmt.Errorf("%w: challenge=%d", ErrNotFound, id)
	}
	if current.ChallengedID != actor.MemberID {
		return challenge.Challenge{}, fmt.Errorf("%w: only the challenged member can respond", ErrForbidden)
	}
	if current.State != challenge.StateWaiting {
		return challenge.Challenge{}, fmt.Errorf("%w: challenge already resolved", ErrConflict)
	}
	return current, nil
}

func (s *ChallengeService) attach(ctx context.Context, items []challenge.Challenge) ([]ChallengeView, error) {
	ids := make([]int64, 0, len(items)*2)
	for _, c := range items {
		ids = append(ids, c.ChallengerID, c.ChallengedID)
	}
	byID, err := summaries(ctx, s.memberRepo, ids)
	if err != nil {
		return nil, err
	}

	out := make([]ChallengeView, 0, len(items))
	for _, c := range items {
		out = append(out, ChallengeView{
			Challenge:  c,
			Challenger: byID[c.ChallengerID],
			Challenged: byID[c.ChallengedID],
		})
	}
	return out, nil
}
