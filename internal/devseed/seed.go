// Package devseed loads a deterministic set of sample members, challenges and
// matches for local development.
package devseed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/tennis-club/internal/domain/challenge"
	"github.com/riskibarqy/tennis-club/internal/domain/match"
	"github.com/riskibarqy/tennis-club/internal/domain/member"
	"github.com/riskibarqy/tennis-club/internal/platform/logging"
)

// SamplePassword is the password of every seeded member.
const SamplePassword = "tennis123"

const defaultWorkers = 4

type Hasher interface {
	Hash(plain string) (string, error)
}

type Repositories struct {
	Members    member.Repository
	Challenges challenge.Repository
	Matches    match.Repository
}

type Summary struct {
	Members    int
	Challenges int
	Matches    int
	Skipped    bool
}

type Seeder struct {
	repos    Repositories
	hasher   Hasher
	location *time.Location
	workers  int
	logger   *logging.Logger
	now      func() time.Time
}

func NewSeeder(repos Repositories, hasher Hasher, location *time.Location, logger *logging.Logger) *Seeder {
	if logger == nil {
		logger = logging.Default()
	}
	if location == nil {
		location = time.UTC
	}

	return &Seeder{
		repos:    repos,
		hasher:   hasher,
		location: location,
		workers:  defaultWorkers,
		logger:   logger,
		now:      time.Now,
	}
}

type sampleMember struct {
	first, last, userName string
	age                   int
	gender                member.Gender
	utr                   float64
}

var sampleMembers = []sampleMember{
	{"Budi", "Santoso", "budi", 28, member.GenderMale, 6.5},
	{"Sari", "Wulandari", "sari", 25, member.GenderFemale, 7.2},
	{"Andi", "Pratama", "andi", 34, member.GenderMale, 5.8},
	{"Dewi", "Lestari", "dewi", 31, member.GenderFemale, 6.9},
	{"Rizky", "Hidayat", "rizky", 22, member.GenderMale, 8.1},
	{"Putri", "Anggraini", "putri", 27, member.GenderFemale, 5.4},
	{"Agus", "Setiawan", "agus", 45, member.GenderMale, 4.9},
	{"Maya", "Kusuma", "maya", 38, member.GenderFemale, 6.1},
	{"Fajar", "Nugroho", "fajar", 29, member.GenderMale, 7.7},
	{"Intan", "Permata", "intan", 24, member.GenderOther, 6.3},
}

// sampleChallenge pairs seeded members by index. days is relative to today;
// past graded games carry scores.
type sampleChallenge struct {
	challenger, challenged int
	days                   int
	hour                   int
	state                  challenge.State
	scores                 *match.Scores
}

func scores(sets ...[2]int) *match.Scores {
	out := &match.Scores{}
	slots := []**match.SetScore{&out.Set1, &out.Set2, &out.Set3}
	for i, s := range sets {
		*slots[i] = &match.SetScore{Player1: s[0], Player2: s[1]}
	}
	return out
}

var sampleChallenges = []sampleChallenge{
	{0, 1, -20, 8, challenge.StateAccepted, scores([2]int{6, 4}, [2]int{3, 6}, [2]int{7, 5})},
	{2, 3, -15, 17, challenge.StateAccepted, scores([2]int{2, 6}, [2]int{4, 6})},
	{4, 8, -12, 9, challenge.StateAccepted, scores([2]int{6, 3}, [2]int{6, 4})},
	{1, 4, -9, 18, challenge.StateAccepted, scores([2]int{6, 7}, [2]int{6, 2}, [2]int{4, 6})},
	{5, 7, -6, 10, challenge.StateAccepted, scores([2]int{6, 1}, [2]int{6, 2})},
	{3, 0, -3, 16, challenge.StateAccepted, nil},
	{6, 2, -2, 7, challenge.StateRejected, nil},
	{8, 9, 2, 19, challenge.StateAccepted, nil},
	{0, 4, 3, 8, challenge.StateWaiting, nil},
	{9, 1, 5, 17, challenge.StateWaiting, nil},
}

func sampleEmail(userName string) string {
	return userName + "@sample.club"
}

// Run seeds the sample data unless the first sample member already exists.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	if _, exists, err := s.repos.Members.GetByEmail(ctx, sampleEmail(sampleMembers[0].userName)); err != nil {
		return Summary{}, fmt.Errorf("check existing sample data: %w", err)
	} else if exists {
		s.logger.InfoContext(ctx, "sample data already present")
		return Summary{Skipped: true}, nil
	}

	hashes, err := s.hashPasswords(len(sampleMembers))
	if err != nil {
		return Summary{}, err
	}

	now := s.now().UTC()
	ids := make([]int64, 0, len(sampleMembers))
	for i, sm := range sampleMembers {
		created, err := s.repos.Members.Create(ctx, member.Member{
			FirstName:    sm.first,
			LastName:     sm.last,
			UserName:     sm.userName,
			Email:        sampleEmail(sm.userName),
			PasswordHash: hashes[i],
			Phone:        fmt.Sprintf("+62-812-000-%04d", i+1),
			Age:          sm.age,
			Gender:       sm.gender,
			UTR:          sm.utr,
			AvatarURL:    member.DefaultAvatarURL(sm.userName),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return Summary{}, fmt.Errorf("create sample member %s: %w", sm.userName, err)
		}
		ids = append(ids, created.ID)
	}

	summary := Summary{Members: len(ids)}
	for _, sc := range sampleChallenges {
		matches, err := s.seedChallenge(ctx, sc, ids, now)
		if err != nil {
			return Summary{}, err
		}
		summary.Challenges++
		summary.Matches += matches
	}

	finished, err := s.repos.Matches.FinishElapsed(ctx, now)
	if err != nil {
		return Summary{}, fmt.Errorf("finish elapsed sample matches: %w", err)
	}

	s.logger.InfoContext(ctx, "sample data seeded",
		"members", summary.Members,
		"challenges", summary.Challenges,
		"matches", summary.Matches,
		"finished", finished,
	)
	return summary, nil
}

// hashPasswords runs the bcrypt work for every sample member on a bounded pool.
func (s *Seeder) hashPasswords(n int) ([]string, error) {
	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	hashes := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			hashes[i], errs[i] = s.hasher.Hash(SamplePassword)
		}); err != nil {
			wg.Done()
			return nil, fmt.Errorf("submit hash task: %w", err)
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("hash sample password: %w", err)
		}
	}
	return hashes, nil
}

func (s *Seeder) seedChallenge(ctx context.Context, sc sampleChallenge, ids []int64, now time.Time) (int, error) {
	today := challenge.CalendarDay(now, s.location)
	matchAt := today.AddDate(0, 0, sc.days).Add(time.Duration(sc.hour) * time.Hour).UTC()

	created, err := s.repos.Challenges.Create(ctx, challenge.Challenge{
		ChallengerID: ids[sc.challenger],
		ChallengedID: ids[sc.challenged],
		MatchAt:      matchAt,
		MatchDay:     challenge.CalendarDay(matchAt, s.location),
		Notes:        "friendly",
		State:        challenge.StateWaiting,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return 0, fmt.Errorf("create sample challenge: %w", err)
	}

	switch sc.state {
	case challenge.StateWaiting:
		return 0, nil
	case challenge.StateRejected:
		if _, err := s.repos.Challenges.Transition(ctx, created.ID, challenge.StateWaiting, challenge.StateRejected); err != nil {
			return 0, fmt.Errorf("reject sample challenge: %w", err)
		}
		return 0, nil
	}

	derived := match.Scheduled(created.ID, created.ChallengerID, created.ChallengedID, matchAt, now)
	scheduled, ok, err := s.repos.Challenges.TransitionWithMatch(ctx, created.ID, challenge.StateWaiting, challenge.StateAccepted, derived)
	if err != nil {
		return 0, fmt.Errorf("accept sample challenge: %w", err)
	}
	if !ok {
		return 0, fmt.Errorf("accept sample challenge %d: not waiting", created.ID)
	}
	if sc.scores == nil {
		return 1, nil
	}

	result, err := match.Decide(*sc.scores, scheduled.Player1ID, scheduled.Player2ID)
	if err != nil {
		return 0, fmt.Errorf("decide sample match: %w", err)
	}
	if _, err := s.repos.Matches.ApplyResult(ctx, scheduled.ID, []match.Status{match.StatusPending}, result); err != nil {
		return 0, fmt.Errorf("grade sample match: %w", err)
	}
	return 1, nil
}
