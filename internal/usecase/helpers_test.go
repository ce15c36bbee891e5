package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/riskibarqy/tennis-club/internal/domain/match"
	"github.com/riskibarqy/tennis-club/internal/domain/member"
	"github.com/riskibarqy/tennis-club/internal/domain/user"
	"github.com/riskibarqy/tennis-club/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/tennis-club/internal/platform/password"
)

type staticTokens struct{}

func (staticTokens) Issue(_ context.Context, p user.Principal) (AccessToken, error) {
	return AccessToken{Value: fmt.Sprintf("token-%d", p.MemberID)}, nil
}

func (staticTokens) Parse(_ context.Context, token string) (user.Principal, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(token, "token-"), 10, 64)
	if err != nil || !strings.HasPrefix(token, "token-") {
		return user.Principal{}, fmt.Errorf("%w: malformed token", ErrUnauthorized)
	}
	return user.Principal{MemberID: id}, nil
}

type testEnv struct {
	store      *memory.Store
	members    *memory.MemberRepository
	challenges *memory.ChallengeRepository
	matches    *memory.MatchRepository

	auth      *AuthService
	member    *MemberService
	challenge *ChallengeService
	match     *MatchService
	analytics *AnalyticsService

	clock time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	env := &testEnv{
		store:      store,
		members:    memory.NewMemberRepository(store),
		challenges: memory.NewChallengeRepository(store),
		matches:    memory.NewMatchRepository(store),
		clock:      time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC),
	}
	rollups := NewRollups(time.Minute)

	env.auth = NewAuthService(env.members, password.NewHasher(bcrypt.MinCost), staticTokens{}, rollups, nil)
	env.member = NewMemberService(env.members, env.matches, nil, 1<<20, rollups, nil)
	env.challenge = NewChallengeService(env.challenges, env.members, time.UTC, nil)
	env.match = NewMatchService(env.matches, env.challenges, env.members, nil)
	env.analytics = NewAnalyticsService(env.members, env.matches, rollups, time.UTC, nil)

	now := func() time.Time { return env.clock }
	env.auth.now = now
	env.member.now = now
	env.challenge.now = now
	env.match.now = now
	env.analytics.now = now
	return env
}

func (e *testEnv) register(t *testing.T, userName string, utr float64) member.Member {
	t.Helper()

	res, err := e.auth.Register(context.Background(), RegisterInput{
		FirstName: strings.ToUpper(userName[:1]) + userName[1:],
		LastName:  "Tester",
		UserName:  userName,
		Email:     userName + "@club.test",
		Password:  "secret123",
		Phone:     "555-0100",
		Age:       30,
		Gender:    "Female",
		UTR:       utr,
	})
	if err != nil {
		t.Fatalf("register %s: %v", userName, err)
	}
	return res.Member
}

func (e *testEnv) admin(t *testing.T) user.Principal {
	t.Helper()

	if _, err := e.auth.EnsureAdmin(context.Background(), "admin@club.test", "adminpass"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	found, ok, err := e.members.GetByEmail(context.Background(), "admin@club.test")
	if err != nil || !ok {
		t.Fatalf("load admin: ok=%v err=%v", ok, err)
	}
	return principalOf(found)
}

func actorOf(m member.Member) user.Principal {
	return principalOf(m)
}

func set(p1, p2 int) *match.SetScore {
	return &match.SetScore{Player1: p1, Player2: p2}
}
