package memory

import (
	"sync"
	"time"

	"github.com/riskibarqy/tennis-club/internal/domain/challenge"
	"github.com/riskibarqy/tennis-club/internal/domain/match"
	"github.com/riskibarqy/tennis-club/internal/domain/member"
)

// Store holds every table behind one lock so that multi-entity writes
// (accept plus match, cascading member delete) are atomic.
type Store struct {
	mu sync.RWMutex

	members    map[int64]member.Member
	challenges map[int64]challenge.Challenge
	matches    map[int64]match.Match

	nextMemberID    int64
	nextChallengeID int64
	nextMatchID     int64

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		members:    make(map[int64]member.Member),
		challenges: make(map[int64]challenge.Challenge),
		matches:    make(map[int64]match.Match),
		now:        time.Now,
	}
}

// insertMatchLocked enforces one match per challenge. Callers hold s.mu.
func (s *Store) insertMatchLocked(m match.Match) (match.Match, error) {
	for _, existing := range s.matches {
		if existing.ChallengeID == m.ChallengeID {
			return match.Match{}, match.ErrChallengeHasMatch
		}
	}
	s.nextMatchID++
	m.ID = s.nextMatchID
	m = cloneMatch(m)
	s.matches[m.ID] = m
	return cloneMatch(m), nil
}

func cloneMatch(m match.Match) match.Match {
	copied := m
	copied.Sets = append([]match.SetScore(nil), m.Sets...)
	if m.WinnerID != nil {
		v := *m.WinnerID
		copied.WinnerID = &v
	}
	if m.LoserID != nil {
		v := *m.LoserID
		copied.LoserID = &v
	}
	return copied
}
