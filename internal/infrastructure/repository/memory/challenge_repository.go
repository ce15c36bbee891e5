package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/tennis-club/internal/domain/challenge"
	"github.com/riskibarqy/tennis-club/internal/domain/match"
)

type ChallengeRepository struct {
	store *Store
}

func NewChallengeRepository(store *Store) *ChallengeRepository {
	return &ChallengeRepository{store: store}
}

func (r *ChallengeRepository) Create(_ context.Context, c challenge.Challenge) (challenge.Challenge, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.challenges {
		if existing.Conflicts(c) {
			return challenge.Challenge{}, challenge.ErrDuplicateSchedule
		}
	}
	s.nextChallengeID++
	c.ID = s.nextChallengeID
	s.challenges[c.ID] = c
	return c, nil
}

func (r *ChallengeRepository) GetByID(_ context.Context, id int64) (challenge.Challenge, bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.challenges[id]
	return c, ok, nil
}

func (r *ChallengeRepository) List(_ context.Context, filter challenge.Filter) ([]challenge.Challenge, error) {
	s := r.store
	s.mu.RLock()
	out := make([]challenge.Challenge, 0, len(s.challenges))
	for _, c := range s.challenges {
		if filter.Matches(c) {
			out = append(out, c)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *ChallengeRepository) Transition(_ context.Context, id int64, from, to challenge.State) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.transitionLocked(id, from, to), nil
}

func (r *ChallengeRepository) TransitionWithMatch(_ context.Context, id int64, from, to challenge.State, derived match.Match) (match.Match, bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.challenges[id]
	if !ok || c.State != from {
		return match.Match{}, false, nil
	}
	derived.ChallengeID = id
	created, err := s.insertMatchLocked(derived)
	if err != nil {
		return match.Match{}, false, err
	}
	s.transitionLocked(id, from, to)
	return created, true, nil
}

func (s *Store) transitionLocked(id int64, from, to challenge.State) bool {
	c, ok := s.challenges[id]
	if !ok || c.State != from {
		return false
	}
	c.State = to
	c.UpdatedAt = s.now().UTC()
	s.challenges[id] = c
	return true
}
