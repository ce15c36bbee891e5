package memory

import (
	"context"
	"sort"
	"time"

	"github.com/riskibarqy/tennis-club/internal/domain/match"
)

type MatchRepository struct {
	store *Store
}

func NewMatchRepository(store *Store) *MatchRepository {
	return &MatchRepository{store: store}
}

func (r *MatchRepository) Create(_ context.Context, m match.Match) (match.Match, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertMatchLocked(m)
}

func (r *MatchRepository) GetByID(_ context.Context, id int64) (match.Match, bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[id]
	if !ok {
		return match.Match{}, false, nil
	}
	return cloneMatch(m), true, nil
}

func (r *MatchRepository) List(_ context.Context, filter match.Filter) ([]match.Match, error) {
	s := r.store
	s.mu.RLock()
	out := make([]match.Match, 0, len(s.matches))
	for _, m := range s.matches {
		if filter.Matches(m) {
			out = append(out, cloneMatch(m))
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.After(out[j].ScheduledAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MatchRepository) ApplyResult(_ context.Context, id int64, from []match.Status, result match.Result) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[id]
	if !ok || !hasStatus(from, m.Status) {
		return false, nil
	}
	winner, loser := result.WinnerID, result.LoserID
	m.Sets = append([]match.SetScore(nil), result.Sets...)
	m.WinnerID = &winner
	m.LoserID = &loser
	m.Status = match.StatusGraded
	m.UpdatedAt = s.now().UTC()
	s.matches[id] = m
	return true, nil
}

func (r *MatchRepository) FinishElapsed(_ context.Context, now time.Time) (int, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for id, m := range s.matches {
		if m.Status != match.StatusPending || !m.ScheduledAt.Before(now) {
			continue
		}
		m.Status = match.StatusFinished
		m.UpdatedAt = now
		s.matches[id] = m
		changed++
	}
	return changed, nil
}

func (r *MatchRepository) Delete(_ context.Context, id int64) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.matches[id]; !ok {
		return false, nil
	}
	delete(s.matches, id)
	return true, nil
}

func hasStatus(statuses []match.Status, status match.Status) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
