package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/tennis-club/internal/domain/member"
)

type MemberRepository struct {
	store *Store
}

func NewMemberRepository(store *Store) *MemberRepository {
	return &MemberRepository{store: store}
}

func (r *MemberRepository) Create(_ context.Context, m member.Member) (member.Member, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUniqueLocked(m); err != nil {
		return member.Member{}, err
	}
	s.nextMemberID++
	m.ID = s.nextMemberID
	s.members[m.ID] = m
	return m, nil
}

func (r *MemberRepository) GetByID(_ context.Context, id int64) (member.Member, bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[id]
	return m, ok, nil
}

func (r *MemberRepository) GetByEmail(_ context.Context, email string) (member.Member, bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = member.NormalizeEmail(email)
	for _, m := range s.members {
		if m.Email == email {
			return m, true, nil
		}
	}
	return member.Member{}, false, nil
}

func (r *MemberRepository) List(_ context.Context, filter member.Filter) ([]member.Member, int, error) {
	s := r.store
	s.mu.RLock()
	matched := make([]member.Member, 0, len(s.members))
	for _, m := range s.members {
		if filter.Matches(m) {
			matched = append(matched, m)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	total := len(matched)

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []member.Member{}, total, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (r *MemberRepository) ListByIDs(_ context.Context, ids []int64) ([]member.Member, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]member.Member, 0, len(ids))
	for _, id := range ids {
		if m, ok := s.members[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MemberRepository) Update(_ context.Context, m member.Member) (member.Member, bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.members[m.ID]
	if !ok {
		return member.Member{}, false, nil
	}
	if err := s.checkUniqueLocked(m); err != nil {
		return member.Member{}, true, err
	}
	m.CreatedAt = current.CreatedAt
	s.members[m.ID] = m
	return m, true, nil
}

func (r *MemberRepository) Delete(_ context.Context, id int64) (bool, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[id]; !ok {
		return false, nil
	}
	for matchID, m := range s.matches {
		if m.Involves(id) {
			delete(s.matches, matchID)
		}
	}
	for challengeID, c := range s.challenges {
		if c.ChallengerID == id || c.ChallengedID == id {
			delete(s.challenges, challengeID)
		}
	}
	delete(s.members, id)
	return true, nil
}

func (s *Store) checkUniqueLocked(m member.Member) error {
	for _, existing := range s.members {
		if existing.ID == m.ID {
			continue
		}
		if existing.Email == m.Email {
			return member.ErrDuplicateEmail
		}
		if existing.UserName == m.UserName {
			return member.ErrDuplicateUserName
		}
	}
	return nil
}
