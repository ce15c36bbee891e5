package match

import (
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusFinished Status = "finished"
	StatusGraded   Status = "graded"
)

func ParseStatus(v string) (Status, error) {
	switch Status(v) {
	case StatusPending, StatusFinished, StatusGraded:
		return Status(v), nil
	default:
		return "", fmt.Errorf("unknown match status %q", v)
	}
}

// ErrChallengeHasMatch is returned when a second match is derived from the same challenge.
var ErrChallengeHasMatch = errors.New("challenge already has a match")

// Match is the contest derived from an accepted challenge. Player1 is the
// challenger, Player2 the challenged member.
type Match struct {
	ID          int64
	ChallengeID int64
	ScheduledAt time.Time
	Status      Status
	Player1ID   int64
	Player2ID   int64
	Sets        []SetScore
	WinnerID    *int64
	LoserID     *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Scheduled builds the pending match created when a challenge is accepted.
func Scheduled(challengeID, challengerID, challengedID int64, at, now time.Time) Match {
	return Match{
		ChallengeID: challengeID,
		ScheduledAt: at,
		Status:      StatusPending,
		Player1ID:   challengerID,
		Player2ID:   challengedID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (m Match) Involves(memberID int64) bool {
	return m.Player1ID == memberID || m.Player2ID == memberID
}

func (m Match) Opponent(memberID int64) int64 {
	if m.Player1ID == memberID {
		return m.Player2ID
	}
	return m.Player1ID
}

func (m Match) WonBy(memberID int64) bool {
	return m.WinnerID != nil && *m.WinnerID == memberID
}

func (m Match) LostBy(memberID int64) bool {
	return m.LoserID != nil && *m.LoserID == memberID
}

// Validate checks the structural invariants that must hold for any stored match.
func (m Match) Validate() error {
	if m.ChallengeID <= 0 {
		return fmt.Errorf("challenge id is required")
	}
	if m.Player1ID <= 0 || m.Player2ID <= 0 {
		return fmt.Errorf("both players are required")
	}
	if m.Player1ID == m.Player2ID {
		return fmt.Errorf("players must differ")
	}
	if _, err := ParseStatus(string(m.Status)); err != nil {
		return err
	}
	if (m.WinnerID == nil) != (m.LoserID == nil) {
		return fmt.Errorf("winner and loser must be set together")
	}
	if m.WinnerID != nil {
		if !m.Involves(*m.WinnerID) || !m.Involves(*m.LoserID) || *m.WinnerID == *m.LoserID {
			return fmt.Errorf("winner and loser must be the two distinct players")
		}
	}
	if m.Status == StatusGraded && m.WinnerID == nil {
		return fmt.Errorf("graded match requires a result")
	}
	return nil
}

// Filter narrows match listings. Zero values mean "no constraint".
type Filter struct {
	MemberID    int64
	ChallengeID int64
	Statuses    []Status
	From        *time.Time
	To          *time.Time
	WinnerID    int64
	LoserID     int64
}

func (f Filter) Matches(m Match) bool {
	if f.MemberID != 0 && !m.Involves(f.MemberID) {
		return false
	}
	if f.ChallengeID != 0 && m.ChallengeID != f.ChallengeID {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if m.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.From != nil && m.ScheduledAt.Before(*f.From) {
		return false
	}
	if f.To != nil && m.ScheduledAt.After(*f.To) {
		return false
	}
	if f.WinnerID != 0 && !m.WonBy(f.WinnerID) {
		return false
	}
	if f.LoserID != 0 && !m.LostBy(f.LoserID) {
		return false
	}
	return true
}

// Result is a graded outcome ready to persist.
type Result struct {
	Sets     []SetScore
	WinnerID int64
	LoserID  int64
}
