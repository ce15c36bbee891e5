package challenge

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

type State string

const (
	StateWaiting  State = "Waiting"
	StateAccepted State = "Accepted"
	StateRejected State = "Rejected"
	StateConsumed State = "Consumed"
)

const MaxNotesLength = 100

// ErrDuplicateSchedule is returned when an open challenge already links the
// same pair of members on the same calendar day.
var ErrDuplicateSchedule = errors.New("challenge already scheduled for this pair on this day")

func ParseState(v string) (State, error) {
	switch State(v) {
	case StateWaiting, StateAccepted, StateRejected, StateConsumed:
		return State(v), nil
	default:
		return "", fmt.Errorf("unknown challenge state %q", v)
	}
}

// IsOpen reports whether the state blocks another challenge for the same pair and day.
func (s State) IsOpen() bool {
	return s == StateWaiting || s == StateAccepted
}

// CanTransition reports whether from -> to is an edge of the challenge lifecycle.
func CanTransition(from, to State) bool {
	switch from {
	case StateWaiting:
		return to == StateAccepted || to == StateRejected
	case StateAccepted:
		return to == StateConsumed
	default:
		return false
	}
}

type Challenge struct {
	ID           int64
	ChallengerID int64
	ChallengedID int64
	MatchAt      time.Time
	// MatchDay is MatchAt truncated to midnight in the club time zone.
	MatchDay  time.Time
	Notes     string
	State     State
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c Challenge) Validate() error {
	if c.ChallengerID <= 0 || c.ChallengedID <= 0 {
		return fmt.Errorf("both members are required")
	}
	if c.ChallengerID == c.ChallengedID {
		return fmt.Errorf("a member cannot challenge themselves")
	}
	if c.MatchAt.IsZero() {
		return fmt.Errorf("match time is required")
	}
	if utf8.RuneCountInString(c.Notes) > MaxNotesLength {
		return fmt.Errorf("notes must be at most %d characters", MaxNotesLength)
	}
	if _, err := ParseState(string(c.State)); err != nil {
		return err
	}
	return nil
}

// SamePair reports whether c links a and b in either direction.
func (c Challenge) SamePair(a, b int64) bool {
	return (c.ChallengerID == a && c.ChallengedID == b) || (c.ChallengerID == b && c.ChallengedID == a)
}

// Conflicts reports whether c blocks other from being scheduled.
func (c Challenge) Conflicts(other Challenge) bool {
	return c.State.IsOpen() &&
		c.SamePair(other.ChallengerID, other.ChallengedID) &&
		c.MatchDay.Equal(other.MatchDay)
}

// CalendarDay truncates t to midnight in loc.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

func NormalizeNotes(v string) string {
	return strings.TrimSpace(v)
}

// Filter narrows challenge listings. Zero values mean "no constraint".
type Filter struct {
	ChallengerID int64
	ChallengedID int64
	// InvolvingID matches either side.
	InvolvingID int64
	States      []State
}

func (f Filter) Matches(c Challenge) bool {
	if f.ChallengerID != 0 && c.ChallengerID != f.ChallengerID {
		return false
	}
	if f.ChallengedID != 0 && c.ChallengedID != f.ChallengedID {
		return false
	}
	if f.InvolvingID != 0 && c.ChallengerID != f.InvolvingID && c.ChallengedID != f.InvolvingID {
		return false
	}
	if len(f.States) == 0 {
		return true
	}
	for _, s := range f.States {
		if c.State == s {
			return true
		}
	}
	return false
}
