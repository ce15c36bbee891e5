package match

import (
	"errors"
	"fmt"
)

const MaxGamesPerSet = 7

var (
	ErrMissingFirstSet = errors.New("first set score is required")
	ErrSetOutOfRange   = errors.New("set score out of range")
	ErrTiedSet         = errors.New("a set cannot end tied")
	ErrSetOrder        = errors.New("third set requires a second set")
	ErrUndecided       = errors.New("sets do not produce a winner")
)

// SetScore holds the games won by each player in one set.
type SetScore struct {
	Player1 int
	Player2 int
}

// Scores is the raw grading input. Set2 and Set3 are optional.
type Scores struct {
	Set1 *SetScore
	Set2 *SetScore
	Set3 *SetScore
}

func (s Scores) Sets() []SetScore {
	out := make([]SetScore, 0, 3)
	for _, set := range []*SetScore{s.Set1, s.Set2, s.Set3} {
		if set != nil {
			out = append(out, *set)
		}
	}
	return out
}

func (s Scores) Validate() error {
	if s.Set1 == nil {
		return ErrMissingFirstSet
	}
	if s.Set3 != nil && s.Set2 == nil {
		return ErrSetOrder
	}
	for i, set := range s.Sets() {
		if set.Player1 < 0 || set.Player1 > MaxGamesPerSet || set.Player2 < 0 || set.Player2 > MaxGamesPerSet {
			return fmt.Errorf("%w: set %d must be between 0 and %d", ErrSetOutOfRange, i+1, MaxGamesPerSet)
		}
		if set.Player1 == set.Player2 {
			return fmt.Errorf("%w: set %d is %d-%d", ErrTiedSet, i+1, set.Player1, set.Player2)
		}
	}
	return nil
}

// Tally counts sets won by each player.
type Tally struct {
	Player1 int
	Player2 int
}

func CountSets(sets []SetScore) Tally {
	var t Tally
	for _, set := range sets {
		switch {
		case set.Player1 > set.Player2:
			t.Player1++
		case set.Player2 > set.Player1:
			t.Player2++
		}
	}
	return t
}

// Decide validates scores and derives winner and loser for the given players.
func Decide(scores Scores, player1ID, player2ID int64) (Result, error) {
	if err := scores.Validate(); err != nil {
		return Result{}, err
	}

	sets := scores.Sets()
	tally := CountSets(sets)
	switch {
	case tally.Player1 > tally.Player2:
		return Result{Sets: sets, WinnerID: player1ID, LoserID: player2ID}, nil
	case tally.Player2 > tally.Player1:
		return Result{Sets: sets, WinnerID: player2ID, LoserID: player1ID}, nil
	default:
		return Result{}, fmt.Errorf("%w: %d-%d in sets", ErrUndecided, tally.Player1, tally.Player2)
	}
}

// IsScoringError reports whether err came from score validation.
func IsScoringError(err error) bool {
	return errors.Is(err, ErrMissingFirstSet) ||
		errors.Is(err, ErrSetOutOfRange) ||
		errors.Is(err, ErrTiedSet) ||
		errors.Is(err, ErrSetOrder) ||
		errors.Is(err, ErrUndecided)
}
