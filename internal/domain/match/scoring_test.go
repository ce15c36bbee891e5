package match

import (
	"errors"
	"testing"
)

func set(p1, p2 int) *SetScore {
	return &SetScore{Player1: p1, Player2: p2}
}

func TestDecide(t *testing.T) {
	const p1, p2 = int64(11), int64(22)

	tests := []struct {
		name       string
		scores     Scores
		wantWinner int64
		wantSets   int
		wantErr    error
	}{
		{name: "player1 in three", scores: Scores{Set1: set(6, 4), Set2: set(3, 6), Set3: set(6, 2)}, wantWinner: p1, wantSets: 3},
		{name: "player2 in three", scores: Scores{Set1: set(4, 6), Set2: set(6, 3), Set3: set(2, 6)}, wantWinner: p2, wantSets: 3},
		{name: "single set", scores: Scores{Set1: set(6, 2)}, wantWinner: p1, wantSets: 1},
		{name: "straight sets", scores: Scores{Set1: set(5, 7), Set2: set(6, 7)}, wantWinner: p2, wantSets: 2},
		{name: "tiebreak set", scores: Scores{Set1: set(7, 6), Set2: set(7, 5)}, wantWinner: p1, wantSets: 2},
		{name: "missing first set", scores: Scores{}, wantErr: ErrMissingFirstSet},
		{name: "tied set", scores: Scores{Set1: set(6, 6)}, wantErr: ErrTiedSet},
		{name: "tied third set", scores: Scores{Set1: set(6, 4), Set2: set(4, 6), Set3: set(5, 5)}, wantErr: ErrTiedSet},
		{name: "score above seven", scores: Scores{Set1: set(8, 6)}, wantErr: ErrSetOutOfRange},
		{name: "negative score", scores: Scores{Set1: set(-1, 6)}, wantErr: ErrSetOutOfRange},
		{name: "third without second", scores: Scores{Set1: set(6, 4), Set3: set(6, 2)}, wantErr: ErrSetOrder},
		{name: "one set each", scores: Scores{Set1: set(6, 4), Set2: set(2, 6)}, wantErr: ErrUndecided},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decide(tc.scores, p1, p2)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				if !IsScoringError(err) {
					t.Fatalf("expected scoring error classification for %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.WinnerID != tc.wantWinner {
				t.Fatalf("winner: got %d want %d", got.WinnerID, tc.wantWinner)
			}
			if got.WinnerID == got.LoserID {
				t.Fatalf("winner and loser must differ")
			}
			if len(got.Sets) != tc.wantSets {
				t.Fatalf("sets: got %d want %d", len(got.Sets), tc.wantSets)
			}
		})
	}
}

func TestCountSets(t *testing.T) {
	tally := CountSets([]SetScore{{6, 4}, {3, 6}, {6, 2}})
	if tally.Player1 != 2 || tally.Player2 != 1 {
		t.Fatalf("unexpected tally: %+v", tally)
	}
}
