package match

import (
	"context"
	"time"
)

type Repository interface {
	// Create inserts m. A second match for the same challenge yields ErrChallengeHasMatch.
	Create(ctx context.Context, m Match) (Match, error)
	GetByID(ctx context.Context, id int64) (Match, bool, error)
	// List returns matches ordered by scheduled time, newest first.
	List(ctx context.Context, filter Filter) ([]Match, error)
	// ApplyResult stores sets and outcome and marks the match graded, but only
	// while its status is one of from. The bool is false when the guard did not match.
	ApplyResult(ctx context.Context, id int64, from []Status, result Result) (bool, error)
	// FinishElapsed moves every pending match scheduled before now to finished
	// and returns how many rows changed.
	FinishElapsed(ctx context.Context, now time.Time) (int, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
