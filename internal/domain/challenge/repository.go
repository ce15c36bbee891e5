package challenge

import (
	"context"

	"github.com/riskibarqy/tennis-club/internal/domain/match"
)

type Repository interface {
	// Create inserts c in StateWaiting. An open challenge for the same unordered
	// pair and MatchDay yields ErrDuplicateSchedule.
	Create(ctx context.Context, c Challenge) (Challenge, error)
	GetByID(ctx context.Context, id int64) (Challenge, bool, error)
	// List returns challenges newest first.
	List(ctx context.Context, filter Filter) ([]Challenge, error)
	// Transition moves the challenge from -> to only while it is still in from.
	// The bool is false when the guard did not match.
	Transition(ctx context.Context, id int64, from, to State) (bool, error)
	// TransitionWithMatch performs Transition and inserts derived in the same
	// transaction. Nothing is written when the guard does not match.
	TransitionWithMatch(ctx context.Context, id int64, from, to State, derived match.Match) (match.Match, bool, error)
}
