package postgres

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/tennis-club/internal/domain/challenge"
	"github.com/riskibarqy/tennis-club/internal/domain/match"
	qb "github.com/riskibarqy/tennis-club/internal/platform/querybuilder"
)

const challengesTable = "challenges"

type ChallengeRepository struct {
	db       *sqlx.DB
	location *time.Location
}

// NewChallengeRepository reads match days back in the club time zone loc.
func NewChallengeRepository(db *sqlx.DB, loc *time.Location) *ChallengeRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &ChallengeRepository{db: db, location: loc}
}

func (r *ChallengeRepository) Create(ctx context.Context, c challenge.Challenge) (challenge.Challenge, error) {
	c.State = challenge.StateWaiting
	query, args, err := qb.InsertModel(challengesTable, challengeModelFrom(c), "RETURNING *")
	if err != nil {
		return challenge.Challenge{}, fmt.Errorf("build insert challenge query: %w", err)
	}

	var row challengeTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == constraintOpenPairPerDay {
			return challenge.Challenge{}, challenge.ErrDuplicateSchedule
		}
		return challenge.Challenge{}, crerr.Wrap(err, "insert challenge")
	}
	return row.toDomain(r.location), nil
}

func (r *ChallengeRepository) GetByID(ctx context.Context, id int64) (challenge.Challenge, bool, error) {
	query, args, err := qb.Select("*").From(challengesTable).Where(qb.Eq("id", id)).Limit(1).ToSQL()
	if err != nil {
		return challenge.Challenge{}, false, fmt.Errorf("build select challenge by id query: %w", err)
	}

	var row challengeTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return challenge.Challenge{}, false, nil
		}
		return challenge.Challenge{}, false, crerr.Wrap(err, "select challenge by id")
	}
	return row.toDomain(r.location), true, nil
}

func (r *ChallengeRepository) List(ctx context.Context, filter challenge.Filter) ([]challenge.Challenge, error) {
	conds := make([]qb.Condition, 0, 4)
	if filter.ChallengerID != 0 {
		conds = append(conds, qb.Eq("challenger_id", filter.ChallengerID))
	}
	if filter.ChallengedID != 0 {
		conds = append(conds, qb.Eq("challenged_id", filter.ChallengedID))
	}
	if filter.InvolvingID != 0 {
		conds = append(conds, qb.Or(
			qb.Eq("challenger_id", filter.InvolvingID),
			qb.Eq("challenged_id", filter.InvolvingID),
		))
	}
	if len(filter.States) > 0 {
		conds = append(conds, qb.In("state", toAnySlice(filter.States)))
	}

	query, args, err := qb.Select("*").From(challengesTable).
		Where(conds...).
		OrderBy("created_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select challenges query: %w", err)
	}

	var rows []challengeTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "select challenges")
	}

	out := make([]challenge.Challenge, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain(r.location))
	}
	return out, nil
}

func (r *ChallengeRepository) Transition(ctx context.Context, id int64, from, to challenge.State) (bool, error) {
	if !challenge.CanTransition(from, to) {
		return false, fmt.Errorf("invalid challenge transition %s -> %s", from, to)
	}
	return transitionChallenge(ctx, r.db, id, from, to)
}

func (r *ChallengeRepository) TransitionWithMatch(ctx context.Context, id int64, from, to challenge.State, derived match.Match) (match.Match, bool, error) {
	if !challenge.CanTransition(from, to) {
		return match.Match{}, false, fmt.Errorf("invalid challenge transition %s -> %s", from, to)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return match.Match{}, false, crerr.Wrap(err, "begin challenge transition tx")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	ok, err := transitionChallenge(ctx, tx, id, from, to)
	if err != nil || !ok {
		return match.Match{}, false, err
	}

	derived.ChallengeID = id
	created, err := insertMatch(ctx, tx, derived)
	if err != nil {
		return match.Match{}, false, err
	}

	if err := tx.Commit(); err != nil {
		return match.Match{}, false, crerr.Wrap(err, "commit challenge transition tx")
	}
	return created, true, nil
}

func transitionChallenge(ctx context.Context, exec sqlx.ExtContext, id int64, from, to challenge.State) (bool, error) {
	query, args, err := qb.Update(challengesTable).
		Set("state", string(to)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.Eq("state", string(from)),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build transition challenge query: %w", err)
	}

	res, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return false, crerr.Wrap(err, "transition challenge")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, crerr.Wrap(err, "read transitioned challenge rows")
	}
	return affected == 1, nil
}
