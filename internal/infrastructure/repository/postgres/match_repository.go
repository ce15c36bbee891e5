package postgres

import (
	"context"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/tennis-club/internal/domain/match"
	qb "github.com/riskibarqy/tennis-club/internal/platform/querybuilder"
)

const matchesTable = "matches"

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) Create(ctx context.Context, m match.Match) (match.Match, error) {
	return insertMatch(ctx, r.db, m)
}

func (r *MatchRepository) GetByID(ctx context.Context, id int64) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From(matchesTable).Where(qb.Eq("id", id)).Limit(1).ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match by id query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, crerr.Wrap(err, "select match by id")
	}
	return row.toDomain(), true, nil
}

func (r *MatchRepository) List(ctx context.Context, filter match.Filter) ([]match.Match, error) {
	query, args, err := qb.Select("*").From(matchesTable).
		Where(matchConditions(filter)...).
		OrderBy("scheduled_at DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "select matches")
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *MatchRepository) ApplyResult(ctx context.Context, id int64, from []match.Status, result match.Result) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}

	builder := qb.Update(matchesTable)
	values := setValues(result.Sets)
	for _, col := range []string{"set1_p1", "set1_p2", "set2_p1", "set2_p2", "set3_p1", "set3_p2"} {
		builder.Set(col, values[col])
	}
	query, args, err := builder.
		Set("winner_id", result.WinnerID).
		Set("loser_id", result.LoserID).
		Set("status", string(match.StatusGraded)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", id),
			qb.In("status", toAnySlice(from)),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build apply match result query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, crerr.Wrap(err, "apply match result")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, crerr.Wrap(err, "read graded match rows")
	}
	return affected == 1, nil
}

func (r *MatchRepository) FinishElapsed(ctx context.Context, now time.Time) (int, error) {
	query, args, err := qb.Update(matchesTable).
		Set("status", string(match.StatusFinished)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("status", string(match.StatusPending)),
			qb.Lt("scheduled_at", now.UTC()),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build finish elapsed matches query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, crerr.Wrap(err, "finish elapsed matches")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, crerr.Wrap(err, "read finished match rows")
	}
	return int(affected), nil
}

func (r *MatchRepository) Delete(ctx context.Context, id int64) (bool, error) {
	query, args, err := qb.DeleteFrom(matchesTable).Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return false, fmt.Errorf("build delete match query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, crerr.Wrap(err, "delete match")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, crerr.Wrap(err, "read deleted match rows")
	}
	return affected > 0, nil
}

func insertMatch(ctx context.Context, exec sqlx.QueryerContext, m match.Match) (match.Match, error) {
	query, args, err := qb.InsertModel(matchesTable, matchModelFrom(m), "RETURNING *")
	if err != nil {
		return match.Match{}, fmt.Errorf("build insert match query: %w", err)
	}

	var row matchTableModel
	if err := sqlx.GetContext(ctx, exec, &row, query, args...); err != nil {
		if constraint, ok := uniqueViolation(err); ok && constraint == constraintMatchChallenge {
			return match.Match{}, match.ErrChallengeHasMatch
		}
		return match.Match{}, crerr.Wrap(err, "insert match")
	}
	return row.toDomain(), nil
}

func matchConditions(filter match.Filter) []qb.Condition {
	conds := make([]qb.Condition, 0, 7)
	if filter.MemberID != 0 {
		conds = append(conds, qb.Or(
			qb.Eq("player1_id", filter.MemberID),
			qb.Eq("player2_id", filter.MemberID),
		))
	}
	if filter.ChallengeID != 0 {
		conds = append(conds, qb.Eq("challenge_id", filter.ChallengeID))
	}
	if len(filter.Statuses) > 0 {
		conds = append(conds, qb.In("status", toAnySlice(filter.Statuses)))
	}
	if filter.From != nil {
		conds = append(conds, qb.Gte("scheduled_at", filter.From.UTC()))
	}
	if filter.To != nil {
		conds = append(conds, qb.Lte("scheduled_at", filter.To.UTC()))
	}
	if filter.WinnerID != 0 {
		conds = append(conds, qb.Eq("winner_id", filter.WinnerID))
	}
	if filter.LoserID != 0 {
		conds = append(conds, qb.Eq("loser_id", filter.LoserID))
	}
	return conds
}
