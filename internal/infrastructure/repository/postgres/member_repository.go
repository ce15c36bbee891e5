package postgres

import (
	"context"
	"fmt"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/tennis-club/internal/domain/member"
	qb "github.com/riskibarqy/tennis-club/internal/platform/querybuilder"
)

const membersTable = "members"

type MemberRepository struct {
	db *sqlx.DB
}

func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) Create(ctx context.Context, m member.Member) (member.Member, error) {
	query, args, err := qb.InsertModel(membersTable, memberModelFrom(m), "RETURNING *")
	if err != nil {
		return member.Member{}, fmt.Errorf("build insert member query: %w", err)
	}

	var row memberTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return member.Member{}, memberWriteError("insert member", err)
	}
	return row.toDomain(), nil
}

func (r *MemberRepository) GetByID(ctx context.Context, id int64) (member.Member, bool, error) {
	return r.getOne(ctx, "id", qb.Eq("id", id))
}

func (r *MemberRepository) GetByEmail(ctx context.Context, email string) (member.Member, bool, error) {
	return r.getOne(ctx, "email", qb.Eq("email", member.NormalizeEmail(email)))
}

func (r *MemberRepository) getOne(ctx context.Context, by string, cond qb.Condition) (member.Member, bool, error) {
	query, args, err := qb.Select("*").From(membersTable).Where(cond).Limit(1).ToSQL()
	if err != nil {
		return member.Member{}, false, fmt.Errorf("build select member by %s query: %w", by, err)
	}

	var row memberTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return member.Member{}, false, nil
		}
		return member.Member{}, false, crerr.Wrapf(err, "select member by %s", by)
	}
	return row.toDomain(), true, nil
}

func (r *MemberRepository) List(ctx context.Context, filter member.Filter) ([]member.Member, int, error) {
	conds := memberConditions(filter)

	countQuery, countArgs, err := qb.Select("COUNT(*)").From(membersTable).Where(conds...).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count members query: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, crerr.Wrap(err, "count members")
	}

	query, args, err := qb.Select("*").From(membersTable).
		Where(conds...).
		OrderBy("id").
		Limit(filter.Limit).
		Offset(filter.Offset).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build select members query: %w", err)
	}

	var rows []memberTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, crerr.Wrap(err, "select members")
	}
	return membersFromRows(rows), total, nil
}

func (r *MemberRepository) ListByIDs(ctx context.Context, ids []int64) ([]member.Member, error) {
	if len(ids) == 0 {
		return []member.Member{}, nil
	}

	query, args, err := qb.Select("*").From(membersTable).
		Where(qb.In("id", toAnySlice(ids))).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select members by ids query: %w", err)
	}

	var rows []memberTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, crerr.Wrap(err, "select members by ids")
	}
	return membersFromRows(rows), nil
}

func (r *MemberRepository) Update(ctx context.Context, m member.Member) (member.Member, bool, error) {
	row := memberModelFrom(m)
	query, args, err := qb.Update(membersTable).
		Set("first_name", row.FirstName).
		Set("last_name", row.LastName).
		Set("user_name", row.UserName).
		Set("email", row.Email).
		Set("phone", row.Phone).
		Set("age", row.Age).
		Set("gender", row.Gender).
		Set("utr", row.UTR).
		Set("signature", row.Signature).
		Set("avatar_url", row.AvatarURL).
		Set("is_admin", row.IsAdmin).
		Set("updated_at", row.UpdatedAt).
		Where(qb.Eq("id", m.ID)).
		Suffix("RETURNING *").
		ToSQL()
	if err != nil {
		return member.Member{}, false, fmt.Errorf("build update member query: %w", err)
	}

	var updated memberTableModel
	if err := r.db.GetContext(ctx, &updated, query, args...); err != nil {
		if isNotFound(err) {
			return member.Member{}, false, nil
		}
		return member.Member{}, true, memberWriteError("update member", err)
	}
	return updated.toDomain(), true, nil
}

func (r *MemberRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, crerr.Wrap(err, "begin delete member tx")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	steps := []struct {
		name  string
		table string
		where qb.Condition
	}{
		{"matches", matchesTable, qb.Or(qb.Eq("player1_id", id), qb.Eq("player2_id", id))},
		{"challenges", challengesTable, qb.Or(qb.Eq("challenger_id", id), qb.Eq("challenged_id", id))},
	}
	for _, step := range steps {
		query, args, err := qb.DeleteFrom(step.table).Where(step.where).ToSQL()
		if err != nil {
			return false, fmt.Errorf("build delete member %s query: %w", step.name, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return false, crerr.Wrapf(err, "delete member %s", step.name)
		}
	}

	query, args, err := qb.DeleteFrom(membersTable).Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return false, fmt.Errorf("build delete member query: %w", err)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, crerr.Wrap(err, "delete member")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, crerr.Wrap(err, "read deleted member rows")
	}
	if affected == 0 {
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		return false, crerr.Wrap(err, "commit delete member tx")
	}
	return true, nil
}

func memberConditions(filter member.Filter) []qb.Condition {
	conds := make([]qb.Condition, 0, 8)
	if filter.ExcludeAdmins {
		conds = append(conds, qb.Eq("is_admin", false))
	}
	if filter.Gender != "" {
		conds = append(conds, qb.Eq("gender", string(filter.Gender)))
	}
	if filter.MinAge != nil {
		conds = append(conds, qb.Gte("age", *filter.MinAge))
	}
	if filter.MaxAge != nil {
		conds = append(conds, qb.Lte("age", *filter.MaxAge))
	}
	if filter.MinUTR != nil {
		conds = append(conds, qb.Gte("utr", *filter.MinUTR))
	}
	if filter.MaxUTR != nil {
		conds = append(conds, qb.Lte("utr", *filter.MaxUTR))
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := qb.LikePattern(term)
		conds = append(conds, qb.Or(
			qb.ILike("first_name", pattern),
			qb.ILike("last_name", pattern),
			qb.ILike("user_name", pattern),
			qb.ILike("email", pattern),
		))
	}
	return conds
}

func membersFromRows(rows []memberTableModel) []member.Member {
	out := make([]member.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}

func memberWriteError(op string, err error) error {
	if constraint, ok := uniqueViolation(err); ok {
		switch constraint {
		case constraintMemberEmail:
			return member.ErrDuplicateEmail
		case constraintMemberUserName:
			return member.ErrDuplicateUserName
		}
	}
	return crerr.Wrap(err, op)
}
