package querybuilder

import (
	"testing"
	"time"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "user_name").
		From("members").
		Where(Eq("is_admin", false), Gte("utr", 5.5), Lte("utr", 8.5)).
		OrderBy("utr DESC", "id").
		Limit(10).
		Offset(20).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, user_name FROM members WHERE is_admin = $1 AND utr >= $2 AND utr <= $3 ORDER BY utr DESC, id LIMIT 10 OFFSET 20"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != false || args[1] != 5.5 || args[2] != 8.5 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_OrGroupAndIn(t *testing.T) {
	pattern := LikePattern("ann")
	query, args, err := Select("*").
		From("members").
		Where(
			Or(ILike("first_name", pattern), ILike("user_name", pattern)),
			In("gender", []any{"Male", "Female"}),
			IsNotNull("avatar_url"),
		).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT * FROM members WHERE (first_name ILIKE $1 OR user_name ILIKE $2) AND gender IN ($3, $4) AND avatar_url IS NOT NULL"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[0] != "%ann%" || args[3] != "Female" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_EmptyInIsFalse(t *testing.T) {
	query, args, err := Select("id").From("matches").Where(In("id", nil)).ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if query != "SELECT id FROM matches WHERE 1=0" || len(args) != 0 {
		t.Fatalf("unexpected query %q args %+v", query, args)
	}
}

func TestSelectBuilder_ExprPlaceholders(t *testing.T) {
	query, args, err := Select("id").
		From("challenges").
		Where(
			Expr("LEAST(challenger_id, challenged_id) = LEAST(?, ?)", int64(1), int64(2)),
			Eq("match_day", "2026-10-16"),
		).
		Suffix("FOR UPDATE").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM challenges WHERE LEAST(challenger_id, challenged_id) = LEAST($1, $2) AND match_day = $3 FOR UPDATE"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("challenges").
		Columns("challenger_id", "challenged_id").
		Values(int64(1), int64(2)).
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO challenges (challenger_id, challenged_id) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_RowWidthMismatch(t *testing.T) {
	_, _, err := InsertInto("members").Columns("a", "b").Values(1).ToSQL()
	if err == nil {
		t.Fatalf("expected error for mismatched row width")
	}
}

func TestUpdateBuilder_GuardedTransition(t *testing.T) {
	query, args, err := Update("challenges").
		Set("state", "Accepted").
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", int64(9)), Eq("state", "Waiting")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE challenges SET state = $1, updated_at = NOW() WHERE id = $2 AND state = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "Accepted" || args[2] != "Waiting" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder_RequiresWhere(t *testing.T) {
	if _, _, err := Update("matches").Set("status", "finished").ToSQL(); err == nil {
		t.Fatalf("expected error for unguarded update")
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("matches").
		Where(Or(Eq("player1_id", int64(3)), Eq("player2_id", int64(3)))).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM matches WHERE (player1_id = $1 OR player2_id = $2)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := DeleteFrom("matches").ToSQL(); err == nil {
		t.Fatalf("expected error for unguarded delete")
	}
}

func TestInsertModel_SkipsReadonly(t *testing.T) {
	type row struct {
		ID        int64     `db:"id,readonly"`
		UserName  string    `db:"user_name"`
		CreatedAt time.Time `db:"created_at"`
		ignored   string
		Skip      string `db:"-"`
	}

	created := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	query, args, err := InsertModel("members", row{ID: 5, UserName: "ana", CreatedAt: created, ignored: "x"}, "RETURNING id")
	if err != nil {
		t.Fatalf("build insert model: %v", err)
	}

	wantQuery := "INSERT INTO members (user_name, created_at) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "ana" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestLikePattern_EscapesWildcards(t *testing.T) {
	if got := LikePattern(`50%_off\`); got != `%50\%\_off\\%` {
		t.Fatalf("unexpected pattern: %s", got)
	}
}
