package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/tennis-club/internal/domain/match"
)

type matchTableModel struct {
	ID          int64         `db:"id,readonly"`
	ChallengeID int64         `db:"challenge_id"`
	ScheduledAt time.Time     `db:"scheduled_at"`
	Status      string        `db:"status"`
	Player1ID   int64         `db:"player1_id"`
	Player2ID   int64         `db:"player2_id"`
	Set1P1      sql.NullInt64 `db:"set1_p1"`
	Set1P2      sql.NullInt64 `db:"set1_p2"`
	Set2P1      sql.NullInt64 `db:"set2_p1"`
	Set2P2      sql.NullInt64 `db:"set2_p2"`
	Set3P1      sql.NullInt64 `db:"set3_p1"`
	Set3P2      sql.NullInt64 `db:"set3_p2"`
	WinnerID    sql.NullInt64 `db:"winner_id"`
	LoserID     sql.NullInt64 `db:"loser_id"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

func matchModelFrom(m match.Match) matchTableModel {
	row := matchTableModel{
		ID:          m.ID,
		ChallengeID: m.ChallengeID,
		ScheduledAt: m.ScheduledAt,
		Status:      string(m.Status),
		Player1ID:   m.Player1ID,
		Player2ID:   m.Player2ID,
		WinnerID:    nullInt64(m.WinnerID),
		LoserID:     nullInt64(m.LoserID),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	for i, cols := range row.setColumns() {
		if i >= len(m.Sets) {
			break
		}
		*cols[0] = sql.NullInt64{Int64: int64(m.Sets[i].Player1), Valid: true}
		*cols[1] = sql.NullInt64{Int64: int64(m.Sets[i].Player2), Valid: true}
	}
	return row
}

func (row *matchTableModel) setColumns() [][2]*sql.NullInt64 {
	return [][2]*sql.NullInt64{
		{&row.Set1P1, &row.Set1P2},
		{&row.Set2P1, &row.Set2P2},
		{&row.Set3P1, &row.Set3P2},
	}
}

func (row matchTableModel) toDomain() match.Match {
	out := match.Match{
		ID:          row.ID,
		ChallengeID: row.ChallengeID,
		ScheduledAt: row.ScheduledAt,
		Status:      match.Status(row.Status),
		Player1ID:   row.Player1ID,
		Player2ID:   row.Player2ID,
		WinnerID:    int64Ptr(row.WinnerID),
		LoserID:     int64Ptr(row.LoserID),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	for _, cols := range row.setColumns() {
		if !cols[0].Valid || !cols[1].Valid {
			break
		}
		out.Sets = append(out.Sets, match.SetScore{Player1: int(cols[0].Int64), Player2: int(cols[1].Int64)})
	}
	return out
}

// setValues maps result sets onto the six set columns, nulling unused ones.
func setValues(sets []match.SetScore) map[string]any {
	names := [][2]string{{"set1_p1", "set1_p2"}, {"set2_p1", "set2_p2"}, {"set3_p1", "set3_p2"}}
	out := make(map[string]any, len(names)*2)
	for i, pair := range names {
		if i < len(sets) {
			out[pair[0]] = sets[i].Player1
			out[pair[1]] = sets[i].Player2
			continue
		}
		out[pair[0]] = nil
		out[pair[1]] = nil
	}
	return out
}
