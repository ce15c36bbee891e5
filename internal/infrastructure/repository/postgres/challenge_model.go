package postgres

import (
	"time"

	"github.com/riskibarqy/tennis-club/internal/domain/challenge"
)

type challengeTableModel struct {
	ID           int64     `db:"id,readonly"`
	ChallengerID int64     `db:"challenger_id"`
	ChallengedID int64     `db:"challenged_id"`
	MatchAt      time.Time `db:"match_at"`
	MatchDay     time.Time `db:"match_day"`
	Notes        string    `db:"notes"`
	State        string    `db:"state"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func challengeModelFrom(c challenge.Challenge) challengeTableModel {
	return challengeTableModel{
		ID:           c.ID,
		ChallengerID: c.ChallengerID,
		ChallengedID: c.ChallengedID,
		MatchAt:      c.MatchAt,
		MatchDay:     dateOnly(c.MatchDay),
		Notes:        c.Notes,
		State:        string(c.State),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// toDomain places the stored DATE at midnight in loc, matching challenge.CalendarDay.
func (row challengeTableModel) toDomain(loc *time.Location) challenge.Challenge {
	return challenge.Challenge{
		ID:           row.ID,
		ChallengerID: row.ChallengerID,
		ChallengedID: row.ChallengedID,
		MatchAt:      row.MatchAt,
		MatchDay:     inZone(row.MatchDay, loc),
		Notes:        row.Notes,
		State:        challenge.State(row.State),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

// dateOnly keeps the calendar date of t for a DATE column, dropping its zone.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func inZone(day time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
}
