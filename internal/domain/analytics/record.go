package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/riskibarqy/tennis-club/internal/domain/match"
)

type RecordPoint struct {
	Date   time.Time
	Wins   int
	Losses int
}

// Record is a member's graded win/loss history.
type Record struct {
	Wins   int
	Losses int
	Total  int
	// WinRate is a percentage rounded to two decimals.
	WinRate float64
	History []RecordPoint
}

// MemberRecord walks the member's graded matches in date order and keeps
// running totals.
func MemberRecord(memberID int64, matches []match.Match) Record {
	graded := make([]match.Match, 0, len(matches))
	for _, m := range matches {
		if m.Status == match.StatusGraded && m.Involves(memberID) {
			graded = append(graded, m)
		}
	}
	sort.SliceStable(graded, func(i, j int) bool {
		if !graded[i].ScheduledAt.Equal(graded[j].ScheduledAt) {
			return graded[i].ScheduledAt.Before(graded[j].ScheduledAt)
		}
		return graded[i].ID < graded[j].ID
	})

	out := Record{History: make([]RecordPoint, 0, len(graded))}
	for _, m := range graded {
		switch {
		case m.WonBy(memberID):
			out.Wins++
		case m.LostBy(memberID):
			out.Losses++
		}
		out.History = append(out.History, RecordPoint{Date: m.ScheduledAt, Wins: out.Wins, Losses: out.Losses})
	}
	out.Total = out.Wins + out.Losses
	if out.Total > 0 {
		out.WinRate = math.Round(float64(out.Wins)/float64(out.Total)*10000) / 100
	}
	return out
}
