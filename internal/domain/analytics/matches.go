package analytics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/tennis-club/internal/domain/match"
)

type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
)

var periodDays = map[Period]int{
	PeriodWeek:    7,
	PeriodMonth:   30,
	PeriodQuarter: 90,
}

// ParsePeriod accepts a period name or its day count. Empty input means month.
func ParsePeriod(v string) (Period, error) {
	raw := strings.ToLower(strings.TrimSpace(v))
	if raw == "" {
		return PeriodMonth, nil
	}
	if _, ok := periodDays[Period(raw)]; ok {
		return Period(raw), nil
	}
	if days, err := strconv.Atoi(raw); err == nil {
		for p, d := range periodDays {
			if d == days {
				return p, nil
			}
		}
	}
	return "", fmt.Errorf("unknown period %q: use week, month, quarter, 7, 30 or 90", v)
}

func (p Period) Days() int {
	return periodDays[p]
}

type DailyCount struct {
	Date    string
	Matches int
}

type MatchStats struct {
	Period   Period
	Days     int
	Total    int
	Pending  int
	Finished int
	Graded   int
	Daily    []DailyCount
}

// SummarizeMatches counts matches scheduled in [now-days, now] by status and
// builds a zero-filled daily series of the last days calendar days in loc,
// oldest first, keyed "M/D".
func SummarizeMatches(matches []match.Match, period Period, now time.Time, loc *time.Location) MatchStats {
	if loc == nil {
		loc = time.UTC
	}
	days := period.Days()
	start := now.AddDate(0, 0, -days)

	out := MatchStats{Period: period, Days: days, Daily: make([]DailyCount, days)}
	index := make(map[string]int, days)
	localNow := now.In(loc)
	for i := 0; i < days; i++ {
		day := localNow.AddDate(0, 0, -(days - 1 - i))
		key := dayKey(day)
		out.Daily[i] = DailyCount{Date: key}
		index[key] = i
	}

	for _, m := range matches {
		if m.ScheduledAt.Before(start) || m.ScheduledAt.After(now) {
			continue
		}
		out.Total++
		switch m.Status {
		case match.StatusPending:
			out.Pending++
		case match.StatusFinished:
			out.Finished++
		case match.StatusGraded:
			out.Graded++
		}
		if i, ok := index[dayKey(m.ScheduledAt.In(loc))]; ok {
			out.Daily[i].Matches++
		}
	}
	return out
}

func dayKey(t time.Time) string {
	return fmt.Sprintf("%d/%d", int(t.Month()), t.Day())
}

type ActivityCount struct {
	MemberID int64
	Matches  int
}

// RankActivity credits both players of every match and orders members by
// match count descending, then id ascending.
func RankActivity(matches []match.Match) []ActivityCount {
	counts := make(map[int64]int)
	for _, m := range matches {
		counts[m.Player1ID]++
		counts[m.Player2ID]++
	}

	out := make([]ActivityCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, ActivityCount{MemberID: id, Matches: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Matches != out[j].Matches {
			return out[i].Matches > out[j].Matches
		}
		return out[i].MemberID < out[j].MemberID
	})
	return out
}
