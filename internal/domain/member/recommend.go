package member

import (
	"math"
	"sort"
)

const (
	DefaultRecommendWindow = 1.5
	DefaultRecommendLimit  = 5
)

// Candidate is a recommended opponent and its rating distance from the member.
type Candidate struct {
	Member   Member
	Distance float64
}

// RankOpponents returns non-admin members other than self whose UTR lies
// within window of self.UTR, closest first with ties broken by ascending id.
func RankOpponents(self Member, pool []Member, window float64, limit int) []Candidate {
	if limit <= 0 || window < 0 {
		return []Candidate{}
	}

	maxDistance := hundredths(window)
	out := make([]Candidate, 0, len(pool))
	for _, m := range pool {
		if m.ID == self.ID || m.IsAdmin {
			continue
		}
		d := hundredths(math.Abs(m.UTR - self.UTR))
		if d > maxDistance {
			continue
		}
		out = append(out, Candidate{Member: m, Distance: float64(d) / 100})
	}

	sort.SliceStable(out, func(i, j int) bool {
		di, dj := hundredths(out[i].Distance), hundredths(out[j].Distance)
		if di != dj {
			return di < dj
		}
		return out[i].Member.ID < out[j].Member.ID
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// hundredths rounds a rating distance to the two-decimal precision UTR is stored with.
func hundredths(v float64) int64 {
	return int64(math.Round(v * 100))
}
