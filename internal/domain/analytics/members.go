package analytics

import (
	"math"

	"github.com/riskibarqy/tennis-club/internal/domain/member"
)

// UTR bucket boundaries: low [0,5), mid [5,9), high [9,∞).
const (
	utrMidFloor  = 5.0
	utrHighFloor = 9.0
)

// Age bucket boundaries: child [0,13), teen [13,19), adult [19,51), elder [51,∞).
const (
	ageTeenFloor  = 13
	ageAdultFloor = 19
	ageElderFloor = 51
)

type GenderCounts struct {
	Male   int
	Female int
	Other  int
}

type UTRBuckets struct {
	Low  int
	Mid  int
	High int
}

func (b UTRBuckets) Total() int { return b.Low + b.Mid + b.High }

type AgeBuckets struct {
	Child int
	Teen  int
	Adult int
	Elder int
}

func (b AgeBuckets) Total() int { return b.Child + b.Teen + b.Adult + b.Elder }

type MemberAnalytics struct {
	TotalMembers   int
	AdminMembers   int
	RegularMembers int
	Gender         GenderCounts
	UTR            UTRBuckets
	Age            AgeBuckets
	// AverageUTR is rounded to two decimals.
	AverageUTR float64
	// AverageAge is truncated toward zero.
	AverageAge int
}

func SummarizeMembers(members []member.Member) MemberAnalytics {
	var out MemberAnalytics
	var utrSum float64
	var ageSum int

	for _, m := range members {
		out.TotalMembers++
		if m.IsAdmin {
			out.AdminMembers++
		} else {
			out.RegularMembers++
		}

		switch m.Gender {
		case member.GenderMale:
			out.Gender.Male++
		case member.GenderFemale:
			out.Gender.Female++
		default:
			out.Gender.Other++
		}

		switch {
		case m.UTR < utrMidFloor:
			out.UTR.Low++
		case m.UTR < utrHighFloor:
			out.UTR.Mid++
		default:
			out.UTR.High++
		}

		switch {
		case m.Age < ageTeenFloor:
			out.Age.Child++
		case m.Age < ageAdultFloor:
			out.Age.Teen++
		case m.Age < ageElderFloor:
			out.Age.Adult++
		default:
			out.Age.Elder++
		}

		utrSum += m.UTR
		ageSum += m.Age
	}

	if out.TotalMembers > 0 {
		out.AverageUTR = math.Round(utrSum/float64(out.TotalMembers)*100) / 100
		out.AverageAge = ageSum / out.TotalMembers
	}
	return out
}
