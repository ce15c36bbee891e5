package httpapi

import (
	"time"

	"github.com/riskibarqy/tennis-club/internal/domain/analytics"
	"github.com/riskibarqy/tennis-club/internal/domain/match"
	"github.com/riskibarqy/tennis-club/internal/domain/member"
	"github.com/riskibarqy/tennis-club/internal/usecase"
)

const dateLayout = "2006-01-02"

type registerRequest struct {
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name" validate:"required,max=100"`
	UserName  string  `json:"user_name" validate:"required,max=50"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=6,max=72"`
	Phone     string  `json:"phone" validate:"omitempty,max=30"`
	Age       int     `json:"age" validate:"required,min=1,max=120"`
	Gender    string  `json:"gender" validate:"required"`
	UTR       float64 `json:"utr" validate:"min=0,max=16"`
	Signature string  `json:"signature" validate:"omitempty,max=255"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateMemberRequest struct {
	FirstName *string  `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string  `json:"last_name" validate:"omitempty,min=1,max=100"`
	UserName  *string  `json:"user_name" validate:"omitempty,min=1,max=50"`
	Email     *string  `json:"email" validate:"omitempty,email"`
	Phone     *string  `json:"phone" validate:"omitempty,max=30"`
	Age       *int     `json:"age" validate:"omitempty,min=1,max=120"`
	Gender    *string  `json:"gender"`
	UTR       *float64 `json:"utr" validate:"omitempty,min=0,max=16"`
	Signature *string  `json:"signature" validate:"omitempty,max=255"`
}

type createChallengeRequest struct {
	ChallengedID int64     `json:"challenged_id" validate:"required,gt=0"`
	MatchAt      time.Time `json:"match_at" validate:"required"`
	Notes        string    `json:"notes" validate:"max=100"`
}

// setScoreRequest needs both games counts; a missing one is not read as zero.
type setScoreRequest struct {
	Player1 *int `json:"player1" validate:"required,min=0,max=7"`
	Player2 *int `json:"player2" validate:"required,min=0,max=7"`
}

type scoresRequest struct {
	Set1 *setScoreRequest `json:"set1" validate:"required"`
	Set2 *setScoreRequest `json:"set2"`
	Set3 *setScoreRequest `json:"set3"`
}

type recordMatchRequest struct {
	ChallengeID int64 `json:"challenge_id" validate:"required,gt=0"`
	scoresRequest
}

func (r scoresRequest) toScores() match.Scores {
	return match.Scores{Set1: r.Set1.toSet(), Set2: r.Set2.toSet(), Set3: r.Set3.toSet()}
}

func (r *setScoreRequest) toSet() *match.SetScore {
	if r == nil {
		return nil
	}
	if r.Player1 == nil || r.Player2 == nil {
		return nil
	}
	return &match.SetScore{Player1: *r.Player1, Player2: *r.Player2}
}

type memberDTO struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	UserName  string    `json:"user_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Age       int       `json:"age"`
	Gender    string    `json:"gender"`
	UTR       float64   `json:"utr"`
	Signature string    `json:"signature"`
	AvatarURL string    `json:"avatar_url"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type memberSummaryDTO struct {
	ID        int64   `json:"id"`
	UserName  string  `json:"user_name"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	AvatarURL string  `json:"avatar_url"`
	UTR       float64 `json:"utr"`
}

type authDTO struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Member    memberDTO `json:"member"`
}

type memberPageDTO struct {
	Items      []memberDTO `json:"items"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

type recordPointDTO struct {
	Date   string `json:"date"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

type memberStatsDTO struct {
	MemberID int64            `json:"member_id"`
	Wins     int              `json:"wins"`
	Losses   int              `json:"losses"`
	Total    int              `json:"total"`
	WinRate  float64          `json:"win_rate"`
	History  []recordPointDTO `json:"history"`
}

type recommendationDTO struct {
	Member      memberSummaryDTO `json:"member"`
	UTRDistance float64          `json:"utr_distance"`
}

type challengeDTO struct {
	ID         int64            `json:"id"`
	Challenger memberSummaryDTO `json:"challenger"`
	Challenged memberSummaryDTO `json:"challenged"`
	MatchAt    time.Time        `json:"match_at"`
	MatchDay   string           `json:"match_day"`
	Notes      string           `json:"notes"`
	State      string           `json:"state"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

type memberChallengesDTO struct {
	Received []challengeDTO `json:"received"`
	Sent     []challengeDTO `json:"sent"`
}

type acceptedChallengeDTO struct {
	Challenge challengeDTO `json:"challenge"`
	MatchID   int64        `json:"match_id"`
}

type setScoreDTO struct {
	Player1 int `json:"player1"`
	Player2 int `json:"player2"`
}

type matchDTO struct {
	ID          int64            `json:"id"`
	ChallengeID int64            `json:"challenge_id"`
	ScheduledAt time.Time        `json:"scheduled_at"`
	Status      string           `json:"status"`
	Player1     memberSummaryDTO `json:"player1"`
	Player2     memberSummaryDTO `json:"player2"`
	Sets        []setScoreDTO    `json:"sets"`
	SetsWon     setScoreDTO      `json:"sets_won"`
	WinnerID    *int64           `json:"winner_id"`
	LoserID     *int64           `json:"loser_id"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type sweepDTO struct {
	Updated int `json:"updated"`
}

type memberAnalyticsDTO struct {
	TotalMembers   int            `json:"total_members"`
	AdminMembers   int            `json:"admin_members"`
	RegularMembers int            `json:"regular_members"`
	Gender         map[string]int `json:"gender"`
	UTR            map[string]int `json:"utr"`
	Age            map[string]int `json:"age"`
	AverageUTR     float64        `json:"average_utr"`
	AverageAge     int            `json:"average_age"`
}

type dailyCountDTO struct {
	Date    string `json:"date"`
	Matches int    `json:"matches"`
}

type matchStatsDTO struct {
	Period   string          `json:"period"`
	Days     int             `json:"days"`
	Total    int             `json:"total"`
	Pending  int             `json:"pending"`
	Finished int             `json:"finished"`
	Graded   int             `json:"graded"`
	Daily    []dailyCountDTO `json:"daily"`
}

type activeMemberDTO struct {
	Member  memberSummaryDTO `json:"member"`
	Matches int              `json:"matches"`
}

type overviewDTO struct {
	Members    memberAnalyticsDTO `json:"members"`
	Matches    matchStatsDTO      `json:"matches"`
	MostActive []activeMemberDTO  `json:"most_active"`
}

func memberToDTO(m member.Member) memberDTO {
	return memberDTO{
		ID:        m.ID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		UserName:  m.UserName,
		Email:     m.Email,
		Phone:     m.Phone,
		Age:       m.Age,
		Gender:    string(m.Gender),
		UTR:       m.UTR,
		Signature: m.Signature,
		AvatarURL: m.AvatarURL,
		IsAdmin:   m.IsAdmin,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func membersToDTO(items []member.Member) []memberDTO {
	out := make([]memberDTO, 0, len(items))
	for _, m := range items {
		out = append(out, memberToDTO(m))
	}
	return out
}

func summaryToDTO(s member.Summary) memberSummaryDTO {
	return memberSummaryDTO{
		ID:        s.ID,
		UserName:  s.UserName,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		AvatarURL: s.AvatarURL,
		UTR:       s.UTR,
	}
}

func authToDTO(v usecase.AuthResult) authDTO {
	return authDTO{
		Token:     v.Token.Value,
		ExpiresAt: v.Token.ExpiresAt,
		Member:    memberToDTO(v.Member),
	}
}

func statsToDTO(memberID int64, r analytics.Record) memberStatsDTO {
	history := make([]recordPointDTO, 0, len(r.History))
	for _, p := range r.History {
		history = append(history, recordPointDTO{
			Date:   p.Date.Format(dateLayout),
			Wins:   p.Wins,
			Losses: p.Losses,
		})
	}
	return memberStatsDTO{
		MemberID: memberID,
		Wins:     r.Wins,
		Losses:   r.Losses,
		Total:    r.Total,
		WinRate:  r.WinRate,
		History:  history,
	}
}

func challengeToDTO(v usecase.ChallengeView) challengeDTO {
	c := v.Challenge
	return challengeDTO{
		ID:         c.ID,
		Challenger: summaryToDTO(v.Challenger),
		Challenged: summaryToDTO(v.Challenged),
		MatchAt:    c.MatchAt,
		MatchDay:   c.MatchDay.Format(dateLayout),
		Notes:      c.Notes,
		State:      string(c.State),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func challengesToDTO(items []usecase.ChallengeView) []challengeDTO {
	out := make([]challengeDTO, 0, len(items))
	for _, v := range items {
		out = append(out, challengeToDTO(v))
	}
	return out
}

func matchToDTO(v usecase.MatchView) matchDTO {
	m := v.Match
	sets := make([]setScoreDTO, 0, len(m.Sets))
	for _, s := range m.Sets {
		sets = append(sets, setScoreDTO{Player1: s.Player1, Player2: s.Player2})
	}
	return matchDTO{
		ID:          m.ID,
		ChallengeID: m.ChallengeID,
		ScheduledAt: m.ScheduledAt,
		Status:      string(m.Status),
		Player1:     summaryToDTO(v.Player1),
		Player2:     summaryToDTO(v.Player2),
		Sets:        sets,
		SetsWon:     setScoreDTO{Player1: v.Tally.Player1, Player2: v.Tally.Player2},
		WinnerID:    m.WinnerID,
		LoserID:     m.LoserID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func matchesToDTO(items []usecase.MatchView) []matchDTO {
	out := make([]matchDTO, 0, len(items))
	for _, v := range items {
		out = append(out, matchToDTO(v))
	}
	return out
}

func memberAnalyticsToDTO(v analytics.MemberAnalytics) memberAnalyticsDTO {
	return memberAnalyticsDTO{
		TotalMembers:   v.TotalMembers,
		AdminMembers:   v.AdminMembers,
		RegularMembers: v.RegularMembers,
		Gender: map[string]int{
			string(member.GenderMale):   v.Gender.Male,
			string(member.GenderFemale): v.Gender.Female,
			string(member.GenderOther):  v.Gender.Other,
		},
		UTR: map[string]int{
			"low":  v.UTR.Low,
			"mid":  v.UTR.Mid,
			"high": v.UTR.High,
		},
		Age: map[string]int{
			"child": v.Age.Child,
			"teen":  v.Age.Teen,
			"adult": v.Age.Adult,
			"elder": v.Age.Elder,
		},
		AverageUTR: v.AverageUTR,
		AverageAge: v.AverageAge,
	}
}

func matchStatsToDTO(v analytics.MatchStats) matchStatsDTO {
	daily := make([]dailyCountDTO, 0, len(v.Daily))
	for _, d := range v.Daily {
		daily = append(daily, dailyCountDTO{Date: d.Date, Matches: d.Matches})
	}
	return matchStatsDTO{
		Period:   string(v.Period),
		Days:     v.Days,
		Total:    v.Total,
		Pending:  v.Pending,
		Finished: v.Finished,
		Graded:   v.Graded,
		Daily:    daily,
	}
}

func activeMembersToDTO(items []usecase.ActiveMember) []activeMemberDTO {
	out := make([]activeMemberDTO, 0, len(items))
	for _, a := range items {
		out = append(out, activeMemberDTO{Member: summaryToDTO(a.Member), Matches: a.Matches})
	}
	return out
}
