package member

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

const (
	MinUTR = 0.0
	MaxUTR = 16.0

	MinAge = 1
	MaxAge = 120

	MaxSignatureLength = 255
)

var (
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUserName = errors.New("username already taken")
)

func ParseGender(v string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "male":
		return GenderMale, nil
	case "female":
		return GenderFemale, nil
	case "other":
		return GenderOther, nil
	default:
		return "", fmt.Errorf("unknown gender %q", v)
	}
}

// Member is a club member profile. PasswordHash never leaves the service layer.
type Member struct {
	ID           int64
	FirstName    string
	LastName     string
	UserName     string
	Email        string
	PasswordHash string
	Phone        string
	Age          int
	Gender       Gender
	UTR          float64
	Signature    string
	AvatarURL    string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (m Member) Validate() error {
	if strings.TrimSpace(m.FirstName) == "" {
		return fmt.Errorf("first name is required")
	}
	if strings.TrimSpace(m.LastName) == "" {
		return fmt.Errorf("last name is required")
	}
	if strings.TrimSpace(m.UserName) == "" {
		return fmt.Errorf("username is required")
	}
	if _, err := mail.ParseAddress(m.Email); err != nil {
		return fmt.Errorf("email %q is invalid", m.Email)
	}
	if m.Age < MinAge || m.Age > MaxAge {
		return fmt.Errorf("age must be between %d and %d", MinAge, MaxAge)
	}
	if _, err := ParseGender(string(m.Gender)); err != nil {
		return err
	}
	if m.UTR < MinUTR || m.UTR > MaxUTR {
		return fmt.Errorf("utr must be between %.0f and %.0f", MinUTR, MaxUTR)
	}
	if len(m.Signature) > MaxSignatureLength {
		return fmt.Errorf("signature must be at most %d characters", MaxSignatureLength)
	}
	return nil
}

func (m Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

func (m Member) Summary() Summary {
	return Summary{
		ID:        m.ID,
		UserName:  m.UserName,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		AvatarURL: m.AvatarURL,
		UTR:       m.UTR,
	}
}

// Summary is the public slice of a member attached to challenges and matches.
type Summary struct {
	ID        int64
	UserName  string
	FirstName string
	LastName  string
	AvatarURL string
	UTR       float64
}

// Update enumerates the profile fields that may change after registration.
// Nil fields are left untouched.
type Update struct {
	FirstName *string
	LastName  *string
	UserName  *string
	Email     *string
	Phone     *string
	Age       *int
	Gender    *Gender
	UTR       *float64
	Signature *string
}

func (u Update) IsEmpty() bool {
	return u.FirstName == nil && u.LastName == nil && u.UserName == nil && u.Email == nil &&
		u.Phone == nil && u.Age == nil && u.Gender == nil && u.UTR == nil && u.Signature == nil
}

// Apply returns m with the update merged in. The result is not validated.
func (u Update) Apply(m Member) Member {
	if u.FirstName != nil {
		m.FirstName = strings.TrimSpace(*u.FirstName)
	}
	if u.LastName != nil {
		m.LastName = strings.TrimSpace(*u.LastName)
	}
	if u.UserName != nil {
		m.UserName = strings.TrimSpace(*u.UserName)
	}
	if u.Email != nil {
		m.Email = NormalizeEmail(*u.Email)
	}
	if u.Phone != nil {
		m.Phone = strings.TrimSpace(*u.Phone)
	}
	if u.Age != nil {
		m.Age = *u.Age
	}
	if u.Gender != nil {
		m.Gender = *u.Gender
	}
	if u.UTR != nil {
		m.UTR = *u.UTR
	}
	if u.Signature != nil {
		m.Signature = strings.TrimSpace(*u.Signature)
	}
	return m
}

func NormalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// DefaultAvatarURL is the generated avatar used until a member uploads one.
func DefaultAvatarURL(userName string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + userName
}

// Filter narrows member listings. Zero values mean "no constraint".
type Filter struct {
	Search        string
	Gender        Gender
	MinAge        *int
	MaxAge        *int
	MinUTR        *float64
	MaxUTR        *float64
	ExcludeAdmins bool
	Limit         int
	Offset        int
}

func (f Filter) Matches(m Member) bool {
	if f.ExcludeAdmins && m.IsAdmin {
		return false
	}
	if f.Gender != "" && m.Gender != f.Gender {
		return false
	}
	if f.MinAge != nil && m.Age < *f.MinAge {
		return false
	}
	if f.MaxAge != nil && m.Age > *f.MaxAge {
		return false
	}
	if f.MinUTR != nil && m.UTR < *f.MinUTR {
		return false
	}
	if f.MaxUTR != nil && m.UTR > *f.MaxUTR {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		haystack := []string{m.FirstName, m.LastName, m.UserName, m.Email}
		for _, h := range haystack {
			if strings.Contains(strings.ToLower(h), term) {
				return true
			}
		}
		return false
	}
	return true
}
