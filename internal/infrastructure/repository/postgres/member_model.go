package postgres

import (
	"time"

	"github.com/riskibarqy/tennis-club/internal/domain/member"
)

type memberTableModel struct {
	ID           int64     `db:"id,readonly"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	UserName     string    `db:"user_name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Phone        string    `db:"phone"`
	Age          int       `db:"age"`
	Gender       string    `db:"gender"`
	UTR          float64   `db:"utr"`
	Signature    string    `db:"signature"`
	AvatarURL    string    `db:"avatar_url"`
	IsAdmin      bool      `db:"is_admin"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func memberModelFrom(m member.Member) memberTableModel {
	return memberTableModel{
		ID:           m.ID,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		UserName:     m.UserName,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Phone:        m.Phone,
		Age:          m.Age,
		Gender:       string(m.Gender),
		UTR:          m.UTR,
		Signature:    m.Signature,
		AvatarURL:    m.AvatarURL,
		IsAdmin:      m.IsAdmin,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func (row memberTableModel) toDomain() member.Member {
	return member.Member{
		ID:           row.ID,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		UserName:     row.UserName,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Phone:        row.Phone,
		Age:          row.Age,
		Gender:       member.Gender(row.Gender),
		UTR:          row.UTR,
		Signature:    row.Signature,
		AvatarURL:    row.AvatarURL,
		IsAdmin:      row.IsAdmin,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
