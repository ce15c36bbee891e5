package jwt

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/riskibarqy/tennis-club/internal/domain/user"
	"github.com/riskibarqy/tennis-club/internal/usecase"
)

// Claims carries the member identity inside an HS256 access token.
type Claims struct {
	gojwt.RegisteredClaims
	UserName string `json:"user_name"`
	Admin    bool   `json:"admin"`
}

type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret, issuer string, ttl time.Duration) (*Manager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("jwt secret cannot be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt ttl must be > 0")
	}

	return &Manager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (m *Manager) Issue(_ context.Context, principal user.Principal) (usecase.AccessToken, error) {
	now := m.now().UTC()
	expiresAt := now.Add(m.ttl)

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   strconv.FormatInt(principal.MemberID, 10),
			Issuer:    m.issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(expiresAt),
		},
		UserName: principal.UserName,
		Admin:    principal.IsAdmin,
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return usecase.AccessToken{}, fmt.Errorf("sign access token: %w", err)
	}

	return usecase.AccessToken{Value: signed, ExpiresAt: expiresAt}, nil
}

func (m *Manager) Parse(_ context.Context, raw string) (user.Principal, error) {
	claims := &Claims{}
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithTimeFunc(m.now),
		gojwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, gojwt.WithIssuer(m.issuer))
	}

	token, err := gojwt.ParseWithClaims(raw, claims, func(*gojwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: %v", usecase.ErrUnauthorized, err)
	}
	if !token.Valid {
		return user.Principal{}, fmt.Errorf("%w: invalid token", usecase.ErrUnauthorized)
	}

	memberID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || memberID <= 0 {
		return user.Principal{}, fmt.Errorf("%w: invalid token subject", usecase.ErrUnauthorized)
	}

	return user.Principal{
		MemberID: memberID,
		UserName: claims.UserName,
		IsAdmin:  claims.Admin,
	}, nil
}
