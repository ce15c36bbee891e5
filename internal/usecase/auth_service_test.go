package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/tennis-club/internal/domain/member"
)

func TestAuthService_RegisterLoginVerify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	registered, err := env.auth.Register(ctx, RegisterInput{
		FirstName: "Ana", LastName: "Ivanova", UserName: "ana", Email: " Ana@Club.Test ",
		Password: "secret1", Phone: "555", Age: 28, Gender: "female", UTR: 5,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if registered.Member.Email != "ana@club.test" || registered.Member.AvatarURL != member.DefaultAvatarURL("ana") {
		t.Fatalf("unexpected member: %+v", registered.Member)
	}
	if registered.Member.PasswordHash == "" || registered.Member.PasswordHash == "secret1" {
		t.Fatalf("password must be stored hashed")
	}

	loggedIn, err := env.auth.Login(ctx, LoginInput{Email: "ANA@club.test", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	principal, err := env.auth.VerifyAccessToken(ctx, loggedIn.Token.Value)
	if err != nil || principal.MemberID != registered.Member.ID || principal.IsAdmin {
		t.Fatalf("verify: %+v err=%v", principal, err)
	}

	if _, err := env.auth.Login(ctx, LoginInput{Email: "ana@club.test", Password: "wrong-pass"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("wrong password should be unauthorized, got %v", err)
	}
	if _, err := env.auth.Login(ctx, LoginInput{Email: "nobody@club.test", Password: "secret1"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unknown email should be unauthorized, got %v", err)
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "ana", 5)

	base := RegisterInput{FirstName: "Ben", LastName: "B", UserName: "ben", Email: "ben@club.test", Password: "secret1", Age: 30, Gender: "Male", UTR: 6}
	cases := []struct {
		name   string
		mutate func(*RegisterInput)
		want   error
	}{
		{"short password", func(in *RegisterInput) { in.Password = "12345" }, ErrInvalidInput},
		{"bad gender", func(in *RegisterInput) { in.Gender = "unknown" }, ErrInvalidInput},
		{"utr too high", func(in *RegisterInput) { in.UTR = 16.5 }, ErrInvalidInput},
		{"age zero", func(in *RegisterInput) { in.Age = 0 }, ErrInvalidInput},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, ErrInvalidInput},
		{"taken username", func(in *RegisterInput) { in.UserName = "ana" }, ErrConflict},
		{"taken email", func(in *RegisterInput) { in.Email = "ana@club.test" }, ErrConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := base
			tc.mutate(&input)
			if _, err := env.auth.Register(ctx, input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestAuthService_VerifyRejectsDeletedMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "ana", 5)
	admin := env.admin(t)

	if err := env.member.Delete(ctx, admin, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.auth.VerifyAccessToken(ctx, "token-1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for deleted member, got %v", err)
	}
	if _, err := env.auth.VerifyAccessToken(ctx, "garbage"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for malformed token, got %v", err)
	}
}

func TestAuthService_EnsureAdminIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.auth.EnsureAdmin(ctx, "root@club.test", "rootpass")
	if err != nil || !created {
		t.Fatalf("first ensure: created=%v err=%v", created, err)
	}
	created, err = env.auth.EnsureAdmin(ctx, "ROOT@club.test", "rootpass")
	if err != nil || created {
		t.Fatalf("second ensure: created=%v err=%v", created, err)
	}
	if created, _ := env.auth.EnsureAdmin(ctx, "", ""); created {
		t.Fatalf("empty credentials must be ignored")
	}
}
