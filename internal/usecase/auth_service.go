package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/tennis-club/internal/domain/member"
	"github.com/riskibarqy/tennis-club/internal/domain/user"
	"github.com/riskibarqy/tennis-club/internal/platform/logging"
	"github.com/riskibarqy/tennis-club/internal/platform/password"
)

const minPasswordLength = 6

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hashed, plain string) error
}

type AccessToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenManager issues and parses signed access tokens. Parse failures must wrap ErrUnauthorized.
type TokenManager interface {
	Issue(ctx context.Context, principal user.Principal) (AccessToken, error)
	Parse(ctx context.Context, token string) (user.Principal, error)
}

type RegisterInput struct {
	FirstName string
	LastName  string
	UserName  string
	Email     string
	Password  string
	Phone     string
	Age       int
	Gender    string
	UTR       float64
	Signature string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token  AccessToken
	Member member.Member
}

type AuthService struct {
	memberRepo member.Repository
	hasher     PasswordHasher
	tokens     TokenManager
	rollups    *Rollups
	logger     *logging.Logger
	now        func() time.Time
}

func NewAuthService(
	memberRepo member.Repository,
	hasher PasswordHasher,
	tokens TokenManager,
	rollups *Rollups,
	logger *logging.Logger,
) *AuthService {
	if logger == nil {
		logger = logging.Default()
	}

	return &AuthService{
		memberRepo: memberRepo,
		hasher:     hasher,
		tokens:     tokens,
		rollups:    rollups,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.Register")
	defer span.End()

	if len(input.Password) < minPasswordLength {
		return AuthResult{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	gender, err := member.ParseGender(input.Gender)
	if err != nil {
		return AuthResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := s.now().UTC()
	candidate := member.Member{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		UserName:  strings.TrimSpace(input.UserName),
		Email:     member.NormalizeEmail(input.Email),
		Phone:     strings.TrimSpace(input.Phone),
		Age:       input.Age,
		Gender:    gender,
		UTR:       input.UTR,
		Signature: strings.TrimSpace(input.Signature),
		CreatedAt: now,
		UpdatedAt: now,
	}
	candidate.AvatarURL = member.DefaultAvatarURL(candidate.UserName)
	if err := candidate.Validate(); err != nil {
		return AuthResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	candidate.PasswordHash, err = s.hasher.Hash(input.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.memberRepo.Create(ctx, candidate)
	if err != nil {
		return AuthResult{}, translateMemberWriteError(err)
	}
	s.rollups.Invalidate(ctx)

	s.logger.InfoContext(ctx, "member registered", "member_id", created.ID, "user_name", created.UserName)
	return s.issue(ctx, created)
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuthService.Login")
	defer span.End()

	email := member.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return AuthResult{}, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	found, exists, err := s.memberRepo.GetByEmail(ctx, email)
	if err != nil {
		return AuthResult{}, fmt.Errorf("get member by email: %w", err)
	}
	if !exists {
		return AuthResult{}, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	if err := s.hasher.Compare(found.PasswordHash, input.Password); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return AuthResult{}, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return AuthResult{}, fmt.Errorf("compare password: %w", err)
	}

	return s.issue(ctx, found)
}

func (s *AuthService) Me(ctx context.Context, principal user.Principal) (member.Member, error) {
	found, exists, err := s.memberRepo.GetByID(ctx, principal.MemberID)
	if err != nil {
		return member.Member{}, fmt.Errorf("get member by id: %w", err)
	}
	if !exists {
		return member.Member{}, fmt.Errorf("%w: member=%d", ErrNotFound, principal.MemberID)
	}
	return found, nil
}

// VerifyAccessToken parses token and reloads the member, so deleted members
// lose access and admin changes apply on the next request.
func (s *AuthService) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", ErrUnauthorized)
	}

	claimed, err := s.tokens.Parse(ctx, token)
	if err != nil {
		return user.Principal{}, err
	}

	found, exists, err := s.memberRepo.GetByID(ctx, claimed.MemberID)
	if err != nil {
		return user.Principal{}, fmt.Errorf("get member by id: %w", err)
	}
	if !exists {
		return user.Principal{}, fmt.Errorf("%w: member no longer exists", ErrUnauthorized)
	}

	return principalOf(found), nil
}

// EnsureAdmin creates the bootstrap administrator unless a member already
// owns email. The bool reports whether a member was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, plainPassword string) (bool, error) {
	email = member.NormalizeEmail(email)
	if email == "" || plainPassword == "" {
		return false, nil
	}

	if _, exists, err := s.memberRepo.GetByEmail(ctx, email); err != nil {
		return false, fmt.Errorf("get member by email: %w", err)
	} else if exists {
		return false, nil
	}

	hashed, err := s.hasher.Hash(plainPassword)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	now := s.now().UTC()
	admin := member.Member{
		FirstName:    "Club",
		LastName:     "Admin",
		UserName:     "admin",
		Email:        email,
		PasswordHash: hashed,
		Age:          30,
		Gender:       member.GenderOther,
		AvatarURL:    member.DefaultAvatarURL("admin"),
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.memberRepo.Create(ctx, admin)
	if err != nil {
		return false, translateMemberWriteError(err)
	}
	s.rollups.Invalidate(ctx)

	s.logger.InfoContext(ctx, "bootstrap admin created", "member_id", created.ID, "email", email)
	return true, nil
}

func (s *AuthService) issue(ctx context.Context, m member.Member) (AuthResult, error) {
	token, err := s.tokens.Issue(ctx, principalOf(m))
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue access token: %w", err)
	}
	return AuthResult{Token: token, Member: m}, nil
}

func principalOf(m member.Member) user.Principal {
	return user.Principal{MemberID: m.ID, UserName: m.UserName, IsAdmin: m.IsAdmin}
}

func translateMemberWriteError(err error) error {
	switch {
	case errors.Is(err, member.ErrDuplicateEmail), errors.Is(err, member.ErrDuplicateUserName):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return fmt.Errorf("save member: %w", err)
	}
}
