package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/tennis-club/internal/domain/analytics"
	"github.com/riskibarqy/tennis-club/internal/domain/match"
	"github.com/riskibarqy/tennis-club/internal/domain/member"
	"github.com/riskibarqy/tennis-club/internal/domain/user"
	"github.com/riskibarqy/tennis-club/internal/platform/logging"
	"github.com/riskibarqy/tennis-club/internal/platform/resilience"
)

const (
	defaultMemberPageSize = 20
	maxMemberPageSize     = 100
	defaultTopPlayers     = 5
	maxTopPlayers         = 50
	maxRecommendLimit     = 50
)

var allowedAvatarTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// AvatarObject is an avatar image ready to be written to object storage.
type AvatarObject struct {
	UserName    string
	ContentType string
	Extension   string
	Size        int64
	Body        io.Reader
}

// AvatarStore persists avatar images and returns their public URL.
type AvatarStore interface {
	PutAvatar(ctx context.Context, object AvatarObject) (string, error)
}

type ListMembersInput struct {
	Search        string
	Gender        string
	MinAge        *int
	MaxAge        *int
	MinUTR        *float64
	MaxUTR        *float64
	ExcludeAdmins bool
	Page          int
	Limit         int
}

type MemberPage struct {
	Items      []member.Member
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

type UploadAvatarInput struct {
	ContentType string
	Size        int64
	Body        io.Reader
}

type MemberService struct {
	memberRepo     member.Repository
	matchRepo      match.Repository
	avatars        AvatarStore
	maxAvatarBytes int64
	rollups        *Rollups
	logger         *logging.Logger
	now            func() time.Time
}

func NewMemberService(
	memberRepo member.Repository,
	matchRepo match.Repository,
	avatars AvatarStore,
	maxAvatarBytes int64,
	rollups *Rollups,
	logger *logging.Logger,
) *MemberService {
	if logger == nil {
		logger = logging.Default()
	}

	return &MemberService{
		memberRepo:     memberRepo,
		matchRepo:      matchRepo,
		avatars:        avatars,
		maxAvatarBytes: maxAvatarBytes,
		rollups:        rollups,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *MemberService) List(ctx context.Context, input ListMembersInput) (MemberPage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MemberService.List")
	defer span.End()

	page := input.Page
	if page == 0 {
		page = 1
	}
	limit := input.Limit
	if limit == 0 {
		limit = defaultMemberPageSize
	}
	if page < 1 {
		return MemberPage{}, fmt.Errorf("%w: page must be >= 1", ErrInvalidInput)
	}
	if limit < 1 || limit > maxMemberPageSize {
		return MemberPage{}, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, maxMemberPageSize)
	}

	filter := member.Filter{
		Search:        strings.TrimSpace(input.Search),
		MinAge:        input.MinAge,
		MaxAge:        input.MaxAge,
		MinUTR:        input.MinUTR,
		MaxUTR:        input.MaxUTR,
		ExcludeAdmins: input.ExcludeAdmins,
		Limit:         limit,
		Offset:        (page - 1) * limit,
	}
	if strings.TrimSpace(input.Gender) != "" {
		gender, err := member.ParseGender(input.Gender)
		if err != nil {
			return MemberPage{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		filter.Gender = gender
	}

	items, total, err := s.memberRepo.List(ctx, filter)
	if err != nil {
		return MemberPage{}, fmt.Errorf("list members: %w", err)
	}

	return MemberPage{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

func (s *MemberService) Get(ctx context.Context, id int64) (member.Member, error) {
	found, exists, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		return member.Member{}, fmt.Errorf("get member by id: %w", err)
	}
	if !exists {
		return member.Member{}, fmt.Errorf("%w: member=%d", ErrNotFound, id)
	}
	return found, nil
}

// Update applies a profile edit. Members may edit themselves; only admins
// may edit others or change a UTR rating.
func (s *MemberService) Update(ctx context.Context, actor user.Principal, id int64, update member.Update) (member.Member, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MemberService.Update", attribute.Int64("member_id", id))
	defer span.End()

	if !actor.CanActOn(id) {
		return member.Member{}, fmt.Errorf("%w: cannot edit another member's profile", ErrForbidden)
	}
	if update.UTR != nil && !actor.IsAdmin {
		return member.Member{}, fmt.Errorf("%w: only admins can change utr", ErrForbidden)
	}
	if update.IsEmpty() {
		return member.Member{}, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return member.Member{}, err
	}

	next := update.Apply(current)
	if err := next.Validate(); err != nil {
		return member.Member{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	next.UpdatedAt = s.now().UTC()

	saved, exists, err := s.memberRepo.Update(ctx, next)
	if err != nil {
		return member.Member{}, translateMemberWriteError(err)
	}
	if !exists {
		return member.Member{}, fmt.Errorf("%w: member=%d", ErrNotFound, id)
	}
	s.rollups.Invalidate(ctx)

	return saved, nil
}

// Delete removes a non-admin member together with their matches and challenges.
func (s *MemberService) Delete(ctx context.Context, actor user.Principal, id int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MemberService.Delete", attribute.Int64("member_id", id))
	defer span.End()

	if !actor.IsAdmin {
		return fmt.Errorf("%w: admin access required", ErrForbidden)
	}

	target, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if target.IsAdmin {
		return fmt.Errorf("%w: admin members cannot be deleted", ErrForbidden)
	}

	deleted, err := s.memberRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: member=%d", ErrNotFound, id)
	}
	s.rollups.Invalidate(ctx)

	s.logger.InfoContext(ctx, "member deleted", "member_id", id, "actor_id", actor.MemberID)
	return nil
}

func (s *MemberService) Stats(ctx context.Context, id int64) (analytics.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MemberService.Stats", attribute.Int64("member_id", id))
	defer span.End()

	if _, err := s.Get(ctx, id); err != nil {
		return analytics.Record{}, err
	}

	graded, err := s.matchRepo.List(ctx, match.Filter{MemberID: id, Statuses: []match.Status{match.StatusGraded}})
	if err != nil {
		return analytics.Record{}, fmt.Errorf("list graded matches: %w", err)
	}
	return analytics.MemberRecord(id, graded), nil
}

// TopPlayers returns non-admin members by UTR descending, then id ascending.
func (s *MemberService) TopPlayers(ctx context.Context, limit int) ([]member.Member, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MemberService.TopPlayers")
	defer span.End()

	if limit == 0 {
		limit = defaultTopPlayers
	}
	if limit < 1 || limit > maxTopPlayers {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, maxTopPlayers)
	}

	return s.rollups.topPlayers(ctx, strconv.Itoa(limit), func(ctx context.Context) ([]member.Member, error) {
		pool, _, err := s.memberRepo.List(ctx, member.Filter{ExcludeAdmins: true})
		if err != nil {
			return nil, fmt.Errorf("list members: %w", err)
		}
		sort.SliceStable(pool, func(i, j int) bool {
			if pool[i].UTR != pool[j].UTR {
				return pool[i].UTR > pool[j].UTR
			}
			return pool[i].ID < pool[j].ID
		})
		if len(pool) > limit {
			pool = pool[:limit]
		}
		return pool, nil
	})
}

// Recommend ranks opponents for id by UTR proximity. A zero window or limit
// falls back to the club defaults.
func (s *MemberService) Recommend(ctx context.Context, id int64, window float64, limit int) ([]member.Candidate, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MemberService.Recommend", attribute.Int64("member_id", id))
	defer span.End()

	if window == 0 {
		window = member.DefaultRecommendWindow
	}
	if limit == 0 {
		limit = member.DefaultRecommendLimit
	}
	if window < 0 || window > member.MaxUTR {
		return nil, fmt.Errorf("%w: window must be between 0 and %.0f", ErrInvalidInput, member.MaxUTR)
	}
	if limit < 1 || limit > maxRecommendLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, maxRecommendLimit)
	}

	self, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	pool, _, err := s.memberRepo.List(ctx, member.Filter{ExcludeAdmins: true})
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return member.RankOpponents(self, pool, window, limit), nil
}

func (s *MemberService) UploadAvatar(ctx context.Context, actor user.Principal, id int64, input UploadAvatarInput) (member.Member, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MemberService.UploadAvatar", attribute.Int64("member_id", id))
	defer span.End()

	if !actor.CanActOn(id) {
		return member.Member{}, fmt.Errorf("%w: cannot change another member's avatar", ErrForbidden)
	}
	if s.avatars == nil {
		return member.Member{}, fmt.Errorf("%w: avatar storage is not configured", ErrDependencyUnavailable)
	}
	if input.Body == nil || input.Size <= 0 {
		return member.Member{}, fmt.Errorf("%w: avatar file is required", ErrInvalidInput)
	}
	contentType := strings.ToLower(strings.TrimSpace(input.ContentType))
	ext, ok := allowedAvatarTypes[contentType]
	if !ok {
		return member.Member{}, fmt.Errorf("%w: unsupported avatar type %q", ErrInvalidInput, input.ContentType)
	}
	if s.maxAvatarBytes > 0 && input.Size > s.maxAvatarBytes {
		return member.Member{}, fmt.Errorf("%w: avatar must be at most %d bytes", ErrInvalidInput, s.maxAvatarBytes)
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return member.Member{}, err
	}

	url, err := s.avatars.PutAvatar(ctx, AvatarObject{
		UserName:    current.UserName,
		ContentType: contentType,
		Extension:   ext,
		Size:        input.Size,
		Body:        input.Body,
	})
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, ErrDependencyUnavailable) {
			return member.Member{}, fmt.Errorf("%w: avatar storage: %v", ErrDependencyUnavailable, err)
		}
		return member.Member{}, fmt.Errorf("put avatar: %w", err)
	}

	current.AvatarURL = url
	current.UpdatedAt = s.now().UTC()
	saved, exists, err := s.memberRepo.Update(ctx, current)
	if err != nil {
		return member.Member{}, translateMemberWriteError(err)
	}
	if !exists {
		return member.Member{}, fmt.Errorf("%w: member=%d", ErrNotFound, id)
	}
	s.rollups.Invalidate(ctx)

	return saved, nil
}

// summaries loads public member summaries keyed by id. Unknown ids map to a
// summary carrying only the id.
func summaries(ctx context.Context, repo member.Repository, ids []int64) (map[int64]member.Summary, error) {
	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == 0 {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	out := make(map[int64]member.Summary, len(unique))
	if len(unique) == 0 {
		return out, nil
	}

	members, err := repo.ListByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("list members by ids: %w", err)
	}
	for _, m := range members {
		out[m.ID] = m.Summary()
	}
	for _, id := range unique {
		if _, ok := out[id]; !ok {
			out[id] = member.Summary{ID: id}
		}
	}
	return out, nil
}
