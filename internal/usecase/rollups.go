package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/tennis-club/internal/domain/analytics"
	"github.com/riskibarqy/tennis-club/internal/domain/member"
	"github.com/riskibarqy/tennis-club/internal/platform/cache"
)

const (
	memberAnalyticsKey = "member-analytics"
	topPlayersPrefix   = "top:"
)

// Rollups caches member-derived aggregates. A nil *Rollups disables caching.
type Rollups struct {
	members *cache.Store[analytics.MemberAnalytics]
	top     *cache.Store[[]member.Member]
}

func NewRollups(ttl time.Duration) *Rollups {
	return &Rollups{
		members: cache.NewStore[analytics.MemberAnalytics](ttl),
		top:     cache.NewStore[[]member.Member](ttl),
	}
}

func (r *Rollups) memberAnalytics(ctx context.Context, load func(context.Context) (analytics.MemberAnalytics, error)) (analytics.MemberAnalytics, error) {
	if r == nil {
		return load(ctx)
	}
	return r.members.GetOrLoad(ctx, memberAnalyticsKey, load)
}

func (r *Rollups) topPlayers(ctx context.Context, key string, load func(context.Context) ([]member.Member, error)) ([]member.Member, error) {
	if r == nil {
		return load(ctx)
	}
	return r.top.GetOrLoad(ctx, topPlayersPrefix+key, load)
}

// Invalidate drops every cached rollup. Call it after any member mutation.
func (r *Rollups) Invalidate(ctx context.Context) {
	if r == nil {
		return
	}
	r.members.Delete(ctx, memberAnalyticsKey)
	r.top.DeletePrefix(ctx, topPlayersPrefix)
}
