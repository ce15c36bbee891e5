package httpapi

import "net/http"

func (h *Handler) GetMemberAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMemberAnalytics")
	defer span.End()

	stats, err := h.analyticsService.MemberAnalytics(ctx)
	if err != nil {
		h.fail(ctx, w, "member analytics failed", err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, memberAnalyticsToDTO(stats))
}

func (h *Handler) GetMatchStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchStats")
	defer span.End()

	period := r.URL.Query().Get("period")
	stats, err := h.analyticsService.MatchStats(ctx, period)
	if err != nil {
		h.fail(ctx, w, "match stats failed", err, "period", period)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchStatsToDTO(stats))
}

func (h *Handler) ListMostActive(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMostActive")
	defer span.End()

	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	days, err := queryInt(r, "days")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	active, err := h.analyticsService.MostActive(ctx, limit, days)
	if err != nil {
		h.fail(ctx, w, "most active members failed", err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, activeMembersToDTO(active))
}

func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetOverview")
	defer span.End()

	overview, err := h.analyticsService.Overview(ctx)
	if err != nil {
		h.fail(ctx, w, "admin overview failed", err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, overviewDTO{
		Members:    memberAnalyticsToDTO(overview.Members),
		Matches:    matchStatsToDTO(overview.Matches),
		MostActive: activeMembersToDTO(overview.MostActive),
	})
}
