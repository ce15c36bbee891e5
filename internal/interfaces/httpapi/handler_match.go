package httpapi

import (
	"net/http"

	"github.com/riskibarqy/tennis-club/internal/usecase"
)

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	items, err := h.matchService.List(ctx)
	if err != nil {
		h.fail(ctx, w, "list matches failed", err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchesToDTO(items))
}

func (h *Handler) ListFinishedMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFinishedMatches")
	defer span.End()

	items, err := h.matchService.ListFinished(ctx)
	if err != nil {
		h.fail(ctx, w, "list finished matches failed", err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchesToDTO(items))
}

func (h *Handler) ListMemberMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMemberMatches")
	defer span.End()

	id, err := pathID(r, "memberID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	q := r.URL.Query()

	items, err := h.matchService.ListForMember(ctx, id, usecase.MemberMatchQuery{
		Status: q.Get("status"),
		Period: q.Get("period"),
		Result: q.Get("result"),
	})
	if err != nil {
		h.fail(ctx, w, "list member matches failed", err, "member_id", id)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchesToDTO(items))
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	id, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	found, err := h.matchService.Get(ctx, id)
	if err != nil {
		h.fail(ctx, w, "get match failed", err, "match_id", id)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(found))
}

func (h *Handler) RecordMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordMatch")
	defer span.End()

	var req recordMatchRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	recorded, err := h.matchService.Record(ctx, usecase.RecordMatchInput{
		ChallengeID: req.ChallengeID,
		Scores:      req.toScores(),
	})
	if err != nil {
		h.fail(ctx, w, "record match failed", err, "challenge_id", req.ChallengeID)
		return
	}

	writeMessage(ctx, w, http.StatusCreated, "match recorded", matchToDTO(recorded))
}

// UpdateMatchStatuses moves every elapsed pending match to finished.
func (h *Handler) UpdateMatchStatuses(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateMatchStatuses")
	defer span.End()

	changed, err := h.matchService.SweepFinished(ctx)
	if err != nil {
		h.fail(ctx, w, "update match statuses failed", err)
		return
	}

	writeMessage(ctx, w, http.StatusOK, "match statuses updated", sweepDTO{Updated: changed})
}

func (h *Handler) GradeMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GradeMatch")
	defer span.End()

	id, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req scoresRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	graded, err := h.matchService.Grade(ctx, id, req.toScores())
	if err != nil {
		h.fail(ctx, w, "grade match failed", err, "match_id", id)
		return
	}

	writeMessage(ctx, w, http.StatusOK, "match graded", matchToDTO(graded))
}

// UpdateMatchScores corrects the sets of a finished or graded match and
// re-derives its result.
func (h *Handler) UpdateMatchScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateMatchScores")
	defer span.End()

	id, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req scoresRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.matchService.UpdateScores(ctx, id, req.toScores())
	if err != nil {
		h.fail(ctx, w, "update match scores failed", err, "match_id", id)
		return
	}

	writeMessage(ctx, w, http.StatusOK, "match updated", matchToDTO(updated))
}

func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteMatch")
	defer span.End()

	id, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.matchService.Delete(ctx, id); err != nil {
		h.fail(ctx, w, "delete match failed", err, "match_id", id)
		return
	}

	writeMessage(ctx, w, http.StatusOK, "match deleted", nil)
}
