package httpapi

import (
	"net/http"

	"github.com/riskibarqy/tennis-club/internal/usecase"
)

func (h *Handler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateChallenge")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createChallengeRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.challengeService.Create(ctx, principal, usecase.CreateChallengeInput{
		ChallengedID: req.ChallengedID,
		MatchAt:      req.MatchAt,
		Notes:        req.Notes,
	})
	if err != nil {
		h.fail(ctx, w, "create challenge failed", err, "member_id", principal.MemberID, "challenged_id", req.ChallengedID)
		return
	}

	writeMessage(ctx, w, http.StatusCreated, "challenge sent", challengeToDTO(created))
}

func (h *Handler) AcceptChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AcceptChallenge")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	id, err := pathID(r, "challengeID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	accepted, scheduled, err := h.challengeService.Accept(ctx, principal, id)
	if err != nil {
		h.fail(ctx, w, "accept challenge failed", err, "challenge_id", id, "member_id", principal.MemberID)
		return
	}

	writeMessage(ctx, w, http.StatusOK, "challenge accepted", acceptedChallengeDTO{
		Challenge: challengeToDTO(accepted),
		MatchID:   scheduled.ID,
	})
}

func (h *Handler) RejectChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RejectChallenge")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	id, err := pathID(r, "challengeID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rejected, err := h.challengeService.Reject(ctx, principal, id)
	if err != nil {
		h.fail(ctx, w, "reject challenge failed", err, "challenge_id", id, "member_id", principal.MemberID)
		return
	}

	writeMessage(ctx, w, http.StatusOK, "challenge rejected", challengeToDTO(rejected))
}

func (h *Handler) ListMyChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyChallenges")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	mine, err := h.challengeService.ListForMember(ctx, principal.MemberID)
	if err != nil {
		h.fail(ctx, w, "list member challenges failed", err, "member_id", principal.MemberID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, memberChallengesDTO{
		Received: challengesToDTO(mine.Received),
		Sent:     challengesToDTO(mine.Sent),
	})
}

func (h *Handler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListChallenges")
	defer span.End()

	items, err := h.challengeService.ListAll(ctx)
	if err != nil {
		h.fail(ctx, w, "list challenges failed", err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, challengesToDTO(items))
}

func (h *Handler) ListAcceptedChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAcceptedChallenges")
	defer span.End()

	items, err := h.challengeService.ListAccepted(ctx)
	if err != nil {
		h.fail(ctx, w, "list accepted challenges failed", err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, challengesToDTO(items))
}
