package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/riskibarqy/tennis-club/internal/domain/member"
	"github.com/riskibarqy/tennis-club/internal/usecase"
)

const (
	avatarFormField      = "avatar"
	multipartMemoryBytes = 1 << 20
)

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMembers")
	defer span.End()

	input, err := listMembersInputFromQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	page, err := h.memberService.List(ctx, input)
	if err != nil {
		h.fail(ctx, w, "list members failed", err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, memberPageDTO{
		Items:      membersToDTO(page.Items),
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages,
	})
}

func listMembersInputFromQuery(r *http.Request) (usecase.ListMembersInput, error) {
	q := r.URL.Query()
	input := usecase.ListMembersInput{
		Search: q.Get("search"),
		Gender: q.Get("gender"),
	}

	var err error
	if input.Page, err = queryInt(r, "page"); err != nil {
		return input, err
	}
	if input.Limit, err = queryInt(r, "limit"); err != nil {
		return input, err
	}
	if input.MinAge, err = queryOptionalInt(r, "min_age"); err != nil {
		return input, err
	}
	if input.MaxAge, err = queryOptionalInt(r, "max_age"); err != nil {
		return input, err
	}
	if input.MinUTR, err = queryOptionalFloat(r, "min_utr"); err != nil {
		return input, err
	}
	if input.MaxUTR, err = queryOptionalFloat(r, "max_utr"); err != nil {
		return input, err
	}
	if input.ExcludeAdmins, err = queryBool(r, "exclude_admins"); err != nil {
		return input, err
	}
	return input, nil
}

func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMember")
	defer span.End()

	id, err := pathID(r, "memberID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	found, err := h.memberService.Get(ctx, id)
	if err != nil {
		h.fail(ctx, w, "get member failed", err, "member_id", id)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, memberToDTO(found))
}

func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateMember")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	id, err := pathID(r, "memberID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req updateMemberRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	update := member.Update{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		UserName:  req.UserName,
		Email:     req.Email,
		Phone:     req.Phone,
		Age:       req.Age,
		UTR:       req.UTR,
		Signature: req.Signature,
	}
	if req.Gender != nil {
		gender, err := member.ParseGender(*req.Gender)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
			return
		}
		update.Gender = &gender
	}

	saved, err := h.memberService.Update(ctx, principal, id, update)
	if err != nil {
		h.fail(ctx, w, "update member failed", err, "member_id", id, "actor_id", principal.MemberID)
		return
	}

	writeMessage(ctx, w, http.StatusOK, "member updated", memberToDTO(saved))
}

func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UploadAvatar")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	id, err := pathID(r, "memberID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if h.maxAvatarBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxAvatarBytes+multipartMemoryBytes)
	}
	if err := r.ParseMultipartForm(multipartMemoryBytes); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid multipart payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	file, header, err := r.FormFile(avatarFormField)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %s file is required", usecase.ErrInvalidInput, avatarFormField))
		return
	}
	defer file.Close()

	saved, err := h.memberService.UploadAvatar(ctx, principal, id, usecase.UploadAvatarInput{
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.fail(ctx, w, "upload avatar failed", err, "member_id", id, "actor_id", principal.MemberID)
		return
	}

	writeMessage(ctx, w, http.StatusOK, "avatar updated", memberToDTO(saved))
}

func (h *Handler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteMember")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	id, err := pathID(r, "memberID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.memberService.Delete(ctx, principal, id); err != nil {
		h.fail(ctx, w, "delete member failed", err, "member_id", id, "actor_id", principal.MemberID)
		return
	}

	writeMessage(ctx, w, http.StatusOK, "member deleted", nil)
}

func (h *Handler) GetMemberStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMemberStats")
	defer span.End()

	id, err := pathID(r, "memberID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	record, err := h.memberService.Stats(ctx, id)
	if err != nil {
		h.fail(ctx, w, "get member stats failed", err, "member_id", id)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, statsToDTO(id, record))
}

func (h *Handler) ListTopPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTopPlayers")
	defer span.End()

	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	players, err := h.memberService.TopPlayers(ctx, limit)
	if err != nil {
		h.fail(ctx, w, "list top players failed", err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, membersToDTO(players))
}

// RecommendChallengers lists opponents near the member's UTR.
func (h *Handler) RecommendChallengers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecommendChallengers")
	defer span.End()

	id, err := pathID(r, "memberID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var window float64
	if raw := r.URL.Query().Get("window"); raw != "" {
		window, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: window must be a number", usecase.ErrInvalidInput))
			return
		}
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	candidates, err := h.memberService.Recommend(ctx, id, window, limit)
	if err != nil {
		h.fail(ctx, w, "recommend challengers failed", err, "member_id", id)
		return
	}

	items := make([]recommendationDTO, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, recommendationDTO{
			Member:      summaryToDTO(c.Member.Summary()),
			UTRDistance: c.Distance,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}
