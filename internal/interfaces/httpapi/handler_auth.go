package httpapi

import (
	"net/http"

	"github.com/riskibarqy/tennis-club/internal/usecase"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Register")
	defer span.End()

	var req registerRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.authService.Register(ctx, usecase.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		UserName:  req.UserName,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		Age:       req.Age,
		Gender:    req.Gender,
		UTR:       req.UTR,
		Signature: req.Signature,
	})
	if err != nil {
		h.fail(ctx, w, "register failed", err, "user_name", req.UserName)
		return
	}

	writeMessage(ctx, w, http.StatusCreated, "member registered", authToDTO(result))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Login")
	defer span.End()

	var req loginRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.authService.Login(ctx, usecase.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		h.fail(ctx, w, "login failed", err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, authToDTO(result))
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Me")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	found, err := h.authService.Me(ctx, principal)
	if err != nil {
		h.fail(ctx, w, "get current member failed", err, "member_id", principal.MemberID)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, memberToDTO(found))
}
