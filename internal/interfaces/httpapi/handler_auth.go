package httpapi

import (
	"net/http"
)

type loginRequest struct {
	Username string `json:"username" validate:"required,max=80"`
	Password string `json:"password" validate:"required,max=200"`
}

type resetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Login")
	defer span.End()

	var payload loginRequest
	if err := h.decodeBody(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	session, err := h.authService.Login(ctx, payload.Username, payload.Password)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, session)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResetPassword")
	defer span.End()

	var payload resetPasswordRequest
	if err := h.decodeBody(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.authService.ResetPassword(ctx, payload.Email); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearCache")
	defer span.End()

	if err := h.adminService.ClearCache(ctx); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "cleared"})
}
