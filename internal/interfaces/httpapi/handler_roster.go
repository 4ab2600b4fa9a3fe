package httpapi

import (
	"net/http"

	"github.com/cbaclube/portal/internal/domain/roster"
)

type confirmPlayerRequest struct {
	Player string `json:"player" validate:"required,max=80"`
}

type saveTeamsRequest struct {
	White []string `json:"white" validate:"required,len=5,dive,required"`
	Black []string `json:"black" validate:"required,len=5,dive,required"`
}

func (h *Handler) RosterList(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RosterList")
	defer span.End()

	list, err := h.rosterService.List(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, list)
}

func (h *Handler) RosterConfirm(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RosterConfirm")
	defer span.End()

	var payload confirmPlayerRequest
	if err := h.decodeBody(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	list, err := h.rosterService.Confirm(ctx, payload.Player)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, list)
}

func (h *Handler) RosterReset(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RosterReset")
	defer span.End()

	if err := h.rosterService.Reset(ctx); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, roster.List{Players: []string{}})
}

func (h *Handler) RosterDraw(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RosterDraw")
	defer span.End()

	teams, err := h.rosterService.Draw(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, teams)
}

func (h *Handler) RosterSaveTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RosterSaveTeams")
	defer span.End()

	var payload saveTeamsRequest
	if err := h.decodeBody(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	teams := roster.Teams{White: payload.White, Black: payload.Black}
	if err := h.rosterService.SaveTeams(ctx, teams); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, teams)
}
