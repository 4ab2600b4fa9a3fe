package httpapi

import (
	"fmt"
	"net/http"

	"github.com/cbaclube/portal/internal/domain/item"
	"github.com/cbaclube/portal/internal/usecase"
)

type saveItemRequest struct {
	Kind        string  `json:"kind" validate:"required,oneof=event game"`
	Title       string  `json:"title" validate:"required,max=120"`
	Date        string  `json:"date" validate:"required"`
	Time        string  `json:"time" validate:"omitempty,max=20"`
	Location    string  `json:"location" validate:"omitempty,max=160"`
	Description string  `json:"description" validate:"omitempty,max=1000"`
	Opponent    string  `json:"opponent" validate:"omitempty,max=120"`
	Fee         float64 `json:"fee" validate:"gte=0"`
}

type rsvpRequest struct {
	Kind      string `json:"kind" validate:"required,oneof=event game"`
	Player    string `json:"player" validate:"required,max=80"`
	Operation string `json:"operation" validate:"required,oneof=confirm withdraw"`
}

// itemView decorates an item with its derived revenue so the treasurer view
// does not recompute fees client side.
type itemView struct {
	item.Item
	Revenue float64 `json:"revenue"`
}

func itemViews(items []item.Item) []itemView {
	out := make([]itemView, 0, len(items))
	for _, it := range items {
		out = append(out, itemView{Item: it, Revenue: it.Revenue()})
	}
	return out
}

func kindFromQuery(r *http.Request) (item.Kind, bool, error) {
	raw := r.URL.Query().Get("kind")
	if raw == "" {
		return "", false, nil
	}
	kind, ok := item.ParseKind(raw)
	if !ok {
		return "", false, fmt.Errorf("%w: unknown kind %q", usecase.ErrInvalidInput, raw)
	}
	return kind, true, nil
}

func (h *Handler) ItemsList(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ItemsList")
	defer span.End()

	kind, scoped, err := kindFromQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if scoped {
		items, err := h.itemService.List(ctx, kind)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		writeSuccess(ctx, w, http.StatusOK, map[string]any{string(kind) + "s": itemViews(items)})
		return
	}

	calendar, err := h.itemService.Calendar(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"events": itemViews(calendar.Events),
		"games":  itemViews(calendar.Games),
	})
}

func (h *Handler) ItemCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ItemCreate")
	defer span.End()

	h.saveItem(w, r.WithContext(ctx), "")
}

func (h *Handler) ItemUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ItemUpdate")
	defer span.End()

	h.saveItem(w, r.WithContext(ctx), r.PathValue("id"))
}

func (h *Handler) saveItem(w http.ResponseWriter, r *http.Request, itemID string) {
	ctx := r.Context()

	var payload saveItemRequest
	if err := h.decodeBody(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, payload); err != nil {
		writeError(ctx, w, err)
		return
	}
	kind, _ := item.ParseKind(payload.Kind)

	saved, err := h.itemService.Save(ctx, usecase.ItemInput{
		ID:          itemID,
		Kind:        kind,
		Title:       payload.Title,
		Date:        payload.Date,
		Time:        payload.Time,
		Location:    payload.Location,
		Description: payload.Description,
		Opponent:    payload.Opponent,
		Fee:         payload.Fee,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if itemID == "" {
		status = http.StatusCreated
	}
	writeSuccess(ctx, w, status, itemView{Item: saved, Revenue: saved.Revenue()})
}

func (h *Handler) ItemDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ItemDelete")
	defer span.End()

	kind, scoped, err := kindFromQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if !scoped {
		writeError(ctx, w, fmt.Errorf("%w: kind query parameter is required", usecase.ErrInvalidInput))
		return
	}

	if err := h.itemService.Delete(ctx, kind, r.PathValue("id")); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) ItemRSVP(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ItemRSVP")
	defer span.End()

	var payload rsvpRequest
	if err := h.decodeBody(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, payload); err != nil {
		writeError(ctx, w, err)
		return
	}
	kind, _ := item.ParseKind(payload.Kind)

	updated, err := h.itemService.RSVP(ctx, kind, r.PathValue("id"), payload.Player, payload.Operation)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, itemView{Item: updated, Revenue: updated.Revenue()})
}
