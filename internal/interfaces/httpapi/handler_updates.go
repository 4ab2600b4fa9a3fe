package httpapi

import (
	"fmt"
	"net/http"

	"github.com/cbaclube/portal/internal/usecase"
)

// Updates answers the frontend's badge poll. active names the section the
// client is currently viewing; it never badges itself.
func (h *Handler) Updates(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Updates")
	defer span.End()

	active := usecase.Section("")
	if raw := r.URL.Query().Get("active"); raw != "" {
		parsed, ok := usecase.ParseSection(raw)
		if !ok {
			writeError(ctx, w, fmt.Errorf("%w: unknown section %q", usecase.ErrInvalidInput, raw))
			return
		}
		active = parsed
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"changed": h.reconciler.Flags(active)})
}

func (h *Handler) UpdatesMarkSeen(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdatesMarkSeen")
	defer span.End()

	section, ok := usecase.ParseSection(r.PathValue("section"))
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: unknown section %q", usecase.ErrInvalidInput, r.PathValue("section")))
		return
	}

	h.reconciler.MarkSeen(section)
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "seen"})
}
