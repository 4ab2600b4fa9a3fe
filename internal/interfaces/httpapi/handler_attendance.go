package httpapi

import (
	"net/http"
)

func (h *Handler) AttendanceOverview(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AttendanceOverview")
	defer span.End()

	overview, err := h.attendanceService.Overview(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, overview)
}

func (h *Handler) AttendancePeriodReport(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AttendancePeriodReport")
	defer span.End()

	query := r.URL.Query()
	rows, err := h.attendanceService.PeriodReport(ctx, query.Get("start"), query.Get("end"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"start":   query.Get("start"),
		"end":     query.Get("end"),
		"players": rows,
	})
}
