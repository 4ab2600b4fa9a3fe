package httpapi

import (
	"net/http"
)

func (h *Handler) FinanceReport(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.FinanceReport")
	defer span.End()

	report, err := h.financeService.Report(ctx, r.URL.Query().Get("month"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) FinanceTotals(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.FinanceTotals")
	defer span.End()

	totals, err := h.financeService.Totals(ctx, r.URL.Query().Get("month"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, totals)
}

func (h *Handler) SendFinanceReports(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SendFinanceReports")
	defer span.End()

	if err := h.financeService.SendReports(ctx); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusAccepted, map[string]string{"status": "queued"})
}
