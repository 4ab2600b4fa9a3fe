package httpapi

import (
	"net/http"

	"github.com/cbaclube/portal/internal/platform/logging"
)

func NewRouter(handler *Handler, logger *logging.Logger, corsAllowedOrigins []string) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerRoutes(mux, handler)

	return RequestTracing(RequestID(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux)))))
}

func registerRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Health)

	mux.HandleFunc("GET /api/v1/attendance", handler.AttendanceOverview)
	mux.HandleFunc("GET /api/v1/attendance/report", handler.AttendancePeriodReport)

	mux.HandleFunc("GET /api/v1/finance", handler.FinanceReport)
	mux.HandleFunc("GET /api/v1/finance/totals", handler.FinanceTotals)
	mux.HandleFunc("POST /api/v1/finance/reports", handler.SendFinanceReports)

	mux.HandleFunc("GET /api/v1/roster", handler.RosterList)
	mux.HandleFunc("POST /api/v1/roster/confirmations", handler.RosterConfirm)
	mux.HandleFunc("POST /api/v1/roster/reset", handler.RosterReset)
	mux.HandleFunc("POST /api/v1/roster/draw", handler.RosterDraw)
	mux.HandleFunc("POST /api/v1/roster/draw/save", handler.RosterSaveTeams)

	mux.HandleFunc("GET /api/v1/items", handler.ItemsList)
	mux.HandleFunc("POST /api/v1/items", handler.ItemCreate)
	mux.HandleFunc("PUT /api/v1/items/{id}", handler.ItemUpdate)
	mux.HandleFunc("DELETE /api/v1/items/{id}", handler.ItemDelete)
	mux.HandleFunc("POST /api/v1/items/{id}/rsvp", handler.ItemRSVP)

	mux.HandleFunc("GET /api/v1/updates", handler.Updates)
	mux.HandleFunc("POST /api/v1/updates/{section}/seen", handler.UpdatesMarkSeen)

	mux.HandleFunc("POST /api/v1/auth/login", handler.Login)
	mux.HandleFunc("POST /api/v1/auth/reset-password", handler.ResetPassword)

	mux.HandleFunc("POST /api/v1/admin/cache/clear", handler.ClearCache)
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
