package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/cbaclube/portal/internal/platform/logging"
	"github.com/cbaclube/portal/internal/usecase"
)

const maxRequestBody = 1 << 20

type Handler struct {
	attendanceService *usecase.AttendanceService
	financeService    *usecase.FinanceService
	rosterService     *usecase.RosterService
	itemService       *usecase.ItemService
	authService       *usecase.AuthService
	adminService      *usecase.AdminService
	reconciler        *usecase.Reconciler
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	attendanceService *usecase.AttendanceService,
	financeService *usecase.FinanceService,
	rosterService *usecase.RosterService,
	itemService *usecase.ItemService,
	authService *usecase.AuthService,
	adminService *usecase.AdminService,
	reconciler *usecase.Reconciler,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		attendanceService: attendanceService,
		financeService:    financeService,
		rosterService:     rosterService,
		itemService:       itemService,
		authService:       authService,
		adminService:      adminService,
		reconciler:        reconciler,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decodeBody(r *http.Request, payload any) error {
	decoder := sonic.ConfigDefault.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := decoder.Decode(payload); err != nil {
		return fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
