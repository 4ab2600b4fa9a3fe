package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"

	"github.com/cbaclube/portal/internal/domain/item"
	"github.com/cbaclube/portal/internal/domain/roster"
	"github.com/cbaclube/portal/internal/infrastructure/repository/memory"
	"github.com/cbaclube/portal/internal/usecase"
)

type stubFeed struct {
	records map[string][][]string
}

func (s *stubFeed) Fetch(_ context.Context, feedURL string) ([][]string, error) {
	return s.records[feedURL], nil
}

func (s *stubFeed) Invalidate(context.Context) {}

type stubBackend struct {
	confirmations roster.List
	items         map[item.Kind][]item.Item
	marker        string
}

func (s *stubBackend) FetchConfirmations(context.Context) (roster.List, error) {
	return s.confirmations.Clone(), nil
}
func (s *stubBackend) ConfirmPlayer(context.Context, string) error    { return nil }
func (s *stubBackend) ResetConfirmations(context.Context) error       { return nil }
func (s *stubBackend) SaveTeams(context.Context, roster.Teams) error  { return nil }
func (s *stubBackend) SaveItem(context.Context, item.Item) error      { return nil }
func (s *stubBackend) DeleteItem(context.Context, item.Kind, string) error {
	return nil
}
func (s *stubBackend) UpdateRSVP(context.Context, item.Kind, string, string, string) error {
	return nil
}
func (s *stubBackend) FetchItems(_ context.Context, kind item.Kind) ([]item.Item, error) {
	return s.items[kind], nil
}
func (s *stubBackend) LastUpdate(context.Context) (string, error) { return s.marker, nil }
func (s *stubBackend) SendFinanceReports(context.Context) error   { return nil }
func (s *stubBackend) ClearCache(context.Context) error           { return nil }
func (s *stubBackend) Login(_ context.Context, username, _ string) (usecase.Session, error) {
	return usecase.Session{Username: username, Role: "member"}, nil
}
func (s *stubBackend) ResetPassword(context.Context, string) error { return nil }

func newTestRouter(t *testing.T) (http.Handler, *stubBackend) {
	t.Helper()

	feed := &stubFeed{records: map[string][][]string{
		"attendance-url": {
			{"Jogador", "05/01/2026", "12/01/2026"},
			{"Ana", "✅", "✅"},
			{"Bruno", "NÃO JUSTIFICOU", "✅"},
		},
		"finance-url": {
			{"RECEITAS"},
			{"10/01/2026", "Mensalidade", "R$ 150,00"},
			{"DESPESAS"},
			{"12/01/2026", "Quadra", "R$ 100,00"},
		},
	}}

	backend := &stubBackend{
		confirmations: roster.List{Players: []string{
			"P01", "P02", "P03", "P04", "P05", "P06", "P07", "P08", "P09", "P10",
		}},
		items: map[item.Kind][]item.Item{
			item.KindEvent: {{ID: "e1", Kind: item.KindEvent, Title: "Churrasco", Fee: 25, Attendees: []string{"Ana", "Bruno"}}},
			item.KindGame:  {{ID: "g1", Kind: item.KindGame, Title: "Amistoso", Attendees: []string{}}},
		},
		marker: "m1",
	}

	mutations := usecase.NewMutationController()
	rosterService := usecase.NewRosterService(memory.NewRosterRepository(), backend, mutations, nil, 0)
	itemService := usecase.NewItemService(memory.NewItemRepository(), backend, mutations, nil, nil)
	attendanceService := usecase.NewAttendanceService(feed, "attendance-url", 0)
	financeService := usecase.NewFinanceService(feed, "finance-url", backend)
	authService := usecase.NewAuthService(backend)
	adminService := usecase.NewAdminService(backend, feed, nil)
	reconciler := usecase.NewReconciler(backend, feed, map[usecase.Section]usecase.Refresher{
		usecase.SectionRoster: rosterService.Refresh,
	}, nil, usecase.ReconcilerConfig{})

	handler := NewHandler(attendanceService, financeService, rosterService, itemService, authService, adminService, reconciler, nil)
	return NewRouter(handler, nil, []string{"*"}), backend
}

func doRequest(t *testing.T, router http.Handler, method, target, body string) (*httptest.ResponseRecorder, googleResponseEnvelope) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	var envelope googleResponseEnvelope
	require.NoError(t, sonic.Unmarshal(recorder.Body.Bytes(), &envelope))
	return recorder, envelope
}

func TestHandler_Health(t *testing.T) {
	router, _ := newTestRouter(t)
	recorder, envelope := doRequest(t, router, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Nil(t, envelope.Error)
}

func TestHandler_AttendanceOverview(t *testing.T) {
	router, _ := newTestRouter(t)
	recorder, envelope := doRequest(t, router, http.MethodGet, "/api/v1/attendance", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Nil(t, envelope.Error)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	require.Contains(t, data, "board")
	require.Contains(t, data, "hallOfFame")
	require.Contains(t, data, "performance")
}

func TestHandler_AttendancePeriodReport_InvalidRange(t *testing.T) {
	router, _ := newTestRouter(t)
	recorder, envelope := doRequest(t, router, http.MethodGet, "/api/v1/attendance/report?start=2026-02&end=2026-01", "")
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.Equal(t, "INVALID_ARGUMENT", envelope.Error.Status)
}

func TestHandler_FinanceReport(t *testing.T) {
	router, _ := newTestRouter(t)
	recorder, envelope := doRequest(t, router, http.MethodGet, "/api/v1/finance?month=janeiro", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Nil(t, envelope.Error)
}

func TestHandler_RosterConfirmAndDuplicate(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder, envelope := doRequest(t, router, http.MethodPost, "/api/v1/roster/confirmations", `{"player":"P99"}`)
	require.Equal(t, http.StatusCreated, recorder.Code)
	require.Nil(t, envelope.Error)

	recorder, envelope = doRequest(t, router, http.MethodPost, "/api/v1/roster/confirmations", `{"player":"P99"}`)
	require.Equal(t, http.StatusConflict, recorder.Code)
	require.Equal(t, "alreadyConfirmed", envelope.Error.Errors[0].Reason)
}

func TestHandler_RosterConfirm_MissingName(t *testing.T) {
	router, _ := newTestRouter(t)
	recorder, _ := doRequest(t, router, http.MethodPost, "/api/v1/roster/confirmations", `{"player":""}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHandler_RosterDraw(t *testing.T) {
	router, _ := newTestRouter(t)
	recorder, envelope := doRequest(t, router, http.MethodPost, "/api/v1/roster/draw", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	require.Len(t, data["white"], 5)
	require.Len(t, data["black"], 5)
}

func TestHandler_ItemsCalendarAndRevenue(t *testing.T) {
	router, _ := newTestRouter(t)
	recorder, envelope := doRequest(t, router, http.MethodGet, "/api/v1/items", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	events, ok := data["events"].([]any)
	require.True(t, ok)
	require.Len(t, events, 1)

	first, ok := events[0].(map[string]any)
	require.True(t, ok)
	require.Equal(t, 50.0, first["revenue"])
}

func TestHandler_ItemRSVP(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder, envelope := doRequest(t, router, http.MethodPost, "/api/v1/items/g1/rsvp", `{"kind":"game","player":"Ana","operation":"confirm"}`)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Nil(t, envelope.Error)

	recorder, _ = doRequest(t, router, http.MethodPost, "/api/v1/items/g1/rsvp", `{"kind":"game","player":"Ana","operation":"dance"}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHandler_Updates(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder, envelope := doRequest(t, router, http.MethodGet, "/api/v1/updates", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Nil(t, envelope.Error)

	recorder, _ = doRequest(t, router, http.MethodGet, "/api/v1/updates?active=bogus", "")
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder, _ = doRequest(t, router, http.MethodPost, "/api/v1/updates/roster/seen", "")
	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestHandler_Login(t *testing.T) {
	router, _ := newTestRouter(t)

	recorder, envelope := doRequest(t, router, http.MethodPost, "/api/v1/auth/login", `{"username":"ana","password":"segredo"}`)
	require.Equal(t, http.StatusOK, recorder.Code)

	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "ana", data["username"])

	recorder, _ = doRequest(t, router, http.MethodPost, "/api/v1/auth/login", `{"username":"ana"}`)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHandler_ClearCache(t *testing.T) {
	router, _ := newTestRouter(t)
	recorder, envelope := doRequest(t, router, http.MethodPost, "/api/v1/admin/cache/clear", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Nil(t, envelope.Error)
}
