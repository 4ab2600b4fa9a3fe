package appsscript

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cbaclube/portal/internal/domain/item"
	"github.com/cbaclube/portal/internal/platform/resilience"
	"github.com/cbaclube/portal/internal/usecase"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(ClientConfig{
		ScriptURL: server.URL,
		Timeout:   2 * time.Second,
	})
}

func TestClient_Get_AddsActionAndCacheBust(t *testing.T) {
	var seen url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Query()
		_, _ = w.Write([]byte(`{"status":"success","players":["Ana"]}`))
	})

	list, err := client.FetchConfirmations(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Ana"}, list.Players)

	require.Equal(t, actionGetConfirmations, seen.Get("action"))
	require.NotEmpty(t, seen.Get("cacheBust"))
}

func TestClient_Get_BackendError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"error","message":"aba não encontrada"}`))
	})

	_, err := client.Get(context.Background(), actionGetEvents, nil)
	require.ErrorIs(t, err, usecase.ErrBackend)
	require.Contains(t, err.Error(), "aba não encontrada")
}

func TestClient_Get_HTMLBodyIsDataShapeError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<!DOCTYPE html><html><body>Authorization needed</body></html>`))
	})

	_, err := client.Get(context.Background(), actionGetConfirmations, nil)
	require.ErrorIs(t, err, usecase.ErrDataShape)
}

func TestClient_Post_NonJSONSuccessBody(t *testing.T) {
	var method, contentType, body string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		contentType = r.Header.Get("content-type")
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		_, _ = w.Write([]byte("<html>ok</html>"))
	})

	err := client.ConfirmPlayer(context.Background(), "Ana")
	require.NoError(t, err)
	require.Equal(t, http.MethodPost, method)
	require.Equal(t, "text/plain;charset=utf-8", contentType)

	parsed, parseErr := url.ParseQuery(body)
	require.NoError(t, parseErr)
	require.Equal(t, actionConfirmPlayer, parsed.Get("action"))
	require.Equal(t, "Ana", parsed.Get("player"))
}

func TestClient_Post_BackendErrorSurfacesMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","message":"jogador já confirmado"}`))
	})

	err := client.ConfirmPlayer(context.Background(), "Ana")
	require.ErrorIs(t, err, usecase.ErrBackend)
	require.Contains(t, err.Error(), "jogador já confirmado")
}

func TestClient_CircuitBreakerOpens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		ScriptURL: server.URL,
		Timeout:   2 * time.Second,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	ctx := context.Background()
	_, err := client.Get(ctx, actionGetLastUpdate, nil)
	require.Error(t, err)
	_, err = client.Get(ctx, actionGetLastUpdate, nil)
	require.Error(t, err)

	_, err = client.Get(ctx, actionGetLastUpdate, nil)
	require.ErrorIs(t, err, usecase.ErrDependencyUnavailable)
}

func TestClient_FetchItems(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("action") {
		case actionGetEvents:
			_, _ = w.Write([]byte(`{"status":"success","events":[{"id":"e1","title":"Churrasco","fee":25,"attendees":["Ana"]}]}`))
		case actionGetGames:
			_, _ = w.Write([]byte(`{"status":"success","games":[{"id":"g1","title":"Amistoso","opponent":"Vizinhos"}]}`))
		}
	})

	events, err := client.FetchItems(context.Background(), item.KindEvent)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, item.KindEvent, events[0].Kind)
	require.Equal(t, 25.0, events[0].Fee)

	games, err := client.FetchItems(context.Background(), item.KindGame)
	require.NoError(t, err)
	require.Equal(t, "Vizinhos", games[0].Opponent)
	require.Empty(t, games[0].Attendees)
}

func TestClient_LastUpdate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","timestamp":"2026-03-01T12:00:00Z"}`))
	})

	marker, err := client.LastUpdate(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2026-03-01T12:00:00Z", marker)
}

func TestClient_LastUpdate_EmptyMarker(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})

	_, err := client.LastUpdate(context.Background())
	require.ErrorIs(t, err, usecase.ErrDataShape)
}
