package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"

	"github.com/cbaclube/portal/internal/usecase"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{"invalid input", usecase.ErrInvalidInput, http.StatusBadRequest, "invalidInput"},
		{"already confirmed", usecase.ErrAlreadyConfirmed, http.StatusConflict, "alreadyConfirmed"},
		{"mutation in flight", usecase.ErrMutationInFlight, http.StatusConflict, "mutationInFlight"},
		{"not found", usecase.ErrNotFound, http.StatusNotFound, "notFound"},
		{"unauthorized", usecase.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"dependency unavailable", usecase.ErrDependencyUnavailable, http.StatusServiceUnavailable, "dependencyUnavailable"},
		{"backend rejected", usecase.ErrBackend, http.StatusBadGateway, "backendRejected"},
		{"data shape", usecase.ErrDataShape, http.StatusBadGateway, "malformedUpstreamData"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internalError"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := mapError(fmt.Errorf("wrap: %w", tc.err))
			require.Equal(t, tc.status, mapped.HTTPStatus)
			require.Equal(t, tc.reason, mapped.Reason)
		})
	}
}

func TestWriteError_EnvelopeShape(t *testing.T) {
	recorder := httptest.NewRecorder()
	writeError(context.Background(), recorder, fmt.Errorf("%w: player name is required", usecase.ErrInvalidInput))

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

	var envelope googleResponseEnvelope
	require.NoError(t, sonic.Unmarshal(recorder.Body.Bytes(), &envelope))
	require.Equal(t, googleAPIVersion, envelope.APIVersion)
	require.NotNil(t, envelope.Error)
	require.Equal(t, "INVALID_ARGUMENT", envelope.Error.Status)
	require.Len(t, envelope.Error.Errors, 1)
	require.Equal(t, errorDomain, envelope.Error.Errors[0].Domain)
}

func TestWriteSuccess_EnvelopeShape(t *testing.T) {
	recorder := httptest.NewRecorder()
	writeSuccess(context.Background(), recorder, http.StatusOK, map[string]string{"status": "ok"})

	var envelope googleResponseEnvelope
	require.NoError(t, sonic.Unmarshal(recorder.Body.Bytes(), &envelope))
	require.Equal(t, googleAPIVersion, envelope.APIVersion)
	require.Nil(t, envelope.Error)
	require.NotNil(t, envelope.Data)
}
