package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"courier-dispatch/internal/auth"
	"courier-dispatch/internal/http/handlers"
	"courier-dispatch/internal/logx"
)

func testLogger() logx.Logger { return logx.Nop() }

// withParams attaches chi URL params to req.
func withParams(req *http.Request, kv ...string) *http.Request {
	rc := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rc.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func as(req *http.Request, role auth.Role, id int64) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{SubjectID: id, Role: role}))
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v))
	return v
}

func TestHandlers_Ping(t *testing.T) {
	t.Parallel()

	h := handlers.New(nil)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rr := httptest.NewRecorder()

	h.Ping(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody[map[string]string](t, rr)
	require.Equal(t, "pong", body["message"])
}

func TestHandlers_HealthcheckHead(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	handlers.New(testLogger()).HealthcheckHead(rr, httptest.NewRequest(http.MethodHead, "/healthcheck", nil))

	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Zero(t, rr.Body.Len())
}

func TestHandlers_NotFound(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	handlers.New(testLogger()).NotFound(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))

	require.Equal(t, http.StatusNotFound, rr.Code)
	body := decodeBody[handlers.ErrorResponse](t, rr)
	require.Equal(t, "route not found", body.Error)
}
