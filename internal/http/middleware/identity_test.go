package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courier-dispatch/internal/auth"
	testlog "courier-dispatch/internal/testutil"
)

func identityEcho(t *testing.T, want *auth.Identity) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.FromContext(r.Context())
		if want == nil {
			assert.False(t, ok)
		} else {
			assert.True(t, ok)
			assert.Equal(t, *want, id)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	tokens := auth.NewTokens("secret", time.Hour)
	courier := auth.Identity{SubjectID: 9, Role: auth.RoleCourier}
	valid, err := tokens.Issue(courier)
	require.NoError(t, err)

	other, err := auth.NewTokens("other-secret", time.Hour).Issue(courier)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   *auth.Identity
		status int
	}{
		{name: "anonymous", status: http.StatusNoContent},
		{name: "valid bearer", header: "Bearer " + valid, want: &courier, status: http.StatusNoContent},
		{name: "lowercase scheme", header: "bearer " + valid, want: &courier, status: http.StatusNoContent},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", status: http.StatusUnauthorized},
		{name: "foreign signature", header: "Bearer " + other, status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := Authenticate(tokens, nil)(identityEcho(t, tt.want))
			req := httptest.NewRequest(http.MethodGet, "/offers", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			require.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusUnauthorized {
				require.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := RequireRole(auth.RoleCourier, rec.Logger())(ok)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/offers", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/offers", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{SubjectID: 1, Role: auth.RoleClient}))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusForbidden, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/offers", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{SubjectID: 1, Role: auth.RoleCourier}))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	require.Equal(t, []string{"request denied", "request denied"}, rec.Messages("warn"))
}

func TestRequireIdentity(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := RequireIdentity(nil)(ok)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/orders/1", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/orders/1", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{SubjectID: 1, Role: auth.RoleClient}))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)
}
