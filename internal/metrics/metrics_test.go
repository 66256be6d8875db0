package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegister_Success(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	s, err := Register(reg)
	require.NoError(t, err)
	require.NotNil(t, s.RateLimitExceededTotal)
	require.NotNil(t, s.NotifierRetriesTotal)
	require.NotNil(t, s.MatchOutcomes)
	require.NotNil(t, s.OrderClaims)
	require.NotNil(t, s.HTTP.Requests)
	require.NotNil(t, s.HTTP.Duration)

	s.OrderClaims.WithLabelValues("won").Inc()
	require.InDelta(t, 1, testutil.ToFloat64(s.OrderClaims.WithLabelValues("won")), 1e-9)
}

func TestRegister_AlreadyRegistered_ReturnsExisting(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	existingRL := NewRateLimitExceededTotal()
	existingNR := NewNotifierRetriesTotal()
	require.NoError(t, reg.Register(existingRL))
	require.NoError(t, reg.Register(existingNR))

	s, err := Register(reg)
	require.NoError(t, err)
	require.Same(t, existingRL, s.RateLimitExceededTotal)
	require.Same(t, existingNR, s.NotifierRetriesTotal)

	again, err := Register(reg)
	require.NoError(t, err)
	require.Same(t, s.OrderClaims, again.OrderClaims)
}

type errRegisterer struct{ err error }

func (e errRegisterer) Register(prometheus.Collector) error  { return e.err }
func (e errRegisterer) MustRegister(...prometheus.Collector) {}
func (e errRegisterer) Unregister(prometheus.Collector) bool { return false }

func TestRegister_Error(t *testing.T) {
	t.Parallel()

	_, err := Register(errRegisterer{err: errors.New("boom")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "register rate_limit_exceeded_total")
}

func TestHandler_ExposesRegisteredMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	s, err := Register(reg)
	require.NoError(t, err)
	s.MatchOutcomes.WithLabelValues("empty").Inc()

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, strings.Contains(rr.Body.String(), `matching_runs_total{result="empty"} 1`))
}
