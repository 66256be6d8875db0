//go:build integration

package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"courier-dispatch/internal/auth"
	"courier-dispatch/internal/config"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/service/dispatch"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("dispatch_db"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_pass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

const orderBody = `{
	"pickup_address": "Av. Mcal. Lopez 1234",
	"delivery_address": "Palma 500",
	"pickup_lat": -25.2637,
	"pickup_lng": -57.5759,
	"dropoff_lat": -25.28,
	"dropoff_lng": -57.63,
	"distance_km": 2
}`

func TestContainer_PostgresBackend_Integration(t *testing.T) {
	dsn := startPostgres(t)

	cfg := testConfig()
	cfg.Storage.Backend = config.StoragePostgres
	// cfg.DB is ignored, the connector dials the container
	c := setupTestContainerWith(t, cfg, func(ctx context.Context, l logx.Logger, _ string, retries int, delay time.Duration) (*pgxpool.Pool, error) {
		return connectDbWithRetry(ctx, l, dsn, retries, delay)
	})

	err := c.Invoke(func(srv *http.Server, st *storage, tokens *auth.Tokens, d *dispatch.Dispatcher) {
		defer st.Close()
		defer d.Wait()
		require.NotNil(t, st.Pool)

		clientTok, err := tokens.Issue(auth.Identity{SubjectID: 42, Role: auth.RoleClient})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(orderBody))
		req.Header.Set("Authorization", "Bearer "+clientTok)
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		require.Contains(t, rr.Body.String(), `"status":"pending"`)
	})
	require.NoError(t, err)
}
