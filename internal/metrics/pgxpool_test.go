package metrics

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newIdlePool returns a pool that never dials: it has no minimum
// connections and the test never acquires.
func newIdlePool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pool, err := pgxpool.New(context.Background(), "postgres://landing@127.0.0.1:1/landing?pool_max_conns=4")
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestRegisterPgxPoolMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterPgxPoolMetrics(reg, newIdlePool(t)))

	expected := `
# HELP pgxpool_max_conns Maximum number of connections in the pool
# TYPE pgxpool_max_conns gauge
pgxpool_max_conns 4
# HELP pgxpool_acquired_conns Number of currently acquired connections in the pool
# TYPE pgxpool_acquired_conns gauge
pgxpool_acquired_conns 0
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"pgxpool_max_conns", "pgxpool_acquired_conns"))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 9, n)
}

func TestRegisterPgxPoolMetrics_Twice(t *testing.T) {
	reg := prometheus.NewRegistry()
	pool := newIdlePool(t)
	require.NoError(t, RegisterPgxPoolMetrics(reg, pool))

	err := RegisterPgxPoolMetrics(reg, pool)
	var already prometheus.AlreadyRegisteredError
	assert.ErrorAs(t, err, &already)
}
