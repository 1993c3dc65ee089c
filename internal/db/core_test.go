package db

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPoolDefaults(t *testing.T) {
	cfg, err := pgxpool.ParseConfig("postgres://landing@localhost:5432/landing")
	require.NoError(t, err)

	applyPoolDefaults(cfg)

	assert.Equal(t, applicationName, cfg.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, 5*time.Minute, cfg.MaxConnIdleTime)
}

func TestApplyPoolDefaults_URLWins(t *testing.T) {
	cfg, err := pgxpool.ParseConfig("postgres://landing@localhost:5432/landing?application_name=ops&pool_max_conn_idle_time=1m")
	require.NoError(t, err)

	applyPoolDefaults(cfg)

	assert.Equal(t, "ops", cfg.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, time.Minute, cfg.MaxConnIdleTime)
}
