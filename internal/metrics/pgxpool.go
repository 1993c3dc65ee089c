package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// PoolStatter is satisfied by *pgxpool.Pool.
type PoolStatter interface {
	Stat() *pgxpool.Stat
}

type pgxPoolCollector struct {
	pool PoolStatter

	acquired     *prometheus.Desc
	idle         *prometheus.Desc
	total        *prometheus.Desc
	constructing *prometheus.Desc
	max          *prometheus.Desc
	acquires     *prometheus.Desc
	emptyAcquire *prometheus.Desc
	canceled     *prometheus.Desc
	acquireTime  *prometheus.Desc
}

// RegisterPgxPoolMetrics exposes the pool's connection statistics on reg.
// Statistics are read from the pool at scrape time.
func RegisterPgxPoolMetrics(reg prometheus.Registerer, pool PoolStatter) error {
	return reg.Register(newPgxPoolCollector(pool))
}

func newPgxPoolCollector(pool PoolStatter) *pgxPoolCollector {
	return &pgxPoolCollector{
		pool:         pool,
		acquired:     prometheus.NewDesc("pgxpool_acquired_conns", "Number of currently acquired connections in the pool", nil, nil),
		idle:         prometheus.NewDesc("pgxpool_idle_conns", "Number of idle connections in the pool", nil, nil),
		total:        prometheus.NewDesc("pgxpool_total_conns", "Total number of connections in the pool", nil, nil),
		constructing: prometheus.NewDesc("pgxpool_constructing_conns", "Number of connections being established", nil, nil),
		max:          prometheus.NewDesc("pgxpool_max_conns", "Maximum number of connections in the pool", nil, nil),
		acquires:     prometheus.NewDesc("pgxpool_acquire_total", "Cumulative number of successful acquires from the pool", nil, nil),
		emptyAcquire: prometheus.NewDesc("pgxpool_empty_acquire_total", "Cumulative number of acquires that waited for a connection", nil, nil),
		canceled:     prometheus.NewDesc("pgxpool_canceled_acquire_total", "Cumulative number of acquires canceled by their context", nil, nil),
		acquireTime:  prometheus.NewDesc("pgxpool_acquire_duration_seconds_total", "Total time spent acquiring connections", nil, nil),
	}
}

func (c *pgxPoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquired
	ch <- c.idle
	ch <- c.total
	ch <- c.constructing
	ch <- c.max
	ch <- c.acquires
	ch <- c.emptyAcquire
	ch <- c.canceled
	ch <- c.acquireTime
}

func (c *pgxPoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.pool.Stat()
	ch <- prometheus.MustNewConstMetric(c.acquired, prometheus.GaugeValue, float64(s.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(s.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(s.TotalConns()))
	ch <- prometheus.MustNewConstMetric(c.constructing, prometheus.GaugeValue, float64(s.ConstructingConns()))
	ch <- prometheus.MustNewConstMetric(c.max, prometheus.GaugeValue, float64(s.MaxConns()))
	ch <- prometheus.MustNewConstMetric(c.acquires, prometheus.CounterValue, float64(s.AcquireCount()))
	ch <- prometheus.MustNewConstMetric(c.emptyAcquire, prometheus.CounterValue, float64(s.EmptyAcquireCount()))
	ch <- prometheus.MustNewConstMetric(c.canceled, prometheus.CounterValue, float64(s.CanceledAcquireCount()))
	ch <- prometheus.MustNewConstMetric(c.acquireTime, prometheus.CounterValue, s.AcquireDuration().Seconds())
}
