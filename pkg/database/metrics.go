package database

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// PoolStat is the subset of *pgxpool.Stat the collector exports.
type PoolStat interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
	MaxConns() int32
	ConstructingConns() int32
	AcquireCount() int64
	AcquireDuration() time.Duration
	CanceledAcquireCount() int64
	EmptyAcquireCount() int64
	NewConnsCount() int64
	MaxLifetimeDestroyCount() int64
	MaxIdleDestroyCount() int64
}

type poolMetric struct {
	desc      *prometheus.Desc
	valueType prometheus.ValueType
	value     func(PoolStat) float64
}

// PoolStatsCollector exports connection pool statistics on every scrape.
type PoolStatsCollector struct {
	stat    func() PoolStat
	service string
	metrics []poolMetric
}

// NewPoolStatsCollector creates a collector reading the stats of pool.
func NewPoolStatsCollector(pool *pgxpool.Pool, service string) *PoolStatsCollector {
	return newPoolStatsCollector(func() PoolStat { return pool.Stat() }, service)
}

func newPoolStatsCollector(stat func() PoolStat, service string) *PoolStatsCollector {
	gauge := func(name, help string, fn func(PoolStat) int32) poolMetric {
		return poolMetric{
			desc:      prometheus.NewDesc("db_pool_"+name, help, []string{"service"}, nil),
			valueType: prometheus.GaugeValue,
			value:     func(s PoolStat) float64 { return float64(fn(s)) },
		}
	}
	counter := func(name, help string, fn func(PoolStat) float64) poolMetric {
		return poolMetric{
			desc:      prometheus.NewDesc("db_pool_"+name, help, []string{"service"}, nil),
			valueType: prometheus.CounterValue,
			value:     fn,
		}
	}
	count := func(fn func(PoolStat) int64) func(PoolStat) float64 {
		return func(s PoolStat) float64 { return float64(fn(s)) }
	}

	return &PoolStatsCollector{
		stat:    stat,
		service: service,
		metrics: []poolMetric{
			gauge("acquired_connections", "Connections currently checked out of the pool", PoolStat.AcquiredConns),
			gauge("idle_connections", "Connections currently idle in the pool", PoolStat.IdleConns),
			gauge("total_connections", "Connections currently open", PoolStat.TotalConns),
			gauge("max_connections", "Configured maximum pool size", PoolStat.MaxConns),
			gauge("constructing_connections", "Connections currently being established", PoolStat.ConstructingConns),
			counter("acquire_count_total", "Successful connection acquires", count(PoolStat.AcquireCount)),
			counter("acquire_duration_seconds_total", "Time spent acquiring connections",
				func(s PoolStat) float64 { return s.AcquireDuration().Seconds() }),
			counter("canceled_acquire_count_total", "Acquires canceled by their context", count(PoolStat.CanceledAcquireCount)),
			counter("empty_acquire_count_total", "Acquires that waited for a free connection", count(PoolStat.EmptyAcquireCount)),
			counter("new_connections_total", "Connections opened", count(PoolStat.NewConnsCount)),
			counter("max_lifetime_destroy_total", "Connections closed for exceeding their lifetime", count(PoolStat.MaxLifetimeDestroyCount)),
			counter("max_idle_destroy_total", "Connections closed for idling too long", count(PoolStat.MaxIdleDestroyCount)),
		},
	}
}

// Describe implements prometheus.Collector.
func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- m.desc
	}
}

// Collect implements prometheus.Collector. The stats are read once per scrape.
func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stat := c.stat()
	for _, m := range c.metrics {
		ch <- prometheus.MustNewConstMetric(m.desc, m.valueType, m.value(stat), c.service)
	}
}

// RegisterPoolMetrics registers a pool collector with the default registry.
func RegisterPoolMetrics(pool *pgxpool.Pool, service string) {
	prometheus.MustRegister(NewPoolStatsCollector(pool, service))
}
