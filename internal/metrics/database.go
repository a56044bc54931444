package metrics

import (
	"database/sql"
	"strings"
	"time"
)

// UpdateDBStats publishes a snapshot of the connection pool.
func (m *Metrics) UpdateDBStats(stats sql.DBStats) {
	m.safeExecute("UpdateDBStats", func() {
		m.DBPoolOpen.Set(float64(stats.OpenConnections))
		m.DBPoolInUse.Set(float64(stats.InUse))
		m.DBPoolIdle.Set(float64(stats.Idle))
		m.DBPoolMax.Set(float64(stats.MaxOpenConnections))
		m.DBPoolWaitCount.Add(float64(stats.WaitCount))
		m.DBPoolWaitSeconds.Add(stats.WaitDuration.Seconds())
	})
}

// RecordDBQuery observes one gorm query. The operation label is the gorm
// callback name (create, query, update, delete) lowercased.
func (m *Metrics) RecordDBQuery(operation, table string, duration time.Duration, err error) {
	m.safeExecute("RecordDBQuery", func() {
		op := strings.ToLower(operation)
		m.DBQueryDuration.WithLabelValues(op, table).Observe(duration.Seconds())
		if err != nil {
			m.DBQueryErrors.WithLabelValues(op, table).Inc()
		}
	})
}
