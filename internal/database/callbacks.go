package database

import (
	"database/sql"
	"time"

	"gorm.io/gorm"
)

const startTimeKey = "metrics:start_time"

// MetricsRecorder receives query timings and pool snapshots.
type MetricsRecorder interface {
	RecordDBQuery(operation, table string, duration time.Duration, err error)
	UpdateDBStats(stats sql.DBStats)
}

// RegisterMetricsCallbacks hooks query timing into gorm's callback chain
// for the four statement kinds.
func RegisterMetricsCallbacks(db *gorm.DB, recorder MetricsRecorder) {
	for _, h := range []struct {
		operation     string
		before, after func(name string, fn func(*gorm.DB)) error
	}{
		{"select", db.Callback().Query().Before("gorm:query").Register, db.Callback().Query().After("gorm:query").Register},
		{"insert", db.Callback().Create().Before("gorm:create").Register, db.Callback().Create().After("gorm:create").Register},
		{"update", db.Callback().Update().Before("gorm:update").Register, db.Callback().Update().After("gorm:update").Register},
		{"delete", db.Callback().Delete().Before("gorm:delete").Register, db.Callback().Delete().After("gorm:delete").Register},
	} {
		operation := h.operation
		h.before("metrics:"+operation+"_before", func(db *gorm.DB) {
			db.InstanceSet(startTimeKey, time.Now())
		})
		h.after("metrics:"+operation+"_after", func(db *gorm.DB) {
			start, ok := db.InstanceGet(startTimeKey)
			if !ok {
				return
			}
			table := db.Statement.Table
			if table == "" {
				table = "unknown"
			}
			recorder.RecordDBQuery(operation, table, time.Since(start.(time.Time)), db.Error)
		})
	}
}

// StartDBStatsCollector snapshots the connection pool every 15 seconds
// until the returned channel is closed.
func StartDBStatsCollector(db *gorm.DB, recorder MetricsRecorder) chan struct{} {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if sqlDB, err := db.DB(); err == nil {
					recorder.UpdateDBStats(sqlDB.Stats())
				}
			case <-done:
				return
			}
		}
	}()

	return done
}
