package metrics

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const collectInterval = 60 * time.Second

// BusinessMetricsCollector refreshes the project gauges from the database
// on a fixed interval. Counters are incremented inline by the services;
// gauges need a periodic recount to survive restarts.
type BusinessMetricsCollector struct {
	db      *gorm.DB
	metrics *Metrics
	logger  *zap.Logger
	done    chan struct{}
}

func NewBusinessMetricsCollector(db *gorm.DB, metrics *Metrics, logger *zap.Logger) *BusinessMetricsCollector {
	return &BusinessMetricsCollector{
		db:      db,
		metrics: metrics,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Start collects once immediately, then on every tick until Stop.
func (c *BusinessMetricsCollector) Start() {
	go func() {
		ticker := time.NewTicker(collectInterval)
		defer ticker.Stop()

		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.done:
				return
			}
		}
	}()
}

func (c *BusinessMetricsCollector) Stop() {
	close(c.done)
}

func (c *BusinessMetricsCollector) collect() {
	c.metrics.safeExecute("collectBusinessMetrics", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var rows []struct {
			Status string
			Count  int64
		}
		err := c.db.WithContext(ctx).
			Table("projects").
			Select("status, COUNT(*) AS count").
			Group("status").
			Scan(&rows).Error
		if err != nil {
			c.logger.Error("Failed to count projects", zap.Error(err))
			return
		}

		var total, pending int64
		for _, row := range rows {
			total += row.Count
			if row.Status == "PENDING" {
				pending = row.Count
			}
		}
		c.metrics.SetProjectsTotal(total)
		c.metrics.SetPendingProjectsTotal(pending)
	})
}
