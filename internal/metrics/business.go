package metrics

// IncrementProjectCreated increments the project creation counter
func (m *Metrics) IncrementProjectCreated() {
	m.safeExecute("IncrementProjectCreated", func() {
		m.ProjectsCreatedTotal.Inc()
	})
}

// RecordDecision increments the decision counter for a decision type
func (m *Metrics) RecordDecision(decisionType string) {
	m.safeExecute("RecordDecision", func() {
		m.DecisionsTotal.WithLabelValues(decisionType).Inc()
	})
}

// IncrementUpload increments the confirmed upload counter
func (m *Metrics) IncrementUpload() {
	m.safeExecute("IncrementUpload", func() {
		m.UploadsTotal.Inc()
	})
}

// IncrementClientView increments the client view counter
func (m *Metrics) IncrementClientView() {
	m.safeExecute("IncrementClientView", func() {
		m.ClientViewsTotal.Inc()
	})
}

// RecordOrphanCleanup records an orphaned object cleanup attempt
func (m *Metrics) RecordOrphanCleanup(result string) {
	m.safeExecute("RecordOrphanCleanup", func() {
		m.OrphanCleanupsTotal.WithLabelValues(result).Inc()
	})
}

// SetProjectsTotal sets the total projects gauge
func (m *Metrics) SetProjectsTotal(count int64) {
	m.safeExecute("SetProjectsTotal", func() {
		m.ProjectsTotal.Set(float64(count))
	})
}

// SetPendingProjectsTotal sets the pending projects gauge
func (m *Metrics) SetPendingProjectsTotal(count int64) {
	m.safeExecute("SetPendingProjectsTotal", func() {
		m.PendingProjectsTotal.Set(float64(count))
	})
}
