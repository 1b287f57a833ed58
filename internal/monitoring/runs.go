// Package monitoring keeps running totals over the renders of a watch
// session.
package monitoring

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/ownermap/internal/events"
)

// RunMonitor tracks render metrics. It is an events.Subscriber.
type RunMonitor struct {
	mu sync.RWMutex

	runs          int
	failures      int
	lastRunID     string
	lastDuration  time.Duration
	peakDuration  time.Duration
	totalDuration time.Duration

	skippedFiles   int
	conflicts      int
	unresolvedTags int
	stageDurations map[string]time.Duration
}

// NewRunMonitor creates an empty monitor
func NewRunMonitor() *RunMonitor {
	return &RunMonitor{
		stageDurations: make(map[string]time.Duration),
	}
}

// ID returns the subscriber id
func (m *RunMonitor) ID() string {
	return "run-monitor"
}

// InterestedIn reports which events feed the metrics
func (m *RunMonitor) InterestedIn(eventType string) bool {
	switch eventType {
	case events.TypeRunFinished, events.TypeRunFailed, events.TypeStageCompleted,
		events.TypeStateFileSkipped, events.TypeProvinceConflict, events.TypeTagUnresolved:
		return true
	}
	return false
}

// HandleEvent updates the totals
func (m *RunMonitor) HandleEvent(event events.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch e := event.(type) {
	case *events.RunFinishedEvent:
		m.runs++
		m.lastRunID = e.RunID()
		m.lastDuration = e.Duration
		m.totalDuration += e.Duration
		if e.Duration > m.peakDuration {
			m.peakDuration = e.Duration
		}
	case *events.RunFailedEvent:
		m.runs++
		m.failures++
		m.lastRunID = e.RunID()
	case *events.StageCompletedEvent:
		// Last run only
		m.stageDurations[e.Stage] = e.Duration
	case *events.StateFileSkippedEvent:
		m.skippedFiles++
	case *events.ProvinceConflictEvent:
		m.conflicts++
	case *events.TagUnresolvedEvent:
		m.unresolvedTags++
	}
}

// GetMetrics returns a snapshot of the current metrics
func (m *RunMonitor) GetMetrics() RunMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	metrics := RunMetrics{
		Runs:           m.runs,
		Failures:       m.failures,
		LastRunID:      m.lastRunID,
		LastDuration:   m.lastDuration,
		PeakDuration:   m.peakDuration,
		SkippedFiles:   m.skippedFiles,
		Conflicts:      m.conflicts,
		UnresolvedTags: m.unresolvedTags,
		StageDurations: copyMap(m.stageDurations),
	}
	if ok := m.runs - m.failures; ok > 0 {
		metrics.MeanDuration = m.totalDuration / time.Duration(ok)
	}
	return metrics
}

// Log writes the metrics as one structured line
func (m *RunMonitor) Log(logger zerolog.Logger) {
	metrics := m.GetMetrics()
	logger.Info().
		Int("runs", metrics.Runs).
		Int("failures", metrics.Failures).
		Dur("last_duration", metrics.LastDuration).
		Dur("mean_duration", metrics.MeanDuration).
		Dur("peak_duration", metrics.PeakDuration).
		Int("skipped_files", metrics.SkippedFiles).
		Int("conflicts", metrics.Conflicts).
		Int("unresolved_tags", metrics.UnresolvedTags).
		Msg("Watch session metrics")
}

// RunMetrics contains render statistics
type RunMetrics struct {
	Runs           int                      `json:"runs"`
	Failures       int                      `json:"failures"`
	LastRunID      string                   `json:"last_run_id"`
	LastDuration   time.Duration            `json:"last_duration"`
	MeanDuration   time.Duration            `json:"mean_duration"`
	PeakDuration   time.Duration            `json:"peak_duration"`
	SkippedFiles   int                      `json:"skipped_files"`
	Conflicts      int                      `json:"conflicts"`
	UnresolvedTags int                      `json:"unresolved_tags"`
	StageDurations map[string]time.Duration `json:"stage_durations"`
}

func copyMap(m map[string]time.Duration) map[string]time.Duration {
	result := make(map[string]time.Duration, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}
