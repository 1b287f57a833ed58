package monitoring

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/mitchelldurbincs/ownermap/internal/events"
)

func TestRunMonitorInterestedIn(t *testing.T) {
	m := NewRunMonitor()
	assert.Equal(t, "run-monitor", m.ID())
	assert.True(t, m.InterestedIn(events.TypeRunFinished))
	assert.True(t, m.InterestedIn(events.TypeTagUnresolved))
	assert.False(t, m.InterestedIn(events.TypeRunStarted))
}

func TestRunMonitorMetrics(t *testing.T) {
	m := NewRunMonitor()
	bus := events.NewEventBus(zerolog.Nop())
	bus.Subscribe(m)

	bus.Publish(events.NewStageCompletedEvent("a", events.StageRemap, 10, 5*time.Millisecond))
	bus.Publish(events.NewStateFileSkippedEvent("a", "1-Foo.txt", errors.New("no id")))
	bus.Publish(events.NewRunFinishedEvent("a", "map.png", 100*time.Millisecond))
	bus.Publish(events.NewRunFailedEvent("b", errors.New("fatal")))
	bus.Publish(events.NewTagUnresolvedEvent("c", "FKE", errors.New("missing")))
	bus.Publish(events.NewProvinceConflictEvent("c", 4, 3, 4, "4-Bar.txt"))
	bus.Publish(events.NewStageCompletedEvent("c", events.StageRemap, 10, 7*time.Millisecond))
	bus.Publish(events.NewRunFinishedEvent("c", "map.png", 300*time.Millisecond))

	metrics := m.GetMetrics()
	assert.Equal(t, 3, metrics.Runs)
	assert.Equal(t, 1, metrics.Failures)
	assert.Equal(t, "c", metrics.LastRunID)
	assert.Equal(t, 300*time.Millisecond, metrics.LastDuration)
	assert.Equal(t, 300*time.Millisecond, metrics.PeakDuration)
	assert.Equal(t, 200*time.Millisecond, metrics.MeanDuration)
	assert.Equal(t, 1, metrics.SkippedFiles)
	assert.Equal(t, 1, metrics.Conflicts)
	assert.Equal(t, 1, metrics.UnresolvedTags)
	assert.Equal(t, 7*time.Millisecond, metrics.StageDurations[events.StageRemap])

	// Snapshots are copies
	metrics.StageDurations[events.StageRemap] = 0
	assert.Equal(t, 7*time.Millisecond, m.GetMetrics().StageDurations[events.StageRemap])
}

func TestRunMonitorLog(t *testing.T) {
	m := NewRunMonitor()
	m.HandleEvent(events.NewRunFinishedEvent("a", "map.png", time.Second))

	var buf bytes.Buffer
	m.Log(zerolog.New(&buf))
	assert.Contains(t, buf.String(), `"runs":1`)
	assert.Contains(t, buf.String(), "Watch session metrics")
}
