package subscribers

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/ownermap/internal/events"
)

// LoggerSubscriber logs pipeline events to structured logs
type LoggerSubscriber struct {
	id              string
	logger          zerolog.Logger
	eventTypeFilter map[string]bool // If non-nil, only log these event types
}

// NewLoggerSubscriber creates a new logger subscriber
func NewLoggerSubscriber(id string, logger zerolog.Logger) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:     id,
		logger: logger.With().Str("subscriber", "event_logger").Logger(),
	}
}

// ID returns the subscriber's unique identifier
func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// SetEventFilter sets which event types to log (nil means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}

	ls.eventTypeFilter = make(map[string]bool)
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

// InterestedIn returns true if the subscriber wants to receive this event type
func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent logs the event. Recoverable failures are logged at error
// level, conflicts as warnings, progress at info and stage timings at debug.
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	eventLogger := ls.logger.With().
		Str("event_type", event.Type()).
		Str("run_id", event.RunID()).
		Logger()

	switch e := event.(type) {
	case *events.RunStartedEvent:
		eventLogger.Info().
			Str("mod_root", e.ModRoot).
			Msg("Render started")

	case *events.RunFinishedEvent:
		eventLogger.Info().
			Str("output", e.OutputPath).
			Dur("duration", e.Duration).
			Msg("Render finished")

	case *events.RunFailedEvent:
		// The caller reports the error itself
		eventLogger.Debug().
			Err(e.Err).
			Msg("Render aborted")

	case *events.StageCompletedEvent:
		eventLogger.Debug().
			Str("stage", e.Stage).
			Int("items", e.Items).
			Dur("duration", e.Duration).
			Msg("Stage completed")

	case *events.StateFileSkippedEvent:
		eventLogger.Error().
			Err(e.Err).
			Str("path", e.Path).
			Msg("State file not applied")

	case *events.ProvinceConflictEvent:
		eventLogger.Warn().
			Int("province", e.Province).
			Int("previous_state", e.PreviousState).
			Int("state", e.State).
			Str("path", e.Path).
			Msg("Province claimed by more than one state")

	case *events.TagUnresolvedEvent:
		eventLogger.Error().
			Err(e.Err).
			Str("tag", e.Tag).
			Msg("Could not resolve tag color")

	default:
		eventLogger.Info().Msg("Pipeline event")
	}
}
