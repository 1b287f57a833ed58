package events

import "time"

// Event type constants
const (
	TypeRunStarted       = "run.started"
	TypeRunFinished      = "run.finished"
	TypeRunFailed        = "run.failed"
	TypeStageCompleted   = "stage.completed"
	TypeStateFileSkipped = "state.skipped"
	TypeProvinceConflict = "province.conflict"
	TypeTagUnresolved    = "tag.unresolved"
)

// Pipeline stage names
const (
	StageProvinces = "provinces"
	StageStates    = "states"
	StageOwnership = "ownership"
	StageColorMap  = "color_map"
	StageRemap     = "remap"
	StageWrite     = "write"
)

// RunStartedEvent is published before any input is read
type RunStartedEvent struct {
	BaseEvent
	ModRoot string
}

// NewRunStartedEvent creates a new RunStartedEvent
func NewRunStartedEvent(runID, modRoot string) *RunStartedEvent {
	return &RunStartedEvent{
		BaseEvent: newBase(TypeRunStarted, runID),
		ModRoot:   modRoot,
	}
}

// RunFinishedEvent is published after the output image is written
type RunFinishedEvent struct {
	BaseEvent
	OutputPath string
	Duration   time.Duration
}

// NewRunFinishedEvent creates a new RunFinishedEvent
func NewRunFinishedEvent(runID, outputPath string, d time.Duration) *RunFinishedEvent {
	return &RunFinishedEvent{
		BaseEvent:  newBase(TypeRunFinished, runID),
		OutputPath: outputPath,
		Duration:   d,
	}
}

// RunFailedEvent is published when a run aborts before writing output
type RunFailedEvent struct {
	BaseEvent
	Err error
}

// NewRunFailedEvent creates a new RunFailedEvent
func NewRunFailedEvent(runID string, err error) *RunFailedEvent {
	return &RunFailedEvent{
		BaseEvent: newBase(TypeRunFailed, runID),
		Err:       err,
	}
}

// StageCompletedEvent reports one finished pipeline stage
type StageCompletedEvent struct {
	BaseEvent
	Stage    string
	Items    int
	Duration time.Duration
}

// NewStageCompletedEvent creates a new StageCompletedEvent
func NewStageCompletedEvent(runID, stage string, items int, d time.Duration) *StageCompletedEvent {
	return &StageCompletedEvent{
		BaseEvent: newBase(TypeStageCompleted, runID),
		Stage:     stage,
		Items:     items,
		Duration:  d,
	}
}

// StateFileSkippedEvent is published when a state file could not be fully applied
type StateFileSkippedEvent struct {
	BaseEvent
	Path string
	Err  error
}

// NewStateFileSkippedEvent creates a new StateFileSkippedEvent
func NewStateFileSkippedEvent(runID, path string, err error) *StateFileSkippedEvent {
	return &StateFileSkippedEvent{
		BaseEvent: newBase(TypeStateFileSkipped, runID),
		Path:      path,
		Err:       err,
	}
}

// ProvinceConflictEvent is published when a second state claims a province
type ProvinceConflictEvent struct {
	BaseEvent
	Province      int
	PreviousState int
	State         int
	Path          string
}

// NewProvinceConflictEvent creates a new ProvinceConflictEvent
func NewProvinceConflictEvent(runID string, province, previous, state int, path string) *ProvinceConflictEvent {
	return &ProvinceConflictEvent{
		BaseEvent:     newBase(TypeProvinceConflict, runID),
		Province:      province,
		PreviousState: previous,
		State:         state,
		Path:          path,
	}
}

// TagUnresolvedEvent is published when a tag's color lookup fails
type TagUnresolvedEvent struct {
	BaseEvent
	Tag string
	Err error
}

// NewTagUnresolvedEvent creates a new TagUnresolvedEvent
func NewTagUnresolvedEvent(runID, tag string, err error) *TagUnresolvedEvent {
	return &TagUnresolvedEvent{
		BaseEvent: newBase(TypeTagUnresolved, runID),
		Tag:       tag,
		Err:       err,
	}
}
