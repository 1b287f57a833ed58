// Package pipeline wires the table builders and the remapper into one run:
// load the bitmap, build the province, state and owner tables, rewrite the
// pixels, and write the result.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/ownermap/internal/config"
	"github.com/mitchelldurbincs/ownermap/internal/events"
	"github.com/mitchelldurbincs/ownermap/internal/events/subscribers"
	"github.com/mitchelldurbincs/ownermap/internal/mapdata/codec"
	"github.com/mitchelldurbincs/ownermap/internal/modfs"
	"github.com/mitchelldurbincs/ownermap/internal/ownership"
	"github.com/mitchelldurbincs/ownermap/internal/provinces"
	"github.com/mitchelldurbincs/ownermap/internal/remap"
	"github.com/mitchelldurbincs/ownermap/internal/states"
)

// Summary describes a finished run
type Summary struct {
	RunID      string
	ModRoot    string
	OutputPath string

	Provinces      int
	StatesParsed   int
	StatesSkipped  int
	Conflicts      int
	TagsResolved   int
	TagsUnresolved int
	Pixels         int
	Fallback       int

	Duration time.Duration
}

// Runner executes pipeline runs against one configuration
type Runner struct {
	mu     sync.Mutex
	cfg    config.Config
	logger zerolog.Logger
	bus    *events.EventBus
}

// NewRunner creates a runner. Pipeline events are logged through logger.
func NewRunner(cfg *config.Config, logger zerolog.Logger) *Runner {
	bus := events.NewEventBus(logger)
	bus.Subscribe(subscribers.NewLoggerSubscriber("pipeline-log", logger))
	return &Runner{
		cfg:    *cfg,
		logger: logger.With().Str("component", "pipeline").Logger(),
		bus:    bus,
	}
}

// Bus exposes the event bus so callers can add subscribers
func (r *Runner) Bus() *events.EventBus {
	return r.bus
}

// SetConfig replaces the configuration used by later runs
func (r *Runner) SetConfig(cfg *config.Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg = *cfg
}

// Config returns a copy of the current configuration
func (r *Runner) Config() config.Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg
}

// Run renders one ownership map for the mod at modRoot. Failures to read a
// required input or write the output come back as *modfs.FileError.
// Problems inside individual state files or color entries are published
// as events and do not stop the run.
func (r *Runner) Run(ctx context.Context, modRoot string) (*Summary, error) {
	runID := uuid.New().String()
	r.bus.Publish(events.NewRunStartedEvent(runID, modRoot))

	sum, err := r.run(ctx, runID, modRoot)
	if err != nil {
		r.bus.Publish(events.NewRunFailedEvent(runID, err))
		return nil, err
	}
	return sum, nil
}

func (r *Runner) run(ctx context.Context, runID, modRoot string) (*Summary, error) {
	cfg := r.Config()
	start := time.Now()
	logger := r.logger.With().Str("run_id", runID).Logger()
	sum := &Summary{RunID: runID, ModRoot: modRoot, OutputPath: cfg.Output.Path}

	mod, err := modfs.Open(modRoot, cfg.Input.Encoding, logger)
	if err != nil {
		return nil, err
	}

	bitmap, err := mod.LoadBitmap(cfg.Input.ProvincesBitmap)
	if err != nil {
		return nil, err
	}

	stageStart := time.Now()
	lines, err := mod.ReadLines(cfg.Input.Definition)
	if err != nil {
		return nil, err
	}
	provTable, err := provinces.Build(codec.New(cfg.Input.Delimiter).SplitAll(lines))
	if err != nil {
		return nil, fmt.Errorf("build province table from %s: %w", cfg.Input.Definition, err)
	}
	sum.Provinces = provTable.Len()
	r.bus.Publish(events.NewStageCompletedEvent(runID, events.StageProvinces, sum.Provinces, time.Since(stageStart)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	statesFS, err := mod.Dir(cfg.Input.StatesDir)
	if err != nil {
		return nil, err
	}
	builder := states.NewBuilder(statesFS, provTable.Len(), mod.Decode, states.Options{
		Order:           states.Order(cfg.States.Order),
		ReportConflicts: cfg.States.Conflicts == "report",
		RunID:           runID,
	}, logger, r.bus)
	stateTable, err := builder.Build()
	if err != nil {
		return nil, &modfs.FileError{Op: "walk states", Path: cfg.Input.StatesDir, Err: err}
	}
	sum.StatesParsed = stateTable.Parsed
	sum.StatesSkipped = stateTable.Skipped
	sum.Conflicts = stateTable.Conflicts

	colorText, err := mod.ReadString(cfg.Input.CountryColors)
	if err != nil {
		return nil, err
	}
	puppets, err := cfg.PuppetMap()
	if err != nil {
		return nil, err
	}
	resolver := ownership.NewResolver(
		ownership.NewAllowlist(cfg.Ownership.Players, puppets),
		ownership.NewColorSource(cfg.Ownership.ColorLookup, colorText),
		cfg.UnresolvedTagColor(),
		runID, logger, r.bus,
	)
	tags := stateTable.OwnerTags()
	owners := resolver.Resolve(tags)
	sum.TagsResolved = len(owners)
	sum.TagsUnresolved = countDistinct(tags) - len(owners)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stageStart = time.Now()
	colorMap := remap.Build(provTable.Colors(), stateTable, owners, cfg.UnownedColor())
	r.bus.Publish(events.NewStageCompletedEvent(runID, events.StageColorMap, len(colorMap), time.Since(stageStart)))

	stageStart = time.Now()
	stats := remap.Apply(bitmap, colorMap, cfg.UnownedColor())
	sum.Pixels = stats.Pixels
	sum.Fallback = stats.Fallback
	r.bus.Publish(events.NewStageCompletedEvent(runID, events.StageRemap, stats.Pixels, time.Since(stageStart)))

	stageStart = time.Now()
	if err := modfs.WriteImage(cfg.Output.Path, cfg.Output.Format, bitmap); err != nil {
		return nil, err
	}
	r.bus.Publish(events.NewStageCompletedEvent(runID, events.StageWrite, 1, time.Since(stageStart)))

	sum.Duration = time.Since(start)
	r.bus.Publish(events.NewRunFinishedEvent(runID, cfg.Output.Path, sum.Duration))
	sum.Log(logger)
	return sum, nil
}

// Log writes the summary as one structured line
func (s *Summary) Log(logger zerolog.Logger) {
	logger.Info().
		Str("mod_root", s.ModRoot).
		Str("output", s.OutputPath).
		Int("provinces", s.Provinces).
		Int("states_parsed", s.StatesParsed).
		Int("states_skipped", s.StatesSkipped).
		Int("conflicts", s.Conflicts).
		Int("tags_resolved", s.TagsResolved).
		Int("tags_unresolved", s.TagsUnresolved).
		Int("pixels", s.Pixels).
		Int("fallback_pixels", s.Fallback).
		Dur("duration", s.Duration).
		Msg("Ownership map written")
}

func countDistinct(tags []string) int {
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		if t != "" {
			seen[t] = true
		}
	}
	return len(seen)
}
