// Package ownership turns owner tags into display colors.
package ownership

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/ownermap/internal/common"
	"github.com/mitchelldurbincs/ownermap/internal/events"
)

// Lookup modes for the country color file
const (
	LookupParsed    = "parsed"
	LookupSubstring = "substring"
)

// NewColorSource picks the color file reader for a lookup mode
func NewColorSource(mode, text string) ColorSource {
	if mode == LookupSubstring {
		return SubstringColors{Text: text}
	}
	return ParseCountryColors(text)
}

// Table maps owner tags to display colors. It is read-only once built.
type Table map[string]common.RGB

// Get returns the color for tag, or def when the tag was never resolved
func (t Table) Get(tag string, def common.RGB) common.RGB {
	if c, ok := t[tag]; ok {
		return c
	}
	return def
}

// Resolver assigns colors to owner tags
type Resolver struct {
	allow    Allowlist
	source   ColorSource
	fallback common.RGB
	runID    string
	logger   zerolog.Logger
	bus      events.Publisher
}

// NewResolver creates a resolver. fallback is the color of tags that are
// neither players nor puppets of a player.
func NewResolver(allow Allowlist, source ColorSource, fallback common.RGB, runID string, logger zerolog.Logger, bus events.Publisher) *Resolver {
	if bus == nil {
		bus = events.Discard
	}
	return &Resolver{
		allow:    allow,
		source:   source,
		fallback: fallback,
		runID:    runID,
		logger:   logger.With().Str("component", "ownership").Logger(),
		bus:      bus,
	}
}

// Resolve computes a color for every distinct non-empty tag. A tag whose
// lookup fails is published and left out of the table, so the remapper's
// own default applies to it.
func (r *Resolver) Resolve(tags []string) Table {
	start := time.Now()
	table := make(Table)
	failed := make(map[string]bool)

	for _, tag := range tags {
		if tag == "" || failed[tag] {
			continue
		}
		if _, ok := table[tag]; ok {
			continue
		}

		key, ok := r.allow.ColorKey(tag)
		if !ok {
			table[tag] = r.fallback
			continue
		}

		c, err := r.source.Lookup(key)
		if err != nil {
			failed[tag] = true
			r.bus.Publish(events.NewTagUnresolvedEvent(r.runID, tag, err))
			continue
		}
		if key != tag {
			r.logger.Debug().Str("tag", tag).Str("overlord", key).Msg("Puppet takes overlord color")
		}
		table[tag] = c
	}

	r.bus.Publish(events.NewStageCompletedEvent(r.runID, events.StageOwnership, len(table), time.Since(start)))
	return table
}
