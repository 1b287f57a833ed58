// Package states scans the state history files of a mod and builds the
// province -> state and state -> owner tables.
package states

import (
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/ownermap/internal/events"
)

// Order controls the sequence in which state files are applied. When two
// files claim the same province the later one wins.
type Order string

const (
	// OrderLexical applies files sorted by path
	OrderLexical Order = "lexical"
	// OrderStateID applies files sorted by their parsed state id
	OrderStateID Order = "id"
)

// Options tunes how the table is built
type Options struct {
	Order           Order
	ReportConflicts bool
	RunID           string
}

// Table maps provinces to states and states to owner tags
type Table struct {
	// ProvinceToState is indexed by province id; 0 means no state
	ProvinceToState []int

	// Owners is indexed by state id - 1; "" means no owner
	Owners []string

	Parsed    int
	Skipped   int
	Conflicts int
}

// StateOf returns the state id of province index i (0 if none)
func (t *Table) StateOf(i int) int {
	if i < 0 || i >= len(t.ProvinceToState) {
		return 0
	}
	return t.ProvinceToState[i]
}

// Owner returns the owner tag of a state
func (t *Table) Owner(stateID int) (string, bool) {
	if stateID < 1 || stateID > len(t.Owners) {
		return "", false
	}
	tag := t.Owners[stateID-1]
	return tag, tag != ""
}

// OwnerTags returns the owner of every state in state id order, skipping
// states without one. Tags repeat when a country owns several states.
func (t *Table) OwnerTags() []string {
	tags := make([]string, 0, len(t.Owners))
	for _, tag := range t.Owners {
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Decoder turns raw file bytes into text
type Decoder func([]byte) (string, error)

// Builder reads every regular file below a states directory
type Builder struct {
	fsys          fs.FS
	decode        Decoder
	provinceCount int
	opts          Options
	logger        zerolog.Logger
	bus           events.Publisher
}

// NewBuilder creates a builder. provinceCount sizes the province table;
// a nil decode treats files as UTF-8.
func NewBuilder(fsys fs.FS, provinceCount int, decode Decoder, opts Options, logger zerolog.Logger, bus events.Publisher) *Builder {
	if decode == nil {
		decode = func(b []byte) (string, error) { return string(b), nil }
	}
	if opts.Order == "" {
		opts.Order = OrderLexical
	}
	if bus == nil {
		bus = events.Discard
	}
	return &Builder{
		fsys:          fsys,
		decode:        decode,
		provinceCount: provinceCount,
		opts:          opts,
		logger:        logger.With().Str("component", "states").Logger(),
		bus:           bus,
	}
}

// Build walks the directory and applies every state file it can read.
// Per-file problems are published and logged; only a failure to walk the
// directory root is returned.
func (b *Builder) Build() (*Table, error) {
	start := time.Now()

	var paths []string
	err := fs.WalkDir(b.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == "." {
				return err
			}
			b.skip(path, err)
			return nil
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk states directory: %w", err)
	}

	// One owner slot per state file found anywhere below the root
	table := &Table{
		ProvinceToState: make([]int, b.provinceCount),
		Owners:          make([]string, len(paths)),
	}

	records := make([]Record, 0, len(paths))
	for _, path := range paths {
		rec, err := b.parseFile(path)
		if err != nil {
			table.Skipped++
			b.skip(path, err)
			continue
		}
		records = append(records, rec)
	}

	b.sort(records)
	for _, rec := range records {
		b.apply(table, rec)
	}

	b.bus.Publish(events.NewStageCompletedEvent(b.opts.RunID, events.StageStates, table.Parsed, time.Since(start)))
	b.logger.Debug().
		Int("files", len(paths)).
		Int("parsed", table.Parsed).
		Int("skipped", table.Skipped).
		Int("conflicts", table.Conflicts).
		Msg("State table built")
	return table, nil
}

func (b *Builder) parseFile(path string) (Record, error) {
	raw, err := fs.ReadFile(b.fsys, path)
	if err != nil {
		return Record{}, fmt.Errorf("read: %w", err)
	}
	text, err := b.decode(raw)
	if err != nil {
		return Record{}, fmt.Errorf("decode: %w", err)
	}
	return Parse(path, text)
}

func (b *Builder) sort(records []Record) {
	switch b.opts.Order {
	case OrderStateID:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].ID < records[j].ID
		})
	default:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Path < records[j].Path
		})
	}
}

func (b *Builder) apply(t *Table, rec Record) {
	if rec.ID == -1 {
		t.Skipped++
		b.skip(rec.Path, ErrNoID)
		return
	}
	if rec.ID < 1 || rec.ID > len(t.Owners) {
		t.Skipped++
		b.skip(rec.Path, fmt.Errorf("id %d, have %d state files: %w", rec.ID, len(t.Owners), ErrStateIDRange))
		return
	}

	t.Parsed++
	if rec.Owner != "" {
		t.Owners[rec.ID-1] = rec.Owner
	}

	if rec.ProvincesErr != nil {
		b.skip(rec.Path, fmt.Errorf("provinces: %w", rec.ProvincesErr))
		return
	}
	for _, p := range rec.Provinces {
		if p < 0 || p >= len(t.ProvinceToState) {
			b.skip(rec.Path, fmt.Errorf("province %d, have %d provinces: %w", p, len(t.ProvinceToState), ErrProvinceRange))
			return
		}
	}

	for _, p := range rec.Provinces {
		if prev := t.ProvinceToState[p]; prev != 0 && prev != rec.ID {
			t.Conflicts++
			if b.opts.ReportConflicts {
				b.bus.Publish(events.NewProvinceConflictEvent(b.opts.RunID, p, prev, rec.ID, rec.Path))
			}
		}
		t.ProvinceToState[p] = rec.ID
	}
}

func (b *Builder) skip(path string, err error) {
	b.bus.Publish(events.NewStateFileSkippedEvent(b.opts.RunID, path, err))
}
