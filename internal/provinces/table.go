// Package provinces builds the province color table from the records of
// map/definition.csv.
package provinces

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mitchelldurbincs/ownermap/internal/common"
)

var ErrMalformedRecord = errors.New("malformed definition record")

// Record is one parsed definition row
type Record struct {
	ID    int
	Color common.RGB
}

// Table holds province colors ordered by ascending id. Index i is the
// (i+1)-th smallest id, which for a definition file starting at id 0 is
// the id itself.
type Table struct {
	Records []Record
}

// Len returns the number of provinces
func (t *Table) Len() int {
	return len(t.Records)
}

// Color returns the bitmap color of the i-th province
func (t *Table) Color(i int) common.RGB {
	return t.Records[i].Color
}

// Colors returns just the color column
func (t *Table) Colors() []common.RGB {
	out := make([]common.RGB, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.Color
	}
	return out
}

// Build parses split definition records. A final record with zero fields
// (a blank trailing line) is dropped; any other malformed record fails the
// whole build.
func Build(records [][]string) (*Table, error) {
	if n := len(records); n > 0 && len(records[n-1]) == 0 {
		records = records[:n-1]
	}

	parsed := make([]Record, 0, len(records))
	for i, fields := range records {
		rec, err := parseRecord(fields)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		parsed = append(parsed, rec)
	}

	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].ID < parsed[j].ID
	})

	return &Table{Records: parsed}, nil
}

func parseRecord(fields []string) (Record, error) {
	if len(fields) < 4 {
		return Record{}, fmt.Errorf("%d fields, need at least 4: %w", len(fields), ErrMalformedRecord)
	}
	id, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return Record{}, fmt.Errorf("id %q: %w", fields[0], ErrMalformedRecord)
	}
	c, err := common.ParseRGB(fields[1:4])
	if err != nil {
		return Record{}, fmt.Errorf("province %d: %v: %w", id, err, ErrMalformedRecord)
	}
	return Record{ID: id, Color: c}, nil
}
