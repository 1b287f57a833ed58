// Package codec splits and joins delimiter-separated text records such as
// the rows of map/definition.csv.
package codec

import "strings"

// DefaultDelimiter is the field separator used by definition.csv
const DefaultDelimiter = ";"

// Codec splits and joins records on a single delimiter.
type Codec struct {
	Delimiter string
}

// New returns a codec for the given delimiter, falling back to DefaultDelimiter
func New(delimiter string) Codec {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	return Codec{Delimiter: delimiter}
}

// Split breaks one line into fields. An empty line yields an empty record
// (zero fields) so callers can recognise blank trailing lines.
func (c Codec) Split(line string) []string {
	if line == "" {
		return []string{}
	}
	return strings.Split(line, c.Delimiter)
}

// Join is the inverse of Split
func (c Codec) Join(fields []string) string {
	return strings.Join(fields, c.Delimiter)
}

// SplitAll splits every line
func (c Codec) SplitAll(lines []string) [][]string {
	records := make([][]string, 0, len(lines))
	for _, line := range lines {
		records = append(records, c.Split(line))
	}
	return records
}

// JoinAll joins every record
func (c Codec) JoinAll(records [][]string) []string {
	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, c.Join(r))
	}
	return lines
}
