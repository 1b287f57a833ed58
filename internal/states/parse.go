package states

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchelldurbincs/ownermap/internal/mapdata/scope"
	"github.com/mitchelldurbincs/ownermap/internal/modfs"
)

var (
	ErrNoID          = errors.New("no id assignment")
	ErrBadID         = errors.New("state id is not an integer")
	ErrStateIDRange  = errors.New("state id out of range")
	ErrBadProvince   = errors.New("province id is not an integer")
	ErrProvinceRange = errors.New("province id out of range")
)

var (
	idLine    = regexp.MustCompile(`^\s*id\s*=(.*)$`)
	ownerLine = regexp.MustCompile(`^\s*owner\s*=\s*([A-Za-z0-9]*)`)
)

// ProvincesLabel precedes the member province list in a state file
const ProvincesLabel = "provinces"

// Record is what one state file contributes. ID is -1 when the file has
// no id line. ProvincesErr is set when the province list could not be read;
// the id and owner are still usable in that case.
type Record struct {
	Path         string
	ID           int
	Owner        string
	Provinces    []int
	ProvincesErr error
}

// Parse extracts the id, owner and member provinces from one state file
func Parse(path, text string) (Record, error) {
	rec := Record{Path: path, ID: -1}
	lines := modfs.SplitLines(text)

	for _, line := range lines {
		m := idLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		raw := strings.TrimSpace(stripComment(m[1]))
		id, err := strconv.Atoi(raw)
		if err != nil {
			return rec, fmt.Errorf("%q: %w", raw, ErrBadID)
		}
		rec.ID = id
		break
	}

	for _, line := range lines {
		if m := ownerLine.FindStringSubmatch(line); m != nil {
			rec.Owner = m[1]
			break
		}
	}

	tokens, err := scope.Tokens(text, ProvincesLabel)
	if err != nil {
		rec.ProvincesErr = err
		return rec, nil
	}
	provinces := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		p, err := strconv.Atoi(tok)
		if err != nil {
			rec.ProvincesErr = fmt.Errorf("%q: %w", tok, ErrBadProvince)
			return rec, nil
		}
		provinces = append(provinces, p)
	}
	rec.Provinces = provinces
	return rec, nil
}

func stripComment(s string) string {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		return s[:i]
	}
	return s
}
