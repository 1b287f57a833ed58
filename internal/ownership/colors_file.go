package ownership

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/mitchelldurbincs/ownermap/internal/common"
	"github.com/mitchelldurbincs/ownermap/internal/mapdata/scope"
)

var (
	ErrNoColor          = errors.New("no color entry for tag")
	ErrTagNotFound      = errors.New("tag not found in country colors")
	ErrUnsupportedSpace = errors.New("unsupported color space")
)

// ColorSource looks up the color of a country tag
type ColorSource interface {
	Lookup(tag string) (common.RGB, error)
}

// CountryColors is common/countries/colors.txt parsed into one color per
// top-level tag block. Only the first `color = ...` of each block counts.
type CountryColors struct {
	colors map[string]common.RGB
	errs   map[string]error
}

// ParseCountryColors reads blocks of the form
//
//	FKE = {
//		color = rgb { 200 10 30 }
//		color_ui = rgb { 220 30 50 }
//	}
//
// A bare `color = { ... }` is read as rgb; `hsv { h s v }` with channels in
// [0, 1] is converted. Problems with one block are kept and returned by
// Lookup for that tag only.
func ParseCountryColors(text string) *CountryColors {
	cc := &CountryColors{
		colors: make(map[string]common.RGB),
		errs:   make(map[string]error),
	}

	toks := tokenize(text)
	depth := 0
	tag := ""
	done := false
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t == "{":
			depth++
		case t == "}":
			if depth > 0 {
				depth--
			}
			if depth == 0 {
				tag = ""
			}
		case depth == 0 && at(toks, i+1) == "=" && at(toks, i+2) == "{":
			tag = t
			_, seenColor := cc.colors[tag]
			_, seenErr := cc.errs[tag]
			done = seenColor || seenErr
			depth++
			i += 2
		case depth == 1 && tag != "" && !done && t == "color" && at(toks, i+1) == "=":
			space := "rgb"
			j := i + 2
			if at(toks, j) != "{" {
				space = strings.ToLower(at(toks, j))
				j++
			}
			if at(toks, j) != "{" {
				cc.errs[tag] = fmt.Errorf("%s: color has no block", tag)
				done = true
				continue
			}
			var channels []string
			k := j + 1
			for ; k < len(toks) && toks[k] != "}"; k++ {
				channels = append(channels, toks[k])
			}
			c, err := toRGB(space, channels)
			if err != nil {
				cc.errs[tag] = fmt.Errorf("%s: %w", tag, err)
			} else {
				cc.colors[tag] = c
			}
			done = true
			i = k
		}
	}
	return cc
}

// Lookup implements ColorSource
func (cc *CountryColors) Lookup(tag string) (common.RGB, error) {
	if c, ok := cc.colors[tag]; ok {
		return c, nil
	}
	if err, ok := cc.errs[tag]; ok {
		return common.RGB{}, err
	}
	return common.RGB{}, fmt.Errorf("%s: %w", tag, ErrNoColor)
}

// Len returns the number of tags with a usable color
func (cc *CountryColors) Len() int {
	return len(cc.colors)
}

// SubstringColors is the legacy lookup: find the first place the
// tag appears anywhere in the file, then read the first `color = rgb`
// block after it. A tag that is a substring of an earlier tag or comment
// picks up the wrong color.
type SubstringColors struct {
	Text string
}

// Lookup implements ColorSource
func (s SubstringColors) Lookup(tag string) (common.RGB, error) {
	i := strings.Index(s.Text, tag)
	if i < 0 {
		return common.RGB{}, fmt.Errorf("%s: %w", tag, ErrTagNotFound)
	}
	tokens, err := scope.Tokens(s.Text[i:], "color = rgb")
	if err != nil {
		return common.RGB{}, fmt.Errorf("%s: %w", tag, err)
	}
	return common.ParseRGB(tokens)
}

func toRGB(space string, channels []string) (common.RGB, error) {
	switch space {
	case "rgb":
		return common.ParseRGB(channels)
	case "hsv":
		if len(channels) < 3 {
			return common.RGB{}, common.ErrChannelCount
		}
		var hsv [3]float64
		for i := range hsv {
			v, err := strconv.ParseFloat(channels[i], 64)
			if err != nil {
				return common.RGB{}, fmt.Errorf("hsv channel %d: %w", i, err)
			}
			if v < 0 || v > 1 {
				return common.RGB{}, fmt.Errorf("hsv channel %d: %w", i, common.ErrChannelRange)
			}
			hsv[i] = v
		}
		r, g, b := colorful.Hsv(hsv[0]*360, hsv[1], hsv[2]).RGB255()
		return common.RGB{R: r, G: g, B: b}, nil
	default:
		return common.RGB{}, fmt.Errorf("%q: %w", space, ErrUnsupportedSpace)
	}
}

// tokenize splits script text into words, '=', '{' and '}', dropping
// `#` comments and quotes.
func tokenize(text string) []string {
	var toks []string
	var word strings.Builder
	flush := func() {
		if word.Len() > 0 {
			toks = append(toks, word.String())
			word.Reset()
		}
	}
	inComment, inQuote := false, false
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case inComment:
			if c == '\n' {
				inComment = false
			}
		case inQuote:
			if c == '"' {
				inQuote = false
				flush()
			} else {
				word.WriteByte(c)
			}
		case c == '"':
			flush()
			inQuote = true
		case c == '#':
			flush()
			inComment = true
		case c == '{' || c == '}' || c == '=':
			flush()
			toks = append(toks, string(c))
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			flush()
		default:
			word.WriteByte(c)
		}
	}
	flush()
	return toks
}

func at(toks []string, i int) string {
	if i < 0 || i >= len(toks) {
		return ""
	}
	return toks[i]
}
