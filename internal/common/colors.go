package common

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// RGB is the logical color representation used by every lookup table.
// Channel order on disk is handled by the raster package only.
type RGB struct {
	R, G, B uint8
}

// Named colors used when an owner cannot be resolved
var (
	// DarkGray is assigned to tags that are neither players nor puppets of a player
	DarkGray = RGB{64, 64, 64}
	// Navy is painted on pixels whose province has no resolved owner color
	Navy = RGB{0, 0, 64}
)

// RGBA converts to the standard library color type (fully opaque)
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// String renders the color the way the game data writes it
func (c RGB) String() string {
	return fmt.Sprintf("rgb { %d %d %d }", c.R, c.G, c.B)
}

// FromColor converts any color.Color to RGB, dropping alpha
func FromColor(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	return RGB{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
}

// FromTriple builds an RGB from config-style integer triples.
func FromTriple(t [3]int) (RGB, error) {
	for i, v := range t {
		if v < 0 || v > 255 {
			return RGB{}, fmt.Errorf("channel %d: %w", i, ErrChannelRange)
		}
	}
	return RGB{uint8(t[0]), uint8(t[1]), uint8(t[2])}, nil
}

// ParseRGB builds a color from the first three tokens, which must be
// integers in [0, 255]. Extra tokens are ignored.
func ParseRGB(tokens []string) (RGB, error) {
	if len(tokens) < 3 {
		return RGB{}, fmt.Errorf("need 3 channels, got %d: %w", len(tokens), ErrChannelCount)
	}
	var ch [3]int
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(tokens[i]))
		if err != nil {
			return RGB{}, fmt.Errorf("channel %d %q: %w", i, tokens[i], err)
		}
		ch[i] = v
	}
	return FromTriple(ch)
}
