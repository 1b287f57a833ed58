// Package remap builds the old color -> new color table for a province map
// and rewrites a bitmap with it.
package remap

import (
	"github.com/mitchelldurbincs/ownermap/internal/common"
	"github.com/mitchelldurbincs/ownermap/internal/ownership"
	"github.com/mitchelldurbincs/ownermap/internal/raster"
)

// StateLookup is the part of the state table the remapper needs
type StateLookup interface {
	// StateOf returns the state id of province index i, 0 if none
	StateOf(i int) int
	// Owner returns the owner tag of a state
	Owner(stateID int) (string, bool)
}

// ColorMap maps a province's color in the source bitmap to the color of
// its owner
type ColorMap map[common.RGB]common.RGB

// Build fills the color map. Provinces without a state are left out.
// Provinces whose state has no owner, or whose owner has no resolved
// color, get fallback.
//
// Every display color that is not itself a province color also maps to
// itself, so running Apply over an already recolored bitmap is a no-op.
func Build(provinceColors []common.RGB, states StateLookup, owners ownership.Table, fallback common.RGB) ColorMap {
	m := make(ColorMap, len(provinceColors))
	for i, old := range provinceColors {
		stateID := states.StateOf(i)
		if stateID == 0 {
			continue
		}
		tag, _ := states.Owner(stateID)
		m[old] = owners.Get(tag, fallback)
	}

	isProvince := make(map[common.RGB]bool, len(provinceColors))
	for _, c := range provinceColors {
		isProvince[c] = true
	}
	display := make([]common.RGB, 0, len(m))
	for _, v := range m {
		display = append(display, v)
	}
	for _, v := range display {
		if !isProvince[v] {
			m[v] = v
		}
	}
	return m
}

// Stats describes one Apply pass
type Stats struct {
	Pixels   int
	Mapped   int
	Fallback int
}

// Apply rewrites every pixel of b in place. Pixels whose color is a key of
// m take the mapped color; every other pixel, including non-province
// background, becomes fallback.
func Apply(b *raster.Bitmap, m ColorMap, fallback common.RGB) Stats {
	st := Stats{Pixels: b.Len()}
	for i := 0; i < st.Pixels; i++ {
		c, ok := m[b.Pixel(i)]
		if ok {
			st.Mapped++
		} else {
			c = fallback
			st.Fallback++
		}
		b.SetPixel(i, c)
	}
	return st
}
