package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/mitchelldurbincs/ownermap/internal/common"
	"github.com/mitchelldurbincs/ownermap/internal/raster"
)

// ModTree writes a mod directory layout under a temp dir
type ModTree struct {
	t    testing.TB
	Root string
}

// NewModTree creates an empty mod root
func NewModTree(t testing.TB) *ModTree {
	t.Helper()
	return &ModTree{t: t, Root: t.TempDir()}
}

// Path returns the absolute path of a mod-relative file
func (m *ModTree) Path(rel string) string {
	return filepath.Join(m.Root, filepath.FromSlash(rel))
}

// WriteFile writes content to rel, creating parent directories
func (m *ModTree) WriteFile(rel string, content []byte) {
	m.t.Helper()
	p := m.Path(rel)
	require.NoError(m.t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(m.t, os.WriteFile(p, content, 0644))
}

// WriteText writes a text file
func (m *ModTree) WriteText(rel, content string) {
	m.t.Helper()
	m.WriteFile(rel, []byte(content))
}

// WriteBitmap encodes b as a 24-bit BMP at rel
func (m *ModTree) WriteBitmap(rel string, b *raster.Bitmap) {
	m.t.Helper()
	p := m.Path(rel)
	require.NoError(m.t, os.MkdirAll(filepath.Dir(p), 0755))
	f, err := os.Create(p)
	require.NoError(m.t, err)
	defer f.Close()
	require.NoError(m.t, bmp.Encode(f, b.Image()))
}

// Sample mod colors
var (
	SampleFKE        = common.RGB{R: 200, G: 0, B: 0}
	SampleBackground = common.RGB{R: 255, G: 255, B: 255}
)

// SampleProvinceColors are the definition colors of provinces 0-4
var SampleProvinceColors = []common.RGB{
	{R: 0, G: 0, B: 0},
	{R: 10, G: 0, B: 0},
	{R: 20, G: 0, B: 0},
	{R: 30, G: 0, B: 0},
	{R: 40, G: 0, B: 0},
}

// SampleBitmap is one pixel per province followed by a background pixel
func SampleBitmap() *raster.Bitmap {
	b := raster.New(len(SampleProvinceColors)+1, 1)
	for i, c := range SampleProvinceColors {
		b.SetPixel(i, c)
	}
	b.SetPixel(len(SampleProvinceColors), SampleBackground)
	return b
}

// WriteSampleMod writes a small mod at the default input paths:
//
//	state 1: provinces 1 2, owner FKE (player)
//	state 2: province 3, owner VN9 (puppet of FKE)
//	state 3: province 4, owner GER (not allowlisted)
//
// Province 0 belongs to no state.
func WriteSampleMod(t testing.TB) *ModTree {
	t.Helper()
	m := NewModTree(t)
	m.WriteBitmap("map/provinces.bmp", SampleBitmap())
	m.WriteText("map/definition.csv",
		"0;0;0;0;land;false;unknown;0\n"+
			"3;30;0;0;land;false;plains;1\n"+
			"1;10;0;0;land;false;plains;1\n"+
			"2;20;0;0;land;false;hills;1\n"+
			"4;40;0;0;land;false;forest;2\n")
	m.WriteText("history/states/1-Moscow.txt", `state = {
	id = 1
	name = "STATE_1"
	history = {
		owner = FKE
		add_core_of = FKE
	}
	provinces = {
		1 2
	}
}
`)
	m.WriteText("history/states/2-Hanoi.txt", `state = {
	id = 2 # puppet
	history = {
		owner = VN9
	}
	provinces = { 3 }
}
`)
	m.WriteText("history/states/3-Berlin.txt", `state = {
	id = 3
	history = {
		owner = GER
	}
	provinces = { 4 }
}
`)
	m.WriteText("common/countries/colors.txt", `FKE = {
	color = rgb { 200 0 0 }
	color_ui = rgb { 255 10 10 }
}
GER = {
	color = rgb { 50 50 50 }
}
`)
	return m
}
