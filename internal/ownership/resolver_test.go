package ownership

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/ownermap/internal/common"
	"github.com/mitchelldurbincs/ownermap/internal/events"
)

type mapSource map[string]common.RGB

func (m mapSource) Lookup(tag string) (common.RGB, error) {
	if c, ok := m[tag]; ok {
		return c, nil
	}
	return common.RGB{}, errors.New("no entry for " + tag)
}

type recorder struct {
	events []events.Event
}

func (r *recorder) Publish(e events.Event) {
	r.events = append(r.events, e)
}

var (
	red  = common.RGB{R: 200, G: 10, B: 30}
	blue = common.RGB{R: 20, G: 40, B: 200}
)

func newTestResolver(bus events.Publisher) *Resolver {
	src := mapSource{"FKE": red, "SPE": blue}
	return NewResolver(DefaultAllowlist(), src, common.DarkGray, "run", zerolog.Nop(), bus)
}

func TestResolvePuppetTakesOverlordColor(t *testing.T) {
	table := newTestResolver(nil).Resolve([]string{"VN9"})
	assert.Equal(t, red, table["VN9"], "VN9 has no entry of its own but FKE does")
}

func TestResolveTiers(t *testing.T) {
	rec := &recorder{}
	table := newTestResolver(rec).Resolve([]string{"FKE", "VN3", "GER", "SRC", "", "FKE", "OMN", "OMN"})

	assert.Equal(t, red, table["FKE"])
	assert.Equal(t, blue, table["VN3"])
	assert.Equal(t, common.DarkGray, table["GER"], "unknown tag")
	assert.Equal(t, common.DarkGray, table["SRC"], "puppet of a non-player")
	assert.NotContains(t, table, "", "empty tags are skipped")

	// OMN is a player with no color entry: left unresolved, reported once
	assert.NotContains(t, table, "OMN")
	var unresolved []string
	for _, e := range rec.events {
		if u, ok := e.(*events.TagUnresolvedEvent); ok {
			unresolved = append(unresolved, u.Tag)
			assert.Error(t, u.Err)
		}
	}
	assert.Equal(t, []string{"OMN"}, unresolved)

	assert.Equal(t, common.Navy, table.Get("OMN", common.Navy))
	assert.Equal(t, red, table.Get("FKE", common.Navy))
}

func TestResolveAnyUnlistedTagFallsBack(t *testing.T) {
	r := newTestResolver(nil)
	for _, tag := range []string{"AAA", "ZZZ", "X1", "GNG", "IMP", "B2B2"} {
		table := r.Resolve([]string{tag})
		assert.Equal(t, common.DarkGray, table[tag], "tag %s", tag)
	}
}

func TestResolveWithParsedColorFile(t *testing.T) {
	cc := ParseCountryColors(colorsTxt)
	r := NewResolver(DefaultAllowlist(), cc, common.DarkGray, "run", zerolog.Nop(), nil)

	table := r.Resolve([]string{"VN9", "SPE", "HBC"})
	assert.Equal(t, common.RGB{R: 200, G: 10, B: 30}, table["VN9"])
	assert.Equal(t, common.RGB{R: 40, G: 50, B: 60}, table["SPE"])
	assert.NotContains(t, table, "HBC", "malformed color block leaves the tag unresolved")
}

func TestResolvePublishesStage(t *testing.T) {
	rec := &recorder{}
	newTestResolver(rec).Resolve([]string{"FKE"})

	require.NotEmpty(t, rec.events)
	last, ok := rec.events[len(rec.events)-1].(*events.StageCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, events.StageOwnership, last.Stage)
	assert.Equal(t, 1, last.Items)
}
