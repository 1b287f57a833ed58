package provinces

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/ownermap/internal/common"
	"github.com/mitchelldurbincs/ownermap/internal/mapdata/codec"
)

func TestBuildSortsAndDropsTrailingBlank(t *testing.T) {
	c := codec.New(";")
	records := c.SplitAll([]string{
		"3;30;31;32;land;false;plains;1",
		"1;10;11;12;land;false;plains;1",
		"2;20;21;22;sea;true;ocean;0",
		"",
	})

	table, err := Build(records)
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	assert.Equal(t, common.RGB{R: 10, G: 11, B: 12}, table.Color(0), "index 0 holds id 1")
	assert.Equal(t, common.RGB{R: 20, G: 21, B: 22}, table.Color(1))
	assert.Equal(t, common.RGB{R: 30, G: 31, B: 32}, table.Color(2), "index 2 holds id 3")
	assert.Equal(t, []int{1, 2, 3}, []int{table.Records[0].ID, table.Records[1].ID, table.Records[2].ID})
	assert.Len(t, table.Colors(), 3)
}

func TestBuildOnlyDropsFinalBlank(t *testing.T) {
	records := [][]string{{"0", "0", "0", "0"}, {}, {"1", "1", "1", "1"}}
	_, err := Build(records)
	assert.ErrorIs(t, err, ErrMalformedRecord, "an interior blank record is malformed")
}

func TestBuildFailures(t *testing.T) {
	tests := []struct {
		name   string
		record []string
	}{
		{name: "bad id", record: []string{"x", "1", "2", "3"}},
		{name: "bad channel", record: []string{"1", "1", "two", "3"}},
		{name: "channel out of range", record: []string{"1", "1", "2", "300"}},
		{name: "too few fields", record: []string{"1", "1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Build([][]string{{"0", "0", "0", "0"}, tt.record})
			assert.Nil(t, table, "no partial table on failure")
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestBuildEmpty(t *testing.T) {
	table, err := Build(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}
