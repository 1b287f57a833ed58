package common

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamedColors(t *testing.T) {
	t.Run("dark gray", func(t *testing.T) {
		assert.Equal(t, RGB{64, 64, 64}, DarkGray)
	})
	t.Run("navy", func(t *testing.T) {
		assert.Equal(t, RGB{0, 0, 64}, Navy)
	})
	t.Run("distinct", func(t *testing.T) {
		assert.NotEqual(t, DarkGray, Navy, "fallbacks must be distinguishable on the map")
	})
}

func TestParseRGB(t *testing.T) {
	tests := []struct {
		name    string
		tokens  []string
		want    RGB
		wantErr error
	}{
		{name: "plain", tokens: []string{"12", "34", "56"}, want: RGB{12, 34, 56}},
		{name: "extra tokens ignored", tokens: []string{"1", "2", "3", "4"}, want: RGB{1, 2, 3}},
		{name: "too few", tokens: []string{"1", "2"}, wantErr: ErrChannelCount},
		{name: "out of range", tokens: []string{"1", "256", "3"}, wantErr: ErrChannelRange},
		{name: "negative", tokens: []string{"-1", "0", "0"}, wantErr: ErrChannelRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRGB(tt.tokens)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("not a number", func(t *testing.T) {
		_, err := ParseRGB([]string{"a", "2", "3"})
		assert.Error(t, err)
	})
}

func TestColorConversions(t *testing.T) {
	c := RGB{200, 50, 10}
	assert.Equal(t, color.RGBA{200, 50, 10, 255}, c.RGBA())
	assert.Equal(t, c, FromColor(c.RGBA()))
	assert.Equal(t, c, FromColor(color.NRGBA{200, 50, 10, 255}))
	assert.Equal(t, "rgb { 200 50 10 }", c.String())

	got, err := FromTriple([3]int{0, 0, 64})
	require.NoError(t, err)
	assert.Equal(t, Navy, got)
}

func TestIsValidTag(t *testing.T) {
	for _, tag := range []string{"FKE", "VN9", "M27", "ab", "ABCD"} {
		assert.True(t, IsValidTag(tag), "tag %q should be valid", tag)
	}
	for _, tag := range []string{"", "A", "ABCDE", "F-K", "FK E"} {
		assert.False(t, IsValidTag(tag), "tag %q should be invalid", tag)
	}
	assert.True(t, IsAlnumToken("ABCDEF1"))
	assert.False(t, IsAlnumToken(""))
}
