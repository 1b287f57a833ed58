package raster

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/mitchelldurbincs/ownermap/internal/common"
)

// sample is a 2x2 image with four distinct, channel-asymmetric colors
func sample() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 255, 0, 255})
	img.Set(0, 1, color.RGBA{0, 0, 255, 255})
	img.Set(1, 1, color.RGBA{10, 20, 30, 255})
	return img
}

func TestFromImageStoresBGR(t *testing.T) {
	b := FromImage(sample())
	require.Equal(t, 2, b.Width)
	require.Equal(t, 2, b.Height)

	// red at (0,0) is stored blue-first
	assert.Equal(t, []byte{0, 0, 255}, b.Pix[0:3])
	assert.Equal(t, []byte{30, 20, 10}, b.Pix[9:12])

	assert.Equal(t, common.RGB{R: 255}, b.At(0, 0))
	assert.Equal(t, common.RGB{G: 255}, b.At(1, 0))
	assert.Equal(t, common.RGB{B: 255}, b.At(0, 1))
	assert.Equal(t, common.RGB{R: 10, G: 20, B: 30}, b.At(1, 1))
}

// The packed layout has to agree with what a real 24-bit BMP stores, so
// compare against the bytes x/image/bmp writes for the same picture.
func TestChannelOrderMatchesBMPFile(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, sample()))
	raw := buf.Bytes()

	offset := binary.LittleEndian.Uint32(raw[10:14])
	bpp := binary.LittleEndian.Uint16(raw[28:30])
	require.Equal(t, uint16(24), bpp)

	// BMP rows are bottom-up and padded to 4 bytes; 2 px * 3 = 6 -> 8
	const rowSize = 8
	bottom := raw[offset : offset+rowSize]
	top := raw[offset+rowSize : offset+2*rowSize]

	b := FromImage(sample())
	assert.Equal(t, top[:6], b.Pix[0:6], "top row bytes should match the file")
	assert.Equal(t, bottom[:6], b.Pix[6:12], "bottom row bytes should match the file")

	decoded, err := bmp.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, b.Pix, FromImage(decoded).Pix)
}

func TestImageRoundTrip(t *testing.T) {
	src := sample()
	b := FromImage(src)
	assert.Equal(t, src.Pix, b.Image().Pix)
}

func TestFromImageNonZeroOrigin(t *testing.T) {
	img := image.NewRGBA(image.Rect(5, 5, 7, 6))
	img.Set(5, 5, color.RGBA{1, 2, 3, 255})
	img.Set(6, 5, color.RGBA{4, 5, 6, 255})

	b := FromImage(img)
	require.Equal(t, 2, b.Width)
	require.Equal(t, 1, b.Height)
	assert.Equal(t, common.RGB{R: 1, G: 2, B: 3}, b.At(0, 0))
	assert.Equal(t, common.RGB{R: 4, G: 5, B: 6}, b.At(1, 0))
}

func TestSetAndClone(t *testing.T) {
	b := New(3, 1)
	assert.Equal(t, 3, b.Len())

	b.Set(2, 0, common.Navy)
	c := b.Clone()
	b.Set(2, 0, common.DarkGray)

	assert.Equal(t, common.Navy, c.At(2, 0), "clone must not share the buffer")
	assert.Equal(t, common.DarkGray, b.At(2, 0))
}
