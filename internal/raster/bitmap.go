// Package raster holds the packed 3-byte pixel buffer that the remapper
// rewrites in place.
package raster

import (
	"image"
	"image/draw"

	"github.com/mitchelldurbincs/ownermap/internal/common"
)

// BytesPerPixel is the stride of Bitmap.Pix
const BytesPerPixel = 3

// Bitmap is a top-down, row-major grid of pixels stored as B,G,R byte
// triples, the order a 24-bit BMP keeps them on disk. Only pack and unpack
// know about that order; everything else deals in common.RGB.
type Bitmap struct {
	Width  int
	Height int
	Pix    []byte
}

// New allocates a black bitmap
func New(width, height int) *Bitmap {
	return &Bitmap{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*BytesPerPixel),
	}
}

// FromImage copies any decoded image into a packed bitmap. Alpha is dropped.
func FromImage(img image.Image) *Bitmap {
	bounds := img.Bounds()
	b := New(bounds.Dx(), bounds.Dy())

	// Normalise to RGBA first so the copy below is a straight byte walk
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
		draw.Draw(rgba, rgba.Rect, img, bounds.Min, draw.Src)
	}

	for y := 0; y < b.Height; y++ {
		src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+b.Width*4]
		dst := b.Pix[y*b.Width*BytesPerPixel : (y+1)*b.Width*BytesPerPixel]
		for x := 0; x < b.Width; x++ {
			pack(dst[x*BytesPerPixel:], common.RGB{R: src[x*4], G: src[x*4+1], B: src[x*4+2]})
		}
	}
	return b
}

// Image converts the bitmap back to an opaque *image.RGBA for encoding
func (b *Bitmap) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for i, n := 0, b.Len(); i < n; i++ {
		c := b.Pixel(i)
		o := i * 4
		img.Pix[o] = c.R
		img.Pix[o+1] = c.G
		img.Pix[o+2] = c.B
		img.Pix[o+3] = 0xff
	}
	return img
}

// Len returns the number of pixels
func (b *Bitmap) Len() int {
	return len(b.Pix) / BytesPerPixel
}

// Pixel returns the color of the i-th pixel in row-major order
func (b *Bitmap) Pixel(i int) common.RGB {
	return unpack(b.Pix[i*BytesPerPixel:])
}

// SetPixel overwrites the i-th pixel
func (b *Bitmap) SetPixel(i int, c common.RGB) {
	pack(b.Pix[i*BytesPerPixel:], c)
}

// At returns the color at (x, y)
func (b *Bitmap) At(x, y int) common.RGB {
	return b.Pixel(y*b.Width + x)
}

// Set writes the color at (x, y)
func (b *Bitmap) Set(x, y int, c common.RGB) {
	b.SetPixel(y*b.Width+x, c)
}

// Clone returns a deep copy
func (b *Bitmap) Clone() *Bitmap {
	pix := make([]byte, len(b.Pix))
	copy(pix, b.Pix)
	return &Bitmap{Width: b.Width, Height: b.Height, Pix: pix}
}

func unpack(p []byte) common.RGB {
	return common.RGB{R: p[2], G: p[1], B: p[0]}
}

func pack(p []byte, c common.RGB) {
	p[0] = c.B
	p[1] = c.G
	p[2] = c.R
}
