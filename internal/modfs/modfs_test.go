package modfs

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/mitchelldurbincs/ownermap/internal/common"
	"github.com/mitchelldurbincs/ownermap/internal/raster"
)

func writeFile(t *testing.T, root, rel string, data []byte) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, data, 0o644))
}

func openMod(t *testing.T, root, enc string) *Mod {
	t.Helper()
	m, err := Open(root, enc, zerolog.Nop())
	require.NoError(t, err)
	return m
}

func TestOpen(t *testing.T) {
	root := t.TempDir()

	_, err := Open(filepath.Join(root, "missing"), "", zerolog.Nop())
	require.Error(t, err)
	assert.True(t, IsFatal(err))

	writeFile(t, root, "file.txt", []byte("x"))
	_, err = Open(filepath.Join(root, "file.txt"), "", zerolog.Nop())
	assert.ErrorIs(t, err, ErrNotADirectory)

	_, err = Open(root, "ebcdic", zerolog.Nop())
	assert.ErrorIs(t, err, ErrUnknownEncoding)

	m := openMod(t, root, "")
	assert.Equal(t, root, m.Root())
}

func TestResolveMissingIsFatal(t *testing.T) {
	m := openMod(t, t.TempDir(), EncodingUTF8)

	_, err := m.ReadString("map/definition.csv")
	require.Error(t, err)

	var fe *FileError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "map/definition.csv", fe.Path)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "map/definition.csv")
}

func TestReadLines(t *testing.T) {
	root := t.TempDir()
	// UTF-8 BOM plus mixed line endings and a terminating newline
	writeFile(t, root, "map/definition.csv", []byte("\xef\xbb\xbf1;2;3;4\r\n2;5;6;7\n\n"))
	m := openMod(t, root, EncodingUTF8)

	lines, err := m.ReadLines("map/definition.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"1;2;3;4", "2;5;6;7", ""}, lines)
}

func TestWindows1252(t *testing.T) {
	root := t.TempDir()
	// 0xE9 is é in Windows-1252
	writeFile(t, root, "common/countries/colors.txt", []byte("# Fran\xe7ais caf\xe9\n"))
	m := openMod(t, root, EncodingWindows1252)

	text, err := m.ReadString("common/countries/colors.txt")
	require.NoError(t, err)
	assert.Equal(t, "# Français café\n", text)
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{}, SplitLines(""))
	assert.Equal(t, []string{"a"}, SplitLines("a\n"))
	assert.Equal(t, []string{"a", "b", "c"}, SplitLines("a\rb\r\nc"))
}

func TestDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "history/states/1-Foo.txt", []byte("id = 1"))
	m := openMod(t, root, "")

	fsys, err := m.Dir("history/states")
	require.NoError(t, err)
	data, err := fs.ReadFile(fsys, "1-Foo.txt")
	require.NoError(t, err)
	assert.Equal(t, "id = 1", string(data))

	_, err = m.Dir("history/states/1-Foo.txt")
	assert.ErrorIs(t, err, ErrNotADirectory)

	_, err = m.Dir("history/units")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadBitmap(t *testing.T) {
	root := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(0, 0, color.RGBA{10, 20, 30, 255})
	img.Set(2, 1, color.RGBA{200, 100, 50, 255})

	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, img))
	writeFile(t, root, "map/provinces.bmp", buf.Bytes())
	writeFile(t, root, "map/broken.bmp", []byte("BMnot really"))

	m := openMod(t, root, "")
	b, err := m.LoadBitmap("map/provinces.bmp")
	require.NoError(t, err)
	assert.Equal(t, 3, b.Width)
	assert.Equal(t, 2, b.Height)
	assert.Equal(t, common.RGB{R: 10, G: 20, B: 30}, b.At(0, 0))
	assert.Equal(t, common.RGB{R: 200, G: 100, B: 50}, b.At(2, 1))

	_, err = m.LoadBitmap("map/broken.bmp")
	require.Error(t, err)
	assert.True(t, IsFatal(err))
}

func TestWriteImage(t *testing.T) {
	b := raster.New(2, 2)
	b.Set(1, 1, common.RGB{R: 1, G: 2, B: 3})
	dir := t.TempDir()

	for _, format := range []string{FormatPNG, FormatBMP} {
		t.Run(format, func(t *testing.T) {
			out := filepath.Join(dir, "map."+format)
			require.NoError(t, WriteImage(out, format, b))

			f, err := os.Open(out)
			require.NoError(t, err)
			defer f.Close()

			img, got, err := image.Decode(f)
			require.NoError(t, err)
			assert.Equal(t, format, got)
			assert.Equal(t, b.Pix, raster.FromImage(img).Pix)
		})
	}

	err := WriteImage(filepath.Join(dir, "map.gif"), "gif", b)
	assert.ErrorIs(t, err, ErrUnknownFormat)

	err = WriteImage(filepath.Join(dir, "no", "such", "dir.png"), FormatPNG, b)
	assert.True(t, IsFatal(err))
}
