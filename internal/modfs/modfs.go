// Package modfs resolves and reads the files of a mod directory. Every
// failure comes back as a *FileError instead of terminating the process.
package modfs

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/image/bmp"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/mitchelldurbincs/ownermap/internal/raster"
)

// Supported text encodings
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
)

// Supported output formats
const (
	FormatPNG = "png"
	FormatBMP = "bmp"
)

// Mod gives path-checked access to the files under a mod root
type Mod struct {
	root     string
	encoding encoding.Encoding
	logger   zerolog.Logger
}

// Open checks that root is a directory and prepares a text decoder
func Open(root, textEncoding string, logger zerolog.Logger) (*Mod, error) {
	enc, err := LookupEncoding(textEncoding)
	if err != nil {
		return nil, &FileError{Op: "open mod", Path: root, Err: err}
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, &FileError{Op: "open mod", Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &FileError{Op: "open mod", Path: root, Err: ErrNotADirectory}
	}
	return &Mod{
		root:     root,
		encoding: enc,
		logger:   logger.With().Str("component", "modfs").Logger(),
	}, nil
}

// LookupEncoding maps a config name onto an x/text encoding. UTF-8 input
// may carry a byte order mark, which is stripped.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EncodingUTF8, "utf8":
		return unicode.UTF8BOM, nil
	case EncodingWindows1252, "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownEncoding)
	}
}

// Root returns the mod root directory
func (m *Mod) Root() string {
	return m.root
}

// Resolve joins rel onto the mod root and checks that it exists
func (m *Mod) Resolve(rel string) (string, error) {
	p := filepath.Join(m.root, filepath.FromSlash(rel))
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return "", &FileError{Op: "resolve", Path: rel, Err: ErrNotFound}
		}
		return "", &FileError{Op: "resolve", Path: rel, Err: err}
	}
	return p, nil
}

// Dir resolves rel as a directory and returns it as an fs.FS
func (m *Mod) Dir(rel string) (fs.FS, error) {
	p, err := m.Resolve(rel)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, &FileError{Op: "stat", Path: rel, Err: err}
	}
	if !info.IsDir() {
		return nil, &FileError{Op: "open directory", Path: rel, Err: ErrNotADirectory}
	}
	return os.DirFS(p), nil
}

// Decode converts raw file bytes to a string using the mod's text encoding
func (m *Mod) Decode(raw []byte) (string, error) {
	out, err := m.encoding.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ReadString reads and decodes a whole text file
func (m *Mod) ReadString(rel string) (string, error) {
	p, err := m.Resolve(rel)
	if err != nil {
		return "", err
	}
	raw, err := os.ReadFile(p)
	if err != nil {
		return "", &FileError{Op: "read text", Path: rel, Err: err}
	}
	text, err := m.Decode(raw)
	if err != nil {
		return "", &FileError{Op: "decode text", Path: rel, Err: err}
	}
	m.logger.Debug().Str("path", rel).Int("bytes", len(raw)).Msg("Read text file")
	return text, nil
}

// ReadLines reads a text file and splits it into lines
func (m *Mod) ReadLines(rel string) ([]string, error) {
	text, err := m.ReadString(rel)
	if err != nil {
		return nil, err
	}
	return SplitLines(text), nil
}

// SplitLines splits on \n, \r\n or \r. A terminating line break does not
// start an extra line.
func SplitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// LoadBitmap decodes an image file (BMP, or PNG) into a packed bitmap
func (m *Mod) LoadBitmap(rel string) (*raster.Bitmap, error) {
	p, err := m.Resolve(rel)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(p)
	if err != nil {
		return nil, &FileError{Op: "read image", Path: rel, Err: err}
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &FileError{Op: "decode image", Path: rel, Err: err}
	}
	m.logger.Debug().
		Str("path", rel).
		Str("format", format).
		Int("width", img.Bounds().Dx()).
		Int("height", img.Bounds().Dy()).
		Msg("Loaded image")
	return raster.FromImage(img), nil
}

// WriteImage encodes the bitmap to path, which is not relative to the mod
// root. Existing files are overwritten.
func WriteImage(path, format string, b *raster.Bitmap) error {
	switch strings.ToLower(format) {
	case "", FormatPNG, FormatBMP:
	default:
		return &FileError{Op: "write output", Path: path, Err: fmt.Errorf("%q: %w", format, ErrUnknownFormat)}
	}
	f, err := os.Create(path)
	if err != nil {
		return &FileError{Op: "create output", Path: path, Err: err}
	}
	if err := EncodeImage(f, format, b); err != nil {
		f.Close()
		return &FileError{Op: "write output", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &FileError{Op: "close output", Path: path, Err: err}
	}
	return nil
}

// EncodeImage writes the bitmap in a lossless format
func EncodeImage(w io.Writer, format string, b *raster.Bitmap) error {
	switch strings.ToLower(format) {
	case "", FormatPNG:
		return png.Encode(w, b.Image())
	case FormatBMP:
		return bmp.Encode(w, b.Image())
	default:
		return fmt.Errorf("%q: %w", format, ErrUnknownFormat)
	}
}
