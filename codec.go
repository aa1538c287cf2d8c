package spritekit

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	// Registered so sheets exported as BMP, TIFF or lossless WebP decode too.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode decodes an image from r, auto-detecting the format.
// Any decoder error is reported as ErrDecodeFailure. Images larger than
// DefaultMaxPixels are rejected before their raster is allocated.
func Decode(r io.Reader) (*PixelBuffer, error) {
	return DecodeLimit(r, DefaultMaxPixels)
}

// DecodeLimit is Decode with an explicit pixel limit. The image header is
// read first and an image whose width*height exceeds maxPixels fails with
// ErrDecodeFailure without decoding any pixel data.
func DecodeLimit(r io.Reader, maxPixels int) (*PixelBuffer, error) {
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: image size %dx%d", ErrDecodeFailure, cfg.Width, cfg.Height)
	}
	if cfg.Width > maxPixels/cfg.Height {
		return nil, fmt.Errorf("%w: image %dx%d exceeds %d pixels", ErrDecodeFailure, cfg.Width, cfg.Height, maxPixels)
	}

	img, _, err := image.Decode(io.MultiReader(&head, r))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}
	return FromImage(img), nil
}

// DecodeBytes decodes an image held in memory.
func DecodeBytes(data []byte) (*PixelBuffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrDecodeFailure)
	}
	return Decode(bytes.NewReader(data))
}

// Load decodes the image stored at path.
func Load(path string) (*PixelBuffer, error) {
	return LoadLimit(path, DefaultMaxPixels)
}

// LoadLimit is Load with an explicit pixel limit, see DecodeLimit.
func LoadLimit(path string, maxPixels int) (*PixelBuffer, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("spritekit: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return DecodeLimit(f, maxPixels)
}

// EncodePNG encodes the buffer as PNG to w.
func (b *PixelBuffer) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, b.NRGBA()); err != nil {
		return fmt.Errorf("spritekit: encode PNG: %w", err)
	}
	return nil
}

// EncodeToBytes encodes the buffer as PNG and returns the bytes.
func (b *PixelBuffer) EncodeToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := b.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SavePNG writes the buffer as a PNG file. The data is written to a temporary
// file in the same directory and renamed into place, so path never holds a
// partially written image.
func (b *PixelBuffer) SavePNG(path string) error {
	data, err := b.EncodeToBytes()
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to a temporary sibling of path and renames it
// over path. The temporary file is removed on every failure path.
func WriteFileAtomic(path string, data []byte) (err error) {
	path = filepath.Clean(path)
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("spritekit: create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("spritekit: write temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("spritekit: close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("spritekit: chmod temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("spritekit: rename temp file: %w", err)
	}
	return nil
}
