package spritekit

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
)

// bytesPerPixel is the size of one NRGBA sample.
const bytesPerPixel = 4

// PixelBuffer is a rectangular raster of non-premultiplied RGBA pixels.
//
// Coordinates are checked: accessors return ErrInvalidInput for any point
// outside [0, Width) x [0, Height) instead of clamping. A PixelBuffer may be a
// view into a larger buffer (see SubBuffer), in which case Stride exceeds
// Width*4 and the two share pixel memory.
//
// Thread safety: concurrent reads are safe. Writes require external
// synchronization.
type PixelBuffer struct {
	pix    []uint8
	width  int
	height int
	stride int
}

// NewPixelBuffer creates a fully transparent buffer. Zero dimensions are
// allowed; negative dimensions return ErrInvalidInput.
func NewPixelBuffer(width, height int) (*PixelBuffer, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidInput, width, height)
	}
	return newPixelBuffer(width, height), nil
}

func newPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{
		pix:    make([]uint8, width*height*bytesPerPixel),
		width:  width,
		height: height,
		stride: width * bytesPerPixel,
	}
}

// Width returns the width of the buffer in pixels.
func (b *PixelBuffer) Width() int {
	return b.width
}

// Height returns the height of the buffer in pixels.
func (b *PixelBuffer) Height() int {
	return b.height
}

// Stride returns the number of bytes between vertically adjacent pixels.
func (b *PixelBuffer) Stride() int {
	return b.stride
}

// Pix returns the underlying pixel memory. For views the slice starts at the
// view's first pixel and rows are Stride bytes apart.
func (b *PixelBuffer) Pix() []uint8 {
	return b.pix
}

// IsEmpty reports whether the buffer has zero width or height.
func (b *PixelBuffer) IsEmpty() bool {
	return b.width == 0 || b.height == 0
}

func (b *PixelBuffer) offset(x, y int) int {
	return y*b.stride + x*bytesPerPixel
}

func (b *PixelBuffer) checkPoint(x, y int) error {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return fmt.Errorf("%w: point (%d,%d) outside %dx%d buffer", ErrInvalidInput, x, y, b.width, b.height)
	}
	return nil
}

// alphaAt returns the alpha of an in-range pixel without bounds checking.
func (b *PixelBuffer) alphaAt(x, y int) uint8 {
	return b.pix[b.offset(x, y)+3]
}

// row returns the bytes of row y, excluding any stride padding.
func (b *PixelBuffer) row(y int) []uint8 {
	start := y * b.stride
	return b.pix[start : start+b.width*bytesPerPixel]
}

// Alpha returns the alpha channel of the pixel at (x, y).
func (b *PixelBuffer) Alpha(x, y int) (uint8, error) {
	if err := b.checkPoint(x, y); err != nil {
		return 0, err
	}
	return b.alphaAt(x, y), nil
}

// NRGBAAt returns the pixel at (x, y).
func (b *PixelBuffer) NRGBAAt(x, y int) (color.NRGBA, error) {
	if err := b.checkPoint(x, y); err != nil {
		return color.NRGBA{}, err
	}
	i := b.offset(x, y)
	s := b.pix[i : i+4 : i+4]
	return color.NRGBA{R: s[0], G: s[1], B: s[2], A: s[3]}, nil
}

// SetNRGBA sets the pixel at (x, y).
func (b *PixelBuffer) SetNRGBA(x, y int, c color.NRGBA) error {
	if err := b.checkPoint(x, y); err != nil {
		return err
	}
	i := b.offset(x, y)
	s := b.pix[i : i+4 : i+4]
	s[0], s[1], s[2], s[3] = c.R, c.G, c.B, c.A
	return nil
}

// FillRect paints the rectangle with top-left (x, y) and size w x h. The
// rectangle must lie entirely inside the buffer.
func (b *PixelBuffer) FillRect(x, y, w, h int, c color.NRGBA) error {
	if w < 0 || h < 0 || x < 0 || y < 0 || x+w > b.width || y+h > b.height {
		return fmt.Errorf("%w: rect %dx%d+%d+%d outside %dx%d buffer", ErrInvalidInput, w, h, x, y, b.width, b.height)
	}
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			i := b.offset(xx, yy)
			b.pix[i], b.pix[i+1], b.pix[i+2], b.pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
	return nil
}

// Clone returns a compact deep copy. Views are copied into a buffer of their
// own, without the parent's stride padding.
func (b *PixelBuffer) Clone() *PixelBuffer {
	out := newPixelBuffer(b.width, b.height)
	for y := range b.height {
		copy(out.row(y), b.row(y))
	}
	return out
}

// SubBuffer returns a view of the w x h region whose top-left is (x, y).
// The view shares pixel memory with b.
func (b *PixelBuffer) SubBuffer(x, y, w, h int) (*PixelBuffer, error) {
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x+w > b.width || y+h > b.height {
		return nil, fmt.Errorf("%w: sub-buffer %dx%d+%d+%d outside %dx%d buffer", ErrInvalidInput, w, h, x, y, b.width, b.height)
	}
	start := b.offset(x, y)
	end := (y+h-1)*b.stride + (x+w)*bytesPerPixel
	return &PixelBuffer{
		pix:    b.pix[start:end],
		width:  w,
		height: h,
		stride: b.stride,
	}, nil
}

// Equal reports whether both buffers have the same size and identical pixels.
func (b *PixelBuffer) Equal(o *PixelBuffer) bool {
	if b.width != o.width || b.height != o.height {
		return false
	}
	for y := range b.height {
		if !bytes.Equal(b.row(y), o.row(y)) {
			return false
		}
	}
	return true
}

// NRGBA returns an *image.NRGBA sharing the buffer's memory.
func (b *PixelBuffer) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.pix,
		Stride: b.stride,
		Rect:   image.Rect(0, 0, b.width, b.height),
	}
}

// ColorModel implements the image.Image interface.
func (b *PixelBuffer) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements the image.Image interface.
func (b *PixelBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// At implements the image.Image interface. Points outside the buffer are
// transparent, as that interface requires.
func (b *PixelBuffer) At(x, y int) color.Color {
	c, err := b.NRGBAAt(x, y)
	if err != nil {
		return color.NRGBA{}
	}
	return c
}

// Set implements the draw.Image interface. Points outside the buffer are
// ignored, as that interface requires.
func (b *PixelBuffer) Set(x, y int, c color.Color) {
	_ = b.SetNRGBA(x, y, color.NRGBAModel.Convert(c).(color.NRGBA))
}

// FromImage creates a PixelBuffer from any image.Image.
func FromImage(img image.Image) *PixelBuffer {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	buf := newPixelBuffer(width, height)

	// Fast path for NRGBA images
	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := range height {
			start := nrgba.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(buf.row(y), nrgba.Pix[start:start+width*bytesPerPixel])
		}
		return buf
	}

	// Generic slow path for any image type
	for y := range height {
		for x := range width {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			i := buf.offset(x, y)
			buf.pix[i], buf.pix[i+1], buf.pix[i+2], buf.pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
	return buf
}
