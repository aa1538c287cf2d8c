package spritekit

import (
	"fmt"

	xdraw "golang.org/x/image/draw"
)

const (
	// MaxScale is the largest preview factor accepted by Scale.
	MaxScale = 16

	// MaxScaledPixels caps the area of a Scale result.
	MaxScaledPixels = 1 << 25
)

// Scale returns buf enlarged by an integer factor with nearest-neighbour
// sampling, which keeps pixel-art edges sharp. A factor of 1 returns a copy.
// Results larger than MaxScaledPixels fail with ErrInvalidInput.
func Scale(buf *PixelBuffer, factor int) (*PixelBuffer, error) {
	if err := checkNotEmpty(buf); err != nil {
		return nil, err
	}
	if factor < 1 || factor > MaxScale {
		return nil, fmt.Errorf("%w: scale %d outside 1..%d", ErrInvalidInput, factor, MaxScale)
	}
	if buf.width*buf.height > MaxScaledPixels/(factor*factor) {
		return nil, fmt.Errorf("%w: %dx%d at scale %d exceeds %d pixels",
			ErrInvalidInput, buf.width, buf.height, factor, MaxScaledPixels)
	}
	if factor == 1 {
		return buf.Clone(), nil
	}

	out := newPixelBuffer(buf.width*factor, buf.height*factor)
	xdraw.NearestNeighbor.Scale(out.NRGBA(), out.Bounds(), buf.NRGBA(), buf.Bounds(), xdraw.Src, nil)
	return out, nil
}
