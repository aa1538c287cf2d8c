package spritekit

import (
	"fmt"
	"image"
)

// Bounds is an inclusive pixel rectangle within one buffer's coordinate space.
type Bounds struct {
	MinX, MinY int
	MaxX, MaxY int
}

// Width returns MaxX-MinX+1.
func (b Bounds) Width() int {
	return b.MaxX - b.MinX + 1
}

// Height returns MaxY-MinY+1.
func (b Bounds) Height() int {
	return b.MaxY - b.MinY + 1
}

// Union returns the smallest Bounds enclosing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{
		MinX: min(b.MinX, o.MinX),
		MinY: min(b.MinY, o.MinY),
		MaxX: max(b.MaxX, o.MaxX),
		MaxY: max(b.MaxY, o.MaxY),
	}
}

// Rect returns the half-open image.Rectangle covering the same pixels.
func (b Bounds) Rect() image.Rectangle {
	return image.Rect(b.MinX, b.MinY, b.MaxX+1, b.MaxY+1)
}

// String returns a human-readable representation of the bounds.
func (b Bounds) String() string {
	return fmt.Sprintf("[%d,%d]x[%d,%d]", b.MinX, b.MaxX, b.MinY, b.MaxY)
}

// ContentBounds returns the smallest rectangle enclosing every pixel of buf
// whose alpha exceeds p.AlphaThreshold. The boolean is false when no pixel
// qualifies. Every pixel is visited.
func ContentBounds(buf *PixelBuffer, p Params) (Bounds, bool, error) {
	if err := checkNotEmpty(buf); err != nil {
		return Bounds{}, false, err
	}

	b := Bounds{MinX: buf.width, MinY: buf.height, MaxX: -1, MaxY: -1}
	for y := range buf.height {
		row := buf.row(y)
		for x := range buf.width {
			if row[x*bytesPerPixel+3] <= p.AlphaThreshold {
				continue
			}
			b.MinX = min(b.MinX, x)
			b.MaxX = max(b.MaxX, x)
			b.MinY = min(b.MinY, y)
			b.MaxY = max(b.MaxY, y)
		}
	}
	if b.MaxX < 0 {
		return Bounds{}, false, nil
	}
	return b, true, nil
}
