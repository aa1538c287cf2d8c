package spritekit

import (
	"image/color"
	"testing"
)

var opaque = color.NRGBA{R: 200, G: 40, B: 90, A: 255}

func mustBuffer(t testing.TB, w, h int) *PixelBuffer {
	t.Helper()
	buf, err := NewPixelBuffer(w, h)
	if err != nil {
		t.Fatalf("NewPixelBuffer(%d, %d) error = %v", w, h, err)
	}
	return buf
}

func mustFill(t testing.TB, buf *PixelBuffer, x, y, w, h int, c color.NRGBA) {
	t.Helper()
	if err := buf.FillRect(x, y, w, h, c); err != nil {
		t.Fatalf("FillRect(%d, %d, %d, %d) error = %v", x, y, w, h, err)
	}
}

// solidStrip builds n opaque w x h blocks separated by gap transparent columns.
func solidStrip(t testing.TB, n, w, h, gap int) *PixelBuffer {
	t.Helper()
	buf := mustBuffer(t, n*w+(n-1)*gap, h)
	for i := range n {
		mustFill(t, buf, i*(w+gap), 0, w, h, opaque)
	}
	return buf
}

// patterned fills every pixel with a value derived from its position so that
// any misplaced pixel is detectable.
func patterned(t testing.TB, w, h int) *PixelBuffer {
	t.Helper()
	buf := mustBuffer(t, w, h)
	for y := range h {
		for x := range w {
			c := color.NRGBA{R: uint8(x), G: uint8(y), B: uint8(x*7 + y*13), A: uint8((x*31 + y*17) % 256)}
			if err := buf.SetNRGBA(x, y, c); err != nil {
				t.Fatal(err)
			}
		}
	}
	return buf
}
