package spritekit

// FlipHorizontal mirrors every frame of buf left to right inside its own slot.
//
// Frame order and slot boundaries are unchanged: for per-frame width fw, the
// pixel at local x of frame i moves to local fw-1-x of the same frame, on the
// same row. The result is a new buffer with buf's dimensions. Flipping twice
// restores the original pixels.
func FlipHorizontal(buf *PixelBuffer, frames int) (*PixelBuffer, error) {
	fw, err := FrameWidth(buf, frames)
	if err != nil {
		return nil, err
	}

	out := newPixelBuffer(buf.width, buf.height)
	for y := range buf.height {
		src, dst := buf.row(y), out.row(y)
		for i := range frames {
			base := i * fw
			for x := range fw {
				s := (base + x) * bytesPerPixel
				d := (base + fw - 1 - x) * bytesPerPixel
				copy(dst[d:d+bytesPerPixel], src[s:s+bytesPerPixel])
			}
		}
	}
	return out, nil
}
