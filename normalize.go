package spritekit

import "image"

// Normalize crops every frame of buf to one shared, minimal content rectangle
// and lays the crops out left to right in a new sheet.
//
// The shared rectangle is the union of each frame's ContentBounds; frames
// without content do not contribute and come out fully transparent. When no
// frame has content, buf itself is returned unchanged.
//
// The result is frames*w wide and h tall, where w x h is the size of the
// shared rectangle, so playback does not jitter between frames.
func Normalize(buf *PixelBuffer, frames int, p Params) (*PixelBuffer, error) {
	parts, err := SplitFrames(buf, frames)
	if err != nil {
		return nil, err
	}

	var global Bounds
	found := false
	for _, frame := range parts {
		b, ok, err := ContentBounds(frame, p)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if !found {
			global, found = b, true
			continue
		}
		global = global.Union(b)
	}
	if !found {
		Logger().Debug("normalize skipped: sheet has no content", "width", buf.width, "height", buf.height)
		return buf, nil
	}

	bw, bh := global.Width(), global.Height()
	out := newPixelBuffer(frames*bw, bh)
	for i, frame := range parts {
		copyClipped(out, i*bw, frame, global.Rect())
	}

	Logger().Debug("sheet normalized",
		"frames", frames,
		"bounds", global.String(),
		"from", image.Pt(buf.width, buf.height),
		"to", image.Pt(out.width, out.height))
	return out, nil
}

// copyClipped copies the part of r that lies inside src into dst, so that
// r.Min lands on (dx, 0).
func copyClipped(dst *PixelBuffer, dx int, src *PixelBuffer, r image.Rectangle) {
	clip := r.Intersect(src.Bounds())
	if clip.Empty() {
		return
	}
	n := clip.Dx() * bytesPerPixel
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		d := dst.offset(dx+clip.Min.X-r.Min.X, y-r.Min.Y)
		s := src.offset(clip.Min.X, y)
		copy(dst.pix[d:d+n], src.pix[s:s+n])
	}
}
