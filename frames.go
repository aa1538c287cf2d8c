package spritekit

import "fmt"

// FrameWidth validates frames against buf and returns the width of one frame.
//
// The sheet must be non-empty, frames must be between 1 and the sheet width,
// and the width must divide evenly; anything else is ErrInvalidInput.
func FrameWidth(buf *PixelBuffer, frames int) (int, error) {
	if err := checkNotEmpty(buf); err != nil {
		return 0, err
	}
	if frames < 1 || frames > buf.width {
		return 0, fmt.Errorf("%w: frame count %d out of range for width %d", ErrInvalidInput, frames, buf.width)
	}
	if buf.width%frames != 0 {
		return 0, fmt.Errorf("%w: width %d not divisible into %d frames", ErrInvalidInput, buf.width, frames)
	}
	return buf.width / frames, nil
}

// SplitFrames returns one full-height view per frame, left to right.
// The views share memory with buf.
func SplitFrames(buf *PixelBuffer, frames int) ([]*PixelBuffer, error) {
	fw, err := FrameWidth(buf, frames)
	if err != nil {
		return nil, err
	}
	parts := make([]*PixelBuffer, frames)
	for i := range frames {
		parts[i], err = buf.SubBuffer(i*fw, 0, fw, buf.height)
		if err != nil {
			return nil, err
		}
	}
	return parts, nil
}
