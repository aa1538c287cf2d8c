package spritekit

import (
	"fmt"
	"math"
)

// Params holds the tunable constants of frame detection and content bounds.
//
// Artwork varies widely in spacing, so every threshold is configurable.
// DefaultParams returns the values existing analyzed sprites were produced with.
type Params struct {
	// AlphaThreshold is the alpha value a pixel must exceed to count as content.
	AlphaThreshold uint8 `json:"alpha_threshold"`

	// MinAbsoluteWidth is the narrowest run, in pixels, treated as a frame
	// rather than noise.
	MinAbsoluteWidth int `json:"min_absolute_width"`

	// ResidualThreshold is the fraction of the average width a run must reach
	// to contribute a frame.
	ResidualThreshold float64 `json:"residual_threshold"`

	// LargeBlockFactor is the multiple of the average width above which a run
	// is split into several merged frames.
	LargeBlockFactor float64 `json:"large_block_factor"`

	// StdDevMultiplier bounds the second averaging pass: runs further than
	// this many standard deviations from the mean are ignored.
	StdDevMultiplier float64 `json:"stddev_multiplier"`

	// MaxPixels is the largest sheet area, width*height, that is decoded.
	// Larger images are rejected from their header alone.
	MaxPixels int `json:"max_pixels"`
}

// Default detection constants.
const (
	DefaultAlphaThreshold    = 10
	DefaultMinAbsoluteWidth  = 5
	DefaultResidualThreshold = 0.3
	DefaultLargeBlockFactor  = 1.9
	DefaultStdDevMultiplier  = 2.0

	// DefaultMaxPixels admits sheets up to 32 Mpx (128 MiB as NRGBA).
	DefaultMaxPixels = 1 << 25
)

// DefaultParams returns the default detection parameters.
func DefaultParams() Params {
	return Params{
		AlphaThreshold:    DefaultAlphaThreshold,
		MinAbsoluteWidth:  DefaultMinAbsoluteWidth,
		ResidualThreshold: DefaultResidualThreshold,
		LargeBlockFactor:  DefaultLargeBlockFactor,
		StdDevMultiplier:  DefaultStdDevMultiplier,
		MaxPixels:         DefaultMaxPixels,
	}
}

// Validate reports whether p can be used for detection.
func (p Params) Validate() error {
	switch {
	case p.MinAbsoluteWidth < 0:
		return fmt.Errorf("%w: min absolute width %d is negative", ErrInvalidInput, p.MinAbsoluteWidth)
	case !finiteNonNegative(p.ResidualThreshold):
		return fmt.Errorf("%w: residual threshold %v", ErrInvalidInput, p.ResidualThreshold)
	case !finiteNonNegative(p.LargeBlockFactor):
		return fmt.Errorf("%w: large block factor %v", ErrInvalidInput, p.LargeBlockFactor)
	case !finiteNonNegative(p.StdDevMultiplier):
		return fmt.Errorf("%w: stddev multiplier %v", ErrInvalidInput, p.StdDevMultiplier)
	case p.MaxPixels < 1:
		return fmt.Errorf("%w: max pixels %d", ErrInvalidInput, p.MaxPixels)
	}
	return nil
}

func finiteNonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
