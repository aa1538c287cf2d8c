package spritekit

import "math"

// RobustAverageWidth estimates the nominal frame width from run widths.
//
// Runs narrower than p.MinAbsoluteWidth are discarded as noise. The result is
// the mean of the remaining runs that lie within p.StdDevMultiplier population
// standard deviations of their mean, or the plain mean when that subset is
// empty. It returns 0 when no run survives the width filter.
func RobustAverageWidth(runs []int, p Params) float64 {
	var kept []int
	for _, w := range runs {
		if w >= p.MinAbsoluteWidth {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return 0
	}

	mean := meanOf(kept)
	variance := 0.0
	for _, w := range kept {
		d := float64(w) - mean
		variance += d * d
	}
	stdDev := math.Sqrt(variance / float64(len(kept)))

	limit := p.StdDevMultiplier * stdDev
	sum, n := 0, 0
	for _, w := range kept {
		if math.Abs(float64(w)-mean) <= limit {
			sum += w
			n++
		}
	}
	if n == 0 {
		return mean
	}
	return float64(sum) / float64(n)
}

// CountFrames converts run widths into a frame count given the robust average
// width avg.
//
// Runs below p.MinAbsoluteWidth or below p.ResidualThreshold*avg contribute
// nothing. Runs above p.LargeBlockFactor*avg are frames merged by touching
// artwork and contribute floor(run/avg), at least 1. Every other run is one
// frame. The result is never less than 1, including when avg is not positive.
func CountFrames(runs []int, avg float64, p Params) int {
	if avg <= 0 || math.IsNaN(avg) {
		return 1
	}
	total := 0
	for _, w := range runs {
		width := float64(w)
		if w < p.MinAbsoluteWidth || width < avg*p.ResidualThreshold {
			continue
		}
		if width > avg*p.LargeBlockFactor {
			total += max(1, int(math.Floor(width/avg)))
			continue
		}
		total++
	}
	return max(1, total)
}

// DetectFrames estimates how many frames are laid out left to right in buf.
// A sheet without visible content holds one frame.
func DetectFrames(buf *PixelBuffer, p Params) (int, error) {
	cols, err := ScanColumns(buf, p)
	if err != nil {
		return 0, err
	}
	return framesFromColumns(cols, p), nil
}

func framesFromColumns(cols []bool, p Params) int {
	runs := RunLengths(cols)
	if len(runs) == 0 {
		Logger().Debug("frames detected", "runs", 0, "frames", 1)
		return 1
	}
	avg := RobustAverageWidth(runs, p)
	frames := CountFrames(runs, avg, p)
	Logger().Debug("frames detected", "runs", runs, "avg_width", avg, "frames", frames)
	return frames
}

func meanOf(values []int) float64 {
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}
