package spritekit

import "fmt"

// ScanColumns reports, for every column of buf, whether it holds at least one
// pixel whose alpha exceeds p.AlphaThreshold.
//
// Each column is evaluated independently and stops at its first visible pixel.
func ScanColumns(buf *PixelBuffer, p Params) ([]bool, error) {
	if err := checkNotEmpty(buf); err != nil {
		return nil, err
	}
	cols := make([]bool, buf.width)
	scanColumnRange(buf, p.AlphaThreshold, cols, 0, buf.width)
	return cols, nil
}

// scanColumnRange fills cols[lo:hi]. Disjoint ranges may run concurrently.
func scanColumnRange(buf *PixelBuffer, threshold uint8, cols []bool, lo, hi int) {
	for x := lo; x < hi; x++ {
		for y := range buf.height {
			if buf.alphaAt(x, y) > threshold {
				cols[x] = true
				break
			}
		}
	}
}

// RunLengths returns the lengths of the maximal runs of true values in cols,
// in order. A run reaching the end of cols is included.
func RunLengths(cols []bool) []int {
	var runs []int
	current := 0
	for _, hasContent := range cols {
		if hasContent {
			current++
			continue
		}
		if current > 0 {
			runs = append(runs, current)
			current = 0
		}
	}
	if current > 0 {
		runs = append(runs, current)
	}
	return runs
}

func checkNotEmpty(buf *PixelBuffer) error {
	if buf == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidInput)
	}
	if buf.IsEmpty() {
		return fmt.Errorf("%w: zero-sized %dx%d buffer", ErrInvalidInput, buf.width, buf.height)
	}
	return nil
}
