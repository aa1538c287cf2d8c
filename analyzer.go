package spritekit

import (
	"github.com/gogpu/spritekit/internal/parallel"
)

// Analyzer binds Params to the pixel algorithms and optionally spreads work
// over a worker pool. Results are identical with and without workers.
//
// An Analyzer is safe for concurrent use. Call Close to release its workers.
type Analyzer struct {
	params            Params
	pool              *parallel.WorkerPool
	minParallelPixels int
}

// NewAnalyzer creates an Analyzer. It returns ErrInvalidInput if the
// configured Params do not validate.
func NewAnalyzer(opts ...AnalyzerOption) (*Analyzer, error) {
	o := defaultAnalyzerOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.params.Validate(); err != nil {
		return nil, err
	}

	a := &Analyzer{
		params:            o.params,
		minParallelPixels: o.minParallelPixels,
	}
	if o.workers != 1 {
		a.pool = parallel.NewWorkerPool(o.workers)
	}
	return a, nil
}

// Params returns the analyzer's detection parameters.
func (a *Analyzer) Params() Params {
	return a.params
}

// Close stops the analyzer's workers. It is safe to call more than once.
func (a *Analyzer) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

// ScanColumns is ScanColumns with the analyzer's parameters. Large sheets are
// scanned as disjoint column ranges in parallel.
func (a *Analyzer) ScanColumns(buf *PixelBuffer) ([]bool, error) {
	if err := checkNotEmpty(buf); err != nil {
		return nil, err
	}
	if a.pool == nil || buf.width*buf.height < a.minParallelPixels {
		return ScanColumns(buf, a.params)
	}

	cols := make([]bool, buf.width)
	ranges := parallel.Split(buf.width, a.pool.Workers())
	work := make([]func(), len(ranges))
	for i, r := range ranges {
		work[i] = func() {
			scanColumnRange(buf, a.params.AlphaThreshold, cols, r.Lo, r.Hi)
		}
	}
	a.pool.ExecuteAll(work)
	return cols, nil
}

// DetectFrames is DetectFrames with the analyzer's parameters.
func (a *Analyzer) DetectFrames(buf *PixelBuffer) (int, error) {
	cols, err := a.ScanColumns(buf)
	if err != nil {
		return 0, err
	}
	return framesFromColumns(cols, a.params), nil
}

// Load decodes the sheet at path, rejecting images larger than the
// analyzer's MaxPixels.
func (a *Analyzer) Load(path string) (*PixelBuffer, error) {
	return LoadLimit(path, a.params.MaxPixels)
}

// Normalize is Normalize with the analyzer's parameters.
func (a *Analyzer) Normalize(buf *PixelBuffer, frames int) (*PixelBuffer, error) {
	return Normalize(buf, frames, a.params)
}

// Detection is the outcome of analyzing one sheet of a batch.
type Detection struct {
	Frames int
	Width  int
	Height int
	Err    error
}

// DetectEach loads and analyzes n independent sheets, concurrently when the
// analyzer has workers. load(i) supplies sheet i; a load error is recorded in
// the Detection and does not stop the batch. Results are indexed like the
// input.
func (a *Analyzer) DetectEach(n int, load func(i int) (*PixelBuffer, error)) []Detection {
	results := make([]Detection, n)
	detect := func(i int) {
		buf, err := load(i)
		if err != nil {
			results[i].Err = err
			return
		}
		frames, err := DetectFrames(buf, a.params)
		results[i] = Detection{Frames: frames, Width: buf.width, Height: buf.height, Err: err}
	}

	if a.pool == nil {
		for i := range n {
			detect(i)
		}
		return results
	}

	work := make([]func(), n)
	for i := range n {
		work[i] = func() { detect(i) }
	}
	a.pool.ExecuteAll(work)
	return results
}
