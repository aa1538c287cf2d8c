package spritekit

// AnalyzerOption configures an Analyzer during creation.
//
// Example:
//
//	// Sequential analysis with default thresholds
//	a, _ := spritekit.NewAnalyzer()
//
//	// Looser noise filter, column scans spread over 4 workers
//	p := spritekit.DefaultParams()
//	p.MinAbsoluteWidth = 3
//	a, _ := spritekit.NewAnalyzer(spritekit.WithParams(p), spritekit.WithWorkers(4))
type AnalyzerOption func(*analyzerOptions)

// analyzerOptions holds optional configuration for Analyzer creation.
type analyzerOptions struct {
	params            Params
	workers           int
	minParallelPixels int
}

// defaultParallelPixels is the sheet area below which a column scan stays on
// the calling goroutine.
const defaultParallelPixels = 1 << 16

func defaultAnalyzerOptions() analyzerOptions {
	return analyzerOptions{
		params:            DefaultParams(),
		workers:           1,
		minParallelPixels: defaultParallelPixels,
	}
}

// WithParams sets the detection parameters.
func WithParams(p Params) AnalyzerOption {
	return func(o *analyzerOptions) {
		o.params = p
	}
}

// WithWorkers sets the number of goroutines used for column scans and batch
// detection. Values below 1 select GOMAXPROCS; 1 keeps everything sequential.
func WithWorkers(n int) AnalyzerOption {
	return func(o *analyzerOptions) {
		o.workers = n
	}
}

// WithParallelThreshold sets the minimum sheet area, in pixels, for which a
// single column scan is split across workers.
func WithParallelThreshold(pixels int) AnalyzerOption {
	return func(o *analyzerOptions) {
		o.minParallelPixels = pixels
	}
}
