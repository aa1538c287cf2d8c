package spritekit

import "testing"

func TestDefaultAnalyzerOptions(t *testing.T) {
	o := defaultAnalyzerOptions()
	if o.params != DefaultParams() {
		t.Errorf("params = %+v, want defaults", o.params)
	}
	if o.workers != 1 {
		t.Errorf("workers = %d, want 1", o.workers)
	}
	if o.minParallelPixels != defaultParallelPixels {
		t.Errorf("minParallelPixels = %d, want %d", o.minParallelPixels, defaultParallelPixels)
	}
}

func TestAnalyzerOptions(t *testing.T) {
	p := DefaultParams()
	p.MinAbsoluteWidth = 3

	o := defaultAnalyzerOptions()
	for _, opt := range []AnalyzerOption{WithParams(p), WithWorkers(4), WithParallelThreshold(10)} {
		opt(&o)
	}
	if o.params != p {
		t.Errorf("params = %+v, want %+v", o.params, p)
	}
	if o.workers != 4 {
		t.Errorf("workers = %d, want 4", o.workers)
	}
	if o.minParallelPixels != 10 {
		t.Errorf("minParallelPixels = %d, want 10", o.minParallelPixels)
	}
}

func TestNewAnalyzer_Sequential(t *testing.T) {
	a, err := NewAnalyzer()
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}
	defer a.Close()
	if a.pool != nil {
		t.Error("default analyzer should not start a worker pool")
	}
	if a.Params() != DefaultParams() {
		t.Errorf("Params() = %+v, want defaults", a.Params())
	}
}
