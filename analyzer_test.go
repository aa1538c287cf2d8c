package spritekit

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
)

func TestNewAnalyzer_InvalidParams(t *testing.T) {
	p := DefaultParams()
	p.MinAbsoluteWidth = -3
	if _, err := NewAnalyzer(WithParams(p)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("NewAnalyzer() error = %v, want ErrInvalidInput", err)
	}
}

func TestAnalyzer_ParallelMatchesSequential(t *testing.T) {
	seq, err := NewAnalyzer()
	if err != nil {
		t.Fatal(err)
	}
	defer seq.Close()

	par, err := NewAnalyzer(WithWorkers(4), WithParallelThreshold(0))
	if err != nil {
		t.Fatal(err)
	}
	defer par.Close()

	sheets := []*PixelBuffer{
		solidStrip(t, 7, 13, 9, 3),
		solidStrip(t, 1, 5, 1, 0),
		patterned(t, 97, 11),
		mustBuffer(t, 40, 4),
	}
	for i, buf := range sheets {
		a, err := seq.ScanColumns(buf)
		if err != nil {
			t.Fatal(err)
		}
		b, err := par.ScanColumns(buf)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(a, b) {
			t.Errorf("sheet %d: parallel scan differs from sequential", i)
		}

		fa, _ := seq.DetectFrames(buf)
		fb, _ := par.DetectFrames(buf)
		if fa != fb {
			t.Errorf("sheet %d: frames %d (sequential) != %d (parallel)", i, fa, fb)
		}
	}
}

func TestAnalyzer_ConcurrentUse(t *testing.T) {
	a, err := NewAnalyzer(WithWorkers(2), WithParallelThreshold(0))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	buf := solidStrip(t, 5, 8, 6, 2)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if n, err := a.DetectFrames(buf); err != nil || n != 5 {
				t.Errorf("DetectFrames() = %d, %v, want 5", n, err)
			}
		}()
	}
	wg.Wait()
}

func TestAnalyzer_DetectEach(t *testing.T) {
	for _, workers := range []int{1, 3} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			a, err := NewAnalyzer(WithWorkers(workers))
			if err != nil {
				t.Fatal(err)
			}
			defer a.Close()

			errBroken := errors.New("broken")
			results := a.DetectEach(4, func(i int) (*PixelBuffer, error) {
				if i == 2 {
					return nil, errBroken
				}
				return solidStrip(t, i+1, 6, 3, 1), nil
			})

			if len(results) != 4 {
				t.Fatalf("len(results) = %d, want 4", len(results))
			}
			for i, r := range results {
				if i == 2 {
					if !errors.Is(r.Err, errBroken) {
						t.Errorf("result 2 error = %v, want load error", r.Err)
					}
					continue
				}
				if r.Err != nil || r.Frames != i+1 || r.Height != 3 {
					t.Errorf("result %d = %+v, want %d frames", i, r, i+1)
				}
			}
		})
	}
}

func TestAnalyzer_CloseTwice(t *testing.T) {
	a, err := NewAnalyzer(WithWorkers(2))
	if err != nil {
		t.Fatal(err)
	}
	a.Close()
	a.Close()

	// A closed pool still runs work on the caller.
	n, err := a.DetectFrames(solidStrip(t, 3, 5, 2, 1))
	if err != nil || n != 3 {
		t.Errorf("DetectFrames() after Close = %d, %v, want 3", n, err)
	}
}
