package parallel

import (
	"runtime"
	"sync/atomic"
	"testing"
)

func TestWorkerPool_Create(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
	if !pool.IsRunning() {
		t.Error("Pool should be running after creation")
	}
}

func TestWorkerPool_CreateDefaultWorkers(t *testing.T) {
	for _, n := range []int{0, -5} {
		pool := NewWorkerPool(n)
		if pool.Workers() != runtime.GOMAXPROCS(0) {
			t.Errorf("NewWorkerPool(%d).Workers() = %d, want GOMAXPROCS %d", n, pool.Workers(), runtime.GOMAXPROCS(0))
		}
		pool.Close()
	}
}

func TestWorkerPool_ExecuteAll(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	const numTasks = 100

	work := make([]func(), numTasks)
	for i := range work {
		work[i] = func() { counter.Add(1) }
	}
	pool.ExecuteAll(work)

	if counter.Load() != numTasks {
		t.Errorf("counter = %d, want %d", counter.Load(), numTasks)
	}
}

func TestWorkerPool_ExecuteAllIndexedResults(t *testing.T) {
	pool := NewWorkerPool(3)
	defer pool.Close()

	results := make([]int, 50)
	work := make([]func(), len(results))
	for i := range work {
		work[i] = func() { results[i] = i * i }
	}
	pool.ExecuteAll(work)

	for i, v := range results {
		if v != i*i {
			t.Fatalf("results[%d] = %d, want %d", i, v, i*i)
		}
	}
}

func TestWorkerPool_ExecuteAllAfterClose(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()
	pool.Close() // idempotent

	if pool.IsRunning() {
		t.Fatal("IsRunning() = true after Close")
	}

	var counter atomic.Int64
	pool.ExecuteAll([]func(){
		func() { counter.Add(1) },
		func() { counter.Add(1) },
	})
	if counter.Load() != 2 {
		t.Errorf("closed pool ran %d items, want 2 on caller goroutine", counter.Load())
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		parts int
		want  int
	}{
		{"even", 100, 4, 4},
		{"remainder", 10, 3, 3},
		{"more parts than items", 3, 8, 3},
		{"single part", 7, 1, 1},
		{"zero parts clamps to one", 7, 0, 1},
		{"empty", 0, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.n, tt.parts)
			if len(got) != tt.want {
				t.Fatalf("len(Split(%d, %d)) = %d, want %d", tt.n, tt.parts, len(got), tt.want)
			}
			next := 0
			for _, r := range got {
				if r.Lo != next || r.Hi <= r.Lo {
					t.Fatalf("range %+v does not continue at %d", r, next)
				}
				next = r.Hi
			}
			if tt.n > 0 && next != tt.n {
				t.Errorf("ranges end at %d, want %d", next, tt.n)
			}
		})
	}
}
