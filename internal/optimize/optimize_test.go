package optimize

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/gogpu/spritekit"
)

func TestNop(t *testing.T) {
	in := []byte{1, 2, 3}
	out, err := Nop{}.Optimize(context.Background(), in)
	if err != nil || !bytes.Equal(in, out) {
		t.Errorf("Nop.Optimize() = %v, %v", out, err)
	}
}

func TestPNGQuant_Args(t *testing.T) {
	tests := []struct {
		name    string
		quality string
		want    []string
	}{
		{"default", "", []string{"--force", "--ext", ".png", "--quality=60-80", "--strip", "f.png"}},
		{"custom", "40-90", []string{"--force", "--ext", ".png", "--quality=40-90", "--strip", "f.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (PNGQuant{Quality: tt.quality}).Args("f.png"); !slices.Equal(got, tt.want) {
				t.Errorf("Args() = %v, want %v", got, tt.want)
			}
		})
	}
}

// fakeTool writes an executable shell script standing in for pngquant.
func fakeTool(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "pngquant")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPNGQuant_Optimize(t *testing.T) {
	// The last argument is the file to rewrite in place.
	bin := fakeTool(t, `for f; do :; done; printf small > "$f"`+"\n")

	out, err := PNGQuant{Binary: bin}.Optimize(context.Background(), []byte("large input"))
	if err != nil {
		t.Fatalf("Optimize() error = %v", err)
	}
	if string(out) != "small" {
		t.Errorf("Optimize() = %q, want %q", out, "small")
	}
}

func TestPNGQuant_Failure(t *testing.T) {
	tests := []struct {
		name string
		bin  func(t *testing.T) string
	}{
		{"nonzero exit", func(t *testing.T) string { return fakeTool(t, "echo quality too low >&2\nexit 99\n") }},
		{"missing binary", func(t *testing.T) string { return filepath.Join(t.TempDir(), "no-such-tool") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PNGQuant{Binary: tt.bin(t)}.Optimize(context.Background(), []byte("x"))
			if !errors.Is(err, spritekit.ErrCompressionFailure) {
				t.Errorf("Optimize() error = %v, want ErrCompressionFailure", err)
			}
		})
	}
}
