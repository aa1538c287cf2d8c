// Package optimize shrinks encoded sprite sheets.
package optimize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/gogpu/spritekit"
)

// Optimizer turns PNG bytes into smaller PNG bytes.
//
// Implementations may be lossy but must keep the image dimensions. A failed
// optimization returns an error wrapping spritekit.ErrCompressionFailure.
type Optimizer interface {
	Optimize(ctx context.Context, png []byte) ([]byte, error)
}

// Nop returns its input unchanged.
type Nop struct{}

// Optimize implements Optimizer.
func (Nop) Optimize(_ context.Context, png []byte) ([]byte, error) {
	return png, nil
}

// DefaultQuality is the pngquant quality range used when none is set.
const DefaultQuality = "60-80"

// PNGQuant runs the external pngquant tool on a temporary copy of the image.
type PNGQuant struct {
	// Binary is the executable to run. Empty means "pngquant" on PATH.
	Binary string
	// Quality is passed as --quality. Empty means DefaultQuality.
	Quality string
}

// Args returns the pngquant arguments used to optimize file in place.
func (q PNGQuant) Args(file string) []string {
	quality := q.Quality
	if quality == "" {
		quality = DefaultQuality
	}
	return []string{"--force", "--ext", ".png", "--quality=" + quality, "--strip", file}
}

// Optimize implements Optimizer.
func (q PNGQuant) Optimize(ctx context.Context, png []byte) ([]byte, error) {
	bin := q.Binary
	if bin == "" {
		bin = "pngquant"
	}

	dir, err := os.MkdirTemp("", "spritekit-pngquant-")
	if err != nil {
		return nil, fmt.Errorf("optimize: create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	file := filepath.Join(dir, "sheet.png")
	if err := os.WriteFile(file, png, 0o600); err != nil {
		return nil, fmt.Errorf("optimize: write temp file: %w", err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, q.Args(file)...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: pngquant exited with code %d: %s",
				spritekit.ErrCompressionFailure, exitErr.ExitCode(), bytes.TrimSpace(stderr.Bytes()))
		}
		return nil, fmt.Errorf("%w: run pngquant: %w", spritekit.ErrCompressionFailure, err)
	}

	out, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("%w: read result: %w", spritekit.ErrCompressionFailure, err)
	}
	return out, nil
}
