// Package archive unpacks uploaded sprite archives into a private directory.
//
// Every entry is resolved against the destination root before anything is
// written; an entry that would land outside it aborts the extraction with
// spritekit.ErrUnsafeArchiveEntry.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/gogpu/spritekit"
)

// Limits bounds the amount of data an archive may expand to.
// Zero values mean no limit.
type Limits struct {
	MaxEntries    int
	MaxEntryBytes int64
	MaxTotalBytes int64
}

// DefaultLimits are used by ExtractToTemp.
var DefaultLimits = Limits{
	MaxEntries:    4096,
	MaxEntryBytes: 64 << 20,
	MaxTotalBytes: 512 << 20,
}

var errLimit = errors.New("archive exceeds size limit")

// Extract unpacks the zip archive read from r into dest, which must exist.
func Extract(r io.ReaderAt, size int64, dest string, limits Limits) error {
	// Some readers report insecure names alongside a usable archive; names
	// are checked per entry below, so only a missing reader is fatal.
	zr, err := zip.NewReader(r, size)
	if zr == nil {
		return fmt.Errorf("%w: open archive: %w", spritekit.ErrInvalidInput, err)
	}
	if limits.MaxEntries > 0 && len(zr.File) > limits.MaxEntries {
		return fmt.Errorf("%w: %w: %d entries", spritekit.ErrInvalidInput, errLimit, len(zr.File))
	}

	root, err := filepath.Abs(dest)
	if err != nil {
		return fmt.Errorf("archive: resolve destination: %w", err)
	}

	// Resolve every target before writing so a hostile entry late in the
	// archive leaves nothing behind.
	targets := make([]string, len(zr.File))
	for i, f := range zr.File {
		if targets[i], err = entryPath(root, f.Name); err != nil {
			return err
		}
	}

	var total int64
	for i, f := range zr.File {
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(targets[i], 0o755); err != nil {
				return fmt.Errorf("archive: create directory: %w", err)
			}
			continue
		}
		if !f.Mode().IsRegular() {
			continue
		}
		n, err := extractFile(f, targets[i], limits, total)
		if err != nil {
			return err
		}
		total += n
	}
	return nil
}

// entryPath returns where name lands under root, rejecting absolute names and
// any name whose cleaned form escapes root.
func entryPath(root, name string) (string, error) {
	slashed := strings.ReplaceAll(name, `\`, "/")
	if slashed == "" || strings.HasPrefix(slashed, "/") || filepath.VolumeName(name) != "" {
		return "", fmt.Errorf("%w: %q", spritekit.ErrUnsafeArchiveEntry, name)
	}
	target := filepath.Join(root, filepath.FromSlash(slashed))
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", spritekit.ErrUnsafeArchiveEntry, name)
	}
	return target, nil
}

func extractFile(f *zip.File, target string, limits Limits, written int64) (int64, error) {
	if limits.MaxEntryBytes > 0 && f.UncompressedSize64 > uint64(limits.MaxEntryBytes) {
		return 0, fmt.Errorf("%w: %w: %s", spritekit.ErrInvalidInput, errLimit, f.Name)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, fmt.Errorf("archive: create directory: %w", err)
	}

	rc, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("%w: open entry %s: %w", spritekit.ErrInvalidInput, f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("archive: create file: %w", err)
	}

	// The declared size can lie, so the copy itself is capped as well.
	budget := int64(-1)
	if limits.MaxEntryBytes > 0 {
		budget = limits.MaxEntryBytes
	}
	if limits.MaxTotalBytes > 0 {
		left := limits.MaxTotalBytes - written
		if budget < 0 || left < budget {
			budget = left
		}
	}
	var src io.Reader = rc
	if budget >= 0 {
		src = io.LimitReader(rc, budget+1)
	}

	n, err := io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("%w: extract %s: %w", spritekit.ErrInvalidInput, f.Name, err)
	}
	if budget >= 0 && n > budget {
		return n, fmt.Errorf("%w: %w: %s", spritekit.ErrInvalidInput, errLimit, f.Name)
	}
	return n, nil
}

// ExtractToTemp unpacks an in-memory archive into a fresh temporary directory.
// The caller must invoke cleanup once done; it removes the directory and is
// safe to call more than once. On error nothing is left on disk.
func ExtractToTemp(data []byte, prefix string) (dir string, cleanup func(), err error) {
	dir, err = os.MkdirTemp("", prefix)
	if err != nil {
		return "", nil, fmt.Errorf("archive: create temp dir: %w", err)
	}
	cleanup = func() { _ = os.RemoveAll(dir) }

	if err := Extract(bytes.NewReader(data), int64(len(data)), dir, DefaultLimits); err != nil {
		cleanup()
		return "", nil, err
	}
	return dir, cleanup, nil
}
