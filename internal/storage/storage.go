// Package storage lays out stored sprite sheets on disk as
// {root}/{sprite}/{CATEGORY}/{index}.png.
package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gogpu/spritekit"
)

// Layout resolves and manipulates stored sheets below a root directory.
type Layout struct {
	root string
}

// New returns a Layout rooted at root, creating the directory if needed.
func New(root string) (*Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &Layout{root: abs}, nil
}

// Root returns the absolute root directory.
func (l *Layout) Root() string {
	return l.root
}

// RelPath returns the slash-separated path of a sheet relative to the root,
// which is also the sheet's URL suffix.
func RelPath(sprite, category string, index int) string {
	return path.Join(sprite, category, strconv.Itoa(index)+".png")
}

// SheetPath returns the file path of a sheet.
func (l *Layout) SheetPath(sprite, category string, index int) string {
	return filepath.Join(l.root, filepath.FromSlash(RelPath(sprite, category, index)))
}

// Resolve maps a slash-separated path relative to the root onto the file
// system. Paths leaving the root are ErrInvalidInput.
func (l *Layout) Resolve(rel string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(rel, `\`, "/"))
	if clean == "/" {
		return "", fmt.Errorf("%w: empty path", spritekit.ErrInvalidInput)
	}
	full := filepath.Join(l.root, filepath.FromSlash(clean))
	if r, err := filepath.Rel(l.root, full); err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path %q", spritekit.ErrInvalidInput, rel)
	}
	return full, nil
}

// ReadSheet loads and decodes a stored sheet.
func (l *Layout) ReadSheet(sprite, category string, index int) (*spritekit.PixelBuffer, error) {
	p := l.SheetPath(sprite, category, index)
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: sheet %s", spritekit.ErrNotFound, RelPath(sprite, category, index))
		}
		return nil, fmt.Errorf("storage: stat sheet: %w", err)
	}
	return spritekit.Load(p)
}

// WriteSheet atomically replaces a stored sheet with PNG bytes.
func (l *Layout) WriteSheet(sprite, category string, index int, png []byte) error {
	p := l.SheetPath(sprite, category, index)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("storage: create directory: %w", err)
	}
	return spritekit.WriteFileAtomic(p, png)
}

// CopySheet copies the file at src into the sheet slot.
func (l *Layout) CopySheet(src, sprite, category string, index int) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return fmt.Errorf("storage: open source: %w", err)
	}
	defer func() { _ = in.Close() }()

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("storage: read source: %w", err)
	}
	return l.WriteSheet(sprite, category, index, data)
}

// Reset removes everything stored for sprite and recreates its directory.
func (l *Layout) Reset(sprite string) error {
	dir := filepath.Join(l.root, sprite)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("storage: clear %s: %w", sprite, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: create %s: %w", sprite, err)
	}
	return nil
}

// Rename moves a sprite's directory. A sprite with nothing stored is not an
// error. An existing target directory is replaced.
func (l *Layout) Rename(oldName, newName string) error {
	if oldName == newName {
		return nil
	}
	from := filepath.Join(l.root, oldName)
	to := filepath.Join(l.root, newName)
	if _, err := os.Stat(from); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(to); err != nil {
		return fmt.Errorf("storage: clear target: %w", err)
	}
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("storage: rename %s: %w", oldName, err)
	}
	return nil
}

// Remove deletes everything stored for sprite.
func (l *Layout) Remove(sprite string) error {
	if err := os.RemoveAll(filepath.Join(l.root, sprite)); err != nil {
		return fmt.Errorf("storage: remove %s: %w", sprite, err)
	}
	return nil
}
