package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gogpu/spritekit"
)

// FindRoot returns the single top-level folder of an extracted archive.
// Folders starting with "__" (such as the __MACOSX metadata folder) and
// loose files are ignored. Zero or several candidates are ErrInvalidInput.
func FindRoot(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("archive: read extracted dir: %w", err)
	}
	var roots []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), "__") {
			roots = append(roots, e.Name())
		}
	}
	if len(roots) != 1 {
		return "", fmt.Errorf("%w: archive must contain exactly one sprite folder, found %d", spritekit.ErrInvalidInput, len(roots))
	}
	return filepath.Join(dir, roots[0]), nil
}

// FindSubdir returns the child of dir whose name equals name ignoring case.
// The boolean is false when there is none.
func FindSubdir(dir, name string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if e.IsDir() && strings.EqualFold(e.Name(), name) {
			return filepath.Join(dir, e.Name()), true
		}
	}
	return "", false
}

// ListPNG returns the .png files directly inside dir, sorted by name.
// A missing directory yields no files.
func ListPNG(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("archive: list %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}
