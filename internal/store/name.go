package store

import (
	"fmt"
	"strings"

	"golang.org/x/text/secure/precis"

	"github.com/gogpu/spritekit"
)

// ValidateName checks that name can be used both as a sprite identifier and
// as a single directory name, and returns its normalized form.
func ValidateName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: empty sprite name", spritekit.ErrInvalidInput)
	}
	norm, err := precis.OpaqueString.String(name)
	if err != nil {
		return "", fmt.Errorf("%w: sprite name %q: %w", spritekit.ErrInvalidInput, name, err)
	}
	switch {
	case norm == "." || norm == "..":
		return "", fmt.Errorf("%w: sprite name %q", spritekit.ErrInvalidInput, name)
	case strings.ContainsAny(norm, `/\:`):
		return "", fmt.Errorf("%w: sprite name %q contains a path separator", spritekit.ErrInvalidInput, name)
	case strings.HasPrefix(norm, "__"):
		return "", fmt.Errorf("%w: sprite name %q is reserved", spritekit.ErrInvalidInput, name)
	case norm != strings.TrimSpace(norm):
		return "", fmt.Errorf("%w: sprite name %q has surrounding spaces", spritekit.ErrInvalidInput, name)
	}
	return norm, nil
}
