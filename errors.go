package spritekit

import "errors"

// Error kinds shared by the pixel core and the packages orchestrating it.
// Callers wrap them with fmt.Errorf("...: %w", err) and test with errors.Is.
var (
	// ErrInvalidInput is returned for zero-sized buffers, frame counts that do
	// not divide the sheet, out-of-range coordinates and invalid parameters.
	ErrInvalidInput = errors.New("spritekit: invalid input")

	// ErrDecodeFailure is returned when image bytes cannot be decoded.
	ErrDecodeFailure = errors.New("spritekit: decode failure")

	// ErrUnsafeArchiveEntry is returned when an archive entry would be written
	// outside the extraction root.
	ErrUnsafeArchiveEntry = errors.New("spritekit: unsafe archive entry")

	// ErrDuplicateName is returned when a sprite name is already taken.
	ErrDuplicateName = errors.New("spritekit: duplicate name")

	// ErrCompressionFailure is returned by optimizers when the external
	// compressor cannot be launched or exits with a nonzero status.
	ErrCompressionFailure = errors.New("spritekit: compression failure")

	// ErrNotFound is returned when a sprite or animation does not exist.
	ErrNotFound = errors.New("spritekit: not found")
)
