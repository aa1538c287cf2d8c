// Package spritekit infers animation frames in sprite sheets and rebuilds
// sheets from that inference.
//
// # Overview
//
// A sheet is a single image holding animation frames laid out left to right.
// spritekit answers "how many frames are in this strip" from the image alone,
// crops every frame of a sheet to one shared tight bounding box, and mirrors
// each frame of a sheet in place. All algorithms are deterministic, work on
// in-memory [PixelBuffer] values, and never mutate their input.
//
// # Quick Start
//
//	import "github.com/gogpu/spritekit"
//
//	sheet, err := spritekit.Load("walk.png")
//	if err != nil {
//	    return err
//	}
//
//	p := spritekit.DefaultParams()
//	frames, err := spritekit.DetectFrames(sheet, p)
//	if err != nil {
//	    return err
//	}
//
//	tight, err := spritekit.Normalize(sheet, frames, p)
//	if err != nil {
//	    return err
//	}
//	return tight.SavePNG("walk.png")
//
// # Frame Detection
//
// Detection runs in four steps:
//   - [ScanColumns] marks every column holding a pixel with alpha above
//     [Params.AlphaThreshold]
//   - [RunLengths] turns the marks into widths of contiguous visible runs
//   - [RobustAverageWidth] averages the runs, ignoring noise and outliers
//   - [CountFrames] counts frames, splitting runs that are several frames wide
//
// [DetectFrames] composes the four. The thresholds live in [Params] so callers
// can tune them for artwork with unusual spacing.
//
// # Sheet Operations
//
//   - [Normalize] crops all frames to the union of their content bounds
//   - [FlipHorizontal] mirrors each frame within its slot
//   - [Scale] enlarges a sheet for preview with nearest-neighbour sampling
//
// Invalid frame counts, zero-sized buffers and out-of-range coordinates fail
// with [ErrInvalidInput].
//
// Sheets usually come from untrusted uploads. [Decode] and [Load] read the
// image header first and refuse images above [DefaultMaxPixels] before any
// pixel memory is allocated; [DecodeLimit] and [LoadLimit] take an explicit
// limit.
//
// # Concurrency
//
// Package functions are safe to call concurrently on different buffers. An
// [Analyzer] created with [WithWorkers] additionally splits the column scan
// of large sheets, and batches of sheets, across a worker pool.
//
// # Logging
//
// spritekit is silent by default. Use [SetLogger] to receive debug output of
// run widths and bounds.
package spritekit
