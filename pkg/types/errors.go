package types

import "errors"

// Sentinel errors for pipeline operations. Lenient mode only ever returns
// ErrInvalidImage and ErrNegativePadding; the rest are strict-mode errors.
var (
	ErrInvalidImage       = errors.New("invalid image")
	ErrInvalidAspectRatio = errors.New("invalid aspect ratio")
	ErrInvalidPlacement   = errors.New("invalid placement")
	ErrInvalidScale       = errors.New("invalid scale")
	ErrInvalidRotation    = errors.New("invalid rotation")
	ErrInvalidBackground  = errors.New("invalid background color")
	ErrOutOfRange         = errors.New("parameter out of range")

	// ErrNegativePadding means the canvas is smaller than the foreground,
	// which only happens when canvas sizing is wrong upstream.
	ErrNegativePadding = errors.New("negative padding")
)
