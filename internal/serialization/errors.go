package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrUnsupportedDType   = errors.New("unsupported data type")
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrHeaderTooLarge     = errors.New("header exceeds maximum size")
)

// ValidationError provides detailed information about a malformed header.
type ValidationError struct {
	Type    string // Kind of defect (e.g. "block_overlap", "out_of_bounds")
	Block   string // Block involved (e.g. "core 2", "factor 0")
	Block2  string // Secondary block (for overlap defects)
	Details string // Additional details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Block2 != "" {
		return fmt.Sprintf("%s: blocks %q and %q: %s", e.Type, e.Block, e.Block2, e.Details)
	}
	if e.Block != "" {
		return fmt.Sprintf("%s: block %q: %s", e.Type, e.Block, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}
