package serialization

import (
	"fmt"
	"math"
	"sort"
)

// Validation limits for resource protection.
const (
	MaxHeaderSize = 16 * 1024 * 1024 // 16MB - maximum JSON header size
	MaxBlockCount = 65_536           // Maximum number of blocks in a file
)

// knownFormats lists the representation names a file may declare.
var knownFormats = map[string]bool{
	"TT":        true,
	"CP":        true,
	"TT-Tucker": true,
	"CP-Tucker": true,
}

// ValidateBlockOffsets checks for overlapping block regions and out-of-bounds
// access. Malformed files must never make the reader allocate or read past
// the data section.
func ValidateBlockOffsets(blocks []BlockMeta, dataSize int64) error {
	// Sort blocks by offset for overlap detection.
	sorted := make([]BlockMeta, len(blocks))
	copy(sorted, blocks)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, b := range sorted {
		if b.Offset < 0 || b.Size < 0 {
			return &ValidationError{
				Type:    "negative_offset",
				Block:   b.label(),
				Details: fmt.Sprintf("offset=%d, size=%d (negative values not allowed)", b.Offset, b.Size),
			}
		}

		// Written so that offset+size cannot overflow before the comparison.
		if b.Size > dataSize || b.Offset > dataSize-b.Size {
			return &ValidationError{
				Type:    "out_of_bounds",
				Block:   b.label(),
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", b.Offset, b.Size, dataSize),
			}
		}

		if i < len(sorted)-1 {
			next := sorted[i+1]
			if b.Offset+b.Size > next.Offset {
				return &ValidationError{
					Type:   "block_overlap",
					Block:  b.label(),
					Block2: next.label(),
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						b.Offset, b.Offset+b.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}

	return nil
}

// validateBlockShape checks that a block's declared shape is sane and agrees
// with its declared byte size.
func validateBlockShape(b BlockMeta) error {
	arityOK := false
	switch b.Kind {
	case KindCore:
		// TT cores are 3-mode, CP cores 2-mode.
		arityOK = len(b.Shape) == 2 || len(b.Shape) == 3
	case KindFactor:
		arityOK = len(b.Shape) == 2
	default:
		return &ValidationError{
			Type:    "unknown_kind",
			Block:   b.label(),
			Details: fmt.Sprintf("kind %q is not %q or %q", b.Kind, KindCore, KindFactor),
		}
	}
	if !arityOK {
		return &ValidationError{
			Type:    "bad_shape",
			Block:   b.label(),
			Details: fmt.Sprintf("shape %v has %d modes", b.Shape, len(b.Shape)),
		}
	}
	elems := int64(1)
	for _, dim := range b.Shape {
		if dim <= 0 {
			return &ValidationError{
				Type:    "bad_shape",
				Block:   b.label(),
				Details: fmt.Sprintf("shape %v has a non-positive dimension", b.Shape),
			}
		}
		if elems > math.MaxInt64/int64(dim) {
			return &ValidationError{
				Type:    "bad_shape",
				Block:   b.label(),
				Details: fmt.Sprintf("shape %v overflows", b.Shape),
			}
		}
		elems *= int64(dim)
	}
	if elems > math.MaxInt64/BytesPerCoef || elems*BytesPerCoef != b.Size {
		return &ValidationError{
			Type:    "size_mismatch",
			Block:   b.label(),
			Details: fmt.Sprintf("shape %v needs %d bytes, header declares %d", b.Shape, elems*BytesPerCoef, b.Size),
		}
	}
	return nil
}

// ValidateHeader performs comprehensive header validation against the size of
// the data section.
func ValidateHeader(h *Header, dataSize int64) error {
	if h.DType != DTypeFloat64 {
		return fmt.Errorf("%w: %q", ErrUnsupportedDType, h.DType)
	}
	if !knownFormats[h.Format] {
		return &ValidationError{
			Type:    "unknown_format",
			Details: fmt.Sprintf("format %q", h.Format),
		}
	}
	if len(h.Blocks) > MaxBlockCount {
		return &ValidationError{
			Type:    "too_many_blocks",
			Details: fmt.Sprintf("got %d, max %d", len(h.Blocks), MaxBlockCount),
		}
	}
	n := len(h.Shape)
	if n == 0 {
		return &ValidationError{Type: "bad_shape", Details: "file declares no modes"}
	}
	var total int64
	for _, b := range h.Blocks {
		if b.Mode < 0 || b.Mode >= n {
			return &ValidationError{
				Type:    "bad_mode",
				Block:   b.label(),
				Details: fmt.Sprintf("mode outside [0, %d)", n),
			}
		}
		if err := validateBlockShape(b); err != nil {
			return err
		}
		total += b.Size
	}
	// Blocks are written back to back, so together they cover the data
	// section exactly.
	if total != dataSize {
		return &ValidationError{
			Type:    "data_size_mismatch",
			Details: fmt.Sprintf("blocks cover %d bytes, data section holds %d", total, dataSize),
		}
	}
	return ValidateBlockOffsets(h.Blocks, dataSize)
}
