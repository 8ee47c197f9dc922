package serialization

import (
	"encoding/binary"
	"math"
	"strconv"
	"time"
)

// Format constants.
const (
	MagicBytes      = "TNTR"
	FormatVersion   = 1    // v1: fixed header with SHA-256 checksum
	HeaderAlignment = 64   // Align the data section to 64 bytes
	FixedHeaderSize = 64   // Fixed header size (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
	BytesPerCoef    = 8    // Every coefficient is a float64
)

// DTypeFloat64 is the only coefficient type the format stores today. The
// header records it so future versions can widen without a magic change.
const DTypeFloat64 = "float64"

// Block kinds.
const (
	KindCore   = "core"
	KindFactor = "factor"
)

// Flags for the .tt format.
const (
	FlagHasTucker   uint32 = 1 << 0 // bit 0: Tucker factor blocks present
	FlagHasMetadata uint32 = 1 << 1 // bit 1: custom metadata included
)

// Header is the JSON header of a .tt file.
type Header struct {
	FormatVersion  int               `json:"format_version"`  // Version of the .tt format
	LibraryVersion string            `json:"library_version"` // Version of tntorch that wrote the file
	Format         string            `json:"format"`          // "TT", "CP", "TT-Tucker" or "CP-Tucker"
	Shape          []int             `json:"shape"`           // Full (uncompressed) mode sizes
	DType          string            `json:"dtype"`           // Coefficient type ("float64")
	CreatedAt      time.Time         `json:"created_at"`      // When the file was written
	Blocks         []BlockMeta       `json:"blocks"`          // Cores first, then Tucker factors
	Metadata       map[string]string `json:"metadata"`        // Custom metadata
}

// BlockMeta describes one core or factor in the data section.
type BlockMeta struct {
	Kind   string `json:"kind"`   // "core" or "factor"
	Mode   int    `json:"mode"`   // Mode index along the train
	Shape  []int  `json:"shape"`  // Block shape: (r0,n,r1) TT core, (n,R) CP core, (n,s) factor
	Offset int64  `json:"offset"` // Offset in the data section (bytes)
	Size   int64  `json:"size"`   // Size in bytes
}

// label names a block in error messages.
func (b BlockMeta) label() string {
	return b.Kind + " " + strconv.Itoa(b.Mode)
}

// putFloats encodes src as little-endian float64 bits into dst.
// dst must have room for 8*len(src) bytes.
func putFloats(dst []byte, src []float64) {
	for i, v := range src {
		binary.LittleEndian.PutUint64(dst[i*BytesPerCoef:], math.Float64bits(v))
	}
}

// getFloats decodes little-endian float64 bits from src into dst.
// src must hold at least 8*len(dst) bytes.
func getFloats(dst []float64, src []byte) {
	for i := range dst {
		dst[i] = math.Float64frombits(binary.LittleEndian.Uint64(src[i*BytesPerCoef:]))
	}
}
