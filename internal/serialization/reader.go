package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/xx-fighting/tntorch/internal/dense"
	"github.com/xx-fighting/tntorch/internal/tensor"
)

// Reader reads compressed tensors from .tt files. Opening parses and
// validates the header; the data section is only read when the tensor is
// requested, so header inspection stays cheap.
type Reader struct {
	file       *os.File
	header     Header
	flags      uint32
	version    uint32
	dataOffset int64 // Offset where the data section starts
	dataSize   int64 // Size of the data section
	checksum   [ChecksumSize]byte
	opts       ReaderOptions
	closed     bool
}

// ReaderOptions configures the behavior of Reader.
type ReaderOptions struct {
	SkipChecksumValidation bool // Skip checksum validation (faster but less safe)
}

// Open creates a reader for the .tt file at path with default options.
func Open(path string) (*Reader, error) {
	return OpenWithOptions(path, ReaderOptions{})
}

// OpenWithOptions creates a reader for the .tt file at path.
func OpenWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for loading tensors
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	r := &Reader{file: file, opts: opts}
	if err := r.parseHeader(); err != nil {
		_ = file.Close() // Best effort close on error
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() < r.dataOffset+r.dataSize {
		_ = file.Close()
		return nil, fmt.Errorf("file truncated: %d bytes, data section needs %d", info.Size(), r.dataOffset+r.dataSize)
	}

	if err := ValidateHeader(&r.header, r.dataSize); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return r, nil
}

// parseHeader reads the fixed header and the JSON header.
func (r *Reader) parseHeader() error {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r.file, fixed); err != nil {
		return fmt.Errorf("failed to read fixed header: %w", err)
	}

	if string(fixed[0:4]) != MagicBytes {
		return ErrInvalidMagic
	}
	r.version = binary.LittleEndian.Uint32(fixed[4:8])
	if r.version != FormatVersion {
		return fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, r.version, FormatVersion)
	}

	r.flags = binary.LittleEndian.Uint32(fixed[8:12])
	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	dataSize := binary.LittleEndian.Uint64(fixed[24:32])
	copy(r.checksum[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	if headerSize > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r.file, headerJSON); err != nil {
		return fmt.Errorf("failed to read header JSON: %w", err)
	}
	if err := json.Unmarshal(headerJSON, &r.header); err != nil {
		return fmt.Errorf("failed to parse header JSON: %w", err)
	}

	pos := int64(FixedHeaderSize) + int64(headerSize)
	padding := (HeaderAlignment - pos%HeaderAlignment) % HeaderAlignment
	r.dataOffset = pos + padding
	r.dataSize = int64(dataSize)
	return nil
}

// Header returns the file header.
func (r *Reader) Header() Header {
	return r.header
}

// Metadata returns the metadata map from the header.
func (r *Reader) Metadata() map[string]string {
	return r.header.Metadata
}

// Tensor reads the data section and rebuilds the compressed tensor. The
// checksum is verified first unless the reader was opened with
// SkipChecksumValidation.
func (r *Reader) Tensor() (*tensor.Tensor, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}

	payload := make([]byte, r.dataSize)
	if _, err := r.file.Seek(r.dataOffset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to data section: %w", err)
	}
	if _, err := io.ReadFull(r.file, payload); err != nil {
		return nil, fmt.Errorf("failed to read data section: %w", err)
	}

	if !r.opts.SkipChecksumValidation {
		if err := ValidateChecksum(ComputeChecksum(payload), r.checksum); err != nil {
			return nil, err
		}
	}
	return rebuild(&r.header, payload)
}

// Close closes the reader and the underlying file.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

// Load reads a compressed tensor from the .tt file at path.
func Load(path string) (*tensor.Tensor, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	t, err := r.Tensor()
	if cerr := r.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return t, err
}

// Read deserializes a compressed tensor from src. This is useful for reading
// from buffers or network connections. The checksum is always verified.
func Read(src io.Reader) (*tensor.Tensor, Header, error) {
	fixed := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(src, fixed); err != nil {
		return nil, Header{}, fmt.Errorf("failed to read fixed header: %w", err)
	}
	if string(fixed[0:4]) != MagicBytes {
		return nil, Header{}, ErrInvalidMagic
	}
	if version := binary.LittleEndian.Uint32(fixed[4:8]); version != FormatVersion {
		return nil, Header{}, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}
	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	dataSize := binary.LittleEndian.Uint64(fixed[24:32])
	var stored [ChecksumSize]byte
	copy(stored[:], fixed[ChecksumOffset:ChecksumOffset+ChecksumSize])

	if headerSize > MaxHeaderSize {
		return nil, Header{}, ErrHeaderTooLarge
	}
	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(src, headerJSON); err != nil {
		return nil, Header{}, fmt.Errorf("failed to read header JSON: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, Header{}, fmt.Errorf("failed to parse header JSON: %w", err)
	}
	if err := ValidateHeader(&header, int64(dataSize)); err != nil {
		return nil, Header{}, fmt.Errorf("validation failed: %w", err)
	}

	pos := int64(FixedHeaderSize) + int64(headerSize)
	if padding := (HeaderAlignment - pos%HeaderAlignment) % HeaderAlignment; padding > 0 {
		if _, err := io.CopyN(io.Discard, src, padding); err != nil {
			return nil, Header{}, fmt.Errorf("failed to skip padding: %w", err)
		}
	}

	payload := make([]byte, dataSize)
	if _, err := io.ReadFull(src, payload); err != nil {
		return nil, Header{}, fmt.Errorf("failed to read data section: %w", err)
	}
	if err := ValidateChecksum(ComputeChecksum(payload), stored); err != nil {
		return nil, Header{}, err
	}

	t, err := rebuild(&header, payload)
	if err != nil {
		return nil, Header{}, err
	}
	return t, header, nil
}

// rebuild reassembles a tensor from a validated header and its data section.
func rebuild(h *Header, payload []byte) (*tensor.Tensor, error) {
	n := len(h.Shape)
	cores := make([]*dense.Dense, n)
	var factors []*mat.Dense

	for _, b := range h.Blocks {
		vals := make([]float64, b.Size/BytesPerCoef)
		getFloats(vals, payload[b.Offset:b.Offset+b.Size])

		switch b.Kind {
		case KindCore:
			if cores[b.Mode] != nil {
				return nil, &ValidationError{Type: "duplicate_block", Block: b.label()}
			}
			cores[b.Mode] = dense.Wrap(vals, dense.Shape(b.Shape))
		case KindFactor:
			if factors == nil {
				factors = make([]*mat.Dense, n)
			}
			if factors[b.Mode] != nil {
				return nil, &ValidationError{Type: "duplicate_block", Block: b.label()}
			}
			factors[b.Mode] = mat.NewDense(b.Shape[0], b.Shape[1], vals)
		}
	}

	for k, c := range cores {
		if c == nil {
			return nil, &ValidationError{Type: "missing_block", Block: KindCore + " " + strconv.Itoa(k)}
		}
	}
	if factors != nil {
		for k, f := range factors {
			if f == nil {
				return nil, &ValidationError{Type: "missing_block", Block: KindFactor + " " + strconv.Itoa(k)}
			}
		}
	}

	t, err := tensor.FromComponents(cores, factors)
	if err != nil {
		return nil, fmt.Errorf("file does not hold a consistent tensor: %w", err)
	}
	if got := t.Format(); got != h.Format {
		return nil, &ValidationError{
			Type:    "format_mismatch",
			Details: fmt.Sprintf("header declares %q, blocks form %q", h.Format, got),
		}
	}
	if got := t.Shape(); !got.Equal(dense.Shape(h.Shape)) {
		return nil, &ValidationError{
			Type:    "shape_mismatch",
			Details: fmt.Sprintf("header declares %v, blocks form %v", h.Shape, got),
		}
	}
	return t, nil
}
