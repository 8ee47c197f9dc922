package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/xx-fighting/tntorch/internal/tensor"
)

const libraryVersion = "0.1.0" // Current tntorch version

// Write serializes a compressed tensor to w in .tt format. The optional
// metadata map is stored verbatim in the header.
func Write(w io.Writer, t *tensor.Tensor, metadata map[string]string) error {
	header, payload := assemble(t, metadata)

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	checksum := ComputeChecksum(payload)

	// Fixed header (64 bytes).
	fixed := make([]byte, FixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], uint32(FormatVersion))

	flags := uint32(0)
	if t.HasTucker() {
		flags |= FlagHasTucker
	}
	if len(metadata) > 0 {
		flags |= FlagHasMetadata
	}
	binary.LittleEndian.PutUint32(fixed[8:12], flags)
	// 0x0C-0x0F reserved, zero from make().
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(len(payload)))
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := w.Write(fixed); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header JSON: %w", err)
	}

	// Pad so the data section starts on a HeaderAlignment boundary.
	pos := int64(FixedHeaderSize) + int64(len(headerJSON))
	if padding := (HeaderAlignment - pos%HeaderAlignment) % HeaderAlignment; padding > 0 {
		if _, err := w.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("failed to write data section: %w", err)
	}
	return nil
}

// Save writes a compressed tensor to a .tt file at path.
func Save(t *tensor.Tensor, path string, metadata map[string]string) error {
	//nolint:gosec // G304: File path comes from user input, which is expected for saving tensors
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := Write(file, t, metadata); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

// assemble builds the header and the packed data section for t. Blocks are
// laid out deterministically: cores in mode order, then Tucker factors in
// mode order.
func assemble(t *tensor.Tensor, metadata map[string]string) (Header, []byte) {
	n := t.Dim()
	header := Header{
		FormatVersion:  FormatVersion,
		LibraryVersion: libraryVersion,
		Format:         t.Format(),
		Shape:          []int(t.Shape()),
		DType:          DTypeFloat64,
		CreatedAt:      time.Now().UTC(),
		Blocks:         make([]BlockMeta, 0, 2*n),
		Metadata:       metadata,
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	total := int64(t.NumCoef()) * BytesPerCoef
	payload := make([]byte, total)

	var offset int64
	for k := 0; k < n; k++ {
		core := t.Core(k)
		size := int64(core.NumElements()) * BytesPerCoef
		header.Blocks = append(header.Blocks, BlockMeta{
			Kind:   KindCore,
			Mode:   k,
			Shape:  []int(core.Shape()),
			Offset: offset,
			Size:   size,
		})
		putFloats(payload[offset:], core.Data())
		offset += size
	}
	if t.HasTucker() {
		for k := 0; k < n; k++ {
			raw := t.Factor(k).RawMatrix()
			size := int64(raw.Rows*raw.Cols) * BytesPerCoef
			header.Blocks = append(header.Blocks, BlockMeta{
				Kind:   KindFactor,
				Mode:   k,
				Shape:  []int{raw.Rows, raw.Cols},
				Offset: offset,
				Size:   size,
			})
			// Row by row: factor matrices may carry a stride wider than
			// their column count.
			at := offset
			for i := 0; i < raw.Rows; i++ {
				row := raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols]
				putFloats(payload[at:], row)
				at += int64(raw.Cols) * BytesPerCoef
			}
			offset += size
		}
	}
	return header, payload
}
