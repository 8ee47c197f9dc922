// Package serialization provides the native .tt binary format for saving and
// loading compressed tensors.
//
// A .tt file stores the cores of a TT or CP tensor, plus its Tucker factor
// matrices when present, without ever materializing the full array:
//
//	Format Structure:
//	  [4 bytes:  Magic "TNTR"]
//	  [4 bytes:  Version (uint32 LE)]
//	  [4 bytes:  Flags (uint32 LE)]
//	  [4 bytes:  Reserved]
//	  [8 bytes:  Header Size (uint64 LE)]
//	  [8 bytes:  Data Size (uint64 LE)]
//	  [32 bytes: SHA-256 checksum of the data section]
//	  [Header: JSON metadata describing every block]
//	  [Data section: float64 LE coefficients, 64-byte aligned]
//
// Blocks appear in a fixed order: the cores of modes 0..N-1, then the Tucker
// factors of modes 0..N-1 when the tensor carries them. The checksum covers
// the whole data section and is verified on load unless explicitly skipped.
//
// Example usage:
//
//	// Save a compressed tensor
//	if err := serialization.Save(t, "field.tt", nil); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Load it back
//	t, err := serialization.Load("field.tt")
//	if err != nil {
//	    log.Fatal(err)
//	}
package serialization
