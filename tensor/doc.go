// Package tensor provides compressed tensor decompositions for dense
// multi-dimensional arrays.
//
// # Overview
//
// A Tensor stores a multi-dimensional array in factorized form, usually at
// a small fraction of its dense size. Four formats are supported:
//
//   - TT: a tensor-train chain of 3-mode cores linked by bond ranks
//   - CP: per-mode factor matrices sharing a single rank
//   - TT-Tucker: orthonormal per-mode factors around a TT core
//   - CP-Tucker: orthonormal per-mode factors around a CP core
//
// Decompositions are computed by truncated SVD sweeps (TT, Tucker) or
// alternating least squares (CP), and existing tensors can be recompressed
// in place with the Round family.
//
// # Basic Usage
//
//	import "github.com/xx-fighting/tntorch/tensor"
//
//	func main() {
//	    data, _ := tensor.FromSlice(values, tensor.Shape{32, 32, 32})
//
//	    // Compress with a guaranteed relative error bound.
//	    t, err := tensor.FromDense(data, tensor.Options{Eps: 1e-6})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(t)                    // 3D TT-Tucker tensor [32 32 32]
//	    fmt.Println(t.CompressionRatio()) // e.g. 87.4
//
//	    back := t.Full() // reconstruct the dense array
//	}
//
// # Choosing a Format
//
// Options fields select the format: RanksTT caps the TT bond ranks,
// RanksTucker requests Tucker factors, RankCP switches the core to CP, and
// Eps bounds the total relative error of all SVD-based truncations. Eps
// alone picks an error-driven TT-Tucker hybrid. RankCP cannot be combined
// with Eps or RanksTT, because ALS fits a fixed rank with no error-driven
// truncation.
//
// # Recompression
//
// RoundTT shrinks bond ranks and RoundTucker shrinks factor widths, both
// in place and without ever materializing the full array. CP tensors admit
// no in-place rounding; CPToTT converts them exactly to TT first.
//
// # Persistence
//
// Save and Load move tensors to and from .tt files, a checksummed binary
// format that stores the compressed blocks only. Round trips are bit-exact.
package tensor
