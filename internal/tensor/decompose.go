package tensor

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/xx-fighting/tntorch/internal/dense"
)

const (
	defaultMaxIter = 25
	defaultTol     = 1e-4

	// hybridStages is the number of truncating stages in an error-driven
	// hybrid decomposition: the Tucker stage and the TT stage split the
	// budget evenly.
	hybridStages = 2
)

// Options selects the decomposition FromDense performs. Rank slices accept
// one entry per position or a single entry that broadcasts to every
// position; -1 leaves a position uncapped.
type Options struct {
	// RanksTT caps the Dim()-1 interior bond ranks of the TT chain.
	RanksTT []int

	// RanksTucker caps the Dim() Tucker factor widths. Setting it selects a
	// hybrid format whose TT chain (or CP list) lives in the reduced space.
	RanksTucker []int

	// RankCP selects CP with the given shared rank when positive. ALS fits
	// a fixed rank, so RankCP cannot be combined with Eps or RanksTT.
	RankCP int

	// Eps bounds the total relative reconstruction error of all SVD-based
	// truncations. Alone it selects an error-driven Tucker+TT hybrid.
	Eps float64

	// MaxIter caps the number of ALS sweeps. Zero means 25.
	MaxIter int

	// Tol stops ALS once a sweep improves the relative error by less than
	// this much. Zero means 1e-4.
	Tol float64

	// Seed feeds the ALS factor initialization.
	Seed int64

	// Verbose logs per-sweep ALS progress through Logger.
	Verbose bool

	// Logger receives progress entries; nil means the logrus standard
	// logger.
	Logger *logrus.Logger
}

func (o Options) als() alsConfig {
	cfg := alsConfig{
		rank:    o.RankCP,
		maxIter: o.MaxIter,
		tol:     o.Tol,
		seed:    o.Seed,
		verbose: o.Verbose,
		logger:  o.Logger,
	}
	if cfg.maxIter == 0 {
		cfg.maxIter = defaultMaxIter
	}
	if cfg.tol == 0 {
		cfg.tol = defaultTol
	}
	return cfg
}

func validateOptions(o Options) error {
	switch {
	case o.Eps < 0:
		return fmt.Errorf("%w: Eps %v is negative", ErrInvalidRequest, o.Eps)
	case o.RankCP < 0:
		return fmt.Errorf("%w: RankCP %d is negative", ErrInvalidRequest, o.RankCP)
	case o.MaxIter < 0:
		return fmt.Errorf("%w: MaxIter %d is negative", ErrInvalidRequest, o.MaxIter)
	case o.Tol < 0:
		return fmt.Errorf("%w: Tol %v is negative", ErrInvalidRequest, o.Tol)
	case o.RankCP > 0 && o.Eps > 0:
		return fmt.Errorf("%w: RankCP fits a fixed rank and admits no error target", ErrInvalidRequest)
	case o.RankCP > 0 && o.RanksTT != nil:
		return fmt.Errorf("%w: RankCP and RanksTT select conflicting core layouts", ErrInvalidRequest)
	}
	return nil
}

// normalizeRanks validates a per-position rank request. A single entry
// broadcasts to want positions; each entry must be at least -1.
func normalizeRanks(ranks []int, want int, name string) ([]int, error) {
	if ranks == nil {
		return nil, nil
	}
	out := make([]int, want)
	switch {
	case len(ranks) == want:
		copy(out, ranks)
	case len(ranks) == 1:
		for i := range out {
			out[i] = ranks[0]
		}
	default:
		return nil, fmt.Errorf("%w: %s has %d entries, want %d", ErrInvalidRequest, name, len(ranks), want)
	}
	for i, r := range out {
		if r < -1 {
			return nil, fmt.Errorf("%w: %s[%d] = %d", ErrInvalidRequest, name, i, r)
		}
	}
	return out, nil
}

// FromDense compresses a dense array into the representation the options
// select. Exactly one family applies:
//
//   - nothing set: exact TT at machine precision
//   - RanksTT and/or Eps: TT-SVD under rank caps and/or an error budget
//   - RanksTucker, optionally with RanksTT and Eps: Tucker factors around a
//     TT core (TT-Tucker)
//   - RankCP, optionally with RanksTucker: CP, or CP fitted to a Tucker core
//   - Eps alone: error-driven Tucker+TT hybrid, each stage granted
//     Eps/sqrt(2)
//
// The input array is never modified and no full-size copy outlives the
// call.
func FromDense(a *dense.Dense, opts Options) (*Tensor, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	n := a.Dim()
	bonds := n - 1
	if bonds < 0 {
		bonds = 0
	}
	rTT, err := normalizeRanks(opts.RanksTT, bonds, "RanksTT")
	if err != nil {
		return nil, err
	}
	rTucker, err := normalizeRanks(opts.RanksTucker, n, "RanksTucker")
	if err != nil {
		return nil, err
	}

	switch {
	case opts.RankCP > 0 && rTucker != nil:
		factors, core, err := hosvd(a, rTucker, 0)
		if err != nil {
			return nil, err
		}
		cores, err := cpALS(core, opts.als())
		if err != nil {
			return nil, err
		}
		return &Tensor{cores: cores, factors: factors}, nil

	case opts.RankCP > 0:
		cores, err := cpALS(a, opts.als())
		if err != nil {
			return nil, err
		}
		return &Tensor{cores: cores}, nil

	case rTucker != nil:
		stageEps := splitTolerance(opts.Eps, hybridStages)
		factors, core, err := hosvd(a, rTucker, stageEps)
		if err != nil {
			return nil, err
		}
		cores, err := ttSVD(core, rTT, stageEps)
		if err != nil {
			return nil, err
		}
		return &Tensor{cores: cores, factors: factors}, nil

	case opts.Eps > 0 && rTT == nil:
		// No structure requested: let the error budget drive both stages of
		// a Tucker+TT hybrid.
		stageEps := splitTolerance(opts.Eps, hybridStages)
		factors, core, err := hosvd(a, nil, stageEps)
		if err != nil {
			return nil, err
		}
		cores, err := ttSVD(core, nil, stageEps)
		if err != nil {
			return nil, err
		}
		return &Tensor{cores: cores, factors: factors}, nil

	default:
		cores, err := ttSVD(a, rTT, opts.Eps)
		if err != nil {
			return nil, err
		}
		return &Tensor{cores: cores}, nil
	}
}
