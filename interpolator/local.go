package interpolator

import (
	"fmt"

	"github.com/notargets/RBFKernel/lengthparam"
	"github.com/notargets/RBFKernel/rbfs"
	"github.com/notargets/RBFKernel/utils"
)

// LocalInterpolator is a plain interpolator on per-sample length
// parameters. Its kernel matrix is not symmetric, so it is solved without
// regularization and the scale cannot be optimized.
type LocalInterpolator struct {
	*RBFInterpolator
}

// NewLocalCSRBFInterpolator combines the Wendland kernel (L=3, K=1) with
// local length parameters and sparse storage solved by BiCGSTAB. The
// Wendland parameters and scale of cfg are honoured.
func NewLocalCSRBFInterpolator(cfg Config, opts ...Option) (*LocalInterpolator, error) {
	cfg.Kernel = "wendland"
	cfg.LengthParameter = LengthLocal
	cfg.Sparse = true
	return newLocalInterpolator(cfg, opts)
}

// NewLocalInterpolator combines the configured kernel with local length
// parameters and dense storage solved by LU.
func NewLocalInterpolator(cfg Config, opts ...Option) (*LocalInterpolator, error) {
	cfg.LengthParameter = LengthLocal
	cfg.Sparse = false
	return newLocalInterpolator(cfg, opts)
}

func newLocalInterpolator(cfg Config, opts []Option) (*LocalInterpolator, error) {
	ip, err := NewRBFInterpolator(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if ip.length.UsesGlobal() {
		return nil, fmt.Errorf("local interpolator given global length parameters: %w", utils.ErrInvalidArgument)
	}
	if _, compact := rbfs.SupportBoundary(ip.kernel); ip.sparse && !compact {
		return nil, fmt.Errorf("local sparse interpolator needs a compactly supported kernel: %w",
			utils.ErrInvalidArgument)
	}
	return &LocalInterpolator{RBFInterpolator: ip}, nil
}

// LengthParameters are the per-sample length parameters of the last
// Compute.
func (ip *LocalInterpolator) LengthParameters() []float64 {
	if local, ok := ip.length.(*lengthparam.Local); ok {
		return local.LengthParameters()
	}
	return nil
}
