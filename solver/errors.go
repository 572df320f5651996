package solver

import "github.com/notargets/RBFKernel/utils"

// Re-exported so that callers of the solvers need not import utils to test
// error classes.
var (
	ErrInvalidArgument          = utils.ErrInvalidArgument
	ErrAlgorithmFailure         = utils.ErrAlgorithmFailure
	ErrPreconditionNotSatisfied = utils.ErrPreconditionNotSatisfied
)
