package utils

import "errors"

// Error classes shared by every package. Callers test them with errors.Is,
// the detail travels in the wrapping message.
var (
	// ErrInvalidArgument flags caller misuse: empty sample sets, non-positive
	// scales, dimension mismatches, unsupported regularization.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAlgorithmFailure flags data that violates a numerical precondition,
	// e.g. a rank deficient polynomial term matrix.
	ErrAlgorithmFailure = errors.New("algorithm failure")

	// ErrPreconditionNotSatisfied flags a call order violation such as
	// solving before computing.
	ErrPreconditionNotSatisfied = errors.New("precondition not satisfied")
)
