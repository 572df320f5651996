package utils

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Combination returns the binomial coefficient C(n, k), zero when k > n
func Combination[T constraints.Integer](n, k T) (T, error) {
	if n < 0 || k < 0 {
		return 0, fmt.Errorf("combination(%d, %d) requires non-negative arguments: %w",
			int64(n), int64(k), ErrInvalidArgument)
	}
	if k > n {
		return 0, nil
	}
	if k > n-k {
		k = n - k
	}
	var result T = 1
	for i := T(1); i <= k; i++ {
		// Exact at every step: result*(n-k+i) is divisible by i.
		result = result * (n - k + i) / i
	}
	return result, nil
}
