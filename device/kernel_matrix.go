package device

import (
	"fmt"
	"unsafe"

	"github.com/notargets/RBFKernel/lengthparam"
	"github.com/notargets/RBFKernel/rbfs"
	"github.com/notargets/RBFKernel/utils"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// blockSize bounds the @inner loop, which devices limit in length
const blockSize = 256

const kernelMatrixTemplate = `
#define N %d
#define DIMS %d
#define NBLOCKS %d
#define BLOCK %d
#define INV_LENGTH %.17g

@kernel void %s(const double *samples, double *K) {
	for (int i = 0; i < N; ++i; @outer(1)) {
		for (int b = 0; b < NBLOCKS; ++b; @outer(0)) {
			for (int t = 0; t < BLOCK; ++t; @inner) {
				const int j = b*BLOCK + t;
				if (j < N) {
					double sum = 0.0;
					for (int d = 0; d < DIMS; ++d) {
						const double diff = samples[i*DIMS + d] - samples[j*DIMS + d];
						sum += diff*diff;
					}
					const double r = sqrt(sum)*INV_LENGTH;
					K[i*N + j] = %s;
				}
			}
		}
	}
}
`

// ComputeDenseOnDevice assembles the dense kernel matrix of samples under
// Euclidean distance on the runner's device. The length parameter must be
// global and the kernel must provide a C expression.
func ComputeDenseOnDevice(r *Runner, k rbfs.Kernel, lp lengthparam.Calculator, samples [][]float64) (*mat.Dense, error) {
	if !lp.UsesGlobal() {
		return nil, fmt.Errorf("device assembly needs a global length parameter: %w", utils.ErrInvalidArgument)
	}
	csrc, ok := k.(rbfs.CSourcer)
	if !ok {
		return nil, fmt.Errorf("%T has no C source for device assembly: %w", k, utils.ErrInvalidArgument)
	}
	dims, err := utils.Dimensions(samples)
	if err != nil {
		return nil, err
	}
	if err := lp.Compute(samples, utils.EuclideanDistance{}); err != nil {
		return nil, fmt.Errorf("length parameters: %w", err)
	}
	n := len(samples)
	flat := make([]float64, 0, n*dims)
	for _, s := range samples {
		flat = append(flat, s...)
	}

	expr := csrc.CSource("r")
	nblocks := (n + blockSize - 1) / blockSize
	invLength := 1 / lp.At(0)
	// Sizes and the length parameter are compiled in
	name := kernelName("kernel_matrix", fmt.Sprintf("%d %d %.17g %s", n, dims, invLength, expr))
	source := fmt.Sprintf(kernelMatrixTemplate, n, dims, nblocks, blockSize, invLength, name, expr)
	kernel, err := r.BuildKernel(source, name)
	if err != nil {
		return nil, err
	}

	bytes := int64(n * n * 8)
	samplesMem := r.Device.Malloc(int64(len(flat)*8), unsafe.Pointer(&flat[0]), nil)
	defer samplesMem.Free()
	kMem := r.Device.Malloc(bytes, nil, nil)
	defer kMem.Free()

	if err := kernel.RunWithArgs(samplesMem, kMem); err != nil {
		return nil, fmt.Errorf("kernel execution failed: %v: %w", err, utils.ErrAlgorithmFailure)
	}
	r.Device.Finish()

	data := make([]float64, n*n)
	kMem.CopyTo(unsafe.Pointer(&data[0]), bytes)
	r.logger.Debug("kernel matrix assembled", zap.Int("samples", n), zap.Int("dims", dims))
	return mat.NewDense(n, n, data), nil
}
