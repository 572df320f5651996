// Package builder assembles kernel (Gram) matrices
// K[i][j] = kernel(distance(x_i, x_j) / length_j).
package builder

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/james-bowman/sparse"
	"github.com/notargets/RBFKernel/lengthparam"
	"github.com/notargets/RBFKernel/partitions"
	"github.com/notargets/RBFKernel/rbfs"
	"github.com/notargets/RBFKernel/utils"
	"gonum.org/v1/gonum/mat"
)

// Config holds configuration for creating a Builder
type Config struct {
	// Parallel enables goroutine fan-out over row partitions. It is only
	// honoured for global length parameters and dense storage.
	Parallel bool
	// Workers is the number of partitions, 0 means GOMAXPROCS
	Workers int
}

// Builder binds the distance, kernel and length parameter strategy used to
// assemble kernel matrices and kernel vectors.
type Builder struct {
	Dist   utils.DistanceFunction
	Kernel rbfs.Kernel
	Length lengthparam.Calculator
	Config
}

// NewBuilder creates a new Builder instance
func NewBuilder(dist utils.DistanceFunction, kernel rbfs.Kernel, length lengthparam.Calculator,
	cfg Config) *Builder {
	if dist == nil {
		panic("distance function cannot be nil")
	}
	if kernel == nil {
		panic("kernel cannot be nil")
	}
	if length == nil {
		panic("length parameter calculator cannot be nil")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &Builder{Dist: dist, Kernel: kernel, Length: length, Config: cfg}
}

// ComputeDense recomputes the length parameters and assembles the dense
// kernel matrix, in parallel when configured and safe.
func (b *Builder) ComputeDense(samples [][]float64) (*mat.Dense, error) {
	if b.Parallel && b.Length.UsesGlobal() {
		return ComputeDenseParallel(b.Dist, b.Kernel, b.Length, samples, b.Workers)
	}
	return ComputeDense(b.Dist, b.Kernel, b.Length, samples)
}

// ComputeSparse recomputes the length parameters and assembles the sparse
// kernel matrix of a compactly supported kernel.
func (b *Builder) ComputeSparse(samples [][]float64) (*sparse.CSR, error) {
	return ComputeSparse(b.Dist, b.Kernel, b.Length, samples, b.Workers)
}

// KernelVector returns k_i = kernel(distance(q, x_i) / length_i) for the
// length parameters of the last Compute* call.
func (b *Builder) KernelVector(samples [][]float64, q []float64) []float64 {
	out := make([]float64, len(samples))
	boundary, compact := rbfs.SupportBoundary(b.Kernel)
	for i, x := range samples {
		r := b.Dist.Distance(q, x) / b.Length.At(i)
		if compact && r >= boundary {
			continue
		}
		out[i] = b.Kernel.Evaluate(r)
	}
	return out
}

// ComputeDense assembles the dense kernel matrix serially. With global
// length parameters the upper triangle is mirrored, which keeps the matrix
// exactly symmetric; local parameters are filled column by column.
func ComputeDense(dist utils.DistanceFunction, kernel rbfs.Kernel, length lengthparam.Calculator,
	samples [][]float64) (*mat.Dense, error) {
	n, err := prepare(dist, length, samples)
	if err != nil {
		return nil, err
	}
	K := mat.NewDense(n, n, nil)
	if length.UsesGlobal() {
		l := length.At(0)
		for i := 0; i < n; i++ {
			fillUpperRow(K, dist, kernel, samples, i, l)
		}
		return K, nil
	}
	for j := 0; j < n; j++ {
		l := length.At(j)
		for i := 0; i < n; i++ {
			K.Set(i, j, kernel.Evaluate(dist.Distance(samples[i], samples[j])/l))
		}
	}
	return K, nil
}

// ComputeDenseParallel assembles the dense kernel matrix of a global length
// parameter with one goroutine per row partition. Each worker writes the
// upper triangle of its own rows and the mirrored cells below the
// diagonal, so no two workers touch the same cell.
func ComputeDenseParallel(dist utils.DistanceFunction, kernel rbfs.Kernel, length lengthparam.Calculator,
	samples [][]float64, workers int) (*mat.Dense, error) {
	if !length.UsesGlobal() {
		return nil, fmt.Errorf("parallel assembly needs global length parameters: %w",
			utils.ErrInvalidArgument)
	}
	n, err := prepare(dist, length, samples)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	layout, err := partitions.NewTriangularRowLayout(n, workers)
	if err == nil {
		err = layout.ValidateLayout()
	}
	if err != nil {
		return nil, err
	}
	K := mat.NewDense(n, n, nil)
	l := length.At(0)
	var wg sync.WaitGroup
	for _, part := range layout.Partitions {
		wg.Add(1)
		go func(part partitions.RowPartition) {
			defer wg.Done()
			for i := part.Start; i < part.End; i++ {
				fillUpperRow(K, dist, kernel, samples, i, l)
			}
		}(part)
	}
	wg.Wait()
	return K, nil
}

func fillUpperRow(K *mat.Dense, dist utils.DistanceFunction, kernel rbfs.Kernel,
	samples [][]float64, i int, l float64) {
	n := len(samples)
	K.Set(i, i, kernel.Evaluate(0))
	for j := i + 1; j < n; j++ {
		v := kernel.Evaluate(dist.Distance(samples[i], samples[j]) / l)
		K.Set(i, j, v)
		K.Set(j, i, v)
	}
}

func prepare(dist utils.DistanceFunction, length lengthparam.Calculator, samples [][]float64) (int, error) {
	if _, err := utils.Dimensions(samples); err != nil {
		return 0, err
	}
	if err := length.Compute(samples, dist); err != nil {
		return 0, fmt.Errorf("length parameters: %w", err)
	}
	return len(samples), nil
}

type triplet struct {
	i, j int
	v    float64
}

// ComputeSparse assembles the kernel matrix of a compactly supported kernel,
// omitting entries with distance rate beyond the support boundary. Columns
// are split across workers, each collecting its own triplets; Euclidean
// sample sets use kd-tree radius queries instead of a full scan.
func ComputeSparse(dist utils.DistanceFunction, kernel rbfs.Kernel, length lengthparam.Calculator,
	samples [][]float64, workers int) (*sparse.CSR, error) {
	boundary, ok := rbfs.SupportBoundary(kernel)
	if !ok {
		return nil, fmt.Errorf("sparse kernel matrix needs a compactly supported kernel, got %T: %w",
			kernel, utils.ErrInvalidArgument)
	}
	n, err := prepare(dist, length, samples)
	if err != nil {
		return nil, err
	}
	var searcher *utils.NeighborSearcher
	if utils.IsEuclidean(dist) {
		searcher = utils.NewNeighborSearcher(samples)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	layout, err := partitions.NewRowLayout(n, workers)
	if err == nil {
		err = layout.ValidateLayout()
	}
	if err != nil {
		return nil, err
	}

	collected := make([][]triplet, layout.NumPartitions)
	var wg sync.WaitGroup
	for _, part := range layout.Partitions {
		wg.Add(1)
		go func(part partitions.RowPartition) {
			defer wg.Done()
			var local []triplet
			for j := part.Start; j < part.End; j++ {
				l := length.At(j)
				add := func(i int) {
					r := dist.Distance(samples[i], samples[j]) / l
					if r < boundary {
						local = append(local, triplet{i: i, j: j, v: kernel.Evaluate(r)})
					}
				}
				if searcher != nil {
					for _, i := range searcher.WithinRadius(samples[j], boundary*l) {
						add(i)
					}
					continue
				}
				for i := 0; i < n; i++ {
					add(i)
				}
			}
			collected[part.ID] = local
		}(part)
	}
	wg.Wait()

	var nnz int
	for _, c := range collected {
		nnz += len(c)
	}
	rows := make([]int, 0, nnz)
	cols := make([]int, 0, nnz)
	vals := make([]float64, 0, nnz)
	for _, c := range collected {
		for _, t := range c {
			rows = append(rows, t.i)
			cols = append(cols, t.j)
			vals = append(vals, t.v)
		}
	}
	return sparse.NewCOO(n, n, rows, cols, vals).ToCSR(), nil
}
