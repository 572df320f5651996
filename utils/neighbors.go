package utils

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// samplePoint carries the original sample index because kdtree.New
// reorders the point slice while partitioning.
type samplePoint struct {
	X     []float64
	Index int
}

func (p samplePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(samplePoint)
	return p.X[d] - q.X[d]
}

func (p samplePoint) Dims() int { return len(p.X) }

// Distance returns the squared Euclidean distance
func (p samplePoint) Distance(c kdtree.Comparable) float64 {
	q := c.(samplePoint)
	var sum float64
	for k := range p.X {
		d := p.X[k] - q.X[k]
		sum += d * d
	}
	return sum
}

type samplePoints []samplePoint

func (p samplePoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p samplePoints) Len() int                              { return len(p) }
func (p samplePoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

func (p samplePoints) Pivot(d kdtree.Dim) int {
	plane := samplePlane{samplePoints: p, Dim: d}
	return kdtree.Partition(plane, kdtree.MedianOfRandoms(plane, 100))
}

// samplePlane sorts a point set along one dimension
type samplePlane struct {
	samplePoints
	kdtree.Dim
}

func (p samplePlane) Less(i, j int) bool {
	return p.samplePoints[i].X[p.Dim] < p.samplePoints[j].X[p.Dim]
}

func (p samplePlane) Swap(i, j int) {
	p.samplePoints[i], p.samplePoints[j] = p.samplePoints[j], p.samplePoints[i]
}

func (p samplePlane) Slice(start, end int) kdtree.SortSlicer {
	return samplePlane{samplePoints: p.samplePoints[start:end], Dim: p.Dim}
}

// NeighborSearcher answers Euclidean nearest neighbour and radius queries
// over a fixed sample set.
type NeighborSearcher struct {
	samples [][]float64
	tree    *kdtree.Tree
}

// NewNeighborSearcher builds a kd-tree over the samples. The samples are
// referenced, not copied, and must not change while the searcher is in use.
func NewNeighborSearcher(samples [][]float64) *NeighborSearcher {
	points := make(samplePoints, len(samples))
	for i, s := range samples {
		points[i] = samplePoint{X: s, Index: i}
	}
	return &NeighborSearcher{
		samples: samples,
		tree:    kdtree.New(points, false),
	}
}

// NearestNeighborDistance returns the distance from sample i to the closest
// other sample, or +Inf when the set has a single sample.
func (ns *NeighborSearcher) NearestNeighborDistance(i int) float64 {
	keeper := kdtree.NewNKeeper(2)
	q := samplePoint{X: ns.samples[i], Index: i}
	ns.tree.NearestSet(keeper, q)
	best := math.Inf(1)
	for _, cd := range keeper.Heap {
		if cd.Comparable == nil {
			continue
		}
		if cd.Comparable.(samplePoint).Index == i {
			continue
		}
		if cd.Dist < best {
			best = cd.Dist
		}
	}
	// A duplicate of sample i can push i itself out of the two kept
	// entries, in which case the duplicate is at distance zero anyway.
	return math.Sqrt(best)
}

// NearestNeighborDistances returns NearestNeighborDistance for every sample
func (ns *NeighborSearcher) NearestNeighborDistances() []float64 {
	out := make([]float64, len(ns.samples))
	for i := range ns.samples {
		out[i] = ns.NearestNeighborDistance(i)
	}
	return out
}

// WithinRadius returns the indices of samples with distance to q not larger
// than radius, in no particular order.
func (ns *NeighborSearcher) WithinRadius(q []float64, radius float64) []int {
	keeper := kdtree.NewDistKeeper(radius * radius)
	ns.tree.NearestSet(keeper, samplePoint{X: q, Index: -1})
	indices := make([]int, 0, keeper.Len())
	for _, cd := range keeper.Heap {
		if cd.Comparable == nil {
			continue
		}
		indices = append(indices, cd.Comparable.(samplePoint).Index)
	}
	return indices
}
