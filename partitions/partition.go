package partitions

import (
	"fmt"
)

// RowPartition is a contiguous range of kernel matrix rows assembled by
// one worker
type RowPartition struct {
	// Unique identifier for this partition
	ID int

	// Row membership, [Start, End)
	Start int
	End   int

	// Estimated number of kernel evaluations for the range
	Cost int
}

// NumRows is the number of rows owned by the partition
func (p RowPartition) NumRows() int { return p.End - p.Start }

// RowLayout manages the decomposition of an N x N assembly
type RowLayout struct {
	// All partitions in row order
	Partitions []RowPartition

	// Global sizing information
	MaxRows       int // max(NumRows) across all partitions
	TotalRows     int // N
	NumPartitions int

	// Row to partition mapping
	RToP []int // Length TotalRows: row i belongs to partition RToP[i]
}

// NewRowLayout splits n rows into numPartitions ranges of (nearly) equal
// size, for assemblies where every row costs the same.
func NewRowLayout(n, numPartitions int) (*RowLayout, error) {
	return newLayout(n, numPartitions, func(int) int { return n })
}

// NewTriangularRowLayout balances the ranges for an upper triangle
// assembly, where row i costs n-i kernel evaluations.
func NewTriangularRowLayout(n, numPartitions int) (*RowLayout, error) {
	return newLayout(n, numPartitions, func(i int) int { return n - i })
}

func newLayout(n, numPartitions int, rowCost func(int) int) (*RowLayout, error) {
	if n <= 0 || numPartitions <= 0 {
		return nil, fmt.Errorf("invalid dimensions: rows=%d, partitions=%d", n, numPartitions)
	}
	if numPartitions > n {
		numPartitions = n
	}
	var total int
	for i := 0; i < n; i++ {
		total += rowCost(i)
	}

	layout := &RowLayout{
		TotalRows: n,
		RToP:      make([]int, n),
	}
	start, spent := 0, 0
	for p := 0; p < numPartitions; p++ {
		// Target cumulative cost at the end of partition p
		target := total * (p + 1) / numPartitions
		end, cost := start, 0
		remainingParts := numPartitions - p - 1
		for end < n-remainingParts && (spent+cost < target || end == start) {
			cost += rowCost(end)
			end++
		}
		if p == numPartitions-1 {
			for ; end < n; end++ {
				cost += rowCost(end)
			}
		}
		layout.Partitions = append(layout.Partitions, RowPartition{
			ID: p, Start: start, End: end, Cost: cost,
		})
		for i := start; i < end; i++ {
			layout.RToP[i] = p
		}
		if end-start > layout.MaxRows {
			layout.MaxRows = end - start
		}
		spent += cost
		start = end
	}
	layout.NumPartitions = len(layout.Partitions)
	return layout, nil
}

// ValidateLayout checks that the partitions tile [0, TotalRows) in order
// and that the cached sizes are consistent.
func (rl *RowLayout) ValidateLayout() error {
	if len(rl.Partitions) != rl.NumPartitions {
		return fmt.Errorf("layout has %d partitions, NumPartitions=%d",
			len(rl.Partitions), rl.NumPartitions)
	}
	next, actualMax := 0, 0
	for _, p := range rl.Partitions {
		if p.Start != next {
			return fmt.Errorf("partition %d: starts at row %d, expected %d", p.ID, p.Start, next)
		}
		if p.End <= p.Start {
			return fmt.Errorf("partition %d: empty row range [%d, %d)", p.ID, p.Start, p.End)
		}
		for i := p.Start; i < p.End; i++ {
			if rl.RToP[i] != p.ID {
				return fmt.Errorf("row %d: mapped to partition %d, owned by %d", i, rl.RToP[i], p.ID)
			}
		}
		if p.NumRows() > actualMax {
			actualMax = p.NumRows()
		}
		next = p.End
	}
	if next != rl.TotalRows {
		return fmt.Errorf("partitions cover %d rows, expected %d", next, rl.TotalRows)
	}
	if actualMax != rl.MaxRows {
		return fmt.Errorf("computed MaxRows %d != stored MaxRows %d", actualMax, rl.MaxRows)
	}
	return nil
}
