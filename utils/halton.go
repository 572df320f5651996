package utils

import "fmt"

// HaltonBases are the radical inverse bases used per dimension
var HaltonBases = []int{2, 3, 5, 7, 11, 13}

// haltonSequence fills a buffer of numNodes+1 values where buffer[1:] is the
// radical inverse sequence in the given base. Each pass copies the filled
// head of the buffer with a growing offset, so the sequence is built in
// O(numNodes) without digit expansion.
func haltonSequence(numNodes, base int) []float64 {
	buffer := make([]float64, numNodes+1)
	currentSize := 1
	interval := 1. / float64(base)
	for currentSize <= numNodes {
		seqSize := (numNodes + currentSize) / currentSize
		if seqSize > base {
			seqSize = base
		}
		if seqSize < 2 {
			seqSize = 2
		}
		destEnd := currentSize
		for i := 1; i < seqSize; i++ {
			destBegin := currentSize * i
			destEnd = destBegin + currentSize
			if destEnd > numNodes+1 {
				destEnd = numNodes + 1
			}
			if destEnd <= destBegin {
				break
			}
			offset := float64(i) * interval
			for k := 0; k < destEnd-destBegin; k++ {
				buffer[destBegin+k] = buffer[k] + offset
			}
		}
		currentSize = destEnd
		interval /= float64(base)
	}
	return buffer
}

// GenerateHaltonNodes returns numNodes points of the Halton sequence in the
// unit hypercube of the given dimension (1 to 6).
func GenerateHaltonNodes(dims, numNodes int) ([][]float64, error) {
	if dims < 1 || dims > len(HaltonBases) {
		return nil, fmt.Errorf("halton nodes support 1 to %d dimensions, got %d: %w",
			len(HaltonBases), dims, ErrInvalidArgument)
	}
	if numNodes < 0 {
		return nil, fmt.Errorf("negative number of nodes %d: %w", numNodes, ErrInvalidArgument)
	}
	nodes := make([][]float64, numNodes)
	for i := range nodes {
		nodes[i] = make([]float64, dims)
	}
	for d := 0; d < dims; d++ {
		buffer := haltonSequence(numNodes, HaltonBases[d])
		for i := 0; i < numNodes; i++ {
			nodes[i][d] = buffer[i+1]
		}
	}
	return nodes, nil
}

// Generate1DHaltonNodes returns the base 2 sequence (van der Corput)
func Generate1DHaltonNodes(numNodes int) []float64 {
	if numNodes <= 0 {
		return nil
	}
	buffer := haltonSequence(numNodes, 2)
	return append([]float64(nil), buffer[1:]...)
}
