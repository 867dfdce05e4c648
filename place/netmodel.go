package place

import (
	"github.com/sarchlab/fpgapr/circuit"
	"github.com/sarchlab/fpgapr/cost"
)

// dimension selects which axis a LinearSystem is being built for.
type dimension int

// The two independent dimensions the B2B system is solved over.
const (
	dimX dimension = iota
	dimY
)

// minSpringDistance keeps a spring's re-linearized weight bounded when its
// two endpoints currently coincide.
const minSpringDistance = 0.5

// coordinates is the current position of every block along one dimension:
// a continuous value for movable blocks, an integer (fixed) value for IO
// blocks.
type coordinates struct {
	movableIndex map[int]int // circuit block index -> row in cont
	cont         []float64
	dim          dimension
	c            *circuit.Circuit
}

func (co *coordinates) of(blockIndex int) float64 {
	if row, ok := co.movableIndex[blockIndex]; ok {
		return co.cont[row]
	}

	p := co.c.Blocks[blockIndex].Placement
	if co.dim == dimX {
		return float64(p.X)
	}

	return float64(p.Y)
}

// buildSystem constructs the B2B linear system for one dimension from the
// circuit's current coordinates(); netBlocks lists, for each net, the
// distinct block indexes its pins touch (driver plus every sink).
func buildSystem(co *coordinates, netBlocks [][]int) *LinearSystem {
	sys := NewLinearSystem(len(co.movableIndex))

	for _, blocks := range netBlocks {
		if len(blocks) < 2 {
			continue
		}

		k := len(blocks)
		weight := cost.CrossingFactor(k) / float64(k-1)

		if k == 2 {
			fastPathTwoPinNet(sys, co, weight, blocks[0], blocks[1])
			continue
		}

		addExtremaSprings(sys, co, weight, blocks)
	}

	return sys
}

// fastPathTwoPinNet adds the single spring a two-terminal net needs,
// mirroring the original's addConnectionMinMaxUnknown fast path.
func fastPathTwoPinNet(sys *LinearSystem, co *coordinates, weight float64, a, b int) {
	addSpring(sys, co, weight, a, b)
}

// addExtremaSprings implements the B2B model for nets with three or more
// terminals: springs from each extremum to every non-extreme terminal and
// between the two extrema, mirroring the original's addConnection.
func addExtremaSprings(sys *LinearSystem, co *coordinates, weight float64, blocks []int) {
	minIdx, maxIdx := 0, 0
	minVal, maxVal := co.of(blocks[0]), co.of(blocks[0])

	for i, blk := range blocks {
		v := co.of(blk)
		if v < minVal {
			minVal = v
			minIdx = i
		}

		if v > maxVal {
			maxVal = v
			maxIdx = i
		}
	}

	minBlock, maxBlock := blocks[minIdx], blocks[maxIdx]

	for i, blk := range blocks {
		if i == minIdx || i == maxIdx {
			continue
		}

		addSpring(sys, co, weight, minBlock, blk)
		addSpring(sys, co, weight, maxBlock, blk)
	}

	if minBlock != maxBlock {
		addSpring(sys, co, weight, minBlock, maxBlock)
	}
}

// addSpring re-linearizes the spring weight/distance and routes it to the
// system as movable-movable, movable-fixed, or (if both endpoints are
// fixed IO blocks) drops it entirely.
func addSpring(sys *LinearSystem, co *coordinates, weight float64, a, b int) {
	if a == b {
		return
	}

	dist := co.of(a) - co.of(b)
	if dist < 0 {
		dist = -dist
	}

	if dist < minSpringDistance {
		dist = minSpringDistance
	}

	w := weight / dist

	rowA, aMovable := co.movableIndex[a]
	rowB, bMovable := co.movableIndex[b]

	switch {
	case aMovable && bMovable:
		sys.AddMovableSpring(rowA, rowB, w)
	case aMovable:
		sys.AddFixedSpring(rowA, w, co.of(b))
	case bMovable:
		sys.AddFixedSpring(rowB, w, co.of(a))
	}
}
