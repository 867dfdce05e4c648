package place

import (
	"math"

	"github.com/sarchlab/fpgapr/circuit"
	"github.com/sarchlab/fpgapr/cost"
)

// AnalyticalPlacer runs the B2B + Conjugate-Gradient solve/legalize/anchor
// loop described in the component design. IO blocks are treated as fixed
// at their current placement; every other global block is movable.
type AnalyticalPlacer struct {
	MaxOuterIter int
	MaxCGIter    int
	Tolerance    float64
	PseudoWeight float64
	GapThreshold float64
}

// NewAnalyticalPlacer returns a placer with the defaults used throughout
// the analytical-placement literature this component follows.
func NewAnalyticalPlacer() *AnalyticalPlacer {
	return &AnalyticalPlacer{
		MaxOuterIter: 20,
		MaxCGIter:    100,
		Tolerance:    1e-4,
		PseudoWeight: 0.02,
		GapThreshold: 0.01,
	}
}

// Result reports how the outer solve/legalize/anchor loop finished.
type Result struct {
	Iterations int
	Converged  bool
}

// Run places every movable block of c, mutating the circuit's Placement
// and bounding boxes in place.
func (p *AnalyticalPlacer) Run(c *circuit.Circuit) Result {
	var movable []int
	for _, b := range c.GlobalBlocks() {
		if b.Kind != circuit.KindIO {
			movable = append(movable, b.Index)
		}
	}

	c.RecomputeAllBoundingBoxes()

	if len(movable) == 0 {
		return Result{Iterations: 0, Converged: true}
	}

	movableIndex := make(map[int]int, len(movable))
	for i, blk := range movable {
		movableIndex[blk] = i
	}

	netBlocks := blocksTouchedByNet(c)

	contX := make([]float64, len(movable))
	contY := make([]float64, len(movable))

	for i, blk := range movable {
		block := c.Blocks[blk]
		if block.Placement.Placed {
			contX[i] = float64(block.Placement.X)
			contY[i] = float64(block.Placement.Y)

			continue
		}

		contX[i] = float64(c.Grid.Width) / 2
		contY[i] = float64(c.Grid.Height) / 2
	}

	legalX := append([]float64(nil), contX...)
	legalY := append([]float64(nil), contY...)

	result := Result{}

	for iter := 0; iter < p.MaxOuterIter; iter++ {
		coX := &coordinates{movableIndex: movableIndex, cont: contX, dim: dimX, c: c}
		coY := &coordinates{movableIndex: movableIndex, cont: contY, dim: dimY, c: c}

		sysX := buildSystem(coX, netBlocks)
		sysY := buildSystem(coY, netBlocks)

		if iter > 0 {
			anchor := p.PseudoWeight * float64(iter)
			for i := range movable {
				sysX.AddFixedSpring(i, anchor, legalX[i])
				sysY.AddFixedSpring(i, anchor, legalY[i])
			}
		}

		contX = ConjugateGradient(sysX, contX, p.Tolerance, p.MaxCGIter)
		contY = ConjugateGradient(sysY, contY, p.Tolerance, p.MaxCGIter)

		solvedHPWL := estimateHPWL(c, netBlocks, movableIndex, contX, contY)

		moves, err := legalizeAllTypes(c, movable, contX, contY)
		if err != nil {
			return Result{Iterations: iter, Converged: false}
		}

		for _, mv := range moves {
			row := movableIndex[mv.blockIndex]
			legalX[row], legalY[row] = float64(mv.x), float64(mv.y)

			_ = c.Place(mv.blockIndex, mv.x, mv.y, mv.subblock)
		}

		c.RecomputeAllBoundingBoxes()
		legalizedCost := cost.TotalCost(c)

		result.Iterations = iter + 1

		gap := math.Abs(legalizedCost-solvedHPWL) / math.Max(legalizedCost, 1)
		if gap < p.GapThreshold {
			result.Converged = true
			break
		}
	}

	return result
}

// blocksTouchedByNet returns, for each net, its distinct touched block
// indexes: the driver's block first, then every sink's owning block.
func blocksTouchedByNet(c *circuit.Circuit) [][]int {
	out := make([][]int, len(c.Nets))

	for i, net := range c.Nets {
		seen := make(map[int]bool)

		add := func(pinIdx int) []int {
			blk := c.Pins[pinIdx].BlockIndex
			if seen[blk] {
				return nil
			}

			seen[blk] = true

			return []int{blk}
		}

		out[i] = append(out[i], add(net.DriverPin)...)
		for _, sink := range net.SinkPins {
			out[i] = append(out[i], add(sink)...)
		}
	}

	return out
}

// estimateHPWL sums the continuous-coordinate bounding-box cost of every
// net, used to measure the solved/legalized gap that governs convergence.
func estimateHPWL(c *circuit.Circuit, netBlocks [][]int, movableIndex map[int]int, contX, contY []float64) float64 {
	total := 0.0

	at := func(dim dimension, blk int) float64 {
		if row, ok := movableIndex[blk]; ok {
			if dim == dimX {
				return contX[row]
			}

			return contY[row]
		}

		p := c.Blocks[blk].Placement
		if dim == dimX {
			return float64(p.X)
		}

		return float64(p.Y)
	}

	for _, blocks := range netBlocks {
		if len(blocks) < 2 {
			continue
		}

		minX, maxX := at(dimX, blocks[0]), at(dimX, blocks[0])
		minY, maxY := at(dimY, blocks[0]), at(dimY, blocks[0])

		for _, blk := range blocks[1:] {
			if x := at(dimX, blk); x < minX {
				minX = x
			} else if x > maxX {
				maxX = x
			}

			if y := at(dimY, blk); y < minY {
				minY = y
			} else if y > maxY {
				maxY = y
			}
		}

		k := len(blocks)
		total += (maxX - minX + maxY - minY + 2) * (crossingFactorFloat(k))
	}

	return total
}

func crossingFactorFloat(k int) float64 {
	return cost.CrossingFactor(k)
}

// legalizeAllTypes runs LegalizeType independently for every block type
// present in movable, per the component design's "per block-type
// independently" rule.
func legalizeAllTypes(c *circuit.Circuit, movable []int, contX, contY []float64) ([]legalMove, error) {
	byType := make(map[int][]int) // block type index -> rows into movable

	for i, blk := range movable {
		t := c.Blocks[blk].Type.Index
		byType[t] = append(byType[t], i)
	}

	var all []legalMove

	for typeIdx, rows := range byType {
		blockType := c.Ctx.BlockTypeByIndex(typeIdx)

		typeMovable := make([]int, len(rows))
		typeX := make([]float64, len(rows))
		typeY := make([]float64, len(rows))

		for i, row := range rows {
			typeMovable[i] = movable[row]
			typeX[i] = contX[row]
			typeY[i] = contY[row]
		}

		moves, err := LegalizeType(c, blockType, typeMovable, typeX, typeY)
		if err != nil {
			return nil, err
		}

		all = append(all, moves...)
	}

	return all, nil
}
