package place

import (
	"math"
	"math/rand"

	"github.com/sarchlab/fpgapr/circuit"
	"github.com/sarchlab/fpgapr/cost"
)

// SARefiner is the optional simulated-annealing polish pass: it swaps
// pairs of global blocks of matching type within a shrinking Chebyshev
// window, accepting moves per the classic VPR schedule.
type SARefiner struct {
	Lambda           float64 // blend of bbCost vs timingCost, 0 = wirelength only
	MovesPerTempFactor int   // moves attempted per temperature step = factor * numBlocks
	MaxSiteAttempts  int
}

// NewSARefiner returns a refiner configured with the classic VPR
// defaults: wirelength-only cost and 10 moves attempted per block per
// temperature step.
func NewSARefiner() *SARefiner {
	return &SARefiner{Lambda: 0, MovesPerTempFactor: 10, MaxSiteAttempts: 32}
}

// timingCostFn, when non-nil, returns the current timing cost
// (calculateTotalCost) for blending into the SA objective.
type timingCostFn func() float64

// Run anneals c's current legal placement in place. numBlocks and numNets
// come from the circuit; rng drives every random choice, so the same seed
// on the same circuit reproduces the same final placement.
func (r *SARefiner) Run(c *circuit.Circuit, rng *rand.Rand, timingCost timingCostFn) Result {
	blocks := c.GlobalBlocks()
	if len(blocks) < 2 || len(c.Nets) == 0 {
		return Result{Iterations: 0, Converged: true}
	}

	c.RecomputeAllBoundingBoxes()

	bbCostNorm := cost.TotalCost(c) / float64(len(c.Nets))
	if bbCostNorm == 0 {
		bbCostNorm = 1
	}

	timingCostNorm := 1.0
	if timingCost != nil {
		if tc := timingCost(); tc > 0 {
			timingCostNorm = tc
		}
	}

	movesPerTemp := r.MovesPerTempFactor * len(blocks)

	distance := maxDim(c.Grid.Width, c.Grid.Height)
	temperature := r.initialTemperature(c, rng, blocks, timingCost, bbCostNorm, timingCostNorm, movesPerTemp)

	stopThreshold := 0.005 * cost.TotalCost(c) / float64(len(c.Nets))

	iterations := 0

	for temperature >= stopThreshold {
		accepted := 0

		for i := 0; i < movesPerTemp; i++ {
			ok := r.attemptMove(c, rng, blocks, distance, temperature, timingCost, bbCostNorm, timingCostNorm)
			if ok {
				accepted++
			}
		}

		acceptRate := float64(accepted) / float64(movesPerTemp)

		temperature *= saAlpha(acceptRate)
		distance = shrinkDistance(distance, acceptRate, c.Grid.Width, c.Grid.Height)

		iterations++

		if iterations > 10000 {
			break
		}
	}

	return Result{Iterations: iterations, Converged: true}
}

func (r *SARefiner) initialTemperature(
	c *circuit.Circuit,
	rng *rand.Rand,
	blocks []*circuit.Block,
	timingCost timingCostFn,
	bbCostNorm, timingCostNorm float64,
	samples int,
) float64 {
	deltas := make([]float64, 0, samples)

	for i := 0; i < samples; i++ {
		delta, reverted := r.sampleMoveDelta(c, rng, blocks, maxDim(c.Grid.Width, c.Grid.Height), timingCost, bbCostNorm, timingCostNorm)
		if reverted {
			deltas = append(deltas, delta)
		}
	}

	if len(deltas) == 0 {
		return 1
	}

	mean := 0.0
	for _, d := range deltas {
		mean += d
	}

	mean /= float64(len(deltas))

	variance := 0.0
	for _, d := range deltas {
		variance += (d - mean) * (d - mean)
	}

	variance /= float64(len(deltas))

	return 20 * math.Sqrt(variance)
}

// sampleMoveDelta measures a random move's ΔC and always reverts it,
// used only to estimate the initial temperature.
func (r *SARefiner) sampleMoveDelta(
	c *circuit.Circuit,
	rng *rand.Rand,
	blocks []*circuit.Block,
	distance int,
	timingCost timingCostFn,
	bbCostNorm, timingCostNorm float64,
) (float64, bool) {
	a := blocks[rng.Intn(len(blocks))]

	site, found := c.Grid.RandomSite(a.Type, a.Placement.X, a.Placement.Y, distance, rng, r.MaxSiteAttempts)
	if !found {
		return 0, false
	}

	before := cost.TotalCost(c)

	origX, origY, origSub := a.Placement.X, a.Placement.Y, a.Placement.Subblock
	other := c.Grid.SiteAnchoredAt(site.X, site.Y).Occupant(0)

	if err := c.Place(a.Index, site.X, site.Y, 0); err != nil {
		return 0, false
	}

	c.RecomputeAllBoundingBoxes()
	after := cost.TotalCost(c)

	delta := (after - before) / bbCostNorm
	if timingCost != nil {
		delta = (1-r.Lambda)*delta + r.Lambda*(timingCost()/timingCostNorm)
	}

	_ = c.Place(a.Index, origX, origY, origSub)
	if other != -1 {
		_ = c.Place(other, origX, origY, origSub)
	}

	c.RecomputeAllBoundingBoxes()

	return delta, true
}

// attemptMove picks a random block and a random site within distance,
// swapping occupants if the destination is occupied, and accepts the move
// with probability min(1, exp(-deltaC/T)).
func (r *SARefiner) attemptMove(
	c *circuit.Circuit,
	rng *rand.Rand,
	blocks []*circuit.Block,
	distance int,
	temperature float64,
	timingCost timingCostFn,
	bbCostNorm, timingCostNorm float64,
) bool {
	a := blocks[rng.Intn(len(blocks))]

	site, found := c.Grid.RandomSite(a.Type, a.Placement.X, a.Placement.Y, distance, rng, r.MaxSiteAttempts)
	if !found {
		return false
	}

	before := cost.TotalCost(c)

	origX, origY, origSub := a.Placement.X, a.Placement.Y, a.Placement.Subblock
	target := c.Grid.SiteAnchoredAt(site.X, site.Y)
	occupant := target.Occupant(0)

	swap := occupant != -1 && occupant != a.Index
	if swap {
		c.Unplace(occupant)
	}

	if err := c.Place(a.Index, site.X, site.Y, 0); err != nil {
		if swap {
			_ = c.Place(occupant, site.X, site.Y, 0)
		}

		return false
	}

	if swap {
		if err := c.Place(occupant, origX, origY, origSub); err != nil {
			_ = c.Place(a.Index, origX, origY, origSub)
			_ = c.Place(occupant, site.X, site.Y, 0)

			return false
		}
	}

	c.RecomputeAllBoundingBoxes()
	after := cost.TotalCost(c)

	deltaC := (after - before) / bbCostNorm
	if timingCost != nil {
		deltaC = (1-r.Lambda)*deltaC + r.Lambda*(timingCost()/timingCostNorm)
	}

	accept := deltaC <= 0 || rng.Float64() < math.Exp(-deltaC/temperature)

	if accept {
		return true
	}

	if swap {
		c.Unplace(occupant)
	}

	_ = c.Place(a.Index, origX, origY, origSub)
	if swap {
		_ = c.Place(occupant, site.X, site.Y, 0)
	}

	c.RecomputeAllBoundingBoxes()

	return false
}

// saAlpha is the classic VPR temperature-update multiplier as a function
// of the acceptance rate of the just-finished temperature step.
func saAlpha(acceptRate float64) float64 {
	switch {
	case acceptRate > 0.96:
		return 0.5
	case acceptRate > 0.8:
		return 0.9
	case acceptRate > 0.15:
		return 0.95
	default:
		return 0.8
	}
}

// shrinkDistance adjusts the move window to hold the acceptance rate near
// 0.44, the classic VPR target.
func shrinkDistance(distance int, acceptRate float64, width, height int) int {
	factor := 1 - 0.44 + acceptRate
	if factor < 0.1 {
		factor = 0.1
	}

	newDist := int(float64(distance) * factor)
	if newDist < 1 {
		newDist = 1
	}

	if max := maxDim(width, height); newDist > max {
		newDist = max
	}

	return newDist
}

func maxDim(a, b int) int {
	if a > b {
		return a
	}

	return b
}
