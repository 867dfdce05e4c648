// Package cost computes the bounding-box wire-length cost the analytical
// placer and SA refiner minimize: half-perimeter wire length scaled by a
// fanout-dependent crossing-count factor q(k).
package cost

import "github.com/sarchlab/fpgapr/circuit"

// crossingCount is VPR's classic q(k) table for k = 1..50, the expected
// number of channel crossings a k-terminal net's bounding box implies
// beyond the two-terminal case. Index 0 is unused; crossingCount[1..3] is
// pinned at 1.0.
var crossingCount = [51]float64{
	0,
	1.0, 1.0, 1.0, 1.0828, 1.1536, 1.2206, 1.2823, 1.3385, 1.3991, 1.4493,
	1.4974, 1.5455, 1.5937, 1.6418, 1.6899, 1.7304, 1.7709, 1.8114, 1.8519,
	1.8924, 1.9288, 1.9652, 2.0015, 2.0379, 2.0743, 2.1061, 2.1379, 2.1698,
	2.2016, 2.2334, 2.2646, 2.2958, 2.3271, 2.3583, 2.3895, 2.4187, 2.4479,
	2.4772, 2.5064, 2.5356, 2.5610, 2.5864, 2.6117, 2.6371, 2.6625, 2.6887,
	2.7148, 2.7410, 2.7671, 2.79,
}

// crossingCountSlope is the slope applied beyond fanout 50, continuing the
// table linearly rather than flattening it.
const crossingCountSlope = 0.02013

// CrossingFactor returns q(fanout), the table value for fanout <= 50 and a
// linear extrapolation beyond it. A fanout of 0 (an unconnected driver) has
// no crossings.
func CrossingFactor(fanout int) float64 {
	if fanout <= 0 {
		return 0
	}

	if fanout <= 50 {
		return crossingCount[fanout]
	}

	return crossingCountSlope*float64(fanout-50) + crossingCount[50]
}

// NetCost returns a net's bounding-box cost:
// (xmax-xmin + ymax-ymin + 2) * q(pinCount), where pinCount counts the
// driver plus every sink. Callers must have called
// circuit.Circuit.RecomputeBoundingBox (or RecomputeAllBoundingBoxes) so
// the net's cached bounding box reflects the current placement.
func NetCost(net *circuit.Net) float64 {
	if net.Fanout() == 0 {
		return 0
	}

	pinCount := net.Fanout() + 1

	return float64(net.HPWL()+2) * CrossingFactor(pinCount)
}

// TotalCost sums NetCost over every net in the circuit.
func TotalCost(c *circuit.Circuit) float64 {
	total := 0.0
	for _, net := range c.Nets {
		total += NetCost(net)
	}

	return total
}

// IncrementalUpdate recomputes and returns the delta in total cost caused
// by moving a single block, by diffing NetCost before and after the
// caller has updated the circuit's placement and bounding boxes for the
// nets the block touches. before must list the same nets (by index) that
// were passed through circuit.Circuit.RecomputeBoundingBox between the
// two snapshots.
func IncrementalUpdate(c *circuit.Circuit, netIndexes []int, before map[int]float64) float64 {
	delta := 0.0
	for _, idx := range netIndexes {
		delta += NetCost(c.Nets[idx]) - before[idx]
	}

	return delta
}
