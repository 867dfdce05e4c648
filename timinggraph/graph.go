// Package timinggraph builds and maintains the DAG of primitive-pin
// arrival/required times used to derive per-connection criticality, the
// weight that both the analytical placer's SA refiner and the connection
// router blend into their wire-length-vs-timing cost.
package timinggraph

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sarchlab/fpgapr/circuit"
)

// WireDelayPerUnit is the placement-estimate delay per Manhattan distance
// unit, picoseconds per grid step.
const WireDelayPerUnit = 40.0

// Edge is one timing-graph edge: a fixed intra-block combinational delay
// (from architecture) or a mutable inter-block (wire) delay.
type Edge struct {
	Src, Dst     int // pin indices
	Delay        float64
	IsWire       bool
	ConnIndex    int // index into circuit.Connections, -1 for intra-block edges
	Slack        float64
	Criticality  float64
}

// Graph is the timing DAG over a Circuit's pins.
type Graph struct {
	c *circuit.Circuit

	edges    []Edge
	incoming map[int][]int // pin -> edge indices
	outgoing map[int][]int // pin -> edge indices
	topo     []int         // pin indices, topological order

	arrival  map[int]float64
	required map[int]float64
}

// New builds the fixed structure of the timing graph (intra-block edges
// and one inter-block edge per connection) and computes its topological
// order.
func New(c *circuit.Circuit) *Graph {
	g := &Graph{
		c:        c,
		incoming: make(map[int][]int),
		outgoing: make(map[int][]int),
	}

	g.buildIntraBlockEdges()
	g.buildInterBlockEdges()
	g.recomputeTopoOrder()

	return g
}

func (g *Graph) addEdge(e Edge) {
	idx := len(g.edges)
	g.edges = append(g.edges, e)
	g.outgoing[e.Src] = append(g.outgoing[e.Src], idx)
	g.incoming[e.Dst] = append(g.incoming[e.Dst], idx)
}

// buildIntraBlockEdges expands, for each global block, every
// output-port -> input-port combinational delay recorded in the
// architecture's delay table for that block's type.
func (g *Graph) buildIntraBlockEdges() {
	for _, block := range g.c.GlobalBlocks() {
		for _, outPin := range block.OutputPins {
			outPort := g.c.Pins[outPin].PortType
			if outPort == nil {
				continue
			}

			for _, inPin := range block.InputPins {
				inPort := g.c.Pins[inPin].PortType
				if inPort == nil {
					continue
				}

				delay, ok := outPort.DelayTo(block.Type.Name, inPort.PortName)
				if !ok {
					continue
				}

				g.addEdge(Edge{Src: outPin, Dst: inPin, Delay: delay, ConnIndex: -1})
			}
		}
	}
}

// buildInterBlockEdges adds one driver-output -> sink-input edge per
// connection. Its delay starts at zero and must be filled in by
// CalculatePlacementEstimatedWireDelay or CalculateActualWireDelay before
// arrival/required times are meaningful.
func (g *Graph) buildInterBlockEdges() {
	for _, conn := range g.c.Connections {
		g.addEdge(Edge{
			Src:       conn.DriverPin,
			Dst:       conn.SinkPin,
			IsWire:    true,
			ConnIndex: conn.Index,
		})
	}
}

// recomputeTopoOrder performs a Kahn's-algorithm topological sort over
// every pin that appears in at least one edge.
func (g *Graph) recomputeTopoOrder() {
	inDegree := make(map[int]int)
	vertices := make(map[int]bool)

	for _, e := range g.edges {
		vertices[e.Src] = true
		vertices[e.Dst] = true
		inDegree[e.Dst]++
	}

	var queue []int
	for v := range vertices {
		if inDegree[v] == 0 {
			queue = append(queue, v)
		}
	}
	sort.Ints(queue)

	var order []int
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		order = append(order, v)

		var next []int
		for _, edgeIdx := range g.outgoing[v] {
			w := g.edges[edgeIdx].Dst
			inDegree[w]--

			if inDegree[w] == 0 {
				next = append(next, w)
			}
		}

		sort.Ints(next)
		queue = append(queue, next...)
	}

	g.topo = order
}

// CalculatePlacementEstimatedWireDelay recomputes every wire edge's delay
// from the current (x,y) of its driver and sink blocks: Manhattan
// distance times WireDelayPerUnit.
func (g *Graph) CalculatePlacementEstimatedWireDelay() {
	for i := range g.edges {
		e := &g.edges[i]
		if !e.IsWire {
			continue
		}

		srcBlock := g.c.Blocks[g.c.Pins[e.Src].BlockIndex]
		dstBlock := g.c.Blocks[g.c.Pins[e.Dst].BlockIndex]

		if !srcBlock.Placement.Placed || !dstBlock.Placement.Placed {
			e.Delay = 0
			continue
		}

		dx := abs(srcBlock.Placement.X - dstBlock.Placement.X)
		dy := abs(srcBlock.Placement.Y - dstBlock.Placement.Y)
		e.Delay = float64(dx+dy) * WireDelayPerUnit
	}
}

// CalculateActualWireDelay recomputes every wire edge's delay from the
// ActualWireDelay the router has computed for its connection (the sum of
// t_linear along the connection's assigned RRG path).
func (g *Graph) CalculateActualWireDelay() {
	for i := range g.edges {
		e := &g.edges[i]
		if !e.IsWire {
			continue
		}

		e.Delay = g.c.Connections[e.ConnIndex].ActualWireDelay
	}
}

// CalculateArrivalAndRequiredTimes runs the two linear topological passes.
func (g *Graph) CalculateArrivalAndRequiredTimes() {
	g.arrival = make(map[int]float64, len(g.topo))
	g.required = make(map[int]float64, len(g.topo))

	for _, v := range g.topo {
		best := 0.0
		for _, edgeIdx := range g.incoming[v] {
			e := g.edges[edgeIdx]
			if cand := g.arrival[e.Src] + e.Delay; cand > best {
				best = cand
			}
		}
		g.arrival[v] = best
	}

	maxDelay := g.MaxDelay()

	for i := len(g.topo) - 1; i >= 0; i-- {
		v := g.topo[i]

		outs := g.outgoing[v]
		if len(outs) == 0 {
			g.required[v] = maxDelay
			continue
		}

		best := math.Inf(1)
		for _, edgeIdx := range outs {
			e := g.edges[edgeIdx]
			if cand := g.required[e.Dst] - e.Delay; cand < best {
				best = cand
			}
		}
		g.required[v] = best
	}

	for i := range g.edges {
		e := &g.edges[i]
		e.Slack = g.required[e.Dst] - e.Delay - g.arrival[e.Src]
	}
}

// MaxDelay returns the maximum arrival time at any sink (a pin with no
// outgoing edges).
func (g *Graph) MaxDelay() float64 {
	max := 0.0

	for v, arrival := range g.arrival {
		if len(g.outgoing[v]) == 0 && arrival > max {
			max = arrival
		}
	}

	return max
}

// CalculateConnectionCriticality computes, per edge,
// crit = min(maxCrit, (1 - slack/maxDelay)^exp), and mirrors the wire
// edges' criticality back onto their owning circuit.Connection so the
// router can read it without depending on this package.
func (g *Graph) CalculateConnectionCriticality(maxCrit, exp float64) {
	maxDelay := g.MaxDelay()

	for i := range g.edges {
		e := &g.edges[i]

		crit := 0.0
		if maxDelay > 0 {
			ratio := 1 - e.Slack/maxDelay
			if ratio < 0 {
				ratio = 0
			}
			crit = math.Pow(ratio, exp)
		}

		if crit > maxCrit {
			crit = maxCrit
		}

		e.Criticality = crit

		if e.IsWire {
			g.c.Connections[e.ConnIndex].Criticality = crit
		}
	}
}

// CalculateTotalCost returns the sum over every edge of delay*criticality,
// a scalar surrogate for overall timing quality.
func (g *Graph) CalculateTotalCost() float64 {
	total := 0.0
	for _, e := range g.edges {
		total += e.Delay * e.Criticality
	}

	return total
}

// CriticalPathReport formats a short multi-line summary of the arrival
// chain reaching MaxDelay, restoring the original's
// criticalPathToString() as an explicit, testable operation.
func (g *Graph) CriticalPathReport() string {
	var sb strings.Builder

	maxDelay := g.MaxDelay()
	fmt.Fprintf(&sb, "Critical path delay: %.3f ps\n", maxDelay)

	critSink := -1
	for v, arrival := range g.arrival {
		if len(g.outgoing[v]) == 0 && arrival == maxDelay {
			critSink = v
			break
		}
	}

	if critSink == -1 {
		return sb.String()
	}

	chain := g.traceCriticalChain(critSink)
	for i := len(chain) - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "  pin %d  arrival=%.3f\n", chain[i], g.arrival[chain[i]])
	}

	return sb.String()
}

func (g *Graph) traceCriticalChain(sink int) []int {
	chain := []int{sink}
	v := sink

	for {
		edges := g.incoming[v]
		if len(edges) == 0 {
			return chain
		}

		bestEdge := edges[0]
		for _, edgeIdx := range edges[1:] {
			if g.arrival[g.edges[edgeIdx].Src]+g.edges[edgeIdx].Delay >
				g.arrival[g.edges[bestEdge].Src]+g.edges[bestEdge].Delay {
				bestEdge = edgeIdx
			}
		}

		v = g.edges[bestEdge].Src
		chain = append(chain, v)

		if len(g.incoming[v]) == 0 {
			return chain
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
