// Package route implements the routing-resource graph and the Pathfinder
// negotiated-congestion connection router.
package route

import "github.com/sarchlab/fpgapr/circuit"

// Kind is the fixed kind of a routing-resource node.
type Kind int

// Recognized RRG node kinds.
const (
	Source Kind = iota
	Opin
	Chanx
	Chany
	Ipin
	Sink
)

// wireDelayPerUnit is the per-unit-length wire delay used to derive
// t_linear for the unit-length channel segments this graph's mesh builds.
const wireDelayPerUnit = 40.0

// ipinBaseCost is the fixed base cost of every IPIN node, exposed via
// Graph.IPINBaseCost for the router's heuristic term.
const ipinBaseCost = 1.0

// Node is one immutable routing-resource graph node.
type Node struct {
	Index    int
	Kind     Kind
	X, Y     int
	Capacity int
	BaseCost float64
	Length   int     // wire nodes only
	TLinear  float64 // wire nodes only, per-segment delay
	Children []int

	// PinIndex is the owning circuit.Pin index for SOURCE/OPIN/IPIN/SINK
	// nodes, -1 for wire nodes.
	PinIndex int
}

// Graph is the static routing-resource graph built from a placed circuit:
// one SOURCE/OPIN pair per output pin, one IPIN/SINK pair per input pin,
// and a unit-length CHANX/CHANY mesh connecting them, mirroring the
// original's node kinds while collapsing switch-block detail the spec
// scopes out.
type Graph struct {
	Nodes []Node

	Width, Height int

	SourceOfPin map[int]int // circuit.Pin index -> SOURCE node index
	OpinOfPin   map[int]int
	IpinOfPin   map[int]int
	SinkOfPin   map[int]int // circuit.Pin index -> SINK node index

	BaseCostPerDistance float64
}

// BuildGraph constructs the routing-resource graph for a placed circuit's
// global-block pins. channelWidth is the capacity of every CHANX/CHANY
// node, standing in for the number of parallel tracks per channel.
func BuildGraph(c *circuit.Circuit, channelWidth int) *Graph {
	g := &Graph{
		Width:       c.Grid.Width,
		Height:      c.Grid.Height,
		SourceOfPin: make(map[int]int),
		OpinOfPin:   make(map[int]int),
		IpinOfPin:   make(map[int]int),
		SinkOfPin:   make(map[int]int),
	}

	opinAt := make(map[[2]int][]int) // (x,y) -> opin node indexes
	ipinAt := make(map[[2]int][]int) // (x,y) -> ipin node indexes

	add := func(n Node) int {
		n.Index = len(g.Nodes)
		g.Nodes = append(g.Nodes, n)

		return n.Index
	}

	for _, blk := range c.GlobalBlocks() {
		if !blk.Placement.Placed {
			continue
		}

		x, y := blk.Placement.X, blk.Placement.Y

		for _, pinIdx := range blk.OutputPins {
			opin := add(Node{Kind: Opin, X: x, Y: y, Capacity: 1, BaseCost: 1.0, PinIndex: pinIdx})
			source := add(Node{Kind: Source, X: x, Y: y, Capacity: 1, BaseCost: 0, Children: []int{opin}, PinIndex: pinIdx})

			g.SourceOfPin[pinIdx] = source
			g.OpinOfPin[pinIdx] = opin
			opinAt[[2]int{x, y}] = append(opinAt[[2]int{x, y}], opin)
		}

		for _, pinIdx := range blk.InputPins {
			sink := add(Node{Kind: Sink, X: x, Y: y, Capacity: 1, BaseCost: 0, PinIndex: pinIdx})
			ipin := add(Node{Kind: Ipin, X: x, Y: y, Capacity: 1, BaseCost: ipinBaseCost, Children: []int{sink}, PinIndex: pinIdx})

			g.IpinOfPin[pinIdx] = ipin
			g.SinkOfPin[pinIdx] = sink
			ipinAt[[2]int{x, y}] = append(ipinAt[[2]int{x, y}], ipin)
		}
	}

	chanx := make(map[[2]int]int)
	chany := make(map[[2]int]int)

	totalTLinear, totalLength := 0.0, 0

	for x := 0; x < g.Width; x++ {
		for y := 0; y < g.Height; y++ {
			if x < g.Width-1 {
				idx := add(Node{Kind: Chanx, X: x, Y: y, Capacity: channelWidth, Length: 1, TLinear: wireDelayPerUnit})
				chanx[[2]int{x, y}] = idx
				totalTLinear += wireDelayPerUnit
				totalLength++
			}

			if y < g.Height-1 {
				idx := add(Node{Kind: Chany, X: x, Y: y, Capacity: channelWidth, Length: 1, TLinear: wireDelayPerUnit})
				chany[[2]int{x, y}] = idx
				totalTLinear += wireDelayPerUnit
				totalLength++
			}
		}
	}

	if totalLength > 0 {
		g.BaseCostPerDistance = totalTLinear / float64(totalLength)
	} else {
		g.BaseCostPerDistance = wireDelayPerUnit
	}

	for x := 0; x < g.Width; x++ {
		for y := 0; y < g.Height; y++ {
			if idx, ok := chanx[[2]int{x, y}]; ok {
				g.Nodes[idx].BaseCost = float64(g.Nodes[idx].Length) * g.BaseCostPerDistance

				if next, ok := chanx[[2]int{x + 1, y}]; ok {
					g.Nodes[idx].Children = append(g.Nodes[idx].Children, next)
				}

				g.Nodes[idx].Children = append(g.Nodes[idx].Children, ipinAt[[2]int{x + 1, y}]...)
			}

			if idx, ok := chany[[2]int{x, y}]; ok {
				g.Nodes[idx].BaseCost = float64(g.Nodes[idx].Length) * g.BaseCostPerDistance

				if next, ok := chany[[2]int{x, y + 1}]; ok {
					g.Nodes[idx].Children = append(g.Nodes[idx].Children, next)
				}

				g.Nodes[idx].Children = append(g.Nodes[idx].Children, ipinAt[[2]int{x, y + 1}]...)
			}

			if opins, ok := opinAt[[2]int{x, y}]; ok {
				cx, hasX := chanx[[2]int{x, y}]
				cy, hasY := chany[[2]int{x, y}]

				for _, opin := range opins {
					if hasX {
						g.Nodes[opin].Children = append(g.Nodes[opin].Children, cx)
					}

					if hasY {
						g.Nodes[opin].Children = append(g.Nodes[opin].Children, cy)
					}
				}
			}
		}
	}

	return g
}

// ExpectedDistance is the cheap Manhattan-style estimate the router's
// heuristic uses in place of an exact remaining-cost computation.
func (g *Graph) ExpectedDistance(from, to int) int {
	a, b := &g.Nodes[from], &g.Nodes[to]

	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}

	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}

	return dx + dy
}

// IPINBaseCost returns the fixed base cost every IPIN node shares.
func (g *Graph) IPINBaseCost() float64 {
	return ipinBaseCost
}
