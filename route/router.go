package route

import (
	"fmt"
	"math"
	"sort"

	"github.com/sarchlab/fpgapr/circuit"
	"github.com/sarchlab/fpgapr/errkind"
	"github.com/sarchlab/fpgapr/timinggraph"
)

// routeBBoxMargin inflates a net's placement bounding box by this many
// grid units to bound a connection's wire search.
const routeBBoxMargin = 3

// Router runs the Pathfinder negotiated-congestion loop over a Graph.
type Router struct {
	Graph *Graph
	state *State

	MaxTrials          int
	FixOpins           int
	RerouteCritStart   float64
	RerouteCritMult    float64
	MaxPercentCritical float64

	InitialPresFac float64
	PresFacMult    float64
	AccFac         float64

	K        float64
	Beta     float64
	AlphaWLD float64
	AlphaTD  float64

	MaxCriticality      float64
	CriticalityExponent float64

	presFac   float64
	routes    map[int][]int // connection index -> node path, source..sink
	boundOpin map[int]int   // net index -> opin node index
}

// NewRouter returns a Router configured with the component design's
// stated defaults.
func NewRouter(g *Graph) *Router {
	return &Router{
		Graph:               g,
		state:               NewState(len(g.Nodes)),
		MaxTrials:           100,
		FixOpins:            4,
		RerouteCritStart:    0.85,
		RerouteCritMult:     1.01,
		MaxPercentCritical:  0.03,
		InitialPresFac:      0.6,
		PresFacMult:         2.0,
		AccFac:              1.0,
		K:                   10,
		Beta:                0.5,
		AlphaWLD:            1.0,
		AlphaTD:             1.0,
		MaxCriticality:      0.99,
		CriticalityExponent: 1.0,
	}
}

// CongestionReport summarizes the outcome of a Route call: the number of
// iterations it took, and (on non-convergence) the nodes still overused.
type CongestionReport struct {
	Iterations    int
	Converged     bool
	OverusedNodes []int
}

// Route runs the full iterative Pathfinder loop described in the
// component design over every connection of c, mutating the router's
// internal congestion state as it goes. A non-convergent result is
// returned, not an error: the caller may rerun with different
// parameters, per the error-handling design's non-fatal routing failure.
//
// tg selects timing-driven mode: when non-nil, actual wire delay,
// arrival/required times and connection criticality are recomputed from
// tg once per itry (mirroring ConnectionRouter.java's td branch), and a
// routing is only accepted once it is both uncongested and the maximum
// delay stopped improving over the previous iteration. When tg is nil,
// only congestion is checked, and criticality is never touched by Route
// (the caller's placement-estimated criticality is used throughout).
func (r *Router) Route(c *circuit.Circuit, tg *timinggraph.Graph) (*CongestionReport, error) {
	g := r.Graph
	c.RecomputeAllBoundingBoxes()

	r.presFac = r.InitialPresFac
	r.routes = make(map[int][]int)
	r.boundOpin = make(map[int]int)

	prevMaxDelay := math.Inf(1)
	order := r.orderConnections(c)

	for itry := 1; itry <= r.MaxTrials; itry++ {
		markedForReroute := make(map[int]bool)

		if itry >= r.FixOpins {
			r.fixOpins(c, markedForReroute)
		}

		rerouteCrit := r.rerouteCriticality(c)

		for _, conn := range order {
			if itry == 1 || r.isCongested(conn.Index) || conn.Criticality > rerouteCrit || markedForReroute[conn.Index] {
				r.ripUp(conn)

				if err := r.routeOne(c, conn); err != nil {
					return nil, err
				}

				r.add(conn)
			}
		}

		overused := r.overusedNodes()

		delayImproved := false

		if tg != nil {
			tg.CalculateActualWireDelay()
			tg.CalculateArrivalAndRequiredTimes()
			tg.CalculateConnectionCriticality(r.MaxCriticality, r.CriticalityExponent)

			maxDelay := tg.MaxDelay()
			delayImproved = maxDelay < prevMaxDelay
			prevMaxDelay = maxDelay
		}

		if len(overused) == 0 && !delayImproved {
			return &CongestionReport{Iterations: itry, Converged: true}, nil
		}

		r.presFac *= r.PresFacMult

		for i := range g.Nodes {
			overuse := r.state.Occupation(i) - g.Nodes[i].Capacity
			r.refreshPresCost(i)

			if overuse > 0 {
				r.state.AccCost[i] += float64(overuse) * r.AccFac
			}
		}
	}

	return &CongestionReport{Iterations: r.MaxTrials, Converged: false, OverusedNodes: r.overusedNodes()}, nil
}

// rerouteCriticality implements setRerouteCriticality: start at
// RerouteCritStart and multiply by RerouteCritMult until no more than
// MaxPercentCritical of connections exceed it, never going above 1.0.
func (r *Router) rerouteCriticality(c *circuit.Circuit) float64 {
	rerouteCrit := r.RerouteCritStart
	threshold := int(math.Ceil(r.MaxPercentCritical * float64(len(c.Connections))))

	for safety := 0; safety < 100; safety++ {
		count := 0
		for _, conn := range c.Connections {
			if conn.Criticality > rerouteCrit {
				count++
			}
		}

		if count <= threshold || rerouteCrit >= 1.0 {
			break
		}

		rerouteCrit *= r.RerouteCritMult
		if rerouteCrit > 1.0 {
			rerouteCrit = 1.0
		}
	}

	return rerouteCrit
}

// orderConnections sorts every connection by descending net fanout once,
// before the iteration loop begins (ConnectionRouter.java:124-130); the
// same order is then reused for every itry instead of being recomputed,
// keeping rip-up/reroute order deterministic across the whole run.
func (r *Router) orderConnections(c *circuit.Circuit) []*circuit.Connection {
	order := append([]*circuit.Connection(nil), c.Connections...)

	sort.SliceStable(order, func(i, j int) bool {
		return c.Nets[order[i].NetIndex].Fanout() > c.Nets[order[j].NetIndex].Fanout()
	})

	return order
}

// fixOpins binds each unbound net's most-used OPIN once it is free, and
// marks every connection currently using a different OPIN for rip-up and
// reroute this iteration.
func (r *Router) fixOpins(c *circuit.Circuit, markedForReroute map[int]bool) {
	for netIdx, net := range c.Nets {
		if _, bound := r.boundOpin[netIdx]; bound {
			continue
		}

		usage := make(map[int]int)

		for _, connIdx := range net.Connections {
			path, ok := r.routes[connIdx]
			if !ok || len(path) < 2 {
				continue
			}

			usage[path[1]]++
		}

		if len(usage) == 0 {
			continue
		}

		best, bestCount := -1, -1
		for node, count := range usage {
			if count > bestCount {
				best, bestCount = node, count
			}
		}

		if r.state.Occupation(best) > 0 && r.state.SourceUses(best, netIdx) == 0 {
			continue
		}

		r.boundOpin[netIdx] = best

		for _, connIdx := range net.Connections {
			path, ok := r.routes[connIdx]
			if ok && len(path) >= 2 && path[1] == best {
				continue
			}

			markedForReroute[connIdx] = true
		}
	}
}

// RouteOf returns the current node path (source..sink) assigned to a
// connection, or nil if it has not been routed.
func (r *Router) RouteOf(connIndex int) []int {
	return r.routes[connIndex]
}

// Occupation returns the number of distinct nets currently driving a
// route through the given node.
func (r *Router) Occupation(node int) int {
	return r.state.Occupation(node)
}

// RipUp removes a connection's current route from the congestion state,
// exposed for callers that need to force a reroute of a specific
// connection outside the normal Route loop.
func (r *Router) RipUp(conn *circuit.Connection) {
	r.ripUp(conn)
}

// Add inserts a connection's current route (set by a prior routeOne, e.g.
// via RipUp followed by a manual reroute) back into the congestion state.
func (r *Router) Add(conn *circuit.Connection) {
	r.add(conn)
}

// VerifyOpinUniqueness re-checks, after a Route call, that every net's
// connections share exactly one OPIN. It does not mutate router state;
// a non-empty result means the post-route invariant was violated and the
// caller should treat the route as suspect.
func (r *Router) VerifyOpinUniqueness(c *circuit.Circuit) []string {
	var violations []string

	for netIdx, net := range c.Nets {
		if len(net.Connections) == 0 {
			continue
		}

		opins := make(map[int]bool)

		for _, connIdx := range net.Connections {
			path := r.routes[connIdx]
			if len(path) < 2 {
				continue
			}

			opins[path[1]] = true
		}

		if len(opins) > 1 {
			violations = append(violations, fmt.Sprintf(
				"net %d (%s): %d distinct OPINs in use", netIdx, net.Name, len(opins)))
		}
	}

	return violations
}

func (r *Router) isCongested(connIndex int) bool {
	for _, node := range r.routes[connIndex] {
		if r.state.Occupation(node) > r.Graph.Nodes[node].Capacity {
			return true
		}
	}

	return false
}

func (r *Router) overusedNodes() []int {
	var out []int

	for i := range r.Graph.Nodes {
		if r.state.Occupation(i) > r.Graph.Nodes[i].Capacity {
			out = append(out, i)
		}
	}

	return out
}

// ripUp removes a connection's previous route (if any) from the
// driving-source multiset and refreshes affected nodes' present cost.
func (r *Router) ripUp(conn *circuit.Connection) {
	path, ok := r.routes[conn.Index]
	if !ok {
		return
	}

	for _, node := range path {
		r.state.RemoveUse(node, conn.NetIndex)
		r.refreshPresCost(node)
	}

	delete(r.routes, conn.Index)
}

// add inserts the connection's newly found route into the driving-source
// multiset and refreshes affected nodes' present cost.
func (r *Router) add(conn *circuit.Connection) {
	path := r.routes[conn.Index]

	for _, node := range path {
		r.state.AddUse(node, conn.NetIndex)
		r.refreshPresCost(node)
	}
}

// refreshPresCost recomputes a node's present congestion cost from its
// current occupation, per the component design's overuse formula.
func (r *Router) refreshPresCost(node int) {
	overuse := r.state.Occupation(node) - r.Graph.Nodes[node].Capacity

	switch {
	case overuse == 0:
		r.state.PresCost[node] = 1 + r.presFac
	case overuse > 0:
		r.state.PresCost[node] = 1 + float64(overuse+1)*r.presFac
	default:
		r.state.PresCost[node] = 1
	}
}

// routeOne runs the per-connection directed search and records the
// resulting path (source..sink, inclusive) into r.routes.
func (r *Router) routeOne(c *circuit.Circuit, conn *circuit.Connection) error {
	g := r.Graph
	net := c.Nets[conn.NetIndex]

	source := g.SourceOfPin[conn.DriverPin]
	target := g.SinkOfPin[conn.SinkPin]

	best := map[int]float64{source: 0}
	prev := map[int]int{source: -1}

	pq := newSearchQueue()
	pq.push(searchItem{lowerBound: 0, node: source, partial: 0, prev: -1})

	for pq.Len() > 0 {
		item := pq.pop()

		if item.partial > best[item.node] {
			continue
		}

		if item.node == target {
			path := reconstructPath(prev, target)
			r.routes[conn.Index] = path
			r.updateActualDelay(c, conn, path)

			return nil
		}

		node := g.Nodes[item.node]

		for _, child := range node.Children {
			if !r.allowedChild(g, net, target, child) {
				continue
			}

			childNode := g.Nodes[child]

			delay := 0.0
			if childNode.Kind == Chanx || childNode.Kind == Chany {
				delay = childNode.TLinear
			}

			nodeCost := r.nodeCost(child, net, conn)
			newPartial := item.partial + (1-conn.Criticality)*nodeCost + conn.Criticality*delay

			if prevBest, ok := best[child]; ok && prevBest <= newPartial {
				continue
			}

			best[child] = newPartial
			prev[child] = item.node

			pq.push(searchItem{
				lowerBound: r.lowerBound(g, child, newPartial, net, conn, target),
				node:       child,
				partial:    newPartial,
				prev:       item.node,
			})
		}
	}

	return errkind.NewInfeasible(
		fmt.Sprintf("connection %s: sink unreachable", conn.ID.String()))
}

func reconstructPath(prev map[int]int, target int) []int {
	var path []int

	for n := target; n != -1; n = prev[n] {
		path = append([]int{n}, path...)
	}

	return path
}

func (r *Router) updateActualDelay(c *circuit.Circuit, conn *circuit.Connection, path []int) {
	total := 0.0

	for _, node := range path {
		if r.Graph.Nodes[node].Kind == Chanx || r.Graph.Nodes[node].Kind == Chany {
			total += r.Graph.Nodes[node].TLinear
		}
	}

	conn.ActualWireDelay = total
}

// allowedChild implements the per-kind expansion rules from the component
// design.
func (r *Router) allowedChild(g *Graph, net *circuit.Net, target int, child int) bool {
	node := g.Nodes[child]

	switch node.Kind {
	case Chanx, Chany:
		return r.withinBBox(node, net)
	case Opin:
		bound, hasBound := r.boundOpin[net.Index]
		if !hasBound {
			others := r.state.Occupation(child)
			if r.state.SourceUses(child, net.Index) > 0 {
				others--
			}

			return others == 0
		}

		return child == bound
	case Ipin:
		return len(node.Children) == 1 && node.Children[0] == target
	case Sink:
		return true
	default:
		return true
	}
}

func (r *Router) withinBBox(node Node, net *circuit.Net) bool {
	return node.X >= net.XMin-routeBBoxMargin && node.X <= net.XMax+routeBBoxMargin &&
		node.Y >= net.YMin-routeBBoxMargin && node.Y <= net.YMax+routeBBoxMargin
}

// nodeCost is the Pathfinder negotiated-congestion node cost, including
// the present-cost short-circuit for nodes the connection's own net
// already occupies and the placement-bias term.
func (r *Router) nodeCost(nodeIdx int, net *circuit.Net, conn *circuit.Connection) float64 {
	node := r.Graph.Nodes[nodeIdx]

	sourceUses := r.state.SourceUses(nodeIdx, net.Index)

	pres := r.state.PresCost[nodeIdx]
	if sourceUses > 0 {
		unique := r.state.Occupation(nodeIdx)
		pres = math.Max(1, 1+float64(unique-node.Capacity)*r.presFac)
	}

	cost := node.BaseCost * r.state.AccCost[nodeIdx] * pres / (1 + r.K*float64(sourceUses))

	return cost + r.biasCost(node, net)
}

func (r *Router) biasCost(node Node, net *circuit.Net) float64 {
	hpwl := net.HPWL()
	if hpwl == 0 || net.Fanout() == 0 {
		return 0
	}

	cx, cy := net.GeometricCenter()

	dist := math.Abs(float64(node.X)-cx) + math.Abs(float64(node.Y)-cy)

	return r.Beta * node.BaseCost / float64(net.Fanout()) * dist / float64(hpwl)
}

// lowerBound is the (intentionally non-admissible) directed-search
// heuristic: exact for non-wire children, an expected-distance estimate
// for wire children.
func (r *Router) lowerBound(g *Graph, child int, partial float64, net *circuit.Net, conn *circuit.Connection, target int) float64 {
	node := g.Nodes[child]
	if node.Kind != Chanx && node.Kind != Chany {
		return partial
	}

	distance := float64(g.ExpectedDistance(child, target))
	sourceUses := float64(r.state.SourceUses(child, net.Index))

	wldTerm := distance*g.BaseCostPerDistance/(1+sourceUses) + g.IPINBaseCost()
	tdTerm := distance * g.BaseCostPerDistance

	return partial + r.AlphaWLD*(1-conn.Criticality)*wldTerm + r.AlphaTD*conn.Criticality*tdTerm
}
