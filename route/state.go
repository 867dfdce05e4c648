package route

// State is the mutable per-node data the router evolves across
// iterations, kept as a dense array parallel to Graph.Nodes rather than
// embedded in the (shareable, read-only) graph.
type State struct {
	occupants []map[int]int // per node: net index -> reference count
	PresCost  []float64
	AccCost   []float64
}

// NewState allocates per-node state for a graph with n nodes.
func NewState(n int) *State {
	s := &State{
		occupants: make([]map[int]int, n),
		PresCost:  make([]float64, n),
		AccCost:   make([]float64, n),
	}

	for i := range s.occupants {
		s.occupants[i] = make(map[int]int)
		s.PresCost[i] = 1
		s.AccCost[i] = 1
	}

	return s
}

// Occupation is the number of distinct nets currently driving a route
// through this node.
func (s *State) Occupation(node int) int {
	return len(s.occupants[node])
}

// SourceUses is the number of the given net's connections currently
// routed through this node.
func (s *State) SourceUses(node, netIndex int) int {
	return s.occupants[node][netIndex]
}

// AddUse records one more of netIndex's connections using this node.
func (s *State) AddUse(node, netIndex int) {
	s.occupants[node][netIndex]++
}

// RemoveUse removes one of netIndex's connections from this node's
// driving-source multiset.
func (s *State) RemoveUse(node, netIndex int) {
	if s.occupants[node][netIndex] <= 1 {
		delete(s.occupants[node], netIndex)
		return
	}

	s.occupants[node][netIndex]--
}
