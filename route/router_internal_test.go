package route

import (
	"math"
	"testing"

	"github.com/rs/xid"
	"github.com/sarchlab/fpgapr/circuit"
)

// connectionsWithCriticality builds a bare circuit.Circuit holding only
// the connection slice rerouteCriticality reads, with criticalities
// spread evenly across [0, 1].
func connectionsWithCriticality(n int) *circuit.Circuit {
	c := &circuit.Circuit{}

	for i := 0; i < n; i++ {
		crit := float64(i) / float64(n-1)
		c.Connections = append(c.Connections, &circuit.Connection{
			ID:          xid.New(),
			Index:       i,
			Criticality: crit,
		})
	}

	return c
}

func TestRerouteCriticalityIsSelfLimiting(t *testing.T) {
	c := connectionsWithCriticality(50)
	r := NewRouter(&Graph{})

	rerouteCrit := r.rerouteCriticality(c)

	count := 0
	for _, conn := range c.Connections {
		if conn.Criticality > rerouteCrit {
			count++
		}
	}

	threshold := int(math.Ceil(r.MaxPercentCritical * float64(len(c.Connections))))

	if count > threshold {
		t.Fatalf("rerouteCriticality left %d connections above threshold %v, want <= %d", count, rerouteCrit, threshold)
	}
}

func TestRerouteCriticalityNeverExceedsOne(t *testing.T) {
	c := connectionsWithCriticality(4)
	for _, conn := range c.Connections {
		conn.Criticality = 1.0
	}

	r := NewRouter(&Graph{})
	rerouteCrit := r.rerouteCriticality(c)

	if rerouteCrit < r.RerouteCritStart {
		t.Fatalf("rerouteCriticality decreased below start: got %v, want >= %v", rerouteCrit, r.RerouteCritStart)
	}

	if rerouteCrit > 1.0+1e-9 {
		t.Fatalf("rerouteCriticality escaped past 1.0: got %v", rerouteCrit)
	}
}

func TestRipUpAddRoundTripPreservesOccupation(t *testing.T) {
	g := &Graph{
		Nodes: []Node{
			{Index: 0, Kind: Source, Capacity: 1},
			{Index: 1, Kind: Opin, Capacity: 1},
			{Index: 2, Kind: Sink, Capacity: 1},
		},
	}
	r := NewRouter(g)
	r.routes = make(map[int][]int)

	conn := &circuit.Connection{ID: xid.New(), Index: 0, NetIndex: 0}
	r.routes[conn.Index] = []int{0, 1, 2}

	r.add(conn)

	before := make([]int, len(r.routes[conn.Index]))
	for i, node := range r.routes[conn.Index] {
		before[i] = r.state.Occupation(node)
	}

	r.ripUp(conn)
	r.routes[conn.Index] = []int{0, 1, 2}
	r.add(conn)

	for i, node := range []int{0, 1, 2} {
		if got := r.state.Occupation(node); got != before[i] {
			t.Fatalf("node %d occupation changed across rip-up/add: got %d, want %d", node, got, before[i])
		}
	}
}
