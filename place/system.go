// Package place implements the three placers named in the component
// design: the analytical (B2B + Conjugate Gradient) placer with its
// area-based legalizer, the SA refiner, and a random placer used both to
// seed the others and to stand alone under --placer random.
package place

// edgeWeight is one off-diagonal entry of a LinearSystem's row: a spring
// to movable variable j with the given weight.
type edgeWeight struct {
	j int
	w float64
}

// LinearSystem is the sparse symmetric positive-definite system built by
// the B2B net model for one dimension (X or Y). Row/column i indexes a
// movable block; fixed blocks (IO, or pseudo-anchors) never become rows,
// they only contribute to diag and b.
type LinearSystem struct {
	n    int
	diag []float64
	b    []float64
	adj  [][]edgeWeight
}

// NewLinearSystem allocates an empty system over n movable variables.
func NewLinearSystem(n int) *LinearSystem {
	return &LinearSystem{
		n:    n,
		diag: make([]float64, n),
		b:    make([]float64, n),
		adj:  make([][]edgeWeight, n),
	}
}

// AddFixedSpring adds a spring of the given weight from movable variable i
// to a fixed point at position pos (an IO block's coordinate or a
// pseudo-anchor).
func (s *LinearSystem) AddFixedSpring(i int, weight, pos float64) {
	s.diag[i] += weight
	s.b[i] += weight * pos
}

// AddMovableSpring adds a spring of the given weight between two movable
// variables.
func (s *LinearSystem) AddMovableSpring(i, j int, weight float64) {
	if i == j {
		return
	}

	s.diag[i] += weight
	s.diag[j] += weight
	s.adj[i] = append(s.adj[i], edgeWeight{j, weight})
	s.adj[j] = append(s.adj[j], edgeWeight{i, weight})
}

// Multiply returns A*x for the system's implicit Laplacian-style matrix:
// row i is diag[i]*x[i] minus the weighted sum of its neighbors.
func (s *LinearSystem) Multiply(x []float64) []float64 {
	y := make([]float64, s.n)

	for i := 0; i < s.n; i++ {
		y[i] = s.diag[i] * x[i]

		for _, e := range s.adj[i] {
			y[i] -= e.w * x[e.j]
		}
	}

	return y
}
