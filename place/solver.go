package place

import "math"

// ConjugateGradient solves A*x = b for the given system with Jacobi
// (diagonal) preconditioning, starting from x0 and stopping once the
// residual norm drops below tol or maxIter iterations have run.
func ConjugateGradient(sys *LinearSystem, x0 []float64, tol float64, maxIter int) []float64 {
	n := sys.n
	x := append([]float64(nil), x0...)

	r := vecSub(sys.b, sys.Multiply(x))
	z := jacobiApply(sys, r)
	p := append([]float64(nil), z...)

	rz := dot(r, z)
	if rz == 0 || math.Sqrt(dot(r, r)) < tol {
		return x
	}

	for iter := 0; iter < maxIter; iter++ {
		ap := sys.Multiply(p)
		denom := dot(p, ap)
		if denom == 0 {
			break
		}

		alpha := rz / denom

		for i := 0; i < n; i++ {
			x[i] += alpha * p[i]
			r[i] -= alpha * ap[i]
		}

		if math.Sqrt(dot(r, r)) < tol {
			break
		}

		z = jacobiApply(sys, r)
		rzNew := dot(r, z)

		beta := rzNew / rz
		for i := 0; i < n; i++ {
			p[i] = z[i] + beta*p[i]
		}

		rz = rzNew
	}

	return x
}

// jacobiApply applies the Jacobi preconditioner M^-1 = diag(A)^-1.
func jacobiApply(sys *LinearSystem, r []float64) []float64 {
	z := make([]float64, sys.n)

	for i := range z {
		if sys.diag[i] == 0 {
			z[i] = r[i]
			continue
		}

		z[i] = r[i] / sys.diag[i]
	}

	return z
}

func vecSub(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}

	return out
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}

	return sum
}
