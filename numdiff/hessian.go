package numdiff

import "math"

// Hessian approximates the n×n Hessian of f at x by central differences with
// per-coordinate step hᵢ = 𝛆^¼ ⋅ 𝚖𝚊𝚡(1,|xᵢ|).
// Diagonal entries use the three-point stencil (𝒇₊ - 2𝒇₀ + 𝒇₋)/hᵢ²,
// off-diagonal entries the four-corner stencil
// (𝒇₊₊ - 𝒇₊₋ - 𝒇₋₊ + 𝒇₋₋)/(4hᵢhⱼ) mirrored across the diagonal,
// so the result is symmetric by construction.
// The input x is never modified.
func Hessian(f func(x []float64) float64, x []float64) [][]float64 {
	n := len(x)
	hess := make([][]float64, n)
	for i := range hess {
		hess[i] = make([]float64, n)
	}

	fx := f(x)
	xp := append([]float64(nil), x...)

	h := make([]float64, n)
	for i, v := range x {
		h[i] = quartEps * math.Max(1, math.Abs(v))
	}

	for i, v := range x {
		xp[i] = v + h[i]
		fp := f(xp)
		xp[i] = v - h[i]
		fm := f(xp)
		xp[i] = v
		hess[i][i] = (fp - 2*fx + fm) / (h[i] * h[i])
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			vi, vj := xp[i], xp[j]

			xp[i] = vi + h[i]
			xp[j] = vj + h[j]
			fpp := f(xp)

			xp[j] = vj - h[j]
			fpm := f(xp)

			xp[i] = vi - h[i]
			fmm := f(xp)

			xp[j] = vj + h[j]
			fmp := f(xp)

			xp[i], xp[j] = vi, vj

			hess[i][j] = (fpp - fpm - fmp + fmm) / (4 * h[i] * h[j])
			hess[j][i] = hess[i][j]
		}
	}

	return hess
}

// HessianProduct approximates 𝐇𝐯 ≈ (∇𝒇(𝐱+h𝐯) - ∇𝒇(𝐱))/h with directional
// step h = 𝛆^¼ ⋅ 𝚖𝚊𝚡(1,‖𝐯‖₂), a single gradient evaluation.
// gx holds the already known gradient at x.
func HessianProduct(grad func(x []float64) []float64, x, v, gx []float64) []float64 {
	vNorm := 0.0
	for _, vi := range v {
		vNorm += vi * vi
	}
	h := quartEps * math.Max(1, math.Sqrt(vNorm))

	xp := make([]float64, len(x))
	for i := range x {
		xp[i] = x[i] + h*v[i]
	}
	gp := grad(xp)

	hv := make([]float64, len(x))
	for i := range hv {
		hv[i] = (gp[i] - gx[i]) / h
	}
	return hv
}
