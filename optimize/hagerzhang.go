// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"math"
)

// HagerZhangOptions specifies the Hager-Zhang search.
// The zero value of each field selects its default.
type HagerZhangOptions struct {
	Delta          float64 // Sufficient decrease tolerance (default 0.1).
	Sigma          float64 // Curvature tolerance (default 0.9).
	Epsilon        float64 // Relaxation factor ɛ of the approximate test (default 1e-6).
	Theta          float64 // Bisection ratio (default 0.5).
	Gamma          float64 // Required bracket shrink rate per iteration (default 0.66).
	Rho            float64 // Bracket expansion factor (default 5).
	MaxBracketIter int     // Expansion trial limit (default 50).
	MaxSecantIter  int     // Refinement trial limit (default 50).
}

func (o *HagerZhangOptions) defaults() (v HagerZhangOptions) {
	v = HagerZhangOptions{
		Delta: 0.1, Sigma: 0.9, Epsilon: 1e-6,
		Theta: 0.5, Gamma: 0.66, Rho: 5.0,
		MaxBracketIter: 50, MaxSecantIter: 50,
	}
	if o == nil {
		return
	}
	if o.Delta > 0 {
		v.Delta = o.Delta
	}
	if o.Sigma > 0 {
		v.Sigma = o.Sigma
	}
	if o.Epsilon > 0 {
		v.Epsilon = o.Epsilon
	}
	if o.Theta > 0 {
		v.Theta = o.Theta
	}
	if o.Gamma > 0 {
		v.Gamma = o.Gamma
	}
	if o.Rho > 0 {
		v.Rho = o.Rho
	}
	if o.MaxBracketIter > 0 {
		v.MaxBracketIter = o.MaxBracketIter
	}
	if o.MaxSecantIter > 0 {
		v.MaxSecantIter = o.MaxSecantIter
	}
	return
}

// HagerZhang performs a line search along d accepting any step that
// satisfies the curvature condition φ′(ɑ) ≥ σ·φ′(0) together with either
// the standard sufficient decrease test
//
//	φ(ɑ) ≤ φ(0) + δ·ɑ·φ′(0)
//
// or the approximate Wolfe test
//
//	φ(ɑ) ≤ φ(0) + ɛₖ and φ′(ɑ) ≤ (2δ-1)·φ′(0),  ɛₖ = ɛ·|φ(0)|
//
// which stays decidable when ɑ is within rounding error of the minimizer.
// The bracket grows by the factor ϱ and shrinks by secant interpolation,
// falling back to θ-bisection whenever one iteration fails to reduce the
// interval width by the factor γ (Hager & Zhang, SIAM J. Optim. 16, 2005).
func HagerZhang(f Objective, grad Gradient, x, d []float64, fx float64, gx []float64, opts *HagerZhangOptions) LineSearchResult {

	o := opts.defaults()
	numEval, numGrad := 0, 0

	phi0 := fx
	dphi0 := Dot(gx, d)
	epsK := o.Epsilon * math.Abs(phi0)

	phi := func(alpha float64) float64 {
		numEval++
		return f(AddScaled(x, d, alpha))
	}
	dphi := func(alpha float64) (float64, []float64) {
		numGrad++
		g := grad(AddScaled(x, d, alpha))
		return Dot(g, d), g
	}
	accept := func(alpha, phiA, dphiA float64) bool {
		if dphiA < o.Sigma*dphi0 {
			return false
		}
		if phiA <= phi0+o.Delta*alpha*dphi0 {
			return true
		}
		return phiA <= phi0+epsK && dphiA <= (2*o.Delta-1)*dphi0
	}
	found := func(alpha, phiA float64, g []float64) LineSearchResult {
		return LineSearchResult{
			Alpha: alpha, FNew: phiA, GNew: g,
			FunctionCalls: numEval, GradientCalls: numGrad,
			Success: true,
		}
	}

	// Bracket phase: grow c until the opposite slope condition holds.
	c := 1.0
	phiC := phi(c)
	dphiC, gC := dphi(c)

	if accept(c, phiC, dphiC) {
		return found(c, phiC, gC)
	}

	aj, bj := 0.0, c
	dphiAj, dphiBj := dphi0, dphiC

	if !(phiC > phi0+epsK || dphiC >= 0) {
		bracket := false
		for i := 0; i < o.MaxBracketIter; i++ {
			cPrev, dphiPrev := c, dphiC

			c *= o.Rho
			phiC = phi(c)
			dphiC, gC = dphi(c)

			if accept(c, phiC, dphiC) {
				return found(c, phiC, gC)
			}

			if phiC > phi0+epsK || dphiC >= 0 {
				aj, bj = cPrev, c
				dphiAj, dphiBj = dphiPrev, dphiC
				bracket = true
				break
			}
		}
		if !bracket {
			return LineSearchResult{
				Alpha: c, FNew: phiC, GNew: gC,
				FunctionCalls: numEval, GradientCalls: numGrad,
			}
		}
	}

	// Refinement phase: secant steps with bisection fallback.
	lastWidth := bj - aj

	for i := 0; i < o.MaxSecantIter; i++ {
		width := bj - aj

		if width < 1e-14 {
			mid := (aj + bj) / 2
			phiMid := phi(mid)
			_, gMid := dphi(mid)
			return found(mid, phiMid, gMid)
		}

		var cj float64
		if denom := dphiBj - dphiAj; math.Abs(denom) > 1e-30 {
			cj = aj - dphiAj*(bj-aj)/denom
			margin := 1e-14 * width
			cj = math.Min(math.Max(cj, aj+margin), bj-margin)
		} else {
			cj = aj + o.Theta*(bj-aj)
		}

		phiCj := phi(cj)
		dphiCj, gCj := dphi(cj)

		if accept(cj, phiCj, dphiCj) {
			return found(cj, phiCj, gCj)
		}

		if phiCj > phi0+epsK || dphiCj >= 0 {
			bj, dphiBj = cj, dphiCj
		} else {
			aj, dphiAj = cj, dphiCj
		}

		if newWidth := bj - aj; newWidth > o.Gamma*lastWidth {
			mid := aj + o.Theta*(bj-aj)
			phiMid := phi(mid)
			dphiMid, gMid := dphi(mid)

			if accept(mid, phiMid, dphiMid) {
				return found(mid, phiMid, gMid)
			}

			if phiMid > phi0+epsK || dphiMid >= 0 {
				bj, dphiBj = mid, dphiMid
			} else {
				aj, dphiAj = mid, dphiMid
			}
		}

		lastWidth = bj - aj
	}

	fAj := phi(aj)
	_, gAj := dphi(aj)
	return LineSearchResult{
		Alpha: aj, FNew: fAj, GNew: gAj,
		FunctionCalls: numEval, GradientCalls: numGrad,
	}
}
