// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"math"
)

// LineSearchResult contains the outcome of a step length search along
// a descent direction d from the point x.
type LineSearchResult struct {
	Alpha         float64   // Accepted step length.
	FNew          float64   // Function value at x + ɑd.
	GNew          []float64 // Gradient at x + ɑd when the search evaluates it.
	FunctionCalls int       // Number of objective evaluations.
	GradientCalls int       // Number of gradient evaluations.
	Success       bool      // Whether the acceptance conditions were met.
}

// BacktrackingOptions specifies the Armijo backtracking search.
// The zero value of each field selects its default.
type BacktrackingOptions struct {
	InitialAlpha float64 // Starting step length (default 1).
	C1           float64 // Sufficient decrease tolerance (default 1e-4).
	Rho          float64 // Backtracking factor (default 0.5).
	MaxIter      int     // Trial limit (default 20).
}

func (o *BacktrackingOptions) defaults() (v BacktrackingOptions) {
	v = BacktrackingOptions{InitialAlpha: 1.0, C1: 1e-4, Rho: 0.5, MaxIter: 20}
	if o == nil {
		return
	}
	if o.InitialAlpha > 0 {
		v.InitialAlpha = o.InitialAlpha
	}
	if o.C1 > 0 {
		v.C1 = o.C1
	}
	if o.Rho > 0 {
		v.Rho = o.Rho
	}
	if o.MaxIter > 0 {
		v.MaxIter = o.MaxIter
	}
	return
}

// Backtracking performs an Armijo backtracking search along d:
// starting from the initial step the length is multiplied by ϱ until
//
//	f(x + ɑd) ≤ f(x) + 𝚌₁·ɑ·gᵀd
//
// holds. When the trial limit is exhausted the last step is returned
// with Success false.
func Backtracking(f Objective, x, d []float64, fx float64, gx []float64, opts *BacktrackingOptions) LineSearchResult {

	o := opts.defaults()
	dg := Dot(gx, d)
	alpha := o.InitialAlpha
	numEval := 0

	for i := 0; i < o.MaxIter; i++ {
		fNew := f(AddScaled(x, d, alpha))
		numEval++
		if fNew <= fx+o.C1*alpha*dg {
			return LineSearchResult{
				Alpha: alpha, FNew: fNew,
				FunctionCalls: numEval,
				Success:       true,
			}
		}
		alpha *= o.Rho
	}

	return LineSearchResult{
		Alpha: alpha, FNew: f(AddScaled(x, d, alpha)),
		FunctionCalls: numEval + 1,
	}
}

// WolfeOptions specifies the strong Wolfe search.
// The zero value of each field selects its default.
type WolfeOptions struct {
	C1       float64 // Sufficient decrease tolerance (default 1e-4).
	C2       float64 // Curvature tolerance (default 0.9).
	AlphaMax float64 // Step upper bound (default 1e6).
	MaxIter  int     // Bracketing trial limit (default 25).
}

func (o *WolfeOptions) defaults() (v WolfeOptions) {
	v = WolfeOptions{C1: 1e-4, C2: 0.9, AlphaMax: 1e6, MaxIter: 25}
	if o == nil {
		return
	}
	if o.C1 > 0 {
		v.C1 = o.C1
	}
	if o.C2 > 0 {
		v.C2 = o.C2
	}
	if o.AlphaMax > 0 {
		v.AlphaMax = o.AlphaMax
	}
	if o.MaxIter > 0 {
		v.MaxIter = o.MaxIter
	}
	return
}

// StrongWolfe performs a line search along d that ensures the step satisfies:
//   - sufficient decrease condition: f(x+ɑd) ≤ f(x) + 𝚌₁·ɑ·gᵀd
//   - curvature condition: |∇f(x+ɑd)ᵀd| ≤ 𝚌₂·|gᵀd|
//
// The bracketing phase doubles the trial step until the minimizer is
// enclosed, then the interval is refined by bisection (Nocedal & Wright
// algorithms 3.5 and 3.6). On success GNew holds the gradient at the
// accepted point.
func StrongWolfe(f Objective, grad Gradient, x, d []float64, fx float64, gx []float64, opts *WolfeOptions) LineSearchResult {

	o := opts.defaults()
	dg0 := Dot(gx, d)
	numEval, numGrad := 0, 0

	alphaPrev, fPrev := 0.0, fx
	alpha := 1.0

	for i := 0; i < o.MaxIter; i++ {
		xNew := AddScaled(x, d, alpha)
		fNew := f(xNew)
		numEval++

		// Sufficient decrease violated or the function increased.
		if fNew > fx+o.C1*alpha*dg0 || (i > 0 && fNew >= fPrev) {
			return zoom(f, grad, x, d, fx, dg0, alphaPrev, fPrev, alpha, &o, &numEval, &numGrad)
		}

		gNew := grad(xNew)
		numGrad++
		dgNew := Dot(gNew, d)

		if math.Abs(dgNew) <= o.C2*math.Abs(dg0) {
			return LineSearchResult{
				Alpha: alpha, FNew: fNew, GNew: gNew,
				FunctionCalls: numEval, GradientCalls: numGrad,
				Success: true,
			}
		}

		// Positive directional derivative brackets the minimizer.
		if dgNew >= 0 {
			return zoom(f, grad, x, d, fx, dg0, alpha, fNew, alphaPrev, &o, &numEval, &numGrad)
		}

		alphaPrev, fPrev = alpha, fNew
		alpha = math.Min(2*alpha, o.AlphaMax)
	}

	xNew := AddScaled(x, d, alpha)
	fNew, gNew := f(xNew), grad(xNew)
	numEval++
	numGrad++
	return LineSearchResult{
		Alpha: alpha, FNew: fNew, GNew: gNew,
		FunctionCalls: numEval, GradientCalls: numGrad,
	}
}

// zoom shrinks the bracket [ɑ_lo, ɑ_hi] by bisection until the strong
// Wolfe conditions hold at the midpoint. The endpoints keep the invariant
// that ɑ_lo yields the lowest acceptable function value seen so far.
func zoom(f Objective, grad Gradient, x, d []float64, fx, dg0 float64,
	alphaLo, fLo, alphaHi float64, o *WolfeOptions, numEval, numGrad *int) LineSearchResult {

	for j := 0; j < 20; j++ {
		alpha := 0.5 * (alphaLo + alphaHi)
		xNew := AddScaled(x, d, alpha)
		fNew := f(xNew)
		*numEval += 1

		if fNew > fx+o.C1*alpha*dg0 || fNew >= fLo {
			alphaHi = alpha
		} else {
			gNew := grad(xNew)
			*numGrad += 1
			dgNew := Dot(gNew, d)

			if math.Abs(dgNew) <= o.C2*math.Abs(dg0) {
				return LineSearchResult{
					Alpha: alpha, FNew: fNew, GNew: gNew,
					FunctionCalls: *numEval, GradientCalls: *numGrad,
					Success: true,
				}
			}

			if dgNew*(alphaHi-alphaLo) >= 0 {
				alphaHi = alphaLo
			}
			alphaLo, fLo = alpha, fNew
		}
	}

	xNew := AddScaled(x, d, alphaLo)
	fNew, gNew := f(xNew), grad(xNew)
	*numEval += 1
	*numGrad += 1
	return LineSearchResult{
		Alpha: alphaLo, FNew: fNew, GNew: gNew,
		FunctionCalls: *numEval, GradientCalls: *numGrad,
	}
}
