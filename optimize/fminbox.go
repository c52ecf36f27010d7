// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"fmt"
	"math"
)

// FminboxOptions controls the barrier loop of Fminbox.
// The zero value of each field selects its default.
type FminboxOptions struct {
	// Mu0 overrides the automatic initial barrier coefficient.
	Mu0 float64
	// MuFactor shrinks μ after every outer iteration (default 0.001).
	MuFactor float64
	// OuterIterations limits the number of barrier subproblems
	// (default 20).
	OuterIterations int
	// OuterGradTol is the projected gradient tolerance deciding outer
	// convergence (default 1e-8).
	OuterGradTol float64
	// Inner controls the unconstrained subsolver.
	Inner Options
}

func (o *FminboxOptions) defaults() (v FminboxOptions) {
	if o != nil {
		v = *o
	}
	if v.MuFactor == 0 {
		v.MuFactor = 0.001
	}
	if v.OuterIterations == 0 {
		v.OuterIterations = 20
	}
	if v.OuterGradTol == 0 {
		v.OuterGradTol = 1e-8
	}
	return
}

// BarrierValue is the logarithmic barrier 𝚺 -𝚕𝚗(xᵢ-lᵢ) - 𝚕𝚗(uᵢ-xᵢ)
// over the finite bounds, +∞ at or outside any bound.
func BarrierValue(x, lower, upper []float64) float64 {
	val := 0.0
	for i := range x {
		if !math.IsInf(lower[i], 0) {
			dxl := x[i] - lower[i]
			if dxl <= 0 {
				return math.Inf(1)
			}
			val -= math.Log(dxl)
		}
		if !math.IsInf(upper[i], 0) {
			dxu := upper[i] - x[i]
			if dxu <= 0 {
				return math.Inf(1)
			}
			val -= math.Log(dxu)
		}
	}
	return val
}

// BarrierGradient is the gradient of BarrierValue at a strictly
// interior point.
func BarrierGradient(x, lower, upper []float64) []float64 {
	g := make([]float64, len(x))
	for i := range x {
		if !math.IsInf(lower[i], 0) {
			g[i] += -1 / (x[i] - lower[i])
		}
		if !math.IsInf(upper[i], 0) {
			g[i] += 1 / (upper[i] - x[i])
		}
	}
	return g
}

// ProjectedGradientNorm measures first-order optimality under box
// constraints: 𝚖𝚊𝚡ᵢ |xᵢ - 𝚌𝚕𝚊𝚖𝚙(xᵢ-gᵢ, lᵢ, uᵢ)|. It vanishes at an
// interior stationary point as well as at a bound the gradient pushes
// against.
func ProjectedGradientNorm(x, g, lower, upper []float64) float64 {
	maxVal := 0.0
	for i := range x {
		clamped := math.Min(math.Max(x[i]-g[i], lower[i]), upper[i])
		maxVal = math.Max(maxVal, math.Abs(x[i]-clamped))
	}
	return maxVal
}

// Fminbox minimizes 𝒇(𝐱) subject to lower ≤ 𝐱 ≤ upper with a
// logarithmic barrier method. Each outer iteration minimizes
// 𝒇(𝐱) + μ·barrier(𝐱) without constraints, starting from the previous
// solution, then shrinks μ. Entries of lower may be -∞ and entries of
// upper +∞ to leave a side unconstrained.
//
// The method selects the inner solver. MethodBFGS, MethodLBFGS,
// MethodConjugateGradient and MethodGradientDescent are honored, any
// other value falls back to MethodLBFGS. A nil grad falls back to
// forward differences.
func Fminbox(f Objective, x0 []float64, grad Gradient, lower, upper []float64, method Method, opts *FminboxOptions) *Result {

	fo := opts.defaults()
	log := fo.Inner.Logger.setup()
	gradFn := gradientOr(f, grad)
	n := len(x0)

	for i := 0; i < n; i++ {
		if lower[i] >= upper[i] {
			return &Result{
				X: Clone(x0), Fun: f(x0), Gradient: gradFn(x0),
				FunctionCalls: 1, GradientCalls: 1,
				Converged: false, Message: "Invalid bounds: lower >= upper",
			}
		}
	}

	// Infeasible starts are nudged into the interior.
	x := Clone(x0)
	for i := 0; i < n; i++ {
		lf, uf := !math.IsInf(lower[i], 0), !math.IsInf(upper[i], 0)
		switch {
		case x[i] <= lower[i]:
			switch {
			case lf && uf:
				x[i] = 0.99*lower[i] + 0.01*upper[i]
			case lf:
				x[i] = lower[i] + 1
			default:
				x[i] = 0
			}
		case x[i] >= upper[i]:
			switch {
			case lf && uf:
				x[i] = 0.01*lower[i] + 0.99*upper[i]
			case uf:
				x[i] = upper[i] - 1
			default:
				x[i] = 0
			}
		}
	}

	fx := f(x)
	gx := gradFn(x)
	numEval, numGrad := 1, 1

	log.printInit("FMINBOX", n)

	finish := func(iter int, conv bool, msg string) *Result {
		res := &Result{
			X: x, Fun: fx, Gradient: gx,
			Iterations: iter, FunctionCalls: numEval, GradientCalls: numGrad,
			Converged: conv, Message: msg,
		}
		log.printExit(res)
		return res
	}

	mu := fo.Mu0
	if mu == 0 {
		objL1 := 0.0
		for _, g := range gx {
			objL1 += math.Abs(g)
		}
		barL1 := 0.0
		for _, g := range BarrierGradient(x, lower, upper) {
			barL1 += math.Abs(g)
		}
		if barL1 > 0 {
			mu = fo.MuFactor * objL1 / barL1
		} else {
			mu = 1e-4
		}
	}

	const msgProjGrad = "Converged: projected gradient norm below tolerance"

	if ProjectedGradientNorm(x, gx, lower, upper) <= fo.OuterGradTol {
		return finish(0, true, msgProjGrad)
	}

	barrierF := func(xp []float64) float64 {
		bv := BarrierValue(xp, lower, upper)
		if !finite(bv) {
			return math.Inf(1)
		}
		return f(xp) + mu*bv
	}
	barrierG := func(xp []float64) []float64 {
		return AddScaled(gradFn(xp), BarrierGradient(xp, lower, upper), mu)
	}

	for outerIter := 1; outerIter <= fo.OuterIterations; outerIter++ {
		var inner *Result
		switch method {
		case MethodBFGS:
			inner = BFGS(barrierF, x, barrierG, &fo.Inner)
		case MethodConjugateGradient:
			inner = ConjugateGradient(barrierF, x, barrierG, &fo.Inner)
		case MethodGradientDescent:
			inner = GradientDescent(barrierF, x, barrierG, &fo.Inner)
		default:
			inner = LBFGS(barrierF, x, barrierG, &fo.Inner)
		}

		x = inner.X
		for i := 0; i < n; i++ {
			if !math.IsInf(lower[i], 0) {
				x[i] = math.Max(x[i], lower[i]+1e-15)
			}
			if !math.IsInf(upper[i], 0) {
				x[i] = math.Min(x[i], upper[i]-1e-15)
			}
		}

		fx = f(x)
		gx = gradFn(x)
		numEval += inner.FunctionCalls + 1
		numGrad += inner.GradientCalls + 1

		pgn := ProjectedGradientNorm(x, gx, lower, upper)
		log.printIter(outerIter, numEval, numGrad, fx, pgn)

		if pgn <= fo.OuterGradTol {
			return finish(outerIter, true, msgProjGrad)
		}

		mu *= fo.MuFactor
	}

	return finish(fo.OuterIterations, false,
		fmt.Sprintf("Stopped: reached maximum outer iterations (%d)", fo.OuterIterations))
}
