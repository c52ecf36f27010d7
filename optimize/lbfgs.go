// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"math"
)

// Number of correction pairs kept by LBFGS.
const defaultMemory = 10

// twoLoop computes 𝐇ₖ∇𝒇 implicitly from the m most recent correction
// pairs (𝐬ᵢ,𝐲ᵢ) without ever forming 𝐇ₖ. The initial matrix is the
// scaled identity γ𝐈 with γ = 𝐬ᵀ𝐲/𝐲ᵀ𝐲 of the latest pair.
func twoLoop(gx []float64, sHist, yHist [][]float64, rhoHist []float64, gamma float64) []float64 {
	m := len(sHist)
	q := Clone(gx)
	alphas := make([]float64, m)

	for i := m - 1; i >= 0; i-- {
		alphas[i] = rhoHist[i] * Dot(sHist[i], q)
		for j := range q {
			q[j] -= alphas[i] * yHist[i][j]
		}
	}

	r := Scale(q, gamma)

	for i := 0; i < m; i++ {
		beta := rhoHist[i] * Dot(yHist[i], r)
		for j := range r {
			r[j] += (alphas[i] - beta) * sHist[i][j]
		}
	}
	return r
}

// LBFGS minimizes 𝒇(𝐱) with the limited-memory BFGS method, keeping
// only the last 10 correction pairs instead of a dense inverse Hessian.
// Storage and work per iteration are 𝒪(mn), which makes the method
// suitable for large n. A nil grad falls back to forward differences.
func LBFGS(f Objective, x0 []float64, grad Gradient, opts *Options) *Result {
	return LBFGSWithMemory(f, x0, grad, defaultMemory, opts)
}

// LBFGSWithMemory is LBFGS with an explicit history size. A memory of
// zero keeps no curvature pairs at all, reducing every step to steepest
// descent. More memory than the iteration count reproduces full BFGS.
func LBFGSWithMemory(f Objective, x0 []float64, grad Gradient, memory int, opts *Options) *Result {

	o := opts.defaults()
	log := o.Logger.setup()
	gradFn := gradientOr(f, grad)

	x := Clone(x0)
	fx := f(x)
	gx := gradFn(x)
	numEval, numGrad := 1, 1

	log.printInit("L-BFGS", len(x))

	finish := func(iter int, conv bool, msg string) *Result {
		res := &Result{
			X: x, Fun: fx, Gradient: gx,
			Iterations: iter, FunctionCalls: numEval, GradientCalls: numGrad,
			Converged: conv, Message: msg,
		}
		log.printExit(res)
		return res
	}

	if Norm(gx) < o.GradTol {
		return finish(0, true, msgAtMinimum)
	}

	var (
		sHist, yHist [][]float64
		rhoHist      []float64
	)
	gamma := 1.0

	for iteration := 1; ; iteration++ {
		var d []float64
		if len(sHist) == 0 {
			d = Negate(gx)
		} else {
			d = Negate(twoLoop(gx, sHist, yHist, rhoHist, gamma))
		}

		ls := StrongWolfe(f, gradFn, x, d, fx, gx, nil)
		numEval += ls.FunctionCalls
		numGrad += ls.GradientCalls
		log.printSearch(ls.FunctionCalls, ls.Alpha*Norm(d))

		if !ls.Success {
			return finish(iteration, false, msgLineSearch)
		}

		xNew := AddScaled(x, d, ls.Alpha)
		gNew := ls.GNew
		if gNew == nil {
			gNew = gradFn(xNew)
			numGrad++
		}

		s := Sub(xNew, x)
		y := Sub(gNew, gx)
		ys := Dot(s, y)

		stepNorm := Norm(s)
		funcChange := math.Abs(fx - ls.FNew)
		x, fx, gx = xNew, ls.FNew, gNew

		if ys > 1e-10 && memory > 0 {
			if len(sHist) >= memory {
				sHist, yHist, rhoHist = sHist[1:], yHist[1:], rhoHist[1:]
			}
			sHist = append(sHist, s)
			yHist = append(yHist, y)
			rhoHist = append(rhoHist, 1/ys)
			gamma = ys / Dot(y, y)
		}

		log.printIter(iteration, numEval, numGrad, fx, Norm(gx))

		if conv := CheckConvergence(Norm(gx), stepNorm, funcChange, iteration, &o); conv != nil {
			return finish(iteration, conv.Converged, conv.Message)
		}
	}
}
