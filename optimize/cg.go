// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"math"
)

// ConjugateGradient minimizes 𝒇(𝐱) with the nonlinear conjugate gradient
// method of Hager and Zhang (CG_DESCENT). Directions are combined with
// the 𝛽ᴴᶻ rule, safeguarded by the η lower bound, and reset to steepest
// descent every n iterations. A nil grad falls back to forward
// differences.
func ConjugateGradient(f Objective, x0 []float64, grad Gradient, opts *Options) *Result {
	return ConjugateGradientFull(f, x0, grad, 0.4, 0, opts)
}

// ConjugateGradientFull exposes the η safeguard and the restart interval
// of ConjugateGradient. A restartInterval of zero restarts every len(x0)
// iterations.
//
// The update rule is
//
//	𝛽ᴴᶻ = (𝐲ᵀ𝐠₊ - 2(𝐲ᵀ𝐲)(𝐝ᵀ𝐠₊)/(𝐝ᵀ𝐲)) / 𝐝ᵀ𝐲
//	𝛽  = 𝚖𝚊𝚡(𝛽ᴴᶻ, -1/(‖𝐝‖·𝚖𝚒𝚗(η,‖𝐠‖)))
//
// with 𝛽 = 0 forced whenever 𝐝ᵀ𝐲 vanishes or the combined direction
// stops being a descent direction.
func ConjugateGradientFull(f Objective, x0 []float64, grad Gradient, eta float64, restartInterval int, opts *Options) *Result {

	o := opts.defaults()
	log := o.Logger.setup()
	gradFn := gradientOr(f, grad)

	n := len(x0)
	if restartInterval <= 0 {
		restartInterval = n
	}

	x := Clone(x0)
	fx := f(x)
	gx := gradFn(x)
	numEval, numGrad := 1, 1

	log.printInit("CG", n)

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

	d := Negate(gx)

	for iteration := 1; ; iteration++ {
		ls := HagerZhang(f, gradFn, x, d, fx, gx, nil)
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

		stepNorm := Norm(Sub(xNew, x))
		funcChange := math.Abs(fx - ls.FNew)

		y := Sub(gNew, gx)
		dy := Dot(d, y)

		var beta float64
		if math.Abs(dy) >= 1e-30 {
			betaHZ := (Dot(y, gNew) - 2*Dot(y, y)*Dot(d, gNew)/dy) / dy
			etaBound := -1 / (Norm(d) * math.Min(eta, Norm(gx)))
			beta = math.Max(betaHZ, etaBound)
		}

		x, fx, gx = xNew, ls.FNew, gNew

		for i := range d {
			d[i] = -gx[i] + beta*d[i]
		}
		if Dot(d, gx) >= 0 {
			copy(d, Negate(gx))
		}
		if iteration%restartInterval == 0 {
			copy(d, Negate(gx))
		}

		log.printIter(iteration, numEval, numGrad, fx, Norm(gx))

		if conv := CheckConvergence(Norm(gx), stepNorm, funcChange, iteration, &o); conv != nil {
			return finish(iteration, conv.Converged, conv.Message)
		}
	}
}
