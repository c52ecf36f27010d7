// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"math"
)

// GradientDescent minimizes 𝒇(𝐱) by steepest descent with an Armijo
// backtracking line search. A nil grad falls back to forward differences.
//
// The method only needs first derivatives and one n-vector of state, at
// the cost of a linear convergence rate. Every iteration moves along
// d = -∇𝒇 and the shared criteria decide when to stop.
func GradientDescent(f Objective, x0 []float64, grad Gradient, opts *Options) *Result {

	o := opts.defaults()
	log := o.Logger.setup()
	gradFn := gradientOr(f, grad)

	x := Clone(x0)
	fx := f(x)
	gx := gradFn(x)
	numEval, numGrad := 1, 1

	log.printInit("GRADIENT DESCENT", len(x))

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

	for iteration := 1; ; iteration++ {
		d := Negate(gx)

		ls := Backtracking(f, x, d, fx, gx, nil)
		numEval += ls.FunctionCalls
		log.printSearch(ls.FunctionCalls, ls.Alpha*Norm(d))

		if !ls.Success {
			return finish(iteration, false, msgLineSearch)
		}

		xNew := AddScaled(x, d, ls.Alpha)
		stepNorm := Norm(Sub(xNew, x))
		funcChange := math.Abs(fx - ls.FNew)

		x, fx = xNew, ls.FNew
		gx = gradFn(x)
		numGrad++

		log.printIter(iteration, numEval, numGrad, fx, Norm(gx))

		if conv := CheckConvergence(Norm(gx), stepNorm, funcChange, iteration, &o); conv != nil {
			return finish(iteration, conv.Converged, conv.Message)
		}
	}
}
