// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// BFGS minimizes 𝒇(𝐱) by the Broyden-Fletcher-Goldfarb-Shanno method.
// A dense approximation 𝐇 of the inverse Hessian is carried across
// iterations and refreshed with the rank-two update
//
//	𝐇 ⟵ (𝐈-ρ𝐬𝐲ᵀ)𝐇(𝐈-ρ𝐲𝐬ᵀ) + ρ𝐬𝐬ᵀ  where ρ = 1/𝐲ᵀ𝐬
//
// The search direction d = -𝐇∇𝒇 is kept descending by a strong Wolfe
// line search, and the update is skipped whenever the curvature 𝐲ᵀ𝐬
// is too small to keep 𝐇 positive definite.
//
// The 𝒪(n²) memory cost makes BFGS the method of choice for small and
// medium problems. For large n prefer LBFGS.
// A nil grad falls back to forward differences.
func BFGS(f Objective, x0 []float64, grad Gradient, opts *Options) *Result {

	o := opts.defaults()
	log := o.Logger.setup()
	gradFn := gradientOr(f, grad)

	n := len(x0)
	x := Clone(x0)
	fx := f(x)
	gx := gradFn(x)
	numEval, numGrad := 1, 1

	h := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		h.SetSym(i, i, 1)
	}

	log.printInit("BFGS", n)

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

	hg := make([]float64, n)
	hgVec := mat.NewVecDense(n, hg)

	for iteration := 1; ; iteration++ {
		hgVec.MulVec(h, mat.NewVecDense(n, gx))
		d := Negate(hg)

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
		ys := Dot(y, s)

		stepNorm := Norm(s)
		funcChange := math.Abs(fx - ls.FNew)
		x, fx, gx = xNew, ls.FNew, gNew

		if ys > 1e-10 {
			rho := 1 / ys
			sVec := mat.NewVecDense(n, s)
			yVec := mat.NewVecDense(n, y)
			hy := make([]float64, n)
			hyVec := mat.NewVecDense(n, hy)
			hyVec.MulVec(h, yVec)

			h.RankTwo(h, -rho, sVec, hyVec)
			h.SymRankOne(h, rho*rho*Dot(y, hy)+rho, sVec)
		}

		log.printIter(iteration, numEval, numGrad, fx, Norm(gx))

		if conv := CheckConvergence(Norm(gx), stepNorm, funcChange, iteration, &o); conv != nil {
			return finish(iteration, conv.Converged, conv.Message)
		}
	}
}
