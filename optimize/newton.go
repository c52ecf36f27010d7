// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// NewtonOptions bundles the shared stopping criteria with the
// regularization schedule of the modified Newton method.
// The zero value of each field selects its default.
type NewtonOptions struct {
	Options

	// InitialTau is the first diagonal shift tried when the Hessian
	// is not positive definite (default 1e-8).
	InitialTau float64
	// TauFactor scales the shift after every failed attempt (default 10).
	TauFactor float64
	// MaxRegularize limits the number of shift attempts (default 20).
	// A negative value disables regularization entirely.
	MaxRegularize int
}

func (o *NewtonOptions) defaults() (v NewtonOptions) {
	if o != nil {
		v = *o
	}
	v.Options = v.Options.defaults()
	if v.InitialTau == 0 {
		v.InitialTau = 1e-8
	}
	if v.TauFactor == 0 {
		v.TauFactor = 10
	}
	if v.MaxRegularize == 0 {
		v.MaxRegularize = 20
	} else if v.MaxRegularize < 0 {
		v.MaxRegularize = 0
	}
	return
}

// symFromRows copies the lower triangle of the row slices into a
// symmetric dense matrix.
func symFromRows(h [][]float64) *mat.SymDense {
	n := len(h)
	a := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			a.SetSym(i, j, h[i][j])
		}
	}
	return a
}

// cholSolve solves 𝐀d = b by Cholesky factorization and returns nil
// when 𝐀 is not positive definite.
func cholSolve(a *mat.SymDense, b []float64) []float64 {
	var chol mat.Cholesky
	if !chol.Factorize(a) {
		return nil
	}
	d := make([]float64, len(b))
	if err := chol.SolveVecTo(mat.NewVecDense(len(b), d), mat.NewVecDense(len(b), b)); err != nil {
		if _, cond := err.(mat.Condition); !cond {
			return nil
		}
	}
	return d
}

// Newton minimizes 𝒇(𝐱) with a line-search Newton method. Each step
// solves ∇²𝒇 d = -∇𝒇 by Cholesky factorization. When the Hessian is
// indefinite the system is retried with ∇²𝒇 + τ𝐈 for growing shifts τ,
// and a direction that still points uphill falls back to steepest
// descent before the strong Wolfe search.
//
// A nil grad falls back to forward differences, a nil hess to a
// finite-difference Hessian.
func Newton(f Objective, x0 []float64, grad Gradient, hess Hessian, opts *NewtonOptions) *Result {

	no := opts.defaults()
	o := &no.Options
	log := o.Logger.setup()
	gradFn := gradientOr(f, grad)
	hessFn := hessianOr(f, hess)

	n := len(x0)
	x := Clone(x0)
	fx := f(x)
	gx := gradFn(x)
	numEval, numGrad := 1, 1

	log.printInit("NEWTON", n)

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
		a := symFromRows(hessFn(x))
		negG := Negate(gx)

		d := cholSolve(a, negG)
		if d == nil {
			tau := no.InitialTau
			for k := 0; k < no.MaxRegularize; k++ {
				reg := mat.NewSymDense(n, nil)
				reg.CopySym(a)
				for i := 0; i < n; i++ {
					reg.SetSym(i, i, a.At(i, i)+tau)
				}
				if d = cholSolve(reg, negG); d != nil {
					break
				}
				tau *= no.TauFactor
			}
		}
		if d == nil {
			return finish(iteration, false, "Stopped: regularization failed")
		}
		if Dot(d, gx) >= 0 {
			d = Negate(gx)
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

		stepNorm := Norm(Sub(xNew, x))
		funcChange := math.Abs(fx - ls.FNew)
		x, fx, gx = xNew, ls.FNew, gNew

		log.printIter(iteration, numEval, numGrad, fx, Norm(gx))

		if conv := CheckConvergence(Norm(gx), stepNorm, funcChange, iteration, o); conv != nil {
			return finish(iteration, conv.Converged, conv.Message)
		}
	}
}
