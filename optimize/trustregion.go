// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"fmt"
	"math"
)

// TrustRegionOptions bundles the shared stopping criteria with the
// radius schedule of the dogleg trust region method.
// The zero value of each field selects its default.
type TrustRegionOptions struct {
	Options

	// InitialDelta is the starting trust region radius (default 1).
	InitialDelta float64
	// MaxDelta caps the radius (default 100).
	MaxDelta float64
	// Eta is the acceptance threshold for the reduction ratio ρ
	// (default 0.1).
	Eta float64
}

func (o *TrustRegionOptions) defaults() (v TrustRegionOptions) {
	if o != nil {
		v = *o
	}
	v.Options = v.Options.defaults()
	if v.InitialDelta == 0 {
		v.InitialDelta = 1
	}
	if v.MaxDelta == 0 {
		v.MaxDelta = 100
	}
	if v.Eta == 0 {
		v.Eta = 0.1
	}
	return
}

func matVec(h [][]float64, v []float64) []float64 {
	r := make([]float64, len(h))
	for i, row := range h {
		r[i] = Dot(row, v)
	}
	return r
}

// doglegStep approximately minimizes the quadratic model
// 𝐠ᵀ𝐩 + ½𝐩ᵀ𝐇𝐩 subject to ‖𝐩‖ ≤ Δ along the dogleg path.
// The path runs from the Cauchy point to the Newton point, falling back
// to a boundary step along -𝐠 under negative curvature and to the plain
// Cauchy point when the Newton system cannot be factorized.
func doglegStep(g []float64, h [][]float64, delta float64) []float64 {
	gNorm := Norm(g)

	gHg := Dot(g, matVec(h, g))
	if gHg <= 0 {
		return Scale(g, -delta/gNorm)
	}

	pc := Scale(g, -gNorm*gNorm/gHg)
	if Norm(pc) >= delta {
		return Scale(g, -delta/gNorm)
	}

	pn := cholSolve(symFromRows(h), Negate(g))
	if pn == nil {
		return pc
	}
	if Norm(pn) <= delta {
		return pn
	}

	// Solve ‖pC + τ(pN-pC)‖ = Δ for τ ∈ [0,1].
	diff := Sub(pn, pc)
	a := Dot(diff, diff)
	b := 2 * Dot(pc, diff)
	c := Dot(pc, pc) - delta*delta
	disc := b*b - 4*a*c
	if disc < 0 || a <= 0 {
		return pc
	}
	tau := math.Min(math.Max((-b+math.Sqrt(disc))/(2*a), 0), 1)
	return AddScaled(pc, diff, tau)
}

// NewtonTrustRegion minimizes 𝒇(𝐱) with a dogleg trust region method.
// Each iteration minimizes the local quadratic model inside a ball of
// radius Δ, compares the predicted against the actual reduction, and
// grows or shrinks Δ accordingly. Steps whose reduction ratio stays
// below η are rejected without moving the iterate.
//
// A nil grad falls back to forward differences, a nil hess to a
// finite-difference Hessian.
func NewtonTrustRegion(f Objective, x0 []float64, grad Gradient, hess Hessian, opts *TrustRegionOptions) *Result {

	tro := opts.defaults()
	o := &tro.Options
	log := o.Logger.setup()
	gradFn := gradientOr(f, grad)
	hessFn := hessianOr(f, hess)

	x := Clone(x0)
	fx := f(x)
	gx := gradFn(x)
	numEval, numGrad := 1, 1
	delta := tro.InitialDelta

	log.printInit("NEWTON TRUST REGION", len(x))

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
		hm := hessFn(x)
		p := doglegStep(gx, hm, delta)
		pNorm := Norm(p)

		xTrial := Add(x, p)
		fTrial := f(xTrial)
		numEval++

		predicted := -(Dot(gx, p) + 0.5*Dot(p, matVec(hm, p)))
		actual := fx - fTrial

		rho := 0.0
		if math.Abs(predicted) >= 1e-25 {
			rho = actual / predicted
		}

		if rho < 0.25 {
			delta = 0.25 * pNorm
		} else if rho > 0.75 && pNorm >= 0.99*delta {
			delta = math.Min(2*delta, tro.MaxDelta)
		}

		if rho > tro.Eta {
			stepNorm := Norm(Sub(xTrial, x))
			funcChange := math.Abs(fx - fTrial)

			x, fx = xTrial, fTrial
			gx = gradFn(x)
			numGrad++

			log.printIter(iteration, numEval, numGrad, fx, Norm(gx))

			if conv := CheckConvergence(Norm(gx), stepNorm, funcChange, iteration, o); conv != nil {
				return finish(iteration, conv.Converged, conv.Message)
			}
		} else {
			if delta < 1e-15 {
				return finish(iteration, false, "Stopped: trust region radius below minimum")
			}
			if iteration >= o.MaxIterations {
				return finish(iteration, false,
					fmt.Sprintf("Stopped: reached maximum iterations (%d)", iteration))
			}
		}
	}
}
