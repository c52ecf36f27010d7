// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"fmt"
	"math"

	"github.com/curioloop/minimize/numdiff"
)

// KrylovTrustRegionOptions bundles the shared stopping criteria with
// the radius schedule of the matrix-free trust region method.
// The zero value of each field selects its default.
type KrylovTrustRegionOptions struct {
	Options

	// InitialRadius is the starting trust region radius (default 1).
	InitialRadius float64
	// MaxRadius caps the radius (default 100).
	MaxRadius float64
	// Eta is the acceptance threshold for the reduction ratio ρ
	// (default 0.1).
	Eta float64
	// RhoLower shrinks the radius when ρ falls below it (default 0.25).
	RhoLower float64
	// RhoUpper expands the radius when ρ exceeds it on a boundary
	// step (default 0.75).
	RhoUpper float64
	// CGTol is the relative residual tolerance of the inner CG
	// iteration (default 0.01).
	CGTol float64
}

func (o *KrylovTrustRegionOptions) defaults() (v KrylovTrustRegionOptions) {
	if o != nil {
		v = *o
	}
	v.Options = v.Options.defaults()
	if v.InitialRadius == 0 {
		v.InitialRadius = 1
	}
	if v.MaxRadius == 0 {
		v.MaxRadius = 100
	}
	if v.Eta == 0 {
		v.Eta = 0.1
	}
	if v.RhoLower == 0 {
		v.RhoLower = 0.25
	}
	if v.RhoUpper == 0 {
		v.RhoUpper = 0.75
	}
	if v.CGTol == 0 {
		v.CGTol = 0.01
	}
	return
}

type steihaugResult struct {
	s          []float64
	mDecrease  float64
	onBoundary bool
	gradCalls  int
}

// boundaryTau solves ‖z + τd‖ = radius for the positive root τ.
func boundaryTau(z, d []float64, radius float64) float64 {
	a := Dot(d, d)
	b := 2 * Dot(z, d)
	c := Dot(z, z) - radius*radius
	disc := math.Max(b*b-4*a*c, 0)
	return (-b + math.Sqrt(disc)) / (2 * a)
}

// steihaugCG approximately solves the trust region subproblem
// 𝚖𝚒𝚗 𝐠ᵀ𝐬 + ½𝐬ᵀ𝐇𝐬, ‖𝐬‖ ≤ radius by truncated conjugate gradients.
// The Hessian only enters through finite-difference products 𝐇𝐯, one
// extra gradient evaluation each. The iteration stops at the boundary
// on negative curvature or an overlong step, and inside the region
// when the residual drops below the relative tolerance.
func steihaugCG(gradFn Gradient, x, gx []float64, radius, cgTol float64) steihaugResult {
	n := len(x)
	z := Zeros(n)
	r := Clone(gx)
	d := Negate(r)
	tolSq := cgTol * cgTol * Dot(r, r)

	grads := 0
	hvp := func(v []float64) []float64 {
		grads++
		return numdiff.HessianProduct(gradFn, x, v, gx)
	}
	model := func(s []float64) float64 {
		m := Dot(gx, s)
		if Norm(s) > 0 {
			m += 0.5 * Dot(s, hvp(s))
		}
		return m
	}

	for cgIter := 0; cgIter < n; cgIter++ {
		hd := hvp(d)
		dHd := Dot(d, hd)

		if dHd < 0 {
			s := AddScaled(z, d, boundaryTau(z, d, radius))
			return steihaugResult{s, model(s), true, grads}
		}
		if math.Abs(dHd) < 1e-15 {
			return steihaugResult{z, model(z), false, grads}
		}

		alpha := Dot(r, r) / dHd
		zNew := AddScaled(z, d, alpha)
		if Norm(zNew) >= radius {
			s := AddScaled(z, d, boundaryTau(z, d, radius))
			return steihaugResult{s, model(s), true, grads}
		}

		z = zNew
		rOldSq := Dot(r, r)
		for i := range r {
			r[i] += alpha * hd[i]
		}
		rNewSq := Dot(r, r)

		if rNewSq < tolSq {
			return steihaugResult{z, model(z), false, grads}
		}

		beta := rNewSq / rOldSq
		for i := range d {
			d[i] = -r[i] + beta*d[i]
		}
	}

	return steihaugResult{z, model(z), false, grads}
}

// KrylovTrustRegion minimizes 𝒇(𝐱) with a trust region method whose
// subproblem is solved by the Steihaug-Toint truncated CG iteration.
// No Hessian matrix is ever formed, so the method scales to large n
// while retaining second-order convergence near the solution.
// A nil grad falls back to forward differences.
func KrylovTrustRegion(f Objective, x0 []float64, grad Gradient, opts *KrylovTrustRegionOptions) *Result {

	ko := opts.defaults()
	o := &ko.Options
	log := o.Logger.setup()
	gradFn := gradientOr(f, grad)

	x := Clone(x0)
	fx := f(x)
	gx := gradFn(x)
	numEval, numGrad := 1, 1
	radius := ko.InitialRadius

	log.printInit("KRYLOV TRUST REGION", len(x))

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
		cg := steihaugCG(gradFn, x, gx, radius, ko.CGTol)
		numGrad += cg.gradCalls

		xTrial := Add(x, cg.s)
		fTrial := f(xTrial)
		numEval++

		actual := fx - fTrial
		predicted := -cg.mDecrease

		rho := 0.0
		if math.Abs(predicted) >= 1e-25 {
			rho = actual / predicted
		}

		if rho < ko.RhoLower {
			radius *= 0.25
		} else if rho > ko.RhoUpper && cg.onBoundary {
			radius = math.Min(2*radius, ko.MaxRadius)
		}

		if rho > ko.Eta {
			stepNorm := Norm(cg.s)
			funcChange := math.Abs(fx - fTrial)

			x, fx = xTrial, fTrial
			gx = gradFn(x)
			numGrad++

			log.printIter(iteration, numEval, numGrad, fx, Norm(gx))

			if conv := CheckConvergence(Norm(gx), stepNorm, funcChange, iteration, o); conv != nil {
				return finish(iteration, conv.Converged, conv.Message)
			}
		} else {
			if radius < 1e-15 {
				return finish(iteration, false, "Stopped: trust region radius below minimum")
			}
			if iteration >= o.MaxIterations {
				return finish(iteration, false,
					fmt.Sprintf("Stopped: reached maximum iterations (%d)", iteration))
			}
		}
	}
}
