// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"math"
)

// MoreThuenteOptions specifies the More-Thuente search.
// The zero value of each field selects its default.
type MoreThuenteOptions struct {
	FTol     float64 // Sufficient decrease tolerance (default 1e-4).
	GTol     float64 // Curvature tolerance (default 0.9).
	XTol     float64 // Relative width tolerance of the bracket (default 1e-8).
	AlphaMin float64 // Step lower bound (default 1e-16).
	AlphaMax float64 // Step upper bound (default 65536).
	MaxFev   int     // Function evaluation limit (default 100).
}

func (o *MoreThuenteOptions) defaults() (v MoreThuenteOptions) {
	v = MoreThuenteOptions{
		FTol: 1e-4, GTol: 0.9, XTol: 1e-8,
		AlphaMin: 1e-16, AlphaMax: 65536.0, MaxFev: 100,
	}
	if o == nil {
		return
	}
	if o.FTol > 0 {
		v.FTol = o.FTol
	}
	if o.GTol > 0 {
		v.GTol = o.GTol
	}
	if o.XTol > 0 {
		v.XTol = o.XTol
	}
	if o.AlphaMin > 0 {
		v.AlphaMin = o.AlphaMin
	}
	if o.AlphaMax > 0 {
		v.AlphaMax = o.AlphaMax
	}
	if o.MaxFev > 0 {
		v.MaxFev = o.MaxFev
	}
	return
}

// MoreThuente performs a line search along d that finds a step λ satisfying:
//   - sufficient decrease condition: f(λ) ≤ f(0) + 𝚏𝚝𝚘𝚕·λ·f′(0)
//   - curvature condition: |f′(λ)| ≤ 𝚐𝚝𝚘𝚕·|f′(0)|
//
// Each iteration updates an interval with endpoints stx and sty chosen so
// that it contains a minimizer of the modified function:
//
//	ψ(λ) = f(λ) - f(0) - 𝚏𝚝𝚘𝚕·λ·f′(0)
//
// If ψ(λ) ≤ 0 and f′(λ) ≥ 0 for some step, the interval is chosen so that
// it contains a minimizer of f itself, and trial steps come from cubic and
// quadratic interpolation of the endpoints (Moré & Thuente, TOMS 20, 1994).
//
// When the search stops on a limit rather than on both conditions, the
// returned step only satisfies the sufficient decrease condition and
// Success is false. A non-finite first trial value is recovered by halving
// the step up to 50 times.
func MoreThuente(f Objective, grad Gradient, x, d []float64, fx float64, gx []float64, opts *MoreThuenteOptions) LineSearchResult {

	o := opts.defaults()
	dphi0 := Dot(gx, d)
	numEval, numGrad := 0, 0

	eval := func(alpha float64) (float64, float64, []float64) {
		xNew := AddScaled(x, d, alpha)
		phi := f(xNew)
		g := grad(xNew)
		numEval++
		numGrad++
		return phi, Dot(g, d), g
	}

	bracket := false
	stage1 := true
	dgTest := o.FTol * dphi0

	stx, fstx, dgx := 0.0, fx, dphi0
	sty, fsty, dgy := 0.0, fx, dphi0

	width := o.AlphaMax - o.AlphaMin
	width1 := 2 * width

	alpha := math.Max(o.AlphaMin, math.Min(1.0, o.AlphaMax))
	fAlpha, dgAlpha, gAlpha := eval(alpha)

	// Back off from a region where the function is not finite.
	for k := 0; k < 50 && !(finite(fAlpha) && finite(dgAlpha)); k++ {
		alpha /= 2
		fAlpha, dgAlpha, gAlpha = eval(alpha)
		stx = 0.875 * alpha
	}

	csInfo, info := 1, 0

	for {

		var stpMin, stpMax float64
		if bracket {
			stpMin, stpMax = math.Min(stx, sty), math.Max(stx, sty)
		} else {
			stpMin, stpMax = stx, alpha+4*(alpha-stx)
		}
		stpMin = math.Max(stpMin, o.AlphaMin)
		stpMax = math.Min(stpMax, o.AlphaMax)

		alpha = math.Min(math.Max(alpha, o.AlphaMin), o.AlphaMax)

		// When no further progress is possible let the step fall back
		// to the best point obtained so far.
		if (bracket && (alpha <= stpMin || alpha >= stpMax)) ||
			numEval >= o.MaxFev-1 || csInfo == 0 ||
			(bracket && stpMax-stpMin <= o.XTol*stpMax) {
			alpha = stx
		}

		fAlpha, dgAlpha, gAlpha = eval(alpha)
		fTest := fx + alpha*dgTest

		// The last matching code wins, so the Wolfe test dominates.
		if bracket && (alpha <= stpMin || alpha >= stpMax) || csInfo == 0 {
			info = 6 // rounding errors prevent progress
		}
		if alpha == o.AlphaMax && fAlpha <= fTest && dgAlpha <= dgTest {
			info = 5 // the step reached the upper bound
		}
		if alpha == o.AlphaMin && (fAlpha > fTest || dgAlpha >= dgTest) {
			info = 4 // the step reached the lower bound
		}
		if numEval >= o.MaxFev {
			info = 3 // number of calls reached maxfev
		}
		if bracket && stpMax-stpMin <= o.XTol*stpMax {
			info = 2 // bracket width below xtol
		}
		if fAlpha <= fTest && math.Abs(dgAlpha) <= -o.GTol*dphi0 {
			info = 1 // strong Wolfe conditions hold
		}
		if info != 0 {
			break
		}

		if stage1 && fAlpha <= fTest && dgAlpha >= math.Min(o.FTol, o.GTol)*dphi0 {
			stage1 = false
		}

		// In the first stage the modified function ψ drives the update
		// whenever there has been no decrease below the Armijo line.
		if stage1 && fAlpha <= fstx && fAlpha > fTest {
			fm := fAlpha - alpha*dgTest
			fxm := fstx - stx*dgTest
			fym := fsty - sty*dgTest
			dgm := dgAlpha - dgTest
			dgxm := dgx - dgTest
			dgym := dgy - dgTest
			csInfo = scalarStep(&stx, &fxm, &dgxm, &sty, &fym, &dgym, &alpha, fm, dgm, &bracket, [2]float64{stpMin, stpMax})
			fstx = fxm + stx*dgTest
			fsty = fym + sty*dgTest
			dgx = dgxm + dgTest
			dgy = dgym + dgTest
		} else {
			csInfo = scalarStep(&stx, &fstx, &dgx, &sty, &fsty, &dgy, &alpha, fAlpha, dgAlpha, &bracket, [2]float64{stpMin, stpMax})
		}

		// Force a bisection step when the bracket decays too slowly.
		if bracket {
			if math.Abs(sty-stx) >= (2.0/3.0)*width1 {
				alpha = stx + (sty-stx)/2
			}
			width1 = width
			width = math.Abs(sty - stx)
		}
	}

	return LineSearchResult{
		Alpha: alpha, FNew: fAlpha, GNew: gAlpha,
		FunctionCalls: numEval, GradientCalls: numGrad,
		Success: info == 1,
	}
}

// scalarStep (dcstep) computes a safeguarded step for a search procedure
// and updates the interval [stx, sty] that contains a step satisfying the
// sufficient decrease condition.
//
// The parameter stx contains the step with the least function value and
// stp the current step. The derivative dx must be negative in the
// direction of the step, that is, dx and stp - stx must have opposite
// signs. On exit stp holds the new trial step, bracket reports whether a
// minimizer has been bracketed and info identifies the interpolation case.
func scalarStep(
	stx, fx, dx *float64,
	sty, fy, dy *float64,
	stp *float64, fp, dp float64,
	bracket *bool, bound [2]float64) (info int) {

	var gamma, p, q, r, s, sgnd, stpc, stpf, stpq, theta float64

	stpMin, stpMax := bound[0], bound[1]
	sgnd = dp * (*dx / math.Abs(*dx))

	bnd := false
	if fp > *fx {
		// First case: A higher function value. The minimum is bracketed.
		// If the cubic step is closer to stx than the quadratic step, the cubic step is taken,
		// otherwise the average of the cubic and quadratic steps is taken.
		info, bnd = 1, true
		theta = 3*(*fx-fp)/(*stp-*stx) + *dx + dp
		s = math.Max(math.Max(math.Abs(theta), math.Abs(*dx)), math.Abs(dp))
		gamma = s * math.Sqrt((theta/s)*(theta/s)-(*dx/s)*(dp/s))
		if *stp < *stx {
			gamma = -gamma
		}
		p = (gamma - *dx) + theta
		q = ((gamma - *dx) + gamma) + dp
		r = p / q
		stpc = *stx + r*(*stp-*stx)
		stpq = *stx + ((*dx/((*fx-fp)/(*stp-*stx)+*dx))/2)*(*stp-*stx)
		if math.Abs(stpc-*stx) < math.Abs(stpq-*stx) {
			stpf = stpc
		} else {
			stpf = stpc + (stpq-stpc)/2
		}
		*bracket = true
	} else if sgnd < 0 {
		// Second case: A lower function value and derivatives of opposite sign.
		// The minimum is bracketed.
		// If the cubic step is farther from stp than the secant step, the cubic step is taken,
		// otherwise the secant step is taken.
		info = 2
		theta = 3*(*fx-fp)/(*stp-*stx) + *dx + dp
		s = math.Max(math.Max(math.Abs(theta), math.Abs(*dx)), math.Abs(dp))
		gamma = s * math.Sqrt((theta/s)*(theta/s)-(*dx/s)*(dp/s))
		if *stp > *stx {
			gamma = -gamma
		}
		p = (gamma - dp) + theta
		q = ((gamma - dp) + gamma) + *dx
		r = p / q
		stpc = *stp + r*(*stx-*stp)
		stpq = *stp + (dp/(dp-*dx))*(*stx-*stp)
		if math.Abs(stpc-*stp) > math.Abs(stpq-*stp) {
			stpf = stpc
		} else {
			stpf = stpq
		}
		*bracket = true
	} else if math.Abs(dp) < math.Abs(*dx) {
		// Third case: A lower function value, derivatives of the same sign,
		// and the magnitude of the derivative decreases.
		// The cubic step is computed only if either:
		//   - the cubic tends to infinity in the direction of the step
		//   - the minimum of the cubic is beyond stp.
		// Otherwise the cubic step is defined to be the secant step.
		info, bnd = 3, true
		theta = 3*(*fx-fp)/(*stp-*stx) + *dx + dp
		s = math.Max(math.Max(math.Abs(theta), math.Abs(*dx)), math.Abs(dp))
		// The case gamma = 0 only arises if the cubic does not tend to infinity
		// in the direction of the step.
		gamma = s * math.Sqrt(math.Max((theta/s)*(theta/s)-(*dx/s)*(dp/s), 0))
		if *stp > *stx {
			gamma = -gamma
		}
		p = (gamma - dp) + theta
		q = (gamma + (*dx - dp)) + gamma
		r = p / q
		if r < 0 && gamma != 0 {
			stpc = *stp + r*(*stx-*stp)
		} else if *stp > *stx {
			stpc = stpMax
		} else {
			stpc = stpMin
		}
		stpq = *stp + (dp/(dp-*dx))*(*stx-*stp)
		if *bracket {
			if math.Abs(stpc-*stp) < math.Abs(stpq-*stp) {
				stpf = stpc
			} else {
				stpf = stpq
			}
		} else {
			if math.Abs(stpc-*stp) > math.Abs(stpq-*stp) {
				stpf = stpc
			} else {
				stpf = stpq
			}
		}
	} else {
		// Fourth case: A lower function value, derivatives of the same sign,
		// and the magnitude of the derivative does not decrease.
		// If the minimum is not bracketed, the step is either stpmin or stpmax,
		// otherwise the cubic step is taken.
		info = 4
		if *bracket {
			theta = 3*(fp-*fy)/(*sty-*stp) + *dy + dp
			s = math.Max(math.Max(math.Abs(theta), math.Abs(*dy)), math.Abs(dp))
			gamma = s * math.Sqrt((theta/s)*(theta/s)-(*dy/s)*(dp/s))
			if *stp > *sty {
				gamma = -gamma
			}
			p = (gamma - dp) + theta
			q = ((gamma - dp) + gamma) + *dy
			r = p / q
			stpc = *stp + r*(*sty-*stp)
			stpf = stpc
		} else if *stp > *stx {
			stpf = stpMax
		} else {
			stpf = stpMin
		}
	}

	// Update the interval which contains a minimizer.
	if fp > *fx {
		*sty = *stp
		*fy = fp
		*dy = dp
	} else {
		if sgnd < 0 {
			*sty = *stx
			*fy = *fx
			*dy = *dx
		}
		*stx = *stp
		*fx = fp
		*dx = dp
	}

	// Compute the new safeguarded step.
	stpf = math.Max(math.Min(stpf, stpMax), stpMin)
	if *bracket && bnd {
		if *sty > *stx {
			stpf = math.Min(*stx+(2.0/3.0)*(*sty-*stx), stpf)
		} else {
			stpf = math.Max(*stx+(2.0/3.0)*(*sty-*stx), stpf)
		}
	}
	*stp = stpf
	return
}
