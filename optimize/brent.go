// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"math"
)

// BrentOptions controls the scalar minimizer.
// The zero value of each field selects its default.
type BrentOptions struct {
	// Tol is the relative width tolerance (default √𝛆).
	Tol float64
	// MaxIter limits the number of refinement steps (default 500).
	MaxIter int
}

func (o *BrentOptions) defaults() (v BrentOptions) {
	if o != nil {
		v = *o
	}
	if v.Tol == 0 {
		v.Tol = math.Sqrt(epsmch)
	}
	if v.MaxIter == 0 {
		v.MaxIter = 500
	}
	return
}

// BrentResult reports the outcome of a scalar minimization.
type BrentResult struct {
	X             float64
	Fun           float64
	Iterations    int
	FunctionCalls int
	Converged     bool
	Message       string
}

// golden is (3-√5)/2, the fraction kept by a golden section step.
const golden = 0.3819660112501051

// Brent minimizes a univariate 𝒇 over the bracket [a,b] with Brent's
// method, combining parabolic interpolation through the three best
// points with golden section fallback steps. No derivatives are used
// and the bracket endpoints may be given in either order.
func Brent(f func(x float64) float64, a, b float64, opts *BrentOptions) *BrentResult {

	o := opts.defaults()
	a, b = math.Min(a, b), math.Max(a, b)

	numEval := 0
	eval := func(x float64) float64 {
		numEval++
		return f(x)
	}

	x := a + golden*(b-a)
	fx := eval(x)
	w, fw := x, fx
	v, fv := x, fx

	d, e := 0.0, 0.0

	for iter := 0; iter < o.MaxIter; iter++ {
		mid := 0.5 * (a + b)
		tol1 := o.Tol*math.Abs(x) + 1e-10
		tol2 := 2 * tol1

		if math.Abs(x-mid) <= tol2-0.5*(b-a) {
			return &BrentResult{
				X: x, Fun: fx,
				Iterations: iter, FunctionCalls: numEval,
				Converged: true, Message: "Converged",
			}
		}

		useGolden := true
		if math.Abs(e) > tol1 {
			// Fit a parabola through (v,fv), (w,fw), (x,fx).
			r := (x - w) * (fx - fv)
			q := (x - v) * (fx - fw)
			p := (x-v)*q - (x-w)*r
			q = 2 * (q - r)
			if q > 0 {
				p = -p
			} else {
				q = -q
			}

			if math.Abs(p) < math.Abs(0.5*q*e) && p > q*(a-x) && p < q*(b-x) {
				d = p / q
				u := x + d
				if u-a < tol2 || b-u < tol2 {
					if x < mid {
						d = tol1
					} else {
						d = -tol1
					}
				}
				useGolden = false
			}
		}

		if useGolden {
			if x < mid {
				e = b - x
			} else {
				e = a - x
			}
			d = golden * e
		} else {
			e = d
		}

		// Never probe closer than tol1 to the current best.
		var u float64
		if math.Abs(d) >= tol1 {
			u = x + d
		} else if d > 0 {
			u = x + tol1
		} else {
			u = x - tol1
		}
		fu := eval(u)

		if fu <= fx {
			if u < x {
				b = x
			} else {
				a = x
			}
			v, fv = w, fw
			w, fw = x, fx
			x, fx = u, fu
		} else {
			if u < x {
				a = u
			} else {
				b = u
			}
			if fu <= fw || w == x {
				v, fv = w, fw
				w, fw = u, fu
			} else if fu <= fv || v == x || v == w {
				v, fv = u, fu
			}
		}
	}

	return &BrentResult{
		X: x, Fun: fx,
		Iterations: o.MaxIter, FunctionCalls: numEval,
		Converged: false, Message: "Maximum iterations exceeded",
	}
}
