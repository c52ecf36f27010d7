// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"math"
	"reflect"
)

// Classical benchmark functions with analytic gradients.
// Case Sources : https://www.sfu.ca/~ssurjano/optimization.html

type testFn struct {
	f      Objective
	grad   Gradient
	minAt  []float64
	minVal float64
	start  []float64
}

var sphereFn = testFn{
	f: func(x []float64) float64 { return x[0]*x[0] + x[1]*x[1] },
	grad: func(x []float64) []float64 {
		return []float64{2 * x[0], 2 * x[1]}
	},
	minAt: []float64{0, 0}, minVal: 0,
	start: []float64{5, 5},
}

var boothFn = testFn{
	f: func(x []float64) float64 {
		a := x[0] + 2*x[1] - 7
		b := 2*x[0] + x[1] - 5
		return a*a + b*b
	},
	grad: func(x []float64) []float64 {
		a := x[0] + 2*x[1] - 7
		b := 2*x[0] + x[1] - 5
		return []float64{2*a + 4*b, 4*a + 2*b}
	},
	minAt: []float64{1, 3}, minVal: 0,
	start: []float64{0, 0},
}

var rosenbrockFn = testFn{
	f: func(x []float64) float64 {
		a := 1 - x[0]
		b := x[1] - x[0]*x[0]
		return a*a + 100*b*b
	},
	grad: func(x []float64) []float64 {
		return []float64{
			-2*(1-x[0]) - 400*x[0]*(x[1]-x[0]*x[0]),
			200 * (x[1] - x[0]*x[0]),
		}
	},
	minAt: []float64{1, 1}, minVal: 0,
	start: []float64{-1.2, 1},
}

var bealeFn = testFn{
	f: func(x []float64) float64 {
		a := 1.5 - x[0] + x[0]*x[1]
		b := 2.25 - x[0] + x[0]*x[1]*x[1]
		c := 2.625 - x[0] + x[0]*x[1]*x[1]*x[1]
		return a*a + b*b + c*c
	},
	grad: func(x []float64) []float64 {
		y := x[1]
		y2, y3 := y*y, y*y*y
		a := 1.5 - x[0] + x[0]*y
		b := 2.25 - x[0] + x[0]*y2
		c := 2.625 - x[0] + x[0]*y3
		return []float64{
			2*a*(y-1) + 2*b*(y2-1) + 2*c*(y3-1),
			2*a*x[0] + 2*b*2*x[0]*y + 2*c*3*x[0]*y2,
		}
	},
	minAt: []float64{3, 0.5}, minVal: 0,
	start: []float64{0, 0},
}

var himmelblauFn = testFn{
	f: func(x []float64) float64 {
		a := x[0]*x[0] + x[1] - 11
		b := x[0] + x[1]*x[1] - 7
		return a*a + b*b
	},
	grad: func(x []float64) []float64 {
		a := x[0]*x[0] + x[1] - 11
		b := x[0] + x[1]*x[1] - 7
		return []float64{4*x[0]*a + 2*b, 2*a + 4*x[1]*b}
	},
	minAt: []float64{3, 2}, minVal: 0,
	start: []float64{0, 0},
}

var goldsteinFn = testFn{
	f: func(x []float64) float64 {
		x1, x2 := x[0], x[1]
		a := 1 + (x1+x2+1)*(x1+x2+1)*
			(19-14*x1+3*x1*x1-14*x2+6*x1*x2+3*x2*x2)
		b := 30 + (2*x1-3*x2)*(2*x1-3*x2)*
			(18-32*x1+12*x1*x1+48*x2-36*x1*x2+27*x2*x2)
		return a * b
	},
	grad: func(x []float64) []float64 {
		x1, x2 := x[0], x[1]
		s := x1 + x2 + 1
		q := 19 - 14*x1 + 3*x1*x1 - 14*x2 + 6*x1*x2 + 3*x2*x2
		a := 1 + s*s*q
		u := 2*x1 - 3*x2
		r := 18 - 32*x1 + 12*x1*x1 + 48*x2 - 36*x1*x2 + 27*x2*x2
		b := 30 + u*u*r

		dq := -14 + 6*x1 + 6*x2
		daDx1 := 2*s*q + s*s*dq
		daDx2 := 2*s*q + s*s*dq

		drDx1 := -32 + 24*x1 - 36*x2
		drDx2 := 48 - 36*x1 + 54*x2
		dbDx1 := 2*u*2*r + u*u*drDx1
		dbDx2 := 2*u*(-3)*r + u*u*drDx2

		return []float64{daDx1*b + a*dbDx1, daDx2*b + a*dbDx2}
	},
	minAt: []float64{0, -1}, minVal: 3,
	start: []float64{0, -0.5},
}

func almostEqual[T float64 | []float64](a, b T, tol float64) bool {
	equalWithinAbs := func(a, b float64) bool {
		return a == b || math.Abs(a-b) <= tol
	}
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Float64:
		return equalWithinAbs(any(a).(float64), any(b).(float64))
	case reflect.Slice:
		a, b := any(a).([]float64), any(b).([]float64)
		if len(a) != len(b) {
			return false
		}
		for i, a := range a {
			if !equalWithinAbs(a, b[i]) {
				return false
			}
		}
		return true
	default:
		panic("unknown type")
	}
}
