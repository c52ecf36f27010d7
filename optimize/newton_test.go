// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"strings"
	"testing"
)

func TestNewtonSphereAnalytic(t *testing.T) {
	hess := func(x []float64) [][]float64 {
		return [][]float64{{2, 0}, {0, 2}}
	}
	r := Newton(sphereFn.f, sphereFn.start, sphereFn.grad, hess, nil)
	switch {
	case !r.Converged:
		t.Fatal("TestNewtonSphereAnalytic: Not Converge")
	case r.Fun > 1e-14:
		t.Fatal("TestNewtonSphereAnalytic: Object Too Large")
	case r.Iterations > 2:
		t.Fatal("TestNewtonSphereAnalytic: Too Many Iterations")
	}
}

func TestNewtonBoothAnalytic(t *testing.T) {
	hess := func(x []float64) [][]float64 {
		return [][]float64{{10, 8}, {8, 10}}
	}
	r := Newton(boothFn.f, boothFn.start, boothFn.grad, hess, nil)
	if !r.Converged {
		t.Fatal("TestNewtonBoothAnalytic: Not Converge")
	}
}

func TestNewtonRosenbrockAnalytic(t *testing.T) {
	hess := func(x []float64) [][]float64 {
		h11 := 2 - 400*x[1] + 1200*x[0]*x[0]
		h12 := -400 * x[0]
		return [][]float64{{h11, h12}, {h12, 200}}
	}
	r := Newton(rosenbrockFn.f, rosenbrockFn.start, rosenbrockFn.grad, hess, nil)
	switch {
	case !r.Converged:
		t.Fatal("TestNewtonRosenbrockAnalytic: Not Converge")
	case r.Fun > 1e-10:
		t.Fatal("TestNewtonRosenbrockAnalytic: Object Too Large")
	}
}

// A nil hess falls back to finite differences.
func TestNewtonFiniteDiffHessian(t *testing.T) {
	r := Newton(sphereFn.f, sphereFn.start, sphereFn.grad, nil, nil)
	if !r.Converged {
		t.Fatal("TestNewtonFiniteDiffHessian: Not Converge")
	}
}

func TestNewtonAtMinimum(t *testing.T) {
	r := Newton(sphereFn.f, []float64{0, 0}, sphereFn.grad, nil, nil)
	switch {
	case !r.Converged:
		t.Fatal("TestNewtonAtMinimum: Not Converge")
	case r.Iterations != 0:
		t.Fatal("TestNewtonAtMinimum: Iterated")
	}
}

// An indefinite Hessian is handled by shifting the diagonal.
func TestNewtonSaddleRegularization(t *testing.T) {
	f := func(x []float64) float64 { return x[0]*x[0] - x[1]*x[1] }
	g := func(x []float64) []float64 { return []float64{2 * x[0], -2 * x[1]} }
	h := func(x []float64) [][]float64 {
		return [][]float64{{2, 0}, {0, -2}}
	}
	r := Newton(f, []float64{1, 1}, g, h, nil)
	if r.Iterations == 0 {
		t.Fatal("TestNewtonSaddleRegularization: No Progress")
	}
}

func TestNewtonRegularizationExhausted(t *testing.T) {
	f := func(x []float64) float64 { return x[0]*x[0] - x[1]*x[1] }
	g := func(x []float64) []float64 { return []float64{2 * x[0], -2 * x[1]} }
	h := func(x []float64) [][]float64 {
		return [][]float64{{2, 0}, {0, -2}}
	}
	opts := &NewtonOptions{MaxRegularize: -1}
	r := Newton(f, []float64{1, 1}, g, h, opts)
	switch {
	case r.Converged:
		t.Fatal("TestNewtonRegularizationExhausted: False Convergence")
	case !strings.Contains(r.Message, "regularization failed"):
		t.Fatal("TestNewtonRegularizationExhausted: Bad Message")
	}
}

func TestNewtonOneDim(t *testing.T) {
	f := func(x []float64) float64 { return (x[0] - 3) * (x[0] - 3) }
	g := func(x []float64) []float64 { return []float64{2 * (x[0] - 3)} }
	h := func(x []float64) [][]float64 { return [][]float64{{2}} }
	r := Newton(f, []float64{0}, g, h, nil)
	switch {
	case !r.Converged:
		t.Fatal("TestNewtonOneDim: Not Converge")
	case r.Iterations > 2:
		t.Fatal("TestNewtonOneDim: Too Many Iterations")
	}
}
