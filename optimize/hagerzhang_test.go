// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"math"
	"testing"
)

// On a quadratic the very first trial step of the CG variant is exact.
func TestHagerZhangExactStep(t *testing.T) {
	x := []float64{0.5, 0.5}
	gx := sphereFn.grad(x)
	d := Negate(gx)
	fx := sphereFn.f(x)

	r := HagerZhang(sphereFn.f, sphereFn.grad, x, d, fx, gx, nil)
	switch {
	case !r.Success:
		t.Fatal("TestHagerZhangExactStep: Not Success")
	case math.Abs(r.Alpha-1) > 1e-6 && r.FNew > 1e-10:
		t.Fatal("TestHagerZhangExactStep: Inexact Step")
	}
}

func TestHagerZhangSteepest(t *testing.T) {
	x := []float64{5, 5}
	gx := sphereFn.grad(x)
	d := Negate(gx)
	fx := sphereFn.f(x)

	r := HagerZhang(sphereFn.f, sphereFn.grad, x, d, fx, gx, nil)
	switch {
	case !r.Success:
		t.Fatal("TestHagerZhangSteepest: Not Success")
	case r.FNew >= 1:
		t.Fatal("TestHagerZhangSteepest: Poor Step")
	}
}

func TestHagerZhangRosenbrock(t *testing.T) {
	x := rosenbrockFn.start
	gx := rosenbrockFn.grad(x)
	d := Negate(gx)
	fx := rosenbrockFn.f(x)

	r := HagerZhang(rosenbrockFn.f, rosenbrockFn.grad, x, d, fx, gx, nil)
	switch {
	case !r.Success:
		t.Fatal("TestHagerZhangRosenbrock: Not Success")
	case r.FNew > fx:
		t.Fatal("TestHagerZhangRosenbrock: No Decrease")
	}
}

func TestHagerZhangBracketExpansion(t *testing.T) {
	f := func(x []float64) float64 { return x[0] * x[0] }
	g := func(x []float64) []float64 { return []float64{2 * x[0]} }
	x := []float64{100}
	gx := g(x)
	d := Negate(gx)

	r := HagerZhang(f, g, x, d, f(x), gx, nil)
	switch {
	case !r.Success:
		t.Fatal("TestHagerZhangBracketExpansion: Not Success")
	case r.Alpha <= 0:
		t.Fatal("TestHagerZhangBracketExpansion: Bad Alpha")
	}
}

// A linear decreasing objective cannot be bracketed.
func TestHagerZhangFailureLinear(t *testing.T) {
	f := func(x []float64) float64 { return -x[0] }
	g := func(x []float64) []float64 { return []float64{-1} }
	x := []float64{0}
	gx := g(x)
	d := Negate(gx)

	opts := &HagerZhangOptions{MaxBracketIter: 2}
	r := HagerZhang(f, g, x, d, f(x), gx, opts)
	if r.Success {
		t.Fatal("TestHagerZhangFailureLinear: False Success")
	}
}

func TestHagerZhangFailureStrictSecant(t *testing.T) {
	x := rosenbrockFn.start
	gx := rosenbrockFn.grad(x)
	d := Negate(gx)
	fx := rosenbrockFn.f(x)

	opts := &HagerZhangOptions{Delta: 0.99, Sigma: 0.99, MaxSecantIter: 1}
	r := HagerZhang(rosenbrockFn.f, rosenbrockFn.grad, x, d, fx, gx, opts)
	if r.Success {
		t.Fatal("TestHagerZhangFailureStrictSecant: False Success")
	}
}
