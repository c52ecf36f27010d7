// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"math"
	"strings"
	"testing"
)

func TestLBFGSSphere(t *testing.T) {
	r := LBFGS(sphereFn.f, sphereFn.start, sphereFn.grad, nil)
	switch {
	case !r.Converged:
		t.Fatal("TestLBFGSSphere: Not Converge")
	case r.Fun > 1e-8:
		t.Fatal("TestLBFGSSphere: Object Too Large")
	}
}

func TestLBFGSBooth(t *testing.T) {
	r := LBFGS(boothFn.f, boothFn.start, boothFn.grad, nil)
	switch {
	case !r.Converged:
		t.Fatal("TestLBFGSBooth: Not Converge")
	case r.Fun > 1e-8:
		t.Fatal("TestLBFGSBooth: Object Too Large")
	}
}

func TestLBFGSRosenbrock(t *testing.T) {
	r := LBFGS(rosenbrockFn.f, rosenbrockFn.start, rosenbrockFn.grad, nil)
	switch {
	case !r.Converged:
		t.Fatal("TestLBFGSRosenbrock: Not Converge")
	case r.Fun > 1e-10:
		t.Fatal("TestLBFGSRosenbrock: Object Too Large")
	case !almostEqual(r.X, rosenbrockFn.minAt, 1e-4):
		t.Fatal("TestLBFGSRosenbrock: Bad Solution")
	}
}

func TestLBFGSBeale(t *testing.T) {
	r := LBFGS(bealeFn.f, bealeFn.start, bealeFn.grad, nil)
	switch {
	case !r.Converged:
		t.Fatal("TestLBFGSBeale: Not Converge")
	case r.Fun > 1e-8:
		t.Fatal("TestLBFGSBeale: Object Too Large")
	}
}

func TestLBFGSHimmelblau(t *testing.T) {
	r := LBFGS(himmelblauFn.f, himmelblauFn.start, himmelblauFn.grad, nil)
	switch {
	case !r.Converged:
		t.Fatal("TestLBFGSHimmelblau: Not Converge")
	case r.Fun > 1e-8:
		t.Fatal("TestLBFGSHimmelblau: Object Too Large")
	}
}

func TestLBFGSGoldsteinPrice(t *testing.T) {
	r := LBFGS(goldsteinFn.f, goldsteinFn.start, goldsteinFn.grad, nil)
	switch {
	case !r.Converged:
		t.Fatal("TestLBFGSGoldsteinPrice: Not Converge")
	case math.Abs(r.Fun-3) > 1e-4:
		t.Fatal("TestLBFGSGoldsteinPrice: Object Too Large")
	}
}

func TestLBFGSFiniteDiff(t *testing.T) {
	r := LBFGS(sphereFn.f, sphereFn.start, nil, nil)
	switch {
	case !r.Converged:
		t.Fatal("TestLBFGSFiniteDiff: Not Converge")
	case r.Fun > 1e-6:
		t.Fatal("TestLBFGSFiniteDiff: Object Too Large")
	}
}

func TestLBFGSAtMinimum(t *testing.T) {
	r := LBFGS(sphereFn.f, []float64{0, 0}, sphereFn.grad, nil)
	switch {
	case !r.Converged:
		t.Fatal("TestLBFGSAtMinimum: Not Converge")
	case r.Iterations != 0:
		t.Fatal("TestLBFGSAtMinimum: Iterated")
	}
}

func TestLBFGSMaxIter(t *testing.T) {
	opts := &Options{MaxIterations: 2}
	r := LBFGS(rosenbrockFn.f, rosenbrockFn.start, rosenbrockFn.grad, opts)
	switch {
	case r.Converged:
		t.Fatal("TestLBFGSMaxIter: False Convergence")
	case !strings.Contains(r.Message, "maximum iterations"):
		t.Fatal("TestLBFGSMaxIter: Bad Message")
	}
}

func TestLBFGSCustomMemory(t *testing.T) {
	r := LBFGSWithMemory(rosenbrockFn.f, rosenbrockFn.start, rosenbrockFn.grad, 3, nil)
	switch {
	case !r.Converged:
		t.Fatal("TestLBFGSCustomMemory: Not Converge")
	case r.Fun > 1e-6:
		t.Fatal("TestLBFGSCustomMemory: Object Too Large")
	}
}

// Without history the two-loop recursion degenerates to steepest descent.
func TestLBFGSZeroMemory(t *testing.T) {
	r := LBFGSWithMemory(sphereFn.f, sphereFn.start, sphereFn.grad, 0, nil)
	switch {
	case !r.Converged:
		t.Fatal("TestLBFGSZeroMemory: Not Converge")
	case r.Fun > 1e-8:
		t.Fatal("TestLBFGSZeroMemory: Object Too Large")
	}
}

// With memory beyond the iteration count the update carries the full
// curvature history and tracks BFGS closely.
func TestLBFGSFullMemory(t *testing.T) {
	lr := LBFGSWithMemory(boothFn.f, boothFn.start, boothFn.grad, 100, nil)
	br := BFGS(boothFn.f, boothFn.start, boothFn.grad, nil)
	switch {
	case !lr.Converged || !br.Converged:
		t.Fatal("TestLBFGSFullMemory: Not Converge")
	case lr.Fun > 1e-10 || br.Fun > 1e-10:
		t.Fatal("TestLBFGSFullMemory: Object Too Large")
	case !almostEqual(lr.X, boothFn.minAt, 1e-4) || !almostEqual(br.X, boothFn.minAt, 1e-4):
		t.Fatal("TestLBFGSFullMemory: Bad Solution")
	}
}
