// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"math"
	"testing"
)

func TestBrentQuadratic(t *testing.T) {
	r := Brent(func(x float64) float64 { return x * x }, -2, 2, nil)
	switch {
	case !r.Converged:
		t.Fatal("TestBrentQuadratic: Not Converge")
	case math.Abs(r.X) > 1e-8:
		t.Fatal("TestBrentQuadratic: Bad Solution")
	case r.Fun > 1e-15:
		t.Fatal("TestBrentQuadratic: Object Too Large")
	}
}

func TestBrentShiftedQuadratic(t *testing.T) {
	r := Brent(func(x float64) float64 { return (x - 3) * (x - 3) }, 0, 10, nil)
	switch {
	case !r.Converged:
		t.Fatal("TestBrentShiftedQuadratic: Not Converge")
	case math.Abs(r.X-3) > 1e-7:
		t.Fatal("TestBrentShiftedQuadratic: Bad Solution")
	case r.Fun > 1e-13:
		t.Fatal("TestBrentShiftedQuadratic: Object Too Large")
	}
}

func TestBrentSin(t *testing.T) {
	r := Brent(func(x float64) float64 { return -math.Sin(x) }, 0, math.Pi, nil)
	switch {
	case !r.Converged:
		t.Fatal("TestBrentSin: Not Converge")
	case math.Abs(r.X-math.Pi/2) > 1e-7:
		t.Fatal("TestBrentSin: Bad Solution")
	case math.Abs(r.Fun+1) > 1e-10:
		t.Fatal("TestBrentSin: Object Too Large")
	}
}

func TestBrentXLogX(t *testing.T) {
	r := Brent(func(x float64) float64 { return x * math.Log(x) }, 0.1, 3, nil)
	switch {
	case !r.Converged:
		t.Fatal("TestBrentXLogX: Not Converge")
	case math.Abs(r.X-1/math.E) > 1e-6:
		t.Fatal("TestBrentXLogX: Bad Solution")
	}
}

// The parabolic fit degrades gracefully on a kink.
func TestBrentAbs(t *testing.T) {
	r := Brent(math.Abs, -3, 2, nil)
	switch {
	case !r.Converged:
		t.Fatal("TestBrentAbs: Not Converge")
	case math.Abs(r.X) > 1e-7:
		t.Fatal("TestBrentAbs: Bad Solution")
	}
}

func TestBrentReversedBracket(t *testing.T) {
	r := Brent(func(x float64) float64 { return x * x }, 2, -2, nil)
	switch {
	case !r.Converged:
		t.Fatal("TestBrentReversedBracket: Not Converge")
	case math.Abs(r.X) > 1e-8:
		t.Fatal("TestBrentReversedBracket: Bad Solution")
	}
}

func TestBrentMaxIter(t *testing.T) {
	opts := &BrentOptions{MaxIter: 3, Tol: 1e-15}
	r := Brent(func(x float64) float64 { return x * x }, -100, 100, opts)
	switch {
	case r.Converged:
		t.Fatal("TestBrentMaxIter: False Convergence")
	case r.Message != "Maximum iterations exceeded":
		t.Fatal("TestBrentMaxIter: Bad Message")
	case r.Iterations != 3:
		t.Fatal("TestBrentMaxIter: Bad Iterations")
	}
}
