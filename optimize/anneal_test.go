// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"math"
	"testing"
)

func TestMulberry32(t *testing.T) {
	a, b := Mulberry32(7), Mulberry32(7)
	for i := 0; i < 5; i++ {
		va, vb := a(), b()
		switch {
		case va != vb:
			t.Fatal("TestMulberry32: Not Deterministic")
		case va < 0 || va >= 1:
			t.Fatal("TestMulberry32: Out Of Range")
		}
	}
	if Mulberry32(7)() == Mulberry32(8)() {
		t.Fatal("TestMulberry32: Seed Ignored")
	}
}

func TestLogTemperature(t *testing.T) {
	switch {
	case !math.IsInf(LogTemperature(1), 1):
		t.Fatal("TestLogTemperature: First Step Not Free")
	case !almostEqual(LogTemperature(2), 1/math.Ln2, 1e-15):
		t.Fatal("TestLogTemperature: Bad Value")
	case LogTemperature(10) <= LogTemperature(100):
		t.Fatal("TestLogTemperature: Not Cooling")
	}
}

func TestAnnealSphere(t *testing.T) {
	opts := &Options{MaxIterations: 10000}
	r := SimulatedAnnealing(sphereFn.f, sphereFn.start, opts, 42, nil)
	switch {
	case r.Fun >= 1:
		t.Fatal("TestAnnealSphere: Object Too Large")
	case r.FunctionCalls != 10001:
		t.Fatal("TestAnnealSphere: Bad Counter")
	case r.Iterations != 10000:
		t.Fatal("TestAnnealSphere: Bad Iterations")
	}
}

func TestAnnealRastrigin(t *testing.T) {
	f := func(x []float64) float64 {
		sum := 10.0 * float64(len(x))
		for _, xi := range x {
			sum += xi*xi - 10*math.Cos(2*math.Pi*xi)
		}
		return sum
	}
	opts := &Options{MaxIterations: 50000}
	r := SimulatedAnnealing(f, []float64{3, 3}, opts, 42, nil)
	if r.Fun >= 5 {
		t.Fatal("TestAnnealRastrigin: Object Too Large")
	}
}

func TestAnnealDeterministic(t *testing.T) {
	opts := &Options{MaxIterations: 100}
	r1 := SimulatedAnnealing(sphereFn.f, sphereFn.start, opts, 99, nil)
	r2 := SimulatedAnnealing(sphereFn.f, sphereFn.start, opts, 99, nil)
	switch {
	case !almostEqual(r1.X, r2.X, 0):
		t.Fatal("TestAnnealDeterministic: Diverging Solutions")
	case r1.Fun != r2.Fun:
		t.Fatal("TestAnnealDeterministic: Diverging Values")
	}
}

// A zero seed selects the fixed default.
func TestAnnealDefaultSeed(t *testing.T) {
	opts := &Options{MaxIterations: 100}
	r1 := SimulatedAnnealing(sphereFn.f, sphereFn.start, opts, 0, nil)
	r2 := SimulatedAnnealing(sphereFn.f, sphereFn.start, opts, 12345, nil)
	if !almostEqual(r1.X, r2.X, 0) {
		t.Fatal("TestAnnealDefaultSeed: Not Default")
	}
}

// Even when a hot chain wanders off, the best visited point is kept.
func TestAnnealKeepBest(t *testing.T) {
	opts := &Options{MaxIterations: 1000}
	hot := func(k int) float64 { return 1000 }
	r := SimulatedAnnealing(sphereFn.f, []float64{0, 0}, opts, 42, hot)
	if r.Fun >= 0.1 {
		t.Fatal("TestAnnealKeepBest: Best Lost")
	}
}

func TestAnnealResultShape(t *testing.T) {
	opts := &Options{MaxIterations: 100}
	r := SimulatedAnnealing(sphereFn.f, sphereFn.start, opts, 42, nil)
	switch {
	case !r.Converged:
		t.Fatal("TestAnnealResultShape: Not Converge")
	case r.Message != "Completed 100 iterations":
		t.Fatal("TestAnnealResultShape: Bad Message")
	case r.Gradient == nil || len(r.Gradient) != 0:
		t.Fatal("TestAnnealResultShape: Bad Gradient")
	case r.GradientCalls != 0:
		t.Fatal("TestAnnealResultShape: Gradient Touched")
	}
}
