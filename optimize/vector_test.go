// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"testing"
)

func TestVectorOps(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{4, 5, 6}
	switch {
	case Dot(a, b) != 32:
		t.Fatal("TestVectorOps: Bad Dot")
	case !almostEqual(Norm([]float64{3, 4}), 5, 1e-15):
		t.Fatal("TestVectorOps: Bad Norm")
	case NormInf([]float64{1, -7, 3}) != 7:
		t.Fatal("TestVectorOps: Bad NormInf")
	case !almostEqual(Add(a, b), []float64{5, 7, 9}, 1e-15):
		t.Fatal("TestVectorOps: Bad Add")
	case !almostEqual(Sub(b, a), []float64{3, 3, 3}, 1e-15):
		t.Fatal("TestVectorOps: Bad Sub")
	case !almostEqual(Scale(a, 2), []float64{2, 4, 6}, 1e-15):
		t.Fatal("TestVectorOps: Bad Scale")
	case !almostEqual(Negate(a), []float64{-1, -2, -3}, 1e-15):
		t.Fatal("TestVectorOps: Bad Negate")
	case !almostEqual(AddScaled(a, b, 2), []float64{9, 12, 15}, 1e-15):
		t.Fatal("TestVectorOps: Bad AddScaled")
	case len(Zeros(4)) != 4:
		t.Fatal("TestVectorOps: Bad Zeros")
	}
}

func TestCloneIndependence(t *testing.T) {
	a := []float64{1, 2, 3}
	c := Clone(a)
	c[0] = 99
	if a[0] != 1 {
		t.Fatal("TestCloneIndependence: Shared Backing")
	}
}

func TestOpsLeaveInputs(t *testing.T) {
	a := []float64{1, 2}
	b := []float64{3, 4}
	_ = Add(a, b)
	_ = Scale(a, 5)
	_ = AddScaled(a, b, 2)
	_ = Negate(b)
	switch {
	case a[0] != 1 || a[1] != 2:
		t.Fatal("TestOpsLeaveInputs: First Operand Modified")
	case b[0] != 3 || b[1] != 4:
		t.Fatal("TestOpsLeaveInputs: Second Operand Modified")
	}
}
