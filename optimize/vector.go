// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// Vector helpers shared by every solver.
// All of them return fresh slices and never modify their inputs.
// Mismatched dimensions panic.

// Dot returns 𝐚·𝐛.
func Dot(a, b []float64) float64 {
	return floats.Dot(a, b)
}

// Norm returns the Euclidean norm ‖𝐯‖₂.
func Norm(v []float64) float64 {
	return floats.Norm(v, 2)
}

// NormInf returns the maximum norm ‖𝐯‖∞.
func NormInf(v []float64) float64 {
	return floats.Norm(v, math.Inf(1))
}

// Scale returns 𝑠·𝐯.
func Scale(v []float64, s float64) []float64 {
	return floats.ScaleTo(make([]float64, len(v)), s, v)
}

// Add returns 𝐚 + 𝐛.
func Add(a, b []float64) []float64 {
	return floats.AddTo(make([]float64, len(a)), a, b)
}

// Sub returns 𝐚 - 𝐛.
func Sub(a, b []float64) []float64 {
	return floats.SubTo(make([]float64, len(a)), a, b)
}

// Negate returns -𝐯.
func Negate(v []float64) []float64 {
	return Scale(v, -1)
}

// Clone returns a copy of 𝐯.
func Clone(v []float64) []float64 {
	return slices.Clone(v)
}

// Zeros returns the n-dimensional zero vector.
func Zeros(n int) []float64 {
	return make([]float64, n)
}

// AddScaled returns 𝐚 + 𝑠·𝐛.
func AddScaled(a, b []float64, s float64) []float64 {
	return floats.AddScaledTo(make([]float64, len(a)), a, s, b)
}
