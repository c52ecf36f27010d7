// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Simplex coefficients of the adaptive step kinds.
const (
	simplexReflect  = 1.0
	simplexExpand   = 2.0
	simplexContract = 0.5
	simplexShrink   = 0.5
	simplexScale    = 0.05
)

// NelderMead minimizes 𝒇(𝐱) with the derivative-free downhill simplex method.
//
// The initial simplex places one vertex at x₀ and offsets each remaining
// vertex by 0.05·𝚖𝚊𝚡(|x₀ᵢ|,1) along coordinate i. Iterations order the
// vertices and replace the worst one by reflection, expansion or
// contraction through the centroid of the rest, shrinking the whole
// simplex toward the best vertex when no replacement helps.
//
// The search stops when the standard deviation of the vertex values falls
// below FuncTol or the largest vertex distance from the best point falls
// below StepTol. The result carries no gradient.
func NelderMead(f Objective, x0 []float64, opts *Options) *Result {

	o := opts.defaults()
	log := o.Logger.setup()
	n := len(x0)

	simplex := make([][]float64, 0, n+1)
	simplex = append(simplex, Clone(x0))
	for i := 0; i < n; i++ {
		v := Clone(x0)
		v[i] += simplexScale * math.Max(math.Abs(x0[i]), 1)
		simplex = append(simplex, v)
	}

	fv := make([]float64, n+1)
	for i, v := range simplex {
		fv[i] = f(v)
	}
	numEval := n + 1

	log.printInit("NELDER-MEAD", n)

	finish := func(iter int, conv bool, msg string) *Result {
		res := &Result{
			X: simplex[0], Fun: fv[0],
			Iterations: iter, FunctionCalls: numEval,
			Converged: conv, Message: msg,
		}
		log.printExit(res)
		return res
	}

	for iter := 0; iter < o.MaxIterations; iter++ {

		// Order the vertices by function value.
		order := make([]int, n+1)
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool { return fv[order[a]] < fv[order[b]] })
		sorted, sortedF := make([][]float64, n+1), make([]float64, n+1)
		for k, i := range order {
			sorted[k], sortedF[k] = simplex[i], fv[i]
		}
		simplex, fv = sorted, sortedF

		log.printIterF(iter, numEval, fv[0])

		// Spread of the vertex values.
		mean := 0.0
		for _, v := range fv {
			mean += v
		}
		mean /= float64(n + 1)
		std := 0.0
		for _, v := range fv {
			std += (v - mean) * (v - mean)
		}
		std = math.Sqrt(std / float64(n+1))
		if std < o.FuncTol {
			return finish(iter, true, "Converged: function value spread below tolerance")
		}

		// Diameter measured from the best vertex.
		maxDist := 0.0
		for i := 1; i <= n; i++ {
			maxDist = math.Max(maxDist, Norm(Sub(simplex[i], simplex[0])))
		}
		if maxDist < o.StepTol {
			return finish(iter, true, "Converged: simplex diameter below tolerance")
		}

		// Centroid of every vertex except the worst.
		centroid := Zeros(n)
		for i := 0; i < n; i++ {
			floats.Add(centroid, simplex[i])
		}
		floats.Scale(1/float64(n), centroid)

		worst := simplex[n]
		reflected := AddScaled(centroid, Sub(centroid, worst), simplexReflect)
		fr := f(reflected)
		numEval++

		if fr < fv[n-1] && fr >= fv[0] {
			simplex[n], fv[n] = reflected, fr
			continue
		}

		if fr < fv[0] {
			expanded := AddScaled(centroid, Sub(centroid, worst), simplexExpand)
			fe := f(expanded)
			numEval++
			if fe < fr {
				simplex[n], fv[n] = expanded, fe
			} else {
				simplex[n], fv[n] = reflected, fr
			}
			continue
		}

		if fr < fv[n] {
			// Outside contraction.
			contracted := AddScaled(centroid, Sub(centroid, worst), simplexContract)
			fc := f(contracted)
			numEval++
			if fc <= fr {
				simplex[n], fv[n] = contracted, fc
				continue
			}
		} else {
			// Inside contraction.
			contracted := AddScaled(centroid, Sub(centroid, worst), -simplexContract)
			fc := f(contracted)
			numEval++
			if fc < fv[n] {
				simplex[n], fv[n] = contracted, fc
				continue
			}
		}

		// Shrink every vertex toward the best one.
		best := simplex[0]
		for i := 1; i <= n; i++ {
			for j := 0; j < n; j++ {
				simplex[i][j] = best[j] + simplexShrink*(simplex[i][j]-best[j])
			}
			fv[i] = f(simplex[i])
			numEval++
		}
	}

	// Report the best vertex of the final simplex.
	best := 0
	for i := 1; i <= n; i++ {
		if fv[i] < fv[best] {
			best = i
		}
	}
	simplex[0], fv[0] = simplex[best], fv[best]
	return finish(o.MaxIterations, false,
		fmt.Sprintf("Stopped: reached maximum iterations (%d)", o.MaxIterations))
}
