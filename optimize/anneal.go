// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"fmt"
	"math"
)

// Seed used when the caller passes zero.
const defaultSeed = 12345

// LogTemperature is the classical logarithmic cooling schedule 1/𝚕𝚗(k).
// The infinite temperature at k = 1 accepts the first proposal freely.
func LogTemperature(k int) float64 {
	return 1 / math.Log(float64(k))
}

// Mulberry32 returns a deterministic generator of uniform samples in
// [0,1). The same seed always yields the same sequence, so annealing
// runs are reproducible across platforms.
func Mulberry32(seed uint32) func() float64 {
	s := seed
	return func() float64 {
		s += 0x6d2b79f5
		t := s ^ s>>15
		t *= 1 | s
		t = (t + (t^t>>7)*(61|t)) ^ t
		return float64(t^t>>14) / 4294967296.0
	}
}

// boxMuller draws one standard normal sample, resampling u₁ away from
// zero to keep the logarithm finite.
func boxMuller(rng func() float64) float64 {
	u1 := rng()
	for u1 == 0 {
		u1 = rng()
	}
	u2 := rng()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

func gaussianNeighbor(x []float64, rng func() float64) []float64 {
	prop := make([]float64, len(x))
	for i, xi := range x {
		prop[i] = xi + boxMuller(rng)
	}
	return prop
}

// SimulatedAnnealing searches for a global minimum of 𝒇(𝐱) with the
// Metropolis criterion: each iteration perturbs the current point by
// unit Gaussian noise and accepts uphill moves with probability
// 𝚎𝚡𝚙(-Δ𝒇/T(k)). The best point ever visited is returned, which may
// differ from the final state of the chain.
//
// A zero seed selects the fixed default 12345 and a nil temperature
// the LogTemperature schedule. The run always executes MaxIterations
// proposals, there is no convergence test.
func SimulatedAnnealing(f Objective, x0 []float64, opts *Options, seed uint32, temperature func(k int) float64) *Result {

	o := opts.defaults()
	log := o.Logger.setup()
	if seed == 0 {
		seed = defaultSeed
	}
	if temperature == nil {
		temperature = LogTemperature
	}
	rng := Mulberry32(seed)

	xCur := Clone(x0)
	fCur := f(xCur)
	xBest, fBest := Clone(xCur), fCur
	numEval := 1

	log.printInit("SIMULATED ANNEALING", len(x0))

	for k := 1; k <= o.MaxIterations; k++ {
		t := temperature(k)
		prop := gaussianNeighbor(xCur, rng)
		fProp := f(prop)
		numEval++

		if fProp <= fCur {
			xCur, fCur = prop, fProp
			if fProp < fBest {
				xBest, fBest = Clone(xCur), fProp
			}
		} else if rng() <= math.Exp(-(fProp-fCur)/t) {
			xCur, fCur = prop, fProp
		}

		log.printIterF(k, numEval, fCur)
	}

	res := &Result{
		X: xBest, Fun: fBest, Gradient: []float64{},
		Iterations: o.MaxIterations, FunctionCalls: numEval,
		Converged: true,
		Message:   fmt.Sprintf("Completed %d iterations", o.MaxIterations),
	}
	log.printExit(res)
	return res
}
