// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"github.com/pkg/errors"
)

// Method selects the algorithm run by Minimize.
type Method int

const (
	// MethodAuto picks BFGS when a gradient is supplied and
	// Nelder-Mead otherwise.
	MethodAuto Method = iota
	MethodNelderMead
	MethodGradientDescent
	MethodBFGS
	MethodLBFGS
	MethodConjugateGradient
)

// Minimize runs the selected method on 𝒇(𝐱) from the starting point x0.
// It is the front door for the unconstrained solvers. The gradient may
// be nil, derivative-based methods then fall back to forward
// differences and Nelder-Mead ignores it entirely.
func Minimize(f Objective, x0 []float64, grad Gradient, method Method, opts *Options) (*Result, error) {
	switch {
	case f == nil:
		return nil, errors.New("objective function required")
	case len(x0) == 0:
		return nil, errors.New("initial point must not be empty")
	}
	if err := opts.Check(); err != nil {
		return nil, err
	}

	if method == MethodAuto {
		if grad != nil {
			method = MethodBFGS
		} else {
			method = MethodNelderMead
		}
	}

	switch method {
	case MethodNelderMead:
		return NelderMead(f, x0, opts), nil
	case MethodGradientDescent:
		return GradientDescent(f, x0, grad, opts), nil
	case MethodBFGS:
		return BFGS(f, x0, grad, opts), nil
	case MethodLBFGS:
		return LBFGS(f, x0, grad, opts), nil
	case MethodConjugateGradient:
		return ConjugateGradient(f, x0, grad, opts), nil
	}
	return nil, errors.Errorf("unknown method %d", method)
}
