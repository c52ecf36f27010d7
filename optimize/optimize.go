// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/curioloop/minimize/numdiff"
)

// Objective evaluates the target function 𝒇(𝐱).
type Objective func(x []float64) float64

// Gradient evaluates ∇𝒇(𝐱) and returns the result as a fresh slice.
type Gradient func(x []float64) []float64

// Hessian evaluates ∇²𝒇(𝐱) and returns a dense symmetric n×n matrix.
type Hessian func(x []float64) [][]float64

var epsmch = math.Nextafter(1, 2) - 1

// Options specifies the stopping criteria shared by every solver.
// The zero value of each field selects its default.
type Options struct {
	// The iteration will stop when the gradient satisfied:
	//   ‖ gₖ ‖ < 𝚐𝚛𝚊𝚍𝚝𝚘𝚕 (default 1e-8)
	GradTol float64
	// The iteration will stop when the step satisfied:
	//   ‖ xₖ₊₁ - xₖ ‖ < 𝚜𝚝𝚎𝚙𝚝𝚘𝚕 (default 1e-8)
	StepTol float64
	// The iteration will stop when the function value satisfied:
	//   | fₖ₊₁ - fₖ | < 𝚏𝚞𝚗𝚌𝚝𝚘𝚕 (default 1e-12)
	FuncTol float64
	// The iteration stop when the number of iteration exceeds limit (default 1000).
	MaxIterations int
	// Optional trace output (nil means silent).
	Logger *Logger
}

// DefaultOptions returns the canonical tolerance set shared by every solver.
func DefaultOptions() *Options {
	return &Options{
		GradTol:       1e-8,
		StepTol:       1e-8,
		FuncTol:       1e-12,
		MaxIterations: 1000,
	}
}

// Check validates the option values.
func (o *Options) Check() (err error) {
	switch {
	case o == nil:
	case o.GradTol < 0:
		err = errors.New("gradient tolerance must not less than 0")
	case o.StepTol < 0:
		err = errors.New("step tolerance must not less than 0")
	case o.FuncTol < 0:
		err = errors.New("function tolerance must not less than 0")
	case o.MaxIterations < 0:
		err = errors.New("max iteration must not less than 0")
	}
	return
}

// defaults returns a copy of o with every zero field replaced by its default.
// A nil receiver yields the full default set.
func (o *Options) defaults() (v Options) {
	v = *DefaultOptions()
	if o == nil {
		return
	}
	if o.GradTol > 0 {
		v.GradTol = o.GradTol
	}
	if o.StepTol > 0 {
		v.StepTol = o.StepTol
	}
	if o.FuncTol > 0 {
		v.FuncTol = o.FuncTol
	}
	if o.MaxIterations > 0 {
		v.MaxIterations = o.MaxIterations
	}
	v.Logger = o.Logger
	return
}

// Result contains the final result of the optimization process.
type Result struct {
	X             []float64 // Final solution.
	Fun           float64   // Final function value.
	Gradient      []float64 // Final gradient (nil for derivative-free solvers).
	Iterations    int       // Number of iterations performed.
	FunctionCalls int       // Number of objective evaluations performed.
	GradientCalls int       // Number of gradient evaluations performed.
	Converged     bool      // Whether a convergence criterion was met.
	Message       string    // Stop reason.
}

// Reason identifies which criterion terminated the iteration.
type Reason int

const (
	ConvGradNorm Reason = iota
	ConvStepSize
	ConvFuncChange
	StopMaxIter
	StopLineSearch
)

// Converged reports whether the reason is a convergence criterion
// rather than an iteration or line-search limit.
func (r Reason) Converged() bool {
	switch r {
	case ConvGradNorm, ConvStepSize, ConvFuncChange:
		return true
	}
	return false
}

// Convergence describes a satisfied stopping criterion.
type Convergence struct {
	Reason    Reason
	Converged bool
	Message   string
}

// CheckConvergence tests the stopping criteria in a fixed priority order:
// gradient norm, step size, function change, then the iteration limit.
// All tolerance tests are strict. A nil return means the iteration continues.
func CheckConvergence(gradNorm, stepNorm, funcChange float64, iteration int, opts *Options) *Convergence {
	o := opts.defaults()
	switch {
	case gradNorm < o.GradTol:
		return &Convergence{ConvGradNorm, true,
			fmt.Sprintf("Converged: gradient norm %.2e below tolerance", gradNorm)}
	case stepNorm < o.StepTol:
		return &Convergence{ConvStepSize, true,
			fmt.Sprintf("Converged: step size %.2e below tolerance", stepNorm)}
	case funcChange < o.FuncTol:
		return &Convergence{ConvFuncChange, true,
			fmt.Sprintf("Converged: function change %.2e below tolerance", funcChange)}
	case iteration >= o.MaxIterations:
		return &Convergence{StopMaxIter, false,
			fmt.Sprintf("Stopped: reached maximum iterations (%d)", iteration)}
	}
	return nil
}

// A start already within the gradient tolerance reports this message
// with a zero iteration count.
const msgAtMinimum = "Converged: gradient norm below tolerance"

// Reported when no step satisfying the search conditions could be found.
const msgLineSearch = "Stopped: line search failed"

// gradientOr substitutes forward differences when no gradient is supplied.
// Each call of the substitute counts as a single gradient evaluation.
func gradientOr(f Objective, grad Gradient) Gradient {
	if grad != nil {
		return grad
	}
	return numdiff.GradientOf(f, numdiff.Forward)
}

// hessianOr substitutes a finite-difference Hessian when none is supplied.
func hessianOr(f Objective, hess Hessian) Hessian {
	if hess != nil {
		return hess
	}
	return func(x []float64) [][]float64 {
		return numdiff.Hessian(f, x)
	}
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
