// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/minimize/numdiff"
)

// ConstraintSet defines m general constraints lower ≤ 𝐜(𝐱) ≤ upper.
// Rows with equal bounds are treated as equalities, one-sided rows use
// -∞ or +∞ for the free side. A nil Jacobian falls back to forward
// differences over 𝐜.
type ConstraintSet struct {
	C        func(x []float64) []float64
	Jacobian func(x []float64) [][]float64
	Lower    []float64
	Upper    []float64
}

func (cs *ConstraintSet) jacobianOr(n int) func(x []float64) [][]float64 {
	if cs.Jacobian != nil {
		return cs.Jacobian
	}
	m := len(cs.Lower)
	spec := &numdiff.JacobianSpec{
		N: n, M: m,
		Func:   func(x, y []float64) { copy(y, cs.C(x)) },
		Method: numdiff.Forward,
	}
	return func(x []float64) [][]float64 {
		flat := make([]float64, n*m)
		if err := spec.Diff(x, flat); err != nil {
			panic(err)
		}
		rows := make([][]float64, m)
		for j := 0; j < m; j++ {
			rows[j] = flat[j*n : (j+1)*n]
		}
		return rows
	}
}

// IPNewtonOptions bundles the shared stopping criteria with the
// constraint definition of the interior point method.
// The zero value of each field selects its default.
type IPNewtonOptions struct {
	Options

	// Lower and Upper bound x elementwise. A nil slice leaves the
	// whole side unconstrained, ±∞ entries a single coordinate.
	Lower, Upper []float64
	// Constraints adds general nonlinear constraints.
	Constraints *ConstraintSet
	// Mu0 overrides the automatic initial barrier parameter.
	Mu0 float64
	// KKTTol is the residual tolerance deciding constrained
	// convergence (default GradTol).
	KKTTol float64
}

// One row of the classified constraint system. Inequalities are kept
// in the form σ(v - bound) ≥ 0 so lower bounds carry σ = +1 and upper
// bounds σ = -1.
type ineqEntry struct {
	idx   int
	bound float64
	sigma float64
}

type eqEntry struct {
	idx    int
	target float64
}

type classified struct {
	boxIneq, conIneq []ineqEntry
	boxEq, conEq     []eqEntry
}

func classifyConstraints(n int, boxLower, boxUpper, conLower, conUpper []float64) *classified {
	cc := &classified{}
	for i := 0; i < n; i++ {
		if boxLower[i] == boxUpper[i] {
			cc.boxEq = append(cc.boxEq, eqEntry{i, boxLower[i]})
			continue
		}
		if !math.IsInf(boxLower[i], 0) {
			cc.boxIneq = append(cc.boxIneq, ineqEntry{i, boxLower[i], 1})
		}
		if !math.IsInf(boxUpper[i], 0) {
			cc.boxIneq = append(cc.boxIneq, ineqEntry{i, boxUpper[i], -1})
		}
	}
	for i := 0; i < len(conLower); i++ {
		if conLower[i] == conUpper[i] {
			cc.conEq = append(cc.conEq, eqEntry{i, conLower[i]})
			continue
		}
		if !math.IsInf(conLower[i], 0) {
			cc.conIneq = append(cc.conIneq, ineqEntry{i, conLower[i], 1})
		}
		if !math.IsInf(conUpper[i], 0) {
			cc.conIneq = append(cc.conIneq, ineqEntry{i, conUpper[i], -1})
		}
	}
	return cc
}

// robustSolve solves 𝐀d = b, shifting the diagonal by growing τ when
// the plain factorization fails. As a final resort the normalized
// right-hand side is returned so the caller can still make progress.
func robustSolve(a [][]float64, b []float64) []float64 {
	n := len(b)
	if n == 0 {
		return nil
	}
	sym := symFromRows(a)
	if sol := cholSolve(sym, b); sol != nil {
		return sol
	}
	tau := 1e-8
	for k := 0; k < 25; k++ {
		reg := mat.NewSymDense(n, nil)
		reg.CopySym(sym)
		for i := 0; i < n; i++ {
			reg.SetSym(i, i, sym.At(i, i)+tau)
		}
		if sol := cholSolve(reg, b); sol != nil {
			return sol
		}
		tau *= 10
	}
	if bNorm := NormInf(b); bNorm > 0 {
		return Scale(b, 1/bNorm)
	}
	return Zeros(n)
}

// matTVec computes 𝐀ᵀv for a row-slice matrix.
func matTVec(a [][]float64, v []float64) []float64 {
	if len(a) == 0 {
		return nil
	}
	r := Zeros(len(a[0]))
	for i, row := range a {
		for j, aij := range row {
			r[j] += aij * v[i]
		}
	}
	return r
}

// matTDiagMat computes the symmetric product 𝐀ᵀ𝐃𝐀 with 𝐃 diagonal.
func matTDiagMat(a [][]float64, d []float64) [][]float64 {
	if len(a) == 0 {
		return nil
	}
	n := len(a[0])
	r := make([][]float64, n)
	for p := range r {
		r[p] = make([]float64, n)
	}
	for i, row := range a {
		for p := 0; p < n; p++ {
			for q := p; q < n; q++ {
				r[p][q] += row[p] * d[i] * row[q]
			}
		}
	}
	for p := 0; p < n; p++ {
		for q := 0; q < p; q++ {
			r[p][q] = r[q][p]
		}
	}
	return r
}

func matAdd(a, b [][]float64) [][]float64 {
	r := make([][]float64, len(a))
	for i := range a {
		r[i] = Add(a[i], b[i])
	}
	return r
}

func buildIneqJacobian(n int, cc *classified, jc [][]float64) [][]float64 {
	var rows [][]float64
	for _, e := range cc.boxIneq {
		row := Zeros(n)
		row[e.idx] = e.sigma
		rows = append(rows, row)
	}
	for _, e := range cc.conIneq {
		if jc != nil {
			rows = append(rows, Scale(jc[e.idx], e.sigma))
		}
	}
	return rows
}

func buildEqJacobian(n int, cc *classified, jc [][]float64) [][]float64 {
	var rows [][]float64
	for _, e := range cc.boxEq {
		row := Zeros(n)
		row[e.idx] = 1
		rows = append(rows, row)
	}
	for _, e := range cc.conEq {
		if jc != nil {
			rows = append(rows, Clone(jc[e.idx]))
		}
	}
	return rows
}

// computeSlacks evaluates σ(v - bound) for every inequality, floored
// away from zero to keep the barrier finite.
func computeSlacks(x, cx []float64, cc *classified) (sb, sc []float64) {
	sb = make([]float64, len(cc.boxIneq))
	for i, e := range cc.boxIneq {
		sb[i] = math.Max(e.sigma*(x[e.idx]-e.bound), 1e-10)
	}
	sc = make([]float64, len(cc.conIneq))
	for i, e := range cc.conIneq {
		sc[i] = math.Max(e.sigma*(cx[e.idx]-e.bound), 1e-10)
	}
	return
}

func equalityResidual(x, cx []float64, cc *classified) []float64 {
	res := make([]float64, 0, len(cc.boxEq)+len(cc.conEq))
	for _, e := range cc.boxEq {
		res = append(res, x[e.idx]-e.target)
	}
	for _, e := range cc.conEq {
		res = append(res, cx[e.idx]-e.target)
	}
	return res
}

// maxFractionToBoundary returns the longest step fraction keeping
// vals + α·dvals at least (1-τ) of the way from zero.
func maxFractionToBoundary(vals, dvals []float64, tau float64) float64 {
	alpha := 1.0
	for i := range vals {
		if dvals[i] < -1e-20 {
			if a := -tau * vals[i] / dvals[i]; a < alpha {
				alpha = a
			}
		}
	}
	return math.Max(alpha, 0)
}

func concat(a, b []float64) []float64 {
	return append(append(make([]float64, 0, len(a)+len(b)), a...), b...)
}

// IPNewton minimizes 𝒇(𝐱) under box and general constraints with a
// primal-dual interior point Newton method. Inequalities enter through
// slack variables and a logarithmic barrier with parameter μ, driven
// to zero by a Mehrotra-style schedule. Equalities are handled by a
// Schur complement on the regularized KKT system and an ℓ₁ penalty in
// the merit function guarding the backtracking step.
//
// A nil grad falls back to forward differences, a nil hess to a
// finite-difference Hessian. Without any constraints the method
// reduces to a damped Newton iteration.
func IPNewton(f Objective, x0 []float64, grad Gradient, hess Hessian, opts *IPNewtonOptions) *Result {

	io := func() (v IPNewtonOptions) {
		if opts != nil {
			v = *opts
		}
		v.Options = v.Options.defaults()
		if v.KKTTol == 0 {
			v.KKTTol = v.GradTol
		}
		return
	}()
	o := &io.Options
	log := o.Logger.setup()
	gradFn := gradientOr(f, grad)
	hessFn := hessianOr(f, hess)

	n := len(x0)
	boxLower, boxUpper := io.Lower, io.Upper
	if boxLower == nil {
		boxLower = make([]float64, n)
		for i := range boxLower {
			boxLower[i] = math.Inf(-1)
		}
	}
	if boxUpper == nil {
		boxUpper = make([]float64, n)
		for i := range boxUpper {
			boxUpper[i] = math.Inf(1)
		}
	}

	var conFn func(x []float64) []float64
	var conJac func(x []float64) [][]float64
	var conLower, conUpper []float64
	if io.Constraints != nil {
		conFn = io.Constraints.C
		conJac = io.Constraints.jacobianOr(n)
		conLower, conUpper = io.Constraints.Lower, io.Constraints.Upper
	}

	cc := classifyConstraints(n, boxLower, boxUpper, conLower, conUpper)
	nIneq := len(cc.boxIneq) + len(cc.conIneq)
	nEq := len(cc.boxEq) + len(cc.conEq)
	hasConstraints := nIneq+nEq > 0

	// Start strictly inside the box.
	x := Clone(x0)
	for i := 0; i < n; i++ {
		lo, hi := boxLower[i], boxUpper[i]
		lf, uf := !math.IsInf(lo, 0), !math.IsInf(hi, 0)
		switch {
		case lo == hi:
			x[i] = lo
		case lf && uf:
			margin := 0.01 * (hi - lo)
			x[i] = math.Min(math.Max(x[i], lo+margin), hi-margin)
		case lf:
			x[i] = math.Max(x[i], lo+0.01*math.Max(math.Abs(lo), 1))
		case uf:
			x[i] = math.Min(x[i], hi-0.01*math.Max(math.Abs(hi), 1))
		}
	}

	fx := f(x)
	gx := gradFn(x)
	var cx []float64
	var jc [][]float64
	if conFn != nil {
		cx = conFn(x)
		jc = conJac(x)
	}
	numEval, numGrad := 1, 1

	log.printInit("INTERIOR POINT NEWTON", n)

	finish := func(iter int, conv bool, msg string) *Result {
		res := &Result{
			X: x, Fun: fx, Gradient: gx,
			Iterations: iter, FunctionCalls: numEval, GradientCalls: numGrad,
			Converged: conv, Message: msg,
		}
		log.printExit(res)
		return res
	}

	if !hasConstraints && NormInf(gx) < o.GradTol {
		return finish(0, true, msgAtMinimum)
	}

	slackBox, slackCon := computeSlacks(x, cx, cc)

	mu := io.Mu0
	if mu == 0 && nIneq > 0 {
		objL1 := 0.0
		for _, g := range gx {
			objL1 += math.Abs(g)
		}
		barL1 := 0.0
		for _, s := range slackBox {
			barL1 += 1 / math.Max(s, 1e-14)
		}
		for _, s := range slackCon {
			barL1 += 1 / math.Max(s, 1e-14)
		}
		m := 1e-4
		if barL1 > 0 {
			m = 0.001 * objL1 / barL1
		}
		mu = math.Min(math.Max(m, 1e-10), 1)
	}

	lambdaBox := make([]float64, len(slackBox))
	for i, s := range slackBox {
		lambdaBox[i] = mu / math.Max(s, 1e-14)
	}
	lambdaCon := make([]float64, len(slackCon))
	for i, s := range slackCon {
		lambdaCon[i] = mu / math.Max(s, 1e-14)
	}
	lambdaBoxEq := make([]float64, len(cc.boxEq))
	lambdaConEq := make([]float64, len(cc.conEq))

	penalty := 10 * math.Max(NormInf(gx), 1)
	bestX, bestFx := Clone(x), fx

	for iter := 1; iter <= o.MaxIterations; iter++ {
		hm := hessFn(x)

		ji := buildIneqJacobian(n, cc, jc)
		allSlack := concat(slackBox, slackCon)
		allLambda := concat(lambdaBox, lambdaCon)
		sigmaVec := make([]float64, len(allSlack))
		for i, s := range allSlack {
			sigmaVec[i] = allLambda[i] / math.Max(s, 1e-20)
		}

		var hTilde [][]float64
		if nIneq > 0 && len(ji) > 0 {
			hTilde = matAdd(hm, matTDiagMat(ji, sigmaVec))
		} else {
			hTilde = make([][]float64, len(hm))
			for i := range hm {
				hTilde[i] = Clone(hm[i])
			}
		}

		correction := make([]float64, len(allSlack))
		for i, s := range allSlack {
			correction[i] = -mu / math.Max(s, 1e-20)
		}
		gTilde := Clone(gx)
		if nIneq > 0 && len(ji) > 0 {
			gTilde = Add(gTilde, matTVec(ji, correction))
		}

		var dx, dLambdaEq []float64
		if nEq > 0 {
			je := buildEqJacobian(n, cc, jc)
			gEq := equalityResidual(x, cx, cc)
			gTilde = Sub(gTilde, matTVec(je, concat(lambdaBoxEq, lambdaConEq)))

			v := robustSolve(hTilde, Negate(gTilde))

			yCols := make([][]float64, nEq)
			for j := 0; j < nEq; j++ {
				yCols[j] = robustSolve(hTilde, je[j])
			}

			mMat := make([][]float64, nEq)
			for i := 0; i < nEq; i++ {
				mMat[i] = make([]float64, nEq)
				for j := 0; j < nEq; j++ {
					mMat[i][j] = Dot(je[i], yCols[j])
				}
			}

			rhs := make([]float64, nEq)
			for i, row := range je {
				rhs[i] = -(gEq[i] + Dot(row, v))
			}
			dLambdaEq = robustSolve(mMat, rhs)

			dx = v
			for j := 0; j < nEq; j++ {
				dx = AddScaled(dx, yCols[j], dLambdaEq[j])
			}
		} else {
			dx = robustSolve(hTilde, Negate(gTilde))
		}

		dSlackBox := make([]float64, len(cc.boxIneq))
		for i, e := range cc.boxIneq {
			dSlackBox[i] = e.sigma * dx[e.idx]
		}
		dSlackCon := make([]float64, len(cc.conIneq))
		for i := range cc.conIneq {
			if row := len(cc.boxIneq) + i; row < len(ji) {
				dSlackCon[i] = Dot(ji[row], dx)
			}
		}
		dLambdaBox := make([]float64, len(slackBox))
		for i, s := range slackBox {
			dLambdaBox[i] = (mu/math.Max(s, 1e-20) - lambdaBox[i]) - lambdaBox[i]/math.Max(s, 1e-20)*dSlackBox[i]
		}
		dLambdaCon := make([]float64, len(slackCon))
		for i, s := range slackCon {
			dLambdaCon[i] = (mu/math.Max(s, 1e-20) - lambdaCon[i]) - lambdaCon[i]/math.Max(s, 1e-20)*dSlackCon[i]
		}

		allDSlack := concat(dSlackBox, dSlackCon)
		allDLambda := concat(dLambdaBox, dLambdaCon)

		alphaPMax, alphaDMax := 1.0, 1.0
		if nIneq > 0 {
			alphaPMax = maxFractionToBoundary(allSlack, allDSlack, 0.995)
			alphaDMax = maxFractionToBoundary(allLambda, allDLambda, 0.995)
		}

		merit := func(fv float64, sb, sc, eqRes []float64) (float64, bool) {
			val, valid := fv, true
			for _, s := range sb {
				if s > 0 {
					val -= mu * math.Log(s)
				} else {
					val, valid = math.Inf(1), false
				}
			}
			for _, s := range sc {
				if s > 0 {
					val -= mu * math.Log(s)
				} else {
					val, valid = math.Inf(1), false
				}
			}
			for _, r := range eqRes {
				val += penalty * math.Abs(r)
			}
			return val, valid
		}

		merit0, _ := merit(fx, slackBox, slackCon, equalityResidual(x, cx, cc))

		alphaP := alphaPMax
		xNew, fNew, cxNew := Clone(x), fx, Clone(cx)

		for trial := 0; trial < 40; trial++ {
			xNew = AddScaled(x, dx, alphaP)
			for i := 0; i < n; i++ {
				lo, hi := boxLower[i], boxUpper[i]
				if lo == hi {
					xNew[i] = lo
					continue
				}
				if !math.IsInf(lo, 0) {
					xNew[i] = math.Max(xNew[i], lo+1e-14)
				}
				if !math.IsInf(hi, 0) {
					xNew[i] = math.Min(xNew[i], hi-1e-14)
				}
			}
			fNew = f(xNew)
			if conFn != nil {
				cxNew = conFn(xNew)
			}
			numEval++

			sbNew, scNew := computeSlacks(xNew, cxNew, cc)
			meritNew, valid := merit(fNew, sbNew, scNew, equalityResidual(xNew, cxNew, cc))
			if valid && finite(meritNew) && meritNew < merit0+1e-8 {
				break
			}
			alphaP *= 0.5
		}

		xPrev, fPrev := x, fx
		x, fx, cx = xNew, fNew, cxNew

		if finite(fx) && fx < bestFx {
			bestX, bestFx = Clone(x), fx
		}
		unstable := !finite(fx)
		for i := 0; !unstable && i < n; i++ {
			unstable = !finite(x[i])
		}
		if unstable {
			res := &Result{
				X: bestX, Fun: bestFx, Gradient: gx,
				Iterations: iter, FunctionCalls: numEval, GradientCalls: numGrad,
				Converged: false, Message: "Stopped: numerical instability (NaN detected)",
			}
			log.printExit(res)
			return res
		}

		slackBox, slackCon = computeSlacks(x, cx, cc)

		for i := range lambdaBox {
			lambdaBox[i] = math.Min(math.Max(lambdaBox[i]+alphaDMax*dLambdaBox[i], 1e-20), 1e12)
		}
		for i := range lambdaCon {
			lambdaCon[i] = math.Min(math.Max(lambdaCon[i]+alphaDMax*dLambdaCon[i], 1e-20), 1e12)
		}
		if nEq > 0 {
			allEq := concat(lambdaBoxEq, lambdaConEq)
			for i := range allEq {
				if i < len(dLambdaEq) {
					allEq[i] += alphaDMax * dLambdaEq[i]
				}
			}
			lambdaBoxEq = allEq[:len(cc.boxEq)]
			lambdaConEq = allEq[len(cc.boxEq):]
		}

		gx = gradFn(x)
		numGrad++
		if conFn != nil {
			jc = conJac(x)
		}

		if nIneq > 0 {
			allS := concat(slackBox, slackCon)
			allL := concat(lambdaBox, lambdaCon)
			muCurrent := 0.0
			for i, s := range allS {
				muCurrent += s * allL[i]
			}
			muCurrent /= float64(nIneq)
			alphaS := maxFractionToBoundary(allS, allDSlack, 0.995)
			alphaL := maxFractionToBoundary(allL, allDLambda, 0.995)
			muAff := 0.0
			for i, s := range allS {
				muAff += (s + alphaS*allDSlack[i]) * (allL[i] + alphaL*allDLambda[i])
			}
			muAff /= float64(nIneq)
			ratio := muAff / math.Max(muCurrent, 1e-25)
			sigma := ratio * ratio * ratio
			muNext := math.Max(sigma*muCurrent, muCurrent/10)
			mu = math.Max(math.Min(muNext, mu), 1e-20)
		}

		stepNorm := NormInf(Sub(x, xPrev))
		funcChange := math.Abs(fx - fPrev)

		log.printIter(iter, numEval, numGrad, fx, NormInf(gx))

		if hasConstraints {
			eqRes := equalityResidual(x, cx, cc)
			eqViol := 0.0
			for _, r := range eqRes {
				eqViol = math.Max(eqViol, math.Abs(r))
			}
			gradLag := Clone(gx)
			jiNow := buildIneqJacobian(n, cc, jc)
			jeNow := buildEqJacobian(n, cc, jc)
			if len(jiNow) > 0 {
				gradLag = Sub(gradLag, matTVec(jiNow, concat(lambdaBox, lambdaCon)))
			}
			if len(jeNow) > 0 {
				gradLag = Add(gradLag, matTVec(jeNow, concat(lambdaBoxEq, lambdaConEq)))
			}
			kktRes := math.Max(NormInf(gradLag), eqViol)
			if kktRes < io.KKTTol && mu < 1e-4 {
				return finish(iter, true,
					fmt.Sprintf("Converged: KKT residual %.2e below tolerance", kktRes))
			}
		} else if NormInf(gx) < o.GradTol {
			return finish(iter, true, msgAtMinimum)
		}

		if stepNorm < o.StepTol {
			return finish(iter, true, "Converged: step size below tolerance")
		}
		if funcChange < o.FuncTol && iter > 1 {
			return finish(iter, true, "Converged: function change below tolerance")
		}
	}

	return finish(o.MaxIterations, false,
		fmt.Sprintf("Stopped: reached maximum iterations (%d)", o.MaxIterations))
}
