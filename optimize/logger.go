// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optimize

import (
	"fmt"
	"io"
	"os"
)

// LogLevel controls the frequency and type of logger output
type LogLevel int

const (
	// LogNoop no output is generated (level < 0)
	LogNoop LogLevel = -1
	// LogLast print only one line at the last iteration
	LogLast LogLevel = 0
	// LogEval print also f and |proj g| every `level` iterations for any (0 < level < 99)
	LogEval LogLevel = 1
	// LogTrace print details of every iteration including line search statistics
	LogTrace LogLevel = 99
)

// Logger handles logging output for the optimizer.
// Note the writers must be thread-safe.
type Logger struct {
	Level LogLevel
	Msg   io.Writer // Writer to output log messages.
	Out   io.Writer // Writer for output data.
}

// setup fills the defaults and makes a nil receiver usable.
func (l *Logger) setup() *Logger {
	if l == nil {
		l = new(Logger)
		l.Level = LogNoop
	}
	if l.Msg == nil {
		l.Msg = os.Stdout
	}
	if l.Out == nil {
		l.Out = os.Stderr
	}
	return l
}

func (l *Logger) enable(level LogLevel) bool {
	return l != nil && l.Level >= level
}

func (l *Logger) log(format string, a ...any) {
	if len(a) > 0 {
		_, _ = fmt.Fprintf(l.Msg, format, a...)
	} else {
		_, _ = fmt.Fprint(l.Msg, format)
	}
}

func (l *Logger) out(format string, a ...any) {
	if len(a) > 0 {
		_, _ = fmt.Fprintf(l.Out, format, a...)
	} else {
		_, _ = fmt.Fprint(l.Out, format)
	}
}

// printInit logs the banner of a solver run, including machine
// precision and the problem dimension.
func (l *Logger) printInit(name string, n int) {
	if !l.enable(LogLast) {
		return
	}
	l.log("RUNNING THE %s CODE\n", name)
	l.log("           * * *\n")
	l.log("Machine precision = %10.3e\n", epsmch)
	l.log("N = %d\n", n)
	if l.enable(LogEval) {
		l.out("RUNNING THE %s CODE\n\n", name)
		l.out("\n   it   nf   ng      |g|          f\n")
	}
}

// every reports whether the iterate line is due at this iteration.
func (l *Logger) every(iter int) bool {
	if !l.enable(LogEval) {
		return false
	}
	k := int(l.Level)
	if k >= int(LogTrace) {
		k = 1
	}
	return iter%k == 0
}

// printIter logs the current iteration details for gradient solvers.
func (l *Logger) printIter(iter, nf, ng int, f, gNorm float64) {
	if l.every(iter) {
		l.log("At iterate %5d    f= %12.5e    |proj g|= %12.5e\n", iter, f, gNorm)
		l.out(" %4d %4d %4d   %10.3e %10.3e\n", iter, nf, ng, gNorm, f)
	}
}

// printIterF logs the current iteration details for derivative-free solvers.
func (l *Logger) printIterF(iter, nf int, f float64) {
	if l.every(iter) {
		l.log("At iterate %5d    f= %12.5e\n", iter, f)
		l.out(" %4d %4d    -   %10.3e\n", iter, nf, f)
	}
}

// printSearch logs line search statistics of one iteration.
func (l *Logger) printSearch(numEval int, stpNorm float64) {
	if l.enable(LogTrace) {
		l.log("LINE SEARCH %d times; norm of step = %12.5e\n", numEval, stpNorm)
	}
}

// printExit logs the final statistics and stop reason of a solver run.
func (l *Logger) printExit(res *Result) {
	if !l.enable(LogLast) {
		return
	}
	l.log("\n           * * *\n")
	l.log("Tit   = total number of iterations\n")
	l.log("Tnf   = total number of function evaluations\n")
	l.log("Tng   = total number of gradient evaluations\n")
	l.log("F     = final function value\n")
	l.log("\n           * * *\n")
	l.log("\n  Tit     Tnf     Tng            F\n")
	l.log("%5d %7d %7d %14.5e\n", res.Iterations, res.FunctionCalls, res.GradientCalls, res.Fun)
	l.log("STOP: %s\n", res.Message)
}
