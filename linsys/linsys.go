// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linsys solves the fixed quasi-definite saddle-point system
//
//	⎡ρI  Aᵀ⎤ ⎡x⎤   ⎡rx⎤
//	⎣A   -I⎦ ⎣y⎦ = ⎣ry⎦
//
// that realizes the linear-subspace projection of the splitting
// iteration. Two interchangeable implementations are provided: a
// direct sparse LDLᵀ factorization and an indirect conjugate-gradient
// method on the reduced system. The iteration engine depends only on
// the Solver contract, so swapping one for the other is a
// configuration choice.
package linsys

import "errors"

// ErrSingular is returned by setup when the factorization meets a
// vanishing pivot. The system is quasi-definite for any ρ > 0, so this
// indicates inconsistent input data rather than an unlucky ordering.
var ErrSingular = errors.New("linsys: singular quasi-definite system")

// Solver is the capability record the iteration engine consumes.
//
// Solve overwrites the first n+m entries of rhs with the solution of
// the saddle-point system. warm, when non-nil, carries at least n+m
// entries whose prefix seeds iterative implementations; direct
// implementations ignore it. iter is the outer iteration counter (-1
// for the one-time startup solve) and may tune inner tolerances.
type Solver interface {
	// Method describes the implementation for the solver banner.
	Method() string
	// Solve solves the system with rhs in place.
	Solve(rhs, warm []float64, iter int)
	// Summary reports accumulated statistics for the solver footer,
	// or "" when there is nothing to report.
	Summary() string
	// Free releases the factorization or iteration state. Safe to
	// call more than once.
	Free()
}
