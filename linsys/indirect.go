// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linsys

import (
	"fmt"
	"math"
	"time"

	"github.com/curioloop/conic/sparse"

	"gonum.org/v1/gonum/floats"
)

const (
	cgRate    = 2.0  // inner tolerance decays as (iter+1)^-cgRate
	cgBestTol = 1e-9 // tolerance floor, also used for startup solves
)

// Indirect solves the saddle-point system without a factorization.
// Eliminating the y-block reduces it to the positive-definite system
//
//	(ρI + AᵀA)·x = rx + Aᵀ·ry,  y = A·x - ry
//
// which conjugate gradient solves to a tolerance that tightens as the
// outer iteration proceeds. The previous outer iterate warm starts
// the inner iteration, so late outer iterations need only a few
// matrix products.
type Indirect struct {
	a    *sparse.CSC
	rhoX float64

	// CG work vectors (length n) and a product scratch (length m)
	x, r, p, gp []float64
	tmp         []float64

	maxIters int
	cgIters  int
	solves   int
	elapsed  time.Duration
}

// NewIndirect prepares the conjugate-gradient state for the m×n
// constraint matrix a.
func NewIndirect(a *sparse.CSC, rhoX float64) (*Indirect, error) {
	n, m := a.N, a.M
	return &Indirect{
		a:    a,
		rhoX: rhoX,
		x:    make([]float64, n),
		r:    make([]float64, n),
		p:    make([]float64, n),
		gp:   make([]float64, n),
		tmp:  make([]float64, m),
		// the reduced system is n×n, CG terminates in at most n steps
		maxIters: max(2*n, 20),
	}, nil
}

// Method implements Solver.
func (s *Indirect) Method() string { return "conjugate gradient" }

// Free implements Solver.
func (s *Indirect) Free() {
	if s != nil {
		s.x, s.r, s.p, s.gp, s.tmp = nil, nil, nil, nil, nil
	}
}

// Summary implements Solver.
func (s *Indirect) Summary() string {
	if s.solves == 0 {
		return ""
	}
	avgIt := float64(s.cgIters) / float64(s.solves)
	avgMs := s.elapsed.Seconds() / float64(s.solves) * 1e3
	return fmt.Sprintf("avg CG iterations: %.2f, avg solve time: %.2e ms\n", avgIt, avgMs)
}

// Solve implements Solver.
func (s *Indirect) Solve(rhs, warm []float64, iter int) {
	start := time.Now()
	n, m := s.a.N, s.a.M
	rx, ry := rhs[:n], rhs[n:n+m]

	// reduced right-hand side b = rx + Aᵀ·ry, formed in place
	s.a.MulTransVecAdd(ry, rx)

	tol := cgBestTol
	if iter >= 0 {
		tol = math.Max(cgBestTol, floats.Norm(rx, 2)*math.Pow(float64(iter+1), -cgRate))
	}
	if warm != nil {
		copy(s.x, warm[:n])
	} else {
		for i := range s.x {
			s.x[i] = 0
		}
	}
	s.cg(rx, tol)
	copy(rx, s.x)

	// y = A·x - ry
	floats.Scale(-1, ry)
	s.a.MulVecAdd(rx, ry)

	s.solves++
	s.elapsed += time.Since(start)
}

// matVec computes dst = (ρI + AᵀA)·src.
func (s *Indirect) matVec(src, dst []float64) {
	for i := range s.tmp {
		s.tmp[i] = 0
	}
	s.a.MulVecAdd(src, s.tmp)
	for i := range dst {
		dst[i] = s.rhoX * src[i]
	}
	s.a.MulTransVecAdd(s.tmp, dst)
}

// cg runs plain conjugate gradient on the reduced system, refining
// s.x until the residual norm drops below tol.
func (s *Indirect) cg(b []float64, tol float64) {
	s.matVec(s.x, s.r)
	floats.Scale(-1, s.r)
	floats.Add(s.r, b) // r = b - M·x
	rho := floats.Dot(s.r, s.r)
	if math.Sqrt(rho) <= tol {
		return
	}
	copy(s.p, s.r)
	for k := 0; k < s.maxIters; k++ {
		s.matVec(s.p, s.gp)
		alpha := rho / floats.Dot(s.p, s.gp)
		floats.AddScaled(s.x, alpha, s.p)
		floats.AddScaled(s.r, -alpha, s.gp)
		rhoNext := floats.Dot(s.r, s.r)
		s.cgIters++
		if math.Sqrt(rhoNext) <= tol {
			return
		}
		beta := rhoNext / rho
		rho = rhoNext
		// p = r + β·p
		floats.Scale(beta, s.p)
		floats.Add(s.p, s.r)
	}
}
