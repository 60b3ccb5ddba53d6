// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linsys

import (
	"fmt"
	"time"

	"github.com/curioloop/conic/sparse"
)

// Direct solves the saddle-point system by a one-time sparse LDLᵀ
// factorization in natural ordering. The (+ρI, -I) block signature
// makes the matrix quasi-definite, so the factorization exists with a
// nonzero diagonal D and needs no pivoting across blocks.
type Direct struct {
	order int // n + m

	// factor L (unit lower triangular, by columns) and diagonal d
	lp []int
	li []int
	lx []float64
	d  []float64

	solves  int
	elapsed time.Duration
}

// NewDirect assembles the upper triangle of the quasi-definite matrix
// for the m×n constraint matrix a and factorizes it.
func NewDirect(a *sparse.CSC, rhoX float64) (*Direct, error) {
	kp, ki, kx := assembleKKT(a, rhoX)
	s := &Direct{order: a.N + a.M}
	if err := s.factorize(kp, ki, kx); err != nil {
		return nil, err
	}
	return s, nil
}

// Method implements Solver.
func (s *Direct) Method() string { return "sparse LDL^T factorization" }

// Free implements Solver.
func (s *Direct) Free() {
	if s != nil {
		s.lp, s.li, s.lx, s.d = nil, nil, nil, nil
	}
}

// Summary implements Solver.
func (s *Direct) Summary() string {
	if s.solves == 0 {
		return ""
	}
	avg := s.elapsed.Seconds() / float64(s.solves) * 1e3
	return fmt.Sprintf("avg direct solve time: %.2e ms\n", avg)
}

// Solve implements Solver: two triangular sweeps and a diagonal
// scale, in place over the first n+m entries of rhs.
func (s *Direct) Solve(rhs, warm []float64, iter int) {
	_, _ = warm, iter // a cached factorization needs neither
	start := time.Now()
	x := rhs[:s.order]
	lp, li, lx, d := s.lp, s.li, s.lx, s.d
	for j := 0; j < s.order; j++ {
		xj := x[j]
		if xj != 0 {
			for p := lp[j]; p < lp[j+1]; p++ {
				x[li[p]] -= lx[p] * xj
			}
		}
	}
	for j := 0; j < s.order; j++ {
		x[j] /= d[j]
	}
	for j := s.order - 1; j >= 0; j-- {
		var acc float64
		for p := lp[j]; p < lp[j+1]; p++ {
			acc += lx[p] * x[li[p]]
		}
		x[j] -= acc
	}
	s.solves++
	s.elapsed += time.Since(start)
}

// assembleKKT builds the upper triangle of
//
//	⎡ρI  Aᵀ⎤
//	⎣A   -I⎦
//
// in compressed-column form with sorted row indices: the first n
// columns hold the ρ diagonal, column n+r holds row r of A above the
// -1 diagonal entry.
func assembleKKT(a *sparse.CSC, rhoX float64) (kp, ki []int, kx []float64) {
	n, m := a.N, a.M
	order := n + m
	cnt := make([]int, order)
	for j := 0; j < n; j++ {
		cnt[j] = 1
	}
	for j := 0; j < m; j++ {
		cnt[n+j] = 1
	}
	for p := 0; p < a.Nnz(); p++ {
		cnt[n+a.I[p]]++
	}
	kp = make([]int, order+1)
	for j := 0; j < order; j++ {
		kp[j+1] = kp[j] + cnt[j]
	}
	ki = make([]int, kp[order])
	kx = make([]float64, kp[order])
	next := make([]int, order)
	copy(next, kp[:order])
	for j := 0; j < n; j++ {
		ki[next[j]] = j
		kx[next[j]] = rhoX
		next[j]++
	}
	// columns of A appended in ascending order keep each KKT column sorted
	for c := 0; c < n; c++ {
		for p := a.P[c]; p < a.P[c+1]; p++ {
			col := n + a.I[p]
			ki[next[col]] = c
			kx[next[col]] = a.X[p]
			next[col]++
		}
	}
	for j := 0; j < m; j++ {
		ki[next[n+j]] = n + j
		kx[next[n+j]] = -1
		next[n+j]++
	}
	return kp, ki, kx
}

// factorize computes the LDLᵀ factorization of the assembled upper
// triangle: an elimination-tree symbolic pass to size the columns of
// L, then an up-looking numeric pass.
func (s *Direct) factorize(kp, ki []int, kx []float64) error {
	order := s.order
	parent := make([]int, order)
	lnz := make([]int, order)
	flag := make([]int, order)

	for k := 0; k < order; k++ {
		parent[k] = -1
		flag[k] = k
		for p := kp[k]; p < kp[k+1]; p++ {
			for i := ki[p]; i < k && flag[i] != k; i = parent[i] {
				if parent[i] == -1 {
					parent[i] = k
				}
				lnz[i]++
				flag[i] = k
			}
		}
	}

	s.lp = make([]int, order+1)
	for k := 0; k < order; k++ {
		s.lp[k+1] = s.lp[k] + lnz[k]
	}
	s.li = make([]int, s.lp[order])
	s.lx = make([]float64, s.lp[order])
	s.d = make([]float64, order)

	y := make([]float64, order)
	pattern := make([]int, order)
	next := make([]int, order)
	copy(next, s.lp[:order])

	for k := 0; k < order; k++ {
		top := order
		flag[k] = k
		for p := kp[k]; p < kp[k+1]; p++ {
			i := ki[p]
			if i > k {
				continue
			}
			y[i] += kx[p]
			depth := 0
			for ; flag[i] != k; i = parent[i] {
				pattern[depth] = i
				depth++
				flag[i] = k
			}
			for depth > 0 {
				depth--
				top--
				pattern[top] = pattern[depth]
			}
		}
		s.d[k] = y[k]
		y[k] = 0
		for ; top < order; top++ {
			i := pattern[top]
			yi := y[i]
			y[i] = 0
			for p := s.lp[i]; p < next[i]; p++ {
				y[s.li[p]] -= s.lx[p] * yi
			}
			lki := yi / s.d[i]
			s.d[k] -= lki * yi
			s.li[next[i]] = k
			s.lx[next[i]] = lki
			next[i]++
		}
		if s.d[k] == 0 {
			return ErrSingular
		}
	}
	return nil
}
