// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sparse provides the compressed-column matrix kernel used by
// the conic solver: the storage format plus the two accumulating
// matrix-vector products the iteration engine and the termination
// oracle consume.
package sparse

// CSC is an m×n sparse matrix in compressed column storage.
//
// Column j holds the entries X[P[j]:P[j+1]] with row indices
// I[P[j]:P[j+1]]. The column pointers P have length n+1 and must be
// non-decreasing, row indices must lie in [0,m).
type CSC struct {
	M, N int       // rows, columns
	P    []int     // column pointers, length N+1
	I    []int     // row indices, length Nnz
	X    []float64 // entry values, length Nnz
}

// Nnz reports the number of stored entries.
func (a *CSC) Nnz() int { return a.P[a.N] }

// Clone returns a copy of a sharing no storage with the original.
func (a *CSC) Clone() *CSC {
	b := &CSC{M: a.M, N: a.N}
	b.P = append([]int(nil), a.P...)
	b.I = append([]int(nil), a.I...)
	b.X = append([]float64(nil), a.X...)
	return b
}

// MulVecAdd accumulates y += A·x.
// The slice x must have length N and y length M.
func (a *CSC) MulVecAdd(x, y []float64) {
	if len(x) != a.N || len(y) != a.M {
		panic("sparse: dimension mismatch")
	}
	for j := 0; j < a.N; j++ {
		xj := x[j]
		if xj == 0 {
			continue
		}
		for p := a.P[j]; p < a.P[j+1]; p++ {
			y[a.I[p]] += a.X[p] * xj
		}
	}
}

// MulTransVecAdd accumulates x += Aᵀ·y.
// The slice y must have length M and x length N.
func (a *CSC) MulTransVecAdd(y, x []float64) {
	if len(y) != a.M || len(x) != a.N {
		panic("sparse: dimension mismatch")
	}
	for j := 0; j < a.N; j++ {
		var s float64
		for p := a.P[j]; p < a.P[j+1]; p++ {
			s += a.X[p] * y[a.I[p]]
		}
		x[j] += s
	}
}
