// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// the 3×2 matrix
//
//	⎡ 1  0⎤
//	⎢-2  4⎥
//	⎣ 0  3⎦
func testMatrix() *CSC {
	return &CSC{
		M: 3, N: 2,
		P: []int{0, 2, 4},
		I: []int{0, 1, 1, 2},
		X: []float64{1, -2, 4, 3},
	}
}

func TestNnz(t *testing.T) {
	assert.Equal(t, 4, testMatrix().Nnz())
}

func TestMulVecAdd(t *testing.T) {
	a := testMatrix()
	y := []float64{1, 1, 1}
	a.MulVecAdd([]float64{2, -1}, y)
	// y += A·(2,-1) = (2,-8,-3)
	assert.InDeltaSlice(t, []float64{3, -7, -2}, y, 1e-15)
}

func TestMulTransVecAdd(t *testing.T) {
	a := testMatrix()
	x := []float64{1, 0}
	a.MulTransVecAdd([]float64{1, 2, 3}, x)
	// x += Aᵀ·(1,2,3) = (-3,17)
	assert.InDeltaSlice(t, []float64{-2, 17}, x, 1e-15)
}

func TestMulDimensionMismatch(t *testing.T) {
	a := testMatrix()
	assert.Panics(t, func() { a.MulVecAdd([]float64{1}, make([]float64, 3)) })
	assert.Panics(t, func() { a.MulTransVecAdd(make([]float64, 2), make([]float64, 2)) })
}

func TestClone(t *testing.T) {
	a := testMatrix()
	b := a.Clone()
	require.Equal(t, a.P, b.P)
	require.Equal(t, a.I, b.I)
	require.Equal(t, a.X, b.X)
	b.X[0] = 99
	b.I[0] = 2
	assert.Equal(t, 1.0, a.X[0], "clone must not share value storage")
	assert.Equal(t, 0, a.I[0], "clone must not share index storage")
}
