// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scs

import (
	"math"
	"testing"

	"github.com/curioloop/conic/cone"
	"github.com/curioloop/conic/sparse"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func equilTestMatrix() *sparse.CSC {
	// ⎡ 4  0⎤
	// ⎢-2  8⎥
	// ⎣ 0  3⎦
	return &sparse.CSC{
		M: 3, N: 2,
		P: []int{0, 2, 4},
		I: []int{0, 1, 1, 2},
		X: []float64{4, -2, 8, 3},
	}
}

func rowColNorms(a *sparse.CSC) (rows, cols []float64) {
	rows = make([]float64, a.M)
	cols = make([]float64, a.N)
	for j := 0; j < a.N; j++ {
		for p := a.P[j]; p < a.P[j+1]; p++ {
			rows[a.I[p]] += a.X[p] * a.X[p]
			cols[j] += a.X[p] * a.X[p]
		}
	}
	for i := range rows {
		rows[i] = math.Sqrt(rows[i])
	}
	for j := range cols {
		cols[j] = math.Sqrt(cols[j])
	}
	return rows, cols
}

func TestNormalizeAColumnNorms(t *testing.T) {
	a := equilTestMatrix()
	k := &cone.Cone{Pos: 3}
	sc := normalizeA(a, k)
	require.Len(t, sc.d, 3)
	require.Len(t, sc.e, 2)

	_, cols := rowColNorms(a)
	for _, nm := range cols {
		assert.InDelta(t, 1, nm, 1e-12, "columns scale to unit norm")
	}
	assert.Greater(t, sc.meanNormRowA, 0.0)
	assert.Equal(t, 1.0, sc.scale)
}

func TestNormalizeAConeBlocks(t *testing.T) {
	a := equilTestMatrix()
	k := &cone.Cone{Soc: []int{3}}
	sc := normalizeA(a, k)
	// rows inside one second-order block share a single scale
	assert.Equal(t, sc.d[0], sc.d[1])
	assert.Equal(t, sc.d[1], sc.d[2])
}

func TestScaleBCRoundTrip(t *testing.T) {
	a := equilTestMatrix()
	k := &cone.Cone{Pos: 3}
	sc := normalizeA(a, k)

	b := []float64{4, 3, 5}
	c := []float64{-1, -2}
	b0 := append([]float64(nil), b...)
	c0 := append([]float64(nil), c...)
	sc.scaleBC(b, c)

	sol := &Solution{X: make([]float64, 2), Y: make([]float64, 3), S: make([]float64, 3)}
	sc.unscaleSolBC(sol, b, c)
	assert.InDeltaSlice(t, b0, b, 1e-12, "unscale restores b")
	assert.InDeltaSlice(t, c0, c, 1e-12, "unscale restores c")
}

func TestWarmStartScalingRoundTrip(t *testing.T) {
	a := equilTestMatrix()
	k := &cone.Cone{Pos: 3}
	sc := normalizeA(a, k)
	b := []float64{4, 3, 5}
	c := []float64{-1, -2}
	sc.scaleBC(b, c)

	n, m := 2, 3
	u := []float64{0.5, -1, 2, 3, -4, 1}
	v := []float64{0, 0, 1, 2, 3, 0}
	sol := &Solution{
		X: append([]float64(nil), u[:n]...),
		Y: append([]float64(nil), u[n:n+m]...),
		S: append([]float64(nil), v[n:n+m]...),
	}
	sc.scaleWarmStart(u, v, n, m)
	scaled := &Solution{
		X: append([]float64(nil), u[:n]...),
		Y: append([]float64(nil), u[n:n+m]...),
		S: append([]float64(nil), v[n:n+m]...),
	}
	bs := append([]float64(nil), b...)
	cs := append([]float64(nil), c...)
	sc.unscaleSolBC(scaled, bs, cs)
	assert.InDeltaSlice(t, sol.X, scaled.X, 1e-12, "warm-start map inverts the solution map")
	assert.InDeltaSlice(t, sol.Y, scaled.Y, 1e-12)
	assert.InDeltaSlice(t, sol.S, scaled.S, 1e-12)
}

func TestIdentityScaling(t *testing.T) {
	sc := identityScaling()
	assert.Equal(t, 1.0, sc.descale())
	assert.Nil(t, sc.d)
	assert.Nil(t, sc.e)
}
