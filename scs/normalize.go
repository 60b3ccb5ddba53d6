// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scs

import (
	"math"

	"github.com/curioloop/conic/cone"
	"github.com/curioloop/conic/sparse"

	"gonum.org/v1/gonum/floats"
)

const (
	minScale = 1e-2
	maxScale = 1e3
)

// scaling holds the equilibration of one workspace: diagonal row
// scales d, column scales e and the scalars applied to b, c. All of
// it is fixed for the duration of a solve; undoing it restores the
// original sense of the returned Solution.
type scaling struct {
	d, e         []float64
	scB, scC     float64
	scale        float64
	meanNormRowA float64
}

func identityScaling() scaling {
	return scaling{scB: 1, scC: 1, scale: 1}
}

// descale is the factor dividing cᵀx, bᵀy and κ back to the original
// problem scale.
func (sc *scaling) descale() float64 { return sc.scale * sc.scC * sc.scB }

// normalizeA equilibrates a in place: rows by their 2-norms averaged
// across each cone block (a second-order, semidefinite or exponential
// block must keep a single scale), then columns by the norms of the
// row-scaled matrix, both capped at maxScale. Row and column norms
// below minScale are left unscaled (scale 1) rather than amplified.
func normalizeA(a *sparse.CSC, k *cone.Cone) scaling {
	m, n := a.M, a.N
	d := make([]float64, m)
	e := make([]float64, n)

	for p := 0; p < a.Nnz(); p++ {
		d[a.I[p]] += a.X[p] * a.X[p]
	}
	for i := range d {
		d[i] = math.Sqrt(d[i])
	}

	off := k.Zero + k.Pos
	for _, q := range k.Soc {
		blockMean(d[off : off+q])
		off += q
	}
	for _, side := range k.Psd {
		blockMean(d[off : off+side*side])
		off += side * side
	}
	for i := 0; i < k.ExpPrimal+k.ExpDual; i++ {
		blockMean(d[off : off+3])
		off += 3
	}

	for i := range d {
		if d[i] < minScale {
			d[i] = 1
		} else if d[i] > maxScale {
			d[i] = maxScale
		}
	}
	for p := 0; p < a.Nnz(); p++ {
		a.X[p] /= d[a.I[p]]
	}

	for j := 0; j < n; j++ {
		col := a.X[a.P[j]:a.P[j+1]]
		nm := floats.Norm(col, 2)
		if nm < minScale {
			nm = 1
		} else if nm > maxScale {
			nm = maxScale
		}
		e[j] = nm
		floats.Scale(1/nm, col)
	}

	rowNorms := make([]float64, m)
	for p := 0; p < a.Nnz(); p++ {
		rowNorms[a.I[p]] += a.X[p] * a.X[p]
	}
	var mean float64
	for i := range rowNorms {
		mean += math.Sqrt(rowNorms[i])
	}
	mean /= float64(m)

	return scaling{d: d, e: e, scB: 1, scC: 1, scale: 1, meanNormRowA: mean}
}

// scaleBC equilibrates b and c in place against the row and column
// scales and fixes the scalars scB, scC.
func (sc *scaling) scaleBC(b, c []float64) {
	for i := range b {
		b[i] /= sc.d[i]
	}
	sc.scB = sc.meanNormRowA / math.Max(floats.Norm(b, 2), minScale)
	for j := range c {
		c[j] /= sc.e[j]
	}
	sc.scC = sc.meanNormRowA / math.Max(floats.Norm(c, 2), minScale)
	floats.Scale(sc.scB*sc.scale, b)
	floats.Scale(sc.scC*sc.scale, c)
}

// scaleWarmStart maps an unscaled warm start onto the equilibrated
// problem: x̂ = σ·σ_b·(e∘x), ŷ = σ·σ_c·(d∘y), ŝ = σ·σ_b·(s/d).
func (sc *scaling) scaleWarmStart(u, v []float64, n, m int) {
	for i := 0; i < n; i++ {
		u[i] *= sc.e[i] * sc.scB * sc.scale
	}
	for i := 0; i < m; i++ {
		u[n+i] *= sc.d[i] * sc.scC * sc.scale
	}
	for i := 0; i < m; i++ {
		v[n+i] *= sc.scB * sc.scale / sc.d[i]
	}
}

// unscaleSolBC inverts the equilibration on the returned Solution and
// restores the workspace copies of b and c for a subsequent Run.
func (sc *scaling) unscaleSolBC(sol *Solution, b, c []float64) {
	for i := range sol.X {
		sol.X[i] /= sc.e[i] * sc.scB * sc.scale
	}
	for i := range sol.Y {
		sol.Y[i] /= sc.d[i] * sc.scC * sc.scale
	}
	for i := range sol.S {
		sol.S[i] *= sc.d[i] / (sc.scB * sc.scale)
	}
	for i := range b {
		b[i] *= sc.d[i] / (sc.scB * sc.scale)
	}
	for j := range c {
		c[j] *= sc.e[j] / (sc.scC * sc.scale)
	}
}

func blockMean(block []float64) {
	var mean float64
	for _, v := range block {
		mean += v
	}
	mean /= float64(len(block))
	for i := range block {
		block[i] = mean
	}
}
