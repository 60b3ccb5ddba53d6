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

	"gonum.org/v1/gonum/floats"
)

// minimize -x subject to x + s = 1, s ≥ 0: optimum x = 1, cᵀx = -1.
func trivialLP() *Problem {
	return &Problem{
		M: 1, N: 1,
		A:        &sparse.CSC{M: 1, N: 1, P: []int{0, 1}, I: []int{0}, X: []float64{1}},
		B:        []float64{1},
		C:        []float64{-1},
		K:        cone.Cone{Pos: 1},
		Settings: DefaultSettings(),
	}
}

func TestTrivialLP(t *testing.T) {
	p := trivialLP()
	var sol Solution
	var info Info
	st := Solve(p, &sol, &info)
	require.Equal(t, Solved, st)
	assert.Equal(t, Solved, info.StatusVal)
	assert.Equal(t, "Solved", info.Status)
	assert.InDelta(t, 1.0, sol.X[0], 5e-2)
	assert.InDelta(t, -1.0, info.Pobj, 5e-2)
	assert.Less(t, info.RelGap, 1.1e-3, "duality gap within tolerance on success")
	assert.Less(t, info.ResPri, 2e-3)
	assert.Less(t, info.ResDual, 2e-3)
	assert.Greater(t, info.Iter, 0)
}

func TestInfeasible(t *testing.T) {
	// x ≤ 1 and x ≥ 2 cannot hold together
	p := &Problem{
		M: 2, N: 1,
		A:        &sparse.CSC{M: 2, N: 1, P: []int{0, 2}, I: []int{0, 1}, X: []float64{1, -1}},
		B:        []float64{1, -2},
		C:        []float64{1},
		K:        cone.Cone{Pos: 2},
		Settings: DefaultSettings(),
	}
	var sol Solution
	var info Info
	st := Solve(p, &sol, &info)
	require.Equal(t, Infeasible, st)
	assert.Equal(t, -1.0, info.Dobj, "certificate normalized to b'y = -1")
	assert.Less(t, info.ResDual, 1.1e-3, "‖Aᵀy‖·‖b‖/(-bᵀy) below tolerance")
	for _, yi := range sol.Y {
		assert.GreaterOrEqual(t, yi, -1e-12, "certificate stays in the dual cone")
	}
	for _, xi := range sol.X {
		assert.True(t, math.IsNaN(xi), "x carries no information when infeasible")
	}
}

func TestUnbounded(t *testing.T) {
	// minimize x₁+x₂ subject to x + s = 0, s ≥ 0 ⇒ x ≤ 0, unbounded below
	p := &Problem{
		M: 2, N: 2,
		A:        &sparse.CSC{M: 2, N: 2, P: []int{0, 1, 2}, I: []int{0, 1}, X: []float64{1, 1}},
		B:        []float64{0, 0},
		C:        []float64{1, 1},
		K:        cone.Cone{Pos: 2},
		Settings: DefaultSettings(),
	}
	var sol Solution
	var info Info
	st := Solve(p, &sol, &info)
	require.Equal(t, Unbounded, st)
	assert.Equal(t, -1.0, info.Pobj, "ray normalized to c'x = -1")
	cTx := floats.Dot(p.C, sol.X)
	assert.InDelta(t, -1.0, cTx, 1e-6)
	// Ax + s ≈ 0 along the ray, s in the cone
	res := make([]float64, 2)
	p.A.MulVecAdd(sol.X, res)
	floats.Add(res, sol.S)
	assert.Less(t, floats.Norm(res, 2), 1e-3)
	for _, si := range sol.S {
		assert.GreaterOrEqual(t, si, -1e-9)
	}
	for _, yi := range sol.Y {
		assert.True(t, math.IsNaN(yi), "y carries no information when unbounded")
	}
}

func TestSOCPFeasibility(t *testing.T) {
	// minimize 0 subject to (1, x) ∈ SOC₃, i.e. ‖x‖ ≤ 1
	p := &Problem{
		M: 3, N: 2,
		A:        &sparse.CSC{M: 3, N: 2, P: []int{0, 1, 2}, I: []int{1, 2}, X: []float64{-1, -1}},
		B:        []float64{1, 0, 0},
		C:        []float64{0, 0},
		K:        cone.Cone{Soc: []int{3}},
		Settings: DefaultSettings(),
	}
	var sol Solution
	var info Info
	st := Solve(p, &sol, &info)
	require.Equal(t, Solved, st)
	assert.InDelta(t, 0, info.Pobj, 1e-2)
	assert.LessOrEqual(t, floats.Norm(sol.X, 2), 1.01, "returned point is feasible")
}

func TestWarmStartResolve(t *testing.T) {
	p := trivialLP()
	var sol Solution
	var info Info
	require.Equal(t, Solved, Solve(p, &sol, &info))

	p.Settings.WarmStart = true
	var info2 Info
	require.Equal(t, Solved, Solve(p, &sol, &info2))
	assert.LessOrEqual(t, info2.Iter, convergedInterval,
		"warm start from the optimum converges within one oracle sampling")
	assert.InDelta(t, 1.0, sol.X[0], 5e-2)
}

func TestEquilibrationInvariance(t *testing.T) {
	// minimize -x₁-2x₂ subject to x₁ ≤ 4, x₂ ≤ 3, x₁+x₂ ≤ 5
	base := func() *Problem {
		return &Problem{
			M: 3, N: 2,
			A: &sparse.CSC{M: 3, N: 2,
				P: []int{0, 2, 4},
				I: []int{0, 2, 1, 2},
				X: []float64{1, 1, 1, 1}},
			B:        []float64{4, 3, 5},
			C:        []float64{-1, -2},
			K:        cone.Cone{Pos: 3},
			Settings: DefaultSettings(),
		}
	}

	var ref Solution
	var info Info
	require.Equal(t, Solved, Solve(base(), &ref, &info))
	assert.InDelta(t, 2.0, ref.X[0], 5e-2)
	assert.InDelta(t, 3.0, ref.X[1], 5e-2)

	// diagonally rescale rows and columns; the de-equilibrated answer
	// must match the original up to the scaled tolerance
	row := []float64{2, 0.5, 10}
	col := []float64{4, 0.25}
	p := base()
	for j := 0; j < p.N; j++ {
		for q := p.A.P[j]; q < p.A.P[j+1]; q++ {
			p.A.X[q] *= row[p.A.I[q]] * col[j]
		}
	}
	for i := range p.B {
		p.B[i] *= row[i]
	}
	for j := range p.C {
		p.C[j] *= col[j]
	}
	var sol Solution
	var info2 Info
	require.Equal(t, Solved, Solve(p, &sol, &info2))
	for j := range col {
		assert.InDelta(t, ref.X[j], sol.X[j]*col[j], 1e-2*10,
			"recovered solution matches the unscaled one")
	}
}

func TestIndirectSolver(t *testing.T) {
	p := trivialLP()
	p.Settings.UseIndirect = true
	var sol Solution
	var info Info
	require.Equal(t, Solved, Solve(p, &sol, &info))
	assert.InDelta(t, 1.0, sol.X[0], 5e-2)
}

func TestValidationFailures(t *testing.T) {
	cases := map[string]func(p *Problem){
		"nil data":           func(p *Problem) { p.B = nil },
		"m less than n":      func(p *Problem) { p.M, p.N = 1, 2 },
		"alpha low boundary": func(p *Problem) { p.Settings.Alpha = 0 },
		"alpha high boundary": func(p *Problem) {
			p.Settings.Alpha = 2
		},
		"negative max iters": func(p *Problem) { p.Settings.MaxIters = -1 },
		"negative eps":       func(p *Problem) { p.Settings.Eps = -1e-3 },
		"negative rho":       func(p *Problem) { p.Settings.RhoX = -1 },
		"cone mismatch":      func(p *Problem) { p.K.Pos = 2 },
		"bad column pointers": func(p *Problem) {
			p.A.P = []int{0, 0}
		},
		"row index out of range": func(p *Problem) {
			p.A.I = []int{1}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := trivialLP()
			mutate(p)
			_, err := p.New()
			require.Error(t, err)

			var sol Solution
			var info Info
			st := Solve(p, &sol, &info)
			assert.Equal(t, Failure, st)
			assert.Equal(t, "Failure", info.Status)
			assert.Equal(t, -1, info.Iter)
			assert.True(t, math.IsNaN(info.Pobj))
			assert.True(t, math.IsNaN(info.ResPri))
			for _, v := range sol.X {
				assert.True(t, math.IsNaN(v))
			}
			for _, v := range sol.S {
				assert.True(t, math.IsNaN(v))
			}
		})
	}
}

func TestSquareProblemAccepted(t *testing.T) {
	// m = n is valid input
	p := trivialLP()
	_, err := p.New()
	assert.NoError(t, err)
}

func TestEpsZeroRunsToMaxIters(t *testing.T) {
	p := trivialLP()
	p.Settings.Eps = 0
	p.Settings.MaxIters = 30
	var sol Solution
	var info Info
	st := Solve(p, &sol, &info)
	assert.Equal(t, 30, info.Iter, "zero tolerance never satisfies the oracle")
	assert.Equal(t, Solved, st, "the extractor still classifies the iterate")
	assert.Equal(t, "Solved/Inaccurate", info.Status)
}

func TestMaxItersZero(t *testing.T) {
	p := trivialLP()
	p.Settings.MaxIters = 0
	var sol Solution
	var info Info
	st := Solve(p, &sol, &info)
	assert.Equal(t, 0, info.Iter)
	assert.NotEqual(t, Failure, st, "a vacuous solve is classified, not failed")
	assert.NotEqual(t, Status(0), st)
}

func TestColdStartDeterminism(t *testing.T) {
	run := func() (Solution, Info) {
		var sol Solution
		var info Info
		Solve(trivialLP(), &sol, &info)
		return sol, info
	}
	s1, i1 := run()
	s2, i2 := run()
	assert.Equal(t, i1.Iter, i2.Iter)
	assert.Equal(t, s1.X, s2.X, "identical inputs give bit-identical iterates")
	assert.Equal(t, s1.Y, s2.Y)
	assert.Equal(t, s1.S, s2.S)
}

func TestSubspaceDataImmutable(t *testing.T) {
	p := trivialLP()
	p.Settings.Normalize = false
	s, err := p.New()
	require.NoError(t, err)
	w, err := s.Init()
	require.NoError(t, err)
	defer w.Finish()

	var sol Solution
	var info Info
	require.Equal(t, Solved, s.Run(w, &sol, &info))

	// h = (c; b) and g, gᵀh still satisfy their startup definitions
	want := append(append([]float64(nil), p.C...), p.B...)
	assert.Equal(t, want, w.h, "h unchanged across the loop")
	g := append([]float64(nil), w.h...)
	w.lin.Solve(g, nil, -1)
	floats.Scale(-1, g[s.n:s.n+s.m])
	assert.Equal(t, g, w.g, "g unchanged across the loop")
	assert.Equal(t, floats.Dot(w.h, w.g), w.gTh)
}

func TestTauNonNegative(t *testing.T) {
	p := trivialLP()
	s, err := p.New()
	require.NoError(t, err)
	w, err := s.Init()
	require.NoError(t, err)
	defer w.Finish()

	s.updateWork(w, &Solution{})
	for i := 0; i < 100; i++ {
		copy(w.uPrev, w.u)
		s.projectLinSys(w, i)
		s.projectCones(w, i)
		s.updateDualVars(w)
		assert.GreaterOrEqual(t, w.u[w.l-1], 0.0, "τ is clipped at zero")
	}
}

func TestProblemDataUntouched(t *testing.T) {
	p := trivialLP()
	aX := append([]float64(nil), p.A.X...)
	b := append([]float64(nil), p.B...)
	c := append([]float64(nil), p.C...)
	var sol Solution
	var info Info
	require.Equal(t, Solved, Solve(p, &sol, &info))
	assert.Equal(t, aX, p.A.X, "solve never mutates the caller's matrix")
	assert.Equal(t, b, p.B)
	assert.Equal(t, c, p.C)
}

func TestFinishIdempotent(t *testing.T) {
	p := trivialLP()
	s, err := p.New()
	require.NoError(t, err)
	w, err := s.Init()
	require.NoError(t, err)
	w.Finish()
	w.Finish()
	var nilW *Workspace
	nilW.Finish()
}
