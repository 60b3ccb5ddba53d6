// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scs solves convex cone programs with a first-order
// operator-splitting method on the homogeneous self-dual embedding.
//
// The primal-dual pair
//
//	minimize cᵀ𝐱 subject to A𝐱 + 𝐬 = 𝐛, 𝐬 ∈ 𝒦
//	maximize -bᵀ𝐲 subject to Aᵀ𝐲 + 𝐜 = 0, 𝐲 ∈ 𝒦*
//
// is embedded into a single feasibility problem over
// 𝐮 = (𝐱,𝐲,τ), 𝐯 = (𝐫,𝐬,κ) by appending the homogenization scalar τ
// (the problem scale) and κ (the infeasibility indicator): an optimal
// pair corresponds to τ > 0, κ = 0, while τ = 0 with κ > 0 yields a
// Farkas certificate of primal infeasibility or dual infeasibility
// (unboundedness).
//
// # Splitting
//
// Each iteration alternates a projection onto the affine subspace of
// the embedding with a projection onto the cone ℝⁿ × 𝒦* × ℝ₊ and a
// dual update (Douglas–Rachford when 𝛂 = 1, over-relaxed for
// 𝛂 ∈ (1,2)):
//
//	𝐮ₜ ← Π_subspace(𝐮 + 𝐯)
//	𝐮  ← Π_cone(𝛂𝐮ₜ + (1-𝛂)𝐮ᵖʳᵉᵛ - 𝐯)
//	𝐯  ← 𝐯 + (𝐮 - 𝛂𝐮ₜ - (1-𝛂)𝐮ᵖʳᵉᵛ)
//
// The 𝐱-block is neither relaxed nor dual-updated: the ρ regularizer
// of the subspace system already stabilises it.
//
// # Subspace projection
//
// The affine projection reduces to one solve against the fixed
// quasi-definite operator
//
//	M = ⎡ρI  Aᵀ⎤
//	    ⎣A   -I⎦
//
// plus a rank-one correction handled analytically with the cached
// vectors 𝐡 = (𝐜;𝐛), 𝐠 = M⁻¹𝐡 (y-block negated) and the scalar 𝐠ᵀ𝐡,
// all computed once at startup. M never changes, so a direct
// implementation factorizes once and an indirect one recycles the
// previous iterate as warm start.
//
// # Termination
//
// Every few iterations the oracle classifies the iterate from the
// residuals of the original pair and the certificates scaled by τ, κ:
// unboundedness, then infeasibility, then optimality, in that
// priority. Exhausting MaxIters falls through to the extractor, which
// labels the terminal iterate from (τ, κ, cᵀx, bᵀy).
package scs

import (
	"math"
	"time"

	"github.com/curioloop/conic/cone"
	"github.com/curioloop/conic/linsys"
	"github.com/curioloop/conic/sparse"

	"gonum.org/v1/gonum/floats"
)

const (
	printInterval     = 100 // trace rate of the verbose log
	convergedInterval = 20  // sampling rate of the termination oracle
)

// Solver is a validated, immutable problem specification.
type Solver struct {
	m, n int
	a    *sparse.CSC // caller's matrix, never mutated
	b, c []float64
	k    cone.Cone
	set  Settings
}

// Workspace holds the state of one solve: the splitting iterates, the
// cached subspace data, the equilibrated copies of the problem data
// and the collaborator states it owns. A workspace belongs to a
// single solve at a time.
type Workspace struct {
	l int // n + m + 1

	u, v   []float64 // current iterates, (x,y,τ) and (r,s,κ)
	ut     []float64 // subspace projection of u + v
	uPrev  []float64 // iterate snapshot
	h, g   []float64 // cached rank-one correction data
	gTh    float64
	pr, dr []float64 // residual scratch

	a    *sparse.CSC // equilibrated copy (structure shared, values owned)
	b, c []float64   // equilibrated copies
	scal scaling
	nmB  float64 // ‖b‖ before equilibration
	nmC  float64 // ‖c‖ before equilibration

	lin linsys.Solver
	kw  *cone.Work

	prt   printer
	start time.Time
	freed bool
}

// Init acquires a workspace: equilibrated problem copies, iterate
// storage, the subspace-solver state and the cone-projection state.
// On any failure everything acquired so far is released.
func (s *Solver) Init() (*Workspace, error) {
	m, n := s.m, s.n
	w := &Workspace{l: n + m + 1}
	w.a = &sparse.CSC{M: m, N: n, P: s.a.P, I: s.a.I, X: append([]float64(nil), s.a.X...)}
	w.b = append([]float64(nil), s.b...)
	w.c = append([]float64(nil), s.c...)
	if s.set.Normalize {
		w.scal = normalizeA(w.a, &s.k)
	} else {
		w.scal = identityScaling()
	}
	w.u = make([]float64, w.l)
	w.v = make([]float64, w.l)
	w.ut = make([]float64, w.l)
	w.uPrev = make([]float64, w.l)
	w.h = make([]float64, w.l-1)
	w.g = make([]float64, w.l-1)
	w.pr = make([]float64, m)
	w.dr = make([]float64, n)

	var err error
	if s.set.UseIndirect {
		w.lin, err = linsys.NewIndirect(w.a, s.set.RhoX)
	} else {
		w.lin, err = linsys.NewDirect(w.a, s.set.RhoX)
	}
	if err != nil {
		w.Finish()
		return nil, err
	}
	if w.kw, err = cone.Init(&s.k); err != nil {
		w.Finish()
		return nil, err
	}
	return w, nil
}

// Finish releases the collaborator states owned by the workspace, in
// reverse acquisition order. It is idempotent and safe on partially
// constructed workspaces.
func (w *Workspace) Finish() {
	if w == nil || w.freed {
		return
	}
	w.freed = true
	w.kw.Free()
	if w.lin != nil {
		w.lin.Free()
	}
}

// updateWork prepares the workspace for one solve: original norms,
// equilibration of b and c, the starting point, and the one-time
// subspace data h, g, gᵀh.
func (s *Solver) updateWork(w *Workspace, sol *Solution) {
	n, m := s.n, s.m
	w.nmB = floats.Norm(w.b, 2)
	w.nmC = floats.Norm(w.c, 2)
	if s.set.Normalize {
		w.scal.scaleBC(w.b, w.c)
	}
	if s.set.WarmStart {
		s.warmStartVars(w, sol)
	} else {
		s.coldStartVars(w)
	}
	copy(w.h[:n], w.c)
	copy(w.h[n:], w.b)
	copy(w.g, w.h)
	w.lin.Solve(w.g, nil, -1)
	floats.Scale(-1, w.g[n:n+m])
	w.gTh = floats.Dot(w.h, w.g)
}

func (s *Solver) coldStartVars(w *Workspace) {
	for i := range w.u {
		w.u[i] = 0
		w.v[i] = 0
	}
	w.u[w.l-1] = math.Sqrt(float64(w.l))
	w.v[w.l-1] = math.Sqrt(float64(w.l))
}

func (s *Solver) warmStartVars(w *Workspace, sol *Solution) {
	n, m := s.n, s.m
	for i := range w.u {
		w.u[i] = 0
		w.v[i] = 0
	}
	copy(w.u[:n], sol.X)
	copy(w.u[n:n+m], sol.Y)
	copy(w.v[n:n+m], sol.S)
	w.u[w.l-1] = 1
	w.v[w.l-1] = 0
	if s.set.Normalize {
		w.scal.scaleWarmStart(w.u, w.v, n, m)
	}
}
