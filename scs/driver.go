// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scs

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Run executes one solve on the workspace: the splitting loop with
// the sampled termination oracle, then extraction, diagnostics and
// un-equilibration of the returned Solution. With WarmStart the
// incoming sol seeds the iteration.
func (s *Solver) Run(w *Workspace, sol *Solution, info *Info) Status {
	w.start = time.Now()
	w.prt.init(s.set.Log)
	info.StatusVal = running
	s.updateWork(w, sol)
	if s.set.Verbose {
		w.prt.header(s, w)
	}
	var r residuals
	var i int
	for i = 0; i < s.set.MaxIters; i++ {
		copy(w.uPrev, w.u)

		s.projectLinSys(w, i)
		s.projectCones(w, i)
		s.updateDualVars(w)

		if info.StatusVal = s.converged(w, &r, i); info.StatusVal != running {
			break
		}
		if i%printInterval == 0 && s.set.Verbose {
			w.prt.summary(i, &r, time.Since(w.start))
		}
	}
	if s.set.Verbose {
		w.prt.summary(i, &r, time.Since(w.start))
	}
	s.setSolution(w, sol, info)
	info.Iter = i
	s.getInfo(w, sol, info)
	info.Status = info.StatusVal.String()
	if info.Iter == s.set.MaxIters && info.StatusVal != Failure {
		info.Status += "/Inaccurate"
	}
	if s.set.Verbose {
		w.prt.footer(s, w, info)
	}
	if s.set.Normalize {
		w.scal.unscaleSolBC(sol, w.b, w.c)
	}
	return info.StatusVal
}

// projectLinSys computes uₜ, the projection of u + v onto the affine
// subspace of the embedding: the rank-one correction against the
// cached h, g, gᵀh followed by one solve of the quasi-definite
// system, warm started from u.
func (s *Solver) projectLinSys(w *Workspace, iter int) {
	n, m, l := s.n, s.m, w.l
	copy(w.ut, w.u)
	floats.Add(w.ut, w.v)

	floats.Scale(s.set.RhoX, w.ut[:n])

	floats.AddScaled(w.ut[:l-1], -w.ut[l-1], w.h)
	floats.AddScaled(w.ut[:l-1], -floats.Dot(w.ut[:l-1], w.g)/(w.gTh+1), w.h)
	floats.Scale(-1, w.ut[n:n+m])

	w.lin.Solve(w.ut, w.u, iter)

	w.ut[l-1] += floats.Dot(w.ut[:l-1], w.h)
}

// projectCones overwrites u with the projection of the relaxed point
// onto ℝⁿ × 𝒦* × ℝ₊. The x-block is free and not relaxed; τ is
// clipped at zero.
func (s *Solver) projectCones(w *Workspace, iter int) {
	n, l := s.n, w.l
	alpha := s.set.Alpha
	for i := 0; i < n; i++ {
		w.u[i] = w.ut[i] - w.v[i]
	}
	for i := n; i < l; i++ {
		w.u[i] = alpha*w.ut[i] + (1-alpha)*w.uPrev[i] - w.v[i]
	}
	w.kw.Project(w.u[n:n+s.m], iter)
	if w.u[l-1] < 0 {
		w.u[l-1] = 0
	}
}

// updateDualVars performs the dual ascent on the y- and τ-blocks.
func (s *Solver) updateDualVars(w *Workspace) {
	n, l := s.n, w.l
	alpha := s.set.Alpha
	if math.Abs(alpha-1) < 1e-9 {
		for i := n; i < l; i++ {
			w.v[i] += w.u[i] - w.ut[i]
		}
	} else {
		for i := n; i < l; i++ {
			w.v[i] += w.u[i] - alpha*w.ut[i] - (1-alpha)*w.uPrev[i]
		}
	}
}
