// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scs

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// setSolution pulls (x, y, s) out of the terminal (u, v) and settles
// the classification. When the loop ended without the oracle firing
// the taxonomy over (τ, κ, cᵀx, bᵀy) decides the label; an oracle
// verdict of infeasibility or unboundedness only needs its vectors
// blanked.
func (s *Solver) setSolution(w *Workspace, sol *Solution, info *Info) {
	n, m, l := s.n, s.m, w.l
	sol.X = setVec(sol.X, w.u[:n])
	sol.Y = setVec(sol.Y, w.u[n:n+m])
	sol.S = setVec(sol.S, w.v[n:n+m])
	switch info.StatusVal {
	case running, Solved:
		tau := w.u[l-1]
		kap := math.Abs(w.v[l-1])
		switch {
		case tau > s.set.UndetTol && tau > kap:
			info.StatusVal = s.solved(sol, tau)
		case floats.Norm(w.u, 2) < s.set.UndetTol*math.Sqrt(float64(l)):
			info.StatusVal = s.indeterminate(sol)
		default:
			bTy := floats.Dot(w.b, sol.Y)
			cTx := floats.Dot(w.c, sol.X)
			if bTy < cTx {
				info.StatusVal = s.infeasible(sol)
			} else {
				info.StatusVal = s.unbounded(sol)
			}
		}
	case Infeasible:
		info.StatusVal = s.infeasible(sol)
	default:
		info.StatusVal = s.unbounded(sol)
	}
}

func (s *Solver) solved(sol *Solution, tau float64) Status {
	floats.Scale(1/tau, sol.X)
	floats.Scale(1/tau, sol.Y)
	floats.Scale(1/tau, sol.S)
	return Solved
}

func (s *Solver) indeterminate(sol *Solution) Status {
	sol.X = nanFill(sol.X, s.n)
	sol.Y = nanFill(sol.Y, s.m)
	sol.S = nanFill(sol.S, s.m)
	return Indeterminate
}

// infeasible leaves y as the Farkas certificate; x and s carry no
// information.
func (s *Solver) infeasible(sol *Solution) Status {
	sol.X = nanFill(sol.X, s.n)
	sol.S = nanFill(sol.S, s.m)
	return Infeasible
}

// unbounded leaves x, s as the certificate; y carries no information.
func (s *Solver) unbounded(sol *Solution) Status {
	sol.Y = nanFill(sol.Y, s.m)
	return Unbounded
}

// getInfo fills the diagnostics from the extracted solution: the
// normalized residuals and duality gap when solved, the certificate
// quality otherwise. For the certificates the vectors are rescaled to
// the conventional cᵀx = -1 (resp. bᵀy = -1) normalization.
func (s *Solver) getInfo(w *Workspace, sol *Solution, info *Info) {
	var nmAxs, nmATy float64
	nmpr := s.primalResid(w, sol.X, sol.S, 1, &nmAxs)
	nmdr := s.dualResid(w, sol.Y, 1, &nmATy)

	cTx := floats.Dot(sol.X, w.c)
	bTy := floats.Dot(sol.Y, w.b)
	if s.set.Normalize {
		cTx /= w.scal.descale()
		bTy /= w.scal.descale()
	}
	info.Pobj = cTx
	info.Dobj = -bTy
	nan := math.NaN()
	switch info.StatusVal {
	case Solved:
		info.RelGap = math.Abs(cTx+bTy) / (1 + math.Abs(cTx) + math.Abs(bTy))
		info.ResPri = nmpr / (1 + w.nmB)
		info.ResDual = nmdr / (1 + w.nmC)
	case Unbounded:
		info.Dobj = nan
		info.RelGap = nan
		info.ResPri = w.nmC * nmAxs / -cTx
		info.ResDual = nan
		floats.Scale(-1/cTx, sol.X)
		floats.Scale(-1/cTx, sol.S)
		info.Pobj = -1
	default:
		info.Pobj = nan
		info.RelGap = nan
		info.ResPri = nan
		info.ResDual = w.nmB * nmATy / -bTy
		floats.Scale(-1/bTy, sol.Y)
		info.Dobj = -1
	}
	info.Time = time.Since(w.start)
}

func setVec(dst, src []float64) []float64 {
	if len(dst) != len(src) {
		dst = make([]float64, len(src))
	}
	copy(dst, src)
	return dst
}
