// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scs

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// residuals is the oracle's snapshot of the current iterate, reused
// by the verbose trace between samplings.
type residuals struct {
	resPri  float64
	resDual float64
	relGap  float64
	cTx     float64
	bTy     float64
	tau     float64
	kap     float64
}

// converged consults the termination oracle at the sampling rate and
// reports the classification, or running to continue.
func (s *Solver) converged(w *Workspace, r *residuals, iter int) Status {
	if iter%convergedInterval == 0 {
		return s.exactConverged(w, r)
	}
	return running
}

// exactConverged classifies the current iterate. The priority order
// is observable: unboundedness, then infeasibility, then optimality.
func (s *Solver) exactConverged(w *Workspace, r *residuals) Status {
	n, m, l := s.n, s.m, w.l
	x := w.u[:n]
	y := w.u[n : n+m]
	tau := math.Abs(w.u[l-1])
	kap := math.Abs(w.v[l-1])
	r.tau, r.kap = tau, kap

	var nmAxs float64
	nmpr := s.fastPrimalResid(w, &nmAxs)
	cTx := floats.Dot(x, w.c)
	if s.set.Normalize {
		kap /= w.scal.descale()
		cTx /= w.scal.descale()
	}

	r.resPri = math.NaN()
	if cTx < 0 {
		r.resPri = w.nmC * nmAxs / -cTx
	}
	if r.resPri < s.set.Eps {
		return Unbounded
	}

	var nmATy float64
	nmdr := s.dualResid(w, y, tau, &nmATy)
	bTy := floats.Dot(y, w.b)
	if s.set.Normalize {
		bTy /= w.scal.descale()
	}

	r.resDual = math.NaN()
	if bTy < 0 {
		r.resDual = w.nmB * nmATy / -bTy
	}
	if r.resDual < s.set.Eps {
		return Infeasible
	}
	r.relGap = math.NaN()

	if tau > kap {
		rpri := nmpr / (1 + w.nmB) / tau
		rdua := nmdr / (1 + w.nmC) / tau
		gap := math.Abs(cTx+bTy) / (tau + math.Abs(cTx) + math.Abs(bTy))
		r.resPri = rpri
		r.resDual = rdua
		r.relGap = gap
		r.cTx = cTx / tau
		r.bTy = bTy / tau
		if math.Max(math.Max(rpri, rdua), gap) < s.set.Eps {
			return Solved
		}
	} else {
		r.cTx = math.NaN()
		r.bTy = math.NaN()
	}
	return running
}

// primalResid computes ‖Ax + s - b·τ‖ and ‖Ax + s‖, de-equilibrated,
// with one multiplication by A.
func (s *Solver) primalResid(w *Workspace, x, sl []float64, tau float64, nmAxs *float64) float64 {
	pr := w.pr
	for i := range pr {
		pr[i] = 0
	}
	w.a.MulVecAdd(x, pr)
	floats.Add(pr, sl) // pr = Ax + s
	var pres float64
	*nmAxs = 0
	for i := 0; i < s.m; i++ {
		scale := 1.0
		if s.set.Normalize {
			scale = w.scal.d[i] / (w.scal.scB * w.scal.scale)
		}
		scale *= scale
		*nmAxs += pr[i] * pr[i] * scale
		diff := pr[i] - w.b[i]*tau
		pres += diff * diff * scale
	}
	*nmAxs = math.Sqrt(*nmAxs)
	return math.Sqrt(pres)
}

// fastPrimalResid computes the same quantities without a matrix
// product, from the identity
//
//	Ax + s = u_y + (𝛂-2)·uPrev_y + (1-𝛂)·uₜ_y + uₜ[ℓ-1]·b
//
// valid inside the loop because uₜ projects u + v onto the subspace.
func (s *Solver) fastPrimalResid(w *Workspace, nmAxs *float64) float64 {
	n, m, l := s.n, s.m, w.l
	alpha := s.set.Alpha
	tau := math.Abs(w.u[l-1])
	pr := w.pr
	copy(pr, w.u[n:n+m])
	floats.AddScaled(pr, alpha-2, w.uPrev[n:n+m])
	floats.AddScaled(pr, 1-alpha, w.ut[n:n+m])
	floats.AddScaled(pr, w.ut[l-1], w.b) // pr = Ax + s
	var pres float64
	*nmAxs = 0
	for i := 0; i < m; i++ {
		scale := 1.0
		if s.set.Normalize {
			scale = w.scal.d[i] / (w.scal.scB * w.scal.scale)
		}
		scale *= scale
		*nmAxs += pr[i] * pr[i] * scale
		diff := pr[i] - w.b[i]*tau
		pres += diff * diff * scale
	}
	*nmAxs = math.Sqrt(*nmAxs)
	return math.Sqrt(pres)
}

// dualResid computes ‖Aᵀy + c·τ‖ and ‖Aᵀy‖, de-equilibrated. The
// product by Aᵀ is always explicit.
func (s *Solver) dualResid(w *Workspace, y []float64, tau float64, nmATy *float64) float64 {
	dr := w.dr
	for i := range dr {
		dr[i] = 0
	}
	w.a.MulTransVecAdd(y, dr)
	var dres float64
	*nmATy = 0
	for i := 0; i < s.n; i++ {
		scale := 1.0
		if s.set.Normalize {
			scale = w.scal.e[i] / (w.scal.scC * w.scal.scale)
		}
		scale *= scale
		*nmATy += dr[i] * dr[i] * scale
		sum := dr[i] + w.c[i]*tau
		dres += sum * sum * scale
	}
	*nmATy = math.Sqrt(*nmATy)
	return math.Sqrt(dres)
}
