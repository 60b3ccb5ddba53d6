// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Work holds the one-time projection state of a product cone: the
// block layout and the dense eigendecomposition scratch of each
// semidefinite block.
//
// A Work is owned by a single solve and must not be shared between
// goroutines.
type Work struct {
	k   Cone
	psd []*psdScratch
}

type psdScratch struct {
	s    int
	sym  *mat.SymDense
	vecs mat.Dense
	vals []float64
	es   mat.EigenSym
}

// Init validates k and allocates the projection state.
func Init(k *Cone) (*Work, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}
	w := &Work{k: *k}
	w.k.Soc = append([]int(nil), k.Soc...)
	w.k.Psd = append([]int(nil), k.Psd...)
	for _, s := range k.Psd {
		w.psd = append(w.psd, &psdScratch{
			s:    s,
			sym:  mat.NewSymDense(s, nil),
			vals: make([]float64, s),
		})
	}
	return w, nil
}

// Free releases the projection state. It is safe to call more than
// once and on a nil receiver.
func (w *Work) Free() {
	if w != nil {
		w.psd = nil
	}
}

// Project overwrites x, a stacked vector of length k.Dim(), with its
// Euclidean projection onto the dual cone 𝒦*.
//
// The zero block is left untouched (its dual is free); the
// nonnegative, second-order and semidefinite blocks are self-dual;
// the exponential blocks swap primal for dual. The iter argument
// admits iteration-aware refinements and is currently unused.
func (w *Work) Project(x []float64, iter int) {
	_ = iter
	off := w.k.Zero
	for i := off; i < off+w.k.Pos; i++ {
		if x[i] < 0 {
			x[i] = 0
		}
	}
	off += w.k.Pos
	for _, q := range w.k.Soc {
		projSoc(x[off : off+q])
		off += q
	}
	for _, ps := range w.psd {
		projPsd(x[off:off+ps.s*ps.s], ps)
		off += ps.s * ps.s
	}
	for i := 0; i < w.k.ExpPrimal; i++ {
		projExpDual(x[off : off+3])
		off += 3
	}
	for i := 0; i < w.k.ExpDual; i++ {
		projExp(x[off : off+3])
		off += 3
	}
}

// projSoc projects v onto the second-order cone
// {(t,z) : ‖z‖₂ ≤ t} of dimension len(v).
func projSoc(v []float64) {
	if len(v) == 1 {
		if v[0] < 0 {
			v[0] = 0
		}
		return
	}
	t, z := v[0], v[1:]
	nrm := floats.Norm(z, 2)
	switch {
	case nrm <= t:
		// interior, nothing to do
	case nrm <= -t:
		for i := range v {
			v[i] = 0
		}
	default:
		alpha := (t + nrm) / 2
		v[0] = alpha
		floats.Scale(alpha/nrm, z)
	}
}

// projPsd projects the column-stacked s×s block x onto the cone of
// positive semidefinite matrices: symmetrize, decompose, clamp the
// negative eigenvalues and rebuild.
func projPsd(x []float64, ps *psdScratch) {
	s := ps.s
	if s == 1 {
		if x[0] < 0 {
			x[0] = 0
		}
		return
	}
	for i := 0; i < s; i++ {
		for j := i; j < s; j++ {
			ps.sym.SetSym(i, j, (x[i*s+j]+x[j*s+i])/2)
		}
	}
	if !ps.es.Factorize(ps.sym, true) {
		return // leave the block unchanged, residuals surface the failure
	}
	ps.es.Values(ps.vals)
	ps.es.VectorsTo(&ps.vecs)
	for i := range x {
		x[i] = 0
	}
	// eigenvalues ascend, only the positive tail contributes
	for k := s - 1; k >= 0 && ps.vals[k] > 0; k-- {
		lam := ps.vals[k]
		for j := 0; j < s; j++ {
			qj := ps.vecs.At(j, k)
			if qj == 0 {
				continue
			}
			for i := 0; i < s; i++ {
				x[i*s+j] += lam * ps.vecs.At(i, k) * qj
			}
		}
	}
}
