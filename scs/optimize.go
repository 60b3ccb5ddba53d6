// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scs

import (
	"errors"
	"io"
	"math"
	"time"

	"github.com/curioloop/conic/cone"
	"github.com/curioloop/conic/sparse"
)

// Status is the classification of a finished solve.
// Public entry points never return the zero value.
type Status int

const (
	// Failure reports invalid input or a setup error.
	Failure Status = -4
	// Indeterminate reports an iterate too small to classify.
	Indeterminate Status = -3
	// Infeasible reports primal infeasibility (dual unboundedness),
	// certified by the returned y.
	Infeasible Status = -2
	// Unbounded reports primal unboundedness (dual infeasibility),
	// certified by the returned x, s.
	Unbounded Status = -1
	// Solved reports an optimal primal-dual pair within tolerance.
	Solved Status = 1

	// running is the internal not-yet-classified state.
	running Status = 0
)

// String returns the short human tag of s.
func (s Status) String() string {
	switch s {
	case Solved:
		return "Solved"
	case Unbounded:
		return "Unbounded"
	case Infeasible:
		return "Infeasible"
	case Indeterminate:
		return "Indeterminate"
	case Failure:
		return "Failure"
	}
	return "Unknown"
}

// Settings holds the solver parameters. Use DefaultSettings as the
// starting point; the zero value of Alpha is rejected by New.
type Settings struct {
	// MaxIters bounds the number of outer iterations (≥ 0).
	MaxIters int
	// Eps is the termination tolerance (≥ 0; 0 runs to MaxIters).
	Eps float64
	// Alpha is the over-relaxation parameter, open interval (0,2):
	// 1 is Douglas–Rachford, above 1 over-relaxes, below under-relaxes.
	Alpha float64
	// RhoX regularizes the x-block of the subspace system (≥ 0).
	RhoX float64
	// UndetTol is the scale below which a terminal iterate is
	// declared indeterminate.
	UndetTol float64
	// Normalize enables diagonal equilibration of the problem data.
	Normalize bool
	// WarmStart seeds the iteration from the Solution passed to Run.
	WarmStart bool
	// UseIndirect selects the conjugate-gradient subspace solver
	// instead of the direct factorization.
	UseIndirect bool
	// Verbose enables the iteration trace on Log.
	Verbose bool
	// Log receives the trace when Verbose; defaults to os.Stdout.
	Log io.Writer
}

// DefaultSettings returns the recommended parameters.
func DefaultSettings() Settings {
	return Settings{
		MaxIters:  2500,
		Eps:       1e-3,
		Alpha:     1.8,
		RhoX:      1e-3,
		UndetTol:  1e-9,
		Normalize: true,
	}
}

// Problem specifies a convex cone program
//
//	minimize cᵀx subject to Ax + s = b, s ∈ 𝒦
//
// with A sparse m×n in compressed-column form and 𝒦 a product cone of
// total dimension m. The problem data is treated as immutable: a
// solve never mutates A, B or C.
type Problem struct {
	M, N     int
	A        *sparse.CSC
	B        []float64 // length M
	C        []float64 // length N
	K        cone.Cone
	Settings Settings
}

// Solution carries the primal-dual triple of a solve. Nil slices are
// allocated on first write, so the zero value is ready to use. With
// WarmStart the same value seeds the next solve.
type Solution struct {
	X []float64 // primal variables, length N
	Y []float64 // dual variables, length M
	S []float64 // primal slacks, length M
}

// Info carries the diagnostics of a finished solve.
type Info struct {
	StatusVal Status // classification code
	Status    string // short human tag, with an inaccuracy hint when MaxIters was hit
	Iter      int    // outer iterations taken (-1 on validation failure)
	Pobj      float64
	Dobj      float64
	RelGap    float64
	ResPri    float64
	ResDual   float64
	Time      time.Duration // wall time of Run
}

// New validates the problem and returns the reusable solver. The
// returned Solver is immutable and may be shared across goroutines,
// each owning its own Workspace.
func (p *Problem) New() (*Solver, error) {
	var err error
	a, k := p.A, &p.K
	set := p.Settings
	switch {
	case a == nil || p.B == nil || p.C == nil:
		err = errors.New("data incompletely specified")
	case p.M <= 0 || p.N <= 0:
		err = errors.New("m and n must both be greater than 0")
	case p.M < p.N:
		err = errors.New("m must be greater than or equal to n")
	case a.M != p.M || a.N != p.N || len(a.P) != p.N+1:
		err = errors.New("A dimensions inconsistent with m, n")
	case len(p.B) != p.M || len(p.C) != p.N:
		err = errors.New("b, c lengths inconsistent with m, n")
	}
	if err != nil {
		return nil, err
	}
	for j := 0; j < p.N; j++ {
		if a.P[j] >= a.P[j+1] {
			return nil, errors.New("column pointers not strictly increasing")
		}
	}
	anz := a.Nnz()
	// historical density guard: rejects more than m·n non-zeros; a fully
	// dense matrix, square or not, passes it
	if anz <= 0 || float64(anz)/float64(p.M) > float64(p.N) {
		return nil, errors.New("non-zeros in A outside of valid range")
	}
	if anz > len(a.I) || anz > len(a.X) {
		return nil, errors.New("row index or value storage shorter than non-zero count")
	}
	for _, ri := range a.I[:anz] {
		if ri < 0 || ri > p.M-1 {
			return nil, errors.New("number of rows in A inconsistent with input dimension")
		}
	}
	if err = k.Validate(); err != nil {
		return nil, err
	}
	switch {
	case k.Dim() != p.M:
		err = errors.New("cone dimensions not equal to num rows in A")
	case set.MaxIters < 0:
		err = errors.New("MaxIters must be non-negative")
	case set.Eps < 0:
		err = errors.New("Eps tolerance must be non-negative")
	case set.Alpha <= 0 || set.Alpha >= 2:
		err = errors.New("Alpha must be in (0,2)")
	case set.RhoX < 0:
		err = errors.New("RhoX must be non-negative (1e-3 works well)")
	}
	if err != nil {
		return nil, err
	}
	return &Solver{
		m: p.M, n: p.N,
		a: a, b: p.B, c: p.C,
		k:   *k,
		set: set,
	}, nil
}

// Solve is the one-shot entry point: validate, acquire a workspace,
// run and release. Any validation or setup failure yields the Failure
// protocol: Info all-NaN with status "Failure" and NaN-filled
// Solution vectors, so callers can treat every outcome uniformly.
func Solve(p *Problem, sol *Solution, info *Info) Status {
	s, err := p.New()
	if err != nil {
		return failureReturn(p, sol, info)
	}
	w, err := s.Init()
	if err != nil {
		return failureReturn(p, sol, info)
	}
	defer w.Finish()
	return s.Run(w, sol, info)
}

func failureReturn(p *Problem, sol *Solution, info *Info) Status {
	nan := math.NaN()
	info.Pobj, info.Dobj = nan, nan
	info.RelGap, info.ResPri, info.ResDual = nan, nan, nan
	info.Iter = -1
	info.Time = 0
	info.StatusVal = Failure
	info.Status = Failure.String()
	sol.X = nanFill(sol.X, max(p.N, 0))
	sol.Y = nanFill(sol.Y, max(p.M, 0))
	sol.S = nanFill(sol.S, max(p.M, 0))
	return Failure
}

func nanFill(v []float64, n int) []float64 {
	if len(v) != n {
		v = make([]float64, n)
	}
	for i := range v {
		v[i] = math.NaN()
	}
	return v
}
