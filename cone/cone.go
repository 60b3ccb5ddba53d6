// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cone describes the product cone 𝒦 of a conic program and
// projects stacked slack vectors onto its dual cone 𝒦*.
//
// The cone of a problem
//
//	minimize cᵀx subject to Ax + s = b, s ∈ 𝒦
//
// is a product of primitive cones. The blocks appear in the stacked
// m-vector in the fixed order
//
//	zero, nonnegative, second-order…, semidefinite…, exp primal…, exp dual…
//
// A semidefinite block of side s occupies s² consecutive entries (the
// full matrix, column stacked); every exponential slot occupies 3.
package cone

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by Validate.
var (
	// ErrBadDims indicates a negative or malformed block dimension.
	ErrBadDims = errors.New("cone: invalid cone dimensions")
)

// Cone describes a product cone as counts of its primitive blocks.
type Cone struct {
	Zero      int   // number of zero-cone rows (equality constraints, free duals)
	Pos       int   // number of nonnegative-orthant rows
	Soc       []int // second-order cone block sizes
	Psd       []int // semidefinite cone matrix side lengths
	ExpPrimal int   // number of primal exponential cone triples
	ExpDual   int   // number of dual exponential cone triples
}

// Validate checks the block dimensions of k.
func (k *Cone) Validate() error {
	switch {
	case k.Zero < 0 || k.Pos < 0:
		return fmt.Errorf("%w: negative zero/nonneg count", ErrBadDims)
	case k.ExpPrimal < 0 || k.ExpDual < 0:
		return fmt.Errorf("%w: negative exponential count", ErrBadDims)
	}
	for _, q := range k.Soc {
		if q <= 0 {
			return fmt.Errorf("%w: second-order block size %d", ErrBadDims, q)
		}
	}
	for _, s := range k.Psd {
		if s <= 0 {
			return fmt.Errorf("%w: semidefinite block side %d", ErrBadDims, s)
		}
	}
	return nil
}

// Dim reports the total dimension of the stacked cone, which must
// equal the row count m of the problem.
func (k *Cone) Dim() int {
	d := k.Zero + k.Pos
	for _, q := range k.Soc {
		d += q
	}
	for _, s := range k.Psd {
		d += s * s
	}
	d += 3 * (k.ExpPrimal + k.ExpDual)
	return d
}

// Header renders the human-readable cone description printed in the
// solver banner.
func (k *Cone) Header() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cones:\tzero / free vars: %d\n", k.Zero)
	fmt.Fprintf(&b, "\tlinear vars: %d\n", k.Pos)
	socVars := 0
	for _, q := range k.Soc {
		socVars += q
	}
	fmt.Fprintf(&b, "\tsoc vars: %d, soc blks: %d\n", socVars, len(k.Soc))
	sdVars := 0
	for _, s := range k.Psd {
		sdVars += s * s
	}
	fmt.Fprintf(&b, "\tsd vars: %d, sd blks: %d\n", sdVars, len(k.Psd))
	fmt.Fprintf(&b, "\texp vars: %d, dual exp vars: %d\n", 3*k.ExpPrimal, 3*k.ExpDual)
	return b.String()
}
