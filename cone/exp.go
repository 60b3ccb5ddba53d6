// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cone

import "math"

// Exponential cone projection.
//
// The primal exponential cone is
//
//	𝒦exp = cl{(x,y,z) : y·e^{x/y} ≤ z, y > 0}
//	     = {(x,y,z) : y·e^{x/y} ≤ z, y > 0} ∪ {(x,0,z) : x ≤ 0, z ≥ 0}
//
// and its dual is
//
//	𝒦exp* = {(u,v,w) : -u·e^{v/u} ≤ e·w, u < 0} ∪ {(0,v,w) : v ≥ 0, w ≥ 0}.
//
// Apart from the analytic shortcuts the projection is found by
// bisecting on the multiplier ρ of the KKT stationarity condition,
// with an inner damped Newton solve recovering the projected point for
// each trial ρ.

const (
	expThresh  = 1e-6 // membership slack of the analytic shortcuts
	expTol     = 1e-9 // root tolerance of the bisection and Newton loops
	expBisects = 100
	expNewtons = 100
)

// inExp reports whether v lies in cl(𝒦exp), within expThresh.
func inExp(v []float64) bool {
	return (v[1] > 0 && v[1]*math.Exp(v[0]/v[1]) <= v[2]+expThresh) ||
		(v[0] <= 0 && math.Abs(v[1]) <= expThresh && v[2] >= 0)
}

// inExpDual reports whether v lies in 𝒦exp*, within expThresh.
func inExpDual(v []float64) bool {
	return (v[0] < 0 && -v[0]*math.Exp(v[1]/v[0]) <= math.E*v[2]+expThresh) ||
		(math.Abs(v[0]) <= expThresh && v[1] >= 0 && v[2] >= 0)
}

// projExp overwrites v with its projection onto cl(𝒦exp).
func projExp(v []float64) {
	if inExp(v) {
		return
	}
	// -v ∈ 𝒦exp* means v lies in the polar cone and projects to 0.
	neg := []float64{-v[0], -v[1], -v[2]}
	if inExpDual(neg) {
		v[0], v[1], v[2] = 0, 0, 0
		return
	}
	if v[0] < 0 && v[1] < 0 {
		v[1] = 0
		v[2] = math.Max(v[2], 0)
		return
	}
	var x [3]float64
	lb, ub := expRhoBracket(v, &x)
	for i := 0; i < expBisects; i++ {
		rho := (lb + ub) / 2
		if expGrad(v, &x, rho) > 0 {
			lb = rho
		} else {
			ub = rho
		}
		if ub-lb < expTol {
			break
		}
	}
	v[0], v[1], v[2] = x[0], x[1], x[2]
}

// projExpDual overwrites v with its projection onto 𝒦exp*, obtained
// from the primal projection through the Moreau decomposition
// Π𝒦*(v) = v + Π𝒦(-v).
func projExpDual(v []float64) {
	t := []float64{-v[0], -v[1], -v[2]}
	projExp(t)
	v[0] += t[0]
	v[1] += t[1]
	v[2] += t[2]
}

// expRhoBracket grows an initial bracket [lb,ub] containing the root
// of the dual-multiplier gradient.
func expRhoBracket(v []float64, x *[3]float64) (lb, ub float64) {
	lb, ub = 0, 0.125
	for expGrad(v, x, ub) > 0 {
		lb = ub
		ub *= 2
	}
	return lb, ub
}

// expGrad solves the inner problem at multiplier rho and evaluates the
// gradient of the dual function there.
func expGrad(v []float64, x *[3]float64, rho float64) float64 {
	expSolve(v, x, rho)
	if x[1] <= 1e-12 {
		return x[0]
	}
	return x[0] + x[1]*math.Log(x[1]/x[2])
}

// expSolve recovers the projected point for a fixed multiplier rho.
func expSolve(v []float64, x *[3]float64, rho float64) {
	x[2] = expNewton(rho, v[1], v[2])
	x[1] = (x[2] - v[2]) * x[2] / rho
	x[0] = v[0] - rho
}

// expNewton runs a clamped Newton iteration for the stationarity
// condition of the third coordinate.
func expNewton(rho, yHat, zHat float64) float64 {
	t := math.Max(-zHat, 1e-6)
	for i := 0; i < expNewtons; i++ {
		f := t*(t+zHat)/(rho*rho) - yHat/rho + math.Log(t/rho) + 1
		fp := (2*t+zHat)/(rho*rho) + 1/t
		t -= f / fp
		if t <= -zHat {
			t = -zHat
			break
		}
		if t <= 0 {
			t = 0
			break
		}
		if math.Abs(f) < expTol {
			break
		}
	}
	return t + zHat
}
