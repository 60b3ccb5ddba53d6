// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scs

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

var headerCols = [...]string{
	" Iter ",
	" pri res ",
	" dua res ",
	" rel gap ",
	" pri obj ",
	" dua obj ",
	"  kappa  ",
	" time (s)",
}

// printer renders the verbose banner, trace and footer. The rule
// length computed by the header is carried here so the footer matches
// it without any package state.
type printer struct {
	out     io.Writer
	lineLen int
}

func (p *printer) init(out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	p.out = out
}

func (p *printer) rule(ch string) {
	fmt.Fprint(p.out, strings.Repeat(ch, p.lineLen), "\n")
}

func (p *printer) header(s *Solver, w *Workspace) {
	p.lineLen = -1
	for _, h := range headerCols {
		p.lineLen += len(h) + 1
	}
	p.rule("-")
	fmt.Fprint(p.out, "\n\tconic - splitting solver for convex cone programs\n\n")
	p.rule("-")
	fmt.Fprintf(p.out, "method: %s\n", w.lin.Method())
	fmt.Fprintf(p.out, "EPS = %.2e, ALPHA = %.2f, MAX_ITERS = %d, NORMALIZE = %t\n",
		s.set.Eps, s.set.Alpha, s.set.MaxIters, s.set.Normalize)
	fmt.Fprintf(p.out, "variables n = %d, constraints m = %d, non-zeros in A = %d\n",
		s.n, s.m, s.a.Nnz())
	if s.set.WarmStart {
		fmt.Fprint(p.out, "using variable warm-starting\n")
	}
	fmt.Fprint(p.out, s.k.Header())
	p.rule("-")
	for _, h := range headerCols[:len(headerCols)-1] {
		fmt.Fprintf(p.out, "%s|", h)
	}
	fmt.Fprintf(p.out, "%s\n", headerCols[len(headerCols)-1])
	p.rule("=")
}

func (p *printer) summary(iter int, r *residuals, elapsed time.Duration) {
	fmt.Fprintf(p.out, "%*d|", len(headerCols[0]), iter)
	fmt.Fprintf(p.out, " %*.2e ", len(headerCols[1])-1, r.resPri)
	fmt.Fprintf(p.out, " %*.2e ", len(headerCols[2])-1, r.resDual)
	fmt.Fprintf(p.out, " %*.2e ", len(headerCols[3])-1, r.relGap)
	if r.cTx < 0 {
		fmt.Fprintf(p.out, "%*.2e ", len(headerCols[4])-1, r.cTx)
	} else {
		fmt.Fprintf(p.out, " %*.2e ", len(headerCols[4])-1, r.cTx)
	}
	if r.bTy >= 0 {
		fmt.Fprintf(p.out, "%*.2e ", len(headerCols[5])-1, -r.bTy)
	} else {
		fmt.Fprintf(p.out, " %*.2e ", len(headerCols[5])-1, -r.bTy)
	}
	fmt.Fprintf(p.out, " %*.2e ", len(headerCols[6])-1, r.kap)
	fmt.Fprintf(p.out, " %*.2e \n", len(headerCols[7])-1, elapsed.Seconds())
}

func (p *printer) footer(s *Solver, w *Workspace, info *Info) {
	p.rule("-")
	fmt.Fprintf(p.out, "Status: %s\n", info.Status)
	if info.Iter == s.set.MaxIters {
		fmt.Fprint(p.out, "Hit MAX_ITERS, solution may be inaccurate\n")
	}
	fmt.Fprintf(p.out, "Time taken: %.4f seconds\n", info.Time.Seconds())
	if sum := w.lin.Summary(); sum != "" {
		fmt.Fprint(p.out, sum)
	}
	p.rule("-")
	switch info.StatusVal {
	case Infeasible:
		fmt.Fprint(p.out, "Certificate of primal infeasibility:\n")
		fmt.Fprintf(p.out, "|A'y|_2 * |b|_2 = %.4e\n", info.ResDual)
		fmt.Fprint(p.out, "dist(y, K*) = 0\n")
		fmt.Fprintf(p.out, "b'y = %.4f\n", info.Dobj)
	case Unbounded:
		fmt.Fprint(p.out, "Certificate of dual infeasibility:\n")
		fmt.Fprintf(p.out, "|Ax + s|_2 * |c|_2 = %.4e\n", info.ResPri)
		fmt.Fprint(p.out, "dist(s, K) = 0\n")
		fmt.Fprintf(p.out, "c'x = %.4f\n", info.Pobj)
	default:
		fmt.Fprint(p.out, "Error metrics:\n")
		fmt.Fprintf(p.out, "|Ax + s - b|_2 / (1 + |b|_2) = %.4e\n", info.ResPri)
		fmt.Fprintf(p.out, "|A'y + c|_2 / (1 + |c|_2) = %.4e\n", info.ResDual)
		fmt.Fprintf(p.out, "|c'x + b'y| / (1 + |c'x| + |b'y|) = %.4e\n", info.RelGap)
		fmt.Fprint(p.out, "dist(s, K) = 0, dist(y, K*) = 0, s'y = 0\n")
		p.rule("-")
		fmt.Fprintf(p.out, "c'x = %.4f, -b'y = %.4f\n", info.Pobj, info.Dobj)
	}
	p.rule("=")
}
