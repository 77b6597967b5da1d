// Package search locates monomials of a product by rank.
//
// For sorted operands a (rows) and b (columns), the product space is the
// grid of pairs (i, j). The score of a monomial e is the number of pairs
// whose product does not sort strictly before e; it falls as e moves later
// in storage order, from len(a)*len(b) at the leading product monomial.
//
// The search brackets the target by weighted medians of the row midpoints
// rather than by descending one row at a time. Only the closeness contract
// of Monomials is guaranteed, not a minimal number of probes.
package search

import (
	"slices"

	"github.com/agbru/mpolymul/internal/monomial"
	"github.com/agbru/mpolymul/internal/mpoly"
)

// Result is a product monomial together with its per-row boundaries.
type Result struct {
	// Exp is the packed monomial.
	Exp []uint64
	// Line[i] is the number of columns of row i whose product sorts
	// strictly before Exp.
	Line []int
	// Score is len(a)*len(b) minus the sum of Line.
	Score uint64
}

// Monomials returns a realizable product monomial whose score lies in
// [lower, upper] when any does. Otherwise the returned score is the
// realizable one closest to the window. Both operands must be nonempty and
// sorted in storage order under lay.
func Monomials(a, b *mpoly.Terms, lower, upper uint64, lay *monomial.Layout) Result {
	if a.Len == 0 || b.Len == 0 {
		panic("search: empty operand")
	}
	if lower > upper {
		lower, upper = upper, lower
	}
	s := &searcher{a: a, b: b, lay: lay, tmp: make([]uint64, lay.N)}
	lambda := uint64(a.Len) * uint64(b.Len)

	lo := make([]int, a.Len)
	hi := make([]int, a.Len)
	for i := range hi {
		hi[i] = b.Len
	}

	var (
		best, next         []uint64 // latest with score >= lower, earliest with score < lower
		bestScore, nextScr uint64
		cands              []candidate
		prods              = make([]uint64, a.Len*lay.N)
		counts             = make([]int, a.Len)
	)
	for {
		cands = cands[:0]
		var total int
		for i := 0; i < a.Len; i++ {
			if lo[i] < hi[i] {
				w := hi[i] - lo[i]
				c := candidate{row: i, col: lo[i] + w/2, weight: w}
				c.exp = s.product(c.row, c.col, prods[i*lay.N:(i+1)*lay.N])
				cands = append(cands, c)
				total += w
			}
		}
		if len(cands) == 0 {
			break
		}
		// weighted median of the row midpoints in storage order
		slices.SortFunc(cands, func(x, y candidate) int { return -lay.Cmp(x.exp, y.exp) })
		var acc int
		var pick candidate
		for _, c := range cands {
			acc += c.weight
			if 2*acc >= total {
				pick = c
				break
			}
		}

		e := make([]uint64, lay.N)
		copy(e, pick.exp)
		var before uint64
		for i := range counts {
			counts[i] = s.countBefore(i, e)
			before += uint64(counts[i])
		}
		score := lambda - before

		if score >= lower {
			if best == nil || lay.Cmp(e, best) <= 0 {
				best, bestScore = e, score
			}
			for i := range lo {
				lo[i] = max(lo[i], s.notAfter(i, counts[i], e))
			}
		} else {
			if next == nil || lay.Cmp(e, next) > 0 {
				next, nextScr = e, score
			}
			for i := range hi {
				hi[i] = min(hi[i], counts[i])
			}
		}
	}

	e := best
	switch {
	case best == nil:
		e = next
	case next == nil || bestScore <= upper:
	case lower-nextScr < bestScore-upper:
		e = next
	}
	return s.result(e, lambda)
}

type candidate struct {
	row, col, weight int
	exp              []uint64
}

type searcher struct {
	a, b *mpoly.Terms
	lay  *monomial.Layout
	tmp  []uint64
}

// product writes a_i+b_j into dst.
func (s *searcher) product(i, j int, dst []uint64) []uint64 {
	s.lay.Add(dst, s.a.Exp(i), s.b.Exp(j))
	return dst
}

// countBefore returns the number of columns of row i whose product sorts
// strictly before e.
func (s *searcher) countBefore(i int, e []uint64) int {
	lo, hi := 0, s.b.Len
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if s.lay.Cmp(s.product(i, mid, s.tmp), e) > 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// notAfter extends the count j of columns of row i sorting before e to the
// columns that do not sort after it.
func (s *searcher) notAfter(i, j int, e []uint64) int {
	if j < s.b.Len && s.lay.Equal(s.product(i, j, s.tmp), e) {
		j++
	}
	return j
}

func (s *searcher) result(e []uint64, lambda uint64) Result {
	r := Result{Exp: e, Line: make([]int, s.a.Len)}
	var before uint64
	for i := range r.Line {
		r.Line[i] = s.countBefore(i, e)
		before += uint64(r.Line[i])
	}
	r.Score = lambda - before
	return r
}
