package polymul

import (
	"math/bits"

	"github.com/agbru/mpolymul/internal/monomial"
	"github.com/agbru/mpolymul/internal/mpoly"
	"github.com/agbru/mpolymul/internal/search"
)

// Window is the share of the pair grid given to one division: columns
// [Start[i], End[i]) of every row i.
type Window struct {
	Start, End []int
	// Exp is the boundary monomial. Every product the window covers sorts
	// at or after Exp and strictly before the boundary of the next higher
	// division.
	Exp []uint64
	// Score is the rank of Exp as reported by search.Monomials.
	Score uint64
}

// Plan cuts the product of a and b into ndivs windows. Window d aims at the
// score (d+1)²·λ/ndivs², with λ = len(a)·len(b), so the highest window
// starts at the leading product monomial. The windows tile every row and
// their products form consecutive runs of the product, window ndivs-1 first.
func Plan(a, b *mpoly.Terms, lay *monomial.Layout, ndivs int) []Window {
	ndivs = max(ndivs, 1)
	lambda := uint64(a.Len) * uint64(b.Len)
	wins := make([]Window, ndivs)

	end := make([]int, a.Len)
	for i := range end {
		end[i] = b.Len
	}
	var prev search.Result
	for d := range wins {
		t := target(d, ndivs, lambda)
		r := search.Monomials(a, b, t, t, lay)
		// keep boundaries monotone so that windows never overlap
		if d > 0 && r.Score < prev.Score {
			r = prev
		}
		wins[d] = Window{Start: r.Line, End: end, Exp: r.Exp, Score: r.Score}
		end, prev = r.Line, r
	}
	return wins
}

// target returns ⌊(d+1)²·lambda/ndivs²⌋ without overflow.
func target(d, ndivs int, lambda uint64) uint64 {
	num := uint64(d+1) * uint64(d+1)
	den := uint64(ndivs) * uint64(ndivs)
	hi, lo := bits.Mul64(num, lambda)
	q, _ := bits.Div64(hi, lo, den)
	return q
}
