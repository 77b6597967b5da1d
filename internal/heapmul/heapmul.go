// Package heapmul implements Johnson's heap method for multiplying sparse
// polynomials, restricted to caller-supplied column windows so that several
// goroutines can each produce a disjoint slice of one product.
//
// Product monomials a_i*b_j are merged through a binary heap ordered by
// storage order. Every row i of the first operand has one heap node whose
// column advances through [start[i], end[i]); nodes producing equal
// monomials are chained so that each output coefficient is accumulated in a
// single pass.
package heapmul

import (
	"math/big"

	"github.com/agbru/mpolymul/internal/memory"
	"github.com/agbru/mpolymul/internal/monomial"
	"github.com/agbru/mpolymul/internal/mpoly"
	"github.com/remyoudompheng/bigfft"
)

// DefaultFFTThreshold is the coefficient size in bits above which products
// of two coefficients use FFT multiplication.
const DefaultFFTThreshold = 1 << 16

// Options tunes a kernel invocation.
type Options struct {
	// Small selects the three-word accumulator. It may only be set when
	// every coefficient of both operands fits an int64 (see FitsSmall).
	Small bool
	// FFTThreshold is the bit length both factors must reach before a
	// coefficient product goes through FFT multiplication. Zero disables it.
	FFTThreshold int
}

// FitsSmall reports whether every live coefficient of t fits an int64.
func FitsSmall(t *mpoly.Terms) bool {
	for k := 0; k < t.Len; k++ {
		if !t.Coeffs[k].IsInt64() {
			return false
		}
	}
	return true
}

// MulPart appends to dst the terms of the sum of a_i*b_j over every row i of
// a and every column j in [start[i], end[i]). The appended terms are strictly
// ordered and nonzero. It returns the number of terms appended.
//
// All three sequences use lay, and the exponent sums must fit its fields.
// dst must not alias a or b.
func MulPart(dst, a, b *mpoly.Terms, start, end []int, lay *monomial.Layout, opts Options) int {
	if len(start) < a.Len || len(end) < a.Len {
		panic("heapmul: row windows shorter than the first operand")
	}
	if lay.N == 1 {
		sp := &word1Space{a: a.Exps, b: b.Exps, lay: lay}
		return mulPart[uint64](dst, a, b, start, end, sp, opts)
	}
	sp := &wordNSpace{
		a: a, b: b, lay: lay,
		arena: memory.NewSlotArena(lay.N, a.Len+1),
	}
	return mulPart[int32](dst, a, b, start, end, sp, opts)
}

// Mul appends the full product a*b to dst.
func Mul(dst, a, b *mpoly.Terms, lay *monomial.Layout, opts Options) int {
	start := make([]int, a.Len)
	end := make([]int, a.Len)
	for i := range end {
		end[i] = b.Len
	}
	return MulPart(dst, a, b, start, end, lay, opts)
}

// space abstracts how product monomials are held while they sit in the heap.
type space[K any] interface {
	product(i, j int32) K
	cmp(x, y K) int
	release(k K)
	write(dst []uint64, k K)
}

// word1Space keys the heap by the packed word itself.
type word1Space struct {
	a, b []uint64
	lay  *monomial.Layout
}

func (s *word1Space) product(i, j int32) uint64 { return s.a[i] + s.b[j] }

func (s *word1Space) cmp(x, y uint64) int { return s.lay.Cmp1(x, y) }

func (s *word1Space) release(uint64) {}

func (s *word1Space) write(dst []uint64, k uint64) { dst[0] = k }

// wordNSpace keys the heap by a slot handle holding the N-word sum.
type wordNSpace struct {
	a, b  *mpoly.Terms
	lay   *monomial.Layout
	arena *memory.SlotArena
}

func (s *wordNSpace) product(i, j int32) int32 {
	k := s.arena.Alloc()
	s.lay.Add(s.arena.Slot(k), s.a.Exp(int(i)), s.b.Exp(int(j)))
	return k
}

func (s *wordNSpace) cmp(x, y int32) int {
	return s.lay.Cmp(s.arena.Slot(x), s.arena.Slot(y))
}

func (s *wordNSpace) release(k int32) { s.arena.Release(k) }

func (s *wordNSpace) write(dst []uint64, k int32) { copy(dst, s.arena.Slot(k)) }

func mulPart[K any, S space[K]](dst, a, b *mpoly.Terms, start, end []int, sp S, opts Options) int {
	nodes := make([]node, a.Len)
	h := newHeap[K](sp, a.Len)
	for i := 0; i < a.Len; i++ {
		if start[i] < end[i] {
			nodes[i] = node{j: int32(start[i]), next: -1}
			h.insert(sp.product(int32(i), int32(start[i])), int32(i), nodes)
		}
	}

	var (
		acc  acc3
		t    big.Int
		q    = make([]int32, 0, a.Len)
		k    = dst.Len
		base = dst.Len
	)
	for h.len() > 0 {
		dst.Fit(k + 1)
		top := h.top()
		sp.write(dst.Exp(k), top)
		c := dst.Coeff(k)
		firstTerm := true

		for first := true; h.len() > 0 && (first || sp.cmp(h.top(), top) == 0); first = false {
			x := h.pop()
			if !first {
				sp.release(x.key)
			}
			for n := x.head; n >= 0; n = nodes[n].next {
				j := nodes[n].j
				ca, cb := a.Coeffs[n], b.Coeffs[j]
				switch {
				case opts.Small && firstTerm:
					acc.set(smul(ca.Int64(), cb.Int64()))
				case opts.Small:
					acc.add(smul(ca.Int64(), cb.Int64()))
				case firstTerm:
					mulInto(c, ca, cb, opts.FFTThreshold)
				default:
					c.Add(c, mulInto(&t, ca, cb, opts.FFTThreshold))
				}
				firstTerm = false
				if int(j)+1 < end[n] {
					q = append(q, n)
				}
			}
		}
		sp.release(top)

		for _, n := range q {
			nodes[n].j++
			nodes[n].next = -1
			h.insert(sp.product(n, nodes[n].j), n, nodes)
		}
		q = q[:0]

		if opts.Small {
			if acc.isZero() {
				continue
			}
			acc.big(c)
		} else if c.Sign() == 0 {
			continue
		}
		k++
	}
	dst.Len = k
	return k - base
}

// mulInto sets z = x*y, using FFT multiplication when both factors have at
// least threshold bits.
func mulInto(z, x, y *big.Int, threshold int) *big.Int {
	if threshold > 0 && x.BitLen() >= threshold && y.BitLen() >= threshold {
		return z.Set(bigfft.Mul(x, y))
	}
	return z.Mul(x, y)
}
