// Package mpoly provides sparse multivariate polynomials with arbitrary
// precision integer coefficients, stored as strictly ordered term sequences
// of packed monomials.
package mpoly

import (
	"fmt"
	"math/big"
	"math/bits"
	"slices"

	"github.com/agbru/mpolymul/internal/monomial"
)

var fieldWidths = [...]uint{8, 16, 32, 64}

// Context fixes the variable count, ordering and storage direction shared by
// a family of polynomials. It is immutable.
type Context struct {
	nvars     int
	ord       monomial.Ordering
	ascending bool
	layouts   [len(fieldWidths)]*monomial.Layout
}

// NewContext builds a context for nvars variables.
func NewContext(nvars int, ord monomial.Ordering, ascending bool) (*Context, error) {
	ctx := &Context{nvars: nvars, ord: ord, ascending: ascending}
	for i, w := range fieldWidths {
		l, err := monomial.NewLayout(nvars, ord, ascending, w)
		if err != nil {
			return nil, err
		}
		ctx.layouts[i] = l
	}
	return ctx, nil
}

// NVars returns the number of variables.
func (c *Context) NVars() int { return c.nvars }

// Ordering returns the monomial ordering.
func (c *Context) Ordering() monomial.Ordering { return c.ord }

// Ascending reports whether terms are stored smallest first.
func (c *Context) Ascending() bool { return c.ascending }

// Layout returns the packing layout for the given field width.
func (c *Context) Layout(fieldBits uint) *monomial.Layout {
	for i, w := range fieldWidths {
		if w == fieldBits {
			return c.layouts[i]
		}
	}
	panic(fmt.Sprintf("mpoly: unsupported field width %d", fieldBits))
}

// Poly is a sparse polynomial whose monomials are packed at Bits bits per field.
type Poly struct {
	Terms
	Bits uint
}

// NewPoly returns the zero polynomial.
func NewPoly(ctx *Context) *Poly {
	return &Poly{Terms: Terms{N: ctx.Layout(8).N}, Bits: 8}
}

// Layout returns the layout p is packed with.
func (p *Poly) Layout(ctx *Context) *monomial.Layout { return ctx.Layout(p.Bits) }

// IsZero reports whether p is the zero polynomial.
func (p *Poly) IsZero() bool { return p.Len == 0 }

// Zero makes p the zero polynomial, keeping its storage.
func (p *Poly) Zero() { p.Len = 0 }

// Swap exchanges p and q.
func (p *Poly) Swap(q *Poly) { *p, *q = *q, *p }

// Set makes p a deep copy of src.
func (p *Poly) Set(src *Poly) {
	if p == src {
		return
	}
	p.Reset(src.N)
	p.Fit(src.Len)
	for k := 0; k < src.Len; k++ {
		p.Coeff(k).Set(src.Coeffs[k])
	}
	copy(p.Exps, src.Exps[:src.Len*src.N])
	p.Len = src.Len
	p.Bits = src.Bits
}

// Term returns the coefficient and unpacked exponent vector of term k.
func (p *Poly) Term(ctx *Context, k int) (*big.Int, []uint64) {
	exps := make([]uint64, ctx.nvars)
	p.Layout(ctx).Unpack(exps, p.Exp(k))
	return p.Coeffs[k], exps
}

// MaxFields returns the largest value of every packed field over all terms
// of p, degree field first for graded orderings.
func (p *Poly) MaxFields(ctx *Context) []uint64 {
	lay := p.Layout(ctx)
	out := make([]uint64, lay.Fields)
	for k := 0; k < p.Len; k++ {
		exp := p.Exp(k)
		for f := range out {
			out[f] = max(out[f], lay.Field(exp, f))
		}
	}
	return out
}

// Repack re-encodes p at a different field width.
func (p *Poly) Repack(ctx *Context, fieldBits uint) error {
	if fieldBits == p.Bits {
		return nil
	}
	from, to := ctx.Layout(p.Bits), ctx.Layout(fieldBits)
	exps := make([]uint64, len(p.Coeffs)*to.N)
	for k := 0; k < p.Len; k++ {
		if err := to.Repack(exps[k*to.N:(k+1)*to.N], p.Exp(k), from); err != nil {
			return err
		}
	}
	p.Exps, p.N, p.Bits = exps, to.N, fieldBits
	return nil
}

// Repacked returns p itself when it already uses fieldBits, otherwise a
// repacked copy. p is never modified.
func (p *Poly) Repacked(ctx *Context, fieldBits uint) (*Poly, error) {
	if fieldBits == p.Bits {
		return p, nil
	}
	q := &Poly{Terms: Terms{
		Coeffs: p.Coeffs[:p.Len:p.Len],
		Exps:   p.Exps[:p.Len*p.N],
		Len:    p.Len,
		N:      p.N,
	}, Bits: p.Bits}
	if err := q.Repack(ctx, fieldBits); err != nil {
		return nil, err
	}
	return q, nil
}

// Equal reports whether p and q are the same polynomial.
func Equal(ctx *Context, p, q *Poly) bool {
	if p.Len != q.Len {
		return false
	}
	pl, ql := p.Layout(ctx), q.Layout(ctx)
	pe, qe := make([]uint64, ctx.nvars), make([]uint64, ctx.nvars)
	for k := 0; k < p.Len; k++ {
		if p.Coeffs[k].Cmp(q.Coeffs[k]) != 0 {
			return false
		}
		if p.Bits == q.Bits {
			if !pl.Equal(p.Exp(k), q.Exp(k)) {
				return false
			}
			continue
		}
		pl.Unpack(pe, p.Exp(k))
		ql.Unpack(qe, q.Exp(k))
		if !slices.Equal(pe, qe) {
			return false
		}
	}
	return true
}

// FromTerms builds a normalized polynomial from unordered terms: monomials
// are sorted into storage order, like terms are collected and zero
// coefficients dropped. Inputs are copied.
func FromTerms(ctx *Context, coeffs []*big.Int, exps [][]uint64) (*Poly, error) {
	if len(coeffs) != len(exps) {
		return nil, fmt.Errorf("%d coefficients for %d monomials", len(coeffs), len(exps))
	}
	var bound uint64
	for _, e := range exps {
		if len(e) != ctx.nvars {
			return nil, fmt.Errorf("monomial %v has %d exponents, want %d", e, len(e), ctx.nvars)
		}
		var deg uint64
		for _, v := range e {
			bound = max(bound, v)
			if !ctx.ord.Graded() {
				continue
			}
			var carry uint64
			if deg, carry = bits.Add64(deg, v, 0); carry != 0 {
				return nil, fmt.Errorf("total degree of %v: %w", e, monomial.ErrExponentOverflow)
			}
		}
		bound = max(bound, deg)
	}
	fieldBits, err := monomial.BitsFor(bound)
	if err != nil {
		return nil, fmt.Errorf("exponent bound %d: %w", bound, err)
	}
	lay := ctx.Layout(fieldBits)

	packed := NewTerms(lay.N, len(exps))
	for k, e := range exps {
		if err := lay.Pack(packed.Exp(k), e); err != nil {
			return nil, err
		}
	}
	order := make([]int, len(exps))
	for k := range order {
		order[k] = k
	}
	slices.SortStableFunc(order, func(i, j int) int {
		return -lay.Cmp(packed.Exp(i), packed.Exp(j))
	})

	p := &Poly{Terms: *NewTerms(lay.N, len(exps)), Bits: fieldBits}
	for _, k := range order {
		if p.Len > 0 && lay.Equal(p.Exp(p.Len-1), packed.Exp(k)) {
			p.Coeffs[p.Len-1].Add(p.Coeffs[p.Len-1], coeffs[k])
			continue
		}
		if p.Len > 0 && p.Coeffs[p.Len-1].Sign() == 0 {
			p.Len--
		}
		p.Coeff(p.Len).Set(coeffs[k])
		copy(p.Exp(p.Len), packed.Exp(k))
		p.Len++
	}
	if p.Len > 0 && p.Coeffs[p.Len-1].Sign() == 0 {
		p.Len--
	}
	return p, nil
}

// FromInts is FromTerms for small coefficients.
func FromInts(ctx *Context, coeffs []int64, exps [][]uint64) (*Poly, error) {
	bc := make([]*big.Int, len(coeffs))
	for i, c := range coeffs {
		bc[i] = big.NewInt(c)
	}
	return FromTerms(ctx, bc, exps)
}

// IsCanonical reports whether p's monomials are strictly ordered and its
// coefficients nonzero.
func (p *Poly) IsCanonical(ctx *Context) bool {
	lay := p.Layout(ctx)
	for k := 0; k < p.Len; k++ {
		if p.Coeffs[k] == nil || p.Coeffs[k].Sign() == 0 {
			return false
		}
		if k > 0 && !lay.Before(p.Exp(k-1), p.Exp(k)) {
			return false
		}
	}
	return true
}
