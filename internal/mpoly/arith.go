package mpoly

import (
	"fmt"
	"math/big"
	"math/bits"

	"github.com/agbru/mpolymul/internal/monomial"
)

// Add sets dst = a + b. dst may alias either operand.
func Add(ctx *Context, dst, a, b *Poly) error {
	fieldBits := max(a.Bits, b.Bits)
	aa, err := a.Repacked(ctx, fieldBits)
	if err != nil {
		return err
	}
	bb, err := b.Repacked(ctx, fieldBits)
	if err != nil {
		return err
	}
	lay := ctx.Layout(fieldBits)
	out := &Poly{Terms: *NewTerms(lay.N, aa.Len+bb.Len), Bits: fieldBits}
	i, j := 0, 0
	for i < aa.Len || j < bb.Len {
		var c int
		switch {
		case i == aa.Len:
			c = -1
		case j == bb.Len:
			c = 1
		default:
			c = lay.Cmp(aa.Exp(i), bb.Exp(j))
		}
		switch {
		case c > 0:
			out.Append(aa.Coeffs[i], aa.Exp(i))
			i++
		case c < 0:
			out.Append(bb.Coeffs[j], bb.Exp(j))
			j++
		default:
			sum := out.Coeff(out.Len)
			sum.Add(aa.Coeffs[i], bb.Coeffs[j])
			if sum.Sign() != 0 {
				copy(out.Exp(out.Len), aa.Exp(i))
				out.Len++
			}
			i++
			j++
		}
	}
	dst.Swap(out)
	return nil
}

// Neg sets dst = -a.
func Neg(dst, a *Poly) {
	dst.Set(a)
	for k := 0; k < dst.Len; k++ {
		dst.Coeffs[k].Neg(dst.Coeffs[k])
	}
}

// MulClassical sets dst = a*b by expanding every pair of terms and
// collecting like terms. It is quadratic in memory and serves as the
// reference product.
func MulClassical(ctx *Context, dst, a, b *Poly) error {
	if a.IsZero() || b.IsZero() {
		dst.Zero()
		return nil
	}
	al, bl := a.Layout(ctx), b.Layout(ctx)
	ea, eb := make([]uint64, ctx.nvars), make([]uint64, ctx.nvars)
	coeffs := make([]*big.Int, 0, a.Len*b.Len)
	exps := make([][]uint64, 0, a.Len*b.Len)
	for i := 0; i < a.Len; i++ {
		al.Unpack(ea, a.Exp(i))
		for j := 0; j < b.Len; j++ {
			bl.Unpack(eb, b.Exp(j))
			e := make([]uint64, ctx.nvars)
			for v := range e {
				var carry uint64
				if e[v], carry = bits.Add64(ea[v], eb[v], 0); carry != 0 {
					return fmt.Errorf("variable %d: %w", v+1, monomial.ErrExponentOverflow)
				}
			}
			coeffs = append(coeffs, new(big.Int).Mul(a.Coeffs[i], b.Coeffs[j]))
			exps = append(exps, e)
		}
	}
	p, err := FromTerms(ctx, coeffs, exps)
	if err != nil {
		return err
	}
	dst.Swap(p)
	return nil
}
