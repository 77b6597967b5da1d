//go:build gmp

// The GMP multiplier is only compiled with the "gmp" build tag, since it
// links against libgmp through cgo:
//
//	go build -tags=gmp ./cmd/mpolymul

package multiplier

import (
	"context"
	"math/big"
	"math/bits"

	"github.com/agbru/mpolymul/internal/monomial"
	"github.com/agbru/mpolymul/internal/mpoly"
	"github.com/ncw/gmp"
)

func init() {
	builtin["gmp"] = func() Multiplier { return GMP{} }
}

// GMP is the classical expansion with coefficient products computed by GMP.
type GMP struct{}

// Name returns the display name.
func (GMP) Name() string { return "GMP classical" }

// Multiply computes the product.
func (GMP) Multiply(ctx context.Context, progressChan chan<- ProgressUpdate, index int, job Job, _ Options) (*mpoly.Poly, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report := reporter(progressChan, index)
	report(0)

	a, b := job.A, job.B
	ga := toGMP(a)
	gb := toGMP(b)
	coeffs := make([]*big.Int, 0, a.Len*b.Len)
	exps := make([][]uint64, 0, a.Len*b.Len)
	prod := new(gmp.Int)
	for i := 0; i < a.Len; i++ {
		_, ea := a.Term(job.Ctx, i)
		for j := 0; j < b.Len; j++ {
			_, eb := b.Term(job.Ctx, j)
			e := make([]uint64, len(ea))
			for v := range e {
				var carry uint64
				if e[v], carry = bits.Add64(ea[v], eb[v], 0); carry != 0 {
					return nil, monomial.ErrExponentOverflow
				}
			}
			prod.Mul(ga[i], gb[j])
			coeffs = append(coeffs, fromGMP(prod))
			exps = append(exps, e)
		}
		report(float64(i+1) / float64(a.Len+1))
	}
	dst, err := mpoly.FromTerms(job.Ctx, coeffs, exps)
	if err != nil {
		return nil, err
	}
	report(1)
	return dst, nil
}

func toGMP(p *mpoly.Poly) []*gmp.Int {
	out := make([]*gmp.Int, p.Len)
	for k := range out {
		c := p.Coeffs[k]
		g := new(gmp.Int).SetBytes(c.Bytes())
		if c.Sign() < 0 {
			g.Neg(g)
		}
		out[k] = g
	}
	return out
}

func fromGMP(g *gmp.Int) *big.Int {
	z := new(big.Int).SetBytes(g.Bytes())
	if g.Sign() < 0 {
		z.Neg(z)
	}
	return z
}
