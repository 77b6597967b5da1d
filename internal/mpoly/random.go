package mpoly

import (
	"math/big"
	"math/rand/v2"
)

// Random returns a polynomial built from length random terms with
// exponents in [0, expBound) and nonzero signed coefficients of up to
// coeffBits bits. Colliding monomials are collected, so the result may have
// fewer than length terms.
func Random(rng *rand.Rand, ctx *Context, length int, expBound uint64, coeffBits int) (*Poly, error) {
	if expBound == 0 {
		expBound = 1
	}
	coeffs := make([]*big.Int, length)
	exps := make([][]uint64, length)
	for k := range coeffs {
		coeffs[k] = RandomCoeff(rng, coeffBits)
		e := make([]uint64, ctx.nvars)
		for v := range e {
			e[v] = rng.Uint64N(expBound)
		}
		exps[k] = e
	}
	return FromTerms(ctx, coeffs, exps)
}

// RandomCoeff returns a nonzero signed integer whose magnitude has between 1
// and maxBits bits.
func RandomCoeff(rng *rand.Rand, maxBits int) *big.Int {
	maxBits = max(maxBits, 1)
	nbits := 1 + rng.IntN(maxBits)
	buf := make([]byte, (nbits+7)/8)
	for i := range buf {
		buf[i] = byte(rng.Uint32())
	}
	if r := nbits % 8; r != 0 {
		buf[0] &= byte(1)<<r - 1
	}
	c := new(big.Int).SetBytes(buf)
	if c.Sign() == 0 {
		c.SetInt64(1)
	}
	if rng.IntN(2) == 0 {
		c.Neg(c)
	}
	return c
}
