package heapmul

import (
	"encoding/binary"
	"math/big"
	"math/bits"

	"lukechampine.com/uint128"
)

// acc3 is a signed three-word accumulator for sums of int64 products. The
// low two words live in lo and the sign-extending top word in hi; together
// they hold a two's complement 192-bit value, which cannot overflow for
// fewer than 2^63 summands.
type acc3 struct {
	lo uint128.Uint128
	hi uint64
}

// smul returns the two's complement 128-bit product x*y.
func smul(x, y int64) uint128.Uint128 {
	ux, uy := uint64(x), uint64(y)
	if x < 0 {
		ux = -ux
	}
	if y < 0 {
		uy = -uy
	}
	hi, lo := bits.Mul64(ux, uy)
	p := uint128.New(lo, hi)
	if (x < 0) != (y < 0) {
		p = uint128.Zero.SubWrap(p)
	}
	return p
}

// set starts a new sum with the product p.
func (c *acc3) set(p uint128.Uint128) {
	c.lo = p
	c.hi = -(p.Hi >> 63)
}

// add adds the sign-extended product p.
func (c *acc3) add(p uint128.Uint128) {
	sum := c.lo.AddWrap(p)
	var cy uint64
	if sum.Cmp(c.lo) < 0 {
		cy = 1
	}
	c.lo = sum
	if int64(p.Hi) >= 0 {
		c.hi += cy
	} else {
		c.hi += cy - 1
	}
}

// isZero reports whether the sum is exactly zero.
func (c *acc3) isZero() bool {
	return c.hi == 0 && c.lo.IsZero()
}

// big stores the sum into z.
func (c *acc3) big(z *big.Int) {
	if c.hi == 0 && c.lo.Hi == 0 {
		z.SetUint64(c.lo.Lo)
		return
	}
	lo, hi := c.lo, c.hi
	neg := int64(hi) < 0
	if neg {
		hi = ^hi
		if lo.IsZero() {
			hi++
		}
		lo = uint128.Zero.SubWrap(lo)
	}
	var buf [24]byte
	binary.BigEndian.PutUint64(buf[:8], hi)
	lo.PutBytesBE(buf[8:])
	z.SetBytes(buf[:])
	if neg {
		z.Neg(z)
	}
}
