package mpoly

import "math/big"

// Terms is a growable term sequence: parallel coefficient and packed
// exponent arrays plus the number of live terms.
//
// len(Coeffs) is the allocated capacity. Slots past Len may hold spare
// *big.Int values left behind by earlier use; they are reused before new
// ones are allocated, and may be moved between sequences to avoid
// allocation churn.
type Terms struct {
	Coeffs []*big.Int
	Exps   []uint64
	Len    int
	// N is the number of words per packed monomial.
	N int
}

// NewTerms returns an empty sequence of n-word monomials with room for alloc terms.
func NewTerms(n, alloc int) *Terms {
	t := &Terms{N: n}
	t.Fit(alloc)
	return t
}

// Alloc returns the allocated capacity in terms.
func (t *Terms) Alloc() int { return len(t.Coeffs) }

// Fit grows the sequence to hold at least length terms, at least doubling
// the previous capacity. Every slot is kept, including coefficient spares
// and monomials written past Len that are not committed yet.
func (t *Terms) Fit(length int) {
	old := len(t.Coeffs)
	if length <= old {
		return
	}
	alloc := max(length, 2*old)
	coeffs := make([]*big.Int, alloc)
	copy(coeffs, t.Coeffs)
	exps := make([]uint64, alloc*t.N)
	copy(exps, t.Exps)
	t.Coeffs, t.Exps = coeffs, exps
}

// Exp returns the packed monomial of term k.
func (t *Terms) Exp(k int) []uint64 {
	return t.Exps[k*t.N : (k+1)*t.N : (k+1)*t.N]
}

// Coeff returns the coefficient object of slot k, allocating it if the slot
// is empty. The value is whatever the slot last held.
func (t *Terms) Coeff(k int) *big.Int {
	c := t.Coeffs[k]
	if c == nil {
		c = new(big.Int)
		t.Coeffs[k] = c
	}
	return c
}

// Swap exchanges the contents of t and o.
func (t *Terms) Swap(o *Terms) {
	*t, *o = *o, *t
}

// Reset makes the sequence empty for n-word monomials, keeping coefficient
// objects as spares when the width is unchanged.
func (t *Terms) Reset(n int) {
	t.Len = 0
	if n != t.N {
		t.N = n
		t.Exps = make([]uint64, len(t.Coeffs)*n)
	}
}

// Append copies one term onto the end of the sequence.
func (t *Terms) Append(c *big.Int, exp []uint64) {
	t.Fit(t.Len + 1)
	t.Coeff(t.Len).Set(c)
	copy(t.Exp(t.Len), exp)
	t.Len++
}
