// Package monomial implements the packed exponent-vector codec used by the
// multiplication engine.
//
// A monomial in n variables is stored as N 64-bit words holding fixed-width
// fields. Field 0 is the most significant field of word 0; graded orderings
// prepend a total-degree field. The top bit of every field is kept clear so
// that word-wise addition of two in-range monomials never carries across a
// field boundary. Comparison XORs each word with a mask before an unsigned
// lexicographic word comparison, which is how reverse and ascending
// conventions are realized without per-field logic.
package monomial

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

// ErrExponentOverflow reports an exponent that does not fit the packed field width.
var ErrExponentOverflow = errors.New("exponent overflow")

// Ordering is a monomial term order.
type Ordering int

const (
	// Lex is the pure lexicographic order with x1 > x2 > ... > xn.
	Lex Ordering = iota
	// DegLex compares total degree first, then lexicographically.
	DegLex
	// DegRevLex compares total degree first, then by reverse lexicographic
	// order on the last variable.
	DegRevLex
)

// String returns the canonical lower-case name of the ordering.
func (o Ordering) String() string {
	switch o {
	case Lex:
		return "lex"
	case DegLex:
		return "deglex"
	case DegRevLex:
		return "degrevlex"
	default:
		return fmt.Sprintf("Ordering(%d)", int(o))
	}
}

// Graded reports whether the ordering carries a total-degree field.
func (o Ordering) Graded() bool { return o == DegLex || o == DegRevLex }

// ParseOrdering converts a name such as "degrevlex" into an Ordering.
func ParseOrdering(s string) (Ordering, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lex":
		return Lex, nil
	case "deglex", "grlex":
		return DegLex, nil
	case "degrevlex", "grevlex":
		return DegRevLex, nil
	}
	return Lex, fmt.Errorf("unknown monomial ordering %q", s)
}

// Layout describes how monomials of a given context are packed.
type Layout struct {
	NVars     int
	Ord       Ordering
	Ascending bool

	// Bits is the field width, one of 8, 16, 32 or 64.
	Bits          uint
	Fields        int
	FieldsPerWord int
	// N is the number of words per monomial.
	N int

	// MaskHi is XORed into word 0 and MaskLo into every other word before
	// comparison.
	MaskHi uint64
	MaskLo uint64

	fieldMask uint64
}

// NewLayout returns the packing layout for nvars variables at the given field width.
func NewLayout(nvars int, ord Ordering, ascending bool, fieldBits uint) (*Layout, error) {
	if nvars < 0 {
		return nil, fmt.Errorf("negative variable count %d", nvars)
	}
	switch fieldBits {
	case 8, 16, 32, 64:
	default:
		return nil, fmt.Errorf("unsupported field width %d", fieldBits)
	}
	if ord != Lex && ord != DegLex && ord != DegRevLex {
		return nil, fmt.Errorf("unsupported ordering %v", ord)
	}
	l := &Layout{
		NVars:         nvars,
		Ord:           ord,
		Ascending:     ascending,
		Bits:          fieldBits,
		Fields:        nvars,
		FieldsPerWord: int(64 / fieldBits),
	}
	if ord.Graded() {
		l.Fields++
	}
	l.N = (l.Fields + l.FieldsPerWord - 1) / l.FieldsPerWord
	if l.N == 0 {
		l.N = 1
	}
	if fieldBits == 64 {
		l.fieldMask = ^uint64(0)
	} else {
		l.fieldMask = uint64(1)<<fieldBits - 1
	}
	if ord == DegRevLex {
		// every variable field is reversed; only the degree field keeps its sense
		l.MaskLo = ^uint64(0)
		l.MaskHi = ^uint64(0) &^ (l.fieldMask << (64 - fieldBits))
	}
	if ascending {
		l.MaskHi = ^l.MaskHi
		l.MaskLo = ^l.MaskLo
	}
	return l, nil
}

// WithBits returns a copy of the layout at a different field width.
func (l *Layout) WithBits(fieldBits uint) (*Layout, error) {
	return NewLayout(l.NVars, l.Ord, l.Ascending, fieldBits)
}

// MaxField is the largest value a field may hold.
func (l *Layout) MaxField() uint64 {
	return uint64(1)<<(l.Bits-1) - 1
}

func (l *Layout) position(k int) (word int, shift uint) {
	return k / l.FieldsPerWord, 64 - l.Bits*uint(k%l.FieldsPerWord+1)
}

// Field returns the value of field k of the packed monomial src.
func (l *Layout) Field(src []uint64, k int) uint64 {
	w, s := l.position(k)
	return (src[w] >> s) & l.fieldMask
}

func (l *Layout) setField(dst []uint64, k int, v uint64) {
	w, s := l.position(k)
	dst[w] |= v << s
}

// DecodeFields decodes every packed field of src into dst, degree field
// first for graded orderings. dst must have room for l.Fields values.
func (l *Layout) DecodeFields(dst []uint64, src []uint64) {
	for k := 0; k < l.Fields; k++ {
		dst[k] = l.Field(src, k)
	}
}

// varField maps variable v (0-based, x1 first) to its field index.
func (l *Layout) varField(v int) int {
	switch l.Ord {
	case DegLex:
		return v + 1
	case DegRevLex:
		return l.NVars - v
	default:
		return v
	}
}

// Pack encodes the exponent vector exps (one entry per variable) into dst.
func (l *Layout) Pack(dst []uint64, exps []uint64) error {
	if len(exps) != l.NVars {
		return fmt.Errorf("expected %d exponents, got %d", l.NVars, len(exps))
	}
	clear(dst[:l.N])
	limit := l.MaxField()
	var deg uint64
	for v, e := range exps {
		if e > limit {
			return fmt.Errorf("exponent %d of variable %d: %w", e, v+1, ErrExponentOverflow)
		}
		if l.Ord.Graded() {
			var carry uint64
			deg, carry = bits.Add64(deg, e, 0)
			if carry != 0 || deg > limit {
				return fmt.Errorf("total degree: %w", ErrExponentOverflow)
			}
		}
		l.setField(dst, l.varField(v), e)
	}
	if l.Ord.Graded() {
		l.setField(dst, 0, deg)
	}
	return nil
}

// Unpack decodes the variable exponents of src into dst (one entry per variable).
func (l *Layout) Unpack(dst []uint64, src []uint64) {
	for v := 0; v < l.NVars; v++ {
		dst[v] = l.Field(src, l.varField(v))
	}
}

// Degree returns the total degree of src.
func (l *Layout) Degree(src []uint64) uint64 {
	if l.Ord.Graded() {
		return l.Field(src, 0)
	}
	var d uint64
	for k := 0; k < l.Fields; k++ {
		d += l.Field(src, k)
	}
	return d
}

// Repack converts src, packed with from, into dst packed with l. The two
// layouts must describe the same variables and ordering.
func (l *Layout) Repack(dst []uint64, src []uint64, from *Layout) error {
	if from.NVars != l.NVars || from.Ord != l.Ord {
		return fmt.Errorf("cannot repack %d-variable %v monomial into %d-variable %v layout",
			from.NVars, from.Ord, l.NVars, l.Ord)
	}
	clear(dst[:l.N])
	limit := l.MaxField()
	for k := 0; k < l.Fields; k++ {
		v := from.Field(src, k)
		if v > limit {
			return fmt.Errorf("field %d value %d: %w", k, v, ErrExponentOverflow)
		}
		l.setField(dst, k, v)
	}
	return nil
}

// Add stores a+b into dst word by word.
func (l *Layout) Add(dst, a, b []uint64) {
	for i := 0; i < l.N; i++ {
		dst[i] = a[i] + b[i]
	}
}

// Cmp compares a and b in storage order: it returns a positive value when a
// is stored before b, negative when after, and 0 when they are equal.
func (l *Layout) Cmp(a, b []uint64) int {
	m := l.MaskHi
	for i := 0; i < l.N; i++ {
		x, y := a[i]^m, b[i]^m
		if x != y {
			if x > y {
				return 1
			}
			return -1
		}
		m = l.MaskLo
	}
	return 0
}

// Cmp1 is Cmp for single-word layouts.
func (l *Layout) Cmp1(a, b uint64) int {
	x, y := a^l.MaskHi, b^l.MaskHi
	switch {
	case x > y:
		return 1
	case x < y:
		return -1
	}
	return 0
}

// Before reports whether a is stored strictly before b.
func (l *Layout) Before(a, b []uint64) bool { return l.Cmp(a, b) > 0 }

// Equal reports whether a and b are the same monomial.
func (l *Layout) Equal(a, b []uint64) bool {
	for i := 0; i < l.N; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsZero reports whether a is the monomial 1.
func (l *Layout) IsZero(a []uint64) bool {
	for i := 0; i < l.N; i++ {
		if a[i] != 0 {
			return false
		}
	}
	return true
}

// BitsFor returns the smallest supported field width able to hold bound with
// the top bit of the field left clear.
func BitsFor(bound uint64) (uint, error) {
	need := uint(bits.Len64(bound))
	if need >= 64 {
		return 0, ErrExponentOverflow
	}
	w := uint(8)
	for need >= w {
		w *= 2
	}
	return w, nil
}
