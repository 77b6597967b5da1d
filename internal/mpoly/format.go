package mpoly

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	apperrors "github.com/agbru/mpolymul/internal/errors"
)

// DefaultVars returns the names x1..xn.
func DefaultVars(n int) []string {
	vars := make([]string, n)
	for i := range vars {
		vars[i] = "x" + strconv.Itoa(i+1)
	}
	return vars
}

// Format renders p as a sum of terms such as "3*x^3-x^2*y-2*x*y^2".
// Unit coefficients are omitted, the constant ±1 prints as "1", and the
// zero polynomial prints as "0". A nil vars uses x1..xn.
func (p *Poly) Format(ctx *Context, vars []string) string {
	if p.Len == 0 {
		return "0"
	}
	if vars == nil {
		vars = DefaultVars(ctx.nvars)
	}
	lay := p.Layout(ctx)
	exps := make([]uint64, ctx.nvars)
	var sb strings.Builder
	var abs big.Int
	for k := 0; k < p.Len; k++ {
		c := p.Coeffs[k]
		switch {
		case c.Sign() < 0:
			sb.WriteByte('-')
		case k > 0:
			sb.WriteByte('+')
		}
		abs.Abs(c)
		lay.Unpack(exps, p.Exp(k))
		unit := abs.IsInt64() && abs.Int64() == 1
		first := true
		if !unit {
			sb.WriteString(abs.String())
			first = false
		}
		for v, e := range exps {
			if e == 0 {
				continue
			}
			if !first {
				sb.WriteByte('*')
			}
			first = false
			sb.WriteString(vars[v])
			if e > 1 {
				sb.WriteByte('^')
				sb.WriteString(strconv.FormatUint(e, 10))
			}
		}
		if first {
			sb.WriteByte('1')
		}
	}
	return sb.String()
}

// Parse reads a polynomial in the notation produced by Format. Whitespace is
// ignored, a variable may repeat within a term, and the result is
// normalized. A nil vars uses x1..xn.
func Parse(ctx *Context, s string, vars []string) (*Poly, error) {
	if vars == nil {
		vars = DefaultVars(ctx.nvars)
	}
	if len(vars) != ctx.nvars {
		return nil, fmt.Errorf("%d variable names for %d variables", len(vars), ctx.nvars)
	}
	index := make(map[string]int, len(vars))
	for i, v := range vars {
		index[v] = i
	}
	ps := &parser{input: s, vars: index, nvars: ctx.nvars}
	coeffs, exps, err := ps.parse()
	if err != nil {
		return nil, err
	}
	return FromTerms(ctx, coeffs, exps)
}

type parser struct {
	input string
	pos   int
	vars  map[string]int
	nvars int
}

func (ps *parser) fail(msg string, args ...any) error {
	return &apperrors.ParseError{Input: ps.input, Offset: ps.pos, Message: fmt.Sprintf(msg, args...)}
}

func (ps *parser) skipSpace() {
	for ps.pos < len(ps.input) {
		switch ps.input[ps.pos] {
		case ' ', '\t', '\n', '\r':
			ps.pos++
		default:
			return
		}
	}
}

func (ps *parser) peek() byte {
	ps.skipSpace()
	if ps.pos >= len(ps.input) {
		return 0
	}
	return ps.input[ps.pos]
}

func (ps *parser) parse() ([]*big.Int, [][]uint64, error) {
	var coeffs []*big.Int
	var exps [][]uint64
	if ps.peek() == 0 {
		return nil, nil, ps.fail("empty expression")
	}
	for first := true; ; first = false {
		neg := false
		switch ps.peek() {
		case '+':
			ps.pos++
		case '-':
			neg = true
			ps.pos++
		case 0:
			return coeffs, exps, nil
		default:
			if !first {
				return nil, nil, ps.fail("expected '+' or '-'")
			}
		}
		c, e, err := ps.term()
		if err != nil {
			return nil, nil, err
		}
		if neg {
			c.Neg(c)
		}
		coeffs = append(coeffs, c)
		exps = append(exps, e)
	}
}

func (ps *parser) term() (*big.Int, []uint64, error) {
	c := big.NewInt(1)
	e := make([]uint64, ps.nvars)
	for {
		if err := ps.factor(c, e); err != nil {
			return nil, nil, err
		}
		if ps.peek() != '*' {
			return c, e, nil
		}
		ps.pos++
	}
}

func (ps *parser) factor(c *big.Int, e []uint64) error {
	ch := ps.peek()
	switch {
	case ch >= '0' && ch <= '9':
		digits := ps.scan(isDigit)
		var v big.Int
		v.SetString(digits, 10)
		c.Mul(c, &v)
		return nil
	case isIdentStart(ch):
		start := ps.pos
		name := ps.scan(isIdent)
		v, ok := ps.vars[name]
		if !ok {
			ps.pos = start
			return ps.fail("unknown variable %q", name)
		}
		pow := uint64(1)
		if ps.peek() == '^' {
			ps.pos++
			if ch := ps.peek(); ch < '0' || ch > '9' {
				return ps.fail("expected exponent")
			}
			at := ps.pos
			digits := ps.scan(isDigit)
			n, err := strconv.ParseUint(digits, 10, 64)
			if err != nil {
				ps.pos = at
				return ps.fail("exponent %s out of range", digits)
			}
			pow = n
		}
		if e[v]+pow < e[v] {
			return ps.fail("exponent of %s overflows", name)
		}
		e[v] += pow
		return nil
	case ch == 0:
		return ps.fail("unexpected end of input")
	default:
		return ps.fail("unexpected character %q", ch)
	}
}

func (ps *parser) scan(accept func(byte) bool) string {
	start := ps.pos
	for ps.pos < len(ps.input) && accept(ps.input[ps.pos]) {
		ps.pos++
	}
	return ps.input[start:ps.pos]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdent(c byte) bool { return isIdentStart(c) || isDigit(c) }
