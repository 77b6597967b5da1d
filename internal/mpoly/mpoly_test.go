package mpoly

import (
	"errors"
	"math/big"
	"math/rand/v2"
	"testing"

	apperrors "github.com/agbru/mpolymul/internal/errors"
	"github.com/agbru/mpolymul/internal/monomial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexXY(t *testing.T) (*Context, []string) {
	t.Helper()
	ctx, err := NewContext(2, monomial.Lex, false)
	require.NoError(t, err)
	return ctx, []string{"x", "y"}
}

func mustParse(t *testing.T, ctx *Context, s string, vars []string) *Poly {
	t.Helper()
	p, err := Parse(ctx, s, vars)
	require.NoError(t, err, "parsing %q", s)
	return p
}

func TestFromTermsNormalizes(t *testing.T) {
	t.Parallel()
	ctx, vars := lexXY(t)
	p, err := FromInts(ctx,
		[]int64{2, 3, -2, 5, 1},
		[][]uint64{{1, 1}, {2, 0}, {1, 1}, {0, 0}, {0, 3}})
	require.NoError(t, err)
	assert.Equal(t, 3, p.Len)
	assert.True(t, p.IsCanonical(ctx))
	assert.Equal(t, "3*x^2+y^3+5", p.Format(ctx, vars))

	_, err = FromInts(ctx, []int64{1}, [][]uint64{{1}})
	assert.Error(t, err)
	_, err = FromInts(ctx, []int64{1, 2}, [][]uint64{{1, 0}})
	assert.Error(t, err)
}

func TestFromTermsChoosesFieldWidth(t *testing.T) {
	t.Parallel()
	ctx, err := NewContext(3, monomial.DegLex, false)
	require.NoError(t, err)
	tests := []struct {
		exps [][]uint64
		bits uint
	}{
		{[][]uint64{{1, 2, 3}}, 8},
		{[][]uint64{{100, 27, 0}}, 8},
		{[][]uint64{{100, 28, 0}}, 16},
		{[][]uint64{{1 << 20, 0, 0}}, 32},
		{[][]uint64{{1 << 40, 1 << 40, 0}}, 64},
	}
	for _, tt := range tests {
		p, err := FromInts(ctx, []int64{1}, tt.exps)
		require.NoError(t, err)
		assert.Equal(t, tt.bits, p.Bits, "exps %v", tt.exps)
	}
	_, err = FromInts(ctx, []int64{1}, [][]uint64{{1 << 62, 1 << 62, 0}})
	assert.ErrorIs(t, err, monomial.ErrExponentOverflow)
}

func TestFormat(t *testing.T) {
	t.Parallel()
	ctx, vars := lexXY(t)
	tests := []struct {
		coeffs []int64
		exps   [][]uint64
		want   string
	}{
		{nil, nil, "0"},
		{[]int64{1}, [][]uint64{{0, 0}}, "1"},
		{[]int64{-1}, [][]uint64{{0, 0}}, "-1"},
		{[]int64{-1, 1}, [][]uint64{{1, 0}, {0, 1}}, "-x+y"},
		{[]int64{3, -1, -2}, [][]uint64{{3, 0}, {2, 1}, {1, 2}}, "3*x^3-x^2*y-2*x*y^2"},
		{[]int64{-7}, [][]uint64{{0, 0}}, "-7"},
	}
	for _, tt := range tests {
		p, err := FromInts(ctx, tt.coeffs, tt.exps)
		require.NoError(t, err)
		assert.Equal(t, tt.want, p.Format(ctx, vars))
	}

	q, err := FromInts(ctx, []int64{4}, [][]uint64{{2, 5}})
	require.NoError(t, err)
	assert.Equal(t, "4*x1^2*x2^5", q.Format(ctx, nil))
}

func TestParse(t *testing.T) {
	t.Parallel()
	ctx, vars := lexXY(t)
	p := mustParse(t, ctx, " 3 * x^2 + 2*x*y ", vars)
	assert.Equal(t, "3*x^2+2*x*y", p.Format(ctx, vars))

	q := mustParse(t, ctx, "x*x*y - y*x^2 + 10*2", vars)
	assert.Equal(t, "20", q.Format(ctx, vars))

	z := mustParse(t, ctx, "x - x", vars)
	assert.True(t, z.IsZero())

	huge := mustParse(t, ctx, "-123456789012345678901234567890*y", vars)
	want, _ := new(big.Int).SetString("-123456789012345678901234567890", 10)
	assert.Equal(t, 0, huge.Coeffs[0].Cmp(want))

	d := mustParse(t, ctx, "x1^3-x2", nil)
	assert.Equal(t, "x1^3-x2", d.Format(ctx, nil))
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	ctx, vars := lexXY(t)
	tests := []struct {
		input  string
		offset int
	}{
		{"", 0},
		{"3*", 2},
		{"x^", 2},
		{"z", 0},
		{"3 x", 2},
		{"x^99999999999999999999999", 2},
		{"x+$", 2},
	}
	for _, tt := range tests {
		_, err := Parse(ctx, tt.input, vars)
		var pe *apperrors.ParseError
		if assert.True(t, errors.As(err, &pe), "input %q: %v", tt.input, err) {
			assert.Equal(t, tt.offset, pe.Offset, "input %q", tt.input)
		}
	}
	_, err := Parse(ctx, "x", []string{"x"})
	assert.Error(t, err)
}

func TestAdd(t *testing.T) {
	t.Parallel()
	ctx, vars := lexXY(t)
	a := mustParse(t, ctx, "3*x^2+2*x*y-y", vars)
	b := mustParse(t, ctx, "-2*x*y+x^200+y+1", vars)
	sum := NewPoly(ctx)
	require.NoError(t, Add(ctx, sum, a, b))
	assert.Equal(t, "x^200+3*x^2+1", sum.Format(ctx, vars))
	assert.Equal(t, uint(16), sum.Bits)

	require.NoError(t, Add(ctx, a, a, a))
	assert.Equal(t, "6*x^2+4*x*y-2*y", a.Format(ctx, vars))

	neg := NewPoly(ctx)
	Neg(neg, a)
	require.NoError(t, Add(ctx, neg, neg, a))
	assert.True(t, neg.IsZero())
}

func TestMulClassicalScenario(t *testing.T) {
	t.Parallel()
	ctx, vars := lexXY(t)
	a := mustParse(t, ctx, "3*x^2+2*x*y", vars)
	b := mustParse(t, ctx, "x-y", vars)
	prod := NewPoly(ctx)
	require.NoError(t, MulClassical(ctx, prod, a, b))
	assert.Equal(t, 3, prod.Len)
	assert.Equal(t, "3*x^3-x^2*y-2*x*y^2", prod.Format(ctx, vars))

	zero := NewPoly(ctx)
	require.NoError(t, MulClassical(ctx, prod, a, zero))
	assert.True(t, prod.IsZero())
}

func TestOrderingsSortTerms(t *testing.T) {
	t.Parallel()
	vars := []string{"x", "y", "z"}
	tests := []struct {
		ord       monomial.Ordering
		ascending bool
		want      string
	}{
		{monomial.Lex, false, "x^2+x*z^3+y^4+z"},
		{monomial.DegLex, false, "x*z^3+y^4+x^2+z"},
		{monomial.DegRevLex, false, "y^4+x*z^3+x^2+z"},
		{monomial.Lex, true, "z+y^4+x*z^3+x^2"},
	}
	for _, tt := range tests {
		ctx, err := NewContext(3, tt.ord, tt.ascending)
		require.NoError(t, err)
		p := mustParse(t, ctx, "z+x^2+y^4+x*z^3", vars)
		assert.Equal(t, tt.want, p.Format(ctx, vars), "ord=%v asc=%v", tt.ord, tt.ascending)
	}

	// equal degree: deglex looks at x first, degrevlex at z
	grevlex, err := NewContext(3, monomial.DegRevLex, false)
	require.NoError(t, err)
	p := mustParse(t, grevlex, "x*z^2+y^3", vars)
	assert.Equal(t, "y^3+x*z^2", p.Format(grevlex, vars))
	glex, err := NewContext(3, monomial.DegLex, false)
	require.NoError(t, err)
	q := mustParse(t, glex, "x*z^2+y^3", vars)
	assert.Equal(t, "x*z^2+y^3", q.Format(glex, vars))
}

func TestRepackAndEqual(t *testing.T) {
	t.Parallel()
	ctx, vars := lexXY(t)
	p := mustParse(t, ctx, "5*x^3*y-x+7", vars)
	q := NewPoly(ctx)
	q.Set(p)
	require.NoError(t, q.Repack(ctx, 64))
	assert.Equal(t, uint(64), q.Bits)
	assert.True(t, Equal(ctx, p, q))
	assert.Equal(t, p.Format(ctx, vars), q.Format(ctx, vars))

	r, err := p.Repacked(ctx, 32)
	require.NoError(t, err)
	assert.Equal(t, uint(8), p.Bits, "Repacked must not modify its receiver")
	assert.True(t, Equal(ctx, r, q))
	same, err := p.Repacked(ctx, 8)
	require.NoError(t, err)
	assert.Same(t, p, same)

	q.Coeffs[0].SetInt64(6)
	assert.False(t, Equal(ctx, p, q))
	assert.Equal(t, []uint64{3, 1}, p.MaxFields(ctx))
}

func TestRandomIsCanonical(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(3, 5))
	for _, ord := range []monomial.Ordering{monomial.Lex, monomial.DegLex, monomial.DegRevLex} {
		ctx, err := NewContext(4, ord, false)
		require.NoError(t, err)
		p, err := Random(rng, ctx, 200, 10, 150)
		require.NoError(t, err)
		assert.True(t, p.IsCanonical(ctx))
		assert.LessOrEqual(t, p.Len, 200)
		assert.Greater(t, p.Len, 150)
	}
	for i := 0; i < 100; i++ {
		c := RandomCoeff(rng, 70)
		assert.NotZero(t, c.Sign())
		assert.LessOrEqual(t, c.BitLen(), 70)
	}
}

func TestTermsFitKeepsSpares(t *testing.T) {
	t.Parallel()
	ts := NewTerms(2, 2)
	c0 := ts.Coeff(0)
	c1 := ts.Coeff(1)
	ts.Len = 1
	ts.Fit(5)
	assert.GreaterOrEqual(t, ts.Alloc(), 5)
	assert.Same(t, c0, ts.Coeffs[0])
	assert.Same(t, c1, ts.Coeffs[1], "spare coefficient survives growth")
	assert.Nil(t, ts.Coeffs[4])

	ts.Reset(3)
	assert.Equal(t, 3, ts.N)
	assert.Equal(t, ts.Alloc()*3, len(ts.Exps))
}

func TestTermsFitKeepsPendingTerms(t *testing.T) {
	t.Parallel()
	ts := NewTerms(2, 1)
	// terms are written slot by slot and committed once at the end
	for k := 0; k < 9; k++ {
		ts.Fit(k + 1)
		ts.Coeff(k).SetInt64(int64(k + 1))
		copy(ts.Exp(k), []uint64{uint64(100 + k), uint64(k)})
	}
	ts.Len = 9
	require.GreaterOrEqual(t, ts.Alloc(), 9)
	for k := 0; k < 9; k++ {
		assert.Equal(t, []uint64{uint64(100 + k), uint64(k)}, ts.Exp(k), "slot %d", k)
		assert.Equal(t, int64(k+1), ts.Coeffs[k].Int64(), "slot %d", k)
	}
}

func FuzzParseFormat(f *testing.F) {
	for _, s := range []string{"3*x^2+2*x*y", "x-y", "-1", "0", "x^5*y^3-17*y+4"} {
		f.Add(s)
	}
	ctx, err := NewContext(2, monomial.DegRevLex, false)
	if err != nil {
		f.Fatal(err)
	}
	vars := []string{"x", "y"}
	f.Fuzz(func(t *testing.T, s string) {
		p, err := Parse(ctx, s, vars)
		if err != nil {
			return
		}
		printed := p.Format(ctx, vars)
		q, err := Parse(ctx, printed, vars)
		if err != nil {
			t.Fatalf("reparsing %q (from %q): %v", printed, s, err)
		}
		if !Equal(ctx, p, q) {
			t.Fatalf("round trip changed %q into %q", printed, q.Format(ctx, vars))
		}
	})
}

func TestStats(t *testing.T) {
	t.Parallel()
	ctx, vars := lexXY(t)
	p := mustParse(t, ctx, "-300*x^4*y+2*x*y^2+7", vars)
	s := p.Stats(ctx)
	assert.Equal(t, 3, s.Terms)
	assert.Equal(t, uint64(5), s.TotalDegree)
	assert.Equal(t, 9, s.MaxCoeffBits)
	assert.Equal(t, p.Bits, s.FieldBits)
	assert.Equal(t, 1, s.Words)

	assert.Zero(t, NewPoly(ctx).Stats(ctx).Terms)
}
