package polymul

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	apperrors "github.com/agbru/mpolymul/internal/errors"
	"github.com/agbru/mpolymul/internal/monomial"
	"github.com/agbru/mpolymul/internal/mpoly"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderings = []monomial.Ordering{monomial.Lex, monomial.DegLex, monomial.DegRevLex}

// operands draws a context and two random polynomials from seed.
func operands(t *testing.T, seed uint64, ord monomial.Ordering, maxLen int) (*mpoly.Context, *mpoly.Poly, *mpoly.Poly) {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed>>7|1))
	nvars := 1 + rng.IntN(4)
	mctx, err := mpoly.NewContext(nvars, ord, seed%4 == 0)
	require.NoError(t, err)
	coeffBits := 20
	if seed%3 == 0 {
		coeffBits = 150
	}
	a, err := mpoly.Random(rng, mctx, 1+rng.IntN(maxLen), 12, coeffBits)
	require.NoError(t, err)
	b, err := mpoly.Random(rng, mctx, 1+rng.IntN(maxLen), 12, coeffBits)
	require.NoError(t, err)
	return mctx, a, b
}

func classical(t *testing.T, mctx *mpoly.Context, a, b *mpoly.Poly) *mpoly.Poly {
	t.Helper()
	want := mpoly.NewPoly(mctx)
	require.NoError(t, mpoly.MulClassical(mctx, want, a, b))
	return want
}

func mul(t *testing.T, mctx *mpoly.Context, a, b *mpoly.Poly, threads int) *mpoly.Poly {
	t.Helper()
	got := mpoly.NewPoly(mctx)
	require.NoError(t, Mul(context.Background(), got, a, b, mctx, Options{Threads: threads, ParallelThreshold: 1}))
	return got
}

func TestMulScenario(t *testing.T) {
	t.Parallel()
	mctx, err := mpoly.NewContext(2, monomial.Lex, false)
	require.NoError(t, err)
	vars := []string{"x", "y"}
	a, err := mpoly.Parse(mctx, "3*x^2+2*x*y", vars)
	require.NoError(t, err)
	b, err := mpoly.Parse(mctx, "x-y", vars)
	require.NoError(t, err)

	for threads := 1; threads <= 4; threads++ {
		got := mul(t, mctx, a, b, threads)
		assert.Equal(t, "3*x^3-x^2*y-2*x*y^2", got.Format(mctx, vars), "threads=%d", threads)
		assert.True(t, got.IsCanonical(mctx))
	}
}

func TestMulProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 60
	properties := gopter.NewProperties(parameters)

	for _, ord := range orderings {
		properties.Property(ord.String()+" product matches classical expansion", prop.ForAll(
			func(seed uint64, threads int) bool {
				mctx, a, b := operands(t, seed, ord, 40)
				got := mul(t, mctx, a, b, threads)
				return got.IsCanonical(mctx) && mpoly.Equal(mctx, got, classical(t, mctx, a, b))
			},
			gen.UInt64(),
			gen.IntRange(1, 8),
		))

		properties.Property(ord.String()+" product does not depend on thread count", prop.ForAll(
			func(seed uint64, threads int) bool {
				mctx, a, b := operands(t, seed, ord, 60)
				return mpoly.Equal(mctx, mul(t, mctx, a, b, threads), mul(t, mctx, a, b, 1))
			},
			gen.UInt64(),
			gen.IntRange(2, 8),
		))

		properties.Property(ord.String()+" product is commutative", prop.ForAll(
			func(seed uint64) bool {
				mctx, a, b := operands(t, seed, ord, 30)
				return mpoly.Equal(mctx, mul(t, mctx, a, b, 3), mul(t, mctx, b, a, 3))
			},
			gen.UInt64(),
		))

		properties.Property(ord.String()+" product distributes over addition", prop.ForAll(
			func(seed uint64) bool {
				mctx, a, b := operands(t, seed, ord, 20)
				rng := rand.New(rand.NewPCG(seed, 3))
				c, err := mpoly.Random(rng, mctx, 1+rng.IntN(20), 12, 20)
				if err != nil {
					return false
				}
				sum := mpoly.NewPoly(mctx)
				if err := mpoly.Add(mctx, sum, b, c); err != nil {
					return false
				}
				left := mul(t, mctx, a, sum, 4)
				ab, ac := mul(t, mctx, a, b, 4), mul(t, mctx, a, c, 4)
				right := mpoly.NewPoly(mctx)
				if err := mpoly.Add(mctx, right, ab, ac); err != nil {
					return false
				}
				return mpoly.Equal(mctx, left, right)
			},
			gen.UInt64(),
		))
	}
	properties.TestingRun(t)
}

func TestMulAliasing(t *testing.T) {
	t.Parallel()
	for _, ord := range orderings {
		t.Run(ord.String(), func(t *testing.T) {
			t.Parallel()
			mctx, a, b := operands(t, 99, ord, 50)
			want := classical(t, mctx, a, b)
			square := classical(t, mctx, a, a)
			opts := Options{Threads: 3, ParallelThreshold: 1}

			x := mpoly.NewPoly(mctx)
			x.Set(a)
			require.NoError(t, Mul(context.Background(), x, x, b, mctx, opts))
			assert.True(t, mpoly.Equal(mctx, x, want), "dst aliases the first operand")

			y := mpoly.NewPoly(mctx)
			y.Set(b)
			require.NoError(t, Mul(context.Background(), y, a, y, mctx, opts))
			assert.True(t, mpoly.Equal(mctx, y, want), "dst aliases the second operand")

			z := mpoly.NewPoly(mctx)
			z.Set(a)
			require.NoError(t, Mul(context.Background(), z, z, z, mctx, opts))
			assert.True(t, mpoly.Equal(mctx, z, square), "squaring in place")
		})
	}
}

func TestMulZero(t *testing.T) {
	t.Parallel()
	mctx, a, _ := operands(t, 7, monomial.DegLex, 20)
	zero := mpoly.NewPoly(mctx)

	dst := mpoly.NewPoly(mctx)
	dst.Set(a)
	require.NoError(t, Mul(context.Background(), dst, a, zero, mctx, Options{}))
	assert.True(t, dst.IsZero())

	dst.Set(a)
	require.NoError(t, Mul(context.Background(), dst, zero, a, mctx, Options{}))
	assert.True(t, dst.IsZero())
}

func TestMulLargeThreadInvariance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large product in short mode")
	}
	t.Parallel()
	rng := rand.New(rand.NewPCG(500, 500))
	mctx, err := mpoly.NewContext(3, monomial.DegRevLex, false)
	require.NoError(t, err)
	a, err := mpoly.Random(rng, mctx, 500, 30, 64)
	require.NoError(t, err)
	b, err := mpoly.Random(rng, mctx, 500, 30, 64)
	require.NoError(t, err)

	one := mul(t, mctx, a, b, 1)
	four := mul(t, mctx, a, b, 4)
	require.Equal(t, one.Len, four.Len)
	assert.True(t, mpoly.Equal(mctx, one, four))
	assert.True(t, four.IsCanonical(mctx))
}

func TestMulBigCoefficients(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(11, 13))
	mctx, err := mpoly.NewContext(2, monomial.Lex, false)
	require.NoError(t, err)
	a, err := mpoly.Random(rng, mctx, 25, 10, 400)
	require.NoError(t, err)
	b, err := mpoly.Random(rng, mctx, 25, 10, 400)
	require.NoError(t, err)

	got := mpoly.NewPoly(mctx)
	opts := Options{Threads: 4, ParallelThreshold: 1, FFTThreshold: 100}
	require.NoError(t, Mul(context.Background(), got, a, b, mctx, opts))
	assert.True(t, mpoly.Equal(mctx, got, classical(t, mctx, a, b)))
}

func TestMulExponentOverflow(t *testing.T) {
	t.Parallel()
	mctx, err := mpoly.NewContext(2, monomial.Lex, false)
	require.NoError(t, err)
	a, err := mpoly.FromInts(mctx, []int64{1}, [][]uint64{{1 << 62, 0}})
	require.NoError(t, err)
	b, err := mpoly.FromInts(mctx, []int64{1, 1}, [][]uint64{{1 << 62, 0}, {0, 1}})
	require.NoError(t, err)

	dst := mpoly.NewPoly(mctx)
	err = Mul(context.Background(), dst, a, b, mctx, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, monomial.ErrExponentOverflow))
	var oe *apperrors.ExponentOverflowError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, 0, oe.Field)
	assert.Equal(t, uint64(1<<63), oe.Bound)

	// 2^63-2 still fits a full-word field
	c, err := mpoly.FromInts(mctx, []int64{1}, [][]uint64{{math.MaxInt64 >> 1, 0}})
	require.NoError(t, err)
	fb, err := ProductBits(mctx, c, c)
	require.NoError(t, err)
	assert.Equal(t, uint(64), fb)
}

func TestProductBits(t *testing.T) {
	t.Parallel()
	mctx, err := mpoly.NewContext(2, monomial.DegLex, false)
	require.NoError(t, err)
	a, err := mpoly.FromInts(mctx, []int64{1}, [][]uint64{{100, 0}})
	require.NoError(t, err)
	b, err := mpoly.FromInts(mctx, []int64{1}, [][]uint64{{20, 1}})
	require.NoError(t, err)

	// degree 121 still fits an 8-bit field
	fb, err := ProductBits(mctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, uint(8), fb)

	c, err := mpoly.FromInts(mctx, []int64{1}, [][]uint64{{100, 100}})
	require.NoError(t, err)
	fb, err = ProductBits(mctx, c, c)
	require.NoError(t, err)
	assert.Equal(t, uint(16), fb)
}

func TestPlannedDivisions(t *testing.T) {
	t.Parallel()
	mctx, a, b := operands(t, 6, monomial.Lex, 30)
	assert.Equal(t, 0, PlannedDivisions(a, b, Options{Threads: 1}))
	assert.Equal(t, 0, PlannedDivisions(a, b, Options{Threads: 4, ParallelThreshold: a.Len*b.Len + 1}))
	assert.Equal(t, 3*DivisionsPerThread, PlannedDivisions(a, b, Options{Threads: 3, ParallelThreshold: 1}))
	assert.Equal(t, 0, PlannedDivisions(mpoly.NewPoly(mctx), b, Options{Threads: 3, ParallelThreshold: 1}))
}

func TestMulCanceledContext(t *testing.T) {
	t.Parallel()
	mctx, a, b := operands(t, 5, monomial.Lex, 20)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dst := mpoly.NewPoly(mctx)
	dst.Set(a)
	err := Mul(ctx, dst, a, b, mctx, Options{Threads: 2, ParallelThreshold: 1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, mpoly.Equal(mctx, dst, a), "destination must be untouched")
}

func TestMulProgress(t *testing.T) {
	t.Parallel()
	mctx, a, b := operands(t, 21, monomial.DegLex, 40)
	var calls, last, total int
	opts := Options{
		Threads:           3,
		ParallelThreshold: 1,
		Progress: func(done, n int) {
			calls++
			last, total = done, n
		},
	}
	dst := mpoly.NewPoly(mctx)
	require.NoError(t, Mul(context.Background(), dst, a, b, mctx, opts))
	assert.Equal(t, 3*DivisionsPerThread, total)
	assert.Equal(t, total, calls)
	assert.Equal(t, total, last)
}

func TestMulReusesDestination(t *testing.T) {
	t.Parallel()
	mctx, a, b := operands(t, 8, monomial.DegRevLex, 60)
	want := classical(t, mctx, a, b)

	// a destination with spare coefficient objects is reused across calls
	dst := mpoly.NewPoly(mctx)
	for range 3 {
		require.NoError(t, Mul(context.Background(), dst, a, b, mctx, Options{Threads: 4, ParallelThreshold: 1}))
		require.True(t, mpoly.Equal(mctx, dst, want))
	}
	dst.Set(want)
	require.NoError(t, Mul(context.Background(), dst, b, a, mctx, Options{Threads: 2, ParallelThreshold: 1}))
	assert.True(t, mpoly.Equal(mctx, dst, want))
}

func TestPlanTiling(t *testing.T) {
	t.Parallel()
	for seed := uint64(1); seed <= 30; seed++ {
		for _, ord := range orderings {
			mctx, a, b := operands(t, seed, ord, 30)
			fb, err := ProductBits(mctx, a, b)
			require.NoError(t, err)
			ra, err := a.Repacked(mctx, fb)
			require.NoError(t, err)
			rb, err := b.Repacked(mctx, fb)
			require.NoError(t, err)
			lay := mctx.Layout(fb)

			ndivs := 1 + int(seed%9)
			wins := Plan(&ra.Terms, &rb.Terms, lay, ndivs)
			require.Len(t, wins, ndivs)

			seen := make(map[string]int)
			for i := 0; i < ra.Len; i++ {
				assert.Equal(t, rb.Len, wins[0].End[i])
				assert.Equal(t, 0, wins[ndivs-1].Start[i])
				for d := range wins {
					w := wins[d]
					require.LessOrEqual(t, w.Start[i], w.End[i], "seed %d division %d row %d", seed, d, i)
					if d > 0 {
						assert.Equal(t, wins[d-1].Start[i], w.End[i])
					}
					for j := w.Start[i]; j < w.End[i]; j++ {
						e := make([]uint64, lay.N)
						lay.Add(e, ra.Exp(i), rb.Exp(j))
						k := string(keyOf(e))
						if prev, ok := seen[k]; ok {
							require.Equal(t, prev, d, "monomial split across divisions (seed %d)", seed)
						}
						seen[k] = d
						assert.False(t, lay.Before(e, w.Exp), "product before the division boundary")
					}
				}
			}
		}
	}
}

func keyOf(e []uint64) []byte {
	buf := make([]byte, 0, 8*len(e))
	for _, w := range e {
		for s := 56; s >= 0; s -= 8 {
			buf = append(buf, byte(w>>s))
		}
	}
	return buf
}

func TestTarget(t *testing.T) {
	t.Parallel()
	tests := []struct {
		d, ndivs int
		lambda   uint64
		want     uint64
	}{
		{0, 4, 160, 10},
		{1, 4, 160, 40},
		{3, 4, 160, 160},
		{7, 8, math.MaxUint64, math.MaxUint64},
		{0, 2, math.MaxUint64, math.MaxUint64 / 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, target(tt.d, tt.ndivs, tt.lambda), "target(%d, %d, %d)", tt.d, tt.ndivs, tt.lambda)
	}
}

func TestGuardRecoversPanics(t *testing.T) {
	t.Parallel()
	err := guard(3, func() { panic("heap underflow") })
	var ie *apperrors.InvariantError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 3, ie.Division)
	assert.Contains(t, err.Error(), "heap underflow")

	cause := errors.New("bad window")
	err = guard(1, func() { panic(cause) })
	assert.ErrorIs(t, err, cause)

	assert.NoError(t, guard(0, func() {}))
}

func TestMulSingleThreadedPathMatches(t *testing.T) {
	t.Parallel()
	mctx, a, b := operands(t, 31, monomial.Lex, 40)
	small := mpoly.NewPoly(mctx)
	// threshold above the pair count keeps the work on the caller
	require.NoError(t, Mul(context.Background(), small, a, b, mctx, Options{Threads: 8, ParallelThreshold: math.MaxInt}))
	assert.True(t, mpoly.Equal(mctx, small, classical(t, mctx, a, b)))
}
