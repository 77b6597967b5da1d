package multiplier

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/agbru/mpolymul/internal/monomial"
	"github.com/agbru/mpolymul/internal/mpoly"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJob(t *testing.T) Job {
	t.Helper()
	rng := rand.New(rand.NewPCG(3, 4))
	mctx, err := mpoly.NewContext(3, monomial.DegRevLex, false)
	require.NoError(t, err)
	a, err := mpoly.Random(rng, mctx, 80, 8, 90)
	require.NoError(t, err)
	b, err := mpoly.Random(rng, mctx, 60, 8, 90)
	require.NoError(t, err)
	return Job{Ctx: mctx, A: a, B: b}
}

func TestFactory(t *testing.T) {
	t.Parallel()
	f := NewDefaultFactory()
	names := f.List()
	assert.Subset(t, names, []string{"classical", "heap", "threaded"})
	assert.IsNonDecreasing(t, names)

	m, err := f.Get("threaded")
	require.NoError(t, err)
	assert.Equal(t, "Threaded heap", m.Name())

	_, err = f.Get("karatsuba")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "classical")

	assert.Panics(t, func() { f.MustGet("nope") })
	assert.Error(t, f.Register("heap", func() Multiplier { return Heap{} }))
	assert.Error(t, f.Register("", func() Multiplier { return Heap{} }))
	require.NoError(t, f.Register("alias", func() Multiplier { return Heap{} }))
	assert.Contains(t, f.List(), "alias")
	assert.NotContains(t, GlobalFactory().List(), "alias")
}

func TestMultipliersAgree(t *testing.T) {
	t.Parallel()
	job := testJob(t)
	want := mpoly.NewPoly(job.Ctx)
	require.NoError(t, mpoly.MulClassical(job.Ctx, want, job.A, job.B))

	f := NewDefaultFactory()
	for _, name := range f.List() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ch := make(chan ProgressUpdate, 256)
			got, err := f.MustGet(name).Multiply(context.Background(), ch, 2, job, Options{Threads: 3, ParallelThreshold: 1})
			require.NoError(t, err)
			assert.True(t, mpoly.Equal(job.Ctx, got, want))

			close(ch)
			var last ProgressUpdate
			for u := range ch {
				assert.Equal(t, 2, u.CalculatorIndex)
				assert.GreaterOrEqual(t, u.Value, last.Value)
				last = u
			}
			assert.Equal(t, 1.0, last.Value)
		})
	}
}

func TestMultipliersCanceled(t *testing.T) {
	t.Parallel()
	job := testJob(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, name := range NewDefaultFactory().List() {
		_, err := NewDefaultFactory().MustGet(name).Multiply(ctx, nil, 0, job, Options{Threads: 2, ParallelThreshold: 1})
		assert.ErrorIs(t, err, context.Canceled, name)
	}
}

func TestReporterDropsWhenFull(t *testing.T) {
	t.Parallel()
	ch := make(chan ProgressUpdate, 1)
	report := reporter(ch, 0)
	report(0.1)
	report(0.5) // dropped, the buffer is full
	assert.Equal(t, 0.1, (<-ch).Value)
	report(1)
	assert.Equal(t, 1.0, (<-ch).Value)

	reporter(nil, 0)(1)
}

func TestJobPairs(t *testing.T) {
	t.Parallel()
	job := testJob(t)
	assert.Equal(t, uint64(job.A.Len)*uint64(job.B.Len), job.Pairs())
}
