// Package polymul multiplies sparse multivariate polynomials on several
// goroutines.
//
// The output is cut into divisions along product monomials located by
// search.Monomials. Each division is a set of column windows, one per row of
// the smaller operand, and its terms form a contiguous run of the product in
// storage order. Workers claim divisions from a shared counter and run the
// heap kernel on them independently; the runs are then concatenated without
// any merge.
package polymul

import (
	"context"
	"fmt"
	"math"
	"math/bits"
	"runtime"
	"sync"
	"sync/atomic"

	apperrors "github.com/agbru/mpolymul/internal/errors"
	"github.com/agbru/mpolymul/internal/heapmul"
	"github.com/agbru/mpolymul/internal/logging"
	"github.com/agbru/mpolymul/internal/monomial"
	"github.com/agbru/mpolymul/internal/mpoly"
	"github.com/agbru/mpolymul/internal/parallel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DivisionsPerThread is the number of divisions planned per worker.
	DivisionsPerThread = 4
	// DefaultParallelThreshold is the number of term pairs below which the
	// product is computed on the calling goroutine.
	DefaultParallelThreshold = 4096
)

var tracer = otel.Tracer("github.com/agbru/mpolymul/internal/polymul")

// Options configures a multiplication. The zero value selects defaults.
type Options struct {
	// Threads is the number of workers. Zero or less uses GOMAXPROCS.
	Threads int
	// ParallelThreshold is the pair count below which no worker is started.
	// Zero or less uses DefaultParallelThreshold.
	ParallelThreshold int
	// FFTThreshold is forwarded to the kernel. Zero uses
	// heapmul.DefaultFFTThreshold, a negative value disables FFT products.
	FFTThreshold int
	// Logger receives debug events. Nil discards them.
	Logger logging.Logger
	// Progress, when set, is called after each division completes with the
	// number of finished divisions and the total. Calls are serialized.
	Progress func(done, total int)
}

func (o Options) threads() int {
	if o.Threads <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return o.Threads
}

func (o Options) parallelThreshold() uint64 {
	if o.ParallelThreshold <= 0 {
		return DefaultParallelThreshold
	}
	return uint64(o.ParallelThreshold)
}

func (o Options) fftThreshold() int {
	switch {
	case o.FFTThreshold == 0:
		return heapmul.DefaultFFTThreshold
	case o.FFTThreshold < 0:
		return 0
	}
	return o.FFTThreshold
}

func (o Options) logger() logging.Logger {
	if o.Logger == nil {
		return logging.Nop()
	}
	return o.Logger
}

// Mul sets dst = a*b.
//
// dst may alias a or b. Exponent overflow is reported as an
// *apperrors.ExponentOverflowError before any work starts, and ctx is only
// consulted before the workers are dispatched. If a worker fails, dst is left
// as the zero polynomial.
func Mul(ctx context.Context, dst, a, b *mpoly.Poly, mctx *mpoly.Context, opts Options) (err error) {
	ctx, span := tracer.Start(ctx, "polymul.Mul", trace.WithAttributes(
		attribute.Int("len_a", a.Len),
		attribute.Int("len_b", b.Len),
		attribute.Int("nvars", mctx.NVars()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if a.IsZero() || b.IsZero() {
		dst.Zero()
		return nil
	}
	fieldBits, err := ProductBits(mctx, a, b)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ra, err := a.Repacked(mctx, fieldBits)
	if err != nil {
		return err
	}
	rb, err := b.Repacked(mctx, fieldBits)
	if err != nil {
		return err
	}
	if ra.Len > rb.Len {
		ra, rb = rb, ra
	}
	lay := mctx.Layout(fieldBits)

	out := dst
	if dst == a || dst == b {
		out = &mpoly.Poly{}
	}
	out.Reset(lay.N)
	out.Bits = fieldBits

	kopts := heapmul.Options{
		Small:        heapmul.FitsSmall(&ra.Terms) && heapmul.FitsSmall(&rb.Terms),
		FFTThreshold: opts.fftThreshold(),
	}
	threads := opts.threads()
	pairs := uint64(ra.Len) * uint64(rb.Len)
	span.SetAttributes(
		attribute.Int("field_bits", int(fieldBits)),
		attribute.Int("threads", threads),
		attribute.Bool("small", kopts.Small),
	)

	if threads == 1 || pairs < opts.parallelThreshold() {
		err = guard(-1, func() {
			heapmul.Mul(&out.Terms, &ra.Terms, &rb.Terms, lay, kopts)
		})
	} else {
		bs := newBase(&ra.Terms, &rb.Terms, lay, kopts, threads, opts)
		bs.plan(ctx)
		bs.prepare(&out.Terms)
		if err = bs.run(); err == nil {
			bs.assemble(ctx, &out.Terms)
		}
	}
	if err != nil {
		out.Zero()
		dst.Zero()
		return err
	}
	if out != dst {
		dst.Swap(out)
	}
	span.SetAttributes(attribute.Int("len_product", dst.Len))
	return nil
}

// ProductBits returns the field width the product of a and b is packed
// with: wide enough for every summed field and never narrower than either
// operand.
func ProductBits(mctx *mpoly.Context, a, b *mpoly.Poly) (uint, error) {
	ma, mb := a.MaxFields(mctx), b.MaxFields(mctx)
	var bound uint64
	field := 0
	for f := range ma {
		s, carry := bits.Add64(ma[f], mb[f], 0)
		if carry != 0 || s > math.MaxInt64 {
			return 0, &apperrors.ExponentOverflowError{Field: f, Bound: s, Cause: monomial.ErrExponentOverflow}
		}
		if s > bound {
			bound, field = s, f
		}
	}
	fieldBits, err := monomial.BitsFor(bound)
	if err != nil {
		return 0, &apperrors.ExponentOverflowError{Field: field, Bound: bound, Cause: err}
	}
	return max(fieldBits, a.Bits, b.Bits), nil
}

// PlannedDivisions returns the number of divisions Mul cuts the product of a
// and b into, or 0 when it runs on the calling goroutine.
func PlannedDivisions(a, b *mpoly.Poly, opts Options) int {
	threads := opts.threads()
	pairs := uint64(a.Len) * uint64(b.Len)
	if pairs == 0 || threads == 1 || pairs < opts.parallelThreshold() {
		return 0
	}
	return DivisionsPerThread * threads
}

// guard runs fn and turns a panic into an InvariantError for division d.
func guard(d int, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%v", r)
			}
			err = &apperrors.InvariantError{Division: d, Cause: cause}
		}
	}()
	fn()
	return nil
}

// division is one contiguous run of the product.
type division struct {
	Window
	terms *mpoly.Terms
}

// base is the state shared by the workers of one multiplication. Everything
// but claim and the progress counter is read-only once run starts.
type base struct {
	a, b    *mpoly.Terms
	lay     *monomial.Layout
	kopts   heapmul.Options
	threads int
	log     logging.Logger
	divs    []division

	claim    atomic.Int64
	mu       sync.Mutex
	done     int
	progress func(done, total int)
}

func newBase(a, b *mpoly.Terms, lay *monomial.Layout, kopts heapmul.Options, threads int, opts Options) *base {
	return &base{
		a:        a,
		b:        b,
		lay:      lay,
		kopts:    kopts,
		threads:  threads,
		log:      opts.logger(),
		progress: opts.Progress,
	}
}

func (bs *base) plan(ctx context.Context) {
	_, span := tracer.Start(ctx, "polymul.plan")
	defer span.End()

	wins := Plan(bs.a, bs.b, bs.lay, DivisionsPerThread*bs.threads)
	bs.divs = make([]division, len(wins))
	for d, w := range wins {
		bs.divs[d].Window = w
	}
	span.SetAttributes(attribute.Int("divisions", len(wins)))
	bs.log.Debug("plan computed",
		logging.Int("divisions", len(wins)),
		logging.Int("threads", bs.threads),
		logging.Uint64("pairs", uint64(bs.a.Len)*uint64(bs.b.Len)),
	)
}

// prepare hands dst's storage to the highest division and seeds the others
// with fresh buffers, moving spare coefficient objects out of dst so that
// they are reused rather than reallocated.
func (bs *base) prepare(dst *mpoly.Terms) {
	ndivs := len(bs.divs)
	alloc := uint64(dst.Alloc())
	sq := uint64(ndivs) * uint64(ndivs)
	share := func(d int) int {
		return int((sq - uint64(d)*uint64(d)) * alloc / sq)
	}

	top := ndivs - 1
	bs.divs[top].terms = dst
	next := share(top)
	for d := top - 1; d >= 0; d-- {
		t := mpoly.NewTerms(dst.N, bs.a.Len+bs.b.Len/ndivs)
		limit := share(d)
		for k := 0; k < t.Alloc() && next < limit; next++ {
			if c := dst.Coeffs[next]; c != nil {
				t.Coeffs[k] = c
				dst.Coeffs[next] = nil
				k++
			}
		}
		next = limit
		bs.divs[d].terms = t
	}
}

// run starts the workers and waits for every division.
func (bs *base) run() error {
	var (
		wg   sync.WaitGroup
		errs parallel.ErrorCollector
	)
	bs.claim.Store(int64(len(bs.divs)))
	for w := 0; w < bs.threads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				d := int(bs.claim.Add(-1))
				if d < 0 {
					return
				}
				errs.SetError(bs.work(d))
			}
		}()
	}
	wg.Wait()
	return errs.Err()
}

func (bs *base) work(d int) error {
	div := &bs.divs[d]
	var n int
	err := guard(d, func() {
		n = heapmul.MulPart(div.terms, bs.a, bs.b, div.Start, div.End, bs.lay, bs.kopts)
	})
	if err != nil {
		return err
	}
	bs.log.Debug("division finished", logging.Int("division", d), logging.Int("terms", n))
	bs.report()
	return nil
}

func (bs *base) report() {
	if bs.progress == nil {
		return
	}
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.done++
	bs.progress(bs.done, len(bs.divs))
}

// assemble appends the lower divisions to dst, which already holds the
// highest one. Coefficients are moved by pointer swap.
func (bs *base) assemble(ctx context.Context, dst *mpoly.Terms) {
	_, span := tracer.Start(ctx, "polymul.assemble")
	defer span.End()

	total := dst.Len
	for d := len(bs.divs) - 2; d >= 0; d-- {
		total += bs.divs[d].terms.Len
	}
	dst.Fit(total)
	for d := len(bs.divs) - 2; d >= 0; d-- {
		t := bs.divs[d].terms
		k := dst.Len
		for s := 0; s < t.Len; s++ {
			dst.Coeffs[k+s], t.Coeffs[s] = t.Coeffs[s], dst.Coeffs[k+s]
		}
		copy(dst.Exps[k*dst.N:], t.Exps[:t.Len*t.N])
		dst.Len += t.Len
	}
	span.SetAttributes(attribute.Int("terms", dst.Len))
	bs.log.Debug("product assembled", logging.Int("terms", dst.Len))
}
