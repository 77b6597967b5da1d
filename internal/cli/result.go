package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/agbru/mpolymul/internal/format"
	"github.com/agbru/mpolymul/internal/mpoly"
	"github.com/agbru/mpolymul/internal/multiplier"
	"github.com/agbru/mpolymul/internal/orchestration"
	"github.com/agbru/mpolymul/internal/sysmon"
	"github.com/agbru/mpolymul/internal/ui"
)

// sampleHost is replaced in tests.
var sampleHost = sysmon.Sample

// DisplayResult prints the product summary. With opts.Details it adds a
// panel of operand and product statistics and a host snapshot; with
// opts.ShowValue it prints the product, truncated unless opts.Verbose.
func DisplayResult(result orchestration.CalculationResult, job multiplier.Job, opts orchestration.PresentationOptions, out io.Writer) {
	product := result.Product
	fmt.Fprintf(out, "\n--- Result ---\n")
	fmt.Fprintf(out, "Product of %s%s%s × %s%s%s terms: %s%s%s terms in %s%s%s (%s).\n",
		ui.ColorCyan(), format.FormatCount(uint64(job.A.Len)), ui.ColorReset(),
		ui.ColorCyan(), format.FormatCount(uint64(job.B.Len)), ui.ColorReset(),
		ui.ColorGreen(), format.FormatCount(uint64(product.Len)), ui.ColorReset(),
		ui.ColorYellow(), displayDuration(result.Duration), ui.ColorReset(),
		result.Name)

	if opts.Details {
		displayDetails(product, job, out)
	}
	if opts.ShowValue {
		text := product.Format(job.Ctx, opts.Vars)
		fmt.Fprintf(out, "\nProduct:\n")
		if !opts.Verbose && len(text) > TruncationLimit {
			fmt.Fprintf(out, "%s ... %s\n", text[:DisplayEdges], text[len(text)-DisplayEdges:])
			fmt.Fprintf(out, "%s(truncated, %s characters) Tip: use -v to print the whole product.%s\n",
				ui.ColorGrey(), format.FormatCount(uint64(len(text))), ui.ColorReset())
		} else {
			fmt.Fprintln(out, text)
		}
	}
}

func displayDetails(product *mpoly.Poly, job multiplier.Job, out io.Writer) {
	sa, sb, sp := job.A.Stats(job.Ctx), job.B.Stats(job.Ctx), product.Stats(job.Ctx)
	stat := func(s mpoly.Stats) string {
		return fmt.Sprintf("%s terms, degree %d, %d-bit coefficients", format.FormatCount(uint64(s.Terms)), s.TotalDegree, s.MaxCoeffBits)
	}
	order := job.Ctx.Ordering().String()
	if job.Ctx.Ascending() {
		order += " (ascending)"
	}
	density := 0.0
	if pairs := job.Pairs(); pairs > 0 {
		density = float64(sp.Terms) / float64(pairs)
	}
	host := sampleHost(context.Background())

	fmt.Fprintln(out)
	fmt.Fprintln(out, ui.Panel("Details", []ui.Row{
		{Label: "Variables", Value: fmt.Sprintf("%d, %s", job.Ctx.NVars(), order)},
		{Label: "A", Value: stat(sa)},
		{Label: "B", Value: stat(sb)},
		{Label: "Product", Value: stat(sp)},
		{Label: "Packing", Value: fmt.Sprintf("%d-bit fields, %d word(s) per monomial", sp.FieldBits, sp.Words)},
		{Label: "Terms / pairs", Value: fmt.Sprintf("%.4f", density)},
		{Label: "Host", Value: fmt.Sprintf("%d logical CPUs, %s memory available, %.0f%% used", host.LogicalCPUs, format.FormatBytes(host.FreeMemory), host.MemPercent)},
	}))
}
