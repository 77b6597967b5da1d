// # Naming Conventions
//
// Functions in this package follow consistent naming patterns:
//
//   - Display* functions write formatted output to an [io.Writer].
//     Examples: [DisplayResult], [DisplayQuietResult], [DisplayProgress].
//
//   - Format* functions return a string without performing I/O.
//     Examples: [FormatQuietResult].
//
//   - Write* functions write files.
//     Examples: [WriteResultToFile].

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/agbru/mpolymul/internal/mpoly"
	"github.com/agbru/mpolymul/internal/multiplier"
	"github.com/agbru/mpolymul/internal/ui"
)

// OutputConfig controls how the final product is emitted.
type OutputConfig struct {
	// OutputFile is the path to save the product to, empty for none.
	OutputFile string
	Quiet      bool
	Verbose    bool
	ShowValue  bool
	Details    bool
	// Vars names the variables, nil for x1..xn.
	Vars []string
}

// WriteResultToFile writes a header and the product to config.OutputFile,
// creating missing directories. It does nothing when no file is configured.
func WriteResultToFile(product *mpoly.Poly, job multiplier.Job, duration time.Duration, algo string, config OutputConfig) error {
	if config.OutputFile == "" {
		return nil
	}

	if dir := filepath.Dir(config.OutputFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(config.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	stats := product.Stats(job.Ctx)
	fmt.Fprintf(file, "# Polynomial Product\n")
	fmt.Fprintf(file, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Algorithm: %s\n", algo)
	fmt.Fprintf(file, "# Duration: %s\n", duration)
	fmt.Fprintf(file, "# Variables: %d (%s)\n", job.Ctx.NVars(), job.Ctx.Ordering())
	fmt.Fprintf(file, "# Terms: %d x %d -> %d\n", job.A.Len, job.B.Len, stats.Terms)
	fmt.Fprintf(file, "# Degree: %d\n", stats.TotalDegree)
	fmt.Fprintf(file, "\n")
	if _, err := fmt.Fprintln(file, product.Format(job.Ctx, config.Vars)); err != nil {
		return fmt.Errorf("failed to write product: %w", err)
	}
	return file.Close()
}

// FormatQuietResult returns the product on one line for scripts.
func FormatQuietResult(product *mpoly.Poly, job multiplier.Job, vars []string) string {
	return product.Format(job.Ctx, vars)
}

// DisplayQuietResult prints FormatQuietResult.
func DisplayQuietResult(out io.Writer, product *mpoly.Poly, job multiplier.Job, vars []string) {
	fmt.Fprintln(out, FormatQuietResult(product, job, vars))
}

// DisplayResultWithConfig prints a single result in the configured mode and
// saves it when an output file is set.
func DisplayResultWithConfig(out io.Writer, product *mpoly.Poly, job multiplier.Job, duration time.Duration, algo string, config OutputConfig) error {
	if config.Quiet {
		DisplayQuietResult(out, product, job, config.Vars)
	}
	if config.OutputFile == "" {
		return nil
	}
	if err := WriteResultToFile(product, job, duration, algo, config); err != nil {
		return err
	}
	if !config.Quiet {
		fmt.Fprintf(out, "\n%s✓ Product saved to: %s%s%s\n",
			ui.ColorGreen(), ui.ColorCyan(), config.OutputFile, ui.ColorReset())
	}
	return nil
}
