package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/agbru/mpolymul/internal/config"
	"github.com/agbru/mpolymul/internal/multiplier"
	"github.com/agbru/mpolymul/internal/orchestration"
)

func TestPrintExecutionConfig(t *testing.T) {
	t.Parallel()
	job, _ := scenario(t)

	var parsed bytes.Buffer
	PrintExecutionConfig(config.AppConfig{A: "x", B: "y", Timeout: time.Minute, Threads: 4, Threshold: 4096}, job, &parsed)
	assert.Contains(t, parsed.String(), "Multiplying 2 × 2 terms in 2 variables (lex, parsed operands)")
	assert.Contains(t, parsed.String(), "Threads=4")
	assert.Contains(t, parsed.String(), "Parallelism=4,096 pairs")
	assert.Contains(t, parsed.String(), "FFT=default")

	var random bytes.Buffer
	PrintExecutionConfig(config.AppConfig{Seed: 7, ExpBound: 20, CoeffBits: 64, Timeout: time.Minute, FFTThreshold: -1}, job, &random)
	assert.Contains(t, random.String(), "random (seed 7")
	assert.Contains(t, random.String(), "FFT=off")
}

func TestPrintExecutionMode(t *testing.T) {
	t.Parallel()
	factory := multiplier.NewDefaultFactory()

	var single bytes.Buffer
	PrintExecutionMode([]multiplier.Multiplier{factory.MustGet("heap")}, &single)
	assert.Contains(t, single.String(), "Single multiplication with the Heap (single thread) algorithm")

	var all bytes.Buffer
	PrintExecutionMode(orchestration.GetMultipliersToRun("all", factory), &all)
	assert.Contains(t, all.String(), "Parallel comparison")
}
