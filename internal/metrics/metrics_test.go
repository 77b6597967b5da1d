package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderWriteTextfile(t *testing.T) {
	t.Parallel()
	r := NewRecorder()
	r.SetJob(100, 80, 4, 16)
	r.ObserveMultiplication("Threaded heap", 5000, 20*time.Millisecond, nil)
	r.ObserveMultiplication("Classical expansion", 0, time.Second, errors.New("boom"))
	r.ObserveMemory(NewMemoryCollector().Snapshot())

	path := filepath.Join(t.TempDir(), "mpolymul.prom")
	require.NoError(t, r.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	for _, want := range []string{
		`mpolymul_multiplications_total{algorithm="Threaded heap",status="success"} 1`,
		`mpolymul_multiplications_total{algorithm="Classical expansion",status="failure"} 1`,
		`mpolymul_product_terms_total{algorithm="Threaded heap"} 5000`,
		`mpolymul_multiplication_duration_seconds_count{algorithm="Threaded heap"} 1`,
		`mpolymul_divisions 16`,
		`mpolymul_threads 4`,
		`mpolymul_operand_terms{operand="a"} 100`,
		`mpolymul_heap_alloc_bytes`,
		`go_goroutines`,
	} {
		assert.Contains(t, text, want)
	}
	assert.NotContains(t, text, `product_terms_total{algorithm="Classical expansion"}`)
}

func TestRecordersAreIndependent(t *testing.T) {
	t.Parallel()
	a, b := NewRecorder(), NewRecorder()
	a.ObserveMultiplication("heap", 1, time.Millisecond, nil)
	families, err := b.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		assert.NotEqual(t, "mpolymul_multiplications_total", f.GetName())
	}
}
