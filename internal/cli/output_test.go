package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteResultToFile(t *testing.T) {
	t.Parallel()
	job, product := scenario(t)
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
	}{
		{"flat", filepath.Join(dir, "product.txt")},
		{"nested directory", filepath.Join(dir, "nested", "dir", "product.txt")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := OutputConfig{OutputFile: tt.path, Vars: xy}
			require.NoError(t, WriteResultToFile(product, job, 5*time.Millisecond, "Threaded heap", cfg))
			data, err := os.ReadFile(tt.path)
			require.NoError(t, err)
			text := string(data)
			assert.Contains(t, text, "# Algorithm: Threaded heap")
			assert.Contains(t, text, "# Terms: 2 x 2 -> 3")
			assert.Contains(t, text, "# Degree: 3")
			assert.True(t, strings.HasSuffix(text, "3*x^3-x^2*y-2*x*y^2\n"))
		})
	}

	assert.NoError(t, WriteResultToFile(product, job, 0, "x", OutputConfig{}))
}

func TestWriteResultToFileFailure(t *testing.T) {
	t.Parallel()
	job, product := scenario(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	err := WriteResultToFile(product, job, 0, "x", OutputConfig{OutputFile: filepath.Join(blocker, "sub", "out.txt")})
	assert.Error(t, err)
}

func TestQuietResult(t *testing.T) {
	t.Parallel()
	job, product := scenario(t)
	assert.Equal(t, "3*x^3-x^2*y-2*x*y^2", FormatQuietResult(product, job, xy))

	var buf bytes.Buffer
	DisplayQuietResult(&buf, product, job, xy)
	assert.Equal(t, "3*x^3-x^2*y-2*x*y^2\n", buf.String())
}

func TestDisplayResultWithConfig(t *testing.T) {
	t.Parallel()
	job, product := scenario(t)
	path := filepath.Join(t.TempDir(), "p.txt")

	var quiet bytes.Buffer
	require.NoError(t, DisplayResultWithConfig(&quiet, product, job, time.Millisecond, "heap", OutputConfig{Quiet: true, OutputFile: path, Vars: xy}))
	assert.Equal(t, "3*x^3-x^2*y-2*x*y^2\n", quiet.String())
	assert.FileExists(t, path)

	var loud bytes.Buffer
	require.NoError(t, DisplayResultWithConfig(&loud, product, job, time.Millisecond, "heap", OutputConfig{OutputFile: path}))
	assert.Contains(t, loud.String(), "Product saved to: "+path)
}
