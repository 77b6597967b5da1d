package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCompletion(t *testing.T) {
	t.Parallel()
	algos := []string{"classical", "heap", "threaded"}
	tests := []struct {
		shell string
		want  []string
	}{
		{"bash", []string{"complete -F _mpolymul_completions mpolymul", "--threads", "-a", `algorithms="classical heap threaded all"`, "--len-a|--len-b)", "lex deglex degrevlex", "--output|-o|--metrics-file|--calibration-profile|--chart)"}},
		{"zsh", []string{"#compdef mpolymul", "'--ord[Monomial ordering]:ordering:(lex deglex degrevlex)'", "'-a[First operand (e.g. 3*x^2+2*x*y)]:polynomial:'", ":file:_files"}},
		{"fish", []string{"complete -c mpolymul -f", "complete -c mpolymul -s a -d 'First operand' -x", "-l algo -d 'Algorithm to use' -xa 'classical heap threaded all'", "-l chart -d 'Calibration chart HTML file' -rF"}},
	}
	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			require.NoError(t, GenerateCompletion(&buf, tt.shell, algos))
			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
		})
	}

	err := GenerateCompletion(&bytes.Buffer{}, "powershell", algos)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "bash, zsh, fish"))
}

func TestEveryRegisteredFlagIsCompletedByFish(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, GenerateCompletion(&buf, "fish", nil))
	for _, f := range flagRegistry {
		key := "-l " + f.Long
		if f.Long == "" {
			key = "-s " + f.Short
		}
		assert.Contains(t, buf.String(), key, flagKey(f))
	}
}
