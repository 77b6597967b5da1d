package cli

import (
	"fmt"
	"io"
	"strings"
)

// completionFlag describes one flag offered by the completion scripts.
type completionFlag struct {
	Long  string // without "--"
	Short string // without "-"
	Help  string
	// Example is appended to the zsh description, which has room for it.
	Example string
	// Arg names the flag value; empty for boolean flags.
	Arg    string
	Values []string
	IsFile bool
	IsAlgo bool
}

var flagRegistry = []completionFlag{
	{Long: "help", Short: "h", Help: "Show help message"},
	{Long: "version", Short: "V", Help: "Show version information"},
	{Short: "a", Help: "First operand", Example: "3*x^2+2*x*y", Arg: "polynomial"},
	{Short: "b", Help: "Second operand", Example: "x-y", Arg: "polynomial"},
	{Long: "vars", Help: "Comma-separated variable names", Arg: "names"},
	{Long: "nvars", Help: "Number of variables", Arg: "count", Values: []string{"1", "2", "3", "4", "6", "8"}},
	{Long: "ord", Help: "Monomial ordering", Arg: "ordering", Values: []string{"lex", "deglex", "degrevlex"}},
	{Long: "ascending", Help: "Store terms in ascending order"},
	{Long: "len-a", Help: "Terms of the random first operand", Arg: "terms", Values: []string{"100", "1000", "10000"}},
	{Long: "len-b", Help: "Terms of the random second operand", Arg: "terms", Values: []string{"100", "1000", "10000"}},
	{Long: "exp-bound", Help: "Bound on random exponents", Arg: "bound"},
	{Long: "coeff-bits", Help: "Bit size of random coefficients", Arg: "bits", Values: []string{"32", "64", "256", "1024"}},
	{Long: "seed", Help: "Seed of the random operands", Arg: "seed"},
	{Long: "threads", Help: "Worker goroutines", Arg: "count", Values: []string{"1", "2", "4", "8", "16"}},
	{Long: "threshold", Help: "Term pairs below which a product stays single-threaded", Arg: "pairs", Values: []string{"1024", "4096", "16384"}},
	{Long: "fft-threshold", Help: "Coefficient bits above which products use FFT", Arg: "bits", Values: []string{"-1", "65536", "262144"}},
	{Long: "algo", Help: "Algorithm to use", Arg: "algorithm", IsAlgo: true},
	{Long: "timeout", Help: "Maximum execution time", Arg: "duration", Values: []string{"1m", "5m", "10m", "30m", "1h"}},
	{Long: "gc", Help: "GC control during large products", Arg: "mode", Values: []string{"auto", "aggressive", "disabled"}},
	{Short: "v", Help: "Print the whole product"},
	{Long: "details", Short: "d", Help: "Show statistics and system details"},
	{Long: "calculate", Short: "c", Help: "Print the product"},
	{Long: "quiet", Short: "q", Help: "Quiet mode for scripts"},
	{Long: "no-color", Help: "Disable colors"},
	{Long: "tui", Help: "Interactive dashboard"},
	{Long: "output", Short: "o", Help: "Output file path", Arg: "file", IsFile: true},
	{Long: "metrics-file", Help: "Prometheus textfile output", Arg: "file", IsFile: true},
	{Long: "calibrate", Help: "Run calibration mode"},
	{Long: "auto-calibrate", Help: "Enable auto-calibration"},
	{Long: "calibration-profile", Help: "Calibration profile file", Arg: "file", IsFile: true},
	{Long: "chart", Help: "Calibration chart HTML file", Arg: "file", IsFile: true},
	{Long: "completion", Help: "Generate completion script", Arg: "shell", Values: []string{"bash", "zsh", "fish"}},
}

// GenerateCompletion generates a shell completion script for the specified shell.
//
// Parameters:
//   - out: The writer to output the completion script.
//   - shell: The shell type ("bash", "zsh", "fish").
//   - algorithms: List of available algorithm names.
//
// Returns:
//   - error: An error if the shell is not supported or the write fails.
func GenerateCompletion(out io.Writer, shell string, algorithms []string) error {
	var script string
	switch shell {
	case "bash":
		script = bashCompletion(algorithms)
	case "zsh":
		script = zshCompletion(algorithms)
	case "fish":
		script = fishCompletion(algorithms)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish)", shell)
	}
	if _, err := io.WriteString(out, script); err != nil {
		return fmt.Errorf("completion %s generation failed: %w", shell, err)
	}
	return nil
}

// flagKey returns the Long name of f, or its Short name when it has none.
func flagKey(f completionFlag) string {
	if f.Long != "" {
		return f.Long
	}
	return f.Short
}

// spellings returns the command-line forms of f, long form first.
func spellings(f completionFlag) []string {
	var s []string
	if f.Long != "" {
		s = append(s, "--"+f.Long)
	}
	if f.Short != "" {
		s = append(s, "-"+f.Short)
	}
	return s
}

// bashCompletion builds one case arm per distinct completion; flags that
// complete the same way share an arm.
func bashCompletion(algorithms []string) string {
	var (
		opts   []string
		bodies []string
		arms   = map[string][]string{}
	)
	for _, f := range flagRegistry {
		opts = append(opts, spellings(f)...)
		var body string
		switch {
		case f.IsAlgo:
			body = `COMPREPLY=( $(compgen -W "${algorithms}" -- "${cur}") )`
		case f.IsFile:
			body = `COMPREPLY=( $(compgen -f -- "${cur}") )`
		case len(f.Values) > 0:
			body = fmt.Sprintf(`COMPREPLY=( $(compgen -W "%s" -- "${cur}") )`, strings.Join(f.Values, " "))
		default:
			continue
		}
		if _, ok := arms[body]; !ok {
			bodies = append(bodies, body)
		}
		arms[body] = append(arms[body], spellings(f)...)
	}

	var cases strings.Builder
	for _, body := range bodies {
		fmt.Fprintf(&cases, "        %s)\n            %s\n            return 0\n            ;;\n",
			strings.Join(arms[body], "|"), body)
	}

	return fmt.Sprintf(`# Bash completion script for mpolymul
# Add this to your ~/.bashrc or ~/.bash_completion

_mpolymul_completions() {
    local cur prev opts algorithms
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"
    opts="%s"
    algorithms="%s all"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
    fi
}

complete -F _mpolymul_completions mpolymul
`, strings.Join(opts, " "), strings.Join(algorithms, " "), cases.String())
}

func zshCompletion(algorithms []string) string {
	args := make([]string, len(flagRegistry))
	for i, f := range flagRegistry {
		args[i] = "        " + zshArgEntry(f)
	}
	return fmt.Sprintf(`#compdef mpolymul

# Zsh completion script for mpolymul
# Add this to your ~/.zshrc or place in $fpath

_mpolymul() {
    local -a algorithms
    algorithms=(%s all)

    _arguments -s \
%s
}

_mpolymul "$@"
`, strings.Join(algorithms, " "), strings.Join(args, " \\\n"))
}

// zshArgEntry formats f as an _arguments spec.
func zshArgEntry(f completionFlag) string {
	help := f.Help
	if f.Example != "" {
		help += " (e.g. " + f.Example + ")"
	}
	var value string
	switch {
	case f.IsFile:
		value = ":" + f.Arg + ":_files"
	case f.IsAlgo:
		value = ":" + f.Arg + ":($algorithms)"
	case len(f.Values) > 0:
		value = ":" + f.Arg + ":(" + strings.Join(f.Values, " ") + ")"
	case f.Arg != "":
		value = ":" + f.Arg + ":"
	}

	forms := spellings(f)
	if len(forms) == 2 {
		return fmt.Sprintf("'(%s %s)'{%s,%s}'[%s]%s'", forms[1], forms[0], forms[1], forms[0], help, value)
	}
	return fmt.Sprintf("'%s[%s]%s'", forms[0], help, value)
}

func fishCompletion(algorithms []string) string {
	lines := []string{
		"# Fish completion script for mpolymul",
		"# Add this to ~/.config/fish/completions/mpolymul.fish",
		"",
		"complete -c mpolymul -f",
	}
	algoValues := strings.Join(append(append([]string(nil), algorithms...), "all"), " ")
	for _, f := range flagRegistry {
		line := "complete -c mpolymul"
		if f.Short != "" {
			line += " -s " + f.Short
		}
		if f.Long != "" {
			line += " -l " + f.Long
		}
		line += fmt.Sprintf(" -d '%s'", f.Help)
		switch {
		case f.IsFile:
			line += " -rF"
		case f.IsAlgo:
			line += fmt.Sprintf(" -xa '%s'", algoValues)
		case len(f.Values) > 0:
			line += fmt.Sprintf(" -xa '%s'", strings.Join(f.Values, " "))
		case f.Arg != "":
			line += " -x"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n") + "\n"
}
