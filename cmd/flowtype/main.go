// Command flowtype is the external driver for the inference core: it
// reads source files, parses them with internal/parser, runs
// internal/solver.Infer, and renders the result with one of
// internal/format's four formatters. A thin main.go delegates to the
// subcommand dispatch so it stays testable; the surface is `infer` and
// `repl`.
package main

import (
	"fmt"
	"os"

	"github.com/golang/glog"
	"go.uber.org/multierr"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run dispatches to a subcommand and returns the process exit code:
// 0 on success (even with reported inference errors; those are data,
// not failure), 1 on parse/IO failure, 2 on usage error.
func run(args []string) int {
	defer glog.Flush()
	if len(args) == 0 {
		usage()
		return 2
	}
	switch args[0] {
	case "infer":
		return runInfer(args[1:])
	case "repl":
		return runRepl(args[1:])
	case "-h", "--help", "help":
		usage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "flowtype: unknown command %q\n", args[0])
		usage()
		return 2
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  flowtype infer <file> [--format report|decl|json|inline] [--cache-dir DIR] [--max-iterations N] [-v N]
  flowtype repl`)
}

// combineFileErrors accumulates one error per input file via
// go.uber.org/multierr, then flattens to a single error the caller
// reports once.
func combineFileErrors(perFile map[string]error) error {
	var combined error
	for _, path := range sortedKeys(perFile) {
		if err := perFile[path]; err != nil {
			combined = multierr.Append(combined, fmt.Errorf("%s: %w", path, err))
		}
	}
	return combined
}

func sortedKeys(m map[string]error) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
