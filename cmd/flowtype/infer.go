package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/glog"

	"github.com/funvibe/flowtype/internal/cache"
	"github.com/funvibe/flowtype/internal/config"
	"github.com/funvibe/flowtype/internal/format"
	"github.com/funvibe/flowtype/internal/parser"
	"github.com/funvibe/flowtype/internal/solver"
	"github.com/funvibe/flowtype/internal/types"
)

type inferOptions struct {
	format        string
	cacheDir      string
	maxIterations int
	verbose       int
	files         []string
}

func parseInferArgs(args []string) (inferOptions, error) {
	opts := inferOptions{format: ""}
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--format":
			i++
			if i >= len(args) {
				return opts, fmt.Errorf("--format requires a value")
			}
			opts.format = args[i]
		case a == "--cache-dir":
			i++
			if i >= len(args) {
				return opts, fmt.Errorf("--cache-dir requires a value")
			}
			opts.cacheDir = args[i]
		case a == "--max-iterations":
			i++
			if i >= len(args) {
				return opts, fmt.Errorf("--max-iterations requires a value")
			}
			n := 0
			if _, err := fmt.Sscanf(args[i], "%d", &n); err != nil || n <= 0 {
				return opts, fmt.Errorf("--max-iterations: invalid value %q", args[i])
			}
			opts.maxIterations = n
		case a == "-v":
			i++
			if i >= len(args) {
				return opts, fmt.Errorf("-v requires a value")
			}
			n := 0
			fmt.Sscanf(args[i], "%d", &n)
			opts.verbose = n
		default:
			opts.files = append(opts.files, a)
		}
	}
	if len(opts.files) == 0 {
		return opts, fmt.Errorf("no input file given")
	}
	return opts, nil
}

// runInfer implements `flowtype infer <file> [flags]`. One input file is
// the common case; multiple are accepted and processed independently,
// their errors combined with multierr (main.go's combineFileErrors)
// rather than stopping at the first failure.
func runInfer(args []string) int {
	opts, err := parseInferArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "flowtype infer:", err)
		usage()
		return 2
	}

	if opts.verbose > 0 {
		flag.Set("v", fmt.Sprintf("%d", opts.verbose))
		flag.Set("logtostderr", "true")
	}

	cfg, err := config.Load(".flowtype.yaml")
	if err != nil {
		fmt.Fprintln(os.Stderr, "flowtype infer:", err)
		return 1
	}
	if opts.maxIterations > 0 {
		cfg.MaxIterations = opts.maxIterations
	}
	solver.MaxIterations = cfg.MaxIterations
	types.MaxTupleLength = cfg.TupleCap
	extra := make([]string, len(cfg.Globals))
	for i, g := range cfg.Globals {
		extra[i] = g.Name
	}
	solver.ExtraBuiltins = extra

	outFormat := cfg.DefaultFormat
	if opts.format != "" {
		outFormat = opts.format
	}

	var fileCache *cache.Cache
	if opts.cacheDir != "" {
		if err := os.MkdirAll(opts.cacheDir, 0o755); err != nil {
			fmt.Fprintln(os.Stderr, "flowtype infer: cache dir:", err)
			return 1
		}
		fileCache, err = cache.Open(opts.cacheDir)
		if err != nil {
			fmt.Fprintln(os.Stderr, "flowtype infer:", err)
			return 1
		}
		defer fileCache.Close()
	}

	perFile := map[string]error{}
	hadParseFailure := false
	for _, path := range opts.files {
		out, perr := inferOne(path, outFormat, fileCache)
		if perr != nil {
			perFile[path] = perr
			hadParseFailure = true
			continue
		}
		fmt.Print(out)
	}
	if combined := combineFileErrors(perFile); combined != nil {
		fmt.Fprintln(os.Stderr, combined)
	}
	if hadParseFailure {
		return 1
	}
	return 0
}

func inferOne(path, outFormat string, fileCache *cache.Cache) (string, error) {
	start := time.Now()
	source, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading source: %w", err)
	}

	var cacheKey string
	if fileCache != nil {
		cacheKey = cache.Key(source)
		if payload, ok := fileCache.Get(cacheKey, outFormat); ok {
			glog.V(1).Infof("%s: cache hit (%s)", path, outFormat)
			return payload, nil
		}
	}

	prog, diags := parser.Parse(string(source))
	if len(diags) > 0 {
		msg := ""
		for _, d := range diags {
			msg += d.Error() + "\n"
		}
		return "", fmt.Errorf("parse failed:\n%s", msg)
	}

	res := solver.Infer(prog)
	elapsed := time.Since(start).Round(time.Microsecond).String()

	out, err := renderResult(path, res, outFormat, elapsed, len(source), string(source))
	if err != nil {
		return "", err
	}

	if fileCache != nil {
		if err := fileCache.Put(cacheKey, outFormat, out); err != nil {
			glog.Warningf("%s: cache write failed: %v", path, err)
		}
	}
	return out, nil
}

func renderResult(path string, res solver.Result, outFormat, elapsed string, sourceBytes int, source string) (string, error) {
	switch outFormat {
	case "", "report":
		return format.NewReport(os.Stdout, nil).Render(filepath.Clean(path), res, elapsed, sourceBytes), nil
	case "decl":
		return format.Decl(res), nil
	case "json":
		return format.JSON(res, true)
	case "inline":
		return format.Inline(source, res), nil
	default:
		return "", fmt.Errorf("unknown format %q", outFormat)
	}
}
