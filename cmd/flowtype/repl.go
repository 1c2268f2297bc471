package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/funvibe/flowtype/internal/parser"
	"github.com/funvibe/flowtype/internal/solver"
)

const replPrompt = "flow> "

// repl is an interactive line-editing front end that infers and prints
// the type of each top-level binding as it is entered, re-running the
// core against the whole accumulated buffer each time (there is no
// incremental entry point; Infer always consumes a whole program). A
// persistent source buffer plus a chzyer/readline-backed line reader,
// one readline.New per line.
type repl struct {
	out    io.Writer
	buffer strings.Builder
}

func runRepl(args []string) int {
	r := &repl{out: os.Stdout}
	fmt.Fprintln(r.out, "flowtype repl - enter statements, Ctrl-D to exit")
	for {
		line, err := r.nextLine(replPrompt)
		if err != nil {
			if err == io.EOF {
				return 0
			}
			fmt.Fprintln(os.Stderr, "flowtype repl:", err)
			return 1
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		r.eval(line)
	}
}

func (r *repl) nextLine(prompt string) (string, error) {
	rl, err := readline.New(prompt)
	if err != nil {
		return "", err
	}
	defer rl.Close()
	line, err := rl.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// eval appends line to the persistent buffer, re-infers the whole thing,
// and prints the freshest annotation touching source at-or-after line's
// start offset (i.e. whatever this line just declared or evaluated).
func (r *repl) eval(line string) {
	priorContent := r.buffer.String()
	priorLen := len(priorContent)
	r.buffer.WriteString(line)
	r.buffer.WriteString("\n")

	prog, diags := parser.Parse(r.buffer.String())
	if len(diags) > 0 {
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, d.Error())
		}
		// Roll back: a bad line shouldn't poison the persistent buffer.
		r.buffer.Reset()
		r.buffer.WriteString(priorContent)
		return
	}

	res := solver.Infer(prog)
	for _, e := range res.Errors {
		fmt.Fprintf(os.Stderr, "error: %s\n", e.Message)
	}
	var best *solver.TypeAnnotation
	for i := range res.Annotations {
		a := &res.Annotations[i]
		if a.Start.Offset < priorLen {
			continue
		}
		if best == nil || a.Start.Offset >= best.Start.Offset {
			best = a
		}
	}
	if best != nil {
		if best.Name != "" {
			fmt.Fprintf(r.out, "%s: %s\n", best.Name, best.TypeString)
		} else {
			fmt.Fprintf(r.out, "%s\n", best.TypeString)
		}
	}
}
