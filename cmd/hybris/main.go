// Command hybris is the driver for the Hybris execution core: it parses a
// source file (or stdin), runs it against a freshly built vm.VM, and
// reports an uncaught error with its type, source position and, if
// requested, a call trace (spec.md §6).
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/hybris-lang/hybris/internal/gc"
	"github.com/hybris-lang/hybris/internal/herror"
	"github.com/hybris-lang/hybris/internal/vm"
)

const usage = `usage: hybris [options] [script]

options:
  -h, --help        show this help text
  -g, --gc <size>    GC byte threshold, e.g. --gc=10M (default: no auto-collect)
  -t, --time         print wall-clock execution time to stderr
  -s, --trace        print a call trace on an uncaught error

With no script argument, source is read from stdin.
`

type options struct {
	gcThreshold uint64
	showTime    bool
	showTrace   bool
	scriptPath  string
}

func parseArgs(args []string) (*options, error) {
	opts := &options{}
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch a {
		case "-h", "--help":
			fmt.Print(usage)
			os.Exit(0)
		case "-t", "--time":
			opts.showTime = true
		case "-s", "--trace":
			opts.showTrace = true
		case "-g", "--gc":
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("%s requires an argument", a)
			}
			n, err := gc.ParseThreshold(args[i])
			if err != nil {
				return nil, err
			}
			opts.gcThreshold = n
		default:
			if strings.HasPrefix(a, "--gc=") {
				n, err := gc.ParseThreshold(strings.TrimPrefix(a, "--gc="))
				if err != nil {
					return nil, err
				}
				opts.gcThreshold = n
				continue
			}
			if len(a) > 0 && a[0] == '-' && a != "-" {
				return nil, fmt.Errorf("unknown option %s", a)
			}
			if opts.scriptPath != "" {
				return nil, fmt.Errorf("unexpected argument %s", a)
			}
			opts.scriptPath = a
		}
	}
	return opts, nil
}

func readSource(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "hybris:", err)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	src, err := readSource(opts.scriptPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hybris:", err)
		os.Exit(1)
	}

	m := vm.New(opts.gcThreshold)

	start := time.Now()
	runErr := m.RunSource(src)
	elapsed := time.Since(start)

	if opts.showTime {
		if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			fmt.Fprintf(os.Stderr, "\x1b[36mhybris: executed in %s\x1b[0m\n", elapsed)
		} else {
			fmt.Fprintf(os.Stderr, "hybris: executed in %s\n", elapsed)
		}
	}

	reportWarnings(m)

	if runErr != nil {
		reportError(m, runErr, opts.showTrace)
		os.Exit(1)
	}
}

// reportWarnings prints every non-fatal herror.Warning the run accumulated
// (spec.md §7: "printed but never propagated as throwing") — raised by a
// class method call falling back to an unmatched overload, or by a failing
// __expire descriptor.
func reportWarnings(m *vm.VM) {
	colorize := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	for _, w := range m.Trace.Warnings() {
		if colorize {
			fmt.Fprintf(os.Stderr, "\x1b[33m%s\x1b[0m\n", w.Error())
		} else {
			fmt.Fprintln(os.Stderr, w.Error())
		}
	}
}

func reportError(m *vm.VM, err error, withTrace bool) {
	colorize := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	herr, ok := err.(*herror.Error)
	if !ok {
		fmt.Fprintln(os.Stderr, "hybris:", err)
		return
	}
	if colorize {
		fmt.Fprintf(os.Stderr, "\x1b[31m%s\x1b[0m\n", herr.Error())
	} else {
		fmt.Fprintln(os.Stderr, herr.Error())
	}

	if !withTrace {
		return
	}
	frames := m.Trace.Snapshot()
	for i := len(frames) - 1; i >= 0; i-- {
		fr := frames[i]
		fmt.Fprintf(os.Stderr, "  at %s (%s)\n", fr.Function, fr.Pos.String())
	}
}
