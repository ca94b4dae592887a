// File: cmd/scalpel/main.go
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/xkilldash9x/scalpel-introspect/cmd"
	"github.com/xkilldash9x/scalpel-introspect/internal/observability"
	"golang.org/x/term"
)

const panicLogFile = "panic.log"

const banner = `scalpel-introspect %s
Type a command (snapshot, query, name, version) or "exit".
`

var (
	osWriteFile = os.WriteFile
	osExit      = os.Exit
	isTerminal  = func(f *os.File) bool { return term.IsTerminal(int(f.Fd())) }
)

func main() {
	defer handlePanic()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if args := commandArgs(os.Args[1:], isTerminal(os.Stdin)); len(args) > 0 {
		if err := cmd.Execute(ctx, args...); err != nil {
			if errors.Is(err, context.Canceled) {
				osExit(0)
				return
			}
			fmt.Fprintln(os.Stderr, "Error:", err)
			osExit(1)
		}
		return
	}

	if err := runInteractive(ctx, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error reading from stdin:", err)
		osExit(1)
	}
}

// commandArgs returns the arguments to run non-interactively. A bare
// invocation with piped input snapshots standard input; a bare invocation
// on a terminal returns nil and gets the shell.
func commandArgs(args []string, stdinIsTerminal bool) []string {
	if len(args) > 0 {
		return args
	}
	if !stdinIsTerminal {
		return []string{"snapshot", "-"}
	}
	return nil
}

// runInteractive reads one command per line until EOF or "exit".
func runInteractive(ctx context.Context, in io.Reader, out, errOut io.Writer) error {
	fmt.Fprintf(out, banner, cmd.Version)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "scalpel-introspect > ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		executeInteractiveCommand(ctx, line, out, errOut)
	}
	fmt.Fprintln(out)
	return scanner.Err()
}

// executeInteractiveCommand runs one line on a fresh command tree. A panic
// or error is reported without leaving the shell.
func executeInteractiveCommand(ctx context.Context, line string, out, errOut io.Writer) {
	rootCmd := cmd.NewRootCommand()
	rootCmd.SetArgs(strings.Fields(line))
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(errOut, "Error: command panicked: %v\n", r)
		}
	}()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(errOut, "Error:", err)
	}
}

// handlePanic writes the panic and its stack to panicLogFile and exits.
func handlePanic() {
	r := recover()
	if r == nil {
		return
	}
	observability.Sync()

	report := fmt.Sprintf("panic: %v\n\n%s", r, debug.Stack())
	if err := osWriteFile(panicLogFile, []byte(report), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to write panic log: %v\n%s\n", err, report)
		osExit(1)
		return
	}
	fmt.Fprintf(os.Stderr, "CRASH DETECTED. Details logged to %s\n", panicLogFile)
	osExit(2)
}
