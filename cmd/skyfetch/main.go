package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitConfigError  = 3
	ExitStorageError = 4
	ExitFetchFailed  = 5
	ExitIncomplete   = 6
	ExitInterrupted  = 130
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	app := newApp()

	// Bare flags run the default command: "skyfetch -i list -o data".
	if len(args) == 0 || (strings.HasPrefix(args[0], "-") && !isHelpFlag(args[0])) {
		args = append([]string{"fetch"}, args...)
	}

	err := app.Run(append([]string{app.Name}, args...))
	if err == nil {
		return ExitSuccess
	}

	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		if msg := exitErr.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		return exitErr.ExitCode()
	}

	// Anything urfave/cli returns on its own is a usage problem.
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return ExitInvalidArgs
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "skyfetch",
		Usage: "fetch a list of URLs into a directory or bucket, in parallel",
		Description: `Each URL is saved under its last path segment. Files that already
exist are skipped, so a run can be repeated to pick up where a previous one
stopped.`,
		Commands: []*cli.Command{
			fetchCommand(),
			statusCommand(),
			cleanCommand(),
		},
		// Exit codes are mapped in run.
		ExitErrHandler: func(*cli.Context, error) {},
		HideVersion:    true,
	}
}

func isHelpFlag(arg string) bool {
	switch arg {
	case "-h", "--help", "-help":
		return true
	}
	return false
}

// exitf builds an error that run reports with the given exit code.
func exitf(code int, format string, args ...any) cli.ExitCoder {
	return cli.Exit(fmt.Sprintf("Error: "+format, args...), code)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\n[skyfetch] Received interrupt, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}
