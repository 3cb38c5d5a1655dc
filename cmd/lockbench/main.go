package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/AntonStoeckl/lockbench/lockbench"
)

const (
	exitOK          = 0
	exitFailure     = 1
	exitInterrupted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := run(ctx, filepath.Base(os.Args[0]), os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}

// run executes the benchmark described by args and returns the process exit code.
func run(ctx context.Context, prog string, args []string, stdout, stderr io.Writer) int {
	cfg, err := parseFlags(prog, args, stderr)
	if err != nil {
		if !errors.Is(err, errUsage) {
			_, _ = fmt.Fprintln(stderr, err)
		}

		return exitFailure
	}

	options := coordinatorOptions(cfg)
	options = append(options, lockbench.WithLogger(slog.New(newLogHandler(stderr, cfg.Diagnostics))))

	if cfg.ObservabilityEnabled {
		providers, obsErr := newObservabilityProviders(ctx, cfg.OTLPEndpoint)
		if obsErr != nil {
			_, _ = fmt.Fprintf(stderr, "%s: observability: %v\n", prog, obsErr)
			return exitFailure
		}

		defer func() {
			if shutdownErr := providers.shutdown(); shutdownErr != nil {
				_, _ = fmt.Fprintf(stderr, "%s: observability shutdown: %v\n", prog, shutdownErr)
			}
		}()

		options = append(options, providers.coordinatorOptions()...)
	}

	coordinator, err := lockbench.NewCoordinator(options...)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%s: %v\n", prog, err)
		return exitFailure
	}

	type runResult struct {
		report lockbench.RunReport
		err    error
	}

	done := make(chan runResult, 1)
	go func() {
		report, runErr := coordinator.Run(ctx, cfg.ThreadCount, cfg.Iterations)
		done <- runResult{report: report, err: runErr}
	}()

	var result runResult
	select {
	case result = <-done:
	case <-ctx.Done():
		// Workers are not cancellable, they end with the process.
		_, _ = fmt.Fprintf(stderr, "%s: interrupted\n", prog)
		return exitInterrupted
	}

	if result.err != nil {
		_, _ = fmt.Fprintf(stderr, "%s: %v\n", prog, result.err)
		return exitFailure
	}

	if cfg.Report {
		data, jsonErr := result.report.JSON()
		if jsonErr != nil {
			_, _ = fmt.Fprintf(stderr, "%s: report: %v\n", prog, jsonErr)
			return exitFailure
		}

		_, _ = fmt.Fprintln(stdout, string(data))
	}

	return exitOK
}

// newLogHandler logs errors by default, and everything down to per-worker diagnostics with -d.
func newLogHandler(w io.Writer, diagnostics bool) slog.Handler {
	level := slog.LevelWarn
	if diagnostics {
		level = slog.LevelDebug
	}

	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
}

func coordinatorOptions(cfg Config) []lockbench.Option {
	options := []lockbench.Option{lockbench.WithMaxWorkers(cfg.MaxThreads)}

	if cfg.Diagnostics {
		options = append(options, lockbench.WithWorkerDiagnostics())
	}

	if cfg.LockOSThread {
		options = append(options, lockbench.WithOSThreadPerWorker())
	}

	return options
}
