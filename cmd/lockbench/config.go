package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
)

const (
	defaultThreadCount  = 1
	defaultIterations   = -1
	defaultOTLPEndpoint = "localhost:4317"

	usageLine = "Usage: %s [-t nthreads] [-i iterations] [-d]\n"
)

// errUsage signals that the usage text was printed and the process must exit with status 1.
var errUsage = errors.New("usage")

// Config holds all benchmark configuration parameters.
type Config struct {
	ThreadCount          int
	Iterations           int64
	Diagnostics          bool
	Report               bool
	LockOSThread         bool
	MaxThreads           int
	ObservabilityEnabled bool
	OTLPEndpoint         string
}

// parseFlags parses args (without the program name) into a Config.
// Usage problems print the usage line to stderr and return errUsage, validation problems return
// an error carrying the message to print.
func parseFlags(prog string, args []string, stderr io.Writer) (Config, error) {
	fs := flag.NewFlagSet(prog, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		threads       = fs.String("t", strconv.Itoa(defaultThreadCount), "Number of worker threads, must be > 0")
		iterations    = fs.String("i", strconv.Itoa(defaultIterations), "Termination target, -1 runs forever")
		diagnostics   = fs.Bool("d", false, "Print the number of increments per worker")
		report        = fs.Bool("report", false, "Print the run report as JSON after a bounded run")
		lockOSThread  = fs.Bool("lock-os-thread", false, "Run every worker on its own OS thread")
		maxThreads    = fs.Int("max-threads", 0, "Maximum number of workers that can be spawned, 0 means no limit")
		observability = fs.Bool("observability-enabled", false, "Enable OpenTelemetry observability")
		otlpEndpoint  = fs.String("otlp-endpoint", defaultOTLPEndpoint, "OTLP gRPC endpoint for traces and metrics")
	)

	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		printUsage(prog, fs, stderr)
		return Config{}, errUsage
	}

	threadCount, err := strconv.ParseInt(*threads, 0, 0)
	if err != nil || threadCount <= 0 {
		return Config{}, fmt.Errorf("%s: nthread: %s must be > 0", prog, *threads)
	}

	target, err := strconv.ParseInt(*iterations, 0, 64)
	if err != nil || target < -1 {
		return Config{}, fmt.Errorf("%s: iterations: %s must be >= -1", prog, *iterations)
	}

	if *maxThreads < 0 {
		return Config{}, fmt.Errorf("%s: max-threads: %d must be >= 0", prog, *maxThreads)
	}

	return Config{
		ThreadCount:          int(threadCount),
		Iterations:           target,
		Diagnostics:          *diagnostics,
		Report:               *report,
		LockOSThread:         *lockOSThread,
		MaxThreads:           *maxThreads,
		ObservabilityEnabled: *observability,
		OTLPEndpoint:         *otlpEndpoint,
	}, nil
}

func printUsage(prog string, fs *flag.FlagSet, stderr io.Writer) {
	_, _ = fmt.Fprintf(stderr, usageLine, prog)

	fs.SetOutput(stderr)
	fs.PrintDefaults()
}
