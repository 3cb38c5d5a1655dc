// Command lockbench exercises a single mutex under contention.
//
// It spawns nthreads workers that increment one shared counter until it reaches iterations,
// or forever when iterations is -1:
//
//	lockbench [-t nthreads] [-i iterations] [-d]
//
// Integers accept base prefixes, so -t 0x10 starts 16 workers. With -d every worker logs how many
// increments it made. Log lines go to stderr, stdout only carries the -report output. Additional flags:
//
//	-report                  print the run report as JSON after a bounded run
//	-lock-os-thread          run every worker on its own OS thread
//	-max-threads n           fail before starting if more than n workers are requested
//	-observability-enabled   export traces, metrics and logs via OTLP gRPC
//	-otlp-endpoint addr      OTLP endpoint, default localhost:4317
//
// The exit status is 0 after a completed bounded run and 1 for usage, validation, or run failures.
package main
