package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/roach88/facet/internal/cli"
)

func main() {
	logger, err := newLogger(verboseRequested(os.Args[1:]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "facet: init logger: %v\n", err)
		os.Exit(cli.ExitCommandError)
	}
	defer func() { _ = logger.Sync() }()

	root := cli.NewRootCommand(logger)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "facet: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}

// newLogger builds the process logger. Command output goes to stdout,
// so the logger stays on stderr and is silent below Warn unless
// verbose is set.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// verboseRequested peeks at the args before cobra parses them; the
// logger has to exist before the command tree does.
func verboseRequested(args []string) bool {
	for _, arg := range args {
		if arg == "-v" || arg == "--verbose" {
			return true
		}
	}
	return false
}
