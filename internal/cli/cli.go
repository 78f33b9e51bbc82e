// Package cli parses command-line arguments into an app configuration.
package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/amogorkon/pipeduct/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config, a
// boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("pipeduct", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
pipeduct - a pipe-operator expression transformer for routine documents.

Usage:
  pipeduct [options] DOC_PATH [ARG...]

Arguments:
  DOC_PATH
    Path to a single .hcl routine document or a directory of documents.
  ARG
    Expressions evaluated into positional arguments for --call.

Options:
`)
		flagSet.PrintDefaults()
	}

	docsFlag := flagSet.String("docs", "", "Path to the document file or directory.")
	callFlag := flagSet.String("call", "", "Routine to invoke after transformation. Empty lists routines.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	var docPaths []string
	callArgs := flagSet.Args()
	if *docsFlag != "" {
		docPaths = append(docPaths, *docsFlag)
	} else if len(callArgs) > 0 {
		docPaths = append(docPaths, callArgs[0])
		callArgs = callArgs[1:]
	}

	if len(docPaths) == 0 {
		slog.Debug("No document path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *callFlag == "" && len(callArgs) > 0 {
		return nil, false, &ExitError{Code: 2, Message: "argument expressions require --call"}
	}
	slog.Debug("CLI parameter validation complete.")

	return &app.Config{
		DocPaths:  docPaths,
		Call:      *callFlag,
		Args:      callArgs,
		LogFormat: logFormat,
		LogLevel:  logLevel,
	}, false, nil
}
