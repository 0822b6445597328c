package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/floorplanner/pkg/errors"
)

// Process exit codes.
const (
	exitOK          = 0
	exitFailure     = 1   // engine or environment failure
	exitBadInput    = 2   // rejected module list, unknown module, bad flag value
	exitInterrupted = 130 // SIGINT, as shells report it
)

// Execute runs the floorplanner CLI with the process arguments.
//
// Logging goes to stderr at info level, or debug level with --verbose.
// The configuration file is loaded before any subcommand runs; unknown keys
// are logged as warnings.
func Execute(ctx context.Context) error {
	return ExecuteArgs(ctx, os.Args[1:])
}

// ExecuteArgs runs the CLI with explicit arguments.
func ExecuteArgs(ctx context.Context, args []string) error {
	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// ExitCode reports err on stderr and returns the matching exit code.
func ExitCode(err error) int {
	return reportError(os.Stderr, err)
}

func reportError(w io.Writer, err error) int {
	switch {
	case err == nil:
		return exitOK
	case stderrors.Is(err, context.Canceled):
		return exitInterrupted
	}

	msg := err.Error()
	var e *errors.Error
	if stderrors.As(err, &e) {
		msg = e.Message
		if e.Cause != nil {
			msg += ": " + e.Cause.Error()
		}
		msg += " " + StyleDim.Render("("+string(e.Code)+")")
	}
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+msg)

	if errors.IsInputError(err) {
		return exitBadInput
	}
	return exitFailure
}
