package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

// Run executes the CLI and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	return Execute(cmd)
}

// Execute runs cmd and reports any error on its error stream.
func Execute(cmd *cobra.Command) int {
	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		// commands return *ExitError; anything else is cobra rejecting
		// the command line
		err = WrapExitError(ExitUsage, "usage", err)
	}
	out := &OutputFormatter{Format: formatOf(cmd), Writer: cmd.OutOrStdout()}
	out.Error(cmd.ErrOrStderr(), err)
	return GetExitCode(err)
}

func formatOf(cmd *cobra.Command) string {
	if f := cmd.PersistentFlags().Lookup("format"); f != nil {
		return f.Value.String()
	}
	return "text"
}
