// Package cli implements the keepsake command-line interface for inspecting
// and editing settings documents.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	file      string
	backend   string
	format    string
}

// exitError carries the exit code a failed command should produce.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(format string, args ...any) error {
	return &exitError{code: exitUserError, err: fmt.Errorf(format, args...)}
}

func sysError(format string, args ...any) error {
	return &exitError{code: exitSysError, err: fmt.Errorf(format, args...)}
}

// NewRootCmd creates the top-level "keepsake" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "keepsake",
		Short: "Inspect and edit sectioned JSON settings documents",
		Long: "Keepsake reads and writes the settings documents applications persist\n" +
			"with the keepsake library. Sections are colon separated paths such as App:Window.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&flags.dataDir, "data-dir", "", "directory holding settings documents (default: platform data dir)")
	pf.StringVar(&flags.file, "file", "", "settings document name (default: settings.json)")
	pf.StringVar(&flags.backend, "backend", "", "storage backend: file or sqlite (default: file)")
	pf.StringVar(&flags.format, "format", "", "output format: json, yaml or toml (default: json)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(flags))
	root.AddCommand(newGetCmd(flags))
	root.AddCommand(newSetCmd(flags))
	root.AddCommand(newUnsetCmd(flags))
	root.AddCommand(newSectionsCmd(flags))
	root.AddCommand(newHistoryCmd(flags))
	root.AddCommand(newExportCmd(flags))
	root.AddCommand(newImportCmd(flags))

	return root
}

// Execute runs the root command with args and returns the process exit code.
// Errors are printed to stderr.
func Execute(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "Error:", err)

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// Flag and argument errors come from cobra itself.
	return exitUserError
}

// Main runs the CLI against the process arguments and exits.
func Main() {
	os.Exit(Execute(os.Args[1:], os.Stdout, os.Stderr))
}
