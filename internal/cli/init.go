package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/keepsake/pkg/types"
)

func newInitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration and an empty settings document",
		Long: "Write config.yaml to the configuration directory if it is missing, then\n" +
			"create the data directory and an empty settings document.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, flags)
		},
	}
}

func runInit(cmd *cobra.Command, flags *rootFlags) error {
	s, err := resolve(flags)
	if err != nil {
		return err
	}
	wrote, err := writeConfigIfMissing(s)
	if err != nil {
		return sysError("write config: %w", err)
	}
	if wrote {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", filepath.Join(s.configDir, configFileExt))
	}

	return withStore(flags, func(s settings, store types.FileSystem) error {
		created, err := ensureDocument(store, s.documentPath())
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", s.documentPath())
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Keepsake initialized successfully")
		return nil
	})
}
