package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/keepsake/internal/section"
	"github.com/mesh-intelligence/keepsake/pkg/types"
)

func newGetCmd(flags *rootFlags) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "get [section]",
		Short: "Print a section of the settings document",
		Long: `Get prints the value stored at a section, or the whole document when no
section is given.

Example:
  keepsake get App:Window
  keepsake get App:Window:Width --raw`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(flags, func(s settings, store types.FileSystem) error {
				root, err := readDocument(store, s.documentPath())
				if err != nil {
					return err
				}
				var node any = root
				if len(args) == 1 {
					p, err := sectionOf(args[0])
					if err != nil {
						return err
					}
					var ok bool
					if node, ok = section.Lookup(root, p); !ok {
						return userError("section %q not found in %s", args[0], s.documentPath())
					}
				}
				if raw {
					if text, ok := scalarText(node); ok {
						fmt.Fprintln(cmd.OutOrStdout(), text)
						return nil
					}
				}
				return render(cmd.OutOrStdout(), node, s.format)
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print scalar values without JSON quoting")
	return cmd
}
