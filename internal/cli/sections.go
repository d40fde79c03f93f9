package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/keepsake/internal/section"
	"github.com/mesh-intelligence/keepsake/pkg/types"
)

func newSectionsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sections [section]",
		Short: "List the leaf sections of the settings document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(flags, func(s settings, store types.FileSystem) error {
				root, err := readDocument(store, s.documentPath())
				if err != nil {
					return err
				}
				var (
					node   any = root
					prefix string
				)
				if len(args) == 1 {
					p, err := sectionOf(args[0])
					if err != nil {
						return err
					}
					var ok bool
					if node, ok = section.Lookup(root, p); !ok {
						return userError("section %q not found in %s", args[0], s.documentPath())
					}
					if obj, isObj := node.(map[string]any); !isObj || len(obj) == 0 {
						fmt.Fprintln(cmd.OutOrStdout(), p.String())
						return nil
					}
					prefix = p.String() + types.SectionSeparator
				}
				for _, leaf := range section.Leaves(node) {
					fmt.Fprintln(cmd.OutOrStdout(), prefix+leaf)
				}
				return nil
			})
		},
	}
}
