package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/keepsake/internal/document"
	"github.com/mesh-intelligence/keepsake/internal/section"
	"github.com/mesh-intelligence/keepsake/pkg/types"
)

func newSetCmd(flags *rootFlags) *cobra.Command {
	var asString bool
	cmd := &cobra.Command{
		Use:   "set <section> <value>",
		Short: "Store a value at a section",
		Long: `Set replaces the value at a section, creating missing intermediate objects.
Every other key in the document is kept. The value is parsed as JSON when it
is valid JSON and stored as a string otherwise.

Example:
  keepsake set App:Window:Width 800
  keepsake set App:Window '{"Width":800,"Height":600}'
  keepsake set App:Title 42 --string`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := sectionOf(args[0])
			if err != nil {
				return err
			}
			value := parseValue(args[1], asString)

			return withStore(flags, func(s settings, store types.FileSystem) error {
				if s.createSettingsFile {
					if _, err := ensureDocument(store, s.documentPath()); err != nil {
						return err
					}
				}
				root, err := readDocument(store, s.documentPath())
				if err != nil {
					return err
				}
				if err := section.Assign(root, p, value); err != nil {
					return userError("%w", err)
				}
				if err := writeDocument(store, s.documentPath(), root); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", p)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asString, "string", false, "store the value as a string even if it is valid JSON")
	return cmd
}

func newUnsetCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "unset <section>",
		Short: "Remove a section from the settings document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := sectionOf(args[0])
			if err != nil {
				return err
			}
			return withStore(flags, func(s settings, store types.FileSystem) error {
				root, err := readDocument(store, s.documentPath())
				if err != nil {
					return err
				}
				if !section.Remove(root, p) {
					return userError("section %q not found in %s", args[0], s.documentPath())
				}
				if err := writeDocument(store, s.documentPath(), root); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", p)
				return nil
			})
		},
	}
}

// parseValue interprets a command-line value as JSON, falling back to a
// plain string.
func parseValue(arg string, asString bool) any {
	if asString {
		return arg
	}
	node, err := document.Parse([]byte(arg))
	if err != nil {
		return arg
	}
	return node
}
