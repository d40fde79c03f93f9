package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/keepsake/internal/document"
)

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	var revision int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the stored revisions of the settings document (sqlite backend)",
		Long: `History lists every revision written to the settings document. With
--revision it prints the content of that revision instead.

Example:
  keepsake history --backend sqlite
  keepsake history --backend sqlite --revision 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolve(flags)
			if err != nil {
				return err
			}
			store, err := openSQLite(s)
			if err != nil {
				return err
			}
			defer store.Detach()

			revs, err := store.History(s.documentPath())
			if err != nil {
				return sysError("history: %w", err)
			}
			out := cmd.OutOrStdout()

			if revision > 0 {
				for _, rev := range revs {
					if rev.Number == revision {
						node, err := document.Parse(rev.Content)
						if err != nil {
							_, err = out.Write(rev.Content)
							return err
						}
						return render(out, node, s.format)
					}
				}
				return userError("revision %d not found for %s", revision, s.documentPath())
			}

			if s.format == formatJSON {
				type row struct {
					Revision  int    `json:"revision"`
					ID        string `json:"history_id"`
					WrittenAt string `json:"written_at"`
					Bytes     int    `json:"bytes"`
				}
				rows := make([]row, 0, len(revs))
				for _, rev := range revs {
					rows = append(rows, row{rev.Number, rev.ID, rev.WrittenAt.Format(time.RFC3339), len(rev.Content)})
				}
				data, err := json.MarshalIndent(rows, "", "  ")
				if err != nil {
					return sysError("marshal history: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "REV\tWRITTEN\tBYTES\tID")
			for _, rev := range revs {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", rev.Number, rev.WrittenAt.Format(time.RFC3339), len(rev.Content), rev.ID)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&revision, "revision", 0, "print the content of this revision")
	return cmd
}

func newExportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.jsonl>",
		Short: "Write every stored revision to a JSONL file (sqlite backend)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolve(flags)
			if err != nil {
				return err
			}
			store, err := openSQLite(s)
			if err != nil {
				return err
			}
			defer store.Detach()

			if err := store.Export(args[0]); err != nil {
				return sysError("export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported history to %s\n", args[0])
			return nil
		},
	}
}

func newImportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.jsonl>",
		Short: "Restore revisions from a JSONL export (sqlite backend)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolve(flags)
			if err != nil {
				return err
			}
			store, err := openSQLite(s)
			if err != nil {
				return err
			}
			defer store.Detach()

			n, err := store.Import(args[0])
			if err != nil {
				return userError("import: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d revisions\n", n)
			return nil
		},
	}
}
