package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mahmoudd2003/list/internal/model"
	"github.com/mahmoudd2003/list/internal/store"
)

var (
	runsCity   string
	runsLimit  int
	runsOffset int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect the run history",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireStore(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		runs, err := s.ListRuns(cmd.Context(), store.RunFilter{
			City:   runsCity,
			Limit:  runsLimit,
			Offset: runsOffset,
		})
		if err != nil {
			return err
		}
		return printRuns(cmd.OutOrStdout(), runs)
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print a stored run as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := loadRun(cmd.Context(), "", args[0])
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), "", run)
	},
}

// printRuns writes a tabular list of runs to out.
func printRuns(out io.Writer, runs []model.Run) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tCITY\tITEMS\tPOST\tQUERY")
	for _, r := range runs {
		post := "-"
		if r.PostID != 0 {
			post = fmt.Sprintf("post %d", r.PostID)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.City, len(r.Items), post, r.Query)
	}
	return w.Flush()
}

func init() {
	runsListCmd.Flags().StringVar(&runsCity, "city", "", "only runs for this city key")
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to list")
	runsListCmd.Flags().IntVar(&runsOffset, "offset", 0, "skip this many runs")
	runsCmd.AddCommand(runsListCmd, runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
