package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/mahmoudd2003/list/internal/render"
)

var (
	renderIn    string
	renderRunID string
	renderTitle string
	renderOut   string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a saved run as HTML cards",
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := loadRun(cmd.Context(), renderIn, renderRunID)
		if err != nil {
			return err
		}

		title := renderTitle
		if title == "" {
			title = run.Query
		}
		doc := render.Render(run.Items, title, time.Now())

		if renderOut != "" {
			if err := os.WriteFile(renderOut, []byte(doc.HTML), 0o644); err != nil {
				return eris.Wrap(err, "write html")
			}
			return nil
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), doc.HTML)
		return err
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderIn, "in", "", "run JSON written by fetch")
	renderCmd.Flags().StringVar(&renderRunID, "run-id", "", "stored run to render instead of --in")
	renderCmd.Flags().StringVar(&renderTitle, "title", "", "document title (default: the run's query)")
	renderCmd.Flags().StringVar(&renderOut, "out", "", "write HTML to this file instead of stdout")
	renderCmd.MarkFlagsOneRequired("in", "run-id")
	renderCmd.MarkFlagsMutuallyExclusive("in", "run-id")
	rootCmd.AddCommand(renderCmd)
}
