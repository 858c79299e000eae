package main

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mahmoudd2003/list/internal/model"
	"github.com/mahmoudd2003/list/internal/pipeline"
	"github.com/mahmoudd2003/list/internal/render"
)

var (
	fetchCity       string
	fetchCategory   string
	fetchQuery      string
	fetchMaxResults int
	fetchMinReviews int
	fetchOut        string
	fetchHTML       string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Search a city and write the enriched, ranked run as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initPipeline("fetch")
		if err != nil {
			return err
		}

		req := pipeline.FetchRequest{
			Query:      fetchQuery,
			Category:   fetchCategory,
			City:       fetchCity,
			MaxResults: fetchMaxResults,
			MinReviews: fetchMinReviews,
		}
		if !cmd.Flags().Changed("max-results") {
			req.MaxResults = cfg.Pipeline.MaxResults
		}
		if !cmd.Flags().Changed("min-reviews") {
			req.MinReviews = cfg.Pipeline.MinReviews
		}

		run, err := env.Pipeline.Fetch(cmd.Context(), req)
		if err != nil {
			return eris.Wrap(err, "fetch")
		}

		runs, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		if runs != nil {
			defer runs.Close()
			if err := runs.SaveRun(cmd.Context(), run); err != nil {
				return eris.Wrap(err, "save run")
			}
		}

		zap.L().Info("fetch complete",
			zap.String("run_id", run.ID.String()),
			zap.Int("items", len(run.Items)),
			zap.Int("failures", len(run.Failures)),
		)

		if fetchHTML != "" {
			html := render.HTML(run.Items, time.Now())
			if err := os.WriteFile(fetchHTML, []byte(html), 0o644); err != nil {
				return eris.Wrap(err, "write html")
			}
		}

		return writeJSON(cmd.OutOrStdout(), fetchOut, run)
	},
}

// writeJSON encodes v as indented JSON to path, or to w when path is empty.
func writeJSON(w io.Writer, path string, v any) error {
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrap(err, "create output")
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "encode output")
	}
	return nil
}

// readRun loads a run written by fetch.
func readRun(path string) (*model.Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read run %s", path)
	}
	var run model.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, eris.Wrapf(err, "decode run %s", path)
	}
	return &run, nil
}

func init() {
	fetchCmd.Flags().StringVar(&fetchCity, "city", "", "city preset key (required)")
	fetchCmd.Flags().StringVar(&fetchCategory, "category", "", "category preset key, used to build the query")
	fetchCmd.Flags().StringVar(&fetchQuery, "query", "", "free-text search query (overrides --category)")
	fetchCmd.Flags().IntVar(&fetchMaxResults, "max-results", 0, "maximum search hits, 1-20 (default from config)")
	fetchCmd.Flags().IntVar(&fetchMinReviews, "min-reviews", 0, "minimum review count (default from config)")
	fetchCmd.Flags().StringVar(&fetchOut, "out", "", "write the run JSON to this file instead of stdout")
	fetchCmd.Flags().StringVar(&fetchHTML, "html", "", "also write the rendered HTML to this file")
	_ = fetchCmd.MarkFlagRequired("city")
	rootCmd.AddCommand(fetchCmd)
}
