package main

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mahmoudd2003/list/internal/apperr"
	"github.com/mahmoudd2003/list/internal/model"
	"github.com/mahmoudd2003/list/internal/render"
	"github.com/mahmoudd2003/list/pkg/wordpress"
)

var (
	publishIn     string
	publishRunID  string
	publishTitle  string
	publishPostID int64
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Render a saved run and save it as a WordPress draft",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("publish"); err != nil {
			return err
		}
		run, err := loadRun(cmd.Context(), publishIn, publishRunID)
		if err != nil {
			return err
		}
		wp, err := initPublisher()
		if err != nil {
			return err
		}

		post, err := publishDraft(cmd.Context(), wp, publishTitle, run.Items, publishPostID, time.Now())
		if err != nil {
			return err
		}
		if publishRunID != "" {
			if err := markPublished(cmd.Context(), run, post); err != nil {
				return err
			}
		}
		return writeJSON(cmd.OutOrStdout(), "", post)
	},
}

// publishDraft renders items and saves them as a draft under title.
// Empty titles and empty item lists are rejected before any request.
func publishDraft(ctx context.Context, wp wordpress.Client, title string, items []model.Item, postID int64, now time.Time) (*wordpress.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.NewConfigError("title", "title is required")
	}
	if len(items) == 0 {
		return nil, apperr.NewConfigError("items", "nothing to publish")
	}

	doc := render.Render(items, title, now)
	post, err := wp.SaveDraft(ctx, doc.Title, doc.HTML, postID)
	if err != nil {
		return nil, eris.Wrap(err, "publish draft")
	}

	zap.L().Info("draft saved",
		zap.Int64("post_id", post.ID),
		zap.String("status", post.Status),
		zap.String("link", post.Link),
		zap.Int("items", len(items)),
	)
	return post, nil
}

// markPublished records post against run in the run history store.
func markPublished(ctx context.Context, run *model.Run, post *wordpress.Post) error {
	s, err := requireStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.MarkPublished(ctx, run.ID, post.ID, post.Link); err != nil {
		return eris.Wrap(err, "record published run")
	}
	return nil
}

func init() {
	publishCmd.Flags().StringVar(&publishIn, "in", "", "run JSON written by fetch")
	publishCmd.Flags().StringVar(&publishRunID, "run-id", "", "stored run to publish instead of --in")
	publishCmd.Flags().StringVar(&publishTitle, "title", "", "post title (required)")
	publishCmd.Flags().Int64Var(&publishPostID, "post-id", 0, "update this existing post instead of creating one")
	publishCmd.MarkFlagsOneRequired("in", "run-id")
	publishCmd.MarkFlagsMutuallyExclusive("in", "run-id")
	_ = publishCmd.MarkFlagRequired("title")
	rootCmd.AddCommand(publishCmd)
}
