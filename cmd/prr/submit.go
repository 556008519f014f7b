package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danobi/prr/internal/forge"
	"github.com/danobi/prr/internal/review"
	"github.com/danobi/prr/internal/ui"
)

var submitDebug bool

var submitCmd = &cobra.Command{
	Use:   "submit <pr-ref>",
	Short: "Submit a review",
	Long: `Parses the review file previously written by "prr get", extracts the
overall verdict and inline comments, and submits them to the forge.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := forge.ParseRef(args[0])
		if err != nil {
			return err
		}

		cfg, log, err := loadConfigAndLogger()
		if err != nil {
			return err
		}

		workdir, err := cfg.ReviewWorkdir(ref.Host.String())
		if err != nil {
			return err
		}

		r, err := review.Existing(workdir, ref.Owner, ref.Repo, ref.Number)
		if err != nil {
			fmt.Println(ui.Failure(err.Error()))
			return err
		}

		action, body, comments, err := r.Comments()
		if err != nil {
			fmt.Println(ui.Failure(err.Error()))
			return err
		}
		if body == "" && len(comments) == 0 {
			err := fmt.Errorf("review has no comments")
			fmt.Println(ui.Failure(err.Error()))
			return err
		}

		f, err := buildForge(cfg, ref.Host)
		if err != nil {
			fmt.Println(ui.Failure(err.Error()))
			return err
		}

		req := forge.SubmitRequest{Action: action, Body: body, Comments: comments}
		if submitDebug {
			pretty, _ := json.MarshalIndent(req, "", "  ")
			fmt.Println(string(pretty))
		}

		log.Info("submitting review", "host", ref.Host, "owner", ref.Owner, "repo", ref.Repo, "number", ref.Number, "action", action)

		ctx := context.Background()
		if err := f.SubmitReview(ctx, ref.Owner, ref.Repo, ref.Number, req); err != nil {
			fmt.Println(ui.Failure(err.Error()))
			return err
		}

		if err := r.MarkSubmitted(); err != nil {
			return fmt.Errorf("review was submitted but metadata update failed: %w", err)
		}

		fmt.Println(ui.Success("Review submitted."))
		return nil
	},
}

func init() {
	submitCmd.Flags().BoolVarP(&submitDebug, "debug", "d", false, "print the review payload before submitting")
}
