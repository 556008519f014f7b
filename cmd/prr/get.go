package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danobi/prr/internal/forge"
	"github.com/danobi/prr/internal/review"
	"github.com/danobi/prr/internal/ui"
)

var (
	getForce  bool
	getNoEdit bool
)

var getCmd = &cobra.Command{
	Use:   "get <pr-ref>",
	Short: "Fetch a pull/merge request and start a review",
	Long: `Fetches the diff for a pull or merge request and writes it to a local
review file, ready for annotation. Refuses to overwrite an unsubmitted
review unless --force is given.

pr-ref accepts:
  danobi/prr/24
  gitlab:group/proj/9
  https://github.com/danobi/prr/pull/24`,
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

		f, err := buildForge(cfg, ref.Host)
		if err != nil {
			fmt.Println(ui.Failure(err.Error()))
			return err
		}

		log.Info("fetching diff", "host", ref.Host, "owner", ref.Owner, "repo", ref.Repo, "number", ref.Number)

		ctx := context.Background()
		diff, err := f.FetchDiff(ctx, ref.Owner, ref.Repo, ref.Number)
		if err != nil {
			fmt.Println(ui.Failure(err.Error()))
			return err
		}

		workdir, err := cfg.ReviewWorkdir(ref.Host.String())
		if err != nil {
			return err
		}

		r, err := review.New(workdir, diff.Patch, ref.Owner, ref.Repo, ref.Number,
			review.Extra{BaseSHA: diff.BaseSHA, HeadSHA: diff.HeadSHA}, getForce)
		if err != nil {
			fmt.Println(ui.Failure(err.Error()))
			return err
		}

		fmt.Println(ui.Success("Review file ready:"))
		fmt.Println(ui.Path(r.Path()))

		if getNoEdit {
			return nil
		}
		if err := openInEditor(r.Path()); err != nil {
			fmt.Println(ui.Failure(err.Error()))
			return err
		}
		return nil
	},
}

func init() {
	getCmd.Flags().BoolVarP(&getForce, "force", "f", false, "overwrite an unsubmitted review, if one exists")
	getCmd.Flags().BoolVar(&getNoEdit, "no-edit", false, "skip launching $EDITOR after fetching")
}
