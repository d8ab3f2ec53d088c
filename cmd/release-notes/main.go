package main

import (
	"os"

	"github.com/spf13/pflag"

	"github.com/clintrovert/releasekit/internal/cli"
	"github.com/clintrovert/releasekit/internal/notes"
	"github.com/clintrovert/releasekit/internal/pivotal"
	"github.com/clintrovert/releasekit/internal/report"
)

const usage = `Generates release notes from the Pivotal Tracker stories carrying a label.

Usage:
  release-notes <pivotal-label> [slack] [--slack]

Example:
  release-notes clue-5.3.0 --slack`

func main() {
	cli.Exit(run(os.Args[1:]))
}

func run(argv []string) error {
	fs := pflag.NewFlagSet("release-notes", pflag.ContinueOnError)
	slack := fs.Bool("slack", false, "format output for Slack")
	args, err := cli.Parse(fs, usage, argv)
	if err != nil {
		return err
	}
	args, chat := cli.SplitChat(args)
	if len(args) != 1 {
		return cli.Usage("a Pivotal Tracker label is required", usage)
	}
	label := args[0]

	cfg, logger, err := cli.Load()
	if err != nil {
		return err
	}
	defer logger.Sync()
	if err := cfg.RequirePivotal(); err != nil {
		return err
	}

	ctx, cancel := cli.Context()
	defer cancel()

	client := pivotal.NewClient(cfg.Pivotal.BaseURL, cfg.Pivotal.Token, cfg.Pivotal.ProjectIDs, nil, logger)
	stories, err := client.FetchStories(ctx, pivotal.LabelQuery(label))
	if err != nil {
		return err
	}

	return report.Render(os.Stdout, report.StyleFor(*slack || chat), report.ReleaseNotes(notes.Group(stories)))
}
