package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/clintrovert/releasekit/internal/cli"
	"github.com/clintrovert/releasekit/internal/notes"
	"github.com/clintrovert/releasekit/internal/report"
)

const usage = `Generates release notes from completed Jira stories and bugs.

Usage:
  release-notes-jira <project> <fix-version> [slack] [--slack]

Example:
  release-notes-jira LARA "LARA v5.0.0" --slack`

func main() {
	cli.Exit(run(os.Args[1:]))
}

func run(argv []string) error {
	fs := pflag.NewFlagSet("release-notes-jira", pflag.ContinueOnError)
	slack := fs.Bool("slack", false, "format output for Slack")
	args, err := cli.Parse(fs, usage, argv)
	if err != nil {
		return err
	}
	args, chat := cli.SplitChat(args)
	if len(args) != 2 {
		return cli.Usage("both a Jira project key and a Jira fix version value are required", usage)
	}
	project, fixVersion := args[0], args[1]

	cfg, logger, err := cli.Load()
	if err != nil {
		return err
	}
	defer logger.Sync()
	if err := cfg.RequireJira(); err != nil {
		return err
	}

	ctx, cancel := cli.Context()
	defer cancel()

	client, err := cli.JiraClient(cfg, logger)
	if err != nil {
		return err
	}
	items, err := client.ReleaseNoteItems(ctx, project, fixVersion)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("no stories found for project %s with fix version %s", project, fixVersion)
	}

	return report.Render(os.Stdout, report.StyleFor(*slack || chat), report.ReleaseNotes(notes.Group(items)))
}
