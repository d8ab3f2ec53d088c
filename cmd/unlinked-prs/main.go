package main

import (
	"os"

	"github.com/spf13/pflag"

	"github.com/clintrovert/releasekit/internal/cli"
	"github.com/clintrovert/releasekit/internal/jira"
	"github.com/clintrovert/releasekit/internal/release"
	"github.com/clintrovert/releasekit/internal/report"
	"github.com/clintrovert/releasekit/pkg/types"
)

const usage = `Lists the pull requests merged since the last release that no Jira issue
of the fix version links to.

Usage:
  unlinked-prs <project> <fix-version> <repo> <base> <head> [flags]

Example:
  unlinked-prs LARA "LARA v5.0.0" lara v4.9.1 v5.0.0`

func main() {
	cli.Exit(run(os.Args[1:]))
}

func run(argv []string) error {
	fs := pflag.NewFlagSet("unlinked-prs", pflag.ContinueOnError)
	slack := fs.Bool("slack", false, "format output for Slack")
	owner := fs.String("owner", "", "GitHub owner of the repository (default GITHUB_OWNER)")
	args, err := cli.Parse(fs, usage, argv)
	if err != nil {
		return err
	}
	args, chat := cli.SplitChat(args)
	if len(args) != 5 {
		return cli.Usage("a project, a fix version, a repository, a base ref and a head ref are required", usage)
	}

	cfg, logger, err := cli.Load()
	if err != nil {
		return err
	}
	defer logger.Sync()
	if err := cfg.RequireJira(); err != nil {
		return err
	}
	if err := cfg.RequireGitHub(); err != nil {
		return err
	}
	if *owner == "" {
		*owner = cfg.GitHub.Owner
	}

	ctx, cancel := cli.Context()
	defer cancel()

	gh, err := cli.GitHubClient(cfg, logger)
	if err != nil {
		return err
	}
	tracker, err := cli.JiraClient(cfg, logger)
	if err != nil {
		return err
	}
	orchestrator := release.NewOrchestrator(gh, gh, nil, tracker, logger)

	query := types.WorkItemQuery{Project: args[0], FixVersion: args[1]}
	base, head := args[3], args[4]
	rep, err := orchestrator.Run(ctx, release.Request{
		Repo:             types.RepoRef{Owner: *owner, Name: args[2]},
		Base:             base,
		Head:             head,
		Query:            query,
		AcceptedStates:   jira.AcceptedStates,
		PullRequestState: "closed",
	})
	if err != nil {
		return err
	}

	return report.Render(os.Stdout, report.StyleFor(*slack || chat), report.UnlinkedPullRequests(rep, query, base, head))
}
