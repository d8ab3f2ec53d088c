package main

import (
	"os"

	"github.com/spf13/pflag"

	"github.com/clintrovert/releasekit/internal/cli"
	"github.com/clintrovert/releasekit/internal/git"
	"github.com/clintrovert/releasekit/internal/pivotal"
	"github.com/clintrovert/releasekit/internal/release"
	"github.com/clintrovert/releasekit/internal/report"
	"github.com/clintrovert/releasekit/pkg/types"
)

const usage = `Audits the pull requests merged between two refs against the Pivotal
Tracker stories carrying a label.

Usage:
  release-status <pivotal-label> <repo> <base> <head> [flags]

Example:
  release-status clue-5.3.0 collaborative-learning v5.2.0 master --reviews`

func main() {
	cli.Exit(run(os.Args[1:]))
}

func run(argv []string) error {
	fs := pflag.NewFlagSet("release-status", pflag.ContinueOnError)
	slack := fs.Bool("slack", false, "format output for Slack")
	repoPath := fs.String("repo-path", "", "compare commits in this local clone instead of calling GitHub")
	reviews := fs.Bool("reviews", false, "list the reviewers of merged pull requests")
	owner := fs.String("owner", "", "GitHub owner of the repository (default GITHUB_OWNER)")
	args, err := cli.Parse(fs, usage, argv)
	if err != nil {
		return err
	}
	args, chat := cli.SplitChat(args)
	if len(args) != 4 {
		return cli.Usage("a label, a repository, a base ref and a head ref are required", usage)
	}

	cfg, logger, err := cli.Load()
	if err != nil {
		return err
	}
	defer logger.Sync()
	if err := cfg.RequirePivotal(); err != nil {
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
	var commits release.CommitSource = gh
	if *repoPath != "" {
		local, err := git.Open(*repoPath, logger)
		if err != nil {
			return err
		}
		commits = local
	}

	tracker := pivotal.NewClient(cfg.Pivotal.BaseURL, cfg.Pivotal.Token, cfg.Pivotal.ProjectIDs, nil, logger)
	orchestrator := release.NewOrchestrator(commits, gh, gh, tracker, logger)

	query := types.WorkItemQuery{Label: args[0]}
	rep, err := orchestrator.Run(ctx, release.Request{
		Repo:           types.RepoRef{Owner: *owner, Name: args[1]},
		Base:           args[2],
		Head:           args[3],
		Query:          query,
		AcceptedStates: []string{pivotal.AcceptedState},
		WithReviews:    *reviews,
	})
	if err != nil {
		return err
	}

	return report.Render(os.Stdout, report.StyleFor(*slack || chat), report.ReleaseStatus(rep, query))
}
