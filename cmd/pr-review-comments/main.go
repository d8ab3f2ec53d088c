package main

import (
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/clintrovert/releasekit/internal/cli"
	"github.com/clintrovert/releasekit/internal/github"
	"github.com/clintrovert/releasekit/internal/review"
	"github.com/clintrovert/releasekit/pkg/types"
)

const usage = `Downloads the review comments of a GitHub pull request. By default the
output is formatted for pasting into an LLM.

Usage:
  pr-review-comments <pr-url> [flags]
  pr-review-comments <repo> <pr-number> [owner] [flags]

Examples:
  pr-review-comments https://github.com/concord-consortium/collaborative-learning/pull/123
  pr-review-comments collaborative-learning 123 --show-resolved`

func main() {
	cli.Exit(run(os.Args[1:]))
}

func run(argv []string) error {
	fs := pflag.NewFlagSet("pr-review-comments", pflag.ContinueOnError)
	showResolved := fs.Bool("show-resolved", false, "include resolved conversations")
	raw := fs.Bool("raw", false, "output all data as detailed markdown")
	ask := fs.Bool("ask", false, "ask the OpenAI model to propose a change for each issue")
	args, err := cli.Parse(fs, usage, argv)
	if err != nil {
		return err
	}

	cfg, logger, err := cli.Load()
	if err != nil {
		return err
	}
	defer logger.Sync()

	repo, number, ok := target(args, cfg.GitHub.Owner)
	if !ok {
		return cli.Usage("a pull request URL or a repository and pull request number are required", usage)
	}
	if err := cfg.RequireGitHub(); err != nil {
		return err
	}
	if *ask {
		if err := cfg.RequireOpenAI(); err != nil {
			return err
		}
	}

	ctx, cancel := cli.Context()
	defer cancel()

	gh, err := cli.GitHubClient(cfg, logger)
	if err != nil {
		return err
	}
	d, err := gh.PullRequestDiscussion(ctx, repo, number)
	if err != nil {
		return err
	}

	opts := review.Options{ShowResolved: *showResolved}
	if *raw {
		err = review.WriteRaw(os.Stdout, d, opts)
	} else {
		err = review.WriteLLM(os.Stdout, d, opts)
	}
	if err != nil || !*ask {
		return err
	}

	assistant := review.NewAIAssistant(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL, logger)
	plan, err := assistant.Propose(ctx, d)
	if err != nil {
		return err
	}
	return review.WritePlan(os.Stdout, plan)
}

// target reads either a pull request URL or repo, number and optional owner
func target(args []string, defaultOwner string) (types.RepoRef, int, bool) {
	if len(args) == 0 {
		return types.RepoRef{}, 0, false
	}
	if repo, number, err := github.ParsePullRequestURL(args[0]); err == nil {
		return repo, number, true
	}
	if len(args) < 2 || len(args) > 3 {
		return types.RepoRef{}, 0, false
	}
	number, err := strconv.Atoi(args[1])
	if err != nil || number <= 0 {
		return types.RepoRef{}, 0, false
	}
	owner := defaultOwner
	if len(args) == 3 {
		owner = args[2]
	}
	return types.RepoRef{Owner: owner, Name: args[0]}, number, true
}
