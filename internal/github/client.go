package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/clintrovert/releasekit/internal/pager"
	"github.com/clintrovert/releasekit/pkg/types"
)

const perPage = 100

// Client wraps the GitHub REST and GraphQL APIs
type Client struct {
	apiClient *github.Client
	logger    *zap.Logger
}

// NewClient creates a new GitHub client. An empty baseURL uses api.github.com.
func NewClient(accessToken, baseURL string, logger *zap.Logger) (*Client, error) {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: accessToken},
	)
	tc := oauth2.NewClient(ctx, ts)

	apiClient := github.NewClient(tc)
	if baseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("failed to parse github base url: %w", err)
		}
		apiClient.BaseURL = u
	}

	return &Client{
		apiClient: apiClient,
		logger:    logger,
	}, nil
}

// CompareCommits returns the commits between base and head, oldest first,
// following every page of the comparison.
func (c *Client) CompareCommits(ctx context.Context, repo types.RepoRef, base, head string) (*types.CommitWindow, error) {
	window := &types.CommitWindow{Base: base, Head: head}

	fetch := func(ctx context.Context, page int) ([]types.Commit, int, error) {
		cmp, resp, err := c.apiClient.Repositories.CompareCommits(ctx, repo.Owner, repo.Name, base, head,
			&github.ListOptions{Page: page, PerPage: perPage})
		if err != nil {
			return nil, 0, upstreamError(resp, fmt.Errorf("failed to compare %s...%s: %w", base, head, err))
		}
		if mb := cmp.GetMergeBaseCommit(); mb != nil && window.MergeBase.SHA == "" {
			window.MergeBase = toCommit(mb)
		}
		commits := make([]types.Commit, 0, len(cmp.Commits))
		for _, rc := range cmp.Commits {
			commits = append(commits, toCommit(rc))
		}
		return commits, resp.NextPage, nil
	}

	commits, err := pager.Collect(ctx, 0, fetch, nil)
	if err != nil {
		return nil, err
	}
	window.Commits = commits

	c.logger.Debug("compared commits",
		zap.String("repo", repo.String()),
		zap.String("base", base),
		zap.String("head", head),
		zap.Int("commits", len(commits)),
	)

	return window, nil
}

// ListOptions filters a pull request listing
type ListOptions struct {
	State     string
	Sort      string
	Direction string
	// UpdatedAfter stops the listing once a page reaches pull requests
	// updated before it. Only honored when sorting by update time descending.
	UpdatedAfter time.Time
}

func (o ListOptions) stopsEarly() bool {
	return !o.UpdatedAfter.IsZero() && o.Sort == "updated" && o.Direction == "desc"
}

// ListPullRequests lists the pull requests of repo
func (c *Client) ListPullRequests(ctx context.Context, repo types.RepoRef, opts ListOptions) ([]types.PullRequest, error) {
	fetch := func(ctx context.Context, page int) ([]types.PullRequest, int, error) {
		prs, resp, err := c.apiClient.PullRequests.List(ctx, repo.Owner, repo.Name, &github.PullRequestListOptions{
			State:       opts.State,
			Sort:        opts.Sort,
			Direction:   opts.Direction,
			ListOptions: github.ListOptions{Page: page, PerPage: perPage},
		})
		if err != nil {
			return nil, 0, upstreamError(resp, fmt.Errorf("failed to list pull requests: %w", err))
		}
		out := make([]types.PullRequest, 0, len(prs))
		for _, pr := range prs {
			out = append(out, toPullRequest(pr))
		}
		return out, resp.NextPage, nil
	}

	var stop pager.StopFunc[types.PullRequest]
	if opts.stopsEarly() {
		stop = func(page []types.PullRequest) bool {
			for _, pr := range page {
				if pr.UpdatedAt.Before(opts.UpdatedAfter) {
					return true
				}
			}
			return false
		}
	}

	prs, err := pager.Collect(ctx, 0, fetch, stop)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("listed pull requests",
		zap.String("repo", repo.String()),
		zap.String("state", opts.State),
		zap.Int("count", len(prs)),
	)

	return prs, nil
}

// ListReviews lists the submitted reviews of a pull request
func (c *Client) ListReviews(ctx context.Context, repo types.RepoRef, number int) ([]types.Review, error) {
	fetch := func(ctx context.Context, page int) ([]types.Review, int, error) {
		reviews, resp, err := c.apiClient.PullRequests.ListReviews(ctx, repo.Owner, repo.Name, number,
			&github.ListOptions{Page: page, PerPage: perPage})
		if err != nil {
			return nil, 0, upstreamError(resp, fmt.Errorf("failed to list reviews of #%d: %w", number, err))
		}
		out := make([]types.Review, 0, len(reviews))
		for _, r := range reviews {
			out = append(out, types.Review{
				Reviewer:    r.GetUser().GetLogin(),
				State:       r.GetState(),
				Body:        r.GetBody(),
				SubmittedAt: r.GetSubmittedAt().Time,
			})
		}
		return out, resp.NextPage, nil
	}

	return pager.Collect(ctx, 0, fetch, nil)
}

func toCommit(rc *github.RepositoryCommit) types.Commit {
	return types.Commit{
		SHA:        rc.GetSHA(),
		Message:    types.FirstLine(rc.GetCommit().GetMessage()),
		AuthoredAt: rc.GetCommit().GetAuthor().GetDate().Time,
	}
}

func toPullRequest(pr *github.PullRequest) types.PullRequest {
	out := types.PullRequest{
		Number:         pr.GetNumber(),
		Title:          pr.GetTitle(),
		HTMLURL:        pr.GetHTMLURL(),
		State:          types.PullRequestState(pr.GetState()),
		MergeCommitSHA: pr.GetMergeCommitSHA(),
		UpdatedAt:      pr.GetUpdatedAt().Time,
		Author:         pr.GetUser().GetLogin(),
	}
	if pr.MergedAt != nil {
		merged := pr.GetMergedAt().Time
		out.MergedAt = &merged
	}
	for _, l := range pr.Labels {
		out.Labels = append(out.Labels, l.GetName())
	}
	for _, u := range pr.RequestedReviewers {
		out.Reviewers = append(out.Reviewers, u.GetLogin())
	}
	return out
}

// upstreamError converts a failed response into a types.UpstreamError
func upstreamError(resp *github.Response, err error) error {
	status := 0
	text := ""
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		status = ghErr.Response.StatusCode
		text = http.StatusText(status)
	} else if resp != nil && resp.Response != nil {
		status = resp.StatusCode
		text = http.StatusText(status)
	}
	if status == 0 {
		return err
	}
	return &types.UpstreamError{Service: "github", StatusCode: status, Status: text, Err: err}
}
