// Package release gathers the data of a release window from GitHub and a work
// tracker and reconciles it.
package release

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clintrovert/releasekit/internal/github"
	"github.com/clintrovert/releasekit/internal/reconcile"
	"github.com/clintrovert/releasekit/pkg/types"
)

// maxReviewLookups bounds the concurrent review requests
const maxReviewLookups = 8

// CommitSource compares two refs of a repository
type CommitSource interface {
	CompareCommits(ctx context.Context, repo types.RepoRef, base, head string) (*types.CommitWindow, error)
}

// PullRequestSource lists the pull requests of a repository
type PullRequestSource interface {
	ListPullRequests(ctx context.Context, repo types.RepoRef, opts github.ListOptions) ([]types.PullRequest, error)
}

// ReviewSource lists the submitted reviews of a pull request
type ReviewSource interface {
	ListReviews(ctx context.Context, repo types.RepoRef, number int) ([]types.Review, error)
}

// WorkItemSource fetches the work items of a release from a tracker
type WorkItemSource interface {
	FetchWorkItems(ctx context.Context, query types.WorkItemQuery) ([]types.WorkItem, []reconcile.Warning, error)
}

// Request describes one release window to analyze
type Request struct {
	Repo  types.RepoRef
	Base  string
	Head  string
	Query types.WorkItemQuery
	// AcceptedStates are the tracker's terminal work item states
	AcceptedStates []string
	// PullRequestState filters the listed pull requests, "all" when empty
	PullRequestState string
	// WithReviews attaches the submitted reviewers to merged pull requests
	WithReviews bool
}

// Orchestrator coordinates the GitHub and tracker lookups of a release
type Orchestrator struct {
	commits   CommitSource
	pulls     PullRequestSource
	reviews   ReviewSource
	workItems WorkItemSource
	logger    *zap.Logger
}

// NewOrchestrator creates a new orchestrator. reviews may be nil when
// reviewers are never requested.
func NewOrchestrator(
	commits CommitSource,
	pulls PullRequestSource,
	reviews ReviewSource,
	workItems WorkItemSource,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		commits:   commits,
		pulls:     pulls,
		reviews:   reviews,
		workItems: workItems,
		logger:    logger,
	}
}

// Run fetches the release window and the tracker's work items concurrently
// and reconciles them. An empty window yields a report with NoWork set.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*reconcile.Report, error) {
	o.logger.Info("analyzing release",
		zap.String("repo", req.Repo.String()),
		zap.String("base", req.Base),
		zap.String("head", req.Head),
		zap.String("work_items", req.Query.Describe()),
	)

	var (
		window   *types.CommitWindow
		prs      []types.PullRequest
		items    []types.WorkItem
		warnings []reconcile.Warning
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, warnings, err = o.workItems.FetchWorkItems(gctx, req.Query)
		if err != nil {
			return fmt.Errorf("failed to fetch work items: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		window, err = o.commits.CompareCommits(gctx, req.Repo, req.Base, req.Head)
		if err != nil {
			return fmt.Errorf("failed to compare commits: %w", err)
		}
		if window.Empty() {
			return nil
		}

		state := req.PullRequestState
		if state == "" {
			state = "all"
		}
		prs, err = o.pulls.ListPullRequests(gctx, req.Repo, github.ListOptions{
			State:        state,
			Sort:         "updated",
			Direction:    "desc",
			UpdatedAfter: window.LowerBound(),
		})
		if err != nil {
			return fmt.Errorf("failed to list pull requests: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if window.Empty() {
		o.logger.Info("no commits found", zap.String("base", req.Base), zap.String("head", req.Head))
		return &reconcile.Report{Repo: req.Repo, Window: window, NoWork: true}, nil
	}

	if req.WithReviews && o.reviews != nil {
		if err := o.attachReviewers(ctx, req.Repo, window, prs); err != nil {
			return nil, err
		}
	}

	report, err := reconcile.Reconcile(reconcile.Input{
		Repo:           req.Repo,
		Window:         window,
		PullRequests:   prs,
		WorkItems:      items,
		AcceptedStates: req.AcceptedStates,
		Warnings:       warnings,
	})
	if err != nil {
		return nil, err
	}

	for _, w := range report.Warnings {
		o.logger.Warn(w.Message,
			zap.String("kind", string(w.Kind)),
			zap.String("work_item", w.WorkItemID),
			zap.String("ref", w.Ref),
		)
	}

	o.logger.Info("release analyzed",
		zap.Int("commits", len(window.Commits)),
		zap.Int("merged", len(report.Merged)),
		zap.Int("unlinked", len(report.Unlinked)),
		zap.Int("warnings", len(report.Warnings)),
	)

	return report, nil
}

// attachReviewers adds the submitted reviewers of every merged pull request
// to its Reviewers, keeping the requested ones first.
func (o *Orchestrator) attachReviewers(ctx context.Context, repo types.RepoRef, window *types.CommitWindow, prs []types.PullRequest) error {
	merged, err := reconcile.ComputeMergedPRs(window, prs)
	if err != nil {
		return err
	}
	wanted := make(map[int]struct{}, len(merged))
	for _, pr := range merged {
		wanted[pr.Number] = struct{}{}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxReviewLookups)
	for i := range prs {
		if _, ok := wanted[prs[i].Number]; !ok {
			continue
		}
		pr := &prs[i]
		g.Go(func() error {
			reviews, err := o.reviews.ListReviews(gctx, repo, pr.Number)
			if err != nil {
				return fmt.Errorf("failed to list reviews of #%d: %w", pr.Number, err)
			}
			pr.Reviewers = mergeReviewers(pr.Reviewers, reviews)
			return nil
		})
	}
	return g.Wait()
}

func mergeReviewers(requested []string, reviews []types.Review) []string {
	seen := make(map[string]struct{}, len(requested)+len(reviews))
	out := make([]string, 0, len(requested)+len(reviews))
	for _, r := range requested {
		if _, ok := seen[r]; !ok {
			seen[r] = struct{}{}
			out = append(out, r)
		}
	}
	for _, r := range reviews {
		if _, ok := seen[r.Reviewer]; !ok && r.Reviewer != "" {
			seen[r.Reviewer] = struct{}{}
			out = append(out, r.Reviewer)
		}
	}
	return out
}
