package release

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clintrovert/releasekit/internal/github"
	"github.com/clintrovert/releasekit/internal/reconcile"
	"github.com/clintrovert/releasekit/pkg/types"
)

type commitsMock struct{ mock.Mock }

func (m *commitsMock) CompareCommits(ctx context.Context, repo types.RepoRef, base, head string) (*types.CommitWindow, error) {
	args := m.Called(ctx, repo, base, head)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.CommitWindow), args.Error(1)
}

type pullsMock struct{ mock.Mock }

func (m *pullsMock) ListPullRequests(ctx context.Context, repo types.RepoRef, opts github.ListOptions) ([]types.PullRequest, error) {
	args := m.Called(ctx, repo, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.PullRequest), args.Error(1)
}

type reviewsMock struct{ mock.Mock }

func (m *reviewsMock) ListReviews(ctx context.Context, repo types.RepoRef, number int) ([]types.Review, error) {
	args := m.Called(ctx, repo, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Review), args.Error(1)
}

type workItemsMock struct{ mock.Mock }

func (m *workItemsMock) FetchWorkItems(ctx context.Context, query types.WorkItemQuery) ([]types.WorkItem, []reconcile.Warning, error) {
	args := m.Called(ctx, query)
	var (
		items    []types.WorkItem
		warnings []reconcile.Warning
	)
	if args.Get(0) != nil {
		items = args.Get(0).([]types.WorkItem)
	}
	if args.Get(1) != nil {
		warnings = args.Get(1).([]reconcile.Warning)
	}
	return items, warnings, args.Error(2)
}

var (
	_ CommitSource      = (*commitsMock)(nil)
	_ PullRequestSource = (*pullsMock)(nil)
	_ ReviewSource      = (*reviewsMock)(nil)
	_ WorkItemSource    = (*workItemsMock)(nil)

	repo      = types.RepoRef{Owner: "concord-consortium", Name: "clue"}
	mergeBase = time.Date(2024, 2, 20, 12, 0, 0, 0, time.UTC)
	query     = types.WorkItemQuery{Label: "clue-5.3"}
)

func testWindow() *types.CommitWindow {
	return &types.CommitWindow{
		Base:      "v5.2.0",
		Head:      "master",
		MergeBase: types.Commit{SHA: "base", AuthoredAt: mergeBase},
		Commits: []types.Commit{
			{SHA: "m1", Message: "Merge pull request #10", AuthoredAt: mergeBase.Add(time.Hour)},
			{SHA: "m2", Message: "Merge pull request #11", AuthoredAt: mergeBase.Add(2 * time.Hour)},
		},
	}
}

func testPullRequests() []types.PullRequest {
	merged := mergeBase.Add(time.Hour)
	return []types.PullRequest{
		{Number: 10, State: types.PullRequestClosed, MergeCommitSHA: "m1", MergedAt: &merged, UpdatedAt: merged, Reviewers: []string{"alice"}},
		{Number: 11, State: types.PullRequestClosed, MergeCommitSHA: "m2", MergedAt: &merged, UpdatedAt: merged},
		{Number: 12, State: types.PullRequestOpen, UpdatedAt: merged},
	}
}

func TestRunReconcilesRelease(t *testing.T) {
	commits := &commitsMock{}
	pulls := &pullsMock{}
	items := &workItemsMock{}

	commits.On("CompareCommits", mock.Anything, repo, "v5.2.0", "master").Return(testWindow(), nil)
	pulls.On("ListPullRequests", mock.Anything, repo, github.ListOptions{
		State:        "all",
		Sort:         "updated",
		Direction:    "desc",
		UpdatedAfter: mergeBase,
	}).Return(testPullRequests(), nil)
	items.On("FetchWorkItems", mock.Anything, query).Return([]types.WorkItem{
		{ID: "1", State: "accepted", LinkedPRs: []types.PRRef{{Owner: "concord-consortium", Repo: "clue", Number: 10}}},
		{ID: "2", State: "started", LinkedPRs: []types.PRRef{{Owner: "concord-consortium", Repo: "clue", Number: 12}}},
		{ID: "3", State: "delivered"},
	}, []reconcile.Warning{{Kind: reconcile.WarningInvalidReference, WorkItemID: "3", Message: "bad id"}}, nil)

	o := NewOrchestrator(commits, pulls, nil, items, zap.NewNop())
	report, err := o.Run(context.Background(), Request{
		Repo:           repo,
		Base:           "v5.2.0",
		Head:           "master",
		Query:          query,
		AcceptedStates: []string{"accepted"},
		WithReviews:    true,
	})
	require.NoError(t, err)

	assert.False(t, report.NoWork)
	assert.Equal(t, 2, report.PRMergeCommits)
	require.Len(t, report.Merged, 2)
	require.Len(t, report.Unlinked, 1)
	assert.Equal(t, 11, report.Unlinked[0].Number)
	require.Len(t, report.WithoutPRs, 1)
	assert.Equal(t, "3", report.WithoutPRs[0].ID)
	assert.Len(t, report.NonAccepted, 2)
	require.Len(t, report.OpenLinked, 1)
	assert.Equal(t, 12, report.OpenLinked[0].PullRequest.Number)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "bad id", report.Warnings[0].Message)

	commits.AssertExpectations(t)
	pulls.AssertExpectations(t)
	items.AssertExpectations(t)
}

func TestRunEmptyWindowSkipsPullRequests(t *testing.T) {
	commits := &commitsMock{}
	pulls := &pullsMock{}
	items := &workItemsMock{}

	commits.On("CompareCommits", mock.Anything, repo, "v1", "v1").
		Return(&types.CommitWindow{Base: "v1", Head: "v1"}, nil)
	items.On("FetchWorkItems", mock.Anything, query).Return(nil, nil, nil)

	o := NewOrchestrator(commits, pulls, nil, items, zap.NewNop())
	report, err := o.Run(context.Background(), Request{Repo: repo, Base: "v1", Head: "v1", Query: query})
	require.NoError(t, err)

	assert.True(t, report.NoWork)
	assert.Empty(t, report.Merged)
	pulls.AssertNotCalled(t, "ListPullRequests", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunUsesRequestedPullRequestState(t *testing.T) {
	commits := &commitsMock{}
	pulls := &pullsMock{}
	items := &workItemsMock{}

	commits.On("CompareCommits", mock.Anything, repo, "v5.2.0", "master").Return(testWindow(), nil)
	pulls.On("ListPullRequests", mock.Anything, repo, mock.MatchedBy(func(o github.ListOptions) bool {
		return o.State == "closed"
	})).Return([]types.PullRequest{}, nil)
	items.On("FetchWorkItems", mock.Anything, query).Return([]types.WorkItem{}, nil, nil)

	o := NewOrchestrator(commits, pulls, nil, items, zap.NewNop())
	report, err := o.Run(context.Background(), Request{
		Repo: repo, Base: "v5.2.0", Head: "master", Query: query, PullRequestState: "closed",
	})
	require.NoError(t, err)
	assert.Empty(t, report.Merged)
	pulls.AssertExpectations(t)
}

func TestRunAttachesReviewersToMergedPullRequests(t *testing.T) {
	commits := &commitsMock{}
	pulls := &pullsMock{}
	reviews := &reviewsMock{}
	items := &workItemsMock{}

	commits.On("CompareCommits", mock.Anything, repo, "v5.2.0", "master").Return(testWindow(), nil)
	pulls.On("ListPullRequests", mock.Anything, repo, mock.Anything).Return(testPullRequests(), nil)
	items.On("FetchWorkItems", mock.Anything, query).Return([]types.WorkItem{}, nil, nil)
	reviews.On("ListReviews", mock.Anything, repo, 10).Return([]types.Review{
		{Reviewer: "bob", State: "APPROVED"},
		{Reviewer: "alice", State: "COMMENTED"},
	}, nil)
	reviews.On("ListReviews", mock.Anything, repo, 11).Return([]types.Review{}, nil)

	o := NewOrchestrator(commits, pulls, reviews, items, zap.NewNop())
	report, err := o.Run(context.Background(), Request{
		Repo: repo, Base: "v5.2.0", Head: "master", Query: query, WithReviews: true,
	})
	require.NoError(t, err)

	require.Len(t, report.Merged, 2)
	assert.Equal(t, []string{"alice", "bob"}, report.Merged[0].Reviewers)
	assert.Empty(t, report.Merged[1].Reviewers)
	reviews.AssertExpectations(t)
	reviews.AssertNotCalled(t, "ListReviews", mock.Anything, repo, 12)
}

func TestRunPropagatesUpstreamErrors(t *testing.T) {
	commits := &commitsMock{}
	pulls := &pullsMock{}
	items := &workItemsMock{}

	upstream := &types.UpstreamError{Service: "jira", StatusCode: 401}
	commits.On("CompareCommits", mock.Anything, repo, "v5.2.0", "master").Return(testWindow(), nil).Maybe()
	pulls.On("ListPullRequests", mock.Anything, repo, mock.Anything).Return([]types.PullRequest{}, nil).Maybe()
	items.On("FetchWorkItems", mock.Anything, query).Return(nil, nil, upstream)

	o := NewOrchestrator(commits, pulls, nil, items, zap.NewNop())
	_, err := o.Run(context.Background(), Request{Repo: repo, Base: "v5.2.0", Head: "master", Query: query})
	require.ErrorIs(t, err, types.ErrUnauthorized)

	var target *types.UpstreamError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "jira", target.Service)
}
