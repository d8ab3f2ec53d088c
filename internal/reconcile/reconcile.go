// Package reconcile matches pull requests merged in a commit window against
// the work items a tracker links to them.
package reconcile

import (
	"fmt"
	"time"

	"github.com/clintrovert/releasekit/pkg/types"
)

// UpdatedAfter returns the pull requests updated strictly after since. A pull
// request updated exactly at since belongs to the previous release.
func UpdatedAfter(prs []types.PullRequest, since time.Time) []types.PullRequest {
	out := make([]types.PullRequest, 0, len(prs))
	for _, pr := range prs {
		if pr.UpdatedAt.After(since) {
			out = append(out, pr)
		}
	}
	return out
}

// ComputeMergedPRs returns the candidates whose merge commit is part of the
// window. Candidates not updated after the window's merge base are ignored.
// An empty window returns types.ErrNoCommits.
func ComputeMergedPRs(window *types.CommitWindow, candidates []types.PullRequest) ([]types.PullRequest, error) {
	if window.Empty() {
		return nil, types.ErrNoCommits
	}

	shas := window.SHAs()
	merged := make([]types.PullRequest, 0)
	for _, pr := range UpdatedAfter(candidates, window.LowerBound()) {
		if pr.MergeCommitSHA == "" {
			continue
		}
		if _, ok := shas[pr.MergeCommitSHA]; ok {
			merged = append(merged, pr)
		}
	}
	return merged, nil
}

// FindUnlinkedMergedPRs returns the merged pull requests no work item links
// to. Only references into repo count.
func FindUnlinkedMergedPRs(merged []types.PullRequest, items []types.WorkItem, repo types.RepoRef) []types.PullRequest {
	linked := make(map[int]struct{})
	for _, item := range items {
		for _, ref := range item.LinkedPRs {
			if ref.InRepository(repo) {
				linked[ref.Number] = struct{}{}
			}
		}
	}

	out := make([]types.PullRequest, 0)
	for _, pr := range merged {
		if _, ok := linked[pr.Number]; !ok {
			out = append(out, pr)
		}
	}
	return out
}

// FindWorkItemsWithoutPRs returns the work items without any linked pull request
func FindWorkItemsWithoutPRs(items []types.WorkItem) []types.WorkItem {
	out := make([]types.WorkItem, 0)
	for _, item := range items {
		if len(item.LinkedPRs) == 0 {
			out = append(out, item)
		}
	}
	return out
}

// FindNonAcceptedWorkItems returns the work items whose state is none of the
// tracker's terminal states.
func FindNonAcceptedWorkItems(items []types.WorkItem, accepted ...string) []types.WorkItem {
	terminal := make(map[string]struct{}, len(accepted))
	for _, s := range accepted {
		terminal[s] = struct{}{}
	}

	out := make([]types.WorkItem, 0)
	for _, item := range items {
		if _, ok := terminal[item.State]; !ok {
			out = append(out, item)
		}
	}
	return out
}

// OpenLink pairs a work item with an open pull request it links to
type OpenLink struct {
	WorkItem    types.WorkItem    `json:"work_item"`
	PullRequest types.PullRequest `json:"pull_request"`
}

// FindOpenLinkedPRs returns every resolved link whose pull request is still
// open. Such work items cannot be included in a release branch yet.
func FindOpenLinkedPRs(items []types.WorkItem, resolution *Resolution) []OpenLink {
	byID := make(map[string]types.WorkItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	out := make([]OpenLink, 0)
	for _, link := range resolution.Links {
		if link.Status != LinkResolved || link.PullRequest == nil || !link.PullRequest.IsOpen() {
			continue
		}
		item, ok := byID[link.WorkItemID]
		if !ok {
			continue
		}
		out = append(out, OpenLink{WorkItem: item, PullRequest: *link.PullRequest})
	}
	return out
}

// Input is everything Reconcile needs from the upstream services
type Input struct {
	Repo           types.RepoRef
	Window         *types.CommitWindow
	PullRequests   []types.PullRequest
	WorkItems      []types.WorkItem
	AcceptedStates []string
	// Warnings collected while fetching, e.g. unparsable link ids
	Warnings []Warning
}

// Report is the outcome of reconciling a release window
type Report struct {
	Repo                types.RepoRef       `json:"repo"`
	NoWork              bool                `json:"no_work"`
	Window              *types.CommitWindow `json:"window,omitempty"`
	PRMergeCommits      int                 `json:"pr_merge_commits"`
	UpdatedPullRequests int                 `json:"updated_pull_requests"`
	WorkItems           []types.WorkItem    `json:"work_items"`
	Merged              []types.PullRequest `json:"merged"`
	Unlinked            []types.PullRequest `json:"unlinked"`
	WithoutPRs          []types.WorkItem    `json:"without_prs"`
	NonAccepted         []types.WorkItem    `json:"non_accepted"`
	OpenLinked          []OpenLink          `json:"open_linked"`
	Links               []Link              `json:"links"`
	Warnings            []Warning           `json:"warnings"`
}

// Reconcile runs every check over the fetched data. An empty window yields a
// report with NoWork set and nothing else analyzed.
func Reconcile(in Input) (*Report, error) {
	report := &Report{Repo: in.Repo, Window: in.Window}
	if in.Window.Empty() {
		report.NoWork = true
		return report, nil
	}

	merged, err := ComputeMergedPRs(in.Window, in.PullRequests)
	if err != nil {
		return nil, fmt.Errorf("failed to compute merged pull requests: %w", err)
	}

	prCommits := 0
	for _, c := range in.Window.Commits {
		if c.LooksLikePRMerge() {
			prCommits++
		}
	}

	resolution := ResolveWorkItemLinks(in.WorkItems, in.PullRequests, in.Repo)

	report.PRMergeCommits = prCommits
	report.UpdatedPullRequests = len(UpdatedAfter(in.PullRequests, in.Window.LowerBound()))
	report.WorkItems = in.WorkItems
	report.Merged = merged
	report.Unlinked = FindUnlinkedMergedPRs(merged, in.WorkItems, in.Repo)
	report.WithoutPRs = FindWorkItemsWithoutPRs(in.WorkItems)
	report.NonAccepted = FindNonAcceptedWorkItems(in.WorkItems, in.AcceptedStates...)
	report.OpenLinked = FindOpenLinkedPRs(in.WorkItems, resolution)
	report.Links = resolution.Links
	report.Warnings = append(append([]Warning{}, in.Warnings...), resolution.Warnings...)

	return report, nil
}
