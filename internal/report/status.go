package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/clintrovert/releasekit/internal/reconcile"
	"github.com/clintrovert/releasekit/pkg/types"
)

// NoCommits is printed when the compared refs have no commits between them
const NoCommits = "No commits found"

// ReleaseStatus lays out the reconciliation report of a release window
func ReleaseStatus(r *reconcile.Report, query types.WorkItemQuery) []Node {
	if r.NoWork {
		return []Node{Line(NoCommits)}
	}

	first := r.Window.Commits[0].AuthoredAt
	last := r.Window.Commits[len(r.Window.Commits)-1].AuthoredAt
	subject := query.Describe()

	nodes := []Node{
		Linef("commit date range: %s - %s", timestamp(first), timestamp(last)),
		Linef("merge base: %s (%s)", shortSHA(r.Window.MergeBase.SHA), timestamp(r.Window.MergeBase.AuthoredAt)),
		Linef("found %d commits with messages that look like PR merges", r.PRMergeCommits),
		Linef("found %d PRs updated after the merge base", r.UpdatedPullRequests),
		Linef("found %d PRs with merge commits", len(r.Merged)),
	}

	nodes = append(nodes, section("Work items for "+subject, workItemNodes(r.WorkItems))...)
	nodes = append(nodes, section("Merged PRs", pullRequestNodes(r.Merged))...)
	nodes = append(nodes, section("Merged PRs without a work item for "+subject, pullRequestNodes(r.Unlinked))...)
	nodes = append(nodes, section("Work items for "+subject+" without PRs", workItemNodes(r.WithoutPRs))...)
	nodes = append(nodes, section("Non-accepted work items for "+subject, workItemNodes(r.NonAccepted))...)

	open := make([]Node, 0, len(r.OpenLinked))
	for _, l := range r.OpenLinked {
		open = append(open, Linef("%s has open PR: #%d", l.WorkItem.Key, l.PullRequest.Number))
	}
	nodes = append(nodes, section("Open PRs linked to work items", open)...)

	warnings := make([]Node, 0, len(r.Warnings))
	for _, w := range r.Warnings {
		warnings = append(warnings, Line(w.Message))
	}
	nodes = append(nodes, section("Warnings", warnings)...)

	return nodes
}

// section prints a blank line and then either the label followed by its
// entries or "No <label>".
func section(label string, entries []Node) []Node {
	if len(entries) == 0 {
		return []Node{Blank(), Line("No " + label)}
	}
	return append([]Node{Blank(), Header(label)}, entries...)
}

func workItemNodes(items []types.WorkItem) []Node {
	nodes := make([]Node, 0, len(items))
	for _, item := range items {
		prs := make([]string, 0, len(item.LinkedPRs))
		for _, ref := range item.LinkedPRs {
			prs = append(prs, strconv.Itoa(ref.Number))
		}
		nodes = append(nodes, Item(item.Key, item.URL, fmt.Sprintf("%s: %s", item.Kind, item.Title),
			Linef("PRs: %s State: %s", strings.Join(prs, ","), item.State),
			Line(item.URL),
		))
	}
	return nodes
}

func pullRequestNodes(prs []types.PullRequest) []Node {
	nodes := make([]Node, 0, len(prs))
	for _, pr := range prs {
		children := []Node{Line(pr.HTMLURL)}
		if pr.MergedAt != nil {
			children = append(children, Line("merged_at: "+timestamp(*pr.MergedAt)))
		}
		if pr.Author != "" {
			children = append(children, Line("author: "+pr.Author))
		}
		if len(pr.Reviewers) > 0 {
			children = append(children, Line("reviewers: "+strings.Join(pr.Reviewers, ", ")))
		}
		nodes = append(nodes, Item("#"+strconv.Itoa(pr.Number), pr.HTMLURL, pr.Title, children...))
	}
	return nodes
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
