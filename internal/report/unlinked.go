package report

import (
	"fmt"

	"github.com/clintrovert/releasekit/internal/reconcile"
	"github.com/clintrovert/releasekit/pkg/types"
)

// UnlinkedPullRequests lays out the merged pull requests of a release and
// the ones no Jira issue of the fix version links to.
func UnlinkedPullRequests(r *reconcile.Report, query types.WorkItemQuery, base, head string) []Node {
	if r.NoWork {
		return []Node{Line(NoCommits)}
	}

	nodes := []Node{Linef("🔍 Found %d PRs merged between %s and %s.", len(r.Merged), base, head)}
	for _, pr := range r.Merged {
		nodes = append(nodes, Line(byline("-", pr)))
	}

	linked := LinkedNumbers(r.WorkItems, r.Repo)
	nodes = append(nodes,
		Blank(),
		Linef("🔍 Found %d PRs linked to Jira issues in project %s with fix version %q.",
			len(linked), query.Project, query.FixVersion),
	)
	for _, n := range linked {
		nodes = append(nodes, Linef("- jiraPR #%d", n))
	}

	nodes = append(nodes,
		Blank(),
		Line("🔍 PRs Merged Since Last Release Without a Linked Jira Issue:"),
		Blank(),
	)
	if len(r.Unlinked) == 0 {
		nodes = append(nodes, Line("✅ No untracked PRs found."))
	}
	for _, pr := range r.Unlinked {
		nodes = append(nodes, Line(byline("❌", pr)))
	}

	if len(r.Warnings) > 0 {
		warnings := make([]Node, 0, len(r.Warnings))
		for _, w := range r.Warnings {
			warnings = append(warnings, Line("⚠️ "+w.Message))
		}
		nodes = append(nodes, section("Warnings", warnings)...)
	}
	return nodes
}

// LinkedNumbers returns the distinct pull request numbers the work items
// link to in repo, in order of first appearance.
func LinkedNumbers(items []types.WorkItem, repo types.RepoRef) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, item := range items {
		for _, ref := range item.LinkedPRs {
			if !ref.InRepository(repo) {
				continue
			}
			if _, ok := seen[ref.Number]; ok {
				continue
			}
			seen[ref.Number] = struct{}{}
			out = append(out, ref.Number)
		}
	}
	return out
}

func byline(marker string, pr types.PullRequest) string {
	return fmt.Sprintf("%s %s - %s (by %s)", marker, pr.HTMLURL, pr.Title, pr.Author)
}
