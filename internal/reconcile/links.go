package reconcile

import (
	"fmt"

	"github.com/clintrovert/releasekit/pkg/types"
)

// LinkStatus is the outcome of resolving a work item's PR reference
type LinkStatus string

const (
	LinkResolved        LinkStatus = "resolved"
	LinkCrossRepository LinkStatus = "cross-repository"
	LinkNotFetched      LinkStatus = "not-fetched"
)

// Link associates a work item with a pull request reference. PullRequest
// points into the fetched collection and is nil unless Status is resolved.
type Link struct {
	WorkItemID  string             `json:"work_item_id"`
	Ref         types.PRRef        `json:"ref"`
	Status      LinkStatus         `json:"status"`
	PullRequest *types.PullRequest `json:"-"`
}

// WarningKind classifies a non-fatal data anomaly
type WarningKind string

const (
	WarningCrossRepository  WarningKind = "cross-repository"
	WarningPRNotFetched     WarningKind = "pr-not-fetched"
	WarningInvalidReference WarningKind = "invalid-reference"
)

// Warning is reported alongside the results instead of aborting the run
type Warning struct {
	Kind       WarningKind `json:"kind"`
	WorkItemID string      `json:"work_item_id"`
	Ref        string      `json:"ref"`
	Message    string      `json:"message"`
}

func (w Warning) String() string {
	return w.Message
}

// Resolution is the association table produced by ResolveWorkItemLinks
type Resolution struct {
	Links    []Link
	Warnings []Warning
}

// ForWorkItem returns the links of one work item in reference order
func (r *Resolution) ForWorkItem(id string) []Link {
	var out []Link
	for _, l := range r.Links {
		if l.WorkItemID == id {
			out = append(out, l)
		}
	}
	return out
}

// ResolveWorkItemLinks looks up every linked PR reference in prs. References
// into other repositories and references to pull requests that were not
// fetched stay unresolved and are reported as warnings.
func ResolveWorkItemLinks(items []types.WorkItem, prs []types.PullRequest, repo types.RepoRef) *Resolution {
	byNumber := make(map[int]int, len(prs))
	for i, pr := range prs {
		byNumber[pr.Number] = i
	}

	res := &Resolution{Links: make([]Link, 0), Warnings: make([]Warning, 0)}
	for _, item := range items {
		for _, ref := range item.LinkedPRs {
			link := Link{WorkItemID: item.ID, Ref: ref}

			switch idx, ok := byNumber[ref.Number]; {
			case !ref.InRepository(repo):
				link.Status = LinkCrossRepository
				res.Warnings = append(res.Warnings, Warning{
					Kind:       WarningCrossRepository,
					WorkItemID: item.ID,
					Ref:        ref.String(),
					Message:    fmt.Sprintf("%s is linked to PR %s in a different repository", itemName(item), ref),
				})
			case !ok:
				link.Status = LinkNotFetched
				res.Warnings = append(res.Warnings, Warning{
					Kind:       WarningPRNotFetched,
					WorkItemID: item.ID,
					Ref:        ref.String(),
					Message:    fmt.Sprintf("cannot find PR %s that %s is linked to", ref, itemName(item)),
				})
			default:
				link.Status = LinkResolved
				link.PullRequest = &prs[idx]
			}

			res.Links = append(res.Links, link)
		}
	}
	return res
}

func itemName(item types.WorkItem) string {
	if item.Key != "" {
		return item.Key
	}
	return item.ID
}
