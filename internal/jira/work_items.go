package jira

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clintrovert/releasekit/internal/github"
	"github.com/clintrovert/releasekit/internal/reconcile"
	"github.com/clintrovert/releasekit/pkg/types"
)

// AcceptedStates are the Jira statuses that count as done for a release
var AcceptedStates = []string{"Done", "Closed"}

var (
	workItemFields = []string{"summary", "issuetype", "status", "labels", "description"}
	digits         = regexp.MustCompile(`\d+`)
)

// maxLinkLookups bounds the concurrent dev-status requests
const maxLinkLookups = 8

type devStatusResponse struct {
	Detail []struct {
		PullRequests []struct {
			ID     string `json:"id"`
			Name   string `json:"name"`
			URL    string `json:"url"`
			Status string `json:"status"`
		} `json:"pullRequests"`
	} `json:"detail"`
}

// LinkedPullRequests returns the GitHub pull requests the Jira development
// panel links to an issue. References whose id carries no number are
// returned as warnings.
func (c *Client) LinkedPullRequests(ctx context.Context, issue types.WorkItem) ([]types.PRRef, []reconcile.Warning, error) {
	q := url.Values{}
	q.Set("issueId", issue.ID)
	q.Set("applicationType", "GitHub")
	q.Set("dataType", "pullrequest")

	var out devStatusResponse
	if err := c.get(ctx, devStatusPath+"?"+q.Encode(), &out); err != nil {
		return nil, nil, fmt.Errorf("failed to fetch pull requests for %s: %w", issue.Key, err)
	}

	var (
		refs     []types.PRRef
		warnings []reconcile.Warning
	)
	for _, d := range out.Detail {
		for _, pr := range d.PullRequests {
			if repo, number, err := github.ParsePullRequestURL(pr.URL); err == nil {
				refs = append(refs, types.PRRef{Owner: repo.Owner, Repo: repo.Name, Number: number})
				continue
			}
			match := digits.FindString(pr.ID)
			if match == "" {
				warnings = append(warnings, reconcile.Warning{
					Kind:       reconcile.WarningInvalidReference,
					WorkItemID: issue.ID,
					Ref:        pr.ID,
					Message:    fmt.Sprintf("skipping invalid PR id %q for issue %s with title %s", pr.ID, issue.Key, issue.Title),
				})
				continue
			}
			number, _ := strconv.Atoi(match)
			refs = append(refs, types.PRRef{Number: number})
		}
	}
	return refs, warnings, nil
}

// FetchWorkItems returns the stories, bugs and chores of a fix version with
// their linked pull requests
func (c *Client) FetchWorkItems(ctx context.Context, query types.WorkItemQuery) ([]types.WorkItem, []reconcile.Warning, error) {
	if query.Project == "" || query.FixVersion == "" {
		return nil, nil, fmt.Errorf("%w: jira project and fix version are required", types.ErrUsage)
	}

	jql := fmt.Sprintf(`project=%s AND fixVersion in ("%s") AND issuetype in (Story, Bug, Chore)`,
		query.Project, query.FixVersion)
	items, err := c.SearchIssues(ctx, jql, workItemFields)
	if err != nil {
		return nil, nil, err
	}

	perItem := make([][]reconcile.Warning, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxLinkLookups)
	for i := range items {
		i := i
		g.Go(func() error {
			refs, w, err := c.LinkedPullRequests(gctx, items[i])
			if err != nil {
				return err
			}
			items[i].LinkedPRs = refs
			perItem[i] = w
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var warnings []reconcile.Warning
	for _, w := range perItem {
		warnings = append(warnings, w...)
	}

	c.logger.Info("fetched jira work items",
		zap.String("project", query.Project),
		zap.String("fix_version", query.FixVersion),
		zap.Int("count", len(items)),
	)

	return items, warnings, nil
}

// ReleaseNoteItems returns the finished stories and bugs of a fix version
func (c *Client) ReleaseNoteItems(ctx context.Context, project, fixVersion string) ([]types.WorkItem, error) {
	jql := fmt.Sprintf(`project=%s AND fixVersion in ("%s") AND issuetype in (Story, Bug) AND status in (Done, Closed)`,
		project, fixVersion)
	return c.SearchIssues(ctx, jql, workItemFields)
}
