package pivotal

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clintrovert/releasekit/internal/reconcile"
	"github.com/clintrovert/releasekit/pkg/types"
)

// AcceptedState is the terminal story state in Tracker
const AcceptedState = "accepted"

var (
	// story names may start with a bold tag such as **[CLUE]**
	nameTag = regexp.MustCompile(`\*\*\[[^\]]*\]\*\* ?`)
	blurb   = regexp.MustCompile(`\*\*Blurb:\*\* (.*)`)
)

// CleanName strips the first bold tag from a story name
func CleanName(name string) string {
	if loc := nameTag.FindStringIndex(name); loc != nil {
		name = name[:loc[0]] + name[loc[1]:]
	}
	return strings.TrimSpace(name)
}

// ExtractBlurb returns the release-note blurb of a story description
func ExtractBlurb(description string) string {
	m := blurb.FindStringSubmatch(description)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// LabelQuery is the Tracker search for every story with label, done or not
func LabelQuery(label string) string {
	return "label:" + label + " includedone:true"
}

// FetchStories searches every configured project and returns the stories in
// project order
func (c *Client) FetchStories(ctx context.Context, query string) ([]types.WorkItem, error) {
	perProject := make([][]types.WorkItem, len(c.projectIDs))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range c.projectIDs {
		i, id := i, id
		g.Go(func() error {
			items, err := c.SearchStories(gctx, id, query)
			if err != nil {
				return err
			}
			perProject[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []types.WorkItem
	for _, items := range perProject {
		all = append(all, items...)
	}
	return all, nil
}

// FetchWorkItems returns the feature and bug stories carrying the query label
func (c *Client) FetchWorkItems(ctx context.Context, query types.WorkItemQuery) ([]types.WorkItem, []reconcile.Warning, error) {
	stories, err := c.FetchStories(ctx, LabelQuery(query.Label))
	if err != nil {
		return nil, nil, err
	}

	items := make([]types.WorkItem, 0, len(stories))
	for _, s := range stories {
		if s.Kind == types.KindFeature || s.Kind == types.KindBug {
			items = append(items, s)
		}
	}

	c.logger.Info("fetched pivotal stories",
		zap.String("label", query.Label),
		zap.Int("projects", len(c.projectIDs)),
		zap.Int("count", len(items)),
	)

	return items, nil, nil
}

func toWorkItem(s storyRecord) types.WorkItem {
	id := strconv.FormatInt(s.ID, 10)
	item := types.WorkItem{
		ID:          id,
		Key:         "PT-" + id,
		Kind:        types.ParseWorkItemKind(s.StoryType),
		State:       s.CurrentState,
		Title:       CleanName(s.Name),
		Description: s.Description,
		Blurb:       ExtractBlurb(s.Description),
		URL:         s.URL,
		LinkedPRs:   make([]types.PRRef, 0, len(s.PullRequests)),
	}
	if item.URL == "" {
		item.URL = "https://pivotaltracker.com/story/show/" + id
	}
	for _, l := range s.Labels {
		item.Labels = append(item.Labels, l.Name)
	}
	for _, pr := range s.PullRequests {
		item.LinkedPRs = append(item.LinkedPRs, types.PRRef{Owner: pr.Owner, Repo: pr.Repo, Number: pr.Number})
	}
	return item
}
