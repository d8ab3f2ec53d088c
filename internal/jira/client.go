package jira

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	jira "github.com/andygrunwald/go-jira"
	"go.uber.org/zap"

	"github.com/clintrovert/releasekit/internal/pager"
	"github.com/clintrovert/releasekit/pkg/types"
)

const (
	searchPath    = "rest/api/3/search/jql"
	devStatusPath = "rest/dev-status/1.0/issue/detail"
	pageSize      = 100
)

// Client wraps Jira API client functionality
type Client struct {
	client  *jira.Client
	logger  *zap.Logger
	baseURL string
}

// NewClient creates a new Jira client
func NewClient(baseURL, username, apiToken string, logger *zap.Logger) (*Client, error) {
	tp := jira.BasicAuthTransport{
		Username: username,
		Password: apiToken,
	}

	client, err := jira.NewClient(tp.Client(), baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}

	return &Client{
		client:  client,
		logger:  logger,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// BrowseURL returns the web URL of an issue
func (c *Client) BrowseURL(key string) string {
	return c.baseURL + "/browse/" + key
}

type issueRecord struct {
	ID     string `json:"id"`
	Key    string `json:"key"`
	Fields struct {
		Summary   string `json:"summary"`
		IssueType struct {
			Name string `json:"name"`
		} `json:"issuetype"`
		Status struct {
			Name string `json:"name"`
		} `json:"status"`
		Labels      []string `json:"labels"`
		Description *adfNode `json:"description"`
	} `json:"fields"`
}

type searchResponse struct {
	Issues        []issueRecord `json:"issues"`
	NextPageToken string        `json:"nextPageToken"`
	IsLast        bool          `json:"isLast"`
}

// SearchIssues runs a JQL query and returns every matching issue
func (c *Client) SearchIssues(ctx context.Context, jql string, fields []string) ([]types.WorkItem, error) {
	fetch := func(ctx context.Context, token string) ([]issueRecord, string, error) {
		q := url.Values{}
		q.Set("jql", jql)
		q.Set("fields", strings.Join(fields, ","))
		q.Set("maxResults", fmt.Sprint(pageSize))
		if token != "" {
			q.Set("nextPageToken", token)
		}

		var out searchResponse
		if err := c.get(ctx, searchPath+"?"+q.Encode(), &out); err != nil {
			return nil, "", fmt.Errorf("failed to search issues: %w", err)
		}
		if out.IsLast {
			return out.Issues, "", nil
		}
		return out.Issues, out.NextPageToken, nil
	}

	records, err := pager.Collect(ctx, "", fetch, nil)
	if err != nil {
		return nil, err
	}

	items := make([]types.WorkItem, 0, len(records))
	for _, r := range records {
		items = append(items, c.toWorkItem(r))
	}

	c.logger.Debug("searched jira issues",
		zap.String("jql", jql),
		zap.Int("count", len(items)),
	)

	return items, nil
}

func (c *Client) toWorkItem(r issueRecord) types.WorkItem {
	return types.WorkItem{
		ID:          r.ID,
		Key:         r.Key,
		Kind:        types.ParseWorkItemKind(r.Fields.IssueType.Name),
		State:       r.Fields.Status.Name,
		Title:       r.Fields.Summary,
		Description: r.Fields.Description.Text(),
		Blurb:       r.Fields.Description.Blurb(),
		URL:         c.BrowseURL(r.Key),
		Labels:      r.Fields.Labels,
	}
}

// get issues an authenticated GET and decodes the JSON response into v
func (c *Client) get(ctx context.Context, path string, v interface{}) error {
	req, err := c.client.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req, v)
	if err != nil {
		if resp != nil && resp.Response != nil {
			// go-jira leaves the body open when the status check fails
			defer resp.Body.Close()
			return &types.UpstreamError{
				Service:    "jira",
				StatusCode: resp.StatusCode,
				Status:     http.StatusText(resp.StatusCode),
				Err:        err,
			}
		}
		return err
	}
	return nil
}
