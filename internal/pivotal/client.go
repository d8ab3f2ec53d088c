// Package pivotal reads stories from the Pivotal Tracker v5 REST API.
package pivotal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/clintrovert/releasekit/pkg/types"
)

// DefaultBaseURL is the Pivotal Tracker API root
const DefaultBaseURL = "https://www.pivotaltracker.com/services/v5"

const storyFields = "stories(stories(id,name,description,story_type,current_state,url,labels,pull_requests))"

// HTTPClient allows swapping the transport in tests
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client reads stories from Pivotal Tracker
type Client struct {
	baseURL    string
	token      string
	projectIDs []string
	httpClient HTTPClient
	logger     *zap.Logger
}

// NewClient creates a new Pivotal Tracker client searching the given projects
func NewClient(baseURL, token string, projectIDs []string, httpClient HTTPClient, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		projectIDs: projectIDs,
		httpClient: httpClient,
		logger:     logger,
	}
}

type storyPullRequest struct {
	ID      int64  `json:"id"`
	StoryID int64  `json:"story_id"`
	Owner   string `json:"owner"`
	Repo    string `json:"repo"`
	HostURL string `json:"host_url"`
	Status  string `json:"status"`
	Number  int    `json:"number"`
}

type storyLabel struct {
	Name string `json:"name"`
}

type storyRecord struct {
	ID           int64              `json:"id"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	StoryType    string             `json:"story_type"`
	CurrentState string             `json:"current_state"`
	URL          string             `json:"url"`
	Labels       []storyLabel       `json:"labels"`
	PullRequests []storyPullRequest `json:"pull_requests"`
}

type searchResponse struct {
	Stories struct {
		Stories []storyRecord `json:"stories"`
	} `json:"stories"`
}

// SearchStories runs a Tracker search query in one project
func (c *Client) SearchStories(ctx context.Context, projectID, query string) ([]types.WorkItem, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("fields", storyFields)
	u := fmt.Sprintf("%s/projects/%s/search?%s", c.baseURL, url.PathEscape(projectID), q.Encode())

	var resp searchResponse
	if err := c.doRequest(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("failed to search project %s: %w", projectID, err)
	}

	items := make([]types.WorkItem, 0, len(resp.Stories.Stories))
	for _, s := range resp.Stories.Stories {
		items = append(items, toWorkItem(s))
	}

	c.logger.Debug("searched pivotal project",
		zap.String("project_id", projectID),
		zap.String("query", query),
		zap.Int("count", len(items)),
	)

	return items, nil
}

// doRequest performs a GET and decodes the JSON response
func (c *Client) doRequest(ctx context.Context, endpoint string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-TrackerToken", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &types.UpstreamError{
			Service:    "pivotal",
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Err:        apiError(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func apiError(body []byte) error {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return fmt.Errorf("%s", e.Error)
	}
	return nil
}
