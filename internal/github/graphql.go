package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/clintrovert/releasekit/pkg/types"
)

const discussionQuery = `query($owner: String!, $repo: String!, $prNumber: Int!) {
  repository(owner: $owner, name: $repo) {
    pullRequest(number: $prNumber) {
      title
      url
      state
      merged
      author { login }
      reviews(first: 100) {
        nodes { author { login } state body submittedAt }
      }
      reviewThreads(first: 100) {
        nodes {
          isResolved
          path
          line
          comments(first: 100) {
            nodes { author { login } body createdAt url }
          }
        }
      }
      comments(first: 100) {
        nodes { author { login } body createdAt url }
      }
    }
  }
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLActor struct {
	Login string `json:"login"`
}

type graphQLComment struct {
	Author    *graphQLActor `json:"author"`
	Body      string        `json:"body"`
	CreatedAt time.Time     `json:"createdAt"`
	URL       string        `json:"url"`
}

type discussionResponse struct {
	Data struct {
		Repository struct {
			PullRequest *struct {
				Title   string        `json:"title"`
				URL     string        `json:"url"`
				State   string        `json:"state"`
				Merged  bool          `json:"merged"`
				Author  *graphQLActor `json:"author"`
				Reviews struct {
					Nodes []struct {
						Author      *graphQLActor `json:"author"`
						State       string        `json:"state"`
						Body        string        `json:"body"`
						SubmittedAt time.Time     `json:"submittedAt"`
					} `json:"nodes"`
				} `json:"reviews"`
				ReviewThreads struct {
					Nodes []struct {
						IsResolved bool   `json:"isResolved"`
						Path       string `json:"path"`
						Line       int    `json:"line"`
						Comments   struct {
							Nodes []graphQLComment `json:"nodes"`
						} `json:"comments"`
					} `json:"nodes"`
				} `json:"reviewThreads"`
				Comments struct {
					Nodes []graphQLComment `json:"nodes"`
				} `json:"comments"`
			} `json:"pullRequest"`
		} `json:"repository"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// PullRequestDiscussion fetches reviews, review threads and discussion
// comments of a pull request through the GraphQL API
func (c *Client) PullRequestDiscussion(ctx context.Context, repo types.RepoRef, number int) (*types.PullRequestDiscussion, error) {
	req, err := c.apiClient.NewRequest(http.MethodPost, "graphql", graphQLRequest{
		Query: discussionQuery,
		Variables: map[string]any{
			"owner":    repo.Owner,
			"repo":     repo.Name,
			"prNumber": number,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create graphql request: %w", err)
	}

	var out discussionResponse
	resp, err := c.apiClient.Do(ctx, req, &out)
	if err != nil {
		return nil, upstreamError(resp, fmt.Errorf("failed to query pull request #%d: %w", number, err))
	}
	if len(out.Errors) > 0 {
		msgs := make([]string, 0, len(out.Errors))
		for _, e := range out.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, errors.New("graphql: " + strings.Join(msgs, "; "))
	}

	pr := out.Data.Repository.PullRequest
	if pr == nil {
		return nil, fmt.Errorf("pull request %s#%d not found", repo, number)
	}

	d := &types.PullRequestDiscussion{
		Number: number,
		Title:  pr.Title,
		URL:    pr.URL,
		State:  strings.ToLower(pr.State),
		Merged: pr.Merged,
		Author: login(pr.Author),
	}
	for _, r := range pr.Reviews.Nodes {
		d.Reviews = append(d.Reviews, types.Review{
			Reviewer:    login(r.Author),
			State:       r.State,
			Body:        r.Body,
			SubmittedAt: r.SubmittedAt,
		})
	}
	for _, t := range pr.ReviewThreads.Nodes {
		d.Threads = append(d.Threads, types.ReviewThread{
			IsResolved: t.IsResolved,
			Path:       t.Path,
			Line:       t.Line,
			Comments:   toComments(t.Comments.Nodes),
		})
	}
	d.Comments = toComments(pr.Comments.Nodes)

	c.logger.Debug("fetched pull request discussion",
		zap.String("repo", repo.String()),
		zap.Int("pr_number", number),
		zap.Int("threads", len(d.Threads)),
	)

	return d, nil
}

func toComments(nodes []graphQLComment) []types.IssueComment {
	out := make([]types.IssueComment, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, types.IssueComment{
			Author:    login(n.Author),
			Body:      n.Body,
			URL:       n.URL,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}

// login returns the actor's login; deleted accounts show up as ghost
func login(a *graphQLActor) string {
	if a == nil || a.Login == "" {
		return "ghost"
	}
	return a.Login
}
