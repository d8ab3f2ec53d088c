package types

import (
	"time"
)

// PullRequestState is the GitHub state of a pull request
type PullRequestState string

const (
	PullRequestOpen   PullRequestState = "open"
	PullRequestClosed PullRequestState = "closed"
)

// PullRequest contains the pull request fields the release tools use
type PullRequest struct {
	Number         int              `json:"number"`
	Title          string           `json:"title"`
	HTMLURL        string           `json:"html_url"`
	State          PullRequestState `json:"state"`
	MergedAt       *time.Time       `json:"merged_at,omitempty"`
	MergeCommitSHA string           `json:"merge_commit_sha,omitempty"`
	UpdatedAt      time.Time        `json:"updated_at"`
	Author         string           `json:"author"`
	Labels         []string         `json:"labels,omitempty"`
	Reviewers      []string         `json:"reviewers,omitempty"`
}

// IsOpen reports whether the pull request is still open
func (p PullRequest) IsOpen() bool {
	return p.State == PullRequestOpen
}

// Review is a submitted pull request review
type Review struct {
	Reviewer    string    `json:"reviewer"`
	State       string    `json:"state"`
	Body        string    `json:"body,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}
