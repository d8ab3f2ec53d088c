package types

import "time"

// PullRequestDiscussion holds the review activity of a single pull request
type PullRequestDiscussion struct {
	Number   int
	Title    string
	URL      string
	State    string
	Merged   bool
	Author   string
	Reviews  []Review
	Threads  []ReviewThread
	Comments []IssueComment
}

// ReviewThread is a conversation attached to a line of code
type ReviewThread struct {
	IsResolved bool
	Path       string
	Line       int
	Comments   []IssueComment
}

// IssueComment is a single comment, either in a thread or on the PR itself
type IssueComment struct {
	Author    string
	Body      string
	URL       string
	CreatedAt time.Time
}
