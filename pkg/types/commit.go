package types

import (
	"strings"
	"time"
)

// Commit is a single commit in a compared range
type Commit struct {
	SHA        string    `json:"sha"`
	Message    string    `json:"message"`
	AuthoredAt time.Time `json:"authored_at"`
}

// LooksLikePRMerge reports whether the commit message references a PR number
func (c Commit) LooksLikePRMerge() bool {
	return strings.Contains(c.Message, "#")
}

// CommitWindow is the result of comparing a base ref with a head ref.
// Commits are ordered oldest to newest, exclude the merge base and include
// the head.
type CommitWindow struct {
	Base      string   `json:"base"`
	Head      string   `json:"head"`
	MergeBase Commit   `json:"merge_base"`
	Commits   []Commit `json:"commits"`
}

// Empty reports whether the window has no commits
func (w *CommitWindow) Empty() bool {
	return w == nil || len(w.Commits) == 0
}

// LowerBound is the time after which a pull request must have been updated to
// possibly be part of the window.
func (w *CommitWindow) LowerBound() time.Time {
	return w.MergeBase.AuthoredAt
}

// SHAs returns the set of commit shas in the window
func (w *CommitWindow) SHAs() map[string]struct{} {
	shas := make(map[string]struct{}, len(w.Commits))
	for _, c := range w.Commits {
		shas[c.SHA] = struct{}{}
	}
	return shas
}

// FirstLine returns the first line of a commit message
func FirstLine(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		return message[:i]
	}
	return message
}
