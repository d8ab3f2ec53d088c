package types

import "strings"

// WorkItemKind is the normalized type of a tracked unit of work
type WorkItemKind string

const (
	KindStory   WorkItemKind = "story"
	KindFeature WorkItemKind = "feature"
	KindBug     WorkItemKind = "bug"
	KindChore   WorkItemKind = "chore"
	KindRelease WorkItemKind = "release"
)

// ParseWorkItemKind normalizes a tracker specific type name
func ParseWorkItemKind(name string) WorkItemKind {
	return WorkItemKind(strings.ToLower(strings.TrimSpace(name)))
}

// IsFeature reports whether the kind is reported as a feature in release notes
func (k WorkItemKind) IsFeature() bool {
	return k == KindStory || k == KindFeature
}

// UnderTheHoodLabel marks work items that are listed separately in release notes
const UnderTheHoodLabel = "under-the-hood"

// WorkItem is a story, bug or chore from a work tracker
type WorkItem struct {
	ID          string       `json:"id"`
	Key         string       `json:"key"`
	Kind        WorkItemKind `json:"kind"`
	State       string       `json:"state"`
	Title       string       `json:"title"`
	Description string       `json:"-"`
	Blurb       string       `json:"blurb,omitempty"`
	URL         string       `json:"url"`
	LinkedPRs   []PRRef      `json:"linked_prs"`
	Labels      []string     `json:"labels,omitempty"`
}

// HasLabel reports whether the work item carries label
func (w WorkItem) HasLabel(label string) bool {
	for _, l := range w.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// IsUnderTheHood reports whether the work item is labeled under-the-hood
func (w WorkItem) IsUnderTheHood() bool {
	return w.HasLabel(UnderTheHoodLabel)
}

// Summary is the text shown for the item in release notes
func (w WorkItem) Summary() string {
	if w.Blurb != "" {
		return w.Blurb
	}
	return strings.TrimSpace(w.Title)
}

// WorkItemQuery selects work items in a tracker. Pivotal trackers use Label,
// Jira uses Project and FixVersion.
type WorkItemQuery struct {
	Label      string `json:"label,omitempty"`
	Project    string `json:"project,omitempty"`
	FixVersion string `json:"fix_version,omitempty"`
}

// Describe returns a short human readable form of the query
func (q WorkItemQuery) Describe() string {
	if q.Label != "" {
		return "label " + q.Label
	}
	return "project " + q.Project + " with fix version \"" + q.FixVersion + "\""
}
