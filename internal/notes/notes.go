// Package notes groups finished work items into release-note sections.
package notes

import "github.com/clintrovert/releasekit/pkg/types"

const (
	FeaturesTitle     = "✨ Features & Improvements:"
	BugFixesTitle     = "🐞 Bug Fixes:"
	UnderTheHoodTitle = "🛠 Under the Hood:"
)

// Section is a titled group of release-note items
type Section struct {
	Title string
	Items []types.WorkItem
}

// Group sorts items into features, bug fixes and under-the-hood changes,
// keeping tracker order within each section. Items labeled under-the-hood go
// there whatever their kind; other kinds are left out. Empty sections are
// omitted.
func Group(items []types.WorkItem) []Section {
	var features, bugs, underTheHood []types.WorkItem
	for _, item := range items {
		switch {
		case item.IsUnderTheHood():
			underTheHood = append(underTheHood, item)
		case item.Kind.IsFeature():
			features = append(features, item)
		case item.Kind == types.KindBug:
			bugs = append(bugs, item)
		}
	}

	var sections []Section
	for _, s := range []Section{
		{Title: FeaturesTitle, Items: features},
		{Title: BugFixesTitle, Items: bugs},
		{Title: UnderTheHoodTitle, Items: underTheHood},
	} {
		if len(s.Items) > 0 {
			sections = append(sections, s)
		}
	}
	return sections
}
