package report

import (
	"github.com/clintrovert/releasekit/internal/notes"
	"github.com/clintrovert/releasekit/pkg/types"
)

// ReleaseNotes lays out the grouped release-note sections, each followed by
// a blank line.
func ReleaseNotes(sections []notes.Section) []Node {
	var nodes []Node
	for _, s := range sections {
		nodes = append(nodes, Header(s.Title))
		for _, item := range s.Items {
			nodes = append(nodes, workItemEntry(item))
		}
		nodes = append(nodes, Blank())
	}
	return nodes
}

func workItemEntry(item types.WorkItem) Node {
	return Item(item.Key, item.URL, item.Summary())
}
