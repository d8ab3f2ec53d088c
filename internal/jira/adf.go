package jira

import "strings"

const blurbMarker = "Blurb:"

// adfNode is a node of an Atlassian Document Format tree, the shape Jira
// Cloud uses for rich text fields such as the issue description.
type adfNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text,omitempty"`
	Content []adfNode `json:"content,omitempty"`
}

// Blurb returns the release-note blurb of a description: the remainder of
// the first paragraph whose leading text is "Blurb:".
func (n *adfNode) Blurb() string {
	if n == nil {
		return ""
	}
	for _, p := range n.Content {
		if len(p.Content) == 0 {
			continue
		}
		if strings.TrimSpace(p.Content[0].Text) != blurbMarker {
			continue
		}
		var sb strings.Builder
		for _, c := range p.Content[1:] {
			sb.WriteString(c.Text)
		}
		return strings.TrimSpace(sb.String())
	}
	return ""
}

// Text flattens the node into plain text, one line per block
func (n *adfNode) Text() string {
	if n == nil {
		return ""
	}
	var lines []string
	for _, block := range n.Content {
		lines = append(lines, block.inline())
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func (n adfNode) inline() string {
	if n.Type == "text" {
		return n.Text
	}
	var sb strings.Builder
	for _, c := range n.Content {
		sb.WriteString(c.inline())
	}
	return sb.String()
}
