// Package report builds the text output of the release tools. Output is
// assembled as a tree of nodes first and rendered afterwards in either the
// detailed markdown style or the chat style.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Style selects the markup conventions used when rendering
type Style int

const (
	// Detailed renders markdown headers and bold keys
	Detailed Style = iota
	// Chat prefixes every line with a quote marker and links keys
	Chat
)

// StyleFor returns Chat when chat output was requested
func StyleFor(chat bool) Style {
	if chat {
		return Chat
	}
	return Detailed
}

// Kind is the role of a node in the output tree
type Kind int

const (
	KindLine Kind = iota
	KindHeader
	KindItem
	KindBlank
)

// Node is one line of output together with the lines nested under it
type Node struct {
	Kind     Kind
	Text     string
	Key      string
	URL      string
	Children []Node
}

// Line is a plain line of text
func Line(text string, children ...Node) Node {
	return Node{Kind: KindLine, Text: text, Children: children}
}

// Linef is a formatted plain line
func Linef(format string, args ...any) Node {
	return Line(fmt.Sprintf(format, args...))
}

// Header is a section title
func Header(text string) Node {
	return Node{Kind: KindHeader, Text: text}
}

// Item is a list entry identified by key, linking to url in chat output
func Item(key, url, text string, children ...Node) Node {
	return Node{Kind: KindItem, Key: key, URL: url, Text: text, Children: children}
}

// Blank is an empty line
func Blank() Node {
	return Node{Kind: KindBlank}
}

// Render writes the nodes to w
func Render(w io.Writer, style Style, nodes []Node) error {
	bw := bufio.NewWriter(w)
	for _, n := range nodes {
		render(bw, style, n, 0)
	}
	return bw.Flush()
}

func render(w *bufio.Writer, style Style, n Node, depth int) {
	if style == Chat {
		w.WriteString("> ")
	}
	if n.Kind != KindBlank {
		w.WriteString(strings.Repeat("  ", depth))
	}
	w.WriteString(format(style, n))
	w.WriteByte('\n')

	for _, c := range n.Children {
		render(w, style, c, depth+1)
	}
}

func format(style Style, n Node) string {
	switch n.Kind {
	case KindHeader:
		if style == Chat {
			return "*" + n.Text + "*"
		}
		return "### " + n.Text
	case KindItem:
		switch {
		case n.Key == "":
			return "- " + n.Text
		case style == Chat && n.URL != "":
			return fmt.Sprintf("- *[%s](%s):* %s", n.Key, n.URL, n.Text)
		default:
			return fmt.Sprintf("- **%s:** %s", n.Key, n.Text)
		}
	case KindBlank:
		return ""
	}
	return n.Text
}
