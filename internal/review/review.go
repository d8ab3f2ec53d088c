// Package review prints the review activity of a pull request, either as a
// prompt for a coding assistant or as a full markdown dump.
package review

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/clintrovert/releasekit/pkg/types"
)

// Options control which threads are printed
type Options struct {
	ShowResolved bool
}

// Threads is the filtered view of a discussion's review threads
type Threads struct {
	Shown      []types.ReviewThread
	Resolved   int
	Unresolved int
}

// FilterThreads drops resolved threads unless showResolved is set
func FilterThreads(threads []types.ReviewThread, showResolved bool) Threads {
	var out Threads
	for _, t := range threads {
		if t.IsResolved {
			out.Resolved++
		} else {
			out.Unresolved++
		}
		if showResolved || !t.IsResolved {
			out.Shown = append(out.Shown, t)
		}
	}
	return out
}

// WriteLLM writes the threads as a list of issues for a coding assistant
func WriteLLM(w io.Writer, d *types.PullRequestDiscussion, opts Options) error {
	bw := bufio.NewWriter(w)
	threads := FilterThreads(d.Threads, opts.ShowResolved)

	fmt.Fprintf(bw, "The following are unresolved code review comments from PR #%d: \"%s\"\n", d.Number, d.Title)
	fmt.Fprintf(bw, "URL: %s\n", d.URL)
	bw.WriteString("Please address each of these review comments one by one, with you giving me an overview of what you will change and then waiting for me to ok the change or enter into a chat about a different change.\n")
	bw.WriteString("Each issue includes the file path and line number where the change is requested.\n")
	bw.WriteString("Note: Line numbers are from the reviewed code and may have shifted due to other changes.\n")
	bw.WriteString("\n")

	if len(threads.Shown) == 0 {
		bw.WriteString("No unresolved review comments to address.\n")
		if threads.Resolved > 0 {
			fmt.Fprintf(bw, "(%d resolved conversation%s hidden)\n", threads.Resolved, plural(threads.Resolved))
		}
		return bw.Flush()
	}

	for i, t := range threads.Shown {
		fmt.Fprintf(bw, "## Issue %d\n", i+1)
		fmt.Fprintf(bw, "File: %s\n", t.Path)
		if t.Line > 0 {
			fmt.Fprintf(bw, "Line: %d\n", t.Line)
		}
		for _, c := range t.Comments {
			fmt.Fprintf(bw, "Commenter: %s\n\n%s\n\n", c.Author, c.Body)
		}
	}

	bw.WriteString("---\n")
	fmt.Fprintf(bw, "%d issue%s to address", len(threads.Shown), plural(len(threads.Shown)))
	if threads.Resolved > 0 && !opts.ShowResolved {
		fmt.Fprintf(bw, " (%d resolved hidden)", threads.Resolved)
	}
	bw.WriteString("\n")
	return bw.Flush()
}

// WriteRaw writes every review, thread and discussion comment as markdown
func WriteRaw(w io.Writer, d *types.PullRequestDiscussion, opts Options) error {
	bw := bufio.NewWriter(w)
	threads := FilterThreads(d.Threads, opts.ShowResolved)

	fmt.Fprintf(bw, "# PR #%d: %s\n", d.Number, d.Title)
	fmt.Fprintf(bw, "Author: %s\n", d.Author)
	fmt.Fprintf(bw, "URL: %s\n", d.URL)
	state := d.State
	if d.Merged {
		state += " (merged)"
	}
	fmt.Fprintf(bw, "State: %s\n", state)
	if !opts.ShowResolved {
		bw.WriteString("(Resolved conversations are hidden. Use --show-resolved to show them.)\n")
	}
	bw.WriteString("\n")

	if len(d.Reviews) > 0 {
		fmt.Fprintf(bw, "## Reviews (%d)\n\n", len(d.Reviews))
		for _, r := range d.Reviews {
			fmt.Fprintf(bw, "### %s - %s\n", r.Reviewer, strings.ReplaceAll(r.State, "_", " "))
			fmt.Fprintf(bw, "Submitted: %s\n", timestamp(r.SubmittedAt))
			if r.Body != "" {
				fmt.Fprintf(bw, "\n%s\n", r.Body)
			}
			bw.WriteString("\n")
		}
	}

	if len(threads.Shown) > 0 {
		suffix := ""
		if !opts.ShowResolved {
			suffix = fmt.Sprintf(" (%d resolved hidden)", threads.Resolved)
		}
		fmt.Fprintf(bw, "## Review Threads (%d)%s\n\n", len(threads.Shown), suffix)
		for _, t := range threads.Shown {
			tag := ""
			if t.IsResolved {
				tag = " ✓ RESOLVED"
			}
			fmt.Fprintf(bw, "### Thread on `%s`%s\n", t.Path, tag)
			line := "N/A"
			if t.Line > 0 {
				line = fmt.Sprint(t.Line)
			}
			fmt.Fprintf(bw, "Line: %s\n\n", line)
			for _, c := range t.Comments {
				fmt.Fprintf(bw, "**%s** (%s):\n%s\n\n", c.Author, timestamp(c.CreatedAt), c.Body)
			}
		}
	}

	if len(d.Comments) > 0 {
		fmt.Fprintf(bw, "## Discussion Comments (%d)\n\n", len(d.Comments))
		for _, c := range d.Comments {
			fmt.Fprintf(bw, "### %s\n", c.Author)
			fmt.Fprintf(bw, "URL: %s\n", c.URL)
			fmt.Fprintf(bw, "Created: %s\n\n", timestamp(c.CreatedAt))
			fmt.Fprintf(bw, "%s\n\n", c.Body)
		}
	}

	bw.WriteString("---\n")
	var threadSummary string
	if opts.ShowResolved {
		threadSummary = fmt.Sprintf("%d threads (%d resolved, %d unresolved)",
			len(threads.Shown), threads.Resolved, threads.Unresolved)
	} else {
		threadSummary = fmt.Sprintf("%d unresolved threads (%d resolved hidden)", threads.Unresolved, threads.Resolved)
	}
	fmt.Fprintf(bw, "Total: %d reviews, %s, %d discussion comments\n", len(d.Reviews), threadSummary, len(d.Comments))

	return bw.Flush()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
