package review

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clintrovert/releasekit/pkg/types"
)

var created = time.Date(2024, 2, 21, 10, 0, 0, 0, time.UTC)

func testDiscussion() *types.PullRequestDiscussion {
	return &types.PullRequestDiscussion{
		Number: 123,
		Title:  "Add tiles",
		URL:    "https://github.com/concord-consortium/clue/pull/123",
		State:  "merged",
		Merged: true,
		Author: "dev",
		Reviews: []types.Review{
			{Reviewer: "rev", State: "CHANGES_REQUESTED", Body: "A few things", SubmittedAt: created},
		},
		Threads: []types.ReviewThread{
			{Path: "src/a.ts", Line: 12, Comments: []types.IssueComment{
				{Author: "rev", Body: "rename this", CreatedAt: created},
				{Author: "dev", Body: "why?", CreatedAt: created},
			}},
			{IsResolved: true, Path: "src/b.ts", Comments: []types.IssueComment{{Author: "rev", Body: "done", CreatedAt: created}}},
			{Path: "src/c.ts", Comments: []types.IssueComment{{Author: "ghost", Body: "file level", CreatedAt: created}}},
		},
		Comments: []types.IssueComment{
			{Author: "pm", Body: "ship it", URL: "https://github.com/c/1", CreatedAt: created},
		},
	}
}

func TestFilterThreads(t *testing.T) {
	d := testDiscussion()

	hidden := FilterThreads(d.Threads, false)
	assert.Len(t, hidden.Shown, 2)
	assert.Equal(t, 1, hidden.Resolved)
	assert.Equal(t, 2, hidden.Unresolved)

	shown := FilterThreads(d.Threads, true)
	assert.Len(t, shown.Shown, 3)
}

func TestWriteLLM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLLM(&buf, testDiscussion(), Options{}))
	out := buf.String()

	assert.Contains(t, out, "The following are unresolved code review comments from PR #123: \"Add tiles\"\nURL: https://github.com/concord-consortium/clue/pull/123\n")
	assert.Contains(t, out, "## Issue 1\nFile: src/a.ts\nLine: 12\nCommenter: rev\n\nrename this\n\nCommenter: dev\n\nwhy?\n\n")
	assert.Contains(t, out, "## Issue 2\nFile: src/c.ts\nCommenter: ghost\n\nfile level\n\n")
	assert.NotContains(t, out, "src/b.ts")
	assert.Contains(t, out, "---\n2 issues to address (1 resolved hidden)\n")
}

func TestWriteLLMWithoutOpenThreads(t *testing.T) {
	d := testDiscussion()
	d.Threads = d.Threads[1:2]

	var buf bytes.Buffer
	require.NoError(t, WriteLLM(&buf, d, Options{}))
	assert.Contains(t, buf.String(), "No unresolved review comments to address.\n(1 resolved conversation hidden)\n")
	assert.NotContains(t, buf.String(), "---")
}

func TestWriteRaw(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRaw(&buf, testDiscussion(), Options{}))
	out := buf.String()

	assert.Contains(t, out, "# PR #123: Add tiles\nAuthor: dev\nURL: https://github.com/concord-consortium/clue/pull/123\nState: merged (merged)\n")
	assert.Contains(t, out, "(Resolved conversations are hidden. Use --show-resolved to show them.)\n")
	assert.Contains(t, out, "## Reviews (1)\n\n### rev - CHANGES REQUESTED\nSubmitted: 2024-02-21T10:00:00Z\n\nA few things\n\n")
	assert.Contains(t, out, "## Review Threads (2) (1 resolved hidden)\n\n### Thread on `src/a.ts`\nLine: 12\n\n**rev** (2024-02-21T10:00:00Z):\nrename this\n\n")
	assert.Contains(t, out, "### Thread on `src/c.ts`\nLine: N/A\n")
	assert.Contains(t, out, "## Discussion Comments (1)\n\n### pm\nURL: https://github.com/c/1\nCreated: 2024-02-21T10:00:00Z\n\nship it\n\n")
	assert.Contains(t, out, "---\nTotal: 1 reviews, 2 unresolved threads (1 resolved hidden), 1 discussion comments\n")
}

func TestWriteRawShowResolved(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRaw(&buf, testDiscussion(), Options{ShowResolved: true}))
	out := buf.String()

	assert.NotContains(t, out, "Resolved conversations are hidden")
	assert.Contains(t, out, "## Review Threads (3)\n")
	assert.Contains(t, out, "### Thread on `src/b.ts` ✓ RESOLVED\n")
	assert.Contains(t, out, "Total: 1 reviews, 3 threads (1 resolved, 2 unresolved), 1 discussion comments\n")
}

func TestAIAssistantPropose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		if assert.Len(t, req.Messages, 2) {
			assert.Contains(t, req.Messages[1].Content, "## Issue 1")
			assert.Contains(t, req.Messages[1].Content, "ISSUE 1:")
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "chatcmpl-1", "object": "chat.completion", "model": "gpt-4o-mini",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant",
			"content": "SUMMARY: Rename and document.\nISSUE 1: Rename foo to tileCount\nISSUE two: ignored\nISSUE 2: Add a comment"}}]}`)
	}))
	defer srv.Close()

	a := NewAIAssistant("sk-test", "", srv.URL+"/v1", zap.NewNop())
	plan, err := a.Propose(context.Background(), testDiscussion())
	require.NoError(t, err)

	assert.Equal(t, "Rename and document.", plan.Summary)
	assert.Equal(t, []Suggestion{
		{Issue: 1, Change: "Rename foo to tileCount"},
		{Issue: 2, Change: "Add a comment"},
	}, plan.Suggestions)

	var buf bytes.Buffer
	require.NoError(t, WritePlan(&buf, plan))
	assert.Equal(t, "\n## Proposed Changes\nRename and document.\n\n- Issue 1: Rename foo to tileCount\n- Issue 2: Add a comment\n", buf.String())
}

func TestAIAssistantNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "chatcmpl-1", "object": "chat.completion", "choices": []}`)
	}))
	defer srv.Close()

	a := NewAIAssistant("sk-test", "gpt-4o", srv.URL+"/v1", zap.NewNop())
	_, err := a.Propose(context.Background(), testDiscussion())
	require.ErrorIs(t, err, ErrNoResponse)
}
