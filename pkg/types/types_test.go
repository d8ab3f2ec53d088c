package types

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPRRefInRepository(t *testing.T) {
	repo := RepoRef{Owner: "concord-consortium", Name: "clue"}

	assert.True(t, PRRef{Owner: "Concord-Consortium", Repo: "CLUE", Number: 1}.InRepository(repo))
	assert.True(t, PRRef{Number: 1}.InRepository(repo))
	assert.False(t, PRRef{Owner: "concord-consortium", Repo: "codap", Number: 1}.InRepository(repo))
	assert.False(t, PRRef{Owner: "someone-else", Repo: "clue", Number: 1}.InRepository(repo))

	assert.Equal(t, "#5", PRRef{Number: 5}.String())
	assert.Equal(t, "concord-consortium/codap#7", PRRef{Owner: "concord-consortium", Repo: "codap", Number: 7}.String())
}

func TestUpstreamError(t *testing.T) {
	unauthorized := fmt.Errorf("failed to list: %w", &UpstreamError{Service: "github", StatusCode: 401, Status: "Unauthorized"})
	assert.True(t, errors.Is(unauthorized, ErrUnauthorized))

	var upstream *UpstreamError
	assert.True(t, errors.As(unauthorized, &upstream))
	assert.Contains(t, upstream.Hint(), "GITHUB_TOKEN")
	assert.Equal(t, "github request failed with status 401: Unauthorized", upstream.Error())

	serverErr := &UpstreamError{Service: "jira", StatusCode: 500, Err: errors.New("boom")}
	assert.False(t, errors.Is(serverErr, ErrUnauthorized))
	assert.Empty(t, serverErr.Hint())
	assert.Equal(t, "jira request failed with status 500: boom", serverErr.Error())
}

func TestWorkItemSummary(t *testing.T) {
	assert.Equal(t, "blurb", WorkItem{Title: "title", Blurb: "blurb"}.Summary())
	assert.Equal(t, "title", WorkItem{Title: "  title "}.Summary())

	item := WorkItem{Labels: []string{"ui", UnderTheHoodLabel}}
	assert.True(t, item.IsUnderTheHood())
	assert.False(t, item.HasLabel("UI"))
}

func TestParseWorkItemKind(t *testing.T) {
	assert.Equal(t, KindStory, ParseWorkItemKind(" Story "))
	assert.True(t, ParseWorkItemKind("feature").IsFeature())
	assert.False(t, ParseWorkItemKind("Bug").IsFeature())
}

func TestWorkItemQueryDescribe(t *testing.T) {
	assert.Equal(t, "label clue-5.3", WorkItemQuery{Label: "clue-5.3"}.Describe())
	assert.Equal(t, `project LARA with fix version "LARA v5.0.0"`, WorkItemQuery{Project: "LARA", FixVersion: "LARA v5.0.0"}.Describe())
}

func TestCommitWindow(t *testing.T) {
	var nilWindow *CommitWindow
	assert.True(t, nilWindow.Empty())

	at := time.Date(2024, 2, 20, 12, 0, 0, 0, time.UTC)
	w := &CommitWindow{
		MergeBase: Commit{SHA: "base", AuthoredAt: at},
		Commits:   []Commit{{SHA: "a", Message: "Merge pull request #1"}, {SHA: "b", Message: "typo"}},
	}
	assert.False(t, w.Empty())
	assert.Equal(t, at, w.LowerBound())
	assert.Len(t, w.SHAs(), 2)
	assert.True(t, w.Commits[0].LooksLikePRMerge())
	assert.False(t, w.Commits[1].LooksLikePRMerge())

	assert.Equal(t, "first", FirstLine("first\nsecond"))
	assert.Equal(t, "only", FirstLine("only"))
}
