package pivotal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clintrovert/releasekit/pkg/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, projects ...string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "pt-token", projects, srv.Client(), zap.NewNop())
}

func TestFetchWorkItemsAcrossProjects(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pt-token", r.Header.Get("X-TrackerToken"))
		assert.Equal(t, "label:clue-5.3 includedone:true", r.URL.Query().Get("query"))
		assert.Contains(t, r.URL.Query().Get("fields"), "pull_requests")

		switch r.URL.Path {
		case "/projects/1/search":
			fmt.Fprint(w, `{"stories": {"stories": [
				{"id": 101, "name": "**[CLUE]** Share tiles ", "story_type": "feature", "current_state": "accepted",
				 "url": "https://www.pivotaltracker.com/story/show/101",
				 "description": "Intro\n**Blurb:** Students can share tiles.\nMore",
				 "labels": [{"name": "clue-5.3"}],
				 "pull_requests": [{"owner": "concord-consortium", "repo": "clue", "number": 42}]},
				{"id": 102, "name": "Release v5.3", "story_type": "release", "current_state": "unstarted"}
			]}}`)
		case "/projects/2/search":
			fmt.Fprint(w, `{"stories": {"stories": [
				{"id": 201, "name": "Fix crash", "story_type": "bug", "current_state": "finished"},
				{"id": 202, "name": "Bump deps", "story_type": "chore", "current_state": "accepted"}
			]}}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}

	c := newTestClient(t, handler, "1", "2")
	items, warnings, err := c.FetchWorkItems(context.Background(), types.WorkItemQuery{Label: "clue-5.3"})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, items, 2)

	feature := items[0]
	assert.Equal(t, "101", feature.ID)
	assert.Equal(t, "PT-101", feature.Key)
	assert.Equal(t, types.KindFeature, feature.Kind)
	assert.Equal(t, "Share tiles", feature.Title)
	assert.Equal(t, "Students can share tiles.", feature.Blurb)
	assert.Equal(t, []types.PRRef{{Owner: "concord-consortium", Repo: "clue", Number: 42}}, feature.LinkedPRs)
	assert.True(t, feature.HasLabel("clue-5.3"))

	bug := items[1]
	assert.Equal(t, types.KindBug, bug.Kind)
	assert.Equal(t, "finished", bug.State)
	assert.Empty(t, bug.LinkedPRs)
	assert.Equal(t, "https://pivotaltracker.com/story/show/201", bug.URL)
}

func TestSearchStoriesUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"code": "unauthorized_operation", "error": "Authorization failure."}`)
	}, "1")

	_, err := c.SearchStories(context.Background(), "1", LabelQuery("x"))

	var upstream *types.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "pivotal", upstream.Service)
	assert.Equal(t, http.StatusForbidden, upstream.StatusCode)
	assert.Contains(t, err.Error(), "Authorization failure.")
}

func TestFetchStoriesFailsWhenAnyProjectFails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/projects/2/search" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"stories": {"stories": []}}`)
	}, "1", "2")

	_, err := c.FetchStories(context.Background(), LabelQuery("x"))
	require.ErrorIs(t, err, types.ErrUnauthorized)
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "tag with space", in: "**[CLUE]** Share tiles", want: "Share tiles"},
		{name: "tag without space", in: "**[CODAP]**Fix graph", want: "Fix graph"},
		{name: "only first tag", in: "**[A]** x **[B]** y", want: "x **[B]** y"},
		{name: "no tag", in: "  Plain  ", want: "Plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanName(tt.in))
		})
	}
}

func TestExtractBlurb(t *testing.T) {
	assert.Equal(t, "Short text", ExtractBlurb("**Blurb:** Short text"))
	assert.Empty(t, ExtractBlurb("Blurb: missing bold"))
	assert.Empty(t, ExtractBlurb(""))
}
