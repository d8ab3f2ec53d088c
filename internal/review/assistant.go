package review

import (
	"context"

	"github.com/clintrovert/releasekit/pkg/types"
)

// Suggestion is the change proposed for one review issue
type Suggestion struct {
	Issue  int
	Change string
}

// Plan is an assistant's proposal for addressing the open review comments
type Plan struct {
	Summary     string
	Suggestions []Suggestion
}

// Assistant proposes changes for the unresolved threads of a pull request
type Assistant interface {
	Propose(ctx context.Context, d *types.PullRequestDiscussion) (*Plan, error)
}
