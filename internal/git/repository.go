// Package git computes commit windows from a local clone, without calling the
// GitHub compare API.
package git

import (
	"context"
	"fmt"
	"slices"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"

	"github.com/clintrovert/releasekit/pkg/types"
)

// Repository reads commit history from a git repository
type Repository struct {
	repo   *git.Repository
	logger *zap.Logger
}

// Open opens the repository at path
func Open(path string, logger *zap.Logger) (*Repository, error) {
	r, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %s: %w", path, err)
	}
	return NewRepository(r, logger), nil
}

// NewRepository wraps an already opened repository
func NewRepository(r *git.Repository, logger *zap.Logger) *Repository {
	return &Repository{repo: r, logger: logger}
}

// CompareCommits returns the commits reachable from head but not from the
// merge base of base and head, oldest first. The repository argument is only
// used for logging; the local clone is always read.
func (r *Repository) CompareCommits(ctx context.Context, repo types.RepoRef, base, head string) (*types.CommitWindow, error) {
	baseCommit, err := r.resolve(base)
	if err != nil {
		return nil, err
	}
	headCommit, err := r.resolve(head)
	if err != nil {
		return nil, err
	}

	bases, err := baseCommit.MergeBase(headCommit)
	if err != nil {
		return nil, fmt.Errorf("failed to find merge base of %s and %s: %w", base, head, err)
	}
	if len(bases) == 0 {
		return nil, fmt.Errorf("%s and %s share no history", base, head)
	}
	mergeBase := bases[0]

	seen, err := r.ancestors(ctx, mergeBase)
	if err != nil {
		return nil, err
	}

	var commits []*object.Commit
	iter := object.NewCommitPreorderIter(headCommit, seen, nil)
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		commits = append(commits, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk history of %s: %w", head, err)
	}

	slices.Reverse(commits)
	slices.SortStableFunc(commits, func(a, b *object.Commit) int {
		return a.Committer.When.Compare(b.Committer.When)
	})

	window := &types.CommitWindow{
		Base:      base,
		Head:      head,
		MergeBase: toCommit(mergeBase),
		Commits:   make([]types.Commit, 0, len(commits)),
	}
	for _, c := range commits {
		window.Commits = append(window.Commits, toCommit(c))
	}

	r.logger.Debug("compared local commits",
		zap.String("repo", repo.String()),
		zap.String("base", base),
		zap.String("head", head),
		zap.String("merge_base", mergeBase.Hash.String()),
		zap.Int("commits", len(window.Commits)),
	)

	return window, nil
}

func (r *Repository) resolve(rev string) (*object.Commit, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", rev, err)
	}
	c, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", rev, err)
	}
	return c, nil
}

// ancestors returns the merge base and every commit reachable from it
func (r *Repository) ancestors(ctx context.Context, c *object.Commit) (map[plumbing.Hash]bool, error) {
	seen := make(map[plumbing.Hash]bool)
	err := object.NewCommitPreorderIter(c, nil, nil).ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		seen[c.Hash] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk history of merge base: %w", err)
	}
	return seen, nil
}

func toCommit(c *object.Commit) types.Commit {
	return types.Commit{
		SHA:        c.Hash.String(),
		Message:    types.FirstLine(c.Message),
		AuthoredAt: c.Author.When,
	}
}
