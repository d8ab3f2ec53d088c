package types

import (
	"fmt"
	"strings"
)

// RepoRef identifies a GitHub repository
type RepoRef struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// String returns the owner/name form
func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}

// PRRef is a weak reference from a work item to a pull request. It is resolved
// by lookup against fetched pull requests, never dereferenced directly.
// Owner and Repo are empty when the tracker did not state the repository.
type PRRef struct {
	Owner  string `json:"owner,omitempty"`
	Repo   string `json:"repo,omitempty"`
	Number int    `json:"number"`
}

// HasRepository reports whether the reference names its repository
func (r PRRef) HasRepository() bool {
	return r.Owner != "" || r.Repo != ""
}

// InRepository reports whether the reference points into repo. References
// without a repository are taken to point into the repository under analysis.
func (r PRRef) InRepository(repo RepoRef) bool {
	if !r.HasRepository() {
		return true
	}
	return strings.EqualFold(r.Owner, repo.Owner) && strings.EqualFold(r.Repo, repo.Name)
}

func (r PRRef) String() string {
	if !r.HasRepository() {
		return fmt.Sprintf("#%d", r.Number)
	}
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}
