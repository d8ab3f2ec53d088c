package github

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/clintrovert/releasekit/pkg/types"
)

var pullRequestURL = regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/]+)/pull/(\d+)`)

// ParsePullRequestURL extracts the repository and number from a pull request
// URL such as https://github.com/owner/repo/pull/123
func ParsePullRequestURL(raw string) (types.RepoRef, int, error) {
	m := pullRequestURL.FindStringSubmatch(raw)
	if m == nil {
		return types.RepoRef{}, 0, fmt.Errorf("not a pull request url: %q", raw)
	}
	number, err := strconv.Atoi(m[3])
	if err != nil {
		return types.RepoRef{}, 0, fmt.Errorf("invalid pull request number in %q: %w", raw, err)
	}
	return types.RepoRef{Owner: m[1], Name: m[2]}, number, nil
}

// PullRequestURL returns the web URL of a pull request
func PullRequestURL(repo types.RepoRef, number int) string {
	return fmt.Sprintf("https://github.com/%s/%s/pull/%d", repo.Owner, repo.Name, number)
}
