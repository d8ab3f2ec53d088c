package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clintrovert/releasekit/pkg/types"
)

func TestTarget(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		repo   types.RepoRef
		number int
		ok     bool
	}{
		{
			name:   "url",
			args:   []string{"https://github.com/concord-consortium/collaborative-learning/pull/123"},
			repo:   types.RepoRef{Owner: "concord-consortium", Name: "collaborative-learning"},
			number: 123,
			ok:     true,
		},
		{
			name:   "repo and number",
			args:   []string{"clue", "7"},
			repo:   types.RepoRef{Owner: "default-org", Name: "clue"},
			number: 7,
			ok:     true,
		},
		{
			name:   "explicit owner",
			args:   []string{"clue", "7", "other-org"},
			repo:   types.RepoRef{Owner: "other-org", Name: "clue"},
			number: 7,
			ok:     true,
		},
		{name: "missing number", args: []string{"clue"}},
		{name: "bad number", args: []string{"clue", "seven"}},
		{name: "nothing", args: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, number, ok := target(tt.args, "default-org")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.repo, repo)
			assert.Equal(t, tt.number, number)
		})
	}
}
