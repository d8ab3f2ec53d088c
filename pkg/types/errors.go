package types

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingConfig signals a required environment variable is not set.
	ErrMissingConfig = errors.New("missing configuration")
	// ErrUsage signals missing or malformed command-line arguments.
	ErrUsage = errors.New("invalid usage")
	// ErrUnauthorized signals the upstream rejected the credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNoCommits signals an empty commit window.
	ErrNoCommits = errors.New("no commits found")
)

// UpstreamError is a non-2xx response from GitHub, Jira or Pivotal Tracker
type UpstreamError struct {
	Service    string
	StatusCode int
	Status     string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("%s request failed with status %d", e.Service, e.StatusCode)
	if e.Status != "" {
		msg += ": " + e.Status
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is matches ErrUnauthorized for 401 responses
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == 401
}

// Hint returns a remediation hint for the operator, if any
func (e *UpstreamError) Hint() string {
	if e.StatusCode != 401 {
		return ""
	}
	switch e.Service {
	case "jira":
		return "Your JIRA_TOKEN may be expired or invalid. Generate a new API token at: https://id.atlassian.com/manage-profile/security/api-tokens"
	case "github":
		return "Your GITHUB_TOKEN may be expired or invalid, or lack contents:read and pull_requests:read permissions."
	case "pivotal":
		return "Your PT_TOKEN may be expired or invalid."
	}
	return ""
}
