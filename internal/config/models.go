package config

import (
	"fmt"
	"time"

	"github.com/clintrovert/releasekit/pkg/types"
)

// Config holds the configuration of every tool. Each tool validates only the
// sections it uses.
type Config struct {
	GitHub  GitHubConfig  `mapstructure:"github"`
	Jira    JiraConfig    `mapstructure:"jira"`
	Pivotal PivotalConfig `mapstructure:"pivotal"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// RequireGitHub ensures a GitHub token is set.
func (c Config) RequireGitHub() error {
	if c.GitHub.Token == "" {
		return fmt.Errorf("%w: GITHUB_TOKEN environment variable is required", types.ErrMissingConfig)
	}
	return nil
}

// RequireJira ensures the Jira credentials are set.
func (c Config) RequireJira() error {
	if c.Jira.User == "" || c.Jira.Token == "" {
		return fmt.Errorf("%w: both the JIRA_USER and JIRA_TOKEN environment variables are required", types.ErrMissingConfig)
	}
	return nil
}

// RequirePivotal ensures a Tracker token and at least one project are set.
func (c Config) RequirePivotal() error {
	if c.Pivotal.Token == "" {
		return fmt.Errorf("%w: PT_TOKEN environment variable is required", types.ErrMissingConfig)
	}
	if len(c.Pivotal.ProjectIDs) == 0 {
		return fmt.Errorf("%w: PIVOTAL_PROJECT_IDS must list at least one project", types.ErrMissingConfig)
	}
	return nil
}

// RequireOpenAI ensures an OpenAI API key is set.
func (c Config) RequireOpenAI() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("%w: OPENAI_API_KEY environment variable is required", types.ErrMissingConfig)
	}
	return nil
}

// ServerAddr returns host:port for HTTP server binding.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GitHubConfig contains GitHub API options.
type GitHubConfig struct {
	Token  string `mapstructure:"token"`
	Owner  string `mapstructure:"owner"`
	APIURL string `mapstructure:"api_url"`
}

// JiraConfig contains Jira Cloud credentials.
type JiraConfig struct {
	User    string `mapstructure:"user"`
	Token   string `mapstructure:"token"`
	BaseURL string `mapstructure:"base_url"`
}

// PivotalConfig contains Pivotal Tracker options.
type PivotalConfig struct {
	Token      string   `mapstructure:"token"`
	BaseURL    string   `mapstructure:"base_url"`
	ProjectIDs []string `mapstructure:"project_ids"`
}

// OpenAIConfig contains the review assistant options.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// ServerConfig contains HTTP server options.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig contains logger preferences.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}
