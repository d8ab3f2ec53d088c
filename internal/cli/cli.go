// Package cli holds the start-up and exit handling shared by the commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/clintrovert/releasekit/internal/config"
	"github.com/clintrovert/releasekit/internal/github"
	"github.com/clintrovert/releasekit/internal/jira"
	"github.com/clintrovert/releasekit/internal/logging"
	"github.com/clintrovert/releasekit/pkg/types"
)

// chatArg is accepted as a trailing positional argument in place of --slack
const chatArg = "slack"

// Parse parses args. Help is reported as pflag.ErrHelp and a bad flag as
// a usage error.
func Parse(fs *pflag.FlagSet, usage string, args []string) ([]string, error) {
	fs.SetInterspersed(true)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n\nFlags:\n%s", usage, fs.FlagUsages())
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", types.ErrUsage, err)
	}
	return fs.Args(), nil
}

// SplitChat removes a trailing "slack" argument and reports whether it was
// present
func SplitChat(args []string) ([]string, bool) {
	if n := len(args); n > 0 && args[n-1] == chatArg {
		return args[:n-1], true
	}
	return args, false
}

// Usage returns a usage error carrying msg and the command's usage text
func Usage(msg, usage string) error {
	return fmt.Errorf("%w: %s\n\n%s", types.ErrUsage, msg, usage)
}

// Exit reports err on stderr and exits with its code. Commands call it from
// main once run has returned and its deferred calls have completed.
func Exit(err error) {
	os.Exit(Report(os.Stderr, err))
}

// Report writes err and any remediation hint to w and returns the exit code
func Report(w io.Writer, err error) int {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	fmt.Fprintf(w, "❌ %v\n", err)

	var upstream *types.UpstreamError
	if errors.As(err, &upstream) {
		if hint := upstream.Hint(); hint != "" {
			fmt.Fprintf(w, "   %s\n", hint)
		}
	}
	return 1
}

// Load reads the configuration and builds the logger
func Load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Logging.Level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// Context is canceled on interrupt or termination
func Context() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// GitHubClient builds the GitHub client from cfg
func GitHubClient(cfg *config.Config, logger *zap.Logger) (*github.Client, error) {
	return github.NewClient(cfg.GitHub.Token, cfg.GitHub.APIURL, logger)
}

// JiraClient builds the Jira client from cfg
func JiraClient(cfg *config.Config, logger *zap.Logger) (*jira.Client, error) {
	return jira.NewClient(cfg.Jira.BaseURL, cfg.Jira.User, cfg.Jira.Token, logger)
}
