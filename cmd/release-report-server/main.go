package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/clintrovert/releasekit/internal/api/rest"
	"github.com/clintrovert/releasekit/internal/cli"
	"github.com/clintrovert/releasekit/internal/jira"
	"github.com/clintrovert/releasekit/internal/pivotal"
	"github.com/clintrovert/releasekit/internal/release"
)

func main() {
	cfg, logger, err := cli.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	defer logger.Sync()

	if err := cfg.RequireGitHub(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	gh, err := cli.GitHubClient(cfg, logger)
	if err != nil {
		logger.Fatal("failed to create github client", zap.Error(err))
	}

	// Trackers without credentials stay disabled
	var pivotalTracker, jiraTracker *rest.Tracker
	if cfg.RequirePivotal() == nil {
		client := pivotal.NewClient(cfg.Pivotal.BaseURL, cfg.Pivotal.Token, cfg.Pivotal.ProjectIDs, nil, logger)
		pivotalTracker = &rest.Tracker{
			Runner:         release.NewOrchestrator(gh, gh, gh, client, logger),
			AcceptedStates: []string{pivotal.AcceptedState},
		}
	} else {
		logger.Warn("pivotal tracker disabled, PT_TOKEN is not set")
	}
	if cfg.RequireJira() == nil {
		client, err := cli.JiraClient(cfg, logger)
		if err != nil {
			logger.Fatal("failed to create jira client", zap.Error(err))
		}
		jiraTracker = &rest.Tracker{
			Runner:         release.NewOrchestrator(gh, gh, gh, client, logger),
			AcceptedStates: jira.AcceptedStates,
		}
	} else {
		logger.Warn("jira disabled, JIRA_USER or JIRA_TOKEN is not set")
	}

	handler := rest.NewHandler(cfg.GitHub.Owner, pivotalTracker, jiraTracker, logger)

	server := &http.Server{
		Addr:    cfg.ServerAddr(),
		Handler: rest.NewRouter(handler),
	}

	go func() {
		logger.Info("starting REST API server", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start REST server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down REST server", zap.Error(err))
	}

	logger.Info("shutdown complete")
}
